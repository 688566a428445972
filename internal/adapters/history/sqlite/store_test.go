package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/labrecruits-gym/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreRecordAndList(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	completed := domain.RunRecord{
		ID:         "run-1",
		Level:      "buttons_doors_1",
		Strategy:   "survey",
		Outcome:    domain.OutcomeCompleted,
		ExitCode:   0,
		Elapsed:    12345 * time.Millisecond,
		Relations:  1,
		ReportPath: "/reports/report_buttons_doors_1.csv",
		StartedAt:  base,
	}
	terminated := domain.RunRecord{
		ID:        "run-2",
		Level:     "buttons_doors_1",
		Strategy:  "survey",
		Outcome:   domain.OutcomeTerminated,
		ExitCode:  3,
		Elapsed:   70 * time.Second,
		Error:     "worker terminated after grace period",
		StartedAt: base.Add(time.Hour),
	}

	require.NoError(t, store.Record(context.Background(), completed))
	require.NoError(t, store.Record(context.Background(), terminated))

	runs, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []domain.RunRecord{terminated, completed}, runs)
}

func TestStoreListLimit(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(context.Background(), domain.RunRecord{
			ID:        fmt.Sprintf("run-%d", i),
			Level:     "lvl",
			Strategy:  "idle",
			Outcome:   domain.OutcomeCompleted,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	runs, err := store.List(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-4", runs[0].ID)
	assert.Equal(t, "run-3", runs[1].ID)
}

func TestStoreRejectsDuplicateRunID(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	run := domain.RunRecord{ID: "run-1", Level: "lvl", Outcome: domain.OutcomeFailed, StartedAt: time.Now()}

	require.NoError(t, store.Record(context.Background(), run))
	assert.ErrorContains(t, store.Record(context.Background(), run), "record run run-1")
}

func TestStoreReopenKeepsRuns(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), domain.RunRecord{
		ID: "run-1", Level: "lvl", Outcome: domain.OutcomeCancelled, ExitCode: 2, StartedAt: time.Now(),
	}))
	require.NoError(t, store.Close())

	reopened, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	runs, err := reopened.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.OutcomeCancelled, runs[0].Outcome)
}
