package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVec3Normalized(t *testing.T) {
	t.Parallel()

	v := Vec3{X: 3, Z: 4}.Normalized()
	assert.InDelta(t, 1.0, v.Length(), 1e-9)
	assert.InDelta(t, 0.6, v.X, 1e-9)
	assert.InDelta(t, 0.8, v.Z, 1e-9)

	assert.Equal(t, Vec3{}, Vec3{}.Normalized())
}

func TestVec3FloorDropsHeight(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Vec3{X: 1, Z: 3}, Vec3{X: 1, Y: 2, Z: 3}.Floor())
}

func TestRelationSetCollapsesReversedPairs(t *testing.T) {
	t.Parallel()

	set := NewRelationSet()
	assert.True(t, set.Add("button0", "door0"))
	assert.False(t, set.Add("button0", "door0"))
	assert.False(t, set.Add("door0", "button0"))
	assert.True(t, set.Add("button1", "door0"))

	require.Equal(t, 2, set.Len())
	assert.True(t, set.Contains("door0", "button0"))
	assert.Equal(t, []RelationPair{
		{Source: "button0", Target: "door0"},
		{Source: "button1", Target: "door0"},
	}, set.Pairs())
}

func TestRelationSetContainsTrimsLikeAdd(t *testing.T) {
	t.Parallel()

	set := NewRelationSet()
	require.True(t, set.Add(" button0 ", "door0"))

	tests := []struct {
		name           string
		source, target string
		want           bool
	}{
		{name: "exact", source: "button0", target: "door0", want: true},
		{name: "padded", source: "button0 ", target: "\tdoor0", want: true},
		{name: "reversed and padded", source: " door0", target: "button0\n", want: true},
		{name: "other door", source: "button0", target: " door1 ", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, set.Contains(tt.source, tt.target))
		})
	}
}

func TestRelationSetEqualIgnoresOrder(t *testing.T) {
	t.Parallel()

	a := NewRelationSet(RelationPair{"a", "b"}, RelationPair{"c", "d"})
	b := NewRelationSet(RelationPair{"d", "c"}, RelationPair{"a", "b"})
	assert.True(t, a.Equal(b))

	b.Add("e", "f")
	assert.False(t, a.Equal(b))
}

func TestWorldModelPropertyGettersDistinguishMissingEntityFromMissingProperty(t *testing.T) {
	t.Parallel()

	world := WorldModel{
		AgentID: "agent0",
		Entities: map[string]*Entity{
			"door0": {ID: "door0", Type: EntityTypeDoor, Properties: map[string]any{
				PropertyDoorOpen: true,
				"width":          2.5,
				"label":          "north",
			}},
		},
	}

	open, err := world.Bool("door0", PropertyDoorOpen)
	require.NoError(t, err)
	assert.True(t, open)

	width, err := world.Number("door0", "width")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, width, 1e-9)

	label, err := world.Text("door0", "label")
	require.NoError(t, err)
	assert.Equal(t, "north", label)

	_, err = world.Bool("door9", PropertyDoorOpen)
	assert.ErrorIs(t, err, ErrEntityNotObserved)

	_, err = world.Bool("door0", PropertySwitchOn)
	assert.ErrorIs(t, err, ErrPropertyAbsent)

	_, err = world.Number("door0", PropertyDoorOpen)
	assert.ErrorIs(t, err, ErrPropertyType)
}

func TestWorldModelEntitiesOfTypeNearestFirst(t *testing.T) {
	t.Parallel()

	world := WorldModel{
		Position: Vec3{X: 0, Y: 1, Z: 0},
		Entities: map[string]*Entity{
			"far":  {ID: "far", Type: EntityTypeSwitch, Position: Vec3{X: 9}},
			"near": {ID: "near", Type: EntityTypeSwitch, Position: Vec3{X: 1, Y: 5}},
			"door": {ID: "door", Type: EntityTypeDoor, Position: Vec3{X: 0.5}},
		},
	}

	switches := world.EntitiesOfType(EntityTypeSwitch)
	require.Len(t, switches, 2)
	assert.Equal(t, "near", switches[0].ID)
	assert.Equal(t, "far", switches[1].ID)
}

func TestNavGraphMergesTwinVertices(t *testing.T) {
	t.Parallel()

	// Two triangles that share an edge, but the shared corners are emitted twice.
	vertices := []Vec3{
		{X: 0, Z: 0}, {X: 1, Z: 0}, {X: 0, Z: 1},
		{X: 1.001, Z: 0}, {X: 1, Z: 1}, {X: 0, Z: 1.004},
	}
	indices := []int{0, 1, 2, 3, 4, 5}

	graph, err := NewNavGraph(vertices, indices)
	require.NoError(t, err)
	assert.Equal(t, 4, graph.VertexCount())
	assert.Equal(t, 2, graph.FaceCount())

	shared := graph.Nearest(Vec3{X: 1, Z: 0})
	assert.Len(t, graph.Neighbors(shared), 3)
}

func TestNavGraphRejectsMalformedMesh(t *testing.T) {
	t.Parallel()

	_, err := NewNavGraph([]Vec3{{}, {X: 1}}, []int{0, 1})
	assert.ErrorContains(t, err, "multiple of 3")

	_, err = NewNavGraph([]Vec3{{}, {X: 1}}, []int{0, 1, 5})
	assert.ErrorContains(t, err, "out of range")
}

func TestSessionConfigWithLevel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "buttons_doors_1.csv"), []byte("|f|\n"), 0o644))

	cfg, err := DefaultSessionConfig().WithLevel("buttons_doors_1", dir)
	require.NoError(t, err)
	assert.Equal(t, "buttons_doors_1", cfg.LevelName)
	assert.True(t, filepath.IsAbs(cfg.LevelPath))
	assert.Equal(t, "localhost:8053", cfg.Addr())

	_, err = DefaultSessionConfig().WithLevel("missing", dir)
	assert.ErrorIs(t, err, ErrLevelNotFound)

	_, err = DefaultSessionConfig().WithLevel("  ", dir)
	assert.ErrorContains(t, err, "level name is required")
}

func TestSessionConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*SessionConfig)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*SessionConfig) {}},
		{name: "empty host", mutate: func(c *SessionConfig) { c.Host = "" }, wantErr: "host is required"},
		{name: "port out of range", mutate: func(c *SessionConfig) { c.Port = 70000 }, wantErr: "out of range"},
		{name: "incomplete link", mutate: func(c *SessionConfig) { c.AddLinks = []Link{{Switch: "b0"}} }, wantErr: "incomplete"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultSessionConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLevelProfileLinkToggling(t *testing.T) {
	t.Parallel()

	seed := 7
	profile := LevelProfile{Level: "lvl", Seed: &seed}
	link := Link{Switch: "b0", Door: "d0"}

	profile.AddLink(link)
	profile.AddLink(link)
	assert.Equal(t, []Link{link}, profile.AddLinks)

	profile.RemoveLink(link)
	assert.Empty(t, profile.AddLinks)
	assert.Equal(t, []Link{link}, profile.RemoveLinks)

	cfg := profile.Apply(DefaultSessionConfig())
	assert.Equal(t, 7, cfg.Seed)
	assert.Equal(t, []Link{link}, cfg.RemoveLinks)
}

func TestOutcomeExitCodes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, OutcomeCompleted.ExitCode())
	assert.NotZero(t, OutcomeFailed.ExitCode())
	assert.NotZero(t, OutcomeCancelled.ExitCode())
	assert.NotZero(t, OutcomeTerminated.ExitCode())
	assert.True(t, OutcomeCompleted.Graceful())
	assert.False(t, OutcomeCancelled.Graceful())
}

func TestTransportErrorMatchesSentinel(t *testing.T) {
	t.Parallel()

	err := &TransportError{Op: "read", Err: os.ErrDeadlineExceeded}
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, os.ErrDeadlineExceeded)
	assert.Contains(t, err.Error(), "transport read")
}
