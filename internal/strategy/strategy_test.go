package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/labrecruits-gym/internal/adapters/transport/tcp"
	"github.com/bnema/labrecruits-gym/internal/application"
	"github.com/bnema/labrecruits-gym/internal/domain"
	"github.com/bnema/labrecruits-gym/internal/protocol"
	"github.com/bnema/labrecruits-gym/internal/simtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openEnvironment(t *testing.T, srv *simtest.Server) *application.Environment {
	t.Helper()

	session := domain.DefaultSessionConfig()
	session.Host = srv.Host()
	session.Port = srv.Port()
	session.LevelName = "buttons_doors_1"

	env, err := application.NewEnvironment(session, tcp.Dialer{Options: tcp.Options{DialTimeout: time.Second}}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close(context.Background()) })

	_, err = application.OpenEnvironment(env)(context.Background())
	require.NoError(t, err)
	return env
}

func TestLookup(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{Idle, Survey}, Names())

	_, err := Lookup("random-walk", Options{})
	require.ErrorIs(t, err, domain.ErrStrategyNotFound)
	assert.ErrorContains(t, err, "survey")

	algo, err := Lookup(Idle, Options{})
	require.NoError(t, err)
	found, err := algo(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, found.Len())
}

func TestSurveyFindsLinkedDoor(t *testing.T) {
	t.Parallel()

	srv := simtest.NewServer(t)
	env := openEnvironment(t, srv)

	algo, err := Lookup(Survey, Options{})
	require.NoError(t, err)

	found, err := algo(context.Background(), env)
	require.NoError(t, err)
	assert.True(t, found.Equal(domain.NewRelationSet(domain.RelationPair{Source: "button0", Target: "door0"})))

	var interactions []string
	for _, req := range srv.Received() {
		if req.AgentCmd == protocol.AgentInteract {
			interactions = append(interactions, req.TargetID)
		}
	}
	assert.Equal(t, []string{"button0", "button1"}, interactions)
}

func TestSurveyFindsDoorsOperatedBySeveralSwitches(t *testing.T) {
	t.Parallel()

	world := simtest.DefaultWorld()
	world.Objects = append(world.Objects, &simtest.Object{ID: "door1", Type: "Door", Position: protocol.Vector{X: 2, Y: 0.5, Z: 8}})
	world.Links["button0"] = []string{"door0", "door1"}
	world.Links["button1"] = []string{"door1"}

	srv := simtest.NewServer(t, simtest.WithWorld(world))
	env := openEnvironment(t, srv)

	algo, err := Lookup(Survey, Options{})
	require.NoError(t, err)

	found, err := algo(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, []domain.RelationPair{
		{Source: "button0", Target: "door0"},
		{Source: "button0", Target: "door1"},
		{Source: "button1", Target: "door1"},
	}, found.Pairs())
}

func TestSurveyReturnsPartialSetWhenCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	world := simtest.DefaultWorld()
	toggle := world.Interact
	world.Interact = func(targetID string) {
		toggle(targetID)
		if targetID == "button0" {
			cancel()
		}
	}

	srv := simtest.NewServer(t, simtest.WithWorld(world))
	env := openEnvironment(t, srv)

	algo, err := Lookup(Survey, Options{})
	require.NoError(t, err)

	found, err := algo(ctx, env)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, found.Contains("button0", "door0"))
	assert.Equal(t, 1, found.Len())
}
