package application

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/labrecruits-gym/internal/domain"
	"golang.org/x/time/rate"
)

const (
	DefaultArriveTolerance = 0.3
	DefaultGuideSteps      = 90
	DefaultStepInterval    = 30 * time.Millisecond
)

// Guide walks an agent to a point one clamped step at a time, pacing the
// steps so the simulator has time to apply each move.
type Guide struct {
	env       *Environment
	agentID   string
	tolerance float64
	maxSteps  int
	limiter   *rate.Limiter
}

// NewGuide paces moves at one per interval. A non-positive interval disables pacing.
func NewGuide(env *Environment, agentID string, interval time.Duration) *Guide {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Guide{
		env:       env,
		agentID:   agentID,
		tolerance: DefaultArriveTolerance,
		maxSteps:  DefaultGuideSteps,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// WalkTo moves the agent until its floor position is within the arrival
// tolerance of target or the step allowance runs out. It reports the last
// observation and whether the agent arrived.
func (g *Guide) WalkTo(ctx context.Context, target domain.Vec3) (*domain.WorldModel, bool, error) {
	world, err := g.env.Observe(ctx, g.agentID)
	if err != nil {
		return nil, false, err
	}

	for step := 0; step < g.maxSteps; step++ {
		if g.arrived(world, target) {
			return world, true, nil
		}
		if err := g.limiter.Wait(ctx); err != nil {
			return world, false, fmt.Errorf("walk to %s: %w", target, err)
		}

		next, err := g.env.MoveToward(ctx, g.agentID, world.Position, target)
		if err != nil {
			return world, false, err
		}
		world = next
	}

	return world, g.arrived(world, target), nil
}

func (g *Guide) arrived(world *domain.WorldModel, target domain.Vec3) bool {
	return world.FloorPosition().Dist(target.Floor()) <= g.tolerance
}
