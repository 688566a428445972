// Package strategy holds the built-in relation-discovery algorithms.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bnema/labrecruits-gym/internal/application"
	"github.com/bnema/labrecruits-gym/internal/domain"
	"go.uber.org/zap"
)

const (
	Idle   = "idle"
	Survey = "survey"
)

type Options struct {
	AgentID      string
	StepInterval time.Duration
	Logger       *zap.Logger
}

type factory func(Options) application.Algorithm

var builtins = map[string]factory{
	Idle:   func(Options) application.Algorithm { return idle },
	Survey: survey,
}

// Names lists the registered strategies in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Lookup(name string, opts Options) (application.Algorithm, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", domain.ErrStrategyNotFound, name, Names())
	}
	if opts.AgentID == "" {
		opts.AgentID = "agent0"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return build(opts), nil
}

func idle(context.Context, *application.Environment) (domain.RelationSet, error) {
	return domain.RelationSet{}, nil
}

// survey visits every switch the agent can see, operates it, and records the
// doors whose open state changed as a result.
func survey(opts Options) application.Algorithm {
	logger := opts.Logger.With(zap.String("strategy", Survey))

	return func(ctx context.Context, env *application.Environment) (domain.RelationSet, error) {
		var found domain.RelationSet
		guide := application.NewGuide(env, opts.AgentID, opts.StepInterval)

		world, err := env.Observe(ctx, opts.AgentID)
		if err != nil {
			return found, err
		}

		for _, sw := range world.EntitiesOfType(domain.EntityTypeSwitch) {
			if err := ctx.Err(); err != nil {
				return found, err
			}

			before, arrived, err := guide.WalkTo(ctx, sw.Position)
			if err != nil {
				return found, err
			}
			if !arrived {
				logger.Debug("switch out of reach", zap.String("switch", sw.ID))
				continue
			}

			after, err := env.Interact(ctx, opts.AgentID, sw.ID)
			if err != nil {
				return found, err
			}

			for _, door := range changedDoors(before, after) {
				if found.Add(sw.ID, door) {
					logger.Info("relation found", zap.String("switch", sw.ID), zap.String("door", door))
				}
			}
		}

		return found, nil
	}
}

func changedDoors(before, after *domain.WorldModel) []string {
	var doors []string
	for _, door := range after.EntitiesOfType(domain.EntityTypeDoor) {
		open, err := door.Bool(domain.PropertyDoorOpen)
		if err != nil {
			continue
		}
		was, err := before.Bool(door.ID, domain.PropertyDoorOpen)
		if err != nil && !errors.Is(err, domain.ErrEntityNotObserved) {
			continue
		}
		if open != was {
			doors = append(doors, door.ID)
		}
	}
	sort.Strings(doors)
	return doors
}
