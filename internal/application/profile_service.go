package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/labrecruits-gym/internal/domain"
	"github.com/bnema/labrecruits-gym/internal/ports"
)

// ProfileService manages the per-level link overrides sent with load-world.
type ProfileService struct {
	profiles ports.LevelProfileRepository
	clock    ports.Clock
}

func NewProfileService(profiles ports.LevelProfileRepository, clock ports.Clock) *ProfileService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &ProfileService{profiles: profiles, clock: clock}
}

func (s *ProfileService) AddLink(ctx context.Context, level string, link domain.Link) (domain.LevelProfile, error) {
	return s.update(ctx, level, func(p *domain.LevelProfile) { p.AddLink(normalizeLink(link)) })
}

func (s *ProfileService) RemoveLink(ctx context.Context, level string, link domain.Link) (domain.LevelProfile, error) {
	return s.update(ctx, level, func(p *domain.LevelProfile) { p.RemoveLink(normalizeLink(link)) })
}

func (s *ProfileService) List(ctx context.Context) ([]domain.LevelProfile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list level profiles: %w", err)
	}
	return profiles, nil
}

// Apply merges the stored profile for cfg's level into cfg. Levels without a
// profile are returned unchanged.
func (s *ProfileService) Apply(ctx context.Context, cfg domain.SessionConfig) (domain.SessionConfig, error) {
	profile, err := s.profiles.GetByLevel(ctx, cfg.LevelName)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return cfg, nil
		}
		return domain.SessionConfig{}, fmt.Errorf("load level profile: %w", err)
	}
	return profile.Apply(cfg), nil
}

func (s *ProfileService) update(ctx context.Context, level string, change func(*domain.LevelProfile)) (domain.LevelProfile, error) {
	level = strings.TrimSpace(level)
	profile, err := s.profiles.GetByLevel(ctx, level)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			return domain.LevelProfile{}, fmt.Errorf("load level profile: %w", err)
		}
		profile = domain.LevelProfile{Level: level}
	}

	change(&profile)
	profile.UpdatedAt = s.clock.Now()

	if err := profile.Validate(); err != nil {
		return domain.LevelProfile{}, err
	}
	if err := s.profiles.Save(ctx, profile); err != nil {
		return domain.LevelProfile{}, fmt.Errorf("save level profile: %w", err)
	}
	return profile, nil
}

func normalizeLink(link domain.Link) domain.Link {
	return domain.Link{Switch: strings.TrimSpace(link.Switch), Door: strings.TrimSpace(link.Door)}
}
