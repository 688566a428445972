package ports

import (
	"context"

	"github.com/bnema/labrecruits-gym/internal/domain"
)

type LevelProfileRepository interface {
	GetByLevel(ctx context.Context, level string) (domain.LevelProfile, error)
	List(ctx context.Context) ([]domain.LevelProfile, error)
	Save(ctx context.Context, profile domain.LevelProfile) error
}
