package ports

import (
	"context"

	"github.com/bnema/labrecruits-gym/internal/domain"
)

type RunHistory interface {
	Record(ctx context.Context, run domain.RunRecord) error
	List(ctx context.Context, limit int) ([]domain.RunRecord, error)
}
