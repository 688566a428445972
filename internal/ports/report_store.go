package ports

import (
	"context"
	"time"

	"github.com/bnema/labrecruits-gym/internal/domain"
)

type ReportStore interface {
	Write(ctx context.Context, level string, elapsed time.Duration, relations domain.RelationSet) (string, error)
}
