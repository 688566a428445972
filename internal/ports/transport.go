package ports

import (
	"context"

	"github.com/bnema/labrecruits-gym/internal/protocol"
)

// Transport performs one request/response round trip at a time.
type Transport interface {
	Exchange(ctx context.Context, req protocol.Request) (protocol.Response, error)
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context, addr string) (Transport, error)
}
