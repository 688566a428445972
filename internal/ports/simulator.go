package ports

import "context"

// Simulator is the game process the session talks to.
type Simulator interface {
	Start(ctx context.Context) error
	WaitReady(ctx context.Context) error
	Close() error
}
