package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/labrecruits-gym/cmd"
	"github.com/bnema/labrecruits-gym/internal/observability"
)

func main() {
	// Interrupts reach the supervisor as context cancellation, which escalates
	// like an elapsed budget.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()

	observability.Sync()
	os.Exit(cmd.ExitCode(err))
}
