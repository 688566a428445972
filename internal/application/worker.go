package application

import (
	"context"
	"errors"
	"time"

	"github.com/bnema/labrecruits-gym/internal/domain"
)

// Algorithm discovers relations in a loaded world. It should return what it has
// found so far once ctx is cancelled.
type Algorithm func(ctx context.Context, env *Environment) (domain.RelationSet, error)

// WorkerResult is what a stopped worker hands back to its supervisor.
type WorkerResult struct {
	Relations domain.RelationSet
	Elapsed   time.Duration
	Err       error
}

// Worker is a running algorithm under supervision.
type Worker interface {
	// Done is closed once the worker has stopped on its own or after Cancel.
	Done() <-chan struct{}
	// Result is only meaningful after Done is closed.
	Result() WorkerResult
	// Cancel asks the worker to stop and return its partial result.
	Cancel()
	// Terminate stops the worker without waiting for its cooperation.
	Terminate()
	// Close releases the worker's simulator session.
	Close(ctx context.Context) error
}

type WorkerStarter interface {
	StartWorker(ctx context.Context) (Worker, error)
}

const (
	// WorkerPhaseReady is announced once the worker's session is open.
	WorkerPhaseReady = "ready"
	WorkerPhaseDone  = "done"
)

// WorkerReport is a JSON line a worker process prints on stdout: one in the
// ready phase after its world has loaded, and one in the done phase before it
// exits.
type WorkerReport struct {
	Phase     string      `json:"phase"`
	Relations [][2]string `json:"relations,omitempty"`
	ElapsedMS int64       `json:"elapsed_ms"`
	Error     string      `json:"error,omitempty"`
	Cancelled bool        `json:"cancelled,omitempty"`
}

func NewWorkerReport(result WorkerResult) WorkerReport {
	report := WorkerReport{
		Phase:     WorkerPhaseDone,
		Relations: make([][2]string, 0, result.Relations.Len()),
		ElapsedMS: result.Elapsed.Milliseconds(),
	}
	for _, pair := range result.Relations.Pairs() {
		report.Relations = append(report.Relations, [2]string{pair.Source, pair.Target})
	}
	if result.Err != nil {
		if errors.Is(result.Err, context.Canceled) {
			report.Cancelled = true
		} else {
			report.Error = result.Err.Error()
		}
	}
	return report
}

func (r WorkerReport) Result() WorkerResult {
	result := WorkerResult{Elapsed: time.Duration(r.ElapsedMS) * time.Millisecond}
	for _, pair := range r.Relations {
		result.Relations.Add(pair[0], pair[1])
	}
	switch {
	case r.Error != "":
		result.Err = errors.New(r.Error)
	case r.Cancelled:
		result.Err = context.Canceled
	}
	return result
}
