package domain

import "time"

type Outcome string

const (
	OutcomeCompleted  Outcome = "completed"
	OutcomeFailed     Outcome = "failed"
	OutcomeCancelled  Outcome = "cancelled"
	OutcomeTerminated Outcome = "terminated"
)

const (
	ExitOK         = 0
	ExitFailed     = 1
	ExitCancelled  = 2
	ExitTerminated = 3
)

func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeCompleted:
		return ExitOK
	case OutcomeCancelled:
		return ExitCancelled
	case OutcomeTerminated:
		return ExitTerminated
	default:
		return ExitFailed
	}
}

func (o Outcome) Graceful() bool {
	return o == OutcomeCompleted
}

// RunRecord is one supervised run as kept in the run history.
type RunRecord struct {
	ID         string
	Level      string
	Strategy   string
	Outcome    Outcome
	ExitCode   int
	Elapsed    time.Duration
	Relations  int
	ReportPath string
	Error      string
	StartedAt  time.Time
}
