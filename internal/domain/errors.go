package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTransport          = errors.New("transport failure")
	ErrTransportDiscarded = errors.New("transport discarded")
	ErrProtocolViolation  = errors.New("protocol violation")
	ErrUnknownOperation   = errors.New("unknown operation")

	ErrWorldNotLoaded = errors.New("world not loaded")
	ErrNotConnected   = errors.New("session not connected")
	ErrSessionClosed  = errors.New("session closed")

	ErrEntityNotObserved = errors.New("entity not observed")
	ErrPropertyAbsent    = errors.New("property absent")
	ErrPropertyType      = errors.New("property has a different type")

	ErrExecutableNotFound = errors.New("simulator executable not found")
	ErrLevelNotFound      = errors.New("level file not found")
	ErrProfileNotFound    = errors.New("level profile not found")
	ErrStrategyNotFound   = errors.New("strategy not found")
)

// TransportError is a local I/O failure on the simulator connection.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
