package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/labrecruits-gym/internal/domain"
	"github.com/bnema/labrecruits-gym/internal/ports"
	"github.com/bnema/labrecruits-gym/internal/protocol"
	"go.uber.org/zap"
)

type SessionState int

const (
	StateUnconnected SessionState = iota
	StateConnected
	StateReady
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateConnected:
		return "connected"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DefaultCloseTimeout bounds the disconnect handshake.
const DefaultCloseTimeout = 5 * time.Second

type EnvironmentOption func(*Environment)

// WithCloseTimeout bounds how long Close waits for the simulator to answer
// the disconnect. Non-positive values keep the default.
func WithCloseTimeout(d time.Duration) EnvironmentOption {
	return func(e *Environment) {
		if d > 0 {
			e.closeTimeout = d
		}
	}
}

// Environment is one session with a running simulator. It is driven by a
// single caller; Abandon is the only method meant to be called from elsewhere
// while that caller is blocked.
type Environment struct {
	session    domain.SessionConfig
	translator Translator
	dialer     ports.Dialer
	logger     *zap.Logger

	closeTimeout time.Duration

	mu        sync.Mutex
	state     SessionState
	transport ports.Transport
	nav       *domain.NavGraph
}

func NewEnvironment(session domain.SessionConfig, dialer ports.Dialer, logger *zap.Logger, opts ...EnvironmentOption) (*Environment, error) {
	if dialer == nil {
		return nil, errors.New("environment requires a dialer")
	}
	if err := session.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	session = session.Clone()
	e := &Environment{
		session:      session,
		translator:   NewTranslator(session),
		dialer:       dialer,
		logger:       logger.With(zap.String("component", "environment"), zap.String("level_name", session.LevelName)),
		closeTimeout: DefaultCloseTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Environment) Session() domain.SessionConfig {
	return e.session.Clone()
}

func (e *Environment) State() SessionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// NavGraph is nil until the world has been loaded.
func (e *Environment) NavGraph() *domain.NavGraph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nav
}

func (e *Environment) Connect(ctx context.Context) error {
	e.mu.Lock()
	state := e.state
	e.mu.Unlock()

	switch state {
	case StateUnconnected:
	case StateClosed:
		return domain.ErrSessionClosed
	default:
		return fmt.Errorf("connect: session already %s", state)
	}

	transport, err := e.dialer.Dial(ctx, e.session.Addr())
	if err != nil {
		return fmt.Errorf("connect to simulator: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateUnconnected {
		_ = transport.Close()
		return domain.ErrSessionClosed
	}
	e.transport = transport
	e.state = StateConnected

	e.logger.Info("connected to simulator", zap.String("addr", e.session.Addr()))
	return nil
}

// LoadWorld asks the simulator to load the configured level and builds the
// navigation graph from its reply. A missing graph ends the session.
func (e *Environment) LoadWorld(ctx context.Context) error {
	resp, err := e.exchange(ctx, Command{Op: OpLoadWorld}, StateConnected)
	if err != nil {
		return fmt.Errorf("load world: %w", err)
	}

	if resp.NavMesh == nil {
		e.fail()
		return fmt.Errorf("load world: %w: fail to load the navigation graph", domain.ErrProtocolViolation)
	}

	graph, err := resp.NavMesh.Graph()
	if err != nil {
		e.fail()
		return fmt.Errorf("load world: %w: %v", domain.ErrProtocolViolation, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateConnected {
		return domain.ErrSessionClosed
	}
	e.nav = graph
	e.state = StateReady

	e.logger.Info("world loaded",
		zap.Int("nav_vertices", graph.VertexCount()),
		zap.Int("nav_faces", graph.FaceCount()),
	)
	return nil
}

func (e *Environment) Observe(ctx context.Context, agentID string) (*domain.WorldModel, error) {
	return e.agentCommand(ctx, Command{Op: OpObserve, AgentID: agentID})
}

// MoveToward sends the agent toward target. Targets further than MaxStep from
// the agent's current position are shortened along the same direction.
func (e *Environment) MoveToward(ctx context.Context, agentID string, agentPosition, target domain.Vec3) (*domain.WorldModel, error) {
	return e.agentCommand(ctx, Command{Op: OpMoveToward, AgentID: agentID, From: agentPosition, To: target})
}

// Interact operates targetID. The simulator ignores it when the agent is out of reach.
func (e *Environment) Interact(ctx context.Context, agentID, targetID string) (*domain.WorldModel, error) {
	return e.agentCommand(ctx, Command{Op: OpInteract, AgentID: agentID, TargetID: targetID})
}

func (e *Environment) StartSimulation(ctx context.Context) (bool, error) {
	resp, err := e.exchange(ctx, Command{Op: OpStart}, StateConnected, StateReady)
	if err != nil {
		return false, fmt.Errorf("start simulation: %w", err)
	}
	return resp.Ack, nil
}

func (e *Environment) PauseSimulation(ctx context.Context) (bool, error) {
	resp, err := e.exchange(ctx, Command{Op: OpPause}, StateConnected, StateReady)
	if err != nil {
		return false, fmt.Errorf("pause simulation: %w", err)
	}
	return resp.Ack, nil
}

// Close says goodbye to the simulator and releases the connection. The
// goodbye is bounded by the close timeout and the connection is released
// even if it fails. Closing twice is a no-op.
func (e *Environment) Close(ctx context.Context) error {
	e.mu.Lock()
	previous := e.state
	transport := e.transport
	e.state = StateClosed
	e.transport = nil
	e.mu.Unlock()

	if previous == StateClosed || transport == nil {
		return nil
	}

	var handshakeErr error
	req, err := e.translator.Translate(Command{Op: OpDisconnect})
	if err == nil {
		err = e.disconnect(ctx, transport, req)
	}
	if err != nil {
		handshakeErr = fmt.Errorf("disconnect handshake: %w", err)
		e.logger.Warn("disconnect handshake failed", zap.Error(err))
	}

	var releaseErr error
	if err := transport.Close(); err != nil {
		releaseErr = fmt.Errorf("release transport: %w", err)
	}

	e.logger.Info("session closed", zap.Stringer("from", previous))
	return errors.Join(handshakeErr, releaseErr)
}

// disconnect runs the goodbye round trip. Once the deadline passes the
// transport is closed, which fails the pending exchange.
func (e *Environment) disconnect(ctx context.Context, transport ports.Transport, req protocol.Request) error {
	ctx, cancel := context.WithTimeout(ctx, e.closeTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := transport.Exchange(ctx, req)
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		e.logger.Warn("simulator did not answer disconnect", zap.Duration("timeout", e.closeTimeout))
		_ = transport.Close()
		return ctx.Err()
	}
}

// Abandon drops the connection without a handshake. Any exchange blocked on
// it fails, and the session can no longer be used.
func (e *Environment) Abandon() {
	e.mu.Lock()
	transport := e.transport
	previous := e.state
	e.state = StateClosed
	e.transport = nil
	e.mu.Unlock()

	if transport != nil {
		_ = transport.Close()
	}
	if previous != StateClosed {
		e.logger.Warn("session abandoned", zap.Stringer("from", previous))
	}
}

func (e *Environment) agentCommand(ctx context.Context, cmd Command) (*domain.WorldModel, error) {
	resp, err := e.exchange(ctx, cmd, StateReady)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmd.Op, err)
	}
	return resp.Observation.WorldModel(), nil
}

func (e *Environment) exchange(ctx context.Context, cmd Command, allowed ...SessionState) (protocol.Response, error) {
	transport, err := e.transportIn(allowed)
	if err != nil {
		return protocol.Response{}, err
	}

	req, err := e.translator.Translate(cmd)
	if err != nil {
		return protocol.Response{}, err
	}

	resp, err := transport.Exchange(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrProtocolViolation) {
			e.fail()
		}
		return protocol.Response{}, err
	}
	return resp, nil
}

func (e *Environment) transportIn(allowed []SessionState) (ports.Transport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, state := range allowed {
		if e.state == state {
			return e.transport, nil
		}
	}

	switch e.state {
	case StateClosed:
		return nil, domain.ErrSessionClosed
	case StateUnconnected:
		return nil, domain.ErrNotConnected
	case StateConnected:
		return nil, domain.ErrWorldNotLoaded
	default:
		return nil, fmt.Errorf("operation not allowed while %s", e.state)
	}
}

// fail ends the session after the simulator broke the protocol.
func (e *Environment) fail() {
	e.mu.Lock()
	transport := e.transport
	e.state = StateClosed
	e.transport = nil
	e.mu.Unlock()

	if transport != nil {
		_ = transport.Close()
	}
	e.logger.Error("session failed on protocol violation")
}
