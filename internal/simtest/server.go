// Package simtest runs an in-memory stand-in for the Lab Recruits simulator
// that speaks the line-delimited JSON protocol over a real TCP socket.
package simtest

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/labrecruits-gym/internal/protocol"
	json "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"
)

// Received is one request frame as seen by the server.
type Received struct {
	Cmd      protocol.RequestType
	AgentCmd protocol.AgentCommandType
	AgentID  string
	TargetID string
	Target   *protocol.Vector
	Init     *protocol.InitArgs
	Raw      []byte
}

// Handler may replace the reply to a request. Returning ok=false falls back
// to the built-in behaviour.
type Handler func(req Received) (reply []byte, ok bool)

type Option func(*Server)

func WithHandler(h Handler) Option {
	return func(s *Server) { s.handler = h }
}

// WithDelay makes the server sleep before every reply.
func WithDelay(d time.Duration) Option {
	return func(s *Server) { s.delay = d }
}

func WithNullNavMesh() Option {
	return func(s *Server) { s.nullNavMesh = true }
}

func WithWorld(w *World) Option {
	return func(s *Server) { s.world = w }
}

type Server struct {
	ln     net.Listener
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	handler     Handler
	delay       time.Duration
	nullNavMesh bool

	mu       sync.Mutex
	world    *World
	conns    map[net.Conn]struct{}
	received []Received

	maxInFlight atomic.Int32
	closeOnce   sync.Once
}

// NewServer listens on a loopback port and stops when the test ends.
func NewServer(t testing.TB, opts ...Option) *Server {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	s := &Server{
		ln:     ln,
		ctx:    ctx,
		cancel: cancel,
		group:  group,
		world:  DefaultWorld(),
		conns:  map[net.Conn]struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}

	group.Go(s.acceptLoop)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.Addr())
	return host
}

func (s *Server) Port() int {
	_, port, _ := net.SplitHostPort(s.Addr())
	n, _ := strconv.Atoi(port)
	return n
}

func (s *Server) Received() []Received {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Received(nil), s.received...)
}

// Commands lists the top-level request types in arrival order.
func (s *Server) Commands() []protocol.RequestType {
	var out []protocol.RequestType
	for _, r := range s.Received() {
		out = append(out, r.Cmd)
	}
	return out
}

// MaxInFlight is the largest number of requests any single connection had
// outstanding at once.
func (s *Server) MaxInFlight() int {
	return int(s.maxInFlight.Load())
}

func (s *Server) World() *World {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world
}

// DropConnections closes every open client connection without a reply.
func (s *Server) DropConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
}

func (s *Server) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		_ = s.ln.Close()
		s.DropConnections()
		_ = s.group.Wait()
	})
}

func (s *Server) acceptLoop() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.group.Go(func() error {
			defer func() {
				s.mu.Lock()
				delete(s.conns, conn)
				s.mu.Unlock()
				_ = conn.Close()
			}()
			s.serve(conn)
			return nil
		})
	}
}

func (s *Server) serve(conn net.Conn) {
	reader := bufio.NewReader(conn)
	var pending atomic.Int32

	done := make(chan struct{})
	defer close(done)

	lines := make(chan []byte)
	go func() {
		defer close(lines)
		for {
			line, err := reader.ReadBytes('\n')
			if err != nil {
				return
			}
			n := pending.Add(1)
			for {
				peak := s.maxInFlight.Load()
				if n <= peak || s.maxInFlight.CompareAndSwap(peak, n) {
					break
				}
			}
			select {
			case lines <- line:
			case <-done:
				return
			}
		}
	}()

	for line := range lines {
		req := parse(line)
		s.mu.Lock()
		s.received = append(s.received, req)
		s.mu.Unlock()

		if s.delay > 0 {
			select {
			case <-time.After(s.delay):
			case <-s.ctx.Done():
				return
			}
		}

		reply := s.reply(req)
		pending.Add(-1)
		if _, err := conn.Write(append(reply, '\n')); err != nil {
			return
		}
		if req.Cmd == protocol.RequestDisconnect {
			return
		}
	}
}

func (s *Server) reply(req Received) []byte {
	if s.handler != nil {
		if reply, ok := s.handler(req); ok {
			return reply
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Cmd {
	case protocol.RequestInit:
		if s.nullNavMesh {
			return []byte("null")
		}
		return mustJSON(s.world.NavMesh)
	case protocol.RequestAgentCommand:
		switch req.AgentCmd {
		case protocol.AgentMoveTowards:
			if req.Target != nil {
				s.world.MoveAgent(*req.Target)
			}
		case protocol.AgentInteract:
			s.world.Interact(req.TargetID)
		}
		s.world.Tick++
		return mustJSON(s.world.Observation(req.AgentID))
	default:
		return []byte("true")
	}
}

func parse(line []byte) Received {
	var frame struct {
		Cmd protocol.RequestType `json:"cmd"`
		Arg json.RawMessage      `json:"arg"`
	}
	req := Received{Raw: append([]byte(nil), line...)}
	if err := json.Unmarshal(line, &frame); err != nil {
		return req
	}
	req.Cmd = frame.Cmd

	switch frame.Cmd {
	case protocol.RequestInit:
		var args protocol.InitArgs
		if err := json.Unmarshal(frame.Arg, &args); err == nil {
			req.Init = &args
		}
	case protocol.RequestAgentCommand:
		var cmd struct {
			Cmd      protocol.AgentCommandType `json:"cmd"`
			AgentID  string                    `json:"agentId"`
			TargetID string                    `json:"targetId"`
			Arg      *protocol.MoveArg         `json:"arg"`
		}
		if err := json.Unmarshal(frame.Arg, &cmd); err == nil {
			req.AgentCmd = cmd.Cmd
			req.AgentID = cmd.AgentID
			req.TargetID = cmd.TargetID
			if cmd.Arg != nil {
				target := cmd.Arg.Target
				req.Target = &target
			}
		}
	}

	return req
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
