package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/labrecruits-gym/internal/domain"
	"github.com/bnema/labrecruits-gym/internal/ports"
	"github.com/bnema/labrecruits-gym/internal/protocol"
	"go.uber.org/zap"
)

type Options struct {
	// Debug logs every frame sent and received.
	Debug       bool
	DialTimeout time.Duration
	// IOTimeout bounds a whole round trip. Zero means no bound.
	IOTimeout time.Duration
	Logger    *zap.Logger
}

// Transport is a single connection to the simulator. Exchanges are strictly
// sequential: a caller holds the connection from write until the matching
// response line has been read.
type Transport struct {
	conn   net.Conn
	reader *bufio.Reader
	opts   Options
	logger *zap.Logger

	mu        sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
	broken    atomic.Bool
}

var _ ports.Transport = (*Transport)(nil)

func Dial(ctx context.Context, addr string, opts Options) (*Transport, error) {
	dialer := net.Dialer{Timeout: opts.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &domain.TransportError{Op: "dial " + addr, Err: err}
	}
	return New(conn, opts), nil
}

func New(conn net.Conn, opts Options) *Transport {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Transport{
		conn:   conn,
		reader: bufio.NewReader(conn),
		opts:   opts,
		logger: logger.With(zap.String("component", "transport"), zap.String("remote", conn.RemoteAddr().String())),
	}
}

func (t *Transport) Exchange(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	if err := ctx.Err(); err != nil {
		return protocol.Response{}, err
	}

	frame, err := protocol.Encode(req)
	if err != nil {
		return protocol.Response{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed.Load() || t.broken.Load() {
		return protocol.Response{}, domain.ErrTransportDiscarded
	}
	if err := ctx.Err(); err != nil {
		return protocol.Response{}, err
	}

	if err := t.conn.SetDeadline(t.deadline(ctx)); err != nil {
		return protocol.Response{}, t.fail("set deadline", err)
	}

	if t.opts.Debug {
		t.logger.Debug("send", zap.String("cmd", string(req.Cmd)), zap.ByteString("frame", frame[:len(frame)-1]))
	}

	if _, err := t.conn.Write(frame); err != nil {
		return protocol.Response{}, t.fail("write", err)
	}

	line, err := t.reader.ReadBytes('\n')
	if err != nil {
		return protocol.Response{}, t.fail("read", err)
	}

	if t.opts.Debug {
		t.logger.Debug("recv", zap.String("cmd", string(req.Cmd)), zap.Int("bytes", len(line)), zap.ByteString("frame", line))
	}

	return protocol.Decode(req.Expect(), line)
}

// Close releases the socket. It is safe to call while an exchange is blocked
// on the connection; that exchange fails and the transport is not reusable.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		if cerr := t.conn.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = &domain.TransportError{Op: "close", Err: cerr}
		}
	})
	return err
}

func (t *Transport) deadline(ctx context.Context) time.Time {
	var deadline time.Time
	if t.opts.IOTimeout > 0 {
		deadline = time.Now().Add(t.opts.IOTimeout)
	}
	if ctxDeadline, ok := ctx.Deadline(); ok && (deadline.IsZero() || ctxDeadline.Before(deadline)) {
		deadline = ctxDeadline
	}
	return deadline
}

// fail marks the connection as out of sync. A half-finished round trip leaves
// an unread or unwritten frame behind, so no later exchange can trust the stream.
func (t *Transport) fail(op string, err error) error {
	t.broken.Store(true)
	terr := &domain.TransportError{Op: op, Err: err}
	if t.closed.Load() {
		return fmt.Errorf("%w: %w", domain.ErrTransportDiscarded, terr)
	}
	return terr
}

type Dialer struct {
	Options Options
}

var _ ports.Dialer = Dialer{}

func (d Dialer) Dial(ctx context.Context, addr string) (ports.Transport, error) {
	transport, err := Dial(ctx, addr, d.Options)
	if err != nil {
		return nil, err
	}
	return transport, nil
}
