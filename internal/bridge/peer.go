package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/time/rate"
)

// Role is the kind of process behind a peer.
type Role string

const (
	RoleShell   Role = "shell"
	RoleContent Role = "content"
)

const inboxSize = 64

// Peer is one websocket connection.
type Peer struct {
	ID      string
	Role    Role
	Surface string

	conn    *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan Frame

	limiter *rate.Limiter
	timeout time.Duration
	logger  hclog.Logger

	inbox  chan Frame
	closed chan struct{}
	once   sync.Once
}

func newPeer(conn *websocket.Conn, role Role, surface string, limiter *rate.Limiter, timeout time.Duration, logger hclog.Logger) *Peer {
	id := uuid.New().String()
	return &Peer{
		ID:      id,
		Role:    role,
		Surface: surface,
		conn:    conn,
		pending: make(map[string]chan Frame),
		limiter: limiter,
		timeout: timeout,
		logger:  logger.With("peer", id, "role", string(role)),
		inbox:   make(chan Frame, inboxSize),
		closed:  make(chan struct{}),
	}
}

// Done is closed when the connection ends.
func (p *Peer) Done() <-chan struct{} {
	return p.closed
}

// Call sends a request and waits for the response, bounded by the
// peer's call timeout.
func (p *Peer) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	id := uuid.New().String()
	ch := make(chan Frame, 1)
	p.mu.Lock()
	p.pending[id] = ch
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.pending, id)
		p.mu.Unlock()
	}()

	if err := p.write(Frame{ID: id, Kind: KindRequest, Method: method, Params: raw}); err != nil {
		return nil, err
	}

	select {
	case f := <-ch:
		if f.Error != "" {
			return nil, &RemoteError{Method: method, Message: f.Error}
		}
		if len(f.Result) == 0 {
			return json.RawMessage("null"), nil
		}
		return f.Result, nil
	case <-p.closed:
		return nil, ErrPeerClosed
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%s: %w", method, ErrCallTimeout)
		}
		return nil, ctx.Err()
	}
}

// Notify sends an event frame.
func (p *Peer) Notify(method string, params any) error {
	raw, err := marshalParams(params)
	if err != nil {
		return err
	}
	return p.write(Frame{Kind: KindEvent, Method: method, Params: raw})
}

func (p *Peer) respond(id string, f Frame) error {
	f.ID = id
	f.Kind = KindResponse
	return p.write(f)
}

func (p *Peer) respondError(id string, err error) error {
	return p.respond(id, Frame{Error: err.Error()})
}

func (p *Peer) write(f Frame) error {
	select {
	case <-p.closed:
		return ErrPeerClosed
	default:
	}
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.conn.WriteJSON(f)
}

// readLoop routes responses to pending calls and queues everything else
// on the inbox. It returns when the connection fails.
func (p *Peer) readLoop() error {
	defer close(p.inbox)
	for {
		var f Frame
		if err := p.conn.ReadJSON(&f); err != nil {
			return err
		}
		if f.Kind == KindResponse {
			p.mu.Lock()
			ch := p.pending[f.ID]
			p.mu.Unlock()
			if ch == nil {
				continue
			}
			select {
			case ch <- f:
			default:
				p.logger.Debug("duplicate response dropped", "id", f.ID)
			}
			continue
		}
		if p.limiter != nil && !p.limiter.Allow() {
			p.logger.Warn("frame dropped", "method", f.Method, "error", ErrRateLimited)
			if f.Kind == KindRequest {
				_ = p.respondError(f.ID, ErrRateLimited)
			}
			continue
		}
		select {
		case p.inbox <- f:
		default:
			p.logger.Warn("inbox full, frame dropped", "method", f.Method)
			if f.Kind == KindRequest {
				_ = p.respondError(f.ID, ErrRateLimited)
			}
		}
	}
}

// close ends the connection and fails pending calls.
func (p *Peer) close() {
	p.once.Do(func() {
		close(p.closed)
		_ = p.conn.Close()
	})
}
