package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/time/rate"

	"github.com/dshills/quickbar/internal/dispatcher"
	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/dispatcher/handler"
	"github.com/dshills/quickbar/internal/input/key"
)

// Config configures the server.
type Config struct {
	// Addr is the listen address.
	Addr string

	// MessageRate and MessageBurst limit inbound frames per peer. A zero
	// rate disables limiting.
	MessageRate  float64
	MessageBurst int

	// CallTimeout bounds every call into a peer.
	CallTimeout time.Duration

	// HostWindowID is the id of the host window.
	HostWindowID int
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:7345",
		MessageRate:  200,
		MessageBurst: 50,
		CallTimeout:  2 * time.Second,
		HostWindowID: 1,
	}
}

// Dispatcher executes command messages.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg command.Message) handler.Result
	DispatchAsync(ctx context.Context, msg command.Message) *dispatcher.Pending
}

// KeyHandler receives key events observed in the host window.
type KeyHandler interface {
	HandleKey(ev key.Event) bool
}

// Server accepts shell and content connections.
type Server struct {
	config     Config
	logger     hclog.Logger
	upgrader   websocket.Upgrader
	shell      *Shell
	dispatcher Dispatcher
	keys       KeyHandler

	mu       sync.RWMutex
	shellP   *Peer
	content  map[string]*Peer
	surfaces map[string]*Surface

	httpMu sync.Mutex
	http   *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a server. The dispatcher is attached later with
// SetDispatcher, since it depends on the shell's host window.
func NewServer(config Config, opts ...Option) *Server {
	s := &Server{
		config: config,
		logger: hclog.NewNullLogger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkLocalOrigin,
		},
		content:  make(map[string]*Peer),
		surfaces: make(map[string]*Surface),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.shell = newShell(s, config.HostWindowID)
	return s
}

// Shell returns the window system backed by the shell peer.
func (s *Server) Shell() *Shell {
	return s.shell
}

// SetDispatcher sets the command dispatcher. It must be called before
// serving.
func (s *Server) SetDispatcher(d Dispatcher) {
	s.dispatcher = d
}

// SetKeyHandler sets the receiver of host window key events.
func (s *Server) SetKeyHandler(k KeyHandler) {
	s.keys = k
}

// Handler returns the HTTP handler serving /ws and /msg-trigger.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/msg-trigger", s.serveTrigger)
	return mux
}

// Serve accepts connections on l until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.httpMu.Lock()
	s.http = srv
	s.httpMu.Unlock()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(l) }()
	s.logger.Info("bridge listening", "addr", l.Addr().String())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// ListenAndServe listens on the configured address and serves.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("bridge listen: %w", err)
	}
	return s.Serve(ctx, l)
}

// Shutdown closes every peer and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	peers := make([]*Peer, 0, len(s.content)+1)
	if s.shellP != nil {
		peers = append(peers, s.shellP)
	}
	for _, p := range s.content {
		peers = append(peers, p)
	}
	s.mu.Unlock()
	for _, p := range peers {
		p.close()
	}

	s.httpMu.Lock()
	srv := s.http
	s.http = nil
	s.httpMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) shellPeer() *Peer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shellP
}

func (s *Server) contentPeer(surface string) *Peer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content[surface]
}

func (s *Server) addSurface(sf *Surface) {
	s.mu.Lock()
	s.surfaces[sf.id] = sf
	s.mu.Unlock()
}

func (s *Server) removeSurface(id string) {
	s.mu.Lock()
	delete(s.surfaces, id)
	s.mu.Unlock()
}

func (s *Server) surface(id string) *Surface {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.surfaces[id]
}

func (s *Server) limiter() *rate.Limiter {
	if s.config.MessageRate <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(s.config.MessageRate), max(s.config.MessageBurst, 1))
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	role := Role(r.URL.Query().Get("role"))
	surface := r.URL.Query().Get("surface")
	switch {
	case role == RoleShell:
	case role == RoleContent && surface != "":
	default:
		http.Error(w, "bad role", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	p := newPeer(conn, role, surface, s.limiter(), s.config.CallTimeout, s.logger)
	s.register(p)
	defer s.unregister(p)

	go s.work(r.Context(), p)
	if err := p.readLoop(); err != nil && !isCloseError(err) {
		p.logger.Debug("connection ended", "error", err)
	}
}

func (s *Server) register(p *Peer) {
	s.mu.Lock()
	var old *Peer
	if p.Role == RoleShell {
		old, s.shellP = s.shellP, p
	} else {
		old, s.content[p.Surface] = s.content[p.Surface], p
	}
	s.mu.Unlock()
	if old != nil {
		old.close()
	}
	p.logger.Debug("peer connected", "surface", p.Surface)
}

func (s *Server) unregister(p *Peer) {
	s.mu.Lock()
	if p.Role == RoleShell && s.shellP == p {
		s.shellP = nil
	} else if s.content[p.Surface] == p {
		delete(s.content, p.Surface)
	}
	s.mu.Unlock()
	p.close()
	p.logger.Debug("peer disconnected", "surface", p.Surface)
}

// work handles p's queued frames one at a time.
func (s *Server) work(ctx context.Context, p *Peer) {
	for f := range p.inbox {
		s.handleFrame(ctx, p, f)
	}
}

func (s *Server) handleFrame(ctx context.Context, p *Peer, f Frame) {
	if p.Role == RoleShell {
		if f.Kind == KindEvent {
			s.shell.handleEvent(f)
			return
		}
		_ = p.respondError(f.ID, fmt.Errorf("%w: shell requests unsupported", ErrBadFrame))
		return
	}

	switch f.Method {
	case MethodKey:
		s.handleKey(p, f)
	case MethodMsgTrigger:
		s.handleTrigger(ctx, p, f)
	default:
		if f.Kind == KindRequest {
			_ = p.respondError(f.ID, fmt.Errorf("%w: unknown method %q", ErrBadFrame, f.Method))
		}
	}
}

func (s *Server) handleKey(p *Peer, f Frame) {
	var w KeyEvent
	if err := json.Unmarshal(f.Params, &w); err != nil {
		p.logger.Debug("bad key event", "error", err)
		return
	}
	ev, err := DecodeKey(w)
	if err != nil {
		p.logger.Debug("bad key event", "error", err)
		return
	}
	if p.Surface == WindowSurfaceID(s.config.HostWindowID) {
		if s.keys != nil {
			s.keys.HandleKey(ev)
		}
		return
	}
	if sf := s.surface(p.Surface); sf != nil {
		sf.deliver(ev)
	}
}

func (s *Server) handleTrigger(ctx context.Context, p *Peer, f Frame) {
	msg, err := s.decodeMessage(p, f.Params)
	if err != nil {
		_ = p.respondError(f.ID, err)
		return
	}
	if s.dispatcher == nil {
		_ = p.respondError(f.ID, ErrPeerUnavailable)
		return
	}
	if f.Sync {
		_ = p.respond(f.ID, resultFrame(s.dispatcher.Dispatch(ctx, msg)))
		return
	}
	pending := s.dispatcher.DispatchAsync(ctx, msg)
	go func() {
		res, err := pending.Wait(ctx)
		if err != nil {
			return
		}
		if err := p.respond(f.ID, resultFrame(res)); err != nil {
			p.logger.Debug("deferred response undelivered", "command", msg.Type, "error", err)
		}
	}()
}

// decodeMessage parses a dispatch message. Messages from a window's own
// UI content default to that window.
func (s *Server) decodeMessage(p *Peer, raw json.RawMessage) (command.Message, error) {
	var msg command.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return msg, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	if msg.WinID == 0 && p != nil {
		if id, ok := strings.CutPrefix(p.Surface, "window-"); ok {
			msg.WinID, _ = strconv.Atoi(id)
		}
	}
	return msg, nil
}

func resultFrame(res handler.Result) Frame {
	f := Frame{Status: res.Status.String()}
	if res.Error != nil {
		f.Error = res.Error.Error()
	}
	raw, err := res.JSON()
	if err != nil {
		f.Error = err.Error()
		return f
	}
	f.Result = raw
	return f
}

// triggerResponse is the body of a /msg-trigger reply.
type triggerResponse struct {
	Status  string          `json:"status"`
	Result  json.RawMessage `json:"result"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

func (s *Server) serveTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 8<<20))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	msg, err := s.decodeMessage(nil, body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if s.dispatcher == nil {
		http.Error(w, "dispatcher not ready", http.StatusServiceUnavailable)
		return
	}

	res := s.dispatcher.Dispatch(r.Context(), msg)
	f := resultFrame(res)
	out := triggerResponse{Status: f.Status, Result: f.Result, Error: f.Error, Message: res.Message}
	if len(out.Result) == 0 {
		out.Result = json.RawMessage("null")
	}
	w.Header().Set("Content-Type", "application/json")
	if res.IsError() {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	_ = json.NewEncoder(w).Encode(out)
}

// checkLocalOrigin accepts pages served from the local machine and
// connections without an Origin header.
func checkLocalOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == "null" || strings.HasPrefix(origin, "file://") {
		return true
	}
	host := origin
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return host == "localhost" || host == "127.0.0.1" || host == "[::1]" || host == "::1"
}

func isCloseError(err error) bool {
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
