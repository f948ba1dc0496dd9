package osapi

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// Supervisor runs external programs and tracks them until they exit.
// It is safe for concurrent use.
type Supervisor struct {
	mu        sync.RWMutex
	processes map[string]*Process

	closed       atomic.Bool
	maxProcesses int
	logger       hclog.Logger

	// lookPath resolves program names; replaced in tests.
	lookPath func(string) (string, error)
}

// SupervisorOption configures a Supervisor.
type SupervisorOption func(*Supervisor)

// WithMaxProcesses limits concurrently running programs. Zero means
// unlimited.
func WithMaxProcesses(n int) SupervisorOption {
	return func(s *Supervisor) { s.maxProcesses = n }
}

// WithSupervisorLogger sets the logger.
func WithSupervisorLogger(l hclog.Logger) SupervisorOption {
	return func(s *Supervisor) { s.logger = l }
}

// NewSupervisor creates a supervisor.
func NewSupervisor(opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		processes: make(map[string]*Process),
		logger:    hclog.NewNullLogger(),
		lookPath:  exec.LookPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts name with args, waits for it to exit and returns its
// combined output. A program that cannot be found yields an error
// wrapping exec.ErrNotFound. A non-zero exit returns the output together
// with the *exec.ExitError.
func (s *Supervisor) Run(ctx context.Context, name string, args ...string) (string, error) {
	p, err := s.Start(ctx, name, args...)
	if err != nil {
		return "", err
	}
	select {
	case <-p.Done():
	case <-ctx.Done():
		_ = p.Kill()
		<-p.Done()
		return p.Output(), ctx.Err()
	}
	return p.Output(), p.ExitError()
}

// Start starts name with args and returns the tracked process.
func (s *Supervisor) Start(ctx context.Context, name string, args ...string) (*Process, error) {
	path, err := s.lookPath(name)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil, ErrSupervisorShutdown
	}
	if s.maxProcesses > 0 && len(s.processes) >= s.maxProcesses {
		return nil, fmt.Errorf("run %s: %w (%d)", name, ErrTooManyProcesses, s.maxProcesses)
	}

	cmd := exec.Command(path, args...)
	p := newProcess(uuid.New().String(), name, cmd)
	if err := p.start(); err != nil {
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	s.processes[p.ID] = p
	s.logger.Debug("process started", "id", p.ID, "name", name, "args", strings.Join(args, " "))

	go s.monitor(p)
	return p, nil
}

func (s *Supervisor) monitor(p *Process) {
	<-p.Done()
	s.logger.Debug("process exited", "id", p.ID, "name", p.Name, "code", p.ExitCode(), "state", p.State().String())
	s.mu.Lock()
	delete(s.processes, p.ID)
	s.mu.Unlock()
}

// Get returns the running process with id, or nil.
func (s *Supervisor) Get(id string) *Process {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.processes[id]
}

// Count returns the number of running processes.
func (s *Supervisor) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.processes)
}

// IsShuttingDown reports whether Shutdown was called.
func (s *Supervisor) IsShuttingDown() bool {
	return s.closed.Load()
}

// Shutdown terminates running programs, waiting up to timeout before
// killing the rest. Later calls to Run fail.
func (s *Supervisor) Shutdown(timeout time.Duration) {
	if s.closed.Swap(true) {
		return
	}

	s.mu.RLock()
	procs := make([]*Process, 0, len(s.processes))
	for _, p := range s.processes {
		procs = append(procs, p)
	}
	s.mu.RUnlock()
	if len(procs) == 0 {
		return
	}

	for _, p := range procs {
		_ = p.Terminate()
	}
	done := make(chan struct{})
	go func() {
		for _, p := range procs {
			<-p.Done()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		for _, p := range procs {
			if p.IsRunning() {
				s.logger.Warn("killing process", "id", p.ID, "name", p.Name)
				_ = p.Kill()
			}
		}
		<-done
	}
}
