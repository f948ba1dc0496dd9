package osapi

import (
	"bytes"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// State is the state of a supervised program.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateExited
	StateKilled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateKilled:
		return "killed"
	default:
		return "unknown"
	}
}

// Process is one program run by a Supervisor. Its combined output is
// captured in memory.
type Process struct {
	ID      string
	Name    string
	Cmd     *exec.Cmd
	Started time.Time

	output bytes.Buffer
	outMu  sync.Mutex

	state    atomic.Int32
	exitCode atomic.Int32
	done     chan struct{}

	mu      sync.RWMutex
	exitErr error
}

func newProcess(id, name string, cmd *exec.Cmd) *Process {
	p := &Process{ID: id, Name: name, Cmd: cmd, done: make(chan struct{})}
	p.exitCode.Store(-1)
	w := &lockedWriter{mu: &p.outMu, buf: &p.output}
	cmd.Stdout = w
	cmd.Stderr = w
	return p
}

// State returns the current state.
func (p *Process) State() State { return State(p.state.Load()) }

// ExitCode returns the exit code, or -1 before exit.
func (p *Process) ExitCode() int { return int(p.exitCode.Load()) }

// ExitError returns the error reported by the program's exit.
func (p *Process) ExitError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.exitErr
}

// Done is closed when the program exits.
func (p *Process) Done() <-chan struct{} { return p.done }

// IsRunning reports whether the program is running.
func (p *Process) IsRunning() bool { return p.State() == StateRunning }

// Output returns the output captured so far.
func (p *Process) Output() string {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	return p.output.String()
}

// Terminate sends SIGTERM.
func (p *Process) Terminate() error { return p.signal(syscall.SIGTERM) }

// Kill sends SIGKILL.
func (p *Process) Kill() error { return p.signal(syscall.SIGKILL) }

func (p *Process) signal(sig syscall.Signal) error {
	if !p.IsRunning() || p.Cmd.Process == nil {
		return ErrProcessNotRunning
	}
	return p.Cmd.Process.Signal(sig)
}

func (p *Process) start() error {
	if err := p.Cmd.Start(); err != nil {
		return err
	}
	p.Started = time.Now()
	p.state.Store(int32(StateRunning))
	go p.wait()
	return nil
}

func (p *Process) wait() {
	err := p.Cmd.Wait()

	p.mu.Lock()
	p.exitErr = err
	p.mu.Unlock()

	code, state := 0, StateExited
	if err != nil {
		code = -1
		if ee, ok := err.(*exec.ExitError); ok {
			code = ee.ExitCode()
			if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
				state = StateKilled
			}
		}
	}
	p.exitCode.Store(int32(code))
	p.state.Store(int32(state))
	close(p.done)
}

type lockedWriter struct {
	mu  *sync.Mutex
	buf *bytes.Buffer
}

func (w *lockedWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(b)
}
