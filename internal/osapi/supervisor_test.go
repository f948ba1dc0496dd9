package osapi

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("requires sh")
	}
}

func TestSupervisorRunOutput(t *testing.T) {
	skipWithoutShell(t)
	s := NewSupervisor()

	out, err := s.Run(context.Background(), "sh", "-c", "echo v1.2.3; echo warn >&2")
	require.NoError(t, err)
	assert.Contains(t, out, "v1.2.3")
	assert.Contains(t, out, "warn")
	assert.Eventually(t, func() bool { return s.Count() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSupervisorRunExitCode(t *testing.T) {
	skipWithoutShell(t)
	s := NewSupervisor()

	out, err := s.Run(context.Background(), "sh", "-c", "echo permission denied; exit 3")
	var ee *exec.ExitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 3, ee.ExitCode())
	assert.True(t, strings.Contains(out, "permission"))
}

func TestSupervisorNotFound(t *testing.T) {
	s := NewSupervisor()
	s.lookPath = func(string) (string, error) { return "", exec.ErrNotFound }

	_, err := s.Run(context.Background(), "no-such-tool")
	assert.True(t, errors.Is(err, exec.ErrNotFound))
}

func TestSupervisorContextCancel(t *testing.T) {
	skipWithoutShell(t)
	s := NewSupervisor()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := s.Run(ctx, "sh", "-c", "sleep 5")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSupervisorLimit(t *testing.T) {
	skipWithoutShell(t)
	s := NewSupervisor(WithMaxProcesses(1))
	p, err := s.Start(context.Background(), "sh", "-c", "sleep 5")
	require.NoError(t, err)
	defer p.Kill()

	_, err = s.Start(context.Background(), "sh", "-c", "true")
	assert.ErrorIs(t, err, ErrTooManyProcesses)
}

func TestSupervisorShutdown(t *testing.T) {
	skipWithoutShell(t)
	s := NewSupervisor()
	p, err := s.Start(context.Background(), "sh", "-c", "sleep 5")
	require.NoError(t, err)
	assert.Equal(t, StateRunning, p.State())

	s.Shutdown(time.Second)
	<-p.Done()
	assert.False(t, p.IsRunning())
	assert.True(t, s.IsShuttingDown())

	_, err = s.Run(context.Background(), "sh", "-c", "true")
	assert.ErrorIs(t, err, ErrSupervisorShutdown)
}
