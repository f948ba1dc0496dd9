package dispatcher

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/dispatcher/handler"
)

// Pending is the handle of a deferred command.
type Pending struct {
	// ID identifies the command in logs and on the wire.
	ID string

	// Command is the command being run.
	Command command.Name

	once   sync.Once
	done   chan struct{}
	result handler.Result
}

func newPending(name command.Name) *Pending {
	return &Pending{
		ID:      uuid.NewString(),
		Command: name,
		done:    make(chan struct{}),
	}
}

func (p *Pending) resolve(r handler.Result) {
	p.once.Do(func() {
		p.result = r
		close(p.done)
	})
}

// Done is closed once the result is available.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Result returns the result and whether it is available yet.
func (p *Pending) Result() (handler.Result, bool) {
	select {
	case <-p.done:
		return p.result, true
	default:
		return handler.Result{}, false
	}
}

// Wait blocks until the result is available or ctx ends. The command
// keeps running when ctx ends first.
func (p *Pending) Wait(ctx context.Context) (handler.Result, error) {
	select {
	case <-p.done:
		return p.result, nil
	case <-ctx.Done():
		return handler.Result{}, ctx.Err()
	}
}
