// Package handler provides the handler function type and results for
// command dispatch.
package handler

import (
	"context"

	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/dispatcher/execctx"
)

// Func handles one command. ec carries the message data and the resolved
// origin window.
type Func func(ctx context.Context, ec *execctx.Context) Result

// Registrar accepts handler bindings. The dispatcher registry implements
// it; handler packages bind their commands through it.
type Registrar interface {
	Register(name command.Name, fn Func) error
}

// Table is a set of bindings registered together.
type Table map[command.Name]Func

// RegisterAll registers every binding of t with r, stopping at the first
// error.
func RegisterAll(r Registrar, t Table) error {
	for name, fn := range t {
		if err := r.Register(name, fn); err != nil {
			return err
		}
	}
	return nil
}
