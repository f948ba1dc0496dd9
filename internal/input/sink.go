package input

import (
	"context"
	"errors"

	"github.com/dshills/quickbar/internal/input/key"
	"github.com/dshills/quickbar/internal/view"
)

// ErrNoSurface is returned by sinks asked to deliver into a nil surface.
var ErrNoSurface = errors.New("input: no surface")

// Sink delivers one synthesized key press.
type Sink interface {
	Send(ctx context.Context, s view.Surface, ev key.Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, s view.Surface, ev key.Event) error

// Send implements Sink.
func (f SinkFunc) Send(ctx context.Context, s view.Surface, ev key.Event) error {
	return f(ctx, s, ev)
}

// SurfaceSink synthesizes a key-down followed by a key-up into the
// surface content.
type SurfaceSink struct{}

// Send implements Sink.
func (SurfaceSink) Send(ctx context.Context, s view.Surface, ev key.Event) error {
	if s == nil {
		return ErrNoSurface
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	ev.Type = key.TypeDown
	if err := s.SendInputEvent(ev); err != nil {
		return err
	}
	ev.Type = key.TypeUp
	return s.SendInputEvent(ev)
}
