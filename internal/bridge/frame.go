package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/dshills/quickbar/internal/input/key"
)

// Kind is the frame kind.
type Kind string

const (
	KindRequest  Kind = "request"
	KindResponse Kind = "response"
	KindEvent    Kind = "event"
)

// Methods sent by content.
const (
	MethodMsgTrigger = "msg-trigger"
	MethodKey        = "key"
)

// Frame is one websocket message.
type Frame struct {
	ID     string          `json:"id,omitempty"`
	Kind   Kind            `json:"kind"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Status string          `json:"status,omitempty"`
	Error  string          `json:"error,omitempty"`
	Sync   bool            `json:"sync,omitempty"`
}

// KeyEvent is the wire form of a key event.
type KeyEvent struct {
	Type      string   `json:"type"`
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers,omitempty"`
}

// EncodeKey converts ev to its wire form.
func EncodeKey(ev key.Event) KeyEvent {
	mods := ev.ModifierOrder
	if len(mods) == 0 {
		mods = ev.Modifiers.Names()
	}
	return KeyEvent{Type: ev.Type.String(), Key: ev.Code(), Modifiers: mods}
}

// DecodeKey converts a wire key event. Unknown key names are an error.
func DecodeKey(w KeyEvent) (key.Event, error) {
	k, r, ok := key.Lookup(w.Key)
	if !ok {
		return key.Event{}, fmt.Errorf("%w: unknown key %q", ErrBadFrame, w.Key)
	}
	ev := key.NewEvent(k, r, key.ParseModifiers(w.Modifiers))
	if w.Type == key.TypeUp.String() {
		ev.Type = key.TypeUp
	}
	return ev, nil
}

func marshalParams(v any) (json.RawMessage, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return t, nil
	}
	return json.Marshal(v)
}
