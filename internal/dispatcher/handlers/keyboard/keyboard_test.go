package keyboard_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/dispatcher/handler"
	"github.com/dshills/quickbar/internal/dispatcher/handlers/handlertest"
	"github.com/dshills/quickbar/internal/dispatcher/handlers/keyboard"
)

type recorder struct {
	key       string
	code      int
	modifiers []string
	accept    bool
}

func (r *recorder) Tap(ctx context.Context, key string, modifiers []string) bool {
	r.key, r.modifiers = key, modifiers
	return r.accept
}

func (r *recorder) KeyDown(ctx context.Context, code int, modifiers []string) bool {
	r.code, r.modifiers = code, modifiers
	return r.accept
}

func TestKeyboardCommands(t *testing.T) {
	rec := &recorder{accept: true}
	env := handlertest.New(t, nil)
	env.Add(t, keyboard.NewHandler(rec))

	res := env.Send(t, command.SimulateKeyTap, `{"key":"A","modifier":["ctrl","shift"]}`, 0)
	if !res.IsOK() || rec.key != "A" || !reflect.DeepEqual(rec.modifiers, []string{"ctrl", "shift"}) {
		t.Errorf("simulate-key-tap = %+v, %+v", res, rec)
	}

	res = env.Send(t, command.SendKeyDownEvent, `{"keyCode":13,"modifiers":[]}`, 0)
	if !res.IsOK() || rec.code != 13 || len(rec.modifiers) != 0 {
		t.Errorf("send-key-down-event = %+v, %+v", res, rec)
	}

	rec.accept = false
	if res := env.Send(t, command.SimulateKeyTap, `{"key":"nope"}`, 0); res.Status != handler.StatusNoOp {
		t.Errorf("ignored tap = %+v", res)
	}
}
