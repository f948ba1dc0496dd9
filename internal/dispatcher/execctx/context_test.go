package execctx

import (
	"errors"
	"testing"

	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/view"
	"github.com/dshills/quickbar/internal/view/viewtest"
)

func TestParamAndDecode(t *testing.T) {
	host := viewtest.NewWindow(1, view.Rect{Width: 800, Height: 60})
	ec := New(command.Message{Type: command.SetExpandHeight, Data: []byte(`{"height":300,"opts":{"a":[1,2]}}`)}, host, host)

	if got := ec.Param("height").Int(); got != 300 {
		t.Errorf("Param(height) = %d", got)
	}
	var opts struct{ A []int }
	if err := ec.Decode("opts", &opts); err != nil || len(opts.A) != 2 {
		t.Errorf("Decode(opts) = %+v, %v", opts, err)
	}
	if err := ec.Decode("missing", &opts); !errors.Is(err, ErrMissingParam) {
		t.Errorf("Decode(missing) error = %v", err)
	}
	if _, err := ec.RequireString("name"); !errors.Is(err, ErrMissingParam) {
		t.Errorf("RequireString(name) error = %v", err)
	}
	if !ec.FromHost() {
		t.Error("FromHost() = false")
	}
}

func TestEmptyData(t *testing.T) {
	ec := New(command.Message{Type: command.Beep}, nil, nil)
	if ec.Param("x").Exists() {
		t.Error("Param on empty data exists")
	}
	if ec.HasWindow() || ec.FromHost() {
		t.Error("context without windows reports a window")
	}
}
