package view

import (
	"context"
	"encoding/json"

	"github.com/dshills/quickbar/internal/input/key"
	"github.com/dshills/quickbar/internal/plugin/manifest"
)

// Rect is a window or surface geometry in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point is a screen coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Window is a top-level window that can host one surface below its
// search field: the host window or a detached floating window.
type Window interface {
	// ID returns the stable window id used in command messages.
	ID() int

	Bounds() Rect
	SetBounds(r Rect)
	SetSize(width, height int)

	Show()
	Hide()
	IsVisible() bool

	// SetSurface binds s below the search field. A nil surface unbinds.
	SetSurface(s Surface)
	Surface() Surface

	// Call invokes a function exposed by the window's own UI content.
	Call(ctx context.Context, method string, args any) (json.RawMessage, error)

	Close() error
}

// Surface is a rendering handle for plugin content.
type Surface interface {
	ID() string

	// Load navigates the surface to url.
	Load(ctx context.Context, url string) error
	SetBounds(r Rect)

	// Call invokes a function exposed by the plugin content.
	Call(ctx context.Context, method string, args any) (json.RawMessage, error)

	// SendInputEvent synthesizes a key event into the content.
	SendInputEvent(ev key.Event) error

	// OnInput registers fn to observe key events before the content does.
	OnInput(fn func(key.Event))

	Focus()
	OpenDevTools()
	Close() error
}

// Factory creates surfaces and floating windows.
type Factory interface {
	NewSurface(ctx context.Context, d *manifest.Descriptor) (Surface, error)
	NewDetachedWindow(ctx context.Context, d *manifest.Descriptor, bounds Rect) (Window, error)
}

// Screen reports pointer and display geometry.
type Screen interface {
	CursorPoint() Point
	DisplayBounds(p Point) Rect
}

// Functions exposed by window UI content.
const (
	CallSetCurrentPlugin       = "setCurrentPlugin"
	CallUpdatePlugin           = "updatePlugin"
	CallGetMainInputInfo       = "getMainInputInfo"
	CallSetSubInput            = "setSubInput"
	CallRemoveSubInput         = "removeSubInput"
	CallSetSubInputValue       = "setSubInputValue"
	CallResetInput             = "resetInput"
	CallSetPosition            = "setPosition"
	CallLoadPlugin             = "loadPlugin"
	CallAddLocalStartPlugin    = "addLocalStartPlugin"
	CallRemoveLocalStartPlugin = "removeLocalStartPlugin"
)

// CallExecuteHook is exposed by plugin content.
const CallExecuteHook = "executeHook"
