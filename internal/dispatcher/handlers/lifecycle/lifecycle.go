package lifecycle

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/dispatcher/execctx"
	"github.com/dshills/quickbar/internal/dispatcher/handler"
	"github.com/dshills/quickbar/internal/plugin"
	"github.com/dshills/quickbar/internal/plugin/feature"
	"github.com/dshills/quickbar/internal/plugin/manifest"
	"github.com/dshills/quickbar/internal/view"
)

// Catalog resolves installed plugins by package name.
type Catalog interface {
	Lookup(name string) (*manifest.Descriptor, error)
}

// Handler binds plugin lifecycle commands to a plugin manager.
type Handler struct {
	manager *plugin.Manager
	catalog Catalog
}

// NewHandler creates a lifecycle handler. catalog may be nil, in which
// case open-plugin requires a full descriptor.
func NewHandler(manager *plugin.Manager, catalog Catalog) *Handler {
	return &Handler{manager: manager, catalog: catalog}
}

// Register binds the handler's commands.
func (h *Handler) Register(r handler.Registrar) error {
	return handler.RegisterAll(r, handler.Table{
		command.OpenPlugin:             h.open,
		command.LoadPlugin:             h.load,
		command.RemovePlugin:           h.remove,
		command.DetachPlugin:           h.detach,
		command.ReattachPlugin:         h.reattach,
		command.OpenPluginDevTools:     h.devTools,
		command.AddLocalStartPlugin:    h.localStart(view.CallAddLocalStartPlugin),
		command.RemoveLocalStartPlugin: h.localStart(view.CallRemoveLocalStartPlugin),
		command.SetFeature:             h.setFeature,
		command.RemoveFeature:          h.removeFeature,
		command.GetFeatures:            h.getFeatures,
	})
}

// descriptor decodes the message payload. A payload naming only an
// installed package is completed from the catalog, keeping any ext
// metadata the caller sent.
func (h *Handler) descriptor(ec *execctx.Context) (*manifest.Descriptor, error) {
	var d manifest.Descriptor
	if err := ec.Decode("", &d); err != nil {
		return nil, err
	}
	if h.catalog == nil || d.Main != "" || len(d.Features) > 0 || d.PluginType != "" {
		return &d, nil
	}
	installed, err := h.catalog.Lookup(d.Name)
	if err != nil {
		if errors.Is(err, plugin.ErrPluginNotFound) {
			return &d, nil
		}
		return nil, err
	}
	full := installed.Clone()
	if d.Ext != nil {
		full.Ext = d.Ext
	}
	return full, nil
}

func (h *Handler) open(ctx context.Context, ec *execctx.Context) handler.Result {
	d, err := h.descriptor(ec)
	if err != nil {
		return handler.Error(err)
	}
	return h.openDescriptor(ctx, ec, d)
}

func (h *Handler) openDescriptor(ctx context.Context, ec *execctx.Context, d *manifest.Descriptor) handler.Result {
	if err := h.manager.Open(ctx, d, ec.Host); err != nil {
		if errors.Is(err, plugin.ErrUnsupportedPlatform) {
			return handler.NoOpWithMessage(err.Error())
		}
		return handler.Error(err)
	}
	return handler.Success()
}

func (h *Handler) load(ctx context.Context, ec *execctx.Context) handler.Result {
	d, err := h.descriptor(ec)
	if err != nil {
		return handler.Error(err)
	}
	h.manager.Views().Notify(ctx, ec.Host, view.CallLoadPlugin, d)
	return h.openDescriptor(ctx, ec, d)
}

func (h *Handler) remove(ctx context.Context, ec *execctx.Context) handler.Result {
	h.manager.Remove(ec.Host)
	return handler.Success()
}

func (h *Handler) detach(ctx context.Context, ec *execctx.Context) handler.Result {
	det, err := h.manager.Detach(ctx, ec.Host)
	if err != nil {
		return handler.Error(err)
	}
	if det == nil {
		return handler.NoOpWithMessage("no current plugin")
	}
	return handler.Value(det.Window.ID())
}

// reattach targets the detached window the message came from, or the
// one named by data.windowId.
func (h *Handler) reattach(ctx context.Context, ec *execctx.Context) handler.Result {
	id := int(ec.Param("windowId").Int())
	if id == 0 && ec.Window != nil && !ec.FromHost() {
		id = ec.Window.ID()
	}
	if id == 0 {
		return handler.NoOpWithMessage("no detached window")
	}
	if err := h.manager.Reattach(ctx, ec.Host, id); err != nil {
		if errors.Is(err, view.ErrNotDetached) {
			return handler.NoOpWithMessage(err.Error())
		}
		return handler.Error(err)
	}
	return handler.Success()
}

func (h *Handler) devTools(ctx context.Context, ec *execctx.Context) handler.Result {
	s := h.manager.Views().SurfaceOf(ec.Window)
	if s == nil {
		return handler.NoOp()
	}
	s.OpenDevTools()
	return handler.Success()
}

func (h *Handler) localStart(method string) handler.Func {
	return func(ctx context.Context, ec *execctx.Context) handler.Result {
		p := ec.Param("plugin")
		if !p.Exists() {
			return handler.Error(execctx.ErrMissingParam)
		}
		h.manager.Views().Notify(ctx, ec.Host, method, map[string]json.RawMessage{"plugin": json.RawMessage(p.Raw)})
		return handler.Success()
	}
}

func (h *Handler) setFeature(ctx context.Context, ec *execctx.Context) handler.Result {
	var f feature.Feature
	if err := ec.Decode("feature", &f); err != nil {
		return handler.Error(err)
	}
	return handler.Value(h.manager.SetFeature(ctx, ec.Host, f))
}

func (h *Handler) removeFeature(ctx context.Context, ec *execctx.Context) handler.Result {
	var code feature.Code
	if err := ec.Decode("code", &code); err != nil {
		return handler.Error(err)
	}
	return handler.Value(h.manager.RemoveFeature(ctx, ec.Host, code))
}

// getFeatures returns the current plugin's features, narrowed to the
// codes listed in data.codes when present.
func (h *Handler) getFeatures(ctx context.Context, ec *execctx.Context) handler.Result {
	features := h.manager.Features()
	if features == nil {
		return handler.Value(nil)
	}
	var codes []feature.Code
	if ec.Param("codes").IsArray() {
		if err := ec.Decode("codes", &codes); err != nil {
			return handler.Error(err)
		}
	}
	if len(codes) == 0 {
		return handler.Value(features)
	}
	out := make([]feature.Feature, 0, len(codes))
	for _, c := range codes {
		if f, ok := feature.Find(features, c); ok {
			out = append(out, f)
		}
	}
	return handler.Value(out)
}
