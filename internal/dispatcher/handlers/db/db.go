// Package db provides handlers for plugin-scoped document storage.
//
// Each plugin reads and writes its own namespace, named after the
// plugin; documents written with no plugin open land in the launcher's
// namespace.
package db

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"

	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/dispatcher/execctx"
	"github.com/dshills/quickbar/internal/dispatcher/handler"
	"github.com/dshills/quickbar/internal/plugin"
)

// ErrNoStore is returned when no document store is configured.
var ErrNoStore = errors.New("db: no document store")

// Scope yields the store and the namespace of the current plugin.
type Scope interface {
	Store() plugin.Documents
	Namespace() string
}

// Handler binds document commands.
type Handler struct {
	scope Scope
}

// NewHandler creates a document handler.
func NewHandler(scope Scope) *Handler {
	return &Handler{scope: scope}
}

// Register binds the handler's commands.
func (h *Handler) Register(r handler.Registrar) error {
	return handler.RegisterAll(r, handler.Table{
		command.DBPut:     h.put,
		command.DBGet:     h.get,
		command.DBRemove:  h.remove,
		command.DBAllDocs: h.allDocs,
	})
}

func (h *Handler) store() (plugin.Documents, string, error) {
	s := h.scope.Store()
	if s == nil {
		return nil, "", ErrNoStore
	}
	return s, h.scope.Namespace(), nil
}

// put accepts the document as data.doc or as the payload itself.
func (h *Handler) put(ctx context.Context, ec *execctx.Context) handler.Result {
	s, ns, err := h.store()
	if err != nil {
		return handler.Error(err)
	}
	doc := ec.Param("doc")
	raw := []byte(doc.Raw)
	if !doc.IsObject() {
		raw = ec.Data
	}
	res, err := s.Put(ctx, ns, raw)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Value(res)
}

func (h *Handler) get(ctx context.Context, ec *execctx.Context) handler.Result {
	s, ns, err := h.store()
	if err != nil {
		return handler.Error(err)
	}
	id, err := ec.RequireString("id")
	if err != nil {
		return handler.Error(err)
	}
	doc, err := s.Get(ctx, ns, id)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Value(doc)
}

// remove accepts data.id, or a document carrying "_id".
func (h *Handler) remove(ctx context.Context, ec *execctx.Context) handler.Result {
	s, ns, err := h.store()
	if err != nil {
		return handler.Error(err)
	}
	id := ec.Param("id").String()
	if id == "" {
		id = firstString(ec, "doc._id", "_id")
	}
	if id == "" {
		return handler.Error(execctx.ErrMissingParam)
	}
	res, err := s.Remove(ctx, ns, id)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Value(res)
}

func (h *Handler) allDocs(ctx context.Context, ec *execctx.Context) handler.Result {
	s, ns, err := h.store()
	if err != nil {
		return handler.Error(err)
	}
	docs, err := s.AllDocs(ctx, ns, ec.Param("key").String())
	if err != nil {
		return handler.Error(err)
	}
	if docs == nil {
		docs = []json.RawMessage{}
	}
	return handler.Value(docs)
}

func firstString(ec *execctx.Context, paths ...string) string {
	for _, r := range gjson.GetManyBytes(ec.Data, paths...) {
		if s := r.String(); s != "" {
			return s
		}
	}
	return ""
}
