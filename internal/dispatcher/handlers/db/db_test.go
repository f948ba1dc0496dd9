package db_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/dispatcher/handlers/db"
	"github.com/dshills/quickbar/internal/dispatcher/handlers/handlertest"
	"github.com/dshills/quickbar/internal/plugin"
	"github.com/dshills/quickbar/internal/plugin/manifest"
	"github.com/dshills/quickbar/internal/store"
)

func TestDocumentsAreScopedToCurrentPlugin(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	defer st.Close()

	env := handlertest.New(t, []plugin.ManagerOption{plugin.WithStore(st)})
	env.Add(t, db.NewHandler(env.Manager))

	res := env.Send(t, command.DBPut, `{"_id":"cfg","data":{"theme":"dark"}}`, 0)
	raw, _ := res.JSON()
	if !gjson.GetBytes(raw, "ok").Bool() {
		t.Fatalf("db-put = %s", raw)
	}
	if doc, _ := st.Get(ctx, plugin.DefaultNamespace, "cfg"); doc == nil {
		t.Error("document without plugin not in default namespace")
	}

	if err := env.Manager.Open(ctx, &manifest.Descriptor{Name: "qb-notes"}, env.Host); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	env.Send(t, command.DBPut, `{"doc":{"_id":"note/1","data":"a"}}`, 0)
	env.Send(t, command.DBPut, `{"doc":{"_id":"note/2","data":"b"}}`, 0)

	res = env.Send(t, command.DBGet, `{"id":"cfg"}`, 0)
	if raw, _ := res.JSON(); string(raw) != "null" {
		t.Errorf("db-get leaked across namespaces: %s", raw)
	}

	res = env.Send(t, command.DBAllDocs, `{"key":"note/"}`, 0)
	docs, _ := res.Value.([]json.RawMessage)
	if len(docs) != 2 {
		t.Fatalf("db-all-docs = %+v", res.Value)
	}

	res = env.Send(t, command.DBRemove, `{"doc":{"_id":"note/1"}}`, 0)
	raw, _ = res.JSON()
	if !gjson.GetBytes(raw, "ok").Bool() {
		t.Errorf("db-remove = %s", raw)
	}

	res = env.Send(t, command.DBAllDocs, `{"key":"missing/"}`, 0)
	if raw, _ := res.JSON(); string(raw) != "[]" {
		t.Errorf("empty db-all-docs = %s", raw)
	}
}

func TestNoStore(t *testing.T) {
	env := handlertest.New(t, nil)
	env.Add(t, db.NewHandler(env.Manager))
	if res := env.Send(t, command.DBGet, `{"id":"x"}`, 0); !errors.Is(res.Error, db.ErrNoStore) {
		t.Errorf("db-get without store = %+v", res)
	}
}
