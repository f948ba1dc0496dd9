package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/quickbar/internal/plugin/manifest"
)

// memDocs is a Documents implementation without revisions.
type memDocs struct {
	mu   sync.Mutex
	docs map[string]json.RawMessage
}

func newMemDocs() *memDocs {
	return &memDocs{docs: make(map[string]json.RawMessage)}
}

func (m *memDocs) Put(ctx context.Context, ns string, doc json.RawMessage) (json.RawMessage, error) {
	id := gjson.GetBytes(doc, "_id").String()
	m.mu.Lock()
	m.docs[ns+"/"+id] = doc
	m.mu.Unlock()
	return json.RawMessage(`{"ok":true}`), nil
}

func (m *memDocs) Get(ctx context.Context, ns, id string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[ns+"/"+id], nil
}

func (m *memDocs) Remove(ctx context.Context, ns, id string) (json.RawMessage, error) {
	m.mu.Lock()
	delete(m.docs, ns+"/"+id)
	m.mu.Unlock()
	return json.RawMessage(`{"ok":true}`), nil
}

func (m *memDocs) AllDocs(ctx context.Context, ns, prefix string) ([]json.RawMessage, error) {
	return nil, nil
}

func writePackage(t *testing.T, root, dir, body string) {
	t.Helper()
	path := filepath.Join(root, "node_modules", dir)
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(path, "package.json"), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoaderDiscover(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "qb-b", `{"name":"qb-b","main":"index.html"}`)
	writePackage(t, root, "qb-a", `{"name":"qb-a"}`)
	writePackage(t, root, "@team/qb-c", `{"name":"@team/qb-c"}`)
	writePackage(t, root, "broken", `{`)

	infos, err := NewLoader(root).Discover()
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(infos) != 4 {
		t.Fatalf("Discover() found %d, want 4", len(infos))
	}

	var names []string
	broken := 0
	for _, info := range infos {
		if info.Error != nil {
			broken++
			continue
		}
		names = append(names, info.Name)
	}
	if broken != 1 {
		t.Errorf("broken = %d, want 1", broken)
	}
	want := []string{"@team/qb-c", "qb-a", "qb-b"}
	for i := range want {
		if i >= len(names) || names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestLoaderMissingDir(t *testing.T) {
	infos, err := NewLoader(filepath.Join(t.TempDir(), "nope")).Discover()
	if err != nil || len(infos) != 0 {
		t.Errorf("Discover() = %v, %v", infos, err)
	}
}

func TestCatalogRefreshPersistRestore(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "qb-a", `{"name":"qb-a","pluginName":"A"}`)
	docs := newMemDocs()
	ctx := context.Background()

	var notified []*manifest.Descriptor
	c := NewCatalog(NewLoader(root), WithCatalogStore(docs))
	c.OnChange(func(list []*manifest.Descriptor) { notified = list })

	if err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if d, err := c.Lookup("qb-a"); err != nil || d.DisplayName() != "A" {
		t.Fatalf("Lookup() = %v, %v", d, err)
	}
	if _, err := c.Lookup("missing"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Lookup(missing) error = %v", err)
	}
	if len(notified) != 1 {
		t.Errorf("OnChange got %d plugins", len(notified))
	}

	restored := NewCatalog(NewLoader(t.TempDir()), WithCatalogStore(docs))
	if err := restored.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if list := restored.List(); len(list) != 1 || list[0].Name != "qb-a" {
		t.Errorf("restored List() = %+v", list)
	}
}

func TestCatalogWatch(t *testing.T) {
	root := t.TempDir()
	c := NewCatalog(NewLoader(root), WithDebounce(20*time.Millisecond))
	refreshed := make(chan int, 4)
	c.OnChange(func(list []*manifest.Descriptor) { refreshed <- len(list) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Watch(ctx); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer c.Close()

	writePackage(t, root, "qb-new", `{"name":"qb-new"}`)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case n := <-refreshed:
			if n == 1 {
				return
			}
		case <-deadline:
			t.Fatal("catalog did not pick up the new plugin")
		}
	}
}
