package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
	"github.com/tidwall/sjson"

	"github.com/dshills/quickbar/internal/plugin/manifest"
)

// catalogDocID is the document holding the persisted plugin list.
const catalogDocID = "installed-plugins"

// Catalog is the list of installed plugins. It persists the list to the
// document store and rescans when the install directory changes.
type Catalog struct {
	mu sync.RWMutex

	loader   *Loader
	docs     Documents
	logger   hclog.Logger
	debounce time.Duration

	plugins map[string]*manifest.Descriptor
	order   []string

	onChange []func([]*manifest.Descriptor)

	watcher  *fsnotify.Watcher
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithCatalogStore persists the catalog to docs.
func WithCatalogStore(docs Documents) CatalogOption {
	return func(c *Catalog) { c.docs = docs }
}

// WithCatalogLogger sets the catalog logger.
func WithCatalogLogger(l hclog.Logger) CatalogOption {
	return func(c *Catalog) { c.logger = l }
}

// WithDebounce sets how long the watcher waits for changes to settle.
func WithDebounce(d time.Duration) CatalogOption {
	return func(c *Catalog) { c.debounce = d }
}

// NewCatalog creates a catalog over plugins found by loader.
func NewCatalog(loader *Loader, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		loader:   loader,
		logger:   hclog.NewNullLogger(),
		debounce: 300 * time.Millisecond,
		plugins:  make(map[string]*manifest.Descriptor),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh rescans the install directory and persists the result.
func (c *Catalog) Refresh(ctx context.Context) error {
	infos, err := c.loader.Discover()
	if err != nil {
		return fmt.Errorf("discover plugins: %w", err)
	}

	plugins := make(map[string]*manifest.Descriptor, len(infos))
	order := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.Error != nil {
			c.logger.Warn("skipping plugin", "path", info.Path, "error", info.Error)
			continue
		}
		if _, dup := plugins[info.Name]; dup {
			continue
		}
		plugins[info.Name] = info.Descriptor
		order = append(order, info.Name)
	}

	c.mu.Lock()
	c.plugins = plugins
	c.order = order
	listeners := slices.Clone(c.onChange)
	c.mu.Unlock()

	list := c.List()
	if err := c.persist(ctx, list); err != nil {
		c.logger.Warn("persist catalog", "error", err)
	}
	for _, fn := range listeners {
		fn(list)
	}
	c.logger.Debug("catalog refreshed", "plugins", len(list))
	return nil
}

func (c *Catalog) persist(ctx context.Context, list []*manifest.Descriptor) error {
	if c.docs == nil {
		return nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	doc, err := sjson.SetBytes(nil, "_id", catalogDocID)
	if err != nil {
		return err
	}
	if existing, err := c.docs.Get(ctx, DefaultNamespace, catalogDocID); err == nil && existing != nil {
		var rev struct {
			Rev string `json:"_rev"`
		}
		if json.Unmarshal(existing, &rev) == nil && rev.Rev != "" {
			doc, _ = sjson.SetBytes(doc, "_rev", rev.Rev)
		}
	}
	doc, err = sjson.SetRawBytes(doc, "data", data)
	if err != nil {
		return err
	}
	_, err = c.docs.Put(ctx, DefaultNamespace, doc)
	return err
}

// Restore loads the persisted list without scanning the disk.
func (c *Catalog) Restore(ctx context.Context) error {
	if c.docs == nil {
		return nil
	}
	raw, err := c.docs.Get(ctx, DefaultNamespace, catalogDocID)
	if err != nil || raw == nil {
		return err
	}
	var doc struct {
		Data []*manifest.Descriptor `json:"data"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode catalog: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.plugins = make(map[string]*manifest.Descriptor, len(doc.Data))
	c.order = c.order[:0]
	for _, d := range doc.Data {
		if d == nil || d.Name == "" {
			continue
		}
		c.plugins[d.Name] = d
		c.order = append(c.order, d.Name)
	}
	return nil
}

// Lookup returns the installed plugin named name.
func (c *Catalog) Lookup(name string) (*manifest.Descriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.plugins[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrPluginNotFound)
	}
	return d, nil
}

// List returns the installed plugins sorted by name.
func (c *Catalog) List() []*manifest.Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*manifest.Descriptor, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.plugins[name])
	}
	return out
}

// OnChange registers fn to receive the list after every refresh.
func (c *Catalog) OnChange(fn func([]*manifest.Descriptor)) {
	c.mu.Lock()
	c.onChange = append(c.onChange, fn)
	c.mu.Unlock()
}

// Watch starts watching the install directory, refreshing after changes
// settle. It returns once the watcher is running.
func (c *Catalog) Watch(ctx context.Context) error {
	dir := c.loader.ModulesDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	closeCh := make(chan struct{})
	c.mu.Lock()
	c.watcher = w
	c.closeCh = closeCh
	c.mu.Unlock()

	c.closedWg.Add(1)
	go c.watchLoop(ctx, w, closeCh)
	return nil
}

func (c *Catalog) watchLoop(ctx context.Context, w *fsnotify.Watcher, closeCh <-chan struct{}) {
	defer c.closedWg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-closeCh:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Write) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(c.debounce)
			} else {
				timer.Reset(c.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := c.Refresh(ctx); err != nil {
				c.logger.Warn("refresh catalog", "error", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			c.logger.Warn("catalog watcher", "error", err)
		}
	}
}

// Close stops the watcher.
func (c *Catalog) Close() error {
	c.mu.Lock()
	w := c.watcher
	c.watcher = nil
	if c.closeCh != nil {
		close(c.closeCh)
		c.closeCh = nil
	}
	c.mu.Unlock()

	if w == nil {
		return nil
	}
	err := w.Close()
	c.closedWg.Wait()
	return err
}
