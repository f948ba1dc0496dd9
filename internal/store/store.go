// Package store persists plugin documents in SQLite through bun.
//
// Documents are JSON objects identified by "_id" within a namespace.
// Every successful write assigns a new "_rev"; writing a document whose
// "_rev" does not match the stored revision is rejected as a conflict.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"
)

// Store errors.
var (
	// ErrMissingID is returned for documents without an "_id".
	ErrMissingID = errors.New("store: document has no _id")

	// ErrConflict is returned when "_rev" does not match the stored revision.
	ErrConflict = errors.New("store: document update conflict")

	// ErrNotFound is returned when removing a missing document.
	ErrNotFound = errors.New("store: document not found")
)

// Document is one stored JSON document.
type Document struct {
	bun.BaseModel `bun:"table:documents"`

	Namespace string    `bun:"namespace,pk"`
	ID        string    `bun:"id,pk"`
	Rev       string    `bun:"rev,notnull"`
	Data      string    `bun:"data,notnull"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Store is a namespaced JSON document store.
type Store struct {
	db *bun.DB
}

// Open opens or creates the database at dsn. ":memory:" opens a private
// in-memory database.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == ":memory:" {
		dsn = "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	conn.SetMaxIdleConns(1)

	db := bun.NewDB(conn, sqlitedialect.New())
	if _, err := db.NewCreateTable().Model((*Document)(nil)).IfNotExists().Exec(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Result is the outcome of a write, in the shape plugin content expects.
type Result struct {
	ID      string `json:"id"`
	Rev     string `json:"rev,omitempty"`
	OK      bool   `json:"ok,omitempty"`
	Error   bool   `json:"error,omitempty"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message,omitempty"`
}

func failure(id string, err error) Result {
	name := "exception"
	switch {
	case errors.Is(err, ErrConflict):
		name = "conflict"
	case errors.Is(err, ErrNotFound):
		name = "not_found"
	case errors.Is(err, ErrMissingID):
		name = "bad_request"
	}
	return Result{ID: id, Error: true, Name: name, Message: err.Error()}
}

// PutDoc writes doc into ns and returns its new revision.
func (s *Store) PutDoc(ctx context.Context, ns string, doc []byte) (string, error) {
	id := gjson.GetBytes(doc, "_id").String()
	if id == "" {
		return "", ErrMissingID
	}
	rev := gjson.GetBytes(doc, "_rev").String()

	var newRev string
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var existing Document
		err := tx.NewSelect().Model(&existing).
			Where("namespace = ?", ns).
			Where("id = ?", id).
			Scan(ctx)
		found := err == nil
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if found && existing.Rev != rev {
			return ErrConflict
		}
		if !found && rev != "" {
			return ErrConflict
		}

		newRev = nextRev(existing.Rev)
		data, err := sjson.SetBytes(doc, "_rev", newRev)
		if err != nil {
			return err
		}
		row := Document{Namespace: ns, ID: id, Rev: newRev, Data: string(data), UpdatedAt: time.Now()}
		_, err = tx.NewInsert().Model(&row).
			On("CONFLICT (namespace, id) DO UPDATE").
			Set("rev = EXCLUDED.rev, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		return err
	})
	if err != nil {
		return "", err
	}
	return newRev, nil
}

// Put is PutDoc with the outcome encoded as a Result.
func (s *Store) Put(ctx context.Context, ns string, doc json.RawMessage) (json.RawMessage, error) {
	id := gjson.GetBytes(doc, "_id").String()
	rev, err := s.PutDoc(ctx, ns, doc)
	if err != nil {
		if isDocError(err) {
			return json.Marshal(failure(id, err))
		}
		return nil, err
	}
	return json.Marshal(Result{ID: id, Rev: rev, OK: true})
}

// Get returns the document id in ns, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, ns, id string) (json.RawMessage, error) {
	var d Document
	err := s.db.NewSelect().Model(&d).
		Where("namespace = ?", ns).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(d.Data), nil
}

// Remove deletes document id from ns.
func (s *Store) Remove(ctx context.Context, ns, id string) (json.RawMessage, error) {
	res, err := s.db.NewDelete().Model((*Document)(nil)).
		Where("namespace = ?", ns).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return json.Marshal(failure(id, ErrNotFound))
	}
	return json.Marshal(Result{ID: id, OK: true})
}

// AllDocs returns the documents of ns whose id starts with prefix,
// ordered by id.
func (s *Store) AllDocs(ctx context.Context, ns, prefix string) ([]json.RawMessage, error) {
	var docs []Document
	q := s.db.NewSelect().Model(&docs).Where("namespace = ?", ns).Order("id ASC")
	if prefix != "" {
		q = q.Where("id LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		out[i] = json.RawMessage(d.Data)
	}
	return out, nil
}

func isDocError(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrMissingID) || errors.Is(err, ErrNotFound)
}

// nextRev returns the revision following rev, "<generation>-<hash>".
func nextRev(rev string) string {
	gen := 0
	if i := strings.IndexByte(rev, '-'); i > 0 {
		gen, _ = strconv.Atoi(rev[:i])
	}
	return fmt.Sprintf("%d-%s", gen+1, strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
