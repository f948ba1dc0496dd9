package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	res, err := s.Put(ctx, "notes", json.RawMessage(`{"_id":"n1","data":{"text":"hi"}}`))
	require.NoError(t, err)
	assert.True(t, gjson.GetBytes(res, "ok").Bool())
	rev := gjson.GetBytes(res, "rev").String()
	assert.Regexp(t, `^1-[0-9a-f]{32}$`, rev)

	doc, err := s.Get(ctx, "notes", "n1")
	require.NoError(t, err)
	assert.Equal(t, "hi", gjson.GetBytes(doc, "data.text").String())
	assert.Equal(t, rev, gjson.GetBytes(doc, "_rev").String())

	missing, err := s.Get(ctx, "notes", "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPutConflict(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	rev, err := s.PutDoc(ctx, "ns", []byte(`{"_id":"a","v":1}`))
	require.NoError(t, err)

	_, err = s.PutDoc(ctx, "ns", []byte(`{"_id":"a","v":2}`))
	assert.ErrorIs(t, err, ErrConflict)

	res, err := s.Put(ctx, "ns", json.RawMessage(`{"_id":"a","v":2,"_rev":"9-stale"}`))
	require.NoError(t, err)
	assert.True(t, gjson.GetBytes(res, "error").Bool())
	assert.Equal(t, "conflict", gjson.GetBytes(res, "name").String())

	doc, _ := json.Marshal(map[string]any{"_id": "a", "v": 2, "_rev": rev})
	next, err := s.PutDoc(ctx, "ns", doc)
	require.NoError(t, err)
	assert.Regexp(t, `^2-`, next)
}

func TestPutMissingID(t *testing.T) {
	s := openTest(t)
	res, err := s.Put(context.Background(), "ns", json.RawMessage(`{"v":1}`))
	require.NoError(t, err)
	assert.Equal(t, "bad_request", gjson.GetBytes(res, "name").String())
}

func TestNamespacesAreIsolated(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	_, err := s.PutDoc(ctx, "a", []byte(`{"_id":"x"}`))
	require.NoError(t, err)

	doc, err := s.Get(ctx, "b", "x")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestRemove(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	_, err := s.PutDoc(ctx, "ns", []byte(`{"_id":"x"}`))
	require.NoError(t, err)

	res, err := s.Remove(ctx, "ns", "x")
	require.NoError(t, err)
	assert.True(t, gjson.GetBytes(res, "ok").Bool())

	res, err = s.Remove(ctx, "ns", "x")
	require.NoError(t, err)
	assert.Equal(t, "not_found", gjson.GetBytes(res, "name").String())
}

func TestAllDocsPrefix(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	for _, id := range []string{"todo/2", "todo/1", "done/1", "todo_x"} {
		_, err := s.PutDoc(ctx, "ns", []byte(`{"_id":"`+id+`"}`))
		require.NoError(t, err)
	}

	docs, err := s.AllDocs(ctx, "ns", "todo/")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "todo/1", gjson.GetBytes(docs[0], "_id").String())
	assert.Equal(t, "todo/2", gjson.GetBytes(docs[1], "_id").String())

	all, err := s.AllDocs(ctx, "ns", "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qb.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = s.PutDoc(ctx, "ns", []byte(`{"_id":"keep"}`))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	doc, err := s.Get(ctx, "ns", "keep")
	require.NoError(t, err)
	assert.NotNil(t, doc)
}
