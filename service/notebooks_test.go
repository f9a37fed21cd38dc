package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evernotebot/cache"
	"evernotebot/evernote"
	"evernotebot/storage"
)

func newCacheStore(t *testing.T) *cache.LRUStore {
	t.Helper()
	store, err := cache.NewLRUStore(16)
	require.NoError(t, err)
	return store
}

func testUser() *storage.User {
	return &storage.User{
		ID:                  42,
		TelegramChatID:      100,
		EvernoteAccessToken: "token-42",
		Mode:                storage.ModeMultipleNotes,
		Places:              storage.Places{},
	}
}

func TestNotebooksListMissThenHit(t *testing.T) {
	notes := &fakeNotes{notebooks: []evernote.Notebook{
		{GUID: "g1", Name: "Personal"},
		{GUID: "g2", Name: "Work"},
	}}
	svc := NewNotebooks(newCacheStore(t), notes)
	ctx := context.Background()
	u := testUser()

	first, err := svc.List(ctx, u)
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Equal(t, 1, notes.listCalls)

	// Second call is served from cache: zero note-service calls.
	second, err := svc.List(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, notes.listCalls)
}

func TestNotebooksUpdateCacheRefreshes(t *testing.T) {
	notes := &fakeNotes{notebooks: []evernote.Notebook{{GUID: "g1", Name: "Personal"}}}
	svc := NewNotebooks(newCacheStore(t), notes)
	ctx := context.Background()
	u := testUser()

	_, err := svc.List(ctx, u)
	require.NoError(t, err)

	// The underlying list changes; the cached value must not reflect it
	// until the explicit refresh.
	notes.notebooks = append(notes.notebooks, evernote.Notebook{GUID: "g2", Name: "Work"})
	cached, err := svc.List(ctx, u)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	refreshed, err := svc.UpdateCache(ctx, u)
	require.NoError(t, err)
	assert.Len(t, refreshed, 2)

	after, err := svc.List(ctx, u)
	require.NoError(t, err)
	assert.Len(t, after, 2)
	assert.Equal(t, 2, notes.listCalls, "one miss plus one explicit refresh")
}

func TestNotebooksUpdateCacheIdempotent(t *testing.T) {
	notes := &fakeNotes{notebooks: []evernote.Notebook{{GUID: "g1", Name: "Personal"}}}
	svc := NewNotebooks(newCacheStore(t), notes)
	ctx := context.Background()
	u := testUser()

	first, err := svc.UpdateCache(ctx, u)
	require.NoError(t, err)
	second, err := svc.UpdateCache(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	cached, err := svc.List(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, first, cached)
}

func TestNotebooksFetchFailureNotCached(t *testing.T) {
	notes := &fakeNotes{listErr: errors.New("evernote down")}
	store := newCacheStore(t)
	svc := NewNotebooks(store, notes)
	ctx := context.Background()
	u := testUser()

	_, err := svc.List(ctx, u)
	require.Error(t, err)
	assert.Equal(t, 0, store.Len(), "a failure must never be stored")

	// Service recovers: next call fetches again and caches the result.
	notes.listErr = nil
	notes.notebooks = []evernote.Notebook{{GUID: "g1", Name: "Personal"}}
	got, err := svc.List(ctx, u)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, store.Len())
}

func TestNotebooksCorruptEntryRefetched(t *testing.T) {
	notes := &fakeNotes{notebooks: []evernote.Notebook{{GUID: "g1", Name: "Personal"}}}
	store := newCacheStore(t)
	svc := NewNotebooks(store, notes)
	ctx := context.Background()
	u := testUser()

	require.NoError(t, store.Set(ctx, "list_notebooks_42", []byte("not json")))

	got, err := svc.List(ctx, u)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, notes.listCalls)
}
