package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUStoreSetGet(t *testing.T) {
	s, err := NewLRUStore(4)
	require.NoError(t, err)
	ctx := context.Background()

	_, found, err := s.Get(ctx, "list_notebooks_1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "list_notebooks_1", []byte(`[{"guid":"g1","name":"Personal"}]`)))

	value, found, err := s.Get(ctx, "list_notebooks_1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `[{"guid":"g1","name":"Personal"}]`, string(value))
}

func TestLRUStoreOverwrite(t *testing.T) {
	s, err := NewLRUStore(4)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("old")))
	require.NoError(t, s.Set(ctx, "k", []byte("new")))

	value, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "new", string(value))
	assert.Equal(t, 1, s.Len())
}

func TestLRUStoreReturnsCopies(t *testing.T) {
	s, err := NewLRUStore(4)
	require.NoError(t, err)
	ctx := context.Background()

	original := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", original))
	original[0] = 'x'

	value, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "abc", string(value))

	// mutating the returned slice must not leak into the store
	value[0] = 'z'
	again, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestLRUStoreDelete(t *testing.T) {
	s, err := NewLRUStore(4)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))

	_, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLRUStoreEviction(t *testing.T) {
	s, err := NewLRUStore(2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", []byte("1")))
	require.NoError(t, s.Set(ctx, "b", []byte("2")))
	require.NoError(t, s.Set(ctx, "c", []byte("3")))

	_, found, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found, "oldest entry should be evicted")
	assert.Equal(t, 2, s.Len())
}
