package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotebookScanNull(t *testing.T) {
	var n Notebook
	require.NoError(t, n.Scan(nil))
	assert.Empty(t, n.GUID)
	assert.Empty(t, n.Name)
}

func TestNotebookScanBytes(t *testing.T) {
	var n Notebook
	require.NoError(t, n.Scan([]byte(`{"guid":"g1","name":"Personal"}`)))
	assert.Equal(t, "g1", n.GUID)
	assert.Equal(t, "Personal", n.Name)
}

func TestNotebookValueNil(t *testing.T) {
	var n *Notebook
	v, err := n.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestPlacesValueNilIsEmptyObject(t *testing.T) {
	var p Places
	v, err := p.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)
}

func TestPlacesScanString(t *testing.T) {
	var p Places
	require.NoError(t, p.Scan(`{"nb-guid":"note-guid"}`))
	assert.Equal(t, "note-guid", p["nb-guid"])
}

func TestPlacesScanRejectsUnknownType(t *testing.T) {
	var p Places
	assert.Error(t, p.Scan(42))
}
