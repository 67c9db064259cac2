package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalRequiresRoot(t *testing.T) {
	_, err := NewLocal("")
	require.Error(t, err)
}

func TestSave(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocal(root)
	require.NoError(t, err)

	data := []byte{0xff, 0xd8, 0xff}
	rel, err := store.Save(context.Background(), "alice", "fridge.JPG", data)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rel, "alice/"), "blob lives under the owner's directory")
	assert.True(t, strings.HasSuffix(rel, ".jpg"), "extension is lowercased")

	written, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, data, written)
}

func TestSaveStripsUnknownExtension(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save(context.Background(), "alice", "payload.exe", []byte{0x01})
	require.NoError(t, err)
	assert.False(t, strings.Contains(rel, "."), "unknown extensions are dropped")
}

func TestSaveRejectsEmptyInput(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "", "a.png", []byte{0x01})
	require.Error(t, err)

	_, err = store.Save(context.Background(), "alice", "a.png", nil)
	require.Error(t, err)
}
