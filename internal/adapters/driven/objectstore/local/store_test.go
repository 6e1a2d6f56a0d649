package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestStore_ListResources(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.csv", "bob@example.com\n")
	writeFile(t, root, "a.txt", "alice@example.com\n")
	writeFile(t, root, "nested/c.log", "carol@example.com\n")
	writeFile(t, root, "empty.txt", "")
	writeFile(t, root, "image.png", "png")
	writeFile(t, root, ".hidden/d.txt", "dave@example.com\n")
	writeFile(t, root, ".e.txt", "eve@example.com\n")

	store, err := NewStore(root, domain.DefaultExtensions())
	require.NoError(t, err)

	resources, err := store.ListResources(context.Background())
	require.NoError(t, err)

	keys := make([]string, 0, len(resources))
	for _, r := range resources {
		keys = append(keys, r.Key)
		assert.Positive(t, r.Size)
	}
	assert.Equal(t, []string{"a.txt", "b.csv", "nested/c.log"}, keys)
}

func TestStore_OpenStream(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "nested/c.log", "carol@example.com\n")

	store, err := NewStore(root, domain.DefaultExtensions())
	require.NoError(t, err)

	rc, err := store.OpenStream(context.Background(), domain.Resource{Key: "nested/c.log"})
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "carol@example.com\n", string(data))

	_, err = store.OpenStream(context.Background(), domain.Resource{Key: "missing.txt"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNewStore_Errors(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "missing"), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	root := t.TempDir()
	writeFile(t, root, "file.txt", "x")
	_, err = NewStore(filepath.Join(root, "file.txt"), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
