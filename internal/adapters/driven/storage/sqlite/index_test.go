package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

func newTestIndexStore(t *testing.T, dir string) *IndexStore {
	t.Helper()
	store, err := NewIndexStore(context.Background(), dir)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func seedLines() []domain.IndexedLine {
	return []domain.IndexedLine{
		{Source: "forum.csv", Content: "alice@example.com:hunter2"},
		{Source: "forum.csv", Content: "bob@example.com:letmein"},
		{Source: "forum.csv", Content: "carol@example.com:qwerty"},
		{Source: "shop.txt", Content: "alice@example.com;0612345678"},
	}
}

func TestIndexStore_InsertAndQuery(t *testing.T) {
	ctx := context.Background()
	store := newTestIndexStore(t, t.TempDir())

	require.NoError(t, store.Insert(ctx, "leaks", seedLines()))

	dbs, err := store.Databases(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"leaks"}, dbs)

	lines, err := store.Query(ctx, "leaks", `"alice@example.com"`, 10)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Contains(t, l.Content, "alice@example.com")
	}

	lines, err = store.Query(ctx, "leaks", `"example.com"`, 2)
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	lines, err = store.Query(ctx, "leaks", `"nobody"`, 10)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestIndexStore_SourcesAndStats(t *testing.T) {
	ctx := context.Background()
	store := newTestIndexStore(t, t.TempDir())
	require.NoError(t, store.Insert(ctx, "leaks", seedLines()))

	sources, err := store.Sources(ctx, "leaks", 0)
	require.NoError(t, err)
	assert.Equal(t, []domain.SourceCount{
		{Source: "forum.csv", Count: 3},
		{Source: "shop.txt", Count: 1},
	}, sources)

	sources, err = store.Sources(ctx, "leaks", 1)
	require.NoError(t, err)
	assert.Len(t, sources, 1)

	stats, err := store.Stats(ctx, "leaks")
	require.NoError(t, err)
	assert.Equal(t, "leaks", stats.Name)
	assert.Equal(t, int64(4), stats.Records)
	assert.Equal(t, int64(2), stats.Sources)
	assert.Positive(t, stats.SizeBytes)
	assert.Equal(t, filepath.Join(store.Dir(), "leaks.db"), stats.Path)
}

func TestIndexStore_DeleteSourceAndClear(t *testing.T) {
	ctx := context.Background()
	store := newTestIndexStore(t, t.TempDir())
	require.NoError(t, store.Insert(ctx, "leaks", seedLines()))

	removed, err := store.DeleteSource(ctx, "leaks", "forum.csv")
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	stats, err := store.Stats(ctx, "leaks")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Records)

	require.NoError(t, store.Clear(ctx, "leaks"))
	stats, err = store.Stats(ctx, "leaks")
	require.NoError(t, err)
	assert.Zero(t, stats.Records)
}

func TestIndexStore_UnknownDatabase(t *testing.T) {
	ctx := context.Background()
	store := newTestIndexStore(t, t.TempDir())

	_, err := store.Query(ctx, "missing", `"x"`, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.Sources(ctx, "missing", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.Stats(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.DeleteSource(ctx, "missing", "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Clear(ctx, "missing"), domain.ErrNotFound)
}

func TestIndexStore_InvalidName(t *testing.T) {
	store := newTestIndexStore(t, t.TempDir())
	for _, name := range []string{"", "..", "a/b", `a\b`, ".hidden"} {
		err := store.Insert(context.Background(), name, seedLines())
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}
}

func TestIndexStore_Reload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	reader := newTestIndexStore(t, dir)
	writer := newTestIndexStore(t, dir)

	require.NoError(t, writer.Insert(ctx, "synced", seedLines()))

	// A database without a records table is ignored.
	other, err := sql.Open("sqlite", filepath.Join(dir, "other.db"))
	require.NoError(t, err)
	_, err = other.Exec("CREATE TABLE things (id INTEGER)")
	require.NoError(t, err)
	require.NoError(t, other.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	require.NoError(t, reader.Reload(ctx))
	dbs, err := reader.Databases(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"synced"}, dbs)

	lines, err := reader.Query(ctx, "synced", `"bob@example.com"`, 5)
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	require.NoError(t, writer.Close())
	require.NoError(t, os.Remove(filepath.Join(dir, "synced.db")))
	require.NoError(t, reader.Reload(ctx))
	dbs, err = reader.Databases(ctx)
	require.NoError(t, err)
	assert.Empty(t, dbs)
}

func TestIndexStore_Watch(t *testing.T) {
	dir := t.TempDir()
	reader := newTestIndexStore(t, dir)
	writer := newTestIndexStore(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reader.Watch(ctx) }()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, writer.Insert(context.Background(), "fresh", seedLines()))

	require.Eventually(t, func() bool {
		dbs, _ := reader.Databases(context.Background())
		return len(dbs) == 1 && dbs[0] == "fresh"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestIsIndexEvent(t *testing.T) {
	tests := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"leaks.db", fsnotify.Create, true},
		{"leaks.db", fsnotify.Write, true},
		{"leaks.db", fsnotify.Remove, true},
		{"leaks.db", fsnotify.Rename, true},
		{"leaks.db", fsnotify.Chmod, false},
		{"leaks.db-wal", fsnotify.Write, false},
		{".leaks.db", fsnotify.Create, false},
		{"leaks.csv", fsnotify.Create, false},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.op.String(), func(t *testing.T) {
			event := fsnotify.Event{Name: filepath.Join("/data", tt.name), Op: tt.op}
			assert.Equal(t, tt.want, isIndexEvent(event))
		})
	}
}
