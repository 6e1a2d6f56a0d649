package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("store.bucket", "leaks"))
	require.NoError(t, store.Set("search.workers", 8))
	require.NoError(t, store.Set("server.rate_burst", int64(4)))
	require.NoError(t, store.Set("server.rate_limit", 2.5))
	require.NoError(t, store.Set("index.watch", true))
	require.NoError(t, store.Set("search.extensions", []any{".txt", 7, ".csv"}))

	assert.Equal(t, "leaks", store.GetString("store.bucket"))
	assert.Equal(t, 8, store.GetInt("search.workers"))
	assert.Equal(t, 4, store.GetInt("server.rate_burst"))
	assert.Equal(t, 2, store.GetInt("server.rate_limit"))
	assert.True(t, store.GetBool("index.watch"))
	assert.Equal(t, []string{".txt", ".csv"}, store.GetStringSlice("search.extensions"))

	assert.Empty(t, store.GetString("search.workers"))
	assert.Zero(t, store.GetInt("store.bucket"))
	assert.False(t, store.GetBool("missing"))
	assert.Nil(t, store.GetStringSlice("store.bucket"))
}

func TestConfigStore_SaveAndLoad(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("search.workers", 16))
	require.NoError(t, store.Set("search.blacklist", []string{"a.csv", "b.txt"}))
	require.NoError(t, store.Save())

	require.NoError(t, store.Set("store.bucket", "unsaved"))
	require.NoError(t, store.Load())

	val, ok := store.Get("search.workers")
	require.True(t, ok)
	assert.Equal(t, int64(16), val)

	val, ok = store.Get("search.blacklist")
	require.True(t, ok)
	assert.Equal(t, []any{"a.csv", "b.txt"}, val)
	assert.Equal(t, []string{"a.csv", "b.txt"}, store.GetStringSlice("search.blacklist"))

	_, ok = store.Get("store.bucket")
	assert.False(t, ok, "unsaved values are dropped on load")
	assert.Equal(t, 1, store.Saves())
}

func TestConfigStore_FailSave(t *testing.T) {
	store := NewConfigStore()
	boom := errors.New("disk full")
	store.FailSave(boom)

	require.NoError(t, store.Set("store.bucket", "leaks"))
	assert.ErrorIs(t, store.Save(), boom)
	assert.Zero(t, store.Saves())

	store.FailSave(nil)
	require.NoError(t, store.Save())
	assert.Equal(t, 1, store.Saves())
}

func TestConfigStore_Path(t *testing.T) {
	assert.Equal(t, ":memory:", NewConfigStore().Path())
}
