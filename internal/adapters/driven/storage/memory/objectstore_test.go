package memory

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

func TestObjectStore_ListResources_InsertionOrder(t *testing.T) {
	store := NewObjectStore()
	store.Put("data-files/b.txt", "bb")
	store.Put("data-files/a.txt", "a")
	store.Put("data-files/b.txt", "bbb")

	resources, err := store.ListResources(context.Background())
	require.NoError(t, err)
	require.Len(t, resources, 2)
	assert.Equal(t, "data-files/b.txt", resources[0].Key)
	assert.Equal(t, int64(3), resources[0].Size)
	assert.Equal(t, "data-files/a.txt", resources[1].Key)
}

func TestObjectStore_FailList(t *testing.T) {
	store := NewObjectStore()
	store.FailList(errors.New("boom"))

	_, err := store.ListResources(context.Background())
	assert.Error(t, err)

	store.FailList(nil)
	_, err = store.ListResources(context.Background())
	assert.NoError(t, err)
}

func TestObjectStore_OpenStream(t *testing.T) {
	store := NewObjectStore()
	store.Put("a.txt", "line1\nline2\n")

	rc, err := store.OpenStream(context.Background(), domain.Resource{Key: "a.txt"})
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\n", string(data))
	assert.Equal(t, 1, store.Opens())
}

func TestObjectStore_OpenStream_Missing(t *testing.T) {
	store := NewObjectStore()
	_, err := store.OpenStream(context.Background(), domain.Resource{Key: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestObjectStore_OpenStream_Fail(t *testing.T) {
	store := NewObjectStore()
	store.Put("a.txt", "x")
	store.FailOpen("a.txt", errors.New("denied"))

	_, err := store.OpenStream(context.Background(), domain.Resource{Key: "a.txt"})
	assert.EqualError(t, err, "denied")
}

func TestObjectStore_Block_UnblocksOnClose(t *testing.T) {
	store := NewObjectStore()
	store.Put("a.txt", "abc")
	store.Block("a.txt")

	rc, err := store.OpenStream(context.Background(), domain.Resource{Key: "a.txt"})
	require.NoError(t, err)

	buf := make([]byte, 3)
	_, err = io.ReadFull(rc, buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf))

	done := make(chan error, 1)
	go func() {
		_, err := rc.Read(buf)
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("read returned before close")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, rc.Close())
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("read did not unblock")
	}
}

func TestObjectStore_OnOpen(t *testing.T) {
	store := NewObjectStore()
	store.Put("a.txt", "x")

	var opened []string
	store.OnOpen(func(key string) { opened = append(opened, key) })

	rc, err := store.OpenStream(context.Background(), domain.Resource{Key: "a.txt"})
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, []string{"a.txt"}, opened)
}
