package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driven"
)

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

// ObjectStore is an in-memory implementation of driven.ObjectStore.
// Objects are listed in insertion order.
type ObjectStore struct {
	mu       sync.RWMutex
	objects  map[string][]byte
	order    []string
	listErr  error
	openErrs map[string]error
	blocking map[string]bool
	onOpen   func(key string)

	opens atomic.Int64
}

// NewObjectStore creates a new in-memory object store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{
		objects:  make(map[string][]byte),
		openErrs: make(map[string]error),
		blocking: make(map[string]bool),
	}
}

// Name returns the store name.
func (s *ObjectStore) Name() string {
	return "memory"
}

// Put stores or replaces an object.
func (s *ObjectStore) Put(key, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		s.order = append(s.order, key)
	}
	s.objects[key] = []byte(content)
}

// FailList makes ListResources return err. A nil err clears it.
func (s *ObjectStore) FailList(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

// FailOpen makes OpenStream of key return err.
func (s *ObjectStore) FailOpen(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openErrs[key] = err
}

// Block makes the stream of key deliver its content and then block on the
// next read until the stream is closed.
func (s *ObjectStore) Block(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocking[key] = true
}

// OnOpen registers a hook called with the key of every opened stream.
func (s *ObjectStore) OnOpen(fn func(key string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onOpen = fn
}

// Opens returns how many streams were opened.
func (s *ObjectStore) Opens() int {
	return int(s.opens.Load())
}

// ListResources returns every stored object.
func (s *ObjectStore) ListResources(_ context.Context) ([]domain.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	resources := make([]domain.Resource, 0, len(s.order))
	for _, key := range s.order {
		resources = append(resources, domain.Resource{Key: key, Size: int64(len(s.objects[key]))})
	}
	return resources, nil
}

// OpenStream returns a reader over the object content.
func (s *ObjectStore) OpenStream(_ context.Context, res domain.Resource) (io.ReadCloser, error) {
	s.opens.Add(1)

	s.mu.RLock()
	hook := s.onOpen
	err := s.openErrs[res.Key]
	content, ok := s.objects[res.Key]
	blocking := s.blocking[res.Key]
	s.mu.RUnlock()

	if hook != nil {
		hook(res.Key)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}

	if !blocking {
		return io.NopCloser(bytes.NewReader(content)), nil
	}

	pr, pw := io.Pipe()
	go func() {
		// The writer stays open: the reader blocks until it is closed.
		_, _ = pw.Write(content)
	}()
	return pr, nil
}
