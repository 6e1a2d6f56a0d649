package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driven"
)

// Ensure IndexStore implements the interfaces.
var (
	_ driven.IndexStore  = (*IndexStore)(nil)
	_ driven.IndexWriter = (*IndexStore)(nil)
)

// IndexStore is an in-memory implementation of driven.IndexStore and
// driven.IndexWriter. Match expressions are treated as a quoted phrase and
// matched as a case-insensitive substring.
type IndexStore struct {
	mu       sync.RWMutex
	dbs      map[string][]domain.IndexedLine
	queryErr error
}

// NewIndexStore creates a new in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{dbs: make(map[string][]domain.IndexedLine)}
}

// FailQuery makes Query return err. A nil err clears it.
func (s *IndexStore) FailQuery(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryErr = err
}

// Databases returns the database names, sorted.
func (s *IndexStore) Databases(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.dbs))
	for name := range s.dbs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Query returns up to limit lines of db containing the match phrase.
func (s *IndexStore) Query(_ context.Context, db, match string, limit int) ([]domain.IndexedLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	lines, ok := s.dbs[db]
	if !ok {
		return nil, domain.ErrNotFound
	}

	phrase := strings.ToLower(unquote(match))
	var out []domain.IndexedLine
	for _, l := range lines {
		if len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(l.Content), phrase) {
			out = append(out, l)
		}
	}
	return out, nil
}

// Sources returns the line count per source, largest first.
func (s *IndexStore) Sources(_ context.Context, db string, limit int) ([]domain.SourceCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines, ok := s.dbs[db]
	if !ok {
		return nil, domain.ErrNotFound
	}

	counts := make(map[string]int64)
	for _, l := range lines {
		counts[l.Source]++
	}
	out := make([]domain.SourceCount, 0, len(counts))
	for src, n := range counts {
		out = append(out, domain.SourceCount{Source: src, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Source < out[j].Source
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Stats describes one database.
func (s *IndexStore) Stats(_ context.Context, db string) (*domain.IndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines, ok := s.dbs[db]
	if !ok {
		return nil, domain.ErrNotFound
	}

	sources := make(map[string]struct{})
	var size int64
	for _, l := range lines {
		sources[l.Source] = struct{}{}
		size += int64(len(l.Source) + len(l.Content))
	}
	return &domain.IndexStats{
		Name:      db,
		Records:   int64(len(lines)),
		Sources:   int64(len(sources)),
		SizeBytes: size,
	}, nil
}

// Reload is a no-op.
func (s *IndexStore) Reload(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (s *IndexStore) Close() error {
	return nil
}

// Insert appends lines to db, creating it when missing.
func (s *IndexStore) Insert(_ context.Context, db string, lines []domain.IndexedLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dbs[db] = append(s.dbs[db], lines...)
	return nil
}

// DeleteSource removes every line of source from db.
func (s *IndexStore) DeleteSource(_ context.Context, db, source string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines, ok := s.dbs[db]
	if !ok {
		return 0, domain.ErrNotFound
	}
	kept := lines[:0]
	var removed int64
	for _, l := range lines {
		if l.Source == source {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	s.dbs[db] = kept
	return removed, nil
}

// Clear removes every line of db.
func (s *IndexStore) Clear(_ context.Context, db string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dbs[db]; !ok {
		return domain.ErrNotFound
	}
	s.dbs[db] = nil
	return nil
}

func unquote(match string) string {
	match = strings.TrimSpace(match)
	if len(match) >= 2 && strings.HasPrefix(match, `"`) && strings.HasSuffix(match, `"`) {
		match = match[1 : len(match)-1]
	}
	return strings.ReplaceAll(match, `""`, `"`)
}
