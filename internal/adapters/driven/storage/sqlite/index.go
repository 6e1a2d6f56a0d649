package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-scan/internal/logger"
)

// Ensure IndexStore implements the interfaces.
var (
	_ driven.IndexStore  = (*IndexStore)(nil)
	_ driven.IndexWriter = (*IndexStore)(nil)
)

// DBExt is the file extension of index databases.
const DBExt = ".db"

const createRecords = `CREATE VIRTUAL TABLE IF NOT EXISTS records USING fts5(source, content)`

// indexDB is one open index database.
type indexDB struct {
	db      *sql.DB
	path    string
	size    int64
	modTime time.Time
	// written is set for databases opened by the writer. Their changes
	// come from this process, so Reload never reopens them.
	written bool
}

// IndexStore serves every *.db file in a directory that holds an FTS5
// records(source, content) table. Databases are named by their file name
// without the extension.
type IndexStore struct {
	dir string

	mu  sync.RWMutex
	dbs map[string]*indexDB
}

// NewIndexStore opens the index databases in dir, creating dir if needed.
func NewIndexStore(ctx context.Context, dir string) (*IndexStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &IndexStore{
		dir: dir,
		dbs: make(map[string]*indexDB),
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the data directory.
func (s *IndexStore) Dir() string {
	return s.dir
}

// Databases returns the names of the loaded databases, sorted.
func (s *IndexStore) Databases(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.dbs))
	for name := range s.dbs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Query runs an FTS5 MATCH expression against db, best ranked first.
func (s *IndexStore) Query(ctx context.Context, db, match string, limit int) ([]domain.IndexedLine, error) {
	h, err := s.handle(db)
	if err != nil {
		return nil, err
	}

	rows, err := h.QueryContext(ctx, `
		SELECT source, content FROM records
		WHERE records MATCH ?
		ORDER BY rank
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", db, err)
	}
	defer rows.Close()

	var lines []domain.IndexedLine //nolint:prealloc // size unknown from query
	for rows.Next() {
		var l domain.IndexedLine
		if err := rows.Scan(&l.Source, &l.Content); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", db, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", db, err)
	}
	return lines, nil
}

// Sources returns per-source line counts of db, largest first.
// A limit of zero or less returns every source.
func (s *IndexStore) Sources(ctx context.Context, db string, limit int) ([]domain.SourceCount, error) {
	h, err := s.handle(db)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := h.QueryContext(ctx, `
		SELECT source, COUNT(*) AS c FROM records
		GROUP BY source
		ORDER BY c DESC, source
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("counting sources of %s: %w", db, err)
	}
	defer rows.Close()

	var out []domain.SourceCount //nolint:prealloc // size unknown from query
	for rows.Next() {
		var sc domain.SourceCount
		if err := rows.Scan(&sc.Source, &sc.Count); err != nil {
			return nil, fmt.Errorf("scanning sources of %s: %w", db, err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources of %s: %w", db, err)
	}
	return out, nil
}

// Stats returns the record count, source count and file size of db.
func (s *IndexStore) Stats(ctx context.Context, db string) (*domain.IndexStats, error) {
	s.mu.RLock()
	entry, ok := s.dbs[db]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: database %s", domain.ErrNotFound, db)
	}

	stats := &domain.IndexStats{Name: db, Path: entry.path}
	row := entry.db.QueryRowContext(ctx, "SELECT COUNT(*), COUNT(DISTINCT source) FROM records")
	if err := row.Scan(&stats.Records, &stats.Sources); err != nil {
		return nil, fmt.Errorf("reading stats of %s: %w", db, err)
	}
	if info, err := os.Stat(entry.path); err == nil {
		stats.SizeBytes = info.Size()
	}
	return stats, nil
}

// Reload rescans the directory. New and replaced files are opened, files
// that disappeared are closed, and files without a records table are skipped.
func (s *IndexStore) Reload(ctx context.Context) error {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*"+DBExt))
	if err != nil {
		return fmt.Errorf("scanning %s: %w", s.dir, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		name := strings.TrimSuffix(filepath.Base(path), DBExt)
		seen[name] = true

		if cur, ok := s.dbs[name]; ok {
			if cur.written {
				continue
			}
			if cur.size == info.Size() && cur.modTime.Equal(info.ModTime()) {
				continue
			}
			cur.db.Close()
			delete(s.dbs, name)
		}

		db, err := openIndex(ctx, path, false)
		if err != nil {
			logger.Debug("Skipping %s: %v", filepath.Base(path), err)
			continue
		}
		s.dbs[name] = &indexDB{db: db, path: path, size: info.Size(), modTime: info.ModTime()}
		logger.Debug("Loaded index %s", name)
	}

	for name, entry := range s.dbs {
		if !seen[name] {
			entry.db.Close()
			delete(s.dbs, name)
			logger.Debug("Unloaded index %s", name)
		}
	}
	return nil
}

// Close releases every connection.
func (s *IndexStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for name, entry := range s.dbs {
		if err := entry.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", name, err))
		}
		delete(s.dbs, name)
	}
	return errors.Join(errs...)
}

// Insert adds lines to db in one transaction, creating db if needed.
func (s *IndexStore) Insert(ctx context.Context, db string, lines []domain.IndexedLine) error {
	h, err := s.writable(ctx, db)
	if err != nil {
		return err
	}

	tx, err := h.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO records (source, content) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range lines {
		if _, err := stmt.ExecContext(ctx, l.Source, l.Content); err != nil {
			return fmt.Errorf("inserting into %s: %w", db, err)
		}
	}
	return tx.Commit()
}

// DeleteSource removes every line of source from db.
func (s *IndexStore) DeleteSource(ctx context.Context, db, source string) (int64, error) {
	h, err := s.existing(db)
	if err != nil {
		return 0, err
	}
	res, err := h.ExecContext(ctx, "DELETE FROM records WHERE source = ?", source)
	if err != nil {
		return 0, fmt.Errorf("deleting %s from %s: %w", source, db, err)
	}
	return res.RowsAffected()
}

// Clear removes every line of db.
func (s *IndexStore) Clear(ctx context.Context, db string) error {
	h, err := s.existing(db)
	if err != nil {
		return err
	}
	if _, err := h.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return fmt.Errorf("clearing %s: %w", db, err)
	}
	return nil
}

func (s *IndexStore) handle(db string) (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.dbs[db]
	if !ok {
		return nil, fmt.Errorf("%w: database %s", domain.ErrNotFound, db)
	}
	return entry.db, nil
}

// existing returns the handle of an existing db that is about to be modified.
func (s *IndexStore) existing(db string) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.dbs[db]
	if !ok {
		return nil, fmt.Errorf("%w: database %s", domain.ErrNotFound, db)
	}
	entry.written = true
	return entry.db, nil
}

// writable returns the handle of db, creating the database file and its
// records table when missing.
func (s *IndexStore) writable(ctx context.Context, db string) (*sql.DB, error) {
	if !ValidName(db) {
		return nil, fmt.Errorf("%w: database name %q", domain.ErrInvalidInput, db)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.dbs[db]; ok {
		entry.written = true
		return entry.db, nil
	}

	path := filepath.Join(s.dir, db+DBExt)
	h, err := openIndex(ctx, path, true)
	if err != nil {
		return nil, err
	}
	s.dbs[db] = &indexDB{db: h, path: path, written: true}
	return h, nil
}

// ValidName reports whether name can be used as a database file name.
func ValidName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && !strings.HasPrefix(name, ".")
}

// openIndex opens path. With create set the records table is created,
// otherwise its absence is an error.
func openIndex(ctx context.Context, path string, create bool) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	if create {
		if _, err := db.ExecContext(ctx, createRecords); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating records table: %w", err)
		}
		return db, nil
	}

	var n int
	err = db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'records'").Scan(&n)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("inspecting %s: %w", path, err)
	}
	if n == 0 {
		db.Close()
		return nil, errors.New("no records table")
	}
	return db, nil
}
