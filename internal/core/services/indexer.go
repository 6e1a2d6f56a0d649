package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-scan/internal/logger"
)

// Ensure IndexerService implements the interface.
var _ driving.IndexerService = (*IndexerService)(nil)

// indexBatchSize is the number of lines inserted per transaction.
const indexBatchSize = 5000

// IndexerService loads flat files into FTS5 databases.
type IndexerService struct {
	store      driven.IndexStore
	writer     driven.IndexWriter
	extensions map[string]struct{}
}

// NewIndexerService creates an indexer. Only files whose extension is in
// extensions are indexed; nil means domain.DefaultExtensions.
func NewIndexerService(store driven.IndexStore, writer driven.IndexWriter, extensions []string) *IndexerService {
	if extensions == nil {
		extensions = domain.DefaultExtensions()
	}
	exts := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = struct{}{}
	}
	return &IndexerService{store: store, writer: writer, extensions: exts}
}

// AddPath indexes a single file, or every supported file under a directory.
func (s *IndexerService) AddPath(ctx context.Context, db, path string) (*domain.IndexReport, error) {
	if db == "" {
		return nil, fmt.Errorf("%w: database name required", domain.ErrInvalidInput)
	}

	files, err := s.collectFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no supported files under %s", domain.ErrNotFound, path)
	}

	report := &domain.IndexReport{Database: db, Files: []string{}}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		indexed, skipped, err := s.indexFile(ctx, db, file)
		report.Indexed += indexed
		report.Skipped += skipped
		if err != nil {
			return report, fmt.Errorf("index %s: %w", file, err)
		}
		report.Files = append(report.Files, filepath.Base(file))
		logger.Info("Indexed %s: %d lines, %d skipped", filepath.Base(file), indexed, skipped)
	}

	if err := s.store.Reload(ctx); err != nil {
		logger.Warn("Failed to reload index store: %v", err)
	}
	return report, nil
}

// collectFiles returns path itself or the supported files beneath it, sorted.
func (s *IndexerService) collectFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, err
	}
	if !info.IsDir() {
		if !s.supported(path) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filepath.Ext(path))
		}
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && s.supported(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

func (s *IndexerService) supported(path string) bool {
	_, ok := s.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// indexFile streams one file into db in batches.
func (s *IndexerService) indexFile(ctx context.Context, db, path string) (indexed, skipped int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	source := filepath.Base(path)
	reader := bufio.NewReaderSize(f, maxLineBytes)
	batch := make([]domain.IndexedLine, 0, indexBatchSize)
	batches := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.writer.Insert(ctx, db, batch); err != nil {
			return err
		}
		indexed += int64(len(batch))
		batch = batch[:0]
		batches++
		if batches%progressEvery == 0 {
			logger.Info("%s: %d lines indexed", source, indexed)
		}
		return nil
	}

	for {
		line, tooLong, rerr := readLine(reader)
		if rerr != nil {
			if !errors.Is(rerr, io.EOF) {
				return indexed, skipped, rerr
			}
			break
		}

		line = strings.TrimSpace(line)
		if tooLong || !utf8.ValidString(line) || utf8.RuneCountInString(line) < minLineLen {
			skipped++
			continue
		}

		batch = append(batch, domain.IndexedLine{Source: source, Content: line})
		if len(batch) >= indexBatchSize {
			if err := flush(); err != nil {
				return indexed, skipped, err
			}
		}
	}

	if err := flush(); err != nil {
		return indexed, skipped, err
	}
	return indexed, skipped, nil
}

// Stats returns size information for a database.
func (s *IndexerService) Stats(ctx context.Context, db string) (*domain.IndexStats, error) {
	return s.store.Stats(ctx, db)
}

// Sources lists every source of a database, largest first.
func (s *IndexerService) Sources(ctx context.Context, db string) ([]domain.SourceCount, error) {
	return s.store.Sources(ctx, db, 0)
}

// DeleteSource removes every line of a source.
func (s *IndexerService) DeleteSource(ctx context.Context, db, source string) (int64, error) {
	if source == "" {
		return 0, fmt.Errorf("%w: source required", domain.ErrInvalidInput)
	}
	return s.writer.DeleteSource(ctx, db, source)
}

// Clear empties a database.
func (s *IndexerService) Clear(ctx context.Context, db string) error {
	return s.writer.Clear(ctx, db)
}

// Query runs a phrase search against one database and parses the rows.
func (s *IndexerService) Query(ctx context.Context, db, query string, limit int) ([]domain.Record, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query required", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = domain.DefaultLimit
	}

	rows, err := s.store.Query(ctx, db, FTSPhrase(query), limit)
	if err != nil {
		return nil, err
	}
	records := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, ExtractRecord(row.Content, row.Source))
	}
	return records, nil
}
