// Package local serves resources from a directory on disk.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/custodia-labs/sercha-scan/internal/adapters/driven/objectstore"
	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ObjectStore = (*Store)(nil)

// Store lists the files under root. Resource keys are slash-separated
// paths relative to root.
type Store struct {
	root string
	exts []string
}

// NewStore creates a store over root.
func NewStore(root string, exts []string) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, root)
	}
	return &Store{root: root, exts: exts}, nil
}

// Name identifies the store in logs.
func (s *Store) Name() string {
	return objectstore.Location("file", "", s.root)
}

// ListResources walks root in lexical order. Hidden files and directories
// are skipped.
func (s *Store) ListResources(ctx context.Context) ([]domain.Resource, error) {
	var resources []domain.Resource
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path != s.root && d.Name()[0] == '.' {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		if res, ok := objectstore.Searchable(filepath.ToSlash(rel), info.Size(), s.exts); ok {
			resources = append(resources, res)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.root, err)
	}
	return resources, nil
}

// OpenStream opens the file, decompressing it when needed.
func (s *Store) OpenStream(_ context.Context, res domain.Resource) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(res.Key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, res.Key)
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrResourceRead, res.Key, err)
	}
	return objectstore.Decode(res, f)
}
