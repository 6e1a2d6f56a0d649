package domain

import (
	"path"
	"strings"
)

// Resource is an opaque handle to one streamable text object.
// Resources are supplied by the catalog and never mutated by the search core.
type Resource struct {
	// Key is the full object key (or path) in the backing store.
	Key string `json:"key"`

	// Size is the object size in bytes.
	Size int64 `json:"size"`
}

// Name returns the display name of the resource: the last path segment of its key.
func (r Resource) Name() string {
	return path.Base(strings.ReplaceAll(r.Key, "\\", "/"))
}

// Ext returns the lowercased extension of the resource, including the dot.
func (r Resource) Ext() string {
	return strings.ToLower(path.Ext(r.Name()))
}

// Compression returns the compression extension of the resource (".gz",
// ".zst" or ".lz4"), or "" for plain text.
func (r Resource) Compression() string {
	switch ext := r.Ext(); ext {
	case ".gz", ".zst", ".lz4":
		return ext
	default:
		return ""
	}
}

// DataExt returns the extension of the content, looking through a
// compression extension: "dump.csv.gz" has data extension ".csv".
func (r Resource) DataExt() string {
	name := r.Name()
	if r.Compression() != "" {
		name = strings.TrimSuffix(name, path.Ext(name))
	}
	return strings.ToLower(path.Ext(name))
}

// Supported reports whether the data extension is one of exts.
func (r Resource) Supported(exts []string) bool {
	ext := r.DataExt()
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// BaseName returns the display name without its extension.
func (r Resource) BaseName() string {
	name := r.Name()
	return strings.TrimSuffix(name, path.Ext(name))
}

// IndexedLine is one row of an indexed store: the source file it was read
// from and its trimmed content.
type IndexedLine struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

// SourceCount reports how many indexed lines a source contributed.
type SourceCount struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

// IndexStats describes one indexed database.
type IndexStats struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Records   int64  `json:"records"`
	Sources   int64  `json:"sources"`
	SizeBytes int64  `json:"size_bytes"`
}
