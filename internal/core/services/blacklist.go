package services

import "github.com/custodia-labs/sercha-scan/internal/core/domain"

// Blacklist holds resource display names that are never scanned.
// A resource matches on its exact name or its name without extension.
type Blacklist struct {
	names map[string]struct{}
}

// NewBlacklist creates a blacklist from display names.
func NewBlacklist(names []string) *Blacklist {
	b := &Blacklist{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n != "" {
			b.names[n] = struct{}{}
		}
	}
	return b
}

// Contains reports whether the resource is blacklisted.
func (b *Blacklist) Contains(res domain.Resource) bool {
	if b == nil || len(b.names) == 0 {
		return false
	}
	if _, ok := b.names[res.Name()]; ok {
		return true
	}
	_, ok := b.names[res.BaseName()]
	return ok
}
