// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"time"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

// SearchRequested is a command to run a search page.
type SearchRequested struct {
	Request domain.SearchRequest
}

// SearchCompleted carries one result page back to the model.
type SearchCompleted struct {
	Request domain.SearchRequest
	Result  *domain.SearchResult
	Elapsed time.Duration
	Err     error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is the search input and results view.
	ViewSearch
	// ViewSources lists the searchable sources and backend health.
	ViewSources
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewSources:
		return "sources"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// SourcesLoaded carries backend health and the searchable sources.
type SourcesLoaded struct {
	Status  *domain.BackendStatus
	Sources []domain.SourceInfo
	Err     error
}
