// Package mcp provides an MCP (Model Context Protocol) server adapter for
// sercha-scan. It lets AI assistants run structured searches over the
// configured backend and inspect what the backend can see.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
