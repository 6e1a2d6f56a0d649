package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

func TestExtractDatabase(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "valid index sources URI", uri: "sercha-scan://indexes/forum/sources", expected: "forum"},
		{name: "invalid prefix", uri: "file://indexes/forum/sources", expected: ""},
		{name: "missing sources suffix", uri: "sercha-scan://indexes/forum", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractDatabase(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleStatusResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil inventory returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)

		_, err = server.handleStatusResource(ctx, makeReadResourceRequest("sercha-scan://status"))
		require.Error(t, err)
	})

	t.Run("returns status", func(t *testing.T) {
		inv := &mockInventoryService{status: &domain.BackendStatus{
			Status:  domain.StatusOK,
			Backend: domain.SearchBackendStream,
			Count:   2,
			Names:   []string{"forum.csv", "shop.txt"},
		}}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Inventory: inv})
		require.NoError(t, err)

		result, err := server.handleStatusResource(ctx, makeReadResourceRequest("sercha-scan://status"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, `"status": "ok"`)
		assert.Contains(t, result.Contents[0].Text, "forum.csv")
	})
}

func TestServer_handleSourcesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil inventory returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)

		result, err := server.handleSourcesResource(ctx, makeReadResourceRequest("sercha-scan://sources"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns sources successfully", func(t *testing.T) {
		inv := &mockInventoryService{sources: []domain.SourceInfo{{Name: "forum.csv", SizeBytes: 2048}}}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Inventory: inv})
		require.NoError(t, err)

		result, err := server.handleSourcesResource(ctx, makeReadResourceRequest("sercha-scan://sources"))
		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, "forum.csv")
		assert.Contains(t, result.Contents[0].Text, "2048")
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		inv := &mockInventoryService{err: errors.New("bucket unreachable")}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Inventory: inv})
		require.NoError(t, err)

		_, err = server.handleSourcesResource(ctx, makeReadResourceRequest("sercha-scan://sources"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing sources")
	})
}

func TestServer_handleIndexSourcesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil indexer returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)

		_, err = server.handleIndexSourcesResource(ctx, makeReadResourceRequest("sercha-scan://indexes/forum/sources"))
		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Indexer: &mockIndexerService{}})
		require.NoError(t, err)

		_, err = server.handleIndexSourcesResource(ctx, makeReadResourceRequest("sercha-scan://invalid"))
		require.Error(t, err)
	})

	t.Run("returns source counts", func(t *testing.T) {
		idx := &mockIndexerService{sources: []domain.SourceCount{{Source: "forum.csv", Count: 42}}}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Indexer: idx})
		require.NoError(t, err)

		result, err := server.handleIndexSourcesResource(ctx, makeReadResourceRequest("sercha-scan://indexes/forum/sources"))
		require.NoError(t, err)
		assert.Equal(t, "forum", idx.db)
		assert.Contains(t, result.Contents[0].Text, `"count": 42`)
	})
}
