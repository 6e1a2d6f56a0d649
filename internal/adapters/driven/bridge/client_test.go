package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

func newTestBridge(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL + "/", Secret: "s3cr3t"})
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	client, err := NewClient(Config{BaseURL: "https://bridge.example.com//"})
	require.NoError(t, err)
	assert.Equal(t, "https://bridge.example.com", client.BaseURL())
	assert.Equal(t, DefaultTimeout, client.client.Timeout)
}

func TestClient_Search(t *testing.T) {
	client := newTestBridge(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "s3cr3t", r.Header.Get(SecretHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []domain.SearchCriterion{{Field: "email", Value: "alice"}}, body.Criteria)
		assert.Equal(t, 20, body.Limit)
		assert.Equal(t, 5, body.Offset)

		_, _ = w.Write([]byte(`{"results":[{"_source":"forum","_raw":"alice@example.com:pw","email":"alice@example.com"}],"total":1}`))
	})

	result, err := client.Search(context.Background(), domain.SearchRequest{
		Criteria: []domain.SearchCriterion{{Field: "email", Value: "alice"}},
		Limit:    20,
		Offset:   5,
	})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, "forum", result.Results[0].Source())
	email, _ := result.Results[0].Get("email")
	assert.Equal(t, "alice@example.com", email)
}

func TestClient_Search_NullResults(t *testing.T) {
	client := newTestBridge(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":null,"total":0}`))
	})

	result, err := client.Search(context.Background(), domain.SearchRequest{Limit: 1})
	require.NoError(t, err)
	assert.NotNil(t, result.Results)
	assert.Empty(t, result.Results)
}

func TestClient_Search_StatusError(t *testing.T) {
	client := newTestBridge(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Invalid bridge secret", http.StatusUnauthorized)
	})

	_, err := client.Search(context.Background(), domain.SearchRequest{Limit: 1})
	assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
	assert.ErrorContains(t, err, "status 401")
	assert.ErrorContains(t, err, "Invalid bridge secret")
}

func TestClient_Search_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)

	_, err = client.Search(context.Background(), domain.SearchRequest{Limit: 1})
	assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
}

func TestClient_Health(t *testing.T) {
	client := newTestBridge(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok","databases":2,"names":["forum","shop"]}`))
	})

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 2, health.Databases)
	assert.Equal(t, []string{"forum", "shop"}, health.Names)
}

func TestClient_Sources(t *testing.T) {
	client := newTestBridge(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sources", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"forum": [{"source":"forum.csv","count":42},{"source":"old.txt","count":3}],
			"broken": {"error":"database disk image is malformed"}
		}`))
	})

	sources, err := client.Sources(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string][]domain.SourceCount{
		"forum": {{Source: "forum.csv", Count: 42}, {Source: "old.txt", Count: 3}},
	}, sources)
}

func TestClient_NoSecretHeaderWhenUnset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header[SecretHeader]
		assert.False(t, present)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = client.Health(context.Background())
	require.NoError(t, err)
}
