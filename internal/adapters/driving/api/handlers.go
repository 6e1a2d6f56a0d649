package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/logger"
)

// maxBodyBytes bounds the size of a search request body.
const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ports.Inventory == nil {
		writeJSON(w, http.StatusOK, domain.BackendStatus{Status: domain.StatusOK, Names: []string{}})
		return
	}
	writeJSON(w, http.StatusOK, s.ports.Inventory.Status(r.Context()))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	log := logger.With("request_id", RequestID(r.Context()))

	req, err := decodeSearch(r)
	if err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	result, err := s.ports.Search.Search(r.Context(), req)
	if err != nil {
		log.Error("search failed", "err", err)
		writeError(w, err)
		return
	}
	log.Info("search", "criteria", len(req.Criteria), "total", result.Total,
		"partial", result.Partial, "elapsed", time.Since(start).Round(time.Millisecond))
	writeJSON(w, http.StatusOK, result)
}

// decodeSearch parses and validates a search body.
func decodeSearch(r *http.Request) (domain.SearchRequest, error) {
	var req domain.SearchRequest
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, fmt.Errorf("%w: JSON body required", domain.ErrInvalidInput)
		}
		return req, fmt.Errorf("%w: JSON body required: %v", domain.ErrInvalidInput, err)
	}
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	if s.ports.Inventory == nil {
		writeJSON(w, http.StatusOK, []domain.SourceInfo{})
		return
	}
	sources, err := s.ports.Inventory.Sources(r.Context())
	if err != nil {
		logger.With("request_id", RequestID(r.Context())).Error("list sources failed", "err", err)
		writeError(w, err)
		return
	}
	if sources == nil {
		sources = []domain.SourceInfo{}
	}
	writeJSON(w, http.StatusOK, sources)
}

func (s *Server) handleFilters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.FilterLabels())
}
