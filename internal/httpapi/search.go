package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const defaultSearchK = 5

func parseSearchParams(r *http.Request) (k int, rebuildIfNeeded bool) {
	k = defaultSearchK
	if v := r.URL.Query().Get("k"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			k = parsed
		}
	}
	rebuildIfNeeded, _ = strconv.ParseBool(r.URL.Query().Get("rebuild_if_needed"))
	return k, rebuildIfNeeded
}

func (s *Server) handleVectorSearch(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")
	k, rebuildIfNeeded := parseSearchParams(r)

	var queryVec []float64
	if err := json.NewDecoder(r.Body).Decode(&queryVec); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON array of floats: "+err.Error())
		return
	}

	results, err := s.store.Query(r.Context(), libraryID, queryVec, k, nil, rebuildIfNeeded)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChunkDTOs(results))
}

func (s *Server) handleTextSearch(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")
	k, rebuildIfNeeded := parseSearchParams(r)

	var req textSearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text must be a non-empty string")
		return
	}

	embeddings, err := s.embedder.EmbedBatch(r.Context(), []string{req.Text})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "embedding provider error: "+err.Error())
		return
	}

	results, err := s.store.Query(r.Context(), libraryID, embeddings[0], k, nil, rebuildIfNeeded)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, textSearchResponse{
		QueryText:    req.Text,
		ResultsCount: len(results),
		Results:      toChunkResultDTOs(results),
	})
}
