package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Aman-CERP/vectorflow/internal/config"
	"github.com/Aman-CERP/vectorflow/internal/index"
)

func (s *Server) handleBuildIndex(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")

	algorithm := r.URL.Query().Get("algorithm")
	if algorithm == "" {
		algorithm = s.indexDefaults.Algorithm
	}
	if algorithm == "" {
		algorithm = index.AlgorithmLinear
	}
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	status, err := s.store.BuildIndex(libraryID, algorithm, force, indexOptionsFromDefaults(s.indexDefaults))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIndexStatusDTO(status))
}

// indexOptionsFromDefaults translates the configured per-algorithm tunables
// into index.Options. Create only reads the sub-struct matching the chosen
// algorithm, so it is safe to always populate all three.
func indexOptionsFromDefaults(d config.IndexDefaults) index.Options {
	return index.Options{
		KDTree: index.KDTreeOptions{
			QuickselectThreshold: d.KDTreeQuickselectMinSize,
			RebuildRatio:         d.KDTreeRebuildRatio,
		},
		LSH: index.LSHOptions{
			NumTables:     d.LSHNumTables,
			HashSize:      d.LSHHashSize,
			MaxCandidates: d.LSHMaxCandidates,
		},
	}
}

func (s *Server) handleIndexStatus(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")

	status, err := s.store.IndexStatus(libraryID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIndexStatusDTO(status))
}
