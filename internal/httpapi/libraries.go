package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListLibraries(w http.ResponseWriter, r *http.Request) {
	libs := s.store.ListLibraries()
	out := make([]librarySummaryDTO, len(libs))
	for i, lib := range libs {
		out[i] = toLibrarySummary(lib)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateLibrary(w http.ResponseWriter, r *http.Request) {
	var req createLibraryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name must not be empty")
		return
	}

	lib := s.store.CreateLibrary(req.Name, req.Metadata.Description)
	writeJSON(w, http.StatusCreated, toLibrarySummary(lib))
}

func (s *Server) handleGetLibrary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "libraryID")
	lib, err := s.store.GetLibrary(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLibrarySummary(lib))
}

func (s *Server) handleDeleteLibrary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "libraryID")
	if err := s.store.DeleteLibrary(id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{
		Status:  "deleted",
		Message: "library " + id + " and all its documents and chunks have been deleted",
	})
}
