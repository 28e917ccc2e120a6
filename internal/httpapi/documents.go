package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Aman-CERP/vectorflow/internal/vecdb"
)

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")
	docs, err := s.store.GetAllDocuments(libraryID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	out := make([]documentSummaryDTO, len(docs))
	for i, doc := range docs {
		out[i] = toDocumentSummary(doc)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")

	var req createDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	doc := vecdb.NewDocument(req.Metadata.toMap())
	created, err := s.store.AddDocument(r.Context(), libraryID, doc)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDocumentSummary(created))
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")
	documentID := chi.URLParam(r, "documentID")

	if err := s.store.DeleteDocument(r.Context(), libraryID, documentID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Status: "deleted"})
}
