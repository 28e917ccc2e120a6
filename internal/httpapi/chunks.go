package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Aman-CERP/vectorflow/internal/vecdb"
)

func (s *Server) handleListChunks(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")
	documentID := chi.URLParam(r, "documentID")

	chunks, err := s.store.GetDocumentChunks(libraryID, documentID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChunkDTOs(chunks))
}

func (s *Server) handleCreateChunk(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")
	documentID := chi.URLParam(r, "documentID")

	var req createChunkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	chunk := vecdb.NewChunk(req.Text, req.Embedding, req.Metadata.toMap())
	created, err := s.store.AddChunk(r.Context(), libraryID, documentID, chunk)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toChunkDTO(created))
}

func (s *Server) handleDeleteChunk(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")
	documentID := chi.URLParam(r, "documentID")
	chunkID := chi.URLParam(r, "chunkID")

	if err := s.store.DeleteChunk(r.Context(), libraryID, documentID, chunkID); err != nil {
		writeStoreError(w, err)
		return
	}

	resp := deletedResponse{
		Status:  "deleted",
		Message: "chunk " + chunkID + " has been deleted",
	}
	if status, err := s.store.IndexStatus(libraryID); err == nil {
		resp.Warning, resp.Info = indexChangeNotice(status)
	}
	writeJSON(w, http.StatusOK, resp)
}

// indexChangeNotice mirrors the original's post-delete bookkeeping: report
// whether the attached index was invalidated (warning, rebuild required
// before searching), has enough accumulated changes to need a rebuild
// (warning, but one that search can trigger automatically), or was simply
// patched incrementally (informational only).
func indexChangeNotice(status vecdb.IndexStatus) (warning, info string) {
	switch status.Status {
	case vecdb.StatusNone:
		return "the library index has been reset; rebuild it before performing searches", ""
	case vecdb.StatusNeedsRebuild:
		return "the index may need rebuilding due to significant changes; searches will rebuild it automatically if requested", ""
	case vecdb.StatusModified:
		return "", "the index has been updated incrementally; you can search without rebuilding"
	default:
		return "", ""
	}
}

func (s *Server) handleBatchChunks(w http.ResponseWriter, r *http.Request) {
	libraryID := chi.URLParam(r, "libraryID")

	var req batchChunksRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Texts) == 0 {
		writeError(w, http.StatusBadRequest, "texts must not be empty")
		return
	}

	embeddings, err := s.embedder.EmbedBatch(r.Context(), req.Texts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "embedding provider error: "+err.Error())
		return
	}

	added := make([]chunkDTO, 0, len(req.Texts))
	for i, text := range req.Texts {
		meta := chunkMetadataDTO{Name: namedChunk(i)}
		if i < len(req.Metadata) {
			meta = req.Metadata[i]
		}

		chunk := vecdb.NewChunk(text, embeddings[i], meta.toMap())
		created, err := s.store.AddChunk(r.Context(), libraryID, req.DocumentID, chunk)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		added = append(added, toChunkDTO(created))
	}

	writeJSON(w, http.StatusCreated, added)
}

func namedChunk(i int) string {
	return "chunk_" + strconv.Itoa(i)
}
