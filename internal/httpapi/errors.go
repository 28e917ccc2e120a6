package httpapi

import (
	"net/http"

	"github.com/Aman-CERP/vectorflow/internal/index"
	"github.com/Aman-CERP/vectorflow/internal/vecdb"
)

// writeStoreError translates a store/index error into a status code:
// missing entities are 404, index contract violations and validation
// failures are 400, collaborator (embedder) failures are 500.
func writeStoreError(w http.ResponseWriter, err error) {
	switch err.(type) {
	case vecdb.ErrLibraryNotFound, vecdb.ErrDocumentNotFound, vecdb.ErrChunkNotFound:
		writeError(w, http.StatusNotFound, err.Error())

	case vecdb.ErrDimensionMismatch, vecdb.ErrIndexMissing, vecdb.ErrIndexRebuildNeeded,
		index.ErrUnknownAlgorithm:
		writeError(w, http.StatusBadRequest, err.Error())

	case vecdb.ErrProviderError:
		writeError(w, http.StatusInternalServerError, err.Error())

	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
