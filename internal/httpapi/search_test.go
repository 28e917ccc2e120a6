package httpapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/vectorflow/internal/embed"
	"github.com/Aman-CERP/vectorflow/internal/vecdb"
)

func staticEmbed(t *testing.T, text string) []float64 {
	t.Helper()
	out, err := embed.NewStaticEmbedder().EmbedBatch(context.Background(), []string{text})
	require.NoError(t, err)
	return out[0]
}

func chunkFor(text string, embedding []float64) vecdb.Chunk {
	return vecdb.NewChunk(text, embedding, nil)
}

func TestVectorSearch_ReturnsNearestChunkFirst(t *testing.T) {
	srv, store := newTestServer(t)
	lib, doc := setupLibraryWithDocument(t, store)
	seedChunk(t, store, lib.ID, doc.ID, []float64{1, 0})
	seedChunk(t, store, lib.ID, doc.ID, []float64{0, 1})
	doJSON(t, srv, http.MethodPost, "/libraries/"+lib.ID+"/index", nil)

	rec := doJSON(t, srv, http.MethodPost, "/libraries/"+lib.ID+"/search?k=1", []float64{1, 0})

	require.Equal(t, http.StatusOK, rec.Code)
	var got []chunkDTO
	decodeBody(t, rec, &got)
	require.Len(t, got, 1)
	assert.Equal(t, []float64{1, 0}, got[0].Embedding)
}

func TestVectorSearch_NoIndexReturns400(t *testing.T) {
	srv, store := newTestServer(t)
	lib, doc := setupLibraryWithDocument(t, store)
	seedChunk(t, store, lib.ID, doc.ID, []float64{1, 0})

	rec := doJSON(t, srv, http.MethodPost, "/libraries/"+lib.ID+"/search", []float64{1, 0})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVectorSearch_DimensionMismatchReturns400(t *testing.T) {
	srv, store := newTestServer(t)
	lib, doc := setupLibraryWithDocument(t, store)
	seedChunk(t, store, lib.ID, doc.ID, []float64{1, 0})
	doJSON(t, srv, http.MethodPost, "/libraries/"+lib.ID+"/index", nil)

	rec := doJSON(t, srv, http.MethodPost, "/libraries/"+lib.ID+"/search", []float64{1, 0, 0})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVectorSearch_UnknownLibraryReturns404(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/libraries/missing/search", []float64{1, 0})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTextSearch_EmbedsAndReturnsResults(t *testing.T) {
	srv, store := newTestServer(t)
	lib, doc := setupLibraryWithDocument(t, store)
	// the static embedder is deterministic and 256-dimensional
	chunkEmbedding := staticEmbed(t, "hello world")
	_, err := store.AddChunk(t.Context(), lib.ID, doc.ID, chunkFor("hello world", chunkEmbedding))
	require.NoError(t, err)
	doJSON(t, srv, http.MethodPost, "/libraries/"+lib.ID+"/index", nil)

	rec := doJSON(t, srv, http.MethodPost, "/libraries/"+lib.ID+"/text-search?k=1", textSearchRequest{Text: "hello world"})

	require.Equal(t, http.StatusOK, rec.Code)
	var got textSearchResponse
	decodeBody(t, rec, &got)
	assert.Equal(t, "hello world", got.QueryText)
	assert.Equal(t, 1, got.ResultsCount)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "hello world", got.Results[0].Text)
}

func TestTextSearch_EmptyTextRejected(t *testing.T) {
	srv, store := newTestServer(t)
	lib, _ := setupLibraryWithDocument(t, store)

	rec := doJSON(t, srv, http.MethodPost, "/libraries/"+lib.ID+"/text-search", textSearchRequest{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
