package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLibrary_Returns201AndSummary(t *testing.T) {
	// Given: a fresh server
	srv, _ := newTestServer(t)

	// When: a library is created
	rec := doJSON(t, srv, http.MethodPost, "/libraries/", createLibraryRequest{
		Name:     "docs",
		Metadata: libraryMetadataDTO{Description: "a test library"},
	})

	// Then: it responds 201 with the library summary
	require.Equal(t, http.StatusCreated, rec.Code)
	var got librarySummaryDTO
	decodeBody(t, rec, &got)
	assert.Equal(t, "docs", got.Name)
	assert.Equal(t, "a test library", got.Metadata.Description)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, 0, got.DocumentCount)
}

func TestCreateLibrary_EmptyNameRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/libraries/", createLibraryRequest{Name: "  "})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListLibraries_ReturnsAllCreated(t *testing.T) {
	srv, store := newTestServer(t)
	store.CreateLibrary("one", "")
	store.CreateLibrary("two", "")

	rec := doJSON(t, srv, http.MethodGet, "/libraries/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []librarySummaryDTO
	decodeBody(t, rec, &got)
	assert.Len(t, got, 2)
}

func TestGetLibrary_Found(t *testing.T) {
	srv, store := newTestServer(t)
	lib := store.CreateLibrary("docs", "desc")

	rec := doJSON(t, srv, http.MethodGet, "/libraries/"+lib.ID, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got librarySummaryDTO
	decodeBody(t, rec, &got)
	assert.Equal(t, lib.ID, got.ID)
}

func TestGetLibrary_NotFoundReturns404(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/libraries/missing", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteLibrary_RemovesIt(t *testing.T) {
	srv, store := newTestServer(t)
	lib := store.CreateLibrary("docs", "")

	rec := doJSON(t, srv, http.MethodDelete, "/libraries/"+lib.ID, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	_, err := store.GetLibrary(lib.ID)
	assert.Error(t, err)
}

func TestDeleteLibrary_UnknownReturns404(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodDelete, "/libraries/missing", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
