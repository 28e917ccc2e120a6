package vecdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/vectorflow/internal/index"
)

func TestStore_CreateAndGetLibrary(t *testing.T) {
	// Given: a fresh store
	s := NewStore()

	// When: I create a library
	lib := s.CreateLibrary("docs", "a test library")

	// Then: I can fetch it back by id
	got, err := s.GetLibrary(lib.ID)
	require.NoError(t, err)
	assert.Equal(t, "docs", got.Name)
}

func TestStore_GetUnknownLibraryFails(t *testing.T) {
	s := NewStore()
	_, err := s.GetLibrary("missing")
	require.Error(t, err)
	assert.IsType(t, ErrLibraryNotFound{}, err)
}

func TestStore_DeleteLibraryRemovesIt(t *testing.T) {
	s := NewStore()
	lib := s.CreateLibrary("docs", "")

	require.NoError(t, s.DeleteLibrary(lib.ID))

	_, err := s.GetLibrary(lib.ID)
	require.Error(t, err)
}

func TestStore_AddDocumentAndChunkRoundTrip(t *testing.T) {
	// Given: a library
	s := NewStore()
	lib := s.CreateLibrary("docs", "")
	ctx := context.Background()

	// When: I add a document and a chunk to it
	doc, err := s.AddDocument(ctx, lib.ID, NewDocument(nil))
	require.NoError(t, err)

	chunk := NewChunk("hello world", []float64{1, 0, 0}, nil)
	_, err = s.AddChunk(ctx, lib.ID, doc.ID, chunk)
	require.NoError(t, err)

	// Then: the chunk shows up under the document
	chunks, err := s.GetDocumentChunks(lib.ID, doc.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0].Text)
}

func TestStore_AddChunkEnforcesLibraryDimension(t *testing.T) {
	// Given: a library whose dimension was fixed by its first chunk
	s := NewStore()
	lib := s.CreateLibrary("docs", "")
	ctx := context.Background()
	doc, err := s.AddDocument(ctx, lib.ID, NewDocument(nil))
	require.NoError(t, err)
	_, err = s.AddChunk(ctx, lib.ID, doc.ID, NewChunk("a", []float64{1, 2, 3}, nil))
	require.NoError(t, err)

	// When: I add a chunk with a different dimension
	_, err = s.AddChunk(ctx, lib.ID, doc.ID, NewChunk("b", []float64{1, 2}, nil))

	// Then: it fails with a dimension mismatch
	require.Error(t, err)
	assert.IsType(t, ErrDimensionMismatch{}, err)
}

func TestStore_DeleteChunkUnknownIDFails(t *testing.T) {
	s := NewStore()
	lib := s.CreateLibrary("docs", "")
	ctx := context.Background()
	doc, err := s.AddDocument(ctx, lib.ID, NewDocument(nil))
	require.NoError(t, err)

	err = s.DeleteChunk(ctx, lib.ID, doc.ID, "missing")
	require.Error(t, err)
	assert.IsType(t, ErrChunkNotFound{}, err)
}

func TestStore_DeleteDocumentRemovesItsChunksFromIndex(t *testing.T) {
	// Given: a library with a built linear index over one document's chunks
	s := NewStore()
	lib := s.CreateLibrary("docs", "")
	ctx := context.Background()
	doc, err := s.AddDocument(ctx, lib.ID, NewDocument(nil))
	require.NoError(t, err)
	_, err = s.AddChunk(ctx, lib.ID, doc.ID, NewChunk("a", []float64{1, 0}, nil))
	require.NoError(t, err)

	_, err = s.BuildIndex(lib.ID, index.AlgorithmLinear, true, index.Options{})
	require.NoError(t, err)

	// When: I delete the document
	require.NoError(t, s.DeleteDocument(ctx, lib.ID, doc.ID))

	// Then: querying the now-empty index returns nothing, and the index
	// is still attached (not dropped), since removal succeeded cleanly
	results, err := s.Query(ctx, lib.ID, []float64{1, 0}, 5, nil, false)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_BuildIndexThenQueryFindsChunk(t *testing.T) {
	// Given: a library with two chunks
	s := NewStore()
	lib := s.CreateLibrary("docs", "")
	ctx := context.Background()
	doc, err := s.AddDocument(ctx, lib.ID, NewDocument(nil))
	require.NoError(t, err)
	_, err = s.AddChunk(ctx, lib.ID, doc.ID, NewChunk("near", []float64{1, 0}, nil))
	require.NoError(t, err)
	_, err = s.AddChunk(ctx, lib.ID, doc.ID, NewChunk("far", []float64{0, 1}, nil))
	require.NoError(t, err)

	// When: I build a linear index and query it
	status, err := s.BuildIndex(lib.ID, index.AlgorithmLinear, true, index.Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusCurrent, status.Status)

	results, err := s.Query(ctx, lib.ID, []float64{1, 0}, 1, nil, false)

	// Then: the closer chunk wins
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "near", results[0].Text)
}

func TestStore_QueryWithoutIndexFails(t *testing.T) {
	s := NewStore()
	lib := s.CreateLibrary("docs", "")
	_, err := s.Query(context.Background(), lib.ID, []float64{1, 0}, 1, nil, false)
	require.Error(t, err)
	assert.IsType(t, ErrIndexMissing{}, err)
}

func TestStore_QueryRejectsWrongDimension(t *testing.T) {
	s := NewStore()
	lib := s.CreateLibrary("docs", "")
	ctx := context.Background()
	doc, err := s.AddDocument(ctx, lib.ID, NewDocument(nil))
	require.NoError(t, err)
	_, err = s.AddChunk(ctx, lib.ID, doc.ID, NewChunk("a", []float64{1, 0}, nil))
	require.NoError(t, err)
	_, err = s.BuildIndex(lib.ID, index.AlgorithmLinear, true, index.Options{})
	require.NoError(t, err)

	_, err = s.Query(ctx, lib.ID, []float64{1, 0, 0}, 1, nil, false)
	require.Error(t, err)
	assert.IsType(t, ErrDimensionMismatch{}, err)
}

func TestStore_IndexStatusReflectsLifecycle(t *testing.T) {
	s := NewStore()
	lib := s.CreateLibrary("docs", "")
	ctx := context.Background()

	status, err := s.IndexStatus(lib.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusNone, status.Status)

	doc, err := s.AddDocument(ctx, lib.ID, NewDocument(nil))
	require.NoError(t, err)
	_, err = s.AddChunk(ctx, lib.ID, doc.ID, NewChunk("a", []float64{1, 0}, nil))
	require.NoError(t, err)

	_, err = s.BuildIndex(lib.ID, index.AlgorithmKDTree, true, index.Options{})
	require.NoError(t, err)

	status, err = s.IndexStatus(lib.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCurrent, status.Status)
	assert.Equal(t, index.AlgorithmKDTree, status.Algorithm)
}

func TestStore_QueryNeedingRebuildFailsFastWithoutOptIn(t *testing.T) {
	// Given: a kd-tree index with enough buffered inserts to need a rebuild
	s := NewStore()
	lib := s.CreateLibrary("docs", "")
	ctx := context.Background()
	doc, err := s.AddDocument(ctx, lib.ID, NewDocument(nil))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		_, err := s.AddChunk(ctx, lib.ID, doc.ID, NewChunk("seed", []float64{float64(i), 0}, nil))
		require.NoError(t, err)
	}
	_, err = s.BuildIndex(lib.ID, index.AlgorithmKDTree, true, index.Options{})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := s.AddChunk(ctx, lib.ID, doc.ID, NewChunk("extra", []float64{float64(i), 1}, nil))
		require.NoError(t, err)
	}

	// When: I query without opting into a rebuild
	_, err = s.Query(ctx, lib.ID, []float64{1, 0}, 1, nil, false)

	// Then: it fails fast rather than silently querying a stale tree
	require.Error(t, err)
	assert.IsType(t, ErrIndexRebuildNeeded{}, err)

	// And: opting in lets the query through
	_, err = s.Query(ctx, lib.ID, []float64{1, 0}, 1, nil, true)
	require.NoError(t, err)
}

func TestStore_CancelledContextFailsFast(t *testing.T) {
	s := NewStore()
	lib := s.CreateLibrary("docs", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.AddDocument(ctx, lib.ID, NewDocument(nil))
	require.Error(t, err)
}
