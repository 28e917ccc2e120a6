package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildFilter_NilCriteriaMatchesEverything(t *testing.T) {
	f := BuildFilter(nil)
	assert.Nil(t, f)
}

func TestBuildFilter_ExactMatch(t *testing.T) {
	f := BuildFilter(map[string]any{"lang": "go"})

	assert.True(t, f(Chunk{Metadata: map[string]any{"lang": "go"}}))
	assert.False(t, f(Chunk{Metadata: map[string]any{"lang": "python"}}))
	assert.False(t, f(Chunk{Metadata: map[string]any{}}))
}

func TestBuildFilter_ContainsSuffix(t *testing.T) {
	f := BuildFilter(map[string]any{"title_contains": "vector"})

	assert.True(t, f(Chunk{Metadata: map[string]any{"title": "a vector database"}}))
	assert.False(t, f(Chunk{Metadata: map[string]any{"title": "a graph database"}}))
}

func TestBuildFilter_AfterAndBeforeSuffixes(t *testing.T) {
	f := BuildFilter(map[string]any{
		"created_at_after":  "2024-01-01T00:00:00Z",
		"created_at_before": "2024-12-31T00:00:00Z",
	})

	assert.True(t, f(Chunk{Metadata: map[string]any{"created_at": "2024-06-15T00:00:00Z"}}))
	assert.False(t, f(Chunk{Metadata: map[string]any{"created_at": "2023-06-15T00:00:00Z"}}))
	assert.False(t, f(Chunk{Metadata: map[string]any{"created_at": "2025-06-15T00:00:00Z"}}))
}

func TestBuildFilter_MissingFieldIsRejected(t *testing.T) {
	f := BuildFilter(map[string]any{"name": "foo"})
	assert.False(t, f(Chunk{Metadata: map[string]any{}}))
	assert.False(t, f(Chunk{Metadata: nil}))
}

func TestBuildFilter_UnparseableDateIsRejected(t *testing.T) {
	f := BuildFilter(map[string]any{"created_at_after": "2024-01-01T00:00:00Z"})
	assert.False(t, f(Chunk{Metadata: map[string]any{"created_at": "not-a-date"}}))
}

func TestBuildFilter_MultipleCriteriaAreConjunctive(t *testing.T) {
	f := BuildFilter(map[string]any{"lang": "go", "title_contains": "vector"})

	assert.True(t, f(Chunk{Metadata: map[string]any{"lang": "go", "title": "a vector store"}}))
	assert.False(t, f(Chunk{Metadata: map[string]any{"lang": "python", "title": "a vector store"}}))
}
