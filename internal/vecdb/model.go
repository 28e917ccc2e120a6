// Package vecdb implements the in-memory library -> document -> chunk
// store and the facade that owns each library's attached search index.
package vecdb

import (
	"time"

	"github.com/google/uuid"
)

// Chunk is a single embedded span of text belonging to a document.
type Chunk struct {
	ID        string
	Text      string
	Embedding []float64
	Metadata  map[string]any
}

// Document groups an ordered set of chunks under shared metadata.
type Document struct {
	ID       string
	Chunks   []Chunk
	Metadata map[string]any
}

// Library is the top-level container: a named set of documents plus
// whichever search index (if any) is currently attached to it.
type Library struct {
	ID          string
	Name        string
	Description string
	Documents   []Document

	// Dimension is fixed by the first chunk ever added to the library and
	// enforced against every subsequent chunk (Invariant: all embeddings
	// within a library share one dimension).
	Dimension int

	index indexHandle
}

// NewChunk builds a Chunk with a freshly minted ID.
func NewChunk(text string, embedding []float64, metadata map[string]any) Chunk {
	return Chunk{
		ID:        uuid.NewString(),
		Text:      text,
		Embedding: embedding,
		Metadata:  metadata,
	}
}

// NewDocument builds a Document with a freshly minted ID and no chunks yet.
func NewDocument(metadata map[string]any) Document {
	return Document{
		ID:       uuid.NewString(),
		Metadata: metadata,
	}
}

// NewLibrary builds a Library with a freshly minted ID and no documents yet.
func NewLibrary(name, description string) Library {
	return Library{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
	}
}

// ChunkMetadata is the conventional metadata shape chunks carry, matching
// the fields the metadata filter builder's named operators expect
// (created_at for _after/_before, name for exact/_contains matching).
// Callers are free to store any map[string]any; this type is a convenience
// constructor, not an enforced schema.
type ChunkMetadata struct {
	Name      string
	CreatedAt time.Time
}

// ToMap renders ChunkMetadata as the map[string]any shape Chunk.Metadata
// expects.
func (m ChunkMetadata) ToMap() map[string]any {
	return map[string]any{
		"name":       m.Name,
		"created_at": m.CreatedAt.Format(time.RFC3339),
	}
}
