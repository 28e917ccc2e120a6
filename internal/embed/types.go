// Package embed provides the embedding provider abstraction text-based
// search and text-based chunk insertion are built on: a small Embedder
// interface, a Cohere-backed HTTP implementation, an LRU-cached decorator,
// and a deterministic offline fallback for tests and API-key-less
// environments.
package embed

import (
	"context"
	"time"
)

// Tuning defaults.
const (
	MinBatchSize = 1
	MaxBatchSize = 96

	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3

	DefaultEmbedCacheSize = 1000

	// StaticDimensions is the embedding dimension the offline fallback
	// produces, chosen to be large enough to give distinct texts distinct
	// hash buckets without making every test vector dense.
	StaticDimensions = 256
)

// Embedder turns text into embeddings. Every blocking call takes a
// context.Context so a caller's cancellation or deadline propagates into
// the HTTP round trip.
type Embedder interface {
	// EmbedBatch returns one embedding per input text, in the same order.
	// An empty texts slice returns an empty, non-nil result and no error.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// ModelName identifies which model produced (or would produce) the
	// embeddings, used both for logging and as part of the cache key.
	ModelName() string
}
