package index

import (
	"sort"
	"sync"

	"github.com/Aman-CERP/vectorflow/internal/vecmath"
)

// DefaultBatchSize is the default scan batch size for LinearIndex.
const DefaultBatchSize = 1000

// LinearIndex is an exact brute-force k-NN scanner. It optionally
// pre-normalizes embeddings so query scoring reduces to a dot product
// (cosine similarity); otherwise it scores by negative squared Euclidean
// distance, so "larger score is better" holds either way.
type LinearIndex struct {
	mu sync.RWMutex

	normalize bool
	batchSize int

	chunks     []Chunk
	normalized [][]float64 // parallel to chunks, present iff normalize
	idToPos    map[string]int
}

// LinearOption configures a LinearIndex at construction.
type LinearOption func(*LinearIndex)

// WithNormalize overrides the default normalize=true.
func WithNormalize(normalize bool) LinearOption {
	return func(l *LinearIndex) { l.normalize = normalize }
}

// WithBatchSize overrides the default scan batch size.
func WithBatchSize(n int) LinearOption {
	return func(l *LinearIndex) {
		if n > 0 {
			l.batchSize = n
		}
	}
}

// NewLinearIndex builds a LinearIndex over chunks, copying them in
// insertion order.
func NewLinearIndex(chunks []Chunk, opts ...LinearOption) *LinearIndex {
	l := &LinearIndex{
		normalize: true,
		batchSize: DefaultBatchSize,
		idToPos:   make(map[string]int, len(chunks)),
	}
	for _, opt := range opts {
		opt(l)
	}

	l.chunks = make([]Chunk, len(chunks))
	copy(l.chunks, chunks)
	for i, c := range l.chunks {
		l.idToPos[c.ID] = i
	}

	if l.normalize {
		l.rebuildNormalized()
	}

	return l
}

func (l *LinearIndex) rebuildNormalized() {
	l.normalized = make([][]float64, len(l.chunks))
	for i, c := range l.chunks {
		l.normalized[i] = vecmath.Normalize(c.Embedding)
	}
}

func (l *LinearIndex) Algorithm() string { return "linear" }

// Add appends a chunk in O(1) (amortized), or O(1) plus an append to the
// parallel normalized slice when normalization is enabled.
func (l *LinearIndex) Add(c Chunk) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.idToPos[c.ID]; exists {
		return ErrAlreadyPresent{ID: c.ID}
	}

	l.idToPos[c.ID] = len(l.chunks)
	l.chunks = append(l.chunks, c)
	if l.normalize {
		l.normalized = append(l.normalized, vecmath.Normalize(c.Embedding))
	}
	return nil
}

// Remove deletes a chunk in O(n) (the slot removal plus a full id-map
// rebuild, since positions shift).
func (l *LinearIndex) Remove(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.idToPos[id]
	if !ok {
		return ErrNotFound{ID: id}
	}

	l.chunks = append(l.chunks[:pos], l.chunks[pos+1:]...)
	if l.normalize {
		l.normalized = append(l.normalized[:pos], l.normalized[pos+1:]...)
	}

	l.idToPos = make(map[string]int, len(l.chunks))
	for i, c := range l.chunks {
		l.idToPos[c.ID] = i
	}
	return nil
}

type scoredChunk struct {
	score float64
	idx   int // scan order, for deterministic tie-break
	chunk Chunk
}

// Query scans chunks in batches of batchSize, scoring each non-filtered
// chunk, and returns the top k by score descending. Equal scores break by
// ascending scan order.
func (l *LinearIndex) Query(q []float64, k int, filter Filter) ([]Chunk, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if k <= 0 || len(l.chunks) == 0 {
		return []Chunk{}, nil
	}

	query := q
	if l.normalize {
		query = vecmath.Normalize(q)
	}

	candidates := make([]scoredChunk, 0, len(l.chunks))
	for start := 0; start < len(l.chunks); start += l.batchSize {
		end := start + l.batchSize
		if end > len(l.chunks) {
			end = len(l.chunks)
		}
		for i := start; i < end; i++ {
			if filter != nil && !filter(l.chunks[i]) {
				continue
			}
			candidates = append(candidates, scoredChunk{
				score: l.score(query, i),
				idx:   i,
				chunk: l.chunks[i],
			})
		}
	}

	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].score != candidates[b].score {
			return candidates[a].score > candidates[b].score
		}
		return candidates[a].idx < candidates[b].idx
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	results := make([]Chunk, k)
	for i := 0; i < k; i++ {
		results[i] = candidates[i].chunk
	}
	return results, nil
}

func (l *LinearIndex) score(query []float64, i int) float64 {
	if l.normalize {
		return vecmath.Dot(query, l.normalized[i])
	}
	return -vecmath.SqDist(query, l.chunks[i].Embedding)
}

// CheckRebuildNeeded is always false: LinearIndex has no deferred structure
// to rebuild, since add/remove mutate the live chunk slice directly.
func (l *LinearIndex) CheckRebuildNeeded() bool { return false }

// RebuildIfNeeded is a no-op for LinearIndex.
func (l *LinearIndex) RebuildIfNeeded(all []Chunk) bool { return false }

// Stats reports the live chunk count.
func (l *LinearIndex) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Stats{ChunkCount: len(l.chunks)}
}

// Chunks returns a copy of the live chunk slice, for callers that need
// direct access to the underlying set.
func (l *LinearIndex) Chunks() []Chunk {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Chunk, len(l.chunks))
	copy(out, l.chunks)
	return out
}

var _ Index = (*LinearIndex)(nil)
