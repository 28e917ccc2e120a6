package index

import (
	"math/bits"
	"math/rand"
	"sort"
	"sync"

	"github.com/Aman-CERP/vectorflow/internal/vecmath"
)

// Default tuning parameters for LSHIndex, matched to the reference
// implementation's defaults.
const (
	DefaultNumTables     = 6
	DefaultHashSize      = 12
	DefaultMaxCandidates = 50
	candidateSlack       = 3 // short-circuit multiplier: stop once we have target_k*candidateSlack
)

// LSHIndex is a random-hyperplane locality-sensitive-hash index: each table
// hashes a vector to an H-bit integer by which side of H random hyperplanes
// it falls on, and candidates are gathered from matching (and
// Hamming-nearby) buckets before an exact rerank picks the final top-k.
type LSHIndex struct {
	mu sync.RWMutex

	numTables     int
	hashSize      int
	normalize     bool
	maxCandidates int

	dim         int
	hyperplanes [][]float64 // numTables*hashSize planes, set once dim is known
	tables      []map[uint64][]Chunk
	byID        map[string][]tablePos // which (table, bucket) a chunk lives in, for removal

	pendingChanges bool
	rng            *rand.Rand
}

type tablePos struct {
	table  int
	bucket uint64
}

// LSHOption configures an LSHIndex at construction.
type LSHOption func(*LSHIndex)

func WithNumTables(n int) LSHOption {
	return func(l *LSHIndex) {
		if n > 0 {
			l.numTables = n
		}
	}
}

func WithHashSize(n int) LSHOption {
	return func(l *LSHIndex) {
		if n > 0 {
			l.hashSize = n
		}
	}
}

func WithMaxCandidates(n int) LSHOption {
	return func(l *LSHIndex) {
		if n > 0 {
			l.maxCandidates = n
		}
	}
}

func WithLSHNormalize(normalize bool) LSHOption {
	return func(l *LSHIndex) { l.normalize = normalize }
}

// WithRandomSource overrides the hyperplane generator's randomness source,
// for reproducible tests.
func WithRandomSource(rng *rand.Rand) LSHOption {
	return func(l *LSHIndex) { l.rng = rng }
}

// NewLSHIndex builds an LSHIndex over chunks. If chunks is empty the
// hyperplanes are generated lazily on the first Add, once the embedding
// dimension is known.
func NewLSHIndex(chunks []Chunk, opts ...LSHOption) *LSHIndex {
	l := &LSHIndex{
		numTables:     DefaultNumTables,
		hashSize:      DefaultHashSize,
		normalize:     true,
		maxCandidates: DefaultMaxCandidates,
		byID:          make(map[string][]tablePos),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.rng == nil {
		l.rng = rand.New(rand.NewSource(1))
	}

	l.tables = make([]map[uint64][]Chunk, l.numTables)
	for i := range l.tables {
		l.tables[i] = make(map[uint64][]Chunk)
	}

	if len(chunks) > 0 {
		l.dim = len(chunks[0].Embedding)
		l.generateHyperplanes()
		for _, c := range chunks {
			l.insert(c)
		}
	}

	return l
}

func (l *LSHIndex) generateHyperplanes() {
	l.hyperplanes = make([][]float64, l.numTables*l.hashSize)
	for i := range l.hyperplanes {
		v := make([]float64, l.dim)
		for d := 0; d < l.dim; d++ {
			v[d] = l.rng.NormFloat64()
		}
		l.hyperplanes[i] = vecmath.Normalize(v)
	}
}

func (l *LSHIndex) Algorithm() string { return "lsh" }

// hashOf computes the per-table hash of v: an H-bit integer, bit h set iff
// v is on the positive side of hyperplane (table*hashSize + h).
func (l *LSHIndex) hashOf(v []float64, table int) uint64 {
	var h uint64
	base := table * l.hashSize
	for bit := 0; bit < l.hashSize; bit++ {
		if vecmath.Dot(v, l.hyperplanes[base+bit]) >= 0 {
			h |= 1 << uint(bit)
		}
	}
	return h
}

func (l *LSHIndex) insert(c Chunk) {
	v := c.Embedding
	if l.normalize {
		v = vecmath.Normalize(v)
	}
	positions := make([]tablePos, l.numTables)
	for table := 0; table < l.numTables; table++ {
		bucket := l.hashOf(v, table)
		l.tables[table][bucket] = append(l.tables[table][bucket], c)
		positions[table] = tablePos{table: table, bucket: bucket}
	}
	l.byID[c.ID] = positions
}

// Add inserts a chunk into every table, generating hyperplanes lazily if
// this is the first chunk the index has ever seen.
func (l *LSHIndex) Add(c Chunk) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.byID[c.ID]; exists {
		return ErrAlreadyPresent{ID: c.ID}
	}

	if l.hyperplanes == nil {
		l.dim = len(c.Embedding)
		l.generateHyperplanes()
	}

	l.insert(c)
	l.pendingChanges = true
	return nil
}

// Remove deletes a chunk from every table's bucket, pruning any bucket left
// empty.
func (l *LSHIndex) Remove(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	positions, ok := l.byID[id]
	if !ok {
		return ErrNotFound{ID: id}
	}

	for _, pos := range positions {
		bucket := l.tables[pos.table][pos.bucket]
		for i, c := range bucket {
			if c.ID == id {
				bucket = append(bucket[:i], bucket[i+1:]...)
				break
			}
		}
		if len(bucket) == 0 {
			delete(l.tables[pos.table], pos.bucket)
		} else {
			l.tables[pos.table][pos.bucket] = bucket
		}
	}
	delete(l.byID, id)
	l.pendingChanges = true
	return nil
}

// CheckRebuildNeeded is always false: LSHIndex buckets are updated in place
// on every Add/Remove, so there is no deferred structure to fold in.
func (l *LSHIndex) CheckRebuildNeeded() bool { return false }

// RebuildIfNeeded is a no-op for LSHIndex.
func (l *LSHIndex) RebuildIfNeeded(all []Chunk) bool { return false }

// Stats reports total chunk count across the index's primary table.
func (l *LSHIndex) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Stats{ChunkCount: len(l.byID), Modified: l.pendingChanges}
}

// neighboringHashes returns hash values within the given Hamming distance
// of original, flipping one bit and then (for distance 2) a second bit that
// doesn't re-touch an already-flipped position.
func neighboringHashes(original uint64, hashSize, maxDistance int) []uint64 {
	var out []uint64
	for i := 0; i < hashSize; i++ {
		h1 := original ^ (1 << uint(i))
		out = append(out, h1)
		if maxDistance >= 2 {
			for j := i + 1; j < hashSize; j++ {
				out = append(out, h1^(1<<uint(j)))
			}
		}
	}
	return out
}

// searchCandidates gathers chunk candidates for q's hashes across all
// tables: first the exact-bucket matches, then a Hamming-neighborhood
// expansion, then (if still short) a fallback sweep of remaining buckets
// ordered by size ascending, to keep from pulling in one giant bucket.
// filter, if non-nil, is applied as each chunk is considered, so the
// targetK*candidateSlack sufficiency check counts only filter-passing
// candidates -- a selective filter otherwise short-circuits the ladder on
// unfiltered buckets and starves rankCandidates of real matches that live
// in buckets never probed.
func (l *LSHIndex) searchCandidates(hashes []uint64, targetK int, filter Filter) []Chunk {
	seen := make(map[string]bool)
	var candidates []Chunk
	enough := targetK * candidateSlack

	add := func(c Chunk) {
		if seen[c.ID] {
			return
		}
		if filter != nil && !filter(c) {
			return
		}
		seen[c.ID] = true
		candidates = append(candidates, c)
	}

	for table := 0; table < l.numTables; table++ {
		for _, c := range l.tables[table][hashes[table]] {
			add(c)
		}
	}
	if len(candidates) >= enough {
		return candidates
	}

	for table := 0; table < l.numTables; table++ {
		for _, h := range neighboringHashes(hashes[table], l.hashSize, 2) {
			for _, c := range l.tables[table][h] {
				add(c)
			}
			if len(candidates) >= enough {
				return candidates
			}
		}
	}

	l.fallbackBroaderSearch(add, func() int { return len(candidates) }, enough)
	return candidates
}

// fallbackBroaderSearch sweeps every remaining bucket across every table,
// smallest first, passing each chunk to add until count reports that enough
// candidates have been collected.
func (l *LSHIndex) fallbackBroaderSearch(add func(Chunk), count func() int, enough int) {
	type bucketRef struct {
		table  int
		bucket uint64
		size   int
	}
	var buckets []bucketRef
	for table := 0; table < l.numTables; table++ {
		for bucket, chunks := range l.tables[table] {
			buckets = append(buckets, bucketRef{table: table, bucket: bucket, size: len(chunks)})
		}
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].size < buckets[j].size })

	for _, b := range buckets {
		if count() >= enough {
			break
		}
		for _, c := range l.tables[b.table][b.bucket] {
			add(c)
		}
	}
}

// rankCandidates trims the candidate pool to maxCandidates, keeping the
// ones closest to q by an approximate dot-product score, then builds an
// exact linear index over the survivors and returns its top-k. This is an
// exact pre-rerank rather than a random truncation: every candidate that
// makes the cut is one of the maxCandidates closest by the approximate
// score, so recall never depends on shuffle luck. candidates have already
// passed the metadata filter in searchCandidates.
func (l *LSHIndex) rankCandidates(candidates []Chunk, q []float64, k int) []Chunk {
	if len(candidates) > l.maxCandidates {
		nq := vecmath.Normalize(q)
		scores := make([]float64, len(candidates))
		for i, c := range candidates {
			scores[i] = vecmath.Dot(nq, vecmath.Normalize(c.Embedding))
		}
		idx := make([]int, len(candidates))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })

		kept := make([]Chunk, l.maxCandidates)
		for i := 0; i < l.maxCandidates; i++ {
			kept[i] = candidates[idx[i]]
		}
		candidates = kept
	}

	linear := NewLinearIndex(candidates, WithNormalize(l.normalize))
	results, _ := linear.Query(q, k, nil) // already filtered above
	return results
}

// Query returns an empty slice (never an error) if the index has never
// seen a chunk (no hyperplanes yet) or k<=0.
func (l *LSHIndex) Query(q []float64, k int, filter Filter) ([]Chunk, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.hyperplanes == nil || k <= 0 {
		return []Chunk{}, nil
	}

	query := q
	if l.normalize {
		query = vecmath.Normalize(q)
	}

	hashes := make([]uint64, l.numTables)
	for table := 0; table < l.numTables; table++ {
		hashes[table] = l.hashOf(query, table)
	}

	candidates := l.searchCandidates(hashes, k, filter)
	return l.rankCandidates(candidates, query, k), nil
}

// hammingDistance reports the number of differing bits between two hashes;
// used by tests to check the neighboring-hash expansion's reach.
func hammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

var _ Index = (*LSHIndex)(nil)
