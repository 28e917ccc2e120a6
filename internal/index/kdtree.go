package index

import (
	"sort"
	"sync"

	"github.com/Aman-CERP/vectorflow/internal/vecmath"
)

// DefaultQuickselectThreshold is the chunk count at or below which a median
// split sorts its slice directly rather than running quickselect.
const DefaultQuickselectThreshold = 20

// DefaultRebuildRatio is the fraction of accumulated inserts+deletes (over
// the live chunk count) at which a KDTreeIndex considers itself due for a
// rebuild.
const DefaultRebuildRatio = 0.1

type kdNode struct {
	chunk       Chunk
	axis        int
	left, right *kdNode
	deleted     bool
}

// KDTreeIndex is a k-d tree over fixed-dimension embeddings, split on the
// highest-variance axis at each level. Inserts go to a buffer and deletes
// tombstone their node rather than restructuring the tree immediately;
// both are folded in by a deferred rebuild once enough of them accumulate.
// Queries in the meantime merge a tree search with a linear scan of the
// insert buffer.
type KDTreeIndex struct {
	mu sync.RWMutex

	quickselectThreshold int
	rebuildRatio         float64

	root        *kdNode
	idIndex     map[string]*kdNode
	totalChunks int

	addedChunks    []Chunk
	bufferedIDs    map[string]bool
	deletedIDs     map[string]bool
	pendingChanges bool
}

// KDTreeOption configures a KDTreeIndex at construction.
type KDTreeOption func(*KDTreeIndex)

// WithQuickselectThreshold overrides DefaultQuickselectThreshold.
func WithQuickselectThreshold(n int) KDTreeOption {
	return func(t *KDTreeIndex) {
		if n > 0 {
			t.quickselectThreshold = n
		}
	}
}

// WithRebuildRatio overrides DefaultRebuildRatio.
func WithRebuildRatio(ratio float64) KDTreeOption {
	return func(t *KDTreeIndex) {
		if ratio > 0 {
			t.rebuildRatio = ratio
		}
	}
}

// NewKDTreeIndex builds a KDTreeIndex over chunks.
func NewKDTreeIndex(chunks []Chunk, opts ...KDTreeOption) *KDTreeIndex {
	t := &KDTreeIndex{
		quickselectThreshold: DefaultQuickselectThreshold,
		rebuildRatio:         DefaultRebuildRatio,
		bufferedIDs:          make(map[string]bool),
		deletedIDs:           make(map[string]bool),
	}
	for _, opt := range opts {
		opt(t)
	}

	build := make([]Chunk, len(chunks))
	copy(build, chunks)
	t.root = buildKDTree(build, t.quickselectThreshold)
	t.totalChunks = len(chunks)
	t.idIndex = make(map[string]*kdNode, len(chunks))
	indexKDNodes(t.root, t.idIndex)

	return t
}

func indexKDNodes(n *kdNode, idx map[string]*kdNode) {
	if n == nil {
		return
	}
	idx[n.chunk.ID] = n
	indexKDNodes(n.left, idx)
	indexKDNodes(n.right, idx)
}

// findSplitAxis picks the axis with the highest variance across chunks,
// which tends to produce more balanced, more discriminating splits than a
// fixed round-robin axis choice.
func findSplitAxis(chunks []Chunk) int {
	dim := len(chunks[0].Embedding)
	bestAxis := 0
	bestVariance := -1.0
	n := float64(len(chunks))

	for axis := 0; axis < dim; axis++ {
		var mean float64
		for _, c := range chunks {
			mean += c.Embedding[axis]
		}
		mean /= n

		var variance float64
		for _, c := range chunks {
			d := c.Embedding[axis] - mean
			variance += d * d
		}
		variance /= n

		if variance > bestVariance {
			bestVariance = variance
			bestAxis = axis
		}
	}
	return bestAxis
}

// partitionMedian reorders chunks in place so that chunks[:mid] are all
// <= chunks[mid] and chunks[mid+1:] are all >= chunks[mid] along axis,
// where mid = len(chunks)/2. Slices at or below quickselectThreshold sort
// outright; larger slices use a Hoare-style quickselect to avoid a full
// sort at every level of the tree.
func partitionMedian(chunks []Chunk, axis, quickselectThreshold int) int {
	n := len(chunks)
	mid := n / 2

	if n <= quickselectThreshold {
		sort.Slice(chunks, func(i, j int) bool {
			return chunks[i].Embedding[axis] < chunks[j].Embedding[axis]
		})
		return mid
	}

	kdQuickselect(chunks, 0, n-1, mid, axis)
	return mid
}

func kdQuickselect(a []Chunk, lo, hi, k, axis int) {
	for lo < hi {
		p := kdPartition(a, lo, hi, axis)
		switch {
		case k == p:
			return
		case k < p:
			hi = p - 1
		default:
			lo = p + 1
		}
	}
}

// kdPartition uses the middle element as a deterministic pivot (rather than
// a random one) so that a rebuild of the same chunk set always reproduces
// the same tree shape.
func kdPartition(a []Chunk, lo, hi, axis int) int {
	pivotIdx := lo + (hi-lo)/2
	pivotVal := a[pivotIdx].Embedding[axis]
	a[pivotIdx], a[hi] = a[hi], a[pivotIdx]

	store := lo
	for i := lo; i < hi; i++ {
		if a[i].Embedding[axis] < pivotVal {
			a[i], a[store] = a[store], a[i]
			store++
		}
	}
	a[store], a[hi] = a[hi], a[store]
	return store
}

func buildKDTree(chunks []Chunk, quickselectThreshold int) *kdNode {
	if len(chunks) == 0 {
		return nil
	}
	axis := findSplitAxis(chunks)
	mid := partitionMedian(chunks, axis, quickselectThreshold)

	return &kdNode{
		chunk: chunks[mid],
		axis:  axis,
		left:  buildKDTree(chunks[:mid], quickselectThreshold),
		right: buildKDTree(chunks[mid+1:], quickselectThreshold),
	}
}

func collectLiveKDChunks(n *kdNode, out *[]Chunk) {
	if n == nil {
		return
	}
	if !n.deleted {
		*out = append(*out, n.chunk)
	}
	collectLiveKDChunks(n.left, out)
	collectLiveKDChunks(n.right, out)
}

func (t *KDTreeIndex) Algorithm() string { return "kd_tree" }

// Add appends a chunk to the insert buffer; it is not folded into the tree
// until a rebuild runs.
func (t *KDTreeIndex) Add(c Chunk) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if node, ok := t.idIndex[c.ID]; ok && !node.deleted {
		return ErrAlreadyPresent{ID: c.ID}
	}
	if t.bufferedIDs[c.ID] {
		return ErrAlreadyPresent{ID: c.ID}
	}

	t.addedChunks = append(t.addedChunks, c)
	t.bufferedIDs[c.ID] = true
	t.pendingChanges = true
	t.totalChunks++
	return nil
}

// Remove tombstones a chunk already folded into the tree, or removes it
// directly from the insert buffer if it hasn't been folded in yet.
func (t *KDTreeIndex) Remove(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bufferedIDs[id] {
		for i, c := range t.addedChunks {
			if c.ID == id {
				t.addedChunks = append(t.addedChunks[:i], t.addedChunks[i+1:]...)
				break
			}
		}
		delete(t.bufferedIDs, id)
		t.pendingChanges = true
		t.totalChunks--
		return nil
	}

	if node, ok := t.idIndex[id]; ok && !node.deleted {
		node.deleted = true
		t.deletedIDs[id] = true
		t.pendingChanges = true
		t.totalChunks--
		return nil
	}

	return ErrNotFound{ID: id}
}

// CheckRebuildNeeded reports whether accumulated buffered inserts and
// tombstoned deletes have crossed rebuildRatio relative to the live chunk
// count.
func (t *KDTreeIndex) CheckRebuildNeeded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.checkRebuildNeededLocked()
}

func (t *KDTreeIndex) checkRebuildNeededLocked() bool {
	if !t.pendingChanges {
		return false
	}
	denom := t.totalChunks
	if denom < 1 {
		denom = 1
	}
	changed := len(t.addedChunks) + len(t.deletedIDs)
	return float64(changed)/float64(denom) >= t.rebuildRatio
}

// RebuildIfNeeded rebuilds the tree from its live chunk set (tree chunks
// minus tombstones, plus the insert buffer) if CheckRebuildNeeded is true.
// If all is non-nil it is used as the authoritative live set instead.
func (t *KDTreeIndex) RebuildIfNeeded(all []Chunk) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.checkRebuildNeededLocked() {
		return false
	}

	var live []Chunk
	if all != nil {
		live = all
	} else {
		live = make([]Chunk, 0, t.totalChunks)
		collectLiveKDChunks(t.root, &live)
		live = append(live, t.addedChunks...)
	}

	build := make([]Chunk, len(live))
	copy(build, live)
	t.root = buildKDTree(build, t.quickselectThreshold)
	t.idIndex = make(map[string]*kdNode, len(live))
	indexKDNodes(t.root, t.idIndex)

	t.addedChunks = nil
	t.bufferedIDs = make(map[string]bool)
	t.deletedIDs = make(map[string]bool)
	t.pendingChanges = false
	t.totalChunks = len(live)
	return true
}

type kdCandidate struct {
	distSq float64
	chunk  Chunk
}

// insertCandidate keeps best sorted ascending by distSq and capped at k
// entries, replacing the worst candidate once full.
func insertCandidate(best []kdCandidate, c kdCandidate, k int) []kdCandidate {
	if len(best) < k {
		best = append(best, c)
		sort.Slice(best, func(i, j int) bool { return best[i].distSq < best[j].distSq })
		return best
	}
	if c.distSq < best[len(best)-1].distSq {
		best[len(best)-1] = c
		sort.Slice(best, func(i, j int) bool { return best[i].distSq < best[j].distSq })
	}
	return best
}

func (t *KDTreeIndex) searchNode(n *kdNode, q []float64, k int, filter Filter, best []kdCandidate) []kdCandidate {
	if n == nil {
		return best
	}
	if !n.deleted && (filter == nil || filter(n.chunk)) {
		best = insertCandidate(best, kdCandidate{distSq: vecmath.SqDist(q, n.chunk.Embedding), chunk: n.chunk}, k)
	}

	axisVal := q[n.axis]
	nodeVal := n.chunk.Embedding[n.axis]

	near, far := n.left, n.right
	if axisVal >= nodeVal {
		near, far = n.right, n.left
	}

	best = t.searchNode(near, q, k, filter, best)

	diff := axisVal - nodeVal
	if len(best) < k || diff*diff < best[len(best)-1].distSq {
		best = t.searchNode(far, q, k, filter, best)
	}
	return best
}

// Query runs a best-bin-first bounded search of the tree, then — if the
// insert buffer is non-empty — merges in a linear scan over it and reranks
// the combined set by normalized dot product so the two result sources
// compare on the same scale.
func (t *KDTreeIndex) Query(q []float64, k int, filter Filter) ([]Chunk, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if k <= 0 || (t.root == nil && len(t.addedChunks) == 0) {
		return []Chunk{}, nil
	}

	var best []kdCandidate
	if t.root != nil {
		best = t.searchNode(t.root, q, k, filter, nil)
	}
	treeResults := make([]Chunk, len(best))
	for i, c := range best {
		treeResults[i] = c.chunk
	}

	if len(t.addedChunks) == 0 {
		if k < len(treeResults) {
			treeResults = treeResults[:k]
		}
		return treeResults, nil
	}

	bufferIndex := NewLinearIndex(t.addedChunks, WithNormalize(true))
	bufferResults, err := bufferIndex.Query(q, k, filter)
	if err != nil {
		return nil, err
	}

	combined := make([]Chunk, 0, len(treeResults)+len(bufferResults))
	combined = append(combined, treeResults...)
	combined = append(combined, bufferResults...)

	nq := vecmath.Normalize(q)
	scores := make([]float64, len(combined))
	for i, c := range combined {
		scores[i] = vecmath.Dot(nq, vecmath.Normalize(c.Embedding))
	}
	order := make([]int, len(combined))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return scores[order[i]] > scores[order[j]] })

	if k > len(order) {
		k = len(order)
	}
	results := make([]Chunk, k)
	for i := 0; i < k; i++ {
		results[i] = combined[order[i]]
	}
	return results, nil
}

// Stats reports live chunk count plus buffer/tombstone occupancy.
func (t *KDTreeIndex) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Stats{
		ChunkCount:     t.totalChunks,
		BufferedChunks: len(t.addedChunks),
		DeletedChunks:  len(t.deletedIDs),
		HasBuffered:    true,
		HasDeleted:     true,
		Modified:       t.pendingChanges,
	}
}

var _ Index = (*KDTreeIndex)(nil)
