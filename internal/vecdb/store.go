package vecdb

import (
	"context"
	"sync"

	"github.com/Aman-CERP/vectorflow/internal/index"
)

// indexHandle bundles an attached index with the algorithm name that built
// it, so status reporting doesn't need to type-switch on the concrete
// Index implementation.
type indexHandle struct {
	idx       index.Index
	algorithm string
}

// IndexStatus reports what state a library's attached index is in.
type IndexStatus struct {
	Status    string // "none", "needs_rebuild", "modified", "current"
	Algorithm string
	Stats     index.Stats
}

const (
	StatusNone         = "none"
	StatusNeedsRebuild = "needs_rebuild"
	StatusModified     = "modified"
	StatusCurrent      = "current"
)

// Store is the in-memory facade over every library: it owns document and
// chunk CRUD, serializes mutations per library, and manages each library's
// attached search index lifecycle (build, invalidate-on-error, rebuild).
type Store struct {
	mu        sync.RWMutex
	libraries map[string]*Library

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewStore builds an empty Store.
func NewStore() *Store {
	return &Store{
		libraries: make(map[string]*Library),
		locks:     make(map[string]*sync.Mutex),
	}
}

// lockFor returns the library's mutation serializer, creating it lazily.
// Locks for distinct libraries are independent: there is no ordering
// guarantee or shared wait across libraries, matching the concurrency
// model this store implements.
func (s *Store) lockFor(libraryID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[libraryID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[libraryID] = l
	}
	return l
}

// CreateLibrary registers a new, empty library.
func (s *Store) CreateLibrary(name, description string) *Library {
	lib := NewLibrary(name, description)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.libraries[lib.ID] = &lib
	return &lib
}

// GetLibrary returns a pointer to the live library state. Callers that only
// read should still go through Store methods where possible; this exists
// for read-mostly callers like the HTTP layer rendering a library summary.
func (s *Store) GetLibrary(id string) (*Library, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lib, ok := s.libraries[id]
	if !ok {
		return nil, ErrLibraryNotFound{ID: id}
	}
	return lib, nil
}

// ListLibraries returns every library currently held.
func (s *Store) ListLibraries() []*Library {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Library, 0, len(s.libraries))
	for _, lib := range s.libraries {
		out = append(out, lib)
	}
	return out
}

// DeleteLibrary removes a library and its mutation lock.
func (s *Store) DeleteLibrary(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.libraries[id]; !ok {
		return ErrLibraryNotFound{ID: id}
	}
	delete(s.libraries, id)

	s.locksMu.Lock()
	delete(s.locks, id)
	s.locksMu.Unlock()
	return nil
}

// AddDocument appends a new document (with no chunks yet) to a library.
func (s *Store) AddDocument(ctx context.Context, libraryID string, doc Document) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	lock := s.lockFor(libraryID)
	lock.Lock()
	defer lock.Unlock()

	lib, err := s.GetLibrary(libraryID)
	if err != nil {
		return Document{}, err
	}

	lib.Documents = append(lib.Documents, doc)
	return doc, nil
}

// DeleteDocument removes a document and, for every chunk it held, removes
// the chunk from the attached index too. If any per-chunk index removal
// fails the whole index is dropped (the store no longer trusts its
// consistency) rather than left half-updated.
func (s *Store) DeleteDocument(ctx context.Context, libraryID, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock := s.lockFor(libraryID)
	lock.Lock()
	defer lock.Unlock()

	lib, err := s.GetLibrary(libraryID)
	if err != nil {
		return err
	}

	pos := -1
	for i, d := range lib.Documents {
		if d.ID == documentID {
			pos = i
			break
		}
	}
	if pos == -1 {
		return ErrDocumentNotFound{LibraryID: libraryID, DocumentID: documentID}
	}

	doc := lib.Documents[pos]
	s.removeChunksFromIndex(lib, doc.Chunks)

	lib.Documents = append(lib.Documents[:pos], lib.Documents[pos+1:]...)
	return nil
}

// removeChunksFromIndex removes each chunk id from lib's attached index, if
// any. Any removal failure, including an id unknown to the index (as when
// DeleteChunk is given an id the library does not hold), drops the whole
// index rather than leaving it partially updated, mirroring the source
// store's error-containment behavior.
func (s *Store) removeChunksFromIndex(lib *Library, chunks []Chunk) {
	if lib.index.idx == nil {
		return
	}
	for _, c := range chunks {
		if err := lib.index.idx.Remove(c.ID); err != nil {
			lib.index = indexHandle{}
			return
		}
	}
}

// AddChunk appends a chunk to a document, enforcing the library's fixed
// embedding dimension, and mirrors the insert into the attached index if
// one exists.
func (s *Store) AddChunk(ctx context.Context, libraryID, documentID string, chunk Chunk) (Chunk, error) {
	if err := ctx.Err(); err != nil {
		return Chunk{}, err
	}
	lock := s.lockFor(libraryID)
	lock.Lock()
	defer lock.Unlock()

	lib, err := s.GetLibrary(libraryID)
	if err != nil {
		return Chunk{}, err
	}

	if lib.Dimension == 0 {
		lib.Dimension = len(chunk.Embedding)
	} else if len(chunk.Embedding) != lib.Dimension {
		return Chunk{}, ErrDimensionMismatch{Expected: lib.Dimension, Got: len(chunk.Embedding)}
	}

	docPos := -1
	for i, d := range lib.Documents {
		if d.ID == documentID {
			docPos = i
			break
		}
	}
	if docPos == -1 {
		return Chunk{}, ErrDocumentNotFound{LibraryID: libraryID, DocumentID: documentID}
	}

	lib.Documents[docPos].Chunks = append(lib.Documents[docPos].Chunks, chunk)

	if lib.index.idx != nil {
		if err := lib.index.idx.Add(toIndexChunk(chunk)); err != nil {
			if _, exists := err.(index.ErrAlreadyPresent); !exists {
				lib.index = indexHandle{}
			}
		}
	}

	return chunk, nil
}

// DeleteChunk removes a single chunk from its document, mirroring the
// removal into the attached index first. The chunk count before and after
// is compared so a no-op delete (unknown id) surfaces as ErrChunkNotFound
// rather than silently succeeding.
func (s *Store) DeleteChunk(ctx context.Context, libraryID, documentID, chunkID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock := s.lockFor(libraryID)
	lock.Lock()
	defer lock.Unlock()

	lib, err := s.GetLibrary(libraryID)
	if err != nil {
		return err
	}

	docPos := -1
	for i, d := range lib.Documents {
		if d.ID == documentID {
			docPos = i
			break
		}
	}
	if docPos == -1 {
		return ErrDocumentNotFound{LibraryID: libraryID, DocumentID: documentID}
	}

	before := len(lib.Documents[docPos].Chunks)

	s.removeChunksFromIndex(lib, []Chunk{{ID: chunkID}})

	chunks := lib.Documents[docPos].Chunks
	filtered := chunks[:0:0]
	for _, c := range chunks {
		if c.ID != chunkID {
			filtered = append(filtered, c)
		}
	}
	lib.Documents[docPos].Chunks = filtered

	if len(filtered) == before {
		return ErrChunkNotFound{LibraryID: libraryID, DocumentID: documentID, ChunkID: chunkID}
	}
	return nil
}

// GetDocumentChunks returns the chunks of a single document.
func (s *Store) GetDocumentChunks(libraryID, documentID string) ([]Chunk, error) {
	lib, err := s.GetLibrary(libraryID)
	if err != nil {
		return nil, err
	}
	for _, d := range lib.Documents {
		if d.ID == documentID {
			return d.Chunks, nil
		}
	}
	return nil, ErrDocumentNotFound{LibraryID: libraryID, DocumentID: documentID}
}

// GetAllDocuments returns every document in a library.
func (s *Store) GetAllDocuments(libraryID string) ([]Document, error) {
	lib, err := s.GetLibrary(libraryID)
	if err != nil {
		return nil, err
	}
	return lib.Documents, nil
}

// allChunks flattens every chunk across every document in a library, in
// document then chunk order.
func allChunks(lib *Library) []Chunk {
	var out []Chunk
	for _, d := range lib.Documents {
		out = append(out, d.Chunks...)
	}
	return out
}

func toIndexChunk(c Chunk) index.Chunk {
	return index.Chunk{ID: c.ID, Text: c.Text, Embedding: c.Embedding, Metadata: c.Metadata}
}

func toIndexChunks(chunks []Chunk) []index.Chunk {
	out := make([]index.Chunk, len(chunks))
	for i, c := range chunks {
		out[i] = toIndexChunk(c)
	}
	return out
}

func fromIndexChunk(c index.Chunk) Chunk {
	return Chunk{ID: c.ID, Text: c.Text, Embedding: c.Embedding, Metadata: c.Metadata}
}

// BuildIndex (re)builds a library's attached index. If force is false and
// an updateable index of the same algorithm is already attached, this
// either rebuilds it incrementally (if it needs one) or simply
// acknowledges accumulated changes without a full rebuild; otherwise (or
// when force is true) it builds a brand-new index from every live chunk.
func (s *Store) BuildIndex(libraryID, algorithm string, force bool, opts index.Options) (IndexStatus, error) {
	lock := s.lockFor(libraryID)
	lock.Lock()
	defer lock.Unlock()

	lib, err := s.GetLibrary(libraryID)
	if err != nil {
		return IndexStatus{}, err
	}

	sameAlgorithm := lib.index.idx != nil && lib.index.algorithm == algorithm
	if !force && sameAlgorithm && index.IsUpdateable(lib.index.idx) {
		if lib.index.idx.CheckRebuildNeeded() {
			lib.index.idx.RebuildIfNeeded(toIndexChunks(allChunks(lib)))
		}
		return s.statusLocked(lib), nil
	}

	built, err := index.Create(toIndexChunks(allChunks(lib)), algorithm, opts)
	if err != nil {
		return IndexStatus{}, err
	}
	lib.index = indexHandle{idx: built, algorithm: algorithm}
	return s.statusLocked(lib), nil
}

// IndexStatus reports the current status of a library's attached index.
func (s *Store) IndexStatus(libraryID string) (IndexStatus, error) {
	lib, err := s.GetLibrary(libraryID)
	if err != nil {
		return IndexStatus{}, err
	}
	return s.statusLocked(lib), nil
}

func (s *Store) statusLocked(lib *Library) IndexStatus {
	if lib.index.idx == nil {
		return IndexStatus{Status: StatusNone}
	}

	stats := lib.index.idx.Stats()
	status := StatusCurrent
	switch {
	case lib.index.idx.CheckRebuildNeeded():
		status = StatusNeedsRebuild
	case stats.Modified:
		status = StatusModified
	}

	return IndexStatus{
		Status:    status,
		Algorithm: lib.index.algorithm,
		Stats:     stats,
	}
}

// Query runs a k-NN search against a library's attached index. If the
// index needs a rebuild, rebuildIfNeeded decides whether to trigger it
// first (mirroring the ?rebuild_if_needed query parameter on the HTTP
// surface) or fail fast with ErrIndexRebuildNeeded.
func (s *Store) Query(ctx context.Context, libraryID string, queryVec []float64, k int, filter index.Filter, rebuildIfNeeded bool) ([]Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lock := s.lockFor(libraryID)
	lock.Lock()
	defer lock.Unlock()

	lib, err := s.GetLibrary(libraryID)
	if err != nil {
		return nil, err
	}
	if lib.index.idx == nil {
		return nil, ErrIndexMissing{LibraryID: libraryID}
	}
	if len(queryVec) != lib.Dimension {
		return nil, ErrDimensionMismatch{Expected: lib.Dimension, Got: len(queryVec)}
	}

	if lib.index.idx.CheckRebuildNeeded() {
		if !rebuildIfNeeded {
			return nil, ErrIndexRebuildNeeded{LibraryID: libraryID}
		}
		lib.index.idx.RebuildIfNeeded(toIndexChunks(allChunks(lib)))
	}

	results, err := lib.index.idx.Query(queryVec, k, filter)
	if err != nil {
		return nil, err
	}

	out := make([]Chunk, len(results))
	for i, r := range results {
		out[i] = fromIndexChunk(r)
	}
	return out, nil
}
