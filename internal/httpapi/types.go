package httpapi

import "github.com/Aman-CERP/vectorflow/internal/vecdb"

// libraryMetadataDTO mirrors the original's LibraryMetadata: a library's
// only required metadata field is a free-text description.
type libraryMetadataDTO struct {
	Description string `json:"description"`
}

// createLibraryRequest is the body of POST /libraries.
type createLibraryRequest struct {
	Name     string              `json:"name"`
	Metadata libraryMetadataDTO `json:"metadata"`
}

// librarySummaryDTO is returned by list/get library endpoints.
type librarySummaryDTO struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Metadata      libraryMetadataDTO  `json:"metadata"`
	DocumentCount int                 `json:"document_count"`
	Dimension     int                 `json:"dimension"`
}

func toLibrarySummary(lib *vecdb.Library) librarySummaryDTO {
	return librarySummaryDTO{
		ID:            lib.ID,
		Name:          lib.Name,
		Metadata:      libraryMetadataDTO{Description: lib.Description},
		DocumentCount: len(lib.Documents),
		Dimension:     lib.Dimension,
	}
}

// documentMetadataDTO mirrors the original's DocumentMetadata.
type documentMetadataDTO struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// createDocumentRequest is the body of POST /libraries/{lib}/documents.
type createDocumentRequest struct {
	Metadata documentMetadataDTO `json:"metadata"`
}

// documentSummaryDTO is returned by GET /libraries/{lib}/documents.
type documentSummaryDTO struct {
	ID         string              `json:"id"`
	Metadata   documentMetadataDTO `json:"metadata"`
	ChunkCount int                 `json:"chunk_count"`
}

func toDocumentSummary(doc vecdb.Document) documentSummaryDTO {
	return documentSummaryDTO{
		ID:         doc.ID,
		Metadata:   metadataToDocumentDTO(doc.Metadata),
		ChunkCount: len(doc.Chunks),
	}
}

func metadataToDocumentDTO(m map[string]any) documentMetadataDTO {
	dto := documentMetadataDTO{}
	if title, ok := m["title"].(string); ok {
		dto.Title = title
	}
	if author, ok := m["author"].(string); ok {
		dto.Author = author
	}
	return dto
}

func (d documentMetadataDTO) toMap() map[string]any {
	return map[string]any{"title": d.Title, "author": d.Author}
}

// chunkMetadataDTO mirrors the original's ChunkMetadata: a human name plus
// an RFC3339 creation timestamp.
type chunkMetadataDTO struct {
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

func metadataToChunkDTO(m map[string]any) chunkMetadataDTO {
	dto := chunkMetadataDTO{}
	if name, ok := m["name"].(string); ok {
		dto.Name = name
	}
	if createdAt, ok := m["created_at"].(string); ok {
		dto.CreatedAt = createdAt
	}
	return dto
}

func (m chunkMetadataDTO) toMap() map[string]any {
	out := map[string]any{"name": m.Name}
	if m.CreatedAt != "" {
		out["created_at"] = m.CreatedAt
	}
	return out
}

// createChunkRequest is the body of POST .../chunks.
type createChunkRequest struct {
	Text      string           `json:"text"`
	Embedding []float64        `json:"embedding"`
	Metadata  chunkMetadataDTO `json:"metadata"`
}

// chunkDTO is the full chunk representation (embedding included), returned
// from chunk CRUD and vector search.
type chunkDTO struct {
	ID        string           `json:"id"`
	Text      string           `json:"text"`
	Embedding []float64        `json:"embedding"`
	Metadata  chunkMetadataDTO `json:"metadata"`
}

func toChunkDTO(c vecdb.Chunk) chunkDTO {
	return chunkDTO{
		ID:        c.ID,
		Text:      c.Text,
		Embedding: c.Embedding,
		Metadata:  metadataToChunkDTO(c.Metadata),
	}
}

func toChunkDTOs(chunks []vecdb.Chunk) []chunkDTO {
	out := make([]chunkDTO, len(chunks))
	for i, c := range chunks {
		out[i] = toChunkDTO(c)
	}
	return out
}

// chunkResultDTO omits the embedding, matching the original's text-search
// serialization (id, text, metadata only -- the caller already has the
// query text, not the raw vectors).
type chunkResultDTO struct {
	ID       string           `json:"id"`
	Text     string           `json:"text"`
	Metadata chunkMetadataDTO `json:"metadata"`
}

func toChunkResultDTOs(chunks []vecdb.Chunk) []chunkResultDTO {
	out := make([]chunkResultDTO, len(chunks))
	for i, c := range chunks {
		out[i] = chunkResultDTO{ID: c.ID, Text: c.Text, Metadata: metadataToChunkDTO(c.Metadata)}
	}
	return out
}

// textSearchRequest is the body of POST .../text-search.
type textSearchRequest struct {
	Text string `json:"text"`
}

// textSearchResponse is the body returned by POST .../text-search.
type textSearchResponse struct {
	QueryText    string           `json:"query_text"`
	ResultsCount int              `json:"results_count"`
	Results      []chunkResultDTO `json:"results"`
}

// batchChunksRequest is the body of POST .../batch-chunks.
type batchChunksRequest struct {
	Texts      []string           `json:"texts"`
	Metadata   []chunkMetadataDTO `json:"metadata"`
	DocumentID string             `json:"document_id"`
}

// deletedResponse is the common shape for delete endpoints that report
// whether the library's attached index was invalidated or patched.
type deletedResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Warning string `json:"warning,omitempty"`
	Info    string `json:"info,omitempty"`
}

// indexStatusDTO renders vecdb.IndexStatus for the index status/build
// endpoints.
type indexStatusDTO struct {
	Status    string        `json:"status"`
	Algorithm string        `json:"algorithm,omitempty"`
	Stats     *indexStatsDTO `json:"stats,omitempty"`
}

type indexStatsDTO struct {
	ChunkCount     int  `json:"chunk_count"`
	BufferedChunks *int `json:"buffered_chunks,omitempty"`
	DeletedChunks  *int `json:"deleted_chunks,omitempty"`
}

func toIndexStatusDTO(status vecdb.IndexStatus) indexStatusDTO {
	dto := indexStatusDTO{Status: status.Status, Algorithm: status.Algorithm}
	if status.Status == vecdb.StatusNone {
		return dto
	}
	stats := &indexStatsDTO{ChunkCount: status.Stats.ChunkCount}
	if status.Stats.HasBuffered {
		v := status.Stats.BufferedChunks
		stats.BufferedChunks = &v
	}
	if status.Stats.HasDeleted {
		v := status.Stats.DeletedChunks
		stats.DeletedChunks = &v
	}
	dto.Stats = stats
	return dto
}
