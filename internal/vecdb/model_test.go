package vecdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewChunk_AssignsAnID(t *testing.T) {
	c := NewChunk("hello", []float64{1, 2}, nil)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "hello", c.Text)
}

func TestNewLibrary_AssignsAnID(t *testing.T) {
	lib := NewLibrary("docs", "desc")
	assert.NotEmpty(t, lib.ID)
	assert.Equal(t, "docs", lib.Name)
	assert.Equal(t, "desc", lib.Description)
}

func TestChunkMetadata_ToMapRendersRFC3339(t *testing.T) {
	ts := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	m := ChunkMetadata{Name: "intro", CreatedAt: ts}.ToMap()

	assert.Equal(t, "intro", m["name"])
	assert.Equal(t, "2024-06-15T12:00:00Z", m["created_at"])
}
