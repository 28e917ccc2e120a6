package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbedder_StaticProvider(t *testing.T) {
	embedder, err := NewEmbedder(Config{Provider: ProviderStatic})

	require.NoError(t, err)
	assert.Equal(t, "static", embedder.ModelName())
}

func TestNewEmbedder_DefaultsToCohere(t *testing.T) {
	embedder, err := NewEmbedder(Config{})

	require.NoError(t, err)
	assert.Equal(t, DefaultCohereModel, embedder.ModelName())
}

func TestNewEmbedder_MissingAPIKey_DoesNotFailConstruction(t *testing.T) {
	// Given: a Cohere provider configured with no API key
	embedder, err := NewEmbedder(Config{Provider: ProviderCohere})
	require.NoError(t, err)

	// When: text is actually embedded
	_, err = embedder.EmbedBatch(context.Background(), []string{"hello"})

	// Then: the failure surfaces lazily, at the call site
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API key configured")
}

func TestNewEmbedder_CacheDisabled_ReturnsInnerDirectly(t *testing.T) {
	embedder, err := NewEmbedder(Config{Provider: ProviderStatic, CacheDisabled: true})

	require.NoError(t, err)
	_, ok := embedder.(*CachedEmbedder)
	assert.False(t, ok, "cache-disabled config should not wrap in CachedEmbedder")
}

func TestNewEmbedder_CacheEnabledByDefault(t *testing.T) {
	embedder, err := NewEmbedder(Config{Provider: ProviderStatic})

	require.NoError(t, err)
	_, ok := embedder.(*CachedEmbedder)
	assert.True(t, ok, "embedder should be wrapped in CachedEmbedder by default")
}

func TestNewEmbedder_UnknownProvider(t *testing.T) {
	_, err := NewEmbedder(Config{Provider: ProviderType("bogus")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestParseProvider(t *testing.T) {
	assert.Equal(t, ProviderStatic, ParseProvider("static"))
	assert.Equal(t, ProviderStatic, ParseProvider("STATIC"))
	assert.Equal(t, ProviderCohere, ParseProvider("cohere"))
	assert.Equal(t, ProviderCohere, ParseProvider(""))
	assert.Equal(t, ProviderCohere, ParseProvider("unknown"))
}

func TestIsValidProvider(t *testing.T) {
	assert.True(t, IsValidProvider("cohere"))
	assert.True(t, IsValidProvider("static"))
	assert.False(t, IsValidProvider("ollama"))
}
