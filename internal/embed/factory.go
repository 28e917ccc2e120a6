package embed

import (
	"fmt"
	"strings"
	"time"
)

// ProviderType selects which Embedder implementation NewEmbedder builds.
type ProviderType string

const (
	// ProviderCohere calls Cohere's hosted embed API. This is the production
	// default; a missing API key is not a construction-time error, it
	// surfaces lazily as an error from the first EmbedBatch call.
	ProviderCohere ProviderType = "cohere"

	// ProviderStatic uses the deterministic hash-based embedder, for tests
	// and offline environments with no Cohere access.
	ProviderStatic ProviderType = "static"
)

// Config configures the embedder NewEmbedder constructs.
type Config struct {
	Provider ProviderType

	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int

	// CacheDisabled skips the LRU-cached decorator, mainly useful in tests
	// that assert on call counts against the inner embedder directly.
	CacheDisabled bool
	CacheSize     int
}

// NewEmbedder builds an Embedder per cfg, wrapped in an LRU cache unless
// disabled. Cohere is the default provider: a blank APIKey is accepted here
// and only surfaces as an error on first use, since a library with no
// text-search traffic never needs one.
func NewEmbedder(cfg Config) (Embedder, error) {
	var embedder Embedder

	switch cfg.Provider {
	case ProviderStatic:
		embedder = NewStaticEmbedder()

	case ProviderCohere, "":
		embedder = NewCohereEmbedder(CohereConfig{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
		})

	default:
		return nil, fmt.Errorf("embed: unknown provider %q", cfg.Provider)
	}

	if cfg.CacheDisabled {
		return embedder, nil
	}
	return NewCachedEmbedder(embedder, cfg.CacheSize), nil
}

// ParseProvider converts a string to ProviderType, defaulting to Cohere for
// anything unrecognized.
func ParseProvider(s string) ProviderType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "static":
		return ProviderStatic
	default:
		return ProviderCohere
	}
}

// ValidProviders returns all valid provider names.
func ValidProviders() []string {
	return []string{string(ProviderCohere), string(ProviderStatic)}
}

// IsValidProvider checks if a provider name is valid.
func IsValidProvider(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, p := range ValidProviders() {
		if lower == p {
			return true
		}
	}
	return false
}

func (p ProviderType) String() string { return string(p) }
