// Package config loads vectorflowd's runtime configuration from the
// environment, applying defaults and validating the result before the
// server starts.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures all runtime configuration for the vector database server.
type Config struct {
	Addr     string
	LogLevel string

	Cohere CohereConfig
	Embed  EmbedConfig
	Index  IndexDefaults
}

// CohereConfig groups the settings required to call Cohere's embed API.
// APIKey may be empty: text-search simply fails lazily at first use rather
// than at startup, since a deployment that never calls the text-search
// endpoint has no need for one.
type CohereConfig struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// EmbedConfig configures the LRU cache wrapping whichever embedder is
// selected.
type EmbedConfig struct {
	CacheSize int
}

// IndexDefaults configures the tunables applied to a library's index when
// no per-request override is supplied.
type IndexDefaults struct {
	Algorithm string

	KDTreeRebuildRatio       float64
	KDTreeQuickselectMinSize int

	LSHNumTables     int
	LSHHashSize      int
	LSHMaxCandidates int
}

// FromEnv builds a Config by reading environment variables and applying
// sensible defaults. The resulting configuration is validated before it is
// returned.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:     getEnv("VECTORFLOW_ADDR", "127.0.0.1:8080"),
		LogLevel: getEnv("VECTORFLOW_LOG_LEVEL", "info"),
		Cohere: CohereConfig{
			APIKey:     getEnv("COHERE_API_KEY", ""),
			Model:      getEnv("COHERE_EMBED_MODEL", "embed-english-v3.0"),
			Timeout:    getEnvDuration("COHERE_TIMEOUT", 30*time.Second),
			MaxRetries: getEnvInt("COHERE_MAX_RETRIES", 3),
		},
		Embed: EmbedConfig{
			CacheSize: getEnvInt("EMBED_CACHE_SIZE", 1000),
		},
		Index: IndexDefaults{
			Algorithm:                getEnv("VECTORFLOW_DEFAULT_ALGORITHM", "linear"),
			KDTreeRebuildRatio:       getEnvFloat("VECTORFLOW_KDTREE_REBUILD_RATIO", 0.1),
			KDTreeQuickselectMinSize: getEnvInt("VECTORFLOW_KDTREE_QUICKSELECT_MIN_SIZE", 32),
			LSHNumTables:             getEnvInt("VECTORFLOW_LSH_NUM_TABLES", 6),
			LSHHashSize:              getEnvInt("VECTORFLOW_LSH_HASH_SIZE", 12),
			LSHMaxCandidates:         getEnvInt("VECTORFLOW_LSH_MAX_CANDIDATES", 50),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration for internally inconsistent or
// out-of-range values. A missing Cohere API key is deliberately not an
// error here -- see CohereConfig's doc comment.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: VECTORFLOW_ADDR must not be empty")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("config: VECTORFLOW_LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel)
	}

	validAlgorithms := map[string]bool{"linear": true, "kd_tree": true, "lsh": true}
	if !validAlgorithms[c.Index.Algorithm] {
		return fmt.Errorf("config: VECTORFLOW_DEFAULT_ALGORITHM must be one of linear, kd_tree, lsh, got %q", c.Index.Algorithm)
	}

	if c.Index.KDTreeRebuildRatio <= 0 || c.Index.KDTreeRebuildRatio > 1 {
		return fmt.Errorf("config: VECTORFLOW_KDTREE_REBUILD_RATIO must be in (0, 1], got %f", c.Index.KDTreeRebuildRatio)
	}

	if c.Index.LSHNumTables <= 0 {
		return fmt.Errorf("config: VECTORFLOW_LSH_NUM_TABLES must be positive, got %d", c.Index.LSHNumTables)
	}
	if c.Index.LSHHashSize <= 0 {
		return fmt.Errorf("config: VECTORFLOW_LSH_HASH_SIZE must be positive, got %d", c.Index.LSHHashSize)
	}

	if c.Cohere.MaxRetries < 0 {
		return fmt.Errorf("config: COHERE_MAX_RETRIES must be non-negative, got %d", c.Cohere.MaxRetries)
	}
	if c.Embed.CacheSize <= 0 {
		return fmt.Errorf("config: EMBED_CACHE_SIZE must be positive, got %d", c.Embed.CacheSize)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
