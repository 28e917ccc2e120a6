package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultCohereModel is used when no model override is configured.
const DefaultCohereModel = "embed-english-v3.0"

const cohereEmbedURL = "https://api.cohere.ai/v1/embed"

// CohereConfig configures a CohereEmbedder.
type CohereConfig struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// CohereEmbedder calls Cohere's HTTP embed endpoint in batches.
type CohereEmbedder struct {
	client     *http.Client
	apiKey     string
	model      string
	maxRetries int
}

var _ Embedder = (*CohereEmbedder)(nil)

// NewCohereEmbedder builds a CohereEmbedder, applying defaults for any
// zero-valued config field.
func NewCohereEmbedder(cfg CohereConfig) *CohereEmbedder {
	if cfg.Model == "" {
		cfg.Model = DefaultCohereModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	return &CohereEmbedder{
		client:     &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
	}
}

func (e *CohereEmbedder) ModelName() string { return e.model }

type cohereEmbedRequest struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

type cohereEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Message    string      `json:"message"`
}

// EmbedBatch posts texts to Cohere's embed endpoint, retrying every failed
// attempt (whatever the error) with exponential backoff via withRetry.
func (e *CohereEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}
	if e.apiKey == "" {
		return nil, fmt.Errorf("cohere embedder: no API key configured")
	}

	var result [][]float64
	err := withRetry(ctx, e.maxRetries, func() error {
		embeddings, err := e.doEmbed(ctx, texts)
		if err != nil {
			return err
		}
		result = embeddings
		return nil
	})
	return result, err
}

func (e *CohereEmbedder) doEmbed(ctx context.Context, texts []string) ([][]float64, error) {
	body, err := json.Marshal(cohereEmbedRequest{
		Texts:     texts,
		Model:     e.model,
		InputType: "search_document",
	})
	if err != nil {
		return nil, fmt.Errorf("cohere embedder: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cohereEmbedURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("cohere embedder: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cohere embedder: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cohere embedder: reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cohere embedder: status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed cohereEmbedResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("cohere embedder: decoding response: %w", err)
	}
	if parsed.Message != "" {
		return nil, fmt.Errorf("cohere embedder: %s", parsed.Message)
	}

	return parsed.Embeddings, nil
}
