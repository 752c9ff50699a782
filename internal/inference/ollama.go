package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"matric-memory/internal/types"
)

// OllamaBackend implements Embedder and Generator against a local Ollama
// server's REST API (/api/embeddings, /api/generate).
type OllamaBackend struct {
	baseURL       string
	generateModel string
	httpClient    *http.Client
}

func NewOllamaBackend(baseURL, generateModel string) *OllamaBackend {
	if generateModel == "" {
		generateModel = "llama3"
	}
	return &OllamaBackend{
		baseURL:       baseURL,
		generateModel: generateModel,
		httpClient:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (o *OllamaBackend) Name() string { return "ollama" }

func (o *OllamaBackend) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("ollama: build health request: %w", err)
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: health check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("ollama: health check returned status %d", resp.StatusCode)
	}
	return nil
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed calls /api/embeddings once per text, since Ollama's embeddings
// endpoint takes a single prompt per request. MRL truncation, if
// cfg.DefaultTruncateDim is set, is applied client-side by slicing the
// returned vector — Ollama has no server-side truncation parameter.
func (o *OllamaBackend) Embed(ctx context.Context, texts []string, cfg types.EmbeddingConfig) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := o.embedOne(ctx, cfg.Model, text)
		if err != nil {
			return nil, fmt.Errorf("ollama: embed text %d: %w", i, err)
		}
		if cfg.SupportsMRL && cfg.DefaultTruncateDim != nil && *cfg.DefaultTruncateDim < len(vec) {
			vec = vec[:*cfg.DefaultTruncateDim]
		}
		out[i] = vec
	}
	return out, nil
}

func (o *OllamaBackend) embedOne(ctx context.Context, model, text string) ([]float32, error) {
	reqBody, err := json.Marshal(ollamaEmbedRequest{Model: model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embeddings", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var parsed ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return parsed.Embedding, nil
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options *ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate calls /api/generate with streaming disabled, returning the full
// response text in one shot.
func (o *OllamaBackend) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	reqBody, err := json.Marshal(ollamaGenerateRequest{
		Model:  o.generateModel,
		Prompt: prompt,
		Stream: false,
		Options: &ollamaOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("ollama: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("ollama: status %d", resp.StatusCode)
	}

	var parsed ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}
	return parsed.Response, nil
}
