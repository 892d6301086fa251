package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.2:1b"

	// defaultTimeout bounds each inference call. A turn must never block on
	// the gateway for longer than a few seconds; past the deadline the caller
	// proceeds on its deterministic fallback.
	defaultTimeout = 5 * time.Second
)

// Config configures the Ollama-compatible inference provider.
type Config struct {
	// BaseURL is the root of the Ollama HTTP API.
	// Defaults to http://localhost:11434 when empty.
	BaseURL string

	// Model is the model tag passed in each generate request.
	// Defaults to llama3.2:1b when empty (small and fast; label
	// classification does not need a large model).
	Model string

	// Timeout is the HTTP request timeout. Defaults to 5 s.
	Timeout time.Duration
}

// ollamaProvider implements Provider against the Ollama /api/generate
// endpoint with streaming disabled, so each call yields exactly one
// completion string.
type ollamaProvider struct {
	cfg    Config
	client *http.Client
}

// New returns a Provider backed by an Ollama (or compatible) server.
// The returned provider is safe for concurrent use.
func New(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &ollamaProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// --- minimal Ollama wire types ---

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends prompt to the inference service and returns the raw
// completion text. A single failed call returns ErrUnavailable immediately;
// no retries are attempted, because the callers' fallback paths are cheaper
// and more predictable than a second network round trip.
func (p *ollamaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	body := generateRequest{
		Model:  p.cfg.Model,
		Prompt: prompt,
		Stream: false,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("gateway: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.BaseURL+"/api/generate",
		bytes.NewReader(data),
	)
	if err != nil {
		return "", fmt.Errorf("gateway: create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gateway: read response body: %w", err)
	}

	var gen generateResponse
	if err := json.Unmarshal(respBody, &gen); err != nil {
		return "", fmt.Errorf("gateway: decode response: %w (raw: %.200s)", err, respBody)
	}

	return gen.Response, nil
}
