package aiprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ariachat/server/internal/port/outbound"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.0-flash"

	// ProviderGemini names the Gemini provider in logs and metrics.
	ProviderGemini = "gemini"
)

var (
	// ErrEmptyCompletion is returned when the provider answers without text.
	ErrEmptyCompletion = errors.New("completion returned no text")
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("completion api key not configured")
)

// GeminiConfig configures the Gemini adapter.
type GeminiConfig struct {
	BaseURL         string
	APIKey          string
	Model           string
	MaxOutputTokens int
	Temperature     *float64
}

// GeminiAdapter implements outbound.CompletionPort over the Gemini REST API.
type GeminiAdapter struct {
	client *http.Client
	cfg    GeminiConfig
}

// NewGeminiAdapter creates a new Gemini adapter with the given HTTP client.
func NewGeminiAdapter(client *http.Client, cfg GeminiConfig) *GeminiAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	return &GeminiAdapter{client: client, cfg: cfg}
}

// Name returns the provider name.
func (a *GeminiAdapter) Name() string {
	return ProviderGemini
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// Complete generates a single reply for prompt.
func (a *GeminiAdapter) Complete(ctx context.Context, prompt string) (string, error) {
	if a.cfg.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	respBody, err := a.doRequest(ctx, "/models/"+a.cfg.Model+":generateContent", a.buildRequest(prompt))
	if err != nil {
		return "", err
	}
	defer respBody.Close()

	var resp geminiResponse
	if err := json.NewDecoder(respBody).Decode(&resp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}

	var sb strings.Builder
	if len(resp.Candidates) > 0 {
		for _, p := range resp.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyCompletion
	}
	return sb.String(), nil
}

func (a *GeminiAdapter) buildRequest(prompt string) map[string]any {
	body := map[string]any{
		"contents": []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}

	gen := map[string]any{}
	if a.cfg.MaxOutputTokens > 0 {
		gen["maxOutputTokens"] = a.cfg.MaxOutputTokens
	}
	if a.cfg.Temperature != nil {
		gen["temperature"] = *a.cfg.Temperature
	}
	if len(gen) > 0 {
		body["generationConfig"] = gen
	}
	return body
}

// doRequest performs an HTTP request to the Gemini API.
func (a *GeminiAdapter) doRequest(ctx context.Context, path string, body map[string]any) (io.ReadCloser, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", a.cfg.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return resp.Body, nil
}

// APIError is a non-2xx provider response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// Compile-time interface assertions
var _ outbound.CompletionPort = (*GeminiAdapter)(nil)
