// Package ai forwards forensic analysis prompts to hosted LLM providers.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"forensics/config"
	"forensics/core"
)

// Provider labels
const (
	LabelGemini    = "Google Gemini"
	LabelOpenAI    = "OpenAI"
	LabelAnthropic = "Anthropic Claude"
)

// Options override a provider's configured defaults. Zero values keep the default.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Completion is the text a provider produced and the tokens it billed
type Completion struct {
	Text   string
	Tokens int
}

// Provider is a hosted LLM that completes a single prompt
type Provider interface {
	Name() string
	Model() string
	Complete(ctx context.Context, prompt string, opts Options) (*Completion, error)
}

// ProvidersFromConfig builds every provider with an API key, in priority
// order Google, OpenAI, Anthropic.
func ProvidersFromConfig(cfg config.AIConfig) []Provider {
	var providers []Provider
	if cfg.Google.APIKey != "" {
		providers = append(providers, NewGeminiProvider(cfg.Google, cfg.Timeout))
	}
	if cfg.OpenAI.APIKey != "" {
		providers = append(providers, NewOpenAIProvider(cfg.OpenAI, cfg.Timeout))
	}
	if cfg.Anthropic.APIKey != "" {
		providers = append(providers, NewAnthropicProvider(cfg.Anthropic, cfg.Timeout))
	}
	return providers
}

// endpoint holds the connection settings every provider shares
type endpoint struct {
	label       string
	apiKey      string
	model       string
	baseURL     string
	maxTokens   int
	temperature float64
	client      *http.Client
}

func newEndpoint(label string, cfg config.ModelConfig, timeout time.Duration) endpoint {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return endpoint{
		label:       label,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		baseURL:     strings.TrimRight(cfg.URL, "/"),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
	}
}

func (e *endpoint) Name() string {
	return e.label
}

func (e *endpoint) Model() string {
	return e.model
}

func (e *endpoint) resolve(opts Options) (int, float64) {
	maxTokens, temperature := e.maxTokens, e.temperature
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		temperature = opts.Temperature
	}
	return maxTokens, temperature
}

// failure wraps err as a provider error labelled with this endpoint
func (e *endpoint) failure(err error) error {
	return core.NewProviderError(e.label, fmt.Sprintf("%s analysis failed: %v", e.label, err), err)
}

// post sends body as JSON and decodes a 200 response into dest
func (e *endpoint) post(ctx context.Context, url string, headers map[string]string, body map[string]interface{}, dest interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, upstreamMessage(respBody))
	}

	if err := json.Unmarshal(respBody, dest); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// upstreamMessage extracts error.message from a provider error body,
// falling back to the truncated body.
func upstreamMessage(body []byte) string {
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	return truncateAPIError(body)
}

func truncateAPIError(body []byte) string {
	const maxLen = 512
	if len(body) <= maxLen {
		return string(body)
	}
	return string(body[:maxLen]) + "... (truncated)"
}
