package ai

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"forensics/config"
)

// GeminiProvider calls the Google Generative Language API
type GeminiProvider struct {
	endpoint
}

// NewGeminiProvider creates a Gemini provider
func NewGeminiProvider(cfg config.ModelConfig, timeout time.Duration) *GeminiProvider {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	return &GeminiProvider{newEndpoint(LabelGemini, cfg, timeout)}
}

func (p *GeminiProvider) Complete(ctx context.Context, prompt string, opts Options) (*Completion, error) {
	maxTokens, temperature := p.resolve(opts)

	body := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]interface{}{
			"maxOutputTokens": maxTokens,
			"temperature":     temperature,
			"topP":            0.95,
			"topK":            40,
		},
		"safetySettings": []map[string]string{
			{"category": "HARM_CATEGORY_HARASSMENT", "threshold": "BLOCK_NONE"},
			{"category": "HARM_CATEGORY_HATE_SPEECH", "threshold": "BLOCK_NONE"},
			{"category": "HARM_CATEGORY_SEXUALLY_EXPLICIT", "threshold": "BLOCK_NONE"},
			{"category": "HARM_CATEGORY_DANGEROUS_CONTENT", "threshold": "BLOCK_NONE"},
		},
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		UsageMetadata struct {
			TotalTokenCount int `json:"totalTokenCount"`
		} `json:"usageMetadata"`
	}

	// The key travels in a header so it never appears in transport errors
	reqURL := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, url.PathEscape(p.model))
	headers := map[string]string{"x-goog-api-key": p.apiKey}
	if err := p.post(ctx, reqURL, headers, body, &result); err != nil {
		return nil, p.failure(err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 || result.Candidates[0].Content.Parts[0].Text == "" {
		return nil, p.failure(errors.New("empty response from gemini"))
	}

	return &Completion{
		Text:   result.Candidates[0].Content.Parts[0].Text,
		Tokens: result.UsageMetadata.TotalTokenCount,
	}, nil
}
