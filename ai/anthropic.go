package ai

import (
	"context"
	"errors"
	"time"

	"forensics/config"
)

// AnthropicProvider calls the Anthropic messages API
type AnthropicProvider struct {
	endpoint
}

// NewAnthropicProvider creates an Anthropic provider
func NewAnthropicProvider(cfg config.ModelConfig, timeout time.Duration) *AnthropicProvider {
	return &AnthropicProvider{newEndpoint(LabelAnthropic, cfg, timeout)}
}

func (p *AnthropicProvider) Complete(ctx context.Context, prompt string, opts Options) (*Completion, error) {
	maxTokens, _ := p.resolve(opts)

	body := map[string]interface{}{
		"model":      p.model,
		"max_tokens": maxTokens,
		"messages": []map[string]interface{}{
			{"role": "user", "content": prompt},
		},
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}

	headers := map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": "2023-06-01",
	}
	if err := p.post(ctx, p.baseURL+"/messages", headers, body, &result); err != nil {
		return nil, p.failure(err)
	}

	for _, block := range result.Content {
		if block.Type == "text" && block.Text != "" {
			return &Completion{
				Text:   block.Text,
				Tokens: result.Usage.InputTokens + result.Usage.OutputTokens,
			}, nil
		}
	}
	return nil, p.failure(errors.New("empty response from anthropic"))
}
