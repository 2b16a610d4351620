package ai

import (
	"context"
	"errors"
	"time"

	"forensics/config"
)

const openAISystemPrompt = "You are a cybersecurity expert analyzing log events and forensic evidence. Provide detailed, technical analysis."

// OpenAIProvider calls the OpenAI chat completions API
type OpenAIProvider struct {
	endpoint
}

// NewOpenAIProvider creates an OpenAI provider
func NewOpenAIProvider(cfg config.ModelConfig, timeout time.Duration) *OpenAIProvider {
	return &OpenAIProvider{newEndpoint(LabelOpenAI, cfg, timeout)}
}

func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, opts Options) (*Completion, error) {
	maxTokens, temperature := p.resolve(opts)

	body := map[string]interface{}{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "system", "content": openAISystemPrompt},
			{"role": "user", "content": prompt},
		},
		"max_tokens":  maxTokens,
		"temperature": temperature,
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			TotalTokens int `json:"total_tokens"`
		} `json:"usage"`
	}

	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	if err := p.post(ctx, p.baseURL+"/chat/completions", headers, body, &result); err != nil {
		return nil, p.failure(err)
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return nil, p.failure(errors.New("empty response from openai"))
	}

	return &Completion{
		Text:   result.Choices[0].Message.Content,
		Tokens: result.Usage.TotalTokens,
	}, nil
}
