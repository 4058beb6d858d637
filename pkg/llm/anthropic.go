package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	ProviderAnthropic      = "anthropic"
	anthropicAPIKeyEnvName = "ANTHROPIC_API_KEY"
)

type AnthropicConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int64
	Timeout     time.Duration
}

type AnthropicClient struct {
	client      *anthropic.Client
	apiKey      string
	model       anthropic.Model
	modelName   string
	temperature float64
	maxTokens   int64
}

func NewAnthropicClient(cfg AnthropicConfig) *AnthropicClient {
	if cfg.Model == "" {
		cfg.Model = string(anthropic.ModelClaudeHaiku4_5)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicClient{
		client:      &client,
		apiKey:      cfg.APIKey,
		model:       anthropic.Model(cfg.Model),
		modelName:   cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

func (c *AnthropicClient) Provider() string {
	return ProviderAnthropic
}

func (c *AnthropicClient) Model() string {
	return c.modelName
}

func (c *AnthropicClient) Compare(ctx context.Context, input CompareInput) (*CompareResult, error) {
	if c.apiKey == "" {
		return nil, &MissingAPIKeyError{EnvVar: anthropicAPIKeyEnvName}
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt(input))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	reply := sb.String()
	if reply == "" {
		reply = resp.RawJSON()
	}

	return &CompareResult{
		Reply:         reply,
		Provider:      ProviderAnthropic,
		ModelUsed:     c.modelName,
		PromptVersion: promptVersion,
	}, nil
}
