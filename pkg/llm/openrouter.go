package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	ProviderOpenRouter      = "openrouter"
	DefaultOpenRouterURL    = "https://openrouter.ai/api/v1/"
	DefaultOpenRouterModel  = "openai/gpt-4-turbo"
	openRouterAPIKeyEnvName = "OPENROUTER_API_KEY"
)

type OpenRouterConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int64
	Timeout     time.Duration

	// Optional attribution headers understood by OpenRouter.
	Referer string
	Title   string
}

// OpenRouterClient talks to OpenRouter through its OpenAI-compatible
// chat completions API.
type OpenRouterClient struct {
	client      *openai.Client
	apiKey      string
	model       openai.ChatModel
	modelName   string
	temperature float64
	maxTokens   int64
}

func NewOpenRouterClient(cfg OpenRouterConfig) *OpenRouterClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenRouterURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenRouterModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}

	client := openai.NewClient(opts...)
	return &OpenRouterClient{
		client:      &client,
		apiKey:      cfg.APIKey,
		model:       openai.ChatModel(cfg.Model),
		modelName:   cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

func (c *OpenRouterClient) Provider() string {
	return ProviderOpenRouter
}

func (c *OpenRouterClient) Model() string {
	return c.modelName
}

func (c *OpenRouterClient) Compare(ctx context.Context, input CompareInput) (*CompareResult, error) {
	if c.apiKey == "" {
		return nil, &MissingAPIKeyError{EnvVar: openRouterAPIKeyEnvName}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt(input)),
		},
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(c.maxTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("openrouter API error: %w", err)
	}

	// Some upstream models answer without message content; the raw body
	// is then the best text we have.
	var reply string
	if len(resp.Choices) > 0 {
		reply = resp.Choices[0].Message.Content
	}
	if reply == "" {
		reply = resp.RawJSON()
	}

	modelUsed := c.modelName
	if resp.Model != "" {
		modelUsed = resp.Model
	}

	return &CompareResult{
		Reply:         reply,
		Provider:      ProviderOpenRouter,
		ModelUsed:     modelUsed,
		PromptVersion: promptVersion,
	}, nil
}
