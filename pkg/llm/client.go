package llm

import (
	"context"
	"time"
)

const (
	DefaultTemperature = 0.25
	DefaultMaxTokens   = 900
	DefaultTimeout     = 60 * time.Second
)

type CompareInput struct {
	SnippetA string
	SnippetB string
}

type CompareResult struct {
	Reply         string
	Provider      string
	ModelUsed     string
	PromptVersion string
}

type Comparer interface {
	Compare(ctx context.Context, input CompareInput) (*CompareResult, error)
	Provider() string
	Model() string
}

// MissingAPIKeyError is returned by a Comparer built without a credential.
type MissingAPIKeyError struct {
	EnvVar string
}

func (e *MissingAPIKeyError) Error() string {
	return "server missing API key (" + e.EnvVar + ")"
}
