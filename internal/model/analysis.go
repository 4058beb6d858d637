package model

import (
	"encoding/json"
	"time"
)

type Analysis struct {
	ID            string          `json:"id"`
	SnippetA      string          `json:"snippet_a"`
	SnippetB      string          `json:"snippet_b"`
	Provider      string          `json:"provider"`
	ModelUsed     string          `json:"model_used"`
	PromptVersion string          `json:"prompt_version"`
	ResultText    string          `json:"result_text"`
	ResultHTML    *string         `json:"result_html"`
	Scores        json.RawMessage `json:"scores,omitempty"`
	Shape         string          `json:"shape"`
	Raw           string          `json:"raw"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ArchiveEntry is what travels on the archive queue.
type ArchiveEntry struct {
	Analysis Analysis `json:"analysis"`
	Attempts int      `json:"attempts"`
}
