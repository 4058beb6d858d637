package handler

import "encoding/json"

type AnalyzeRequest struct {
	SnippetA string `json:"snippetA"`
	SnippetB string `json:"snippetB"`
}

type AnalyzeResponse struct {
	Success  bool            `json:"success"`
	ID       string          `json:"id"`
	Provider string          `json:"provider"`
	Model    string          `json:"model"`
	Result   string          `json:"result"`
	HTML     *string         `json:"html"`
	Scores   json.RawMessage `json:"scores,omitempty"`
	Shape    string          `json:"shape"`
	Raw      string          `json:"raw"`
	Cached   bool            `json:"cached"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type AnalysisResponse struct {
	ID            string          `json:"id"`
	SnippetA      string          `json:"snippet_a"`
	SnippetB      string          `json:"snippet_b"`
	Provider      string          `json:"provider"`
	Model         string          `json:"model"`
	PromptVersion string          `json:"prompt_version"`
	Result        string          `json:"result"`
	HTML          *string         `json:"html"`
	Scores        json.RawMessage `json:"scores,omitempty"`
	Shape         string          `json:"shape"`
	CreatedAt     string          `json:"created_at"`
}

type AnalysesResponse struct {
	Items  []AnalysisResponse `json:"items"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}
