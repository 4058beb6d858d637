package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/config"
	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/server"
	"github.com/Mohid710/AEO-Snippet-Optimizer/pkg/llm"

	"github.com/spf13/cobra"
)

type compareOutput struct {
	Provider      string `json:"provider"`
	Model         string `json:"model"`
	PromptVersion string `json:"prompt_version"`
	llm.NormalizedResult
	Raw string `json:"raw"`
}

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Ask the configured model to compare two snippets",
		Long: `Compare sends both snippets to the configured provider and prints the
normalized verdict. Credentials and model settings come from the same
environment variables as the API server.

Examples:
  aeo compare -a "Paris is the capital of France." -b "France's capital city is Paris."
  aeo compare --a-file draft.txt --b-file published.txt --json`,
		Args: cobra.NoArgs,
		RunE: runCompareCmd,
	}

	cmd.Flags().StringP("snippet-a", "a", "", "First snippet")
	cmd.Flags().StringP("snippet-b", "b", "", "Second snippet")
	cmd.Flags().String("a-file", "", "Read the first snippet from a file")
	cmd.Flags().String("b-file", "", "Read the second snippet from a file")
	cmd.Flags().BoolP("json", "j", false, "Print the full result as JSON")

	return cmd
}

func runCompareCmd(cmd *cobra.Command, _ []string) error {
	snippetA, err := snippetFromFlags(cmd, "snippet-a", "a-file")
	if err != nil {
		return err
	}
	snippetB, err := snippetFromFlags(cmd, "snippet-b", "b-file")
	if err != nil {
		return err
	}
	if snippetA == "" || snippetB == "" {
		return errors.New("both snippets are required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	comparer := server.NewComparer(cfg)

	start := time.Now()
	res, err := comparer.Compare(cmd.Context(), llm.CompareInput{SnippetA: snippetA, SnippetB: snippetB})
	if err != nil {
		return err
	}
	slog.Debug("comparison finished", "provider", res.Provider, "model", res.ModelUsed, "duration", time.Since(start))

	normalized := llm.Normalize(res.Reply)

	asJSON, _ := cmd.Flags().GetBool("json")
	if !asJSON {
		fmt.Fprintln(cmd.OutOrStdout(), normalized.Text)
		return nil
	}

	out := compareOutput{
		Provider:         res.Provider,
		Model:            res.ModelUsed,
		PromptVersion:    res.PromptVersion,
		NormalizedResult: normalized,
		Raw:              res.Reply,
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// snippetFromFlags prefers the inline flag and falls back to the file flag.
func snippetFromFlags(cmd *cobra.Command, textFlag, fileFlag string) (string, error) {
	text, _ := cmd.Flags().GetString(textFlag)
	if text != "" {
		return text, nil
	}

	path, _ := cmd.Flags().GetString(fileFlag)
	if path == "" {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading --%s: %w", fileFlag, err)
	}
	return string(data), nil
}
