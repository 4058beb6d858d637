package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Mohid710/AEO-Snippet-Optimizer/pkg/llm"

	"github.com/spf13/cobra"
)

// NewNormalizeCmd creates the normalize command.
func NewNormalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Normalize a raw model reply",
		Long: `Normalize reads a raw model reply from a file or standard input and prints
the extracted result text, HTML and shape as JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runNormalizeCmd,
	}

	cmd.Flags().BoolP("text", "t", false, "Print only the result text")

	return cmd
}

func runNormalizeCmd(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening reply: %w", err)
		}
		defer f.Close()
		in = f
	}

	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading reply: %w", err)
	}

	res := llm.Normalize(string(raw))

	if textOnly, _ := cmd.Flags().GetBool("text"); textOnly {
		fmt.Fprintln(cmd.OutOrStdout(), res.Text)
		return nil
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
