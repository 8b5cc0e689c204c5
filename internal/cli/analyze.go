package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gwi.com/chatmood/internal/report"
)

type analyzeOptions struct {
	format string
	save   bool
}

func newAnalyzeCommand() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Analyze one exported chat file and print the report",
		Long: `Analyze reads an exported chat transcript, classifies every message
and prints the label distribution and the per-message report.

Lines must look like:
  3/1/24, 9:05 - Alice: Hello there

Lines that do not match (continuations, system notices) are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json or html")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Store the analysis in the history database")

	return cmd
}

func runAnalyze(cmd *cobra.Command, path string, opts *analyzeOptions) error {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided transcript path
	if err != nil {
		return fmt.Errorf("reading transcript: %w", err)
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, opts.save)
	if err != nil {
		return err
	}
	defer a.Close()

	formatter, err := report.NewFormatter(opts.format, a.renderer)
	if err != nil {
		return err
	}

	analysis, err := a.service.Analyze(ctx, filepath.Base(path), data)
	if err != nil {
		return err
	}
	return formatter.Format(ctx, analysis, cmd.OutOrStdout())
}
