// Package cli implements the chatmood command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gwi.com/chatmood/internal/config"
	"gwi.com/chatmood/internal/core"
	"gwi.com/chatmood/internal/report"
)

// Version information, set at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		// SilenceErrors stops cobra from printing it
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// NewRootCommand creates the root command. Run without a subcommand it
// serves the dashboard.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chatmood",
		Short: "Emotion analysis for exported chat transcripts",
		Long: `chatmood extracts the messages of an exported WhatsApp chat, labels each
one with an emotion from the GoEmotions set and reports how often every
label occurs.

Configuration is read from the environment (and a .env file), optionally
layered over a YAML file named by CONFIG_FILE.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newLabelsCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newLabelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "List the emotion labels and their report colours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			palette, err := report.NewPalette(cfg.Palette, cfg.DefaultColor)
			if err != nil {
				return fmt.Errorf("invalid palette: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, label := range core.EmotionLabels {
				fmt.Fprintf(out, "%-16s %s\n", label, palette.Color(label))
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chatmood %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", Commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", BuildDate)
		},
	}
}

