package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagLogLevel  string
	flagLogFormat string
	flagFormat    string
	flagOutput    string
	flagReportDir string
	flagNoColor   bool
)

var rootCmd = &cobra.Command{
	Use:   "vao",
	Short: "Vulnerability assessment orchestrator for git repositories",
	Long:  `Vao orchestrates external security scanners (detect-secrets, nuclei, testssl.sh) against a local repository or remote git URL and consolidates their findings into a single report.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "", "Output format (command-specific; report: json, markdown, html)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "Output file path")
	rootCmd.PersistentFlags().StringVar(&flagReportDir, "report-dir", "reports", "Base directory for raw tool reports")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable spinner and colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the logger every command hands to the components it
// constructs. Nothing logs through package-level state.
func newLogger() *slog.Logger {
	opts := &slog.HandlerOptions{}
	switch flagLogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	var handler slog.Handler
	if flagLogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func applyEnvDefaults() {
	if os.Getenv("NO_COLOR") != "" {
		flagNoColor = true
	}
}
