package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/config"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/report"
)

var flagRawDir string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Consolidate raw tool reports into a single document",
	Long: `Report merges whatever raw tool output files currently exist into one
consolidated document. Categories without data get an explicit
placeholder, so the document always has the same shape. By default the
most recent run directory under the report dir is used.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&flagRawDir, "dir", "", "Directory holding the raw tool reports (default: latest run directory)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	applyReportConfig(cmd)
	logger := newLogger()

	dir := flagRawDir
	if dir == "" {
		dir = latestRunDir(flagReportDir)
	}
	cons := report.NewConsolidator(dir, logger)

	format := strings.ToLower(flagFormat)
	if format == "" {
		format = "json"
	}

	switch format {
	case "json":
		output := flagOutput
		if output == "" {
			output = "consolidated_report.json"
		}
		if err := cons.Consolidate(output); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Consolidated report saved to: %s\n", output)
		return nil
	case "markdown", "md":
		return renderReport(cmd, cons, &report.MarkdownFormatter{})
	case "html":
		return renderReport(cmd, cons, &report.HTMLFormatter{})
	default:
		return fmt.Errorf("invalid --format: %q (expected json, markdown, or html)", flagFormat)
	}
}

func renderReport(cmd *cobra.Command, cons *report.Consolidator, formatter report.Formatter) error {
	w := cmd.OutOrStdout()
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	return formatter.Format(w, cons.Build())
}

// latestRunDir picks the most recently modified run directory under
// base. When base has no subdirectories the raw files are looked for in
// base itself.
func latestRunDir(base string) string {
	entries, err := os.ReadDir(base)
	if err != nil {
		return base
	}
	var newest string
	var newestTime time.Time
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestTime) {
			newest = filepath.Join(base, e.Name())
			newestTime = info.ModTime()
		}
	}
	if newest == "" {
		return base
	}
	return newest
}

func applyReportConfig(cmd *cobra.Command) {
	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return
	}
	if !cmd.Flags().Changed("report-dir") && cfg.ReportDir != "" {
		flagReportDir = cfg.ReportDir
	}
	if !cmd.Flags().Changed("output") && cfg.Output != "" {
		flagOutput = cfg.Output
	}
	if !cmd.Flags().Changed("format") && cfg.Format != "" {
		flagFormat = cfg.Format
	}
}
