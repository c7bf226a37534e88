package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/config"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/history"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/report"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/scanner"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/schedule"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/tools"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/types"
)

var (
	flagSchedule    string
	flagTools       []string
	flagToolTimeout time.Duration
	flagHistoryPath string
)

var scanCmd = &cobra.Command{
	Use:   "scan <target>",
	Short: "Scan a repository or URL for secrets and vulnerabilities",
	Long: `Scan resolves the target (a local directory or a remote git URL), runs
every applicable external scanner against it, and consolidates the raw
tool reports into a single JSON document. With a recurring schedule the
process stays alive and repeats the scan on that cadence.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&flagSchedule, "schedule", "daily", "Scan schedule (once, daily, weekly, monthly)")
	scanCmd.Flags().StringSliceVar(&flagTools, "tools", nil, "Tools to run (detect-secrets, nuclei, testssl.sh; default all)")
	scanCmd.Flags().DurationVar(&flagToolTimeout, "timeout", scanner.DefaultToolTimeout, "Per-tool execution timeout")
	scanCmd.Flags().StringVar(&flagHistoryPath, "history-path", "", "Path to the run history file (default: ~/.vao/history.json)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	target := args[0]
	applyScanConfig(cmd)
	applyEnvDefaults()

	cadence, err := schedule.ParseCadence(flagSchedule)
	if err != nil {
		return err
	}
	selection, err := types.ParseToolIDs(flagTools)
	if err != nil {
		return err
	}

	logger := newLogger()
	store := openHistory(logger)

	var spin *report.Spinner
	if !flagNoColor && cadence == schedule.Once {
		spin = report.NewSpinner(os.Stderr)
		spin.Start(fmt.Sprintf("scanning %s", target))
		defer spin.Stop()
	}

	sc := buildScanner(logger, spin)

	job := func(ctx context.Context) error {
		return runOnce(ctx, sc, store, logger, target, selection)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return schedule.New(cadence, job, logger).Run(ctx)
}

// runOnce is one firing of the pipeline: orchestrate, record history,
// and consolidate on success. Consolidation trouble is logged, never
// escalated; a stale consolidated report simply remains in place.
func runOnce(ctx context.Context, sc *scanner.Scanner, store *history.Store, logger *slog.Logger, target string, selection []types.ToolID) error {
	result, scanErr := sc.Run(ctx, scanner.Request{Target: target, Tools: selection})
	rec := result.Record()
	if scanErr != nil {
		rec.Error = scanErr.Error()
	}

	var consolidated string
	if scanErr == nil {
		consolidated = flagOutput
		if consolidated == "" {
			consolidated = filepath.Join(result.ReportDir, "consolidated_report.json")
		}
		cons := report.NewConsolidator(result.ReportDir, logger)
		if err := cons.Consolidate(consolidated); err == nil {
			rec.ReportPath = consolidated
		}
	}

	store.Update(rec)
	if err := store.Save(); err != nil {
		logger.Warn("saving run history failed", "error", err)
	}

	if scanErr != nil {
		return fmt.Errorf("scan failed: %w", scanErr)
	}
	return nil
}

func buildScanner(logger *slog.Logger, spin *report.Spinner) *scanner.Scanner {
	cfg := scanner.Config{
		ReportDir:   flagReportDir,
		ToolTimeout: flagToolTimeout,
		Logger:      logger,
	}
	if spin != nil {
		cfg.Progress = func(_ types.ToolID, message string) {
			spin.Update(message)
		}
	}
	sc := scanner.New(cfg)
	for _, t := range tools.All(logger) {
		sc.RegisterTool(t)
	}
	return sc
}

func openHistory(logger *slog.Logger) *history.Store {
	path := flagHistoryPath
	if path == "" {
		path = history.DefaultPath()
	}
	store := history.New(path)
	if err := store.Load(); err != nil {
		logger.Warn("loading run history failed", "error", err)
	}
	return store
}

// applyScanConfig merges .vao.yml settings beneath any explicit flags.
func applyScanConfig(cmd *cobra.Command) {
	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return
	}
	if !cmd.Flags().Changed("schedule") && cfg.Schedule != "" {
		flagSchedule = cfg.Schedule
	}
	if !cmd.Flags().Changed("tools") && len(cfg.Tools) > 0 {
		flagTools = cfg.Tools
	}
	if !cmd.Flags().Changed("report-dir") && cfg.ReportDir != "" {
		flagReportDir = cfg.ReportDir
	}
	if !cmd.Flags().Changed("output") && cfg.Output != "" {
		flagOutput = cfg.Output
	}
	if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
		flagLogLevel = cfg.LogLevel
	}
	if !cmd.Flags().Changed("log-format") && cfg.LogFormat != "" {
		flagLogFormat = cfg.LogFormat
	}
	if !cmd.Flags().Changed("timeout") {
		if d, err := cfg.ParseToolTimeout(flagToolTimeout); err == nil {
			flagToolTimeout = d
		} else {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
}
