package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/config"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/server"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API server",
	Long: `Serve exposes scan orchestration over HTTP: start scans, poll their
status, fetch consolidated reports, and stop runs in flight. The server
carries no authentication; bind it to a trusted interface.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", ":8080", "Listen address")
	serveCmd.Flags().DurationVar(&flagToolTimeout, "timeout", 10*time.Minute, "Per-tool execution timeout")
	serveCmd.Flags().StringVar(&flagHistoryPath, "history-path", "", "Path to the run history file (default: ~/.vao/history.json)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	applyServeConfig(cmd)
	logger := newLogger()

	gin.SetMode(gin.ReleaseMode)

	srv := server.New(server.Config{
		Listen:  flagListen,
		Scanner: buildScanner(logger, nil),
		History: openHistory(logger),
		Logger:  logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

func applyServeConfig(cmd *cobra.Command) {
	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return
	}
	if !cmd.Flags().Changed("listen") && cfg.Listen != "" {
		flagListen = cfg.Listen
	}
	if !cmd.Flags().Changed("report-dir") && cfg.ReportDir != "" {
		flagReportDir = cfg.ReportDir
	}
	if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
		flagLogLevel = cfg.LogLevel
	}
	if !cmd.Flags().Changed("log-format") && cfg.LogFormat != "" {
		flagLogFormat = cfg.LogFormat
	}
}
