package vao

import (
	"io"
	"log/slog"
	"time"
)

// scanConfig holds the resolved configuration for a scan.
type scanConfig struct {
	reportDir   string
	toolTimeout time.Duration
	tools       []ToolID
	logger      *slog.Logger
}

// Option configures a scan or consolidation operation.
type Option func(*scanConfig)

// WithReportDir sets the base directory for raw tool reports
// (default: "reports").
func WithReportDir(dir string) Option {
	return func(c *scanConfig) {
		c.reportDir = dir
	}
}

// WithToolTimeout bounds each external tool invocation.
func WithToolTimeout(d time.Duration) Option {
	return func(c *scanConfig) {
		c.toolTimeout = d
	}
}

// WithTools restricts the scan to the given tools (default: all).
func WithTools(ids ...ToolID) Option {
	return func(c *scanConfig) {
		c.tools = append(c.tools, ids...)
	}
}

// WithLogger directs component logging to the given logger. Without it
// logging is discarded, which suits library use.
func WithLogger(logger *slog.Logger) Option {
	return func(c *scanConfig) {
		c.logger = logger
	}
}

func applyOpts(opts []Option) *scanConfig {
	cfg := &scanConfig{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return cfg
}
