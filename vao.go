// Package vao provides a public API for orchestrating external security
// scanners against a git repository and consolidating their reports.
//
// This is the library entry point. For the CLI tool, see cmd/vao/.
package vao

import (
	"context"

	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/discover"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/report"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/scanner"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/tools"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/types"
)

// Re-export core types from internal packages so consumers don't need to
// import internal paths.
type (
	ToolID     = types.ToolID
	ToolStatus = types.ToolStatus
	ToolResult = types.ToolResult
	RunRecord  = types.RunRecord
	RunResult  = scanner.RunResult
	Document   = report.Document
)

const (
	ToolDetectSecrets = types.ToolDetectSecrets
	ToolNuclei        = types.ToolNuclei
	ToolTestSSL       = types.ToolTestSSL

	StatusSucceeded = types.StatusSucceeded
	StatusFailed    = types.StatusFailed
	StatusSkipped   = types.StatusSkipped
)

// Resolution failures, re-exported for errors.Is checks at the caller.
var (
	ErrInvalidTarget = scanner.ErrInvalidTarget
	ErrGitMissing    = scanner.ErrGitMissing
	ErrCloneFailed   = scanner.ErrCloneFailed
	ErrNotGitRepo    = scanner.ErrNotGitRepo
)

// Scan resolves target (a local directory or remote git URL), runs every
// applicable external scanner against it, and returns the aggregated run
// result. The returned error is non-nil only when the run never reached
// tool execution; individual tool failures live on the result.
func Scan(ctx context.Context, target string, opts ...Option) (*RunResult, error) {
	cfg := applyOpts(opts)
	sc := scanner.New(scanner.Config{
		ReportDir:   cfg.reportDir,
		ToolTimeout: cfg.toolTimeout,
		Logger:      cfg.logger,
	})
	for _, t := range tools.All(cfg.logger) {
		sc.RegisterTool(t)
	}
	return sc.Run(ctx, scanner.Request{Target: target, Tools: cfg.tools})
}

// Consolidate merges the raw tool reports in rawDir into one document at
// outputPath. Missing and corrupt raw files become placeholders; the
// output is replaced atomically or not at all.
func Consolidate(rawDir, outputPath string, opts ...Option) error {
	cfg := applyOpts(opts)
	return report.NewConsolidator(rawDir, cfg.logger).Consolidate(outputPath)
}

// Tools probes the environment for the external binaries the system
// depends on.
func Tools() *discover.Result {
	return discover.Probe()
}
