package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/scanner"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/types"
)

const (
	vulnScanBinary = "nuclei"
	vulnScanHint   = "see https://github.com/projectdiscovery/nuclei for installation"
)

// VulnScan runs nuclei against the original target URL. The scanner
// probes a live endpoint, so a cloned working copy is of no use to it:
// local-directory targets are a deliberate skip, never a failure.
type VulnScan struct {
	logger *slog.Logger
}

func NewVulnScan(logger *slog.Logger) *VulnScan {
	return &VulnScan{logger: logger}
}

func (v *VulnScan) ID() types.ToolID         { return types.ToolNuclei }
func (v *VulnScan) Category() types.Category { return types.CategoryVulnerabilities }

func (v *VulnScan) Applicable(target *scanner.Target) (bool, string) {
	if !target.IsRemote() {
		return false, "target is not a URL; nuclei requires a reachable endpoint"
	}
	return true, ""
}

func (v *VulnScan) Run(ctx context.Context, target *scanner.Target, dir string) scanner.ToolResult {
	binary, err := lookBinary(vulnScanBinary, vulnScanHint)
	if err != nil {
		return scanner.ToolResult{Status: scanner.StatusFailed, Reason: err.Error()}
	}

	reportPath := filepath.Join(dir, VulnReportFile)
	v.logger.Info("running nuclei", "url", target.Raw)

	// -duc and -ni keep the run reproducible: no template updates, no
	// interactsh callbacks.
	cmd := exec.CommandContext(ctx, binary,
		"-u", target.Raw,
		"-duc",
		"-ni",
		"-json-export", reportPath,
	)
	out, runErr := cmd.CombinedOutput()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return scanner.ToolResult{Status: scanner.StatusFailed, Reason: timeoutReason(vulnScanBinary)}
	}
	if runErr != nil {
		v.logger.Warn("nuclei exited non-zero", "error", runErr, "output", strings.TrimSpace(string(out)))
	}

	// The exit code is the tool's own business; what matters is whether
	// the report materialized.
	if _, err := os.Stat(reportPath); err != nil {
		return scanner.ToolResult{
			Status: scanner.StatusFailed,
			Reason: fmt.Sprintf("nuclei did not produce a report for %s", target.Raw),
		}
	}
	return scanner.ToolResult{Status: scanner.StatusSucceeded, ReportPath: reportPath}
}
