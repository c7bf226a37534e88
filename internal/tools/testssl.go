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
	tlsAuditBinary = "testssl.sh"
	tlsAuditHint   = "ensure testssl.sh is installed and on PATH"
)

// TLSAudit runs testssl.sh against the original target URL. Like nuclei
// it needs a live endpoint, so local targets skip it.
type TLSAudit struct {
	logger *slog.Logger
}

func NewTLSAudit(logger *slog.Logger) *TLSAudit {
	return &TLSAudit{logger: logger}
}

func (a *TLSAudit) ID() types.ToolID         { return types.ToolTestSSL }
func (a *TLSAudit) Category() types.Category { return types.CategoryVulnerabilities }

func (a *TLSAudit) Applicable(target *scanner.Target) (bool, string) {
	if !target.IsRemote() {
		return false, "target is not a URL; testssl.sh only audits live endpoints"
	}
	return true, ""
}

func (a *TLSAudit) Run(ctx context.Context, target *scanner.Target, dir string) scanner.ToolResult {
	binary, err := lookBinary(tlsAuditBinary, tlsAuditHint)
	if err != nil {
		return scanner.ToolResult{Status: scanner.StatusFailed, Reason: err.Error()}
	}

	reportPath := filepath.Join(dir, TLSReportFile)
	a.logger.Info("running testssl.sh", "url", target.Raw)

	// testssl.sh refuses to overwrite an existing jsonfile.
	_ = os.Remove(reportPath)

	cmd := exec.CommandContext(ctx, binary, "--jsonfile", reportPath, target.Raw)
	out, runErr := cmd.CombinedOutput()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return scanner.ToolResult{Status: scanner.StatusFailed, Reason: timeoutReason(tlsAuditBinary)}
	}
	if runErr != nil {
		a.logger.Warn("testssl.sh exited non-zero", "error", runErr, "output", strings.TrimSpace(string(out)))
	}

	if _, err := os.Stat(reportPath); err != nil {
		return scanner.ToolResult{
			Status: scanner.StatusFailed,
			Reason: fmt.Sprintf("testssl.sh did not produce a report for %s", target.Raw),
		}
	}
	return scanner.ToolResult{Status: scanner.StatusSucceeded, ReportPath: reportPath}
}
