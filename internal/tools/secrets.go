package tools

import (
	"bytes"
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
	secretScanBinary = "detect-secrets"
	secretScanHint   = "install it with: pip install detect-secrets"

	// detect-secrets signals a clean repository on stderr rather than
	// through its exit code.
	noSecretsSentinel = "No secrets found!"
)

// SecretScan runs detect-secrets against the resolved local path. It is
// the only adapter applicable to every target kind, since a clone always
// yields a local working copy to scan.
type SecretScan struct {
	logger *slog.Logger
}

func NewSecretScan(logger *slog.Logger) *SecretScan {
	return &SecretScan{logger: logger}
}

func (s *SecretScan) ID() types.ToolID         { return types.ToolDetectSecrets }
func (s *SecretScan) Category() types.Category { return types.CategorySecrets }

// Applicable always returns true: every resolved target has a local path.
func (s *SecretScan) Applicable(*scanner.Target) (bool, string) {
	return true, ""
}

// Run invokes detect-secrets and captures its stdout JSON into the raw
// secrets report. A clean repository is a success with a literal empty
// document, distinguishing "ran, found nothing" from "did not run".
func (s *SecretScan) Run(ctx context.Context, target *scanner.Target, dir string) scanner.ToolResult {
	binary, err := lookBinary(secretScanBinary, secretScanHint)
	if err != nil {
		return scanner.ToolResult{Status: scanner.StatusFailed, Reason: err.Error()}
	}

	reportPath := filepath.Join(dir, SecretsReportFile)
	s.logger.Info("scanning for secrets", "path", target.Path)

	cmd := exec.CommandContext(ctx, binary, "scan", "--all-files", target.Path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return scanner.ToolResult{Status: scanner.StatusFailed, Reason: timeoutReason(secretScanBinary)}
	}

	if strings.Contains(stderr.String(), noSecretsSentinel) {
		s.logger.Info("no secrets found in the repository")
		if err := os.WriteFile(reportPath, []byte("{}"), 0o644); err != nil {
			return scanner.ToolResult{Status: scanner.StatusFailed, Reason: fmt.Sprintf("writing empty secrets report: %v", err)}
		}
		return scanner.ToolResult{Status: scanner.StatusSucceeded, ReportPath: reportPath}
	}

	if runErr != nil {
		s.logger.Warn("detect-secrets exited non-zero", "error", runErr, "stderr", strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return scanner.ToolResult{
			Status: scanner.StatusFailed,
			Reason: fmt.Sprintf("detect-secrets produced no output: %s", strings.TrimSpace(stderr.String())),
		}
	}
	if err := os.WriteFile(reportPath, stdout.Bytes(), 0o644); err != nil {
		return scanner.ToolResult{Status: scanner.StatusFailed, Reason: fmt.Sprintf("writing secrets report: %v", err)}
	}
	return scanner.ToolResult{Status: scanner.StatusSucceeded, ReportPath: reportPath}
}
