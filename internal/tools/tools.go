// Package tools holds one adapter per external scanning tool. Adapters
// translate the orchestrator's uniform Run contract into each tool's own
// invocation, exit-code, and output-file conventions. None of the actual
// scanning happens here; the tools are opaque executables found on PATH.
package tools

import (
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/scanner"
)

// Raw report filenames, relative to the run-scoped report directory.
const (
	SecretsReportFile = "secrets_report.json"
	VulnReportFile    = "vulnerability_report.json"
	TLSReportFile     = "tls_report.json"
)

// All returns every adapter in invocation order.
func All(logger *slog.Logger) []scanner.Tool {
	return []scanner.Tool{
		NewSecretScan(logger),
		NewVulnScan(logger),
		NewTLSAudit(logger),
	}
}

// lookBinary locates the tool's binary on PATH. A miss is an expected
// operational condition, reported with an install hint so the operator
// knows what to do.
func lookBinary(binary, hint string) (string, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", fmt.Errorf("%s not found on PATH; %s", binary, hint)
	}
	return path, nil
}

// timeoutReason renders a failed-with-timeout reason for a tool bounded
// by the orchestrator's per-tool deadline.
func timeoutReason(binary string) string {
	return fmt.Sprintf("%s timed out before completing", binary)
}
