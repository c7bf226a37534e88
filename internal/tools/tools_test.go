package tools

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/scanner"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubBinary installs a shell script under the given name in a fresh bin
// dir prepended to PATH.
func stubBinary(t *testing.T, name, script string) {
	t.Helper()
	bin := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\n"+script), 0o755))
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// emptyPath points PATH at a directory with no binaries at all.
func emptyPath(t *testing.T) {
	t.Helper()
	t.Setenv("PATH", t.TempDir())
}

func localTarget(t *testing.T) *scanner.Target {
	dir := t.TempDir()
	return &scanner.Target{Raw: dir, Kind: types.KindLocalDir, Path: dir}
}

func remoteTarget(path string) *scanner.Target {
	return &scanner.Target{
		Raw:       "https://example.com",
		Kind:      types.KindRemoteURL,
		Path:      path,
		Workspace: path,
	}
}

func TestAllRegistersThreeTools(t *testing.T) {
	all := All(testLogger())
	require.Len(t, all, 3)
	assert.Equal(t, types.ToolDetectSecrets, all[0].ID())
	assert.Equal(t, types.ToolNuclei, all[1].ID())
	assert.Equal(t, types.ToolTestSSL, all[2].ID())
}

func TestSecretScanSuccess(t *testing.T) {
	stubBinary(t, "detect-secrets", `echo '{"results": {"config.py": []}}'`)

	dir := t.TempDir()
	res := NewSecretScan(testLogger()).Run(context.Background(), localTarget(t), dir)

	require.Equal(t, scanner.StatusSucceeded, res.Status)
	data, err := os.ReadFile(filepath.Join(dir, SecretsReportFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "config.py")
}

func TestSecretScanNoSecretsSentinel(t *testing.T) {
	// The clean-repo signal arrives on stderr with a non-zero exit; it
	// must become a success with a literal empty document.
	stubBinary(t, "detect-secrets", `echo "No secrets found!" >&2; exit 1`)

	dir := t.TempDir()
	res := NewSecretScan(testLogger()).Run(context.Background(), localTarget(t), dir)

	require.Equal(t, scanner.StatusSucceeded, res.Status)
	data, err := os.ReadFile(filepath.Join(dir, SecretsReportFile))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestSecretScanBinaryMissing(t *testing.T) {
	emptyPath(t)

	res := NewSecretScan(testLogger()).Run(context.Background(), localTarget(t), t.TempDir())
	require.Equal(t, scanner.StatusFailed, res.Status)
	assert.Contains(t, res.Reason, "pip install detect-secrets")
}

func TestSecretScanNonZeroExitNoOutput(t *testing.T) {
	stubBinary(t, "detect-secrets", `echo "boom" >&2; exit 3`)

	res := NewSecretScan(testLogger()).Run(context.Background(), localTarget(t), t.TempDir())
	require.Equal(t, scanner.StatusFailed, res.Status)
	assert.Contains(t, res.Reason, "no output")
}

func TestSecretScanTimeout(t *testing.T) {
	stubBinary(t, "detect-secrets", `sleep 5`)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	res := NewSecretScan(testLogger()).Run(ctx, localTarget(t), t.TempDir())
	require.Equal(t, scanner.StatusFailed, res.Status)
	assert.Contains(t, res.Reason, "timed out")
}

func TestSecretScanAlwaysApplicable(t *testing.T) {
	s := NewSecretScan(testLogger())
	ok, _ := s.Applicable(localTarget(t))
	assert.True(t, ok)
	ok, _ = s.Applicable(remoteTarget(t.TempDir()))
	assert.True(t, ok)
}

func TestVulnScanSkipsLocalTargets(t *testing.T) {
	v := NewVulnScan(testLogger())
	ok, reason := v.Applicable(localTarget(t))
	assert.False(t, ok)
	assert.Contains(t, reason, "not a URL")

	ok, _ = v.Applicable(remoteTarget(t.TempDir()))
	assert.True(t, ok)
}

func TestVulnScanWritesReport(t *testing.T) {
	// Stub emulates -json-export by writing to the named file.
	stubBinary(t, "nuclei", `
while [ $# -gt 0 ]; do
  if [ "$1" = "-json-export" ]; then echo '[]' > "$2"; fi
  shift
done
`)

	dir := t.TempDir()
	res := NewVulnScan(testLogger()).Run(context.Background(), remoteTarget(t.TempDir()), dir)

	require.Equal(t, scanner.StatusSucceeded, res.Status)
	assert.Equal(t, filepath.Join(dir, VulnReportFile), res.ReportPath)
}

func TestVulnScanNoReportProduced(t *testing.T) {
	stubBinary(t, "nuclei", `exit 1`)

	res := NewVulnScan(testLogger()).Run(context.Background(), remoteTarget(t.TempDir()), t.TempDir())
	require.Equal(t, scanner.StatusFailed, res.Status)
	assert.Contains(t, res.Reason, "did not produce a report")
}

func TestVulnScanBinaryMissing(t *testing.T) {
	emptyPath(t)

	res := NewVulnScan(testLogger()).Run(context.Background(), remoteTarget(t.TempDir()), t.TempDir())
	require.Equal(t, scanner.StatusFailed, res.Status)
	assert.Contains(t, res.Reason, "nuclei not found")
}

func TestTLSAuditSkipsLocalTargets(t *testing.T) {
	a := NewTLSAudit(testLogger())
	ok, reason := a.Applicable(localTarget(t))
	assert.False(t, ok)
	assert.Contains(t, reason, "not a URL")
}

func TestTLSAuditWritesReport(t *testing.T) {
	stubBinary(t, "testssl.sh", `
while [ $# -gt 0 ]; do
  if [ "$1" = "--jsonfile" ]; then echo '{"scanResult": []}' > "$2"; fi
  shift
done
`)

	dir := t.TempDir()
	res := NewTLSAudit(testLogger()).Run(context.Background(), remoteTarget(t.TempDir()), dir)

	require.Equal(t, scanner.StatusSucceeded, res.Status)
	assert.Equal(t, filepath.Join(dir, TLSReportFile), res.ReportPath)
}

func TestTLSAuditBinaryMissing(t *testing.T) {
	emptyPath(t)

	res := NewTLSAudit(testLogger()).Run(context.Background(), remoteTarget(t.TempDir()), t.TempDir())
	require.Equal(t, scanner.StatusFailed, res.Status)
	assert.Contains(t, res.Reason, "testssl.sh not found")
}
