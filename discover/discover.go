// Package discover probes the environment for the external binaries the
// orchestrator depends on: git plus the three scanner tools. It powers
// the list-tools command and the API server's tools endpoint.
package discover

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/types"
)

// versionTimeout bounds each --version probe so a misbehaving binary
// cannot hang discovery.
const versionTimeout = 2 * time.Second

// ToolSpec describes one external binary the system invokes.
type ToolSpec struct {
	Name        string `json:"name"`
	Binary      string `json:"binary"`
	Category    string `json:"category"`
	Description string `json:"description"`
	InstallHint string `json:"install_hint"`
	Required    bool   `json:"required"`

	versionArgs []string
}

// Catalog returns every external binary the system knows about. Only git
// is required; each scanner is optional and its absence is a per-tool
// condition, not a process failure.
func Catalog() []ToolSpec {
	return []ToolSpec{
		{
			Name:        "git",
			Binary:      "git",
			Category:    "version-control",
			Description: "Clones remote targets and verifies working trees",
			InstallHint: "install git via your package manager",
			Required:    true,
			versionArgs: []string{"--version"},
		},
		{
			Name:        string(types.ToolDetectSecrets),
			Binary:      "detect-secrets",
			Category:    string(types.CategorySecrets),
			Description: "Scans a working copy for exposed secrets",
			InstallHint: "pip install detect-secrets",
			Required:    false,
			versionArgs: []string{"--version"},
		},
		{
			Name:        string(types.ToolNuclei),
			Binary:      "nuclei",
			Category:    string(types.CategoryVulnerabilities),
			Description: "Probes a URL target for known vulnerabilities",
			InstallHint: "see https://github.com/projectdiscovery/nuclei",
			Required:    false,
			versionArgs: []string{"-version"},
		},
		{
			Name:        string(types.ToolTestSSL),
			Binary:      "testssl.sh",
			Category:    string(types.CategoryVulnerabilities),
			Description: "Audits a URL target's TLS/SSL configuration",
			InstallHint: "https://testssl.sh",
			Required:    false,
			versionArgs: []string{"--version"},
		},
	}
}

// ToolStatus is the probe outcome for one binary.
type ToolStatus struct {
	ToolSpec
	Available bool   `json:"available"`
	Path      string `json:"path,omitempty"`
	Version   string `json:"version,omitempty"`
}

// Result holds the full discovery output.
type Result struct {
	Tools []ToolStatus `json:"tools"`
}

// Available returns the number of tools found on PATH.
func (r *Result) Available() int {
	n := 0
	for _, t := range r.Tools {
		if t.Available {
			n++
		}
	}
	return n
}

// Probe checks PATH for every cataloged binary and captures a version
// string where the binary answers cheaply.
func Probe() *Result {
	result := &Result{}
	for _, spec := range Catalog() {
		status := ToolStatus{ToolSpec: spec}
		if path, err := exec.LookPath(spec.Binary); err == nil {
			status.Available = true
			status.Path = path
			status.Version = probeVersion(path, spec.versionArgs)
		}
		result.Tools = append(result.Tools, status)
	}
	return result
}

// probeVersion runs the binary's version command and returns the first
// line of output, or "" when the probe fails.
func probeVersion(path string, args []string) string {
	if len(args) == 0 {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, args...).Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line)
}
