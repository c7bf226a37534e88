// Package types defines shared data structures (ToolID, Category, ToolStatus)
// used across scanner, tools, report, and server packages to prevent import
// cycles.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ToolID identifies one of the external scanner integrations.
type ToolID string

const (
	ToolDetectSecrets ToolID = "detect-secrets"
	ToolNuclei        ToolID = "nuclei"
	ToolTestSSL       ToolID = "testssl.sh"
)

// AllTools returns every supported tool in invocation order.
func AllTools() []ToolID {
	return []ToolID{ToolDetectSecrets, ToolNuclei, ToolTestSSL}
}

// ParseToolID converts a user-supplied string to a ToolID.
func ParseToolID(s string) (ToolID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "detect-secrets":
		return ToolDetectSecrets, nil
	case "nuclei":
		return ToolNuclei, nil
	case "testssl.sh", "testssl":
		return ToolTestSSL, nil
	default:
		return "", fmt.Errorf("unknown tool: %q", s)
	}
}

// ParseToolIDs converts a list of tool names, rejecting unknown entries and
// dropping duplicates while preserving order.
func ParseToolIDs(names []string) ([]ToolID, error) {
	seen := make(map[ToolID]bool, len(names))
	var ids []ToolID
	for _, name := range names {
		id, err := ParseToolID(name)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Category is the consolidated-report section a tool feeds into.
type Category string

const (
	CategorySecrets         Category = "secrets"
	CategoryVulnerabilities Category = "vulnerabilities"
)

// TargetKind classifies how a scan target was supplied.
type TargetKind int

const (
	KindLocalDir TargetKind = iota
	KindRemoteURL
)

func (k TargetKind) String() string {
	switch k {
	case KindRemoteURL:
		return "remote-url"
	case KindLocalDir:
		return "local-dir"
	default:
		return "unknown"
	}
}

// ToolStatus is the outcome of one adapter invocation.
type ToolStatus int

const (
	StatusSucceeded ToolStatus = iota
	StatusFailed
	StatusSkipped
)

func (s ToolStatus) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the status as its lowercase name.
func (s ToolStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the lowercase names produced by MarshalJSON.
func (s *ToolStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw {
	case "succeeded":
		*s = StatusSucceeded
	case "failed":
		*s = StatusFailed
	case "skipped":
		*s = StatusSkipped
	default:
		return fmt.Errorf("unknown tool status: %q", raw)
	}
	return nil
}

// ToolResult is the outcome of one adapter invocation during a run.
type ToolResult struct {
	Tool       ToolID
	Status     ToolStatus
	Reason     string
	ReportPath string
	Duration   time.Duration
}

// Outcome converts a ToolResult to its persisted RunRecord form.
func (r ToolResult) Outcome() ToolOutcome {
	return ToolOutcome{
		Tool:       r.Tool,
		Status:     r.Status,
		Reason:     r.Reason,
		ReportPath: r.ReportPath,
		DurationMS: r.Duration.Milliseconds(),
	}
}

// ToolOutcome records one tool's result inside a RunRecord.
type ToolOutcome struct {
	Tool       ToolID     `json:"tool"`
	Status     ToolStatus `json:"status"`
	Reason     string     `json:"reason,omitempty"`
	ReportPath string     `json:"report_path,omitempty"`
	DurationMS int64      `json:"duration_ms"`
}

// RunState tracks a scan run through its lifecycle.
type RunState string

const (
	RunRunning   RunState = "running"
	RunSucceeded RunState = "succeeded"
	RunFailed    RunState = "failed"
	RunStopped   RunState = "stopped"
)

// RunRecord is the persisted summary of one orchestration run.
type RunRecord struct {
	ID         string        `json:"id"`
	Target     string        `json:"target"`
	Kind       string        `json:"kind"`
	State      RunState      `json:"state"`
	Error      string        `json:"error,omitempty"`
	Tools      []ToolOutcome `json:"tools,omitempty"`
	ReportDir  string        `json:"report_dir,omitempty"`
	ReportPath string        `json:"report_path,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}
