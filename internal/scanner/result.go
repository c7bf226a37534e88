package scanner

// This package re-exports types from internal/types for convenience.
// The canonical types live in internal/types to avoid import cycles.

import (
	"time"

	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/types"
)

type (
	TargetKind = types.TargetKind
	ToolID     = types.ToolID
	ToolStatus = types.ToolStatus
	ToolResult = types.ToolResult
)

const (
	KindLocalDir  = types.KindLocalDir
	KindRemoteURL = types.KindRemoteURL

	StatusSucceeded = types.StatusSucceeded
	StatusFailed    = types.StatusFailed
	StatusSkipped   = types.StatusSkipped
)

// RunResult holds the aggregated outcome of one orchestration run.
type RunResult struct {
	// ID uniquely identifies this run; raw tool reports live under
	// ReportDir, which is scoped to the ID.
	ID string

	// Target is the resolved target, or a partially-populated Target when
	// resolution failed.
	Target *Target

	// Results holds one entry per requested tool, in invocation order.
	Results []ToolResult

	// ReportDir is the run-scoped directory holding the raw tool reports.
	ReportDir string

	// Resolved reports whether target resolution succeeded. A run succeeds
	// iff it resolved; individual tool failures and skips do not fail it.
	Resolved bool

	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded reports whether the run reached the point of attempting tool
// execution.
func (r *RunResult) Succeeded() bool { return r.Resolved }

// Record converts the run to its persisted history form.
func (r *RunResult) Record() types.RunRecord {
	rec := types.RunRecord{
		ID:        r.ID,
		State:     types.RunSucceeded,
		ReportDir: r.ReportDir,
		StartedAt: r.StartedAt,
	}
	if !r.FinishedAt.IsZero() {
		t := r.FinishedAt
		rec.FinishedAt = &t
	}
	if r.Target != nil {
		rec.Target = r.Target.Raw
		rec.Kind = r.Target.Kind.String()
	}
	if !r.Resolved {
		rec.State = types.RunFailed
	}
	for _, tr := range r.Results {
		rec.Tools = append(rec.Tools, tr.Outcome())
	}
	return rec
}
