package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/types"
)

// DefaultToolTimeout bounds a single external tool invocation so a hung
// scanner cannot stall the scheduling cadence indefinitely.
const DefaultToolTimeout = 10 * time.Minute

// Config carries the explicit settings a Scanner is built from. No
// package-level state is consulted, so multiple scanners can run
// side by side without colliding on filenames.
type Config struct {
	// ReportDir is the base directory for raw tool reports. Each run
	// writes into its own subdirectory named by the run ID.
	ReportDir string

	// ToolTimeout bounds each external tool invocation.
	// DefaultToolTimeout applies when zero.
	ToolTimeout time.Duration

	Logger *slog.Logger

	// Progress, when set, is called as each tool starts and finishes.
	// Used by the CLI to drive its spinner.
	Progress func(tool types.ToolID, message string)
}

// Scanner orchestrates the scanning process: resolve the target, match
// applicable tools, invoke them, and clean up the ephemeral workspace.
type Scanner struct {
	tools    []Tool
	resolver *Resolver
	cfg      Config
}

// Request describes one orchestration run.
type Request struct {
	// ID names the run; a fresh UUID is generated when empty.
	ID string

	// Target is the raw target string: a remote URL or a local path.
	Target string

	// Tools is the requested subset; empty means every registered tool.
	Tools []types.ToolID
}

// New creates a Scanner from the given config.
func New(cfg Config) *Scanner {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ReportDir == "" {
		cfg.ReportDir = "reports"
	}
	if cfg.ToolTimeout <= 0 {
		cfg.ToolTimeout = DefaultToolTimeout
	}
	return &Scanner{
		resolver: NewResolver(cfg.Logger),
		cfg:      cfg,
	}
}

// RegisterTool adds a tool adapter to the scanner. Tools run in
// registration order when applicable.
func (s *Scanner) RegisterTool(t Tool) {
	s.tools = append(s.tools, t)
}

// ToolIDs returns the IDs of all registered tools in registration order.
func (s *Scanner) ToolIDs() []types.ToolID {
	ids := make([]types.ToolID, len(s.tools))
	for i, t := range s.tools {
		ids[i] = t.ID()
	}
	return ids
}

// Run performs one scan: resolve the target, run every selected tool that
// is applicable to the target's kind, and remove any ephemeral workspace
// the resolver created. The returned error is non-nil only for the
// fatal-to-run cases (invalid target, git missing, clone failure, not a
// repository, unknown tool selection); per-tool failures and skips are
// recorded on the individual ToolResults instead.
func (s *Scanner) Run(ctx context.Context, req Request) (*RunResult, error) {
	result := &RunResult{
		ID:        req.ID,
		StartedAt: time.Now(),
	}
	if result.ID == "" {
		result.ID = uuid.New().String()
	}
	defer func() { result.FinishedAt = time.Now() }()

	selected, err := s.selectTools(req.Tools)
	if err != nil {
		return result, err
	}

	target, err := s.resolver.Resolve(ctx, req.Target)
	result.Target = target
	// The workspace outlives resolution errors: a failed clone may leave
	// a partially created directory behind.
	defer s.cleanup(target)
	if err != nil {
		s.cfg.Logger.Error("target resolution failed", "target", req.Target, "error", err)
		return result, err
	}
	result.Resolved = true

	runDir := filepath.Join(s.cfg.ReportDir, result.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		result.Resolved = false
		return result, fmt.Errorf("creating report directory %s: %w", runDir, err)
	}
	result.ReportDir = runDir

	result.Results = s.runTools(ctx, selected, target, runDir)
	return result, nil
}

// selectTools maps the requested IDs to registered tools, defaulting to
// all of them. Unknown IDs are rejected before any resolution happens.
func (s *Scanner) selectTools(ids []types.ToolID) ([]Tool, error) {
	if len(ids) == 0 {
		return s.tools, nil
	}
	byID := make(map[types.ToolID]Tool, len(s.tools))
	for _, t := range s.tools {
		byID[t.ID()] = t
	}
	selected := make([]Tool, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown tool: %q", id)
		}
		selected = append(selected, t)
	}
	return selected, nil
}

// runTools invokes every applicable tool concurrently. The tools share
// nothing but the read-only target and each writes its own file under
// dir, so no locking is needed; the group is only used to wait for all
// of them. A tool's failure never cancels its siblings.
func (s *Scanner) runTools(ctx context.Context, selected []Tool, target *Target, dir string) []ToolResult {
	results := make([]ToolResult, len(selected))

	var g errgroup.Group
	for i, tool := range selected {
		i, tool := i, tool
		if ok, reason := tool.Applicable(target); !ok {
			s.cfg.Logger.Info("skipping tool", "tool", tool.ID(), "reason", reason)
			results[i] = ToolResult{Tool: tool.ID(), Status: StatusSkipped, Reason: reason}
			continue
		}

		g.Go(func() error {
			s.progress(tool.ID(), fmt.Sprintf("running %s", tool.ID()))
			start := time.Now()

			toolCtx, cancel := context.WithTimeout(ctx, s.cfg.ToolTimeout)
			defer cancel()

			res := tool.Run(toolCtx, target, dir)
			res.Tool = tool.ID()
			res.Duration = time.Since(start)
			results[i] = res

			s.progress(tool.ID(), fmt.Sprintf("%s %s", tool.ID(), res.Status))
			if res.Status == StatusFailed {
				s.cfg.Logger.Warn("tool failed", "tool", tool.ID(), "reason", res.Reason)
			} else {
				s.cfg.Logger.Info("tool finished", "tool", tool.ID(), "status", res.Status.String(), "duration", res.Duration)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// cleanup removes the ephemeral clone workspace, if one was created.
// Runs after all tools have finished reading from it; failure to remove
// is logged and never changes the scan's outcome.
func (s *Scanner) cleanup(target *Target) {
	if target == nil || target.Workspace == "" {
		return
	}
	if err := os.RemoveAll(target.Workspace); err != nil {
		s.cfg.Logger.Warn("removing ephemeral workspace failed", "dir", target.Workspace, "error", err)
		return
	}
	s.cfg.Logger.Info("removed ephemeral workspace", "dir", target.Workspace)
}

func (s *Scanner) progress(tool types.ToolID, message string) {
	if s.cfg.Progress != nil {
		s.cfg.Progress(tool, message)
	}
}
