package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Resolution failures that abort a run before any tool executes.
var (
	// ErrInvalidTarget means the target is neither a remote URL nor an
	// existing local directory.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrGitMissing means the git binary could not be found on PATH.
	ErrGitMissing = errors.New("git is not installed")

	// ErrCloneFailed means a remote target could not be cloned.
	ErrCloneFailed = errors.New("clone failed")

	// ErrNotGitRepo means the materialized path is not a git working tree.
	ErrNotGitRepo = errors.New("not a git repository")
)

// Target is a resolved scan target. Path always refers to an existing git
// working tree by the time any tool runs against it.
type Target struct {
	// Raw is the target string exactly as the user supplied it.
	Raw string

	// Kind records whether Raw was a remote URL or a local directory.
	Kind TargetKind

	// Path is the local directory to scan: the clone for remote targets,
	// Raw itself for local ones.
	Path string

	// Workspace is the ephemeral clone directory, set only for remote
	// targets. The orchestrator removes it when the run finishes; the
	// resolver never does.
	Workspace string
}

// IsRemote reports whether the target was supplied as a URL.
func (t *Target) IsRemote() bool { return t.Kind == KindRemoteURL }

// Resolver classifies a raw target string and materializes a scannable
// working copy.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver returns a Resolver that logs through the given logger.
func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// isRemoteURL reports whether raw carries an http or https scheme prefix.
// Anything else is treated as a filesystem path.
func isRemoteURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

// Resolve turns a raw target string into a Target with an existing,
// git-tracked local path. Remote URLs are cloned into a fresh ephemeral
// workspace; local paths are used in place. Any failure is one of the
// sentinel errors above, wrapped with its cause.
//
// On clone failure the partially created workspace is recorded on the
// returned Target so the caller can still remove it.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*Target, error) {
	target := &Target{Raw: raw}

	if _, err := gitPath(); err != nil {
		return target, err
	}

	if isRemoteURL(raw) {
		target.Kind = KindRemoteURL
		r.logger.Info("target looks like a remote URL, cloning", "target", raw)

		dir, err := os.MkdirTemp("", "vao-clone-")
		if err != nil {
			return target, fmt.Errorf("creating clone workspace: %w", err)
		}
		target.Workspace = dir
		if err := cloneRepo(ctx, raw, dir, r.logger); err != nil {
			return target, err
		}
		target.Path = dir
	} else {
		target.Kind = KindLocalDir
		info, err := os.Stat(raw)
		if err != nil || !info.IsDir() {
			return target, fmt.Errorf("%w: %s is not an existing directory", ErrInvalidTarget, raw)
		}
		r.logger.Info("target is a local directory, using it directly", "target", raw)
		target.Path = raw
	}

	if !isGitWorkTree(target.Path) {
		return target, fmt.Errorf("%w: %s", ErrNotGitRepo, target.Path)
	}

	return target, nil
}
