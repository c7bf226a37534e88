package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
)

// gitPath locates the git binary. Its absence is fatal to target
// resolution: without git neither cloning nor the worktree check works.
func gitPath() (string, error) {
	path, err := exec.LookPath("git")
	if err != nil {
		return "", fmt.Errorf("%w: install git and make sure it is on PATH", ErrGitMissing)
	}
	return path, nil
}

// cloneRepo clones url into dir with a shallow depth-1 clone. Transient
// failures are retried with exponential backoff; the retry window is kept
// short so a dead remote fails the run quickly.
func cloneRepo(ctx context.Context, url, dir string, logger *slog.Logger) error {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.MaxElapsedTime = 30 * time.Second
	expBackoff.InitialInterval = 2 * time.Second

	var lastStderr string
	operation := func() error {
		cmd := exec.CommandContext(ctx, "git", "clone", "--depth=1", url, dir)
		out, err := cmd.CombinedOutput()
		if err != nil {
			lastStderr = strings.TrimSpace(string(out))
			logger.Warn("git clone attempt failed", "url", url, "error", err, "output", lastStderr)
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			// A non-empty clone directory makes every retry fail with
			// "destination path already exists"; clear it first.
			clearDir(dir)
			return err
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(expBackoff, ctx)); err != nil {
		if lastStderr != "" {
			return fmt.Errorf("%w: cloning %s: %s", ErrCloneFailed, url, lastStderr)
		}
		return fmt.Errorf("%w: cloning %s: %v", ErrCloneFailed, url, err)
	}
	logger.Info("repository cloned", "url", url, "dir", dir)
	return nil
}

// clearDir removes the contents of dir but keeps dir itself, so the
// workspace path recorded on the Target stays valid for cleanup.
func clearDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		_ = os.RemoveAll(filepath.Join(dir, e.Name()))
	}
}

// isGitWorkTree reports whether path is inside a git working tree. The
// cheap .git entry check is tried first, then git itself is asked.
func isGitWorkTree(path string) bool {
	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		return true
	}
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = path
	out, err := cmd.Output()
	return err == nil && strings.TrimSpace(string(out)) == "true"
}
