package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"pkt.systems/pslog"
)

// Run executes a git command in the provided directory and returns its
// combined output.
func Run(ctx context.Context, dir string, args ...string) (string, error) {
	log := pslog.Ctx(ctx).With("dir", dir, "args", strings.Join(args, " "))
	log.Trace("git run start")
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		preview := strings.TrimSpace(string(output))
		truncated := false
		if len(preview) > 200 {
			preview = preview[:200]
			truncated = true
		}
		// Failures are expected for unborn or foreign repositories; the
		// prompt just renders without a branch.
		log.Debug("git run failed", "err", err, "output", preview, "truncated", truncated)
		return string(output), fmt.Errorf("git %s failed: %w (%s)", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	log.Trace("git run ok", "output_len", len(output))
	return string(output), nil
}

// CurrentBranch returns the checked out branch name. A detached HEAD
// reports the short commit hash instead.
func CurrentBranch(ctx context.Context, dir string) (string, error) {
	out, err := Run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		// No commits yet: HEAD still names the unborn branch.
		out, err = Run(ctx, dir, "symbolic-ref", "--short", "HEAD")
		if err != nil {
			return "", err
		}
	}
	branch := strings.TrimSpace(out)
	if branch != "HEAD" {
		return branch, nil
	}
	out, err = Run(ctx, dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
