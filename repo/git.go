package repo

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sharebox/sharebox-fuse/internal/logging"
)

// GitDriver talks to a working tree by forking git and git-annex.
// It is the only implementation of Driver that ships with this module:
// the driver's contract is annex-specific ("is this a placeholder",
// "unlock it", "fetch its body"), which a pure-Go git library such as
// go-git has no notion of.
type GitDriver struct {
	repoRoot string
}

// NewGitDriver returns a Driver rooted at repoRoot. repoRoot must be an
// absolute path to an initialized git working tree (with git-annex
// initialized in it, if annexed content is expected).
func NewGitDriver(repoRoot string) *GitDriver {
	return &GitDriver{repoRoot: repoRoot}
}

func (d *GitDriver) rel(path string) (string, error) {
	rel, err := filepath.Rel(d.repoRoot, path)
	if err != nil {
		return "", err
	}
	return rel, nil
}

func (d *GitDriver) run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = d.repoRoot
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

func (d *GitDriver) IsAnnexed(ctx context.Context, path string) bool {
	rel, err := d.rel(path)
	if err != nil {
		logging.Warningf("repo: resolving relative path for %s: %v", path, err)
		return false
	}
	// "git annex lookupkey" succeeds (prints the annex key) iff the
	// path is a tracked, annexed entry, whether or not its body is
	// materialized locally.
	_, err = d.run(ctx, "git", "annex", "lookupkey", rel)
	return err == nil
}

func (d *GitDriver) IsIgnored(ctx context.Context, path string) bool {
	rel, err := d.rel(path)
	if err != nil {
		logging.Warningf("repo: resolving relative path for %s: %v", path, err)
		return false
	}
	cmd := exec.CommandContext(ctx, "git", "check-ignore", "-q", rel)
	cmd.Dir = d.repoRoot
	// exit 0: ignored. exit 1: not ignored. anything else: an error,
	// which we treat conservatively as "not ignored" so that changes
	// are never silently dropped from history.
	err = cmd.Run()
	return err == nil
}

func (d *GitDriver) Unlock(ctx context.Context, path string) error {
	rel, err := d.rel(path)
	if err != nil {
		return err
	}
	_, err = d.run(ctx, "git", "annex", "unlock", rel)
	return err
}

func (d *GitDriver) AnnexAdd(ctx context.Context, path string) error {
	rel, err := d.rel(path)
	if err != nil {
		return err
	}
	_, err = d.run(ctx, "git", "annex", "add", rel)
	return err
}

func (d *GitDriver) Get(ctx context.Context, path string) error {
	rel, err := d.rel(path)
	if err != nil {
		return err
	}
	_, err = d.run(ctx, "git", "annex", "get", rel)
	return err
}

func (d *GitDriver) Add(ctx context.Context, path string) error {
	rel, err := d.rel(path)
	if err != nil {
		return err
	}
	_, err = d.run(ctx, "git", "add", "--", rel)
	return err
}

func (d *GitDriver) Remove(ctx context.Context, path string) error {
	rel, err := d.rel(path)
	if err != nil {
		return err
	}
	// The POSIX removal has already happened by the time this is
	// called, so the working tree copy is gone; --cached only needs
	// to update the index.
	_, err = d.run(ctx, "git", "rm", "--cached", "--ignore-unmatch", "-q", "--", rel)
	return err
}

func (d *GitDriver) Move(ctx context.Context, from, to string) error {
	relFrom, err := d.rel(from)
	if err != nil {
		return err
	}
	relTo, err := d.rel(to)
	if err != nil {
		return err
	}
	// The POSIX rename has already happened, so "git mv" (which tries
	// to rename the working tree file itself) cannot be used; update
	// the index directly instead.
	if _, err := d.run(ctx, "git", "rm", "--cached", "--ignore-unmatch", "-q", "--", relFrom); err != nil {
		return err
	}
	_, err = d.run(ctx, "git", "add", "--", relTo)
	return err
}

func (d *GitDriver) Commit(ctx context.Context, format string, args ...any) error {
	message := fmt.Sprintf(format, args...)
	_, err := d.run(ctx, "git", "commit", "-q", "-m", message)
	return err
}

var _ Driver = (*GitDriver)(nil)
