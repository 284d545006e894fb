// Package repotest provides an in-memory fake of repo.Driver so that
// dispatcher tests don't need a real git/git-annex binary on the test
// runner.
package repotest

import (
	"context"
	"fmt"
	"sync"
)

// Fake is an in-memory repo.Driver. Construct it with New: the zero
// value has no maps, and MarkAnnexed/MarkIgnored panic on it. Every
// backing path is untracked, unignored, and not annexed until configured.
type Fake struct {
	mu sync.Mutex

	annexed map[string]bool
	ignored map[string]bool

	// GetHook is invoked by Get, after recording the call, to let a
	// test materialize the annexed body (e.g. by writing the symlink
	// target file). If nil, Get is a no-op success.
	GetHook func(path string) error

	Commits  []string
	Added    []string
	Removed  []string
	Moved    [][2]string
	Unlocked []string
	Gotten   []string
	AnnexAdded []string
}

func New() *Fake {
	return &Fake{
		annexed: make(map[string]bool),
		ignored: make(map[string]bool),
	}
}

// MarkAnnexed marks path as an annex placeholder for IsAnnexed.
func (f *Fake) MarkAnnexed(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.annexed[path] = true
}

// MarkIgnored marks path as matching the repository's ignore rules.
func (f *Fake) MarkIgnored(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ignored[path] = true
}

func (f *Fake) IsAnnexed(ctx context.Context, path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.annexed[path]
}

func (f *Fake) IsIgnored(ctx context.Context, path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ignored[path]
}

func (f *Fake) Unlock(ctx context.Context, path string) error {
	f.mu.Lock()
	f.Unlocked = append(f.Unlocked, path)
	f.mu.Unlock()
	return nil
}

func (f *Fake) AnnexAdd(ctx context.Context, path string) error {
	f.mu.Lock()
	f.AnnexAdded = append(f.AnnexAdded, path)
	f.mu.Unlock()
	return nil
}

func (f *Fake) Get(ctx context.Context, path string) error {
	f.mu.Lock()
	f.Gotten = append(f.Gotten, path)
	hook := f.GetHook
	f.mu.Unlock()
	if hook != nil {
		return hook(path)
	}
	return nil
}

func (f *Fake) Add(ctx context.Context, path string) error {
	f.mu.Lock()
	f.Added = append(f.Added, path)
	f.mu.Unlock()
	return nil
}

func (f *Fake) Remove(ctx context.Context, path string) error {
	f.mu.Lock()
	f.Removed = append(f.Removed, path)
	delete(f.annexed, path)
	f.mu.Unlock()
	return nil
}

func (f *Fake) Move(ctx context.Context, from, to string) error {
	f.mu.Lock()
	f.Moved = append(f.Moved, [2]string{from, to})
	if f.annexed[from] {
		f.annexed[to] = true
		delete(f.annexed, from)
	}
	f.mu.Unlock()
	return nil
}

func (f *Fake) Commit(ctx context.Context, format string, args ...any) error {
	f.mu.Lock()
	f.Commits = append(f.Commits, fmt.Sprintf(format, args...))
	f.mu.Unlock()
	return nil
}

// CommitCount returns the number of commits recorded so far.
func (f *Fake) CommitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Commits)
}

// LastCommit returns the most recent commit message, or "" if none.
func (f *Fake) LastCommit() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Commits) == 0 {
		return ""
	}
	return f.Commits[len(f.Commits)-1]
}
