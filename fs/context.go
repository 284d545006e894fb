package fs

import (
	"context"
	"fmt"

	"github.com/jacobsa/syncutil"
	"github.com/sharebox/sharebox-fuse/repo"
)

// Context is the mount-wide, process-wide state every node needs: the
// repository root, the backing subtree actually exposed, the repository
// driver, and the single writer lock that serializes mutating operations.
//
// It is constructed once at startup and passed into the root node; it is
// never a package-level singleton, so multiple mounts in the same
// process never share a lock by accident.
type Context struct {
	RepoRoot  string
	FilesRoot string
	Driver    repo.Driver

	// WriterLock serializes every mutating handler (mknod, mkdir,
	// unlink, rmdir, symlink, rename, setattr, write, release) for the
	// entire POSIX-op + bookkeeping + commit sequence.
	//
	// It is an InvariantMutex rather than a bare sync.Mutex so the
	// per-operation state machine below
	// (idle -> locked -> posix_done -> {bookkept,skipped} -> committed -> unlocked)
	// has somewhere to assert itself: the invariant checked on every
	// Unlock is that state is one of {idle, committed} - i.e. never
	// observed mid-sequence by a holder that didn't take the lock.
	WriterLock syncutil.InvariantMutex

	paths *pathLocks

	state mutationState
}

type mutationState int

const (
	stateIdle mutationState = iota
	stateLocked
	statePosixDone
	stateBookkept
	stateSkipped
	stateCommitted
)

func (c *Context) checkInvariants() {
	if c.state != stateIdle && c.state != stateCommitted {
		panic("sharebox-fuse: writer lock released mid state-machine")
	}
}

// NewContext builds a mount context rooted at repoRoot, backed by driver.
func NewContext(repoRoot string, driver repo.Driver) *Context {
	c := &Context{
		RepoRoot:  repoRoot,
		FilesRoot: repoRoot + "/files",
		Driver:    driver,
		paths:     newPathLocks(),
	}
	c.state = stateIdle
	c.WriterLock = syncutil.NewInvariantMutex(c.checkInvariants)
	return c
}

// lockMutation acquires the writer lock and advances the state machine to
// "locked". unlockMutation must be called (typically via defer) once the
// operation - successful or not - has reached a terminal state.
func (c *Context) lockMutation() {
	c.WriterLock.Lock()
	c.state = stateLocked
}

func (c *Context) unlockMutation() {
	c.state = stateIdle
	c.WriterLock.Unlock()
}

// posixDone transitions locked -> posix_done. Call immediately after the
// primary syscall returns, whatever its outcome.
func (c *Context) posixDone() {
	c.state = statePosixDone
}

// bookkept transitions posix_done -> bookkept (POSIX succeeded and the
// path was not ignored).
func (c *Context) bookkept() {
	c.state = stateBookkept
}

// skipped transitions posix_done -> skipped (POSIX failed, or the path
// is ignored).
func (c *Context) skipped() {
	c.state = stateSkipped
}

// committed transitions {bookkept,skipped} -> committed, the last state
// before the lock is released.
func (c *Context) committed() {
	c.state = stateCommitted
}

// posixOnly finishes a mutating operation that never stages or commits
// anything (mknod, mkdir, rmdir): the entry created or removed has no
// content yet for the repository to track.
func (c *Context) posixOnly() {
	c.posixDone()
	c.skipped()
	c.committed()
}

// commitIfTracked finishes a mutating operation that stages changes
// and commits them. bookkeep runs and a commit is attempted only when
// ok is true and the path is not ignored; otherwise the operation is
// marked skipped and no repository call is made. A bookkeeping or
// commit failure is logged but never changes what the caller already
// got back from the POSIX call.
func (c *Context) commitIfTracked(ctx context.Context, ok, ignored bool, bookkeep func() error, format string, args ...any) {
	c.posixDone()
	if !ok || ignored {
		c.skipped()
		c.committed()
		return
	}
	msg := fmt.Sprintf(format, args...)
	if bookkeep != nil {
		if err := bookkeep(); err != nil {
			logRepoFailure("bookkeep", msg, err)
		}
	}
	if err := c.Driver.Commit(ctx, format, args...); err != nil {
		logRepoFailure("commit", msg, err)
	}
	c.bookkept()
	c.committed()
}
