// Package repo declares the semantic operations the filesystem dispatcher
// needs from a version-control-and-annex-aware repository, and a
// subprocess-based implementation of them.
//
// The driver is consumed as an opaque external collaborator: the
// dispatcher never parses git or git-annex output beyond what these
// methods return, and a failure here never changes the POSIX status
// the caller sees; only the original syscall's errno does that.
package repo

import "context"

// Driver is the set of idempotent operations the dispatcher performs
// against a working tree rooted at RepoRoot. Every method takes an
// absolute backing path (under <RepoRoot>/files) unless noted otherwise.
type Driver interface {
	// IsAnnexed reports whether the backing entry at path is a
	// git-annex placeholder (a symlink into the annex store).
	IsAnnexed(ctx context.Context, path string) bool

	// IsIgnored reports whether path is matched by the repository's
	// ignore rules. Ignored paths are never staged or committed.
	IsIgnored(ctx context.Context, path string) bool

	// Unlock converts an annex placeholder into a writable regular
	// file (typically by copying the annexed body in-place).
	Unlock(ctx context.Context, path string) error

	// AnnexAdd stages path, re-keying it into the annex if it is
	// annexed, or staging it as an ordinary file otherwise.
	AnnexAdd(ctx context.Context, path string) error

	// Get fetches the annexed body for path from any configured
	// remote, materializing it on local disk.
	Get(ctx context.Context, path string) error

	// Add stages path as an ordinary tracked entry (used for new
	// symlinks and non-annexed content).
	Add(ctx context.Context, path string) error

	// Remove updates the index to reflect that path no longer exists
	// in the working tree. Called after the POSIX removal.
	Remove(ctx context.Context, path string) error

	// Move updates the index to reflect that from now lives at to.
	// Called after the POSIX rename.
	Move(ctx context.Context, from, to string) error

	// Commit records whatever is currently staged with a message
	// built from format and args (as fmt.Sprintf).
	Commit(ctx context.Context, format string, args ...any) error
}
