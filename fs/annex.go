package fs

import (
	"context"
	"os"
	"syscall"

	"github.com/sharebox/sharebox-fuse/repo"
)

// POSIX access() mode bits, fixed by the standard and inlined rather
// than imported just for four constants.
const (
	accessFOK = 0
	accessXOK = 1
	accessWOK = 2
	accessROK = 4
)

// annexView is the two queries (is it an annex placeholder, is the body
// materialised on disk) plus the attribute-synthesis and access-policy
// rules built on top of them.
type annexView struct {
	driver repo.Driver
}

// isMaterialised is true iff stat(fp) succeeds following symlinks, i.e.
// the annex placeholder's target exists on local disk.
func isMaterialised(fp string) bool {
	_, err := os.Stat(fp)
	return err == nil
}

func (v annexView) isAnnexed(ctx context.Context, fp string) bool {
	return v.driver.IsAnnexed(ctx, fp)
}

// synthesizeAttr applies the attribute-synthesis rule to attributes
// that have already been filled from an lstat of fp: if fp is annexed
// and materialised, the lstat result is overwritten with the stat of
// the annex target; if annexed and not materialised, the type bits are
// forced to a regular file with size zero. In both annexed cases,
// owner-write is OR'd into the mode ("fake writable") so editors don't
// refuse to open the placeholder.
func (v annexView) synthesizeAttr(ctx context.Context, fp string, mode *uint32, size *uint64, blocks *uint64, fillFromStat func(*syscall.Stat_t)) {
	if !v.isAnnexed(ctx, fp) {
		return
	}
	if isMaterialised(fp) {
		var st syscall.Stat_t
		if err := syscall.Stat(fp, &st); err == nil {
			fillFromStat(&st)
		}
	} else {
		*mode = (*mode &^ syscall.S_IFMT) | syscall.S_IFREG
		*size = 0
		*blocks = 0
	}
	*mode |= syscall.S_IWUSR
}

// checkAccess implements the access() policy: annexed + not materialised
// -> EACCES; annexed + materialised -> access with the write bit masked
// off; otherwise a plain access check.
func (v annexView) checkAccess(ctx context.Context, fp string, mask uint32) syscall.Errno {
	if v.isAnnexed(ctx, fp) {
		if !isMaterialised(fp) {
			return syscall.EACCES
		}
		return errnoFromErr(syscall.Access(fp, mask&^accessWOK))
	}
	return errnoFromErr(syscall.Access(fp, mask))
}

// ensureMaterialised requests a fetch from the driver if fp is annexed
// and not yet materialized locally. It reports whether fp is readable
// afterwards (annexed-and-still-absent is not).
func (v annexView) ensureMaterialised(ctx context.Context, fp string) (ok bool) {
	if !v.isAnnexed(ctx, fp) {
		return true
	}
	if isMaterialised(fp) {
		return true
	}
	if err := v.driver.Get(ctx, fp); err != nil {
		// A fetch failure doesn't change the return status here -
		// the POSIX result is authoritative, and that result is
		// "still not materialised" either way.
		logRepoFailure("annex_get", fp, err)
	}
	return isMaterialised(fp)
}
