package fs

import (
	"errors"
	"os"
	"syscall"

	"github.com/sharebox/sharebox-fuse/internal/logging"
	"github.com/sirupsen/logrus"
)

// errnoFromErr translates a POSIX-failure error into the syscall.Errno
// the transport expects: 0 (success) or a non-zero Errno (go-fuse
// negates it on the wire).
//
// Callers must call this immediately after the failing syscall, before
// any further call (repository bookkeeping, logging) that might clobber
// a package-level errno - a discipline C code has to maintain by hand
// by snapshotting errno into a local before any intervening call can
// overwrite it. Go's error values make this automatic: the errno is
// captured inside the *os.PathError / syscall.Errno returned by the
// failing call itself, not read back out of a global later.
func errnoFromErr(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errnoFromErr(pathErr.Err)
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return errnoFromErr(linkErr.Err)
	}
	if errors.Is(err, ErrPathTooLong) {
		return syscall.ENAMETOOLONG
	}
	if errors.Is(err, ErrNotAbsolute) {
		return syscall.EINVAL
	}
	return syscall.EIO
}

// logRepoFailure records a repository-driver failure without letting it
// change any handler's return status: the POSIX result already happened
// and stays authoritative, so a failed annex/git call is worth knowing
// about but never worth turning into an EIO the caller didn't earn.
func logRepoFailure(op, path string, err error) {
	if err == nil {
		return
	}
	logging.WithFields(logrus.Fields{"op": op, "path": path}).Warnf("repository driver: %v", err)
}
