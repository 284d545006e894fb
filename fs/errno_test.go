package fs

import (
	"fmt"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrnoFromErrNil(t *testing.T) {
	assert.Equal(t, syscall.Errno(0), errnoFromErr(nil))
}

func TestErrnoFromErrBareErrno(t *testing.T) {
	assert.Equal(t, syscall.ENOENT, errnoFromErr(syscall.ENOENT))
}

func TestErrnoFromErrPathError(t *testing.T) {
	err := &os.PathError{Op: "open", Path: "/x", Err: syscall.EACCES}
	assert.Equal(t, syscall.EACCES, errnoFromErr(err))
}

func TestErrnoFromErrLinkError(t *testing.T) {
	err := &os.LinkError{Op: "rename", Old: "/a", New: "/b", Err: syscall.EXDEV}
	assert.Equal(t, syscall.EXDEV, errnoFromErr(err))
}

func TestErrnoFromErrUnknownMapsToEIO(t *testing.T) {
	assert.Equal(t, syscall.EIO, errnoFromErr(fmt.Errorf("some opaque failure")))
}

func TestErrnoFromErrPathTooLongMapsToENAMETOOLONG(t *testing.T) {
	assert.Equal(t, syscall.ENAMETOOLONG, errnoFromErr(ErrPathTooLong))
}

func TestErrnoFromErrNotAbsoluteMapsToEINVAL(t *testing.T) {
	assert.Equal(t, syscall.EINVAL, errnoFromErr(ErrNotAbsolute))
}

func TestErrnoFromErrWrappedPathMapperSentinels(t *testing.T) {
	assert.Equal(t, syscall.ENAMETOOLONG, errnoFromErr(fmt.Errorf("lookup: %w", ErrPathTooLong)))
	assert.Equal(t, syscall.EINVAL, errnoFromErr(fmt.Errorf("lookup: %w", ErrNotAbsolute)))
}

func TestLogRepoFailureNilIsNoop(t *testing.T) {
	logRepoFailure("op", "path", nil)
}
