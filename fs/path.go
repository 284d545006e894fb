package fs

import (
	"errors"
	"strings"
)

// maxPathLen bounds the concatenation of filesRoot and the virtual path
// to a platform path buffer, the same constraint a FILENAME_MAX-sized
// stack buffer enforces in C. No library in reach defines this constant
// for general use, so it stays local.
const maxPathLen = 4096

// ErrPathTooLong is returned instead of silently truncating an
// over-long concatenation: refusing the operation is safer than serving
// a path that got truncated out from under the caller.
var ErrPathTooLong = errors.New("sharebox-fuse: virtual path too long")

// ErrNotAbsolute is returned for a virtual path that does not begin
// with "/".
var ErrNotAbsolute = errors.New("sharebox-fuse: virtual path is not absolute")

// Map is the Path Mapper: a pure, total, injective function from a
// virtual path to its backing path under filesRoot. It performs no
// normalization, no symlink resolution, and no permission check.
func Map(filesRoot, virtualPath string) (string, error) {
	if !strings.HasPrefix(virtualPath, "/") {
		return "", ErrNotAbsolute
	}
	backing := filesRoot + virtualPath
	if len(backing) >= maxPathLen {
		return "", ErrPathTooLong
	}
	return backing, nil
}
