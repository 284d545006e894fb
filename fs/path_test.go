package fs_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharebox/sharebox-fuse/fs"
)

func TestMapJoinsFilesRootAndVirtualPath(t *testing.T) {
	backing, err := fs.Map("/repo/files", "/a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "/repo/files/a/b.txt", backing)
}

func TestMapRootIsFilesRoot(t *testing.T) {
	backing, err := fs.Map("/repo/files", "/")
	require.NoError(t, err)
	assert.Equal(t, "/repo/files/", backing)
}

func TestMapRejectsRelativePath(t *testing.T) {
	_, err := fs.Map("/repo/files", "a/b.txt")
	assert.ErrorIs(t, err, fs.ErrNotAbsolute)
}

func TestMapRejectsOverlongPath(t *testing.T) {
	long := "/" + strings.Repeat("a", 5000)
	_, err := fs.Map("/repo/files", long)
	assert.ErrorIs(t, err, fs.ErrPathTooLong)
}

func TestMapIsInjective(t *testing.T) {
	a, err := fs.Map("/repo/files", "/one")
	require.NoError(t, err)
	b, err := fs.Map("/repo/files", "/two")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
