package fs

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharebox/sharebox-fuse/repo/repotest"
)

func lstatAttr(t *testing.T, fp string) (mode uint32, size, blocks uint64, st syscall.Stat_t) {
	t.Helper()
	require.NoError(t, syscall.Lstat(fp, &st))
	mode = st.Mode
	size = uint64(st.Size)
	blocks = uint64(st.Blocks)
	return
}

func TestSynthesizeAttrNonAnnexedPassesThrough(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(fp, []byte("hello"), 0o644))

	driver := repotest.New()
	view := annexView{driver: driver}

	mode, size, blocks, st := lstatAttr(t, fp)
	origMode := mode
	view.synthesizeAttr(context.Background(), fp, &mode, &size, &blocks, func(s *syscall.Stat_t) { *s = st })
	assert.Equal(t, origMode, mode)
}

func TestSynthesizeAttrAnnexedAbsentForcesRegularZeroSize(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, "placeholder")
	target := filepath.Join(dir, "missing-annex-target")
	require.NoError(t, os.Symlink(target, fp))

	driver := repotest.New()
	driver.MarkAnnexed(fp)
	view := annexView{driver: driver}

	mode, size, blocks, st := lstatAttr(t, fp)
	view.synthesizeAttr(context.Background(), fp, &mode, &size, &blocks, func(s *syscall.Stat_t) { *s = st })

	assert.Equal(t, uint32(syscall.S_IFREG), mode&syscall.S_IFMT)
	assert.Equal(t, uint64(0), size)
	assert.NotZero(t, mode&syscall.S_IWUSR, "placeholder must report fake-writable")
}

func TestSynthesizeAttrAnnexedMaterialisedUsesTargetStat(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "body")
	require.NoError(t, os.WriteFile(target, []byte("content"), 0o444))
	fp := filepath.Join(dir, "placeholder")
	require.NoError(t, os.Symlink(target, fp))

	driver := repotest.New()
	driver.MarkAnnexed(fp)
	view := annexView{driver: driver}

	mode, size, blocks, _ := lstatAttr(t, fp)
	view.synthesizeAttr(context.Background(), fp, &mode, &size, &blocks, func(s *syscall.Stat_t) {
		mode = s.Mode
		size = uint64(s.Size)
		blocks = uint64(s.Blocks)
	})

	assert.Equal(t, uint64(len("content")), size)
	assert.NotZero(t, mode&syscall.S_IWUSR)
}

func TestCheckAccessAnnexedAbsentIsEACCES(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "missing-target")
	fp := filepath.Join(dir, "placeholder")
	require.NoError(t, os.Symlink(target, fp))

	driver := repotest.New()
	driver.MarkAnnexed(fp)
	view := annexView{driver: driver}

	errno := view.checkAccess(context.Background(), fp, accessROK)
	assert.Equal(t, syscall.EACCES, errno)
}

func TestCheckAccessAnnexedMaterialisedMasksWrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "body")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o444))
	fp := filepath.Join(dir, "placeholder")
	require.NoError(t, os.Symlink(target, fp))

	driver := repotest.New()
	driver.MarkAnnexed(fp)
	view := annexView{driver: driver}

	errno := view.checkAccess(context.Background(), fp, accessROK|accessWOK)
	assert.Equal(t, syscall.Errno(0), errno)
}

func TestEnsureMaterialisedFetchesOnce(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "body")
	fp := filepath.Join(dir, "placeholder")
	require.NoError(t, os.Symlink(target, fp))

	driver := repotest.New()
	driver.MarkAnnexed(fp)
	driver.GetHook = func(path string) error {
		return os.WriteFile(target, []byte("fetched"), 0o444)
	}
	view := annexView{driver: driver}

	ok := view.ensureMaterialised(context.Background(), fp)
	assert.True(t, ok)
	assert.Len(t, driver.Gotten, 1)
}

func TestEnsureMaterialisedNonAnnexedIsNoop(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(fp, []byte("x"), 0o644))

	driver := repotest.New()
	view := annexView{driver: driver}

	ok := view.ensureMaterialised(context.Background(), fp)
	assert.True(t, ok)
	assert.Empty(t, driver.Gotten)
}
