package fs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharebox/sharebox-fuse/repo/repotest"
)

func TestNewContextDerivesFilesRoot(t *testing.T) {
	c := NewContext("/repo", repotest.New())
	assert.Equal(t, "/repo/files", c.FilesRoot)
	assert.Equal(t, stateIdle, c.state)
}

func TestPosixOnlySkipsBookkeepingAndCommits(t *testing.T) {
	driver := repotest.New()
	c := NewContext("/repo", driver)

	c.lockMutation()
	c.posixOnly()
	c.unlockMutation()

	assert.Equal(t, stateIdle, c.state)
	assert.Empty(t, driver.Commits)
}

func TestCommitIfTrackedSkipsOnPosixFailure(t *testing.T) {
	driver := repotest.New()
	c := NewContext("/repo", driver)

	c.lockMutation()
	c.commitIfTracked(context.Background(), false, false, func() error {
		t.Fatal("bookkeep must not run when the POSIX op failed")
		return nil
	}, "should not appear")
	c.unlockMutation()

	assert.Empty(t, driver.Commits)
}

func TestCommitIfTrackedSkipsOnIgnoredPath(t *testing.T) {
	driver := repotest.New()
	c := NewContext("/repo", driver)

	called := false
	c.lockMutation()
	c.commitIfTracked(context.Background(), true, true, func() error {
		called = true
		return nil
	}, "ignored op")
	c.unlockMutation()

	assert.False(t, called, "bookkeep must not run on an ignored path")
	assert.Empty(t, driver.Commits)
}

func TestCommitIfTrackedCommitsOnSuccess(t *testing.T) {
	driver := repotest.New()
	c := NewContext("/repo", driver)

	bookkept := false
	c.lockMutation()
	c.commitIfTracked(context.Background(), true, false, func() error {
		bookkept = true
		return nil
	}, "did the thing %s", "foo")
	c.unlockMutation()

	assert.True(t, bookkept)
	require.Len(t, driver.Commits, 1)
	assert.Equal(t, "did the thing foo", driver.Commits[0])
}

func TestCommitIfTrackedStillCommitsWhenBookkeepFails(t *testing.T) {
	driver := repotest.New()
	c := NewContext("/repo", driver)

	c.lockMutation()
	c.commitIfTracked(context.Background(), true, false, func() error {
		return errors.New("bookkeep failed")
	}, "op")
	c.unlockMutation()

	assert.Len(t, driver.Commits, 1, "a bookkeeping failure must not suppress the commit")
}

func TestWriterLockInvariantHoldsAfterNormalUse(t *testing.T) {
	c := NewContext("/repo", repotest.New())
	c.lockMutation()
	c.posixOnly()
	c.unlockMutation()

	// A second lock/unlock cycle must not panic the invariant check.
	c.lockMutation()
	c.posixOnly()
	c.unlockMutation()
}
