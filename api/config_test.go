package api_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharebox/sharebox-fuse/api"
)

func TestValidateRequiresRepoRoot(t *testing.T) {
	err := api.GlobalConfig{}.Validate()
	assert.Error(t, err)
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	err := api.GlobalConfig{RepoRoot: "/repo", LogLevel: "verbose"}.Validate()
	assert.Error(t, err)
}

func TestValidateAcceptsGoodConfig(t *testing.T) {
	err := api.GlobalConfig{RepoRoot: "/repo", LogLevel: "debug"}.Validate()
	assert.NoError(t, err)
}

func TestWatchExternalChangesDefaultsToEnabled(t *testing.T) {
	c := api.GlobalConfig{}
	assert.True(t, c.WatchExternalChangesEnable())
}

func TestWatchExternalChangesCanBeDisabled(t *testing.T) {
	disabled := false
	c := api.GlobalConfig{WatchExternalChanges: &disabled}
	assert.False(t, c.WatchExternalChangesEnable())
}

func TestFUSEDebugDefaultsToDisabled(t *testing.T) {
	c := api.GlobalConfig{}
	assert.False(t, c.FUSEDebugEnable())
}

func TestMergeConfigsOverlayWins(t *testing.T) {
	base := api.GlobalConfig{RepoRoot: "/base", LogLevel: "basic"}
	debug := true
	overlay := api.GlobalConfig{LogLevel: "debug", FUSEDebug: &debug}

	merged, err := api.MergeConfigs(base, overlay)
	require.NoError(t, err)
	assert.Equal(t, "/base", merged.RepoRoot, "overlay omits repo_root, base should show through")
	assert.Equal(t, "debug", merged.LogLevel)
	assert.True(t, merged.FUSEDebugEnable())
}

func TestOSConfigReaderMissingFileReturnsErrConfigNotFound(t *testing.T) {
	reader := api.OSConfigReader{ConfigPath: filepath.Join(t.TempDir(), "does-not-exist.json")}
	_, err := reader.Read(api.GlobalConfig{})
	assert.ErrorIs(t, err, api.ErrConfigNotFound)
}

func TestOSConfigReaderReadsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"repo_root":"/repo","log_level":"warning"}`), 0o644))

	reader := api.OSConfigReader{ConfigPath: path}
	config, err := reader.Read(api.GlobalConfig{})
	require.NoError(t, err)
	assert.Equal(t, "/repo", config.RepoRoot)
	assert.Equal(t, "warning", config.LogLevel)
}

func TestDefaultConfigIsValidOnceRepoRootSet(t *testing.T) {
	config := api.DefaultConfig()
	config.RepoRoot = "/repo"
	assert.NoError(t, config.Validate())
}
