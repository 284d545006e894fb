package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// GlobalConfig is the configuration for the sharebox-fuse filesystem.
// It can be read from a JSON file or passed as command-line flags, the
// same layering the manifest-driven predecessor of this tool used.
type GlobalConfig struct {
	// RepoRoot is the absolute path to the repository working tree.
	// The filesystem exposes <RepoRoot>/files as the mount's root.
	RepoRoot string `json:"repo_root,omitempty"`
	// Log level. One of "error", "warning", "basic", "debug".
	LogLevel string `json:"log_level,omitempty"`
	// Emits debug information about the FUSE filesystem.
	FUSEDebug *bool `json:"fuse_debug,omitempty"`
	// WatchExternalChanges enables a best-effort fsnotify watcher that
	// warns on every change observed in the backing tree, including
	// changes made through the mount itself.
	// The concurrency model assumes no concurrent external mutator;
	// the watcher only surfaces changes, it doesn't prevent any.
	WatchExternalChanges *bool `json:"watch_external_changes,omitempty"`
}

var ErrConfigNotFound = errors.New("config file not found")

func (c GlobalConfig) Validate() error {
	issues := []string{}
	if c.RepoRoot == "" {
		issues = append(issues, `repo_root must be provided`)
	}
	switch c.LogLevel {
	case "", "error", "warning", "basic", "debug": // allowed
	default:
		issues = append(issues, `log_level must be one of "error", "warning", "basic", "debug"`)
	}
	if len(issues) > 0 {
		return errors.New("config validation failed: \n  " + strings.Join(issues, "\n  "))
	}
	return nil
}

func (c GlobalConfig) FUSEDebugEnable() bool {
	return c.FUSEDebug != nil && *c.FUSEDebug
}

func (c GlobalConfig) WatchExternalChangesEnable() bool {
	return c.WatchExternalChanges == nil || *c.WatchExternalChanges
}

type ConfigReader interface {
	Read(baseConfig GlobalConfig) (GlobalConfig, error)
}

func ReadConfig(reader ConfigReader, config GlobalConfig) (GlobalConfig, error) {
	return reader.Read(config)
}

func DefaultConfig() GlobalConfig {
	return GlobalConfig{
		RepoRoot:             "",
		LogLevel:             "basic",
		FUSEDebug:            nil,
		WatchExternalChanges: nil,
	}
}

// OSConfigReader reads a GlobalConfig from a JSON file on disk.
type OSConfigReader struct {
	ConfigPath string
}

func (r OSConfigReader) Read(config GlobalConfig) (GlobalConfig, error) {
	file, err := os.Open(r.ConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, ErrConfigNotFound
		}
		return config, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		return config, err
	}
	return config, nil
}

// MergeConfigs overlays a partial config (e.g. one assembled from flags)
// on top of a base config (e.g. one read from a JSON file), field by field.
func MergeConfigs(base, overlay GlobalConfig) (GlobalConfig, error) {
	overlayJSON, err := json.Marshal(overlay)
	if err != nil {
		return GlobalConfig{}, err
	}

	decoder := json.NewDecoder(bytes.NewReader(overlayJSON))
	decoder.DisallowUnknownFields()

	merged := base
	if err := decoder.Decode(&merged); err != nil {
		return GlobalConfig{}, err
	}
	return merged, nil
}
