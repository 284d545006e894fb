package api

// Environment variables used by sharebox-fuse.
const (
	// LogLevelEnv is the environment variable used to set the log level.
	LogLevelEnv = "SHAREBOX_FUSE_LOGGING"
	// ConfigFileEnv is the environment variable used to set the configuration file.
	ConfigFileEnv = "SHAREBOX_FUSE_CONFIG_FILE"
)

// FSType is the filesystem type reported to the kernel and matched
// against /proc/self/mountinfo entries.
const FSType = "sharebox-fuse"
