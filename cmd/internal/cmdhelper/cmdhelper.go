// Package cmdhelper holds the flag/config/logging plumbing shared by
// every sharebox-fuse subcommand.
package cmdhelper

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sharebox/sharebox-fuse/api"
	"github.com/sharebox/sharebox-fuse/internal/logging"
)

// FatalFmt prints a formatted error to stderr and exits with status 1.
func FatalFmt(format string, args ...any) {
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

type flagConfig struct {
	api.GlobalConfig
	// redefine the bool flags to satisfy flagSet.BoolVar, which needs a
	// concrete bool rather than *bool
	FUSEDebug            bool
	WatchExternalChanges bool
}

func globalFlags(flagSet *flag.FlagSet) *flagConfig {
	config := &flagConfig{}
	flagSet.StringVar(&config.RepoRoot, "repo_root", "", "Absolute path to the repository working tree")
	flagSet.StringVar(&config.LogLevel, "log_level", "", `Log level. one of "error", "warning", "basic", "debug"`)
	flagSet.BoolVar(&config.FUSEDebug, "fuse_debug", false, "Emits debug information about the FUSE filesystem")
	flagSet.BoolVar(&config.WatchExternalChanges, "watch_external_changes", true, "Warn on every change observed in the backing tree")
	return config
}

// InjectGlobalFlagsAndConfigure registers the global flags on flagSet,
// parses args, layers a config file underneath the flag values, and
// sets the process log level.
func InjectGlobalFlagsAndConfigure(args []string, flagSet *flag.FlagSet) (api.GlobalConfig, error) {
	var configPath string
	ignoreMissing := true

	if configPathEnv, ok := os.LookupEnv(api.ConfigFileEnv); ok {
		configPath = configPathEnv
		ignoreMissing = false
	}
	flagSet.Func("config", "Path to the config file", func(configPathFlag string) error {
		configPath = configPathFlag
		ignoreMissing = false
		return nil
	})

	flagConf := globalFlags(flagSet)
	if err := flagSet.Parse(args); err != nil {
		return api.GlobalConfig{}, err
	}
	flagSet.Visit(func(f *flag.Flag) {
		if f.Name == "fuse_debug" {
			flagConf.GlobalConfig.FUSEDebug = &flagConf.FUSEDebug
		}
		if f.Name == "watch_external_changes" {
			flagConf.GlobalConfig.WatchExternalChanges = &flagConf.WatchExternalChanges
		}
	})

	fileConfig, err := readConfigFileOrDefault(configPath, ignoreMissing)
	if err != nil {
		return api.GlobalConfig{}, err
	}

	config, err := api.MergeConfigs(fileConfig, flagConf.GlobalConfig)
	if err != nil {
		return api.GlobalConfig{}, err
	}

	logging.SetLevel(logging.FromString(config.LogLevel))
	return config, config.Validate()
}

func readConfigFileOrDefault(configPath string, ignoreMissing bool) (api.GlobalConfig, error) {
	config := api.DefaultConfig()

	if ignoreMissing && configPath == "" {
		configPath = ".sharebox-fuse.json"
	}
	configReader := api.OSConfigReader{ConfigPath: configPath}
	config, err := api.ReadConfig(configReader, config)
	if ignoreMissing && err == api.ErrConfigNotFound {
		return config, nil
	} else if err != nil {
		return api.GlobalConfig{}, fmt.Errorf("reading config from %s: %w", configPath, err)
	}
	return config, nil
}
