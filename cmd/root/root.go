// Package root dispatches sharebox-fuse's subcommands.
package root

import (
	"context"
	"fmt"
	"os"

	"github.com/sharebox/sharebox-fuse/api"
	"github.com/sharebox/sharebox-fuse/cmd/mount"
	"github.com/sharebox/sharebox-fuse/internal/logging"
)

const usage = `Usage: sharebox-fuse [COMMAND] [ARGS...]

Commands:
  mount     Mount the filesystem`

func Run(ctx context.Context, args []string) {
	setLogLevel()
	if len(args) < 2 {
		printUsage()
	}

	command := args[1]
	switch command {
	case "mount":
		mount.Run(ctx, args[2:])
	default:
		printUsage()
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, usage)
	os.Exit(1)
}

func setLogLevel() {
	level, ok := os.LookupEnv(api.LogLevelEnv)
	if !ok {
		return
	}
	logging.SetLevel(logging.FromString(level))
}
