// Package mount implements the "mount" subcommand: it builds the
// repository driver and mount Context, mounts the FUSE filesystem at
// the given mountpoint, and serves it until a termination signal
// arrives.
package mount

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	goFUSEfs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/sharebox/sharebox-fuse/api"
	"github.com/sharebox/sharebox-fuse/cmd/internal/cmdhelper"
	"github.com/sharebox/sharebox-fuse/fs"
	"github.com/sharebox/sharebox-fuse/fs/mountinfo"
	"github.com/sharebox/sharebox-fuse/internal/logging"
	"github.com/sharebox/sharebox-fuse/repo"
)

func Run(ctx context.Context, args []string) {
	wg := &sync.WaitGroup{}
	defer wg.Wait()

	flagSet := flag.NewFlagSet("mount", flag.ExitOnError)
	flagSet.Usage = func() {
		fmt.Fprintf(flagSet.Output(), "Mounts the sharebox-fuse filesystem at the specified mountpoint.\n\n")
		fmt.Fprintf(flagSet.Output(), "Usage: sharebox-fuse mount [mountpoint]\n")
		flagSet.PrintDefaults()
		fmt.Fprintf(flagSet.Output(), "\nExamples:\n  $ sharebox-fuse mount -repo_root ~/myrepo ./mnt\n")
		os.Exit(1)
	}
	globalConfig, err := cmdhelper.InjectGlobalFlagsAndConfigure(args, flagSet)
	if err != nil {
		cmdhelper.FatalFmt("%v", err)
	}

	if flagSet.NArg() != 1 {
		flagSet.Usage()
	}
	mountPoint := flagSet.Arg(0)

	repoRoot, err := filepath.Abs(globalConfig.RepoRoot)
	if err != nil {
		cmdhelper.FatalFmt("resolving repo_root %s: %v", globalConfig.RepoRoot, err)
	}
	if _, err := os.Stat(repoRoot); err != nil {
		cmdhelper.FatalFmt("repo_root %s: %v", repoRoot, err)
	}

	mountStat, err := os.Stat(mountPoint)
	if os.IsNotExist(err) {
		cmdhelper.FatalFmt("mount point %s does not exist", mountPoint)
	} else if err != nil {
		cmdhelper.FatalFmt("statting mount point %s: %v", mountPoint, err)
	}
	if !mountStat.IsDir() {
		cmdhelper.FatalFmt("mount point %s is not a directory", mountPoint)
	}
	mounts, err := mountinfo.GetMounts()
	if err != nil {
		cmdhelper.FatalFmt("getting mountinfo: %v", err)
	}
	if _, ok := mounts.MountPoint(mountPoint); ok {
		cmdhelper.FatalFmt("Mount point %s is already in use. Please ensure the mount point is ready by running:\n  $ umount %s", mountPoint, mountPoint)
	}

	driver := repo.NewGitDriver(repoRoot)
	mountCtx := fs.NewContext(repoRoot, driver)

	var watcher *fs.ExternalWatcher
	if globalConfig.WatchExternalChangesEnable() {
		watcher, err = fs.NewExternalWatcher(mountCtx.FilesRoot)
		if err != nil {
			logging.Warningf("external watcher: %v; continuing without it", err)
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				watcher.Run()
			}()
		}
	}

	logging.Basicf("Mounting %s at %s", mountCtx.FilesRoot, mountPoint)

	opts := goFUSEfs.Options{
		EntryTimeout: &defaultGoFUSETimeout,
		AttrTimeout:  &defaultGoFUSETimeout,
		MountOptions: fuse.MountOptions{
			Debug:                globalConfig.FUSEDebugEnable(),
			IgnoreSecurityLabels: true,
			FsName:               repoRoot,
			Name:                 api.FSType,
		},
	}
	root := fs.Root(mountCtx)
	rawFS := goFUSEfs.NewNodeFS(root, &opts)
	server, err := fuse.NewServer(rawFS, mountPoint, &opts.MountOptions)
	if err != nil {
		logging.Errorf("%v", err)
		cmdhelper.FatalFmt("Mounting the filesystem at %q failed.", mountPoint)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		server.Serve()
	}()
	if err := server.WaitMount(); err != nil {
		cmdhelper.FatalFmt("mounting: %v", err)
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		stopSignal := <-stopChan
		logging.Basicf("Received %v. Unmounting %s", stopSignal.String(), mountPoint)
		if watcher != nil {
			watcher.Stop()
		}
		if err := server.Unmount(); err != nil {
			logging.Errorf("Unmounting: %v", err)
		}
	}()

	server.Wait()
}

var defaultGoFUSETimeout = 60 * time.Second
