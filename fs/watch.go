package fs

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sharebox/sharebox-fuse/internal/logging"
)

// ExternalWatcher watches the backing tree and logs every change it
// observes. The dispatcher assumes no concurrent external mutator
// touches the backing tree - violating that assumption risks
// interleaved commits, not in-process corruption - and this watcher
// does not prevent or correct for that, it only surfaces changes, the
// same way the upstream watcher this is adapted from surfaces a changed
// manifest rather than merging it live. It does not consult the writer
// lock, so changes made through this mount's own dispatcher are logged
// as well; it cannot tell them apart from external ones.
type ExternalWatcher struct {
	filesRoot string
	notify    *fsnotify.Watcher
	closeOnce sync.Once
}

// NewExternalWatcher establishes a recursive watch rooted at filesRoot.
func NewExternalWatcher(filesRoot string) (*ExternalWatcher, error) {
	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &ExternalWatcher{filesRoot: filesRoot, notify: notify}
	if err := w.addTree(filesRoot); err != nil {
		notify.Close()
		return nil, err
	}
	return w, nil
}

// addTree registers a watch on dir and every subdirectory beneath it.
// A watch is established on a directory before it is read, so an
// entry created concurrently with the walk is never missed.
func (w *ExternalWatcher) addTree(dir string) error {
	if err := w.notify.Add(dir); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := w.addTree(filepath.Join(dir, e.Name())); err != nil {
				logging.Warningf("external watcher: failed to watch %s: %v", filepath.Join(dir, e.Name()), err)
			}
		}
	}
	return nil
}

// Run consumes filesystem events until the watcher is closed. A
// created directory is added to the watch so newly created subtrees
// stay covered; every event is logged as a warning, since the only
// correct response to an external mutator under this design is to
// know that it happened.
func (w *ExternalWatcher) Run() {
	for {
		select {
		case ev, ok := <-w.notify.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						logging.Warningf("external watcher: failed to watch new directory %s: %v", ev.Name, err)
					}
				}
			}
			logging.Warningf("change observed in backing tree: %s (%s)", ev.Name, ev.Op)
		case err, ok := <-w.notify.Errors:
			if !ok {
				return
			}
			logging.Errorf("external watcher error: %v", err)
		}
	}
}

// Stop closes the underlying fsnotify watcher.
func (w *ExternalWatcher) Stop() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.notify.Close()
	})
	return err
}
