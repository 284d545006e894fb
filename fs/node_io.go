package fs

import (
	"context"
	"os"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// Open materialises an annexed-and-absent entry on demand, masks
// write access out of an annexed open regardless of what was
// requested, and otherwise opens and immediately closes: no
// descriptor is retained, each subsequent Read/Write reopens the
// backing path. This keeps the dispatcher stateless, at the cost of
// the extra open/close pair per read or write.
func (n *node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	fp, err := n.backingPath()
	if err != nil {
		return nil, 0, errnoFromErr(err)
	}

	view := annexView{driver: n.mountCtx().Driver}
	if view.isAnnexed(ctx, fp) {
		if !view.ensureMaterialised(ctx, fp) {
			return nil, 0, syscall.EACCES
		}
		// The placeholder reports owner-write in getattr so editors
		// will open it, but its body stays read-only until a write
		// unlocks it; open itself never grants write access.
		flags = (flags &^ uint32(syscall.O_ACCMODE)) | syscall.O_RDONLY
	}

	fd, operr := syscall.Open(fp, int(flags), 0)
	if operr != nil {
		return nil, 0, errnoFromErr(operr)
	}
	syscall.Close(fd)

	return &fileHandle{ctx: n.mountCtx(), path: fp, virtual: n.virtualPath()}, 0, 0
}

// Setattr covers chmod, chown, truncate, and utimens: unlock an
// annexed placeholder first so the op lands on a real writable file,
// perform the op, then stage and commit if the path is tracked.
func (n *node) Setattr(ctx context.Context, f fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	c := n.mountCtx()
	c.lockMutation()
	defer c.unlockMutation()

	fp, err := n.backingPath()
	if err != nil {
		c.posixOnly()
		return errnoFromErr(err)
	}

	view := annexView{driver: c.Driver}
	if view.isAnnexed(ctx, fp) {
		if uerr := c.Driver.Unlock(ctx, fp); uerr != nil {
			logRepoFailure("annex_unlock", fp, uerr)
		}
	}

	op, opErr := applySetattr(fp, in)

	ignored := c.Driver.IsIgnored(ctx, fp)
	c.commitIfTracked(ctx, opErr == nil, ignored, func() error {
		return c.Driver.AnnexAdd(ctx, fp)
	}, "%s %s", op, commitPath(n.virtualPath()))

	if opErr != nil {
		return errnoFromErr(opErr)
	}

	var st syscall.Stat_t
	if err := syscall.Lstat(fp, &st); err != nil {
		return errnoFromErr(err)
	}
	out.Attr.FromStat(&st)
	return 0
}

// applySetattr performs whichever single op the SetAttrIn's Valid
// bitmask names and returns a short verb for the commit message.
// go-fuse folds chmod/chown/truncate/utimens into one Setattr call,
// each setting exactly one group of Valid bits per invocation.
func applySetattr(fp string, in *fuse.SetAttrIn) (op string, err error) {
	switch {
	case in.Valid&fuse.FATTR_MODE != 0:
		return "chmod", syscall.Chmod(fp, in.Mode&0o7777)
	case in.Valid&fuse.FATTR_SIZE != 0:
		return "truncate", syscall.Truncate(fp, int64(in.Size))
	case in.Valid&(fuse.FATTR_UID|fuse.FATTR_GID) != 0:
		uid, gid := -1, -1
		if in.Valid&fuse.FATTR_UID != 0 {
			uid = int(in.Owner.Uid)
		}
		if in.Valid&fuse.FATTR_GID != 0 {
			gid = int(in.Owner.Gid)
		}
		return "chown", syscall.Chown(fp, uid, gid)
	case in.Valid&(fuse.FATTR_ATIME|fuse.FATTR_MTIME) != 0:
		return "utimens", applyUtimens(fp, in)
	default:
		return "setattr", nil
	}
}

func applyUtimens(fp string, in *fuse.SetAttrIn) error {
	now := time.Now()
	atime, mtime := now, now
	if in.Valid&fuse.FATTR_ATIME != 0 {
		atime = time.Unix(int64(in.Atime), int64(in.Atimensec))
	}
	if in.Valid&fuse.FATTR_MTIME != 0 {
		mtime = time.Unix(int64(in.Mtime), int64(in.Mtimensec))
	}
	return os.Chtimes(fp, atime, mtime)
}

// fileHandle is the per-open handle returned by Open. It carries no
// descriptor - Read and Write each reopen the backing path - only the
// path and virtual path needed to do so and to name a commit.
type fileHandle struct {
	ctx     *Context
	path    string
	virtual string
}

// Read takes the read side of the path lock, reopens read-only,
// preads, and closes. This runs lock-free with respect to the writer
// lock; it only excludes a concurrent Write to the same path.
func (h *fileHandle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	unlock := h.ctx.paths.RLock(h.path)
	defer unlock()

	fd, err := syscall.Open(h.path, syscall.O_RDONLY, 0)
	if err != nil {
		return nil, errnoFromErr(err)
	}
	defer syscall.Close(fd)

	n, perr := syscall.Pread(fd, dest, off)
	if perr != nil {
		return nil, errnoFromErr(perr)
	}
	return fuse.ReadResultData(dest[:n]), 0
}

// Write takes the global writer lock (required of every mutating
// handler) plus the write side of the path lock, unlocks an annexed
// placeholder if needed, then reopens write-only, pwrites, and
// closes. It produces no commit - Release is the sole commit point
// for content edits.
func (h *fileHandle) Write(ctx context.Context, data []byte, off int64) (uint32, syscall.Errno) {
	c := h.ctx
	c.lockMutation()
	defer c.unlockMutation()

	unlock := c.paths.Lock(h.path)
	defer unlock()

	view := annexView{driver: c.Driver}
	if view.isAnnexed(ctx, h.path) {
		if uerr := c.Driver.Unlock(ctx, h.path); uerr != nil {
			logRepoFailure("annex_unlock", h.path, uerr)
		}
	}

	fd, operr := syscall.Open(h.path, syscall.O_WRONLY, 0)
	if operr != nil {
		c.posixOnly()
		return 0, errnoFromErr(operr)
	}
	defer syscall.Close(fd)

	n, perr := syscall.Pwrite(fd, data, off)
	c.posixOnly()
	if perr != nil {
		return 0, errnoFromErr(perr)
	}
	return uint32(n), 0
}

// Release is the sole commit point for content written through
// Write: if the path is tracked, stage it with annex_add and commit.
func (h *fileHandle) Release(ctx context.Context) syscall.Errno {
	c := h.ctx
	c.lockMutation()
	defer c.unlockMutation()

	ignored := c.Driver.IsIgnored(ctx, h.path)
	c.commitIfTracked(ctx, true, ignored, func() error {
		return c.Driver.AnnexAdd(ctx, h.path)
	}, "released %s", commitPath(h.virtual))

	return 0
}

var (
	_ fs.NodeOpener    = (*node)(nil)
	_ fs.NodeSetattrer = (*node)(nil)
	_ fs.FileReader    = (*fileHandle)(nil)
	_ fs.FileWriter    = (*fileHandle)(nil)
	_ fs.FileReleaser  = (*fileHandle)(nil)
)
