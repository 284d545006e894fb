package fs

import (
	"context"
	"os"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// Lookup stats a child by name and synthesizes its attributes the same
// way Getattr does, so a freshly looked-up annexed entry already
// reports fake-writable mode and a masked size.
func (n *node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	fp, err := Map(n.mountCtx().FilesRoot, joinVirtual(n.virtualPath(), name))
	if err != nil {
		return nil, errnoFromErr(err)
	}

	var st syscall.Stat_t
	if err := syscall.Lstat(fp, &st); err != nil {
		return nil, errnoFromErr(err)
	}
	out.Attr.FromStat(&st)

	view := annexView{driver: n.mountCtx().Driver}
	view.synthesizeAttr(ctx, fp, &out.Attr.Mode, &out.Attr.Size, &out.Attr.Blocks, out.Attr.FromStat)

	return n.NewInode(ctx, &node{}, fs.StableAttr{Mode: out.Attr.Mode & syscall.S_IFMT}), 0
}

// Readdir enumerates the backing directory. Offsets and any open-file
// state are ignored; the directory is re-read on every call. The dead
// conflict-branch enumeration from the original source has no
// equivalent state here and is not reproduced.
func (n *node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	fp, err := n.backingPath()
	if err != nil {
		return nil, errnoFromErr(err)
	}
	dirents, rerr := os.ReadDir(fp)
	if rerr != nil {
		return nil, errnoFromErr(rerr)
	}

	entries := make([]fuse.DirEntry, 0, len(dirents)+2)
	entries = append(entries,
		fuse.DirEntry{Name: ".", Mode: syscall.S_IFDIR},
		fuse.DirEntry{Name: "..", Mode: syscall.S_IFDIR},
	)
	for _, d := range dirents {
		var mode uint32
		if info, ierr := d.Info(); ierr == nil {
			mode = uint32(info.Mode().Perm())
			switch {
			case d.IsDir():
				mode |= syscall.S_IFDIR
			case info.Mode()&os.ModeSymlink != 0:
				mode |= syscall.S_IFLNK
			default:
				mode |= syscall.S_IFREG
			}
		}
		entries = append(entries, fuse.DirEntry{Name: d.Name(), Mode: mode})
	}
	return fs.NewListDirStream(entries), 0
}

// Mkdir creates a backing directory. Bookkeeping is deliberately
// none - an empty directory has nothing for the repository to track.
func (n *node) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	c := n.mountCtx()
	c.lockMutation()
	defer c.unlockMutation()
	defer c.posixOnly()

	fp, err := Map(c.FilesRoot, joinVirtual(n.virtualPath(), name))
	if err != nil {
		return nil, errnoFromErr(err)
	}
	if merr := syscall.Mkdir(fp, mode&0o7777); merr != nil {
		return nil, errnoFromErr(merr)
	}

	var st syscall.Stat_t
	if err := syscall.Lstat(fp, &st); err != nil {
		return nil, errnoFromErr(err)
	}
	out.Attr.FromStat(&st)
	return n.NewInode(ctx, &node{}, fs.StableAttr{Mode: syscall.S_IFDIR}), 0
}

// Mknod creates a regular file, fifo, or other special node. No
// commit - the entry is empty and will be tracked on release.
func (n *node) Mknod(ctx context.Context, name string, mode, rdev uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	c := n.mountCtx()
	c.lockMutation()
	defer c.unlockMutation()
	defer c.posixOnly()

	fp, err := Map(c.FilesRoot, joinVirtual(n.virtualPath(), name))
	if err != nil {
		return nil, errnoFromErr(err)
	}

	var opErr error
	switch mode & syscall.S_IFMT {
	case syscall.S_IFREG, 0:
		fd, oerr := syscall.Open(fp, syscall.O_CREAT|syscall.O_EXCL|syscall.O_WRONLY, mode&0o7777)
		if oerr == nil {
			syscall.Close(fd)
		}
		opErr = oerr
	case syscall.S_IFIFO:
		opErr = syscall.Mkfifo(fp, mode&0o7777)
	default:
		opErr = syscall.Mknod(fp, mode, int(rdev))
	}
	if opErr != nil {
		return nil, errnoFromErr(opErr)
	}

	var st syscall.Stat_t
	if err := syscall.Lstat(fp, &st); err != nil {
		return nil, errnoFromErr(err)
	}
	out.Attr.FromStat(&st)
	return n.NewInode(ctx, &node{}, fs.StableAttr{Mode: st.Mode & syscall.S_IFMT}), 0
}

// Unlink removes a backing entry. The ignored-status classification
// happens before the POSIX removal: querying it afterwards, against a
// path that no longer exists, is undefined.
func (n *node) Unlink(ctx context.Context, name string) syscall.Errno {
	c := n.mountCtx()
	c.lockMutation()
	defer c.unlockMutation()

	virtual := joinVirtual(n.virtualPath(), name)
	fp, err := Map(c.FilesRoot, virtual)
	if err != nil {
		c.posixOnly()
		return errnoFromErr(err)
	}

	ignored := c.Driver.IsIgnored(ctx, fp)
	rmErr := syscall.Unlink(fp)
	c.commitIfTracked(ctx, rmErr == nil, ignored, func() error {
		return c.Driver.Remove(ctx, fp)
	}, "removed %s", commitPath(virtual))

	return errnoFromErr(rmErr)
}

// Rmdir removes a backing directory. No bookkeeping, matching Mkdir.
func (n *node) Rmdir(ctx context.Context, name string) syscall.Errno {
	c := n.mountCtx()
	c.lockMutation()
	defer c.unlockMutation()
	defer c.posixOnly()

	fp, err := Map(c.FilesRoot, joinVirtual(n.virtualPath(), name))
	if err != nil {
		return errnoFromErr(err)
	}
	if rerr := syscall.Rmdir(fp); rerr != nil {
		return errnoFromErr(rerr)
	}
	return 0
}

// Symlink creates a backing symlink and, if tracked, stages and
// commits it.
func (n *node) Symlink(ctx context.Context, target, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	c := n.mountCtx()
	c.lockMutation()
	defer c.unlockMutation()

	virtual := joinVirtual(n.virtualPath(), name)
	fp, err := Map(c.FilesRoot, virtual)
	if err != nil {
		c.posixOnly()
		return nil, errnoFromErr(err)
	}

	symErr := syscall.Symlink(target, fp)
	var ignored bool
	if symErr == nil {
		ignored = c.Driver.IsIgnored(ctx, fp)
	}
	c.commitIfTracked(ctx, symErr == nil, ignored, func() error {
		return c.Driver.Add(ctx, fp)
	}, "created symlink %s -> %s", commitPath(virtual), target)

	if symErr != nil {
		return nil, errnoFromErr(symErr)
	}

	var st syscall.Stat_t
	if err := syscall.Lstat(fp, &st); err != nil {
		return nil, errnoFromErr(err)
	}
	out.Attr.FromStat(&st)
	return n.NewInode(ctx, &node{}, fs.StableAttr{Mode: syscall.S_IFLNK}), 0
}

// Rename classifies "from" before the POSIX rename and "to" after it,
// so "to"'s classification reflects its destination, then applies one
// of four bookkeeping cases depending on how each endpoint was
// classified. A commit is attempted whenever the rename itself
// succeeded, independent of either endpoint's ignored status - an
// ignored-to-ignored rename still moves the working tree and still
// earns a commit recording that move, it simply has nothing to stage.
func (n *node) Rename(ctx context.Context, name string, newParent fs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	c := n.mountCtx()
	c.lockMutation()
	defer c.unlockMutation()

	fromVirtual := joinVirtual(n.virtualPath(), name)
	toVirtual := joinVirtual(virtualPathOf(newParent.EmbeddedInode()), newName)

	fromFP, err := Map(c.FilesRoot, fromVirtual)
	if err != nil {
		c.posixOnly()
		return errnoFromErr(err)
	}
	toFP, err := Map(c.FilesRoot, toVirtual)
	if err != nil {
		c.posixOnly()
		return errnoFromErr(err)
	}

	fromIgnored := c.Driver.IsIgnored(ctx, fromFP)

	renErr := syscall.Rename(fromFP, toFP)
	ok := renErr == nil

	var toIgnored bool
	if ok {
		toIgnored = c.Driver.IsIgnored(ctx, toFP)
	}

	c.commitIfTracked(ctx, ok, false, func() error {
		switch {
		case fromIgnored && toIgnored:
			return nil
		case fromIgnored && !toIgnored:
			if err := c.Driver.AnnexAdd(ctx, toFP); err != nil {
				return err
			}
			return c.Driver.Add(ctx, toFP)
		case !fromIgnored && toIgnored:
			return c.Driver.Remove(ctx, fromFP)
		default:
			return c.Driver.Move(ctx, fromFP, toFP)
		}
	}, "moved %s to %s", commitPath(fromVirtual), commitPath(toVirtual))

	return errnoFromErr(renErr)
}

var (
	_ fs.NodeLookuper  = (*node)(nil)
	_ fs.NodeReaddirer = (*node)(nil)
	_ fs.NodeMkdirer   = (*node)(nil)
	_ fs.NodeMknoder   = (*node)(nil)
	_ fs.NodeUnlinker  = (*node)(nil)
	_ fs.NodeRmdirer   = (*node)(nil)
	_ fs.NodeSymlinker = (*node)(nil)
	_ fs.NodeRenamer   = (*node)(nil)
)
