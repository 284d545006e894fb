package fs

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// Getattr lstats the backing path and, for an annexed entry, applies
// the Annex View attribute-synthesis rule on top.
func (n *node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	fp, err := n.backingPath()
	if err != nil {
		return errnoFromErr(err)
	}

	var st syscall.Stat_t
	if err := syscall.Lstat(fp, &st); err != nil {
		return errnoFromErr(err)
	}
	out.Attr.FromStat(&st)

	view := annexView{driver: n.mountCtx().Driver}
	view.synthesizeAttr(ctx, fp, &out.Attr.Mode, &out.Attr.Size, &out.Attr.Blocks, out.Attr.FromStat)
	return 0
}

// Access applies the Annex View access policy: an annexed path that
// hasn't been materialised is unreadable outright; a materialised one
// is checked with the write bit masked off; anything else is a plain
// access(2).
func (n *node) Access(ctx context.Context, mask uint32) syscall.Errno {
	fp, err := n.backingPath()
	if err != nil {
		return errnoFromErr(err)
	}
	view := annexView{driver: n.mountCtx().Driver}
	return view.checkAccess(ctx, fp, mask)
}

// Readlink reads the backing symlink's target.
func (n *node) Readlink(ctx context.Context) ([]byte, syscall.Errno) {
	fp, err := n.backingPath()
	if err != nil {
		return nil, errnoFromErr(err)
	}
	buf := make([]byte, maxPathLen)
	k, rerr := syscall.Readlink(fp, buf)
	if rerr != nil {
		return nil, errnoFromErr(rerr)
	}
	return buf[:k], 0
}

// Statfs reports filesystem-wide statistics for the backing path.
func (n *node) Statfs(ctx context.Context, out *fuse.StatfsOut) syscall.Errno {
	fp, err := n.backingPath()
	if err != nil {
		return errnoFromErr(err)
	}
	var st syscall.Statfs_t
	if err := syscall.Statfs(fp, &st); err != nil {
		return errnoFromErr(err)
	}
	out.Blocks = st.Blocks
	out.Bfree = st.Bfree
	out.Bavail = st.Bavail
	out.Files = st.Files
	out.Ffree = st.Ffree
	out.Bsize = uint32(st.Bsize)
	out.NameLen = uint32(st.Namelen)
	out.Frsize = uint32(st.Frsize)
	return 0
}

var (
	_ fs.NodeGetattrer  = (*node)(nil)
	_ fs.NodeAccesser   = (*node)(nil)
	_ fs.NodeReadlinker = (*node)(nil)
	_ fs.NodeStatfser   = (*node)(nil)
)
