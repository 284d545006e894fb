package fs

import (
	"github.com/hanwen/go-fuse/v2/fs"
)

// node is the single inode type for every entry under the mount: a
// directory, a regular file, a symlink, or any other POSIX node type.
// Nothing about an entry is precomputed the way a manifest-backed tree
// would precompute it - every handler lstats or opens the real path
// under the backing directory on demand, so one type can serve every
// kind of entry without a type switch at lookup time.
type node struct {
	fs.Inode
}

// mountCtx reaches the process-wide state shared by every node in the
// mount through the root inode's Operations, rather than a pointer
// stored on each node, so that every inode - including ones created
// long after startup - shares exactly one Context.
func (n *node) mountCtx() *Context {
	return n.Root().Operations().(*rootNode).ctx
}

// virtualPath reconstructs the path this inode was looked up under,
// relative to the mount root, always beginning with "/".
func (n *node) virtualPath() string {
	return virtualPathOf(&n.Inode)
}

// virtualPathOf is virtualPath for an arbitrary inode, used where only
// an fs.InodeEmbedder is in hand (e.g. Rename's destination parent).
func virtualPathOf(i *fs.Inode) string {
	return "/" + i.Path(i.Root())
}

// joinVirtual appends name to a parent's virtual path without
// producing a doubled slash when parent is the mount root itself.
func joinVirtual(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

// backingPath maps this inode's virtual path into the backing
// directory, propagating the Path Mapper's invariant-violation errors.
func (n *node) backingPath() (string, error) {
	return Map(n.mountCtx().FilesRoot, n.virtualPath())
}

// commitPath strips the leading "/" a virtual path always carries, for
// use in commit messages (the repository has no concept of the mount
// root).
func commitPath(virtual string) string {
	if len(virtual) > 0 && virtual[0] == '/' {
		return virtual[1:]
	}
	return virtual
}

var _ fs.InodeEmbedder = (*node)(nil)
