package fs

import (
	"github.com/hanwen/go-fuse/v2/fs"
)

// rootNode is the mount root. It behaves like any other directory
// node - it inherits every handler from node by embedding it - but
// additionally carries the Context every node reaches through
// mountCtx().
type rootNode struct {
	node
	ctx *Context
}

// Root constructs the mount root inode for ctx.
func Root(ctx *Context) *rootNode {
	return &rootNode{ctx: ctx}
}

var _ fs.InodeEmbedder = (*rootNode)(nil)
