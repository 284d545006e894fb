package main

import (
	"context"
	"os"

	"github.com/sharebox/sharebox-fuse/cmd/root"
)

func main() {
	root.Run(context.Background(), os.Args)
}
