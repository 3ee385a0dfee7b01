// Package testutil provides test utilities for dtsresolve, including a
// virtual file system overlay for building programs from inline sources.
package testutil

import (
	"path"
	"strings"

	"github.com/tsgonest/dtsresolve/internal/vfs"
)

// OverlayVFS wraps a base file system with in-memory virtual files.
type OverlayVFS = vfs.Overlay

// NewOverlayVFS creates an OverlayVFS with the given virtual files on top of a base FS.
func NewOverlayVFS(baseFS vfs.FS, virtualFiles map[string]string) vfs.FS {
	return &OverlayVFS{Base: baseFS, VirtualFiles: virtualFiles}
}

// NewMemoryVFS creates a file system holding only the given files. Relative
// names are placed under root.
func NewMemoryVFS(root string, files map[string]string) vfs.FS {
	virtual := make(map[string]string, len(files))
	for name, src := range files {
		if !strings.HasPrefix(name, "/") {
			name = path.Join(root, name)
		}
		virtual[name] = src
	}
	return &OverlayVFS{VirtualFiles: virtual}
}
