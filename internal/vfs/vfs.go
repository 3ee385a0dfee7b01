// Package vfs is the file system seen by the compiler and the module
// resolver. Paths are absolute and slash-separated on every platform.
package vfs

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FS reads source files and looks up module candidates.
type FS interface {
	ReadFile(path string) (contents string, ok bool)
	FileExists(path string) bool
	DirectoryExists(path string) bool
	// WalkFiles calls fn for every regular file below root in lexical order.
	// Directories named node_modules or starting with a dot are skipped.
	WalkFiles(root string, fn func(path string) error) error
}

type osFS struct{}

// OS returns the operating system file system.
func OS() FS { return osFS{} }

func (osFS) ReadFile(p string) (string, bool) {
	b, err := os.ReadFile(filepath.FromSlash(p))
	if err != nil {
		return "", false
	}
	return string(b), true
}

func (osFS) FileExists(p string) bool {
	fi, err := os.Stat(filepath.FromSlash(p))
	return err == nil && fi.Mode().IsRegular()
}

func (osFS) DirectoryExists(p string) bool {
	fi, err := os.Stat(filepath.FromSlash(p))
	return err == nil && fi.IsDir()
}

func (osFS) WalkFiles(root string, fn func(string) error) error {
	return filepath.WalkDir(filepath.FromSlash(root), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if p != filepath.FromSlash(root) && SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return fn(filepath.ToSlash(p))
	})
}

// SkipDir reports whether a directory is never searched for inputs.
func SkipDir(name string) bool {
	return name == "node_modules" || strings.HasPrefix(name, ".")
}

// Cached wraps base so that existence checks and reads hit base once per
// path. It is meant for the lifetime of one build.
func Cached(base FS) FS {
	return &cachedFS{base: base, files: map[string]cachedFile{}, dirs: map[string]bool{}}
}

type cachedFile struct {
	text string
	ok   bool
}

type cachedFS struct {
	base  FS
	mu    sync.Mutex
	files map[string]cachedFile
	dirs  map[string]bool
}

func (c *cachedFS) ReadFile(p string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.files[p]; ok {
		return f.text, f.ok
	}
	text, ok := c.base.ReadFile(p)
	c.files[p] = cachedFile{text, ok}
	return text, ok
}

func (c *cachedFS) FileExists(p string) bool {
	_, ok := c.ReadFile(p)
	return ok
}

func (c *cachedFS) DirectoryExists(p string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ok, seen := c.dirs[p]; seen {
		return ok
	}
	ok := c.base.DirectoryExists(p)
	c.dirs[p] = ok
	return ok
}

func (c *cachedFS) WalkFiles(root string, fn func(string) error) error {
	return c.base.WalkFiles(root, fn)
}

// Map is an in-memory file system keyed by absolute path.
type Map map[string]string

func (m Map) ReadFile(p string) (string, bool) {
	text, ok := m[p]
	return text, ok
}

func (m Map) FileExists(p string) bool {
	_, ok := m[p]
	return ok
}

func (m Map) DirectoryExists(p string) bool {
	prefix := strings.TrimSuffix(p, "/") + "/"
	for name := range m {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func (m Map) WalkFiles(root string, fn func(string) error) error {
	prefix := strings.TrimSuffix(root, "/") + "/"
	names := make([]string, 0, len(m))
	for name := range m {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok || skipped(path.Dir(rest)) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := fn(name); err != nil {
			return err
		}
	}
	return nil
}

func skipped(dir string) bool {
	if dir == "." {
		return false
	}
	for _, part := range strings.Split(dir, "/") {
		if SkipDir(part) {
			return true
		}
	}
	return false
}

// Overlay layers in-memory files over Base, which may be nil. Virtual files
// take precedence over Base.
type Overlay struct {
	Base         FS
	VirtualFiles map[string]string
}

var _ FS = (*Overlay)(nil)

func (o *Overlay) FileExists(p string) bool {
	if _, ok := o.VirtualFiles[p]; ok {
		return true
	}
	return o.Base != nil && o.Base.FileExists(p)
}

func (o *Overlay) ReadFile(p string) (contents string, ok bool) {
	if src, ok := o.VirtualFiles[p]; ok {
		return src, true
	}
	if o.Base == nil {
		return "", false
	}
	return o.Base.ReadFile(p)
}

func (o *Overlay) DirectoryExists(p string) bool {
	if Map(o.VirtualFiles).DirectoryExists(p) {
		return true
	}
	return o.Base != nil && o.Base.DirectoryExists(p)
}

// WalkFiles visits virtual and base files together, virtual files shadowing
// base files of the same path.
func (o *Overlay) WalkFiles(root string, fn func(string) error) error {
	seen := map[string]bool{}
	var names []string
	collect := func(p string) error {
		if !seen[p] {
			seen[p] = true
			names = append(names, p)
		}
		return nil
	}
	if err := Map(o.VirtualFiles).WalkFiles(root, collect); err != nil {
		return err
	}
	if o.Base != nil {
		if err := o.Base.WalkFiles(root, collect); err != nil {
			return err
		}
	}
	sort.Strings(names)
	for _, p := range names {
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}
