package vfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFS struct {
	Map
	reads int
}

func (c *countingFS) ReadFile(p string) (string, bool) {
	c.reads++
	return c.Map.ReadFile(p)
}

func TestCachedReadsOnce(t *testing.T) {
	base := &countingFS{Map: Map{"/p/a.d.ts": "export {};"}}
	fs := Cached(base)

	for range 3 {
		text, ok := fs.ReadFile("/p/a.d.ts")
		require.True(t, ok)
		assert.Equal(t, "export {};", text)
	}
	assert.False(t, fs.FileExists("/p/b.d.ts"))
	assert.False(t, fs.FileExists("/p/b.d.ts"))
	assert.Equal(t, 2, base.reads)
}

func TestMapWalkSkipsHiddenAndNodeModules(t *testing.T) {
	m := Map{
		"/p/src/b.ts":                "",
		"/p/src/a.ts":                "",
		"/p/node_modules/x/index.ts": "",
		"/p/.cache/c.ts":             "",
		"/q/d.ts":                    "",
	}
	var got []string
	require.NoError(t, m.WalkFiles("/p", func(p string) error {
		got = append(got, p)
		return nil
	}))
	assert.Equal(t, []string{"/p/src/a.ts", "/p/src/b.ts"}, got)
	assert.True(t, m.DirectoryExists("/p/src"))
	assert.False(t, m.DirectoryExists("/p/sr"))
}

func TestOverlayShadowsBase(t *testing.T) {
	o := &Overlay{
		Base:         Map{"/p/a.ts": "base", "/p/b.ts": "base"},
		VirtualFiles: map[string]string{"/p/a.ts": "virtual", "/p/c.ts": "virtual"},
	}
	text, ok := o.ReadFile("/p/a.ts")
	require.True(t, ok)
	assert.Equal(t, "virtual", text)
	text, _ = o.ReadFile("/p/b.ts")
	assert.Equal(t, "base", text)

	var got []string
	require.NoError(t, o.WalkFiles("/p", func(p string) error {
		got = append(got, p)
		return nil
	}))
	assert.Equal(t, []string{"/p/a.ts", "/p/b.ts", "/p/c.ts"}, got)
}

func TestOSWalkFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"src/a.d.ts", "node_modules/m/index.d.ts"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("export {};"), 0o644))
	}
	root := filepath.ToSlash(dir)

	var got []string
	require.NoError(t, OS().WalkFiles(root, func(p string) error {
		got = append(got, p)
		return nil
	}))
	assert.Equal(t, []string{root + "/src/a.d.ts"}, got)
	assert.NoError(t, OS().WalkFiles(root+"/missing", func(string) error { return nil }))
	assert.True(t, OS().DirectoryExists(root+"/src"))
}
