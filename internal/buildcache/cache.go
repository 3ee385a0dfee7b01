// Package buildcache provides the incremental cache for dtsresolve builds.
//
// A build is skipped only when the config hashes as before, every input
// file hashes as before, and every file the last build wrote is still on
// disk with the content it was written with. Any difference reruns the
// whole build: one changed module can change the output of every module
// that references it.
package buildcache

import (
	"encoding/hex"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/zeebo/xxh3"
)

// SchemaVersion changes whenever the cache or the output format does.
const SchemaVersion = 2

// FileName is the cache file name inside the output directory.
const FileName = ".dtsresolve-cache"

// Cache records the state of the last successful build.
type Cache struct {
	V          int    `json:"v"`
	ConfigHash string `json:"configHash"`
	// Inputs and Outputs map absolute paths to content digests.
	Inputs  map[string]string `json:"inputs"`
	Outputs map[string]string `json:"outputs"`
}

// CachePath returns where the cache of a build writing to outDir lives.
// Removing the output directory removes the cache with it.
func CachePath(outDir string) string {
	return filepath.Join(outDir, FileName)
}

// New returns a cache for a build that read inputs and wrote outputs. The
// outputs are hashed as they are now on disk.
func New(configHash string, inputs map[string]string, outputs []string) *Cache {
	return &Cache{
		V:          SchemaVersion,
		ConfigHash: configHash,
		Inputs:     inputs,
		Outputs:    HashInputs(outputs),
	}
}

// Load reads a cache file. A missing or unreadable file yields nil, which
// every check treats as a miss.
func Load(path string) *Cache {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil
	}
	return &c
}

// Save writes the cache through a temporary file and a rename.
func Save(path string, c *Cache) error {
	data, err := json.Marshal(c, jsontext.WithIndent("  "), json.Deterministic(true))
	if err != nil {
		return errors.Wrap(err, "encoding build cache")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(path))
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "replacing %s", path)
	}
	return nil
}

// Delete removes the cache file if there is one.
func Delete(path string) {
	_ = os.Remove(path)
}

// Miss returns why the cache cannot skip a build with the given config hash
// and input digests, or "" when it can.
func (c *Cache) Miss(configHash string, inputs map[string]string) string {
	switch {
	case c == nil:
		return "no cache"
	case c.V != SchemaVersion:
		return "cache schema changed"
	case c.ConfigHash != configHash:
		return "config changed"
	case !slices.Equal(slices.Sorted(maps.Keys(c.Inputs)), slices.Sorted(maps.Keys(inputs))):
		return "input files added or removed"
	}
	for _, p := range slices.Sorted(maps.Keys(inputs)) {
		if c.Inputs[p] != inputs[p] {
			return "input changed: " + p
		}
	}
	for _, p := range slices.Sorted(maps.Keys(c.Outputs)) {
		if HashFile(p) != c.Outputs[p] {
			return "output missing or edited: " + p
		}
	}
	return ""
}

// HashBytes returns the hex xxh3-128 digest of data.
func HashBytes(data []byte) string {
	sum := xxh3.Hash128(data).Bytes()
	return hex.EncodeToString(sum[:])
}

// HashFile returns the digest of a file, or "" when it cannot be read.
func HashFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return HashBytes(data)
}

// HashInputs digests every file in paths. Unreadable files map to "".
func HashInputs(paths []string) map[string]string {
	out := make(map[string]string, len(paths))
	for _, p := range paths {
		out[p] = HashFile(p)
	}
	return out
}
