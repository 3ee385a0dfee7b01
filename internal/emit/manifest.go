package emit

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// ManifestVersion is bumped when the manifest layout changes.
const ManifestVersion = 1

// ManifestName is the manifest file name inside the output directory.
const ManifestName = "dtsresolve-manifest.json"

// Manifest lists what a build wrote.
type Manifest struct {
	Version int         `json:"version"`
	RootDir string      `json:"rootDir"`
	OutDir  string      `json:"outDir"`
	Files   []FileEntry `json:"files"`
}

// FileEntry is one input and its output. Paths are slash separated and
// relative to RootDir and OutDir.
type FileEntry struct {
	Source  string   `json:"source"`
	Output  string   `json:"output"`
	Exports []string `json:"exports,omitempty"`
}

// ManifestPath returns the manifest path for an output directory.
func ManifestPath(outDir string) string {
	return filepath.Join(outDir, ManifestName)
}

// Write stores the manifest as indented JSON.
func (m *Manifest) Write(path string) error {
	data, err := json.Marshal(m, jsontext.WithIndent("  "))
	if err != nil {
		return errors.Wrap(err, "encoding manifest")
	}
	data = append(data, '\n')
	if _, err := WriteFileIfChanged(path, data); err != nil {
		return errors.Wrap(err, "writing manifest")
	}
	return nil
}

// ReadManifest loads a manifest written by Write.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.WithHint(errors.Wrapf(err, "decoding manifest %s", path), "delete the file and rebuild")
	}
	if m.Version != ManifestVersion {
		return nil, errors.Newf("manifest %s has version %d, want %d", path, m.Version, ManifestVersion)
	}
	return &m, nil
}

// OutputToSource maps each output path to its source path, both absolute.
func (m *Manifest) OutputToSource() map[string]string {
	out := make(map[string]string, len(m.Files))
	for _, f := range m.Files {
		out[filepath.Join(m.OutDir, filepath.FromSlash(f.Output))] = filepath.Join(m.RootDir, filepath.FromSlash(f.Source))
	}
	return out
}
