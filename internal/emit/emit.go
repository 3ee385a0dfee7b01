// Package emit writes rewritten modules to the output directory.
//
// Each input maps to one output below OutDir, keeping its path relative to
// RootDir. Files are printed, aliased specifiers are rewritten to relative
// output paths, and the text is written through a temporary file and a
// rename so readers never see a partial file. A file whose content is
// already on disk is left untouched.
package emit

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/tsgonest/dtsresolve/internal/checker"
	"github.com/tsgonest/dtsresolve/internal/diagnostic"
	"github.com/tsgonest/dtsresolve/internal/pathalias"
	"github.com/tsgonest/dtsresolve/internal/printer"
	"github.com/tsgonest/dtsresolve/internal/transform"
)

// Options configures an Emitter.
type Options struct {
	RootDir string
	OutDir  string
	Printer printer.Options
	// Aliases rewrites "paths" specifiers in the printed text. May be nil.
	Aliases *pathalias.Aliases
	// Diagnostics receives output collisions. May be nil.
	Diagnostics *diagnostic.Collector
	Logger      *zap.SugaredLogger
}

// Emitter writes transform results to disk.
type Emitter struct {
	opts Options
	log  *zap.SugaredLogger
}

// Report summarizes one emission.
type Report struct {
	Written   int
	Unchanged int
	// Skipped counts sources whose output path another source already took.
	Skipped int
	// Outputs are the absolute output paths in input order.
	Outputs  []string
	Manifest *Manifest
}

// New returns an Emitter for opts.
func New(opts Options) *Emitter {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Emitter{opts: opts, log: log}
}

// OutputPath maps a source file to its declaration output path.
func (e *Emitter) OutputPath(src string) string {
	rel := filepath.Base(src)
	if e.opts.RootDir != "" {
		if r, err := filepath.Rel(e.opts.RootDir, src); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	return filepath.Join(e.opts.OutDir, DeclarationName(rel))
}

// DeclarationName returns the declaration file name for a source name:
// x.ts and x.tsx become x.d.ts, x.mts x.d.mts and x.cts x.d.cts.
// Declaration names are returned unchanged.
func DeclarationName(name string) string {
	for _, ext := range []string{".d.ts", ".d.mts", ".d.cts"} {
		if strings.HasSuffix(name, ext) {
			return name
		}
	}
	for _, ext := range []struct{ from, to string }{
		{".tsx", ".d.ts"}, {".mts", ".d.mts"}, {".cts", ".d.cts"}, {".ts", ".d.ts"},
	} {
		if strings.HasSuffix(name, ext.from) {
			return strings.TrimSuffix(name, ext.from) + ext.to
		}
	}
	return name + ".d.ts"
}

// Print renders a result as it would be written to out.
func (e *Emitter) Print(r *transform.Result, out string) string {
	text := printer.New(e.opts.Printer).PrintFile(r.File)
	return e.opts.Aliases.RewriteSpecifiers(text, out)
}

// Emit writes every result and the manifest. The checker supplies the
// exported names recorded in the manifest.
func (e *Emitter) Emit(results []*transform.Result, c *checker.Checker) (*Report, error) {
	start := time.Now()
	report := &Report{Manifest: &Manifest{
		Version: ManifestVersion,
		RootDir: e.opts.RootDir,
		OutDir:  e.opts.OutDir,
	}}
	owners := map[string]string{}
	for _, r := range results {
		out := e.OutputPath(r.Source.FileName)
		if owner, ok := owners[out]; ok {
			report.Skipped++
			e.opts.Diagnostics.Warnf(diagnostic.CategoryEmit, r.Source.FileName, 0,
				"output %s is already written from %s; skipped", e.relative(e.opts.OutDir, out), owner)
			continue
		}
		owners[out] = r.Source.FileName
		changed, err := WriteFileIfChanged(out, []byte(e.Print(r, out)))
		if err != nil {
			return nil, errors.Wrapf(err, "emitting %s", r.Source.FileName)
		}
		if changed {
			report.Written++
			e.log.Debugw("wrote declaration file", "file", out)
		} else {
			report.Unchanged++
		}
		report.Outputs = append(report.Outputs, out)

		entry := FileEntry{Source: e.relative(e.opts.RootDir, r.Source.FileName), Output: e.relative(e.opts.OutDir, out)}
		if c != nil && r.Source.Symbol != nil {
			entry.Exports = c.ExportNames(r.Source.Symbol)
		}
		report.Manifest.Files = append(report.Manifest.Files, entry)
	}

	manifestPath := ManifestPath(e.opts.OutDir)
	if err := report.Manifest.Write(manifestPath); err != nil {
		return nil, err
	}
	e.log.Infow("emitted declaration files",
		"count", len(results),
		"written", report.Written,
		"unchanged", report.Unchanged,
		"duration_ms", time.Since(start).Milliseconds())
	return report, nil
}

func (e *Emitter) relative(dir, p string) string {
	if dir == "" {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// WriteFileIfChanged writes data to name unless the file already holds it.
// It reports whether it wrote.
func WriteFileIfChanged(name string, data []byte) (bool, error) {
	if existing, err := os.ReadFile(name); err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err := WriteFileAtomic(name, data); err != nil {
		return false, err
	}
	return true, nil
}

// WriteFileAtomic writes data to a temporary sibling of name and renames it
// into place, creating parent directories as needed.
func WriteFileAtomic(name string, data []byte) error {
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating directory %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(name)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "creating temporary file for %s", name)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "writing %s", name)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "writing %s", name)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "writing %s", name)
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "renaming into %s", name)
	}
	return nil
}
