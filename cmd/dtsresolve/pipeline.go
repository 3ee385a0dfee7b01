package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-json-experiment/json"

	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/buildcache"
	"github.com/tsgonest/dtsresolve/internal/compiler"
	"github.com/tsgonest/dtsresolve/internal/config"
	"github.com/tsgonest/dtsresolve/internal/diagnostic"
	"github.com/tsgonest/dtsresolve/internal/parser/treesitter"
	"github.com/tsgonest/dtsresolve/internal/pathalias"
	"github.com/tsgonest/dtsresolve/internal/printer"
	"github.com/tsgonest/dtsresolve/internal/resolver"
	"github.com/tsgonest/dtsresolve/internal/transform"
	"github.com/tsgonest/dtsresolve/internal/vfs"
)

// TimingReport collects timing data for each pipeline phase.
type TimingReport struct {
	Config    time.Duration
	Program   time.Duration
	Cache     time.Duration
	Transform time.Duration
	Emit      time.Duration
	Total     time.Duration
}

// Print writes the timing breakdown to w.
func (t *TimingReport) Print(w io.Writer) {
	fmt.Fprintf(w, "\n--- timing ---\n")
	fmt.Fprintf(w, "  config:     %s\n", t.Config.Round(time.Millisecond))
	fmt.Fprintf(w, "  program:    %s\n", t.Program.Round(time.Millisecond))
	fmt.Fprintf(w, "  cache:      %s\n", t.Cache.Round(time.Millisecond))
	fmt.Fprintf(w, "  transform:  %s\n", t.Transform.Round(time.Millisecond))
	fmt.Fprintf(w, "  emit:       %s\n", t.Emit.Round(time.Millisecond))
	fmt.Fprintf(w, "  total:      %s\n", t.Total.Round(time.Millisecond))
}

// configOverrides are command line values that replace config file values.
type configOverrides struct {
	OutDir  string
	Parser  string
	Workers int
}

// loadConfig loads the config at configPath, or the one discovered in cwd,
// applies the overrides and validates the result. Validation warnings are
// logged.
func (a *app) loadConfig(configPath, cwd string, o configOverrides) (*config.Config, error) {
	if configPath != "" && !filepath.IsAbs(configPath) {
		configPath = filepath.Join(cwd, configPath)
	}
	cfg, err := config.Discover(configPath, cwd)
	if err != nil {
		return nil, err
	}
	if o.OutDir != "" {
		cfg.OutDir = o.OutDir
		if !filepath.IsAbs(cfg.OutDir) {
			cfg.OutDir = filepath.Join(cwd, cfg.OutDir)
		}
	}
	if o.Parser != "" {
		cfg.Parser = o.Parser
	}
	if o.Workers > 0 {
		cfg.Workers = o.Workers
	}
	where := cfg.Path
	if where == "" {
		where = "default config"
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config (%s)", where)
	}
	result := cfg.ValidateDetailed()
	if !result.IsValid() {
		return nil, errors.Newf("invalid config (%s): %s", where, strings.Join(result.Errors, "; "))
	}
	for _, w := range result.Warnings {
		a.log.Warnw(w, "config", where)
	}
	return cfg, nil
}

// configHash digests the effective config, overrides included.
func configHash(cfg *config.Config) string {
	data, err := json.Marshal(cfg, json.Deterministic(true))
	if err != nil {
		return ""
	}
	return buildcache.HashBytes(data)
}

// parseFunc selects the parser frontend named by the config.
func parseFunc(name string) compiler.ParseFunc {
	if name == config.ParserTreeSitter {
		return treesitter.Parse
	}
	return compiler.NativeParser
}

// project is one configured program ready to be transformed.
type project struct {
	cfg     *config.Config
	prog    *compiler.Program
	aliases *pathalias.Aliases
	rootDir string
}

// openProject discovers and parses the configured inputs, or files when
// given. Syntax errors are returned as diagnostics, not as an error.
func (a *app) openProject(ctx context.Context, cfg *config.Config, fs vfs.FS, files []string) (*project, []ast.Diagnostic, error) {
	dir := filepath.ToSlash(cfg.Dir)
	exclude := append([]string(nil), cfg.Exclude...)
	if rel, err := filepath.Rel(cfg.Dir, cfg.OutDirAbs()); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		exclude = append(exclude, filepath.ToSlash(rel)+"/**")
	}

	aliases := pathalias.New(pathalias.Config{
		BaseDir: filepath.ToSlash(cfg.BaseDirAbs()),
		OutDir:  filepath.ToSlash(cfg.OutDirAbs()),
		RootDir: filepath.ToSlash(cfg.RootDirAbs()),
		Paths:   cfg.Paths,
	})
	prog, err := compiler.NewProgram(ctx, compiler.Options{
		Dir:      dir,
		Include:  cfg.Include,
		Exclude:  exclude,
		Files:    files,
		FS:       fs,
		Resolver: resolver.New(fs, aliases, a.log),
		Parse:    parseFunc(cfg.Parser),
		Workers:  cfg.Workers,
		Logger:   a.log,
	})
	if err != nil {
		return nil, nil, err
	}
	if len(prog.RootFiles()) == 0 {
		return nil, nil, errors.WithHintf(errors.Newf("no input files matched in %s", cfg.Dir),
			"include is %v", cfg.Include)
	}

	rootDir := cfg.RootDirAbs()
	if rootDir == "" {
		var names []string
		for _, f := range prog.RootFiles() {
			names = append(names, f.FileName)
		}
		rootDir = filepath.FromSlash(pathalias.InferRootDir(names))
	}
	// Aliased specifiers are rewritten relative to the inferred root.
	aliases = pathalias.New(pathalias.Config{
		BaseDir: filepath.ToSlash(cfg.BaseDirAbs()),
		OutDir:  filepath.ToSlash(cfg.OutDirAbs()),
		RootDir: filepath.ToSlash(rootDir),
		Paths:   cfg.Paths,
	})
	return &project{cfg: cfg, prog: prog, aliases: aliases, rootDir: rootDir}, prog.Diagnostics(), nil
}

// transformOptions maps the config switches to transform options.
func transformOptions(cfg *config.Config, collector *diagnostic.Collector, a *app) transform.Options {
	return transform.Options{
		ExpandEnumGenerics: cfg.Transform.ExpandEnumGenerics,
		FlattenInterfaces:  cfg.Transform.FlattenInterfaces,
		PruneUnexported:    cfg.Transform.PruneUnexported,
		QualifyNamespaces:  cfg.Transform.QualifyNamespaces,
		Workers:            cfg.Workers,
		Logger:             a.log,
		Diagnostics:        collector,
	}
}

// printerOptions maps the format config to printer options.
func printerOptions(cfg *config.Config) printer.Options {
	return printer.Options{
		Indent:       cfg.IndentString(),
		SingleLine:   !cfg.Format.MultilineObjectLiterals,
		OmitComments: cfg.Format.RemoveComments,
	}
}

// reportDiagnostics prints syntax errors the way tsc does and returns
// errReported when there were any.
func (a *app) reportDiagnostics(diags []ast.Diagnostic, cwd string) error {
	if len(diags) == 0 {
		return nil
	}
	report := compiler.CreateDiagnosticReporter(a.stderr, cwd, a.global.Pretty)
	for _, d := range diags {
		report(d)
	}
	if a.global.Pretty {
		compiler.WriteErrorSummary(a.stderr, diags, cwd)
	} else {
		fmt.Fprintf(a.stderr, "found %d syntax error(s) in %d file(s)\n",
			len(diags), len(compiler.FilesWithSyntaxErrors(diags)))
	}
	return errReported
}

// logCollected writes transform diagnostics to the logger. None of them
// fail a build.
func (a *app) logCollected(c *diagnostic.Collector) {
	if n := len(c.Diagnostics()); n > 0 {
		byCategory := map[string]int{}
		for cat, count := range c.ByCategory() {
			byCategory[string(cat)] = count
		}
		a.log.Infow("transform notes", "count", n, "summary", c.Summary(), "by_category", byCategory)
	}
	for _, d := range c.Diagnostics() {
		switch d.Severity {
		case diagnostic.SeverityError:
			a.log.Errorw(d.Message, "file", d.File, "line", d.Line, "category", string(d.Category))
		case diagnostic.SeverityWarning:
			a.log.Warnw(d.Message, "file", d.File, "line", d.Line, "category", string(d.Category))
		default:
			a.log.Debugw(d.Message, "file", d.File, "line", d.Line, "category", string(d.Category))
		}
	}
}

func workingDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "could not get working directory")
	}
	return cwd, nil
}

// relativeTo shortens p for messages when it lies below dir.
func relativeTo(dir, p string) string {
	if rel, err := filepath.Rel(dir, filepath.FromSlash(p)); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return p
}
