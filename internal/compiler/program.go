package compiler

import (
	"context"
	"fmt"
	"path"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/checker"
	"github.com/tsgonest/dtsresolve/internal/resolver"
	"github.com/tsgonest/dtsresolve/internal/vfs"
)

// Options configure program creation.
type Options struct {
	// Dir is the absolute project directory that include and exclude
	// patterns are relative to.
	Dir     string
	Include []string
	Exclude []string
	// Files, when set, replaces discovery with an explicit root file list.
	Files []string

	FS       vfs.FS
	Resolver *resolver.Resolver
	Parse    ParseFunc
	Workers  int
	Logger   *zap.SugaredLogger
}

// Program is the set of modules one build operates on: root files matched
// by the include patterns plus every file they import.
type Program struct {
	opts  Options
	log   *zap.SugaredLogger
	files []*ast.SourceFile
	byKey map[string]*ast.SourceFile
	roots map[string]bool
	diags []ast.Diagnostic

	checkerOnce sync.Once
	checker     *checker.Checker
}

var _ checker.Host = (*Program)(nil)

// NewProgram discovers, reads and parses the program's files. Syntax errors
// do not fail creation; they are reported by Diagnostics.
func NewProgram(ctx context.Context, opts Options) (*Program, error) {
	if opts.FS == nil {
		opts.FS = CreateDefaultFS()
	}
	if opts.Parse == nil {
		opts.Parse = NativeParser
	}
	if opts.Resolver == nil {
		opts.Resolver = resolver.New(opts.FS, nil, opts.Logger)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	p := &Program{
		opts:  opts,
		log:   opts.Logger,
		byKey: map[string]*ast.SourceFile{},
		roots: map[string]bool{},
	}

	start := time.Now()
	rootNames, err := p.discover()
	if err != nil {
		return nil, err
	}
	for _, name := range rootNames {
		p.roots[name] = true
	}
	if err := p.load(ctx, rootNames); err != nil {
		return nil, err
	}
	p.log.Debugw("program created",
		"count", len(p.files),
		"roots", len(rootNames),
		"duration_ms", time.Since(start).Milliseconds())
	return p, nil
}

func (p *Program) discover() ([]string, error) {
	if len(p.opts.Files) > 0 {
		names := make([]string, 0, len(p.opts.Files))
		for _, f := range p.opts.Files {
			if !path.IsAbs(f) {
				f = path.Join(p.opts.Dir, f)
			}
			if !p.opts.FS.FileExists(f) {
				return nil, errors.WithHint(errors.Newf("file not found: %s", f),
					"paths are resolved against the project directory")
			}
			names = append(names, f)
		}
		return names, nil
	}

	var names []string
	err := p.opts.FS.WalkFiles(p.opts.Dir, func(file string) error {
		if !isSourceFile(file) {
			return nil
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(file, p.opts.Dir), "/")
		if MatchesGlob(rel, p.opts.Include, p.opts.Exclude) {
			names = append(names, file)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scanning %s", p.opts.Dir)
	}
	return names, nil
}

func isSourceFile(name string) bool {
	switch path.Ext(name) {
	case ".ts", ".tsx", ".mts", ".cts":
		return true
	}
	return false
}

// load parses files breadth first; each round parses in parallel and queues
// the imports it discovers.
func (p *Program) load(ctx context.Context, pending []string) error {
	seen := map[string]bool{}
	for _, name := range pending {
		seen[name] = true
	}
	for len(pending) > 0 {
		parsed := make([]*ast.SourceFile, len(pending))
		diags := make([][]ast.Diagnostic, len(pending))

		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(p.opts.Workers)
		for i, name := range pending {
			g.Go(func() error {
				text, ok := p.opts.FS.ReadFile(name)
				if !ok {
					return errors.Newf("reading %s", name)
				}
				parsed[i], diags[i] = p.opts.Parse(name, text)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		var next []string
		for i, f := range parsed {
			p.files = append(p.files, f)
			p.byKey[f.FileName] = f
			p.diags = append(p.diags, diags[i]...)
			for _, spec := range ImportedSpecifiers(f) {
				target, ok := p.opts.Resolver.Resolve(spec, f.FileName)
				if !ok {
					continue
				}
				if !seen[target] {
					seen[target] = true
					next = append(next, target)
				}
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		sort.Strings(next)
		pending = next
	}
	return nil
}

// ImportedSpecifiers lists the module specifiers a file depends on, in
// source order, including those inside namespace and ambient module bodies.
func ImportedSpecifiers(f *ast.SourceFile) []string {
	var specs []string
	var visit func([]ast.Statement)
	visit = func(stmts []ast.Statement) {
		for _, st := range stmts {
			switch s := st.(type) {
			case *ast.ImportDeclaration:
				specs = append(specs, s.ModuleSpecifier)
			case *ast.ImportEqualsDeclaration:
				if s.ExternalModule != "" {
					specs = append(specs, s.ExternalModule)
				}
			case *ast.ExportDeclaration:
				if s.ModuleSpecifier != "" {
					specs = append(specs, s.ModuleSpecifier)
				}
			case *ast.ModuleDeclaration:
				visit(s.Body)
			}
		}
	}
	visit(f.Statements)
	return specs
}

// SourceFiles returns every file of the program in load order.
func (p *Program) SourceFiles() []*ast.SourceFile { return p.files }

// RootFiles returns the files matched by the include patterns, sorted by name.
func (p *Program) RootFiles() []*ast.SourceFile {
	var roots []*ast.SourceFile
	for _, f := range p.files {
		if p.roots[f.FileName] {
			roots = append(roots, f)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].FileName < roots[j].FileName })
	return roots
}

// IsRoot reports whether a file was matched directly rather than imported.
func (p *Program) IsRoot(f *ast.SourceFile) bool { return p.roots[f.FileName] }

// File returns the parsed file with the given absolute name.
func (p *Program) File(name string) (*ast.SourceFile, bool) {
	f, ok := p.byKey[name]
	return f, ok
}

// Dir returns the project directory.
func (p *Program) Dir() string { return p.opts.Dir }

// ResolveModule implements checker.Host.
func (p *Program) ResolveModule(specifier string, from *ast.SourceFile) (*ast.SourceFile, bool) {
	target, ok := p.opts.Resolver.Resolve(specifier, from.FileName)
	if !ok {
		return nil, false
	}
	return p.File(target)
}

// Checker returns the program's semantic model, creating it on first use.
func (p *Program) Checker() *checker.Checker {
	p.checkerOnce.Do(func() {
		p.checker = checker.New(p)
	})
	return p.checker
}

// Diagnostics returns the syntax errors of all files ordered by file and
// position.
func (p *Program) Diagnostics() []ast.Diagnostic {
	out := append([]ast.Diagnostic(nil), p.diags...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].File.FileName != out[j].File.FileName {
			return out[i].File.FileName < out[j].File.FileName
		}
		return out[i].Pos < out[j].Pos
	})
	return out
}

// String summarizes the program for debug output.
func (p *Program) String() string {
	return fmt.Sprintf("program(%s: %d roots, %d files)", p.opts.Dir, len(p.roots), len(p.files))
}
