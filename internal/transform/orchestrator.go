package transform

import (
	"context"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/checker"
	"github.com/tsgonest/dtsresolve/internal/diagnostic"
)

// Result is one rewritten module.
type Result struct {
	Source *ast.SourceFile
	// File holds the rewritten statements. Its Text is the source text; the
	// new text is produced by the printer.
	File *ast.SourceFile
	// Qualifications maps each module reachable through a namespace import to
	// its alias.
	Qualifications map[string]string
	Stats          Stats
}

// Transformer rewrites modules of one program. It is safe for concurrent use.
type Transformer struct {
	checker *checker.Checker
	opts    Options
	log     *zap.SugaredLogger
}

// New returns a Transformer querying c.
func New(c *checker.Checker, opts Options) *Transformer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Transformer{checker: c, opts: opts, log: log}
}

// TransformFile rewrites one module. Resolution problems never fail it; they
// fall back to the written syntax and are recorded as info diagnostics.
func (t *Transformer) TransformFile(f *ast.SourceFile) *Result {
	m := &moduleTransform{
		checker:        t.checker,
		opts:           t.opts,
		log:            t.log,
		diags:          t.opts.Diagnostics,
		file:           f,
		qualifications: map[string]string{},
		publicAliases:  map[*ast.Symbol]*publicAlias{},
		inherited:      map[*ast.Symbol]bool{},
	}
	m.buildQualifications()
	m.indexPublicAliases()
	m.collectInherited(f.Statements)

	ctx := m.root()
	stmts := ctx.rewriteNested(ctx.rewriteStatements(f.Statements))

	out := &ast.SourceFile{
		TextRange:         f.TextRange,
		FileName:          f.FileName,
		Text:              f.Text,
		Statements:        stmts,
		EndComments:       f.EndComments,
		IsDeclarationFile: f.IsDeclarationFile,
		ExternalModule:    f.ExternalModule,
		Symbol:            f.Symbol,
		Locals:            f.Locals,
	}
	return &Result{Source: f, File: out, Qualifications: m.qualifications, Stats: m.stats}
}

// buildQualifications maps every module imported as a namespace to its local
// alias. The first import of a module wins.
func (m *moduleTransform) buildQualifications() {
	for _, st := range m.file.Statements {
		var alias, spec string
		switch st := st.(type) {
		case *ast.ImportDeclaration:
			alias, spec = st.NamespaceName, st.ModuleSpecifier
		case *ast.ImportEqualsDeclaration:
			alias, spec = st.Name, st.ExternalModule
		}
		if alias == "" || spec == "" {
			continue
		}
		mod := m.checker.ResolveModule(spec, m.file)
		if mod == nil {
			if m.diags != nil {
				line, _ := m.file.LineAndColumn(st.Range().Pos)
				m.diags.Infof(diagnostic.CategoryModule, m.file.FileName, line+1, "cannot resolve module %q imported as %s", spec, alias)
			}
			continue
		}
		if _, ok := m.qualifications[mod.Name]; !ok {
			m.qualifications[mod.Name] = alias
		}
	}
}

// indexPublicAliases records, for each exported non-generic top-level alias
// whose body is a bare reference, the symbol the reference names.
func (m *moduleTransform) indexPublicAliases() {
	for _, st := range m.file.Statements {
		d, ok := st.(*ast.TypeAliasDeclaration)
		if !ok || len(d.TypeParameters) > 0 {
			continue
		}
		ref, ok := d.Type.(*ast.TypeReference)
		if !ok || ref.Symbol == nil || len(ref.TypeArguments) > 0 {
			continue
		}
		sym := m.checker.SymbolOfDeclaration(d)
		if sym == nil || !sym.Exported {
			continue
		}
		target := m.checker.ResolveAlias(ref.Symbol)
		if target == nil || target == sym {
			continue
		}
		if _, ok := m.publicAliases[target]; !ok {
			m.publicAliases[target] = &publicAlias{name: d.Name, symbol: sym, decl: d}
		}
	}
}

func (ctx traversalContext) rewriteStatements(stmts []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, 0, len(stmts))
	for _, st := range stmts {
		out = append(out, ctx.rewriteStatement(st)...)
	}
	return out
}

// rewriteNested runs the statement pass inside every namespace and module
// body of stmts, innermost last.
func (ctx traversalContext) rewriteNested(stmts []ast.Statement) []ast.Statement {
	for i, st := range stmts {
		md, ok := st.(*ast.ModuleDeclaration)
		if !ok || !md.HasBody {
			continue
		}
		inner := ctx.enterModule(md)
		out := *md
		out.Original = md
		out.Body = inner.rewriteNested(inner.rewriteStatements(md.Body))
		stmts[i] = &out
	}
	return stmts
}

// Source is what TransformProgram needs from a program.
type Source interface {
	RootFiles() []*ast.SourceFile
	Checker() *checker.Checker
}

// TransformProgram rewrites every root file of src, up to opts.Workers at a
// time. Results are in root file order.
func TransformProgram(ctx context.Context, src Source, opts Options) ([]*Result, error) {
	start := time.Now()
	t := New(src.Checker(), opts)
	roots := src.RootFiles()
	results := make([]*Result, len(roots))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range roots {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errors.Wrapf(err, "transforming %s", f.FileName)
			}
			results[i] = t.TransformFile(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total Stats
	for _, r := range results {
		total.Add(r.Stats)
	}
	t.log.Debugw("program transformed",
		"count", len(results),
		"expanded", total.Expanded,
		"pruned", total.Pruned,
		"flattened", total.Flattened,
		"duration_ms", time.Since(start).Milliseconds())
	return results, nil
}
