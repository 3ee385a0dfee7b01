// Package transform rewrites the declaration surface of each module into a
// self-contained, canonical form: written types are replaced by the types
// the checker resolves them to, references are renamed or qualified so they
// resolve outside their module, functions generic over an enumerable
// constraint are expanded into concrete overloads, and unexported values
// are pruned.
package transform

import (
	"go.uber.org/zap"

	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/checker"
	"github.com/tsgonest/dtsresolve/internal/diagnostic"
)

// Options select the rewrites applied to each module.
type Options struct {
	ExpandEnumGenerics bool
	FlattenInterfaces  bool
	PruneUnexported    bool
	QualifyNamespaces  bool
	// Workers bounds how many modules TransformProgram rewrites at once;
	// zero means GOMAXPROCS.
	Workers int

	Logger      *zap.SugaredLogger
	Diagnostics *diagnostic.Collector
}

// DefaultOptions enables every rewrite.
func DefaultOptions() Options {
	return Options{
		ExpandEnumGenerics: true,
		FlattenInterfaces:  true,
		PruneUnexported:    true,
		QualifyNamespaces:  true,
	}
}

// Stats counts what one module transform did.
type Stats struct {
	Expanded    int `json:"expanded"`    // generic declarations replaced by overloads
	Overloads   int `json:"overloads"`   // overloads synthesized
	Pruned      int `json:"pruned"`      // declarations removed
	Retained    int `json:"retained"`    // unexported values kept because a class extends them
	Flattened   int `json:"flattened"`   // interfaces merged with their base
	Qualified   int `json:"qualified"`   // references qualified with a namespace import alias
	Substituted int `json:"substituted"` // references renamed to a public alias
	ImportTypes int `json:"importTypes"` // references rewritten as import("...") types
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Expanded += o.Expanded
	s.Overloads += o.Overloads
	s.Pruned += o.Pruned
	s.Retained += o.Retained
	s.Flattened += o.Flattened
	s.Qualified += o.Qualified
	s.Substituted += o.Substituted
	s.ImportTypes += o.ImportTypes
}

// moduleTransform holds the state of one module pass. It is built before any
// declaration is rewritten and only Stats changes afterwards.
type moduleTransform struct {
	checker *checker.Checker
	opts    Options
	log     *zap.SugaredLogger
	diags   *diagnostic.Collector
	file    *ast.SourceFile

	// qualifications maps a module name to the namespace import alias that
	// names it in this file.
	qualifications map[string]string
	// publicAliases maps an unexported symbol to an exported alias whose
	// body is exactly a reference to it.
	publicAliases map[*ast.Symbol]*publicAlias
	// inherited holds the values some class or interface extends.
	inherited map[*ast.Symbol]bool

	stats Stats
}

type publicAlias struct {
	name   string
	symbol *ast.Symbol
	decl   *ast.TypeAliasDeclaration
}

// traversalContext is the state a recursive rewrite carries. It is passed by
// value; nested contexts never affect their parent.
type traversalContext struct {
	m *moduleTransform
	// module is the module symbol the current statement belongs to: the
	// file, or an ambient module declared in it.
	module *ast.Symbol
	// decl is the parse-tree declaration types are printed from.
	decl ast.Node
	// stmt is the statement enclosing decl, named in logs.
	stmt  ast.Statement
	flags checker.NodeBuilderFlags
	// depth is the namespace nesting level; zero at the top level.
	depth int
}

const baseFlags = checker.UseAliasDefinedOutsideCurrentScope | checker.NoTruncation | checker.MultilineObjectLiterals

func (m *moduleTransform) root() traversalContext {
	return traversalContext{m: m, module: m.file.Symbol, decl: m.file, flags: baseFlags}
}

func (ctx traversalContext) withDecl(d ast.Node) traversalContext {
	ctx.decl = ast.ParseTreeNode(d)
	if st, ok := ctx.decl.(ast.Statement); ok {
		ctx.stmt = st
	}
	ctx.flags &^= checker.InTypeAlias
	return ctx
}

func (ctx traversalContext) inTypeAlias() traversalContext {
	ctx.flags |= checker.InTypeAlias
	return ctx
}

func (ctx traversalContext) enterModule(md *ast.ModuleDeclaration) traversalContext {
	if md.IsStringName {
		if sym := ctx.m.checker.SymbolOfDeclaration(md); sym != nil {
			ctx.module = sym
		}
	}
	ctx.decl = md
	ctx.stmt = md
	ctx.depth++
	return ctx
}

func (ctx traversalContext) line(n ast.Node) int {
	n = ast.ParseTreeNode(n)
	if n == nil || n.Range().IsSynthesized() {
		return 0
	}
	line, _ := ctx.m.file.LineAndColumn(n.Range().Pos)
	return line + 1
}

// declName names the declaration being rewritten, or the statement around
// it when the declaration is a member.
func (ctx traversalContext) declName() string {
	switch d := ctx.decl.(type) {
	case ast.Statement:
		return ast.DeclarationName(d)
	case *ast.VariableDeclaration:
		return d.Name
	}
	if ctx.stmt != nil {
		return ast.DeclarationName(ctx.stmt)
	}
	return ""
}
