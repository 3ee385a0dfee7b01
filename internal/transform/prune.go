package transform

import (
	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/checker"
	"github.com/tsgonest/dtsresolve/internal/printer"
)

// collectInherited records the values named by class extends clauses and by
// interface extends clauses with more than one target, in stmts and in every
// nested namespace body.
func (m *moduleTransform) collectInherited(stmts []ast.Statement) {
	for _, st := range stmts {
		switch st := st.(type) {
		case *ast.ClassDeclaration:
			m.addInherited(ast.ExtendsTypes(st.HeritageClauses))
		case *ast.InterfaceDeclaration:
			if targets := ast.ExtendsTypes(st.HeritageClauses); len(targets) > 1 {
				m.addInherited(targets)
			}
		case *ast.ModuleDeclaration:
			m.collectInherited(st.Body)
		}
	}
}

func (m *moduleTransform) addInherited(targets []*ast.ExpressionWithTypeArguments) {
	for _, e := range targets {
		if sym := m.checker.ResolveAlias(m.checker.HeritageSymbol(e)); sym != nil {
			m.inherited[sym] = true
		}
	}
}

// rewriteStatement rewrites one statement into zero or more output
// statements. Namespace bodies are left for the nested pass.
func (ctx traversalContext) rewriteStatement(st ast.Statement) []ast.Statement {
	switch st := st.(type) {
	case *ast.VariableStatement:
		if out := ctx.rewriteVariableStatement(st); out != nil {
			return []ast.Statement{out}
		}
		return nil
	case *ast.FunctionDeclaration:
		if ctx.prunable(st) {
			ctx.pruned(st.Name)
			return nil
		}
		if ctx.depth == 0 && len(st.TypeParameters) > 0 {
			if overloads := ctx.expandFunction(st); overloads != nil {
				return overloads
			}
		}
		return []ast.Statement{ctx.rewriteFunction(st)}
	case *ast.InterfaceDeclaration:
		return []ast.Statement{ctx.rewriteInterface(st)}
	case *ast.ClassDeclaration:
		return []ast.Statement{ctx.rewriteClass(st)}
	case *ast.TypeAliasDeclaration:
		return []ast.Statement{ctx.rewriteTypeAlias(st)}
	}
	return []ast.Statement{st}
}

func (ctx traversalContext) exported(decl ast.Node) bool {
	sym := ctx.m.checker.SymbolOfDeclaration(decl)
	return sym == nil || sym.Exported
}

func (ctx traversalContext) prunable(fn *ast.FunctionDeclaration) bool {
	if !ctx.m.opts.PruneUnexported || ctx.exported(fn) {
		return false
	}
	return !ctx.m.inherited[ctx.m.checker.SymbolOfDeclaration(fn)]
}

func (ctx traversalContext) pruned(name string) {
	ctx.m.stats.Pruned++
	ctx.m.log.Debugw("pruned unexported value", "file", ctx.m.file.FileName, "decl", name)
}

// rewriteVariableStatement drops the unexported declarations of a variable
// statement, keeping those a class extends with their resolved type. It
// returns nil when nothing is left.
func (ctx traversalContext) rewriteVariableStatement(st *ast.VariableStatement) ast.Statement {
	var kept []*ast.VariableDeclaration
	for _, d := range st.Declarations {
		switch {
		case ctx.exported(d) || !ctx.m.opts.PruneUnexported:
			kept = append(kept, ctx.rewriteVariable(d))
		case ctx.m.inherited[ctx.m.checker.SymbolOfDeclaration(d)]:
			ctx.m.stats.Retained++
			ctx.m.log.Debugw("retained inherited value", "file", ctx.m.file.FileName, "decl", d.Name)
			kept = append(kept, ctx.annotateInherited(d))
		default:
			ctx.pruned(d.Name)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	out := *st
	out.Original = st
	out.Declarations = kept
	return &out
}

func (ctx traversalContext) rewriteVariable(d *ast.VariableDeclaration) *ast.VariableDeclaration {
	out := *d
	out.Original = d
	out.Type = ctx.withDecl(d).canonicalize(d.Type)
	return &out
}

// annotateInherited gives a retained value its resolved type in place of
// its initializer.
func (ctx traversalContext) annotateInherited(d *ast.VariableDeclaration) *ast.VariableDeclaration {
	inner := ctx.withDecl(d)
	out := *d
	out.Original = d
	if d.Type != nil {
		out.Type = inner.canonicalize(d.Type)
	} else if t := inner.typeOfValue(d); t != nil {
		out.Type = t
	}
	if out.Type != nil {
		out.Initializer = nil
	}
	return &out
}

func (ctx traversalContext) typeOfValue(d *ast.VariableDeclaration) ast.TypeNode {
	c := ctx.m.checker
	sym := c.SymbolOfDeclaration(d)
	if sym == nil {
		return nil
	}
	t := c.GetTypeFromTypeNode(&ast.TypeQuery{ExprName: ast.NewIdentifier(d.Name), Symbol: sym})
	if t == nil || t.IsError() || t.IsOpaque() {
		return nil
	}
	out := ctx.normalize(c.TypeToTypeNode(t, ctx.decl, ctx.flags))
	if out == nil || printer.TypeToString(out) == "any" {
		return nil
	}
	return out
}

func (ctx traversalContext) rewriteFunction(fn *ast.FunctionDeclaration) *ast.FunctionDeclaration {
	inner := ctx.withDecl(fn)
	out := *fn
	out.Original = fn
	out.TypeParameters = inner.canonicalizeTypeParameters(fn.TypeParameters)
	out.Parameters = inner.canonicalizeParameters(fn.Parameters)
	out.Type = inner.canonicalize(fn.Type)
	return &out
}

func (ctx traversalContext) rewriteTypeAlias(d *ast.TypeAliasDeclaration) *ast.TypeAliasDeclaration {
	inner := ctx.withDecl(d)
	out := *d
	out.Original = d
	out.TypeParameters = inner.canonicalizeTypeParameters(d.TypeParameters)
	out.Type = inner.inTypeAlias().canonicalize(d.Type)
	return &out
}

func (ctx traversalContext) rewriteClass(d *ast.ClassDeclaration) *ast.ClassDeclaration {
	inner := ctx.withDecl(d)
	out := *d
	out.Original = d
	out.TypeParameters = inner.canonicalizeTypeParameters(d.TypeParameters)
	out.Members = make([]ast.ClassElement, 0, len(d.Members))
	for _, m := range d.Members {
		if md, ok := m.(*ast.MethodDeclaration); ok && len(md.TypeParameters) > 0 {
			if overloads := inner.expandMethod(md); overloads != nil {
				out.Members = append(out.Members, overloads...)
				continue
			}
		}
		out.Members = append(out.Members, inner.canonicalizeClassElement(m))
	}
	return &out
}

// rewriteInterface canonicalizes an interface's members and, when it extends
// exactly one target that resolves to an object literal type, merges the
// target's members ahead of its own and drops the heritage clause.
func (ctx traversalContext) rewriteInterface(d *ast.InterfaceDeclaration) *ast.InterfaceDeclaration {
	inner := ctx.withDecl(d)
	out := *d
	out.Original = d
	out.TypeParameters = inner.canonicalizeTypeParameters(d.TypeParameters)
	own := make([]ast.TypeElement, len(d.Members))
	for i, m := range d.Members {
		own[i] = inner.canonicalizeTypeElement(m)
	}
	out.Members = own

	targets := ast.ExtendsTypes(d.HeritageClauses)
	if !ctx.m.opts.FlattenInterfaces || len(targets) != 1 {
		return &out
	}
	base := inner.flattenedBase(targets[0])
	if base == nil {
		return &out
	}
	out.Members = append(append([]ast.TypeElement{}, base.Members...), own...)
	out.HeritageClauses = withoutExtends(d.HeritageClauses)
	ctx.m.stats.Flattened++
	ctx.m.log.Debugw("flattened interface",
		"file", ctx.m.file.FileName, "decl", d.Name, "members", len(out.Members))
	return &out
}

// flattenedBase returns the object literal a heritage target resolves to, or
// nil when it resolves to anything else.
func (ctx traversalContext) flattenedBase(e *ast.ExpressionWithTypeArguments) *ast.TypeLiteral {
	c := ctx.m.checker
	t := c.GetTypeOfHeritage(e)
	if t == nil || t.IsError() {
		return nil
	}
	lit, ok := ctx.normalize(c.TypeToTypeNode(t, ctx.decl, ctx.flags|checker.InTypeAlias)).(*ast.TypeLiteral)
	if !ok {
		return nil
	}
	return lit
}

func withoutExtends(clauses []*ast.HeritageClause) []*ast.HeritageClause {
	var out []*ast.HeritageClause
	for _, c := range clauses {
		if c.Token != ast.HeritageExtends {
			out = append(out, c)
		}
	}
	return out
}
