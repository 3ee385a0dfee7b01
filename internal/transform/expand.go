package transform

import (
	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/checker"
	"github.com/tsgonest/dtsresolve/internal/diagnostic"
)

// enumeration is the member set a generic's single type parameter can be
// replaced with.
type enumeration struct {
	tp      *ast.TypeParameter
	members []ast.TypeNode
}

// enumerate reports how a generic signature expands, or nil when it does not.
// It expands only with one constrained type parameter that exactly one
// parameter uses as its whole type.
func (ctx traversalContext) enumerate(decl ast.Node, name string, tps []*ast.TypeParameter, params []*ast.Parameter) *enumeration {
	if len(tps) != 1 || tps[0].Constraint == nil {
		return nil
	}
	tp := tps[0]
	bound := 0
	for _, p := range params {
		if refersTo(p.Type, tp) {
			bound++
		}
	}
	switch {
	case bound == 0:
		return nil
	case bound > 1:
		ctx.info(diagnostic.CategoryExpansion, decl, "%s: %d parameters use %s; not expanded", name, bound, tp.Name)
		return nil
	}

	members := ctx.constraintMembers(decl, tp.Constraint)
	if len(members) == 0 {
		ctx.info(diagnostic.CategoryExpansion, decl, "%s: constraint of %s is not enumerable; not expanded", name, tp.Name)
		return nil
	}
	return &enumeration{tp: tp, members: members}
}

// constraintMembers lists the types a constraint enumerates: one member
// reference per enum member, or one literal per member of an all-string or
// all-number literal union.
func (ctx traversalContext) constraintMembers(decl ast.Node, constraint ast.TypeNode) []ast.TypeNode {
	c := ctx.m.checker
	t := c.GetTypeFromTypeNode(constraint)
	switch {
	case t == nil:
		return nil
	case t.IsEnum():
		members := c.EnumMembers(t.Symbol())
		if len(members) == 0 {
			return nil
		}
		enumName, ok := c.TypeToTypeNode(t, decl, baseFlags).(*ast.TypeReference)
		if !ok {
			return nil
		}
		out := make([]ast.TypeNode, len(members))
		for i, m := range members {
			out[i] = ast.NewTypeReference(ast.NewQualifiedName(ast.CloneEntityName(enumName.TypeName), m.Name), nil, m)
		}
		return out
	case t.IsUnion():
		types := t.Types()
		var out []ast.TypeNode
		switch {
		case allTypes(types, (*checker.Type).IsStringLiteral):
			for _, u := range types {
				out = append(out, &ast.LiteralType{Kind: ast.LiteralString, Text: u.LiteralText()})
			}
		case allTypes(types, (*checker.Type).IsNumberLiteral):
			for _, u := range types {
				out = append(out, &ast.LiteralType{Kind: ast.LiteralNumber, Text: u.LiteralText()})
			}
		}
		return out
	}
	return nil
}

func allTypes(types []*checker.Type, pred func(*checker.Type) bool) bool {
	if len(types) == 0 {
		return false
	}
	for _, t := range types {
		if !pred(t) {
			return false
		}
	}
	return true
}

// refersTo reports whether n is a bare reference to the type parameter tp.
func refersTo(n ast.TypeNode, tp *ast.TypeParameter) bool {
	ref, ok := n.(*ast.TypeReference)
	if !ok || len(ref.TypeArguments) > 0 {
		return false
	}
	id, ok := ref.TypeName.(*ast.Identifier)
	if !ok || id.Text != tp.Name {
		return false
	}
	return ref.Symbol == nil || ref.Symbol.FirstDeclaration() == tp
}

// substitute replaces every reference to tp in n with a copy of with.
func substitute(n ast.TypeNode, tp *ast.TypeParameter, with ast.TypeNode) ast.TypeNode {
	if n == nil {
		return nil
	}
	var visit ast.TypeVisitor
	visit = func(n ast.TypeNode) ast.TypeNode {
		if refersTo(n, tp) {
			return ast.CloneType(with)
		}
		return ast.UpdateTypeChildren(n, visit)
	}
	return visit(n)
}

func substituteParameters(params []*ast.Parameter, tp *ast.TypeParameter, with ast.TypeNode) []*ast.Parameter {
	return ast.UpdateParameters(params, func(n ast.TypeNode) ast.TypeNode {
		return substitute(n, tp, with)
	})
}

// expandFunction returns the concrete overloads replacing a generic function,
// or nil to keep it.
func (ctx traversalContext) expandFunction(fn *ast.FunctionDeclaration) []ast.Statement {
	if !ctx.m.opts.ExpandEnumGenerics {
		return nil
	}
	e := ctx.enumerate(fn, fn.Name, fn.TypeParameters, fn.Parameters)
	if e == nil {
		return nil
	}
	ctx.m.log.Debugw("expanding generic function",
		"file", ctx.m.file.FileName, "decl", fn.Name, "members", len(e.members))
	inner := ctx.withDecl(fn)
	out := make([]ast.Statement, len(e.members))
	for i, member := range e.members {
		out[i] = &ast.FunctionDeclaration{
			DeclarationBase: ast.DeclarationBase{Comments: fn.Comments, Modifiers: fn.Modifiers, Original: fn},
			Name:            fn.Name,
			Parameters:      inner.canonicalizeParameters(substituteParameters(fn.Parameters, e.tp, member)),
			Type:            inner.canonicalize(substitute(fn.Type, e.tp, member)),
		}
	}
	ctx.m.stats.Expanded++
	ctx.m.stats.Overloads += len(out)
	return out
}

// expandMethod is expandFunction for class methods.
func (ctx traversalContext) expandMethod(md *ast.MethodDeclaration) []ast.ClassElement {
	if !ctx.m.opts.ExpandEnumGenerics {
		return nil
	}
	name := md.Name.Text
	e := ctx.enumerate(md, name, md.TypeParameters, md.Parameters)
	if e == nil {
		return nil
	}
	ctx.m.log.Debugw("expanding generic method",
		"file", ctx.m.file.FileName, "decl", ctx.declName()+"."+name, "members", len(e.members))
	inner := ctx.withDecl(md)
	out := make([]ast.ClassElement, len(e.members))
	for i, member := range e.members {
		out[i] = &ast.MethodDeclaration{
			DeclarationBase: ast.DeclarationBase{Comments: md.Comments, Modifiers: md.Modifiers, Original: md},
			Name:            md.Name,
			Optional:        md.Optional,
			Parameters:      inner.canonicalizeParameters(substituteParameters(md.Parameters, e.tp, member)),
			Type:            inner.canonicalize(substitute(md.Type, e.tp, member)),
		}
	}
	ctx.m.stats.Expanded++
	ctx.m.stats.Overloads += len(out)
	return out
}

func (ctx traversalContext) info(category diagnostic.Category, n ast.Node, format string, args ...any) {
	if ctx.m.diags == nil {
		return
	}
	ctx.m.diags.Infof(category, ctx.m.file.FileName, ctx.line(n), format, args...)
}
