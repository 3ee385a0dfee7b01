package transform

import (
	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/printer"
)

// canonicalize replaces a written type with the syntax of the type the
// checker resolves it to. Resolution failures keep the written node.
func (ctx traversalContext) canonicalize(n ast.TypeNode) ast.TypeNode {
	if n == nil {
		return nil
	}
	// A bare reference names its type already; qualified names pass through.
	if ref, ok := n.(*ast.TypeReference); ok && len(ref.TypeArguments) == 0 {
		return ctx.resolveReference(ref)
	}

	c := ctx.m.checker
	t := c.GetTypeFromTypeNode(n)
	if t == nil || c.TypeToString(t, ctx.decl) == "any" {
		return n
	}
	out := ctx.normalize(c.TypeToTypeNode(t, ctx.decl, ctx.flags|baseFlags))
	if out == nil || printer.TypeToString(out) == "any" {
		return n
	}
	return out
}

// normalize simplifies a built type tree bottom-up and sends every
// reference through the reference resolver.
func (ctx traversalContext) normalize(n ast.TypeNode) ast.TypeNode {
	if n == nil {
		return nil
	}
	n = ast.UpdateTypeChildren(n, ctx.normalize)
	switch n := n.(type) {
	case *ast.IntersectionType:
		return collapseIntersection(n)
	case *ast.ParenthesizedType:
		if lit, ok := n.Type.(*ast.TypeLiteral); ok {
			return lit
		}
	case *ast.TypeReference:
		return ctx.resolveReference(n)
	}
	return n
}

// collapseIntersection drops empty object literal operands and unwraps an
// intersection left with a single operand.
func collapseIntersection(n *ast.IntersectionType) ast.TypeNode {
	var kept []ast.TypeNode
	for _, t := range n.Types {
		if lit, ok := t.(*ast.TypeLiteral); ok && len(lit.Members) == 0 {
			continue
		}
		kept = append(kept, t)
	}
	switch {
	case len(kept) == len(n.Types):
		return n
	case len(kept) == 0:
		return &ast.TypeLiteral{}
	case len(kept) == 1:
		if p, ok := kept[0].(*ast.ParenthesizedType); ok {
			return p.Type
		}
		return kept[0]
	}
	return &ast.IntersectionType{Types: kept}
}

func (ctx traversalContext) canonicalizeParameters(params []*ast.Parameter) []*ast.Parameter {
	return ast.UpdateParameters(params, ctx.canonicalize)
}

func (ctx traversalContext) canonicalizeTypeParameters(tps []*ast.TypeParameter) []*ast.TypeParameter {
	return ast.UpdateTypeParameters(tps, ctx.canonicalize)
}

// canonicalizeTypeElement rewrites the types of an interface or type literal
// member as seen from inside that member.
func (ctx traversalContext) canonicalizeTypeElement(m ast.TypeElement) ast.TypeElement {
	inner := ctx.withDecl(m)
	return ast.UpdateTypeElement(m, inner.canonicalize)
}

func (ctx traversalContext) canonicalizeClassElement(m ast.ClassElement) ast.ClassElement {
	inner := ctx.withDecl(m)
	return ast.UpdateClassElement(m, inner.canonicalize)
}
