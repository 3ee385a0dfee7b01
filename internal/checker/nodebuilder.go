package checker

import (
	"sort"

	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/printer"
)

// NodeBuilderFlags control how types are turned back into syntax.
type NodeBuilderFlags uint32

const (
	NodeBuilderNone NodeBuilderFlags = 0
	// UseAliasDefinedOutsideCurrentScope prints alias names even when the
	// alias is not visible from the enclosing declaration.
	UseAliasDefinedOutsideCurrentScope NodeBuilderFlags = 1 << iota
	NoTruncation
	// MultilineObjectLiterals lays object types out one member per line.
	MultilineObjectLiterals
	// InTypeAlias expands the outermost alias instead of naming it, as the
	// right-hand side of that alias would be written.
	InTypeAlias
)

type nodeBuilder struct {
	c        *Checker
	scope    *scope
	file     *ast.SourceFile
	flags    NodeBuilderFlags
	depth    int
	visiting map[*Type]bool
}

func (c *Checker) typeToTypeNode(t *Type, enclosing ast.Node, flags NodeBuilderFlags) ast.TypeNode {
	b := &nodeBuilder{c: c, scope: c.scopeOf(enclosing), flags: flags, visiting: map[*Type]bool{}}
	if b.scope != nil {
		b.file = b.scope.file
	}
	return b.build(t)
}

func (c *Checker) typeToString(t *Type, enclosing ast.Node, flags NodeBuilderFlags) string {
	return printer.TypeToString(c.typeToTypeNode(t, enclosing, flags))
}

func (b *nodeBuilder) build(t *Type) ast.TypeNode {
	if t == nil {
		return ast.NewKeyword(ast.KeywordAny)
	}
	inAlias := b.flags&InTypeAlias != 0
	b.flags &^= InTypeAlias
	if t.alias != nil {
		deferred := t.flags&TypeObject != 0 && t.objectKind == ObjectDeferred
		if deferred || !inAlias && b.useAlias(t.alias.Symbol) {
			return b.reference(t.alias.Symbol, t.alias.TypeArguments)
		}
	}
	if b.depth >= maxDepth {
		return ast.NewKeyword(ast.KeywordAny)
	}
	b.depth++
	defer func() { b.depth-- }()

	switch {
	case t.flags&TypeAny != 0:
		return ast.NewKeyword(ast.KeywordAny)
	case t.flags&TypeUnknown != 0:
		return ast.NewKeyword(ast.KeywordUnknown)
	case t.flags&TypeNever != 0:
		return ast.NewKeyword(ast.KeywordNever)
	case t.flags&TypeVoid != 0:
		return ast.NewKeyword(ast.KeywordVoid)
	case t.flags&TypeUndefined != 0:
		return ast.NewKeyword(ast.KeywordUndefined)
	case t.flags&TypeNull != 0:
		return ast.NewKeyword(ast.KeywordNull)
	case t.flags&TypeString != 0:
		return ast.NewKeyword(ast.KeywordString)
	case t.flags&TypeNumber != 0:
		return ast.NewKeyword(ast.KeywordNumber)
	case t.flags&TypeBigInt != 0:
		return ast.NewKeyword(ast.KeywordBigInt)
	case t.flags&TypeBoolean != 0:
		return ast.NewKeyword(ast.KeywordBoolean)
	case t.flags&TypeESSymbol != 0:
		return ast.NewKeyword(ast.KeywordSymbol)
	case t.flags&TypeNonPrimitive != 0:
		return ast.NewKeyword(ast.KeywordObject)
	case t.flags&TypeThis != 0:
		return ast.NewKeyword(ast.KeywordThis)
	case t.flags&TypeStringLiteral != 0:
		return &ast.LiteralType{Kind: ast.LiteralString, Text: t.text}
	case t.flags&TypeNumberLiteral != 0:
		return &ast.LiteralType{Kind: ast.LiteralNumber, Text: t.text}
	case t.flags&TypeBigIntLiteral != 0:
		return &ast.LiteralType{Kind: ast.LiteralBigInt, Text: t.text}
	case t.flags&TypeBooleanLiteral != 0:
		if t.value == true {
			return &ast.LiteralType{Kind: ast.LiteralTrue, Text: "true"}
		}
		return &ast.LiteralType{Kind: ast.LiteralFalse, Text: "false"}
	case t.flags&TypeEnumLiteral != 0:
		name, _ := b.entityName(t.symbol.Parent)
		return ast.NewTypeReference(ast.NewQualifiedName(name, t.symbol.Name), nil, t.symbol)
	case t.flags&TypeEnum != 0:
		return b.reference(t.symbol, nil)
	case t.flags&TypeTypeParameter != 0:
		return ast.NewTypeReference(ast.NewIdentifier(t.symbol.Name), nil, t.symbol)
	case t.flags&TypeUnion != 0:
		return &ast.UnionType{Types: b.buildAll(t.types)}
	case t.flags&TypeIntersection != 0:
		return &ast.IntersectionType{Types: b.buildAll(t.types)}
	case t.flags&TypeOpaque != 0:
		return b.substitute(t.node, t.mapper)
	case t.flags&TypeObject != 0:
		return b.object(t)
	}
	return ast.NewKeyword(ast.KeywordAny)
}

func (b *nodeBuilder) buildAll(types []*Type) []ast.TypeNode {
	out := make([]ast.TypeNode, len(types))
	for i, t := range types {
		out[i] = b.build(t)
	}
	return out
}

func (b *nodeBuilder) object(t *Type) ast.TypeNode {
	switch t.objectKind {
	case ObjectArray:
		arr := &ast.ArrayType{ElementType: b.build(t.typeArguments[0])}
		if t.readonly {
			return &ast.TypeOperator{Operator: "readonly", Type: arr}
		}
		return arr
	case ObjectTuple:
		elems := make([]*ast.TupleElement, len(t.typeArguments))
		for i, e := range t.typeArguments {
			info := t.tuple[i]
			elems[i] = &ast.TupleElement{Name: info.Name, Optional: info.Optional, Rest: info.Rest, Type: b.build(e)}
		}
		tuple := &ast.TupleType{Elements: elems}
		if t.readonly {
			return &ast.TypeOperator{Operator: "readonly", Type: tuple}
		}
		return tuple
	case ObjectReference:
		return b.reference(t.symbol, t.typeArguments)
	case ObjectDeferred:
		return b.reference(t.alias.Symbol, t.alias.TypeArguments)
	}
	if b.visiting[t] {
		return ast.NewKeyword(ast.KeywordAny)
	}
	b.visiting[t] = true
	defer delete(b.visiting, t)
	if len(t.members) == 1 && (t.members[0].Kind == MemberCall || t.members[0].Kind == MemberConstruct) {
		sig := t.members[0].Signature
		fn := &ast.FunctionType{
			Constructor:    t.members[0].Kind == MemberConstruct,
			TypeParameters: b.typeParameters(sig.TypeParameters),
			Parameters:     b.parameters(sig.Parameters),
			Type:           b.returnType(sig),
		}
		if fn.Type == nil {
			fn.Type = ast.NewKeyword(ast.KeywordAny)
		}
		return fn
	}
	return &ast.TypeLiteral{Members: b.members(t.members), Multiline: b.flags&MultilineObjectLiterals != 0}
}

func (b *nodeBuilder) members(list []*Member) []ast.TypeElement {
	out := make([]ast.TypeElement, 0, len(list))
	for _, m := range list {
		base := ast.DeclarationBase{}
		if m.Decl != nil {
			base.Comments = append([]string(nil), m.Decl.LeadingComments()...)
		}
		if m.Readonly {
			base.Modifiers |= ast.ModifierReadonly
		}
		switch m.Kind {
		case MemberProperty:
			out = append(out, &ast.PropertySignature{DeclarationBase: base, Name: m.Name, Optional: m.Optional, Type: b.build(m.Type)})
		case MemberMethod:
			out = append(out, &ast.MethodSignature{
				DeclarationBase: base,
				Name:            m.Name,
				Optional:        m.Optional,
				TypeParameters:  b.typeParameters(m.Signature.TypeParameters),
				Parameters:      b.parameters(m.Signature.Parameters),
				Type:            b.returnType(m.Signature),
			})
		case MemberCall:
			out = append(out, &ast.CallSignature{
				DeclarationBase: base,
				TypeParameters:  b.typeParameters(m.Signature.TypeParameters),
				Parameters:      b.parameters(m.Signature.Parameters),
				Type:            b.returnType(m.Signature),
			})
		case MemberConstruct:
			out = append(out, &ast.ConstructSignature{
				DeclarationBase: base,
				TypeParameters:  b.typeParameters(m.Signature.TypeParameters),
				Parameters:      b.parameters(m.Signature.Parameters),
				Type:            b.returnType(m.Signature),
			})
		case MemberIndex:
			key := m.KeyName
			if key == "" {
				key = "key"
			}
			out = append(out, &ast.IndexSignature{
				DeclarationBase: base,
				Parameters:      []*ast.Parameter{{Name: key, Type: b.build(m.KeyType)}},
				Type:            b.build(m.Type),
			})
		case MemberGetAccessor:
			out = append(out, &ast.AccessorDeclaration{DeclarationBase: base, Kind: ast.AccessorGet, Name: m.Name, Type: b.build(m.Type)})
		case MemberSetAccessor:
			param := m.KeyName
			if param == "" {
				param = "value"
			}
			out = append(out, &ast.AccessorDeclaration{
				DeclarationBase: base,
				Kind:            ast.AccessorSet,
				Name:            m.Name,
				Parameters:      []*ast.Parameter{{Name: param, Type: b.build(m.Type)}},
			})
		}
	}
	return out
}

func (b *nodeBuilder) typeParameters(infos []*TypeParameterInfo) []*ast.TypeParameter {
	if len(infos) == 0 {
		return nil
	}
	out := make([]*ast.TypeParameter, len(infos))
	for i, tp := range infos {
		out[i] = &ast.TypeParameter{Modifiers: tp.Modifiers, Name: tp.Name}
		if tp.Constraint != nil {
			out[i].Constraint = b.build(tp.Constraint)
		}
		if tp.Default != nil {
			out[i].Default = b.build(tp.Default)
		}
	}
	return out
}

func (b *nodeBuilder) parameters(infos []*ParameterInfo) []*ast.Parameter {
	out := make([]*ast.Parameter, len(infos))
	for i, p := range infos {
		out[i] = &ast.Parameter{Modifiers: p.Modifiers, Rest: p.Rest, Name: p.Name, Optional: p.Optional}
		if p.Type != nil {
			out[i].Type = b.build(p.Type)
		}
	}
	return out
}

func (b *nodeBuilder) returnType(sig *Signature) ast.TypeNode {
	if sig.Return == nil {
		return nil
	}
	return b.build(sig.Return)
}

// substitute clones syntax kept for an opaque type, replacing references to
// mapped type parameters with their instantiations.
func (b *nodeBuilder) substitute(n ast.TypeNode, m *mapper) ast.TypeNode {
	var visit ast.TypeVisitor
	visit = func(n ast.TypeNode) ast.TypeNode {
		if ref, ok := n.(*ast.TypeReference); ok && len(ref.TypeArguments) == 0 && ref.Symbol != nil &&
			ref.Symbol.Flags&ast.SymbolTypeParameter != 0 {
			if t, ok := m.lookup(ref.Symbol); ok {
				return b.build(t)
			}
		}
		return ast.UpdateTypeChildren(n, visit)
	}
	return visit(n)
}

func (b *nodeBuilder) reference(sym *ast.Symbol, args []*Type) ast.TypeNode {
	name, bound := b.entityName(sym)
	var argNodes []ast.TypeNode
	if len(args) > 0 {
		argNodes = b.buildAll(args)
	}
	return ast.NewTypeReference(name, argNodes, bound)
}

func (b *nodeBuilder) useAlias(sym *ast.Symbol) bool {
	return b.flags&UseAliasDefinedOutsideCurrentScope != 0 || b.accessible(sym)
}

// visibleAs reports whether name, looked up from the enclosing scope,
// resolves to sym, and returns the symbol found.
func (b *nodeBuilder) visibleAs(name string, sym *ast.Symbol) *ast.Symbol {
	found := b.c.resolveName(name, b.scope, meaningType|meaningValue|meaningNamespace)
	if found != nil && (found == sym || b.c.resolveAliasOrSelf(found) == sym) {
		return found
	}
	return nil
}

// importAliasFor finds a named or default import in the enclosing file
// that brings sym into scope under another name.
func (b *nodeBuilder) importAliasFor(sym *ast.Symbol) *ast.Symbol {
	if b.file == nil {
		return nil
	}
	fs := b.c.fileScopes[b.file]
	if fs == nil {
		return nil
	}
	names := make([]string, 0, len(fs.locals))
	for name, s := range fs.locals {
		if s.Flags&ast.SymbolAlias != 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		s := fs.locals[name]
		if target := b.c.aliases[s]; target != nil && target.name == "*" {
			continue
		}
		if b.c.resolveAlias(s) == sym {
			return s
		}
	}
	return nil
}

func (b *nodeBuilder) accessible(sym *ast.Symbol) bool {
	if b.visibleAs(sym.Name, sym) != nil || b.importAliasFor(sym) != nil {
		return true
	}
	if p := sym.Parent; p != nil && p.Flags&(ast.SymbolNamespace|ast.SymbolEnum) != 0 && p.Flags&ast.SymbolModule == 0 {
		return sym.Exported && b.accessible(p)
	}
	return false
}

// entityName picks the name under which sym is written at the enclosing
// declaration, together with the symbol the name binds to there. Symbols
// not visible from there keep their declared name, bound to themselves.
func (b *nodeBuilder) entityName(sym *ast.Symbol) (ast.EntityName, *ast.Symbol) {
	if found := b.visibleAs(sym.Name, sym); found != nil {
		return ast.NewIdentifier(sym.Name), found
	}
	if alias := b.importAliasFor(sym); alias != nil {
		return ast.NewIdentifier(alias.Name), alias
	}
	if p := sym.Parent; p != nil && p.Flags&(ast.SymbolNamespace|ast.SymbolEnum) != 0 && p.Flags&ast.SymbolModule == 0 {
		left, _ := b.entityName(p)
		return ast.NewQualifiedName(left, sym.Name), sym
	}
	return ast.NewIdentifier(sym.Name), sym
}
