package checker

import (
	"strconv"
	"strings"

	"github.com/tsgonest/dtsresolve/internal/ast"
)

func (c *Checker) typeFromNode(n ast.TypeNode, m *mapper) *Type {
	if n == nil {
		return c.anyType
	}
	if m.empty() {
		m = nil
		if t, ok := c.nodeTypes[n]; ok {
			return t
		}
	}
	if c.depth >= maxDepth {
		return c.errorType
	}
	c.depth++
	t := c.computeType(n, m)
	c.depth--
	if m == nil {
		c.nodeTypes[n] = t
	}
	return t
}

func (c *Checker) typesFromNodes(nodes []ast.TypeNode, m *mapper) []*Type {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*Type, len(nodes))
	for i, n := range nodes {
		out[i] = c.typeFromNode(n, m)
	}
	return out
}

func (c *Checker) computeType(n ast.TypeNode, m *mapper) *Type {
	switch n := n.(type) {
	case *ast.KeywordType:
		if t := c.intrinsicType(n.Keyword); t != nil {
			return t
		}
		return c.opaqueType(n, m)
	case *ast.LiteralType:
		return c.literalType(n)
	case *ast.TemplateLiteralType:
		return c.templateLiteralType(n, m)
	case *ast.TypeReference:
		return c.referenceFromNode(n, m)
	case *ast.UnionType:
		return c.union(c.typesFromNodes(n.Types, m))
	case *ast.IntersectionType:
		return c.intersection(c.typesFromNodes(n.Types, m))
	case *ast.TypeLiteral:
		return c.anonymousType(c.membersFromElements(n.Members, m))
	case *ast.ArrayType:
		return c.arrayType(c.typeFromNode(n.ElementType, m), false)
	case *ast.TupleType:
		elems := make([]*Type, len(n.Elements))
		info := make([]TupleElementInfo, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = c.typeFromNode(e.Type, m)
			info[i] = TupleElementInfo{Name: e.Name, Optional: e.Optional, Rest: e.Rest}
		}
		return c.tupleType(elems, info, false)
	case *ast.ParenthesizedType:
		return c.typeFromNode(n.Type, m)
	case *ast.FunctionType:
		if n.Abstract {
			return c.opaqueType(n, m)
		}
		kind := MemberCall
		if n.Constructor {
			kind = MemberConstruct
		}
		sig := c.signatureFrom(n.TypeParameters, n.Parameters, n.Type, m)
		return c.anonymousType([]*Member{{Kind: kind, Signature: sig}})
	case *ast.TypeQuery:
		return c.typeQueryType(n, m)
	case *ast.TypeOperator:
		switch n.Operator {
		case "keyof":
			return c.keyofType(c.typeFromNode(n.Type, m), n, m)
		case "readonly":
			inner := c.typeFromNode(n.Type, m)
			if inner.flags&TypeObject != 0 {
				switch inner.objectKind {
				case ObjectArray:
					return c.arrayType(inner.typeArguments[0], true)
				case ObjectTuple:
					return c.tupleType(inner.typeArguments, inner.tuple, true)
				}
			}
			return inner
		}
		return c.opaqueType(n, m)
	case *ast.IndexedAccessType:
		return c.indexedAccessType(c.typeFromNode(n.ObjectType, m), c.typeFromNode(n.IndexType, m), n, m)
	case *ast.ConditionalType:
		return c.conditionalType(n, m)
	case *ast.InferType:
		// Bound by the conditional type once inference has run.
		if sym := c.tpSymbols[n.TypeParameter]; sym != nil {
			if t, ok := m.lookup(sym); ok {
				return t
			}
			return c.typeParameterType(sym)
		}
		return c.opaqueType(n, m)
	case *ast.MappedType:
		return c.mappedType(n, m)
	case *ast.ImportType:
		if n.IsTypeOf || n.Symbol == nil || n.Qualifier == nil {
			return c.opaqueType(n, m)
		}
		return c.declaredTypeOf(c.resolveAliasOrSelf(n.Symbol), c.typesFromNodes(n.TypeArguments, m), n, m)
	}
	return c.opaqueType(n, m)
}

func (c *Checker) literalType(n *ast.LiteralType) *Type {
	switch n.Kind {
	case ast.LiteralString:
		return c.stringLiteral(n.Text)
	case ast.LiteralNumber:
		if v, ok := ParseNumber(n.Text); ok {
			return c.numberLiteral(v)
		}
		return c.numberType
	case ast.LiteralBigInt:
		return c.bigintLiteral(n.Text)
	case ast.LiteralTrue:
		return c.trueType
	case ast.LiteralFalse:
		return c.falseType
	}
	return c.errorType
}

// templateLiteralType folds a template literal type into string literals
// when every placeholder is a literal or a small union of literals.
func (c *Checker) templateLiteralType(n *ast.TemplateLiteralType, m *mapper) *Type {
	if len(n.Spans) == 0 {
		return c.stringLiteral(n.Head)
	}
	const limit = 256
	acc := []string{n.Head}
	for _, span := range n.Spans {
		t := c.typeFromNode(span.Type, m)
		parts := []*Type{t}
		if t.flags&TypeUnion != 0 {
			parts = t.types
		}
		if len(acc)*len(parts) > limit {
			return c.opaqueType(n, m)
		}
		next := make([]string, 0, len(acc)*len(parts))
		for _, prefix := range acc {
			for _, p := range parts {
				if p.flags&TypeLiteral == 0 {
					return c.opaqueType(n, m)
				}
				next = append(next, prefix+p.text+span.Literal)
			}
		}
		acc = next
	}
	types := make([]*Type, len(acc))
	for i, s := range acc {
		types[i] = c.stringLiteral(s)
	}
	return c.union(types)
}

func (c *Checker) referenceFromNode(n *ast.TypeReference, m *mapper) *Type {
	sym := n.Symbol
	if sym == nil {
		return c.opaqueType(n, m)
	}
	if sym.Flags&ast.SymbolTypeParameter != 0 {
		if t, ok := m.lookup(sym); ok {
			return t
		}
		return c.typeParameterType(sym)
	}
	if sym.Flags&ast.SymbolAlias != 0 {
		target := c.resolveAlias(sym)
		if target == nil {
			return c.opaqueType(n, m)
		}
		sym = target
	}
	return c.declaredTypeOf(sym, c.typesFromNodes(n.TypeArguments, m), n, m)
}

// declaredTypeOf is the type a symbol declares, instantiated with args.
func (c *Checker) declaredTypeOf(sym *ast.Symbol, args []*Type, n ast.TypeNode, m *mapper) *Type {
	if sym != nil {
		switch {
		case sym.Flags&ast.SymbolTypeAlias != 0:
			return c.aliasInstantiation(sym, args)
		case sym.Flags&(ast.SymbolInterface|ast.SymbolClass) != 0:
			return c.interfaceReference(sym, args)
		case sym.Flags&ast.SymbolEnum != 0:
			return c.enumType(sym)
		case sym.Flags&ast.SymbolEnumMember != 0:
			return c.enumLiteralType(sym)
		case sym.Flags&ast.SymbolTypeParameter != 0:
			return c.typeParameterType(sym)
		}
	}
	if n == nil {
		return c.errorType
	}
	return c.opaqueType(n, m)
}

func (c *Checker) typeParameterSymbols(tps []*ast.TypeParameter) []*ast.Symbol {
	out := make([]*ast.Symbol, len(tps))
	for i, tp := range tps {
		out[i] = c.tpSymbols[tp]
	}
	return out
}

// fillTypeArguments pads args with the declared defaults, or unknown where a
// parameter has none, and drops surplus arguments.
func (c *Checker) fillTypeArguments(tps []*ast.TypeParameter, args []*Type) []*Type {
	if len(args) >= len(tps) {
		return args[:len(tps)]
	}
	out := append([]*Type(nil), args...)
	for i := len(args); i < len(tps); i++ {
		if tps[i].Default == nil {
			out = append(out, c.unknownType)
			continue
		}
		m := newMapper(nil, c.typeParameterSymbols(tps[:i]), out[:i])
		out = append(out, c.typeFromNode(tps[i].Default, m))
	}
	return out
}

func (c *Checker) declaredTypeParameters(sym *ast.Symbol) []*ast.TypeParameter {
	for _, d := range sym.Declarations {
		if tps := ast.TypeParametersOf(d); len(tps) > 0 {
			return tps
		}
	}
	return nil
}

func firstTypeAlias(sym *ast.Symbol) *ast.TypeAliasDeclaration {
	for _, d := range sym.Declarations {
		if a, ok := d.(*ast.TypeAliasDeclaration); ok {
			return a
		}
	}
	return nil
}

// aliasInstantiation resolves a type alias applied to args. Instantiations
// are cached; a reference met while the same instantiation is still being
// resolved yields a deferred type that prints as the alias reference.
func (c *Checker) aliasInstantiation(sym *ast.Symbol, args []*Type) *Type {
	decl := firstTypeAlias(sym)
	if decl == nil {
		return c.errorType
	}
	args = c.fillTypeArguments(decl.TypeParameters, args)
	key := typeListKey("alias"+strconv.Itoa(sym.ID), args)
	if t, ok := c.aliasTypes[key]; ok {
		return t
	}
	if c.aliasResolving[key] {
		t := c.newType(TypeObject)
		t.objectKind = ObjectDeferred
		t.alias = &AliasTag{Symbol: sym, TypeArguments: args}
		return t
	}
	c.aliasResolving[key] = true
	var m *mapper
	if len(decl.TypeParameters) > 0 {
		m = newMapper(nil, c.typeParameterSymbols(decl.TypeParameters), args)
	}
	body := c.typeFromNode(decl.Type, m)
	delete(c.aliasResolving, key)
	t := c.withAlias(body, sym, args)
	c.aliasTypes[key] = t
	return t
}

// resolveDeferred returns the finished instantiation a deferred type stands
// for, or t itself while it is still unresolved.
func (c *Checker) resolveDeferred(t *Type) *Type {
	if t.flags&TypeObject == 0 || t.objectKind != ObjectDeferred {
		return t
	}
	key := typeListKey("alias"+strconv.Itoa(t.alias.Symbol.ID), t.alias.TypeArguments)
	if r, ok := c.aliasTypes[key]; ok {
		return r
	}
	return t
}

func (c *Checker) isLibSymbol(sym *ast.Symbol, name string) bool {
	return sym.Name == name && sym.File == c.lib && c.globals[name] == sym
}

func (c *Checker) interfaceReference(sym *ast.Symbol, args []*Type) *Type {
	args = c.fillTypeArguments(c.declaredTypeParameters(sym), args)
	switch {
	case c.isLibSymbol(sym, "Array") && len(args) == 1:
		return c.arrayType(args[0], false)
	case c.isLibSymbol(sym, "ReadonlyArray") && len(args) == 1:
		return c.arrayType(args[0], true)
	}
	return c.referenceType(sym, args)
}

func (c *Checker) heritageType(e *ast.ExpressionWithTypeArguments, m *mapper) *Type {
	sym := c.resolveAliasOrSelf(c.heritage[e])
	if sym == nil {
		return c.errorType
	}
	return c.declaredTypeOf(sym, c.typesFromNodes(e.TypeArguments, m), nil, m)
}

func (c *Checker) typeQueryType(n *ast.TypeQuery, m *mapper) *Type {
	sym := c.resolveAliasOrSelf(n.Symbol)
	if sym == nil {
		return c.opaqueType(n, m)
	}
	switch {
	case sym.Flags&ast.SymbolEnumMember != 0:
		return c.enumLiteralType(sym)
	case sym.Flags&(ast.SymbolClass|ast.SymbolEnum|ast.SymbolNamespace|ast.SymbolModule) != 0:
		return c.opaqueType(n, m)
	case sym.Flags&ast.SymbolVariable != 0:
		for _, d := range sym.Declarations {
			if v, ok := d.(*ast.VariableDeclaration); ok {
				if v.Type != nil {
					return c.typeFromNode(v.Type, nil)
				}
				if t := c.initializerType(v); t != nil {
					return t
				}
			}
		}
	case sym.Flags&ast.SymbolFunction != 0:
		var members []*Member
		for _, d := range sym.Declarations {
			if f, ok := d.(*ast.FunctionDeclaration); ok {
				members = append(members, &Member{Kind: MemberCall, Signature: c.signatureFrom(f.TypeParameters, f.Parameters, f.Type, nil), Decl: f})
			}
		}
		if len(members) > 0 {
			return c.anonymousType(members)
		}
	}
	return c.opaqueType(n, m)
}

// initializerType infers the type of an unannotated variable from a literal
// initializer: the literal itself for const declarations, its primitive
// otherwise.
func (c *Checker) initializerType(v *ast.VariableDeclaration) *Type {
	if v.Initializer == nil {
		return nil
	}
	var lit *Type
	switch e := v.Initializer.(type) {
	case *ast.StringLiteral:
		lit = c.stringLiteral(e.Text)
	case *ast.NumericLiteral:
		if strings.HasSuffix(e.Text, "n") {
			lit = c.bigintLiteral(e.Text)
		} else if n, ok := ParseNumber(e.Text); ok {
			lit = c.numberLiteral(n)
		}
	case *ast.PrefixUnaryExpression:
		if num, ok := e.Operand.(*ast.NumericLiteral); ok && e.Operator == "-" {
			if n, ok := ParseNumber(num.Text); ok {
				lit = c.numberLiteral(-n)
			}
		}
	case *ast.KeywordExpression:
		switch e.Keyword {
		case "true":
			lit = c.trueType
		case "false":
			lit = c.falseType
		case "null":
			return c.nullType
		case "undefined":
			return c.undefinedType
		}
	}
	if lit == nil {
		return nil
	}
	if c.constVars[v] {
		return lit
	}
	return c.widen(lit)
}

func (c *Checker) widen(t *Type) *Type {
	switch t.flags {
	case TypeStringLiteral:
		return c.stringType
	case TypeNumberLiteral:
		return c.numberType
	case TypeBigIntLiteral:
		return c.bigintType
	case TypeBooleanLiteral:
		return c.booleanType
	}
	return t
}

func (c *Checker) signatureFrom(tps []*ast.TypeParameter, params []*ast.Parameter, ret ast.TypeNode, m *mapper) *Signature {
	sig := &Signature{}
	for _, tp := range tps {
		info := &TypeParameterInfo{Name: tp.Name, Symbol: c.tpSymbols[tp], Modifiers: tp.Modifiers}
		if tp.Constraint != nil {
			info.Constraint = c.typeFromNode(tp.Constraint, m)
		}
		if tp.Default != nil {
			info.Default = c.typeFromNode(tp.Default, m)
		}
		sig.TypeParameters = append(sig.TypeParameters, info)
	}
	for _, p := range params {
		info := &ParameterInfo{
			Name:      p.Name,
			Modifiers: p.Modifiers,
			Optional:  p.Optional || p.Initializer != nil,
			Rest:      p.Rest,
		}
		if p.Type != nil {
			info.Type = c.typeFromNode(p.Type, m)
		}
		sig.Parameters = append(sig.Parameters, info)
	}
	if ret != nil {
		sig.Return = c.typeFromNode(ret, m)
	}
	return sig
}
