package treesitter

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/parser"
)

var keywordTypes = map[string]ast.Keyword{
	"any":       ast.KeywordAny,
	"unknown":   ast.KeywordUnknown,
	"never":     ast.KeywordNever,
	"void":      ast.KeywordVoid,
	"undefined": ast.KeywordUndefined,
	"null":      ast.KeywordNull,
	"string":    ast.KeywordString,
	"number":    ast.KeywordNumber,
	"bigint":    ast.KeywordBigInt,
	"boolean":   ast.KeywordBoolean,
	"symbol":    ast.KeywordSymbol,
	"object":    ast.KeywordObject,
	"this":      ast.KeywordThis,
}

// simpleTypes are the node kinds typeNode lowers without delegating.
var simpleTypes = map[string]bool{
	"predefined_type":        true,
	"this_type":              true,
	"type_identifier":        true,
	"nested_type_identifier": true,
	"generic_type":           true,
	"literal_type":           true,
	"union_type":             true,
	"intersection_type":      true,
	"array_type":             true,
	"parenthesized_type":     true,
	"object_type":            true,
	"index_type_query":       true,
	"readonly_type":          true,
	"lookup_type":            true,
	"conditional_type":       true,
	"function_type":          true,
	"tuple_type":             true,
}

func (l *lowerer) typeNode(n *sitter.Node) ast.TypeNode {
	if n == nil {
		return nil
	}
	if !n.HasError() {
		if t := l.lowerType(n); t != nil {
			return t
		}
	}
	return l.fallbackType(n)
}

func (l *lowerer) fallbackType(n *sitter.Node) ast.TypeNode {
	pos, end := l.span(n)
	t, diags := parser.ParseTypeAt(l.file, pos, end)
	l.note(diags)
	return t
}

// lowerType returns nil when n is left to the native parser.
func (l *lowerer) lowerType(n *sitter.Node) ast.TypeNode {
	r := l.textRange(n)
	switch n.Type() {
	case "predefined_type", "this_type":
		if kw, ok := keywordTypes[l.text(n)]; ok {
			return &ast.KeywordType{TextRange: r, Keyword: kw}
		}
	case "type_identifier":
		if _, ok := keywordTypes[l.text(n)]; ok {
			return nil
		}
		return &ast.TypeReference{TextRange: r, TypeName: l.identifier(n)}
	case "nested_type_identifier":
		if name := l.entityName(n); name != nil {
			return &ast.TypeReference{TextRange: r, TypeName: name}
		}
	case "generic_type":
		name, args := l.entityName(field(n, "name")), field(n, "type_arguments")
		if name != nil && args != nil {
			return &ast.TypeReference{TextRange: r, TypeName: name, TypeArguments: l.typeArguments(args)}
		}
	case "literal_type":
		return l.literalType(n)
	case "union_type":
		types := l.flatten(n)
		return &ast.UnionType{TextRange: r, Types: types}
	case "intersection_type":
		types := l.flatten(n)
		if len(types) == 1 {
			return types[0]
		}
		return &ast.IntersectionType{TextRange: r, Types: types}
	case "array_type":
		if elem := firstNamed(n); elem != nil {
			return &ast.ArrayType{TextRange: r, ElementType: l.typeNode(elem)}
		}
	case "parenthesized_type":
		if inner := firstNamed(n); inner != nil {
			return &ast.ParenthesizedType{TextRange: r, Type: l.typeNode(inner)}
		}
	case "object_type":
		if isMappedType(n) {
			return nil
		}
		members := l.typeMembers(n)
		return &ast.TypeLiteral{TextRange: r, Members: members, Multiline: strings.ContainsAny(l.text(n), "\r\n")}
	case "index_type_query":
		if inner := firstNamed(n); inner != nil {
			return &ast.TypeOperator{TextRange: r, Operator: "keyof", Type: l.typeNode(inner)}
		}
	case "readonly_type":
		if inner := firstNamed(n); inner != nil {
			return &ast.TypeOperator{TextRange: r, Operator: "readonly", Type: l.typeNode(inner)}
		}
	case "lookup_type":
		if kids := named(n); len(kids) == 2 {
			return &ast.IndexedAccessType{TextRange: r, ObjectType: l.typeNode(kids[0]), IndexType: l.typeNode(kids[1])}
		}
	case "conditional_type":
		check, ext := field(n, "left"), field(n, "right")
		yes, no := field(n, "consequence"), field(n, "alternative")
		if check == nil || ext == nil || yes == nil || no == nil {
			return nil
		}
		return &ast.ConditionalType{
			TextRange:   r,
			CheckType:   l.typeNode(check),
			ExtendsType: l.typeNode(ext),
			TrueType:    l.typeNode(yes),
			FalseType:   l.typeNode(no),
		}
	case "function_type":
		params, ret := field(n, "parameters"), field(n, "return_type")
		if params == nil || ret == nil {
			return nil
		}
		f := &ast.FunctionType{TextRange: r}
		f.TypeParameters = l.typeParameters(field(n, "type_parameters"))
		f.Parameters = l.parameters(params)
		if ret.Type() == "type_predicate" || ret.Type() == "asserts" {
			f.Type = l.predicate(ret)
		} else {
			f.Type = l.typeNode(ret)
		}
		return f
	case "tuple_type":
		t := &ast.TupleType{TextRange: r}
		for _, el := range named(n) {
			if !simpleTypes[el.Type()] {
				return nil
			}
			t.Elements = append(t.Elements, &ast.TupleElement{TextRange: l.textRange(el), Type: l.typeNode(el)})
		}
		return t
	}
	return nil
}

// flatten collects the operands of a chain of the same binary type operator.
func (l *lowerer) flatten(n *sitter.Node) []ast.TypeNode {
	var out []ast.TypeNode
	for _, c := range named(n) {
		if c.Type() == n.Type() && !c.HasError() {
			out = append(out, l.flatten(c)...)
			continue
		}
		out = append(out, l.typeNode(c))
	}
	return out
}

func (l *lowerer) literalType(n *sitter.Node) ast.TypeNode {
	r := l.textRange(n)
	text := l.text(n)
	switch {
	case text == "true":
		return &ast.LiteralType{TextRange: r, Kind: ast.LiteralTrue, Text: text}
	case text == "false":
		return &ast.LiteralType{TextRange: r, Kind: ast.LiteralFalse, Text: text}
	case text == "null" || text == "undefined":
		return &ast.KeywordType{TextRange: r, Keyword: keywordTypes[text]}
	case strings.HasPrefix(text, `"`) || strings.HasPrefix(text, "'"):
		return &ast.LiteralType{TextRange: r, Kind: ast.LiteralString, Text: unquote(text)}
	}
	if inner := firstNamed(n); inner != nil && inner.Type() == "number" && !strings.HasSuffix(text, "n") {
		return &ast.LiteralType{TextRange: r, Kind: ast.LiteralNumber, Text: text}
	}
	return nil
}

// isMappedType reports whether an object type node is `{ [K in T]: X }`,
// which tree-sitter represents as an index signature over a mapped clause.
func isMappedType(n *sitter.Node) bool {
	for _, c := range named(n) {
		if c.Type() == "index_signature" && childOfType(c, "mapped_type_clause") != nil {
			return true
		}
	}
	return false
}

func (l *lowerer) identifier(n *sitter.Node) *ast.Identifier {
	return &ast.Identifier{TextRange: l.textRange(n), Text: l.text(n)}
}

func (l *lowerer) entityName(n *sitter.Node) ast.EntityName {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier", "type_identifier", "property_identifier":
		return l.identifier(n)
	case "nested_type_identifier", "nested_identifier", "member_expression":
		kids := named(n)
		if len(kids) != 2 {
			return nil
		}
		left := l.entityName(kids[0])
		if left == nil {
			return nil
		}
		return &ast.QualifiedName{TextRange: l.textRange(n), Left: left, Right: l.identifier(kids[1])}
	}
	return nil
}

func (l *lowerer) typeArguments(n *sitter.Node) []ast.TypeNode {
	var out []ast.TypeNode
	for _, c := range named(n) {
		out = append(out, l.typeNode(c))
	}
	return out
}

// annotation lowers a `: T` node.
func (l *lowerer) annotation(n *sitter.Node) ast.TypeNode {
	if n == nil {
		return nil
	}
	if n.Type() == "type_annotation" {
		return l.typeNode(firstNamed(n))
	}
	return l.typeNode(n)
}

// returnType lowers a return type annotation, which may hold a predicate.
func (l *lowerer) returnType(n *sitter.Node) ast.TypeNode {
	if n == nil {
		return nil
	}
	if n.Type() == "type_annotation" {
		return l.annotation(n)
	}
	if inner := firstNamed(n); inner != nil {
		return l.predicate(inner)
	}
	return nil
}

func (l *lowerer) predicate(n *sitter.Node) ast.TypeNode {
	pos, end := l.span(n)
	t, diags := parser.ParseReturnTypeAt(l.file, pos, end)
	l.note(diags)
	return t
}

func (l *lowerer) expression(n *sitter.Node) ast.Expression {
	pos, end := l.span(n)
	e, diags := parser.ParseExpressionAt(l.file, pos, end)
	l.note(diags)
	return e
}

func (l *lowerer) typeParameters(n *sitter.Node) []*ast.TypeParameter {
	if n == nil {
		return nil
	}
	var out []*ast.TypeParameter
	for _, c := range named(n) {
		name := field(c, "name")
		if c.Type() != "type_parameter" || name == nil || hasToken(c, "const") || hasToken(c, "in") || hasToken(c, "out") {
			return l.fallbackTypeParameters(n)
		}
		tp := &ast.TypeParameter{TextRange: l.textRange(c), Name: l.text(name)}
		if constraint := field(c, "constraint"); constraint != nil {
			tp.Constraint = l.typeNode(firstNamed(constraint))
		}
		if def := field(c, "value"); def != nil {
			tp.Default = l.typeNode(firstNamed(def))
		}
		out = append(out, tp)
	}
	return out
}

func (l *lowerer) fallbackTypeParameters(n *sitter.Node) []*ast.TypeParameter {
	pos, end := l.span(n)
	tps, diags := parser.ParseTypeParametersAt(l.file, pos, end)
	l.note(diags)
	return tps
}

func (l *lowerer) parameters(n *sitter.Node) []*ast.Parameter {
	if n == nil {
		return nil
	}
	var out []*ast.Parameter
	for _, c := range named(n) {
		pattern := field(c, "pattern")
		if (c.Type() != "required_parameter" && c.Type() != "optional_parameter") || pattern == nil {
			return l.fallbackParameters(n)
		}
		p := &ast.Parameter{TextRange: l.textRange(c), Optional: c.Type() == "optional_parameter"}
		for _, k := range children(c) {
			switch k.Type() {
			case "accessibility_modifier", "override_modifier", "readonly":
				flag, _ := ast.ModifierFromKeyword(l.text(k))
				p.Modifiers |= flag
			}
		}
		if pattern.Type() == "rest_pattern" {
			p.Rest = true
			p.Name = l.text(firstNamed(pattern))
		} else {
			p.Name = l.text(pattern)
		}
		p.Type = l.annotation(field(c, "type"))
		if value := field(c, "value"); value != nil {
			p.Initializer = l.expression(value)
		}
		out = append(out, p)
	}
	return out
}

func (l *lowerer) fallbackParameters(n *sitter.Node) []*ast.Parameter {
	pos, end := l.span(n)
	params, diags := parser.ParseParametersAt(l.file, pos, end)
	l.note(diags)
	return params
}

// ---------------------------------------------------------------------------
// Members

// typeMembers lowers the members of an interface body or object type.
func (l *lowerer) typeMembers(body *sitter.Node) []ast.TypeElement {
	var out []ast.TypeElement
	for _, c := range children(body) {
		switch c.Type() {
		case "comment":
			l.addComment(c)
			continue
		case "{", "}", "{|", "|}", ",", ";":
			continue
		}
		m := l.typeMember(c)
		if m == nil {
			start := l.fallbackStart(c)
			l.comments = nil
			var diags []ast.Diagnostic
			m, diags = parser.ParseTypeMemberAt(l.file, start, int(c.EndByte()))
			l.note(diags)
		}
		if m != nil {
			out = append(out, m)
		}
	}
	l.comments = nil
	return out
}

// typeMember returns nil, without consuming comments, for members left to
// the native parser.
func (l *lowerer) typeMember(n *sitter.Node) ast.TypeElement {
	if n.HasError() {
		return nil
	}
	switch n.Type() {
	case "property_signature":
		name, ok := l.propertyName(field(n, "name"))
		if !ok {
			return nil
		}
		var mods ast.ModifierFlags
		for _, c := range children(n) {
			switch {
			case c.Type() == "readonly":
				mods |= ast.ModifierReadonly
			case c.Type() == "accessibility_modifier", c.Type() == "override_modifier", c.Type() == "static":
				return nil
			}
		}
		p := &ast.PropertySignature{DeclarationBase: l.base(n, mods), Name: name, Optional: hasToken(n, "?")}
		p.Type = l.annotation(field(n, "type"))
		return p
	case "method_signature":
		name, ok := l.propertyName(field(n, "name"))
		if !ok || hasToken(n, "get") || hasToken(n, "set") || hasToken(n, "async") || hasToken(n, "*") {
			return nil
		}
		params := field(n, "parameters")
		if params == nil {
			return nil
		}
		m := &ast.MethodSignature{DeclarationBase: l.base(n, ast.ModifierNone), Name: name, Optional: hasToken(n, "?")}
		m.TypeParameters = l.typeParameters(field(n, "type_parameters"))
		m.Parameters = l.parameters(params)
		m.Type = l.returnType(field(n, "return_type"))
		return m
	case "call_signature":
		params := field(n, "parameters")
		if params == nil {
			return nil
		}
		s := &ast.CallSignature{DeclarationBase: l.base(n, ast.ModifierNone)}
		s.TypeParameters = l.typeParameters(field(n, "type_parameters"))
		s.Parameters = l.parameters(params)
		s.Type = l.returnType(field(n, "return_type"))
		return s
	case "construct_signature":
		params := field(n, "parameters")
		if params == nil || hasToken(n, "abstract") {
			return nil
		}
		s := &ast.ConstructSignature{DeclarationBase: l.base(n, ast.ModifierNone)}
		s.TypeParameters = l.typeParameters(field(n, "type_parameters"))
		s.Parameters = l.parameters(params)
		s.Type = l.annotation(field(n, "type"))
		return s
	}
	return nil
}

func (l *lowerer) propertyName(n *sitter.Node) (ast.PropertyName, bool) {
	if n == nil {
		return ast.PropertyName{}, false
	}
	switch n.Type() {
	case "property_identifier", "identifier", "type_identifier":
		return ast.PropertyName{Kind: ast.PropertyNameIdentifier, Text: l.text(n)}, true
	case "string":
		return ast.PropertyName{Kind: ast.PropertyNameString, Text: unquote(l.text(n))}, true
	case "number":
		return ast.PropertyName{Kind: ast.PropertyNameNumber, Text: l.text(n)}, true
	case "private_property_identifier":
		return ast.PropertyName{Kind: ast.PropertyNamePrivate, Text: l.text(n)}, true
	}
	return ast.PropertyName{}, false
}
