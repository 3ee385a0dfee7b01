package parser

import (
	"strings"

	"github.com/tsgonest/dtsresolve/internal/ast"
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
}

// parseType parses a full type, including function and conditional types.
func (p *Parser) parseType() ast.TypeNode {
	return p.parseTypeWorker(false)
}

func (p *Parser) parseTypeWorker(noConditional bool) ast.TypeNode {
	if p.isStartOfFunctionType() {
		return p.parseFunctionType(false, false)
	}
	if p.isKeyword("new") {
		return p.parseFunctionType(true, false)
	}
	if p.isKeyword("abstract") && p.nextIs(func() bool { return p.isKeyword("new") }) {
		p.next()
		return p.parseFunctionType(true, true)
	}
	start := p.s.TokenPos()
	t := p.parseUnionType()
	if !noConditional && p.isKeyword("extends") && !p.s.HasPrecedingNewline() {
		p.next()
		c := &ast.ConditionalType{CheckType: t}
		c.ExtendsType = p.parseTypeWorker(true)
		p.expect("?")
		c.TrueType = p.parseType()
		p.expect(":")
		c.FalseType = p.parseType()
		c.TextRange = p.finish(start)
		return c
	}
	return t
}

func (p *Parser) parseFunctionType(constructor, abstract bool) ast.TypeNode {
	start := p.s.TokenPos()
	if constructor {
		p.expectKeyword("new")
	}
	f := &ast.FunctionType{Constructor: constructor, Abstract: abstract}
	f.TypeParameters = p.parseTypeParameters()
	f.Parameters = p.parseParameters()
	p.expect("=>")
	f.Type = p.parseReturnType()
	f.TextRange = p.finish(start)
	return f
}

func (p *Parser) isStartOfFunctionType() bool {
	if p.is("<") {
		return true
	}
	if !p.is("(") {
		return false
	}
	return p.lookAhead(func() bool {
		p.next()
		if p.is(")") || p.is("...") {
			return true
		}
		if p.is("{") || p.is("[") {
			p.skipBalanced()
		} else if p.isIdentifier() {
			p.next()
		} else {
			return false
		}
		if p.is(":") || p.is(",") || p.is("?") || p.is("=") {
			return true
		}
		if p.is(")") {
			p.next()
			return p.is("=>")
		}
		return false
	})
}

func (p *Parser) parseUnionType() ast.TypeNode {
	start := p.s.TokenPos()
	leading := p.eat("|")
	t := p.parseIntersectionType()
	if !p.is("|") {
		if leading {
			return &ast.UnionType{TextRange: p.finish(start), Types: []ast.TypeNode{t}}
		}
		return t
	}
	types := []ast.TypeNode{t}
	for p.eat("|") {
		types = append(types, p.parseIntersectionType())
	}
	return &ast.UnionType{TextRange: p.finish(start), Types: types}
}

func (p *Parser) parseIntersectionType() ast.TypeNode {
	start := p.s.TokenPos()
	p.eat("&")
	t := p.parseTypeOperator()
	if !p.is("&") {
		return t
	}
	types := []ast.TypeNode{t}
	for p.eat("&") {
		types = append(types, p.parseTypeOperator())
	}
	return &ast.IntersectionType{TextRange: p.finish(start), Types: types}
}

func (p *Parser) parseTypeOperator() ast.TypeNode {
	start := p.s.TokenPos()
	switch {
	case p.isKeyword("keyof") || p.isKeyword("unique") || p.isKeyword("readonly"):
		if p.nextIs(func() bool { return p.isStartOfType() }) {
			op := p.s.TokenText()
			p.next()
			return &ast.TypeOperator{Operator: op, Type: p.parseTypeOperator(), TextRange: p.finish(start)}
		}
	case p.isKeyword("infer"):
		if p.nextIs(func() bool { return p.isIdentifier() }) {
			p.next()
			tpStart := p.s.TokenPos()
			tp := &ast.TypeParameter{Name: p.parseIdentifierName()}
			if p.isKeyword("extends") && p.lookAhead(func() bool {
				// `infer U extends X ? A : B` binds the constraint only when no
				// conditional follows it directly.
				p.next()
				p.parseTypeWorker(true)
				return !p.is("?")
			}) {
				p.next()
				tp.Constraint = p.parseTypeWorker(true)
			}
			tp.TextRange = p.finish(tpStart)
			return &ast.InferType{TypeParameter: tp, TextRange: p.finish(start)}
		}
	}
	return p.parsePostfixType()
}

func (p *Parser) isStartOfType() bool {
	switch p.s.Token() {
	case TokenIdentifier, TokenString, TokenNumber, TokenBigInt, TokenNoSubstitutionTemplate, TokenTemplateHead:
		return true
	case TokenPunct:
		switch p.s.TokenText() {
		case "(", "[", "{", "<", "|", "&", "-":
			return true
		}
	}
	return false
}

func (p *Parser) parsePostfixType() ast.TypeNode {
	start := p.s.TokenPos()
	t := p.parsePrimaryType()
	for !p.s.HasPrecedingNewline() {
		switch {
		case p.is("!"):
			p.next()
		case p.is("["):
			p.next()
			if p.eat("]") {
				t = &ast.ArrayType{ElementType: t, TextRange: p.finish(start)}
				continue
			}
			index := p.parseType()
			p.expect("]")
			t = &ast.IndexedAccessType{ObjectType: t, IndexType: index, TextRange: p.finish(start)}
		default:
			return t
		}
	}
	return t
}

func (p *Parser) parsePrimaryType() ast.TypeNode {
	start := p.s.TokenPos()
	switch p.s.Token() {
	case TokenString:
		text := p.s.TokenText()
		p.next()
		return &ast.LiteralType{Kind: ast.LiteralString, Text: text, TextRange: p.finish(start)}
	case TokenNumber:
		text := p.s.TokenText()
		p.next()
		return &ast.LiteralType{Kind: ast.LiteralNumber, Text: text, TextRange: p.finish(start)}
	case TokenBigInt:
		text := p.s.TokenText()
		p.next()
		return &ast.LiteralType{Kind: ast.LiteralBigInt, Text: text, TextRange: p.finish(start)}
	case TokenNoSubstitutionTemplate:
		text := p.s.TokenText()
		p.next()
		return &ast.TemplateLiteralType{Head: text, TextRange: p.finish(start)}
	case TokenTemplateHead:
		return p.parseTemplateLiteralType()
	case TokenIdentifier:
		return p.parseIdentifierType()
	case TokenPunct:
		switch p.s.TokenText() {
		case "(":
			p.next()
			inner := p.parseType()
			p.expect(")")
			return &ast.ParenthesizedType{Type: inner, TextRange: p.finish(start)}
		case "{":
			if p.isStartOfMappedType() {
				return p.parseMappedType()
			}
			members, multiline := p.parseObjectMembers()
			return &ast.TypeLiteral{Members: members, Multiline: multiline, TextRange: p.finish(start)}
		case "[":
			return p.parseTupleType()
		case "-":
			if p.nextIs(func() bool { return p.s.Token() == TokenNumber || p.s.Token() == TokenBigInt }) {
				p.next()
				kind := ast.LiteralNumber
				if p.s.Token() == TokenBigInt {
					kind = ast.LiteralBigInt
				}
				text := "-" + p.s.TokenText()
				p.next()
				return &ast.LiteralType{Kind: kind, Text: text, TextRange: p.finish(start)}
			}
		case "?":
			p.next()
			return p.parsePrimaryType()
		}
	}
	p.errorAtCurrent(ast.CodeTypeExpected, "Type expected.")
	return &ast.KeywordType{Keyword: ast.KeywordAny, TextRange: p.finish(start)}
}

func (p *Parser) parseIdentifierType() ast.TypeNode {
	start := p.s.TokenPos()
	text := p.s.TokenText()
	if kw, ok := keywordTypes[text]; ok && !p.nextIsPunct(".") {
		p.next()
		return &ast.KeywordType{Keyword: kw, TextRange: p.finish(start)}
	}
	switch text {
	case "true", "false":
		p.next()
		kind := ast.LiteralTrue
		if text == "false" {
			kind = ast.LiteralFalse
		}
		return &ast.LiteralType{Kind: kind, Text: text, TextRange: p.finish(start)}
	case "this":
		p.next()
		return &ast.KeywordType{Keyword: ast.KeywordThis, TextRange: p.finish(start)}
	case "typeof":
		p.next()
		if p.isKeyword("import") {
			return p.parseImportType(start, true)
		}
		q := &ast.TypeQuery{ExprName: p.parseEntityName()}
		if p.is("<") && !p.s.HasPrecedingNewline() {
			q.TypeArguments = p.parseTypeArguments()
		}
		q.TextRange = p.finish(start)
		return q
	case "import":
		if p.nextIsPunct("(") {
			return p.parseImportType(start, false)
		}
	}
	ref := &ast.TypeReference{TypeName: p.parseEntityName()}
	if p.is("<") && !p.s.HasPrecedingNewline() {
		ref.TypeArguments = p.parseTypeArguments()
	}
	ref.TextRange = p.finish(start)
	return ref
}

func (p *Parser) parseImportType(start int, isTypeOf bool) ast.TypeNode {
	p.expectKeyword("import")
	t := &ast.ImportType{IsTypeOf: isTypeOf}
	p.expect("(")
	t.Argument = p.parseStringLiteral()
	if p.eat(",") && p.is("{") {
		p.skipBalanced()
	}
	p.expect(")")
	if p.eat(".") {
		t.Qualifier = p.parseEntityName()
	}
	if p.is("<") && !p.s.HasPrecedingNewline() {
		t.TypeArguments = p.parseTypeArguments()
	}
	t.TextRange = p.finish(start)
	return t
}

func (p *Parser) parseEntityName() ast.EntityName {
	start := p.s.TokenPos()
	var name ast.EntityName = p.parseIdentifier()
	for p.is(".") {
		p.next()
		right := p.parseIdentifier()
		name = &ast.QualifiedName{Left: name, Right: right, TextRange: p.finish(start)}
	}
	return name
}

func (p *Parser) parseTemplateLiteralType() ast.TypeNode {
	start := p.s.TokenPos()
	t := &ast.TemplateLiteralType{Head: p.s.TokenText()}
	for {
		p.next()
		span := &ast.TemplateSpan{Type: p.parseType()}
		if !p.is("}") {
			p.errorAtCurrent(ast.CodeExpected, "'}' expected.")
			t.Spans = append(t.Spans, span)
			break
		}
		tok := p.s.RescanTemplateContinuation()
		span.Literal = p.s.TokenText()
		t.Spans = append(t.Spans, span)
		if tok == TokenTemplateTail {
			p.next()
			break
		}
	}
	t.TextRange = p.finish(start)
	return t
}

func (p *Parser) parseTupleType() ast.TypeNode {
	start := p.s.TokenPos()
	p.expect("[")
	t := &ast.TupleType{}
	for !p.is("]") && p.s.Token() != TokenEOF {
		eStart := p.s.TokenPos()
		e := &ast.TupleElement{}
		e.Rest = p.eat("...")
		if p.isIdentifier() && p.nextIs(func() bool { return p.is(":") || (p.is("?") && p.nextIsPunct(":")) }) {
			e.Name = p.parseIdentifierName()
			e.Optional = p.eat("?")
			p.expect(":")
			e.Rest = p.eat("...") || e.Rest
			e.Type = p.parseType()
		} else {
			e.Type = p.parseType()
			if p.is("?") && p.nextIsPunct(",", "]") {
				p.next()
				e.Optional = true
			}
		}
		e.TextRange = p.finish(eStart)
		t.Elements = append(t.Elements, e)
		if !p.eat(",") {
			break
		}
	}
	p.expect("]")
	t.TextRange = p.finish(start)
	return t
}

func (p *Parser) isStartOfMappedType() bool {
	return p.lookAhead(func() bool {
		p.next()
		if p.is("+") || p.is("-") {
			p.next()
			return p.isKeyword("readonly")
		}
		if p.isKeyword("readonly") {
			p.next()
		}
		if !p.eat("[") || !p.isIdentifier() {
			return false
		}
		p.next()
		return p.isKeyword("in")
	})
}

func (p *Parser) parseMappedType() ast.TypeNode {
	start := p.s.TokenPos()
	p.expect("{")
	m := &ast.MappedType{}
	if p.is("+") || p.is("-") {
		m.ReadonlyToken = p.s.TokenText()
		p.next()
		p.expectKeyword("readonly")
		m.ReadonlyToken += "readonly"
	} else if p.eatKeyword("readonly") {
		m.ReadonlyToken = "readonly"
	}
	p.expect("[")
	tpStart := p.s.TokenPos()
	tp := &ast.TypeParameter{Name: p.parseIdentifierName()}
	p.expectKeyword("in")
	tp.Constraint = p.parseType()
	tp.TextRange = p.finish(tpStart)
	m.TypeParameter = tp
	if p.eatKeyword("as") {
		m.NameType = p.parseType()
	}
	p.expect("]")
	switch {
	case p.is("+") || p.is("-"):
		m.QuestionToken = p.s.TokenText() + "?"
		p.next()
		p.expect("?")
	case p.eat("?"):
		m.QuestionToken = "?"
	}
	if p.eat(":") {
		m.Type = p.parseType()
	}
	if !p.eat(";") {
		p.eat(",")
	}
	p.expect("}")
	m.TextRange = p.finish(start)
	m.Multiline = strings.ContainsAny(p.file.Text[start:p.lastEnd], "\r\n")
	return m
}

func (p *Parser) parseTypeArguments() []ast.TypeNode {
	var args []ast.TypeNode
	p.expect("<")
	for !p.is(">") && p.s.Token() != TokenEOF {
		args = append(args, p.parseType())
		if !p.eat(",") {
			break
		}
	}
	p.expect(">")
	return args
}

func (p *Parser) parseTypeParameters() []*ast.TypeParameter {
	if !p.is("<") {
		return nil
	}
	p.next()
	var out []*ast.TypeParameter
	for !p.is(">") && p.s.Token() != TokenEOF {
		start := p.s.TokenPos()
		tp := &ast.TypeParameter{}
		for (p.isKeyword("const") || p.isKeyword("in") || p.isKeyword("out")) && p.nextIs(func() bool { return p.isIdentifier() }) {
			flag, _ := ast.ModifierFromKeyword(p.s.TokenText())
			tp.Modifiers |= flag
			p.next()
		}
		tp.Name = p.parseIdentifierName()
		if p.eatKeyword("extends") {
			tp.Constraint = p.parseType()
		}
		if p.eat("=") {
			tp.Default = p.parseType()
		}
		tp.TextRange = p.finish(start)
		out = append(out, tp)
		if !p.eat(",") {
			break
		}
	}
	p.expect(">")
	return out
}

// parseReturnType parses a return type annotation, including type predicates.
func (p *Parser) parseReturnType() ast.TypeNode {
	start := p.s.TokenPos()
	if p.isKeyword("asserts") && p.nextIs(func() bool { return p.isIdentifier() && !p.s.HasPrecedingNewline() }) {
		p.next()
		pred := &ast.TypePredicate{Asserts: true, ParameterName: p.parseIdentifierName()}
		if p.eatKeyword("is") {
			pred.Type = p.parseType()
		}
		pred.TextRange = p.finish(start)
		return pred
	}
	if p.isIdentifier() && p.nextIs(func() bool { return p.isKeyword("is") && !p.s.HasPrecedingNewline() }) {
		name := p.parseIdentifierName()
		p.next()
		return &ast.TypePredicate{ParameterName: name, Type: p.parseType(), TextRange: p.finish(start)}
	}
	return p.parseType()
}

func (p *Parser) parseParameters() []*ast.Parameter {
	var out []*ast.Parameter
	if !p.expect("(") {
		return nil
	}
	for !p.is(")") && p.s.Token() != TokenEOF {
		p.s.TakeComments()
		start := p.s.TokenPos()
		p.skipDecorators()
		param := &ast.Parameter{}
		param.Modifiers = p.parseParameterModifiers()
		param.Rest = p.eat("...")
		param.Name = p.parseBindingName()
		param.Optional = p.eat("?")
		if p.eat(":") {
			param.Type = p.parseType()
		}
		if p.eat("=") {
			param.Initializer = p.parseAssignmentExpression()
		}
		param.TextRange = p.finish(start)
		out = append(out, param)
		if !p.eat(",") {
			break
		}
	}
	p.expect(")")
	return out
}

func (p *Parser) parseParameterModifiers() ast.ModifierFlags {
	var mods ast.ModifierFlags
	for p.isIdentifier() {
		switch p.s.TokenText() {
		case "public", "private", "protected", "readonly", "override":
		default:
			return mods
		}
		if !p.nextIs(func() bool { return p.isIdentifier() || p.is("{") || p.is("[") || p.is("...") }) {
			return mods
		}
		flag, _ := ast.ModifierFromKeyword(p.s.TokenText())
		mods |= flag
		p.next()
	}
	return mods
}

// ---------------------------------------------------------------------------
// Members

func (p *Parser) parsePropertyName() ast.PropertyName {
	switch p.s.Token() {
	case TokenString:
		return ast.PropertyName{Kind: ast.PropertyNameString, Text: p.parseStringLiteral()}
	case TokenNumber, TokenBigInt:
		text := p.s.TokenText()
		p.next()
		return ast.PropertyName{Kind: ast.PropertyNameNumber, Text: text}
	case TokenPrivateName:
		text := p.s.TokenText()
		p.next()
		return ast.PropertyName{Kind: ast.PropertyNamePrivate, Text: text}
	case TokenPunct:
		if p.is("[") {
			p.next()
			expr := p.parseAssignmentExpression()
			p.expect("]")
			return ast.PropertyName{Kind: ast.PropertyNameComputed, Expr: expr}
		}
	}
	return ast.PropertyName{Kind: ast.PropertyNameIdentifier, Text: p.parseIdentifierName()}
}

func (p *Parser) isStartOfIndexSignature() bool {
	if !p.is("[") {
		return false
	}
	return p.lookAhead(func() bool {
		p.next()
		if !p.isIdentifier() {
			return false
		}
		p.next()
		return p.is(":") || p.is(",")
	})
}

// parseObjectMembers parses `{ members }` of an interface or type literal and
// reports whether the braces span multiple lines.
func (p *Parser) parseObjectMembers() ([]ast.TypeElement, bool) {
	start := p.s.TokenPos()
	if !p.expect("{") {
		return nil, false
	}
	var members []ast.TypeElement
	for !p.is("}") && p.s.Token() != TokenEOF {
		before := p.s.TokenPos()
		if m := p.parseTypeMember(); m != nil {
			members = append(members, m)
		}
		if !p.eat(";") {
			p.eat(",")
		}
		if p.s.TokenPos() == before {
			p.errorAtCurrent(ast.CodeExpected, "Property or signature expected.")
			p.next()
		}
	}
	p.expect("}")
	return members, strings.ContainsAny(p.file.Text[start:p.lastEnd], "\r\n")
}

func (p *Parser) parseTypeMember() ast.TypeElement {
	comments := p.s.TakeComments()
	start := p.s.TokenPos()
	base := ast.DeclarationBase{Comments: comments}
	if p.is("(") || p.is("<") {
		s := &ast.CallSignature{DeclarationBase: base}
		s.TypeParameters, s.Parameters, s.Type = p.parseSignature()
		s.TextRange = p.finish(start)
		return s
	}
	if p.isKeyword("new") && p.nextIsPunct("(", "<") {
		p.next()
		s := &ast.ConstructSignature{DeclarationBase: base}
		s.TypeParameters, s.Parameters, s.Type = p.parseSignature()
		s.TextRange = p.finish(start)
		return s
	}
	if p.isKeyword("readonly") && p.nextIs(func() bool { return p.isPropertyNameStart() }) {
		p.next()
		base.Modifiers |= ast.ModifierReadonly
	}
	if p.isStartOfIndexSignature() {
		return p.parseIndexSignature(start, base)
	}
	if (p.isKeyword("get") || p.isKeyword("set")) && p.nextIs(func() bool { return p.isPropertyNameStart() }) {
		return p.parseAccessor(start, base)
	}
	name := p.parsePropertyName()
	optional := p.eat("?")
	if p.is("(") || p.is("<") {
		m := &ast.MethodSignature{DeclarationBase: base, Name: name, Optional: optional}
		m.TypeParameters, m.Parameters, m.Type = p.parseSignature()
		m.TextRange = p.finish(start)
		return m
	}
	prop := &ast.PropertySignature{DeclarationBase: base, Name: name, Optional: optional}
	if p.eat(":") {
		prop.Type = p.parseType()
	}
	if p.is("=") {
		p.next()
		p.parseAssignmentExpression()
	}
	prop.TextRange = p.finish(start)
	return prop
}

func (p *Parser) isPropertyNameStart() bool {
	switch p.s.Token() {
	case TokenIdentifier, TokenString, TokenNumber, TokenBigInt, TokenPrivateName:
		return true
	}
	return p.is("[")
}

func (p *Parser) parseSignature() ([]*ast.TypeParameter, []*ast.Parameter, ast.TypeNode) {
	tps := p.parseTypeParameters()
	params := p.parseParameters()
	var ret ast.TypeNode
	if p.eat(":") {
		ret = p.parseReturnType()
	}
	return tps, params, ret
}

func (p *Parser) parseIndexSignature(start int, base ast.DeclarationBase) *ast.IndexSignature {
	s := &ast.IndexSignature{DeclarationBase: base}
	p.expect("[")
	for !p.is("]") && p.s.Token() != TokenEOF {
		pStart := p.s.TokenPos()
		param := &ast.Parameter{Name: p.parseIdentifierName()}
		if p.eat(":") {
			param.Type = p.parseType()
		}
		param.TextRange = p.finish(pStart)
		s.Parameters = append(s.Parameters, param)
		if !p.eat(",") {
			break
		}
	}
	p.expect("]")
	if p.eat(":") {
		s.Type = p.parseType()
	}
	s.TextRange = p.finish(start)
	return s
}

func (p *Parser) parseAccessor(start int, base ast.DeclarationBase) *ast.AccessorDeclaration {
	a := &ast.AccessorDeclaration{DeclarationBase: base, Kind: ast.AccessorGet}
	if p.isKeyword("set") {
		a.Kind = ast.AccessorSet
	}
	p.next()
	a.Name = p.parsePropertyName()
	p.parseTypeParameters()
	a.Parameters = p.parseParameters()
	if p.eat(":") {
		a.Type = p.parseType()
	}
	p.parseFunctionBodyOrSemicolon()
	a.TextRange = p.finish(start)
	return a
}

func (p *Parser) parseClassMembers() []ast.ClassElement {
	var members []ast.ClassElement
	if !p.expect("{") {
		return nil
	}
	for !p.is("}") && p.s.Token() != TokenEOF {
		before := p.s.TokenPos()
		if m := p.parseClassMember(); m != nil {
			members = append(members, m)
		}
		if p.s.TokenPos() == before {
			p.errorAtCurrent(ast.CodeExpected, "Unexpected token. A constructor, method, accessor, or property was expected.")
			p.next()
		}
	}
	p.expect("}")
	return members
}

func (p *Parser) parseClassMember() ast.ClassElement {
	comments := p.s.TakeComments()
	start := p.s.TokenPos()
	if p.eat(";") {
		return nil
	}
	p.skipDecorators()
	if p.isKeyword("static") && p.nextIsPunct("{") {
		p.next()
		p.skipBalanced()
		return nil
	}
	base := ast.DeclarationBase{Comments: comments, Modifiers: p.parseModifiers(true)}
	if p.isStartOfIndexSignature() {
		s := p.parseIndexSignature(start, base)
		p.parseSemicolon()
		return s
	}
	if (p.isKeyword("get") || p.isKeyword("set")) && p.nextIs(func() bool { return p.isPropertyNameStart() }) {
		return p.parseAccessor(start, base)
	}
	if p.isKeyword("constructor") && p.nextIsPunct("(") {
		p.next()
		c := &ast.ConstructorDeclaration{DeclarationBase: base}
		p.parseTypeParameters()
		c.Parameters = p.parseParameters()
		p.parseFunctionBodyOrSemicolon()
		c.TextRange = p.finish(start)
		return c
	}
	p.eat("*")
	name := p.parsePropertyName()
	optional := p.eat("?")
	if p.is("(") || p.is("<") {
		m := &ast.MethodDeclaration{DeclarationBase: base, Name: name, Optional: optional}
		m.TypeParameters, m.Parameters, m.Type = p.parseSignature()
		p.parseFunctionBodyOrSemicolon()
		m.TextRange = p.finish(start)
		return m
	}
	prop := &ast.PropertyDeclaration{DeclarationBase: base, Name: name, Optional: optional}
	prop.Exclamation = !optional && p.eat("!")
	if p.eat(":") {
		prop.Type = p.parseType()
	}
	if p.eat("=") {
		prop.Initializer = p.parseAssignmentExpression()
	}
	p.parseSemicolon()
	prop.TextRange = p.finish(start)
	return prop
}

// ---------------------------------------------------------------------------
// Expressions

var binaryPrecedence = map[string]int{
	"??": 1, "||": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6, "===": 6, "!==": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7,
	"<<": 8, ">>": 8, ">>>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
	"**": 11,
}

// parseExpression parses an initializer-level expression.
func (p *Parser) parseExpression() ast.Expression {
	return p.parseAssignmentExpression()
}

// parseAssignmentExpression parses the constant-expression subset used by
// enum members and initializers; anything else is captured as raw text.
func (p *Parser) parseAssignmentExpression() ast.Expression {
	start := p.s.TokenPos()
	diags := len(p.diags)
	if p.isArrowFunctionStart() {
		return p.parseRawExpression(start)
	}
	e := p.parseBinaryExpression(0)
	if e == nil || p.is("?") || p.is("=") || p.is("=>") {
		p.diags = p.diags[:diags]
		return p.parseRawExpression(start)
	}
	return e
}

func (p *Parser) isArrowFunctionStart() bool {
	if p.isKeyword("async") && p.nextIs(func() bool { return p.is("(") || p.isIdentifier() }) {
		return true
	}
	if p.isIdentifier() && p.nextIsPunct("=>") {
		return true
	}
	if !p.is("(") && !p.is("<") {
		return false
	}
	return p.lookAhead(func() bool {
		if p.is("<") {
			return true
		}
		p.skipBalanced()
		return p.is("=>") || p.is(":")
	})
}

func (p *Parser) parseBinaryExpression(minPrec int) ast.Expression {
	start := p.s.TokenPos()
	left := p.parseUnaryExpression()
	if left == nil {
		return nil
	}
	for {
		if p.is(">") {
			p.s.RescanGreater()
		}
		op := p.s.TokenText()
		prec, ok := binaryPrecedence[op]
		if p.s.Token() != TokenPunct || !ok || prec <= minPrec {
			if p.s.Token() == TokenIdentifier && (op == "instanceof" || op == "in" || op == "as" || op == "satisfies") {
				return nil
			}
			return left
		}
		p.next()
		next := prec
		if op == "**" {
			next = prec - 1
		}
		right := p.parseBinaryExpression(next)
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpression{Left: left, Operator: op, Right: right, TextRange: p.finish(start)}
	}
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	start := p.s.TokenPos()
	switch {
	case p.is("-") || p.is("+") || p.is("~") || p.is("!"):
		op := p.s.TokenText()
		p.next()
		operand := p.parseUnaryExpression()
		if operand == nil {
			return nil
		}
		return &ast.PrefixUnaryExpression{Operator: op, Operand: operand, TextRange: p.finish(start)}
	case p.isKeyword("typeof") || p.isKeyword("void"):
		return nil
	}
	return p.parseLeftHandSide(false)
}

// parseLeftHandSide parses a primary expression followed by property
// accesses and calls. In heritage position a call may introduce a mixin.
func (p *Parser) parseLeftHandSide(heritage bool) ast.Expression {
	start := p.s.TokenPos()
	var e ast.Expression
	switch p.s.Token() {
	case TokenNumber, TokenBigInt:
		e = &ast.NumericLiteral{Text: p.s.TokenText()}
		p.next()
	case TokenString:
		e = &ast.StringLiteral{Text: p.s.TokenText()}
		p.next()
	case TokenIdentifier:
		switch text := p.s.TokenText(); text {
		case "true", "false", "null", "this":
			e = &ast.KeywordExpression{Keyword: text}
			p.next()
		case "new", "function", "class", "await", "yield", "delete":
			if !heritage {
				return nil
			}
			e = p.parseIdentifier()
		default:
			e = p.parseIdentifier()
		}
	case TokenPunct:
		if !p.is("(") {
			return nil
		}
		p.next()
		inner := p.parseAssignmentExpression()
		if !p.expect(")") {
			return nil
		}
		e = &ast.ParenthesizedExpression{Expression: inner}
	default:
		return nil
	}
	setRange(e, p.finish(start))
	for {
		switch {
		case p.is("."):
			p.next()
			name := p.parseIdentifier()
			e = &ast.PropertyAccessExpression{Expression: e, Name: name, TextRange: p.finish(start)}
		case p.is("(") && !p.s.HasPrecedingNewline():
			call := &ast.CallExpression{Expression: e}
			p.next()
			for !p.is(")") && p.s.Token() != TokenEOF {
				arg := p.parseAssignmentExpression()
				call.Arguments = append(call.Arguments, arg)
				if !p.eat(",") {
					break
				}
			}
			p.expect(")")
			call.TextRange = p.finish(start)
			e = call
		case p.is("[") || p.is("?.") || p.s.Token() == TokenNoSubstitutionTemplate || p.s.Token() == TokenTemplateHead:
			if heritage {
				return e
			}
			return nil
		default:
			return e
		}
	}
}

func setRange(e ast.Expression, r ast.TextRange) {
	switch e := e.(type) {
	case *ast.NumericLiteral:
		e.TextRange = r
	case *ast.StringLiteral:
		e.TextRange = r
	case *ast.KeywordExpression:
		e.TextRange = r
	case *ast.Identifier:
		e.TextRange = r
	case *ast.ParenthesizedExpression:
		e.TextRange = r
	}
}

// parseRawExpression rewinds to start and captures the expression source up
// to the next separator at bracket depth zero.
func (p *Parser) parseRawExpression(start int) ast.Expression {
	if p.s.TokenPos() != start {
		p.s.pos = start
		p.s.Scan()
	}
	first := true
	for p.s.Token() != TokenEOF {
		if p.is(",") || p.is(";") || p.is(")") || p.is("]") || p.is("}") {
			break
		}
		if !first && p.s.HasPrecedingNewline() && !p.isContinuationToken() {
			break
		}
		switch {
		case p.is("{") || p.is("(") || p.is("["):
			p.skipBalanced()
		case p.s.Token() == TokenTemplateHead:
			p.skipTemplateExpression()
		default:
			p.next()
		}
		first = false
	}
	text := strings.TrimSpace(p.file.Text[start:max(p.lastEnd, start)])
	return &ast.RawExpression{Text: text, TextRange: p.finish(start)}
}

// isContinuationToken reports whether a token on a new line continues the
// previous expression.
func (p *Parser) isContinuationToken() bool {
	if p.s.Token() != TokenPunct {
		return false
	}
	switch p.s.TokenText() {
	case "(", "[", "@":
		return false
	}
	return true
}
