// Package parser is a recursive-descent parser for TypeScript declaration
// syntax: the type-level constructs and declaration shapes found in .d.ts
// files. Function and method bodies are skipped; arbitrary expressions are
// kept as raw text.
package parser

import (
	"strings"

	"github.com/tsgonest/dtsresolve/internal/ast"
)

// ParseSourceFile parses text as the module fileName. It always returns a
// file; syntax errors are reported as diagnostics and parsing resumes at the
// next statement.
func ParseSourceFile(fileName, text string) (*ast.SourceFile, []ast.Diagnostic) {
	p := &Parser{file: ast.NewSourceFile(fileName, text)}
	p.s = NewScanner(text, p.errorAt)
	return p.parseSourceFile(), p.diags
}

// IsDeclarationFileName reports whether name has a declaration file extension.
func IsDeclarationFileName(name string) bool {
	return strings.HasSuffix(name, ".d.ts") || strings.HasSuffix(name, ".d.mts") || strings.HasSuffix(name, ".d.cts")
}

// Parser holds the state of one parse.
type Parser struct {
	s       *Scanner
	file    *ast.SourceFile
	diags   []ast.Diagnostic
	lastEnd int
}

func (p *Parser) parseSourceFile() *ast.SourceFile {
	f := p.file
	f.IsDeclarationFile = IsDeclarationFileName(f.FileName)
	p.next()
	f.Statements = p.parseStatements(false)
	f.EndComments = p.s.TakeComments()
	for _, st := range f.Statements {
		if IsModuleIndicator(st) {
			f.ExternalModule = true
			break
		}
	}
	return f
}

// IsModuleIndicator reports whether st makes its file an external module.
func IsModuleIndicator(st ast.Statement) bool {
	switch st := st.(type) {
	case *ast.ImportDeclaration, *ast.ExportDeclaration, *ast.ExportAssignment:
		return true
	case *ast.ImportEqualsDeclaration:
		return st.ExternalModule != "" || st.Modifiers.Has(ast.ModifierExport)
	case ast.Declaration:
		return st.ModifierFlags().Has(ast.ModifierExport)
	}
	return false
}

// parseStatements parses statements up to end of file, or up to a closing
// brace when inBlock is set.
func (p *Parser) parseStatements(inBlock bool) []ast.Statement {
	var out []ast.Statement
	for p.s.Token() != TokenEOF && !(inBlock && p.is("}")) {
		start := p.s.TokenPos()
		if st := p.parseStatement(); st != nil {
			out = append(out, st)
		}
		if p.s.TokenPos() == start && p.s.Token() != TokenEOF {
			p.errorAtCurrent(ast.CodeDeclarationExpected, "Declaration or statement expected.")
			p.next()
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Token helpers

func (p *Parser) next() {
	p.lastEnd = p.s.TokenEnd()
	p.s.Scan()
}

func (p *Parser) is(punct string) bool {
	return p.s.Token() == TokenPunct && p.s.TokenText() == punct
}

func (p *Parser) isKeyword(kw string) bool {
	return p.s.Token() == TokenIdentifier && p.s.TokenText() == kw
}

func (p *Parser) isIdentifier() bool { return p.s.Token() == TokenIdentifier }

func (p *Parser) eat(punct string) bool {
	if p.is(punct) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) eatKeyword(kw string) bool {
	if p.isKeyword(kw) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(punct string) bool {
	if p.eat(punct) {
		return true
	}
	p.errorAtCurrent(ast.CodeExpected, "'"+punct+"' expected.")
	return false
}

func (p *Parser) expectKeyword(kw string) bool {
	if p.eatKeyword(kw) {
		return true
	}
	p.errorAtCurrent(ast.CodeExpected, "'"+kw+"' expected.")
	return false
}

// lookAhead runs fn and restores the parser to its prior state.
func (p *Parser) lookAhead(fn func() bool) bool {
	saved := *p.s
	savedEnd := p.lastEnd
	savedDiags := len(p.diags)
	ok := fn()
	*p.s = saved
	p.lastEnd = savedEnd
	p.diags = p.diags[:savedDiags]
	return ok
}

func (p *Parser) nextIs(test func() bool) bool {
	return p.lookAhead(func() bool {
		p.next()
		return test()
	})
}

func (p *Parser) nextIsPunct(puncts ...string) bool {
	return p.nextIs(func() bool {
		for _, s := range puncts {
			if p.is(s) {
				return true
			}
		}
		return false
	})
}

func (p *Parser) nextIsIdentifierOnSameLine() bool {
	return p.nextIs(func() bool { return p.isIdentifier() && !p.s.HasPrecedingNewline() })
}

func (p *Parser) finish(start int) ast.TextRange {
	end := p.lastEnd
	if end <= start {
		end = start + 1
	}
	return ast.NewTextRange(start, end)
}

func (p *Parser) canParseSemicolon() bool {
	return p.is(";") || p.is("}") || p.s.Token() == TokenEOF || p.s.HasPrecedingNewline()
}

func (p *Parser) parseSemicolon() {
	if p.eat(";") {
		return
	}
	if !p.canParseSemicolon() {
		p.errorAtCurrent(ast.CodeExpected, "';' expected.")
	}
}

func (p *Parser) errorAtCurrent(code int, msg string) {
	p.errorAt(p.s.TokenPos(), p.s.TokenEnd(), code, msg)
}

func (p *Parser) errorAt(pos, end, code int, msg string) {
	if n := len(p.diags); n > 0 && p.diags[n-1].Pos == pos {
		return
	}
	p.diags = append(p.diags, ast.Diagnostic{File: p.file, Pos: pos, End: end, Code: code, Message: msg})
}

func (p *Parser) parseIdentifierName() string {
	if p.isIdentifier() {
		text := p.s.TokenText()
		p.next()
		return text
	}
	p.errorAtCurrent(ast.CodeIdentifierExpected, "Identifier expected.")
	return ""
}

func (p *Parser) parseIdentifier() *ast.Identifier {
	start := p.s.TokenPos()
	text := p.parseIdentifierName()
	return &ast.Identifier{TextRange: p.finish(start), Text: text}
}

func (p *Parser) parseStringLiteral() string {
	if p.s.Token() == TokenString {
		text := p.s.TokenText()
		p.next()
		return text
	}
	p.errorAtCurrent(ast.CodeExpected, "String literal expected.")
	return ""
}

// skipBalanced consumes a bracketed group starting at the current opening token.
func (p *Parser) skipBalanced() {
	depth := 0
	for p.s.Token() != TokenEOF {
		switch {
		case p.is("{") || p.is("(") || p.is("["):
			depth++
		case p.is("}") || p.is(")") || p.is("]"):
			depth--
		case p.s.Token() == TokenTemplateHead:
			p.skipTemplateExpression()
			continue
		}
		p.next()
		if depth <= 0 {
			return
		}
	}
}

func (p *Parser) skipTemplateExpression() {
	for p.s.Token() != TokenEOF {
		p.next()
		for p.s.Token() != TokenEOF && !p.is("}") {
			if p.is("{") || p.is("(") || p.is("[") {
				p.skipBalanced()
				continue
			}
			p.next()
		}
		if p.s.RescanTemplateContinuation() == TokenTemplateTail {
			p.next()
			return
		}
	}
}

// skipStatement consumes an expression statement the parser does not model.
func (p *Parser) skipStatement() {
	first := true
	for p.s.Token() != TokenEOF {
		if p.is(";") {
			p.next()
			return
		}
		if p.is("}") || (!first && p.s.HasPrecedingNewline()) {
			return
		}
		if p.is("{") || p.is("(") || p.is("[") {
			p.skipBalanced()
		} else {
			p.next()
		}
		first = false
	}
}

func (p *Parser) skipDecorators() {
	for p.eat("@") {
		p.parseIdentifierName()
		for p.eat(".") {
			p.parseIdentifierName()
		}
		if p.is("(") {
			p.skipBalanced()
		}
	}
}

// ---------------------------------------------------------------------------
// Statements

func (p *Parser) parseStatement() ast.Statement {
	comments := p.s.TakeComments()
	start := p.s.TokenPos()
	switch {
	case p.is(";"):
		p.next()
		return nil
	case p.is("@"):
		p.skipDecorators()
	case p.isKeyword("import") && !p.nextIsPunct("(", "."):
		return p.parseImport(start, comments, ast.ModifierNone)
	case p.isKeyword("export"):
		if st, ok := p.parseExportForm(start, comments); ok {
			return st
		}
	}
	mods := p.parseModifiers(false)
	return p.parseDeclaration(start, comments, mods)
}

// parseExportForm handles export statements that are not an exported
// declaration. It reports false when the export keyword is a modifier.
func (p *Parser) parseExportForm(start int, comments []string) (ast.Statement, bool) {
	switch {
	case p.nextIsPunct("="):
		p.next()
		p.next()
		expr := p.parseExpression()
		p.parseSemicolon()
		return &ast.ExportAssignment{TextRange: p.finish(start), Comments: comments, IsExportEquals: true, Expression: expr}, true
	case p.nextIsPunct("*", "{") || p.nextIs(func() bool {
		return p.isKeyword("type") && p.nextIsPunct("*", "{")
	}):
		p.next()
		return p.parseExportDeclaration(start, comments), true
	case p.nextIs(func() bool { return p.isKeyword("as") && p.nextIs(func() bool { return p.isKeyword("namespace") }) }):
		p.next()
		p.next()
		p.next()
		name := p.parseIdentifierName()
		p.parseSemicolon()
		return &ast.NamespaceExportDeclaration{TextRange: p.finish(start), Comments: comments, Name: name}, true
	case p.nextIs(func() bool { return p.isKeyword("import") }):
		p.next()
		return p.parseImport(start, comments, ast.ModifierExport), true
	case p.nextIs(func() bool { return p.isKeyword("default") }):
		p.next()
		p.next()
		if p.isStartOfDefaultDeclaration() {
			mods := ast.ModifierExport | ast.ModifierDefault | p.parseModifiers(false)
			return p.parseDeclaration(start, comments, mods), true
		}
		expr := p.parseExpression()
		p.parseSemicolon()
		return &ast.ExportAssignment{TextRange: p.finish(start), Comments: comments, Expression: expr}, true
	}
	return nil, false
}

func (p *Parser) isStartOfDefaultDeclaration() bool {
	switch {
	case p.isKeyword("function"), p.isKeyword("class"), p.isKeyword("enum"):
		return true
	case p.isKeyword("interface"):
		return p.nextIs(func() bool { return p.isIdentifier() })
	case p.isKeyword("abstract"):
		return p.nextIs(func() bool { return p.isKeyword("class") })
	case p.isKeyword("async"):
		return p.nextIs(func() bool { return p.isKeyword("function") && !p.s.HasPrecedingNewline() })
	}
	return false
}

var statementModifiers = map[string]bool{
	"export": true, "declare": true, "abstract": true, "async": true, "default": true, "const": true,
}

var memberModifiers = map[string]bool{
	"public": true, "private": true, "protected": true, "static": true, "readonly": true,
	"abstract": true, "override": true, "declare": true, "accessor": true, "async": true,
}

// parseModifiers consumes modifier keywords. A keyword only counts as a
// modifier when a declaration can follow it.
func (p *Parser) parseModifiers(member bool) ast.ModifierFlags {
	var mods ast.ModifierFlags
	for p.isIdentifier() {
		text := p.s.TokenText()
		table := statementModifiers
		if member {
			table = memberModifiers
		}
		if !table[text] || !p.canFollowModifier(text, member) {
			break
		}
		flag, _ := ast.ModifierFromKeyword(text)
		mods |= flag
		p.next()
	}
	return mods
}

func (p *Parser) canFollowModifier(text string, member bool) bool {
	return p.nextIs(func() bool {
		if text == "const" {
			return p.isKeyword("enum")
		}
		if p.s.HasPrecedingNewline() && text != "export" {
			return false
		}
		if member {
			return p.isIdentifier() || p.s.Token() == TokenString || p.s.Token() == TokenNumber ||
				p.s.Token() == TokenPrivateName || p.is("[") || p.is("{") || p.is("*") || p.is("#")
		}
		return p.isIdentifier() || p.s.Token() == TokenString || p.is("{")
	})
}

func (p *Parser) parseDeclaration(start int, comments []string, mods ast.ModifierFlags) ast.Statement {
	base := ast.DeclarationBase{Comments: comments, Modifiers: mods}
	switch {
	case p.isKeyword("interface") && p.nextIs(func() bool { return p.isIdentifier() }):
		return p.parseInterface(start, base)
	case p.isKeyword("type") && p.nextIsIdentifierOnSameLine():
		return p.parseTypeAlias(start, base)
	case p.isKeyword("class"):
		return p.parseClass(start, base)
	case p.isKeyword("function"):
		return p.parseFunction(start, base)
	case p.isKeyword("enum"):
		return p.parseEnum(start, base)
	case p.isKeyword("var"), p.isKeyword("const"),
		p.isKeyword("let") && p.nextIs(func() bool { return p.isIdentifier() || p.is("{") || p.is("[") }):
		return p.parseVariableStatement(start, base)
	case (p.isKeyword("namespace") || p.isKeyword("module")) &&
		p.nextIs(func() bool { return (p.isIdentifier() || p.s.Token() == TokenString) && !p.s.HasPrecedingNewline() }):
		return p.parseModule(start, base)
	case p.isKeyword("global") && p.nextIsPunct("{"):
		return p.parseModule(start, base)
	case p.isKeyword("import") && mods.Has(ast.ModifierExport):
		return p.parseImport(start, comments, mods)
	}
	if mods != ast.ModifierNone || p.file.IsDeclarationFile {
		p.errorAtCurrent(ast.CodeDeclarationExpected, "Declaration or statement expected.")
	}
	p.skipStatement()
	return nil
}

func (p *Parser) parseInterface(start int, base ast.DeclarationBase) *ast.InterfaceDeclaration {
	p.next()
	d := &ast.InterfaceDeclaration{DeclarationBase: base}
	d.Name = p.parseIdentifierName()
	d.TypeParameters = p.parseTypeParameters()
	d.HeritageClauses = p.parseHeritageClauses()
	d.Members, _ = p.parseObjectMembers()
	d.TextRange = p.finish(start)
	return d
}

func (p *Parser) parseTypeAlias(start int, base ast.DeclarationBase) *ast.TypeAliasDeclaration {
	p.next()
	d := &ast.TypeAliasDeclaration{DeclarationBase: base}
	d.Name = p.parseIdentifierName()
	d.TypeParameters = p.parseTypeParameters()
	p.expect("=")
	if p.isKeyword("intrinsic") && p.nextIs(func() bool { return p.canParseSemicolon() }) {
		kwStart := p.s.TokenPos()
		p.next()
		d.Type = &ast.KeywordType{TextRange: p.finish(kwStart), Keyword: ast.KeywordIntrinsic}
	} else {
		d.Type = p.parseType()
	}
	p.parseSemicolon()
	d.TextRange = p.finish(start)
	return d
}

func (p *Parser) parseClass(start int, base ast.DeclarationBase) *ast.ClassDeclaration {
	p.next()
	d := &ast.ClassDeclaration{DeclarationBase: base}
	if p.isIdentifier() && !p.isKeyword("extends") && !p.isKeyword("implements") {
		d.Name = p.parseIdentifierName()
	}
	d.TypeParameters = p.parseTypeParameters()
	d.HeritageClauses = p.parseHeritageClauses()
	d.Members = p.parseClassMembers()
	d.TextRange = p.finish(start)
	return d
}

func (p *Parser) parseHeritageClauses() []*ast.HeritageClause {
	var clauses []*ast.HeritageClause
	for p.isKeyword("extends") || p.isKeyword("implements") {
		start := p.s.TokenPos()
		c := &ast.HeritageClause{Token: ast.HeritageExtends}
		if p.isKeyword("implements") {
			c.Token = ast.HeritageImplements
		}
		p.next()
		for {
			c.Types = append(c.Types, p.parseExpressionWithTypeArguments())
			if !p.eat(",") {
				break
			}
		}
		c.TextRange = p.finish(start)
		clauses = append(clauses, c)
	}
	return clauses
}

func (p *Parser) parseExpressionWithTypeArguments() *ast.ExpressionWithTypeArguments {
	start := p.s.TokenPos()
	e := &ast.ExpressionWithTypeArguments{Expression: p.parseLeftHandSide(true)}
	if p.is("<") {
		e.TypeArguments = p.parseTypeArguments()
	}
	e.TextRange = p.finish(start)
	return e
}

func (p *Parser) parseFunction(start int, base ast.DeclarationBase) *ast.FunctionDeclaration {
	p.next()
	p.eat("*")
	d := &ast.FunctionDeclaration{DeclarationBase: base}
	if p.isIdentifier() {
		d.Name = p.parseIdentifierName()
	}
	d.TypeParameters = p.parseTypeParameters()
	d.Parameters = p.parseParameters()
	if p.eat(":") {
		d.Type = p.parseReturnType()
	}
	p.parseFunctionBodyOrSemicolon()
	d.TextRange = p.finish(start)
	return d
}

func (p *Parser) parseFunctionBodyOrSemicolon() {
	if p.is("{") {
		p.skipBalanced()
		return
	}
	p.parseSemicolon()
}

func (p *Parser) parseEnum(start int, base ast.DeclarationBase) *ast.EnumDeclaration {
	p.next()
	d := &ast.EnumDeclaration{DeclarationBase: base}
	d.Name = p.parseIdentifierName()
	p.expect("{")
	for !p.is("}") && p.s.Token() != TokenEOF {
		mStart := p.s.TokenPos()
		m := &ast.EnumMember{DeclarationBase: ast.DeclarationBase{Comments: p.s.TakeComments()}}
		m.Name = p.parsePropertyName()
		if p.eat("=") {
			m.Initializer = p.parseAssignmentExpression()
		}
		m.TextRange = p.finish(mStart)
		d.Members = append(d.Members, m)
		if !p.eat(",") {
			break
		}
	}
	p.expect("}")
	d.TextRange = p.finish(start)
	return d
}

func (p *Parser) parseVariableStatement(start int, base ast.DeclarationBase) *ast.VariableStatement {
	d := &ast.VariableStatement{DeclarationBase: base, Kind: ast.VariableKind(p.s.TokenText())}
	p.next()
	for {
		vStart := p.s.TokenPos()
		v := &ast.VariableDeclaration{}
		v.Name = p.parseBindingName()
		v.Exclamation = p.eat("!")
		if p.eat(":") {
			v.Type = p.parseType()
		}
		if p.eat("=") {
			v.Initializer = p.parseAssignmentExpression()
		}
		v.TextRange = p.finish(vStart)
		d.Declarations = append(d.Declarations, v)
		if !p.eat(",") {
			break
		}
	}
	p.parseSemicolon()
	d.TextRange = p.finish(start)
	return d
}

// parseBindingName returns an identifier or the raw text of a binding pattern.
func (p *Parser) parseBindingName() string {
	if p.is("{") || p.is("[") {
		start := p.s.TokenPos()
		p.skipBalanced()
		return p.file.Text[start:p.lastEnd]
	}
	return p.parseIdentifierName()
}

func (p *Parser) parseModule(start int, base ast.DeclarationBase) *ast.ModuleDeclaration {
	d := &ast.ModuleDeclaration{DeclarationBase: base}
	if p.isKeyword("global") {
		d.IsGlobal = true
		d.Name = "global"
		p.next()
		p.parseModuleBody(d)
		d.TextRange = p.finish(start)
		return d
	}
	d.IsNamespace = p.isKeyword("namespace")
	p.next()
	if p.s.Token() == TokenString {
		d.IsStringName = true
		d.Name = p.parseStringLiteral()
		p.parseModuleBody(d)
		d.TextRange = p.finish(start)
		return d
	}
	p.parseNamespaceRest(start, d)
	return d
}

// parseNamespaceRest parses `A.B.C { ... }` starting at the first name
// segment, nesting one declaration per segment.
func (p *Parser) parseNamespaceRest(start int, d *ast.ModuleDeclaration) {
	d.Name = p.parseIdentifierName()
	if p.eat(".") {
		inner := &ast.ModuleDeclaration{
			DeclarationBase: ast.DeclarationBase{Modifiers: ast.ModifierExport},
			IsNamespace:     d.IsNamespace,
			Dotted:          true,
		}
		p.parseNamespaceRest(p.s.TokenPos(), inner)
		d.Body = []ast.Statement{inner}
		d.HasBody = true
	} else {
		p.parseModuleBody(d)
	}
	d.TextRange = p.finish(start)
}

func (p *Parser) parseModuleBody(d *ast.ModuleDeclaration) {
	if p.eat("{") {
		d.HasBody = true
		d.Body = p.parseStatements(true)
		p.expect("}")
		return
	}
	p.parseSemicolon()
}

func (p *Parser) parseImport(start int, comments []string, mods ast.ModifierFlags) ast.Statement {
	p.expectKeyword("import")
	typeOnly := false
	if p.isKeyword("type") && p.nextIs(func() bool {
		return (p.isIdentifier() && !p.isKeyword("from")) || p.is("{") || p.is("*") ||
			(p.isKeyword("from") && p.nextIs(func() bool { return p.isKeyword("from") }))
	}) {
		typeOnly = true
		p.next()
	}
	if p.isIdentifier() && p.nextIsPunct("=") {
		d := &ast.ImportEqualsDeclaration{DeclarationBase: ast.DeclarationBase{Comments: comments, Modifiers: mods}, TypeOnly: typeOnly}
		d.Name = p.parseIdentifierName()
		p.expect("=")
		if p.isKeyword("require") && p.nextIsPunct("(") {
			p.next()
			p.next()
			d.ExternalModule = p.parseStringLiteral()
			p.expect(")")
		} else {
			d.ModuleReference = p.parseEntityName()
		}
		p.parseSemicolon()
		d.TextRange = p.finish(start)
		return d
	}
	d := &ast.ImportDeclaration{Comments: comments, TypeOnly: typeOnly}
	if p.s.Token() != TokenString {
		if p.isIdentifier() && !p.isKeyword("from") || p.isKeyword("from") && p.nextIs(func() bool { return p.isKeyword("from") || p.is(",") }) {
			d.DefaultName = p.parseIdentifierName()
			p.eat(",")
		}
		if p.eat("*") {
			p.expectKeyword("as")
			d.NamespaceName = p.parseIdentifierName()
		} else if p.is("{") {
			d.HasNamed = true
			d.NamedBindings = p.parseImportSpecifiers()
		}
		p.expectKeyword("from")
	}
	d.ModuleSpecifier = p.parseStringLiteral()
	p.skipImportAttributes()
	p.parseSemicolon()
	d.TextRange = p.finish(start)
	return d
}

func (p *Parser) skipImportAttributes() {
	if (p.isKeyword("with") || p.isKeyword("assert")) && !p.s.HasPrecedingNewline() && p.nextIsPunct("{") {
		p.next()
		p.skipBalanced()
	}
}

func (p *Parser) parseImportSpecifiers() []*ast.ImportSpecifier {
	var out []*ast.ImportSpecifier
	p.expect("{")
	for !p.is("}") && p.s.Token() != TokenEOF {
		start := p.s.TokenPos()
		spec := &ast.ImportSpecifier{}
		if p.isKeyword("type") && p.nextIs(func() bool { return p.isIdentifier() || p.s.Token() == TokenString }) &&
			!p.nextIs(func() bool { return p.isKeyword("as") && p.nextIsPunct(",", "}") }) {
			spec.TypeOnly = true
			p.next()
		}
		name := p.parseModuleExportName()
		if p.eatKeyword("as") {
			spec.PropertyName = name
			name = p.parseIdentifierName()
		}
		spec.Name = name
		spec.TextRange = p.finish(start)
		out = append(out, spec)
		if !p.eat(",") {
			break
		}
	}
	p.expect("}")
	return out
}

func (p *Parser) parseModuleExportName() string {
	if p.s.Token() == TokenString {
		return p.parseStringLiteral()
	}
	return p.parseIdentifierName()
}

func (p *Parser) parseExportDeclaration(start int, comments []string) *ast.ExportDeclaration {
	d := &ast.ExportDeclaration{Comments: comments}
	if p.isKeyword("type") {
		d.TypeOnly = true
		p.next()
	}
	if p.eat("*") {
		d.All = true
		if p.eatKeyword("as") {
			d.NamespaceName = p.parseModuleExportName()
		}
		p.expectKeyword("from")
		d.ModuleSpecifier = p.parseStringLiteral()
	} else {
		p.expect("{")
		for !p.is("}") && p.s.Token() != TokenEOF {
			sStart := p.s.TokenPos()
			spec := &ast.ExportSpecifier{}
			if p.isKeyword("type") && p.nextIs(func() bool { return p.isIdentifier() || p.s.Token() == TokenString }) &&
				!p.nextIs(func() bool { return p.isKeyword("as") && p.nextIsPunct(",", "}") }) {
				spec.TypeOnly = true
				p.next()
			}
			name := p.parseModuleExportName()
			if p.eatKeyword("as") {
				spec.PropertyName = name
				name = p.parseModuleExportName()
			}
			spec.Name = name
			spec.TextRange = p.finish(sStart)
			d.Specifiers = append(d.Specifiers, spec)
			if !p.eat(",") {
				break
			}
		}
		p.expect("}")
		if p.eatKeyword("from") {
			d.ModuleSpecifier = p.parseStringLiteral()
		}
	}
	p.skipImportAttributes()
	p.parseSemicolon()
	d.TextRange = p.finish(start)
	return d
}
