package treesitter

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/parser"
)

// statements lowers the statement children of a program or statement block.
func (l *lowerer) statements(n *sitter.Node) []ast.Statement {
	var out []ast.Statement
	for _, c := range children(n) {
		switch c.Type() {
		case "comment":
			l.addComment(c)
		case "{", "}", ";", "empty_statement", "hash_bang_line":
		default:
			out = append(out, l.statement(c)...)
		}
	}
	return out
}

func (l *lowerer) statement(n *sitter.Node) []ast.Statement {
	if n.HasError() {
		return l.fallbackStatements(n)
	}
	var st ast.Statement
	switch n.Type() {
	case "import_statement":
		st = l.importStatement(n)
	case "export_statement":
		st = l.exportStatement(n)
	case "expression_statement":
		if inner := firstNamed(n); inner != nil && inner.Type() == "internal_module" {
			st = l.declaration(inner, n, ast.ModifierNone)
		}
	default:
		st = l.declaration(n, n, ast.ModifierNone)
	}
	if st == nil {
		return l.fallbackStatements(n)
	}
	return []ast.Statement{st}
}

func (l *lowerer) fallbackStatements(n *sitter.Node) []ast.Statement {
	start := l.fallbackStart(n)
	l.comments = nil
	stmts, diags := parser.ParseStatementsAt(l.file, start, int(n.EndByte()))
	l.note(diags)
	return stmts
}

// declaration lowers d, whose statement spans outer. It returns nil for
// shapes it leaves to the native parser; no pending comment is consumed
// in that case.
func (l *lowerer) declaration(d, outer *sitter.Node, mods ast.ModifierFlags) ast.Statement {
	switch d.Type() {
	case "ambient_declaration":
		return l.ambient(d, outer, mods|ast.ModifierDeclare)
	case "interface_declaration":
		return l.interfaceDeclaration(d, outer, mods)
	case "type_alias_declaration":
		return l.typeAlias(d, outer, mods)
	case "enum_declaration":
		return l.enumDeclaration(d, outer, mods)
	case "function_signature", "function_declaration":
		return l.function(d, outer, mods)
	case "class_declaration", "abstract_class_declaration":
		return l.class(d, outer, mods)
	case "lexical_declaration", "variable_declaration":
		return l.variableStatement(d, outer, mods)
	case "module", "internal_module":
		return l.module(d, outer, mods)
	}
	return nil
}

func (l *lowerer) base(outer *sitter.Node, mods ast.ModifierFlags) ast.DeclarationBase {
	return ast.DeclarationBase{
		TextRange: l.textRange(outer),
		Comments:  l.takeComments(),
		Modifiers: mods,
	}
}

func (l *lowerer) ambient(n, outer *sitter.Node, mods ast.ModifierFlags) ast.Statement {
	if hasToken(n, "global") {
		body := firstNamed(n)
		if body == nil || body.Type() != "statement_block" {
			return nil
		}
		d := &ast.ModuleDeclaration{DeclarationBase: l.base(outer, mods), Name: "global", IsGlobal: true}
		d.HasBody = true
		d.Body = l.statements(body)
		l.comments = nil
		return d
	}
	inner := firstNamed(n)
	if inner == nil {
		return nil
	}
	return l.declaration(inner, outer, mods)
}

func (l *lowerer) interfaceDeclaration(n, outer *sitter.Node, mods ast.ModifierFlags) ast.Statement {
	body := field(n, "body")
	if body == nil {
		return nil
	}
	var heritage []*ast.HeritageClause
	for _, c := range named(n) {
		if c.Type() != "extends_type_clause" {
			continue
		}
		clause := &ast.HeritageClause{TextRange: l.textRange(c), Token: ast.HeritageExtends}
		for _, t := range named(c) {
			e := l.typeToHeritage(t)
			if e == nil {
				return nil
			}
			clause.Types = append(clause.Types, e)
		}
		heritage = append(heritage, clause)
	}
	d := &ast.InterfaceDeclaration{
		DeclarationBase: l.base(outer, mods),
		Name:            l.text(field(n, "name")),
		TypeParameters:  l.typeParameters(field(n, "type_parameters")),
		HeritageClauses: heritage,
	}
	d.Members = l.typeMembers(body)
	return d
}

// typeToHeritage converts an interface extends target to the expression form
// class heritage uses.
func (l *lowerer) typeToHeritage(t *sitter.Node) *ast.ExpressionWithTypeArguments {
	nameNode, argsNode := t, (*sitter.Node)(nil)
	if t.Type() == "generic_type" {
		nameNode, argsNode = field(t, "name"), field(t, "type_arguments")
	}
	expr := l.entityExpression(nameNode)
	if expr == nil {
		return nil
	}
	e := &ast.ExpressionWithTypeArguments{TextRange: l.textRange(t), Expression: expr}
	if argsNode != nil {
		e.TypeArguments = l.typeArguments(argsNode)
	}
	return e
}

// entityExpression lowers a dotted name to an identifier or property access.
func (l *lowerer) entityExpression(n *sitter.Node) ast.Expression {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier", "type_identifier", "property_identifier":
		return &ast.Identifier{TextRange: l.textRange(n), Text: l.text(n)}
	case "nested_type_identifier", "nested_identifier", "member_expression":
		kids := named(n)
		if len(kids) != 2 {
			return nil
		}
		left := l.entityExpression(kids[0])
		if left == nil {
			return nil
		}
		right := &ast.Identifier{TextRange: l.textRange(kids[1]), Text: l.text(kids[1])}
		return &ast.PropertyAccessExpression{TextRange: l.textRange(n), Expression: left, Name: right}
	}
	return nil
}

func (l *lowerer) typeAlias(n, outer *sitter.Node, mods ast.ModifierFlags) ast.Statement {
	value := field(n, "value")
	if value == nil || l.text(value) == "intrinsic" {
		return nil
	}
	d := &ast.TypeAliasDeclaration{
		DeclarationBase: l.base(outer, mods),
		Name:            l.text(field(n, "name")),
		TypeParameters:  l.typeParameters(field(n, "type_parameters")),
	}
	d.Type = l.typeNode(value)
	return d
}

func (l *lowerer) enumDeclaration(n, outer *sitter.Node, mods ast.ModifierFlags) ast.Statement {
	body := field(n, "body")
	if body == nil {
		return nil
	}
	if hasToken(n, "const") {
		mods |= ast.ModifierConst
	}
	d := &ast.EnumDeclaration{DeclarationBase: l.base(outer, mods), Name: l.text(field(n, "name"))}
	for _, c := range children(body) {
		switch c.Type() {
		case "comment":
			l.addComment(c)
			continue
		case "{", "}", ",":
			continue
		}
		m := &ast.EnumMember{DeclarationBase: l.base(c, ast.ModifierNone)}
		nameNode := c
		if c.Type() == "enum_assignment" {
			nameNode = field(c, "name")
			if value := field(c, "value"); value != nil {
				m.Initializer = l.expression(value)
			}
		}
		name, ok := l.propertyName(nameNode)
		if !ok {
			name = ast.PropertyName{Kind: ast.PropertyNameIdentifier, Text: l.text(nameNode)}
		}
		m.Name = name
		d.Members = append(d.Members, m)
	}
	l.comments = nil
	return d
}

func (l *lowerer) function(n, outer *sitter.Node, mods ast.ModifierFlags) ast.Statement {
	if hasToken(n, "async") {
		mods |= ast.ModifierAsync
	}
	params := field(n, "parameters")
	if params == nil {
		return nil
	}
	d := &ast.FunctionDeclaration{
		DeclarationBase: l.base(outer, mods),
		Name:            l.text(field(n, "name")),
		TypeParameters:  l.typeParameters(field(n, "type_parameters")),
		Parameters:      l.parameters(params),
	}
	d.Type = l.returnType(field(n, "return_type"))
	return d
}

func (l *lowerer) class(n, outer *sitter.Node, mods ast.ModifierFlags) ast.Statement {
	body := field(n, "body")
	if body == nil {
		return nil
	}
	if n.Type() == "abstract_class_declaration" {
		mods |= ast.ModifierAbstract
	}
	var heritage []*ast.HeritageClause
	for _, c := range named(n) {
		if c.Type() != "class_heritage" {
			continue
		}
		for _, h := range named(c) {
			clause := l.heritageClause(h)
			if clause == nil {
				return nil
			}
			heritage = append(heritage, clause)
		}
	}
	d := &ast.ClassDeclaration{
		DeclarationBase: l.base(outer, mods),
		Name:            l.text(field(n, "name")),
		TypeParameters:  l.typeParameters(field(n, "type_parameters")),
		HeritageClauses: heritage,
	}
	d.Members = l.classMembers(body)
	return d
}

func (l *lowerer) heritageClause(n *sitter.Node) *ast.HeritageClause {
	clause := &ast.HeritageClause{TextRange: l.textRange(n)}
	switch n.Type() {
	case "extends_clause":
		clause.Token = ast.HeritageExtends
		for _, c := range named(n) {
			if c.Type() == "type_arguments" {
				if len(clause.Types) == 0 {
					return nil
				}
				last := clause.Types[len(clause.Types)-1]
				last.TypeArguments = l.typeArguments(c)
				last.TextRange.End = int(c.EndByte())
				continue
			}
			expr := l.entityExpression(c)
			if expr == nil {
				expr = l.expression(c)
			}
			clause.Types = append(clause.Types, &ast.ExpressionWithTypeArguments{
				TextRange:  l.textRange(c),
				Expression: expr,
			})
		}
	case "implements_clause":
		clause.Token = ast.HeritageImplements
		for _, c := range named(n) {
			e := l.typeToHeritage(c)
			if e == nil {
				return nil
			}
			clause.Types = append(clause.Types, e)
		}
	default:
		return nil
	}
	return clause
}

// classMembers delegates each member to the native parser; the member
// grammar of class bodies is wider than anything a declaration file needs
// lowered structurally.
func (l *lowerer) classMembers(body *sitter.Node) []ast.ClassElement {
	var out []ast.ClassElement
	for _, c := range children(body) {
		switch c.Type() {
		case "comment":
			l.addComment(c)
			continue
		case "{", "}", ";", ",":
			continue
		}
		start := l.fallbackStart(c)
		l.comments = nil
		m, diags := parser.ParseClassMemberAt(l.file, start, int(c.EndByte()))
		l.note(diags)
		if m != nil {
			out = append(out, m)
		}
	}
	l.comments = nil
	return out
}

func (l *lowerer) variableStatement(n, outer *sitter.Node, mods ast.ModifierFlags) ast.Statement {
	kind := ast.VariableVar
	if k := field(n, "kind"); k != nil {
		kind = ast.VariableKind(l.text(k))
	}
	d := &ast.VariableStatement{DeclarationBase: l.base(outer, mods), Kind: kind}
	for _, c := range named(n) {
		if c.Type() != "variable_declarator" {
			continue
		}
		v := &ast.VariableDeclaration{DeclarationBase: ast.DeclarationBase{TextRange: l.textRange(c)}}
		v.Name = l.text(field(c, "name"))
		v.Exclamation = hasToken(c, "!")
		if t := field(c, "type"); t != nil {
			v.Type = l.annotation(t)
		}
		if value := field(c, "value"); value != nil {
			v.Initializer = l.expression(value)
		}
		d.Declarations = append(d.Declarations, v)
	}
	return d
}

func (l *lowerer) module(n, outer *sitter.Node, mods ast.ModifierFlags) ast.Statement {
	nameNode := field(n, "name")
	if nameNode == nil {
		return nil
	}
	body := field(n, "body")
	d := &ast.ModuleDeclaration{DeclarationBase: l.base(outer, mods), IsNamespace: n.Type() == "internal_module"}

	if nameNode.Type() == "string" {
		d.IsStringName = true
		d.Name = unquote(l.text(nameNode))
		l.moduleBody(d, body)
		return d
	}

	// `namespace A.B {}` nests one declaration per segment.
	segments := strings.Split(l.text(nameNode), ".")
	offsets := make([]int, len(segments))
	pos := int(nameNode.StartByte())
	for i, s := range segments {
		offsets[i] = pos + len(s) - len(strings.TrimLeft(s, " \t\r\n"))
		pos += len(s) + 1
	}
	d.Name = strings.TrimSpace(segments[0])
	cur := d
	for i := 1; i < len(segments); i++ {
		inner := &ast.ModuleDeclaration{
			DeclarationBase: ast.DeclarationBase{
				TextRange: ast.NewTextRange(offsets[i], int(outer.EndByte())),
				Modifiers: ast.ModifierExport,
			},
			Name:        strings.TrimSpace(segments[i]),
			IsNamespace: d.IsNamespace,
			Dotted:      true,
		}
		cur.Body = []ast.Statement{inner}
		cur.HasBody = true
		cur = inner
	}
	l.moduleBody(cur, body)
	return d
}

func (l *lowerer) moduleBody(d *ast.ModuleDeclaration, body *sitter.Node) {
	if body == nil {
		return
	}
	d.HasBody = true
	d.Body = l.statements(body)
	l.comments = nil
}

// ---------------------------------------------------------------------------
// Imports and exports

func (l *lowerer) importStatement(n *sitter.Node) ast.Statement {
	typeOnly := hasToken(n, "type")
	if hasToken(n, "typeof") {
		return nil
	}
	if req := childOfType(n, "import_require_clause"); req != nil {
		source := field(req, "source")
		name := firstNamed(req)
		if source == nil || name == nil || name.Type() != "identifier" {
			return nil
		}
		d := &ast.ImportEqualsDeclaration{DeclarationBase: l.base(n, ast.ModifierNone), TypeOnly: typeOnly}
		d.Name = l.text(name)
		d.ExternalModule = unquote(l.text(source))
		return d
	}
	source := field(n, "source")
	if source == nil {
		return nil
	}
	d := &ast.ImportDeclaration{TextRange: l.textRange(n), TypeOnly: typeOnly, ModuleSpecifier: unquote(l.text(source))}
	if clause := childOfType(n, "import_clause"); clause != nil {
		for _, c := range named(clause) {
			switch c.Type() {
			case "identifier":
				d.DefaultName = l.text(c)
			case "namespace_import":
				d.NamespaceName = l.text(firstNamed(c))
			case "named_imports":
				d.HasNamed = true
				for _, s := range named(c) {
					if s.Type() != "import_specifier" {
						continue
					}
					spec := &ast.ImportSpecifier{TextRange: l.textRange(s), TypeOnly: hasToken(s, "type")}
					spec.Name = l.moduleExportName(field(s, "name"))
					if alias := field(s, "alias"); alias != nil {
						spec.PropertyName = spec.Name
						spec.Name = l.text(alias)
					}
					d.NamedBindings = append(d.NamedBindings, spec)
				}
			default:
				return nil
			}
		}
	}
	d.Comments = l.takeComments()
	return d
}

func (l *lowerer) exportStatement(n *sitter.Node) ast.Statement {
	if decl := field(n, "declaration"); decl != nil {
		mods := ast.ModifierExport
		if hasToken(n, "default") {
			mods |= ast.ModifierDefault
		}
		return l.declaration(decl, n, mods)
	}
	switch {
	case hasToken(n, "import"):
		return nil
	case hasToken(n, "="):
		value := firstNamed(n)
		if value == nil {
			return nil
		}
		return &ast.ExportAssignment{TextRange: l.textRange(n), IsExportEquals: true, Expression: l.expression(value), Comments: l.takeComments()}
	case hasToken(n, "namespace"):
		name := firstNamed(n)
		if name == nil {
			return nil
		}
		return &ast.NamespaceExportDeclaration{TextRange: l.textRange(n), Name: l.text(name), Comments: l.takeComments()}
	case hasToken(n, "default"):
		value := field(n, "value")
		if value == nil {
			return nil
		}
		return &ast.ExportAssignment{TextRange: l.textRange(n), Expression: l.expression(value), Comments: l.takeComments()}
	}

	d := &ast.ExportDeclaration{TextRange: l.textRange(n), TypeOnly: hasToken(n, "type")}
	if source := field(n, "source"); source != nil {
		d.ModuleSpecifier = unquote(l.text(source))
	}
	switch {
	case childOfType(n, "export_clause") != nil:
		for _, s := range named(childOfType(n, "export_clause")) {
			if s.Type() != "export_specifier" {
				continue
			}
			spec := &ast.ExportSpecifier{TextRange: l.textRange(s), TypeOnly: hasToken(s, "type")}
			spec.Name = l.moduleExportName(field(s, "name"))
			if alias := field(s, "alias"); alias != nil {
				spec.PropertyName = spec.Name
				spec.Name = l.moduleExportName(alias)
			}
			d.Specifiers = append(d.Specifiers, spec)
		}
	case childOfType(n, "namespace_export") != nil:
		ns := childOfType(n, "namespace_export")
		d.All = true
		d.NamespaceName = l.moduleExportName(firstNamed(ns))
	case hasToken(n, "*"):
		d.All = true
	default:
		return nil
	}
	if d.All && d.ModuleSpecifier == "" {
		return nil
	}
	d.Comments = l.takeComments()
	return d
}

func (l *lowerer) moduleExportName(n *sitter.Node) string {
	if n != nil && n.Type() == "string" {
		return unquote(l.text(n))
	}
	return l.text(n)
}

func childOfType(n *sitter.Node, kind string) *sitter.Node {
	for _, c := range children(n) {
		if c.Type() == kind {
			return c
		}
	}
	return nil
}
