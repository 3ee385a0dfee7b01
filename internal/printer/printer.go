// Package printer renders declaration syntax trees as TypeScript text.
package printer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tsgonest/dtsresolve/internal/ast"
)

// Options controls layout.
type Options struct {
	// Indent is the indentation unit; four spaces when empty.
	Indent string
	// NewLine is the line terminator; "\n" when empty.
	NewLine string
	// SingleLine prints every object type on one line, ignoring the layout
	// recorded on the node.
	SingleLine bool
	// OmitComments drops leading comments.
	OmitComments bool
}

// Printer writes declaration text.
type Printer struct {
	opts  Options
	b     strings.Builder
	level int
}

// New returns a printer with defaults applied to opts.
func New(opts Options) *Printer {
	if opts.Indent == "" {
		opts.Indent = "    "
	}
	if opts.NewLine == "" {
		opts.NewLine = "\n"
	}
	return &Printer{opts: opts}
}

// PrintFile renders a whole source file.
func (p *Printer) PrintFile(f *ast.SourceFile) string {
	p.reset()
	for _, st := range f.Statements {
		p.statement(st)
	}
	if !p.opts.OmitComments {
		for _, c := range f.EndComments {
			p.comment(c)
		}
	}
	return p.b.String()
}

// PrintStatements renders a statement list at the top level.
func (p *Printer) PrintStatements(stmts []ast.Statement) string {
	p.reset()
	for _, st := range stmts {
		p.statement(st)
	}
	return p.b.String()
}

// PrintType renders a type expression.
func (p *Printer) PrintType(n ast.TypeNode) string {
	p.reset()
	p.typ(n, levelTop)
	return p.b.String()
}

// TypeToString renders a type expression on a single line.
func TypeToString(n ast.TypeNode) string {
	return New(Options{SingleLine: true, OmitComments: true}).PrintType(n)
}

// EntityNameToString renders a dotted name.
func EntityNameToString(n ast.EntityName) string { return ast.EntityNameText(n) }

func (p *Printer) reset() {
	p.b.Reset()
	p.level = 0
}

func (p *Printer) write(s string) { p.b.WriteString(s) }

func (p *Printer) newline() {
	p.write(p.opts.NewLine)
	for i := 0; i < p.level; i++ {
		p.write(p.opts.Indent)
	}
}

func (p *Printer) indentation() string { return strings.Repeat(p.opts.Indent, p.level) }

// startLine begins a statement or member line at the current indentation.
func (p *Printer) startLine() {
	p.write(p.indentation())
}

func (p *Printer) endLine() { p.write(p.opts.NewLine) }

func (p *Printer) comments(cs []string) {
	if p.opts.OmitComments {
		return
	}
	for _, c := range cs {
		p.comment(c)
	}
}

func (p *Printer) comment(c string) {
	for _, line := range commentLines(c) {
		p.startLine()
		p.write(line)
		p.endLine()
	}
}

// commentLines splits a comment into lines with continuation lines of block
// comments realigned on their leading '*'.
func commentLines(c string) []string {
	lines := strings.Split(strings.ReplaceAll(c, "\r\n", "\n"), "\n")
	for i := 1; i < len(lines); i++ {
		t := strings.TrimLeft(lines[i], " \t")
		if strings.HasPrefix(t, "*") {
			t = " " + t
		}
		lines[i] = t
	}
	return lines
}

func (p *Printer) modifiers(m ast.ModifierFlags) {
	if s := m.String(); s != "" {
		p.write(s)
		p.write(" ")
	}
}

// ---------------------------------------------------------------------------
// Statements

func (p *Printer) statement(st ast.Statement) {
	p.comments(ast.StatementComments(st))
	p.startLine()
	switch st := st.(type) {
	case *ast.ImportDeclaration:
		p.importDeclaration(st)
	case *ast.ImportEqualsDeclaration:
		p.modifiers(st.Modifiers)
		p.write("import ")
		if st.TypeOnly {
			p.write("type ")
		}
		p.write(st.Name + " = ")
		if st.ModuleReference != nil {
			p.write(ast.EntityNameText(st.ModuleReference))
		} else {
			p.write("require(" + QuoteString(st.ExternalModule) + ")")
		}
		p.write(";")
	case *ast.ExportDeclaration:
		p.exportDeclaration(st)
	case *ast.ExportAssignment:
		if st.IsExportEquals {
			p.write("export = ")
		} else {
			p.write("export default ")
		}
		p.expression(st.Expression)
		p.write(";")
	case *ast.NamespaceExportDeclaration:
		p.write("export as namespace " + st.Name + ";")
	case *ast.TypeAliasDeclaration:
		p.modifiers(st.Modifiers)
		p.write("type " + st.Name)
		p.typeParameters(st.TypeParameters)
		p.write(" = ")
		p.typ(st.Type, levelTop)
		p.write(";")
	case *ast.InterfaceDeclaration:
		p.modifiers(st.Modifiers)
		p.write("interface " + st.Name)
		p.typeParameters(st.TypeParameters)
		p.heritage(st.HeritageClauses)
		p.write(" {")
		p.endLine()
		p.level++
		for _, m := range st.Members {
			p.memberLine(m)
		}
		p.level--
		p.startLine()
		p.write("}")
	case *ast.ClassDeclaration:
		p.modifiers(st.Modifiers)
		p.write("class")
		if st.Name != "" {
			p.write(" " + st.Name)
		}
		p.typeParameters(st.TypeParameters)
		p.heritage(st.HeritageClauses)
		p.write(" {")
		p.endLine()
		p.level++
		for _, m := range st.Members {
			p.classMemberLine(m)
		}
		p.level--
		p.startLine()
		p.write("}")
	case *ast.FunctionDeclaration:
		p.modifiers(st.Modifiers)
		p.write("function")
		if st.Name != "" {
			p.write(" " + st.Name)
		}
		p.signature(st.TypeParameters, st.Parameters, st.Type, ": ")
		p.write(";")
	case *ast.VariableStatement:
		p.modifiers(st.Modifiers)
		p.write(string(st.Kind) + " ")
		for i, d := range st.Declarations {
			if i > 0 {
				p.write(", ")
			}
			p.variableDeclaration(d)
		}
		p.write(";")
	case *ast.EnumDeclaration:
		p.modifiers(st.Modifiers)
		p.write("enum " + st.Name + " {")
		p.endLine()
		p.level++
		for _, m := range st.Members {
			p.comments(m.Comments)
			p.startLine()
			p.propertyName(m.Name)
			if m.Initializer != nil {
				p.write(" = ")
				p.expression(m.Initializer)
			}
			p.write(",")
			p.endLine()
		}
		p.level--
		p.startLine()
		p.write("}")
	case *ast.ModuleDeclaration:
		p.moduleDeclaration(st)
	}
	p.endLine()
}

func (p *Printer) importDeclaration(st *ast.ImportDeclaration) {
	p.write("import ")
	if st.TypeOnly {
		p.write("type ")
	}
	clause := false
	if st.DefaultName != "" {
		p.write(st.DefaultName)
		clause = true
	}
	if st.NamespaceName != "" {
		if clause {
			p.write(", ")
		}
		p.write("* as " + st.NamespaceName)
		clause = true
	} else if st.HasNamed {
		if clause {
			p.write(", ")
		}
		p.write("{")
		for i, s := range st.NamedBindings {
			if i > 0 {
				p.write(",")
			}
			p.write(" ")
			if s.TypeOnly {
				p.write("type ")
			}
			if s.PropertyName != "" {
				p.write(exportName(s.PropertyName) + " as ")
			}
			p.write(s.Name)
		}
		if len(st.NamedBindings) > 0 {
			p.write(" ")
		}
		p.write("}")
		clause = true
	}
	if clause {
		p.write(" from ")
	}
	p.write(QuoteString(st.ModuleSpecifier) + ";")
}

func (p *Printer) exportDeclaration(st *ast.ExportDeclaration) {
	p.write("export ")
	if st.TypeOnly {
		p.write("type ")
	}
	if st.All {
		p.write("*")
		if st.NamespaceName != "" {
			p.write(" as " + exportName(st.NamespaceName))
		}
	} else {
		p.write("{")
		for i, s := range st.Specifiers {
			if i > 0 {
				p.write(",")
			}
			p.write(" ")
			if s.TypeOnly {
				p.write("type ")
			}
			if s.PropertyName != "" {
				p.write(exportName(s.PropertyName) + " as ")
			}
			p.write(exportName(s.Name))
		}
		if len(st.Specifiers) > 0 {
			p.write(" ")
		}
		p.write("}")
	}
	if st.ModuleSpecifier != "" {
		p.write(" from " + QuoteString(st.ModuleSpecifier))
	}
	p.write(";")
}

func exportName(name string) string {
	if isIdentifier(name) {
		return name
	}
	return QuoteString(name)
}

func (p *Printer) moduleDeclaration(st *ast.ModuleDeclaration) {
	p.modifiers(st.Modifiers)
	switch {
	case st.IsGlobal:
		p.write("global")
	case st.IsStringName:
		p.write("module " + QuoteString(st.Name))
	default:
		if st.IsNamespace {
			p.write("namespace ")
		} else {
			p.write("module ")
		}
		p.write(st.Name)
		for len(st.Body) == 1 {
			inner, ok := st.Body[0].(*ast.ModuleDeclaration)
			if !ok || !inner.Dotted {
				break
			}
			p.write("." + inner.Name)
			st = inner
		}
	}
	if !st.HasBody {
		p.write(";")
		return
	}
	if len(st.Body) == 0 {
		p.write(" { }")
		return
	}
	p.write(" {")
	p.endLine()
	p.level++
	for _, s := range st.Body {
		p.statement(s)
	}
	p.level--
	p.startLine()
	p.write("}")
}

func (p *Printer) variableDeclaration(d *ast.VariableDeclaration) {
	p.write(d.Name)
	if d.Exclamation {
		p.write("!")
	}
	if d.Type != nil {
		p.write(": ")
		p.typ(d.Type, levelTop)
	}
	if d.Initializer != nil {
		p.write(" = ")
		p.expression(d.Initializer)
	}
}

func (p *Printer) heritage(clauses []*ast.HeritageClause) {
	for _, c := range clauses {
		if len(c.Types) == 0 {
			continue
		}
		if c.Token == ast.HeritageExtends {
			p.write(" extends ")
		} else {
			p.write(" implements ")
		}
		for i, t := range c.Types {
			if i > 0 {
				p.write(", ")
			}
			p.expression(t.Expression)
			p.typeArguments(t.TypeArguments)
		}
	}
}

// ---------------------------------------------------------------------------
// Members

func (p *Printer) memberLine(m ast.TypeElement) {
	p.comments(m.LeadingComments())
	p.startLine()
	p.member(m)
	p.write(";")
	p.endLine()
}

func (p *Printer) classMemberLine(m ast.ClassElement) {
	p.comments(m.LeadingComments())
	p.startLine()
	p.modifiers(m.ModifierFlags())
	switch m := m.(type) {
	case *ast.PropertyDeclaration:
		p.propertyName(m.Name)
		if m.Optional {
			p.write("?")
		} else if m.Exclamation {
			p.write("!")
		}
		if m.Type != nil {
			p.write(": ")
			p.typ(m.Type, levelTop)
		}
		if m.Initializer != nil {
			p.write(" = ")
			p.expression(m.Initializer)
		}
	case *ast.MethodDeclaration:
		p.propertyName(m.Name)
		if m.Optional {
			p.write("?")
		}
		p.signature(m.TypeParameters, m.Parameters, m.Type, ": ")
	case *ast.ConstructorDeclaration:
		p.write("constructor")
		p.parameters(m.Parameters)
	case *ast.IndexSignature:
		p.indexSignature(m)
	case *ast.AccessorDeclaration:
		p.accessor(m)
	}
	p.write(";")
	p.endLine()
}

func (p *Printer) member(m ast.TypeElement) {
	switch m := m.(type) {
	case *ast.PropertySignature:
		if m.Modifiers.Has(ast.ModifierReadonly) {
			p.write("readonly ")
		}
		p.propertyName(m.Name)
		if m.Optional {
			p.write("?")
		}
		if m.Type != nil {
			p.write(": ")
			p.typ(m.Type, levelTop)
		}
	case *ast.MethodSignature:
		p.propertyName(m.Name)
		if m.Optional {
			p.write("?")
		}
		p.signature(m.TypeParameters, m.Parameters, m.Type, ": ")
	case *ast.CallSignature:
		p.signature(m.TypeParameters, m.Parameters, m.Type, ": ")
	case *ast.ConstructSignature:
		p.write("new ")
		p.signature(m.TypeParameters, m.Parameters, m.Type, ": ")
	case *ast.IndexSignature:
		if m.Modifiers.Has(ast.ModifierReadonly) {
			p.write("readonly ")
		}
		p.indexSignature(m)
	case *ast.AccessorDeclaration:
		p.accessor(m)
	}
}

func (p *Printer) indexSignature(m *ast.IndexSignature) {
	p.write("[")
	for i, param := range m.Parameters {
		if i > 0 {
			p.write(", ")
		}
		p.write(param.Name)
		if param.Type != nil {
			p.write(": ")
			p.typ(param.Type, levelTop)
		}
	}
	p.write("]")
	if m.Type != nil {
		p.write(": ")
		p.typ(m.Type, levelTop)
	}
}

func (p *Printer) accessor(m *ast.AccessorDeclaration) {
	if m.Kind == ast.AccessorGet {
		p.write("get ")
	} else {
		p.write("set ")
	}
	p.propertyName(m.Name)
	p.parameters(m.Parameters)
	if m.Type != nil {
		p.write(": ")
		p.typ(m.Type, levelTop)
	}
}

func (p *Printer) propertyName(n ast.PropertyName) {
	switch n.Kind {
	case ast.PropertyNameString:
		p.write(QuoteString(n.Text))
	case ast.PropertyNameComputed:
		p.write("[")
		p.expression(n.Expr)
		p.write("]")
	default:
		p.write(n.Text)
	}
}

// PropertyNameText returns the printed form of a member name.
func PropertyNameText(n ast.PropertyName) string {
	q := New(Options{SingleLine: true})
	q.propertyName(n)
	return q.b.String()
}

func (p *Printer) signature(tps []*ast.TypeParameter, params []*ast.Parameter, ret ast.TypeNode, sep string) {
	p.typeParameters(tps)
	p.parameters(params)
	if ret != nil {
		p.write(sep)
		p.typ(ret, levelTop)
	}
}

func (p *Printer) typeParameters(tps []*ast.TypeParameter) {
	if len(tps) == 0 {
		return
	}
	p.write("<")
	for i, tp := range tps {
		if i > 0 {
			p.write(", ")
		}
		p.typeParameter(tp)
	}
	p.write(">")
}

func (p *Printer) typeParameter(tp *ast.TypeParameter) {
	p.modifiers(tp.Modifiers)
	p.write(tp.Name)
	if tp.Constraint != nil {
		p.write(" extends ")
		p.typ(tp.Constraint, levelTop)
	}
	if tp.Default != nil {
		p.write(" = ")
		p.typ(tp.Default, levelTop)
	}
}

func (p *Printer) parameters(params []*ast.Parameter) {
	p.write("(")
	for i, param := range params {
		if i > 0 {
			p.write(", ")
		}
		p.modifiers(param.Modifiers)
		if param.Rest {
			p.write("...")
		}
		p.write(param.Name)
		if param.Optional || (param.Initializer != nil && !param.Rest) {
			p.write("?")
		}
		if param.Type != nil {
			p.write(": ")
			p.typ(param.Type, levelTop)
		}
	}
	p.write(")")
}

func (p *Printer) typeArguments(args []ast.TypeNode) {
	if len(args) == 0 {
		return
	}
	p.write("<")
	for i, a := range args {
		if i > 0 {
			p.write(", ")
		}
		p.typ(a, levelTop)
	}
	p.write(">")
}

// ---------------------------------------------------------------------------
// Types

// Precedence levels of type syntax. A node printed in a position requiring a
// higher level than its own is parenthesized.
const (
	levelTop          = iota // conditional, function and constructor types
	levelUnion               // union members
	levelIntersection        // intersection members
	levelOperator            // operands of keyof, readonly, unique
	levelPostfix             // array elements and indexed access objects
)

func typeLevel(n ast.TypeNode) int {
	switch n := n.(type) {
	case *ast.ConditionalType, *ast.FunctionType:
		return levelTop
	case *ast.UnionType:
		if len(n.Types) == 1 {
			return typeLevel(n.Types[0])
		}
		return levelUnion
	case *ast.IntersectionType:
		if len(n.Types) == 1 {
			return typeLevel(n.Types[0])
		}
		return levelIntersection
	case *ast.TypeOperator, *ast.InferType, *ast.TypePredicate:
		return levelOperator
	}
	return levelPostfix
}

func (p *Printer) typ(n ast.TypeNode, min int) {
	if n == nil {
		p.write("any")
		return
	}
	if typeLevel(n) < min {
		p.write("(")
		p.typ(n, levelTop)
		p.write(")")
		return
	}
	switch n := n.(type) {
	case *ast.KeywordType:
		p.write(string(n.Keyword))
	case *ast.LiteralType:
		if n.Kind == ast.LiteralString {
			p.write(QuoteString(n.Text))
		} else {
			p.write(n.Text)
		}
	case *ast.TypeReference:
		p.write(ast.EntityNameText(n.TypeName))
		p.typeArguments(n.TypeArguments)
	case *ast.UnionType:
		for i, t := range n.Types {
			if i > 0 {
				p.write(" | ")
			}
			p.typ(t, levelIntersection)
		}
	case *ast.IntersectionType:
		for i, t := range n.Types {
			if i > 0 {
				p.write(" & ")
			}
			p.typ(t, levelOperator)
		}
	case *ast.TypeLiteral:
		p.typeLiteral(n)
	case *ast.ArrayType:
		p.typ(n.ElementType, levelPostfix)
		p.write("[]")
	case *ast.TupleType:
		p.write("[")
		for i, e := range n.Elements {
			if i > 0 {
				p.write(", ")
			}
			if e.Rest {
				p.write("...")
			}
			if e.Name != "" {
				p.write(e.Name)
				if e.Optional {
					p.write("?")
				}
				p.write(": ")
				p.typ(e.Type, levelTop)
			} else {
				if e.Optional {
					p.typ(e.Type, levelPostfix)
					p.write("?")
				} else {
					p.typ(e.Type, levelTop)
				}
			}
		}
		p.write("]")
	case *ast.ParenthesizedType:
		p.write("(")
		p.typ(n.Type, levelTop)
		p.write(")")
	case *ast.FunctionType:
		if n.Abstract {
			p.write("abstract ")
		}
		if n.Constructor {
			p.write("new ")
		}
		p.signature(n.TypeParameters, n.Parameters, nil, "")
		p.write(" => ")
		p.typ(n.Type, levelTop)
	case *ast.TypeQuery:
		p.write("typeof " + ast.EntityNameText(n.ExprName))
		p.typeArguments(n.TypeArguments)
	case *ast.TypeOperator:
		p.write(n.Operator + " ")
		p.typ(n.Type, levelOperator)
	case *ast.IndexedAccessType:
		p.typ(n.ObjectType, levelPostfix)
		p.write("[")
		p.typ(n.IndexType, levelTop)
		p.write("]")
	case *ast.ConditionalType:
		p.typ(n.CheckType, levelUnion)
		p.write(" extends ")
		p.typ(n.ExtendsType, levelUnion)
		p.write(" ? ")
		p.typ(n.TrueType, levelTop)
		p.write(" : ")
		p.typ(n.FalseType, levelTop)
	case *ast.InferType:
		p.write("infer " + n.TypeParameter.Name)
		if n.TypeParameter.Constraint != nil {
			p.write(" extends ")
			p.typ(n.TypeParameter.Constraint, levelUnion)
		}
	case *ast.MappedType:
		p.mappedType(n)
	case *ast.TemplateLiteralType:
		p.write("`" + n.Head)
		for _, s := range n.Spans {
			p.write("${")
			p.typ(s.Type, levelTop)
			p.write("}" + s.Literal)
		}
		p.write("`")
	case *ast.TypePredicate:
		if n.Asserts {
			p.write("asserts ")
		}
		p.write(n.ParameterName)
		if n.Type != nil {
			p.write(" is ")
			p.typ(n.Type, levelTop)
		}
	case *ast.ImportType:
		if n.IsTypeOf {
			p.write("typeof ")
		}
		p.write("import(" + QuoteString(n.Argument) + ")")
		if n.Qualifier != nil {
			p.write("." + ast.EntityNameText(n.Qualifier))
		}
		p.typeArguments(n.TypeArguments)
	}
}

func (p *Printer) typeLiteral(n *ast.TypeLiteral) {
	if len(n.Members) == 0 {
		p.write("{}")
		return
	}
	if !n.Multiline || p.opts.SingleLine {
		p.write("{ ")
		for _, m := range n.Members {
			p.member(m)
			p.write("; ")
		}
		p.write("}")
		return
	}
	p.write("{")
	p.level++
	for _, m := range n.Members {
		if !p.opts.OmitComments {
			for _, c := range m.LeadingComments() {
				for _, line := range commentLines(c) {
					p.newline()
					p.write(line)
				}
			}
		}
		p.newline()
		p.member(m)
		p.write(";")
	}
	p.level--
	p.newline()
	p.write("}")
}

func (p *Printer) mappedType(n *ast.MappedType) {
	multiline := n.Multiline && !p.opts.SingleLine
	p.write("{")
	if multiline {
		p.level++
		p.newline()
	} else {
		p.write(" ")
	}
	if n.ReadonlyToken != "" {
		p.write(n.ReadonlyToken + " ")
	}
	p.write("[" + n.TypeParameter.Name + " in ")
	p.typ(n.TypeParameter.Constraint, levelTop)
	if n.NameType != nil {
		p.write(" as ")
		p.typ(n.NameType, levelTop)
	}
	p.write("]" + n.QuestionToken)
	if n.Type != nil {
		p.write(": ")
		p.typ(n.Type, levelTop)
	}
	p.write(";")
	if multiline {
		p.level--
		p.newline()
	} else {
		p.write(" ")
	}
	p.write("}")
}

// ---------------------------------------------------------------------------
// Expressions

func (p *Printer) expression(e ast.Expression) {
	switch e := e.(type) {
	case *ast.Identifier:
		p.write(e.Text)
	case *ast.PropertyAccessExpression:
		p.expression(e.Expression)
		p.write("." + e.Name.Text)
	case *ast.NumericLiteral:
		p.write(e.Text)
	case *ast.StringLiteral:
		p.write(QuoteString(e.Text))
	case *ast.KeywordExpression:
		p.write(e.Keyword)
	case *ast.PrefixUnaryExpression:
		p.write(e.Operator)
		p.expression(e.Operand)
	case *ast.BinaryExpression:
		p.expression(e.Left)
		p.write(" " + e.Operator + " ")
		p.expression(e.Right)
	case *ast.ParenthesizedExpression:
		p.write("(")
		p.expression(e.Expression)
		p.write(")")
	case *ast.CallExpression:
		p.expression(e.Expression)
		p.typeArguments(e.TypeArguments)
		p.write("(")
		for i, a := range e.Arguments {
			if i > 0 {
				p.write(", ")
			}
			p.expression(a)
		}
		p.write(")")
	case *ast.RawExpression:
		p.write(e.Text)
	}
}

// ExpressionToString renders an expression.
func ExpressionToString(e ast.Expression) string {
	q := New(Options{SingleLine: true})
	q.expression(e)
	return q.b.String()
}

// QuoteString renders s as a double-quoted string literal.
func QuoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u2028', '\u2029':
			b.WriteString(`\u` + strconv.FormatInt(int64(r), 16))
		default:
			if r < 0x20 || r == utf8.RuneError {
				b.WriteString(`\u`)
				h := strconv.FormatInt(int64(r), 16)
				b.WriteString(strings.Repeat("0", 4-len(h)) + h)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		ok := r == '$' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r >= utf8.RuneSelf
		if i > 0 {
			ok = ok || (r >= '0' && r <= '9')
		}
		if !ok {
			return false
		}
	}
	return true
}
