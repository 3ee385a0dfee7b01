package parser

import (
	"github.com/tsgonest/dtsresolve/internal/ast"
)

// The At functions parse one production from file.Text[pos:end]. Ranges of
// the returned nodes are offsets into the whole file, so other frontends can
// delegate sub-trees they do not lower themselves.

// ParseTypeAt parses a type.
func ParseTypeAt(file *ast.SourceFile, pos, end int) (ast.TypeNode, []ast.Diagnostic) {
	p := newFragmentParser(file, pos, end)
	t := p.parseType()
	p.expectEnd()
	return t, p.diags
}

// ParseReturnTypeAt parses a return type, which may be a type predicate.
func ParseReturnTypeAt(file *ast.SourceFile, pos, end int) (ast.TypeNode, []ast.Diagnostic) {
	p := newFragmentParser(file, pos, end)
	t := p.parseReturnType()
	p.expectEnd()
	return t, p.diags
}

// ParseExpressionAt parses an initializer or heritage expression.
func ParseExpressionAt(file *ast.SourceFile, pos, end int) (ast.Expression, []ast.Diagnostic) {
	p := newFragmentParser(file, pos, end)
	e := p.parseAssignmentExpression()
	p.expectEnd()
	return e, p.diags
}

// ParseStatementsAt parses a statement list.
func ParseStatementsAt(file *ast.SourceFile, pos, end int) ([]ast.Statement, []ast.Diagnostic) {
	p := newFragmentParser(file, pos, end)
	return p.parseStatements(false), p.diags
}

// ParseClassMemberAt parses one class member. The result is nil for members
// that declare nothing, such as a static block.
func ParseClassMemberAt(file *ast.SourceFile, pos, end int) (ast.ClassElement, []ast.Diagnostic) {
	p := newFragmentParser(file, pos, end)
	m := p.parseClassMember()
	p.expectEnd()
	return m, p.diags
}

// ParseTypeMemberAt parses one interface or type literal member.
func ParseTypeMemberAt(file *ast.SourceFile, pos, end int) (ast.TypeElement, []ast.Diagnostic) {
	p := newFragmentParser(file, pos, end)
	m := p.parseTypeMember()
	if !p.eat(";") {
		p.eat(",")
	}
	p.expectEnd()
	return m, p.diags
}

func newFragmentParser(file *ast.SourceFile, pos, end int) *Parser {
	end = min(end, len(file.Text))
	p := &Parser{file: file, lastEnd: pos}
	p.s = NewScanner(file.Text[:end], p.errorAt)
	p.s.pos = min(pos, end)
	p.next()
	return p
}

func (p *Parser) expectEnd() {
	if p.s.Token() != TokenEOF {
		p.errorAtCurrent(ast.CodeExpected, "Unexpected token.")
	}
}

// ParseTypeParametersAt parses a bracketed type parameter list.
func ParseTypeParametersAt(file *ast.SourceFile, pos, end int) ([]*ast.TypeParameter, []ast.Diagnostic) {
	p := newFragmentParser(file, pos, end)
	tps := p.parseTypeParameters()
	p.expectEnd()
	return tps, p.diags
}

// ParseParametersAt parses a parenthesized parameter list.
func ParseParametersAt(file *ast.SourceFile, pos, end int) ([]*ast.Parameter, []ast.Diagnostic) {
	p := newFragmentParser(file, pos, end)
	params := p.parseParameters()
	p.expectEnd()
	return params, p.diags
}
