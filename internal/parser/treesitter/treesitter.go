// Package treesitter is a parser frontend that builds the dtsresolve syntax
// tree from a tree-sitter TypeScript parse. Common declaration shapes are
// lowered from the concrete syntax tree directly; constructs with no direct
// lowering are handed to the native parser over the node's byte range, so
// both frontends agree on every tree they produce.
package treesitter

import (
	"context"
	"slices"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/parser"
)

// Parse parses text as the module fileName. It has the shape of
// compiler.ParseFunc.
func Parse(fileName, text string) (*ast.SourceFile, []ast.Diagnostic) {
	return ParseContext(context.Background(), fileName, text)
}

// ParseContext is Parse with a context that can cancel the tree-sitter parse.
func ParseContext(ctx context.Context, fileName, text string) (*ast.SourceFile, []ast.Diagnostic) {
	file := ast.NewSourceFile(fileName, text)
	file.IsDeclarationFile = parser.IsDeclarationFileName(fileName)

	p := sitter.NewParser()
	p.SetLanguage(languageFor(fileName))
	src := []byte(text)
	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return file, []ast.Diagnostic{{
			File:    file,
			End:     len(text),
			Code:    ast.CodeDeclarationExpected,
			Message: "tree-sitter parse failed: " + err.Error(),
		}}
	}
	defer tree.Close()

	l := &lowerer{file: file, src: src}
	root := tree.RootNode()
	if root.HasError() {
		l.reportErrors(root)
	}
	file.Statements = l.statements(root)
	file.EndComments = l.takeComments()
	for _, st := range file.Statements {
		if parser.IsModuleIndicator(st) {
			file.ExternalModule = true
			break
		}
	}
	slices.SortStableFunc(l.diags, func(a, b ast.Diagnostic) int { return a.Pos - b.Pos })
	return file, slices.CompactFunc(l.diags, func(a, b ast.Diagnostic) bool { return a.Pos == b.Pos })
}

func languageFor(fileName string) *sitter.Language {
	if strings.HasSuffix(fileName, ".tsx") {
		return tsx.GetLanguage()
	}
	return typescript.GetLanguage()
}

// lowerer converts one tree. Comments seen since the last lowered node are
// pending until the next one claims them.
type lowerer struct {
	file  *ast.SourceFile
	src   []byte
	diags []ast.Diagnostic

	comments     []string
	commentStart int
}

func (l *lowerer) reportErrors(n *sitter.Node) {
	switch {
	case n.IsMissing():
		pos := int(n.StartByte())
		l.diags = append(l.diags, ast.Diagnostic{
			File: l.file, Pos: pos, End: pos + 1,
			Code: ast.CodeExpected, Message: "'" + n.Type() + "' expected.",
		})
		return
	case n.Type() == "ERROR":
		pos, end := l.span(n)
		l.diags = append(l.diags, ast.Diagnostic{
			File: l.file, Pos: pos, End: end,
			Code: ast.CodeDeclarationExpected, Message: "Declaration or statement expected.",
		})
		return
	}
	for _, c := range children(n) {
		if c.HasError() || c.IsMissing() {
			l.reportErrors(c)
		}
	}
}

// ---------------------------------------------------------------------------
// Node helpers

func children(n *sitter.Node) []*sitter.Node {
	count := int(n.ChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := range count {
		if c := n.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// named returns the named children of n other than comments.
func named(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for _, c := range children(n) {
		if c.IsNamed() && c.Type() != "comment" {
			out = append(out, c)
		}
	}
	return out
}

func firstNamed(n *sitter.Node) *sitter.Node {
	if kids := named(n); len(kids) > 0 {
		return kids[0]
	}
	return nil
}

// hasToken reports whether n has an anonymous child spelled tok.
func hasToken(n *sitter.Node, tok string) bool {
	for _, c := range children(n) {
		if !c.IsNamed() && c.Type() == tok {
			return true
		}
	}
	return false
}

func field(n *sitter.Node, name string) *sitter.Node {
	return n.ChildByFieldName(name)
}

func (l *lowerer) span(n *sitter.Node) (int, int) {
	return int(n.StartByte()), int(n.EndByte())
}

func (l *lowerer) textRange(n *sitter.Node) ast.TextRange {
	pos, end := l.span(n)
	if end <= pos {
		end = pos + 1
	}
	return ast.NewTextRange(pos, end)
}

func (l *lowerer) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(l.src)
}

func (l *lowerer) addComment(n *sitter.Node) {
	if len(l.comments) == 0 {
		l.commentStart = int(n.StartByte())
	}
	text := l.text(n)
	if strings.HasPrefix(text, "//") {
		text = strings.TrimRight(text, " \t\r")
	}
	l.comments = append(l.comments, text)
}

func (l *lowerer) takeComments() []string {
	c := l.comments
	l.comments = nil
	return c
}

// fallbackStart is where a delegated parse of n begins: at the first pending
// comment, so the native parser attaches the same comments it always would.
func (l *lowerer) fallbackStart(n *sitter.Node) int {
	if len(l.comments) > 0 {
		return l.commentStart
	}
	return int(n.StartByte())
}

func (l *lowerer) note(diags []ast.Diagnostic) {
	l.diags = append(l.diags, diags...)
}

// unquote returns the value of a string literal node's text.
func unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	body := raw[1 : len(raw)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}
	if raw[0] == '\'' {
		body = strings.ReplaceAll(body, `\'`, `'`)
		body = strings.ReplaceAll(body, `"`, `\"`)
	}
	if s, err := strconv.Unquote(`"` + body + `"`); err == nil {
		return s
	}
	return body
}
