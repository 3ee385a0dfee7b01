package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsgonest/dtsresolve/internal/ast"
)

func TestParseTypeAtKeepsFileOffsets(t *testing.T) {
	text := "type A = string | Box<number>;"
	file := ast.NewSourceFile("/p/a.d.ts", text)
	pos := strings.Index(text, "string")
	end := strings.Index(text, ";")

	typ, diags := ParseTypeAt(file, pos, end)
	require.Empty(t, diags)
	u, ok := typ.(*ast.UnionType)
	require.True(t, ok)
	assert.Equal(t, pos, u.Pos)
	assert.Equal(t, end, u.End)

	ref := u.Types[1].(*ast.TypeReference)
	assert.Equal(t, strings.Index(text, "Box"), ref.Pos)
}

func TestParseTypeAtTrailingTokens(t *testing.T) {
	text := "string number"
	file := ast.NewSourceFile("/p/a.d.ts", text)
	_, diags := ParseTypeAt(file, 0, len(text))
	require.Len(t, diags, 1)
	assert.Equal(t, strings.Index(text, "number"), diags[0].Pos)
}

func TestParseStatementsAtCollectsComments(t *testing.T) {
	text := "interface A {}\n// note\nexport declare const x: A;\n"
	file := ast.NewSourceFile("/p/a.d.ts", text)
	file.IsDeclarationFile = true
	stmts, diags := ParseStatementsAt(file, strings.Index(text, "// note"), len(text))
	require.Empty(t, diags)
	require.Len(t, stmts, 1)
	assert.Equal(t, []string{"// note"}, ast.StatementComments(stmts[0]))
}

func TestParseMembersAt(t *testing.T) {
	text := "class C {\n    private constructor(a: string);\n}\ninterface I {\n    [key: string]: number,\n}\n"
	file := ast.NewSourceFile("/p/a.d.ts", text)

	start := strings.Index(text, "private")
	end := strings.Index(text, ";") + 1
	m, diags := ParseClassMemberAt(file, start, end)
	require.Empty(t, diags)
	ctor, ok := m.(*ast.ConstructorDeclaration)
	require.True(t, ok)
	assert.True(t, ctor.Modifiers.Has(ast.ModifierPrivate))
	assert.Len(t, ctor.Parameters, 1)

	start = strings.Index(text, "[key")
	end = strings.Index(text, "number") + len("number")
	el, diags := ParseTypeMemberAt(file, start, end)
	require.Empty(t, diags)
	_, ok = el.(*ast.IndexSignature)
	assert.True(t, ok)
}

func TestParseSignaturePartsAt(t *testing.T) {
	text := "<const T extends string, in out U>(a?: T, ...b: U[])"
	file := ast.NewSourceFile("/p/a.d.ts", text)
	split := strings.Index(text, "(")

	tps, diags := ParseTypeParametersAt(file, 0, split)
	require.Empty(t, diags)
	require.Len(t, tps, 2)
	assert.True(t, tps[0].Modifiers.Has(ast.ModifierConst))
	assert.True(t, tps[1].Modifiers.Has(ast.ModifierIn|ast.ModifierOut))

	params, diags := ParseParametersAt(file, split, len(text))
	require.Empty(t, diags)
	require.Len(t, params, 2)
	assert.True(t, params[0].Optional)
	assert.True(t, params[1].Rest)
}
