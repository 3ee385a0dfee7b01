package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsgonest/dtsresolve/internal/ast"
)

func parseClean(t *testing.T, text string) *ast.SourceFile {
	t.Helper()
	f, diags := ParseSourceFile("/p/a.d.ts", text)
	require.Empty(t, diags)
	return f
}

func TestParseInterface(t *testing.T) {
	f := parseClean(t, `/** Boxed value. */
export interface Box<T extends object = {}> extends Base<T>, ns.Other {
    readonly value: T;
    label?: string;
    get(key: string, ...rest: number[]): T | undefined;
}`)
	require.Len(t, f.Statements, 1)
	assert.True(t, f.ExternalModule)
	assert.True(t, f.IsDeclarationFile)

	d, ok := f.Statements[0].(*ast.InterfaceDeclaration)
	require.True(t, ok)
	assert.Equal(t, "Box", d.Name)
	assert.Equal(t, []string{"/** Boxed value. */"}, d.Comments)
	assert.True(t, d.Modifiers.Has(ast.ModifierExport))
	require.Len(t, d.TypeParameters, 1)
	assert.NotNil(t, d.TypeParameters[0].Constraint)
	assert.NotNil(t, d.TypeParameters[0].Default)

	bases := ast.ExtendsTypes(d.HeritageClauses)
	require.Len(t, bases, 2)
	assert.Len(t, bases[0].TypeArguments, 1)
	_, ok = bases[1].Expression.(*ast.PropertyAccessExpression)
	assert.True(t, ok)

	require.Len(t, d.Members, 3)
	value := d.Members[0].(*ast.PropertySignature)
	assert.True(t, value.Modifiers.Has(ast.ModifierReadonly))
	assert.True(t, d.Members[1].(*ast.PropertySignature).Optional)
	get := d.Members[2].(*ast.MethodSignature)
	require.Len(t, get.Parameters, 2)
	assert.True(t, get.Parameters[1].Rest)
	_, ok = get.Type.(*ast.UnionType)
	assert.True(t, ok)
}

func TestParseNamespaceNesting(t *testing.T) {
	f := parseClean(t, "declare namespace A.B.C {\n    const x: number;\n}\n")
	outer := f.Statements[0].(*ast.ModuleDeclaration)
	assert.Equal(t, "A", outer.Name)
	assert.False(t, f.ExternalModule)

	mid := outer.Body[0].(*ast.ModuleDeclaration)
	inner := mid.Body[0].(*ast.ModuleDeclaration)
	assert.True(t, mid.Dotted)
	assert.Equal(t, "C", inner.Name)
	assert.True(t, inner.Modifiers.Has(ast.ModifierExport))
	require.Len(t, inner.Body, 1)
}

func TestParseImportsAndExports(t *testing.T) {
	f := parseClean(t, `import type { A, B as C } from "./a";
import * as ns from "./ns";
import def, { type x } from "./d";
import eq = require("./eq");
export { A, C as D } from "./a";
export * as all from "./all";
export = eq;
`)
	require.Len(t, f.Statements, 7)

	imp := f.Statements[0].(*ast.ImportDeclaration)
	assert.True(t, imp.TypeOnly)
	assert.Equal(t, "./a", imp.ModuleSpecifier)
	assert.Equal(t, "B", imp.NamedBindings[1].PropertyName)
	assert.Equal(t, "C", imp.NamedBindings[1].Name)

	assert.Equal(t, "ns", f.Statements[1].(*ast.ImportDeclaration).NamespaceName)

	mixed := f.Statements[2].(*ast.ImportDeclaration)
	assert.Equal(t, "def", mixed.DefaultName)
	assert.True(t, mixed.NamedBindings[0].TypeOnly)

	assert.Equal(t, "./eq", f.Statements[3].(*ast.ImportEqualsDeclaration).ExternalModule)

	star := f.Statements[5].(*ast.ExportDeclaration)
	assert.True(t, star.All)
	assert.Equal(t, "all", star.NamespaceName)

	assert.True(t, f.Statements[6].(*ast.ExportAssignment).IsExportEquals)
}

func TestParseEnum(t *testing.T) {
	f := parseClean(t, "export declare const enum Level {\n    Low = 1,\n    // middle\n    Mid,\n    \"High\" = 3,\n}\n")
	e := f.Statements[0].(*ast.EnumDeclaration)
	assert.True(t, e.Modifiers.Has(ast.ModifierConst|ast.ModifierDeclare|ast.ModifierExport))
	require.Len(t, e.Members, 3)
	assert.Equal(t, []string{"// middle"}, e.Members[1].Comments)
	assert.Nil(t, e.Members[1].Initializer)
	assert.Equal(t, ast.PropertyNameString, e.Members[2].Name.Kind)
}

func TestParseTypePredicate(t *testing.T) {
	f := parseClean(t, "export declare function isString(x: unknown): x is string;\nexport declare function check(x: unknown): asserts x;\n")
	is := f.Statements[0].(*ast.FunctionDeclaration).Type.(*ast.TypePredicate)
	assert.Equal(t, "x", is.ParameterName)
	assert.False(t, is.Asserts)

	asserts := f.Statements[1].(*ast.FunctionDeclaration).Type.(*ast.TypePredicate)
	assert.True(t, asserts.Asserts)
	assert.Nil(t, asserts.Type)
}

func TestParseMappedAndConditional(t *testing.T) {
	f := parseClean(t, "type M<T> = { readonly [K in keyof T]?: T[K] };\ntype C<T> = T extends Array<infer U> ? U : never;\n")
	m := f.Statements[0].(*ast.TypeAliasDeclaration).Type.(*ast.MappedType)
	assert.Equal(t, "readonly", m.ReadonlyToken)
	assert.Equal(t, "?", m.QuestionToken)
	assert.Equal(t, "K", m.TypeParameter.Name)

	c := f.Statements[1].(*ast.TypeAliasDeclaration).Type.(*ast.ConditionalType)
	ref := c.ExtendsType.(*ast.TypeReference)
	_, ok := ref.TypeArguments[0].(*ast.InferType)
	assert.True(t, ok)
}

func TestParseReportsErrors(t *testing.T) {
	f, diags := ParseSourceFile("/p/a.d.ts", "export interface A {\n    x: ;\n}\nexport type B = string;\n")
	require.NotEmpty(t, diags)
	assert.Equal(t, ast.CodeTypeExpected, diags[0].Code)
	line, _ := f.LineAndColumn(diags[0].Pos)
	assert.Equal(t, 1, line)
	// Parsing resumes after the error.
	assert.Equal(t, "B", ast.DeclarationName(f.Statements[len(f.Statements)-1]))
}

func TestParseExpressionStatementInDeclarationFile(t *testing.T) {
	_, diags := ParseSourceFile("/p/a.d.ts", "foo();\n")
	require.Len(t, diags, 1)
	assert.Equal(t, ast.CodeDeclarationExpected, diags[0].Code)

	_, diags = ParseSourceFile("/p/a.ts", "foo();\n")
	assert.Empty(t, diags)
}

func TestIsDeclarationFileName(t *testing.T) {
	assert.True(t, IsDeclarationFileName("a.d.ts"))
	assert.True(t, IsDeclarationFileName("a.d.mts"))
	assert.True(t, IsDeclarationFileName("a.d.cts"))
	assert.False(t, IsDeclarationFileName("a.ts"))
}
