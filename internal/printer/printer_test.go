package printer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/parser"
)

// Canonical sources print back unchanged.
func TestPrintRoundTrip(t *testing.T) {
	sources := map[string]string{
		"imports": `import type { A, B as C } from "./a";
import * as ns from "./ns";
export { A, C as D } from "./a";
export * as all from "./all";
`,
		"function": "export declare function f<T extends string = \"x\">(a: T, ...rest: number[]): T | undefined;\n",
		"types": "export type U = (A | B)[];\n" +
			"export type F = new (x: string) => void;\n" +
			"export type C<T> = T extends string ? \"s\" : never;\n" +
			"export type M<T> = { readonly [K in keyof T]?: T[K]; };\n" +
			"export type L = { a: string; b?: number; };\n" +
			"export type T = `a${string}b`;\n" +
			"export declare const y: typeof x;\n",
		"multiline": "export type O = {\n    a: string;\n};\n",
		"enum":      "export declare enum E {\n    A = 1,\n    B,\n}\n",
		"namespace": "declare namespace A.B {\n    const x: number;\n}\n",
		"comments":  "/** Doc. */\nexport declare const v: string;\n",
		"interface": "export interface I<T> extends Base<T> {\n    readonly id: string;\n    get(key: string): T;\n    (x: T): void;\n    [key: string]: unknown;\n}\n",
		"class":     "export declare class W<T> extends Base<T> implements I<T> {\n    private constructor();\n    static create(): W<string>;\n    value?: T;\n}\n",
		"module":    "declare module \"ext\" {\n    export const y: number;\n}\n",
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			f, diags := parser.ParseSourceFile("/p/a.d.ts", src)
			require.Empty(t, diags)
			assert.Equal(t, src, New(Options{}).PrintFile(f))
		})
	}
}

func TestPrintOptions(t *testing.T) {
	f, diags := parser.ParseSourceFile("/p/a.d.ts", "// lead\nexport type O = {\n    a: string;\n};\n")
	require.Empty(t, diags)

	got := New(Options{Indent: "  ", OmitComments: true}).PrintFile(f)
	assert.Equal(t, "export type O = {\n  a: string;\n};\n", got)

	got = New(Options{SingleLine: true}).PrintFile(f)
	assert.Equal(t, "// lead\nexport type O = { a: string; };\n", got)

	got = New(Options{NewLine: "\r\n", OmitComments: true}).PrintFile(f)
	assert.Equal(t, "export type O = {\r\n    a: string;\r\n};\r\n", got)
}

func TestTypeToStringParenthesizes(t *testing.T) {
	a := ast.NewTypeReference(ast.NewIdentifier("A"), nil, nil)
	b := ast.NewTypeReference(ast.NewIdentifier("B"), nil, nil)
	union := &ast.UnionType{Types: []ast.TypeNode{a, b}}

	assert.Equal(t, "(A | B)[]", TypeToString(&ast.ArrayType{ElementType: union}))
	assert.Equal(t, "keyof (A | B)", TypeToString(&ast.TypeOperator{Operator: "keyof", Type: union}))
	fn := &ast.FunctionType{Type: ast.NewKeyword(ast.KeywordVoid)}
	assert.Equal(t, "(() => void) | A", TypeToString(&ast.UnionType{Types: []ast.TypeNode{fn, a}}))
	assert.Equal(t, "A & B", TypeToString(&ast.IntersectionType{Types: []ast.TypeNode{a, b}}))
}

func TestQuoteString(t *testing.T) {
	assert.Equal(t, `"a\"b"`, QuoteString(`a"b`))
	assert.Equal(t, `"line\nbreak"`, QuoteString("line\nbreak"))
	assert.Equal(t, `"\u0001"`, QuoteString("\x01"))
}

func TestPropertyNameText(t *testing.T) {
	assert.Equal(t, "plain", PropertyNameText(ast.PropertyName{Kind: ast.PropertyNameIdentifier, Text: "plain"}))
	assert.Equal(t, `"needs-quotes"`, PropertyNameText(ast.PropertyName{Kind: ast.PropertyNameString, Text: "needs-quotes"}))
}
