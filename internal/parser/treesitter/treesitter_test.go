package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/compiler"
	"github.com/tsgonest/dtsresolve/internal/parser"
	"github.com/tsgonest/dtsresolve/internal/printer"
)

var _ compiler.ParseFunc = Parse

var fixtures = map[string]string{
	"imports": `import type { A, B as C } from "./a";
import * as ns from "./ns";
import def, { x } from "./d";
export { A, C as D } from "./a";
export * from "./all";
export * as all from "./all";
`,
	"export equals": `import ns = require("./ns");
export = ns;
`,
	"umd": `export as namespace Lib;
export declare const version: string;
`,
	"interface": `/** Docs. */
export interface Box<T extends object = {}> extends Base<T>, ns.Other {
    // the value
    readonly value: T;
    label?: string;
    get(key: string, ...rest: number[]): T | undefined;
    (arg: T): void;
    new (arg: T): Box<T>;
    [key: string]: unknown;
}
`,
	"aliases": `export type Pair<K, V> = [K, V];
export type Fn = (a: string, b?: number) => Promise<void>;
export type Lookup<T> = T extends Array<infer U> ? U : keyof T;
export type Mapped<T> = { readonly [K in keyof T]?: T[K] };
export type Lit = "a" | 'b' | 1 | true | null;
export type Tpl = ` + "`a${string}`" + `;
export type Obj = {
    a: string;
    b: number[];
};
`,
	"values": `export declare const enum Level {
    Low = 1,
    High = 2,
}
export declare function pick<T, K extends keyof T>(obj: T, key: K): T[K];
export declare function isString(x: unknown): x is string;
export declare let count: number, total: number;
`,
	"class": `export declare class Widget<T> extends Base<T> implements Box<T> {
    private constructor();
    static create(): Widget<string>;
    value: T;
}
`,
	"namespaces": `declare namespace A.B {
    interface Inner {
        x: number;
    }
}
declare module "ext" {
    export const y: number;
}
declare global {
    interface Window {
        app: unknown;
    }
}
// trailing
`,
}

func TestParseMatchesNative(t *testing.T) {
	for name, src := range fixtures {
		t.Run(name, func(t *testing.T) {
			want, diags := parser.ParseSourceFile("/p/a.d.ts", src)
			require.Empty(t, diags)

			got, diags := Parse("/p/a.d.ts", src)
			require.Empty(t, diags)
			assert.Equal(t, want.ExternalModule, got.ExternalModule)
			assert.Equal(t, want.EndComments, got.EndComments)

			p := printer.New(printer.Options{})
			assert.Equal(t, p.PrintFile(want), p.PrintFile(got))
		})
	}
}

func TestParseLowersStructure(t *testing.T) {
	f, diags := Parse("/p/a.d.ts", fixtures["interface"])
	require.Empty(t, diags)
	require.Len(t, f.Statements, 1)

	d, ok := f.Statements[0].(*ast.InterfaceDeclaration)
	require.True(t, ok)
	assert.Equal(t, "Box", d.Name)
	assert.Equal(t, []string{"/** Docs. */"}, d.Comments)
	assert.True(t, d.Modifiers.Has(ast.ModifierExport))
	require.Len(t, d.Members, 6)
	assert.Equal(t, []string{"// the value"}, d.Members[0].LeadingComments())

	text := f.Text[d.Pos:d.End]
	assert.Contains(t, text, "export interface Box")
}

func TestParseReportsSyntaxErrors(t *testing.T) {
	f, diags := Parse("/p/a.d.ts", "export interface A {\n    x: ;\n}\nexport type B = string;\n")
	require.NotEmpty(t, diags)
	for _, d := range diags {
		assert.Same(t, f, d.File)
	}
	assert.Equal(t, "B", ast.DeclarationName(f.Statements[len(f.Statements)-1]))
}

func TestParseTSX(t *testing.T) {
	f, diags := Parse("/p/view.tsx", "export declare function View(props: { title: string }): unknown;\n")
	require.Empty(t, diags)
	assert.False(t, f.IsDeclarationFile)
	fn := f.Statements[0].(*ast.FunctionDeclaration)
	assert.Equal(t, "View", fn.Name)
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "plain", unquote(`"plain"`))
	assert.Equal(t, "it's", unquote(`'it\'s'`))
	assert.Equal(t, "a\nb", unquote(`"a\nb"`))
}
