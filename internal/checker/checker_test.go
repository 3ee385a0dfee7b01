package checker

import (
	"path"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/parser"
)

type memHost struct {
	files  []*ast.SourceFile
	byName map[string]*ast.SourceFile
}

func newMemHost(t *testing.T, sources map[string]string) *memHost {
	t.Helper()
	h := &memHost{byName: map[string]*ast.SourceFile{}}
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f, diags := parser.ParseSourceFile(name, sources[name])
		require.Empty(t, diags, "parse %s", name)
		h.files = append(h.files, f)
		h.byName[name] = f
	}
	return h
}

func (h *memHost) SourceFiles() []*ast.SourceFile { return h.files }

func (h *memHost) ResolveModule(spec string, from *ast.SourceFile) (*ast.SourceFile, bool) {
	if !strings.HasPrefix(spec, ".") {
		return nil, false
	}
	base := path.Join(path.Dir(from.FileName), spec)
	base = strings.TrimSuffix(base, ".js")
	for _, ext := range []string{".d.ts", ".ts"} {
		if f, ok := h.byName[base+ext]; ok {
			return f, true
		}
	}
	return nil, false
}

func setup(t *testing.T, sources map[string]string) (*Checker, *memHost) {
	t.Helper()
	h := newMemHost(t, sources)
	return New(h), h
}

func aliasDecl(t *testing.T, f *ast.SourceFile, name string) *ast.TypeAliasDeclaration {
	t.Helper()
	for _, st := range f.Statements {
		if a, ok := st.(*ast.TypeAliasDeclaration); ok && a.Name == name {
			return a
		}
	}
	t.Fatalf("type alias %s not found", name)
	return nil
}

// expand prints the right-hand side of a type alias fully evaluated.
func expand(t *testing.T, c *Checker, f *ast.SourceFile, name string) string {
	t.Helper()
	decl := aliasDecl(t, f, name)
	typ := c.GetTypeFromTypeNode(decl.Type)
	return c.typeToString(typ, decl, InTypeAlias|NoTruncation)
}

func TestAliasesPrintByName(t *testing.T) {
	c, h := setup(t, map[string]string{
		"/a.d.ts": `type A = { x: string };
export interface B { a: A; }
export type C = A;`,
	})
	f := h.byName["/a.d.ts"]
	decl := aliasDecl(t, f, "C")
	typ := c.GetTypeFromTypeNode(decl.Type)
	assert.Equal(t, "A", c.TypeToString(typ, decl))
	assert.Equal(t, "{ x: string; }", expand(t, c, f, "C"))
}

func TestGenericAliasInstantiation(t *testing.T) {
	c, h := setup(t, map[string]string{
		"/a.d.ts": `type Box<T> = { value: T; list: T[]; };
export type S = Box<string>;
export type N = Box<Box<number>>;`,
	})
	f := h.byName["/a.d.ts"]
	assert.Equal(t, "{ value: string; list: string[]; }", expand(t, c, f, "S"))
	assert.Equal(t, "{ value: Box<number>; list: Box<number>[]; }", expand(t, c, f, "N"))
}

func TestLibraryMappedTypes(t *testing.T) {
	c, h := setup(t, map[string]string{
		"/a.d.ts": `interface P {
    a: string;
    b?: number;
    readonly c: boolean;
}
export type Opt = Partial<P>;
export type Req = Required<P>;
export type Keys = keyof P;
export type A = P["a"];
export type B = P["b"];
export type Picked = Pick<P, "a" | "c">;
export type Rec = Record<"x" | "y", number>;`,
	})
	f := h.byName["/a.d.ts"]
	assert.Equal(t, "{ a?: string; b?: number; readonly c?: boolean; }", expand(t, c, f, "Opt"))
	assert.Equal(t, "{ a: string; b: number; readonly c: boolean; }", expand(t, c, f, "Req"))
	assert.Equal(t, `"a" | "b" | "c"`, expand(t, c, f, "Keys"))
	assert.Equal(t, "string", expand(t, c, f, "A"))
	assert.Equal(t, "number | undefined", expand(t, c, f, "B"))
	assert.Equal(t, "{ a: string; readonly c: boolean; }", expand(t, c, f, "Picked"))
	assert.Equal(t, "{ x: number; y: number; }", expand(t, c, f, "Rec"))
}

func TestConditionalTypes(t *testing.T) {
	c, h := setup(t, map[string]string{
		"/a.d.ts": `declare function f(a: string): number;
export type Ex = Exclude<"a" | "b" | "c", "a">;
export type Ext = Extract<string | number | boolean, string | boolean>;
export type R = ReturnType<typeof f>;
export type P = Parameters<typeof f>;
export type IsStr<T> = T extends string ? "yes" : "no";
export type Y = IsStr<"x">;
export type Dist = IsStr<"x" | 1>;
export type Generic<T> = T extends string ? 1 : 2;`,
	})
	f := h.byName["/a.d.ts"]
	assert.Equal(t, `"b" | "c"`, expand(t, c, f, "Ex"))
	assert.Equal(t, "string | boolean", expand(t, c, f, "Ext"))
	assert.Equal(t, "number", expand(t, c, f, "R"))
	assert.Equal(t, "[a: string]", expand(t, c, f, "P"))
	assert.Equal(t, `"yes"`, expand(t, c, f, "Y"))
	assert.Equal(t, `"yes" | "no"`, expand(t, c, f, "Dist"))
	assert.Equal(t, "T extends string ? 1 : 2", expand(t, c, f, "Generic"))
}

func TestUnionNormalization(t *testing.T) {
	c, h := setup(t, map[string]string{
		"/a.d.ts": `export type B = true | false | string;
export type L = "a" | string;
export type N = never | number;
export type T = ` + "`on${\"a\" | \"b\"}`" + `;`,
	})
	f := h.byName["/a.d.ts"]
	assert.Equal(t, "boolean | string", expand(t, c, f, "B"))
	assert.Equal(t, "string", expand(t, c, f, "L"))
	assert.Equal(t, "number", expand(t, c, f, "N"))
	assert.Equal(t, `"ona" | "onb"`, expand(t, c, f, "T"))
}

func TestEnumValues(t *testing.T) {
	c, h := setup(t, map[string]string{
		"/a.d.ts": `export declare enum E {
    A,
    B = 5,
    C,
    D = "x",
    F = 1 << 3,
    G = B | F,
}`,
	})
	f := h.byName["/a.d.ts"]
	enum := c.SymbolOfDeclaration(f.Statements[0])
	require.NotNil(t, enum)
	members := c.EnumMembers(enum)
	require.Len(t, members, 6)
	want := []any{0.0, 5.0, 6.0, "x", 8.0, 13.0}
	for i, m := range members {
		v, ok := c.EnumMemberValue(m)
		require.True(t, ok, m.Name)
		assert.Equal(t, want[i], v, m.Name)
	}
}

func TestRecursiveAlias(t *testing.T) {
	c, h := setup(t, map[string]string{
		"/a.d.ts": `export type Tree = { value: number; children: Tree[]; };`,
	})
	f := h.byName["/a.d.ts"]
	assert.Equal(t, "{ value: number; children: Tree[]; }", expand(t, c, f, "Tree"))
}

func TestCrossModuleNames(t *testing.T) {
	c, h := setup(t, map[string]string{
		"/a.d.ts": `export interface Foo { x: string; }
export declare namespace NS {
    interface Inner { y: number; }
}`,
		"/b.d.ts": `import * as a from "./a";
export type ViaNamespace = { f: a.Foo };`,
		"/c.d.ts": `import { Foo as Bar, NS } from "./a";
export type ViaRename = { f: Bar };
export type Nested = { n: NS.Inner };`,
	})
	b := h.byName["/b.d.ts"]
	foo := c.LookupName("Foo", h.byName["/a.d.ts"], ast.SymbolType)
	require.NotNil(t, foo)

	assert.Equal(t, "{ f: Foo; }", expand(t, c, b, "ViaNamespace"))
	assert.Equal(t, "{ f: Bar; }", expand(t, c, h.byName["/c.d.ts"], "ViaRename"))
	assert.Equal(t, "{ n: NS.Inner; }", expand(t, c, h.byName["/c.d.ts"], "Nested"))

	decl := aliasDecl(t, b, "ViaNamespace")
	node := c.TypeToTypeNode(c.GetTypeFromTypeNode(decl.Type), decl, InTypeAlias)
	lit, ok := node.(*ast.TypeLiteral)
	require.True(t, ok)
	ref := lit.Members[0].(*ast.PropertySignature).Type.(*ast.TypeReference)
	assert.Same(t, foo, ref.Symbol)

	mod := c.ModuleOf(foo)
	require.NotNil(t, mod)
	assert.Equal(t, "/a.d.ts", mod.Name)
	assert.Equal(t, "Foo", c.ExportName(mod, foo))
	assert.Same(t, h.byName["/a.d.ts"], mod.FirstDeclaration(), "a file module is declared by its source file")
}

func TestExportVisibility(t *testing.T) {
	c, h := setup(t, map[string]string{
		"/a.d.ts": `interface Hidden {}
interface Listed {}
export interface Shown {}
export { Listed as Renamed };
declare namespace Ambient {
    interface Member {}
}`,
	})
	f := h.byName["/a.d.ts"]
	lookup := func(name string) *ast.Symbol {
		sym := c.LookupName(name, f, ast.SymbolType|ast.SymbolNamespace)
		require.NotNil(t, sym, name)
		return sym
	}
	assert.False(t, lookup("Hidden").Exported)
	assert.True(t, lookup("Listed").Exported)
	assert.True(t, lookup("Shown").Exported)
	assert.Equal(t, "Renamed", c.ExportName(f.Symbol, lookup("Listed")))
	ambient := lookup("Ambient")
	assert.True(t, ambient.Exports["Member"].Exported)
}

func TestConcurrentQueries(t *testing.T) {
	c, h := setup(t, map[string]string{
		"/a.d.ts": `interface P { a: string; b: number; }
export type K = keyof P;
export type O = Partial<P>;`,
	})
	f := h.byName["/a.d.ts"]
	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "K"
			if i%2 == 1 {
				name = "O"
			}
			decl := aliasDecl(t, f, name)
			results[i] = c.TypeToString(c.GetTypeFromTypeNode(decl.Type), decl)
		}(i)
	}
	wg.Wait()
	for i, r := range results {
		if i%2 == 0 {
			assert.Equal(t, `"a" | "b"`, r)
		} else {
			assert.Equal(t, "Partial<P>", r)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		0:       "0",
		1:       "1",
		-1:      "-1",
		1.5:     "1.5",
		1e21:    "1e+21",
		1e-7:    "1e-7",
		4294967: "4294967",
	}
	for v, want := range cases {
		assert.Equal(t, want, FormatNumber(v))
	}
	v, ok := ParseNumber("0xFF")
	require.True(t, ok)
	assert.Equal(t, 255.0, v)
	v, ok = ParseNumber("1_000")
	require.True(t, ok)
	assert.Equal(t, 1000.0, v)
}
