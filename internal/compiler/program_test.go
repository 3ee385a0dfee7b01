package compiler

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/pathalias"
	"github.com/tsgonest/dtsresolve/internal/resolver"
	"github.com/tsgonest/dtsresolve/internal/testutil"
)

func newTestProgram(t *testing.T, files map[string]string, opts Options) *Program {
	t.Helper()
	fs := testutil.NewMemoryVFS("/project", files)
	opts.FS = fs
	if opts.Dir == "" {
		opts.Dir = "/project"
	}
	if opts.Include == nil && opts.Files == nil {
		opts.Include = []string{"src/**/*.d.ts"}
	}
	opts.Logger = zaptest.NewLogger(t).Sugar()
	p, err := NewProgram(context.Background(), opts)
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	return p
}

func fileNames(files []*ast.SourceFile) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.FileName
	}
	return names
}

func TestNewProgram_DiscoversRootsAndImports(t *testing.T) {
	p := newTestProgram(t, map[string]string{
		"src/index.d.ts":              `import * as m from "./models"; export { m };`,
		"src/models.d.ts":             `import type { Dep } from "dep"; export interface User { d: Dep; }`,
		"src/skip.ts":                 `export {};`,
		"node_modules/dep/index.d.ts": `export interface Dep {}`,
		"other/outside.d.ts":          `export {};`,
	}, Options{})

	roots := fileNames(p.RootFiles())
	if strings.Join(roots, ",") != "/project/src/index.d.ts,/project/src/models.d.ts" {
		t.Errorf("unexpected roots %v", roots)
	}
	dep, ok := p.File("/project/node_modules/dep/index.d.ts")
	if !ok {
		t.Fatalf("imported dependency not loaded: %v", fileNames(p.SourceFiles()))
	}
	if p.IsRoot(dep) {
		t.Error("imported dependency should not be a root")
	}
	if _, ok := p.File("/project/other/outside.d.ts"); ok {
		t.Error("unmatched file should not be loaded")
	}
	if len(p.Diagnostics()) != 0 {
		t.Errorf("unexpected diagnostics %v", p.Diagnostics())
	}
}

func TestNewProgram_ExplicitFiles(t *testing.T) {
	p := newTestProgram(t, map[string]string{
		"src/a.d.ts": `export type A = string;`,
		"src/b.d.ts": `export type B = number;`,
	}, Options{Files: []string{"src/b.d.ts"}})

	if got := fileNames(p.RootFiles()); len(got) != 1 || got[0] != "/project/src/b.d.ts" {
		t.Errorf("unexpected roots %v", got)
	}
}

func TestNewProgram_MissingExplicitFile(t *testing.T) {
	fs := testutil.NewMemoryVFS("/project", map[string]string{})
	_, err := NewProgram(context.Background(), Options{Dir: "/project", FS: fs, Files: []string{"nope.d.ts"}})
	if err == nil || !strings.Contains(err.Error(), "file not found") {
		t.Fatalf("expected file not found error, got %v", err)
	}
}

func TestProgram_ResolveModuleThroughAliases(t *testing.T) {
	files := map[string]string{
		"src/index.d.ts":        `import { User } from "@app/models/user"; export type U = User;`,
		"src/models/user.d.ts":  `export interface User { id: string; }`,
		"src/models/extra.d.ts": `export {};`,
	}
	fs := testutil.NewMemoryVFS("/project", files)
	aliases := pathalias.New(pathalias.Config{BaseDir: "/project", Paths: map[string][]string{"@app/*": {"src/*"}}})
	p := newTestProgram(t, files, Options{
		Include:  []string{"src/index.d.ts"},
		Resolver: resolver.New(fs, aliases, nil),
	})

	index, _ := p.File("/project/src/index.d.ts")
	target, ok := p.ResolveModule("@app/models/user", index)
	if !ok || target.FileName != "/project/src/models/user.d.ts" {
		t.Fatalf("ResolveModule = %v, %v", target, ok)
	}
	if _, ok := p.ResolveModule("./missing", index); ok {
		t.Error("missing module should not resolve")
	}

	c := p.Checker()
	if c != p.Checker() {
		t.Error("Checker should be created once")
	}
	if mod := c.ResolveModule("@app/models/user", index); mod == nil {
		t.Error("checker should resolve the aliased module")
	}
}

func TestNewProgram_CollectsSyntaxErrors(t *testing.T) {
	p := newTestProgram(t, map[string]string{
		"src/b.d.ts": `export type B = ;`,
		"src/a.d.ts": `export type A = ;`,
	}, Options{})

	diags := p.Diagnostics()
	if len(diags) < 2 {
		t.Fatalf("expected diagnostics for both files, got %v", diags)
	}
	if diags[0].File.FileName != "/project/src/a.d.ts" {
		t.Errorf("diagnostics should be sorted by file, first is %s", diags[0].File.FileName)
	}
	if got := FilesWithSyntaxErrors(diags); !got["/project/src/a.d.ts"] || !got["/project/src/b.d.ts"] {
		t.Errorf("FilesWithSyntaxErrors = %v", got)
	}
}

func TestImportedSpecifiers(t *testing.T) {
	p := newTestProgram(t, map[string]string{
		"src/a.d.ts": `import { X } from "./x";
import y = require("./y");
export * from "./z";
declare module "ambient" {
    import { W } from "./w";
}
export {};`,
	}, Options{})
	f, _ := p.File("/project/src/a.d.ts")
	got := strings.Join(ImportedSpecifiers(f), ",")
	if got != "./x,./y,./z,./w" {
		t.Errorf("ImportedSpecifiers = %s", got)
	}
}
