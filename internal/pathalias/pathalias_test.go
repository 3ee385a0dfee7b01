package pathalias

import (
	"reflect"
	"strings"
	"testing"
)

// A typical library layout:
//   paths: { "@app/*": ["src/*"] }
//   rootDir: "./src"
//   outDir: "./dist/types"
//
// @app/models/user → /project/src/models/user (source)
//                  → /project/dist/types/models/user (output)

func makeAliases(baseDir, outDir, rootDir string, paths map[string][]string) *Aliases {
	return New(Config{
		BaseDir: baseDir,
		OutDir:  outDir,
		RootDir: rootDir,
		Paths:   paths,
	})
}

func TestMatch_Wildcard(t *testing.T) {
	a := makeAliases("/project", "/project/dist/types", "/project/src",
		map[string][]string{"@app/*": {"src/*", "lib/*"}})

	got := a.Match("@app/models/user")
	want := []string{"/project/src/models/user", "/project/lib/models/user"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Match() = %v, want %v", got, want)
	}
}

func TestMatch_ExactBeforeWildcard(t *testing.T) {
	a := makeAliases("/project", "", "",
		map[string][]string{
			"@db/client":   {"src/infrastructure/db/client"},
			"@db/client/*": {"src/infrastructure/db/client/*"},
		})

	got := a.Match("@db/client")
	if len(got) != 1 || got[0] != "/project/src/infrastructure/db/client" {
		t.Errorf("expected exact match, got %v", got)
	}
}

func TestMatch_LongestPrefixWins(t *testing.T) {
	a := makeAliases("/project", "", "",
		map[string][]string{
			"@app/*":      {"src/*"},
			"@app/auth/*": {"packages/auth/*"},
		})

	got := a.Match("@app/auth/token")
	if len(got) != 1 || got[0] != "/project/packages/auth/token" {
		t.Errorf("expected longest-prefix match, got %v", got)
	}
}

func TestMatch_SkipsRelativeAndUnmatched(t *testing.T) {
	a := makeAliases("/project", "", "", map[string][]string{"@app/*": {"src/*"}})
	for _, spec := range []string{"./local", "../up", "/abs/path", "lodash"} {
		if got := a.Match(spec); got != nil {
			t.Errorf("Match(%q) = %v, want nil", spec, got)
		}
	}
}

func TestRewriteSpecifiers(t *testing.T) {
	a := makeAliases("/project", "/project/dist/types", "/project/src",
		map[string][]string{"@app/*": {"src/*"}})

	input := `import { User } from "@app/models/user";
import * as cfg from '@app/config';
export type Ref = import("@app/models/ref").Ref;
export { Item } from "./item";
import { z } from "zod";`
	out := a.RewriteSpecifiers(input, "/project/dist/types/api/index.d.ts")

	for _, want := range []string{
		`from "../models/user"`,
		`from '../config'`,
		`import("../models/ref")`,
		`from "./item"`,
		`from "zod"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "@app/") {
		t.Errorf("aliases should have been rewritten, got:\n%s", out)
	}
}

func TestRewriteSpecifiers_SameDirectory(t *testing.T) {
	a := makeAliases("/project", "/project/dist", "/project/src",
		map[string][]string{"@app/*": {"src/*"}})

	out := a.RewriteSpecifiers(`import { A } from "@app/a";`, "/project/dist/index.d.ts")
	if !strings.Contains(out, `"./a"`) {
		t.Errorf("expected ./a, got %s", out)
	}
}

func TestRewriteSpecifiers_TwoOnOneLine(t *testing.T) {
	a := makeAliases("/project", "/project/dist", "/project/src",
		map[string][]string{"@app/*": {"src/*"}})

	out := a.RewriteSpecifiers(`export type P = [import("@app/a").A, import("@app/b").B];`, "/project/dist/x.d.ts")
	if out != `export type P = [import("./a").A, import("./b").B];` {
		t.Errorf("unexpected rewrite: %s", out)
	}
}

func TestRewriteSpecifiers_NoAliases(t *testing.T) {
	a := makeAliases("", "", "", nil)
	input := `import { A } from "@app/a";`
	if out := a.RewriteSpecifiers(input, "/x.d.ts"); out != input {
		t.Errorf("expected no change, got %s", out)
	}
}

func TestHasAliases(t *testing.T) {
	if makeAliases("", "", "", nil).HasAliases() {
		t.Error("expected no aliases")
	}
	if !makeAliases("", "", "", map[string][]string{"@app/*": {"src/*"}}).HasAliases() {
		t.Error("expected aliases")
	}
	var nilAliases *Aliases
	if nilAliases.HasAliases() {
		t.Error("nil aliases should report none")
	}
}

func TestSourceToOutput(t *testing.T) {
	tests := []struct {
		name    string
		aliases *Aliases
		srcPath string
		want    string
	}{
		{
			name:    "rootDir and outDir",
			aliases: makeAliases("/project", "/project/dist", "/project/src", nil),
			srcPath: "/project/src/models/user",
			want:    "/project/dist/models/user",
		},
		{
			name:    "outDir only",
			aliases: makeAliases("", "/project/dist", "", nil),
			srcPath: "/project/src/models/user",
			want:    "/project/dist/user",
		},
		{
			name:    "no outDir",
			aliases: makeAliases("", "", "", nil),
			srcPath: "/project/src/models/user",
			want:    "/project/src/models/user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.aliases.sourceToOutput(tt.srcPath); got != tt.want {
				t.Errorf("sourceToOutput(%s) = %s, want %s", tt.srcPath, got, tt.want)
			}
		})
	}
}

func TestInferRootDir(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{
			name:  "all under src",
			files: []string{"/project/src/index.d.ts", "/project/src/models.d.ts", "/project/src/api/client.d.ts"},
			want:  "/project/src",
		},
		{
			name:  "different roots",
			files: []string{"/project/src/index.d.ts", "/project/types/extra.d.ts"},
			want:  "/project",
		},
		{
			name:  "sibling with shared prefix",
			files: []string{"/project/src/index.d.ts", "/project/srcgen/gen.d.ts"},
			want:  "/project",
		},
		{
			name:  "empty",
			files: nil,
			want:  "",
		},
		{
			name:  "single file",
			files: []string{"/project/src/index.d.ts"},
			want:  "/project/src",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferRootDir(tt.files); got != tt.want {
				t.Errorf("InferRootDir() = %q, want %q", got, tt.want)
			}
		})
	}
}
