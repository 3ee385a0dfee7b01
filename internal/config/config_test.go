package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !reflect.DeepEqual(cfg.Include, []string{"**/*.d.ts"}) {
		t.Fatalf("unexpected default include: %v", cfg.Include)
	}
	if cfg.OutDir != "dist/types" {
		t.Fatalf("expected default outDir 'dist/types', got %q", cfg.OutDir)
	}
	if cfg.Parser != ParserNative {
		t.Fatalf("expected native parser by default, got %q", cfg.Parser)
	}
	tr := cfg.Transform
	if !tr.ExpandEnumGenerics || !tr.FlattenInterfaces || !tr.PruneUnexported || !tr.QualifyNamespaces {
		t.Fatalf("expected every transform enabled by default, got %+v", tr)
	}
	if cfg.Format.Indent != 4 || !cfg.Format.MultilineObjectLiterals {
		t.Fatalf("unexpected default format: %+v", cfg.Format)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "dtsresolve.json", `{
		"include": ["types/**/*.d.ts"],
		"exclude": ["types/legacy/**"],
		"outDir": "out",
		"paths": {"@app/*": ["types/*"]},
		"workers": 2,
		"transform": {"flattenInterfaces": false}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg.Include, []string{"types/**/*.d.ts"}) {
		t.Fatalf("unexpected include: %v", cfg.Include)
	}
	if !reflect.DeepEqual(cfg.Exclude, []string{"types/legacy/**"}) {
		t.Fatalf("unexpected exclude: %v", cfg.Exclude)
	}
	if cfg.Workers != 2 {
		t.Fatalf("expected 2 workers, got %d", cfg.Workers)
	}
	if cfg.Transform.FlattenInterfaces {
		t.Fatal("expected flattenInterfaces to be false")
	}
	// Unspecified keys keep their defaults.
	if !cfg.Transform.ExpandEnumGenerics {
		t.Fatal("expected default expandEnumGenerics=true")
	}
	if cfg.Dir != filepath.Dir(path) {
		t.Fatalf("expected Dir %q, got %q", filepath.Dir(path), cfg.Dir)
	}
	if got := cfg.OutDirAbs(); got != filepath.Join(cfg.Dir, "out") {
		t.Fatalf("unexpected absolute outDir %q", got)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "dtsresolve.yaml", `
include:
  - "lib/**/*.d.ts"
parser: tree-sitter
format:
  indent: 2
links:
  baseUrl: https://example.com/blob/HEAD/
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Parser != ParserTreeSitter {
		t.Fatalf("expected tree-sitter parser, got %q", cfg.Parser)
	}
	if cfg.IndentString() != "  " {
		t.Fatalf("expected two-space indent, got %q", cfg.IndentString())
	}
	if !cfg.Format.MultilineObjectLiterals {
		t.Fatal("expected multilineObjectLiterals to keep its default")
	}
	if cfg.Links.BaseURL != "https://example.com/blob/HEAD/" {
		t.Fatalf("unexpected links.baseUrl %q", cfg.Links.BaseURL)
	}
	if cfg.Links.Readme != "README.md" {
		t.Fatalf("expected default links.readme, got %q", cfg.Links.Readme)
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	path := writeConfig(t, "dtsresolve.yml", "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OutDir != "dist/types" {
		t.Fatalf("expected defaults, got outDir %q", cfg.OutDir)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "dtsresolve.toml", `
include = ["src/**/*.ts"]
outDir = "build/types"
baseUrl = "."

[paths]
"@lib/*" = ["src/lib/*"]

[transform]
pruneUnexported = false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OutDir != "build/types" {
		t.Fatalf("unexpected outDir %q", cfg.OutDir)
	}
	if !reflect.DeepEqual(cfg.Paths, map[string][]string{"@lib/*": {"src/lib/*"}}) {
		t.Fatalf("unexpected paths: %v", cfg.Paths)
	}
	if cfg.Transform.PruneUnexported {
		t.Fatal("expected pruneUnexported=false")
	}
	if cfg.BaseDirAbs() != cfg.Dir {
		t.Fatalf("expected baseUrl '.' to resolve to %q, got %q", cfg.Dir, cfg.BaseDirAbs())
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	for name, content := range map[string]string{
		"dtsresolve.json": `{"outdir": "x"}`,
		"dtsresolve.yaml": "outdir: x\n",
		"dtsresolve.toml": "outdir = \"x\"\n",
		"nested.toml":     "[transform]\nprunedUnexported = true\n",
		"case.toml":       "[Format]\nindent = 2\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, name, content))
			if err == nil {
				t.Fatal("expected error for unknown key")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/dtsresolve.json")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	_, err := Load(writeConfig(t, "dtsresolve.json", "not json"))
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load(writeConfig(t, "dtsresolve.ini", ""))
	if err == nil {
		t.Fatal("expected error for .ini extension")
	}
	if !strings.Contains(err.Error(), "unsupported config format") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestLoadValidates(t *testing.T) {
	_, err := Load(writeConfig(t, "dtsresolve.json", `{"parser": "babel"}`))
	if err == nil || !strings.Contains(err.Error(), `unknown parser "babel"`) {
		t.Fatalf("expected unknown parser error, got %v", err)
	}
}

func TestFindPriority(t *testing.T) {
	dir := t.TempDir()

	if _, ok := Find(dir); ok {
		t.Fatal("expected no config in an empty directory")
	}

	tomlPath := filepath.Join(dir, "dtsresolve.toml")
	os.WriteFile(tomlPath, []byte(""), 0o644)
	if got, _ := Find(dir); got != tomlPath {
		t.Fatalf("expected %q, got %q", tomlPath, got)
	}

	jsonPath := filepath.Join(dir, "dtsresolve.json")
	os.WriteFile(jsonPath, []byte("{}"), 0o644)
	if got, _ := Find(dir); got != jsonPath {
		t.Fatalf("expected .json to take priority, got %q", got)
	}
}

func TestDiscoverDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Discover("", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Path != "" || cfg.Dir != dir {
		t.Fatalf("expected defaults rooted at %q, got path %q dir %q", dir, cfg.Path, cfg.Dir)
	}
}

func TestValidateEmptyInclude(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Include = []string{}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for empty include")
	}
}

func TestValidateNegativeWorkers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = -1

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for negative workers")
	}
}

func TestValidateOutDirEqualsRootDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dir = "/project"
	cfg.RootDir = "types"
	cfg.OutDir = "./types/"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for outDir equal to rootDir")
	}
}

func TestValidateValidConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}
