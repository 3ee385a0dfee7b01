package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-json-experiment/json"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tsgonest/dtsresolve/internal/config"
	"github.com/tsgonest/dtsresolve/internal/diagnostic"
	"github.com/tsgonest/dtsresolve/internal/emit"
)

// ── flag parsing ─────────────────────────────────────────────────────────────

func TestBuildFlags_Defaults(t *testing.T) {
	var f buildFlags
	cmd := newBuildCmd(&app{}, &f)
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if f.ConfigPath != "" || f.OutDir != "" || f.Parser != "" {
		t.Errorf("string flags should be empty by default: %+v", f)
	}
	if f.Workers != 0 {
		t.Errorf("Workers = %d, want 0", f.Workers)
	}
	if f.Force || f.Summary {
		t.Error("boolean flags should be false by default")
	}
}

func TestBuildFlags_All(t *testing.T) {
	var f buildFlags
	cmd := newBuildCmd(&app{}, &f)
	args := []string{
		"--config", "dtsresolve.yaml",
		"--out-dir", "out",
		"--parser", "tree-sitter",
		"--workers", "3",
		"--force",
		"--summary",
	}
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	want := buildFlags{ConfigPath: "dtsresolve.yaml", OutDir: "out", Parser: "tree-sitter", Workers: 3, Force: true, Summary: true}
	if f != want {
		t.Errorf("flags = %+v, want %+v", f, want)
	}
}

func TestWatchFlags(t *testing.T) {
	var f watchFlags
	cmd := newWatchCmd(&app{}, &f)
	if err := cmd.ParseFlags([]string{"--exec", "npm run docs", "--preserve-output"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if f.Exec != "npm run docs" {
		t.Errorf("Exec = %q, want %q", f.Exec, "npm run docs")
	}
	if !f.PreserveOutput || f.ManualRestart {
		t.Errorf("unexpected booleans: %+v", f)
	}
}

func TestLinksFlags(t *testing.T) {
	var f linksFlags
	cmd := newLinksCmd(&app{}, &f)
	args := []string{"--readme", "R.md", "--template", "T.md", "--base-url", "https://x/", "--dir", "types"}
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	want := linksFlags{Readme: "R.md", Template: "T.md", BaseURL: "https://x/", Dir: "types"}
	if f != want {
		t.Errorf("flags = %+v, want %+v", f, want)
	}
}

func TestRootGlobalFlags(t *testing.T) {
	a := &app{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	root := newRootCmd(a)
	root.SetArgs([]string{"-v", "--log-format", "json", "--pretty=false", "version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !a.global.Verbose || a.global.Quiet || a.global.Pretty || a.global.LogFormat != "json" {
		t.Errorf("global flags = %+v", a.global)
	}
}

// ── config ───────────────────────────────────────────────────────────────────

func TestLoadConfig_Overrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dtsresolve.json", `{"include": ["src/**/*.d.ts"], "outDir": "types"}`)

	a := &app{log: zap.NewNop().Sugar()}
	cfg, err := a.loadConfig("", dir, configOverrides{OutDir: "out", Parser: config.ParserTreeSitter, Workers: 2})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.OutDirAbs() != filepath.Join(dir, "out") {
		t.Errorf("OutDirAbs = %q", cfg.OutDirAbs())
	}
	if cfg.Parser != config.ParserTreeSitter || cfg.Workers != 2 {
		t.Errorf("overrides not applied: parser %q workers %d", cfg.Parser, cfg.Workers)
	}
}

func TestLoadConfig_InvalidParser(t *testing.T) {
	a := &app{log: zap.NewNop().Sugar()}
	_, err := a.loadConfig("", t.TempDir(), configOverrides{Parser: "acorn"})
	if err == nil || !strings.Contains(err.Error(), "unknown parser") {
		t.Fatalf("err = %v, want unknown parser", err)
	}
}

func TestLoadConfig_LogsWarnings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dtsresolve.json", `{"include": ["src/**/*.d.ts"], "baseUrl": "."}`)

	core, logs := observer.New(zap.WarnLevel)
	a := &app{log: zap.New(core).Sugar()}
	if _, err := a.loadConfig("", dir, configOverrides{}); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	entries := logs.FilterMessageSnippet("baseUrl").All()
	if len(entries) != 1 {
		t.Fatalf("expected one baseUrl warning, got %d of %d entries", len(entries), logs.Len())
	}
	if got := entries[0].ContextMap()["config"]; got != filepath.Join(dir, "dtsresolve.json") {
		t.Errorf("config field = %v", got)
	}
}

func TestLoadConfig_DetailedErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dtsresolve.json", `{"include": ["src/**/*.d.ts"], "links": {"readme": "R.md", "template": "R.md"}}`)

	a := &app{log: zap.NewNop().Sugar()}
	_, err := a.loadConfig("", dir, configOverrides{})
	if err == nil || !strings.Contains(err.Error(), "readme and template must differ") {
		t.Fatalf("err = %v, want the links error", err)
	}
}

func TestLogCollected_CountsByCategory(t *testing.T) {
	c := diagnostic.NewCollector(diagnostic.SeverityInfo)
	c.Infof(diagnostic.CategoryModule, "a.d.ts", 1, "cannot resolve module")
	c.Infof(diagnostic.CategoryExpansion, "a.d.ts", 2, "not expanded")
	c.Infof(diagnostic.CategoryExpansion, "b.d.ts", 3, "not expanded")

	core, logs := observer.New(zap.InfoLevel)
	a := &app{log: zap.New(core).Sugar()}
	a.logCollected(c)

	entries := logs.FilterMessage("transform notes").All()
	if len(entries) != 1 {
		t.Fatalf("expected one summary entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	want := map[string]int{"module": 1, "expansion": 2}
	if got, ok := fields["by_category"].(map[string]int); !ok || len(got) != 2 || got["module"] != 1 || got["expansion"] != 2 {
		t.Errorf("by_category = %v, want %v", fields["by_category"], want)
	}
}

func TestConfigHash_ChangesWithOverrides(t *testing.T) {
	a := config.DefaultConfig()
	b := config.DefaultConfig()
	b.OutDir = "elsewhere"
	if configHash(&a) == "" {
		t.Fatal("empty hash")
	}
	if configHash(&a) == configHash(&b) {
		t.Error("hash ignores outDir")
	}
}

func TestParseFunc(t *testing.T) {
	got := parseFunc(config.ParserTreeSitter)
	f, diags := got("/p/a.d.ts", "export {};\n")
	if len(diags) != 0 || !f.ExternalModule {
		t.Errorf("tree-sitter frontend: diags %v, external %v", diags, f.ExternalModule)
	}
}

// ── end to end ───────────────────────────────────────────────────────────────

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// newProject creates a project directory, makes it the working directory
// and returns it.
func newProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "dtsresolve.json", `{"include": ["src/**/*.d.ts"], "outDir": "dist/types"}`)
	for name, content := range files {
		writeFile(t, dir, name, content)
	}
	t.Chdir(dir)
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"--pretty=false", "-q"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

var sampleProject = map[string]string{
	"src/index.d.ts": "import { Inner } from \"./inner\";\nexport interface Box {\n    value: Inner;\n}\n",
	"src/inner.d.ts": "export interface Inner {\n    x: number;\n}\nexport declare enum Level {\n    Low = 1,\n    High,\n}\n",
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "version")
	if code != 0 || !strings.Contains(stdout, version) {
		t.Errorf("exit %d, stdout %q", code, stdout)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	code, _, stderr := runCLI(t, "publish")
	if code != 1 || !strings.Contains(stderr, "unknown command") {
		t.Errorf("exit %d, stderr %q", code, stderr)
	}
}

func TestRun_BuildAndCache(t *testing.T) {
	dir := newProject(t, sampleProject)

	code, _, stderr := runCLI(t, "build")
	if code != 0 {
		t.Fatalf("build exit %d: %s", code, stderr)
	}
	out, err := os.ReadFile(filepath.Join(dir, "dist", "types", "index.d.ts"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.Contains(string(out), "export interface Box") {
		t.Errorf("unexpected output:\n%s", out)
	}

	m, err := emit.ReadManifest(emit.ManifestPath(filepath.Join(dir, "dist", "types")))
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if len(m.Files) != 2 {
		t.Errorf("manifest lists %d files, want 2", len(m.Files))
	}

	code, _, stderr = runCLI(t, "build")
	if code != 0 || !strings.Contains(stderr, "up to date") {
		t.Errorf("second build: exit %d, stderr %q", code, stderr)
	}

	code, _, stderr = runCLI(t, "build", "--force")
	if code != 0 || !strings.Contains(stderr, "built 2 declaration file(s)") {
		t.Errorf("forced build: exit %d, stderr %q", code, stderr)
	}
}

func TestRun_BuildTreeSitter(t *testing.T) {
	dir := newProject(t, sampleProject)
	code, _, stderr := runCLI(t, "build", "--parser", "tree-sitter", "--out-dir", "ts-out")
	if code != 0 {
		t.Fatalf("build exit %d: %s", code, stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "ts-out", "inner.d.ts")); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestRun_BuildSummary(t *testing.T) {
	newProject(t, sampleProject)
	code, stdout, stderr := runCLI(t, "build", "--summary")
	if code != 0 {
		t.Fatalf("build exit %d: %s", code, stderr)
	}
	for _, want := range []string{"Source", "index.d.ts", "interfaces flattened"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("summary lacks %q:\n%s", want, stdout)
		}
	}
}

func TestRun_SyntaxErrorFails(t *testing.T) {
	newProject(t, map[string]string{"src/bad.d.ts": "export interface A {\n    x: ;\n}\n"})
	code, _, stderr := runCLI(t, "build")
	if code != 1 {
		t.Errorf("exit %d, want 1", code)
	}
	if !strings.Contains(stderr, "bad.d.ts(2,") || !strings.Contains(stderr, "error DTS") {
		t.Errorf("stderr lacks the diagnostic:\n%s", stderr)
	}
}

func TestRun_NoInputsFails(t *testing.T) {
	newProject(t, nil)
	code, _, stderr := runCLI(t, "build")
	if code != 1 || !strings.Contains(stderr, "no input files") {
		t.Errorf("exit %d, stderr %q", code, stderr)
	}
}

func TestRun_Check(t *testing.T) {
	dir := newProject(t, sampleProject)
	code, _, stderr := runCLI(t, "check")
	if code != 0 || !strings.Contains(stderr, "output is stable") {
		t.Errorf("exit %d, stderr %q", code, stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "dist")); !os.IsNotExist(err) {
		t.Error("check wrote to the output directory")
	}
}

func TestRun_Dump(t *testing.T) {
	newProject(t, sampleProject)
	code, stdout, stderr := runCLI(t, "dump", "src/inner.d.ts")
	if code != 0 {
		t.Fatalf("dump exit %d: %s", code, stderr)
	}
	var modules []moduleDump
	if err := json.Unmarshal([]byte(stdout), &modules); err != nil {
		t.Fatalf("decoding dump: %v\n%s", err, stdout)
	}
	if len(modules) != 1 || modules[0].File != filepath.Join("src", "inner.d.ts") {
		t.Fatalf("modules = %+v", modules)
	}
	kinds := map[string]string{}
	for _, e := range modules[0].Exports {
		kinds[e.Name] = e.Kind
	}
	if kinds["Inner"] != "interface" || kinds["Level"] != "enum" {
		t.Errorf("export kinds = %v", kinds)
	}
	if len(modules[0].Enums) != 1 {
		t.Fatalf("enums = %+v", modules[0].Enums)
	}
	members := modules[0].Enums[0].Members
	if len(members) != 2 || members[0].Value != float64(1) || members[1].Value != float64(2) {
		t.Errorf("enum members = %+v", members)
	}
}

func TestRun_Links(t *testing.T) {
	dir := newProject(t, sampleProject)
	writeFile(t, dir, "nolinks.README.md", "# Lib\n\nSee `Box` and `Missing`.\n")
	if code, _, stderr := runCLI(t, "build"); code != 0 {
		t.Fatalf("build exit %d: %s", code, stderr)
	}

	code, _, stderr := runCLI(t, "links", "--base-url", "https://example.com/")
	if code != 0 {
		t.Fatalf("links exit %d: %s", code, stderr)
	}
	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	if err != nil {
		t.Fatal(err)
	}
	text := string(readme)
	if !strings.Contains(text, "See [`Box`][Box] and `Missing`.") {
		t.Errorf("Box not linked:\n%s", text)
	}
	if !strings.Contains(text, "[Box]: https://example.com/dist/types/index.d.ts#L") {
		t.Errorf("missing link definition:\n%s", text)
	}
}

func TestRun_LinksRejectsSameFile(t *testing.T) {
	newProject(t, sampleProject)
	code, _, stderr := runCLI(t, "links", "--readme", "README.md", "--template", "README.md")
	if code != 1 || !strings.Contains(stderr, "readme and template") {
		t.Errorf("exit %d, stderr %q", code, stderr)
	}
}

func TestTimingReport_Print(t *testing.T) {
	var buf bytes.Buffer
	r := TimingReport{Program: 1500 * time.Microsecond, Total: 2 * time.Second}
	r.Print(&buf)
	if !strings.Contains(buf.String(), "program:    2ms") || !strings.Contains(buf.String(), "total:      2s") {
		t.Errorf("unexpected report:\n%s", buf.String())
	}
}

func TestWithin(t *testing.T) {
	if !within("/p/src/a.ts", "/p") || within("/q/a.ts", "/p") || within("/p/../x.ts", "/p") {
		t.Error("within misclassifies paths")
	}
}
