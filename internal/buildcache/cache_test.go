package buildcache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCachePath(t *testing.T) {
	if got, want := CachePath("/project/dist/types"), "/project/dist/types/.dtsresolve-cache"; got != want {
		t.Errorf("CachePath() = %q, want %q", got, want)
	}
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.d.ts")
	b := filepath.Join(dir, "b.d.ts")
	c := filepath.Join(dir, "c.d.ts")
	writeFile(t, a, "export type A = string;")
	writeFile(t, b, "export type A = string;")
	writeFile(t, c, "export type A = number;")

	if HashFile(a) == "" {
		t.Fatal("HashFile returned empty for an existing file")
	}
	if HashFile(a) != HashFile(b) {
		t.Error("same content produced different digests")
	}
	if HashFile(a) == HashFile(c) {
		t.Error("different content produced the same digest")
	}
	if got := HashFile(filepath.Join(dir, "missing.d.ts")); got != "" {
		t.Errorf("HashFile of a missing file = %q, want empty", got)
	}
	if len(HashBytes(nil)) != 32 {
		t.Errorf("HashBytes should return 32 hex digits, got %q", HashBytes(nil))
	}
}

func TestHashInputs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.d.ts")
	writeFile(t, a, "export type A = string;")
	missing := filepath.Join(dir, "missing.d.ts")

	got := HashInputs([]string{a, missing})
	if got[a] != HashBytes([]byte("export type A = string;")) {
		t.Errorf("digest of %s = %q, want the digest of its content", a, got[a])
	}
	if v, ok := got[missing]; !ok || v != "" {
		t.Errorf("missing file should map to an empty digest, got %q (present=%v)", v, ok)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"garbage": "not json at all {{{",
		"empty":   "",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			writeFile(t, path, content)
			if Load(path) != nil {
				t.Error("Load should return nil for an unparsable file")
			}
		})
	}
	if Load(filepath.Join(dir, "missing")) != nil {
		t.Error("Load should return nil for a missing file")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "dist", "a.d.ts")
	writeFile(t, out, "export type A = string;\n")
	path := filepath.Join(dir, "nested", "dir", FileName)

	saved := New("cfg", map[string]string{"/src/a.d.ts": "01"}, []string{out})
	if err := Save(path, saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not exist after a successful save")
	}

	loaded := Load(path)
	if loaded == nil {
		t.Fatal("Load returned nil after Save")
	}
	if loaded.V != SchemaVersion || loaded.ConfigHash != "cfg" {
		t.Errorf("loaded header = (%d, %q)", loaded.V, loaded.ConfigHash)
	}
	if loaded.Inputs["/src/a.d.ts"] != "01" {
		t.Errorf("Inputs = %v, want the saved digests", loaded.Inputs)
	}
	if loaded.Outputs[out] != HashFile(out) {
		t.Errorf("Outputs = %v, want the digest of %s", loaded.Outputs, out)
	}
}

func TestDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, `{"v":2}`)
	Delete(path)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("cache file should not exist after delete")
	}
	Delete(path)
}

func TestMiss(t *testing.T) {
	inputs := map[string]string{"/src/a.d.ts": "aa", "/src/b.d.ts": "bb"}
	valid := &Cache{V: SchemaVersion, ConfigHash: "cfg", Inputs: inputs}

	tests := []struct {
		name   string
		cache  *Cache
		config string
		inputs map[string]string
		want   string
	}{
		{"nil cache", nil, "cfg", inputs, "no cache"},
		{"schema", &Cache{V: SchemaVersion - 1, ConfigHash: "cfg", Inputs: inputs}, "cfg", inputs, "cache schema changed"},
		{"config", valid, "other", inputs, "config changed"},
		{"removed", valid, "cfg", map[string]string{"/src/a.d.ts": "aa"}, "input files added or removed"},
		{"added", valid, "cfg", map[string]string{"/src/a.d.ts": "aa", "/src/b.d.ts": "bb", "/src/c.d.ts": "cc"}, "input files added or removed"},
		{"edited", valid, "cfg", map[string]string{"/src/a.d.ts": "aa", "/src/b.d.ts": "xx"}, "input changed: /src/b.d.ts"},
		{"unchanged", valid, "cfg", map[string]string{"/src/b.d.ts": "bb", "/src/a.d.ts": "aa"}, ""},
		{"empty config hash", &Cache{V: SchemaVersion}, "", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cache.Miss(tt.config, tt.inputs); got != tt.want {
				t.Errorf("Miss() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMiss_Outputs(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "src", "a.d.ts")
	output := filepath.Join(dir, "dist", "a.d.ts")
	manifest := filepath.Join(dir, "dist", "dtsresolve-manifest.json")
	writeFile(t, input, "export type A = string;\n")
	writeFile(t, output, "export type A = string;\n")
	writeFile(t, manifest, `{"version":1}`)

	inputs := HashInputs([]string{input})
	c := New("cfg", inputs, []string{output, manifest})
	if miss := c.Miss("cfg", inputs); miss != "" {
		t.Fatalf("fresh cache misses: %s", miss)
	}

	writeFile(t, output, "export type A = number;\n")
	if miss := c.Miss("cfg", inputs); !strings.HasPrefix(miss, "output missing or edited: ") {
		t.Errorf("edited output: Miss() = %q", miss)
	}
	writeFile(t, output, "export type A = string;\n")
	if miss := c.Miss("cfg", inputs); miss != "" {
		t.Errorf("restored output still misses: %s", miss)
	}

	if err := os.Remove(manifest); err != nil {
		t.Fatal(err)
	}
	if miss := c.Miss("cfg", inputs); miss != "output missing or edited: "+manifest {
		t.Errorf("deleted output: Miss() = %q", miss)
	}

	writeFile(t, input, "export type A = boolean;\n")
	if miss := c.Miss("cfg", HashInputs([]string{input})); miss != "input changed: "+input {
		t.Errorf("edited input: Miss() = %q", miss)
	}
}
