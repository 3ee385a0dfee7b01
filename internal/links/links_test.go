package links

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tsgonest/dtsresolve/internal/testutil"
)

const declarations = `export interface Options {
    fast: boolean;
}
declare const hidden: number;
export type Mode = "a" | "b";
interface Internal {
}
export declare namespace Tools {
    export function run(o: Options): void;
}
`

func scanFixture(t *testing.T) Index {
	t.Helper()
	fs := testutil.NewMemoryVFS("dist", map[string]string{
		"index.d.ts": declarations,
		"extra.d.ts": "export declare class Options {\n}\nexport declare enum Level {\n    Low = 0\n}\n",
	})
	idx, err := Scan(fs, "dist", zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	return idx
}

func TestScan(t *testing.T) {
	idx := scanFixture(t)
	assert.Equal(t, Index{
		// extra.d.ts sorts first, so its Options wins.
		"Options": {File: "dist/extra.d.ts", Line: 1},
		"Level":   {File: "dist/extra.d.ts", Line: 3},
		"Mode":    {File: "dist/index.d.ts", Line: 5},
		"run":     {File: "dist/index.d.ts", Line: 9},
	}, idx)
}

func TestStitch(t *testing.T) {
	idx := Index{
		"Options": {File: "dist/index.d.ts", Line: 1},
		"Mode":    {File: "dist/index.d.ts", Line: 5},
	}
	readme := "# Tool\n\nPass `Options` to `run(o: Options, m: Mode)`.\nUnknown `Other` stays.\n"
	got := Stitch(readme, idx, Options{BaseURL: "https://example.com/blob/HEAD/"})

	want := "# Tool\n\n" +
		"Pass [`Options`][Options] to `run(o: `[`Options`][Options]`, m: `[`Mode`][Mode]`)`.\n" +
		"Unknown `Other` stays.\n" +
		"\n" + Marker + "\n" +
		"[Options]: https://example.com/blob/HEAD/dist/index.d.ts#L1\n" +
		"[Mode]: https://example.com/blob/HEAD/dist/index.d.ts#L5\n"
	assert.Equal(t, want, got)

	assert.Equal(t, readme, Strip(got), "strip restores the template")
	assert.Equal(t, got, Stitch(got, idx, Options{BaseURL: "https://example.com/blob/HEAD/"}), "stitching twice")
}

func TestStitchWithoutMatches(t *testing.T) {
	readme := "nothing `here`\n"
	assert.Equal(t, readme, Stitch(readme, Index{"Other": {File: "x.d.ts", Line: 1}}, Options{}))
}

func TestStripInlineLinks(t *testing.T) {
	assert.Equal(t, "see `Options` and `a Mode b`",
		Strip("see [`Options`](https://x/y#L1) and `a `[`Mode`](https://x/y#L2)` b`"))
}

func TestStitchFile(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "nolinks.README.md")
	readme := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(template, []byte("Use `Mode`.\n"), 0o644))

	require.NoError(t, StitchFile(template, readme, Index{"Mode": {File: "d/a.d.ts", Line: 2}}, Options{BaseURL: "u/"}))
	data, err := os.ReadFile(readme)
	require.NoError(t, err)
	assert.Equal(t, "Use [`Mode`][Mode].\n\n"+Marker+"\n[Mode]: u/d/a.d.ts#L2\n", string(data))

	err = StitchFile(filepath.Join(dir, "missing.md"), readme, nil, Options{})
	assert.ErrorContains(t, err, "missing.md")
}
