package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsgonest/dtsresolve/internal/pathalias"
	"github.com/tsgonest/dtsresolve/internal/testutil"
)

func TestResolveRelative(t *testing.T) {
	fs := testutil.NewMemoryVFS("/p", map[string]string{
		"src/index.d.ts":           ``,
		"src/models.d.ts":          ``,
		"src/util/index.d.ts":      ``,
		"src/runtime.d.mts":        ``,
		"src/source.ts":            ``,
		"src/both.d.ts":            ``,
		"src/both.ts":              ``,
		"src/deep/nested.d.ts":     ``,
		"src/shape/package.json":   `{"types": "lib/shape.d.ts"}`,
		"src/shape/lib/shape.d.ts": ``,
	})
	r := New(fs, nil, nil)
	from := "/p/src/index.d.ts"

	tests := []struct {
		spec string
		want string
	}{
		{"./models", "/p/src/models.d.ts"},
		{"./models.js", "/p/src/models.d.ts"},
		{"./models.d.ts", "/p/src/models.d.ts"},
		{"./util", "/p/src/util/index.d.ts"},
		{"./runtime.mjs", "/p/src/runtime.d.mts"},
		{"./source", "/p/src/source.ts"},
		{"./both", "/p/src/both.d.ts"},
		{"./deep/nested", "/p/src/deep/nested.d.ts"},
		{"./shape", "/p/src/shape/lib/shape.d.ts"},
		{"/p/src/models", "/p/src/models.d.ts"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, ok := r.Resolve(tt.spec, from)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	got, ok := r.Resolve("../models", "/p/src/deep/nested.d.ts")
	require.True(t, ok)
	assert.Equal(t, "/p/src/models.d.ts", got)
}

func TestResolveMissing(t *testing.T) {
	r := New(testutil.NewMemoryVFS("/p", map[string]string{"a.d.ts": ``}), nil, nil)
	for _, spec := range []string{"./missing", "./a.ts", "left-pad", ""} {
		_, ok := r.Resolve(spec, "/p/a.d.ts")
		assert.False(t, ok, spec)
	}
}

func TestResolvePathAliases(t *testing.T) {
	fs := testutil.NewMemoryVFS("/p", map[string]string{
		"src/models/user.d.ts":  ``,
		"lib/models/role.d.ts":  ``,
		"src/config/index.d.ts": ``,
	})
	aliases := pathalias.New(pathalias.Config{
		BaseDir: "/p",
		Paths: map[string][]string{
			"@app/*":  {"src/*", "lib/*"},
			"@config": {"src/config"},
		},
	})
	r := New(fs, aliases, nil)

	got, ok := r.Resolve("@app/models/user", "/p/src/index.d.ts")
	require.True(t, ok)
	assert.Equal(t, "/p/src/models/user.d.ts", got)

	got, ok = r.Resolve("@app/models/role", "/p/src/index.d.ts")
	require.True(t, ok, "second target is tried when the first misses")
	assert.Equal(t, "/p/lib/models/role.d.ts", got)

	got, ok = r.Resolve("@config", "/p/src/index.d.ts")
	require.True(t, ok)
	assert.Equal(t, "/p/src/config/index.d.ts", got)
}

func TestResolveNodeModules(t *testing.T) {
	fs := testutil.NewMemoryVFS("/p", map[string]string{
		"node_modules/plain/index.d.ts":              ``,
		"node_modules/typed/package.json":            `{"name": "typed", "types": "./dist/main.d.ts"}`,
		"node_modules/typed/dist/main.d.ts":          ``,
		"node_modules/typings/package.json":          `{"typings": "types.d.ts"}`,
		"node_modules/typings/types.d.ts":            ``,
		"node_modules/exp/package.json":              `{"exports": {".": {"types": "./t/index.d.ts", "default": "./index.js"}, "./sub": {"import": {"types": "./t/sub.d.mts"}}}}`,
		"node_modules/exp/t/index.d.ts":              ``,
		"node_modules/exp/t/sub.d.mts":               ``,
		"node_modules/@scope/pkg/index.d.ts":         ``,
		"node_modules/@scope/pkg/extra/thing.d.ts":   ``,
		"node_modules/@types/node/index.d.ts":        ``,
		"node_modules/@types/scoped__lib/index.d.ts": ``,
		"node_modules/broken/package.json":           `{not json`,
		"node_modules/broken/index.d.ts":             ``,
	})
	r := New(fs, nil, nil)
	from := "/p/src/deep/file.d.ts"

	tests := map[string]string{
		"plain":                  "/p/node_modules/plain/index.d.ts",
		"typed":                  "/p/node_modules/typed/dist/main.d.ts",
		"typings":                "/p/node_modules/typings/types.d.ts",
		"exp":                    "/p/node_modules/exp/t/index.d.ts",
		"exp/sub":                "/p/node_modules/exp/t/sub.d.mts",
		"@scope/pkg":             "/p/node_modules/@scope/pkg/index.d.ts",
		"@scope/pkg/extra/thing": "/p/node_modules/@scope/pkg/extra/thing.d.ts",
		"node":                   "/p/node_modules/@types/node/index.d.ts",
		"@scoped/lib":            "/p/node_modules/@types/scoped__lib/index.d.ts",
		"broken":                 "/p/node_modules/broken/index.d.ts",
	}
	for spec, want := range tests {
		t.Run(spec, func(t *testing.T) {
			got, ok := r.Resolve(spec, from)
			require.True(t, ok)
			assert.Equal(t, want, got)
		})
	}
}

func TestResolveNearestNodeModulesWins(t *testing.T) {
	fs := testutil.NewMemoryVFS("/p", map[string]string{
		"node_modules/dep/index.d.ts":            ``,
		"packages/a/node_modules/dep/index.d.ts": ``,
	})
	r := New(fs, nil, nil)

	got, ok := r.Resolve("dep", "/p/packages/a/src/x.d.ts")
	require.True(t, ok)
	assert.Equal(t, "/p/packages/a/node_modules/dep/index.d.ts", got)

	got, ok = r.Resolve("dep", "/p/packages/b/x.d.ts")
	require.True(t, ok)
	assert.Equal(t, "/p/node_modules/dep/index.d.ts", got)
}

func TestResolveCachesPerDirectory(t *testing.T) {
	fs := testutil.NewMemoryVFS("/p", map[string]string{"a.d.ts": ``}).(*testutil.OverlayVFS)
	r := New(fs, nil, nil)

	_, ok := r.Resolve("./b", "/p/a.d.ts")
	require.False(t, ok)
	fs.VirtualFiles["/p/b.d.ts"] = ``
	_, ok = r.Resolve("./b", "/p/other.d.ts")
	assert.False(t, ok, "cached negative result for the same directory")
	_, ok = New(fs, nil, nil).Resolve("./b", "/p/a.d.ts")
	assert.True(t, ok)
}

func TestSplitPackageName(t *testing.T) {
	tests := []struct{ in, name, sub string }{
		{"lodash", "lodash", ""},
		{"lodash/fp", "lodash", "fp"},
		{"@scope/pkg", "@scope/pkg", ""},
		{"@scope/pkg/a/b", "@scope/pkg", "a/b"},
	}
	for _, tt := range tests {
		name, sub := splitPackageName(tt.in)
		assert.Equal(t, tt.name, name, tt.in)
		assert.Equal(t, tt.sub, sub, tt.in)
	}
}
