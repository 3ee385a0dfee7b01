// Package resolver maps import specifiers written in declaration files to
// the files they name, the way TypeScript's bundler-style resolution does
// for declaration inputs.
package resolver

import (
	"path"
	"strings"
	"sync"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"go.uber.org/zap"

	"github.com/tsgonest/dtsresolve/internal/pathalias"
	"github.com/tsgonest/dtsresolve/internal/vfs"
)

// Resolver resolves module specifiers. It is safe for concurrent use.
type Resolver struct {
	fs      vfs.FS
	aliases *pathalias.Aliases
	log     *zap.SugaredLogger

	mu    sync.Mutex
	cache map[cacheKey]result
}

type cacheKey struct {
	specifier string
	dir       string
}

type result struct {
	path string
	ok   bool
}

// New returns a resolver over fs. aliases and log may be nil.
func New(fs vfs.FS, aliases *pathalias.Aliases, log *zap.SugaredLogger) *Resolver {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Resolver{fs: fs, aliases: aliases, log: log, cache: map[cacheKey]result{}}
}

// Resolve returns the absolute path of the file specifier names when
// imported from containingFile. Results are cached per specifier and
// containing directory.
func (r *Resolver) Resolve(specifier, containingFile string) (string, bool) {
	key := cacheKey{specifier, path.Dir(containingFile)}
	r.mu.Lock()
	if res, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return res.path, res.ok
	}
	r.mu.Unlock()

	p, ok := r.resolve(specifier, key.dir)
	if !ok {
		r.log.Debugw("unresolved module", "module", specifier, "file", containingFile)
	}

	r.mu.Lock()
	r.cache[key] = result{p, ok}
	r.mu.Unlock()
	return p, ok
}

func (r *Resolver) resolve(specifier, dir string) (string, bool) {
	if specifier == "" {
		return "", false
	}
	if IsRelative(specifier) || strings.HasPrefix(specifier, "/") {
		base := specifier
		if !strings.HasPrefix(specifier, "/") {
			base = path.Join(dir, specifier)
		}
		return r.loadFileOrDirectory(base)
	}
	for _, candidate := range r.aliases.Match(specifier) {
		if p, ok := r.loadFileOrDirectory(candidate); ok {
			return p, true
		}
	}
	return r.loadNodeModule(specifier, dir)
}

// IsRelative reports whether a specifier is written relative to its file.
func IsRelative(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// jsExtensions maps a runtime extension to the declaration extensions that
// stand for it.
var jsExtensions = map[string][]string{
	".js":  {".d.ts", ".ts", ".tsx"},
	".jsx": {".d.ts", ".tsx"},
	".mjs": {".d.mts", ".mts"},
	".cjs": {".d.cts", ".cts"},
}

var tsExtensions = []string{".d.ts", ".ts", ".tsx", ".d.mts", ".d.cts"}

func (r *Resolver) loadFileOrDirectory(base string) (string, bool) {
	if p, ok := r.loadFile(base); ok {
		return p, true
	}
	return r.loadDirectory(base)
}

func (r *Resolver) loadFile(base string) (string, bool) {
	if hasSourceExtension(base) {
		if r.fs.FileExists(base) {
			return base, true
		}
		return "", false
	}
	if ext := path.Ext(base); ext != "" {
		if subs, ok := jsExtensions[ext]; ok {
			stem := strings.TrimSuffix(base, ext)
			for _, sub := range subs {
				if r.fs.FileExists(stem + sub) {
					return stem + sub, true
				}
			}
			return "", false
		}
	}
	for _, ext := range tsExtensions {
		if r.fs.FileExists(base + ext) {
			return base + ext, true
		}
	}
	return "", false
}

func (r *Resolver) loadDirectory(dir string) (string, bool) {
	if !r.fs.DirectoryExists(dir) {
		return "", false
	}
	if pkg, ok := r.readPackageJSON(dir); ok {
		if entry := pkg.typesEntry(); entry != "" {
			if p, ok := r.loadFileOrIndex(path.Join(dir, entry)); ok {
				return p, true
			}
		}
	}
	return r.loadFile(path.Join(dir, "index"))
}

func (r *Resolver) loadFileOrIndex(p string) (string, bool) {
	if r.fs.FileExists(p) && isDeclarationInput(p) {
		return p, true
	}
	if p2, ok := r.loadFile(p); ok {
		return p2, true
	}
	return r.loadFile(path.Join(p, "index"))
}

func isDeclarationInput(p string) bool {
	for _, ext := range tsExtensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

func hasSourceExtension(p string) bool {
	return isDeclarationInput(p) || strings.HasSuffix(p, ".mts") || strings.HasSuffix(p, ".cts")
}

// loadNodeModule walks up from dir looking for node_modules/<pkg>, then
// node_modules/@types/<pkg>.
func (r *Resolver) loadNodeModule(specifier, dir string) (string, bool) {
	pkgName, subpath := splitPackageName(specifier)
	for d := dir; ; d = path.Dir(d) {
		if path.Base(d) != "node_modules" {
			for _, name := range []string{pkgName, typesPackageName(pkgName)} {
				pkgDir := path.Join(d, "node_modules", name)
				if !r.fs.DirectoryExists(pkgDir) {
					continue
				}
				if subpath != "" {
					if p, ok := r.loadSubpath(pkgDir, subpath); ok {
						return p, true
					}
					continue
				}
				if p, ok := r.loadDirectory(pkgDir); ok {
					return p, true
				}
			}
		}
		if d == "/" || d == "." || d == "" {
			return "", false
		}
	}
}

func (r *Resolver) loadSubpath(pkgDir, subpath string) (string, bool) {
	if pkg, ok := r.readPackageJSON(pkgDir); ok {
		if entry := pkg.exportTypes("./" + subpath); entry != "" {
			if p, ok := r.loadFileOrIndex(path.Join(pkgDir, entry)); ok {
				return p, true
			}
		}
	}
	return r.loadFileOrDirectory(path.Join(pkgDir, subpath))
}

// splitPackageName splits "@scope/pkg/sub/path" into "@scope/pkg" and
// "sub/path".
func splitPackageName(specifier string) (string, string) {
	parts := strings.SplitN(specifier, "/", 3)
	if strings.HasPrefix(specifier, "@") && len(parts) >= 2 {
		name := parts[0] + "/" + parts[1]
		if len(parts) == 3 {
			return name, parts[2]
		}
		return name, ""
	}
	name, sub, _ := strings.Cut(specifier, "/")
	return name, sub
}

// typesPackageName returns the DefinitelyTyped package for a package name.
func typesPackageName(name string) string {
	if strings.HasPrefix(name, "@") {
		name = strings.Replace(strings.TrimPrefix(name, "@"), "/", "__", 1)
	}
	return "@types/" + name
}

// packageJSON holds the fields of package.json that locate declarations.
type packageJSON struct {
	Types   string         `json:"types"`
	Typings string         `json:"typings"`
	Exports jsontext.Value `json:"exports"`
}

func (r *Resolver) readPackageJSON(dir string) (*packageJSON, bool) {
	text, ok := r.fs.ReadFile(path.Join(dir, "package.json"))
	if !ok {
		return nil, false
	}
	var pkg packageJSON
	if err := json.Unmarshal([]byte(text), &pkg); err != nil {
		r.log.Debugw("ignoring malformed package.json", "file", path.Join(dir, "package.json"), "error", err)
		return nil, false
	}
	return &pkg, true
}

func (p *packageJSON) typesEntry() string {
	if entry := p.exportTypes("."); entry != "" {
		return entry
	}
	if p.Types != "" {
		return p.Types
	}
	return p.Typings
}

// exportTypes finds the "types" condition of an exports entry. Only
// literal subpaths are supported; pattern exports fall back to plain
// subpath probing.
func (p *packageJSON) exportTypes(subpath string) string {
	if len(p.Exports) == 0 {
		return ""
	}
	var exports any
	if err := json.Unmarshal(p.Exports, &exports); err != nil {
		return ""
	}
	m, ok := exports.(map[string]any)
	if !ok {
		return ""
	}
	if entry, ok := m[subpath]; ok {
		return typesCondition(entry)
	}
	if subpath == "." && !hasSubpathKeys(m) {
		return typesCondition(m)
	}
	return ""
}

func hasSubpathKeys(m map[string]any) bool {
	for k := range m {
		if strings.HasPrefix(k, ".") {
			return true
		}
	}
	return false
}

func typesCondition(entry any) string {
	switch e := entry.(type) {
	case string:
		if isDeclarationInput(e) {
			return e
		}
	case map[string]any:
		if t, ok := e["types"].(string); ok {
			return t
		}
		for _, cond := range []string{"import", "require", "default"} {
			if nested, ok := e[cond]; ok {
				if t := typesCondition(nested); t != "" {
					return t
				}
			}
		}
	}
	return ""
}
