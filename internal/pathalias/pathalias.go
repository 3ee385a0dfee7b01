// Package pathalias implements tsconfig-style "paths" aliases for declaration
// files. The resolver uses Match to find the source files an aliased import
// names; at emission, RewriteSpecifiers turns aliased specifiers in the
// printed .d.ts text into relative paths between output files.
//
// Matching follows TypeScript's tryLoadModuleUsingPaths():
//  1. Exact patterns are checked first
//  2. Wildcard patterns are matched by longest prefix (ties broken by longest suffix)
//  3. The matched wildcard text is substituted into the targets
//  4. Targets are resolved relative to the base directory
package pathalias

import (
	"path/filepath"
	"sort"
	"strings"
)

// Aliases matches import specifiers against "paths" patterns.
type Aliases struct {
	baseDir  string              // absolute dir path targets are resolved against
	outDir   string              // absolute output directory
	rootDir  string              // absolute root source directory
	patterns map[string][]string // pattern → targets (e.g., "@app/*" → ["src/*"])
}

// Config holds the resolved configuration values needed for alias matching.
type Config struct {
	BaseDir string              // baseUrl, or the config file's directory
	OutDir  string              // absolute output directory
	RootDir string              // absolute root source directory
	Paths   map[string][]string // alias pattern → target paths
}

// New creates alias matching from resolved configuration values.
func New(cfg Config) *Aliases {
	return &Aliases{
		baseDir:  cfg.BaseDir,
		outDir:   cfg.OutDir,
		rootDir:  cfg.RootDir,
		patterns: cfg.Paths,
	}
}

// HasAliases reports whether any path aliases are configured.
func (a *Aliases) HasAliases() bool {
	return a != nil && len(a.patterns) > 0
}

// Match returns the absolute paths, without extension probing, that an
// aliased specifier may refer to, in priority order. It returns nil for
// relative and absolute specifiers and for specifiers no pattern matches.
func (a *Aliases) Match(specifier string) []string {
	if !a.HasAliases() || strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/") {
		return nil
	}

	// Exact patterns first.
	if targets, ok := a.patterns[specifier]; ok && !strings.Contains(specifier, "*") {
		out := make([]string, 0, len(targets))
		for _, t := range targets {
			out = append(out, filepath.Join(a.baseDir, strings.TrimPrefix(t, "./")))
		}
		return out
	}

	longestPrefix, longestSuffix := -1, -1
	var prefix, suffix string
	var targets []string
	keys := make([]string, 0, len(a.patterns))
	for k := range a.patterns {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		star := strings.IndexByte(key, '*')
		if star < 0 {
			continue
		}
		p, s := key[:star], key[star+1:]
		if !strings.HasPrefix(specifier, p) || !strings.HasSuffix(specifier, s) || len(specifier) < len(p)+len(s) {
			continue
		}
		if len(p) > longestPrefix || (len(p) == longestPrefix && len(s) > longestSuffix) {
			longestPrefix, longestSuffix = len(p), len(s)
			prefix, suffix, targets = p, s, a.patterns[key]
		}
	}
	if longestPrefix < 0 {
		return nil
	}

	matched := specifier[len(prefix) : len(specifier)-len(suffix)]
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		t = strings.Replace(strings.TrimPrefix(t, "./"), "*", matched, 1)
		out = append(out, filepath.Join(a.baseDir, t))
	}
	return out
}

// specifierPatterns are the spellings of module specifiers in declaration text.
var specifierPatterns = []string{`from "`, `from '`, `import("`, `import('`, `require("`, `require('`}

// RewriteSpecifiers replaces aliased module specifiers in emitted declaration
// text with paths relative to fromFile, an output file.
func (a *Aliases) RewriteSpecifiers(content, fromFile string) string {
	if !a.HasAliases() {
		return content
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = a.rewriteLine(line, fromFile)
	}
	return strings.Join(lines, "\n")
}

func (a *Aliases) rewriteLine(line, fromFile string) string {
	for _, pattern := range specifierPatterns {
		offset := 0
		for {
			idx := strings.Index(line[offset:], pattern)
			if idx < 0 {
				break
			}
			quote := pattern[len(pattern)-1]
			start := offset + idx + len(pattern)
			end := strings.IndexByte(line[start:], quote)
			if end < 0 {
				break
			}
			end += start
			spec := line[start:end]
			if rel := a.relativeSpecifier(spec, fromFile); rel != "" {
				line = line[:start] + rel + line[end:]
				end = start + len(rel)
			}
			offset = end
		}
	}
	return line
}

// relativeSpecifier maps an aliased specifier to a relative output path, or
// returns "" when the specifier is not aliased.
func (a *Aliases) relativeSpecifier(spec, fromFile string) string {
	candidates := a.Match(spec)
	if len(candidates) == 0 {
		return ""
	}
	target := a.sourceToOutput(candidates[0])
	rel, err := filepath.Rel(filepath.Dir(fromFile), target)
	if err != nil {
		return ""
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}

// sourceToOutput maps a source path to its expected output path.
func (a *Aliases) sourceToOutput(srcPath string) string {
	if a.rootDir != "" && a.outDir != "" {
		rel, err := filepath.Rel(a.rootDir, srcPath)
		if err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.Join(a.outDir, rel)
		}
	}
	if a.outDir != "" {
		return filepath.Join(a.outDir, filepath.Base(srcPath))
	}
	return srcPath
}

// InferRootDir computes the deepest directory containing every file.
// Returns "" if the files share no directory below the file system root.
func InferRootDir(fileNames []string) string {
	if len(fileNames) == 0 {
		return ""
	}
	common := filepath.Dir(fileNames[0])
	if common == "." {
		return ""
	}
	for _, f := range fileNames[1:] {
		dir := filepath.Dir(f)
		for !within(dir, common) && common != "." && common != "/" {
			common = filepath.Dir(common)
		}
		if common == "." || common == "/" {
			return ""
		}
	}
	return common
}

func within(dir, root string) bool {
	return dir == root || strings.HasPrefix(dir, strings.TrimSuffix(root, "/")+"/")
}
