// Package links stitches reference links to declaration sources into a
// README. Identifiers inside inline code spans that name an exported
// declaration become reference links, and a block of link definitions is
// appended after a "<!-- Type References -->" marker.
package links

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/parser"
	"github.com/tsgonest/dtsresolve/internal/vfs"
)

// Marker starts the generated block of link definitions.
const Marker = "<!-- Type References -->"

// Location is where a declaration was found.
type Location struct {
	// File is slash separated and includes the scanned directory as given.
	File string
	Line int
}

// Anchor returns "file#Lline".
func (l Location) Anchor() string {
	return l.File + "#L" + strconv.Itoa(l.Line)
}

// Index maps declaration names to their locations.
type Index map[string]Location

// Options configures Stitch.
type Options struct {
	// BaseURL prefixes every link target.
	BaseURL string
}

// Scan indexes the exported interfaces, type aliases, enums, classes and
// functions of every declaration file under dir, namespaces included. Files
// are visited in name order and the first declaration of a name wins.
func Scan(fs vfs.FS, dir string, log *zap.SugaredLogger) (Index, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	var files []string
	if err := fs.WalkFiles(dir, func(p string) error {
		if strings.HasSuffix(p, ".ts") {
			files = append(files, p)
		}
		return nil
	}); err != nil {
		return nil, errors.Wrapf(err, "scanning %s", dir)
	}
	sort.Strings(files)

	idx := Index{}
	for _, p := range files {
		text, ok := fs.ReadFile(p)
		if !ok {
			return nil, errors.Newf("reading %s", p)
		}
		f, diags := parser.ParseSourceFile(p, text)
		if len(diags) > 0 {
			log.Warnw("skipping declarations after syntax errors", "file", p, "count", len(diags))
		}
		name := filepath.ToSlash(filepath.Join(dir, relativeTo(dir, p)))
		idx.add(f, f.Statements, name)
	}
	log.Debugw("indexed declarations", "count", len(idx), "files", len(files))
	return idx, nil
}

func relativeTo(dir, p string) string {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return filepath.Base(p)
	}
	return rel
}

func (idx Index) add(f *ast.SourceFile, stmts []ast.Statement, file string) {
	for _, st := range stmts {
		var name string
		switch d := st.(type) {
		case *ast.InterfaceDeclaration:
			name = d.Name
		case *ast.TypeAliasDeclaration:
			name = d.Name
		case *ast.EnumDeclaration:
			name = d.Name
		case *ast.ClassDeclaration:
			name = d.Name
		case *ast.FunctionDeclaration:
			name = d.Name
		case *ast.ModuleDeclaration:
			idx.add(f, d.Body, file)
			continue
		default:
			continue
		}
		d := st.(ast.Declaration)
		if name == "" || d.ModifierFlags()&ast.ModifierExport == 0 {
			continue
		}
		if _, ok := idx[name]; ok {
			continue
		}
		line, _ := f.LineAndColumn(st.Range().Pos)
		idx[name] = Location{File: file, Line: line + 1}
	}
}

var (
	codeSpan   = regexp.MustCompile("`[^`\n]+`")
	identifier = regexp.MustCompile(`[A-Za-z][A-Za-z0-9_]*`)
	// generated matches a link Stitch wrote, or an inline link to a code
	// span, with the backticks of the split code span around it.
	generated = regexp.MustCompile("(`?)\\[`([^`\n]*)`\\](?:\\[[^\\]\n]*\\]|\\([^)\n]*\\))(`?)")
)

// Strip removes links and the definition block a previous Stitch added.
func Strip(readme string) string {
	if i := strings.Index(readme, Marker); i >= 0 {
		readme = strings.TrimRight(readme[:i], "\n") + "\n"
	}
	return generated.ReplaceAllStringFunc(readme, func(m string) string {
		sub := generated.FindStringSubmatch(m)
		before, name, after := sub[1], sub[2], sub[3]
		switch {
		case before != "" && after != "":
			return name
		case before != "":
			return name + "`"
		case after != "":
			return "`" + name
		}
		return "`" + name + "`"
	})
}

// Stitch links every indexed name found in a code span of readme and
// appends the definitions of the names it used, in order of first use.
// Links from an earlier run are removed first.
func Stitch(readme string, idx Index, opts Options) string {
	readme = Strip(readme)
	var used []string
	seen := map[string]bool{}

	readme = codeSpan.ReplaceAllStringFunc(readme, func(span string) string {
		span = identifier.ReplaceAllStringFunc(span, func(name string) string {
			if _, ok := idx[name]; !ok {
				return name
			}
			if !seen[name] {
				seen[name] = true
				used = append(used, name)
			}
			return "`[`" + name + "`][" + name + "]`"
		})
		span = strings.TrimPrefix(span, "``")
		return strings.TrimSuffix(span, "``")
	})
	if len(used) == 0 {
		return readme
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(readme, "\n"))
	b.WriteString("\n\n" + Marker + "\n")
	for _, name := range used {
		b.WriteString("[" + name + "]: " + opts.BaseURL + idx[name].Anchor() + "\n")
	}
	return b.String()
}

// StitchFile reads template, stitches it and writes the result to readme.
func StitchFile(template, readme string, idx Index, opts Options) error {
	data, err := os.ReadFile(template)
	if err != nil {
		return errors.WithHint(errors.Wrapf(err, "reading %s", template), "pass --template with the README source")
	}
	out := Stitch(string(data), idx, opts)
	if err := os.WriteFile(readme, []byte(out), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", readme)
	}
	return nil
}
