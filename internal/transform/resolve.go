package transform

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/diagnostic"
)

// resolveReference decides how a type reference is written in the output:
// unchanged, renamed to an exported alias of the same unexported type, or
// qualified so that it resolves from outside its declaring module.
func (ctx traversalContext) resolveReference(ref *ast.TypeReference) ast.TypeNode {
	if ref.Symbol == nil || ref.Symbol.Flags&ast.SymbolTypeParameter != 0 {
		return ref
	}
	if name, ok := ref.TypeName.(*ast.QualifiedName); ok {
		if !ref.IsSynthesized() {
			return ref
		}
		return ctx.qualifyMember(ref, name)
	}

	target := ctx.m.checker.ResolveAlias(ref.Symbol)
	if target == nil {
		return ref
	}
	if sub := ctx.publicAliasFor(target); sub != nil {
		ctx.m.stats.Substituted++
		ctx.m.log.Debugw("substituted public alias",
			"file", ctx.m.file.FileName, "decl", ctx.declName(), "alias", sub.name, "symbol", target.Name)
		return ast.NewTypeReference(ast.NewIdentifier(sub.name), ref.TypeArguments, sub.symbol)
	}
	if ref.Symbol != target {
		// Bound through an import or a local alias; the name is already
		// visible where it is written.
		return ref
	}
	mod := ctx.foreignModule(target)
	if mod == nil {
		return ref
	}
	exportName := ctx.m.checker.ExportName(mod, target)
	if exportName == "" {
		ctx.info(diagnostic.CategoryResolution, ref, "%s is not exported from its module; reference kept as written", target.Name)
		return ref
	}
	return ctx.qualified(ref, mod, ast.NewIdentifier(exportName), target)
}

func (ctx traversalContext) publicAliasFor(target *ast.Symbol) *publicAlias {
	if target.Exported || len(ast.TypeParametersOf(target.FirstDeclaration())) > 0 {
		return nil
	}
	a := ctx.m.publicAliases[target]
	if a == nil || ast.Node(a.decl) == ctx.decl {
		return nil
	}
	return a
}

// qualifyMember handles a synthesized namespace or enum member reference
// such as N.Inner whose root namespace is not visible here.
func (ctx traversalContext) qualifyMember(ref *ast.TypeReference, name *ast.QualifiedName) ast.TypeNode {
	root := ref.Symbol
	for depth := countQualifiers(name); depth > 0 && root.Parent != nil; depth-- {
		root = root.Parent
	}
	if root.Flags&ast.SymbolModule != 0 {
		return ref
	}
	first := ast.FirstIdentifier(name)
	c := ctx.m.checker
	if found := c.LookupName(first.Text, ctx.decl, ast.SymbolNamespace|ast.SymbolType|ast.SymbolValue); found != nil && c.ResolveAlias(found) == root {
		return ref
	}
	mod := ctx.foreignModule(root)
	if mod == nil {
		return ref
	}
	exportName := c.ExportName(mod, root)
	if exportName == "" {
		return ref
	}
	return ctx.qualified(ref, mod, replaceRoot(name, ast.NewIdentifier(exportName)), ref.Symbol)
}

// foreignModule returns the external module declaring sym when it differs
// from the current one. Globals and script files have none.
func (ctx traversalContext) foreignModule(sym *ast.Symbol) *ast.Symbol {
	mod := ctx.m.checker.ModuleOf(sym)
	if mod == nil || mod == ctx.module || isScriptFile(mod) {
		return nil
	}
	return mod
}

func isScriptFile(mod *ast.Symbol) bool {
	f, ok := mod.FirstDeclaration().(*ast.SourceFile)
	return ok && !f.ExternalModule
}

// qualified writes name, as exported by mod, through the namespace import
// of mod or, without one, as an import type.
func (ctx traversalContext) qualified(ref *ast.TypeReference, mod *ast.Symbol, name ast.EntityName, sym *ast.Symbol) ast.TypeNode {
	if !ctx.m.opts.QualifyNamespaces {
		return ref
	}
	if alias, ok := ctx.m.qualifications[mod.Name]; ok {
		ctx.m.stats.Qualified++
		ctx.m.log.Debugw("qualified reference",
			"file", ctx.m.file.FileName, "decl", ctx.declName(), "alias", alias, "module", mod.Name)
		return ast.NewTypeReference(replaceRoot(name, ast.NewQualifiedName(ast.NewIdentifier(alias), ast.FirstIdentifier(name).Text)), ref.TypeArguments, sym)
	}
	spec, ok := ctx.moduleSpecifier(mod)
	if !ok {
		return ref
	}
	ctx.m.stats.ImportTypes++
	ctx.m.log.Debugw("referenced through import type",
		"file", ctx.m.file.FileName, "decl", ctx.declName(), "module", spec)
	return &ast.ImportType{Argument: spec, Qualifier: name, TypeArguments: ref.TypeArguments, Symbol: sym}
}

func countQualifiers(n ast.EntityName) int {
	count := 0
	for {
		q, ok := n.(*ast.QualifiedName)
		if !ok {
			return count
		}
		count++
		n = q.Left
	}
}

// replaceRoot returns a copy of name with its leftmost identifier replaced.
func replaceRoot(name ast.EntityName, root ast.EntityName) ast.EntityName {
	switch n := name.(type) {
	case *ast.QualifiedName:
		return &ast.QualifiedName{Left: replaceRoot(n.Left, root), Right: ast.NewIdentifier(n.Right.Text)}
	}
	return root
}

// moduleSpecifier returns how the current file imports mod.
func (ctx traversalContext) moduleSpecifier(mod *ast.Symbol) (string, bool) {
	switch d := mod.FirstDeclaration().(type) {
	case *ast.ModuleDeclaration:
		return mod.Name, true
	case *ast.SourceFile:
		if !d.ExternalModule {
			return "", false
		}
		if spec, ok := packageSpecifier(d.FileName); ok {
			return spec, true
		}
		return RelativeSpecifier(ctx.m.file.FileName, d.FileName), true
	}
	return "", false
}

// RelativeSpecifier returns the import specifier naming target from a file.
func RelativeSpecifier(fromFile, target string) string {
	rel, err := filepath.Rel(filepath.FromSlash(path.Dir(fromFile)), filepath.FromSlash(target))
	if err != nil {
		rel = target
	}
	rel = stripSourceExtension(filepath.ToSlash(rel))
	if !strings.HasPrefix(rel, ".") && !strings.HasPrefix(rel, "/") {
		rel = "./" + rel
	}
	return rel
}

// packageSpecifier maps a file inside node_modules to its package import,
// turning @types/scope__name back into @scope/name.
func packageSpecifier(fileName string) (string, bool) {
	idx := strings.LastIndex(fileName, "/node_modules/")
	if idx < 0 {
		return "", false
	}
	spec := stripSourceExtension(fileName[idx+len("/node_modules/"):])
	spec = strings.TrimSuffix(spec, "/index")
	if rest, ok := strings.CutPrefix(spec, "@types/"); ok {
		if scope, name, ok := strings.Cut(rest, "__"); ok {
			rest = "@" + scope + "/" + name
		}
		spec = rest
	}
	return spec, true
}

func stripSourceExtension(p string) string {
	for _, ext := range []struct{ from, to string }{
		{".d.mts", ".mjs"}, {".d.cts", ".cjs"}, {".d.ts", ""},
		{".mts", ".mjs"}, {".cts", ".cjs"}, {".tsx", ""}, {".ts", ""},
	} {
		if strings.HasSuffix(p, ext.from) {
			return strings.TrimSuffix(p, ext.from) + ext.to
		}
	}
	return p
}
