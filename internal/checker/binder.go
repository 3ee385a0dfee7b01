package checker

import (
	"strings"

	"github.com/tsgonest/dtsresolve/internal/ast"
)

// scope is one level of lexical name lookup.
type scope struct {
	parent *scope
	locals ast.SymbolTable
	file   *ast.SourceFile
	// container is the module or namespace symbol declarations at this level
	// belong to; nil for type parameter scopes.
	container *ast.Symbol
}

// aliasTarget describes what an import or re-export alias points at.
type aliasTarget struct {
	// module and name: an import from a module specifier. name is "*" for a
	// namespace import, "=" for import-equals require and "default" for a
	// default import.
	module string
	name   string
	from   *ast.SourceFile
	// entity: `import x = N.M` or `export = N`, resolved in scope.
	entity ast.EntityName
	scope  *scope
	// symbol: a fixed target, used by `export as namespace`.
	symbol *ast.Symbol
}

type exportStar struct {
	module string
	from   *ast.SourceFile
}

type pendingExport struct {
	container *ast.Symbol
	scope     *scope
	local     string
	exported  string
}

const (
	meaningType      = ast.SymbolType
	meaningValue     = ast.SymbolValue
	meaningNamespace = ast.SymbolNamespace | ast.SymbolModule | ast.SymbolEnum | ast.SymbolAlias
)

// binder declares the symbols of one file and then binds its references.
type binder struct {
	c       *Checker
	file    *ast.SourceFile
	pending []pendingExport
}

func (c *Checker) newSymbol(name string, flags ast.SymbolFlags, file *ast.SourceFile) *ast.Symbol {
	c.nextSymbolID++
	return &ast.Symbol{ID: c.nextSymbolID, Name: name, Flags: flags, File: file}
}

func (c *Checker) declareFile(f *ast.SourceFile) *binder {
	sym := c.newSymbol(f.FileName, ast.SymbolModule, f)
	sym.Declarations = []ast.Node{f}
	sym.Exports = ast.SymbolTable{}
	sym.ExportNames = map[*ast.Symbol][]string{}
	if f.ExternalModule {
		f.Locals = ast.SymbolTable{}
	} else {
		f.Locals = c.globals
	}
	sym.Members = f.Locals
	f.Symbol = sym
	s := &scope{locals: f.Locals, file: f, container: sym}
	c.fileScopes[f] = s
	b := &binder{c: c, file: f}
	b.declareStatements(f.Statements, s, !f.ExternalModule, f.IsDeclarationFile)
	b.flushExports()
	return b
}

func (b *binder) declare(s *scope, name string, flags ast.SymbolFlags, node ast.Node, exported bool) *ast.Symbol {
	sym := s.locals[name]
	if sym == nil {
		sym = b.c.newSymbol(name, 0, b.file)
		sym.Parent = s.container
		s.locals[name] = sym
	}
	sym.Flags |= flags
	sym.Declarations = append(sym.Declarations, node)
	if exported {
		sym.Exported = true
		if s.container != nil && s.container.Exports != nil {
			s.container.Exports[name] = sym
		}
	}
	b.c.declSymbols[node] = sym
	return sym
}

func hasExportDeclarations(stmts []ast.Statement) bool {
	for _, st := range stmts {
		switch st.(type) {
		case *ast.ExportDeclaration, *ast.ExportAssignment:
			return true
		}
	}
	return false
}

// declareStatements declares one statement list. implicit marks an export
// context where every declaration is exported; ambient records that the list
// sits in a declaration file or a declare block.
func (b *binder) declareStatements(stmts []ast.Statement, s *scope, implicit, ambient bool) {
	for _, st := range stmts {
		b.declareStatement(st, s, implicit, ambient)
	}
}

func (b *binder) declareStatement(st ast.Statement, s *scope, implicit, ambient bool) {
	exported := func(mods ast.ModifierFlags) bool {
		return implicit || mods&ast.ModifierExport != 0
	}
	switch st := st.(type) {
	case *ast.TypeAliasDeclaration:
		b.declare(s, st.Name, ast.SymbolTypeAlias, st, exported(st.Modifiers))
	case *ast.InterfaceDeclaration:
		b.declare(s, st.Name, ast.SymbolInterface, st, exported(st.Modifiers))
	case *ast.ClassDeclaration:
		sym := b.declare(s, st.Name, ast.SymbolClass, st, exported(st.Modifiers))
		b.declareDefault(s, sym, st.Modifiers)
	case *ast.FunctionDeclaration:
		sym := b.declare(s, st.Name, ast.SymbolFunction, st, exported(st.Modifiers))
		b.declareDefault(s, sym, st.Modifiers)
	case *ast.EnumDeclaration:
		sym := b.declare(s, st.Name, ast.SymbolEnum, st, exported(st.Modifiers))
		if sym.Members == nil {
			sym.Members = ast.SymbolTable{}
			sym.Exports = sym.Members
		}
		for _, m := range st.Members {
			name := m.Name.Text
			ms := sym.Members[name]
			if ms == nil {
				ms = b.c.newSymbol(name, ast.SymbolEnumMember, b.file)
				ms.Parent = sym
				ms.Exported = true
				sym.Members[name] = ms
				b.c.enumOrder[sym] = append(b.c.enumOrder[sym], ms)
			}
			ms.Declarations = append(ms.Declarations, m)
			b.c.declSymbols[m] = ms
		}
	case *ast.VariableStatement:
		for _, d := range st.Declarations {
			b.declare(s, d.Name, ast.SymbolVariable, d, exported(st.Modifiers))
			if st.Kind == ast.VariableConst {
				b.c.constVars[d] = true
			}
		}
	case *ast.ModuleDeclaration:
		b.declareModule(st, s, implicit, ambient)
	case *ast.ImportDeclaration:
		if st.DefaultName != "" {
			b.declareAlias(s, st.DefaultName, st, &aliasTarget{module: st.ModuleSpecifier, name: "default", from: b.file}, false)
		}
		if st.NamespaceName != "" {
			b.declareAlias(s, st.NamespaceName, st, &aliasTarget{module: st.ModuleSpecifier, name: "*", from: b.file}, false)
		}
		for _, spec := range st.NamedBindings {
			name := spec.PropertyName
			if name == "" {
				name = spec.Name
			}
			b.declareAlias(s, spec.Name, spec, &aliasTarget{module: st.ModuleSpecifier, name: name, from: b.file}, false)
		}
	case *ast.ImportEqualsDeclaration:
		target := &aliasTarget{entity: st.ModuleReference, scope: s}
		if st.ExternalModule != "" {
			target = &aliasTarget{module: st.ExternalModule, name: "=", from: b.file}
		}
		b.declareAlias(s, st.Name, st, target, exported(st.Modifiers))
	case *ast.ExportDeclaration:
		b.declareExport(st, s)
	case *ast.ExportAssignment:
		name := "default"
		if st.IsExportEquals {
			name = "export="
		}
		entity := ast.ExpressionToEntityName(st.Expression)
		if entity == nil || s.container == nil {
			return
		}
		if id, ok := entity.(*ast.Identifier); ok && !st.IsExportEquals {
			b.pending = append(b.pending, pendingExport{container: s.container, scope: s, local: id.Text, exported: name})
			return
		}
		sym := b.c.newSymbol(name, ast.SymbolAlias, b.file)
		sym.Parent = s.container
		sym.Exported = true
		sym.Declarations = []ast.Node{st}
		b.c.aliases[sym] = &aliasTarget{entity: entity, scope: s}
		s.container.Exports[name] = sym
	case *ast.NamespaceExportDeclaration:
		if s.container == nil {
			return
		}
		sym := b.c.newSymbol(st.Name, ast.SymbolAlias, b.file)
		sym.Exported = true
		sym.Declarations = []ast.Node{st}
		b.c.aliases[sym] = &aliasTarget{symbol: s.container}
		if b.c.globals[st.Name] == nil {
			b.c.globals[st.Name] = sym
		}
	}
}

func (b *binder) declareDefault(s *scope, sym *ast.Symbol, mods ast.ModifierFlags) {
	if mods&ast.ModifierDefault == 0 || s.container == nil || s.container.Exports == nil {
		return
	}
	sym.Exported = true
	s.container.Exports["default"] = sym
	if s.container.ExportNames != nil {
		s.container.ExportNames[sym] = append(s.container.ExportNames[sym], "default")
	}
}

func (b *binder) declareAlias(s *scope, name string, node ast.Node, target *aliasTarget, exported bool) *ast.Symbol {
	sym := b.declare(s, name, ast.SymbolAlias, node, exported)
	b.c.aliases[sym] = target
	return sym
}

func (b *binder) declareExport(st *ast.ExportDeclaration, s *scope) {
	container := s.container
	if container == nil || container.Exports == nil {
		return
	}
	if st.ModuleSpecifier != "" {
		if st.All && st.NamespaceName == "" {
			b.c.exportStars[container] = append(b.c.exportStars[container], exportStar{module: st.ModuleSpecifier, from: b.file})
			return
		}
		if st.All {
			sym := b.c.newSymbol(st.NamespaceName, ast.SymbolAlias, b.file)
			sym.Parent, sym.Exported = container, true
			sym.Declarations = []ast.Node{st}
			b.c.aliases[sym] = &aliasTarget{module: st.ModuleSpecifier, name: "*", from: b.file}
			container.Exports[st.NamespaceName] = sym
			return
		}
		for _, spec := range st.Specifiers {
			name := spec.PropertyName
			if name == "" {
				name = spec.Name
			}
			sym := b.c.newSymbol(spec.Name, ast.SymbolAlias, b.file)
			sym.Parent, sym.Exported = container, true
			sym.Declarations = []ast.Node{spec}
			b.c.aliases[sym] = &aliasTarget{module: st.ModuleSpecifier, name: name, from: b.file}
			container.Exports[spec.Name] = sym
		}
		return
	}
	for _, spec := range st.Specifiers {
		local := spec.PropertyName
		if local == "" {
			local = spec.Name
		}
		b.pending = append(b.pending, pendingExport{container: container, scope: s, local: local, exported: spec.Name})
	}
}

// flushExports applies local export lists once every declaration of the
// file is known.
func (b *binder) flushExports() {
	for _, p := range b.pending {
		sym := p.scope.locals[p.local]
		if sym == nil {
			continue
		}
		sym.Exported = true
		p.container.Exports[p.exported] = sym
		if p.container.ExportNames != nil {
			p.container.ExportNames[sym] = append(p.container.ExportNames[sym], p.exported)
		}
	}
	b.pending = nil
}

func (b *binder) declareModule(st *ast.ModuleDeclaration, s *scope, implicit, ambient bool) {
	ambient = ambient || st.Modifiers&ast.ModifierDeclare != 0
	switch {
	case st.IsGlobal:
		inner := &scope{parent: s, locals: b.c.globals, file: b.file}
		b.c.moduleScopes[st] = inner
		b.declareStatements(st.Body, inner, true, true)
	case st.IsStringName:
		sym := b.c.ambientModules[st.Name]
		if sym == nil {
			sym = b.c.newSymbol(st.Name, ast.SymbolModule, b.file)
			sym.Exports = ast.SymbolTable{}
			sym.Members = ast.SymbolTable{}
			sym.ExportNames = map[*ast.Symbol][]string{}
			sym.Exported = true
			b.c.ambientModules[st.Name] = sym
		}
		sym.Declarations = append(sym.Declarations, st)
		b.c.declSymbols[st] = sym
		inner := &scope{parent: s, locals: sym.Members, file: b.file, container: sym}
		b.c.moduleScopes[st] = inner
		b.declareStatements(st.Body, inner, !hasExportDeclarations(st.Body), true)
		b.flushExports()
	default:
		sym := b.declare(s, st.Name, ast.SymbolNamespace, st, implicit || st.Modifiers&ast.ModifierExport != 0)
		if sym.Members == nil {
			sym.Members = ast.SymbolTable{}
		}
		if sym.Exports == nil {
			sym.Exports = ast.SymbolTable{}
		}
		inner := &scope{parent: s, locals: sym.Members, file: b.file, container: sym}
		b.c.moduleScopes[st] = inner
		b.declareStatements(st.Body, inner, ambient && !hasExportDeclarations(st.Body), ambient)
		b.flushExports()
	}
}

// ---------------------------------------------------------------------------
// Reference binding

func (b *binder) bindStatements(stmts []ast.Statement, s *scope) {
	for _, st := range stmts {
		b.bindStatement(st, s)
	}
}

func (b *binder) bindStatement(st ast.Statement, s *scope) {
	c := b.c
	c.scopes[st] = s
	switch st := st.(type) {
	case *ast.TypeAliasDeclaration:
		inner := b.typeParameterScope(s, st.TypeParameters)
		c.scopes[st] = inner
		b.bindTypeParameters(st.TypeParameters, inner)
		b.bindType(st.Type, inner)
	case *ast.InterfaceDeclaration:
		inner := b.typeParameterScope(s, st.TypeParameters)
		c.scopes[st] = inner
		b.bindTypeParameters(st.TypeParameters, inner)
		b.bindHeritage(st.HeritageClauses, inner)
		for _, m := range st.Members {
			b.bindTypeElement(m, inner)
		}
	case *ast.ClassDeclaration:
		inner := b.typeParameterScope(s, st.TypeParameters)
		c.scopes[st] = inner
		b.bindTypeParameters(st.TypeParameters, inner)
		b.bindHeritage(st.HeritageClauses, inner)
		for _, m := range st.Members {
			b.bindClassElement(m, inner)
		}
	case *ast.FunctionDeclaration:
		inner := b.typeParameterScope(s, st.TypeParameters)
		c.scopes[st] = inner
		b.bindSignature(st.TypeParameters, st.Parameters, st.Type, inner)
	case *ast.VariableStatement:
		for _, d := range st.Declarations {
			c.scopes[d] = s
			b.bindType(d.Type, s)
		}
	case *ast.EnumDeclaration:
		for _, m := range st.Members {
			c.scopes[m] = s
		}
	case *ast.ModuleDeclaration:
		if inner := c.moduleScopes[st]; inner != nil {
			b.bindStatements(st.Body, inner)
		}
	}
}

func (b *binder) typeParameterScope(s *scope, tps []*ast.TypeParameter) *scope {
	if len(tps) == 0 {
		return s
	}
	locals := ast.SymbolTable{}
	for _, tp := range tps {
		sym := b.c.newSymbol(tp.Name, ast.SymbolTypeParameter, b.file)
		sym.Declarations = []ast.Node{tp}
		b.c.tpSymbols[tp] = sym
		b.c.declSymbols[tp] = sym
		locals[tp.Name] = sym
	}
	return &scope{parent: s, locals: locals, file: s.file}
}

func (b *binder) bindTypeParameters(tps []*ast.TypeParameter, s *scope) {
	for _, tp := range tps {
		b.bindType(tp.Constraint, s)
		b.bindType(tp.Default, s)
	}
}

func (b *binder) bindSignature(tps []*ast.TypeParameter, params []*ast.Parameter, ret ast.TypeNode, s *scope) {
	b.bindTypeParameters(tps, s)
	for _, p := range params {
		b.bindType(p.Type, s)
	}
	b.bindType(ret, s)
}

func (b *binder) bindHeritage(clauses []*ast.HeritageClause, s *scope) {
	for _, hc := range clauses {
		for _, e := range hc.Types {
			if name := ast.ExpressionToEntityName(e.Expression); name != nil {
				if sym := b.c.resolveEntityName(name, s, meaningType|meaningValue); sym != nil {
					b.c.heritage[e] = sym
				}
			}
			for _, a := range e.TypeArguments {
				b.bindType(a, s)
			}
		}
	}
}

func (b *binder) bindTypeElement(m ast.TypeElement, s *scope) {
	b.c.scopes[m] = s
	switch m := m.(type) {
	case *ast.PropertySignature:
		b.bindType(m.Type, s)
	case *ast.MethodSignature:
		inner := b.typeParameterScope(s, m.TypeParameters)
		b.c.scopes[m] = inner
		b.bindSignature(m.TypeParameters, m.Parameters, m.Type, inner)
	case *ast.CallSignature:
		inner := b.typeParameterScope(s, m.TypeParameters)
		b.c.scopes[m] = inner
		b.bindSignature(m.TypeParameters, m.Parameters, m.Type, inner)
	case *ast.ConstructSignature:
		inner := b.typeParameterScope(s, m.TypeParameters)
		b.c.scopes[m] = inner
		b.bindSignature(m.TypeParameters, m.Parameters, m.Type, inner)
	case *ast.IndexSignature:
		b.bindSignature(nil, m.Parameters, m.Type, s)
	case *ast.AccessorDeclaration:
		b.bindSignature(nil, m.Parameters, m.Type, s)
	}
}

func (b *binder) bindClassElement(m ast.ClassElement, s *scope) {
	b.c.scopes[m] = s
	switch m := m.(type) {
	case *ast.PropertyDeclaration:
		b.bindType(m.Type, s)
	case *ast.MethodDeclaration:
		inner := b.typeParameterScope(s, m.TypeParameters)
		b.c.scopes[m] = inner
		b.bindSignature(m.TypeParameters, m.Parameters, m.Type, inner)
	case *ast.ConstructorDeclaration:
		b.bindSignature(nil, m.Parameters, nil, s)
	case *ast.IndexSignature:
		b.bindSignature(nil, m.Parameters, m.Type, s)
	case *ast.AccessorDeclaration:
		b.bindSignature(nil, m.Parameters, m.Type, s)
	}
}

func (b *binder) bindType(n ast.TypeNode, s *scope) {
	c := b.c
	switch n := n.(type) {
	case nil:
		return
	case *ast.TypeReference:
		n.Symbol = c.resolveEntityName(n.TypeName, s, meaningType)
		for _, a := range n.TypeArguments {
			b.bindType(a, s)
		}
	case *ast.TypeQuery:
		n.Symbol = c.resolveEntityName(n.ExprName, s, meaningValue)
		for _, a := range n.TypeArguments {
			b.bindType(a, s)
		}
	case *ast.FunctionType:
		inner := b.typeParameterScope(s, n.TypeParameters)
		b.bindSignature(n.TypeParameters, n.Parameters, n.Type, inner)
	case *ast.TypeLiteral:
		for _, m := range n.Members {
			b.bindTypeElement(m, s)
		}
	case *ast.MappedType:
		b.bindType(n.TypeParameter.Constraint, s)
		inner := b.typeParameterScope(s, []*ast.TypeParameter{n.TypeParameter})
		b.bindType(n.NameType, inner)
		b.bindType(n.Type, inner)
	case *ast.ConditionalType:
		b.bindType(n.CheckType, s)
		var infers []*ast.TypeParameter
		ast.WalkType(n.ExtendsType, func(t ast.TypeNode) bool {
			if it, ok := t.(*ast.InferType); ok {
				infers = append(infers, it.TypeParameter)
			}
			_, nested := t.(*ast.ConditionalType)
			return !nested
		})
		inner := b.typeParameterScope(s, infers)
		b.bindType(n.ExtendsType, inner)
		b.bindType(n.TrueType, inner)
		b.bindType(n.FalseType, s)
	case *ast.InferType:
		b.bindType(n.TypeParameter.Constraint, s)
	case *ast.ImportType:
		if mod := c.resolveModuleSymbol(n.Argument, b.file); mod != nil {
			n.Symbol = mod
			if n.Qualifier != nil {
				n.Symbol = c.qualifiedExport(mod, n.Qualifier)
			}
		}
		for _, a := range n.TypeArguments {
			b.bindType(a, s)
		}
	default:
		ast.ForEachTypeChild(n, func(child ast.TypeNode) { b.bindType(child, s) })
	}
}

// ---------------------------------------------------------------------------
// Name resolution

func (c *Checker) resolveName(name string, s *scope, meaning ast.SymbolFlags) *ast.Symbol {
	for ; s != nil; s = s.parent {
		if sym := s.locals[name]; sym != nil && sym.Flags&meaning != 0 {
			return sym
		}
	}
	if sym := c.globals[name]; sym != nil && sym.Flags&meaning != 0 {
		return sym
	}
	return nil
}

func (c *Checker) resolveEntityName(n ast.EntityName, s *scope, meaning ast.SymbolFlags) *ast.Symbol {
	switch n := n.(type) {
	case *ast.Identifier:
		return c.resolveName(n.Text, s, meaning)
	case *ast.QualifiedName:
		left := c.resolveEntityName(n.Left, s, meaningNamespace)
		if left == nil {
			return nil
		}
		return c.exportOf(c.resolveAliasOrSelf(left), n.Right.Text)
	}
	return nil
}

// qualifiedExport follows a dotted name through the exports of mod.
func (c *Checker) qualifiedExport(mod *ast.Symbol, name ast.EntityName) *ast.Symbol {
	switch name := name.(type) {
	case *ast.Identifier:
		return c.exportOf(mod, name.Text)
	case *ast.QualifiedName:
		return c.exportOf(c.resolveAliasOrSelf(c.qualifiedExport(mod, name.Left)), name.Right.Text)
	}
	return nil
}

// exportOf looks up name among the exports of a module, namespace or enum.
func (c *Checker) exportOf(sym *ast.Symbol, name string) *ast.Symbol {
	if sym == nil {
		return nil
	}
	if sym.Flags&ast.SymbolModule != 0 {
		if r := c.moduleExport(sym, name, map[*ast.Symbol]bool{}); r != nil {
			return r
		}
	}
	if sym.Flags&ast.SymbolNamespace != 0 && sym.Exports != nil {
		if r := sym.Exports[name]; r != nil {
			return r
		}
	}
	if sym.Flags&ast.SymbolEnum != 0 && sym.Members != nil {
		return sym.Members[name]
	}
	return nil
}

func (c *Checker) moduleExport(mod *ast.Symbol, name string, visited map[*ast.Symbol]bool) *ast.Symbol {
	if visited[mod] {
		return nil
	}
	visited[mod] = true
	if r := mod.Exports[name]; r != nil {
		return r
	}
	if eq := mod.Exports["export="]; eq != nil && name != "export=" {
		if target := c.resolveAliasOrSelf(eq); target != nil && target != mod {
			if r := c.exportOf(target, name); r != nil {
				return r
			}
		}
	}
	if name == "default" {
		return nil
	}
	for _, star := range c.exportStars[mod] {
		target := c.resolveModuleSymbol(star.module, star.from)
		if target == nil {
			continue
		}
		if r := c.moduleExport(target, name, visited); r != nil {
			return r
		}
	}
	return nil
}

// resolveModuleSymbol finds the module a specifier names: an ambient module
// declaration for bare specifiers, otherwise a program file.
func (c *Checker) resolveModuleSymbol(specifier string, from *ast.SourceFile) *ast.Symbol {
	relative := strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/")
	if !relative {
		if sym := c.ambientModules[specifier]; sym != nil {
			return sym
		}
	}
	if c.host != nil {
		if f, ok := c.host.ResolveModule(specifier, from); ok && f.Symbol != nil {
			return f.Symbol
		}
	}
	return c.ambientModules[specifier]
}

func (c *Checker) resolveAliasOrSelf(sym *ast.Symbol) *ast.Symbol {
	if sym == nil || sym.Flags&ast.SymbolAlias == 0 {
		return sym
	}
	return c.resolveAlias(sym)
}

// resolveAlias follows an alias chain to the symbol it finally names, or nil
// when the chain is broken or circular.
func (c *Checker) resolveAlias(sym *ast.Symbol) *ast.Symbol {
	if r, ok := c.resolvedAliases[sym]; ok {
		return r
	}
	target := c.aliases[sym]
	if target == nil || c.resolvingAliases[sym] {
		return nil
	}
	c.resolvingAliases[sym] = true
	var r *ast.Symbol
	switch {
	case target.symbol != nil:
		r = target.symbol
	case target.entity != nil:
		r = c.resolveEntityName(target.entity, target.scope, meaningType|meaningValue|meaningNamespace)
	default:
		mod := c.resolveModuleSymbol(target.module, target.from)
		if mod == nil {
			break
		}
		switch target.name {
		case "*":
			r = mod
		case "=":
			r = mod
			if eq := mod.Exports["export="]; eq != nil {
				r = eq
			}
		case "default":
			r = c.moduleExport(mod, "default", map[*ast.Symbol]bool{})
			if r == nil {
				r = mod.Exports["export="]
			}
		default:
			r = c.moduleExport(mod, target.name, map[*ast.Symbol]bool{})
		}
	}
	if r != nil && r.Flags&ast.SymbolAlias != 0 {
		r = c.resolveAlias(r)
	}
	delete(c.resolvingAliases, sym)
	c.resolvedAliases[sym] = r
	return r
}
