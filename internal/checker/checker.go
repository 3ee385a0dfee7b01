// Package checker binds the declarations of a program and answers the type
// queries the transform runs: resolving a type node to a type, printing a
// type back as syntax, and following symbols across modules.
//
// A Checker is safe for concurrent use. Every public method takes the
// checker's lock, so queries from parallel module transforms serialize.
package checker

import (
	"sort"
	"sync"

	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/parser"
)

// Host supplies the files of a program and resolves module specifiers to
// them.
type Host interface {
	SourceFiles() []*ast.SourceFile
	ResolveModule(specifier string, from *ast.SourceFile) (*ast.SourceFile, bool)
}

// Checker holds the symbol tables and type caches of one program.
type Checker struct {
	mu   sync.Mutex
	host Host
	lib  *ast.SourceFile

	globals        ast.SymbolTable
	ambientModules ast.SymbolTable
	nextSymbolID   int
	nextTypeID     int

	aliases          map[*ast.Symbol]*aliasTarget
	resolvedAliases  map[*ast.Symbol]*ast.Symbol
	resolvingAliases map[*ast.Symbol]bool
	exportStars      map[*ast.Symbol][]exportStar
	declSymbols      map[ast.Node]*ast.Symbol
	scopes           map[ast.Node]*scope
	moduleScopes     map[*ast.ModuleDeclaration]*scope
	fileScopes       map[*ast.SourceFile]*scope
	tpSymbols        map[*ast.TypeParameter]*ast.Symbol
	heritage         map[*ast.ExpressionWithTypeArguments]*ast.Symbol
	enumOrder        map[*ast.Symbol][]*ast.Symbol
	enumValues       map[*ast.Symbol]any
	enumEvaluating   map[*ast.Symbol]bool
	constVars        map[*ast.VariableDeclaration]bool

	anyType, errorType, unknownType, neverType, voidType *Type
	undefinedType, nullType, stringType, numberType      *Type
	bigintType, booleanType, esSymbolType                *Type
	nonPrimitiveType, thisType, trueType, falseType      *Type

	literals       map[string]*Type
	references     map[string]*Type
	typeParams     map[*ast.Symbol]*Type
	enums          map[*ast.Symbol]*Type
	opaque         map[ast.TypeNode]*Type
	nodeTypes      map[ast.TypeNode]*Type
	aliasTypes     map[string]*Type
	aliasResolving map[string]bool
	memberCache    map[*Type][]*Member
	memberPending  map[*Type]bool
	depth          int
}

// maxDepth bounds recursive type evaluation.
const maxDepth = 64

// New binds every file the host supplies, together with the built-in
// library, and returns a checker over them.
func New(host Host) *Checker {
	c := &Checker{
		host:             host,
		globals:          ast.SymbolTable{},
		ambientModules:   ast.SymbolTable{},
		aliases:          map[*ast.Symbol]*aliasTarget{},
		resolvedAliases:  map[*ast.Symbol]*ast.Symbol{},
		resolvingAliases: map[*ast.Symbol]bool{},
		exportStars:      map[*ast.Symbol][]exportStar{},
		declSymbols:      map[ast.Node]*ast.Symbol{},
		scopes:           map[ast.Node]*scope{},
		moduleScopes:     map[*ast.ModuleDeclaration]*scope{},
		fileScopes:       map[*ast.SourceFile]*scope{},
		tpSymbols:        map[*ast.TypeParameter]*ast.Symbol{},
		heritage:         map[*ast.ExpressionWithTypeArguments]*ast.Symbol{},
		enumOrder:        map[*ast.Symbol][]*ast.Symbol{},
		enumValues:       map[*ast.Symbol]any{},
		enumEvaluating:   map[*ast.Symbol]bool{},
		constVars:        map[*ast.VariableDeclaration]bool{},
		literals:         map[string]*Type{},
		references:       map[string]*Type{},
		typeParams:       map[*ast.Symbol]*Type{},
		enums:            map[*ast.Symbol]*Type{},
		opaque:           map[ast.TypeNode]*Type{},
		nodeTypes:        map[ast.TypeNode]*Type{},
		aliasTypes:       map[string]*Type{},
		aliasResolving:   map[string]bool{},
		memberCache:      map[*Type][]*Member{},
		memberPending:    map[*Type]bool{},
	}
	c.initIntrinsics()

	c.lib, _ = parser.ParseSourceFile(LibFileName, libSource)
	files := []*ast.SourceFile{c.lib}
	if host != nil {
		files = append(files, host.SourceFiles()...)
	}
	binders := make([]*binder, len(files))
	for i, f := range files {
		binders[i] = c.declareFile(f)
	}
	for i, f := range files {
		binders[i].bindStatements(f.Statements, c.fileScopes[f])
	}
	return c
}

// LibFile returns the built-in library file.
func (c *Checker) LibFile() *ast.SourceFile { return c.lib }

// Globals returns the global symbol table.
func (c *Checker) Globals() ast.SymbolTable { return c.globals }

// GetTypeFromTypeNode resolves a type node. Parsed nodes are resolved in the
// scope they were bound in; synthesized nodes rely on the symbols recorded
// on their references.
func (c *Checker) GetTypeFromTypeNode(n ast.TypeNode) *Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typeFromNode(n, nil)
}

// GetTypeOfHeritage resolves the target of an extends or implements clause.
func (c *Checker) GetTypeOfHeritage(e *ast.ExpressionWithTypeArguments) *Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.heritageType(e, nil)
}

// HeritageSymbol returns the symbol a heritage clause target names.
func (c *Checker) HeritageSymbol(e *ast.ExpressionWithTypeArguments) *ast.Symbol {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.heritage[e]
}

// TypeToString prints t the way it would appear in a declaration at
// enclosing, preferring alias names.
func (c *Checker) TypeToString(t *Type, enclosing ast.Node) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typeToString(t, enclosing, UseAliasDefinedOutsideCurrentScope|NoTruncation)
}

// TypeToTypeNode builds fresh syntax for t as seen from enclosing.
func (c *Checker) TypeToTypeNode(t *Type, enclosing ast.Node, flags NodeBuilderFlags) ast.TypeNode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typeToTypeNode(t, enclosing, flags)
}

// ResolveAlias follows an import or re-export to the symbol it names. It
// returns sym itself when sym is not an alias and nil when the chain cannot
// be resolved.
func (c *Checker) ResolveAlias(sym *ast.Symbol) *ast.Symbol {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolveAliasOrSelf(sym)
}

// SymbolOfDeclaration returns the symbol a declaration node declares.
// Synthesized nodes are mapped back through their original node.
func (c *Checker) SymbolOfDeclaration(n ast.Node) *ast.Symbol {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sym := c.declSymbols[n]; sym != nil {
		return sym
	}
	return c.declSymbols[ast.ParseTreeNode(n)]
}

// ResolveModule finds the module symbol a specifier written in from names.
func (c *Checker) ResolveModule(specifier string, from *ast.SourceFile) *ast.Symbol {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolveModuleSymbol(specifier, from)
}

// ModuleOf returns the module symbol that declares sym: a file or an ambient
// module. Globals have none.
func (c *Checker) ModuleOf(sym *ast.Symbol) *ast.Symbol {
	for s := sym; s != nil; s = s.Parent {
		if s.Flags&ast.SymbolModule != 0 {
			return s
		}
	}
	return nil
}

// ExportName returns the name under which mod exports sym, or "".
func (c *Checker) ExportName(mod, sym *ast.Symbol) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if mod == nil || sym == nil {
		return ""
	}
	if r := mod.Exports[sym.Name]; r != nil && c.resolveAliasOrSelf(r) == sym {
		return sym.Name
	}
	if names := mod.ExportNames[sym]; len(names) > 0 {
		return names[0]
	}
	names := make([]string, 0, len(mod.Exports))
	for name := range mod.Exports {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if c.resolveAliasOrSelf(mod.Exports[name]) == sym {
			return name
		}
	}
	if r := c.moduleExport(mod, sym.Name, map[*ast.Symbol]bool{}); r != nil && c.resolveAliasOrSelf(r) == sym {
		return sym.Name
	}
	return ""
}

// Exports returns the exported symbols of a module sorted by name, export
// stars included.
func (c *Checker) Exports(mod *ast.Symbol) []*ast.Symbol {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := map[string]*ast.Symbol{}
	var collect func(m *ast.Symbol, visited map[*ast.Symbol]bool)
	collect = func(m *ast.Symbol, visited map[*ast.Symbol]bool) {
		if m == nil || visited[m] {
			return
		}
		visited[m] = true
		for name, s := range m.Exports {
			if _, ok := seen[name]; !ok {
				seen[name] = s
			}
		}
		for _, star := range c.exportStars[m] {
			collect(c.resolveModuleSymbol(star.module, star.from), visited)
		}
	}
	collect(mod, map[*ast.Symbol]bool{})
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*ast.Symbol, len(names))
	for i, name := range names {
		out[i] = seen[name]
	}
	return out
}

// ExportNames returns the names a module exports, sorted.
func (c *Checker) ExportNames(mod *ast.Symbol) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := map[string]bool{}
	var collect func(m *ast.Symbol, visited map[*ast.Symbol]bool)
	collect = func(m *ast.Symbol, visited map[*ast.Symbol]bool) {
		if m == nil || visited[m] {
			return
		}
		visited[m] = true
		for name := range m.Exports {
			seen[name] = true
		}
		for _, star := range c.exportStars[m] {
			collect(c.resolveModuleSymbol(star.module, star.from), visited)
		}
	}
	collect(mod, map[*ast.Symbol]bool{})
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnumMembers returns the members of an enum in declaration order across
// every merged declaration.
func (c *Checker) EnumMembers(enum *ast.Symbol) []*ast.Symbol {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enumOrder[enum]
}

// EnumMemberValue returns the constant value of an enum member: a float64
// or a string. ok is false for computed members.
func (c *Checker) EnumMemberValue(member *ast.Symbol) (value any, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.enumMemberValue(member)
	return v, v != nil
}

// LookupName resolves name as seen from the scope of a declaration node.
func (c *Checker) LookupName(name string, at ast.Node, meaning ast.SymbolFlags) *ast.Symbol {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolveName(name, c.scopeOf(at), meaning)
}

func (c *Checker) scopeOf(n ast.Node) *scope {
	if n == nil {
		return nil
	}
	if f, ok := n.(*ast.SourceFile); ok {
		return c.fileScopes[f]
	}
	if s := c.scopes[n]; s != nil {
		return s
	}
	return c.scopes[ast.ParseTreeNode(n)]
}

// ---------------------------------------------------------------------------
// Intrinsic accessors used by the transform and tests.

func (c *Checker) AnyType() *Type { return c.anyType }
func (c *Checker) StringType() *Type { return c.stringType }
func (c *Checker) NumberType() *Type { return c.numberType }
func (c *Checker) UndefinedType() *Type { return c.undefinedType }
