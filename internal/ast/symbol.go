package ast

import "strings"

// ModifierFlags is the set of modifiers written on a declaration or member.
type ModifierFlags uint32

const (
	ModifierNone   ModifierFlags = 0
	ModifierExport ModifierFlags = 1 << iota
	ModifierDefault
	ModifierDeclare
	ModifierConst
	ModifierAbstract
	ModifierStatic
	ModifierReadonly
	ModifierPublic
	ModifierPrivate
	ModifierProtected
	ModifierOverride
	ModifierAsync
	ModifierAccessor
	ModifierIn
	ModifierOut
)

// Has reports whether all of m are set.
func (f ModifierFlags) Has(m ModifierFlags) bool { return f&m == m }

var modifierOrder = []struct {
	flag ModifierFlags
	text string
}{
	{ModifierExport, "export"},
	{ModifierDefault, "default"},
	{ModifierDeclare, "declare"},
	{ModifierPublic, "public"},
	{ModifierPrivate, "private"},
	{ModifierProtected, "protected"},
	{ModifierStatic, "static"},
	{ModifierOverride, "override"},
	{ModifierAbstract, "abstract"},
	{ModifierAccessor, "accessor"},
	{ModifierAsync, "async"},
	{ModifierReadonly, "readonly"},
	{ModifierConst, "const"},
	{ModifierIn, "in"},
	{ModifierOut, "out"},
}

// ModifierFromKeyword maps a modifier keyword to its flag.
func ModifierFromKeyword(text string) (ModifierFlags, bool) {
	for _, m := range modifierOrder {
		if m.text == text {
			return m.flag, true
		}
	}
	return ModifierNone, false
}

// String renders the modifiers in canonical order, space separated.
func (f ModifierFlags) String() string {
	var parts []string
	for _, m := range modifierOrder {
		if f&m.flag != 0 {
			parts = append(parts, m.text)
		}
	}
	return strings.Join(parts, " ")
}

// SymbolFlags classifies a symbol by the declarations merged into it.
type SymbolFlags uint32

const (
	SymbolNone     SymbolFlags = 0
	SymbolVariable SymbolFlags = 1 << iota
	SymbolFunction
	SymbolClass
	SymbolInterface
	SymbolTypeAlias
	SymbolEnum
	SymbolEnumMember
	SymbolNamespace
	SymbolModule
	SymbolAlias
	SymbolTypeParameter
	SymbolProperty
	SymbolMethod

	SymbolType  = SymbolClass | SymbolInterface | SymbolTypeAlias | SymbolEnum | SymbolEnumMember | SymbolTypeParameter | SymbolAlias
	SymbolValue = SymbolVariable | SymbolFunction | SymbolClass | SymbolEnum | SymbolEnumMember | SymbolNamespace | SymbolAlias | SymbolModule
)

// Has reports whether any of m are set.
func (f SymbolFlags) Has(m SymbolFlags) bool { return f&m != 0 }

var symbolFlagNames = []struct {
	flag SymbolFlags
	name string
}{
	{SymbolVariable, "variable"},
	{SymbolFunction, "function"},
	{SymbolClass, "class"},
	{SymbolInterface, "interface"},
	{SymbolTypeAlias, "type"},
	{SymbolEnum, "enum"},
	{SymbolEnumMember, "enum member"},
	{SymbolNamespace, "namespace"},
	{SymbolModule, "module"},
	{SymbolAlias, "alias"},
	{SymbolTypeParameter, "type parameter"},
	{SymbolProperty, "property"},
	{SymbolMethod, "method"},
}

// String names the kinds merged into the symbol, e.g. "interface|variable".
func (f SymbolFlags) String() string {
	var parts []string
	for _, n := range symbolFlagNames {
		if f&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Symbol is a named binding. Declarations lists every declaration merged into
// it in source order. File is the declaring module and Parent the enclosing
// namespace or module symbol.
type Symbol struct {
	ID           int
	Name         string
	Flags        SymbolFlags
	Declarations []Node
	File         *SourceFile
	Parent       *Symbol
	// Exported is the export visibility of the symbol within its parent.
	Exported bool
	// Exports holds the exported members of a module, namespace or enum.
	Exports SymbolTable
	// Members holds every member, exported or not, of a namespace or enum.
	Members SymbolTable
	// ExportNames maps a local symbol to the names it is exported under via
	// export lists (`export { a as b }`); only set on module symbols.
	ExportNames map[*Symbol][]string
}

// SymbolTable maps names to symbols.
type SymbolTable map[string]*Symbol

// FirstDeclaration returns the first declaration or nil.
func (s *Symbol) FirstDeclaration() Node {
	if s == nil || len(s.Declarations) == 0 {
		return nil
	}
	return s.Declarations[0]
}

// TypeParametersOf returns the type parameters declared by a declaration node.
func TypeParametersOf(n Node) []*TypeParameter {
	switch d := n.(type) {
	case *TypeAliasDeclaration:
		return d.TypeParameters
	case *InterfaceDeclaration:
		return d.TypeParameters
	case *ClassDeclaration:
		return d.TypeParameters
	case *FunctionDeclaration:
		return d.TypeParameters
	case *MethodDeclaration:
		return d.TypeParameters
	case *MethodSignature:
		return d.TypeParameters
	}
	return nil
}
