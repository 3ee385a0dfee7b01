package checker

import (
	"math"
	"strconv"
	"strings"

	"github.com/tsgonest/dtsresolve/internal/ast"
)

// TypeFlags classifies a resolved type.
type TypeFlags uint32

const (
	TypeAny TypeFlags = 1 << iota
	TypeUnknown
	TypeNever
	TypeVoid
	TypeUndefined
	TypeNull
	TypeString
	TypeNumber
	TypeBigInt
	TypeBoolean
	TypeESSymbol
	TypeNonPrimitive
	TypeStringLiteral
	TypeNumberLiteral
	TypeBigIntLiteral
	TypeBooleanLiteral
	TypeEnumLiteral
	TypeEnum
	TypeUnion
	TypeIntersection
	TypeObject
	TypeTypeParameter
	TypeThis
	// TypeOpaque is a type kept as syntax: conditional, mapped and template
	// types that cannot be evaluated, predicates, and unresolved names.
	TypeOpaque
	// TypeError marks a failed resolution; it prints as any.
	TypeError

	TypeIntrinsic = TypeAny | TypeUnknown | TypeNever | TypeVoid | TypeUndefined | TypeNull |
		TypeString | TypeNumber | TypeBigInt | TypeBoolean | TypeESSymbol | TypeNonPrimitive | TypeThis
	TypeLiteral   = TypeStringLiteral | TypeNumberLiteral | TypeBigIntLiteral | TypeBooleanLiteral
)

// ObjectKind refines TypeObject.
type ObjectKind int

const (
	ObjectAnonymous ObjectKind = iota
	ObjectReference
	ObjectArray
	ObjectTuple
	// ObjectDeferred stands for an alias instantiation still being resolved;
	// it only ever prints as a reference to the alias.
	ObjectDeferred
)

// AliasTag records that a type was produced by instantiating a type alias.
type AliasTag struct {
	Symbol        *ast.Symbol
	TypeArguments []*Type
}

// Type is a resolved type. Types are immutable once built; intrinsic,
// literal and reference types are interned so pointer equality is identity.
type Type struct {
	id    int
	flags TypeFlags

	symbol *ast.Symbol
	alias  *AliasTag

	// literal value: string, float64 or bool; bigint literals keep text.
	value any
	text  string

	types []*Type

	objectKind    ObjectKind
	typeArguments []*Type
	tuple         []TupleElementInfo
	readonly      bool
	members       []*Member

	node   ast.TypeNode
	mapper *mapper
}

// TupleElementInfo describes one tuple slot.
type TupleElementInfo struct {
	Name     string
	Optional bool
	Rest     bool
}

// MemberKind classifies an object member.
type MemberKind int

const (
	MemberProperty MemberKind = iota
	MemberMethod
	MemberCall
	MemberConstruct
	MemberIndex
	MemberGetAccessor
	MemberSetAccessor
)

// Member is one resolved member of an object type.
type Member struct {
	Kind      MemberKind
	Name      ast.PropertyName
	Optional  bool
	Readonly  bool
	Type      *Type
	Signature *Signature
	KeyName   string
	KeyType   *Type
	Decl      ast.Declaration
}

// Signature is a resolved call, construct or method signature.
type Signature struct {
	TypeParameters []*TypeParameterInfo
	Parameters     []*ParameterInfo
	Return         *Type
}

// TypeParameterInfo is a signature's type parameter.
type TypeParameterInfo struct {
	Name       string
	Symbol     *ast.Symbol
	Modifiers  ast.ModifierFlags
	Constraint *Type
	Default    *Type
}

// ParameterInfo is a signature's parameter. Type is nil when unannotated.
type ParameterInfo struct {
	Name      string
	Modifiers ast.ModifierFlags
	Optional  bool
	Rest      bool
	Type      *Type
}

func (t *Type) ID() int { return t.id }
func (t *Type) Flags() TypeFlags { return t.flags }
func (t *Type) Symbol() *ast.Symbol { return t.symbol }
func (t *Type) Alias() *AliasTag { return t.alias }
func (t *Type) Types() []*Type { return t.types }
func (t *Type) TypeArguments() []*Type { return t.typeArguments }
func (t *Type) ObjectKind() ObjectKind { return t.objectKind }
func (t *Type) IsUnion() bool { return t.flags&TypeUnion != 0 }
func (t *Type) IsIntersection() bool { return t.flags&TypeIntersection != 0 }
func (t *Type) IsStringLiteral() bool { return t.flags == TypeStringLiteral }
func (t *Type) IsNumberLiteral() bool { return t.flags == TypeNumberLiteral }
func (t *Type) IsEnum() bool { return t.flags&TypeEnum != 0 }
func (t *Type) IsError() bool { return t.flags&TypeError != 0 }
func (t *Type) IsOpaque() bool { return t.flags&TypeOpaque != 0 }
func (t *Type) IsObject() bool { return t.flags&TypeObject != 0 }
func (t *Type) IsTypeParameter() bool { return t.flags&TypeTypeParameter != 0 }
func (t *Type) LiteralValue() any { return t.value }
func (t *Type) LiteralText() string { return t.text }
func (t *Type) AnonymousMembers() []*Member { return t.members }

// ---------------------------------------------------------------------------
// Substitution

// mapper substitutes type parameter symbols. Mappers chain so that nested
// instantiations see outer substitutions.
type mapper struct {
	parent  *mapper
	sources []*ast.Symbol
	targets []*Type
}

func newMapper(parent *mapper, sources []*ast.Symbol, targets []*Type) *mapper {
	if len(targets) < len(sources) {
		sources = sources[:len(targets)]
	}
	return &mapper{parent: parent, sources: sources, targets: targets}
}

func (m *mapper) lookup(sym *ast.Symbol) (*Type, bool) {
	for ; m != nil; m = m.parent {
		for i, s := range m.sources {
			if s == sym {
				return m.targets[i], true
			}
		}
	}
	return nil, false
}

func (m *mapper) empty() bool {
	for ; m != nil; m = m.parent {
		if len(m.sources) > 0 {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Construction

func (c *Checker) newType(flags TypeFlags) *Type {
	c.nextTypeID++
	return &Type{id: c.nextTypeID, flags: flags}
}

func (c *Checker) initIntrinsics() {
	c.anyType = c.newType(TypeAny)
	c.errorType = c.newType(TypeAny | TypeError)
	c.unknownType = c.newType(TypeUnknown)
	c.neverType = c.newType(TypeNever)
	c.voidType = c.newType(TypeVoid)
	c.undefinedType = c.newType(TypeUndefined)
	c.nullType = c.newType(TypeNull)
	c.stringType = c.newType(TypeString)
	c.numberType = c.newType(TypeNumber)
	c.bigintType = c.newType(TypeBigInt)
	c.booleanType = c.newType(TypeBoolean)
	c.esSymbolType = c.newType(TypeESSymbol)
	c.nonPrimitiveType = c.newType(TypeNonPrimitive)
	c.thisType = c.newType(TypeThis)
	c.trueType = c.newType(TypeBooleanLiteral)
	c.trueType.value, c.trueType.text = true, "true"
	c.falseType = c.newType(TypeBooleanLiteral)
	c.falseType.value, c.falseType.text = false, "false"
}

func (c *Checker) intrinsicType(k ast.Keyword) *Type {
	switch k {
	case ast.KeywordAny:
		return c.anyType
	case ast.KeywordUnknown:
		return c.unknownType
	case ast.KeywordNever:
		return c.neverType
	case ast.KeywordVoid:
		return c.voidType
	case ast.KeywordUndefined:
		return c.undefinedType
	case ast.KeywordNull:
		return c.nullType
	case ast.KeywordString:
		return c.stringType
	case ast.KeywordNumber:
		return c.numberType
	case ast.KeywordBigInt:
		return c.bigintType
	case ast.KeywordBoolean:
		return c.booleanType
	case ast.KeywordSymbol:
		return c.esSymbolType
	case ast.KeywordObject:
		return c.nonPrimitiveType
	case ast.KeywordThis:
		return c.thisType
	}
	return nil
}

func (c *Checker) stringLiteral(v string) *Type {
	key := "s:" + v
	if t, ok := c.literals[key]; ok {
		return t
	}
	t := c.newType(TypeStringLiteral)
	t.value, t.text = v, v
	c.literals[key] = t
	return t
}

func (c *Checker) numberLiteral(v float64) *Type {
	text := FormatNumber(v)
	key := "n:" + text
	if t, ok := c.literals[key]; ok {
		return t
	}
	t := c.newType(TypeNumberLiteral)
	t.value, t.text = v, text
	c.literals[key] = t
	return t
}

func (c *Checker) bigintLiteral(text string) *Type {
	text = strings.ReplaceAll(text, "_", "")
	key := "b:" + text
	if t, ok := c.literals[key]; ok {
		return t
	}
	t := c.newType(TypeBigIntLiteral)
	t.value, t.text = text, text
	c.literals[key] = t
	return t
}

func (c *Checker) typeParameterType(sym *ast.Symbol) *Type {
	if t, ok := c.typeParams[sym]; ok {
		return t
	}
	t := c.newType(TypeTypeParameter)
	t.symbol = sym
	c.typeParams[sym] = t
	return t
}

func (c *Checker) opaqueType(n ast.TypeNode, m *mapper) *Type {
	if m.empty() {
		m = nil
		if t, ok := c.opaque[n]; ok {
			return t
		}
	}
	t := c.newType(TypeOpaque)
	t.node, t.mapper = n, m
	if m == nil {
		c.opaque[n] = t
	}
	return t
}

func typeListKey(prefix string, types []*Type) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, t := range types {
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(t.id))
	}
	return b.String()
}

func (c *Checker) referenceType(sym *ast.Symbol, args []*Type) *Type {
	key := typeListKey("r"+strconv.Itoa(sym.ID), args)
	if t, ok := c.references[key]; ok {
		return t
	}
	t := c.newType(TypeObject)
	t.objectKind = ObjectReference
	t.symbol = sym
	t.typeArguments = args
	c.references[key] = t
	return t
}

func (c *Checker) arrayType(elem *Type, readonly bool) *Type {
	key := "a" + strconv.Itoa(elem.id)
	if readonly {
		key = "ra" + strconv.Itoa(elem.id)
	}
	if t, ok := c.references[key]; ok {
		return t
	}
	t := c.newType(TypeObject)
	t.objectKind = ObjectArray
	t.typeArguments = []*Type{elem}
	t.readonly = readonly
	c.references[key] = t
	return t
}

func (c *Checker) tupleType(elems []*Type, info []TupleElementInfo, readonly bool) *Type {
	t := c.newType(TypeObject)
	t.objectKind = ObjectTuple
	t.typeArguments = elems
	t.tuple = info
	t.readonly = readonly
	return t
}

func (c *Checker) anonymousType(members []*Member) *Type {
	t := c.newType(TypeObject)
	t.objectKind = ObjectAnonymous
	t.members = members
	return t
}

func (c *Checker) enumType(sym *ast.Symbol) *Type {
	if t, ok := c.enums[sym]; ok {
		return t
	}
	t := c.newType(TypeEnum)
	t.symbol = sym
	c.enums[sym] = t
	return t
}

func (c *Checker) enumLiteralType(member *ast.Symbol) *Type {
	if t, ok := c.enums[member]; ok {
		return t
	}
	t := c.newType(TypeEnumLiteral)
	t.symbol = member
	t.text = member.Name
	c.enums[member] = t
	return t
}

// withAlias tags a freshly built type with the alias that produced it.
// Interned types are never tagged.
func (c *Checker) withAlias(t *Type, sym *ast.Symbol, args []*Type) *Type {
	fresh := t.flags&(TypeUnion|TypeIntersection|TypeOpaque) != 0 ||
		t.flags&TypeObject != 0 && (t.objectKind == ObjectAnonymous || t.objectKind == ObjectTuple)
	if !fresh || t.alias != nil && t.alias.Symbol == sym {
		return t
	}
	cp := *t
	c.nextTypeID++
	cp.id = c.nextTypeID
	cp.alias = &AliasTag{Symbol: sym, TypeArguments: args}
	return &cp
}

// union builds a union, flattening nested unions, removing duplicates and
// never, absorbing literals into their primitive and collapsing true|false.
func (c *Checker) union(types []*Type) *Type {
	var flat []*Type
	seen := map[*Type]bool{}
	var add func(t *Type)
	add = func(t *Type) {
		if t.flags&TypeUnion != 0 {
			for _, m := range t.types {
				add(m)
			}
			return
		}
		if t.flags&TypeNever != 0 || seen[t] {
			return
		}
		seen[t] = true
		flat = append(flat, t)
	}
	for _, t := range types {
		add(t)
	}
	var has TypeFlags
	for _, t := range flat {
		has |= t.flags
		if t.flags&TypeError != 0 {
			return c.errorType
		}
	}
	if has&TypeAny != 0 {
		return c.anyType
	}
	if has&TypeUnknown != 0 {
		return c.unknownType
	}
	out := flat[:0:0]
	boolAdded := false
	for _, t := range flat {
		switch {
		case t.flags == TypeStringLiteral && has&TypeString != 0,
			t.flags == TypeNumberLiteral && has&TypeNumber != 0,
			t.flags == TypeBigIntLiteral && has&TypeBigInt != 0:
			continue
		case t.flags == TypeBooleanLiteral && (has&TypeBoolean != 0 || seen[c.trueType] && seen[c.falseType]):
			if !boolAdded && has&TypeBoolean == 0 {
				out = append(out, c.booleanType)
			}
			boolAdded = true
			continue
		case t == c.booleanType:
			if boolAdded {
				continue
			}
			boolAdded = true
		}
		out = append(out, t)
	}
	switch len(out) {
	case 0:
		return c.neverType
	case 1:
		return out[0]
	}
	key := typeListKey("u", out)
	if t, ok := c.references[key]; ok {
		return t
	}
	t := c.newType(TypeUnion)
	t.types = out
	c.references[key] = t
	return t
}

// intersection builds an intersection, flattening nested intersections.
func (c *Checker) intersection(types []*Type) *Type {
	var flat []*Type
	seen := map[*Type]bool{}
	var add func(t *Type)
	add = func(t *Type) {
		if t.flags&TypeIntersection != 0 {
			for _, m := range t.types {
				add(m)
			}
			return
		}
		if seen[t] {
			return
		}
		seen[t] = true
		flat = append(flat, t)
	}
	for _, t := range types {
		add(t)
	}
	for _, t := range flat {
		switch {
		case t.flags&TypeError != 0:
			return c.errorType
		case t.flags&TypeAny != 0:
			return c.anyType
		case t.flags&TypeNever != 0:
			return c.neverType
		}
	}
	if len(flat) > 1 {
		kept := flat[:0:0]
		for _, t := range flat {
			if t.flags&TypeUnknown == 0 {
				kept = append(kept, t)
			}
		}
		flat = kept
	}
	switch len(flat) {
	case 0:
		return c.unknownType
	case 1:
		return flat[0]
	}
	t := c.newType(TypeIntersection)
	t.types = flat
	return t
}

func (c *Checker) removeUndefined(t *Type) *Type {
	if t == c.undefinedType {
		return c.neverType
	}
	if t.flags&TypeUnion == 0 {
		return t
	}
	var kept []*Type
	for _, m := range t.types {
		if m != c.undefinedType {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(t.types) {
		return t
	}
	return c.union(kept)
}

// ---------------------------------------------------------------------------
// Numbers

// ParseNumber parses a numeric literal as written in source.
func ParseNumber(text string) (float64, bool) {
	text = strings.ReplaceAll(text, "_", "")
	neg := strings.HasPrefix(text, "-")
	text = strings.TrimPrefix(text, "-")
	base := 0
	if len(text) > 2 && text[0] == '0' {
		switch text[1] {
		case 'x', 'X':
			base = 16
		case 'b', 'B':
			base = 2
		case 'o', 'O':
			base = 8
		}
	}
	var v float64
	if base != 0 {
		u, err := strconv.ParseUint(text[2:], base, 64)
		if err != nil {
			return 0, false
		}
		v = float64(u)
	} else {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, false
		}
		v = f
	}
	if neg {
		v = -v
	}
	return v, true
}

// FormatNumber renders v the way JavaScript's Number#toString does for the
// values that occur in declarations.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if i := strings.IndexByte(s, 'e'); i >= 0 {
		mant, exp := s[:i], s[i+1:]
		if exp[0] == '+' {
			exp = exp[1:]
			return mant + "e+" + strings.TrimLeft(exp, "0")
		}
		return mant + "e-" + strings.TrimLeft(exp[1:], "0")
	}
	return s
}
