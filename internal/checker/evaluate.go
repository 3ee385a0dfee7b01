package checker

import (
	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/parser"
)

// isGeneric reports whether t still depends on an unbound type parameter at
// its top level, which keeps type operators over it unevaluated.
func (c *Checker) isGeneric(t *Type) bool {
	t = c.resolveDeferred(t)
	switch {
	case t.flags&(TypeTypeParameter|TypeOpaque|TypeThis) != 0:
		return true
	case t.flags&(TypeUnion|TypeIntersection) != 0:
		for _, m := range t.types {
			if c.isGeneric(m) {
				return true
			}
		}
	case t.flags&TypeObject != 0 && t.objectKind == ObjectDeferred:
		return true
	}
	return false
}

// containsTypeParameters reports whether t mentions an unbound type
// parameter anywhere in its structure.
func (c *Checker) containsTypeParameters(t *Type) bool {
	return c.containsTypeParametersIn(t, map[*Type]bool{})
}

func (c *Checker) containsTypeParametersIn(t *Type, visited map[*Type]bool) bool {
	if t == nil || visited[t] {
		return false
	}
	visited[t] = true
	if c.isGeneric(t) {
		return true
	}
	for _, a := range t.typeArguments {
		if c.containsTypeParametersIn(a, visited) {
			return true
		}
	}
	if t.alias != nil {
		for _, a := range t.alias.TypeArguments {
			if c.containsTypeParametersIn(a, visited) {
				return true
			}
		}
	}
	for _, mem := range t.members {
		if c.containsTypeParametersIn(mem.Type, visited) || c.containsTypeParametersIn(mem.KeyType, visited) {
			return true
		}
		if sig := mem.Signature; sig != nil {
			if c.containsTypeParametersIn(sig.Return, visited) {
				return true
			}
			for _, p := range sig.Parameters {
				if c.containsTypeParametersIn(p.Type, visited) {
					return true
				}
			}
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// keyof

func (c *Checker) keyofType(target *Type, n ast.TypeNode, m *mapper) *Type {
	target = c.resolveDeferred(target)
	switch {
	case target.flags&TypeAny != 0:
		return c.union([]*Type{c.stringType, c.numberType, c.esSymbolType})
	case target.flags&(TypeUnknown|TypeNever|TypeVoid|TypeUndefined|TypeNull) != 0:
		return c.neverType
	case c.isGeneric(target):
		return c.opaqueType(n, m)
	case target.flags&TypeUnion != 0:
		// keyof (A | B) is the keys A and B share.
		common := c.propertyKeys(target.types[0])
		for _, part := range target.types[1:] {
			keys := map[*Type]bool{}
			for _, k := range c.propertyKeys(part) {
				keys[k] = true
			}
			kept := common[:0:0]
			for _, k := range common {
				if keys[k] {
					kept = append(kept, k)
				}
			}
			common = kept
		}
		return c.union(common)
	}
	if c.membersOf(target) == nil && target.flags&TypeObject == 0 {
		return c.opaqueType(n, m)
	}
	return c.union(c.propertyKeys(target))
}

// propertyKeys lists the key types of t's members in declaration order.
func (c *Checker) propertyKeys(t *Type) []*Type {
	var keys []*Type
	for _, mem := range c.membersOf(t) {
		switch mem.Kind {
		case MemberProperty, MemberMethod, MemberGetAccessor, MemberSetAccessor:
			switch mem.Name.Kind {
			case ast.PropertyNameIdentifier, ast.PropertyNameString:
				keys = append(keys, c.stringLiteral(mem.Name.Text))
			case ast.PropertyNameNumber:
				if v, ok := ParseNumber(mem.Name.Text); ok {
					keys = append(keys, c.numberLiteral(v))
				}
			}
		case MemberIndex:
			switch {
			case mem.KeyType.flags&TypeString != 0:
				keys = append(keys, c.stringType, c.numberType)
			case mem.KeyType.flags&TypeNumber != 0:
				keys = append(keys, c.numberType)
			case mem.KeyType.flags&TypeESSymbol != 0:
				keys = append(keys, c.esSymbolType)
			}
		}
	}
	return keys
}

// ---------------------------------------------------------------------------
// Indexed access

func (c *Checker) indexedAccessType(obj, idx *Type, n ast.TypeNode, m *mapper) *Type {
	obj, idx = c.resolveDeferred(obj), c.resolveDeferred(idx)
	if idx.flags&TypeUnion != 0 {
		parts := make([]*Type, 0, len(idx.types))
		for _, k := range idx.types {
			r := c.indexedAccessType(obj, k, n, m)
			if r.flags&TypeOpaque != 0 && r.node == n {
				return c.opaqueType(n, m)
			}
			parts = append(parts, r)
		}
		return c.union(parts)
	}
	if c.isGeneric(obj) || c.isGeneric(idx) {
		return c.opaqueType(n, m)
	}
	if obj.flags&TypeUnion != 0 {
		parts := make([]*Type, 0, len(obj.types))
		for _, o := range obj.types {
			r := c.indexedAccessType(o, idx, n, m)
			if r.flags&TypeOpaque != 0 && r.node == n {
				return c.opaqueType(n, m)
			}
			parts = append(parts, r)
		}
		return c.union(parts)
	}
	if obj.flags&TypeAny != 0 {
		return c.anyType
	}
	isArray := obj.flags&TypeObject != 0 && obj.objectKind == ObjectArray
	isTuple := obj.flags&TypeObject != 0 && obj.objectKind == ObjectTuple
	switch {
	case idx.flags&TypeStringLiteral != 0:
		if r := c.propertyAccess(obj, idx.value.(string)); r != nil {
			return r
		}
		if ix := c.findIndex(obj, TypeString); ix != nil {
			return c.memberType(ix)
		}
	case idx.flags&TypeNumberLiteral != 0:
		i := idx.value.(float64)
		if isTuple {
			return c.tupleElement(obj, int(i))
		}
		if isArray {
			return obj.typeArguments[0]
		}
		if r := c.propertyAccess(obj, idx.text); r != nil {
			return r
		}
		if ix := c.findIndex(obj, TypeNumber); ix != nil {
			return c.memberType(ix)
		}
	case idx.flags&TypeNumber != 0:
		if isArray {
			return obj.typeArguments[0]
		}
		if isTuple {
			elems := make([]*Type, len(obj.typeArguments))
			for i, e := range obj.typeArguments {
				elems[i] = c.restElement(obj, i, e)
			}
			return c.union(elems)
		}
		if ix := c.findIndex(obj, TypeNumber); ix != nil {
			return c.memberType(ix)
		}
	case idx.flags&TypeString != 0:
		if ix := c.findIndex(obj, TypeString); ix != nil {
			return c.memberType(ix)
		}
	}
	return c.opaqueType(n, m)
}

func (c *Checker) propertyAccess(obj *Type, name string) *Type {
	mem := c.findProperty(obj, name)
	if mem == nil {
		return nil
	}
	t := c.memberType(mem)
	if mem.Optional {
		t = c.union([]*Type{t, c.undefinedType})
	}
	return t
}

func (c *Checker) restElement(tuple *Type, i int, e *Type) *Type {
	if tuple.tuple[i].Rest && e.flags&TypeObject != 0 && e.objectKind == ObjectArray {
		return e.typeArguments[0]
	}
	return e
}

func (c *Checker) tupleElement(tuple *Type, i int) *Type {
	if i < 0 {
		return c.undefinedType
	}
	for j, e := range tuple.typeArguments {
		if tuple.tuple[j].Rest {
			return c.restElement(tuple, j, e)
		}
		if j == i {
			if tuple.tuple[j].Optional {
				return c.union([]*Type{e, c.undefinedType})
			}
			return e
		}
	}
	return c.undefinedType
}

// ---------------------------------------------------------------------------
// Conditional types

type ternary int

const (
	ternaryFalse ternary = iota
	ternaryMaybe
	ternaryTrue
)

// conditionalType evaluates a conditional type whose check and extends
// types are concrete, distributing over a union bound to a naked type
// parameter. Anything it cannot decide stays as syntax.
func (c *Checker) conditionalType(n *ast.ConditionalType, m *mapper) *Type {
	check := c.typeFromNode(n.CheckType, m)
	if ref, ok := n.CheckType.(*ast.TypeReference); ok && len(ref.TypeArguments) == 0 &&
		ref.Symbol != nil && ref.Symbol.Flags&ast.SymbolTypeParameter != 0 {
		if _, bound := m.lookup(ref.Symbol); bound {
			if check.flags&TypeNever != 0 {
				return c.neverType
			}
			if check.flags&TypeUnion != 0 {
				parts := make([]*Type, 0, len(check.types))
				for _, member := range check.types {
					r := c.conditionalSingle(n, member, newMapper(m, []*ast.Symbol{ref.Symbol}, []*Type{member}))
					if r == nil {
						return c.opaqueType(n, m)
					}
					parts = append(parts, r)
				}
				return c.union(parts)
			}
		}
	}
	if r := c.conditionalSingle(n, check, m); r != nil {
		return r
	}
	return c.opaqueType(n, m)
}

func (c *Checker) conditionalSingle(n *ast.ConditionalType, check *Type, m *mapper) *Type {
	if c.containsTypeParameters(check) {
		return nil
	}
	var infers []*ast.TypeParameter
	ast.WalkType(n.ExtendsType, func(t ast.TypeNode) bool {
		if it, ok := t.(*ast.InferType); ok {
			infers = append(infers, it.TypeParameter)
		}
		_, nested := t.(*ast.ConditionalType)
		return !nested
	})
	if len(infers) > 0 {
		inferred := map[*ast.Symbol]*Type{}
		c.inferFrom(check, n.ExtendsType, inferred, m, 0)
		syms := c.typeParameterSymbols(infers)
		targets := make([]*Type, len(syms))
		for i, s := range syms {
			targets[i] = inferred[s]
			if targets[i] == nil {
				targets[i] = c.unknownType
				if infers[i].Constraint != nil {
					targets[i] = c.typeFromNode(infers[i].Constraint, m)
				}
			}
		}
		m = newMapper(m, syms, targets)
	}
	ext := c.typeFromNode(n.ExtendsType, m)
	if c.containsTypeParameters(ext) {
		return nil
	}
	switch c.assignable(check, ext, 0) {
	case ternaryTrue:
		return c.typeFromNode(n.TrueType, m)
	case ternaryFalse:
		return c.typeFromNode(n.FalseType, m)
	}
	return nil
}

// inferFrom matches source against the written extends type and records
// what each infer position captures.
func (c *Checker) inferFrom(source *Type, target ast.TypeNode, out map[*ast.Symbol]*Type, m *mapper, depth int) {
	if depth > 8 || source == nil {
		return
	}
	source = c.resolveDeferred(source)
	switch target := target.(type) {
	case *ast.InferType:
		if sym := c.tpSymbols[target.TypeParameter]; sym != nil && out[sym] == nil {
			out[sym] = source
		}
	case *ast.ParenthesizedType:
		c.inferFrom(source, target.Type, out, m, depth+1)
	case *ast.ArrayType:
		if source.flags&TypeObject != 0 && source.objectKind == ObjectArray {
			c.inferFrom(source.typeArguments[0], target.ElementType, out, m, depth+1)
		}
	case *ast.TypeOperator:
		if target.Operator == "readonly" {
			c.inferFrom(source, target.Type, out, m, depth+1)
		}
	case *ast.TupleType:
		if source.flags&TypeObject != 0 && source.objectKind == ObjectTuple {
			for i, e := range target.Elements {
				if i < len(source.typeArguments) {
					c.inferFrom(source.typeArguments[i], e.Type, out, m, depth+1)
				}
			}
		}
	case *ast.FunctionType:
		sig := c.singleSignature(source, target.Constructor)
		if sig == nil {
			return
		}
		if len(target.Parameters) == 1 && target.Parameters[0].Rest {
			if it, ok := target.Parameters[0].Type.(*ast.InferType); ok {
				elems := make([]*Type, len(sig.Parameters))
				info := make([]TupleElementInfo, len(sig.Parameters))
				for i, p := range sig.Parameters {
					elems[i] = p.Type
					if elems[i] == nil {
						elems[i] = c.anyType
					}
					info[i] = TupleElementInfo{Name: p.Name, Optional: p.Optional, Rest: p.Rest}
				}
				c.inferFrom(c.tupleType(elems, info, false), it, out, m, depth+1)
			}
		} else {
			for i, p := range target.Parameters {
				if i < len(sig.Parameters) && sig.Parameters[i].Type != nil {
					c.inferFrom(sig.Parameters[i].Type, p.Type, out, m, depth+1)
				}
			}
		}
		if sig.Return != nil {
			c.inferFrom(sig.Return, target.Type, out, m, depth+1)
		}
	case *ast.TypeReference:
		sym := c.resolveAliasOrSelf(target.Symbol)
		if sym == nil || len(target.TypeArguments) == 0 {
			return
		}
		if source.flags&TypeObject != 0 && source.objectKind == ObjectArray && c.isLibSymbol(sym, "Array") {
			c.inferFrom(source.typeArguments[0], target.TypeArguments[0], out, m, depth+1)
			return
		}
		if source.symbol == sym {
			for i, a := range target.TypeArguments {
				if i < len(source.typeArguments) {
					c.inferFrom(source.typeArguments[i], a, out, m, depth+1)
				}
			}
		}
	case *ast.TypeLiteral:
		for _, e := range target.Members {
			switch e := e.(type) {
			case *ast.PropertySignature:
				if prop := c.findProperty(source, e.Name.Text); prop != nil {
					c.inferFrom(c.memberType(prop), e.Type, out, m, depth+1)
				}
			case *ast.MethodSignature:
				if prop := c.findProperty(source, e.Name.Text); prop != nil && prop.Signature != nil {
					for i, p := range e.Parameters {
						if i < len(prop.Signature.Parameters) && prop.Signature.Parameters[i].Type != nil {
							c.inferFrom(prop.Signature.Parameters[i].Type, p.Type, out, m, depth+1)
						}
					}
				}
			}
		}
	case *ast.IntersectionType:
		for _, part := range target.Types {
			c.inferFrom(source, part, out, m, depth+1)
		}
	}
}

// singleSignature returns the only call (or construct) signature of an
// object type.
func (c *Checker) singleSignature(t *Type, construct bool) *Signature {
	kind := MemberCall
	if construct {
		kind = MemberConstruct
	}
	var sig *Signature
	for _, mem := range c.membersOf(t) {
		if mem.Kind == kind {
			if sig != nil {
				return nil
			}
			sig = mem.Signature
		}
	}
	return sig
}

// assignable decides whether s is assignable to t for the shapes declaration
// files use in conditional types; anything else is ternaryMaybe.
func (c *Checker) assignable(s, t *Type, depth int) ternary {
	s, t = c.resolveDeferred(s), c.resolveDeferred(t)
	if depth > 16 {
		return ternaryMaybe
	}
	switch {
	case s == t:
		return ternaryTrue
	case t.flags&(TypeAny|TypeUnknown) != 0:
		return ternaryTrue
	case s.flags&TypeNever != 0:
		return ternaryTrue
	case s.flags&TypeAny != 0:
		return ternaryMaybe
	case s.flags&TypeUnion != 0:
		result := ternaryTrue
		for _, part := range s.types {
			switch c.assignable(part, t, depth+1) {
			case ternaryFalse:
				return ternaryFalse
			case ternaryMaybe:
				result = ternaryMaybe
			}
		}
		return result
	case t.flags&TypeUnion != 0:
		result := ternaryFalse
		for _, part := range t.types {
			switch c.assignable(s, part, depth+1) {
			case ternaryTrue:
				return ternaryTrue
			case ternaryMaybe:
				result = ternaryMaybe
			}
		}
		return result
	case t.flags&TypeIntersection != 0:
		result := ternaryTrue
		for _, part := range t.types {
			switch c.assignable(s, part, depth+1) {
			case ternaryFalse:
				return ternaryFalse
			case ternaryMaybe:
				result = ternaryMaybe
			}
		}
		return result
	case s.flags&TypeIntersection != 0:
		for _, part := range s.types {
			if c.assignable(part, t, depth+1) == ternaryTrue {
				return ternaryTrue
			}
		}
		return ternaryMaybe
	}

	const primitive = TypeString | TypeNumber | TypeBigInt | TypeBoolean | TypeESSymbol |
		TypeStringLiteral | TypeNumberLiteral | TypeBigIntLiteral | TypeBooleanLiteral |
		TypeEnumLiteral | TypeEnum | TypeNull | TypeUndefined | TypeVoid
	switch {
	case t.flags&TypeString != 0:
		return boolTernary(s.flags&(TypeString|TypeStringLiteral) != 0 || c.isEnumOf(s, TypeStringLiteral))
	case t.flags&TypeNumber != 0:
		return boolTernary(s.flags&(TypeNumber|TypeNumberLiteral) != 0 || c.isEnumOf(s, TypeNumberLiteral))
	case t.flags&TypeBigInt != 0:
		return boolTernary(s.flags&(TypeBigInt|TypeBigIntLiteral) != 0)
	case t.flags&TypeBoolean != 0:
		return boolTernary(s.flags&(TypeBoolean|TypeBooleanLiteral) != 0)
	case t.flags&TypeESSymbol != 0:
		return boolTernary(s.flags&TypeESSymbol != 0)
	case t.flags&TypeLiteral != 0:
		if s.flags&TypeEnumLiteral != 0 {
			v := c.enumMemberValue(s.symbol)
			return boolTernary(v != nil && v == t.value)
		}
		return ternaryFalse
	case t.flags&(TypeEnumLiteral|TypeEnum) != 0:
		if s.flags&TypeEnumLiteral != 0 && t.flags&TypeEnum != 0 {
			return boolTernary(s.symbol.Parent == t.symbol)
		}
		return ternaryFalse
	case t.flags&TypeNull != 0:
		return ternaryFalse
	case t.flags&TypeUndefined != 0:
		return ternaryFalse
	case t.flags&TypeVoid != 0:
		return boolTernary(s.flags&TypeUndefined != 0)
	case t.flags&TypeNonPrimitive != 0:
		if s.flags&primitive != 0 {
			return ternaryFalse
		}
		if s.flags&(TypeObject|TypeNonPrimitive) != 0 {
			return ternaryTrue
		}
		return ternaryMaybe
	case t.flags&TypeObject != 0:
		if s.flags&(TypeNull|TypeUndefined|TypeVoid) != 0 {
			return ternaryFalse
		}
		return c.objectAssignable(s, t, depth)
	}
	return ternaryMaybe
}

func boolTernary(b bool) ternary {
	if b {
		return ternaryTrue
	}
	return ternaryFalse
}

func (c *Checker) isEnumOf(t *Type, literal TypeFlags) bool {
	var members []*ast.Symbol
	switch {
	case t.flags&TypeEnumLiteral != 0:
		members = []*ast.Symbol{t.symbol}
	case t.flags&TypeEnum != 0:
		members = c.enumOrder[t.symbol]
	default:
		return false
	}
	for _, member := range members {
		switch c.enumMemberValue(member).(type) {
		case float64:
			if literal != TypeNumberLiteral {
				return false
			}
		case string:
			if literal != TypeStringLiteral {
				return false
			}
		default:
			return false
		}
	}
	return len(members) > 0
}

func (c *Checker) objectAssignable(s, t *Type, depth int) ternary {
	switch {
	case t.objectKind == ObjectArray:
		if s.flags&TypeObject == 0 {
			return ternaryFalse
		}
		switch s.objectKind {
		case ObjectArray:
			if s.readonly && !t.readonly {
				return ternaryFalse
			}
			return c.assignable(s.typeArguments[0], t.typeArguments[0], depth+1)
		case ObjectTuple:
			result := ternaryTrue
			for i, e := range s.typeArguments {
				switch c.assignable(c.restElement(s, i, e), t.typeArguments[0], depth+1) {
				case ternaryFalse:
					return ternaryFalse
				case ternaryMaybe:
					result = ternaryMaybe
				}
			}
			return result
		}
		return ternaryMaybe
	case t.objectKind == ObjectTuple:
		if s.flags&TypeObject == 0 || s.objectKind != ObjectTuple {
			if s.flags&TypeObject != 0 && s.objectKind == ObjectArray {
				return ternaryFalse
			}
			return ternaryMaybe
		}
		if len(s.typeArguments) != len(t.typeArguments) {
			return ternaryFalse
		}
		result := ternaryTrue
		for i := range s.typeArguments {
			switch c.assignable(s.typeArguments[i], t.typeArguments[i], depth+1) {
			case ternaryFalse:
				return ternaryFalse
			case ternaryMaybe:
				result = ternaryMaybe
			}
		}
		return result
	case t.objectKind == ObjectReference && s.flags&TypeObject != 0 && s.objectKind == ObjectReference && s.symbol == t.symbol:
		result := ternaryTrue
		for i := range s.typeArguments {
			switch c.assignable(s.typeArguments[i], t.typeArguments[i], depth+1) {
			case ternaryFalse:
				return ternaryMaybe
			case ternaryMaybe:
				result = ternaryMaybe
			}
		}
		return result
	}

	targetMembers := c.membersOf(t)
	if targetMembers == nil && t.objectKind != ObjectAnonymous {
		return ternaryMaybe
	}
	if len(targetMembers) == 0 {
		// {} accepts everything but null and undefined.
		return ternaryTrue
	}
	if s.flags&TypeObject == 0 && s.flags&TypeIntersection == 0 {
		return ternaryMaybe
	}
	result := ternaryTrue
	for _, tm := range targetMembers {
		switch tm.Kind {
		case MemberProperty, MemberMethod, MemberGetAccessor:
			sm := c.findProperty(s, memberKey(tm))
			if sm == nil {
				if tm.Optional {
					continue
				}
				return ternaryFalse
			}
			if sm.Optional && !tm.Optional {
				return ternaryFalse
			}
			switch c.assignable(c.memberType(sm), c.memberType(tm), depth+1) {
			case ternaryFalse:
				return ternaryFalse
			case ternaryMaybe:
				result = ternaryMaybe
			}
		case MemberCall, MemberConstruct:
			sig := c.singleSignature(s, tm.Kind == MemberConstruct)
			if sig == nil {
				return ternaryFalse
			}
			if tm.Signature.Return != nil && sig.Return != nil {
				switch c.assignable(sig.Return, tm.Signature.Return, depth+1) {
				case ternaryFalse:
					return ternaryFalse
				case ternaryMaybe:
					result = ternaryMaybe
				}
			}
		default:
			result = ternaryMaybe
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Mapped types

// mappedType evaluates a mapped type whose keys are known literals.
// Homomorphic mapped types (`[K in keyof T]`) carry over the optional and
// readonly modifiers and the documentation of T's properties.
func (c *Checker) mappedType(n *ast.MappedType, m *mapper) *Type {
	tpSym := c.tpSymbols[n.TypeParameter]
	if tpSym == nil || n.TypeParameter.Constraint == nil {
		return c.opaqueType(n, m)
	}
	var source *Type
	if op := homomorphicOperand(n.TypeParameter.Constraint); op != nil {
		source = c.typeFromNode(op, m)
		if c.isGeneric(source) {
			return c.opaqueType(n, m)
		}
	}
	constraint := c.resolveDeferred(c.typeFromNode(n.TypeParameter.Constraint, m))
	keys := []*Type{constraint}
	if constraint.flags&TypeUnion != 0 {
		keys = constraint.types
	}
	if constraint.flags&TypeNever != 0 {
		keys = nil
	}
	for _, k := range keys {
		if k.flags&(TypeStringLiteral|TypeNumberLiteral|TypeString|TypeNumber|TypeESSymbol|TypeEnumLiteral) == 0 {
			return c.opaqueType(n, m)
		}
	}

	var members []*Member
	for _, k := range keys {
		mm := newMapper(m, []*ast.Symbol{tpSym}, []*Type{k})
		names := []*Type{k}
		if n.NameType != nil {
			nt := c.typeFromNode(n.NameType, mm)
			switch {
			case nt.flags&TypeNever != 0:
				names = nil
			case nt.flags&TypeUnion != 0:
				names = nt.types
			case c.isGeneric(nt):
				return c.opaqueType(n, m)
			default:
				names = []*Type{nt}
			}
		}
		for _, name := range names {
			var sourceProp *Member
			if source != nil && name.flags&(TypeStringLiteral|TypeNumberLiteral) != 0 {
				sourceProp = c.findProperty(source, name.text)
			}
			value := c.anyType
			if n.Type != nil {
				value = c.typeFromNode(n.Type, mm)
			}
			optional := sourceProp != nil && sourceProp.Optional
			switch n.QuestionToken {
			case "?", "+?":
				optional = true
			case "-?":
				optional = false
				value = c.removeUndefined(value)
			}
			if optional {
				value = c.removeUndefined(value)
			}
			readonly := sourceProp != nil && sourceProp.Readonly
			switch n.ReadonlyToken {
			case "readonly", "+readonly":
				readonly = true
			case "-readonly":
				readonly = false
			}
			mem := &Member{Kind: MemberProperty, Optional: optional, Readonly: readonly, Type: value}
			if sourceProp != nil {
				mem.Decl = sourceProp.Decl
			}
			switch {
			case name.flags&TypeStringLiteral != 0:
				kind := ast.PropertyNameString
				if parser.IsIdentifierText(name.text) {
					kind = ast.PropertyNameIdentifier
				}
				mem.Name = ast.PropertyName{Kind: kind, Text: name.text}
			case name.flags&TypeNumberLiteral != 0:
				mem.Name = ast.PropertyName{Kind: ast.PropertyNameNumber, Text: name.text}
			case name.flags&(TypeString|TypeNumber) != 0:
				mem = &Member{Kind: MemberIndex, KeyName: "x", KeyType: name, Type: value, Readonly: readonly}
			default:
				continue
			}
			members = append(members, mem)
		}
	}
	return c.anonymousType(members)
}

// homomorphicOperand returns T when a mapped type's constraint is keyof T,
// or a type parameter constrained to keyof T as in Pick.
func homomorphicOperand(constraint ast.TypeNode) ast.TypeNode {
	if op, ok := constraint.(*ast.TypeOperator); ok && op.Operator == "keyof" {
		return op.Type
	}
	ref, ok := constraint.(*ast.TypeReference)
	if !ok || ref.Symbol == nil || ref.Symbol.Flags&ast.SymbolTypeParameter == 0 {
		return nil
	}
	if tp, ok := ref.Symbol.FirstDeclaration().(*ast.TypeParameter); ok {
		if op, ok := tp.Constraint.(*ast.TypeOperator); ok && op.Operator == "keyof" {
			return op.Type
		}
	}
	return nil
}
