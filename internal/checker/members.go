package checker

import (
	"github.com/tsgonest/dtsresolve/internal/ast"
)

func (c *Checker) membersFromElements(elems []ast.TypeElement, m *mapper) []*Member {
	out := make([]*Member, 0, len(elems))
	for _, e := range elems {
		if mem := c.memberFromElement(e, m); mem != nil {
			out = append(out, mem)
		}
	}
	return out
}

func (c *Checker) memberFromElement(e ast.TypeElement, m *mapper) *Member {
	switch e := e.(type) {
	case *ast.PropertySignature:
		return &Member{
			Kind:     MemberProperty,
			Name:     e.Name,
			Optional: e.Optional,
			Readonly: e.Modifiers&ast.ModifierReadonly != 0,
			Type:     c.typeFromNode(e.Type, m),
			Decl:     e,
		}
	case *ast.MethodSignature:
		return &Member{
			Kind:      MemberMethod,
			Name:      e.Name,
			Optional:  e.Optional,
			Signature: c.signatureFrom(e.TypeParameters, e.Parameters, e.Type, m),
			Decl:      e,
		}
	case *ast.CallSignature:
		return &Member{Kind: MemberCall, Signature: c.signatureFrom(e.TypeParameters, e.Parameters, e.Type, m), Decl: e}
	case *ast.ConstructSignature:
		return &Member{Kind: MemberConstruct, Signature: c.signatureFrom(e.TypeParameters, e.Parameters, e.Type, m), Decl: e}
	case *ast.IndexSignature:
		return c.indexMember(e, m)
	case *ast.AccessorDeclaration:
		return c.accessorMember(e, m)
	}
	return nil
}

func (c *Checker) indexMember(e *ast.IndexSignature, m *mapper) *Member {
	mem := &Member{
		Kind:     MemberIndex,
		Readonly: e.Modifiers&ast.ModifierReadonly != 0,
		Type:     c.typeFromNode(e.Type, m),
		KeyType:  c.stringType,
		Decl:     e,
	}
	if len(e.Parameters) > 0 {
		mem.KeyName = e.Parameters[0].Name
		mem.KeyType = c.typeFromNode(e.Parameters[0].Type, m)
	}
	return mem
}

func (c *Checker) accessorMember(e *ast.AccessorDeclaration, m *mapper) *Member {
	mem := &Member{Kind: MemberGetAccessor, Name: e.Name, Decl: e}
	if e.Kind == ast.AccessorSet {
		mem.Kind = MemberSetAccessor
		if len(e.Parameters) > 0 {
			mem.KeyName = e.Parameters[0].Name
			mem.Type = c.typeFromNode(e.Parameters[0].Type, m)
		}
		return mem
	}
	mem.Type = c.typeFromNode(e.Type, m)
	return mem
}

// classMembers resolves the public instance side of a class declaration.
func (c *Checker) classMembers(d *ast.ClassDeclaration, m *mapper) []*Member {
	var out []*Member
	for _, e := range d.Members {
		if e.ModifierFlags()&(ast.ModifierStatic|ast.ModifierPrivate|ast.ModifierProtected) != 0 {
			continue
		}
		switch e := e.(type) {
		case *ast.PropertyDeclaration:
			if e.Name.Kind == ast.PropertyNamePrivate {
				continue
			}
			out = append(out, &Member{
				Kind:     MemberProperty,
				Name:     e.Name,
				Optional: e.Optional,
				Readonly: e.Modifiers&ast.ModifierReadonly != 0,
				Type:     c.typeFromNode(e.Type, m),
				Decl:     e,
			})
		case *ast.MethodDeclaration:
			if e.Name.Kind == ast.PropertyNamePrivate {
				continue
			}
			out = append(out, &Member{
				Kind:      MemberMethod,
				Name:      e.Name,
				Optional:  e.Optional,
				Signature: c.signatureFrom(e.TypeParameters, e.Parameters, e.Type, m),
				Decl:      e,
			})
		case *ast.IndexSignature:
			out = append(out, c.indexMember(e, m))
		case *ast.AccessorDeclaration:
			if e.Name.Kind != ast.PropertyNamePrivate {
				out = append(out, c.accessorMember(e, m))
			}
		}
	}
	return out
}

// memberKey identifies a named member for override and merge purposes.
func memberKey(mem *Member) string {
	switch mem.Kind {
	case MemberProperty, MemberMethod, MemberGetAccessor, MemberSetAccessor:
		if mem.Name.Kind == ast.PropertyNameComputed {
			return ""
		}
		return mem.Name.Text
	}
	return ""
}

// membersOf returns the resolved members of an object-like type, base
// members included. It returns nil when the members are not known.
func (c *Checker) membersOf(t *Type) []*Member {
	t = c.resolveDeferred(t)
	switch {
	case t.flags&TypeObject != 0:
		switch t.objectKind {
		case ObjectAnonymous:
			return t.members
		case ObjectReference:
			return c.referenceMembers(t)
		case ObjectArray:
			name := "Array"
			if t.readonly {
				name = "ReadonlyArray"
			}
			if sym := c.globals[name]; sym != nil && sym.File == c.lib {
				return c.referenceMembers(c.referenceType(sym, t.typeArguments))
			}
		case ObjectTuple:
			return c.tupleMembers(t)
		}
	case t.flags&TypeIntersection != 0:
		var out []*Member
		seen := map[string]bool{}
		for _, part := range t.types {
			for _, mem := range c.membersOf(part) {
				if key := memberKey(mem); key != "" {
					if seen[key] {
						continue
					}
					seen[key] = true
				}
				out = append(out, mem)
			}
		}
		return out
	case t.flags&TypeTypeParameter != 0:
		if constraint := c.constraintOf(t.symbol); constraint != nil {
			return c.membersOf(constraint)
		}
	case t.flags&(TypeString|TypeStringLiteral) != 0:
		return c.globalInterfaceMembers("String")
	case t.flags&(TypeNumber|TypeNumberLiteral) != 0:
		return c.globalInterfaceMembers("Number")
	case t.flags&(TypeBoolean|TypeBooleanLiteral) != 0:
		return c.globalInterfaceMembers("Boolean")
	}
	return nil
}

func (c *Checker) globalInterfaceMembers(name string) []*Member {
	sym := c.globals[name]
	if sym == nil || sym.Flags&ast.SymbolInterface == 0 {
		return nil
	}
	return c.referenceMembers(c.referenceType(sym, nil))
}

func (c *Checker) constraintOf(tp *ast.Symbol) *Type {
	if tp == nil {
		return nil
	}
	decl, ok := tp.FirstDeclaration().(*ast.TypeParameter)
	if !ok || decl.Constraint == nil {
		return nil
	}
	return c.typeFromNode(decl.Constraint, nil)
}

func (c *Checker) tupleMembers(t *Type) []*Member {
	out := []*Member{{
		Kind:     MemberProperty,
		Name:     ast.PropertyName{Kind: ast.PropertyNameIdentifier, Text: "length"},
		Readonly: true,
		Type:     c.numberType,
	}}
	for i, elem := range t.typeArguments {
		if t.tuple[i].Rest {
			break
		}
		out = append(out, &Member{
			Kind:     MemberProperty,
			Name:     ast.PropertyName{Kind: ast.PropertyNameNumber, Text: FormatNumber(float64(i))},
			Optional: t.tuple[i].Optional,
			Readonly: t.readonly,
			Type:     elem,
		})
	}
	return out
}

// referenceMembers resolves the members of an interface or class reference:
// every merged declaration instantiated with the reference's type
// arguments, then inherited members not overridden.
func (c *Checker) referenceMembers(t *Type) []*Member {
	if ms, ok := c.memberCache[t]; ok {
		return ms
	}
	if c.memberPending[t] {
		return nil
	}
	c.memberPending[t] = true
	defer delete(c.memberPending, t)

	var out []*Member
	seen := map[string]bool{}
	add := func(mem *Member) {
		if key := memberKey(mem); key != "" {
			if seen[key] {
				return
			}
			seen[key] = true
		}
		out = append(out, mem)
	}
	type base struct {
		e *ast.ExpressionWithTypeArguments
		m *mapper
	}
	var bases []base
	for _, d := range t.symbol.Declarations {
		switch d := d.(type) {
		case *ast.InterfaceDeclaration:
			m := newMapper(nil, c.typeParameterSymbols(d.TypeParameters), t.typeArguments)
			for _, mem := range c.membersFromElements(d.Members, m) {
				add(mem)
			}
			for _, e := range ast.ExtendsTypes(d.HeritageClauses) {
				bases = append(bases, base{e, m})
			}
		case *ast.ClassDeclaration:
			m := newMapper(nil, c.typeParameterSymbols(d.TypeParameters), t.typeArguments)
			for _, mem := range c.classMembers(d, m) {
				add(mem)
			}
			for _, e := range ast.ExtendsTypes(d.HeritageClauses) {
				bases = append(bases, base{e, m})
			}
		}
	}
	for _, b := range bases {
		for _, mem := range c.membersOf(c.heritageType(b.e, b.m)) {
			add(mem)
		}
	}
	c.memberCache[t] = out
	return out
}

// findProperty returns the named property, method or accessor of t.
func (c *Checker) findProperty(t *Type, name string) *Member {
	for _, mem := range c.membersOf(t) {
		if memberKey(mem) == name && mem.Kind != MemberSetAccessor {
			return mem
		}
	}
	return nil
}

// findIndex returns the index signature of t accepting keys of kind key
// (string or number). A string index also serves number keys.
func (c *Checker) findIndex(t *Type, key TypeFlags) *Member {
	var str *Member
	for _, mem := range c.membersOf(t) {
		if mem.Kind != MemberIndex {
			continue
		}
		if mem.KeyType.flags&key != 0 {
			return mem
		}
		if mem.KeyType.flags&TypeString != 0 {
			str = mem
		}
	}
	if key == TypeNumber {
		return str
	}
	return nil
}

// memberType is the type a member contributes when read as a property.
func (c *Checker) memberType(mem *Member) *Type {
	switch mem.Kind {
	case MemberMethod:
		return c.anonymousType([]*Member{{Kind: MemberCall, Signature: mem.Signature}})
	case MemberProperty, MemberGetAccessor, MemberSetAccessor, MemberIndex:
		if mem.Type == nil {
			return c.anyType
		}
		return mem.Type
	}
	return c.anyType
}
