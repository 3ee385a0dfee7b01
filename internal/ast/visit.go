package ast

// TypeVisitor maps a type node to its replacement.
type TypeVisitor func(TypeNode) TypeNode

// UpdateTypeChildren returns a shallow copy of n whose direct type children
// (including those inside members, parameters and type parameters) are
// replaced by visit. n itself is never modified.
func UpdateTypeChildren(n TypeNode, visit TypeVisitor) TypeNode {
	switch n := n.(type) {
	case nil:
		return nil
	case *KeywordType:
		c := *n
		return &c
	case *LiteralType:
		c := *n
		return &c
	case *TypeReference:
		c := *n
		c.TypeName = cloneEntityName(n.TypeName)
		c.TypeArguments = visitTypes(n.TypeArguments, visit)
		return &c
	case *UnionType:
		return &UnionType{TextRange: n.TextRange, Types: visitTypes(n.Types, visit)}
	case *IntersectionType:
		return &IntersectionType{TextRange: n.TextRange, Types: visitTypes(n.Types, visit)}
	case *TypeLiteral:
		members := make([]TypeElement, len(n.Members))
		for i, m := range n.Members {
			members[i] = UpdateTypeElement(m, visit)
		}
		return &TypeLiteral{TextRange: n.TextRange, Members: members, Multiline: n.Multiline}
	case *ArrayType:
		return &ArrayType{TextRange: n.TextRange, ElementType: visit(n.ElementType)}
	case *TupleType:
		elems := make([]*TupleElement, len(n.Elements))
		for i, e := range n.Elements {
			c := *e
			c.Type = visit(e.Type)
			elems[i] = &c
		}
		return &TupleType{TextRange: n.TextRange, Elements: elems}
	case *ParenthesizedType:
		return &ParenthesizedType{TextRange: n.TextRange, Type: visit(n.Type)}
	case *FunctionType:
		c := *n
		c.TypeParameters = UpdateTypeParameters(n.TypeParameters, visit)
		c.Parameters = UpdateParameters(n.Parameters, visit)
		c.Type = visitType(n.Type, visit)
		return &c
	case *TypeQuery:
		c := *n
		c.ExprName = cloneEntityName(n.ExprName)
		c.TypeArguments = visitTypes(n.TypeArguments, visit)
		return &c
	case *TypeOperator:
		return &TypeOperator{TextRange: n.TextRange, Operator: n.Operator, Type: visit(n.Type)}
	case *IndexedAccessType:
		return &IndexedAccessType{TextRange: n.TextRange, ObjectType: visit(n.ObjectType), IndexType: visit(n.IndexType)}
	case *ConditionalType:
		return &ConditionalType{
			TextRange:   n.TextRange,
			CheckType:   visit(n.CheckType),
			ExtendsType: visit(n.ExtendsType),
			TrueType:    visit(n.TrueType),
			FalseType:   visit(n.FalseType),
		}
	case *InferType:
		return &InferType{TextRange: n.TextRange, TypeParameter: UpdateTypeParameter(n.TypeParameter, visit)}
	case *MappedType:
		c := *n
		c.TypeParameter = UpdateTypeParameter(n.TypeParameter, visit)
		c.NameType = visitType(n.NameType, visit)
		c.Type = visitType(n.Type, visit)
		return &c
	case *TemplateLiteralType:
		spans := make([]*TemplateSpan, len(n.Spans))
		for i, s := range n.Spans {
			spans[i] = &TemplateSpan{Type: visit(s.Type), Literal: s.Literal}
		}
		return &TemplateLiteralType{TextRange: n.TextRange, Head: n.Head, Spans: spans}
	case *TypePredicate:
		c := *n
		c.Type = visitType(n.Type, visit)
		return &c
	case *ImportType:
		c := *n
		c.Qualifier = cloneEntityName(n.Qualifier)
		c.TypeArguments = visitTypes(n.TypeArguments, visit)
		return &c
	}
	return n
}

func visitType(n TypeNode, visit TypeVisitor) TypeNode {
	if n == nil {
		return nil
	}
	return visit(n)
}

func visitTypes(types []TypeNode, visit TypeVisitor) []TypeNode {
	if types == nil {
		return nil
	}
	out := make([]TypeNode, len(types))
	for i, t := range types {
		out[i] = visit(t)
	}
	return out
}

func cloneEntityName(n EntityName) EntityName {
	switch n := n.(type) {
	case *Identifier:
		c := *n
		return &c
	case *QualifiedName:
		r := *n.Right
		return &QualifiedName{TextRange: n.TextRange, Left: cloneEntityName(n.Left), Right: &r}
	}
	return n
}

// CloneEntityName returns a deep copy of an entity name.
func CloneEntityName(n EntityName) EntityName { return cloneEntityName(n) }

// UpdateTypeParameter copies tp with its constraint and default visited.
func UpdateTypeParameter(tp *TypeParameter, visit TypeVisitor) *TypeParameter {
	if tp == nil {
		return nil
	}
	c := *tp
	c.Constraint = visitType(tp.Constraint, visit)
	c.Default = visitType(tp.Default, visit)
	return &c
}

// UpdateTypeParameters copies a type parameter list.
func UpdateTypeParameters(tps []*TypeParameter, visit TypeVisitor) []*TypeParameter {
	if tps == nil {
		return nil
	}
	out := make([]*TypeParameter, len(tps))
	for i, tp := range tps {
		out[i] = UpdateTypeParameter(tp, visit)
	}
	return out
}

// UpdateParameters copies a parameter list with each annotation visited.
// Initializers are shared; they are never rewritten.
func UpdateParameters(params []*Parameter, visit TypeVisitor) []*Parameter {
	if params == nil {
		return nil
	}
	out := make([]*Parameter, len(params))
	for i, p := range params {
		c := *p
		c.Type = visitType(p.Type, visit)
		out[i] = &c
	}
	return out
}

// UpdateTypeElement copies a type member with its types visited.
func UpdateTypeElement(m TypeElement, visit TypeVisitor) TypeElement {
	switch m := m.(type) {
	case *PropertySignature:
		c := *m
		c.Type = visitType(m.Type, visit)
		return &c
	case *MethodSignature:
		c := *m
		c.TypeParameters = UpdateTypeParameters(m.TypeParameters, visit)
		c.Parameters = UpdateParameters(m.Parameters, visit)
		c.Type = visitType(m.Type, visit)
		return &c
	case *CallSignature:
		c := *m
		c.TypeParameters = UpdateTypeParameters(m.TypeParameters, visit)
		c.Parameters = UpdateParameters(m.Parameters, visit)
		c.Type = visitType(m.Type, visit)
		return &c
	case *ConstructSignature:
		c := *m
		c.TypeParameters = UpdateTypeParameters(m.TypeParameters, visit)
		c.Parameters = UpdateParameters(m.Parameters, visit)
		c.Type = visitType(m.Type, visit)
		return &c
	case *IndexSignature:
		c := *m
		c.Parameters = UpdateParameters(m.Parameters, visit)
		c.Type = visitType(m.Type, visit)
		return &c
	case *AccessorDeclaration:
		c := *m
		c.Parameters = UpdateParameters(m.Parameters, visit)
		c.Type = visitType(m.Type, visit)
		return &c
	}
	return m
}

// UpdateClassElement copies a class member with its types visited.
func UpdateClassElement(m ClassElement, visit TypeVisitor) ClassElement {
	switch m := m.(type) {
	case *PropertyDeclaration:
		c := *m
		c.Type = visitType(m.Type, visit)
		return &c
	case *MethodDeclaration:
		c := *m
		c.TypeParameters = UpdateTypeParameters(m.TypeParameters, visit)
		c.Parameters = UpdateParameters(m.Parameters, visit)
		c.Type = visitType(m.Type, visit)
		return &c
	case *ConstructorDeclaration:
		c := *m
		c.Parameters = UpdateParameters(m.Parameters, visit)
		return &c
	case *IndexSignature:
		return UpdateTypeElement(m, visit).(*IndexSignature)
	case *AccessorDeclaration:
		return UpdateTypeElement(m, visit).(*AccessorDeclaration)
	}
	return m
}

// CloneType returns a deep copy of n. Symbols recorded on references are kept.
func CloneType(n TypeNode) TypeNode {
	if n == nil {
		return nil
	}
	return UpdateTypeChildren(n, CloneType)
}

// CloneParameters returns a deep copy of a parameter list.
func CloneParameters(params []*Parameter) []*Parameter {
	return UpdateParameters(params, CloneType)
}

// CloneTypeParameters returns a deep copy of a type parameter list.
func CloneTypeParameters(tps []*TypeParameter) []*TypeParameter {
	return UpdateTypeParameters(tps, CloneType)
}

// ForEachTypeChild calls fn for every direct type child of n.
func ForEachTypeChild(n TypeNode, fn func(TypeNode)) {
	UpdateTypeChildren(n, func(c TypeNode) TypeNode {
		fn(c)
		return c
	})
}

// WalkType calls fn for n and every type node nested in it, pre-order.
// Returning false from fn skips the node's children.
func WalkType(n TypeNode, fn func(TypeNode) bool) {
	if n == nil || !fn(n) {
		return
	}
	ForEachTypeChild(n, func(c TypeNode) { WalkType(c, fn) })
}
