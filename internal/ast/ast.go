// Package ast defines the declaration syntax tree consumed and produced by
// dtsresolve. Node kinds are concrete struct types grouped behind small
// marker interfaces (TypeNode, Statement, TypeElement, ClassElement,
// Expression) so that passes dispatch with exhaustive type switches.
package ast

// TextRange is the source span of a parsed node. Synthesized nodes carry the
// zero range.
type TextRange struct {
	Pos int
	End int
}

// NewTextRange returns the range [pos, end).
func NewTextRange(pos, end int) TextRange { return TextRange{Pos: pos, End: end} }

// Range returns the node's source span.
func (r TextRange) Range() TextRange { return r }

// IsSynthesized reports whether the node was created by a transform rather
// than by the parser. Parsed nodes always span at least one character.
func (r TextRange) IsSynthesized() bool { return r.End == 0 }

// Node is implemented by every syntax node.
type Node interface {
	Range() TextRange
}

// ---------------------------------------------------------------------------
// Names

// EntityName is an Identifier or a QualifiedName.
type EntityName interface {
	Node
	entityName()
}

type Identifier struct {
	TextRange
	Text string
}

type QualifiedName struct {
	TextRange
	Left  EntityName
	Right *Identifier
}

func (*Identifier) entityName()    {}
func (*QualifiedName) entityName() {}

// NewIdentifier returns a synthesized identifier.
func NewIdentifier(text string) *Identifier { return &Identifier{Text: text} }

// NewQualifiedName returns a synthesized left.right name.
func NewQualifiedName(left EntityName, right string) *QualifiedName {
	return &QualifiedName{Left: left, Right: NewIdentifier(right)}
}

// EntityNameText renders an entity name as dotted text.
func EntityNameText(n EntityName) string {
	switch n := n.(type) {
	case *Identifier:
		return n.Text
	case *QualifiedName:
		return EntityNameText(n.Left) + "." + n.Right.Text
	}
	return ""
}

// FirstIdentifier returns the leftmost identifier of an entity name.
func FirstIdentifier(n EntityName) *Identifier {
	for {
		switch q := n.(type) {
		case *Identifier:
			return q
		case *QualifiedName:
			n = q.Left
		default:
			return nil
		}
	}
}

// PropertyNameKind distinguishes how a member name was written.
type PropertyNameKind int

const (
	PropertyNameIdentifier PropertyNameKind = iota
	PropertyNameString
	PropertyNameNumber
	PropertyNameComputed
	PropertyNamePrivate
)

// PropertyName is the name of an object member, enum member or class element.
// For string names Text holds the unquoted value; for computed names Expr holds
// the bracketed expression.
type PropertyName struct {
	Kind PropertyNameKind
	Text string
	Expr Expression
}

// ---------------------------------------------------------------------------
// Type nodes

// TypeNode is implemented by every type expression.
type TypeNode interface {
	Node
	typeNode()
}

// Keyword names an intrinsic type written as a keyword.
type Keyword string

const (
	KeywordAny       Keyword = "any"
	KeywordUnknown   Keyword = "unknown"
	KeywordNever     Keyword = "never"
	KeywordVoid      Keyword = "void"
	KeywordUndefined Keyword = "undefined"
	KeywordNull      Keyword = "null"
	KeywordString    Keyword = "string"
	KeywordNumber    Keyword = "number"
	KeywordBigInt    Keyword = "bigint"
	KeywordBoolean   Keyword = "boolean"
	KeywordSymbol    Keyword = "symbol"
	KeywordObject    Keyword = "object"
	KeywordThis      Keyword = "this"
	KeywordIntrinsic Keyword = "intrinsic"
)

type KeywordType struct {
	TextRange
	Keyword Keyword
}

// TypeReference is a named type with optional type arguments. Symbol is the
// binding recorded by the binder for parsed nodes, or by the node builder
// for synthesized ones.
type TypeReference struct {
	TextRange
	TypeName      EntityName
	TypeArguments []TypeNode
	Symbol        *Symbol
}

// LiteralKind is the kind of a literal type.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBigInt
	LiteralTrue
	LiteralFalse
)

// LiteralType is a literal used as a type. Text is the unquoted string value
// for strings and the literal text (optionally with a leading minus) otherwise.
type LiteralType struct {
	TextRange
	Kind LiteralKind
	Text string
}

type UnionType struct {
	TextRange
	Types []TypeNode
}

type IntersectionType struct {
	TextRange
	Types []TypeNode
}

// TypeLiteral is an object type written with braces. Multiline records the
// preferred layout.
type TypeLiteral struct {
	TextRange
	Members   []TypeElement
	Multiline bool
}

type ArrayType struct {
	TextRange
	ElementType TypeNode
}

type TupleType struct {
	TextRange
	Elements []*TupleElement
}

// TupleElement is one tuple slot; Name is empty for unnamed elements.
type TupleElement struct {
	TextRange
	Name     string
	Optional bool
	Rest     bool
	Type     TypeNode
}

type ParenthesizedType struct {
	TextRange
	Type TypeNode
}

// FunctionType is `(params) => R`, or `new (params) => R` when Constructor is set.
type FunctionType struct {
	TextRange
	Constructor    bool
	Abstract       bool
	TypeParameters []*TypeParameter
	Parameters     []*Parameter
	Type           TypeNode
}

// TypeQuery is `typeof expr`.
type TypeQuery struct {
	TextRange
	ExprName      EntityName
	TypeArguments []TypeNode
	Symbol        *Symbol
}

// TypeOperator is `keyof T`, `readonly T[]` or `unique symbol`.
type TypeOperator struct {
	TextRange
	Operator string
	Type     TypeNode
}

type IndexedAccessType struct {
	TextRange
	ObjectType TypeNode
	IndexType  TypeNode
}

type ConditionalType struct {
	TextRange
	CheckType   TypeNode
	ExtendsType TypeNode
	TrueType    TypeNode
	FalseType   TypeNode
}

type InferType struct {
	TextRange
	TypeParameter *TypeParameter
}

// MappedType is `{ [K in C as N]?: T }`. ReadonlyToken and QuestionToken hold
// the written modifier ("", "readonly", "+readonly", "-readonly" and "", "?",
// "+?", "-?").
type MappedType struct {
	TextRange
	ReadonlyToken string
	TypeParameter *TypeParameter
	NameType      TypeNode
	QuestionToken string
	Type          TypeNode
	Multiline     bool
}

type TemplateLiteralType struct {
	TextRange
	Head  string
	Spans []*TemplateSpan
}

// TemplateSpan is `${Type}Literal` inside a template literal type. Literal
// holds the raw text up to the next placeholder or the closing backtick.
type TemplateSpan struct {
	Type    TypeNode
	Literal string
}

// TypePredicate is `x is T`, `asserts x is T` or `asserts x`.
type TypePredicate struct {
	TextRange
	Asserts       bool
	ParameterName string
	Type          TypeNode
}

// ImportType is `import("m").Q<A>` or `typeof import("m")`.
type ImportType struct {
	TextRange
	IsTypeOf      bool
	Argument      string
	Qualifier     EntityName
	TypeArguments []TypeNode
	Symbol        *Symbol
}

func (*KeywordType) typeNode()         {}
func (*TypeReference) typeNode()       {}
func (*LiteralType) typeNode()         {}
func (*UnionType) typeNode()           {}
func (*IntersectionType) typeNode()    {}
func (*TypeLiteral) typeNode()         {}
func (*ArrayType) typeNode()           {}
func (*TupleType) typeNode()           {}
func (*ParenthesizedType) typeNode()   {}
func (*FunctionType) typeNode()        {}
func (*TypeQuery) typeNode()           {}
func (*TypeOperator) typeNode()        {}
func (*IndexedAccessType) typeNode()   {}
func (*ConditionalType) typeNode()     {}
func (*InferType) typeNode()           {}
func (*MappedType) typeNode()          {}
func (*TemplateLiteralType) typeNode() {}
func (*TypePredicate) typeNode()       {}
func (*ImportType) typeNode()          {}

// NewKeyword returns a synthesized keyword type.
func NewKeyword(k Keyword) *KeywordType { return &KeywordType{Keyword: k} }

// NewTypeReference returns a synthesized reference to name bound to sym.
func NewTypeReference(name EntityName, args []TypeNode, sym *Symbol) *TypeReference {
	return &TypeReference{TypeName: name, TypeArguments: args, Symbol: sym}
}

// IsKeyword reports whether n is the keyword type k.
func IsKeyword(n TypeNode, k Keyword) bool {
	kw, ok := n.(*KeywordType)
	return ok && kw.Keyword == k
}

// ---------------------------------------------------------------------------
// Signatures

// TypeParameter is `const in out T extends C = D`.
type TypeParameter struct {
	TextRange
	Modifiers  ModifierFlags
	Name       string
	Constraint TypeNode
	Default    TypeNode
}

// Parameter is one function parameter. Name holds the binding text; it is the
// raw source text for destructuring patterns.
type Parameter struct {
	TextRange
	Modifiers   ModifierFlags
	Rest        bool
	Name        string
	Optional    bool
	Type        TypeNode
	Initializer Expression
}

// ---------------------------------------------------------------------------
// Expressions

// Expression is the small expression subset that appears in declarations:
// heritage clauses, enum initializers and variable initializers.
type Expression interface {
	Node
	expression()
}

type PropertyAccessExpression struct {
	TextRange
	Expression Expression
	Name       *Identifier
}

type NumericLiteral struct {
	TextRange
	Text string
}

type StringLiteral struct {
	TextRange
	Text string
}

// KeywordExpression is true, false, null, undefined or this.
type KeywordExpression struct {
	TextRange
	Keyword string
}

type PrefixUnaryExpression struct {
	TextRange
	Operator string
	Operand  Expression
}

type BinaryExpression struct {
	TextRange
	Left     Expression
	Operator string
	Right    Expression
}

type ParenthesizedExpression struct {
	TextRange
	Expression Expression
}

// CallExpression covers calls with type arguments, e.g. mixins in heritage
// clauses such as `extends Mixin(Base)`.
type CallExpression struct {
	TextRange
	Expression    Expression
	TypeArguments []TypeNode
	Arguments     []Expression
}

// RawExpression is any other expression, kept as source text.
type RawExpression struct {
	TextRange
	Text string
}

func (*Identifier) expression()               {}
func (*PropertyAccessExpression) expression() {}
func (*NumericLiteral) expression()           {}
func (*StringLiteral) expression()            {}
func (*KeywordExpression) expression()        {}
func (*PrefixUnaryExpression) expression()    {}
func (*BinaryExpression) expression()         {}
func (*ParenthesizedExpression) expression()  {}
func (*CallExpression) expression()           {}
func (*RawExpression) expression()            {}

// ExpressionToEntityName converts an identifier or property access chain to
// an entity name. It returns nil for any other expression.
func ExpressionToEntityName(e Expression) EntityName {
	switch e := e.(type) {
	case *Identifier:
		return e
	case *PropertyAccessExpression:
		left := ExpressionToEntityName(e.Expression)
		if left == nil {
			return nil
		}
		return &QualifiedName{TextRange: e.TextRange, Left: left, Right: e.Name}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Members

// DeclarationBase carries what every declaration-like node shares.
// Original links a synthesized node to the parse-tree node it was derived from.
type DeclarationBase struct {
	TextRange
	Comments  []string
	Modifiers ModifierFlags
	Original  Node
}

func (d *DeclarationBase) ModifierFlags() ModifierFlags { return d.Modifiers }
func (d *DeclarationBase) LeadingComments() []string    { return d.Comments }
func (d *DeclarationBase) OriginalNode() Node           { return d.Original }

// Declaration is implemented by named declarations and members.
type Declaration interface {
	Node
	ModifierFlags() ModifierFlags
	LeadingComments() []string
	OriginalNode() Node
}

// ParseTreeNode follows Original links back to the parsed node.
func ParseTreeNode(n Node) Node {
	for n != nil {
		d, ok := n.(Declaration)
		if !ok || d.OriginalNode() == nil {
			return n
		}
		n = d.OriginalNode()
	}
	return nil
}

// TypeElement is a member of an interface or type literal.
type TypeElement interface {
	Declaration
	typeElement()
}

// ClassElement is a member of a class.
type ClassElement interface {
	Declaration
	classElement()
}

type PropertySignature struct {
	DeclarationBase
	Name     PropertyName
	Optional bool
	Type     TypeNode
}

type MethodSignature struct {
	DeclarationBase
	Name           PropertyName
	Optional       bool
	TypeParameters []*TypeParameter
	Parameters     []*Parameter
	Type           TypeNode
}

type CallSignature struct {
	DeclarationBase
	TypeParameters []*TypeParameter
	Parameters     []*Parameter
	Type           TypeNode
}

type ConstructSignature struct {
	DeclarationBase
	TypeParameters []*TypeParameter
	Parameters     []*Parameter
	Type           TypeNode
}

type IndexSignature struct {
	DeclarationBase
	Parameters []*Parameter
	Type       TypeNode
}

// AccessorKind distinguishes get and set accessors.
type AccessorKind int

const (
	AccessorGet AccessorKind = iota
	AccessorSet
)

type AccessorDeclaration struct {
	DeclarationBase
	Kind       AccessorKind
	Name       PropertyName
	Parameters []*Parameter
	Type       TypeNode
}

type PropertyDeclaration struct {
	DeclarationBase
	Name        PropertyName
	Optional    bool
	Exclamation bool
	Type        TypeNode
	Initializer Expression
}

type MethodDeclaration struct {
	DeclarationBase
	Name           PropertyName
	Optional       bool
	TypeParameters []*TypeParameter
	Parameters     []*Parameter
	Type           TypeNode
}

type ConstructorDeclaration struct {
	DeclarationBase
	Parameters []*Parameter
}

func (*PropertySignature) typeElement()   {}
func (*MethodSignature) typeElement()     {}
func (*CallSignature) typeElement()       {}
func (*ConstructSignature) typeElement()  {}
func (*IndexSignature) typeElement()      {}
func (*AccessorDeclaration) typeElement() {}

func (*IndexSignature) classElement()         {}
func (*AccessorDeclaration) classElement()    {}
func (*PropertyDeclaration) classElement()    {}
func (*MethodDeclaration) classElement()      {}
func (*ConstructorDeclaration) classElement() {}

// ---------------------------------------------------------------------------
// Statements

// Statement is a top-level or namespace-level statement.
type Statement interface {
	Node
	statement()
}

// HeritageToken is extends or implements.
type HeritageToken int

const (
	HeritageExtends HeritageToken = iota
	HeritageImplements
)

type HeritageClause struct {
	TextRange
	Token HeritageToken
	Types []*ExpressionWithTypeArguments
}

type ExpressionWithTypeArguments struct {
	TextRange
	Expression    Expression
	TypeArguments []TypeNode
}

type TypeAliasDeclaration struct {
	DeclarationBase
	Name           string
	TypeParameters []*TypeParameter
	Type           TypeNode
}

type InterfaceDeclaration struct {
	DeclarationBase
	Name            string
	TypeParameters  []*TypeParameter
	HeritageClauses []*HeritageClause
	Members         []TypeElement
}

type ClassDeclaration struct {
	DeclarationBase
	Name            string
	TypeParameters  []*TypeParameter
	HeritageClauses []*HeritageClause
	Members         []ClassElement
}

type FunctionDeclaration struct {
	DeclarationBase
	Name           string
	TypeParameters []*TypeParameter
	Parameters     []*Parameter
	Type           TypeNode
}

// VariableKind is var, let or const.
type VariableKind string

const (
	VariableVar   VariableKind = "var"
	VariableLet   VariableKind = "let"
	VariableConst VariableKind = "const"
)

type VariableStatement struct {
	DeclarationBase
	Kind         VariableKind
	Declarations []*VariableDeclaration
}

type VariableDeclaration struct {
	DeclarationBase
	Name        string
	Exclamation bool
	Type        TypeNode
	Initializer Expression
}

type EnumDeclaration struct {
	DeclarationBase
	Name    string
	Members []*EnumMember
}

type EnumMember struct {
	DeclarationBase
	Name        PropertyName
	Initializer Expression
}

// ModuleDeclaration is `namespace N {}`, `declare module "m" {}` or
// `declare global {}`. Body is nil for the shorthand `declare module "m";`.
// Dotted marks the inner part of `namespace A.B {}`.
type ModuleDeclaration struct {
	DeclarationBase
	Name         string
	IsStringName bool
	IsGlobal     bool
	IsNamespace  bool
	Dotted       bool
	Body         []Statement
	HasBody      bool
}

// ImportDeclaration is an ES import. NamespaceName is set for `* as ns`.
type ImportDeclaration struct {
	TextRange
	Comments        []string
	TypeOnly        bool
	DefaultName     string
	NamespaceName   string
	NamedBindings   []*ImportSpecifier
	HasNamed        bool
	ModuleSpecifier string
}

type ImportSpecifier struct {
	TextRange
	TypeOnly     bool
	PropertyName string
	Name         string
}

// ImportEqualsDeclaration is `import x = require("m")` or `import x = N.M`.
type ImportEqualsDeclaration struct {
	DeclarationBase
	TypeOnly        bool
	Name            string
	ExternalModule  string
	ModuleReference EntityName
}

// ExportDeclaration is `export { a as b } from "m"`, `export * from "m"` or
// `export * as ns from "m"`.
type ExportDeclaration struct {
	TextRange
	Comments        []string
	TypeOnly        bool
	All             bool
	NamespaceName   string
	Specifiers      []*ExportSpecifier
	ModuleSpecifier string
}

type ExportSpecifier struct {
	TextRange
	TypeOnly     bool
	PropertyName string
	Name         string
}

// ExportAssignment is `export = x` or `export default x`.
type ExportAssignment struct {
	TextRange
	Comments       []string
	IsExportEquals bool
	Expression     Expression
}

// NamespaceExportDeclaration is `export as namespace X`.
type NamespaceExportDeclaration struct {
	TextRange
	Comments []string
	Name     string
}

func (*TypeAliasDeclaration) statement()       {}
func (*InterfaceDeclaration) statement()       {}
func (*ClassDeclaration) statement()           {}
func (*FunctionDeclaration) statement()        {}
func (*VariableStatement) statement()          {}
func (*EnumDeclaration) statement()            {}
func (*ModuleDeclaration) statement()          {}
func (*ImportDeclaration) statement()          {}
func (*ImportEqualsDeclaration) statement()    {}
func (*ExportDeclaration) statement()          {}
func (*ExportAssignment) statement()           {}
func (*NamespaceExportDeclaration) statement() {}

// StatementComments returns the leading comments attached to a statement.
func StatementComments(s Statement) []string {
	switch s := s.(type) {
	case Declaration:
		return s.LeadingComments()
	case *ImportDeclaration:
		return s.Comments
	case *ExportDeclaration:
		return s.Comments
	case *ExportAssignment:
		return s.Comments
	case *NamespaceExportDeclaration:
		return s.Comments
	}
	return nil
}

// DeclarationName returns the declared name of a named statement or "".
func DeclarationName(s Statement) string {
	switch s := s.(type) {
	case *TypeAliasDeclaration:
		return s.Name
	case *InterfaceDeclaration:
		return s.Name
	case *ClassDeclaration:
		return s.Name
	case *FunctionDeclaration:
		return s.Name
	case *EnumDeclaration:
		return s.Name
	case *ModuleDeclaration:
		return s.Name
	case *ImportEqualsDeclaration:
		return s.Name
	}
	return ""
}

// ExtendsTypes returns the targets of the extends clause, if any.
func ExtendsTypes(clauses []*HeritageClause) []*ExpressionWithTypeArguments {
	for _, c := range clauses {
		if c.Token == HeritageExtends {
			return c.Types
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Source files

// SourceFile is one parsed module. FileName is an absolute, slash-separated path.
type SourceFile struct {
	TextRange
	FileName          string
	Text              string
	Statements        []Statement
	EndComments       []string
	IsDeclarationFile bool
	// ExternalModule is set when the file has a top-level import or export.
	ExternalModule bool
	Symbol         *Symbol
	Locals         SymbolTable
	lineStarts     []int
}

// NewSourceFile returns an empty source file for text with its line table built.
func NewSourceFile(fileName, text string) *SourceFile {
	return &SourceFile{
		TextRange:  NewTextRange(0, len(text)+1),
		FileName:   fileName,
		Text:       text,
		lineStarts: ComputeLineStarts(text),
	}
}

// LineAndColumn converts an offset to zero-based line and column.
func (f *SourceFile) LineAndColumn(pos int) (int, int) {
	if f.lineStarts == nil {
		f.lineStarts = ComputeLineStarts(f.Text)
	}
	lo, hi := 0, len(f.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lineStarts[mid] <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, pos - f.lineStarts[lo]
}

// LineStarts returns the offsets at which each line begins.
func (f *SourceFile) LineStarts() []int {
	if f.lineStarts == nil {
		f.lineStarts = ComputeLineStarts(f.Text)
	}
	return f.lineStarts
}

// ComputeLineStarts returns the start offset of every line in text.
func ComputeLineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			starts = append(starts, i+1)
		case '\n':
			starts = append(starts, i+1)
		}
	}
	return starts
}
