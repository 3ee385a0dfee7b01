package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ref(name string, args ...TypeNode) *TypeReference {
	return NewTypeReference(NewIdentifier(name), args, nil)
}

func TestCloneTypeIsDeep(t *testing.T) {
	orig := &UnionType{Types: []TypeNode{ref("Box", ref("T")), NewKeyword(KeywordString)}}
	clone := CloneType(orig).(*UnionType)

	require.Len(t, clone.Types, 2)
	inner := clone.Types[0].(*TypeReference)
	assert.NotSame(t, orig.Types[0], inner)
	inner.TypeArguments[0] = NewKeyword(KeywordNumber)
	assert.Equal(t, "T", EntityNameText(orig.Types[0].(*TypeReference).TypeArguments[0].(*TypeReference).TypeName))
}

func TestWalkTypeSkipsChildren(t *testing.T) {
	n := &ArrayType{ElementType: ref("Box", ref("T"))}
	var seen []string
	WalkType(n, func(c TypeNode) bool {
		r, ok := c.(*TypeReference)
		if ok {
			seen = append(seen, EntityNameText(r.TypeName))
		}
		return !ok
	})
	assert.Equal(t, []string{"Box"}, seen)
}

func TestEntityNames(t *testing.T) {
	n := NewQualifiedName(NewQualifiedName(NewIdentifier("a"), "b"), "C")
	assert.Equal(t, "a.b.C", EntityNameText(n))
	assert.Equal(t, "a", FirstIdentifier(n).Text)

	clone := CloneEntityName(n).(*QualifiedName)
	clone.Right.Text = "D"
	assert.Equal(t, "a.b.C", EntityNameText(n))
}

func TestLineAndColumn(t *testing.T) {
	f := NewSourceFile("/p/a.d.ts", "a\r\nbc\nd")
	assert.Equal(t, []int{0, 3, 6}, f.LineStarts())

	line, col := f.LineAndColumn(4)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)
	line, col = f.LineAndColumn(6)
	assert.Equal(t, 2, line)
	assert.Equal(t, 0, col)
}

func TestModifierFromKeyword(t *testing.T) {
	m, ok := ModifierFromKeyword("readonly")
	assert.True(t, ok)
	assert.Equal(t, ModifierReadonly, m)

	_, ok = ModifierFromKeyword("interface")
	assert.False(t, ok)
}
