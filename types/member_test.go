package types

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNarrowestIndexerWins(t *testing.T) {
	build := func(literalFirst bool) *Class {
		c := NewClass("Dict")
		if literalFirst {
			c.AddIndexer(StringLiteral("foo"), Number)
			c.AddIndexer(String, Boolean)
		} else {
			c.AddIndexer(String, Boolean)
			c.AddIndexer(StringLiteral("foo"), Number)
		}
		return c
	}
	for _, literalFirst := range []bool{true, false} {
		c := build(literalFirst)
		m, err := FindIndexer(Background(), c, StringLiteral("foo"), false)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, StringLiteral("foo"), m.IndexTy, "literalFirst=%v", literalFirst)

		m, err = FindIndexer(Background(), c, StringLiteral("bar"), false)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Same(t, String, m.IndexTy)

		m, err = FindIndexer(Background(), c, Number, false)
		require.NoError(t, err)
		assert.Nil(t, m)
	}
}

func TestNamedFieldsAndIndexers(t *testing.T) {
	c := NewClass("Config")
	c.AddIndexer(String, String)
	c.AddField("port", Number)

	ty, ok, err := MemberType(Background(), c, "port")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, Number, ty)

	ty, ok, err = MemberType(Background(), c, "host")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, String, ty)

	m, err := FindMember(Background(), c, "host")
	require.NoError(t, err)
	assert.Nil(t, m, "exact lookup ignores the indexer")
}

func TestExactMatchShortCircuits(t *testing.T) {
	c := NewClass("Dup")
	first := c.AddIndexer(String, Number)
	c.AddIndexer(String, Boolean)

	m, err := FindIndexer(Background(), c, String, true)
	require.NoError(t, err)
	assert.Same(t, first, m)

	m, err = FindIndexer(Background(), c, StringLiteral("x"), true)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestInheritedMembersAreSubstituted(t *testing.T) {
	T := &GenericParam{Name: "T"}
	U := &GenericParam{Name: "U"}
	container := NewClass("Container", U)
	container.AddField("first", U)
	container.AddField("all", NewArray(U))
	list := NewClass("List", T)
	list.AddSuper(NewGeneric(container, T))
	list.AddField("size", Number)

	strings := NewGeneric(list, String)
	ty, ok, err := MemberType(Background(), strings, "first")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, String, ty)

	ty, _, err = MemberType(Background(), strings, "all")
	require.NoError(t, err)
	assert.Equal(t, "string[]", ty.String())

	members, err := AllMembers(Background(), strings)
	require.NoError(t, err)
	var rendered []string
	for _, m := range members {
		rendered = append(rendered, m.Member.Name+": "+m.Ty.String())
	}
	assert.Equal(t, []string{"size: number", "first: string", "all: string[]"}, rendered)
}

func TestOverriddenMembersAreHidden(t *testing.T) {
	base := NewClass("Base")
	base.AddField("name", String)
	derived := NewClass("Derived")
	derived.AddSuper(base)
	derived.AddField("name", StringLiteral("derived"))

	ty, _, err := MemberType(Background(), derived, "name")
	require.NoError(t, err)
	assert.Equal(t, `"derived"`, ty.String())

	members, err := AllMembers(Background(), derived)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestArrayAndTableIndexers(t *testing.T) {
	ty, ok, err := IndexerType(Background(), NewArray(String), NumberLiteral(1), false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, String, ty)

	ty, ok, err = IndexerType(Background(), NewGeneric(Table, String, Boolean), StringLiteral("k"), false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, Boolean, ty)

	_, ok, err = IndexerType(Background(), NewArray(String), StringLiteral("k"), false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInheritedFieldBeatsOwnIndexer(t *testing.T) {
	b := NewClass("B")
	b.AddField("x", String)
	a := NewClass("A")
	a.AddSuper(b)
	a.AddIndexer(String, Number)

	ty, ok, err := MemberType(Background(), a, "x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, String, ty)

	ty, ok, err = MemberType(Background(), a, "y")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, Number, ty)

	m, err := FindIndexer(Background(), a, String, false)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Same(t, a, m.Owner)
}

func TestUnionOwnerJoinsMemberTypes(t *testing.T) {
	a := NewClass("A")
	a.AddField("v", Number)
	b := NewClass("B")
	b.AddField("v", String)
	ty, ok, err := MemberType(Background(), NewUnion(a, b), "v")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "number | string", ty.String())
}

func TestMemberLookupOnCyclicHierarchy(t *testing.T) {
	a := NewClass("A")
	b := NewClass("B")
	a.AddSuper(b)
	b.AddSuper(a)
	b.AddField("x", Number)

	ty, ok, err := MemberType(Background(), a, "x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, Number, ty)

	_, ok, err = MemberType(Background(), a, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemberLookupCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClass("C")
	c.AddField("x", Number)
	m, err := FindIndexer(NewSearchContext(ctx), c, StringLiteral("x"), false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, m)
}
