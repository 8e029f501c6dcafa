package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	T := &GenericParam{Name: "T"}
	list := NewClass("List", T)
	cases := []struct {
		ty       Ty
		expected string
	}{
		{Unknown, "any"},
		{Nil, "nil"},
		{Number, "number"},
		{StringLiteral("foo"), `"foo"`},
		{NumberLiteral(2), "2"},
		{True, "true"},
		{NewArray(String), "string[]"},
		{NewArray(NewUnion(String, Number)), "(number | string)[]"},
		{NewGeneric(list, Number), "List<number>"},
		{NewGeneric(Table, String, NewArray(Number)), "table<string, number[]>"},
		{&Signature{Params: []*Param{{Name: "x", Ty: Number}}, Variadic: String, Return: Boolean}, "fun(x: number, ...: string): boolean"},
		{&Signature{Generics: []*GenericParam{T}, Params: []*Param{{Name: "x", Ty: T}}, Return: T, Colon: true}, "fun<T>(self, x: T): T"},
		{&Signature{}, "fun()"},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, c.ty.String())
	}

	list.AddSuper(NewGeneric(NewClass("Iterable", T), T))
	assert.Equal(t, "List<T> : Iterable<T>", list.Declaration())
	assert.Equal(t, "T: number", (&GenericParam{Name: "T", Bound: Number}).Declaration())
}

func TestNewUnion(t *testing.T) {
	u := NewUnion(String, Number, String, NewUnion(Nil, Number))
	assert.Equal(t, "number | string | nil", u.String())
	assert.Len(t, u.(*Union).Members(), 3)

	assert.Same(t, Number, NewUnion(Number, Number))
	assert.Same(t, Number, NewUnion(Number, Void))
	assert.Same(t, Void, NewUnion())
	assert.Same(t, Unknown, NewUnion(Number, Unknown))
	assert.Same(t, Boolean, NewUnion(True, False))
	assert.Equal(t, "boolean | string", NewUnion(True, Boolean, String).String())
	assert.Equal(t, "Rect | string | 1 | nil", NewUnion(Nil, NumberLiteral(1), String, NewClass("Rect")).String())
	assert.Equal(t, NewUnion(String, Nil).String(), NewUnion(Nil, String).String())

	// Structurally equal members collapse even when distinct values.
	assert.Equal(t, `"a"`, NewUnion(StringLiteral("a"), StringLiteral("a")).String())
	assert.Panics(t, func() { NewUnion(Number, nil) })
}

func TestEqual(t *testing.T) {
	a := NewClass("A")
	assert.True(t, Equal(a, NewClass("A")))
	assert.False(t, Equal(a, NewClass("B")))
	assert.True(t, Equal(NewArray(Number), NewArray(Number)))
	assert.False(t, Equal(NewArray(Number), NewArray(String)))
	assert.True(t, Equal(NewUnion(Number, String), NewUnion(String, Number)))
	assert.True(t, Equal(NumberLiteral(1), NumberLiteral(1.0)))
	assert.False(t, Equal(NumberLiteral(1), StringLiteral("1")))
	assert.True(t, Equal(
		&Signature{Params: []*Param{{Name: "a", Ty: Number}}},
		&Signature{Params: []*Param{{Name: "b", Ty: Number}}, Return: Void},
	))
	assert.False(t, Equal(&GenericParam{Name: "T"}, &GenericParam{Name: "T", Bound: Number}))
	assert.False(t, Equal(Nil, Void))
}

func TestClassOf(t *testing.T) {
	list := NewClass("List", &GenericParam{Name: "T"})
	c, ok := ClassOf(NewGeneric(list, Number))
	assert.True(t, ok)
	assert.Same(t, list, c)
	_, ok = ClassOf(Number)
	assert.False(t, ok)
}
