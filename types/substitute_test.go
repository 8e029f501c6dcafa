package types

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subst(t *testing.T, ty Ty, sub Substitutor) Ty {
	t.Helper()
	out, err := Substitute(Background(), ty, sub)
	require.NoError(t, err)
	return out
}

func TestSubstituteReplacesFreeParams(t *testing.T) {
	T := &GenericParam{Name: "T"}
	K := &GenericParam{Name: "K"}
	list := NewClass("List", T)
	sub := NewParamSubstitutor("test", map[string]Ty{"T": Number, "K": String})

	assert.Same(t, Number, subst(t, T, sub))
	assert.Equal(t, "number[]", subst(t, NewArray(T), sub).String())
	assert.Equal(t, "List<number>", subst(t, NewGeneric(list, T), sub).String())
	assert.Equal(t, "table<string, number>", subst(t, NewGeneric(Table, K, T), sub).String())
	assert.Equal(t, "number | string", subst(t, NewUnion(T, K), sub).String())
	assert.Equal(t, "fun(k: string): number", subst(t, &Signature{Params: []*Param{{Name: "k", Ty: K}}, Return: T}, sub).String())
}

func TestSubstituteIsIdentityWithoutMappedParams(t *testing.T) {
	U := &GenericParam{Name: "U"}
	sub := NewParamSubstitutor("test", map[string]Ty{"T": Number})
	targets := []Ty{
		Number,
		U,
		NewArray(U),
		NewGeneric(NewClass("Box", U), U),
		NewUnion(U, String),
		&Signature{Params: []*Param{{Name: "u", Ty: U}}, Return: U},
		NewClass("Plain"),
	}
	for _, target := range targets {
		assert.Same(t, target, subst(t, target, sub), target.String())
	}
}

func TestSubstituteRespectsShadowing(t *testing.T) {
	T := &GenericParam{Name: "T"}
	inner := &Signature{Generics: []*GenericParam{T}, Params: []*Param{{Name: "x", Ty: T}}, Return: T}
	sub := NewParamSubstitutor("outer", map[string]Ty{"T": Number})

	assert.Same(t, inner, subst(t, inner, sub))

	// Only the shadowed name is left alone.
	U := &GenericParam{Name: "U"}
	mixed := &Signature{Generics: []*GenericParam{T}, Params: []*Param{{Name: "x", Ty: T}, {Name: "u", Ty: U}}}
	out := subst(t, mixed, NewParamSubstitutor("outer", map[string]Ty{"T": Number, "U": String}))
	assert.Equal(t, "fun<T>(x: T, u: string)", out.String())

	// An outer T inside an array still gets replaced while the nested signature keeps its own.
	outer := NewArray(NewUnion(T, inner))
	assert.Equal(t, "(fun<T>(x: T): T | number)[]", subst(t, outer, sub).String())
}

func TestSubstituteAvoidsCapture(t *testing.T) {
	T := &GenericParam{Name: "T"}
	U := &GenericParam{Name: "U"}
	sig := &Signature{Generics: []*GenericParam{T}, Params: []*Param{{Name: "x", Ty: T}, {Name: "y", Ty: U}}, Return: T}

	out := subst(t, sig, NewParamSubstitutor("outer", map[string]Ty{"U": T}))
	assert.Equal(t, "fun<T'>(x: T', y: T): T'", out.String())
	assert.Equal(t, []string{"T"}, FreeParams(out))
}

func TestCaptureAvoidanceSkipsNamesInUse(t *testing.T) {
	T := &GenericParam{Name: "T"}
	T1 := &GenericParam{Name: "T'"}
	U := &GenericParam{Name: "U"}
	sig := &Signature{
		Generics: []*GenericParam{T},
		Params:   []*Param{{Name: "a", Ty: T}, {Name: "b", Ty: T1}, {Name: "c", Ty: U}},
	}

	out := subst(t, sig, NewParamSubstitutor("outer", map[string]Ty{"U": T}))
	assert.Equal(t, "fun<T''>(a: T'', b: T', c: T)", out.String())
	assert.Equal(t, []string{"T", "T'"}, FreeParams(out))
}

func TestSubstituteRewritesBounds(t *testing.T) {
	U := &GenericParam{Name: "U"}
	K := &GenericParam{Name: "K", Bound: NewArray(U)}
	sub := NewParamSubstitutor("outer", map[string]Ty{"U": Number})

	k := subst(t, K, sub).(*GenericParam)
	assert.Equal(t, "K: number[]", k.Declaration())
	assert.Equal(t, "U[]", K.Bound.String(), "the input is left alone")

	sig := &Signature{Generics: []*GenericParam{K}, Params: []*Param{{Name: "k", Ty: K}}, Return: K}
	out := subst(t, sig, sub).(*Signature)
	assert.Equal(t, "fun<K: number[]>(k: K): K", out.String())
	assert.Equal(t, "K: number[]", out.Params[0].Ty.(*GenericParam).Declaration())

	// A bound naming its own parameter does not loop.
	self := &GenericParam{Name: "S"}
	self.Bound = NewGeneric(NewClass("Cmp", &GenericParam{Name: "X"}), self, U)
	assert.Equal(t, "S: Cmp<S, number>", subst(t, self, sub).(*GenericParam).Declaration())
}

func TestChainSubstitutor(t *testing.T) {
	T := &GenericParam{Name: "T"}
	U := &GenericParam{Name: "U"}
	first := NewParamSubstitutor("first", map[string]Ty{"T": NewArray(U)})
	second := NewParamSubstitutor("second", map[string]Ty{"U": Number})

	assert.Equal(t, "number[]", subst(t, T, Chain(first, second)).String())
	assert.Equal(t, "U[]", subst(t, T, Chain(second, first)).String())
	assert.Same(t, T, subst(t, T, nil))
}

func TestWithArgs(t *testing.T) {
	T := &GenericParam{Name: "T"}
	U := &GenericParam{Name: "U"}
	sub := WithArgs([]*GenericParam{T, U}, []Ty{Number})
	got, ok := sub.Lookup("T")
	assert.True(t, ok)
	assert.Same(t, Number, got)
	_, ok = sub.Lookup("U")
	assert.False(t, ok)
	assert.Equal(t, "args{T=number}", sub.String())
}

func TestSubstituteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	T := &GenericParam{Name: "T"}
	out, err := Substitute(NewSearchContext(ctx), NewArray(T), NewParamSubstitutor("x", map[string]Ty{"T": Number}))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)
}
