package infer

import (
	"context"
	"testing"

	"github.com/panyam/luaty/decl"
	"github.com/panyam/luaty/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	names   map[string]types.Ty
	classes map[string]*types.Class
}

func (f *fakeResolver) ResolveName(ref *decl.NameExpr) (types.Ty, bool) {
	t, ok := f.names[ref.Name]
	return t, ok
}

func (f *fakeResolver) FindClass(name string) (*types.Class, bool) {
	c, ok := f.classes[name]
	return c, ok
}

func name(n string) *decl.NameExpr { return &decl.NameExpr{Name: n} }

func binary(l decl.Expr, op string, r decl.Expr) *decl.BinaryExpr {
	return &decl.BinaryExpr{Left: l, Operator: op, Right: r}
}

func fixture() *Context {
	T := &types.GenericParam{Name: "T"}
	config := types.NewClass("Config")
	config.AddField("port", types.Number)
	config.AddIndexer(types.String, types.String)
	config.AddField("get", &types.Signature{Colon: true, Params: []*types.Param{{Name: "key", Ty: types.String}}, Return: types.NewUnion(types.String, types.Nil)})
	config.AddField("pick", &types.Signature{Generics: []*types.GenericParam{T}, Colon: true, Params: []*types.Param{{Name: "fallback", Ty: T}}, Return: T})

	return &Context{Key: "test", Resolver: &fakeResolver{
		names: map[string]types.Ty{
			"cfg":      config,
			"maybe":    types.NewUnion(types.String, types.Nil),
			"identity": &types.Signature{Generics: []*types.GenericParam{T}, Params: []*types.Param{{Name: "x", Ty: T}}, Return: T},
			"first":    &types.Signature{Generics: []*types.GenericParam{T}, Params: []*types.Param{{Name: "xs", Ty: types.NewArray(T)}}, Return: T},
			"strs":     types.NewArray(types.String),
		},
		classes: map[string]*types.Class{"Config": config},
	}}
}

func infer(t *testing.T, e *Engine, expr decl.Expr, ic *Context) (string, bool) {
	t.Helper()
	ty, ok, err := e.Infer(context.Background(), expr, ic)
	require.NoError(t, err)
	if !ok {
		return "", false
	}
	return ty.String(), true
}

func TestDefaultStrategies(t *testing.T) {
	e := NewEngine()
	ic := fixture()
	cases := []struct {
		expr     decl.Expr
		expected string
	}{
		{decl.NilLiteral(), "nil"},
		{decl.BoolLiteral(true), "true"},
		{decl.NumberLiteral(3), "3"},
		{decl.StringLiteral("a"), `"a"`},
		{&decl.ParenExpr{Inner: decl.NumberLiteral(1.5)}, "1.5"},
		{&decl.UnaryExpr{Operator: "not", Operand: name("x")}, "boolean"},
		{&decl.UnaryExpr{Operator: "#", Operand: name("x")}, "number"},
		{binary(decl.NumberLiteral(1), "+", decl.NumberLiteral(2)), "number"},
		{binary(name("a"), "..", name("b")), "string"},
		{binary(name("a"), "<=", name("b")), "boolean"},
		{binary(name("maybe"), "or", decl.StringLiteral("d")), `string | "d"`},
		{binary(name("maybe"), "and", decl.NumberLiteral(1)), "1 | nil"},
		{binary(decl.BoolLiteral(true), "and", decl.NumberLiteral(1)), "1"},
		{&decl.TableExpr{}, "table"},
		{&decl.FunctionExpr{Params: []*decl.NameDef{{Name: "a"}}, Variadic: true}, "fun(a: any, ...: any): any"},
		{name("Config"), "Config"},
	}
	for _, c := range cases {
		got, ok := infer(t, e, c.expr, ic)
		assert.True(t, ok, c.expr.String())
		assert.Equal(t, c.expected, got, c.expr.String())
	}

	_, ok := infer(t, e, decl.VarargsLiteral(), ic)
	assert.False(t, ok)
	_, ok = infer(t, e, name("undefined"), ic)
	assert.False(t, ok)
	_, ok = infer(t, e, name("cfg"), nil)
	assert.False(t, ok, "no resolver, no names")
}

func TestIndexInference(t *testing.T) {
	e := NewEngine()
	ic := fixture()

	got, ok := infer(t, e, &decl.IndexExpr{Prefix: name("cfg"), Name: "port"}, ic)
	assert.True(t, ok)
	assert.Equal(t, "number", got)

	got, _ = infer(t, e, &decl.IndexExpr{Prefix: name("cfg"), Name: "host"}, ic)
	assert.Equal(t, "string", got)

	got, _ = infer(t, e, &decl.IndexExpr{Prefix: name("cfg"), Key: decl.StringLiteral("port")}, ic)
	assert.Equal(t, "number", got)

	got, _ = infer(t, e, &decl.IndexExpr{Prefix: name("strs"), Key: decl.NumberLiteral(1)}, ic)
	assert.Equal(t, "string", got)

	_, ok = infer(t, e, &decl.IndexExpr{Prefix: name("cfg"), Key: decl.NumberLiteral(1)}, ic)
	assert.False(t, ok)
	_, ok = infer(t, e, &decl.IndexExpr{Prefix: name("unknown"), Name: "x"}, ic)
	assert.False(t, ok)
}

func TestCallInference(t *testing.T) {
	e := NewEngine()
	ic := fixture()

	got, ok := infer(t, e, &decl.CallExpr{Callee: name("identity"), Args: []decl.Expr{decl.NumberLiteral(5)}}, ic)
	assert.True(t, ok)
	assert.Equal(t, "5", got)

	got, _ = infer(t, e, &decl.CallExpr{Callee: name("first"), Args: []decl.Expr{name("strs")}}, ic)
	assert.Equal(t, "string", got)

	got, _ = infer(t, e, &decl.CallExpr{Callee: name("identity")}, ic)
	assert.Equal(t, "any", got)

	got, _ = infer(t, e, &decl.CallExpr{Callee: name("cfg"), Method: "get", Args: []decl.Expr{decl.StringLiteral("k")}}, ic)
	assert.Equal(t, "string | nil", got)

	got, _ = infer(t, e, &decl.CallExpr{Callee: name("cfg"), Method: "pick", Args: []decl.Expr{decl.BoolLiteral(false)}}, ic)
	assert.Equal(t, "false", got)

	// Dot call on a receiver method passes self explicitly.
	pick := &decl.IndexExpr{Prefix: name("cfg"), Name: "pick"}
	got, _ = infer(t, e, &decl.CallExpr{Callee: pick, Args: []decl.Expr{name("cfg"), decl.StringLiteral("x")}}, ic)
	assert.Equal(t, `"x"`, got)

	_, ok = infer(t, e, &decl.CallExpr{Callee: name("strs")}, ic)
	assert.False(t, ok)
}

func TestCustomStrategiesRunFirst(t *testing.T) {
	var seen []string
	override := StrategyFunc{"override", func(r *Request, expr decl.Expr) (types.Ty, bool, error) {
		seen = append(seen, expr.String())
		if _, ok := expr.(*decl.NameExpr); ok {
			return types.Boolean, true, nil
		}
		return nil, false, nil
	}}
	e := NewEngine(PrependStrategies(override))
	require.Len(t, e.Strategies(), len(DefaultStrategies())+1)

	got, ok := infer(t, e, binary(name("x"), "and", decl.NumberLiteral(1)), fixture())
	assert.True(t, ok)
	assert.Equal(t, "1", got)
	assert.Equal(t, []string{"(x and 1)", "x", "1"}, seen)

	only := NewEngine(WithStrategies(override))
	_, ok = infer(t, only, decl.NumberLiteral(1), nil)
	assert.False(t, ok)
}

func TestInferCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cache := NewCache(nil)
	e := NewEngine(WithCache(cache))
	ty, ok, err := e.Infer(ctx, &decl.CallExpr{Callee: name("identity"), Args: []decl.Expr{decl.NumberLiteral(5)}}, fixture())
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
	assert.Nil(t, ty)
	assert.Zero(t, cache.Len(), "nothing is cached from a cancelled request")
}
