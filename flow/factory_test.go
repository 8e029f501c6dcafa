package flow

import (
	"testing"

	"github.com/panyam/luaty/decl"
	"github.com/stretchr/testify/assert"
)

func TestLiteralValuesAreShared(t *testing.T) {
	f := NewValueFactory()
	assert.Same(t, True, f.CreateLiteralValue(decl.BoolLiteral(true)))
	assert.Same(t, f.CreateLiteralValue(decl.BoolLiteral(true)), f.CreateLiteralValue(decl.BoolLiteral(true)))
	assert.Same(t, False, f.CreateLiteralValue(decl.BoolLiteral(false)))
	assert.Same(t, Nil, f.CreateLiteralValue(decl.NilLiteral()))
	assert.Same(t, Unknown, f.CreateLiteralValue(decl.VarargsLiteral()))
	assert.Same(t, Unknown, f.CreateLiteralValue(nil))
}

func TestLiteralPayloads(t *testing.T) {
	f := NewValueFactory()
	assert.Equal(t, &NumberValue{Value: 3.5}, f.CreateLiteralValue(decl.NumberLiteral(3.5)))
	assert.Equal(t, &StringValue{Value: "hi"}, f.CreateLiteralValue(decl.StringLiteral("hi")))
	assert.Equal(t, `"hi"`, f.CreateLiteralValue(decl.StringLiteral("hi")).String())
}

func TestCreateValue(t *testing.T) {
	f := NewValueFactory()
	fn := &decl.FunctionExpr{}
	assert.Equal(t, &FunctionValue{Func: fn}, f.CreateValue(fn))
	assert.Same(t, True, f.CreateValue(&decl.ParenExpr{Inner: decl.BoolLiteral(true)}))
	assert.Same(t, Unknown, f.CreateValue(&decl.TableExpr{}))
	assert.Same(t, Unknown, f.CreateValue(&decl.CallExpr{Callee: &decl.NameExpr{Name: "f"}}))
}

func TestCreateVariableValue(t *testing.T) {
	f := NewValueFactory()
	def := &decl.NameDef{Name: "x"}
	v := f.CreateVariableValue(def)
	assert.Equal(t, "x", v.Name)
	assert.Same(t, def, v.Def)
	assert.False(t, v.IsConstant())
}

func TestThreeState(t *testing.T) {
	assert.Equal(t, StateTrue, StateTrue.Merge(StateTrue))
	assert.Equal(t, StateUnsure, StateTrue.Merge(StateFalse))
	assert.Same(t, Unsure, Bool(StateTrue.Merge(StateFalse)))
	assert.Same(t, True, Bool(StateTrue))
	assert.False(t, Unsure.IsConstant())
	assert.Equal(t, "unsure", Unsure.String())
}
