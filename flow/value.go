package flow

import (
	"fmt"
	"strconv"

	"github.com/panyam/luaty/decl"
)

// ThreeState is a boolean that may be undecided.
type ThreeState int

const (
	StateFalse ThreeState = iota
	StateTrue
	StateUnsure
)

func (t ThreeState) String() string {
	switch t {
	case StateTrue:
		return "true"
	case StateFalse:
		return "false"
	}
	return "unsure"
}

// Merge joins two states reaching the same program point.
func (t ThreeState) Merge(other ThreeState) ThreeState {
	if t == other {
		return t
	}
	return StateUnsure
}

// Value is an abstract value carried by Push instructions.
type Value interface {
	fmt.Stringer
	// IsConstant is true for values whose payload is fully known.
	IsConstant() bool
	value()
}

type UnknownValue struct{}

func (*UnknownValue) value()           {}
func (*UnknownValue) IsConstant() bool { return false }
func (*UnknownValue) String() string   { return "unknown" }

type NilValue struct{}

func (*NilValue) value()           {}
func (*NilValue) IsConstant() bool { return true }
func (*NilValue) String() string   { return "nil" }

type BooleanValue struct {
	State ThreeState
}

func (*BooleanValue) value()             {}
func (b *BooleanValue) IsConstant() bool { return b.State != StateUnsure }
func (b *BooleanValue) String() string   { return b.State.String() }

type StringValue struct {
	Value string
}

func (*StringValue) value()           {}
func (*StringValue) IsConstant() bool { return true }
func (s *StringValue) String() string { return strconv.Quote(s.Value) }

type NumberValue struct {
	Value float64
}

func (*NumberValue) value()           {}
func (*NumberValue) IsConstant() bool { return true }
func (n *NumberValue) String() string { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

// FunctionValue references the function expression that produced it.
type FunctionValue struct {
	Func *decl.FunctionExpr
}

func (*FunctionValue) value()           {}
func (*FunctionValue) IsConstant() bool { return true }
func (f *FunctionValue) String() string {
	if f.Func == nil {
		return "function"
	}
	return f.Func.String()
}

// VariableValue stands for the storage slot of a declared name.
type VariableValue struct {
	Name string
	Def  *decl.NameDef
}

func (*VariableValue) value()           {}
func (*VariableValue) IsConstant() bool { return false }
func (v *VariableValue) String() string { return "$" + v.Name }

// Shared instances.  Compare by identity.
var (
	Unknown Value = &UnknownValue{}
	Nil     Value = &NilValue{}
	True    Value = &BooleanValue{State: StateTrue}
	False   Value = &BooleanValue{State: StateFalse}
	Unsure  Value = &BooleanValue{State: StateUnsure}
)

// Bool returns the shared boolean value for a state.
func Bool(state ThreeState) Value {
	switch state {
	case StateTrue:
		return True
	case StateFalse:
		return False
	}
	return Unsure
}
