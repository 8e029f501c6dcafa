package flow

import "github.com/panyam/luaty/decl"

// ValueFactory maps syntax to abstract values.
type ValueFactory interface {
	CreateValue(expr decl.Expr) Value
	CreateVariableValue(def *decl.NameDef) *VariableValue
	CreateLiteralValue(lit *decl.LiteralExpr) Value
}

// DefaultValueFactory keeps values conservative: anything it cannot name precisely is Unknown.
type DefaultValueFactory struct{}

func NewValueFactory() *DefaultValueFactory {
	return &DefaultValueFactory{}
}

func (f *DefaultValueFactory) CreateValue(expr decl.Expr) Value {
	switch e := expr.(type) {
	case *decl.LiteralExpr:
		return f.CreateLiteralValue(e)
	case *decl.FunctionExpr:
		return &FunctionValue{Func: e}
	case *decl.ParenExpr:
		return f.CreateValue(e.Inner)
	}
	return Unknown
}

func (f *DefaultValueFactory) CreateVariableValue(def *decl.NameDef) *VariableValue {
	return &VariableValue{Name: def.Name, Def: def}
}

func (f *DefaultValueFactory) CreateLiteralValue(lit *decl.LiteralExpr) Value {
	if lit == nil {
		return Unknown
	}
	switch lit.Kind {
	case decl.LiteralBool:
		if lit.Bool {
			return True
		}
		return False
	case decl.LiteralNil:
		return Nil
	case decl.LiteralNumber:
		return &NumberValue{Value: lit.Number}
	case decl.LiteralString:
		return &StringValue{Value: lit.Str}
	}
	return Unknown
}
