package types

import (
	"fmt"
	"strconv"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNil
	KindVoid
	KindPrimitive
	KindLiteral
	KindClass
	KindArray
	KindGeneric
	KindUnion
	KindSignature
	KindGenericParam
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "Unknown"
	case KindNil:
		return "Nil"
	case KindVoid:
		return "Void"
	case KindPrimitive:
		return "Primitive"
	case KindLiteral:
		return "Literal"
	case KindClass:
		return "Class"
	case KindArray:
		return "Array"
	case KindGeneric:
		return "Generic"
	case KindUnion:
		return "Union"
	case KindSignature:
		return "Signature"
	case KindGenericParam:
		return "GenericParam"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Ty is an annotated type.  The set of implementations is closed; code that
// inspects types switches over the concrete pointer types in this package.
type Ty interface {
	Kind() Kind
	String() string
	ty()
}

type unknownTy struct{}

func (*unknownTy) Kind() Kind     { return KindUnknown }
func (*unknownTy) String() string { return "any" }
func (*unknownTy) ty()            {}

type nilTy struct{}

func (*nilTy) Kind() Kind     { return KindNil }
func (*nilTy) String() string { return "nil" }
func (*nilTy) ty()            {}

type voidTy struct{}

func (*voidTy) Kind() Kind     { return KindVoid }
func (*voidTy) String() string { return "void" }
func (*voidTy) ty()            {}

type PrimitiveKind int

const (
	PrimBoolean PrimitiveKind = iota
	PrimNumber
	PrimString
	PrimTable
	PrimFunction
)

func (p PrimitiveKind) String() string {
	switch p {
	case PrimBoolean:
		return "boolean"
	case PrimNumber:
		return "number"
	case PrimString:
		return "string"
	case PrimTable:
		return "table"
	case PrimFunction:
		return "function"
	}
	return fmt.Sprintf("primitive(%d)", int(p))
}

type Primitive struct {
	Prim PrimitiveKind
}

func (*Primitive) Kind() Kind       { return KindPrimitive }
func (p *Primitive) String() string { return p.Prim.String() }
func (*Primitive) ty()              {}

// Literal is a primitive narrowed to one value.  Value holds the canonical
// text: the raw string, the shortest number form, or "true"/"false".
type Literal struct {
	Base  PrimitiveKind
	Value string
}

func (*Literal) Kind() Kind { return KindLiteral }
func (l *Literal) String() string {
	if l.Base == PrimString {
		return strconv.Quote(l.Value)
	}
	return l.Value
}
func (*Literal) ty() {}

func StringLiteral(s string) *Literal {
	return &Literal{Base: PrimString, Value: s}
}

func NumberLiteral(n float64) *Literal {
	return &Literal{Base: PrimNumber, Value: strconv.FormatFloat(n, 'g', -1, 64)}
}

func BoolLiteral(b bool) *Literal {
	if b {
		return True
	}
	return False
}

// GenericParam is a type variable, optionally bounded.
type GenericParam struct {
	Name  string
	Bound Ty
}

func (*GenericParam) Kind() Kind       { return KindGenericParam }
func (g *GenericParam) String() string { return g.Name }
func (*GenericParam) ty()              {}

// Declaration renders the parameter as it appears in a generic list.
func (g *GenericParam) Declaration() string {
	if g.Bound == nil {
		return g.Name
	}
	return fmt.Sprintf("%s: %s", g.Name, g.Bound)
}

// Shared instances.
var (
	Unknown Ty = &unknownTy{}
	Nil     Ty = &nilTy{}
	Void    Ty = &voidTy{}

	Boolean  = &Primitive{Prim: PrimBoolean}
	Number   = &Primitive{Prim: PrimNumber}
	String   = &Primitive{Prim: PrimString}
	Table    = &Primitive{Prim: PrimTable}
	Function = &Primitive{Prim: PrimFunction}

	True  = &Literal{Base: PrimBoolean, Value: "true"}
	False = &Literal{Base: PrimBoolean, Value: "false"}
)

// PrimitiveOf returns the shared primitive for a kind.
func PrimitiveOf(kind PrimitiveKind) *Primitive {
	switch kind {
	case PrimBoolean:
		return Boolean
	case PrimNumber:
		return Number
	case PrimString:
		return String
	case PrimTable:
		return Table
	}
	return Function
}

// PrimitiveByName maps annotation names to primitive kinds.
func PrimitiveByName(name string) (*Primitive, bool) {
	switch name {
	case "boolean":
		return Boolean, true
	case "number", "integer":
		return Number, true
	case "string":
		return String, true
	case "table":
		return Table, true
	case "function":
		return Function, true
	}
	return nil, false
}

func IsUnknown(t Ty) bool {
	return t == nil || t.Kind() == KindUnknown
}

func renderList(tys []Ty) string {
	return strings.Join(gfn.Map(tys, func(t Ty) string { return t.String() }), ", ")
}

func renderParams(params []*GenericParam) string {
	return strings.Join(gfn.Map(params, func(p *GenericParam) string { return p.Declaration() }), ", ")
}
