package flow

import (
	"fmt"

	"github.com/panyam/luaty/decl"
)

type OpKind uint8

const (
	OpPush OpKind = iota
	OpGoto
	OpConditionalGoto
	OpUnary
	OpBinary
)

func (k OpKind) String() string {
	switch k {
	case OpPush:
		return "push"
	case OpGoto:
		return "goto"
	case OpConditionalGoto:
		return "ifnot"
	case OpUnary:
		return "unary"
	case OpBinary:
		return "binary"
	}
	return fmt.Sprintf("op(%d)", uint8(k))
}

// Op is the payload of an instruction before it is placed in a log.  Build
// one with the constructors below.
type Op struct {
	kind   OpKind
	value  Value            // OpPush
	label  *Label           // OpGoto, OpConditionalGoto
	unary  *decl.UnaryExpr  // OpUnary
	binary *decl.BinaryExpr // OpBinary
}

func PushOp(v Value) Op              { return Op{kind: OpPush, value: v} }
func GotoOp(l *Label) Op             { return Op{kind: OpGoto, label: l} }
func ConditionalGotoOp(l *Label) Op  { return Op{kind: OpConditionalGoto, label: l} }
func UnaryOp(e *decl.UnaryExpr) Op   { return Op{kind: OpUnary, unary: e} }
func BinaryOp(e *decl.BinaryExpr) Op { return Op{kind: OpBinary, binary: e} }

func (o Op) Kind() OpKind             { return o.kind }
func (o Op) Value() Value             { return o.value }
func (o Op) Label() *Label            { return o.label }
func (o Op) Unary() *decl.UnaryExpr   { return o.unary }
func (o Op) Binary() *decl.BinaryExpr { return o.binary }

// StackEffect returns how many values the op pops and pushes.
// A conditional goto consumes the condition it tests.
func (o Op) StackEffect() (pops, pushes int) {
	switch o.kind {
	case OpPush:
		return 0, 1
	case OpConditionalGoto:
		return 1, 0
	case OpUnary:
		return 1, 1
	case OpBinary:
		return 2, 1
	}
	return 0, 0
}

func (o Op) String() string {
	switch o.kind {
	case OpPush:
		return fmt.Sprintf("push %s", o.value)
	case OpGoto, OpConditionalGoto:
		return fmt.Sprintf("%s %s", o.kind, o.label)
	case OpUnary:
		return fmt.Sprintf("unary %s", o.unary.Operator)
	case OpBinary:
		return fmt.Sprintf("binary %s", o.binary.Operator)
	}
	return o.kind.String()
}

// Instruction is an Op placed in a PseudoCode log.  It cannot be changed
// once appended.
type Instruction struct {
	op    Op
	index int
	owner *PseudoCode
	scope *Scope
}

func (i *Instruction) Op() Op                   { return i.op }
func (i *Instruction) Kind() OpKind             { return i.op.kind }
func (i *Instruction) Value() Value             { return i.op.value }
func (i *Instruction) Label() *Label            { return i.op.label }
func (i *Instruction) Unary() *decl.UnaryExpr   { return i.op.unary }
func (i *Instruction) Binary() *decl.BinaryExpr { return i.op.binary }
func (i *Instruction) Index() int               { return i.index }
func (i *Instruction) Owner() *PseudoCode       { return i.owner }
func (i *Instruction) Scope() *Scope            { return i.scope }

func (i *Instruction) StackEffect() (pops, pushes int) { return i.op.StackEffect() }

func (i *Instruction) String() string {
	return fmt.Sprintf("%d: %s", i.index, i.op)
}
