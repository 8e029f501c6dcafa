package decl

import (
	"fmt"
	"strconv"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// Expr represents an expression node.
type Expr interface {
	Node
	exprNode() // Marker method for expressions
}

type ExprBase struct {
	NodeInfo
}

func (e *ExprBase) exprNode() {}

// --- Expressions ---

// BinaryExpr represents `left operator right`
type BinaryExpr struct {
	ExprBase
	Left     Expr
	Operator string // "or", "and", "==", "~=", "<", "<=", ">", ">=", "..", "+", "-", "*", "/", "//", "%", "^"
	Right    Expr
}

func (b *BinaryExpr) String() string {
	leftStr := "nil"
	if b.Left != nil {
		leftStr = b.Left.String()
	}
	rightStr := "nil"
	if b.Right != nil {
		rightStr = b.Right.String()
	}
	return fmt.Sprintf("(%s %s %s)", leftStr, b.Operator, rightStr)
}
func (e *BinaryExpr) PrettyPrint(cp CodePrinter) {
	cp.Print(e.String())
}

// UnaryExpr represents `operator operand`
type UnaryExpr struct {
	ExprBase
	Operator string // "not", "-", "#", "~"
	Operand  Expr
}

func (u *UnaryExpr) String() string {
	if u.Operand == nil {
		return fmt.Sprintf("(%s nil)", u.Operator)
	}
	return fmt.Sprintf("(%s %s)", u.Operator, u.Operand)
}
func (e *UnaryExpr) PrettyPrint(cp CodePrinter) {
	cp.Print(e.String())
}

type LiteralKind int

const (
	LiteralNil LiteralKind = iota
	LiteralBool
	LiteralNumber
	LiteralString
	LiteralVarargs
)

// LiteralExpr represents nil, true/false, numbers, strings and `...`
type LiteralExpr struct {
	ExprBase
	Kind   LiteralKind
	Bool   bool
	Number float64
	Str    string
}

func NilLiteral() *LiteralExpr             { return &LiteralExpr{Kind: LiteralNil} }
func BoolLiteral(b bool) *LiteralExpr      { return &LiteralExpr{Kind: LiteralBool, Bool: b} }
func NumberLiteral(n float64) *LiteralExpr { return &LiteralExpr{Kind: LiteralNumber, Number: n} }
func StringLiteral(s string) *LiteralExpr  { return &LiteralExpr{Kind: LiteralString, Str: s} }
func VarargsLiteral() *LiteralExpr         { return &LiteralExpr{Kind: LiteralVarargs} }

func (l *LiteralExpr) String() string {
	switch l.Kind {
	case LiteralNil:
		return "nil"
	case LiteralBool:
		return strconv.FormatBool(l.Bool)
	case LiteralNumber:
		return strconv.FormatFloat(l.Number, 'g', -1, 64)
	case LiteralString:
		return strconv.Quote(l.Str)
	case LiteralVarargs:
		return "..."
	}
	return "<literal>"
}
func (l *LiteralExpr) PrettyPrint(cp CodePrinter) {
	cp.Print(l.String())
}

// NameExpr is a reference to a local or global name
type NameExpr struct {
	ExprBase
	Name string
}

func (n *NameExpr) String() string { return n.Name }
func (n *NameExpr) PrettyPrint(cp CodePrinter) {
	cp.Print(n.Name)
}

// ParenExpr represents `( inner )`, truncating multiple results to one.
type ParenExpr struct {
	ExprBase
	Inner Expr
}

func (p *ParenExpr) String() string {
	if p.Inner == nil {
		return "(nil)"
	}
	return fmt.Sprintf("(%s)", p.Inner)
}
func (p *ParenExpr) PrettyPrint(cp CodePrinter) {
	cp.Print(p.String())
}

// CallExpr represents `callee(args)` or `callee:method(args)` when Method is set.
type CallExpr struct {
	ExprBase
	Callee Expr
	Method string
	Args   []Expr
}

func (c *CallExpr) String() string {
	callee := "nil"
	if c.Callee != nil {
		callee = c.Callee.String()
	}
	if c.Method != "" {
		callee = callee + ":" + c.Method
	}
	return fmt.Sprintf("%s(%s)", callee, joinExprs(c.Args))
}
func (c *CallExpr) PrettyPrint(cp CodePrinter) {
	cp.Print(c.String())
}

// IndexExpr represents `prefix.name` (Name set) or `prefix[key]` (Key set).
type IndexExpr struct {
	ExprBase
	Prefix Expr
	Name   string
	Key    Expr
}

func (i *IndexExpr) String() string {
	prefix := "nil"
	if i.Prefix != nil {
		prefix = i.Prefix.String()
	}
	if i.Key != nil {
		return fmt.Sprintf("%s[%s]", prefix, i.Key)
	}
	return fmt.Sprintf("%s.%s", prefix, i.Name)
}
func (i *IndexExpr) PrettyPrint(cp CodePrinter) {
	cp.Print(i.String())
}

// TableField is one entry of a table constructor.  Exactly one of Name or Key
// is set for keyed fields; both are empty for positional fields.
type TableField struct {
	Name  string
	Key   Expr
	Value Expr
}

func (f *TableField) String() string {
	switch {
	case f.Name != "":
		return fmt.Sprintf("%s = %s", f.Name, f.Value)
	case f.Key != nil:
		return fmt.Sprintf("[%s] = %s", f.Key, f.Value)
	}
	return fmt.Sprintf("%s", f.Value)
}

// TableExpr represents `{ fields }`
type TableExpr struct {
	ExprBase
	Fields []*TableField
}

func (t *TableExpr) String() string {
	return fmt.Sprintf("{%s}", strings.Join(gfn.Map(t.Fields, func(f *TableField) string { return f.String() }), ", "))
}
func (t *TableExpr) PrettyPrint(cp CodePrinter) {
	cp.Print(t.String())
}

// FunctionExpr represents `function(params) body end`
type FunctionExpr struct {
	ExprBase
	Params   []*NameDef
	Variadic bool
	Body     *Block
}

func (f *FunctionExpr) String() string {
	params := joinNames(f.Params)
	if f.Variadic {
		if params != "" {
			params += ", "
		}
		params += "..."
	}
	return fmt.Sprintf("function(%s)", params)
}
func (f *FunctionExpr) PrettyPrint(cp CodePrinter) {
	cp.Println(f.String())
	if f.Body != nil {
		WithIndent(1, cp, func(cp CodePrinter) {
			f.Body.PrettyPrint(cp)
		})
	}
	cp.Print("end")
}
