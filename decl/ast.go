package decl

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// --- Interfaces ---

// Node represents any node in the syntax tree handed to the analyzer by its host.
type Node interface {
	Pos() int       // Starting position (for error reporting)
	End() int       // Ending position
	String() string // String representation for debugging/printing
	PrettyPrint(cp CodePrinter)
}

// --- Base Struct ---

// NodeInfo embeddable struct for position tracking.
type NodeInfo struct{ StartPos, StopPos int }

func (n *NodeInfo) Pos() int       { return n.StartPos }
func (n *NodeInfo) End() int       { return n.StopPos }
func (n *NodeInfo) String() string { return "{Node}" } // Default stringer

// NameDef is a name introduced by a local declaration or a function parameter.
type NameDef struct {
	NodeInfo
	Name string
}

func (n *NameDef) String() string { return n.Name }
func (n *NameDef) PrettyPrint(cp CodePrinter) {
	cp.Print(n.Name)
}

// Chunk is the root of one source unit.
type Chunk struct {
	NodeInfo
	Name string
	Body *Block
}

func (c *Chunk) String() string { return fmt.Sprintf("chunk %s", c.Name) }
func (c *Chunk) PrettyPrint(cp CodePrinter) {
	if c.Body != nil {
		c.Body.PrettyPrint(cp)
	}
}

func joinNames(names []*NameDef) string {
	return strings.Join(gfn.Map(names, func(n *NameDef) string { return n.Name }), ", ")
}

func joinExprs(exprs []Expr) string {
	return strings.Join(gfn.Map(exprs, func(e Expr) string {
		if e == nil {
			return "nil"
		}
		return e.String()
	}), ", ")
}

// Walk calls visit for node and then, depth first, for every child node.
// Returning false from visit skips the children of that node.
func Walk(node Node, visit func(Node) bool) {
	if node == nil || !visit(node) {
		return
	}
	walkAll := func(exprs []Expr) {
		for _, e := range exprs {
			if e != nil {
				Walk(e, visit)
			}
		}
	}
	switch n := node.(type) {
	case *Chunk:
		if n.Body != nil {
			Walk(n.Body, visit)
		}
	case *Block:
		for _, s := range n.Statements {
			Walk(s, visit)
		}
	case *LocalStmt:
		for _, name := range n.Names {
			Walk(name, visit)
		}
		walkAll(n.Exprs)
	case *AssignStmt:
		walkAll(n.Targets)
		walkAll(n.Exprs)
	case *DoStmt:
		if n.Body != nil {
			Walk(n.Body, visit)
		}
	case *IfStmt:
		if n.Cond != nil {
			Walk(n.Cond, visit)
		}
		if n.Then != nil {
			Walk(n.Then, visit)
		}
		if n.Else != nil {
			Walk(n.Else, visit)
		}
	case *ExprStmt:
		if n.Expr != nil {
			Walk(n.Expr, visit)
		}
	case *BinaryExpr:
		walkAll([]Expr{n.Left, n.Right})
	case *UnaryExpr:
		walkAll([]Expr{n.Operand})
	case *ParenExpr:
		walkAll([]Expr{n.Inner})
	case *CallExpr:
		walkAll([]Expr{n.Callee})
		walkAll(n.Args)
	case *IndexExpr:
		walkAll([]Expr{n.Prefix, n.Key})
	case *TableExpr:
		for _, f := range n.Fields {
			walkAll([]Expr{f.Key, f.Value})
		}
	case *FunctionExpr:
		for _, p := range n.Params {
			Walk(p, visit)
		}
		if n.Body != nil {
			Walk(n.Body, visit)
		}
	}
}
