package decl

import (
	"fmt"
)

// --- Statements ---

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmtNode() // Marker method for statements
}

type StmtBase struct {
	NodeInfo
}

func (s *StmtBase) stmtNode() {}

// Block is a sequence of statements sharing one lexical scope.
type Block struct {
	NodeInfo
	Statements []Stmt
}

func (b *Block) String() string { return fmt.Sprintf("{ %d statements }", len(b.Statements)) }
func (b *Block) PrettyPrint(cp CodePrinter) {
	if b == nil {
		return
	}
	for _, stmt := range b.Statements {
		stmt.PrettyPrint(cp)
		cp.Println("")
	}
}

// LocalStmt represents `local n1, n2 = e1, e2`
type LocalStmt struct {
	StmtBase
	Names []*NameDef
	Exprs []Expr
}

func (l *LocalStmt) String() string {
	if len(l.Exprs) == 0 {
		return fmt.Sprintf("local %s", joinNames(l.Names))
	}
	return fmt.Sprintf("local %s = %s", joinNames(l.Names), joinExprs(l.Exprs))
}
func (l *LocalStmt) PrettyPrint(cp CodePrinter) {
	cp.Print(l.String())
}

// AssignStmt represents `t1, t2 = e1, e2`
type AssignStmt struct {
	StmtBase
	Targets []Expr
	Exprs   []Expr
}

func (a *AssignStmt) String() string {
	return fmt.Sprintf("%s = %s", joinExprs(a.Targets), joinExprs(a.Exprs))
}
func (a *AssignStmt) PrettyPrint(cp CodePrinter) {
	cp.Print(a.String())
}

// DoStmt represents `do body end`
type DoStmt struct {
	StmtBase
	Body *Block
}

func (d *DoStmt) String() string { return "do ... end" }
func (d *DoStmt) PrettyPrint(cp CodePrinter) {
	cp.Println("do")
	WithIndent(1, cp, func(cp CodePrinter) {
		d.Body.PrettyPrint(cp)
	})
	cp.Print("end")
}

// IfStmt represents `if cond then ... else ... end`
type IfStmt struct {
	StmtBase
	Cond Expr
	Then *Block
	Else *Block
}

func (i *IfStmt) String() string {
	return fmt.Sprintf("if %s then ... end", i.Cond)
}
func (i *IfStmt) PrettyPrint(cp CodePrinter) {
	cp.Printf("if %s then\n", i.Cond)
	WithIndent(1, cp, func(cp CodePrinter) {
		i.Then.PrettyPrint(cp)
	})
	if i.Else != nil {
		cp.Println("else")
		WithIndent(1, cp, func(cp CodePrinter) {
			i.Else.PrettyPrint(cp)
		})
	}
	cp.Print("end")
}

// ExprStmt is an expression evaluated for its effects, usually a call.
type ExprStmt struct {
	StmtBase
	Expr Expr
}

func (e *ExprStmt) String() string { return fmt.Sprintf("%s", e.Expr) }
func (e *ExprStmt) PrettyPrint(cp CodePrinter) {
	cp.Print(e.String())
}
