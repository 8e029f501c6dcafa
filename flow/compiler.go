package flow

import (
	"context"
	"fmt"

	"github.com/panyam/luaty/decl"
	"github.com/panyam/luaty/logging"
)

// Compiler walks syntax in evaluation order and appends instructions to a
// PseudoCode unit.  A Compiler is not safe for concurrent use; create one per
// goroutine.
type Compiler struct {
	factory ValueFactory
	logger  logging.Logger
	ctx     context.Context
	pc      *PseudoCode
}

type CompilerOption func(*Compiler)

func WithValueFactory(f ValueFactory) CompilerOption {
	return func(c *Compiler) { c.factory = f }
}

func WithLogger(l logging.Logger) CompilerOption {
	return func(c *Compiler) { c.logger = l }
}

func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{factory: NewValueFactory()}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.Default()
	}
	return c
}

// Compile emits the instruction log for a top level block.
func (c *Compiler) Compile(ctx context.Context, block *decl.Block) (*PseudoCode, error) {
	return c.compileUnit(ctx, block, nil)
}

// CompileFunction emits the body of fn into a new unit nested under parent.
func (c *Compiler) CompileFunction(ctx context.Context, fn *decl.FunctionExpr, parent *PseudoCode) (*PseudoCode, error) {
	if fn == nil || fn.Body == nil {
		return nil, fmt.Errorf("function has no body")
	}
	return c.compileUnit(ctx, fn.Body, parent)
}

func (c *Compiler) compileUnit(ctx context.Context, block *decl.Block, parent *PseudoCode) (out *PseudoCode, err error) {
	if block == nil {
		return nil, fmt.Errorf("cannot compile nil block")
	}
	prevCtx, prevPC := c.ctx, c.pc
	c.ctx, c.pc = ctx, NewPseudoCode(parent)
	defer func() {
		c.ctx, c.pc = prevCtx, prevPC
	}()

	if err = c.compileBlock(block); err != nil {
		return nil, err
	}
	c.logger.Debug("compiled block at %d: %d instructions, %d scopes", block.Pos(), c.pc.Len(), len(c.pc.Scopes()))
	return c.pc, nil
}

func (c *Compiler) compileBlock(block *decl.Block) error {
	c.pc.EnterScope(block)
	for _, stmt := range block.Statements {
		if err := c.ctx.Err(); err != nil {
			return err
		}
		if err := c.compileStmt(stmt); err != nil {
			return err
		}
	}
	c.pc.ExitScope(block)
	return nil
}

func (c *Compiler) compileStmt(stmt decl.Stmt) error {
	switch s := stmt.(type) {
	case *decl.LocalStmt:
		c.compileLocal(s)
	case *decl.AssignStmt:
		// Assignments are not modeled.
	case *decl.ExprStmt:
		// Neither are calls made for their effects.
	case *decl.DoStmt:
		if s.Body != nil {
			return c.compileBlock(s.Body)
		}
	case *decl.IfStmt:
		return c.compileIf(s)
	}
	return nil
}

func (c *Compiler) compileLocal(s *decl.LocalStmt) {
	unsure := false
	for i, name := range s.Names {
		c.push(c.factory.CreateVariableValue(name))

		var expr decl.Expr
		if i < len(s.Exprs) {
			expr = s.Exprs[i]
		}
		// A call may return any number of values, so from here on the
		// remaining names cannot be matched to initializers.
		if _, ok := expr.(*decl.CallExpr); ok {
			unsure = true
		}
		switch {
		case unsure:
			c.push(Unknown)
		case expr == nil:
			c.pushNil()
		default:
			c.compileExpr(expr)
		}
	}
}

// pushNil stands in for a missing initializer.  It emits nothing.
func (c *Compiler) pushNil() {}

func (c *Compiler) compileIf(s *decl.IfStmt) error {
	c.compileOperand(s.Cond)
	jump := c.pc.CreateJump()
	c.pc.AddInstruction(ConditionalGotoOp(jump.Start))
	if s.Then != nil {
		if err := c.compileBlock(s.Then); err != nil {
			return err
		}
	}
	c.pc.AddInstruction(GotoOp(jump.End))
	c.pc.BindLabel(jump.Start)
	if s.Else != nil {
		if err := c.compileBlock(s.Else); err != nil {
			return err
		}
	}
	c.pc.BindLabel(jump.End)
	return nil
}

// compileOperand compiles expr or pushes Unknown when it is missing.
func (c *Compiler) compileOperand(expr decl.Expr) {
	if expr == nil {
		c.push(Unknown)
		return
	}
	c.compileExpr(expr)
}

func (c *Compiler) compileExpr(expr decl.Expr) {
	switch e := expr.(type) {
	case *decl.BinaryExpr:
		c.compileOperand(e.Left)
		c.compileOperand(e.Right)
		c.pc.AddInstruction(BinaryOp(e))
	case *decl.UnaryExpr:
		c.compileOperand(e.Operand)
		c.pc.AddInstruction(UnaryOp(e))
	case *decl.LiteralExpr:
		c.push(c.factory.CreateLiteralValue(e))
	case *decl.ParenExpr:
		c.compileOperand(e.Inner)
	case *decl.NameExpr:
		c.push(&VariableValue{Name: e.Name})
	case *decl.FunctionExpr:
		c.push(c.factory.CreateValue(e))
	default:
		// Table constructors, calls and index expressions are not modeled.
		c.push(Unknown)
	}
}

func (c *Compiler) push(v Value) {
	c.pc.AddInstruction(PushOp(v))
}
