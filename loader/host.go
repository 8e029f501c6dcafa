package loader

import (
	"sync"

	"github.com/panyam/luaty/decl"
	"github.com/panyam/luaty/types"
)

type binding struct {
	ty    types.Ty
	found bool
}

// Host answers name and class lookups for the inference engine over one
// bound chunk.  Every name reference is resolved once, at bind time, in the
// scope it appears in.  Expressions outside the chunk resolve in the chunk's
// top level scope as it stands after the last statement.
type Host struct {
	index *Index

	mu    sync.RWMutex
	refs  map[*decl.NameExpr]binding
	top   *TypeScope
	nodes map[decl.Node]bool
}

func NewHost(index *Index) *Host {
	if index == nil {
		index = NewIndex()
	}
	return &Host{index: index, top: NewRootTypeScope(index), refs: map[*decl.NameExpr]binding{}, nodes: map[decl.Node]bool{}}
}

// Bind replaces the host's chunk.  Nodes of the previous chunk become stale.
// extra lists expressions evaluated after the chunk.
func (h *Host) Bind(chunk *decl.Chunk, declared map[*decl.NameDef]types.Ty, extra ...decl.Expr) {
	refs := map[*decl.NameExpr]binding{}
	nodes := map[decl.Node]bool{}
	top := NewRootTypeScope(h.index).Push()
	r := &scopeResolver{refs: refs, declared: declared}

	if chunk != nil {
		decl.Walk(chunk, func(n decl.Node) bool {
			nodes[n] = true
			return true
		})
		if chunk.Body != nil {
			r.stmts(chunk.Body.Statements, top)
		}
	}
	for _, e := range extra {
		if e == nil {
			continue
		}
		decl.Walk(e, func(n decl.Node) bool {
			nodes[n] = true
			return true
		})
		r.expr(e, top)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.refs, h.nodes, h.top = refs, nodes, top
}

// ResolveName returns the declared type of ref.  Locals declared without a
// type resolve to Unknown.
func (h *Host) ResolveName(ref *decl.NameExpr) (types.Ty, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	b, ok := h.refs[ref]
	if !ok {
		b.ty, b.found = h.top.Get(ref.Name)
	}
	if !b.found {
		return nil, false
	}
	if b.ty == nil {
		return types.Unknown, true
	}
	return b.ty, true
}

func (h *Host) FindClass(name string) (*types.Class, bool) {
	return h.index.FindClass(name)
}

// Fresh reports whether node belongs to the currently bound chunk.  It is
// the freshness check for an inference cache shared across rebinds.
func (h *Host) Fresh(node decl.Node, key string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.nodes[node]
}

// scopeResolver walks statements in evaluation order, resolving each name
// reference against the locals visible at that point.
type scopeResolver struct {
	refs     map[*decl.NameExpr]binding
	declared map[*decl.NameDef]types.Ty
}

func (r *scopeResolver) block(b *decl.Block, ts *TypeScope) {
	if b != nil {
		r.stmts(b.Statements, ts.Push())
	}
}

func (r *scopeResolver) stmts(stmts []decl.Stmt, ts *TypeScope) {
	for _, st := range stmts {
		switch s := st.(type) {
		case *decl.LocalStmt:
			// Initializers see the scope before the new names.
			r.exprs(s.Exprs, ts)
			for _, name := range s.Names {
				ts.Declare(name.Name, r.declared[name])
			}
		case *decl.AssignStmt:
			r.exprs(s.Targets, ts)
			r.exprs(s.Exprs, ts)
		case *decl.DoStmt:
			r.block(s.Body, ts)
		case *decl.IfStmt:
			r.expr(s.Cond, ts)
			r.block(s.Then, ts)
			r.block(s.Else, ts)
		case *decl.ExprStmt:
			r.expr(s.Expr, ts)
		}
	}
}

func (r *scopeResolver) exprs(exprs []decl.Expr, ts *TypeScope) {
	for _, e := range exprs {
		r.expr(e, ts)
	}
}

func (r *scopeResolver) expr(e decl.Expr, ts *TypeScope) {
	switch x := e.(type) {
	case *decl.NameExpr:
		t, found := ts.Get(x.Name)
		r.refs[x] = binding{ty: t, found: found}
	case *decl.BinaryExpr:
		r.exprs([]decl.Expr{x.Left, x.Right}, ts)
	case *decl.UnaryExpr:
		r.expr(x.Operand, ts)
	case *decl.ParenExpr:
		r.expr(x.Inner, ts)
	case *decl.CallExpr:
		r.expr(x.Callee, ts)
		r.exprs(x.Args, ts)
	case *decl.IndexExpr:
		r.expr(x.Prefix, ts)
		r.expr(x.Key, ts)
	case *decl.TableExpr:
		for _, f := range x.Fields {
			r.expr(f.Key, ts)
			r.expr(f.Value, ts)
		}
	case *decl.FunctionExpr:
		inner := ts.Push()
		for _, p := range x.Params {
			inner.Declare(p.Name, r.declared[p])
		}
		if x.Body != nil {
			r.stmts(x.Body.Statements, inner)
		}
	}
}
