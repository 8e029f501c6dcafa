package loader

import (
	"github.com/panyam/luaty/decl"
	"github.com/panyam/luaty/types"
)

// TypeScope manages declared types for names within a scope.
// Lexical locals live in an Env; globals and classes come from the Index.
// A local declared without a type is stored as nil and still shadows
// outer names.
type TypeScope struct {
	env   *decl.Env[types.Ty]
	index *Index
}

// NewRootTypeScope creates a top-level scope over the given index.
func NewRootTypeScope(index *Index) *TypeScope {
	if index == nil {
		index = NewIndex()
	}
	return &TypeScope{env: decl.NewEnv[types.Ty](nil), index: index}
}

// Push creates a new nested lexical scope (e.g., for a block or function).
func (ts *TypeScope) Push() *TypeScope {
	return &TypeScope{env: ts.env.Push(), index: ts.index}
}

// Declare binds a local in this scope.  t may be nil for untyped locals.
func (ts *TypeScope) Declare(name string, t types.Ty) {
	ts.env.Set(name, t)
}

// Get retrieves the declared type of a name.
// Lookup Order:
// 1. Lexically scoped locals, innermost first.
// 2. Declared globals.
// 3. Classes, whose names refer to the class table.
// found reports whether the name is bound at all; t is nil for untyped locals.
func (ts *TypeScope) Get(name string) (t types.Ty, found bool) {
	if t, ok := ts.env.Get(name); ok {
		return t, true
	}
	if t, ok := ts.index.Global(name); ok {
		return t, true
	}
	if c, ok := ts.index.FindClass(name); ok {
		return c, true
	}
	return nil, false
}
