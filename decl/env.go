package decl

import (
	"fmt"
	"sort"
)

// Env maps names to values with lexical nesting.  A name set in an inner
// layer shadows the same name in every outer layer, even when its value is
// the zero value.
type Env[T any] struct {
	vars  map[string]T
	outer *Env[T]
}

// NewEnv creates a layer nested within outer, or a top level layer when
// outer is nil.
func NewEnv[T any](outer *Env[T]) *Env[T] {
	return &Env[T]{vars: map[string]T{}, outer: outer}
}

// Get looks name up from the innermost layer outwards.
func (e *Env[T]) Get(name string) (out T, found bool) {
	for env := e; env != nil; env = env.outer {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return out, false
}

// Has reports whether name is bound in this layer only.
func (e *Env[T]) Has(name string) bool {
	_, ok := e.vars[name]
	return ok
}

func (e *Env[T]) Set(name string, value T) { e.vars[name] = value }
func (e *Env[T]) Push() *Env[T]            { return NewEnv(e) }
func (e *Env[T]) Outer() *Env[T]           { return e.outer }

// Depth is 0 for a top level layer.
func (e *Env[T]) Depth() int {
	d := 0
	for env := e.outer; env != nil; env = env.outer {
		d++
	}
	return d
}

// Keys returns the names bound in this layer, sorted.
func (e *Env[T]) Keys() []string {
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *Env[T]) String() string {
	return fmt.Sprintf("Env%v@%d", e.Keys(), e.Depth())
}
