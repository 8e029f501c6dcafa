package types

import (
	"fmt"
	"sort"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

type Array struct {
	Elem Ty
}

func NewArray(elem Ty) *Array { return &Array{Elem: elem} }

func (*Array) Kind() Kind { return KindArray }
func (a *Array) String() string {
	switch a.Elem.(type) {
	case *Union, *Signature:
		return fmt.Sprintf("(%s)[]", a.Elem)
	}
	return a.Elem.String() + "[]"
}
func (*Array) ty() {}

// Generic is a generic class (or `table`) applied to arguments.
type Generic struct {
	Base Ty
	Args []Ty
}

func NewGeneric(base Ty, args ...Ty) *Generic { return &Generic{Base: base, Args: args} }

func (*Generic) Kind() Kind       { return KindGeneric }
func (g *Generic) String() string { return fmt.Sprintf("%s<%s>", g.Base, renderList(g.Args)) }
func (*Generic) ty()              {}

// Union holds two or more structurally distinct members in display order.
// Build one with NewUnion.
type Union struct {
	members []Ty
}

func (*Union) Kind() Kind { return KindUnion }
func (u *Union) String() string {
	return strings.Join(gfn.Map(u.members, func(t Ty) string { return t.String() }), " | ")
}
func (*Union) ty() {}

func (u *Union) Members() []Ty { return u.members }

// Contains reports whether t is structurally one of the members.
func (u *Union) Contains(t Ty) bool {
	for _, m := range u.members {
		if Equal(m, t) {
			return true
		}
	}
	return false
}

// NewUnion flattens nested unions, drops void and duplicates, folds
// `true | false` into boolean and lets `any` absorb everything.  It returns
// the single remaining type when only one is left and Void when none are.
// Members are ordered by unionRank, then by rendering.
func NewUnion(tys ...Ty) Ty {
	var flat []Ty
	var add func(t Ty)
	add = func(t Ty) {
		if t == nil {
			panic("nil union member")
		}
		if u, ok := t.(*Union); ok {
			for _, m := range u.members {
				add(m)
			}
			return
		}
		flat = append(flat, t)
	}
	for _, t := range tys {
		add(t)
	}

	var members []Ty
	hasTrue, hasFalse, hasBool := false, false, false
	for _, t := range flat {
		switch t.Kind() {
		case KindUnknown:
			return Unknown
		case KindVoid:
			continue
		}
		if Equal(t, True) {
			hasTrue = true
		} else if Equal(t, False) {
			hasFalse = true
		} else if Equal(t, Boolean) {
			hasBool = true
		}
		dup := false
		for _, m := range members {
			if Equal(m, t) {
				dup = true
				break
			}
		}
		if !dup {
			members = append(members, t)
		}
	}
	if hasBool || (hasTrue && hasFalse) {
		kept := members[:0]
		for _, t := range members {
			if !Equal(t, True) && !Equal(t, False) {
				kept = append(kept, t)
			}
		}
		members = kept
		if !hasBool {
			members = append(members, Boolean)
		}
	}

	switch len(members) {
	case 0:
		return Void
	case 1:
		return members[0]
	}
	sort.SliceStable(members, func(i, j int) bool {
		ri, rj := unionRank(members[i]), unionRank(members[j])
		if ri != rj {
			return ri < rj
		}
		return members[i].String() < members[j].String()
	})
	return &Union{members: members}
}

// unionRank orders union members: named and structured types first, then
// literals, then nil, so `string | nil` and `Rect | 1` read as written.
func unionRank(t Ty) int {
	switch t.Kind() {
	case KindLiteral:
		return 1
	case KindNil:
		return 2
	}
	return 0
}

// Param is one parameter of a function signature.
type Param struct {
	Name string
	Ty   Ty
}

// Signature is a function type.  Colon marks signatures called with an
// implicit receiver (`obj:method()`); the receiver is not listed in Params.
type Signature struct {
	Generics []*GenericParam
	Params   []*Param
	Variadic Ty
	Return   Ty
	Colon    bool
}

func (*Signature) Kind() Kind { return KindSignature }
func (s *Signature) String() string {
	var parts []string
	if s.Colon {
		parts = append(parts, "self")
	}
	for _, p := range s.Params {
		parts = append(parts, fmt.Sprintf("%s: %s", p.Name, p.Ty))
	}
	if s.Variadic != nil {
		parts = append(parts, fmt.Sprintf("...: %s", s.Variadic))
	}
	out := "fun"
	if len(s.Generics) > 0 {
		out += "<" + renderParams(s.Generics) + ">"
	}
	out += "(" + strings.Join(parts, ", ") + ")"
	if s.Return != nil && s.Return.Kind() != KindVoid {
		out += ": " + s.Return.String()
	}
	return out
}
func (*Signature) ty() {}

// ReturnType returns Void for signatures without a declared return.
func (s *Signature) ReturnType() Ty {
	if s.Return == nil {
		return Void
	}
	return s.Return
}

// ParamTypes returns the declared parameter types in order.
func (s *Signature) ParamTypes() []Ty {
	return gfn.Map(s.Params, func(p *Param) Ty { return p.Ty })
}
