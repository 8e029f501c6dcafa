package types

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Substitutor rewrites the free generic parameters of a type.
type Substitutor interface {
	Name() string
	Substitute(sc *SearchContext, t Ty) (Ty, error)
}

// Substitute applies sub to t.  When nothing changes t itself is returned.
func Substitute(sc *SearchContext, t Ty, sub Substitutor) (Ty, error) {
	if sub == nil {
		return t, nil
	}
	return sub.Substitute(orBackground(sc), t)
}

// ParamSubstitutor maps generic parameter names to types.
type ParamSubstitutor struct {
	name     string
	bindings map[string]Ty
}

func NewParamSubstitutor(name string, bindings map[string]Ty) *ParamSubstitutor {
	copied := make(map[string]Ty, len(bindings))
	for k, v := range bindings {
		copied[k] = v
	}
	return &ParamSubstitutor{name: name, bindings: copied}
}

// WithArgs binds params to args positionally.  Parameters without an
// argument stay unbound.
func WithArgs(params []*GenericParam, args []Ty) *ParamSubstitutor {
	bindings := map[string]Ty{}
	for i, p := range params {
		if i < len(args) && args[i] != nil {
			bindings[p.Name] = args[i]
		}
	}
	return &ParamSubstitutor{name: "args", bindings: bindings}
}

func (s *ParamSubstitutor) Name() string { return s.name }

func (s *ParamSubstitutor) Lookup(name string) (Ty, bool) {
	t, ok := s.bindings[name]
	return t, ok
}

func (s *ParamSubstitutor) Len() int { return len(s.bindings) }

func (s *ParamSubstitutor) String() string {
	keys := make([]string, 0, len(s.bindings))
	for k := range s.bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, s.bindings[k])
	}
	return fmt.Sprintf("%s{%s}", s.name, strings.Join(parts, ", "))
}

func (s *ParamSubstitutor) Substitute(sc *SearchContext, t Ty) (Ty, error) {
	if len(s.bindings) == 0 {
		return t, nil
	}
	w := &substWalker{sc: sc}
	return w.walk(t, s.bindings)
}

// ChainSubstitutor applies its substitutors left to right.
type ChainSubstitutor []Substitutor

func Chain(subs ...Substitutor) ChainSubstitutor { return ChainSubstitutor(subs) }

func (c ChainSubstitutor) Name() string { return "chain" }

func (c ChainSubstitutor) Substitute(sc *SearchContext, t Ty) (out Ty, err error) {
	out = t
	for _, s := range c {
		if s == nil {
			continue
		}
		if out, err = s.Substitute(sc, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type substWalker struct {
	sc *SearchContext
	// inBound holds parameters whose bound is being rewritten, so a bound
	// that mentions its own parameter does not recurse forever.
	inBound map[string]bool
}

func (w *substWalker) walk(t Ty, bindings map[string]Ty) (Ty, error) {
	if err := w.sc.step(); err != nil {
		return nil, err
	}
	if t == nil || len(bindings) == 0 {
		return t, nil
	}
	switch v := t.(type) {
	case *GenericParam:
		if replacement, ok := bindings[v.Name]; ok {
			return replacement, nil
		}
		return w.walkBound(v, bindings)
	case *Array:
		elem, err := w.walk(v.Elem, bindings)
		if err != nil || elem == v.Elem {
			return v, err
		}
		return &Array{Elem: elem}, nil
	case *Generic:
		base, err := w.walk(v.Base, bindings)
		if err != nil {
			return nil, err
		}
		args, changed, err := w.walkList(v.Args, bindings)
		if err != nil {
			return nil, err
		}
		if !changed && base == v.Base {
			return v, nil
		}
		return &Generic{Base: base, Args: args}, nil
	case *Union:
		members, changed, err := w.walkList(v.members, bindings)
		if err != nil || !changed {
			return v, err
		}
		return NewUnion(members...), nil
	case *Signature:
		return w.walkSignature(v, bindings)
	}
	// Classes are declarations; their own parameters are bound inside them.
	return t, nil
}

// walkBound rewrites the bound of a parameter that is not itself replaced.
func (w *substWalker) walkBound(p *GenericParam, bindings map[string]Ty) (*GenericParam, error) {
	if p.Bound == nil || w.inBound[p.Name] {
		return p, nil
	}
	if w.inBound == nil {
		w.inBound = map[string]bool{}
	}
	w.inBound[p.Name] = true
	bound, err := w.walk(p.Bound, bindings)
	delete(w.inBound, p.Name)
	if err != nil || bound == p.Bound {
		return p, err
	}
	return &GenericParam{Name: p.Name, Bound: bound}, nil
}

func (w *substWalker) walkList(tys []Ty, bindings map[string]Ty) ([]Ty, bool, error) {
	var out []Ty
	for i, t := range tys {
		nt, err := w.walk(t, bindings)
		if err != nil {
			return nil, false, err
		}
		if nt != t && out == nil {
			out = make([]Ty, len(tys))
			copy(out, tys[:i])
		}
		if out != nil {
			out[i] = nt
		}
	}
	if out == nil {
		return tys, false, nil
	}
	return out, true, nil
}

func (w *substWalker) walkSignature(sig *Signature, bindings map[string]Ty) (Ty, error) {
	if len(sig.Generics) > 0 {
		inner := make(map[string]Ty, len(bindings))
		for k, v := range bindings {
			inner[k] = v
		}
		for _, g := range sig.Generics {
			delete(inner, g.Name)
		}
		free := map[string]bool{}
		collectFreeParams(sig, nil, free)
		for k := range inner {
			if !free[k] {
				delete(inner, k)
			}
		}
		if len(inner) == 0 {
			return sig, nil
		}
		renamed, err := w.avoidCapture(sig, inner)
		if err != nil {
			return nil, err
		}
		sig, bindings = renamed, inner
	}

	changed := false
	generics := sig.Generics
	for i, g := range sig.Generics {
		ng, err := w.walkBound(g, bindings)
		if err != nil {
			return nil, err
		}
		if ng != g {
			if !changed {
				generics = slices.Clone(sig.Generics)
			}
			generics[i] = ng
			changed = true
		}
	}
	params := make([]*Param, len(sig.Params))
	for i, p := range sig.Params {
		pt, err := w.walk(p.Ty, bindings)
		if err != nil {
			return nil, err
		}
		params[i] = p
		if pt != p.Ty {
			params[i] = &Param{Name: p.Name, Ty: pt}
			changed = true
		}
	}
	variadic, err := w.walk(sig.Variadic, bindings)
	if err != nil {
		return nil, err
	}
	ret, err := w.walk(sig.Return, bindings)
	if err != nil {
		return nil, err
	}
	if !changed && variadic == sig.Variadic && ret == sig.Return {
		return sig, nil
	}
	return &Signature{Generics: generics, Params: params, Variadic: variadic, Return: ret, Colon: sig.Colon}, nil
}

// avoidCapture renames generic parameters declared by sig whose names occur
// free in a replacement type, so the replacement keeps referring to the
// outer parameter.  Fresh names avoid every parameter name already used in
// sig or in the replacements.
func (w *substWalker) avoidCapture(sig *Signature, bindings map[string]Ty) (*Signature, error) {
	free := map[string]bool{}
	for _, t := range bindings {
		collectFreeParams(t, nil, free)
	}
	taken := map[string]bool{}
	for name := range free {
		taken[name] = true
	}
	for name := range bindings {
		taken[name] = true
	}
	collectParamNames(sig, taken)

	renames := map[string]Ty{}
	generics := make([]*GenericParam, len(sig.Generics))
	for i, g := range sig.Generics {
		generics[i] = g
		if !free[g.Name] {
			continue
		}
		name := g.Name
		for taken[name] {
			name += "'"
		}
		taken[name] = true
		np := &GenericParam{Name: name, Bound: g.Bound}
		renames[g.Name] = np
		generics[i] = np
	}
	if len(renames) == 0 {
		return sig, nil
	}
	// Bounds may mention renamed parameters, their own included.
	for i, g := range generics {
		if g.Bound == nil {
			continue
		}
		bound, err := w.walk(g.Bound, renames)
		if err != nil {
			return nil, err
		}
		if bound == g.Bound {
			continue
		}
		if g != sig.Generics[i] {
			g.Bound = bound
		} else {
			generics[i] = &GenericParam{Name: g.Name, Bound: bound}
		}
	}
	body := &Signature{Params: sig.Params, Variadic: sig.Variadic, Return: sig.Return, Colon: sig.Colon}
	out, err := w.walkSignature(body, renames)
	if err != nil {
		return nil, err
	}
	renamed := out.(*Signature)
	return &Signature{Generics: generics, Params: renamed.Params, Variadic: renamed.Variadic, Return: renamed.Return, Colon: renamed.Colon}, nil
}

// FreeParams returns the names of generic parameters that occur in t
// without being declared by an enclosing signature.
func FreeParams(t Ty) []string {
	free := map[string]bool{}
	collectFreeParams(t, nil, free)
	out := make([]string, 0, len(free))
	for k := range free {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func collectFreeParams(t Ty, bound map[string]bool, free map[string]bool) {
	switch v := t.(type) {
	case *GenericParam:
		if bound[v.Name] || free[v.Name] {
			return
		}
		free[v.Name] = true
		if v.Bound != nil {
			collectFreeParams(v.Bound, bound, free)
		}
	case *Array:
		collectFreeParams(v.Elem, bound, free)
	case *Generic:
		collectFreeParams(v.Base, bound, free)
		for _, a := range v.Args {
			collectFreeParams(a, bound, free)
		}
	case *Union:
		for _, m := range v.members {
			collectFreeParams(m, bound, free)
		}
	case *Signature:
		inner := bound
		if len(v.Generics) > 0 {
			inner = map[string]bool{}
			for k := range bound {
				inner[k] = true
			}
			for _, g := range v.Generics {
				inner[g.Name] = true
			}
		}
		for _, g := range v.Generics {
			if g.Bound != nil {
				collectFreeParams(g.Bound, inner, free)
			}
		}
		for _, p := range v.Params {
			collectFreeParams(p.Ty, inner, free)
		}
		if v.Variadic != nil {
			collectFreeParams(v.Variadic, inner, free)
		}
		if v.Return != nil {
			collectFreeParams(v.Return, inner, free)
		}
	}
}

// collectParamNames adds the name of every generic parameter occurring in t,
// free or declared, to names.
func collectParamNames(t Ty, names map[string]bool) {
	switch v := t.(type) {
	case *GenericParam:
		if names[v.Name] {
			return
		}
		names[v.Name] = true
		if v.Bound != nil {
			collectParamNames(v.Bound, names)
		}
	case *Array:
		collectParamNames(v.Elem, names)
	case *Generic:
		collectParamNames(v.Base, names)
		for _, a := range v.Args {
			collectParamNames(a, names)
		}
	case *Union:
		for _, m := range v.members {
			collectParamNames(m, names)
		}
	case *Signature:
		for _, g := range v.Generics {
			collectParamNames(g, names)
		}
		for _, p := range v.Params {
			collectParamNames(p.Ty, names)
		}
		if v.Variadic != nil {
			collectParamNames(v.Variadic, names)
		}
		if v.Return != nil {
			collectParamNames(v.Return, names)
		}
	}
}
