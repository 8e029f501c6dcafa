package types

import (
	"math"
	"strings"
)

// Variance is the three-valued answer to "is candidate usable where required is expected".
type Variance int

const (
	No Variance = iota
	Yes
	Indeterminate
)

func (v Variance) String() string {
	switch v {
	case Yes:
		return "YES"
	case No:
		return "NO"
	}
	return "INDETERMINATE"
}

// And combines answers that must all hold: any No wins, then any Indeterminate.
func (v Variance) And(o Variance) Variance {
	if v == No || o == No {
		return No
	}
	if v == Indeterminate || o == Indeterminate {
		return Indeterminate
	}
	return Yes
}

// Or combines alternatives: any Yes wins, then any Indeterminate.
func (v Variance) Or(o Variance) Variance {
	if v == Yes || o == Yes {
		return Yes
	}
	if v == Indeterminate || o == Indeterminate {
		return Indeterminate
	}
	return No
}

func ParseVariance(s string) (Variance, bool) {
	switch strings.ToUpper(s) {
	case "YES", "TRUE":
		return Yes, true
	case "NO", "FALSE":
		return No, true
	case "INDETERMINATE", "UNSURE":
		return Indeterminate, true
	}
	return No, false
}

// Mode flags tune how strict a comparison is.
type Mode uint

const (
	// StrictUnknown makes unknown types and unresolved generic parameters
	// indeterminate instead of accepted.
	StrictUnknown Mode = 1 << iota
	// StrictNil stops nil from being accepted by every type.
	StrictNil
	// AbstractParams compares generic parameters through their bounds even
	// under StrictUnknown, and lets generic arguments vary when the
	// required argument is a parameter.
	AbstractParams
	// WidenTables lets array elements and generic arguments vary covariantly.
	WidenTables
	// NonStructural compares shape classes nominally.
	NonStructural
)

func (m Mode) Has(flag Mode) bool { return m&flag != 0 }

var modeNames = []struct {
	flag Mode
	name string
}{
	{StrictUnknown, "strict_unknown"},
	{StrictNil, "strict_nil"},
	{AbstractParams, "abstract_params"},
	{WidenTables, "widen_tables"},
	{NonStructural, "non_structural"},
}

func (m Mode) String() string {
	var parts []string
	for _, n := range modeNames {
		if m.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "default"
	}
	return strings.Join(parts, "|")
}

// ParseMode maps a flag name to its Mode bit.
func ParseMode(name string) (Mode, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, n := range modeNames {
		if n.name == name {
			return n.flag, true
		}
	}
	return 0, false
}

// ContravariantOf reports whether a value of type candidate may be used where
// required is expected.  Cyclic class hierarchies terminate: a pair of types
// met again while it is still being compared answers No.
func ContravariantOf(sc *SearchContext, required, candidate Ty, mode Mode) (Variance, error) {
	v := &varianceCheck{
		sc:     orBackground(sc),
		mode:   mode,
		memo:   map[pairKey]Variance{},
		active: map[pairKey]*activePair{},
		cycle:  noCycle,
	}
	return v.check(required, candidate)
}

type pairKey struct {
	required  string
	candidate string
}

func keyOf(required, candidate Ty) pairKey {
	return pairKey{typeKey(required), typeKey(candidate)}
}

// activePair is a pair still being compared.  A nominal revisit means a
// cycle in the hierarchy and answers No; a structural revisit is assumed to
// hold so recursive shapes can match.
type activePair struct {
	depth   int
	assumed bool
}

const noCycle = math.MaxInt

type varianceCheck struct {
	sc     *SearchContext
	mode   Mode
	memo   map[pairKey]Variance
	active map[pairKey]*activePair
	// cycle is the shallowest active depth revisited below the pair being
	// compared.  Answers that lean on a shallower pair are not memoized.
	cycle int
}

func (v *varianceCheck) strict() bool {
	return v.mode.Has(StrictUnknown)
}

func (v *varianceCheck) check(required, candidate Ty) (Variance, error) {
	if err := v.sc.step(); err != nil {
		return No, err
	}
	if IsUnknown(required) || IsUnknown(candidate) {
		if v.strict() {
			return Indeterminate, nil
		}
		return Yes, nil
	}
	if Equal(required, candidate) {
		return Yes, nil
	}

	// A union candidate must fit as a whole.
	if u, ok := candidate.(*Union); ok {
		result := Yes
		for _, m := range u.members {
			r, err := v.check(required, m)
			if err != nil {
				return No, err
			}
			if result = result.And(r); result == No {
				return No, nil
			}
		}
		return result, nil
	}
	if u, ok := required.(*Union); ok {
		result := No
		for _, m := range u.members {
			r, err := v.check(m, candidate)
			if err != nil {
				return No, err
			}
			if result = result.Or(r); result == Yes {
				return Yes, nil
			}
		}
		return result, nil
	}

	if candidate.Kind() == KindNil {
		if v.mode.Has(StrictNil) {
			return No, nil
		}
		return Yes, nil
	}

	if p, ok := required.(*GenericParam); ok {
		if v.strict() && !v.mode.Has(AbstractParams) {
			return Indeterminate, nil
		}
		if p.Bound == nil {
			return Yes, nil
		}
		return v.check(p.Bound, candidate)
	}
	if p, ok := candidate.(*GenericParam); ok {
		if v.strict() && !v.mode.Has(AbstractParams) {
			return Indeterminate, nil
		}
		if p.Bound == nil {
			if v.strict() {
				return Indeterminate, nil
			}
			return Yes, nil
		}
		return v.check(required, p.Bound)
	}

	key := keyOf(required, candidate)
	if r, ok := v.memo[key]; ok {
		return r, nil
	}
	if a, ok := v.active[key]; ok {
		v.cycle = min(v.cycle, a.depth)
		if a.assumed {
			return Yes, nil
		}
		return No, nil
	}

	depth := len(v.active)
	v.active[key] = &activePair{depth: depth}
	outer := v.cycle
	v.cycle = noCycle
	result, err := v.compare(required, candidate)
	delete(v.active, key)
	hit := v.cycle
	if hit >= depth {
		hit = noCycle
	}
	v.cycle = min(outer, hit)
	if err != nil {
		return No, err
	}
	if hit == noCycle {
		v.memo[key] = result
	}
	return result, nil
}

func (v *varianceCheck) compare(required, candidate Ty) (Variance, error) {
	var result Variance
	var err error
	switch r := required.(type) {
	case *Primitive:
		result, err = v.primitive(r, candidate)
	case *Array:
		result, err = v.array(r, candidate)
	case *Generic:
		result, err = v.generic(r, candidate)
	case *Class:
		result, err = v.class(r, candidate)
	case *Signature:
		result, err = v.signature(r, candidate)
	default:
		// Literals, nil and void only accept themselves.
		result = No
	}
	if err != nil || result != No {
		return result, err
	}
	return v.viaSupers(required, candidate)
}

// viaSupers retries the comparison against the candidate's supertypes.
func (v *varianceCheck) viaSupers(required, candidate Ty) (Variance, error) {
	supers, err := Supertypes(v.sc, candidate)
	if err != nil {
		return No, err
	}
	result := No
	for _, s := range supers {
		r, err := v.check(required, s)
		if err != nil {
			return No, err
		}
		if result = result.Or(r); result == Yes {
			return Yes, nil
		}
	}
	return result, nil
}

func (v *varianceCheck) primitive(r *Primitive, candidate Ty) (Variance, error) {
	switch c := candidate.(type) {
	case *Literal:
		if c.Base == r.Prim {
			return Yes, nil
		}
	case *Array:
		if r.Prim == PrimTable {
			return Yes, nil
		}
	case *Generic:
		if r.Prim == PrimTable {
			if Equal(c.Base, Table) || !v.strict() {
				return Yes, nil
			}
			return Indeterminate, nil
		}
	case *Class:
		if r.Prim == PrimTable && !v.strict() {
			return Yes, nil
		}
	case *Signature:
		if r.Prim == PrimFunction {
			return Yes, nil
		}
	}
	return No, nil
}

// invariant compares two generic arguments or array elements.
func (v *varianceCheck) invariant(required, candidate Ty) (Variance, error) {
	if Equal(required, candidate) {
		return Yes, nil
	}
	if v.mode.Has(WidenTables) {
		return v.check(required, candidate)
	}
	if _, ok := required.(*GenericParam); ok && v.mode.Has(AbstractParams) {
		return v.check(required, candidate)
	}
	if IsUnknown(required) || IsUnknown(candidate) {
		if v.strict() {
			return Indeterminate, nil
		}
		return Yes, nil
	}
	_, rp := required.(*GenericParam)
	_, cp := candidate.(*GenericParam)
	if rp || cp {
		if v.strict() {
			return Indeterminate, nil
		}
		return Yes, nil
	}
	return No, nil
}

func (v *varianceCheck) array(r *Array, candidate Ty) (Variance, error) {
	switch c := candidate.(type) {
	case *Array:
		return v.invariant(r.Elem, c.Elem)
	case *Generic:
		if Equal(c.Base, Table) && len(c.Args) == 2 {
			k, err := v.invariant(Number, c.Args[0])
			if err != nil || k == No {
				return No, err
			}
			e, err := v.invariant(r.Elem, c.Args[1])
			return k.And(e), err
		}
	}
	return No, nil
}

func (v *varianceCheck) generic(r *Generic, candidate Ty) (Variance, error) {
	switch c := candidate.(type) {
	case *Generic:
		if !Equal(r.Base, c.Base) || len(r.Args) != len(c.Args) {
			return No, nil
		}
		result := Yes
		for i := range r.Args {
			a, err := v.invariant(r.Args[i], c.Args[i])
			if err != nil {
				return No, err
			}
			if result = result.And(a); result == No {
				return No, nil
			}
		}
		return result, nil
	case *Array:
		if Equal(r.Base, Table) && len(r.Args) == 2 {
			k, err := v.invariant(r.Args[0], Number)
			if err != nil || k == No {
				return No, err
			}
			e, err := v.invariant(r.Args[1], c.Elem)
			return k.And(e), err
		}
	case *Class:
		// A raw class where an instantiation is required.
		if Equal(r.Base, c) {
			if v.strict() {
				return Indeterminate, nil
			}
			return Yes, nil
		}
	}
	return No, nil
}

func (v *varianceCheck) class(r *Class, candidate Ty) (Variance, error) {
	if g, ok := candidate.(*Generic); ok && Equal(r, g.Base) {
		return Yes, nil
	}
	if r.Shape && !v.mode.Has(NonStructural) {
		switch candidate.(type) {
		case *Class, *Generic:
			return v.shape(r, candidate)
		}
	}
	return No, nil
}

// shape compares every member of a shape class against the candidate's
// member with the same key.  Missing members are fine when nil is acceptable.
func (v *varianceCheck) shape(r *Class, candidate Ty) (Variance, error) {
	if a, ok := v.active[keyOf(r, candidate)]; ok {
		a.assumed = true
	}
	result := Yes
	for _, m := range r.Members {
		if err := v.sc.step(); err != nil {
			return No, err
		}
		found, err := findIndexer(v.sc, candidate, m.IndexType(), true)
		if err != nil {
			return No, err
		}
		var mv Variance
		if found == nil {
			if admitsNil(m.Ty) {
				continue
			}
			return No, nil
		}
		mv, err = v.check(m.Ty, found.Ty)
		if err != nil {
			return No, err
		}
		if result = result.And(mv); result == No {
			return No, nil
		}
	}
	return result, nil
}

func (v *varianceCheck) signature(r *Signature, candidate Ty) (Variance, error) {
	switch c := candidate.(type) {
	case *Primitive:
		if c.Prim == PrimFunction {
			if v.strict() {
				return Indeterminate, nil
			}
			return Yes, nil
		}
	case *Signature:
		if r.Colon != c.Colon {
			return No, nil
		}
		result := Yes
		for i, cp := range c.Params {
			var pv Variance
			if i >= len(r.Params) {
				var err error
				if r.Variadic == nil {
					if admitsNil(cp.Ty) {
						continue
					}
					return No, nil
				}
				// Parameters are contravariant.
				if pv, err = v.check(cp.Ty, r.Variadic); err != nil {
					return No, err
				}
			} else {
				var err error
				if pv, err = v.check(cp.Ty, r.Params[i].Ty); err != nil {
					return No, err
				}
			}
			if result = result.And(pv); result == No {
				return No, nil
			}
		}
		if r.Variadic != nil {
			if c.Variadic == nil {
				return No, nil
			}
			vv, err := v.check(c.Variadic, r.Variadic)
			if err != nil {
				return No, err
			}
			if result = result.And(vv); result == No {
				return No, nil
			}
		}
		if r.ReturnType().Kind() == KindVoid {
			return result, nil
		}
		rv, err := v.check(r.ReturnType(), c.ReturnType())
		if err != nil {
			return No, err
		}
		return result.And(rv), nil
	}
	return No, nil
}

func admitsNil(t Ty) bool {
	switch v := t.(type) {
	case *nilTy, *unknownTy:
		return true
	case *Union:
		for _, m := range v.members {
			if admitsNil(m) {
				return true
			}
		}
	}
	return false
}

// typeKey renders t for memo keys.  Generic parameters carry their bounds so
// that same-named parameters with different bounds stay apart.
func typeKey(t Ty) string {
	var b strings.Builder
	writeKey(&b, t)
	return b.String()
}

func writeKey(b *strings.Builder, t Ty) {
	writeList := func(tys []Ty, sep string) {
		for i, e := range tys {
			if i > 0 {
				b.WriteString(sep)
			}
			writeKey(b, e)
		}
	}
	switch x := t.(type) {
	case nil:
		b.WriteString("<nil>")
	case *GenericParam:
		b.WriteString(x.Declaration())
	case *Array:
		b.WriteString("(")
		writeKey(b, x.Elem)
		b.WriteString(")[]")
	case *Generic:
		writeKey(b, x.Base)
		b.WriteString("<")
		writeList(x.Args, ", ")
		b.WriteString(">")
	case *Union:
		b.WriteString("(")
		writeList(x.members, " | ")
		b.WriteString(")")
	case *Signature:
		if x.Colon {
			b.WriteString("self ")
		}
		b.WriteString("fun<")
		b.WriteString(renderParams(x.Generics))
		b.WriteString(">(")
		writeList(x.ParamTypes(), ", ")
		if x.Variadic != nil {
			b.WriteString(", ...")
			writeKey(b, x.Variadic)
		}
		b.WriteString("): ")
		writeKey(b, x.ReturnType())
	default:
		b.WriteString(t.String())
	}
}
