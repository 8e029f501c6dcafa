package types

// GenericAnalyzer infers bindings for generic parameters by matching
// parameter types against argument types.
type GenericAnalyzer struct {
	sc       *SearchContext
	params   map[string]*GenericParam
	order    []*GenericParam
	bindings map[string]Ty
}

func NewGenericAnalyzer(sc *SearchContext, params []*GenericParam) *GenericAnalyzer {
	a := &GenericAnalyzer{sc: orBackground(sc), params: map[string]*GenericParam{}, order: params, bindings: map[string]Ty{}}
	for _, p := range params {
		a.params[p.Name] = p
	}
	return a
}

// Analyze folds one (parameter type, argument type) pair into the bindings.
func (a *GenericAnalyzer) Analyze(paramTy, argTy Ty) error {
	return a.walk(paramTy, argTy)
}

// Substitutor returns the inferred bindings.  Parameters that were never
// matched bind to their bound, or to Unknown when unbounded.
func (a *GenericAnalyzer) Substitutor() *ParamSubstitutor {
	out := map[string]Ty{}
	for _, p := range a.order {
		if t, ok := a.bindings[p.Name]; ok {
			out[p.Name] = t
		} else if p.Bound != nil {
			out[p.Name] = p.Bound
		} else {
			out[p.Name] = Unknown
		}
	}
	return NewParamSubstitutor("inferred", out)
}

// AnalyzeGenerics infers bindings for params from positional parameter and argument types.
func AnalyzeGenerics(sc *SearchContext, params []*GenericParam, paramTys, argTys []Ty) (*ParamSubstitutor, error) {
	a := NewGenericAnalyzer(sc, params)
	for i, pt := range paramTys {
		if i >= len(argTys) {
			break
		}
		if err := a.Analyze(pt, argTys[i]); err != nil {
			return nil, err
		}
	}
	return a.Substitutor(), nil
}

func (a *GenericAnalyzer) walk(paramTy, argTy Ty) error {
	if err := a.sc.step(); err != nil {
		return err
	}
	if paramTy == nil || argTy == nil || IsUnknown(argTy) {
		return nil
	}
	if u, ok := argTy.(*Union); ok {
		if _, isParam := paramTy.(*GenericParam); !isParam {
			for _, m := range u.members {
				if err := a.walk(paramTy, m); err != nil {
					return err
				}
			}
			return nil
		}
	}

	switch p := paramTy.(type) {
	case *GenericParam:
		if _, ok := a.params[p.Name]; ok {
			return a.bind(p.Name, argTy)
		}
	case *Array:
		switch arg := argTy.(type) {
		case *Array:
			return a.walk(p.Elem, arg.Elem)
		case *Generic:
			if Equal(arg.Base, Table) && len(arg.Args) == 2 {
				return a.walk(p.Elem, arg.Args[1])
			}
		}
	case *Generic:
		return a.walkGeneric(p, argTy)
	case *Union:
		for _, m := range p.members {
			if err := a.walk(m, argTy); err != nil {
				return err
			}
		}
	case *Signature:
		if arg, ok := argTy.(*Signature); ok {
			for i, pp := range p.Params {
				if i < len(arg.Params) {
					if err := a.walk(pp.Ty, arg.Params[i].Ty); err != nil {
						return err
					}
				}
			}
			return a.walk(p.ReturnType(), arg.ReturnType())
		}
	}
	return nil
}

// walkGeneric matches List<T> against List<number>, or against a subclass
// whose supertypes eventually instantiate List.
func (a *GenericAnalyzer) walkGeneric(p *Generic, argTy Ty) error {
	seen := map[string]bool{}
	queue := []Ty{argTy}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur.String()] {
			continue
		}
		seen[cur.String()] = true
		if g, ok := cur.(*Generic); ok && Equal(g.Base, p.Base) {
			for i, pa := range p.Args {
				if i < len(g.Args) {
					if err := a.walk(pa, g.Args[i]); err != nil {
						return err
					}
				}
			}
			return nil
		}
		if arr, ok := cur.(*Array); ok && Equal(p.Base, Table) && len(p.Args) == 2 {
			if err := a.walk(p.Args[0], Number); err != nil {
				return err
			}
			return a.walk(p.Args[1], arr.Elem)
		}
		supers, err := Supertypes(a.sc, cur)
		if err != nil {
			return err
		}
		queue = append(queue, supers...)
	}
	return nil
}

// bind merges a new candidate binding with an existing one, keeping the wider
// of the two or their union when neither accepts the other.
func (a *GenericAnalyzer) bind(name string, t Ty) error {
	existing, ok := a.bindings[name]
	if !ok {
		a.bindings[name] = t
		return nil
	}
	if v, err := ContravariantOf(a.sc, existing, t, StrictUnknown); err != nil {
		return err
	} else if v == Yes {
		return nil
	}
	if v, err := ContravariantOf(a.sc, t, existing, StrictUnknown); err != nil {
		return err
	} else if v == Yes {
		a.bindings[name] = t
		return nil
	}
	a.bindings[name] = NewUnion(existing, t)
	return nil
}
