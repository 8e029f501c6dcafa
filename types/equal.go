package types

// Equal reports structural identity.  Classes compare by name; unions compare
// as sets; parameter names of signatures are ignored.
func Equal(a, b Ty) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *unknownTy, *nilTy, *voidTy:
		return true
	case *Primitive:
		return x.Prim == b.(*Primitive).Prim
	case *Literal:
		y := b.(*Literal)
		return x.Base == y.Base && x.Value == y.Value
	case *GenericParam:
		y := b.(*GenericParam)
		return x.Name == y.Name && equalOptional(x.Bound, y.Bound)
	case *Class:
		return x.Name == b.(*Class).Name
	case *Array:
		return Equal(x.Elem, b.(*Array).Elem)
	case *Generic:
		y := b.(*Generic)
		return Equal(x.Base, y.Base) && equalLists(x.Args, y.Args)
	case *Union:
		y := b.(*Union)
		if len(x.members) != len(y.members) {
			return false
		}
		for _, m := range x.members {
			if !y.Contains(m) {
				return false
			}
		}
		return true
	case *Signature:
		y := b.(*Signature)
		if x.Colon != y.Colon || len(x.Params) != len(y.Params) || len(x.Generics) != len(y.Generics) {
			return false
		}
		for i, p := range x.Params {
			if !Equal(p.Ty, y.Params[i].Ty) {
				return false
			}
		}
		for i, g := range x.Generics {
			if g.Name != y.Generics[i].Name {
				return false
			}
		}
		return equalOptional(x.Variadic, y.Variadic) && Equal(x.ReturnType(), y.ReturnType())
	}
	return false
}

func equalOptional(a, b Ty) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Equal(a, b)
}

func equalLists(a, b []Ty) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
