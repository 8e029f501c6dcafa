package types

// ResolvedMember is a member seen through a particular owner type, with the
// owner's generic arguments applied to its type.
type ResolvedMember struct {
	Member *Member
	Ty     Ty
}

// Supertypes returns the direct supertypes of t with generic arguments applied.
func Supertypes(sc *SearchContext, t Ty) ([]Ty, error) {
	sc = orBackground(sc)
	switch v := t.(type) {
	case *Class:
		return v.Supers, nil
	case *Generic:
		c, ok := v.Base.(*Class)
		if !ok || len(c.Supers) == 0 {
			return nil, nil
		}
		sub := WithArgs(c.Params, v.Args)
		out := make([]Ty, 0, len(c.Supers))
		for _, s := range c.Supers {
			st, err := Substitute(sc, s, sub)
			if err != nil {
				return nil, err
			}
			out = append(out, st)
		}
		return out, nil
	case *Literal:
		return []Ty{PrimitiveOf(v.Base)}, nil
	}
	return nil, nil
}

// FindIndexer finds the member of owner that answers to indexTy.  Own members
// are scanned in declaration order before supertypes.  A member whose key
// equals indexTy always wins, the first one found; unless exact is set, the
// narrowest key accepting indexTy is used when no key is equal.
func FindIndexer(sc *SearchContext, owner Ty, indexTy Ty, exact bool) (*Member, error) {
	r, err := findIndexer(orBackground(sc), owner, indexTy, exact)
	if err != nil || r == nil {
		return nil, err
	}
	return r.Member, nil
}

// IndexerType is FindIndexer followed by applying the owner's generic
// arguments to the member's type.  For unions the member types of every
// alternative are joined.
func IndexerType(sc *SearchContext, owner Ty, indexTy Ty, exact bool) (Ty, bool, error) {
	sc = orBackground(sc)
	if u, ok := owner.(*Union); ok {
		var found []Ty
		for _, m := range u.members {
			t, ok, err := IndexerType(sc, m, indexTy, exact)
			if err != nil {
				return nil, false, err
			}
			if ok {
				found = append(found, t)
			}
		}
		if len(found) == 0 {
			return nil, false, nil
		}
		return NewUnion(found...), true, nil
	}
	r, err := findIndexer(sc, owner, indexTy, exact)
	if err != nil || r == nil {
		return nil, false, err
	}
	return r.Ty, true, nil
}

// FindMember finds a named field.
func FindMember(sc *SearchContext, owner Ty, name string) (*Member, error) {
	return FindIndexer(sc, owner, StringLiteral(name), true)
}

// MemberType returns the type of `owner.name`, falling back to the narrowest
// indexer accepting the name.
func MemberType(sc *SearchContext, owner Ty, name string) (Ty, bool, error) {
	return IndexerType(sc, owner, StringLiteral(name), false)
}

// findIndexer looks for an exact key through the whole hierarchy before
// falling back to the narrowest accepting key, so an inherited field is not
// hidden by a broader indexer declared lower down.
func findIndexer(sc *SearchContext, owner Ty, indexTy Ty, exact bool) (*ResolvedMember, error) {
	s := &memberSearch{sc: sc, indexTy: indexTy, exact: true, visited: map[string]bool{}}
	r, err := s.in(owner)
	if err != nil || r != nil || exact {
		return r, err
	}
	s = &memberSearch{sc: sc, indexTy: indexTy, visited: map[string]bool{}}
	return s.in(owner)
}

type memberSearch struct {
	sc      *SearchContext
	indexTy Ty
	exact   bool
	visited map[string]bool
}

func (s *memberSearch) in(owner Ty) (*ResolvedMember, error) {
	if err := s.sc.step(); err != nil {
		return nil, err
	}
	switch o := owner.(type) {
	case *Class:
		return s.inClass(o, nil)
	case *Generic:
		if c, ok := o.Base.(*Class); ok {
			return s.inClass(c, WithArgs(c.Params, o.Args))
		}
		if Equal(o.Base, Table) && len(o.Args) == 2 {
			return s.synthesized(&Member{Name: "[" + o.Args[0].String() + "]", IndexTy: o.Args[0], Ty: o.Args[1]})
		}
	case *Array:
		return s.synthesized(&Member{Name: "[number]", IndexTy: Number, Ty: o.Elem})
	case *Union:
		if len(o.members) > 0 {
			return s.in(o.members[0])
		}
	}
	return nil, nil
}

func (s *memberSearch) synthesized(m *Member) (*ResolvedMember, error) {
	found, err := narrowest(s.sc, []*Member{m}, s.indexTy, s.exact)
	if err != nil || found == nil {
		return nil, err
	}
	return &ResolvedMember{Member: found, Ty: found.Ty}, nil
}

func (s *memberSearch) inClass(c *Class, sub Substitutor) (*ResolvedMember, error) {
	if s.visited[c.Name] {
		return nil, nil
	}
	s.visited[c.Name] = true

	found, err := narrowest(s.sc, c.Members, s.indexTy, s.exact)
	if err != nil {
		return nil, err
	}
	if found != nil {
		ty, err := Substitute(s.sc, found.Ty, sub)
		if err != nil {
			return nil, err
		}
		return &ResolvedMember{Member: found, Ty: ty}, nil
	}
	for _, super := range c.Supers {
		st, err := Substitute(s.sc, super, sub)
		if err != nil {
			return nil, err
		}
		r, err := s.in(st)
		if err != nil || r != nil {
			return r, err
		}
	}
	return nil, nil
}

// narrowest scans members in order.  A member matches when its key equals
// indexTy or, unless exact, accepts indexTy.  A later match replaces the
// current best unless the best is known not to accept it.
func narrowest(sc *SearchContext, members []*Member, indexTy Ty, exact bool) (*Member, error) {
	var best *Member
	var bestKey Ty
	for _, m := range members {
		if err := sc.step(); err != nil {
			return nil, err
		}
		key := m.IndexType()
		if exact {
			if Equal(key, indexTy) {
				return m, nil
			}
			continue
		}
		matches := Equal(key, indexTy)
		if !matches {
			v, err := ContravariantOf(sc, key, indexTy, StrictUnknown)
			if err != nil {
				return nil, err
			}
			matches = v == Yes
		}
		if !matches {
			continue
		}
		if best == nil {
			best, bestKey = m, key
			continue
		}
		v, err := ContravariantOf(sc, bestKey, key, StrictUnknown)
		if err != nil {
			return nil, err
		}
		if v != No {
			best, bestKey = m, key
		}
	}
	return best, nil
}

// AllMembers lists the members visible on owner: own members first, then
// inherited members whose key is not already present.
func AllMembers(sc *SearchContext, owner Ty) ([]*ResolvedMember, error) {
	sc = orBackground(sc)
	var out []*ResolvedMember
	visited := map[string]bool{}
	var collect func(t Ty, sub Substitutor) error
	collect = func(t Ty, sub Substitutor) error {
		if err := sc.step(); err != nil {
			return err
		}
		if g, ok := t.(*Generic); ok {
			if c, ok := g.Base.(*Class); ok {
				t, sub = c, Chain(WithArgs(c.Params, g.Args), sub)
			}
		}
		c, ok := t.(*Class)
		if !ok || visited[c.Name] {
			return nil
		}
		visited[c.Name] = true
		for _, m := range c.Members {
			shadowed := false
			for _, prev := range out {
				if Equal(prev.Member.IndexType(), m.IndexType()) {
					shadowed = true
					break
				}
			}
			if shadowed {
				continue
			}
			ty, err := Substitute(sc, m.Ty, sub)
			if err != nil {
				return err
			}
			out = append(out, &ResolvedMember{Member: m, Ty: ty})
		}
		for _, super := range c.Supers {
			st, err := Substitute(sc, super, sub)
			if err != nil {
				return err
			}
			if err := collect(st, nil); err != nil {
				return err
			}
		}
		return nil
	}
	if err := collect(owner, nil); err != nil {
		return nil, err
	}
	return out, nil
}
