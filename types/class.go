package types

import "fmt"

// Member is a field of a class.  IndexTy is set for indexer fields such as
// `[string]: number`; named fields leave it nil.
type Member struct {
	Name    string
	IndexTy Ty
	Ty      Ty
	Owner   *Class
}

// IndexType is the key type this member answers to.
func (m *Member) IndexType() Ty {
	if m.IndexTy != nil {
		return m.IndexTy
	}
	return StringLiteral(m.Name)
}

func (m *Member) String() string {
	if m.IndexTy != nil {
		return fmt.Sprintf("[%s]: %s", m.IndexTy, m.Ty)
	}
	return fmt.Sprintf("%s: %s", m.Name, m.Ty)
}

// Class is a nominal type.  Supers may be classes or generic instances of
// classes and may form cycles; classes are compared by name.
type Class struct {
	Name    string
	Params  []*GenericParam
	Supers  []Ty
	Members []*Member
	// Shape classes are compared structurally member by member.
	Shape bool
}

func NewClass(name string, params ...*GenericParam) *Class {
	return &Class{Name: name, Params: params}
}

func (*Class) Kind() Kind       { return KindClass }
func (c *Class) String() string { return c.Name }
func (*Class) ty()              {}

// Declaration renders the class header with its generic parameters and supertypes.
func (c *Class) Declaration() string {
	out := c.Name
	if len(c.Params) > 0 {
		out += "<" + renderParams(c.Params) + ">"
	}
	if len(c.Supers) > 0 {
		out += " : " + renderList(c.Supers)
	}
	return out
}

func (c *Class) AddField(name string, ty Ty) *Member {
	m := &Member{Name: name, Ty: ty, Owner: c}
	c.Members = append(c.Members, m)
	return m
}

func (c *Class) AddIndexer(indexTy, ty Ty) *Member {
	m := &Member{Name: "[" + indexTy.String() + "]", IndexTy: indexTy, Ty: ty, Owner: c}
	c.Members = append(c.Members, m)
	return m
}

func (c *Class) AddSuper(super Ty) {
	c.Supers = append(c.Supers, super)
}

// ClassOf returns the class behind a class or generic class instance.
func ClassOf(t Ty) (*Class, bool) {
	switch v := t.(type) {
	case *Class:
		return v, true
	case *Generic:
		return ClassOf(v.Base)
	}
	return nil, false
}
