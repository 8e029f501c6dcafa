package loader

import (
	"sort"

	"github.com/panyam/luaty/types"
)

type aliasState int

const (
	aliasPending aliasState = iota
	aliasExpanding
	aliasDone
)

// Alias is a named type expression, optionally generic.  Its body is built
// on first use.
type Alias struct {
	Name   string
	Params []*types.GenericParam
	Loc    Location
	src    *AliasDecl
	body   types.Ty
	state  aliasState
}

// Body returns the expanded alias body, or nil before expansion.
func (a *Alias) Body() types.Ty { return a.body }

// Index holds every declaration of a load.  It is read-only once the load
// has finished.
type Index struct {
	classes    map[string]*types.Class
	classLocs  map[string]Location
	classOrder []string
	aliases    map[string]*Alias
	globals    map[string]types.Ty
}

func NewIndex() *Index {
	return &Index{
		classes:   map[string]*types.Class{},
		classLocs: map[string]Location{},
		aliases:   map[string]*Alias{},
		globals:   map[string]types.Ty{},
	}
}

func (x *Index) FindClass(name string) (*types.Class, bool) {
	c, ok := x.classes[name]
	return c, ok
}

func (x *Index) FindAlias(name string) (*Alias, bool) {
	a, ok := x.aliases[name]
	return a, ok
}

func (x *Index) Global(name string) (types.Ty, bool) {
	t, ok := x.globals[name]
	return t, ok
}

// Classes returns the classes in declaration order.
func (x *Index) Classes() []*types.Class {
	out := make([]*types.Class, len(x.classOrder))
	for i, name := range x.classOrder {
		out[i] = x.classes[name]
	}
	return out
}

// Aliases returns the alias names in sorted order.
func (x *Index) Aliases() []string {
	out := make([]string, 0, len(x.aliases))
	for name := range x.aliases {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Globals returns the declared global names in sorted order.
func (x *Index) Globals() []string {
	out := make([]string, 0, len(x.globals))
	for name := range x.globals {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (x *Index) addClass(c *types.Class, loc Location) bool {
	if _, exists := x.classes[c.Name]; exists {
		return false
	}
	x.classes[c.Name] = c
	x.classLocs[c.Name] = loc
	x.classOrder = append(x.classOrder, c.Name)
	return true
}
