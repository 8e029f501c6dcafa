package loader

import (
	"strconv"
	"strings"

	"github.com/panyam/luaty/decl"
	"github.com/panyam/luaty/types"
	"gopkg.in/yaml.v3"
)

// typeBuilder turns YAML type nodes into types.  Errors are collected and the
// offending node builds to types.Unknown so one mistake does not cascade.
type typeBuilder struct {
	index *Index
	errs  *ErrorCollector
	file  string
}

func (b *typeBuilder) loc(n *yaml.Node) Location {
	return Location{File: b.file, Line: n.Line, Col: n.Column}
}

func (b *typeBuilder) fail(n *yaml.Node, format string, args ...any) types.Ty {
	b.errs.Errorf(b.loc(n), format, args...)
	return types.Unknown
}

// declareGenerics parses "T" or "T: bound" declarations into a new scope.
// Bounds are built in the new scope so they may mention earlier parameters.
func (b *typeBuilder) declareGenerics(at *yaml.Node, decls []string, outer *decl.Env[types.Ty]) ([]*types.GenericParam, *decl.Env[types.Ty]) {
	scope := decl.NewEnv(outer)
	params := make([]*types.GenericParam, 0, len(decls))
	bounds := make([]string, 0, len(decls))
	for _, d := range decls {
		name, bound, _ := strings.Cut(d, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			b.fail(at, "empty generic parameter in %q", d)
			continue
		}
		if scope.Has(name) {
			b.fail(at, "duplicate generic parameter %s", name)
			continue
		}
		p := &types.GenericParam{Name: name}
		scope.Set(name, p)
		params = append(params, p)
		bounds = append(bounds, strings.TrimSpace(bound))
	}
	for i, bound := range bounds {
		if bound != "" {
			params[i].Bound = b.build(&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: bound, Line: at.Line, Column: at.Column}, scope)
		}
	}
	return params, scope
}

// build returns nil for an absent node.
func (b *typeBuilder) build(n *yaml.Node, scope *decl.Env[types.Ty]) types.Ty {
	if n == nil || n.Kind == 0 {
		return nil
	}
	switch n.Kind {
	case yaml.AliasNode:
		return b.build(n.Alias, scope)
	case yaml.ScalarNode:
		return b.named(n, n.Value, scope)
	case yaml.SequenceNode:
		members := make([]types.Ty, 0, len(n.Content))
		for _, c := range n.Content {
			members = append(members, b.build(c, scope))
		}
		return types.NewUnion(members...)
	case yaml.MappingNode:
		return b.composite(n, scope)
	}
	return b.fail(n, "unexpected type node")
}

// named resolves a type name.  `T[]` and `T?` are shorthands for arrays and
// optional types.
func (b *typeBuilder) named(n *yaml.Node, name string, scope *decl.Env[types.Ty]) types.Ty {
	name = strings.TrimSpace(name)
	if strings.HasSuffix(name, "[]") {
		return types.NewArray(b.named(n, strings.TrimSuffix(name, "[]"), scope))
	}
	if strings.HasSuffix(name, "?") {
		return types.NewUnion(b.named(n, strings.TrimSuffix(name, "?"), scope), types.Nil)
	}
	switch name {
	case "any", "unknown":
		return types.Unknown
	case "nil":
		return types.Nil
	case "void":
		return types.Void
	case "true":
		return types.True
	case "false":
		return types.False
	}
	if p, ok := types.PrimitiveByName(name); ok {
		return p
	}
	if scope != nil {
		if t, ok := scope.Get(name); ok {
			return t
		}
	}
	if c, ok := b.index.FindClass(name); ok {
		return c
	}
	if a, ok := b.index.FindAlias(name); ok {
		return b.expand(n, a, nil)
	}
	return b.fail(n, "unknown type %q", name)
}

func (b *typeBuilder) composite(n *yaml.Node, scope *decl.Env[types.Ty]) types.Ty {
	f, err := mappingFields(n)
	if err != nil {
		return b.fail(n, "%v", err)
	}
	switch {
	case f.has("literal"):
		return b.literal(f.get("literal"))
	case f.has("array"):
		return types.NewArray(b.required(n, f.get("array"), scope, "array element"))
	case f.has("union"):
		u := f.get("union")
		if u.Kind != yaml.SequenceNode {
			return b.fail(u, "union expects a list of types")
		}
		return b.build(u, scope)
	case f.has("generic"):
		return b.generic(n, f, scope)
	case f.has("fun"):
		return b.signature(f.get("fun"), scope)
	}
	return b.fail(n, "unknown type form, expected one of literal, array, union, generic, fun")
}

func (b *typeBuilder) required(at *yaml.Node, n *yaml.Node, scope *decl.Env[types.Ty], what string) types.Ty {
	if t := b.build(n, scope); t != nil {
		return t
	}
	return b.fail(at, "missing %s", what)
}

func (b *typeBuilder) literal(n *yaml.Node) types.Ty {
	if n.Kind != yaml.ScalarNode {
		return b.fail(n, "literal expects a scalar")
	}
	switch n.ShortTag() {
	case "!!int", "!!float":
		v, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return b.fail(n, "bad number literal %q", n.Value)
		}
		return types.NumberLiteral(v)
	case "!!bool":
		return types.BoolLiteral(n.Value == "true")
	}
	return types.StringLiteral(n.Value)
}

func (b *typeBuilder) generic(n *yaml.Node, f *fields, scope *decl.Env[types.Ty]) types.Ty {
	baseNode := f.get("generic")
	var args []types.Ty
	if a := f.get("args"); a != nil {
		if a.Kind != yaml.SequenceNode {
			return b.fail(a, "generic args expect a list of types")
		}
		for _, c := range a.Content {
			args = append(args, b.build(c, scope))
		}
	}
	if baseNode.Kind != yaml.ScalarNode {
		return b.fail(baseNode, "generic base must be a name")
	}
	name := baseNode.Value
	if name == "table" {
		if len(args) != 2 {
			return b.fail(n, "table expects 2 type arguments, got %d", len(args))
		}
		return types.NewGeneric(types.Table, args...)
	}
	if c, ok := b.index.FindClass(name); ok {
		if len(args) != len(c.Params) {
			return b.fail(n, "%s expects %d type arguments, got %d", name, len(c.Params), len(args))
		}
		return types.NewGeneric(c, args...)
	}
	if a, ok := b.index.FindAlias(name); ok {
		return b.expand(n, a, args)
	}
	return b.fail(baseNode, "unknown generic type %q", name)
}

func (b *typeBuilder) signature(n *yaml.Node, scope *decl.Env[types.Ty]) types.Ty {
	f, err := mappingFields(n)
	if err != nil {
		return b.fail(n, "%v", err)
	}
	sig := &types.Signature{}
	if g := f.get("generics"); g != nil {
		var decls []string
		if err := g.Decode(&decls); err != nil {
			return b.fail(g, "generics expect a list of names")
		}
		sig.Generics, scope = b.declareGenerics(g, decls, scope)
	}
	if p := f.get("params"); p != nil {
		pf, err := mappingFields(p)
		if err != nil {
			return b.fail(p, "params expect a mapping of name to type")
		}
		for _, key := range pf.keys {
			sig.Params = append(sig.Params, &types.Param{Name: key, Ty: b.required(p, pf.get(key), scope, "type of param "+key)})
		}
	}
	sig.Variadic = b.build(f.get("variadic"), scope)
	sig.Return = b.build(f.get("return"), scope)
	if s := f.get("self"); s != nil {
		sig.Colon = s.Value == "true"
	}
	return sig
}

// expand instantiates an alias with args.
func (b *typeBuilder) expand(at *yaml.Node, a *Alias, args []types.Ty) types.Ty {
	if len(args) != len(a.Params) {
		return b.fail(at, "alias %s expects %d type arguments, got %d", a.Name, len(a.Params), len(args))
	}
	body := b.aliasBody(at, a)
	if len(args) == 0 {
		return body
	}
	t, err := types.Substitute(types.Background(), body, types.WithArgs(a.Params, args))
	if err != nil {
		return b.fail(at, "expanding %s: %v", a.Name, err)
	}
	return t
}

// aliasBody builds the body of a on first use.  A reference that re-enters
// an alias still being built is a cycle.
func (b *typeBuilder) aliasBody(at *yaml.Node, a *Alias) types.Ty {
	switch a.state {
	case aliasExpanding:
		return b.fail(at, "alias cycle through %s", a.Name)
	case aliasPending:
		a.state = aliasExpanding
		scope := decl.NewEnv[types.Ty](nil)
		for _, p := range a.Params {
			scope.Set(p.Name, p)
		}
		inner := &typeBuilder{index: b.index, errs: b.errs, file: a.Loc.File}
		node := &a.src.Type
		a.body = inner.required(nodeAt(a.src.Line, a.src.Col), node, scope, "alias body")
		a.state = aliasDone
	}
	return a.body
}
