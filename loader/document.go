package loader

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Document is one declaration file as written.  Type and syntax entries are
// kept as YAML nodes and built once every file of a load is known.
//
//	imports: [base.yaml]
//	aliases:
//	  - {name: Maybe, generics: [T], type: {union: [T, nil]}}
//	classes:
//	  - name: List
//	    generics: [T]
//	    supers: [{generic: Iterable, args: [T]}]
//	    fields: {size: number}
//	    indexers: [{key: number, type: T}]
//	globals: {names: "string[]"}
//	checks:
//	  - {required: number, candidate: {literal: 1}, expect: yes}
//	chunk:
//	  - {local: [n], types: [number], values: [{call: f}]}
//	infer:
//	  - {expr: n, expect: number}
type Document struct {
	Path    string       `yaml:"-"`
	Imports []string     `yaml:"imports"`
	Aliases []*AliasDecl `yaml:"aliases"`
	Classes []*ClassDecl `yaml:"classes"`
	Globals yaml.Node    `yaml:"globals"`
	Checks  []*CheckDecl `yaml:"checks"`
	Chunk   yaml.Node    `yaml:"chunk"`
	Infer   []*InferDecl `yaml:"infer"`
}

type AliasDecl struct {
	Name     string    `yaml:"name"`
	Generics []string  `yaml:"generics"`
	Type     yaml.Node `yaml:"type"`
	Line     int       `yaml:"-"`
	Col      int       `yaml:"-"`
}

type IndexerDecl struct {
	Key  yaml.Node `yaml:"key"`
	Type yaml.Node `yaml:"type"`
}

type ClassDecl struct {
	Name     string         `yaml:"name"`
	Generics []string       `yaml:"generics"`
	Supers   []yaml.Node    `yaml:"supers"`
	Shape    bool           `yaml:"shape"`
	Fields   yaml.Node      `yaml:"fields"`
	Indexers []*IndexerDecl `yaml:"indexers"`
	Line     int            `yaml:"-"`
	Col      int            `yaml:"-"`
}

// CheckDecl asks whether candidate may be used where required is expected.
type CheckDecl struct {
	Name      string    `yaml:"name"`
	Required  yaml.Node `yaml:"required"`
	Candidate yaml.Node `yaml:"candidate"`
	Mode      []string  `yaml:"mode"`
	Expect    string    `yaml:"expect"`
	Line      int       `yaml:"-"`
	Col       int       `yaml:"-"`
}

// InferDecl asks for the type of an expression evaluated after the chunk.
type InferDecl struct {
	Expr   yaml.Node `yaml:"expr"`
	Expect string    `yaml:"expect"`
	Line   int       `yaml:"-"`
	Col    int       `yaml:"-"`
}

func (a *AliasDecl) UnmarshalYAML(value *yaml.Node) error {
	type plain AliasDecl
	if err := value.Decode((*plain)(a)); err != nil {
		return err
	}
	a.Line, a.Col = value.Line, value.Column
	return nil
}

func (c *ClassDecl) UnmarshalYAML(value *yaml.Node) error {
	type plain ClassDecl
	if err := value.Decode((*plain)(c)); err != nil {
		return err
	}
	c.Line, c.Col = value.Line, value.Column
	return nil
}

func (c *CheckDecl) UnmarshalYAML(value *yaml.Node) error {
	type plain CheckDecl
	if err := value.Decode((*plain)(c)); err != nil {
		return err
	}
	c.Line, c.Col = value.Line, value.Column
	return nil
}

func (d *InferDecl) UnmarshalYAML(value *yaml.Node) error {
	type plain InferDecl
	if err := value.Decode((*plain)(d)); err != nil {
		return err
	}
	d.Line, d.Col = value.Line, value.Column
	return nil
}

// Parser turns file content into a Document.
type Parser interface {
	// Parse reads from the input reader and returns the document.
	// sourceName is used for context in error messages (e.g., file path).
	Parse(input io.Reader, sourceName string) (*Document, error)
}

// YAMLParser reads declaration files written in YAML.
type YAMLParser struct{}

func (YAMLParser) Parse(input io.Reader, sourceName string) (*Document, error) {
	doc := &Document{Path: sourceName}
	dec := yaml.NewDecoder(input)
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, nil
		}
		return nil, fmt.Errorf("in '%s': %w", sourceName, err)
	}
	return doc, nil
}
