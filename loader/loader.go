package loader

import (
	"fmt"
	"sync"

	"github.com/panyam/luaty/decl"
	"github.com/panyam/luaty/logging"
	"github.com/panyam/luaty/types"
	"gopkg.in/yaml.v3"
)

// Unit is one loaded file with its declarations built against the shared index.
type Unit struct {
	Path     string
	Doc      *Document
	Chunk    *decl.Chunk
	Declared map[*decl.NameDef]types.Ty
	Checks   []*Check
	Queries  []*Query
}

// Check is a built CheckDecl.
type Check struct {
	Name      string
	Loc       Location
	Required  types.Ty
	Candidate types.Ty
	Mode      types.Mode
	Expect    types.Variance
	HasExpect bool
}

// Query is a built InferDecl.
type Query struct {
	Loc    Location
	Expr   decl.Expr
	Expect string
}

// LoadResult holds the outcome of a loading operation.
type LoadResult struct {
	Root   *Unit            // The initially requested root file.
	Units  map[string]*Unit // All files loaded, keyed by canonical path.
	Order  []string         // Canonical paths, imports before their importers.
	Index  *Index
	Errors []error // Parsing, resolution, cycle, depth and declaration errors.
}

// Loader handles parsing and recursively loading imported declaration files.
type Loader struct {
	parser    Parser
	resolver  FileResolver
	maxDepth  int
	MaxErrors int
	logger    logging.Logger

	// Internal state during a load operation
	mutex   sync.Mutex
	loaded  map[string]*Document
	order   []string
	pending map[string]bool // Tracks files currently being loaded in the recursion stack for cycle detection
}

// NewLoader creates a new loader.
// maxDepth specifies the maximum import recursion depth (0 means no limit, 1 means root only, etc.).
func NewLoader(parser Parser, resolver FileResolver, maxDepth int) *Loader {
	if parser == nil {
		parser = YAMLParser{}
	}
	return &Loader{
		parser:   parser,
		resolver: resolver,
		maxDepth: maxDepth,
		logger:   logging.Default(),
		loaded:   make(map[string]*Document),
		pending:  make(map[string]bool),
	}
}

func (l *Loader) SetLogger(logger logging.Logger) { l.logger = logger }

// LoadRootFile parses the specified root file, recursively loads its imports
// and builds every declaration against one index.  The returned error is
// the first one found; result.Errors has all of them.
func (l *Loader) LoadRootFile(rootPath string) (*LoadResult, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	// Reset state for this load operation
	l.loaded = make(map[string]*Document)
	l.pending = make(map[string]bool)
	l.order = nil

	rootDoc, err := l.loadFileRecursive(rootPath, rootPath, 0)
	if err != nil {
		err = fmt.Errorf("failed to load root file '%s': %w", rootPath, err)
		return &LoadResult{Errors: []error{err}}, err
	}

	errs := &ErrorCollector{MaxErrors: l.MaxErrors}
	result := &LoadResult{Units: map[string]*Unit{}, Order: l.order}
	l.build(result, errs)
	result.Root = result.Units[rootDoc.Path]
	result.Errors = errs.Errors
	if errs.HasErrors() {
		return result, errs.Errors[0]
	}
	return result, nil
}

// loadFileRecursive handles the actual loading and parsing logic.
func (l *Loader) loadFileRecursive(importerPath, filePath string, depth int) (*Document, error) {
	// Note: depth 0 is the root, depth 1 is its direct imports, etc.
	if l.maxDepth > 0 && depth >= l.maxDepth {
		return nil, fmt.Errorf("max import depth (%d) exceeded near '%s'", l.maxDepth, filePath)
	}

	contentReader, canonicalPath, err := l.resolver.Resolve(importerPath, filePath)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve import '%s' from '%s': %w", filePath, importerPath, err)
	}
	defer contentReader.Close()

	if doc, found := l.loaded[canonicalPath]; found {
		return doc, nil
	}
	if l.pending[canonicalPath] {
		return nil, fmt.Errorf("circular import detected: '%s' is already being loaded", canonicalPath)
	}
	l.pending[canonicalPath] = true
	defer delete(l.pending, canonicalPath)

	l.logger.Debug("parsing %s (importer %s, depth %d)", canonicalPath, importerPath, depth)
	doc, err := l.parser.Parse(contentReader, canonicalPath)
	if err != nil {
		return nil, fmt.Errorf("parsing error in '%s': %w", canonicalPath, err)
	}
	doc.Path = canonicalPath

	for _, importPath := range doc.Imports {
		if importPath == "" {
			return nil, fmt.Errorf("invalid import statement (missing path) in '%s'", canonicalPath)
		}
		if _, err := l.loadFileRecursive(canonicalPath, importPath, depth+1); err != nil {
			return nil, fmt.Errorf("failed to load import '%s' from '%s': %w", importPath, canonicalPath, err)
		}
	}

	l.loaded[canonicalPath] = doc
	l.order = append(l.order, canonicalPath)
	return doc, nil
}

// build runs the declaration passes over all loaded documents in order:
// names first so declarations may refer to each other in any order, then
// generic parameters, then class bodies, aliases and globals, and finally
// each file's chunk, checks and queries.
func (l *Loader) build(result *LoadResult, errs *ErrorCollector) {
	defer errs.guard()
	index := NewIndex()
	result.Index = index

	type pendingClass struct {
		src   *ClassDecl
		class *types.Class
		file  string
		scope *decl.Env[types.Ty]
	}
	var classes []*pendingClass

	// Pass 1: names
	for _, path := range l.order {
		doc := l.loaded[path]
		for _, cd := range doc.Classes {
			loc := Location{File: path, Line: cd.Line, Col: cd.Col}
			if cd.Name == "" {
				errs.Errorf(loc, "class without a name")
				continue
			}
			c := types.NewClass(cd.Name)
			if !index.addClass(c, loc) {
				errs.Errorf(loc, "class %s already declared at %s", cd.Name, index.classLocs[cd.Name])
				continue
			}
			classes = append(classes, &pendingClass{src: cd, class: c, file: path})
		}
		for _, ad := range doc.Aliases {
			loc := Location{File: path, Line: ad.Line, Col: ad.Col}
			if ad.Name == "" {
				errs.Errorf(loc, "alias without a name")
				continue
			}
			if _, exists := index.aliases[ad.Name]; exists {
				errs.Errorf(loc, "alias %s already declared at %s", ad.Name, index.aliases[ad.Name].Loc)
				continue
			}
			if _, clash := index.classes[ad.Name]; clash {
				errs.Errorf(loc, "alias %s clashes with a class", ad.Name)
				continue
			}
			index.aliases[ad.Name] = &Alias{Name: ad.Name, Loc: loc, src: ad}
		}
	}

	// Pass 2: generic parameters, so bounds and bodies can name any class
	for _, pc := range classes {
		b := &typeBuilder{index: index, errs: errs, file: pc.file}
		pc.class.Params, pc.scope = b.declareGenerics(nodeAt(pc.src.Line, pc.src.Col), pc.src.Generics, nil)
	}
	for _, name := range index.Aliases() {
		a := index.aliases[name]
		b := &typeBuilder{index: index, errs: errs, file: a.Loc.File}
		a.Params, _ = b.declareGenerics(nodeAt(a.Loc.Line, a.Loc.Col), a.src.Generics, nil)
	}

	// Pass 3: class bodies, alias bodies and globals
	for _, pc := range classes {
		b := &typeBuilder{index: index, errs: errs, file: pc.file}
		buildClass(b, pc.src, pc.class, pc.scope)
	}
	for _, name := range index.Aliases() {
		a := index.aliases[name]
		b := &typeBuilder{index: index, errs: errs, file: a.Loc.File}
		b.aliasBody(nodeAt(a.Loc.Line, a.Loc.Col), a)
	}
	for _, path := range l.order {
		buildGlobals(&typeBuilder{index: index, errs: errs, file: path}, &l.loaded[path].Globals)
	}

	// Pass 4: per file chunk, checks and queries
	for _, path := range l.order {
		result.Units[path] = buildUnit(&typeBuilder{index: index, errs: errs, file: path}, l.loaded[path])
	}
	l.logger.Debug("built %d files: %d classes, %d aliases, %d globals", len(l.order), len(index.classes), len(index.aliases), len(index.globals))
}

func buildClass(b *typeBuilder, cd *ClassDecl, c *types.Class, scope *decl.Env[types.Ty]) {
	at := nodeAt(cd.Line, cd.Col)
	c.Shape = cd.Shape
	for i := range cd.Supers {
		super := b.required(at, &cd.Supers[i], scope, "supertype")
		if types.Equal(super, c) {
			b.fail(&cd.Supers[i], "class %s cannot extend itself", c.Name)
			continue
		}
		c.AddSuper(super)
	}
	if cd.Fields.Kind != 0 {
		f, err := mappingFields(&cd.Fields)
		if err != nil {
			b.fail(&cd.Fields, "fields: %v", err)
		} else {
			for _, name := range f.keys {
				c.AddField(name, b.required(f.get(name), f.get(name), scope, "type of field "+name))
			}
		}
	}
	for _, ix := range cd.Indexers {
		key := b.required(at, &ix.Key, scope, "indexer key")
		c.AddIndexer(key, b.required(at, &ix.Type, scope, "indexer type"))
	}
}

func buildGlobals(b *typeBuilder, n *yaml.Node) {
	if n.Kind == 0 {
		return
	}
	f, err := mappingFields(n)
	if err != nil {
		b.fail(n, "globals: %v", err)
		return
	}
	for _, name := range f.keys {
		if _, dup := b.index.globals[name]; dup {
			b.fail(f.get(name), "global %s already declared", name)
			continue
		}
		b.index.globals[name] = b.required(f.get(name), f.get(name), nil, "type of global "+name)
	}
}

func buildUnit(b *typeBuilder, doc *Document) *Unit {
	u := &Unit{Path: doc.Path, Doc: doc, Declared: map[*decl.NameDef]types.Ty{}}
	sb := &syntaxBuilder{types: b, declared: u.Declared}
	u.Chunk = sb.chunk(doc.Path, &doc.Chunk)

	for i, cd := range doc.Checks {
		at := nodeAt(cd.Line, cd.Col)
		check := &Check{
			Name:      cd.Name,
			Loc:       b.loc(at),
			Required:  b.required(at, &cd.Required, nil, "required type"),
			Candidate: b.required(at, &cd.Candidate, nil, "candidate type"),
		}
		if check.Name == "" {
			check.Name = fmt.Sprintf("check %d", i+1)
		}
		for _, m := range cd.Mode {
			flag, ok := types.ParseMode(m)
			if !ok {
				b.fail(at, "unknown mode %q", m)
				continue
			}
			check.Mode |= flag
		}
		if cd.Expect != "" {
			v, ok := types.ParseVariance(cd.Expect)
			if !ok {
				b.fail(at, "unknown expectation %q, expected yes, no or indeterminate", cd.Expect)
			}
			check.Expect, check.HasExpect = v, ok
		}
		u.Checks = append(u.Checks, check)
	}

	for _, qd := range doc.Infer {
		at := nodeAt(qd.Line, qd.Col)
		expr := sb.expr(&qd.Expr)
		if expr == nil {
			b.fail(at, "infer entry without an expression")
			continue
		}
		u.Queries = append(u.Queries, &Query{Loc: b.loc(at), Expr: expr, Expect: qd.Expect})
	}
	return u
}
