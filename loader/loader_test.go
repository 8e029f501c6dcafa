package loader

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/panyam/luaty/decl"
	"github.com/panyam/luaty/logging"
	"github.com/panyam/luaty/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = logging.NewLogger(io.Discard, logging.LogLevelOff)

func load(t *testing.T, root string, files map[string]string) (*LoadResult, error) {
	t.Helper()
	l := NewLoader(nil, NewMemoryResolver(files), 10)
	l.SetLogger(quiet)
	return l.LoadRootFile(root)
}

func mustLoad(t *testing.T, root string, files map[string]string) *LoadResult {
	t.Helper()
	result, err := load(t, root, files)
	require.NoError(t, err, "errors: %v", result.Errors)
	return result
}

func errorText(result *LoadResult) string {
	var msgs []string
	for _, err := range result.Errors {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

func TestImportsLoadBeforeImporters(t *testing.T) {
	result := mustLoad(t, "app/main.yaml", map[string]string{
		"app/main.yaml": `
imports: [lib/base.yaml, lib/extra.yaml]
classes:
  - {name: Child, supers: [Base]}
`,
		"app/lib/base.yaml": `
classes:
  - name: Base
    fields: {id: number}
`,
		"app/lib/extra.yaml": `
imports: [base.yaml]
globals: {root: Base}
`,
	})
	assert.Equal(t, []string{"app/lib/base.yaml", "app/lib/extra.yaml", "app/main.yaml"}, result.Order)
	assert.Equal(t, "app/main.yaml", result.Root.Path)
	assert.Len(t, result.Units, 3)

	child, ok := result.Index.FindClass("Child")
	require.True(t, ok)
	assert.Equal(t, "Child : Base", child.Declaration())
	root, ok := result.Index.Global("root")
	require.True(t, ok)
	assert.Equal(t, "Base", root.String())
}

func TestCircularImport(t *testing.T) {
	result, err := load(t, "a.yaml", map[string]string{
		"a.yaml": "imports: [b.yaml]\n",
		"b.yaml": "imports: [a.yaml]\n",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular import detected: 'a.yaml'")
	assert.Len(t, result.Errors, 1)
}

func TestMaxImportDepth(t *testing.T) {
	l := NewLoader(nil, NewMemoryResolver(map[string]string{
		"a.yaml": "imports: [b.yaml]\n",
		"b.yaml": "",
	}), 1)
	l.SetLogger(quiet)
	_, err := l.LoadRootFile("a.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max import depth (1) exceeded")
}

func TestMissingImport(t *testing.T) {
	_, err := load(t, "a.yaml", map[string]string{"a.yaml": "imports: [gone.yaml]\n"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found: gone.yaml")
}

func TestUnknownTopLevelKey(t *testing.T) {
	_, err := load(t, "a.yaml", map[string]string{"a.yaml": "bogus: 1\n"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestEmptyFile(t *testing.T) {
	result := mustLoad(t, "a.yaml", map[string]string{"a.yaml": ""})
	assert.Nil(t, result.Root.Chunk)
	assert.Empty(t, result.Index.Classes())
}

func TestGenericClassesAndAliases(t *testing.T) {
	result := mustLoad(t, "a.yaml", map[string]string{"a.yaml": `
aliases:
  - {name: Maybe, generics: [T], type: [T, nil]}
  - {name: Id, type: number}
  - {name: Pair, generics: [A, B], type: {generic: table, args: [A, B]}}
classes:
  - name: List
    generics: [T]
    fields:
      size: number
      first: {generic: Maybe, args: [T]}
      map: {fun: {generics: [R], params: {f: {fun: {params: {x: T}, return: R}}}, return: "R[]", self: true}}
    indexers:
      - {key: number, type: T}
  - name: Sorted
    generics: ["T: Comparable"]
    supers: [{generic: List, args: [T]}]
  - {name: Comparable, shape: true}
globals:
  ids: "Id[]"
  maybe: {generic: Maybe, args: [string]}
  pairs: {generic: Pair, args: [string, boolean]}
  opt: "number?"
`})
	index := result.Index

	list, ok := index.FindClass("List")
	require.True(t, ok)
	assert.Equal(t, "List<T>", list.Declaration())
	var members []string
	for _, m := range list.Members {
		members = append(members, m.String())
	}
	expected := []string{
		"size: number",
		"first: T | nil",
		"map: fun<R>(self, f: fun(x: T): R): R[]",
		"[number]: T",
	}
	if diff := cmp.Diff(expected, members); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}

	sorted, _ := index.FindClass("Sorted")
	assert.Equal(t, "Sorted<T: Comparable> : List<T>", sorted.Declaration())
	comparable, _ := index.FindClass("Comparable")
	assert.True(t, comparable.Shape)

	globals := map[string]string{}
	for _, name := range index.Globals() {
		g, _ := index.Global(name)
		globals[name] = g.String()
	}
	assert.Equal(t, map[string]string{
		"ids":   "number[]",
		"maybe": "string | nil",
		"pairs": "table<string, boolean>",
		"opt":   "number | nil",
	}, globals)

	assert.Equal(t, []string{"Id", "Maybe", "Pair"}, index.Aliases())
	maybe, _ := index.FindAlias("Maybe")
	assert.Equal(t, "T | nil", maybe.Body().String())
}

func TestAliasCycle(t *testing.T) {
	result, err := load(t, "a.yaml", map[string]string{"a.yaml": `
aliases:
  - {name: A, type: "B[]"}
  - {name: B, type: [A, number]}
`})
	require.Error(t, err)
	assert.Contains(t, errorText(result), "alias cycle through A")
	a, _ := result.Index.FindAlias("A")
	assert.NotNil(t, a.Body())
}

func TestDeclarationErrorsArePositioned(t *testing.T) {
	result, err := load(t, "bad.yaml", map[string]string{"bad.yaml": `classes:
  - name: C
    fields:
      x: Nope
  - name: C
checks:
  - {required: number, candidate: string, mode: [sloppy], expect: maybe}
`})
	require.Error(t, err)

	var located *LocatedError
	for _, e := range result.Errors {
		if strings.Contains(e.Error(), "Nope") {
			require.True(t, errors.As(e, &located))
		}
	}
	require.NotNil(t, located)
	assert.Equal(t, Location{File: "bad.yaml", Line: 4, Col: 10}, located.Loc)
	assert.Equal(t, `bad.yaml:4:10: unknown type "Nope"`, located.Error())

	text := errorText(result)
	assert.Contains(t, text, "bad.yaml:5:5: class C already declared at bad.yaml:2:5")
	assert.Contains(t, text, `unknown mode "sloppy"`)
	assert.Contains(t, text, `unknown expectation "maybe"`)
	assert.Len(t, result.Errors, 4)
}

func TestMaxErrorsStopsTheBuild(t *testing.T) {
	l := NewLoader(nil, NewMemoryResolver(map[string]string{"a.yaml": `
globals: {a: X, b: Y, c: Z}
`}), 0)
	l.SetLogger(quiet)
	l.MaxErrors = 2
	result, err := l.LoadRootFile("a.yaml")
	require.Error(t, err)
	assert.Len(t, result.Errors, 2)
}

func TestGenericArgumentCount(t *testing.T) {
	result, err := load(t, "a.yaml", map[string]string{"a.yaml": `
classes:
  - {name: Box, generics: [T]}
globals:
  b: {generic: Box, args: [number, string]}
  t: {generic: table, args: [number]}
`})
	require.Error(t, err)
	text := errorText(result)
	assert.Contains(t, text, "Box expects 1 type arguments, got 2")
	assert.Contains(t, text, "table expects 2 type arguments, got 1")
}

func TestHostResolvesInScope(t *testing.T) {
	num := &decl.NameDef{Name: "x"}
	inner := &decl.NameDef{Name: "x"}
	outerInit := &decl.NameExpr{Name: "x"}
	innerRef := &decl.NameExpr{Name: "x"}
	afterRef := &decl.NameExpr{Name: "x"}
	param := &decl.NameDef{Name: "p"}
	paramRef := &decl.NameExpr{Name: "p"}
	classRef := &decl.NameExpr{Name: "Point"}

	chunk := &decl.Chunk{Name: "c", Body: &decl.Block{Statements: []decl.Stmt{
		&decl.LocalStmt{Names: []*decl.NameDef{num}, Exprs: []decl.Expr{decl.NumberLiteral(1)}},
		&decl.DoStmt{Body: &decl.Block{Statements: []decl.Stmt{
			&decl.LocalStmt{Names: []*decl.NameDef{inner}, Exprs: []decl.Expr{outerInit}},
			&decl.ExprStmt{Expr: innerRef},
		}}},
		&decl.ExprStmt{Expr: &decl.FunctionExpr{Params: []*decl.NameDef{param}, Body: &decl.Block{Statements: []decl.Stmt{
			&decl.ExprStmt{Expr: paramRef},
		}}}},
		&decl.ExprStmt{Expr: afterRef},
		&decl.ExprStmt{Expr: classRef},
	}}}

	index := NewIndex()
	index.addClass(types.NewClass("Point"), Location{})
	host := NewHost(index)
	host.Bind(chunk, map[*decl.NameDef]types.Ty{num: types.Number, param: types.String})

	resolved := func(ref *decl.NameExpr) string {
		ty, ok := host.ResolveName(ref)
		if !ok {
			return "unresolved"
		}
		return ty.String()
	}
	assert.Equal(t, "number", resolved(outerInit))
	assert.Equal(t, "any", resolved(innerRef))
	assert.Equal(t, "string", resolved(paramRef))
	assert.Equal(t, "number", resolved(afterRef))
	assert.Equal(t, "Point", resolved(classRef))
	assert.Equal(t, "unresolved", resolved(&decl.NameExpr{Name: "p"}))
	assert.Equal(t, "number", resolved(&decl.NameExpr{Name: "x"}))
}

func TestHostFreshness(t *testing.T) {
	first := &decl.NameExpr{Name: "a"}
	second := &decl.NameExpr{Name: "a"}
	host := NewHost(nil)

	host.Bind(&decl.Chunk{Body: &decl.Block{Statements: []decl.Stmt{&decl.ExprStmt{Expr: first}}}}, nil)
	assert.True(t, host.Fresh(first, ""))
	assert.False(t, host.Fresh(second, ""))

	host.Bind(nil, nil, second)
	assert.False(t, host.Fresh(first, ""))
	assert.True(t, host.Fresh(second, ""))
}

func TestChunkSyntax(t *testing.T) {
	result := mustLoad(t, "a.yaml", map[string]string{"a.yaml": `
chunk:
  - {local: [a, b], types: [number], values: [1, "two", ...]}
  - {assign: [a], values: [{binary: [a, "+", 1]}]}
  - if: {unary: [not, b]}
    then:
      - expr: {call: print, args: [a]}
    else:
      - do:
          - expr: {call: obj, method: run, args: [{table: [1, {name: k, value: true}, {key: 2, value: null}]}]}
  - expr: {index: {paren: obj}, key: "k"}
  - expr: {function: {params: [x, ...], body: []}}
`})
	var out []string
	for _, st := range result.Root.Chunk.Body.Statements {
		out = append(out, decl.Sprint(st))
	}
	assert.Len(t, out, 5)
	assert.Len(t, result.Root.Declared, 1)

	local := result.Root.Chunk.Body.Statements[0].(*decl.LocalStmt)
	assert.Equal(t, "number", result.Root.Declared[local.Names[0]].String())
	assert.Equal(t, decl.LiteralString, local.Exprs[1].(*decl.LiteralExpr).Kind)
	assert.Equal(t, decl.LiteralVarargs, local.Exprs[2].(*decl.LiteralExpr).Kind)

	fn := result.Root.Chunk.Body.Statements[4].(*decl.ExprStmt).Expr.(*decl.FunctionExpr)
	assert.True(t, fn.Variadic)
	assert.Len(t, fn.Params, 1)
}

func TestAnalyzeRunsChecksAndQueries(t *testing.T) {
	result := mustLoad(t, "main.yaml", map[string]string{
		"base.yaml": `
classes:
  - name: Base
    fields: {id: number}
  - name: Config
    fields: {port: number}
    indexers: [{key: string, type: string}]
globals: {cfg: Config}
`,
		"main.yaml": `
imports: [base.yaml]
classes:
  - {name: Child, supers: [Base]}
checks:
  - {name: literal, required: number, candidate: {literal: 1}, expect: yes}
  - {name: upcast, required: Base, candidate: Child, expect: yes}
  - {name: downcast, required: Child, candidate: Base, expect: no}
  - {name: strict nil, required: number, candidate: nil, mode: [strict_nil], expect: no}
  - {required: number, candidate: any}
chunk:
  - {local: [n], types: [number], values: [1]}
  - do:
      - {local: [n], values: ["shadow"]}
  - local: [f]
    values:
      - function:
          params: [a]
          body:
            - {local: [g], values: [{function: {params: [], body: []}}]}
infer:
  - {expr: n, expect: number}
  - {expr: {index: cfg, name: port}, expect: number}
  - {expr: {index: cfg, key: "host"}, expect: string}
  - {expr: {binary: [n, "..", "!"]}, expect: string}
  - {expr: {binary: [n, "<", 2]}, expect: boolean}
  - {expr: f, expect: any}
  - expr: missing
`,
	})

	report, err := Analyze(context.Background(), result.Root, result.Index, AnalyzeOptions{Logger: quiet})
	require.NoError(t, err)
	assert.False(t, report.Failed())
	require.NotNil(t, report.Code)
	require.Len(t, report.Functions, 2)
	assert.Same(t, report.Code, report.Functions[0].Parent())
	assert.Same(t, report.Functions[0], report.Functions[1].Parent())

	var checks []string
	for _, c := range report.Checks {
		checks = append(checks, c.Check.Name+"="+c.Result.String())
	}
	assert.Equal(t, []string{"literal=YES", "upcast=YES", "downcast=NO", "strict nil=NO", "check 5=YES"}, checks)

	var inferred []string
	for _, q := range report.Inferences {
		inferred = append(inferred, q.Rendered())
	}
	assert.Equal(t, []string{"number", "number", "string", "string", "boolean", "any", "?"}, inferred)
}

func TestAnalyzeReportsMissedExpectations(t *testing.T) {
	result := mustLoad(t, "a.yaml", map[string]string{"a.yaml": `
checks:
  - {required: string, candidate: number, expect: yes}
infer:
  - {expr: 1, expect: string}
`})
	report, err := Analyze(context.Background(), result.Root, result.Index, AnalyzeOptions{Logger: quiet})
	require.NoError(t, err)
	assert.True(t, report.Failed())
	assert.True(t, report.Checks[0].Failed())
	assert.True(t, report.Inferences[0].Failed())
	assert.Equal(t, "1", report.Inferences[0].Rendered())
}

func TestAnalyzeCancelled(t *testing.T) {
	result := mustLoad(t, "a.yaml", map[string]string{"a.yaml": `
chunk:
  - {local: [a], values: [1]}
`})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Analyze(ctx, result.Root, result.Index, AnalyzeOptions{Logger: quiet})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadFromDisk(t *testing.T) {
	l := NewLoader(nil, NewDefaultFileResolver(), 0)
	l.SetLogger(quiet)
	result, err := l.LoadRootFile("testdata/shapes.yaml")
	require.NoError(t, err, "errors: %v", result.Errors)
	assert.Len(t, result.Order, 2)
	assert.True(t, strings.HasSuffix(result.Order[0], "testdata/base.yaml"))

	report, err := Analyze(context.Background(), result.Root, result.Index, AnalyzeOptions{Logger: quiet})
	require.NoError(t, err)
	assert.False(t, report.Failed())
}
