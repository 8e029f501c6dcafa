package loader

import (
	"context"
	"fmt"

	"github.com/panyam/luaty/decl"
	"github.com/panyam/luaty/flow"
	"github.com/panyam/luaty/infer"
	"github.com/panyam/luaty/logging"
	"github.com/panyam/luaty/types"
)

// AnalyzeOptions tune Analyze.  Zero values pick defaults.
type AnalyzeOptions struct {
	Engine *infer.Engine
	Mode   types.Mode
	Logger logging.Logger
}

// CheckOutcome is the result of one variance check.
type CheckOutcome struct {
	Check  *Check
	Result types.Variance
	Err    error
}

// Failed reports whether the check errored or missed its expectation.
func (o *CheckOutcome) Failed() bool {
	return o.Err != nil || (o.Check.HasExpect && o.Result != o.Check.Expect)
}

// InferOutcome is the result of one inference query.
type InferOutcome struct {
	Query *Query
	Type  types.Ty
	Found bool
	Err   error
}

// Rendered is the inferred type as text, "?" when undecided.
func (o *InferOutcome) Rendered() string {
	if !o.Found || o.Type == nil {
		return "?"
	}
	return o.Type.String()
}

func (o *InferOutcome) Failed() bool {
	return o.Err != nil || (o.Query.Expect != "" && o.Rendered() != o.Query.Expect)
}

// Report collects everything Analyze found for one unit.
type Report struct {
	File       string
	Code       *flow.PseudoCode
	Functions  []*flow.PseudoCode
	Checks     []*CheckOutcome
	Inferences []*InferOutcome
}

func (r *Report) Failed() bool {
	for _, c := range r.Checks {
		if c.Failed() {
			return true
		}
	}
	for _, q := range r.Inferences {
		if q.Failed() {
			return true
		}
	}
	return false
}

// Analyze compiles the unit's chunk and every function inside it, then runs
// its checks and inference queries.  Only cancellation and compile errors are
// returned; per check and per query errors land in the report.
func Analyze(ctx context.Context, unit *Unit, index *Index, opts AnalyzeOptions) (*Report, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	report := &Report{File: unit.Path}

	if unit.Chunk != nil && unit.Chunk.Body != nil {
		compiler := flow.NewCompiler(flow.WithLogger(opts.Logger))
		code, err := compiler.Compile(ctx, unit.Chunk.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", unit.Path, err)
		}
		if err := flow.Verify(code); err != nil {
			return nil, fmt.Errorf("%s: %w", unit.Path, err)
		}
		report.Code = code
		if err := compileFunctions(ctx, compiler, unit.Chunk.Body, code, report); err != nil {
			return nil, fmt.Errorf("%s: %w", unit.Path, err)
		}
	}

	sc := types.NewSearchContext(ctx)
	for _, check := range unit.Checks {
		v, err := types.ContravariantOf(sc, check.Required, check.Candidate, check.Mode|opts.Mode)
		if err != nil && ctx.Err() != nil {
			return nil, err
		}
		report.Checks = append(report.Checks, &CheckOutcome{Check: check, Result: v, Err: err})
	}

	if len(unit.Queries) > 0 {
		host := NewHost(index)
		exprs := make([]decl.Expr, len(unit.Queries))
		for i, q := range unit.Queries {
			exprs[i] = q.Expr
		}
		host.Bind(unit.Chunk, unit.Declared, exprs...)
		engine := opts.Engine
		if engine == nil {
			engine = infer.NewEngine(infer.WithCache(infer.NewCache(host.Fresh)), infer.WithLogger(opts.Logger))
		}
		ic := &infer.Context{Resolver: host, Key: unit.Path}
		for _, q := range unit.Queries {
			t, ok, err := engine.Infer(ctx, q.Expr, ic)
			if err != nil && ctx.Err() != nil {
				return nil, err
			}
			report.Inferences = append(report.Inferences, &InferOutcome{Query: q, Type: t, Found: ok, Err: err})
		}
	}
	opts.Logger.Debug("analyzed %s: %d functions, %d checks, %d queries", unit.Path, len(report.Functions), len(report.Checks), len(report.Inferences))
	return report, nil
}

// compileFunctions compiles each function found in block into a unit nested
// under parent, recursing into function bodies with the new unit as parent.
func compileFunctions(ctx context.Context, c *flow.Compiler, block *decl.Block, parent *flow.PseudoCode, report *Report) error {
	var err error
	decl.Walk(block, func(n decl.Node) bool {
		if err != nil {
			return false
		}
		fn, ok := n.(*decl.FunctionExpr)
		if !ok || fn.Body == nil {
			return true
		}
		var code *flow.PseudoCode
		if code, err = c.CompileFunction(ctx, fn, parent); err != nil {
			return false
		}
		if err = flow.Verify(code); err != nil {
			return false
		}
		report.Functions = append(report.Functions, code)
		err = compileFunctions(ctx, c, fn.Body, code, report)
		return false
	})
	return err
}
