package infer

import (
	"github.com/panyam/luaty/decl"
	"github.com/panyam/luaty/types"
)

// Strategy is one way of inferring an expression's type.  A strategy that
// has no opinion returns (nil, false, nil) and the next one is asked.
type Strategy interface {
	Name() string
	Infer(r *Request, expr decl.Expr) (types.Ty, bool, error)
}

// StrategyFunc adapts a function to a Strategy.
type StrategyFunc struct {
	Label string
	Func  func(r *Request, expr decl.Expr) (types.Ty, bool, error)
}

func (s StrategyFunc) Name() string { return s.Label }
func (s StrategyFunc) Infer(r *Request, expr decl.Expr) (types.Ty, bool, error) {
	return s.Func(r, expr)
}

// DefaultStrategies returns the built-in strategies, one per expression kind.
func DefaultStrategies() []Strategy {
	return []Strategy{
		StrategyFunc{"literal", inferLiteral},
		StrategyFunc{"paren", inferParen},
		StrategyFunc{"name", inferName},
		StrategyFunc{"unary", inferUnary},
		StrategyFunc{"binary", inferBinary},
		StrategyFunc{"index", inferIndex},
		StrategyFunc{"call", inferCall},
		StrategyFunc{"function", inferFunction},
		StrategyFunc{"table", inferTable},
	}
}

func inferLiteral(r *Request, expr decl.Expr) (types.Ty, bool, error) {
	lit, ok := expr.(*decl.LiteralExpr)
	if !ok {
		return nil, false, nil
	}
	switch lit.Kind {
	case decl.LiteralNil:
		return types.Nil, true, nil
	case decl.LiteralBool:
		return types.BoolLiteral(lit.Bool), true, nil
	case decl.LiteralNumber:
		return types.NumberLiteral(lit.Number), true, nil
	case decl.LiteralString:
		return types.StringLiteral(lit.Str), true, nil
	}
	return nil, false, nil
}

func inferParen(r *Request, expr decl.Expr) (types.Ty, bool, error) {
	p, ok := expr.(*decl.ParenExpr)
	if !ok {
		return nil, false, nil
	}
	return r.Infer(p.Inner)
}

func inferName(r *Request, expr decl.Expr) (types.Ty, bool, error) {
	n, ok := expr.(*decl.NameExpr)
	if !ok || r.ic.Resolver == nil {
		return nil, false, nil
	}
	if t, ok := r.ic.Resolver.ResolveName(n); ok {
		return t, true, nil
	}
	// A global named after a class refers to the class table.
	if c, ok := r.ic.Resolver.FindClass(n.Name); ok {
		return c, true, nil
	}
	return nil, false, nil
}

func inferUnary(r *Request, expr decl.Expr) (types.Ty, bool, error) {
	u, ok := expr.(*decl.UnaryExpr)
	if !ok {
		return nil, false, nil
	}
	switch u.Operator {
	case "not":
		return types.Boolean, true, nil
	case "-", "#", "~":
		return types.Number, true, nil
	}
	return nil, false, nil
}

func inferBinary(r *Request, expr decl.Expr) (types.Ty, bool, error) {
	b, ok := expr.(*decl.BinaryExpr)
	if !ok {
		return nil, false, nil
	}
	switch b.Operator {
	case "==", "~=", "<", "<=", ">", ">=":
		return types.Boolean, true, nil
	case "..":
		return types.String, true, nil
	case "+", "-", "*", "/", "//", "%", "^", "&", "|", "~", "<<", ">>":
		return types.Number, true, nil
	case "and":
		left, err := r.InferOrUnknown(b.Left)
		if err != nil {
			return nil, false, err
		}
		right, err := r.InferOrUnknown(b.Right)
		if err != nil {
			return nil, false, err
		}
		if hasNil(left) {
			return types.NewUnion(right, types.Nil), true, nil
		}
		return right, true, nil
	case "or":
		left, err := r.InferOrUnknown(b.Left)
		if err != nil {
			return nil, false, err
		}
		right, err := r.InferOrUnknown(b.Right)
		if err != nil {
			return nil, false, err
		}
		return types.NewUnion(withoutNil(left), right), true, nil
	}
	return nil, false, nil
}

// inferIndex resolves `a.b` through named members and `a[k]` through the
// narrowest indexer accepting the key's type.
func inferIndex(r *Request, expr decl.Expr) (types.Ty, bool, error) {
	ix, ok := expr.(*decl.IndexExpr)
	if !ok {
		return nil, false, nil
	}
	owner, ok, err := r.Infer(ix.Prefix)
	if err != nil || !ok || types.IsUnknown(owner) {
		return nil, false, err
	}
	if ix.Key == nil {
		return types.MemberType(r.search, owner, ix.Name)
	}
	key, ok, err := r.Infer(ix.Key)
	if err != nil || !ok || types.IsUnknown(key) {
		return nil, false, err
	}
	return types.IndexerType(r.search, owner, key, false)
}

// inferCall applies the callee's signature.  Generic parameters are bound
// from the argument types first.
func inferCall(r *Request, expr decl.Expr) (types.Ty, bool, error) {
	call, ok := expr.(*decl.CallExpr)
	if !ok {
		return nil, false, nil
	}
	callee, ok, err := r.Infer(call.Callee)
	if err != nil || !ok {
		return nil, false, err
	}
	receiver := callee
	if call.Method != "" {
		if callee, ok, err = types.MemberType(r.search, receiver, call.Method); err != nil || !ok {
			return nil, false, err
		}
	}
	sigs := signaturesOf(callee)
	if len(sigs) == 0 {
		return nil, false, nil
	}

	args := make([]types.Ty, len(call.Args))
	for i, a := range call.Args {
		if args[i], err = r.InferOrUnknown(a); err != nil {
			return nil, false, err
		}
	}

	returns := make([]types.Ty, 0, len(sigs))
	for _, sig := range sigs {
		ret, err := applySignature(r.search, sig, call.Method != "", receiver, args)
		if err != nil {
			return nil, false, err
		}
		returns = append(returns, ret)
	}
	return types.NewUnion(returns...), true, nil
}

func applySignature(sc *types.SearchContext, sig *types.Signature, colonCall bool, receiver types.Ty, args []types.Ty) (types.Ty, error) {
	if len(sig.Generics) == 0 {
		return sig.ReturnType(), nil
	}
	params := sig.ParamTypes()
	switch {
	case colonCall && !sig.Colon:
		args = append([]types.Ty{receiver}, args...)
	case !colonCall && sig.Colon && len(args) > 0:
		args = args[1:]
	}
	for len(params) < len(args) && sig.Variadic != nil {
		params = append(params, sig.Variadic)
	}
	sub, err := types.AnalyzeGenerics(sc, sig.Generics, params, args)
	if err != nil {
		return nil, err
	}
	return types.Substitute(sc, sig.ReturnType(), sub)
}

func signaturesOf(t types.Ty) []*types.Signature {
	switch v := t.(type) {
	case *types.Signature:
		return []*types.Signature{v}
	case *types.Union:
		var out []*types.Signature
		for _, m := range v.Members() {
			if s, ok := m.(*types.Signature); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func inferFunction(r *Request, expr decl.Expr) (types.Ty, bool, error) {
	fn, ok := expr.(*decl.FunctionExpr)
	if !ok {
		return nil, false, nil
	}
	sig := &types.Signature{Return: types.Unknown}
	for _, p := range fn.Params {
		sig.Params = append(sig.Params, &types.Param{Name: p.Name, Ty: types.Unknown})
	}
	if fn.Variadic {
		sig.Variadic = types.Unknown
	}
	return sig, true, nil
}

func inferTable(r *Request, expr decl.Expr) (types.Ty, bool, error) {
	if _, ok := expr.(*decl.TableExpr); !ok {
		return nil, false, nil
	}
	return types.Table, true, nil
}

func hasNil(t types.Ty) bool {
	if t == types.Nil {
		return true
	}
	u, ok := t.(*types.Union)
	return ok && u.Contains(types.Nil)
}

func withoutNil(t types.Ty) types.Ty {
	if t == types.Nil {
		return types.Void
	}
	u, ok := t.(*types.Union)
	if !ok {
		return t
	}
	var kept []types.Ty
	for _, m := range u.Members() {
		if m != types.Nil {
			kept = append(kept, m)
		}
	}
	return types.NewUnion(kept...)
}
