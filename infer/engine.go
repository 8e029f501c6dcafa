package infer

import (
	"context"

	"github.com/panyam/luaty/decl"
	"github.com/panyam/luaty/logging"
	"github.com/panyam/luaty/types"
)

// Resolver supplies what only the host knows: declared types of names and
// classes by name.
type Resolver interface {
	ResolveName(ref *decl.NameExpr) (types.Ty, bool)
	FindClass(name string) (*types.Class, bool)
}

// Context describes one analysis.  Key separates cache entries of analyses
// that resolve names differently over the same syntax.
type Context struct {
	Resolver Resolver
	Key      string
}

// Engine infers expression types by asking its strategies in order.  The
// first strategy with an opinion wins.  An Engine may be shared between
// goroutines as long as its strategies are stateless.
type Engine struct {
	strategies []Strategy
	cache      *Cache
	logger     logging.Logger
}

type Option func(*Engine)

// WithStrategies replaces the default strategy list.
func WithStrategies(strategies ...Strategy) Option {
	return func(e *Engine) { e.strategies = strategies }
}

// PrependStrategies adds strategies ahead of the current list.
func PrependStrategies(strategies ...Strategy) Option {
	return func(e *Engine) { e.strategies = append(append([]Strategy{}, strategies...), e.strategies...) }
}

func WithCache(c *Cache) Option {
	return func(e *Engine) { e.cache = c }
}

func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{strategies: DefaultStrategies()}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.Default()
	}
	return e
}

func (e *Engine) Strategies() []Strategy { return e.strategies }
func (e *Engine) Cache() *Cache          { return e.cache }

// Infer returns the type of expr.  ok is false when no strategy could decide.
// The only error is the cancellation of ctx; no partial result is returned
// with it.
func (e *Engine) Infer(ctx context.Context, expr decl.Expr, ic *Context) (types.Ty, bool, error) {
	if ic == nil {
		ic = &Context{}
	}
	r := &Request{ic: ic, search: types.NewSearchContext(ctx), engine: e}
	t, ok, err := r.Infer(expr)
	if err != nil {
		return nil, false, err
	}
	return t, ok, nil
}

// Request is the state of one Infer call, handed to every strategy.
type Request struct {
	ic     *Context
	search *types.SearchContext
	engine *Engine
}

func (r *Request) Search() *types.SearchContext { return r.search }
func (r *Request) Analysis() *Context           { return r.ic }

// Infer infers a sub expression within the same request.
func (r *Request) Infer(expr decl.Expr) (types.Ty, bool, error) {
	if expr == nil {
		return nil, false, nil
	}
	if err := r.cancelled(); err != nil {
		return nil, false, err
	}
	e := r.engine
	if e.cache != nil {
		if t, ok, found := e.cache.Get(expr, r.ic.Key); found {
			return t, ok, nil
		}
	}
	for _, s := range e.strategies {
		t, ok, err := s.Infer(r, expr)
		if err != nil {
			return nil, false, err
		}
		if ok && t != nil {
			e.logger.Debug("infer %s via %s: %s", expr, s.Name(), t)
			r.remember(expr, t, true)
			return t, true, nil
		}
	}
	r.remember(expr, nil, false)
	return nil, false, nil
}

// InferOrUnknown is Infer with undecided results mapped to Unknown.
func (r *Request) InferOrUnknown(expr decl.Expr) (types.Ty, error) {
	t, ok, err := r.Infer(expr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return types.Unknown, nil
	}
	return t, nil
}

func (r *Request) cancelled() error {
	if err := r.search.Err(); err != nil {
		return err
	}
	return r.search.Context().Err()
}

func (r *Request) remember(expr decl.Expr, t types.Ty, ok bool) {
	if r.engine.cache != nil {
		r.engine.cache.Put(expr, r.ic.Key, t, ok)
	}
}
