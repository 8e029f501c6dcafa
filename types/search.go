package types

import "context"

// CheckInterval is how many recursion steps pass between cancellation polls.
const CheckInterval = 64

// SearchContext carries cancellation through type queries.  Once the
// underlying context is done every query started from this SearchContext
// fails with the context's error.  A SearchContext belongs to one request and
// must not be shared between goroutines.
type SearchContext struct {
	ctx   context.Context
	steps int
	err   error
}

func NewSearchContext(ctx context.Context) *SearchContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &SearchContext{ctx: ctx}
}

// Background returns a SearchContext that is never cancelled.
func Background() *SearchContext {
	return NewSearchContext(context.Background())
}

func (sc *SearchContext) Context() context.Context { return sc.ctx }

// Err returns the recorded cancellation error, if any.
func (sc *SearchContext) Err() error { return sc.err }

// Steps returns the number of recursion steps taken so far.
func (sc *SearchContext) Steps() int { return sc.steps }

// step counts one unit of work and polls the context every CheckInterval steps.
func (sc *SearchContext) step() error {
	if sc.err != nil {
		return sc.err
	}
	if sc.steps%CheckInterval == 0 {
		sc.err = sc.ctx.Err()
	}
	sc.steps++
	return sc.err
}

func orBackground(sc *SearchContext) *SearchContext {
	if sc == nil {
		return Background()
	}
	return sc
}
