package engine

import (
	"context"
	"fmt"

	"github.com/joripage/limit-orderbook/pkg/orderbook"
	"golang.org/x/sync/errgroup"
)

// Router sends each order to the engine of its instrument. It never spans
// more than one book in a single operation.
type Router struct {
	engines map[string]*Engine
	order   []string
}

func NewRouter(engines ...*Engine) (*Router, error) {
	r := &Router{engines: make(map[string]*Engine, len(engines))}
	for _, e := range engines {
		if _, ok := r.engines[e.TickID()]; ok {
			return nil, fmt.Errorf("instrument %q registered twice", e.TickID())
		}
		r.engines[e.TickID()] = e
		r.order = append(r.order, e.TickID())
	}
	return r, nil
}

func (r *Router) Route(tickID string) (*Engine, error) {
	e, ok := r.engines[tickID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInstrument, tickID)
	}
	return e, nil
}

// Instruments lists tick ids in registration order.
func (r *Router) Instruments() []string {
	return append([]string(nil), r.order...)
}

// Run runs every engine until ctx is done.
func (r *Router) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, tickID := range r.order {
		e := r.engines[tickID]
		g.Go(func() error { return e.Run(ctx) })
	}
	return g.Wait()
}

func (r *Router) SubmitRestingOrder(ctx context.Context, order orderbook.Order) error {
	e, err := r.Route(order.TickID)
	if err != nil {
		return err
	}
	return e.SubmitRestingOrder(ctx, order)
}

func (r *Router) CancelOrder(ctx context.Context, tickID string, id uint64) (orderbook.Order, error) {
	e, err := r.Route(tickID)
	if err != nil {
		return orderbook.Order{}, err
	}
	return e.CancelOrder(ctx, id)
}

func (r *Router) MatchOrder(ctx context.Context, taker orderbook.Order, mode orderbook.MatchMode) (orderbook.MatchResult, error) {
	e, err := r.Route(taker.TickID)
	if err != nil {
		return orderbook.MatchResult{}, err
	}
	return e.MatchOrder(ctx, taker, mode)
}
