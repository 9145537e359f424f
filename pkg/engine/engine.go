package engine

import (
	"context"
	"errors"
	"time"

	"github.com/joripage/limit-orderbook/pkg/logging"
	"github.com/joripage/limit-orderbook/pkg/metrics"
	"github.com/joripage/limit-orderbook/pkg/orderbook"
	"go.uber.org/zap"
)

var (
	ErrEngineStopped     = errors.New("engine stopped")
	ErrUnknownInstrument = errors.New("unknown instrument")
)

const (
	defaultQueueSize = 1024
	defaultDepth     = 10
)

type FillPublisher interface {
	PublishFills(ctx context.Context, fills []orderbook.Fill) error
}

type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, snap orderbook.Snapshot) error
}

type commandKind string

const (
	cmdSubmit commandKind = "submit"
	cmdCancel commandKind = "cancel"
	cmdMatch  commandKind = "match"
)

type command struct {
	ctx   context.Context
	kind  commandKind
	order orderbook.Order
	id    uint64
	mode  orderbook.MatchMode
	reply chan reply
}

type reply struct {
	result orderbook.MatchResult
	order  orderbook.Order
	err    error
}

// Engine owns one book and applies commands to it from a single goroutine in
// arrival order. Read-only queries go straight to Book().
type Engine struct {
	book *orderbook.LimitOrderBook
	cmds chan command
	done chan struct{}

	fillPublishers     []FillPublisher
	snapshotPublishers []SnapshotPublisher
	metrics            *metrics.Metrics
	logger             *logging.Logger

	queueSize int
	depth     int
}

type Option func(*Engine)

func WithFillPublisher(p FillPublisher) Option {
	return func(e *Engine) { e.fillPublishers = append(e.fillPublishers, p) }
}

func WithSnapshotPublisher(p SnapshotPublisher) Option {
	return func(e *Engine) { e.snapshotPublishers = append(e.snapshotPublishers, p) }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithQueueSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.queueSize = n
		}
	}
}

// WithDepth sets how many levels per side go into published snapshots.
func WithDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.depth = n
		}
	}
}

func New(tickID string, opts ...Option) *Engine {
	e := &Engine{
		done:      make(chan struct{}),
		logger:    logging.FromZap(zap.NewNop()),
		queueSize: defaultQueueSize,
		depth:     defaultDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(zap.String("tick_id", tickID))
	e.cmds = make(chan command, e.queueSize)
	e.book = orderbook.NewLimitOrderBook(tickID, orderbook.WithLogger(e.logger.Zap()))
	return e
}

func (e *Engine) TickID() string {
	return e.book.TickID()
}

func (e *Engine) Book() *orderbook.LimitOrderBook {
	return e.book
}

// Run processes commands until ctx is done. It must be called once.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)
	e.logger.Info(ctx, "engine started")

	for {
		select {
		case <-ctx.Done():
			e.logger.Info(ctx, "engine stopped")
			return ctx.Err()
		case cmd := <-e.cmds:
			e.handle(ctx, cmd)
		}
	}
}

func (e *Engine) SubmitRestingOrder(ctx context.Context, order orderbook.Order) error {
	r, err := e.do(ctx, command{kind: cmdSubmit, order: order})
	if err != nil {
		return err
	}
	return r.err
}

func (e *Engine) CancelOrder(ctx context.Context, id uint64) (orderbook.Order, error) {
	r, err := e.do(ctx, command{kind: cmdCancel, id: id})
	if err != nil {
		return orderbook.Order{}, err
	}
	return r.order, r.err
}

func (e *Engine) MatchOrder(ctx context.Context, taker orderbook.Order, mode orderbook.MatchMode) (orderbook.MatchResult, error) {
	r, err := e.do(ctx, command{kind: cmdMatch, order: taker, mode: mode})
	if err != nil {
		return orderbook.MatchResult{}, err
	}
	return r.result, r.err
}

func (e *Engine) do(ctx context.Context, cmd command) (reply, error) {
	cmd.ctx = ctx
	cmd.reply = make(chan reply, 1)

	select {
	case e.cmds <- cmd:
	case <-e.done:
		return reply{}, ErrEngineStopped
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}

	select {
	case r := <-cmd.reply:
		return r, nil
	case <-e.done:
		return reply{}, ErrEngineStopped
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
}

func (e *Engine) handle(runCtx context.Context, cmd command) {
	ctx := logging.WithRequestID(cmd.ctx, logging.NewRequestID())

	// a caller that gave up while queued gets nothing applied
	if err := cmd.ctx.Err(); err != nil {
		cmd.reply <- reply{err: err}
		return
	}

	start := time.Now()
	var r reply
	switch cmd.kind {
	case cmdSubmit:
		r.err = e.book.SubmitRestingOrder(cmd.order)
	case cmdCancel:
		r.order, r.err = e.book.CancelOrder(cmd.id)
	case cmdMatch:
		r.result, r.err = e.book.MatchOrder(cmd.order, cmd.mode)
	}
	e.observe(cmd, r, time.Since(start))

	if r.err != nil {
		cmd.reply <- r
		e.logger.Debug(ctx, "command rejected", zap.String("command", string(cmd.kind)), zap.Error(r.err))
		return
	}
	orderID := cmd.order.ID
	if cmd.kind == cmdCancel {
		orderID = cmd.id
	}
	e.logger.Debug(ctx, "command applied",
		zap.String("command", string(cmd.kind)),
		zap.Uint64("order_id", orderID),
		zap.Int("fills", len(r.result.Fills)),
	)
	// sinks see the fills before the caller does
	e.publish(runCtx, r.result.Fills)
	cmd.reply <- r
}

func (e *Engine) publish(ctx context.Context, fills []orderbook.Fill) {
	if len(fills) > 0 {
		for _, p := range e.fillPublishers {
			if err := p.PublishFills(ctx, fills); err != nil {
				e.publishFailed(ctx, "fills", err)
			}
		}
	}
	if len(e.snapshotPublishers) == 0 {
		return
	}
	snap := e.book.Snapshot(e.depth)
	for _, p := range e.snapshotPublishers {
		if err := p.PublishSnapshot(ctx, snap); err != nil {
			e.publishFailed(ctx, "snapshot", err)
		}
	}
}

func (e *Engine) publishFailed(ctx context.Context, sink string, err error) {
	e.logger.Error(ctx, "publish failed", zap.String("sink", sink), zap.Error(err))
	if e.metrics != nil {
		e.metrics.PublishErrorsTotal.WithLabelValues(e.TickID(), sink).Inc()
	}
}

func (e *Engine) observe(cmd command, r reply, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	tick := e.TickID()
	e.metrics.OrdersReceivedTotal.WithLabelValues(tick, string(cmd.kind)).Inc()
	e.metrics.CommandLatencySeconds.WithLabelValues(tick, string(cmd.kind)).Observe(elapsed.Seconds())
	if r.err != nil {
		e.metrics.OrdersRejectedTotal.WithLabelValues(tick, rejectReason(r.err)).Inc()
		return
	}

	if n := len(r.result.Fills); n > 0 {
		e.metrics.FillsTotal.WithLabelValues(tick).Add(float64(n))
		e.metrics.FilledQuantityTotal.WithLabelValues(tick).Add(r.result.Filled.InexactFloat64())
	}
	snap := e.book.Snapshot(1)
	e.metrics.RestingOrders.WithLabelValues(tick).Set(float64(snap.Orders))
	e.metrics.BestBidPrice.WithLabelValues(tick).Set(metrics.Gauge(snap.BestBid))
	e.metrics.BestAskPrice.WithLabelValues(tick).Set(metrics.Gauge(snap.BestAsk))
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, orderbook.ErrDuplicateOrderID):
		return "duplicate_order_id"
	case errors.Is(err, orderbook.ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, orderbook.ErrInvalidOrder):
		return "invalid_order"
	case errors.Is(err, orderbook.ErrInstrumentMismatch):
		return "instrument_mismatch"
	}
	return "other"
}
