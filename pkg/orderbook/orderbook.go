// file: pkg/orderbook/orderbook.go

package orderbook

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LimitOrderBook is a single-instrument book matching in price/time priority.
//
// Every mutation runs to completion under one exclusive lock, so readers never
// observe a half-applied match. Queries share a read lock.
type LimitOrderBook struct {
	tickID string

	bids *bookSide
	asks *bookSide

	// flat index, every entry lives in exactly one level
	orders map[uint64]*Order

	bestBid decimal.NullDecimal
	bestAsk decimal.NullDecimal

	callbacks []func([]Fill)
	logger    *zap.Logger

	mu sync.RWMutex
}

type Option func(*LimitOrderBook)

func WithLogger(logger *zap.Logger) Option {
	return func(ob *LimitOrderBook) {
		if logger != nil {
			ob.logger = logger
		}
	}
}

func NewLimitOrderBook(tickID string, opts ...Option) *LimitOrderBook {
	ob := &LimitOrderBook{
		tickID: tickID,
		bids:   newBookSide(BUY),
		asks:   newBookSide(SELL),
		orders: make(map[uint64]*Order),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ob)
	}
	ob.logger = ob.logger.With(zap.String("tick_id", tickID))
	return ob
}

func (ob *LimitOrderBook) TickID() string {
	return ob.tickID
}

// OnTrade registers fn to receive the fills of every match. Callbacks run after
// the book is unlocked and must not assume the book is unchanged since.
func (ob *LimitOrderBook) OnTrade(fn func([]Fill)) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	ob.callbacks = append(ob.callbacks, fn)
}

// SubmitRestingOrder adds a passive order without matching it.
func (ob *LimitOrderBook) SubmitRestingOrder(order Order) error {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	if err := ob.validate(order, true); err != nil {
		return err
	}
	if err := ob.insert(&order); err != nil {
		return err
	}
	ob.refreshTop()
	return nil
}

// CancelOrder removes a resting order and returns what was left of it.
func (ob *LimitOrderBook) CancelOrder(id uint64) (Order, error) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	order, ok := ob.orders[id]
	if !ok {
		return Order{}, fmt.Errorf("%w: %d", ErrOrderNotFound, id)
	}

	side := ob.sideFor(order.Side)
	level, ok := side.get(order.Price)
	if !ok {
		panic(fmt.Errorf("indexed order %d has no level at %s", id, order.Price))
	}
	if _, ok := level.remove(id); !ok {
		panic(fmt.Errorf("indexed order %d missing from level %s", id, order.Price))
	}
	if level.IsEmpty() {
		side.delete(level.price)
		ob.logger.Debug("price level removed", zap.String("side", string(side.side)), zap.Stringer("price", level.price))
	}
	delete(ob.orders, id)
	ob.refreshTop()
	return *order, nil
}

// MatchOrder runs taker against the opposite side until it is filled or the
// best opposite price is no longer marketable. What happens to the rest is
// decided by mode.
func (ob *LimitOrderBook) MatchOrder(taker Order, mode MatchMode) (MatchResult, error) {
	ob.mu.Lock()
	result, err := ob.match(taker, mode)
	callbacks := ob.callbacks
	ob.mu.Unlock()

	if err != nil {
		return result, err
	}
	if len(result.Fills) > 0 {
		for _, cb := range callbacks {
			cb(result.Fills)
		}
	}
	return result, nil
}

func (ob *LimitOrderBook) match(taker Order, mode MatchMode) (MatchResult, error) {
	switch mode {
	case ModeLimit, ModeMarket, ModeIOC, ModeFOK:
	default:
		return MatchResult{}, fmt.Errorf("%w: unknown match mode %q", ErrInvalidOrder, mode)
	}
	if err := ob.validate(taker, mode.priceBounded()); err != nil {
		return MatchResult{}, err
	}
	if _, ok := ob.orders[taker.ID]; ok {
		return MatchResult{}, fmt.Errorf("%w: %d", ErrDuplicateOrderID, taker.ID)
	}

	result := MatchResult{Filled: decimal.Zero, Remaining: taker.Size}
	if mode == ModeFOK && ob.marketableSize(taker, taker.Size).LessThan(taker.Size) {
		return result, nil
	}

	counter := ob.sideFor(taker.Side.Opposite())
	remaining := taker.Size
	for remaining.IsPositive() {
		level, ok := counter.best()
		if !ok || (mode.priceBounded() && !marketable(taker, level.price)) {
			break
		}

		for remaining.IsPositive() && !level.IsEmpty() {
			qty := decimal.Min(remaining, level.front().Size)
			maker := level.fillFront(qty)
			remaining = remaining.Sub(qty)
			if maker.Size.IsZero() {
				delete(ob.orders, maker.ID)
			}
			result.Fills = append(result.Fills, Fill{
				TickID:         ob.tickID,
				Price:          level.price,
				Quantity:       qty,
				MakerID:        maker.ID,
				TakerID:        taker.ID,
				TakerSide:      taker.Side,
				MakerRemaining: maker.Size,
				Time:           taker.EventTime,
			})
		}

		if level.IsEmpty() {
			counter.delete(level.price)
			ob.logger.Debug("price level consumed", zap.String("side", string(counter.side)), zap.Stringer("price", level.price))
		}
	}

	result.Filled = taker.Size.Sub(remaining)
	result.Remaining = remaining

	if mode == ModeLimit && remaining.IsPositive() {
		rest := taker
		rest.Size = remaining
		if err := ob.insert(&rest); err != nil {
			panic(fmt.Errorf("rest taker %d after match: %w", taker.ID, err))
		}
		result.Rested = true
	}

	ob.refreshTop()
	return result, nil
}

// marketableSize sums opposite liquidity the taker could reach, stopping as
// soon as want is covered.
func (ob *LimitOrderBook) marketableSize(taker Order, want decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	ob.sideFor(taker.Side.Opposite()).walk(func(level *Limit) bool {
		if !marketable(taker, level.price) {
			return false
		}
		total = total.Add(level.size)
		return total.LessThan(want)
	})
	return total
}

func marketable(taker Order, bookPrice decimal.Decimal) bool {
	if taker.Side == BUY {
		return bookPrice.LessThanOrEqual(taker.Price)
	}
	return bookPrice.GreaterThanOrEqual(taker.Price)
}

func (ob *LimitOrderBook) insert(order *Order) error {
	if _, ok := ob.orders[order.ID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateOrderID, order.ID)
	}

	side := ob.sideFor(order.Side)
	level, created := side.getOrCreate(order.Price)
	if err := level.add(order); err != nil {
		if created {
			side.delete(order.Price)
		}
		return err
	}
	if created {
		ob.logger.Debug("price level created", zap.String("side", string(side.side)), zap.Stringer("price", order.Price))
	}
	ob.orders[order.ID] = order
	return nil
}

func (ob *LimitOrderBook) validate(order Order, priceBounded bool) error {
	if !order.Side.valid() {
		return fmt.Errorf("%w: order %d has side %q", ErrInvalidOrder, order.ID, order.Side)
	}
	if !order.Size.IsPositive() {
		return fmt.Errorf("%w: order %d has size %s", ErrInvalidOrder, order.ID, order.Size)
	}
	if priceBounded && !order.Price.IsPositive() {
		return fmt.Errorf("%w: order %d has price %s", ErrInvalidOrder, order.ID, order.Price)
	}
	if order.TickID != "" && ob.tickID != "" && order.TickID != ob.tickID {
		return fmt.Errorf("%w: order %d for %q, book %q", ErrInstrumentMismatch, order.ID, order.TickID, ob.tickID)
	}
	return nil
}

func (ob *LimitOrderBook) sideFor(side Side) *bookSide {
	if side == BUY {
		return ob.bids
	}
	return ob.asks
}

func (ob *LimitOrderBook) refreshTop() {
	ob.bestBid = bestOf(ob.bids)
	ob.bestAsk = bestOf(ob.asks)
}

func bestOf(side *bookSide) decimal.NullDecimal {
	level, ok := side.best()
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: level.price, Valid: true}
}
