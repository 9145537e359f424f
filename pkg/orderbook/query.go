package orderbook

import "github.com/shopspring/decimal"

var half = decimal.New(5, -1)

// LevelView is the aggregate state of one price level.
type LevelView struct {
	Price         decimal.Decimal `json:"price"`
	Size          decimal.Decimal `json:"size"`
	TotalNotional decimal.Decimal `json:"total_notional"`
	OrderCount    uint64          `json:"order_count"`
}

func (ob *LimitOrderBook) BestBid() (decimal.Decimal, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return ob.bestBid.Decimal, ob.bestBid.Valid
}

func (ob *LimitOrderBook) BestAsk() (decimal.Decimal, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return ob.bestAsk.Decimal, ob.bestAsk.Valid
}

// Spread is best ask minus best bid, no value while either side is empty.
func (ob *LimitOrderBook) Spread() (decimal.Decimal, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	if !ob.bestBid.Valid || !ob.bestAsk.Valid {
		return decimal.Zero, false
	}
	return ob.bestAsk.Decimal.Sub(ob.bestBid.Decimal), true
}

func (ob *LimitOrderBook) MidPrice() (decimal.Decimal, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	if !ob.bestBid.Valid || !ob.bestAsk.Valid {
		return decimal.Zero, false
	}
	return ob.bestAsk.Decimal.Add(ob.bestBid.Decimal).Mul(half), true
}

// Depth is the resting size at price on side, zero when there is no level.
func (ob *LimitOrderBook) Depth(side Side, price decimal.Decimal) decimal.Decimal {
	return ob.levelView(side, price).Size
}

func (ob *LimitOrderBook) Notional(side Side, price decimal.Decimal) decimal.Decimal {
	return ob.levelView(side, price).TotalNotional
}

func (ob *LimitOrderBook) OrderCount(side Side, price decimal.Decimal) uint64 {
	return ob.levelView(side, price).OrderCount
}

func (ob *LimitOrderBook) levelView(side Side, price decimal.Decimal) LevelView {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	level, ok := ob.sideFor(side).get(price)
	if !ok {
		return LevelView{Price: price, Size: decimal.Zero, TotalNotional: decimal.Zero}
	}
	return viewOf(level)
}

// OrdersAt lists the resting orders at price in time priority.
func (ob *LimitOrderBook) OrdersAt(side Side, price decimal.Decimal) []Order {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	level, ok := ob.sideFor(side).get(price)
	if !ok {
		return nil
	}
	return level.snapshot()
}

// VolumeAtPrice sums the notional of both sides at price. There is no value
// when neither side has a level there.
func (ob *LimitOrderBook) VolumeAtPrice(price decimal.Decimal) (decimal.Decimal, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	total, found := decimal.Zero, false
	for _, side := range []*bookSide{ob.bids, ob.asks} {
		if level, ok := side.get(price); ok {
			total = total.Add(level.totalNotional)
			found = true
		}
	}
	return total, found
}

// Prices lists the side's level prices in ascending order.
func (ob *LimitOrderBook) Prices(side Side) []decimal.Decimal {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	s := ob.sideFor(side)
	out := make([]decimal.Decimal, 0, s.len())
	s.levels.Ascend(func(level *Limit) bool {
		out = append(out, level.price)
		return true
	})
	return out
}

// Levels returns up to n levels starting at the best price. n <= 0 means all.
func (ob *LimitOrderBook) Levels(side Side, n int) []LevelView {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	var out []LevelView
	ob.sideFor(side).walk(func(level *Limit) bool {
		out = append(out, viewOf(level))
		return n <= 0 || len(out) < n
	})
	return out
}

func (ob *LimitOrderBook) GetOrder(id uint64) (Order, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	order, ok := ob.orders[id]
	if !ok {
		return Order{}, false
	}
	return *order, true
}

// Len is the number of resting orders.
func (ob *LimitOrderBook) Len() int {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return len(ob.orders)
}

func viewOf(level *Limit) LevelView {
	return LevelView{
		Price:         level.price,
		Size:          level.size,
		TotalNotional: level.totalNotional,
		OrderCount:    level.orderCount,
	}
}

// Snapshot is a consistent view of the top of the book.
type Snapshot struct {
	TickID  string              `json:"tick_id"`
	BestBid decimal.NullDecimal `json:"best_bid"`
	BestAsk decimal.NullDecimal `json:"best_ask"`
	Bids    []LevelView         `json:"bids"`
	Asks    []LevelView         `json:"asks"`
	Orders  int                 `json:"orders"`
}

// Snapshot captures best prices and up to depth levels per side under one
// read lock.
func (ob *LimitOrderBook) Snapshot(depth int) Snapshot {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	snap := Snapshot{
		TickID:  ob.tickID,
		BestBid: ob.bestBid,
		BestAsk: ob.bestAsk,
		Orders:  len(ob.orders),
	}
	collect := func(side *bookSide) []LevelView {
		var out []LevelView
		side.walk(func(level *Limit) bool {
			out = append(out, viewOf(level))
			return depth <= 0 || len(out) < depth
		})
		return out
	}
	snap.Bids = collect(ob.bids)
	snap.Asks = collect(ob.asks)
	return snap
}
