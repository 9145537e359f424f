package orderbook

import (
	"fmt"

	"github.com/gammazero/deque"
	"github.com/shopspring/decimal"
)

// Limit holds every resting order at one exact price on one side.
//
// Orders are reachable by id through the map and in time priority through the
// queue. Both hold the same *Order, which is owned by the level.
type Limit struct {
	price decimal.Decimal

	orders map[uint64]*Order
	queue  deque.Deque[*Order]

	size          decimal.Decimal
	totalNotional decimal.Decimal
	orderCount    uint64
}

func newLimit(price decimal.Decimal) *Limit {
	return &Limit{
		price:         price,
		orders:        make(map[uint64]*Order),
		size:          decimal.Zero,
		totalNotional: decimal.Zero,
	}
}

func (l *Limit) Price() decimal.Decimal         { return l.price }
func (l *Limit) Size() decimal.Decimal          { return l.size }
func (l *Limit) TotalNotional() decimal.Decimal { return l.totalNotional }
func (l *Limit) OrderCount() uint64             { return l.orderCount }

func (l *Limit) IsEmpty() bool {
	return l.size.IsZero()
}

func (l *Limit) add(order *Order) error {
	if !order.Price.Equal(l.price) {
		panic(fmt.Errorf("%w: order %d at %s, level %s", ErrPriceMismatch, order.ID, order.Price, l.price))
	}
	if _, ok := l.orders[order.ID]; ok {
		return fmt.Errorf("%w: %d at level %s", ErrDuplicateOrderID, order.ID, l.price)
	}

	l.orders[order.ID] = order
	l.queue.PushBack(order)
	l.size = l.size.Add(order.Size)
	l.totalNotional = l.totalNotional.Add(order.Notional())
	l.orderCount++
	return nil
}

func (l *Limit) remove(id uint64) (*Order, bool) {
	order, ok := l.orders[id]
	if !ok {
		return nil, false
	}

	delete(l.orders, id)
	if i := l.queue.Index(func(o *Order) bool { return o.ID == id }); i >= 0 {
		l.queue.Remove(i)
	}
	l.size = l.size.Sub(order.Size)
	l.totalNotional = l.totalNotional.Sub(order.Notional())
	l.orderCount--
	l.settle()
	return order, true
}

// front is the order with time priority, nil when the level is empty.
func (l *Limit) front() *Order {
	if l.queue.Len() == 0 {
		return nil
	}
	return l.queue.Front()
}

// fillFront takes qty off the order with time priority. The order leaves the
// level when nothing is left of it.
func (l *Limit) fillFront(qty decimal.Decimal) *Order {
	order := l.queue.Front()
	if qty.GreaterThan(order.Size) {
		panic(fmt.Errorf("fill %s exceeds order %d size %s", qty, order.ID, order.Size))
	}

	order.Size = order.Size.Sub(qty)
	l.size = l.size.Sub(qty)
	l.totalNotional = l.totalNotional.Sub(qty.Mul(l.price))

	if order.Size.IsZero() {
		l.queue.PopFront()
		delete(l.orders, order.ID)
		l.orderCount--
		l.settle()
	}
	return order
}

func (l *Limit) settle() {
	if l.orderCount == 0 {
		l.size = decimal.Zero
		l.totalNotional = decimal.Zero
	}
}

// snapshot copies the resting orders in time priority.
func (l *Limit) snapshot() []Order {
	out := make([]Order, 0, l.queue.Len())
	for i := 0; i < l.queue.Len(); i++ {
		out = append(out, *l.queue.At(i))
	}
	return out
}
