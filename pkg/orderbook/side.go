package orderbook

import (
	"github.com/google/btree"
	"github.com/shopspring/decimal"
)

const btreeDegree = 32

// bookSide is one side's price index, ascending by price. Bids read it from
// the high end and asks from the low end.
type bookSide struct {
	side   Side
	levels *btree.BTreeG[*Limit]
}

func newBookSide(side Side) *bookSide {
	return &bookSide{
		side: side,
		levels: btree.NewG(btreeDegree, func(a, b *Limit) bool {
			return a.price.LessThan(b.price)
		}),
	}
}

func (s *bookSide) get(price decimal.Decimal) (*Limit, bool) {
	return s.levels.Get(&Limit{price: price})
}

func (s *bookSide) getOrCreate(price decimal.Decimal) (*Limit, bool) {
	if level, ok := s.get(price); ok {
		return level, false
	}
	level := newLimit(price)
	s.levels.ReplaceOrInsert(level)
	return level, true
}

func (s *bookSide) delete(price decimal.Decimal) {
	s.levels.Delete(&Limit{price: price})
}

// best is the highest bid or the lowest ask.
func (s *bookSide) best() (*Limit, bool) {
	if s.side == BUY {
		return s.levels.Max()
	}
	return s.levels.Min()
}

// walk visits levels from the best price outwards until fn returns false.
func (s *bookSide) walk(fn func(*Limit) bool) {
	if s.side == BUY {
		s.levels.Descend(fn)
		return
	}
	s.levels.Ascend(fn)
}

func (s *bookSide) len() int {
	return s.levels.Len()
}
