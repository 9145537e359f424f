package orderbook

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fill is one maker/taker execution at the maker's price.
type Fill struct {
	TickID         string          `json:"tick_id"`
	Price          decimal.Decimal `json:"price"`
	Quantity       decimal.Decimal `json:"quantity"`
	MakerID        uint64          `json:"maker_id"`
	TakerID        uint64          `json:"taker_id"`
	TakerSide      Side            `json:"taker_side"`
	MakerRemaining decimal.Decimal `json:"maker_remaining"`
	Time           time.Time       `json:"time"`
}

type MatchResult struct {
	Fills     []Fill
	Filled    decimal.Decimal
	Remaining decimal.Decimal
	// Rested is set when the remainder was added to the book.
	Rested bool
}
