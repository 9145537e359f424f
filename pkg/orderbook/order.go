package orderbook

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

func (s Side) valid() bool {
	return s == BUY || s == SELL
}

func (s Side) Opposite() Side {
	if s == BUY {
		return SELL
	}
	return BUY
}

// MatchMode decides what happens to the part of a taker that does not fill.
type MatchMode string

const (
	// ModeLimit rests the remainder at the taker's price.
	ModeLimit MatchMode = "LIMIT"
	// ModeMarket ignores the taker's price and discards the remainder.
	ModeMarket MatchMode = "MARKET"
	// ModeIOC fills what it can within the price and discards the rest.
	ModeIOC MatchMode = "IOC"
	// ModeFOK fills completely within the price or not at all.
	ModeFOK MatchMode = "FOK"
)

func (m MatchMode) priceBounded() bool {
	return m != ModeMarket
}

type Order struct {
	TickID    string          `json:"tick_id"`
	ID        uint64          `json:"id"`
	Side      Side            `json:"side"`
	Size      decimal.Decimal `json:"size"`
	Price     decimal.Decimal `json:"price"`
	EntryTime time.Time       `json:"entry_time"`
	EventTime time.Time       `json:"event_time"`
}

func NewOrder(tickID string, id uint64, side Side, size, price decimal.Decimal, entryTime, eventTime time.Time) Order {
	return Order{
		TickID:    tickID,
		ID:        id,
		Side:      side,
		Size:      size,
		Price:     price,
		EntryTime: entryTime,
		EventTime: eventTime,
	}
}

// Notional is size times price.
func (o Order) Notional() decimal.Decimal {
	return o.Size.Mul(o.Price)
}
