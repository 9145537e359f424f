package orderbook

import "errors"

var (
	ErrDuplicateOrderID   = errors.New("duplicate order id")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidOrder       = errors.New("invalid order")
	ErrInstrumentMismatch = errors.New("instrument mismatch")

	// ErrPriceMismatch is raised as a panic: a level only ever receives orders
	// at its own price.
	ErrPriceMismatch = errors.New("order price does not match level price")
)
