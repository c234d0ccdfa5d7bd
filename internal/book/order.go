package book

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a single resting or transient unit of liquidity. Once admitted,
// every field except Volume is immutable — Volume only ever decreases, as
// the order is filled, until it reaches zero and is unlinked from its
// price level.
type Order struct {
	ID        int64
	Side      Side
	Price     decimal.Decimal
	HasPrice  bool // false for market orders
	Volume    decimal.Decimal
	Kind      Kind
	User      string // empty for simulator-originated liquidity
	Timestamp time.Time
}

// Request is the caller-supplied shape of a new order, before the book has
// assigned it an id or quantized its volume. It is the Go analogue of
// spec.md's order dictionary.
type Request struct {
	Side   Side
	Price  *decimal.Decimal // nil for market orders
	Volume decimal.Decimal
	Kind   Kind
	User   string
}
