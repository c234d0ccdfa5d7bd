package book

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one append-only tape entry: a single fill between a taker (the
// incoming order) and a maker (the resting order it consumed).
type Trade struct {
	ID     int64
	Side   Side // the taker's side
	Price  decimal.Decimal
	Volume decimal.Decimal
	Time   time.Time
	Taker  string // empty if the taker had no user
	Maker  string // empty if the maker had no user
}

// PositionSample and PnLSample are points on a per-user time series. Every
// user's series shares the same time axis: a sample is appended for every
// user on every trade, even when that user wasn't a party to it, so the
// series can be read as a consistent snapshot at any trade's timestamp.
type PositionSample struct {
	Time     time.Time
	Position decimal.Decimal
}

type PnLSample struct {
	Time time.Time
	PnL  decimal.Decimal
}

// MidPriceSample is a point on the book-wide mid-price time series.
type MidPriceSample struct {
	Time  time.Time
	Price decimal.Decimal
	Valid bool // false when mid was undefined (one side of the book empty)
}
