// Package book implements the price-time-priority limit order book: the
// price level queues, the per-side ladders, the matching engine, and the
// per-user account ledger it maintains as a side effect of matching.
package book

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Side is the intent of an order: buy (bid) or sell (ask).
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

// ParseSide converts a wire-level side string into a Side, validating it.
// This is the boundary where InvalidSide is raised for arbitrary input.
func ParseSide(s string) (Side, error) {
	switch s {
	case "bid":
		return Bid, nil
	case "ask":
		return Ask, nil
	default:
		return 0, ErrInvalidSide
	}
}

// Kind is the order's execution semantics.
type Kind int

const (
	// Limit orders cross opposing liquidity up to their price, resting
	// whatever remains.
	Limit Kind = iota
	// Market orders cross until filled or the opposing side is empty;
	// any residual volume is discarded rather than resting.
	Market
	// IOC (immediate-or-cancel) orders cross like a limit order but never
	// rest — any residual volume is dropped.
	IOC
)

func (k Kind) String() string {
	switch k {
	case Market:
		return "market"
	case IOC:
		return "ioc"
	default:
		return "limit"
	}
}

// ParseKind converts a wire-level kind string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "limit", "":
		return Limit, nil
	case "market":
		return Market, nil
	case "ioc":
		return IOC, nil
	default:
		return 0, ErrInvalidKind
	}
}

var (
	// ErrInvalidSide is returned when a submission's side is neither "bid"
	// nor "ask".
	ErrInvalidSide = errors.New("invalid order side")
	// ErrInvalidKind is returned when a submission's kind is unrecognized.
	ErrInvalidKind = errors.New("invalid order kind")
	// ErrMissingField is returned when a required submission field is absent.
	ErrMissingField = errors.New("missing required field")
	// ErrUnknownOrder reports a cancel whose id does not resolve to a
	// resting order on either side (Cancel itself returns false).
	ErrUnknownOrder = errors.New("unknown order id")
)

// TickSize and volume quantization default.
var DefaultTick = decimal.NewFromFloat(0.1)

// quantize rounds v to the nearest multiple of tick. A zero tick is a no-op.
func quantize(v, tick decimal.Decimal) decimal.Decimal {
	if tick.IsZero() {
		return v
	}
	return v.DivRound(tick, 0).Mul(tick)
}

// clampNonNegative floors v at zero.
func clampNonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
