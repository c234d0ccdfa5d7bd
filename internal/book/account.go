package book

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ledger is the per-user account bookkeeping a Book maintains as a side
// effect of matching: every user's trade list, position time-series, and
// PnL time-series. It has no behavior of its own beyond what postTrade
// drives — it is the implicit substructure spec.md describes, pulled into
// its own file for readability.
type ledger struct {
	trades    map[string][]Trade
	positions map[string][]PositionSample
	pnls      map[string][]PnLSample
}

func newLedger() *ledger {
	return &ledger{
		trades:    make(map[string][]Trade),
		positions: make(map[string][]PositionSample),
		pnls:      make(map[string][]PnLSample),
	}
}

// ensureUser initializes a user's position series to [(now, 0)] on first
// touch. A no-op if the user is already tracked or the handle is empty
// (simulator-originated liquidity has no user).
func (l *ledger) ensureUser(user string, now time.Time) {
	if user == "" {
		return
	}
	if _, ok := l.positions[user]; ok {
		return
	}
	l.positions[user] = []PositionSample{{Time: now, Position: decimal.Zero}}
}

// position returns a user's current (most recent) position.
func (l *ledger) position(user string) decimal.Decimal {
	series := l.positions[user]
	if len(series) == 0 {
		return decimal.Zero
	}
	return series[len(series)-1].Position
}

// users returns every tracked user handle, sorted for deterministic
// iteration (trade postings touch every user's series, so iteration order
// must be stable for the resulting series to be reproducible across runs).
func (l *ledger) users() []string {
	out := make([]string, 0, len(l.positions))
	for u := range l.positions {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// recordTrade appends the trade to the tape-adjacent per-user trade lists
// of whichever of taker/maker have user handles, and updates every tracked
// user's position series: the taker's and maker's positions move opposite
// each other, everyone else gets a same-value sample so all series share
// the trade's timestamp on their time axis.
func (l *ledger) recordTrade(trade Trade) {
	l.ensureUser(trade.Taker, trade.Time)
	l.ensureUser(trade.Maker, trade.Time)

	if trade.Taker != "" {
		l.trades[trade.Taker] = append(l.trades[trade.Taker], trade)
	}
	if trade.Maker != "" {
		l.trades[trade.Maker] = append(l.trades[trade.Maker], trade)
	}

	takerBought := trade.Side == Bid
	for _, user := range l.users() {
		cur := l.position(user)
		var next decimal.Decimal
		switch {
		case user == trade.Taker:
			if takerBought {
				next = cur.Add(trade.Volume)
			} else {
				next = cur.Sub(trade.Volume)
			}
		case user == trade.Maker:
			if takerBought {
				next = cur.Sub(trade.Volume)
			} else {
				next = cur.Add(trade.Volume)
			}
		default:
			next = cur
		}
		l.positions[user] = append(l.positions[user], PositionSample{Time: trade.Time, Position: next})
	}
}

// realizedPnL sums signed (price * volume) over a user's trade history:
// +1 when the user sold (acting as taker on an ask, or maker opposite an
// incoming bid), -1 when the user bought.
func (l *ledger) realizedPnL(user string) decimal.Decimal {
	realized := decimal.Zero
	for _, t := range l.trades[user] {
		notional := t.Price.Mul(t.Volume)
		sold := (user == t.Taker && t.Side == Ask) || (user == t.Maker && t.Side == Bid)
		if sold {
			realized = realized.Add(notional)
		} else {
			realized = realized.Sub(notional)
		}
	}
	return realized
}

// pnl computes a user's total PnL: realized (from closed trades) plus
// unrealized (current position marked at the current mid). If mid is
// undefined and the user carries a non-zero position, the unrealized leg
// is undefined too — the caller gets the realized component alone and
// ok=false, per spec.md's NullMid resolution.
func (l *ledger) pnl(user string, mid decimal.Decimal, midValid bool) (decimal.Decimal, bool) {
	realized := l.realizedPnL(user)
	pos := l.position(user)
	if pos.IsZero() {
		return realized, true
	}
	if !midValid {
		return realized, false
	}
	return realized.Add(pos.Mul(mid)), true
}

// appendPnLSamples appends one PnL sample per tracked user at the given
// timestamp and mid price — called once per trade, after positions update.
func (l *ledger) appendPnLSamples(now time.Time, mid decimal.Decimal, midValid bool) {
	for _, user := range l.users() {
		value, _ := l.pnl(user, mid, midValid)
		l.pnls[user] = append(l.pnls[user], PnLSample{Time: now, PnL: value})
	}
}
