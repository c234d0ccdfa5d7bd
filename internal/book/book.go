package book

import (
	"time"

	"github.com/shopspring/decimal"
)

var midTick = decimal.NewFromFloat(0.01)

// Book is the single entry point for order admission and the venue's only
// piece of shared mutable state. It is not itself safe for concurrent use —
// per spec.md's single-writer model, that's the service boundary's job
// (see internal/service); Book assumes one caller runs a given operation to
// completion before another begins.
type Book struct {
	Bids *SideLadder
	Asks *SideLadder

	tape   []Trade
	ledger *ledger

	midPrices []MidPriceSample

	eventCounter   int64
	tickSize       decimal.Decimal
	maxOrderVolume decimal.Decimal

	clock func() time.Time
}

// New creates an empty book quantized to tickSize, rejecting (by clamping)
// any single order above maxOrderVolume.
func New(tickSize, maxOrderVolume decimal.Decimal) *Book {
	return &Book{
		Bids:           NewSideLadder(Bid),
		Asks:           NewSideLadder(Ask),
		ledger:         newLedger(),
		tickSize:       tickSize,
		maxOrderVolume: maxOrderVolume,
		clock:          time.Now,
	}
}

// Submit admits a new order: it clamps and quantizes volume, assigns the
// order its id, and dispatches to the matching routine for its kind. The
// incoming price is taken as given — quantization to tick is applied only
// to derived/visualization values (mid-price, depth snapshot), matching
// original_source/src/orderbook.py's to_order_object, which never rounds
// the caller's price. The returned id is valid even if the order traded
// away to nothing or never rested.
func (b *Book) Submit(req Request) int64 {
	volume := clampNonNegative(req.Volume)
	if volume.GreaterThan(b.maxOrderVolume) {
		volume = b.maxOrderVolume
	}
	volume = quantize(volume, b.tickSize)

	var price decimal.Decimal
	hasPrice := req.Price != nil
	if hasPrice {
		price = *req.Price
	}

	b.eventCounter++
	now := b.clock()
	order := &Order{
		ID:        b.eventCounter,
		Side:      req.Side,
		Price:     price,
		HasPrice:  hasPrice,
		Volume:    volume,
		Kind:      req.Kind,
		User:      req.User,
		Timestamp: now,
	}
	b.ledger.ensureUser(order.User, now)

	switch order.Kind {
	case Market:
		b.handleMarket(order)
	case IOC:
		b.handleIOC(order)
	default:
		b.handleLimit(order)
	}

	return order.ID
}

// handleMarket sweeps the opposing side until filled or liquidity runs
// out. Any residual volume is discarded — absence of liquidity terminates
// the order, it does not error.
func (b *Book) handleMarket(order *Order) {
	opposing := b.opposing(order.Side)
	for order.Volume.IsPositive() && opposing.NumOrders > 0 {
		if !b.matchStep(order, opposing) {
			break
		}
	}
}

// handleLimit crosses opposing liquidity while the incoming price still
// crosses the opposing best, then rests whatever volume remains on its own
// side.
func (b *Book) handleLimit(order *Order) {
	opposing := b.opposing(order.Side)
	for opposing.NumOrders > 0 && order.Volume.IsPositive() && b.crosses(order, opposing) {
		if !b.matchStep(order, opposing) {
			break
		}
	}
	if order.Volume.IsPositive() {
		b.ownSide(order.Side).Add(order)
	}
}

// handleIOC crosses exactly like a limit order but never rests the
// residual — immediate-or-cancel.
func (b *Book) handleIOC(order *Order) {
	opposing := b.opposing(order.Side)
	for opposing.NumOrders > 0 && order.Volume.IsPositive() && b.crosses(order, opposing) {
		if !b.matchStep(order, opposing) {
			break
		}
	}
}

// crosses reports whether order's price crosses the opposing side's best
// price: a bid crosses when its price is at or above the best ask; an ask
// crosses when its price is at or below the best bid.
func (b *Book) crosses(order *Order, opposing *SideLadder) bool {
	best, ok := opposing.BestPrice()
	if !ok {
		return false
	}
	if order.Side == Bid {
		return order.Price.GreaterThanOrEqual(best)
	}
	return order.Price.LessThanOrEqual(best)
}

// matchStep consumes one resting order's worth of liquidity against
// incoming and posts the resulting trade. Returns false if the opposing
// ladder had nothing to match (should not happen given the callers' own
// NumOrders guard, but MatchAgainst is the source of truth).
func (b *Book) matchStep(incoming *Order, opposing *SideLadder) bool {
	maker, price, volume, ok := opposing.MatchAgainst(incoming)
	if !ok {
		return false
	}
	b.postTrade(incoming, maker, price, volume)
	return true
}

// postTrade records one fill: it appends to the tape, updates both
// counterparties' (and every other tracked user's) position series, and
// samples PnL and mid-price at the trade's timestamp.
func (b *Book) postTrade(taker, maker *Order, price, volume decimal.Decimal) {
	b.eventCounter++
	now := b.clock()

	trade := Trade{
		ID:     b.eventCounter,
		Side:   taker.Side,
		Price:  price,
		Volume: volume,
		Time:   now,
		Taker:  taker.User,
		Maker:  maker.User,
	}
	b.tape = append(b.tape, trade)
	b.ledger.recordTrade(trade)

	mid, midValid := b.MidPrice()
	b.ledger.appendPnLSamples(now, mid, midValid)
	b.midPrices = append(b.midPrices, MidPriceSample{Time: now, Price: mid, Valid: midValid})
}

// Cancel removes an order from whichever side it rests on. Returns false
// if the id is not currently resting — including when it has already been
// fully filled.
func (b *Book) Cancel(id int64) bool {
	fromBids := b.Bids.Remove(id)
	fromAsks := b.Asks.Remove(id)
	return fromBids || fromAsks
}

// MidPrice is (best bid + best ask) / 2, quantized to 0.01, or undefined
// if either side of the book is empty.
func (b *Book) MidPrice() (decimal.Decimal, bool) {
	bestBid, okBid := b.Bids.BestPrice()
	bestAsk, okAsk := b.Asks.BestPrice()
	if !okBid || !okAsk {
		return decimal.Zero, false
	}
	mid := bestBid.Add(bestAsk).Div(decimal.NewFromInt(2))
	return quantize(mid, midTick), true
}

// DepthSnapshot reports cumulative resting volume at `depth` tick offsets
// on either side of the current mid (rounded to tick size). Levels with no
// resting liquidity contribute zero; cumulative volumes are monotonically
// non-decreasing with distance from mid. Returns nil, nil if mid is
// undefined (no reference price to snapshot around).
func (b *Book) DepthSnapshot(depth int) (bids, asks [][2]decimal.Decimal) {
	mid, ok := b.MidPrice()
	if !ok {
		return nil, nil
	}
	mid = quantize(mid, b.tickSize)

	bids = make([][2]decimal.Decimal, depth)
	asks = make([][2]decimal.Decimal, depth)

	cumBid := decimal.Zero
	cumAsk := decimal.Zero
	for i := 1; i <= depth; i++ {
		offset := b.tickSize.Mul(decimal.NewFromInt(int64(i)))

		bidPrice := mid.Sub(offset)
		cumBid = cumBid.Add(b.Bids.VolumeAt(bidPrice))
		bids[i-1] = [2]decimal.Decimal{bidPrice, cumBid}

		askPrice := mid.Add(offset)
		cumAsk = cumAsk.Add(b.Asks.VolumeAt(askPrice))
		asks[i-1] = [2]decimal.Decimal{askPrice, cumAsk}
	}
	return bids, asks
}

// PnL returns a user's realized+unrealized PnL. The bool is false only
// when the user carries a non-zero position and mid is currently
// undefined — in that case the returned value is the realized component
// alone.
func (b *Book) PnL(user string) (decimal.Decimal, bool) {
	mid, midValid := b.MidPrice()
	return b.ledger.pnl(user, mid, midValid)
}

// Positions returns a user's full position time-series.
func (b *Book) Positions(user string) []PositionSample {
	return b.ledger.positions[user]
}

// PnLHistory returns a user's full PnL time-series.
func (b *Book) PnLHistory(user string) []PnLSample {
	return b.ledger.pnls[user]
}

// Trades returns the trades a user was party to, as taker or maker.
func (b *Book) Trades(user string) []Trade {
	return b.ledger.trades[user]
}

// Users returns every user handle the ledger has touched.
func (b *Book) Users() []string {
	return b.ledger.users()
}

// Tape returns the full append-only trade history.
func (b *Book) Tape() []Trade {
	return b.tape
}

// MidPrices returns the mid-price time series sampled on every trade.
func (b *Book) MidPrices() []MidPriceSample {
	return b.midPrices
}

// TouchUser initializes a user's ledger row (zero position) without
// submitting any order. Used by the simulator to seed a default user the
// way exchange.py's MarketSimulator.run does on startup.
func (b *Book) TouchUser(user string) {
	b.ledger.ensureUser(user, b.clock())
}

// LadderVolume returns the total resting volume on one side, used by the
// simulator's stale-liquidity GC.
func (b *Book) LadderVolume(side Side) decimal.Decimal {
	if side == Bid {
		return b.Bids.TotalVolume
	}
	return b.Asks.TotalVolume
}

func (b *Book) opposing(side Side) *SideLadder {
	if side == Bid {
		return b.Asks
	}
	return b.Bids
}

func (b *Book) ownSide(side Side) *SideLadder {
	if side == Bid {
		return b.Bids
	}
	return b.Asks
}
