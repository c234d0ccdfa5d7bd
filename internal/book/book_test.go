package book

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBook() *Book {
	return New(decimal.NewFromFloat(0.1), decimal.NewFromInt(100))
}

func price(s string) *decimal.Decimal {
	p := decimal.RequireFromString(s)
	return &p
}

func limit(side Side, p string, vol string, user string) Request {
	return Request{Side: side, Price: price(p), Volume: decimal.RequireFromString(vol), Kind: Limit, User: user}
}

func market(side Side, vol string, user string) Request {
	return Request{Side: side, Volume: decimal.RequireFromString(vol), Kind: Market, User: user}
}

// Scenario 1: empty book, submit an ask limit.
func TestSubmit_AskLimit_RestsOnEmptyBook(t *testing.T) {
	b := newTestBook()
	b.Submit(limit(Ask, "100.1", "5.0", ""))

	bestAsk, ok := b.Asks.BestPrice()
	require.True(t, ok)
	assert.True(t, bestAsk.Equal(decimal.RequireFromString("100.1")))
	assert.Equal(t, 1, b.Asks.NumOrders)
	assert.True(t, b.Asks.TotalVolume.Equal(decimal.RequireFromString("5.0")))

	_, midOk := b.MidPrice()
	assert.False(t, midOk)
	assert.Empty(t, b.Tape())
}

// Scenario 2: partial market fill against a single resting ask.
func TestSubmit_MarketBid_PartialFill(t *testing.T) {
	b := newTestBook()
	b.Submit(limit(Ask, "100.1", "5.0", ""))
	b.Submit(market(Bid, "3.0", ""))

	remaining, ok := b.Asks.BestPrice()
	require.True(t, ok)
	assert.True(t, remaining.Equal(decimal.RequireFromString("100.1")))
	assert.True(t, b.Asks.VolumeAt(decimal.RequireFromString("100.1")).Equal(decimal.RequireFromString("2.0")))

	tape := b.Tape()
	require.Len(t, tape, 1)
	assert.True(t, tape[0].Price.Equal(decimal.RequireFromString("100.1")))
	assert.True(t, tape[0].Volume.Equal(decimal.RequireFromString("3.0")))
	assert.Equal(t, Bid, tape[0].Side)
	assert.Empty(t, b.Users())
}

// Scenario 3: market order sweeps the book and drops the residual.
func TestSubmit_MarketBid_ExhaustsBookDropsResidual(t *testing.T) {
	b := newTestBook()
	b.Submit(limit(Ask, "100.1", "5.0", ""))
	b.Submit(market(Bid, "7.0", ""))

	_, ok := b.Asks.BestPrice()
	assert.False(t, ok)

	tape := b.Tape()
	require.Len(t, tape, 1)
	assert.True(t, tape[0].Volume.Equal(decimal.RequireFromString("5.0")))
}

// Scenario 3 follow-up: a full sweep must not leave phantom volume behind,
// since LadderVolume feeds the simulator's stale-liquidity GC directly.
func TestSubmit_MarketBid_ExhaustsBookZeroesLadderVolume(t *testing.T) {
	b := newTestBook()
	b.Submit(limit(Ask, "100.1", "5.0", ""))
	b.Submit(market(Bid, "7.0", ""))

	assert.True(t, b.LadderVolume(Ask).IsZero())
	assert.Equal(t, 0, b.Asks.NumOrders)
}

// Scenario 4: FIFO fill across two resting orders at the same price, with
// per-user position and trade-list bookkeeping.
func TestSubmit_MarketBid_FIFOAcrossUsers(t *testing.T) {
	b := newTestBook()
	b.Submit(limit(Ask, "100.0", "4.0", "A"))
	b.Submit(limit(Ask, "100.0", "4.0", "B"))
	b.Submit(market(Bid, "5.0", "C"))

	assert.True(t, b.ledger.position("A").Equal(decimal.RequireFromString("-4")))
	assert.True(t, b.ledger.position("B").Equal(decimal.RequireFromString("-1")))
	assert.True(t, b.ledger.position("C").Equal(decimal.RequireFromString("5")))

	assert.Len(t, b.Trades("A"), 1)
	assert.Len(t, b.Trades("B"), 1)
	assert.Len(t, b.Trades("C"), 2)
}

// Scenario 5: crossing limit order partially fills then rests the residual.
func TestSubmit_CrossingLimit_RestsResidual(t *testing.T) {
	b := newTestBook()
	b.Submit(limit(Ask, "100.5", "2.0", ""))
	b.Submit(limit(Ask, "100.6", "3.0", ""))
	b.Submit(limit(Bid, "100.55", "4.0", ""))

	tape := b.Tape()
	require.Len(t, tape, 1)
	assert.True(t, tape[0].Price.Equal(decimal.RequireFromString("100.5")))
	assert.True(t, tape[0].Volume.Equal(decimal.RequireFromString("2.0")))

	bestBid, ok := b.Bids.BestPrice()
	require.True(t, ok)
	assert.True(t, bestBid.Equal(decimal.RequireFromString("100.55")))
	assert.True(t, b.Bids.VolumeAt(bestBid).Equal(decimal.RequireFromString("2.0")))

	assert.True(t, b.Asks.VolumeAt(decimal.RequireFromString("100.6")).Equal(decimal.RequireFromString("3.0")))
	_, goneOk := b.Asks.BestPrice()
	require.True(t, goneOk)
}

// Scenario 6: IOC never rests its residual.
func TestSubmit_IOC_DropsResidual(t *testing.T) {
	b := newTestBook()
	b.Submit(limit(Ask, "100.5", "2.0", ""))
	b.Submit(limit(Ask, "100.6", "3.0", ""))
	b.Submit(Request{Side: Bid, Price: price("100.55"), Volume: decimal.RequireFromString("4.0"), Kind: IOC})

	_, ok := b.Bids.BestPrice()
	assert.False(t, ok)

	tape := b.Tape()
	require.Len(t, tape, 1)
	assert.True(t, tape[0].Volume.Equal(decimal.RequireFromString("2.0")))
}

func TestCancel_UnknownID_ReturnsFalse(t *testing.T) {
	b := newTestBook()
	assert.False(t, b.Cancel(999))
}

func TestCancel_AfterFullFill_ReturnsFalse(t *testing.T) {
	b := newTestBook()
	id := b.Submit(limit(Ask, "100.0", "5.0", ""))
	b.Submit(market(Bid, "5.0", ""))
	assert.False(t, b.Cancel(id))
}

func TestCancel_Resting_ReturnsTrueAndRemoves(t *testing.T) {
	b := newTestBook()
	id := b.Submit(limit(Ask, "100.0", "5.0", ""))
	assert.True(t, b.Cancel(id))
	_, ok := b.Asks.BestPrice()
	assert.False(t, ok)
}

func TestSideLadder_Add_ReinsertSemantics(t *testing.T) {
	ladder := NewSideLadder(Bid)
	o1 := &Order{ID: 1, Side: Bid, Price: decimal.RequireFromString("10"), Volume: decimal.RequireFromString("3")}
	ladder.Add(o1)

	o2 := &Order{ID: 1, Side: Bid, Price: decimal.RequireFromString("10"), Volume: decimal.RequireFromString("9")}
	ladder.Add(o2)

	assert.Equal(t, 1, ladder.NumOrders)
	assert.True(t, ladder.TotalVolume.Equal(decimal.RequireFromString("9")))
}

func TestDepthSnapshot_Monotonic(t *testing.T) {
	b := newTestBook()
	b.Submit(limit(Bid, "99.0", "5.0", ""))
	b.Submit(limit(Bid, "98.0", "5.0", ""))
	b.Submit(limit(Ask, "101.0", "5.0", ""))
	b.Submit(limit(Ask, "102.0", "5.0", ""))

	bids, asks := b.DepthSnapshot(5)
	require.Len(t, bids, 5)
	require.Len(t, asks, 5)

	for i := 1; i < len(bids); i++ {
		assert.True(t, bids[i][1].GreaterThanOrEqual(bids[i-1][1]))
	}
	for i := 1; i < len(asks); i++ {
		assert.True(t, asks[i][1].GreaterThanOrEqual(asks[i-1][1]))
	}
}

func TestPnL_NullMid_ReturnsRealizedOnly(t *testing.T) {
	b := newTestBook()
	b.Submit(limit(Ask, "100.0", "5.0", "A"))
	b.Submit(market(Bid, "5.0", "B"))

	// Asks empty now, so mid is undefined; B holds a non-zero position.
	pnl, ok := b.PnL("B")
	assert.False(t, ok)
	assert.True(t, pnl.Equal(decimal.RequireFromString("-500")))
}

// TestTickDiscipline_PriceTakenAsGiven guards against re-introducing
// matching-path price quantization: the incoming price must rest exactly
// as submitted, off-grid or not, matching orderbook.py's to_order_object.
func TestTickDiscipline_PriceTakenAsGiven(t *testing.T) {
	b := newTestBook()
	b.Submit(limit(Ask, "100.04", "5.0", ""))

	bestAsk, ok := b.Asks.BestPrice()
	require.True(t, ok)
	assert.True(t, bestAsk.Equal(decimal.RequireFromString("100.04")))
}

// TestTickDiscipline_VolumeStillQuantized: volume quantization to tick
// size is unaffected by the price fix above.
func TestTickDiscipline_VolumeStillQuantized(t *testing.T) {
	b := newTestBook()
	b.Submit(limit(Ask, "100.0", "5.04", ""))

	level, ok := b.Asks.BestLevel()
	require.True(t, ok)
	remainder := level.Volume.Mod(decimal.NewFromFloat(0.1))
	assert.True(t, remainder.Abs().LessThan(decimal.NewFromFloat(0.0001)))
}

func TestVolumeClampedToMax(t *testing.T) {
	b := newTestBook()
	b.Submit(limit(Ask, "100.0", "500", ""))
	assert.True(t, b.Asks.TotalVolume.Equal(decimal.NewFromInt(100)))
}
