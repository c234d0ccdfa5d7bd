package sim

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ladderbook/internal/book"
)

// fakeGate is a minimal in-memory Gate for exercising the simulator's
// ladder-refresh and GC logic without a real Book.
type fakeGate struct {
	nextID   int64
	orders   map[int64]decimal.Decimal
	sides    map[int64]book.Side
	lastReq  book.Request
	bidVol   decimal.Decimal
	askVol   decimal.Decimal
	touched  []string
	mid      decimal.Decimal
	midValid bool
}

func newFakeGate() *fakeGate {
	return &fakeGate{orders: make(map[int64]decimal.Decimal), sides: make(map[int64]book.Side), bidVol: decimal.Zero, askVol: decimal.Zero}
}

func (g *fakeGate) Submit(req book.Request) int64 {
	g.nextID++
	id := g.nextID
	g.lastReq = req
	if req.Kind == book.Limit {
		g.orders[id] = req.Volume
		g.sides[id] = req.Side
		if req.Side == book.Bid {
			g.bidVol = g.bidVol.Add(req.Volume)
		} else {
			g.askVol = g.askVol.Add(req.Volume)
		}
	}
	return id
}

func (g *fakeGate) Cancel(id int64) bool {
	vol, ok := g.orders[id]
	if !ok {
		return false
	}
	delete(g.orders, id)
	// Shrink the cancelled order's side total, so the GC loop sees its
	// cancellations take effect.
	if g.sides[id] == book.Bid {
		g.bidVol = g.bidVol.Sub(vol)
	} else {
		g.askVol = g.askVol.Sub(vol)
	}
	delete(g.sides, id)
	return true
}

func (g *fakeGate) MidPrice() (decimal.Decimal, bool) { return g.mid, g.midValid }

func (g *fakeGate) LadderVolume(side book.Side) decimal.Decimal {
	if side == book.Bid {
		return g.bidVol
	}
	return g.askVol
}

func (g *fakeGate) TouchUser(user string) { g.touched = append(g.touched, user) }

func TestRefreshLadder_PlacesBothSides(t *testing.T) {
	gate := newFakeGate()
	s := New(gate, Config{
		Levels:   3,
		PriceStd: 0.10,
		NoiseStd: 0,
		TickSize: book.DefaultTick,
	}, zerolog.Nop())

	s.refreshLadder(100.0, 10.0)
	assert.NotZero(t, len(gate.orders))
	assert.True(t, gate.bidVol.GreaterThan(decimal.Zero))
	assert.True(t, gate.askVol.GreaterThan(decimal.Zero))
}

func TestGarbageCollect_CancelsOldestUntilUnderCap(t *testing.T) {
	gate := newFakeGate()
	s := New(gate, Config{MaxLadderVolume: decimal.NewFromInt(10), TickSize: book.DefaultTick}, zerolog.Nop())

	for i := 0; i < 5; i++ {
		id := gate.Submit(book.Request{Side: book.Bid, Kind: book.Limit, Volume: decimal.NewFromInt(5)})
		s.bidHistory = append(s.bidHistory, id)
	}
	require.True(t, gate.bidVol.GreaterThan(decimal.NewFromInt(10)))

	s.garbageCollect(book.Bid)
	assert.True(t, len(s.bidHistory) < 5)
	assert.True(t, gate.bidVol.LessThanOrEqual(decimal.NewFromInt(10)))
}

func TestAddRandomMarketOrder_RespectsSide(t *testing.T) {
	gate := newFakeGate()
	s := New(gate, Config{BidProb: 1.0}, zerolog.Nop())
	s.addRandomMarketOrder(5.0)
	assert.Equal(t, int64(1), gate.nextID)
	assert.Equal(t, book.Bid, gate.lastReq.Side)
	assert.Equal(t, book.Market, gate.lastReq.Kind)
}

func TestLognormalAndNormPDF_NonNegativeSupport(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.True(t, lognormal(1.0, 2.5) >= 0)
	}
	assert.InDelta(t, 1.0, normPDF(0, 0, 1)*2.5066282746, 1e-6)
}
