package book

import (
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"
)

// priceLevels is the ordered price -> PriceLevel map backing one side.
// Bids order greatest-first, asks order least-first, so Min() always
// yields the best price regardless of side — the same trick the teacher
// engine's BTreeG less-functions use.
type priceLevels = btree.BTreeG[*PriceLevel]

// SideLadder is all resting liquidity on one side, ordered by price, with
// O(log n) best-price access (via the underlying btree) and O(1)
// order-by-id access (via byID).
type SideLadder struct {
	Side        Side
	Depth       int
	TotalVolume decimal.Decimal
	NumOrders   int

	levels *priceLevels
	byID   map[int64]*PriceLevel
}

// NewSideLadder creates an empty ladder for the given side.
func NewSideLadder(side Side) *SideLadder {
	var less func(a, b *PriceLevel) bool
	if side == Bid {
		less = func(a, b *PriceLevel) bool { return a.Price.GreaterThan(b.Price) }
	} else {
		less = func(a, b *PriceLevel) bool { return a.Price.LessThan(b.Price) }
	}
	return &SideLadder{
		Side:        side,
		TotalVolume: decimal.Zero,
		levels:      btree.NewBTreeG(less),
		byID:        make(map[int64]*PriceLevel),
	}
}

// Add places order on this ladder, re-linking its price level (creating one
// if necessary). If an order with the same id already rests here, it is
// removed first — reinsert semantics, per spec.
func (s *SideLadder) Add(o *Order) {
	if _, exists := s.byID[o.ID]; exists {
		s.Remove(o.ID)
	}

	probe := &PriceLevel{Price: o.Price}
	level, ok := s.levels.Get(probe)
	if !ok {
		level = newPriceLevel(o.Price)
		s.levels.Set(level)
		s.Depth++
	}

	level.Add(o)
	s.byID[o.ID] = level
	s.TotalVolume = s.TotalVolume.Add(o.Volume)
	s.NumOrders++
}

// Remove takes the order with the given id off this ladder. Returns false
// if the id is not resting here.
func (s *SideLadder) Remove(id int64) bool {
	level, ok := s.byID[id]
	if !ok {
		return false
	}
	vol, removed := level.Remove(id)
	if !removed {
		return false
	}
	delete(s.byID, id)
	s.TotalVolume = s.TotalVolume.Sub(vol)
	s.NumOrders--

	if level.Length == 0 {
		s.levels.Delete(level)
		s.Depth--
	}
	return true
}

// BestPrice returns the best price on this side (max for bids, min for
// asks), or false if the ladder is empty.
func (s *SideLadder) BestPrice() (decimal.Decimal, bool) {
	level, ok := s.levels.Min()
	if !ok {
		return decimal.Zero, false
	}
	return level.Price, true
}

// BestLevel returns the PriceLevel at the best price.
func (s *SideLadder) BestLevel() (*PriceLevel, bool) {
	return s.levels.Min()
}

// Head returns the oldest order at the best price — the next one to be
// matched against an incoming order.
func (s *SideLadder) Head() (*Order, bool) {
	level, ok := s.BestLevel()
	if !ok {
		return nil, false
	}
	return level.Head()
}

// VolumeAt returns the resting volume at an exact price, or zero if no
// level exists there. Used by the depth snapshot, which walks a virtual
// ladder of exact tick offsets rather than the book's actual levels.
func (s *SideLadder) VolumeAt(price decimal.Decimal) decimal.Decimal {
	level, ok := s.levels.Get(&PriceLevel{Price: price})
	if !ok {
		return decimal.Zero
	}
	return level.Volume
}

// MatchAgainst consumes one step of liquidity against the resting head of
// this ladder: the incoming order's volume is reduced by
// min(incoming.Volume, head.Volume), the maker's volume is reduced by the
// same amount, and the maker is removed from the book if it's now empty.
// Returns the maker, the trade price (the maker's resting price), the
// traded volume, and whether a match occurred at all (false if the ladder
// is empty).
func (s *SideLadder) MatchAgainst(incoming *Order) (maker *Order, price, volume decimal.Decimal, ok bool) {
	head, exists := s.Head()
	if !exists {
		return nil, decimal.Zero, decimal.Zero, false
	}

	tradeVolume := decimal.Min(incoming.Volume, head.Volume)
	tradePrice := head.Price

	incoming.Volume = incoming.Volume.Sub(tradeVolume)

	if tradeVolume.Equal(head.Volume) {
		// Full fill: remove while head.Volume still carries the volume
		// being traded away, so Remove's own level/ladder bookkeeping
		// (derived from the order's current Volume) subtracts the right
		// amount. Zeroing head.Volume first would make Remove see a
		// spent order with nothing left to subtract.
		s.Remove(head.ID)
		head.Volume = decimal.Zero
	} else {
		head.Volume = head.Volume.Sub(tradeVolume)
		// Partial fill: the level's own aggregate must reflect the maker's
		// reduced volume even though it's still resting.
		level := s.byID[head.ID]
		level.Volume = level.Volume.Sub(tradeVolume)
		s.TotalVolume = s.TotalVolume.Sub(tradeVolume)
	}

	return head, tradePrice, tradeVolume, true
}
