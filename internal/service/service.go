// Package service wraps internal/book behind the venue's single-writer
// gate: every read and every mutation takes the same lock, mirroring
// net.Server's clientSessionsLock pattern in the teacher repo but applied
// to book state instead of a connection table.
package service

import (
	"sync"

	"github.com/shopspring/decimal"

	"ladderbook/internal/book"
)

// Service serializes all access to a *book.Book. Nothing outside this
// package is allowed to touch the underlying book directly.
type Service struct {
	mu   sync.Mutex
	book *book.Book
}

// New wraps b behind a mutex gate.
func New(b *book.Book) *Service {
	return &Service{book: b}
}

// Submit admits a new order and returns its assigned id.
func (s *Service) Submit(req book.Request) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Submit(req)
}

// Cancel removes a resting order by id.
func (s *Service) Cancel(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Cancel(id)
}

// MidPrice reports the current reference price, if defined.
func (s *Service) MidPrice() (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.MidPrice()
}

// DepthSnapshot reports cumulative resting volume at depth tick offsets
// from mid on both sides.
func (s *Service) DepthSnapshot(depth int) (bids, asks [][2]decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.DepthSnapshot(depth)
}

// PnL returns a user's realized+unrealized PnL.
func (s *Service) PnL(user string) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.PnL(user)
}

// Positions returns a user's position time-series.
func (s *Service) Positions(user string) []book.PositionSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Positions(user)
}

// PnLHistory returns a user's PnL time-series.
func (s *Service) PnLHistory(user string) []book.PnLSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.PnLHistory(user)
}

// Trades returns the trades a user was party to.
func (s *Service) Trades(user string) []book.Trade {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Trades(user)
}

// Users returns every user handle the ledger has touched.
func (s *Service) Users() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Users()
}

// Tape returns the full trade history.
func (s *Service) Tape() []book.Trade {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Tape()
}

// MidPrices returns the mid-price time series sampled on every trade.
func (s *Service) MidPrices() []book.MidPriceSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.MidPrices()
}

// TouchUser initializes a user's ledger row without submitting an order.
func (s *Service) TouchUser(user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.book.TouchUser(user)
}

// LadderVolume returns the total resting volume on one side.
func (s *Service) LadderVolume(side book.Side) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.LadderVolume(side)
}
