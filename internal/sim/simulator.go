// Package sim implements the synthetic order-flow generator: the
// stochastic driver that keeps the book populated with realistic-looking
// limit ladders and occasional market sweeps, so the matching engine has
// something to chew on outside of direct client submissions.
//
// Grounded directly on original_source/src/exchange.py's MarketSimulator —
// arrival process, ladder refresh, spikes, and stale-liquidity GC are all
// carried over in semantics; only the RNG primitives are swapped for Go's
// math/rand/v2 equivalents (see DESIGN.md).
package sim

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ladderbook/internal/book"
)

// Gate is the single-writer boundary the simulator drives the book
// through — every mutation, like every client submission, goes through
// Submit/Cancel.
type Gate interface {
	Submit(req book.Request) int64
	Cancel(id int64) bool
	MidPrice() (decimal.Decimal, bool)
	LadderVolume(side book.Side) decimal.Decimal
	TouchUser(user string)
}

// DefaultUser is touched once at startup, mirroring the original source's
// own (otherwise unused) ledger seeding of a "basic-market-maker" handle —
// kept for fidelity even though synthetic flow itself submits anonymously.
const DefaultUser = "basic-market-maker"

// Config tunes the simulator. Field names mirror exchange.py's keyword
// arguments to MarketSimulator.run / add_random_limit_orders.
type Config struct {
	InitPrice       decimal.Decimal
	TakeVolume      decimal.Decimal // base market-order volume
	MakeVolume      decimal.Decimal // base limit-ladder volume
	BidProb         float64
	Sleep           time.Duration
	MarketOrderRate float64 // λ, market orders per second
	Levels          int     // ladder depth refreshed per tick
	NoiseStd        float64 // volume noise std on ladder refresh
	PriceStd        float64 // price std in the ladder's volume-by-price curve
	MaxOrderVolume  decimal.Decimal
	MaxLadderVolume decimal.Decimal
	TickSize        decimal.Decimal
	SpikeProb       float64
	SpikeRefreshes  int
}

// DefaultConfig mirrors exchange.py's Server/MarketSimulator defaults.
func DefaultConfig() Config {
	return Config{
		InitPrice:       decimal.NewFromFloat(100.0),
		TakeVolume:      decimal.NewFromFloat(10.0),
		MakeVolume:      decimal.NewFromFloat(10.0),
		BidProb:         0.5,
		Sleep:           100 * time.Millisecond,
		MarketOrderRate: 15.0,
		Levels:          15,
		NoiseStd:        10.0,
		PriceStd:        0.10,
		MaxOrderVolume:  decimal.NewFromFloat(100.0),
		MaxLadderVolume: decimal.NewFromFloat(1000.0),
		TickSize:        book.DefaultTick,
		SpikeProb:       0.002,
		SpikeRefreshes:  8,
	}
}

// Simulator drives a Gate with stochastic flow.
type Simulator struct {
	gate Gate
	cfg  Config
	log  zerolog.Logger

	bidHistory []int64 // FIFO of simulator-issued bid ids, oldest first
	askHistory []int64

	takeVolume float64 // evolves per-tick like exchange.py's local take_volume
	mid        float64
}

// New creates a simulator driving gate per cfg.
func New(gate Gate, cfg Config, log zerolog.Logger) *Simulator {
	return &Simulator{
		gate:       gate,
		cfg:        cfg,
		log:        log.With().Str("component", "simulator").Logger(),
		takeVolume: toFloat(cfg.TakeVolume),
	}
}

// Run seeds the book and then drives it one tick every cfg.Sleep until ctx
// is canceled. A non-validation error from the book (a panic, per spec.md's
// fatal-invariant-violation rule) is not recovered here — it propagates out
// of this goroutine and crashes the process, same as exchange.py "swallows
// no exceptions".
func (s *Simulator) Run(ctx context.Context) error {
	s.mid = toFloat(s.cfg.InitPrice)
	s.refreshLadder(s.mid, toFloat(s.cfg.MakeVolume))
	s.gate.TouchUser(DefaultUser)

	nextMarketOrder := rand.ExpFloat64() / s.cfg.MarketOrderRate
	var elapsed float64

	ticker := time.NewTicker(s.cfg.Sleep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if elapsed >= nextMarketOrder {
				s.takeVolume += lognormal(1.0, s.takeVolume/4)
				if s.takeVolume > toFloat(s.cfg.MaxOrderVolume) {
					s.takeVolume = toFloat(s.cfg.MaxOrderVolume)
				}
				s.addRandomMarketOrder(s.takeVolume)
				nextMarketOrder += rand.ExpFloat64() / s.cfg.MarketOrderRate
			}

			if mid, ok := s.gate.MidPrice(); ok {
				s.mid = toFloat(mid)
			}
			s.refreshLadder(s.mid, toFloat(s.cfg.MakeVolume))

			if rand.Float64() < s.cfg.SpikeProb {
				sign := 1.0
				if rand.Float64() < 0.5 {
					sign = -1.0
				}
				pct := float64(1+rand.IntN(3)) / 100.0
				s.mid *= 1 + sign*pct
				s.log.Info().Float64("mid", s.mid).Msg("spike")
				for i := 0; i < s.cfg.SpikeRefreshes; i++ {
					s.refreshLadder(s.mid, toFloat(s.cfg.MakeVolume))
				}
			}

			s.garbageCollect(book.Bid)
			s.garbageCollect(book.Ask)
			elapsed += s.cfg.Sleep.Seconds()
		}
	}
}

// refreshLadder places cfg.Levels limit bids below mid and limit asks
// above, FIFO-tracking their ids for later GC.
func (s *Simulator) refreshLadder(mid, volume float64) {
	levels := s.cfg.Levels
	tick := toFloat(s.cfg.TickSize)
	muOffset := float64(levels) / 2 * s.cfg.PriceStd

	for i := 0; i < levels; i++ {
		bidPrice := mid - float64(i)*tick
		askPrice := mid + float64(i)*tick

		bidVolume := volume*normPDF(bidPrice, mid-muOffset, s.cfg.PriceStd) + rand.NormFloat64()*s.cfg.NoiseStd
		askVolume := volume*normPDF(askPrice, mid+muOffset, s.cfg.PriceStd) + rand.NormFloat64()*s.cfg.NoiseStd
		if bidVolume < 0 {
			bidVolume = 0
		}
		if askVolume < 0 {
			askVolume = 0
		}

		if bidPrice == askPrice {
			if rand.Float64() < 0.5 {
				s.placeLimit(book.Bid, bidPrice, bidVolume)
			} else {
				s.placeLimit(book.Ask, askPrice, askVolume)
			}
			continue
		}
		s.placeLimit(book.Bid, bidPrice, bidVolume)
		s.placeLimit(book.Ask, askPrice, askVolume)
	}
}

func (s *Simulator) placeLimit(side book.Side, price, volume float64) {
	p := decimal.NewFromFloat(price)
	id := s.gate.Submit(book.Request{
		Side:   side,
		Price:  &p,
		Volume: decimal.NewFromFloat(volume),
		Kind:   book.Limit,
	})
	if side == book.Bid {
		s.bidHistory = append(s.bidHistory, id)
	} else {
		s.askHistory = append(s.askHistory, id)
	}
}

// addRandomMarketOrder emits one market order, side chosen by cfg.BidProb,
// volume perturbed by Gaussian noise as in exchange.py.
func (s *Simulator) addRandomMarketOrder(volume float64) {
	side := book.Ask
	if rand.Float64() < s.cfg.BidProb {
		side = book.Bid
	}
	takeVolume := volume + rand.NormFloat64()*volume
	if takeVolume < 0 {
		takeVolume = 0
	}
	s.gate.Submit(book.Request{
		Side:   side,
		Volume: decimal.NewFromFloat(takeVolume),
		Kind:   book.Market,
	})
}

// garbageCollect cancels the oldest simulator-issued order on side while
// its ladder carries more volume than cfg.MaxLadderVolume plus noise.
func (s *Simulator) garbageCollect(side book.Side) {
	history := &s.bidHistory
	if side == book.Ask {
		history = &s.askHistory
	}
	maxVol := toFloat(s.cfg.MaxLadderVolume)

	for {
		margin := math.Abs(rand.NormFloat64() * (maxVol / 100))
		current := toFloat(s.gate.LadderVolume(side))
		if current <= maxVol+margin {
			return
		}
		if len(*history) == 0 {
			return
		}
		id := (*history)[0]
		*history = (*history)[1:]
		s.gate.Cancel(id)
	}
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// lognormal draws exp(N(0,sigma)) * scale, the Go equivalent of
// scipy.stats.lognorm(sigma, scale=scale).rvs().
func lognormal(sigma, scale float64) float64 {
	return math.Exp(rand.NormFloat64()*sigma) * scale
}

// normPDF is the Gaussian density, used to shape ladder volume by distance
// from the ladder's center price — exchange.py's scipy.stats.norm.pdf.
func normPDF(x, mu, sigma float64) float64 {
	if sigma <= 0 {
		return 0
	}
	z := (x - mu) / sigma
	return math.Exp(-0.5*z*z) / (sigma * math.Sqrt(2*math.Pi))
}
