// Package flow implements the exogenous stochastic order-flow
// generator: background limit/market/cancel arrivals plus an informed
// cohort whose market-order side is conditionally predictive of
// subsequent mid moves. Grounded on the execution-fairness simulator's
// scenario.Generator (Calm/Thin/Spike background generators plus
// periodic signal events), rewritten from that repo's batch-ahead-of-
// time event list into a pull-based Next() the scheduler drives one
// event at a time, and from its per-branch arbitrary draw order into a
// fixed draw order (type, side, size, price, informed-override)
// regardless of which branch the event resolves to.
package flow

import (
	"math"

	"github.com/eliyataleb/lobsim/internal/domain"
	"github.com/eliyataleb/lobsim/internal/rng"
	"github.com/google/uuid"
)

// Generator produces one exogenous domain.Event per call to Next, and
// advances its latent signal/fundamental state every call regardless of
// what kind of event it emits.
type Generator struct {
	cfg Config
	rng *rng.Stream
	ids *domain.IDAllocator

	resting []domain.OrderID // flow-owned resting limit ids, for self-cancel

	signal         float64
	fundamental    float64
	hasFundamental bool
}

// New creates a flow generator with its own derived PRNG stream (salt 1,
// so it never shares draws with the market maker or any other
// consumer of the top-level seed).
func New(cfg Config, seed int64, ids *domain.IDAllocator) *Generator {
	return &Generator{
		cfg: cfg,
		rng: rng.Derive(seed, 1),
		ids: ids,
	}
}

// Signal and Fundamental expose the latent informed-cohort state for
// diagnostics and tests only; the market maker must never observe
// either, so neither the scheduler nor maker package may call these.
func (g *Generator) Signal() float64      { return g.signal }
func (g *Generator) Fundamental() float64 { return g.fundamental }

// Next draws the next exogenous event. eventIndex is the caller's
// logical tick counter (used for the imbalance schedule and burst
// windows); seq is the global event sequence number stamped onto the
// returned domain.Event.
func (g *Generator) Next(eventIndex uint64, seq uint64, snap domain.Snapshot) *domain.Event {
	g.advanceLatentState(snap)

	// Fixed draw order regardless of branch: type, side, size, price,
	// informed-override.
	typeRoll := g.rng.Float64()
	buyRoll := g.rng.Bool(g.cfg.pBuyAt(eventIndex))
	size := g.cfg.SizeDist.draw(g.rng)
	offset := g.cfg.PriceOffsetDist.draw(g.rng)
	informedOverride := g.rng.Bool(g.cfg.PInformed)

	side := domain.Ask
	if buyRoll {
		side = domain.Bid
	}
	if informedOverride && math.Abs(g.signal) > g.cfg.SignalTau {
		if g.signal > 0 {
			side = domain.Bid
		} else {
			side = domain.Ask
		}
	}

	pCancel, pMarket := g.cfg.effectiveRates(eventIndex)

	switch {
	case typeRoll < pCancel && len(g.resting) > 0:
		return g.buildCancel(seq, offset)
	case typeRoll < pCancel+pMarket:
		return g.buildMarket(seq, side, size)
	default:
		return g.buildLimit(seq, side, size, offset, snap)
	}
}

// advanceLatentState evolves the mean-reverting signal and the
// fundamental mid tracker once per event, unconditionally — both are
// derivable from a single seed, independent of which event branch is
// taken.
func (g *Generator) advanceLatentState(snap domain.Snapshot) {
	noise := g.rng.NormFloat64()
	g.signal = g.signal*(1-g.cfg.SignalMeanReversion) + noise

	if !g.hasFundamental {
		if snap.HasMid {
			g.fundamental = snap.Mid
			g.hasFundamental = true
		}
		return
	}

	horizon := float64(g.cfg.InfoHorizon)
	if horizon <= 0 {
		horizon = 1
	}
	reference := g.fundamental + g.signal/horizon
	g.fundamental += g.cfg.FundamentalBeta * (reference - g.fundamental)
}

// OnFill drops a resting id from the self-cancel pool once the matching
// engine reports it fully consumed, so Next never targets an order that
// no longer exists on the book.
func (g *Generator) OnFill(orderID domain.OrderID, remaining bool) {
	if remaining {
		return
	}
	for i, id := range g.resting {
		if id == orderID {
			g.resting = append(g.resting[:i], g.resting[i+1:]...)
			return
		}
	}
}

func (g *Generator) buildCancel(seq uint64, offsetDraw int64) *domain.Event {
	idx := int(offsetDraw % int64(len(g.resting)))
	if idx < 0 {
		idx = -idx
	}
	target := g.resting[idx]
	g.resting = append(g.resting[:idx], g.resting[idx+1:]...)

	return &domain.Event{
		Seq:      seq,
		Kind:     domain.KindCancel,
		Owner:    domain.FlowOwner,
		ID:       g.ids.Next(),
		CancelID: target,
	}
}

func (g *Generator) buildMarket(seq uint64, side domain.Side, size int64) *domain.Event {
	return &domain.Event{
		Seq:       seq,
		Kind:      domain.KindMarketOrder,
		Owner:     domain.FlowOwner,
		ID:        g.ids.Next(),
		ClientRef: uuid.New(),
		Side:      side,
		Qty:       size,
	}
}

// buildLimit places the price at offset ticks from the generator's
// fundamental tracker (0 until a mid has first been observed), below it
// for a bid and above it for an ask, clamped so it never crosses the
// opposite best.
func (g *Generator) buildLimit(seq uint64, side domain.Side, size, offset int64, snap domain.Snapshot) *domain.Event {
	id := g.ids.Next()

	ref := g.fundamental
	if !g.hasFundamental {
		ref = 0
	}
	var price int64
	if side == domain.Bid {
		price = int64(math.Round(ref)) - offset
		if snap.HasAsk && price >= snap.AskPrice {
			price = snap.AskPrice - 1
		}
	} else {
		price = int64(math.Round(ref)) + offset
		if snap.HasBid && price <= snap.BidPrice {
			price = snap.BidPrice + 1
		}
	}

	g.resting = append(g.resting, id)
	return &domain.Event{
		Seq:       seq,
		Kind:      domain.KindLimitOrder,
		Owner:     domain.FlowOwner,
		ID:        id,
		ClientRef: uuid.New(),
		Side:      side,
		Price:     price,
		Qty:       size,
	}
}
