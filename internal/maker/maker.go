// Package maker implements the quoting market maker: inventory/cash
// bookkeeping and the periodic cancel-replace quoting policy. Grounded
// on the execution-fairness-simulator's trader.Agent/trader.Strategy
// shape (react to book state, track active orders, fill/cancel
// callbacks), adapted from that repo's latency-delayed multi-agent
// design down to a single maker on an integer refresh cadence.
package maker

import (
	"math"

	"github.com/eliyataleb/lobsim/internal/domain"
	"github.com/google/uuid"
)

// Config holds the quoting policy coefficients.
type Config struct {
	HalfSpreadBase         float64
	InventoryWidenAlpha    float64
	SkewBeta               float64
	QuoteSize              int64
}

// Maker is the market-making agent: inventory, cash, and the ids of its
// (at most one per side) live quotes.
type Maker struct {
	cfg Config
	ids *domain.IDAllocator

	Inventory int64
	Cash      int64

	HasActiveBid bool
	ActiveBidID  domain.OrderID
	HasActiveAsk bool
	ActiveAskID  domain.OrderID

	LastRefreshSeq uint64
	HasRefreshed   bool
}

// New creates a market maker with zero inventory and cash.
func New(cfg Config, ids *domain.IDAllocator) *Maker {
	return &Maker{cfg: cfg, ids: ids}
}

// DueAt reports whether a refresh is due at eventIndex given cadence k:
// the event index is a multiple of k.
func DueAt(eventIndex int64, k int64) bool {
	return k > 0 && eventIndex%k == 0
}

// RefreshEvent builds the QuoteRefresh event for the current snapshot
// and tentatively records the new quote ids as active. ok is false when
// no mid has ever been established — nothing to quote against yet.
func (m *Maker) RefreshEvent(seq uint64, snap domain.Snapshot) (*domain.Event, bool) {
	if !snap.HasMid {
		return nil, false
	}

	h := m.cfg.HalfSpreadBase + m.cfg.InventoryWidenAlpha*math.Abs(float64(m.Inventory))
	skew := -m.cfg.SkewBeta * float64(m.Inventory)

	bidPrice := int64(math.Round(snap.Mid + skew - h))
	askPrice := int64(math.Round(snap.Mid + skew + h))

	refresh := &domain.QuoteRefresh{
		HasOldBid:    m.HasActiveBid,
		OldBidID:     m.ActiveBidID,
		HasOldAsk:    m.HasActiveAsk,
		OldAskID:     m.ActiveAskID,
		NewBidID:     m.ids.Next(),
		BidPrice:     bidPrice,
		BidClientRef: uuid.New(),
		NewAskID:     m.ids.Next(),
		AskPrice:     askPrice,
		AskClientRef: uuid.New(),
		Qty:          m.cfg.QuoteSize,
	}

	m.HasActiveBid, m.ActiveBidID = true, refresh.NewBidID
	m.HasActiveAsk, m.ActiveAskID = true, refresh.NewAskID
	m.LastRefreshSeq, m.HasRefreshed = seq, true

	return &domain.Event{
		Seq:     seq,
		Kind:    domain.KindQuoteRefresh,
		Owner:   domain.MarketMakerOwner,
		Refresh: refresh,
	}, true
}

// ApplyRefreshResult rolls back the tentative active-quote bookkeeping
// for any side the engine reported as crossed: that side is left
// inactive and the other proceeds.
func (m *Maker) ApplyRefreshResult(crossed []domain.Side) {
	for _, side := range crossed {
		if side == domain.Bid {
			m.HasActiveBid = false
		} else {
			m.HasActiveAsk = false
		}
	}
}

// OnFill updates inventory and cash for a trade in which this maker was
// the resting (maker) side. The maker only ever rests — its own quotes
// are inserted raw, never walked as an aggressor — so MakerOwner is the
// only trade field that can name it.
func (m *Maker) OnFill(trade domain.Trade) {
	if trade.MakerOwner != domain.MarketMakerOwner {
		return
	}

	switch trade.MakerOrderID {
	case m.ActiveBidID:
		// The maker's resting bid was lifted: the maker bought.
		m.Inventory += trade.Qty
		m.Cash -= trade.Price * trade.Qty
	case m.ActiveAskID:
		// The maker's resting ask was hit: the maker sold.
		m.Inventory -= trade.Qty
		m.Cash += trade.Price * trade.Qty
	}
}

// MarkToMarket returns cash + inventory*mid.
func (m *Maker) MarkToMarket(mid float64) float64 {
	return float64(m.Cash) + float64(m.Inventory)*mid
}
