package metrics

import "github.com/eliyataleb/lobsim/internal/domain"

// EventRecord is the per-event diagnostics row: seq, best_bid, best_ask,
// mid, spread, inventory, cash, mtm_pnl, last_trade_price, event_type.
// There is no wall clock in this system — the event sequence number
// doubles as "time".
type EventRecord struct {
	Seq       uint64
	EventType string

	HasBestBid bool
	BestBid    int64
	HasBestAsk bool
	BestAsk    int64
	HasMid     bool
	Mid        float64
	Spread     int64

	Inventory int64
	Cash      int64
	MtmPnL    float64

	HasLastTrade   bool
	LastTradePrice int64
}

func newEventRecord(seq uint64, kind domain.EventKind, snap domain.Snapshot, inventory, cash int64, mtmPnL float64, trades []domain.Trade) EventRecord {
	rec := EventRecord{
		Seq:        seq,
		EventType:  kind.String(),
		HasBestBid: snap.HasBid,
		BestBid:    snap.BidPrice,
		HasBestAsk: snap.HasAsk,
		BestAsk:    snap.AskPrice,
		HasMid:     snap.HasMid,
		Mid:        snap.Mid,
		Spread:     snap.Spread,
		Inventory:  inventory,
		Cash:       cash,
		MtmPnL:     mtmPnL,
	}
	if len(trades) > 0 {
		rec.HasLastTrade = true
		rec.LastTradePrice = trades[len(trades)-1].Price
	}
	return rec
}
