// Package matching implements the price-time-priority matching engine:
// it applies one event at a time to an orderbook.Book and produces the
// trades and post-event snapshot.
package matching

import (
	"errors"

	"github.com/eliyataleb/lobsim/internal/domain"
	"github.com/eliyataleb/lobsim/internal/orderbook"
	"github.com/rs/zerolog/log"
)

var (
	ErrExhaustedBook = errors.New("matching: market order could not be fully filled")
	ErrCrossedQuote  = errors.New("matching: quote refresh side would cross, skipped")
)

// Result is what Apply hands back to the scheduler: the trades produced,
// the post-event book snapshot, and recoverable diagnostics. None of
// these conditions are fatal — they're just counted here.
type Result struct {
	Trades         []domain.Trade
	Snapshot       domain.Snapshot
	ExhaustedBook  bool
	CrossedQuotes  []domain.Side // sides skipped during a QuoteRefresh because they would cross
	RejectedCancel bool          // Cancel targeted an id that no longer exists
	RestRejected   bool          // residual rest from a limit order was refused by the book because it would cross
}

// Engine applies events to a single order book.
type Engine struct {
	Book *orderbook.Book

	nextTradeSeq uint64
}

// New creates a matching engine over a fresh order book.
func New() *Engine {
	return &Engine{Book: orderbook.New()}
}

// Apply dispatches event to the appropriate handler and returns the
// trades produced plus the post-event snapshot. Apply never returns an
// error for recoverable runtime conditions (ExhaustedBook, CrossedQuote,
// NotFound-on-cancel) — those are reported via Result fields instead, so
// a run never aborts mid-stream over a condition that isn't fatal.
func (e *Engine) Apply(event *domain.Event) Result {
	var res Result
	switch event.Kind {
	case domain.KindLimitOrder:
		res.Trades, res.RestRejected = e.applyLimit(event)
	case domain.KindMarketOrder:
		res.Trades, res.ExhaustedBook = e.applyMarket(event)
	case domain.KindCancel:
		if err := e.Book.Cancel(event.CancelID); err != nil {
			res.RejectedCancel = true
		}
	case domain.KindQuoteRefresh:
		res.CrossedQuotes = e.applyQuoteRefresh(event.Refresh)
	}
	res.Snapshot = e.Book.Snapshot()
	return res
}

// applyLimit implements marketable-limit semantics: walk the opposite
// side while it crosses the limit price, then rest any remainder at the
// aggressor's own limit price.
func (e *Engine) applyLimit(event *domain.Event) ([]domain.Trade, bool) {
	aggressor := &domain.Order{
		ID:        event.ID,
		ClientRef: event.ClientRef,
		Owner:     event.Owner,
		Side:      event.Side,
		Price:     event.Price,
		Qty:       event.Qty,
	}

	opp := event.Side.Opposite()
	var trades []domain.Trade

	for aggressor.Qty > 0 {
		maker, ok := e.Book.NextMatchable(opp, aggressor.Owner)
		if !ok {
			break
		}
		if !crosses(event.Side, aggressor.Price, maker.Price) {
			break
		}
		trades = append(trades, e.trade(int64(event.Seq), aggressor, maker))
	}

	var restRejected bool
	if aggressor.Qty > 0 {
		rest := &domain.Order{
			ID:        aggressor.ID,
			ClientRef: aggressor.ClientRef,
			Owner:     aggressor.Owner,
			Side:      aggressor.Side,
			Price:     aggressor.Price,
			Qty:       aggressor.Qty,
		}
		rest.TotalQty = event.Qty
		// The walk above stops either when the next eligible maker no
		// longer crosses or when the self-trade guard leaves no eligible
		// maker. In the second case a same-owner order may still cross
		// rest.Price, and Insert refuses the rest; that is reported
		// rather than silently swallowed.
		if err := e.Book.Insert(rest); err != nil {
			restRejected = true
			log.Warn().Err(err).Str("kind", "CrossedRest").Uint64("seq", event.Seq).
				Uint64("order_id", uint64(rest.ID)).Str("client_ref", rest.ClientRef.String()).
				Msg("residual limit rest refused by the book")
		}
	}

	return trades, restRejected
}

// applyMarket implements market-order semantics: walk the opposite side
// ignoring price, regardless of how deep; if the book is exhausted
// before the full quantity fills, the residual is dropped (no synthetic
// matching, no halting) and ExhaustedBook is reported.
func (e *Engine) applyMarket(event *domain.Event) ([]domain.Trade, bool) {
	aggressor := &domain.Order{
		ID:        event.ID,
		ClientRef: event.ClientRef,
		Owner:     event.Owner,
		Side:      event.Side,
		Qty:       event.Qty,
	}

	opp := event.Side.Opposite()
	var trades []domain.Trade

	for aggressor.Qty > 0 {
		maker, ok := e.Book.NextMatchable(opp, aggressor.Owner)
		if !ok {
			log.Warn().Str("kind", "ExhaustedBook").Uint64("seq", event.Seq).
				Uint64("order_id", uint64(aggressor.ID)).Str("client_ref", aggressor.ClientRef.String()).
				Int64("remaining_qty", aggressor.Qty).Msg("market order could not be fully filled before the opposite side ran dry")
			return trades, true
		}
		trades = append(trades, e.trade(int64(event.Seq), aggressor, maker))
	}
	return trades, false
}

// trade matches qty = min(aggressor.Qty, maker.Qty) at the maker's price,
// updates both orders' remaining quantity, and removes the maker from
// the book if fully consumed.
func (e *Engine) trade(ts int64, aggressor, maker *domain.Order) domain.Trade {
	qty := aggressor.Qty
	if maker.Qty < qty {
		qty = maker.Qty
	}

	aggressor.Qty -= qty
	e.Book.Fill(maker.ID, qty)

	e.nextTradeSeq++

	return domain.Trade{
		Seq:           e.nextTradeSeq,
		Timestamp:     ts,
		AggressorSide: aggressor.Side,
		Price:         maker.Price,
		Qty:           qty,
		MakerOrderID:  maker.ID,
		TakerOrderID:  aggressor.ID,
		MakerOwner:    maker.Owner,
		TakerOwner:    aggressor.Owner,
		MMInvolved:    maker.Owner == domain.MarketMakerOwner || aggressor.Owner == domain.MarketMakerOwner,
	}
}

// crosses reports whether a limit order on side at price would be
// marketable against a resting order at makerPrice.
func crosses(side domain.Side, price, makerPrice int64) bool {
	if side == domain.Bid {
		return price >= makerPrice
	}
	return price <= makerPrice
}

// applyQuoteRefresh executes the maker's atomic cancel-replace:
// cancel(old bid); cancel(old ask); insert(new bid); insert(new ask), in
// that order. If a new side would cross the opposite book, that side is
// skipped (reported via CrossedQuotes) and the other proceeds.
func (e *Engine) applyQuoteRefresh(r *domain.QuoteRefresh) []domain.Side {
	if r == nil {
		return nil
	}
	if r.HasOldBid {
		_ = e.Book.Cancel(r.OldBidID)
	}
	if r.HasOldAsk {
		_ = e.Book.Cancel(r.OldAskID)
	}

	var crossed []domain.Side

	bidOrder := &domain.Order{ID: r.NewBidID, ClientRef: r.BidClientRef, Owner: domain.MarketMakerOwner, Side: domain.Bid, Price: r.BidPrice, Qty: r.Qty, TotalQty: r.Qty}
	if err := e.Book.Insert(bidOrder); err != nil {
		crossed = append(crossed, domain.Bid)
		log.Warn().Err(err).Str("kind", "CrossedQuote").Str("side", domain.Bid.String()).
			Uint64("order_id", uint64(bidOrder.ID)).Str("client_ref", bidOrder.ClientRef.String()).
			Msg("quote refresh side would cross, skipped")
	}

	askOrder := &domain.Order{ID: r.NewAskID, ClientRef: r.AskClientRef, Owner: domain.MarketMakerOwner, Side: domain.Ask, Price: r.AskPrice, Qty: r.Qty, TotalQty: r.Qty}
	if err := e.Book.Insert(askOrder); err != nil {
		crossed = append(crossed, domain.Ask)
		log.Warn().Err(err).Str("kind", "CrossedQuote").Str("side", domain.Ask.String()).
			Uint64("order_id", uint64(askOrder.ID)).Str("client_ref", askOrder.ClientRef.String()).
			Msg("quote refresh side would cross, skipped")
	}

	return crossed
}

