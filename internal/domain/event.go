package domain

import "github.com/google/uuid"

// EventKind tags the variant carried by an Event. The matching engine's
// Apply dispatches on this tag with an exhaustive switch — never on Go
// type identity.
type EventKind int

const (
	KindLimitOrder EventKind = iota
	KindMarketOrder
	KindCancel
	KindQuoteRefresh
)

func (k EventKind) String() string {
	switch k {
	case KindLimitOrder:
		return "limit"
	case KindMarketOrder:
		return "market"
	case KindCancel:
		return "cancel"
	case KindQuoteRefresh:
		return "quote_refresh"
	default:
		return "unknown"
	}
}

// QuoteRefresh is the market maker's composite cancel-replace event: both
// resting quotes are torn down and two new ones submitted atomically from
// the scheduler's point of view.
type QuoteRefresh struct {
	OldBidID  OrderID
	HasOldBid bool
	OldAskID  OrderID
	HasOldAsk bool

	NewBidID     OrderID
	BidPrice     int64
	BidClientRef uuid.UUID // correlates the maker's new bid to its assigned OrderID
	NewAskID     OrderID
	AskPrice     int64
	AskClientRef uuid.UUID // correlates the maker's new ask to its assigned OrderID
	Qty          int64
}

// Event is the single tagged-variant type dispatched by the scheduler to
// the matching engine. Only the fields relevant to Kind are populated.
type Event struct {
	Seq   uint64 // global, strictly monotonic event counter
	Kind  EventKind
	Owner string // "flow" or "maker"

	// LimitOrder / MarketOrder
	ID        OrderID
	ClientRef uuid.UUID // correlates the submitting agent's request to ID
	Side      Side
	Price     int64 // LimitOrder only
	Qty       int64

	// Cancel
	CancelID OrderID

	// QuoteRefresh
	Refresh *QuoteRefresh
}
