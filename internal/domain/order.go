// Package domain holds the tagged data types shared by every other
// package in the simulator: orders, trades, events and book snapshots.
package domain

import "github.com/google/uuid"

// Side is one of {Bid, Ask}.
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// Sign is +1 for Bid, -1 for Ask. Used to normalize markout to the
// maker's side of the trade.
func (s Side) Sign() int64 {
	if s == Bid {
		return 1
	}
	return -1
}

// MarketMakerOwner and FlowOwner are the two Owner values agents stamp
// their orders with; used for MMInvolved trade flagging and the
// self-trade guard.
const (
	MarketMakerOwner = "maker"
	FlowOwner        = "flow"
)

// OrderID is the global, simulation-wide unique identifier assigned to
// an order at submission time. It is distinct from ArrivalSeq, which the
// book assigns on acceptance and uses as the sole within-level tiebreak.
type OrderID uint64

// Order is a resting limit order, or the (transient) representation of a
// marketable limit / market order while it is being walked by the
// matching engine.
type Order struct {
	ID         OrderID
	ClientRef  uuid.UUID // correlates an agent's own request to the assigned OrderID
	Owner      string    // "flow" or "maker" — who posted this order
	Side       Side
	Price      int64 // ticks; meaningless for market orders
	Qty        int64 // remaining quantity
	TotalQty   int64 // quantity at acceptance, for reporting
	ArrivalSeq uint64
}

// Remaining reports whether the order still has quantity to fill.
func (o *Order) Remaining() bool {
	return o.Qty > 0
}
