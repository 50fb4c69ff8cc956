// Package orderbook implements the price-time-priority limit order book:
// two sorted collections of FIFO price levels plus an id index that
// takes a cancel straight to the order's level. The order is then found
// by a scan of that one level, not in constant time.
package orderbook

import (
	"errors"

	"github.com/eliyataleb/lobsim/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/btree"
)

var (
	// ErrCrossedRest is returned by Insert when placing the order would
	// cross the opposite side at rest. Such orders must be routed
	// through the matching engine instead of inserted raw.
	ErrCrossedRest = errors.New("orderbook: insert would cross the book at rest")
	// ErrNotFound is returned by Cancel for an unknown id. It is a no-op,
	// not a failure — callers should treat it as informational.
	ErrNotFound = errors.New("orderbook: order not found")
)

type location struct {
	side  domain.Side
	price int64
}

type levels = btree.BTreeG[*PriceLevel]

// Book holds the resting bid and ask sides of one symbol.
type Book struct {
	bids *levels // sorted best-first: highest price first
	asks *levels // sorted best-first: lowest price first

	idIndex map[domain.OrderID]location
	nextSeq uint64

	hasMid  bool
	lastMid float64
}

// New creates an empty order book.
func New() *Book {
	return &Book{
		bids:    btree.NewBTreeG(func(a, b *PriceLevel) bool { return a.Price > b.Price }),
		asks:    btree.NewBTreeG(func(a, b *PriceLevel) bool { return a.Price < b.Price }),
		idIndex: make(map[domain.OrderID]location),
	}
}

func (b *Book) tree(side domain.Side) *levels {
	if side == domain.Bid {
		return b.bids
	}
	return b.asks
}

// NextArrivalSeq allocates the next arrival sequence number, which
// Insert stamps on each accepted order for within-level priority. It is
// separate from order ids and from the scheduler's event sequence.
func (b *Book) NextArrivalSeq() uint64 {
	b.nextSeq++
	return b.nextSeq
}

// Insert places order at the tail of its (side, price) level, assigning
// ArrivalSeq. Returns ErrCrossedRest if the order would cross the
// opposite side — such orders must go through matching.Engine.Apply
// instead, never straight to Insert.
func (b *Book) Insert(order *domain.Order) error {
	if order.Side == domain.Bid {
		if askPrice, ok := b.BestAskPrice(); ok && order.Price >= askPrice {
			log.Warn().Str("kind", "CrossedRest").Str("side", order.Side.String()).
				Uint64("order_id", uint64(order.ID)).Str("client_ref", order.ClientRef.String()).
				Int64("price", order.Price).Int64("best_ask", askPrice).Msg("insert refused: would cross the book at rest")
			return ErrCrossedRest
		}
	} else {
		if bidPrice, ok := b.BestBidPrice(); ok && order.Price <= bidPrice {
			log.Warn().Str("kind", "CrossedRest").Str("side", order.Side.String()).
				Uint64("order_id", uint64(order.ID)).Str("client_ref", order.ClientRef.String()).
				Int64("price", order.Price).Int64("best_bid", bidPrice).Msg("insert refused: would cross the book at rest")
			return ErrCrossedRest
		}
	}

	order.ArrivalSeq = b.NextArrivalSeq()

	tree := b.tree(order.Side)
	probe := &PriceLevel{Price: order.Price}
	level, ok := tree.GetMut(probe)
	if !ok {
		level = &PriceLevel{Price: order.Price}
		tree.Set(level)
	}
	level.Orders = append(level.Orders, order)
	b.idIndex[order.ID] = location{side: order.Side, price: order.Price}
	return nil
}

// Cancel removes the order's remaining quantity. Idempotent: cancelling
// an unknown id returns ErrNotFound with no side effect.
func (b *Book) Cancel(id domain.OrderID) error {
	loc, ok := b.idIndex[id]
	if !ok {
		log.Warn().Str("kind", "RejectedCancel").Uint64("order_id", uint64(id)).
			Msg("cancel targeted an id no longer on the book")
		return ErrNotFound
	}

	tree := b.tree(loc.side)
	probe := &PriceLevel{Price: loc.price}
	level, ok := tree.GetMut(probe)
	if !ok {
		// Index and tree disagree; treat as not found rather than panic.
		delete(b.idIndex, id)
		log.Warn().Str("kind", "RejectedCancel").Uint64("order_id", uint64(id)).
			Msg("cancel targeted an id no longer on the book")
		return ErrNotFound
	}

	idx := -1
	for i, o := range level.Orders {
		if o.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		delete(b.idIndex, id)
		log.Warn().Str("kind", "RejectedCancel").Uint64("order_id", uint64(id)).
			Msg("cancel targeted an id no longer on the book")
		return ErrNotFound
	}

	level.Orders = append(level.Orders[:idx], level.Orders[idx+1:]...)
	delete(b.idIndex, id)
	if level.empty() {
		tree.Delete(level)
	}
	return nil
}

// NextMatchable returns the best-priced, earliest-arrived resting order
// on side that is eligible to be matched against an aggressor owned by
// excludeOwner. Orders owned by excludeOwner are skipped in place (left
// resting, priority unchanged) rather than matched — this is the
// self-trade guard. In the common case (no self-trade) this is simply
// the head of the best level.
func (b *Book) NextMatchable(side domain.Side, excludeOwner string) (*domain.Order, bool) {
	for _, level := range b.tree(side).Items() {
		for _, o := range level.Orders {
			if o.Owner != excludeOwner {
				return o, true
			}
		}
	}
	return nil, false
}

// Fill reduces the quantity of a specific resting order by qty. If fully
// consumed, the order is removed from its level and the id index; the
// level is deleted if it becomes empty. qty must not exceed the order's
// remaining quantity. No-op if id is unknown.
func (b *Book) Fill(id domain.OrderID, qty int64) {
	loc, ok := b.idIndex[id]
	if !ok {
		return
	}
	tree := b.tree(loc.side)
	level, ok := tree.GetMut(&PriceLevel{Price: loc.price})
	if !ok {
		return
	}
	for i, o := range level.Orders {
		if o.ID != id {
			continue
		}
		o.Qty -= qty
		if o.Qty <= 0 {
			delete(b.idIndex, id)
			level.Orders = append(level.Orders[:i], level.Orders[i+1:]...)
			if level.empty() {
				tree.Delete(level)
			}
		}
		return
	}
}

// BestBidPrice/BestAskPrice return the top-of-book price for a side.
func (b *Book) BestBidPrice() (int64, bool) {
	if level, ok := b.bids.Min(); ok {
		return level.Price, true
	}
	return 0, false
}

func (b *Book) BestAskPrice() (int64, bool) {
	if level, ok := b.asks.Min(); ok {
		return level.Price, true
	}
	return 0, false
}

// Depth returns the aggregate resting quantity at (side, price).
func (b *Book) Depth(side domain.Side, price int64) int64 {
	level, ok := b.tree(side).Get(&PriceLevel{Price: price})
	if !ok {
		return 0
	}
	return level.depth()
}

// Location reports the current (side, price) of a live order id.
func (b *Book) Location(id domain.OrderID) (domain.Side, int64, bool) {
	loc, ok := b.idIndex[id]
	return loc.side, loc.price, ok
}

// Snapshot returns the current top-of-book view. Mid is sticky: once
// both sides have been non-empty at least once, an empty side no longer
// undefines Mid.
func (b *Book) Snapshot() domain.Snapshot {
	var snap domain.Snapshot

	if level, ok := b.bids.Min(); ok {
		snap.HasBid = true
		snap.BidPrice = level.Price
		snap.BidSize = level.depth()
	}
	if level, ok := b.asks.Min(); ok {
		snap.HasAsk = true
		snap.AskPrice = level.Price
		snap.AskSize = level.depth()
	}

	if snap.HasBid && snap.HasAsk {
		snap.Spread = snap.AskPrice - snap.BidPrice
		b.lastMid = float64(snap.BidPrice+snap.AskPrice) / 2
		b.hasMid = true
	}
	if b.hasMid {
		snap.HasMid = true
		snap.Mid = b.lastMid
	}
	return snap
}

// AssertInvariants returns an error describing the first structural
// invariant found violated, or nil. Intended for tests and debug builds,
// not the hot path.
func (b *Book) AssertInvariants() error {
	if bid, ok := b.BestBidPrice(); ok {
		if ask, ok := b.BestAskPrice(); ok && bid >= ask {
			return errors.New("orderbook: book crossed at rest")
		}
	}
	seen := make(map[domain.OrderID]bool, len(b.idIndex))
	check := func(side domain.Side, tree *levels) error {
		for _, level := range tree.Items() {
			if level.empty() {
				return errors.New("orderbook: empty level left in tree")
			}
			var prevSeq uint64
			for i, o := range level.Orders {
				if i > 0 && o.ArrivalSeq <= prevSeq {
					return errors.New("orderbook: level FIFO order violated")
				}
				prevSeq = o.ArrivalSeq
				loc, ok := b.idIndex[o.ID]
				if !ok || loc.side != side || loc.price != level.Price {
					return errors.New("orderbook: id index inconsistent with level contents")
				}
				seen[o.ID] = true
			}
		}
		return nil
	}
	if err := check(domain.Bid, b.bids); err != nil {
		return err
	}
	if err := check(domain.Ask, b.asks); err != nil {
		return err
	}
	if len(seen) != len(b.idIndex) {
		return errors.New("orderbook: id index has stale entries")
	}
	return nil
}
