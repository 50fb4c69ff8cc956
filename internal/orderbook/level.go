package orderbook

import "github.com/eliyataleb/lobsim/internal/domain"

// PriceLevel is a FIFO queue of resting orders at one (side, price).
// Orders are appended at the tail on insert and consumed from the head
// on a match; Orders[0] is the next order to fill unless the self-trade
// guard in Book.NextMatchable skips it for an aggressor of the same owner.
type PriceLevel struct {
	Price  int64
	Orders []*domain.Order
}

func (l *PriceLevel) depth() int64 {
	var total int64
	for _, o := range l.Orders {
		total += o.Qty
	}
	return total
}

func (l *PriceLevel) empty() bool {
	return len(l.Orders) == 0
}
