package domain

// Trade is emitted once per maker order consumed by an aggressor. A
// single aggressor may produce several trades across levels.
type Trade struct {
	Seq           uint64
	Timestamp     int64 // Seq of the event that produced the trade
	AggressorSide Side
	Price         int64 // the resting (maker) order's price
	Qty           int64
	MakerOrderID  OrderID
	TakerOrderID  OrderID
	MakerOwner    string
	TakerOwner    string
	MMInvolved    bool // true if either party's Owner is the market maker
}
