package domain

// Snapshot is the immutable top-of-book view handed back to agents after
// every event. Mid is sticky: when one side is empty, it holds the last
// known mid rather than going undefined.
type Snapshot struct {
	HasBid   bool
	BidPrice int64
	BidSize  int64
	HasAsk   bool
	AskPrice int64
	AskSize  int64
	HasMid   bool    // false until both sides have been non-empty at least once
	Mid      float64 // sticky; holds the last known mid once HasMid is true
	Spread   int64   // AskPrice - BidPrice; 0 when either side is empty
}

// Crossed reports whether the resting book would be crossed at rest.
// Used only for assertions/tests; the matching engine never lets this
// happen in steady state.
func (s Snapshot) Crossed() bool {
	return s.HasBid && s.HasAsk && s.BidPrice >= s.AskPrice
}
