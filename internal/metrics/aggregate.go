package metrics

import "github.com/eliyataleb/lobsim/internal/domain"

// Summary is the final aggregate diagnostics block: final mtm PnL,
// realized PnL, trade count, maker fill count, average spread, average
// absolute inventory, average markout at the configured horizon, and
// adverse fill ratio. The 2x/4x markout horizons are an added
// diagnostic with no new config surface — the per-event mid history is
// already retained.
type Summary struct {
	FinalMtmPnL float64
	RealizedPnL int64 // final cash: mtm minus the unrealized inventory*mid term
	TradeCount  int
	MakerFills  int

	AvgSpread        float64
	AvgAbsInventory  float64
	AvgMarkout       float64
	AdverseFillRatio float64

	AvgMarkout2x       float64
	AdverseFillRatio2x float64
	AvgMarkout4x       float64
	AdverseFillRatio4x float64
}

// Aggregate computes the summary block from the collector's retained
// record streams. horizon is the configured markout horizon, counted in
// event sequence numbers (Seq): a fill at Seq t is marked against the
// mid recorded at Seq t+horizon. Quote-refresh records count toward the
// horizon as well as exogenous events, so it is not a count of
// exogenous events alone.
func Aggregate(c *Collector, horizon int64) Summary {
	var s Summary
	s.TradeCount = len(c.Trades)
	s.MakerFills = len(c.MakerFills)

	if len(c.Events) > 0 {
		last := c.Events[len(c.Events)-1]
		s.FinalMtmPnL = last.MtmPnL
		s.RealizedPnL = last.Cash
	}

	var spreadSum float64
	var spreadN int
	var invSum float64
	for _, e := range c.Events {
		if e.HasBestBid && e.HasBestAsk {
			spreadSum += float64(e.Spread)
			spreadN++
		}
		invSum += absF(float64(e.Inventory))
	}
	if spreadN > 0 {
		s.AvgSpread = spreadSum / float64(spreadN)
	}
	if len(c.Events) > 0 {
		s.AvgAbsInventory = invSum / float64(len(c.Events))
	}

	midBySeq := make(map[uint64]float64, len(c.Events))
	hasMidBySeq := make(map[uint64]bool, len(c.Events))
	for _, e := range c.Events {
		midBySeq[e.Seq] = e.Mid
		hasMidBySeq[e.Seq] = e.HasMid
	}

	s.AvgMarkout, s.AdverseFillRatio = markoutStats(c.MakerFills, midBySeq, hasMidBySeq, horizon)
	s.AvgMarkout2x, s.AdverseFillRatio2x = markoutStats(c.MakerFills, midBySeq, hasMidBySeq, horizon*2)
	s.AvgMarkout4x, s.AdverseFillRatio4x = markoutStats(c.MakerFills, midBySeq, hasMidBySeq, horizon*4)

	return s
}

// markoutStats computes the average markout and adverse fill ratio at a
// given horizon over the maker's fills. Fills whose t+h falls beyond the
// simulation's recorded events (trailing fills) are excluded.
func markoutStats(fills []domain.Trade, midBySeq map[uint64]float64, hasMidBySeq map[uint64]bool, horizon int64) (float64, float64) {
	if horizon <= 0 {
		return 0, 0
	}

	var sum float64
	var adverse int
	var n int

	for _, t := range fills {
		futureSeq := uint64(t.Timestamp + horizon)
		mid, ok := midBySeq[futureSeq]
		if !ok || !hasMidBySeq[futureSeq] {
			continue
		}

		makerSide := t.AggressorSide.Opposite()
		sign := float64(makerSide.Sign())
		markout := (mid - float64(t.Price)) * sign

		sum += markout
		n++
		if markout < 0 {
			adverse++
		}
	}

	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), float64(adverse) / float64(n)
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
