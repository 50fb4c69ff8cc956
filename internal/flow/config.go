package flow

import "github.com/eliyataleb/lobsim/internal/rng"

// Dist is a parameterized discrete distribution over a closed integer
// range, uniform between Min and Max inclusive. Grounded on the
// execution-fairness simulator's backgroundGen.randSize
// (MinOrderSize/MaxOrderSize uniform draw).
type Dist struct {
	Min int64
	Max int64
}

func (d Dist) draw(s *rng.Stream) int64 {
	if d.Max <= d.Min {
		return d.Min
	}
	return d.Min + s.Int63n(d.Max-d.Min+1)
}

// ImbalancePoint is one step of a piecewise p_buy schedule: from AtEvent
// onward (until the next point), PBuy applies.
type ImbalancePoint struct {
	AtEvent uint64
	PBuy    float64
}

// Config holds every knob of the flow generator, plus the added
// burst/regime fields.
type Config struct {
	// Event-type mix; PCancel+PMarket+PLimit should sum to 1
	// (config.Validate enforces this).
	PCancel float64
	PMarket float64
	PLimit  float64

	// PBuy is the default Bernoulli parameter for side when no
	// ImbalanceSchedule point has fired yet.
	PBuy              float64
	ImbalanceSchedule []ImbalancePoint

	PriceOffsetDist Dist
	SizeDist        Dist

	PInformed           float64
	SignalTau           float64
	SignalMeanReversion float64
	InfoHorizon         uint64
	FundamentalBeta     float64

	// Burst/regime knobs (supplemented, off by default).
	BurstIntervalEvents uint64
	BurstWindowEvents   uint64
	BurstCancelMul      float64
	BurstMarketMul      float64
}

func (c Config) pBuyAt(eventIndex uint64) float64 {
	p := c.PBuy
	for _, pt := range c.ImbalanceSchedule {
		if pt.AtEvent <= eventIndex {
			p = pt.PBuy
		} else {
			break
		}
	}
	return p
}

func (c Config) inBurst(eventIndex uint64) bool {
	if c.BurstIntervalEvents == 0 {
		return false
	}
	return eventIndex%c.BurstIntervalEvents < c.BurstWindowEvents
}

// effectiveRates returns (pCancel, pMarket) for eventIndex, widened by the
// burst multipliers while inside a burst window.
func (c Config) effectiveRates(eventIndex uint64) (float64, float64) {
	pCancel, pMarket := c.PCancel, c.PMarket
	if c.inBurst(eventIndex) {
		if c.BurstCancelMul > 0 {
			pCancel *= c.BurstCancelMul
		}
		if c.BurstMarketMul > 0 {
			pMarket *= c.BurstMarketMul
		}
		if pCancel > 1 {
			pCancel = 1
		}
		if pCancel+pMarket > 1 {
			pMarket = 1 - pCancel
		}
	}
	return pCancel, pMarket
}
