// Package metrics records per-event and per-trade diagnostics, computes
// markout/adverse-fill-ratio summaries, and exposes a Prometheus
// collector for live inspection.
package metrics

import (
	"github.com/eliyataleb/lobsim/internal/domain"
	"github.com/eliyataleb/lobsim/internal/matching"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector accumulates the in-memory record streams the simulation
// produces as output, and mirrors the recoverable-condition counters
// and live gauges into Prometheus. It is never wired to an HTTP
// listener by this module; an embedding program is free to serve its
// registry itself.
type Collector struct {
	Events     []EventRecord
	Trades     []domain.Trade
	MakerFills []domain.Trade

	exhaustedBookTotal prometheus.Counter
	crossedQuoteTotal  prometheus.Counter
	crossedRestTotal   prometheus.Counter
	rejectedCancel     prometheus.Counter
	tradesTotal        prometheus.Counter
	makerFillsTotal    prometheus.Counter

	spreadGauge    prometheus.Gauge
	inventoryGauge prometheus.Gauge
	mtmPnLGauge    prometheus.Gauge
}

// NewCollector creates a collector and registers its Prometheus series
// against reg. Pass prometheus.NewRegistry() in tests to avoid
// colliding with another collector registered against the global
// DefaultRegisterer in the same process.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		exhaustedBookTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lobsim", Subsystem: "matching", Name: "exhausted_book_total",
			Help: "Market orders that could not be fully filled before the opposite side ran dry.",
		}),
		crossedQuoteTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lobsim", Subsystem: "maker", Name: "crossed_quote_total",
			Help: "Quote-refresh sides skipped because they would have crossed the book.",
		}),
		crossedRestTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lobsim", Subsystem: "orderbook", Name: "crossed_rest_total",
			Help: "Raw inserts rejected because they would cross the book at rest.",
		}),
		rejectedCancel: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lobsim", Subsystem: "orderbook", Name: "rejected_cancel_total",
			Help: "Cancels targeting an id no longer on the book.",
		}),
		tradesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lobsim", Subsystem: "matching", Name: "trades_total",
			Help: "Total trades executed.",
		}),
		makerFillsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lobsim", Subsystem: "maker", Name: "fills_total",
			Help: "Trades in which the market maker was the resting side.",
		}),
		spreadGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lobsim", Subsystem: "orderbook", Name: "spread",
			Help: "Current best-ask minus best-bid, in ticks.",
		}),
		inventoryGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lobsim", Subsystem: "maker", Name: "inventory",
			Help: "Current market maker inventory, in lots.",
		}),
		mtmPnLGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lobsim", Subsystem: "maker", Name: "mtm_pnl",
			Help: "Current mark-to-market PnL: cash + inventory * mid.",
		}),
	}
	c.registerAll(reg)
	return c
}

func (c *Collector) registerAll(reg prometheus.Registerer) {
	reg.MustRegister(
		c.exhaustedBookTotal,
		c.crossedQuoteTotal,
		c.crossedRestTotal,
		c.rejectedCancel,
		c.tradesTotal,
		c.makerFillsTotal,
		c.spreadGauge,
		c.inventoryGauge,
		c.mtmPnLGauge,
	)
}

// RecordEvent appends the per-event record and any trades produced, and
// updates every Prometheus series. inventory/cash/mtmPnL are the
// market maker's state immediately after the event was applied.
func (c *Collector) RecordEvent(event *domain.Event, res matching.Result, inventory, cash int64, mtmPnL float64) {
	rec := newEventRecord(event.Seq, event.Kind, res.Snapshot, inventory, cash, mtmPnL, res.Trades)
	c.Events = append(c.Events, rec)

	for _, t := range res.Trades {
		c.Trades = append(c.Trades, t)
		c.tradesTotal.Inc()
		if t.MMInvolved && t.MakerOwner == domain.MarketMakerOwner {
			c.MakerFills = append(c.MakerFills, t)
			c.makerFillsTotal.Inc()
		}
	}

	if res.ExhaustedBook {
		c.exhaustedBookTotal.Inc()
	}
	if res.RejectedCancel {
		c.rejectedCancel.Inc()
	}
	if res.RestRejected {
		c.crossedRestTotal.Inc()
	}
	for range res.CrossedQuotes {
		c.crossedQuoteTotal.Inc()
	}

	if res.Snapshot.HasBid && res.Snapshot.HasAsk {
		c.spreadGauge.Set(float64(res.Snapshot.Spread))
	}
	c.inventoryGauge.Set(float64(inventory))
	c.mtmPnLGauge.Set(mtmPnL)
}
