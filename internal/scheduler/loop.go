// Package scheduler implements the single-threaded, cooperative event
// loop: at each tick it invokes the market maker's refresh (if due)
// before drawing and dispatching the next exogenous event. Grounded on
// the execution-fairness simulator's sim.Runner.Run/handleEvent
// central-dispatch shape, rewritten from that repo's pre-scheduled
// timestamp-ordered event list into a pull-based, one-tick-at-a-time
// Step the caller drives explicitly — this system has no wall-clock
// timestamps, only a monotonic event index and a refresh-before-
// exogenous tie-break required for reproducibility.
package scheduler

import (
	"github.com/eliyataleb/lobsim/internal/domain"
	"github.com/eliyataleb/lobsim/internal/flow"
	"github.com/eliyataleb/lobsim/internal/maker"
	"github.com/eliyataleb/lobsim/internal/matching"
)

// Recorder consumes each event as it is applied, along with the market
// maker's state immediately afterward (inventory, cash, mark-to-market
// PnL) so a complete per-event record can be built without the metrics
// package depending on internal/maker directly. internal/metrics.Collector
// implements this; scheduler depends only on the interface so it never
// imports metrics (the dependency runs the other way).
type Recorder interface {
	RecordEvent(event *domain.Event, res matching.Result, inventory, cash int64, mtmPnL float64)
}

// Loop wires one matching engine, one flow generator, and one market
// maker together and advances them one exogenous event at a time.
type Loop struct {
	Engine *matching.Engine
	Flow   *flow.Generator
	Maker  *maker.Maker
	K      int64 // maker refresh cadence, in events; <= 0 disables refreshing

	seq uint64
}

// New creates a scheduler loop over an already-constructed engine, flow
// generator, and maker.
func New(engine *matching.Engine, gen *flow.Generator, mm *maker.Maker, k int64) *Loop {
	return &Loop{Engine: engine, Flow: gen, Maker: mm, K: k}
}

func (l *Loop) nextSeq() uint64 {
	l.seq++
	return l.seq
}

// Step advances the simulation by exactly one exogenous event, preceded
// by the maker's quote refresh if eventIndex is due. eventIndex is the
// caller's 1-based logical tick counter, used
// both for the refresh cadence and for the flow generator's imbalance
// and burst schedules. rec may be nil (e.g. in tests that only check
// book state).
func (l *Loop) Step(eventIndex int64, rec Recorder) {
	snap := l.Engine.Book.Snapshot()

	if maker.DueAt(eventIndex, l.K) {
		if event, ok := l.Maker.RefreshEvent(l.nextSeq(), snap); ok {
			res := l.Engine.Apply(event)
			l.Maker.ApplyRefreshResult(res.CrossedQuotes)
			l.notifyFills(res.Trades)
			if rec != nil {
				rec.RecordEvent(event, res, l.Maker.Inventory, l.Maker.Cash, l.Maker.MarkToMarket(mid(res.Snapshot)))
			}
			snap = res.Snapshot
		}
	}

	event := l.Flow.Next(uint64(eventIndex), l.nextSeq(), snap)
	res := l.Engine.Apply(event)
	l.notifyFills(res.Trades)
	if rec != nil {
		rec.RecordEvent(event, res, l.Maker.Inventory, l.Maker.Cash, l.Maker.MarkToMarket(mid(res.Snapshot)))
	}
}

// mid returns the snapshot's mid, or 0 if one has never been
// established (mark-to-market is then just cash, i.e. zero inventory
// times an undefined mid contributes nothing).
func mid(snap domain.Snapshot) float64 {
	if !snap.HasMid {
		return 0
	}
	return snap.Mid
}

// notifyFills lets the maker update inventory/cash and the flow
// generator retire self-cancel candidates for every trade this tick
// produced, regardless of which side (maker or flow) was the resting
// party.
func (l *Loop) notifyFills(trades []domain.Trade) {
	for _, t := range trades {
		l.Maker.OnFill(t)
		_, _, stillResting := l.Engine.Book.Location(t.MakerOrderID)
		l.Flow.OnFill(t.MakerOrderID, stillResting)
	}
}
