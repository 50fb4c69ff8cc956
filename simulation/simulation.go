// Package simulation wires the order book, matching engine, flow
// generator, market maker, and metrics collector into one runnable
// batch simulation. Grounded on the execution-fairness simulator's
// sim.Runner (construct every subsystem from one Config, run to
// completion, return a result struct) and on saiputravu-Exchange's
// cmd/main.go + internal/net/server.go signal-context/tomb lifecycle
// pattern, adapted from that repo's long-lived TCP server into a single
// cancellable batch run.
package simulation

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/eliyataleb/lobsim/internal/config"
	"github.com/eliyataleb/lobsim/internal/domain"
	"github.com/eliyataleb/lobsim/internal/flow"
	"github.com/eliyataleb/lobsim/internal/maker"
	"github.com/eliyataleb/lobsim/internal/matching"
	"github.com/eliyataleb/lobsim/internal/metrics"
	"github.com/eliyataleb/lobsim/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

// Summary is everything Run hands back: the in-memory output streams,
// the aggregate diagnostics block, and a content hash of the event
// stream for determinism comparison (see DESIGN.md).
type Summary struct {
	Config     config.Config
	EventsRun  int64
	Events     []metrics.EventRecord
	Trades     []domain.Trade
	MakerFills []domain.Trade
	Metrics    metrics.Summary
	RunHash    string
}

// Simulation holds one fully wired run. It is single-use: call Run once.
type Simulation struct {
	cfg       config.Config
	loop      *scheduler.Loop
	collector *metrics.Collector
}

// New validates cfg and wires every subsystem. reg may be nil, in which
// case a fresh prometheus.Registry is used — never the package-global
// DefaultRegisterer, so constructing more than one Simulation in a
// process (as tests do) never panics on duplicate registration.
func New(cfg config.Config, reg prometheus.Registerer) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	ids := domain.NewIDAllocator()
	engine := matching.New()
	gen := flow.New(cfg.FlowConfig(), cfg.Seed, ids)
	mm := maker.New(cfg.MakerConfig(), ids)
	loop := scheduler.New(engine, gen, mm, cfg.MMRefreshK)
	collector := metrics.NewCollector(reg)

	return &Simulation{cfg: cfg, loop: loop, collector: collector}, nil
}

// Run drives the event loop for cfg.NEvents ticks, checking ctx once
// between events (the matching engine stays single-threaded — this
// goroutine is the only thing ever calling into it).
// A cancelled ctx stops the run early and Run still returns a Summary
// over whatever ran, alongside the context error.
func (s *Simulation) Run(ctx context.Context) (*Summary, error) {
	t, ctx := tomb.WithContext(ctx)

	var eventsRun int64
	t.Go(func() error {
		for i := int64(1); i <= s.cfg.NEvents; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			s.loop.Step(i, s.collector)
			eventsRun = i
		}
		return nil
	})

	runErr := t.Wait()
	if runErr != nil {
		log.Warn().Err(runErr).Int64("events_run", eventsRun).Msg("simulation stopped before n_events")
	}

	summary := &Summary{
		Config:     s.cfg,
		EventsRun:  eventsRun,
		Events:     s.collector.Events,
		Trades:     s.collector.Trades,
		MakerFills: s.collector.MakerFills,
		Metrics:    metrics.Aggregate(s.collector, s.cfg.MarkoutHorizon),
	}
	summary.RunHash = hashEvents(summary.Events)

	return summary, runErr
}

// hashEvents content-hashes the serialized event-record stream so two
// runs can be compared for byte-identical determinism without writing
// anything to disk.
func hashEvents(events []metrics.EventRecord) string {
	data, err := json.Marshal(events)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum)
}
