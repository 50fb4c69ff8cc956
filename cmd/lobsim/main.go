// Command lobsim runs one batch simulation to completion using the
// default configuration and logs the resulting summary. Grounded on
// saiputravu-Exchange's cmd/main.go signal.NotifyContext pattern,
// adapted from "block forever serving a TCP listener" to "run n_events
// ticks or stop early on SIGINT/SIGTERM".
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/eliyataleb/lobsim/internal/config"
	"github.com/eliyataleb/lobsim/simulation"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	cfg := config.Default()
	sim, err := simulation.New(cfg, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	log.Info().Int64("seed", cfg.Seed).Int64("n_events", cfg.NEvents).Msg("simulation starting")

	summary, err := sim.Run(ctx)
	if err != nil {
		log.Error().Err(err).Int64("events_run", summary.EventsRun).Msg("simulation stopped early")
	}

	log.Info().
		Int64("events_run", summary.EventsRun).
		Str("run_hash", summary.RunHash).
		Int("trade_count", summary.Metrics.TradeCount).
		Int("maker_fills", summary.Metrics.MakerFills).
		Float64("final_mtm_pnl", summary.Metrics.FinalMtmPnL).
		Float64("avg_markout", summary.Metrics.AvgMarkout).
		Float64("adverse_fill_ratio", summary.Metrics.AdverseFillRatio).
		Msg("simulation complete")

	if err != nil {
		os.Exit(1)
	}
}
