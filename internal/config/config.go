// Package config defines every tunable knob the simulator needs. Fields
// carry `mapstructure` tags so a collaborator can decode a YAML/TOML
// file into Config via github.com/spf13/viper without this module
// importing viper itself — file parsing stays out of scope.
package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/eliyataleb/lobsim/internal/flow"
	"github.com/eliyataleb/lobsim/internal/maker"
)

// ErrConfigInvalid is the one fatal-at-startup error kind; every other
// runtime condition is recoverable and only counted.
var ErrConfigInvalid = errors.New("config: invalid")

// Config holds every field the simulator's subsystems read from.
type Config struct {
	Seed    int64 `mapstructure:"seed"`
	NEvents int64 `mapstructure:"n_events"`

	TickSize int64 `mapstructure:"tick_size"`
	LotSize  int64 `mapstructure:"lot_size"`

	MMRefreshK            int64   `mapstructure:"mm_refresh_k"`
	MMHalfSpread          float64 `mapstructure:"mm_half_spread"`
	MMInventoryWidenAlpha float64 `mapstructure:"mm_inventory_widen_alpha"`
	MMSkewBeta            float64 `mapstructure:"mm_skew_beta"`
	MMQuoteSize           int64   `mapstructure:"mm_quote_size"`

	FlowProbs FlowProbs `mapstructure:"flow_probs"`

	PBuy              float64               `mapstructure:"p_buy"`
	ImbalanceSchedule []flow.ImbalancePoint `mapstructure:"imbalance_schedule"`

	PInformed           float64 `mapstructure:"p_informed"`
	SignalTau           float64 `mapstructure:"signal_tau"`
	SignalMeanReversion float64 `mapstructure:"signal_mean_reversion"`
	InfoHorizon         uint64  `mapstructure:"info_horizon"`
	FundamentalBeta     float64 `mapstructure:"fundamental_beta"`

	PriceOffsetDist flow.Dist `mapstructure:"price_offset_dist"`
	SizeDist        flow.Dist `mapstructure:"size_dist"`

	MarkoutHorizon int64 `mapstructure:"markout_horizon"`

	// Supplemented burst/regime knobs (flow.Config's BurstIntervalEvents
	// == 0 disables them; this is the default).
	BurstIntervalEvents uint64  `mapstructure:"burst_interval_events"`
	BurstWindowEvents   uint64  `mapstructure:"burst_window_events"`
	BurstCancelMul      float64 `mapstructure:"burst_cancel_mul"`
	BurstMarketMul      float64 `mapstructure:"burst_market_mul"`
}

// FlowProbs is the {limit, market, cancel} event-type probability
// split; the three must sum to 1.
type FlowProbs struct {
	Limit  float64 `mapstructure:"limit"`
	Market float64 `mapstructure:"market"`
	Cancel float64 `mapstructure:"cancel"`
}

// Default returns a small, internally consistent configuration safe to
// run as-is; it is not tuned for any particular experiment.
func Default() Config {
	return Config{
		Seed:                  42,
		NEvents:               10_000,
		TickSize:              1,
		LotSize:               1,
		MMRefreshK:            20,
		MMHalfSpread:          2,
		MMInventoryWidenAlpha: 0.1,
		MMSkewBeta:            0.05,
		MMQuoteSize:           10,
		FlowProbs:             FlowProbs{Limit: 0.6, Market: 0.3, Cancel: 0.1},
		PBuy:                  0.5,
		PInformed:             0.1,
		SignalTau:             1.0,
		SignalMeanReversion:   0.1,
		InfoHorizon:           50,
		FundamentalBeta:       0.05,
		PriceOffsetDist:       flow.Dist{Min: 1, Max: 5},
		SizeDist:              flow.Dist{Min: 1, Max: 10},
		MarkoutHorizon:        20,
	}
}

// Validate enforces the startup-fatal conditions: event-type
// probabilities must sum to 1, sizes must be positive, and the refresh
// cadence K must be positive. This is the only place a Config-derived
// error is fatal; everything else is a recoverable runtime counter.
func (c Config) Validate() error {
	sum := c.FlowProbs.Limit + c.FlowProbs.Market + c.FlowProbs.Cancel
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("%w: flow_probs must sum to 1, got %.6f", ErrConfigInvalid, sum)
	}
	if c.FlowProbs.Limit < 0 || c.FlowProbs.Market < 0 || c.FlowProbs.Cancel < 0 {
		return fmt.Errorf("%w: flow_probs must be non-negative", ErrConfigInvalid)
	}
	if c.TickSize <= 0 || c.LotSize <= 0 {
		return fmt.Errorf("%w: tick_size and lot_size must be positive", ErrConfigInvalid)
	}
	if c.MMQuoteSize <= 0 {
		return fmt.Errorf("%w: mm_quote_size must be positive", ErrConfigInvalid)
	}
	if c.MMRefreshK <= 0 {
		return fmt.Errorf("%w: mm_refresh_k must be positive", ErrConfigInvalid)
	}
	if c.SizeDist.Min <= 0 {
		return fmt.Errorf("%w: size_dist.min must be positive", ErrConfigInvalid)
	}
	if c.PBuy < 0 || c.PBuy > 1 {
		return fmt.Errorf("%w: p_buy must be in [0, 1]", ErrConfigInvalid)
	}
	if c.PInformed < 0 || c.PInformed > 1 {
		return fmt.Errorf("%w: p_informed must be in [0, 1]", ErrConfigInvalid)
	}
	if c.NEvents <= 0 {
		return fmt.Errorf("%w: n_events must be positive", ErrConfigInvalid)
	}
	if c.MarkoutHorizon <= 0 {
		return fmt.Errorf("%w: markout_horizon must be positive", ErrConfigInvalid)
	}
	return nil
}

// FlowConfig projects the flow-generator-relevant subset of Config into
// a flow.Config.
func (c Config) FlowConfig() flow.Config {
	return flow.Config{
		PCancel:             c.FlowProbs.Cancel,
		PMarket:             c.FlowProbs.Market,
		PLimit:              c.FlowProbs.Limit,
		PBuy:                c.PBuy,
		ImbalanceSchedule:   c.ImbalanceSchedule,
		PriceOffsetDist:     c.PriceOffsetDist,
		SizeDist:            c.SizeDist,
		PInformed:           c.PInformed,
		SignalTau:           c.SignalTau,
		SignalMeanReversion: c.SignalMeanReversion,
		InfoHorizon:         c.InfoHorizon,
		FundamentalBeta:     c.FundamentalBeta,
		BurstIntervalEvents: c.BurstIntervalEvents,
		BurstWindowEvents:   c.BurstWindowEvents,
		BurstCancelMul:      c.BurstCancelMul,
		BurstMarketMul:      c.BurstMarketMul,
	}
}

// MakerConfig projects the maker-relevant subset of Config into a
// maker.Config.
func (c Config) MakerConfig() maker.Config {
	return maker.Config{
		HalfSpreadBase:      c.MMHalfSpread,
		InventoryWidenAlpha: c.MMInventoryWidenAlpha,
		SkewBeta:            c.MMSkewBeta,
		QuoteSize:           c.MMQuoteSize,
	}
}
