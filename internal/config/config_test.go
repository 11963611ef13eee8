package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Venues: map[string]VenueConfig{
			"minswap": {
				Enabled:            true,
				BaseURL:            "https://api-mainnet-prod.minswap.org",
				TradingFeeRate:     0.003,
				NetworkFeeLovelace: 170_000,
				BatcherFeeLovelace: 2_000_000,
			},
			"sundaeswap": {
				Enabled:            true,
				BaseURL:            "https://api.sundae.fi",
				TradingFeeRate:     0.005,
				NetworkFeeLovelace: 170_000,
				BatcherFeeLovelace: 2_500_000,
			},
		},
		Arbitrage: ArbitrageConfig{
			Pairs:                []string{"CATSKY-ADA"},
			TradeAmountADA:       100,
			ProfitThreshold:      2.0,
			MaxTradeAmountADA:    1000,
			MaxExecutionsPerHour: 6,
			ScanInterval:         30 * time.Second,
			ConfirmationTimeout:  time.Minute,
			ConfirmationPoll:     5 * time.Second,
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{
			"no_pairs",
			func(c *Config) { c.Arbitrage.Pairs = nil },
			"pairs cannot be empty",
		},
		{
			"zero_trade_amount",
			func(c *Config) { c.Arbitrage.TradeAmountADA = 0 },
			"trade_amount_ada",
		},
		{
			"negative_max_trade",
			func(c *Config) { c.Arbitrage.MaxTradeAmountADA = -1 },
			"max_trade_amount_ada",
		},
		{
			"zero_scan_interval",
			func(c *Config) { c.Arbitrage.ScanInterval = 0 },
			"scan_interval",
		},
		{
			"zero_confirmation_poll",
			func(c *Config) { c.Arbitrage.ConfirmationPoll = 0 },
			"confirmation",
		},
		{
			"only_one_venue",
			func(c *Config) {
				vc := c.Venues["sundaeswap"]
				vc.Enabled = false
				c.Venues["sundaeswap"] = vc
			},
			"at least 2 venues",
		},
		{
			"missing_base_url",
			func(c *Config) {
				vc := c.Venues["minswap"]
				vc.BaseURL = ""
				c.Venues["minswap"] = vc
			},
			"base_url is required",
		},
		{
			"fee_rate_not_a_fraction",
			func(c *Config) {
				vc := c.Venues["minswap"]
				vc.TradingFeeRate = 1.5
				c.Venues["minswap"] = vc
			},
			"trading_fee_rate",
		},
		{
			"negative_batcher_fee",
			func(c *Config) {
				vc := c.Venues["minswap"]
				vc.BatcherFeeLovelace = -1
				c.Venues["minswap"] = vc
			},
			"fixed fees",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate accepted invalid config")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	// No config file in the test working directory, so Load falls back
	// to defaults plus whatever CATSKY_* env vars are set.
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := cfg.Arbitrage.Pairs; len(got) != 1 || got[0] != "CATSKY-ADA" {
		t.Errorf("default pairs = %v, want [CATSKY-ADA]", got)
	}
	if !cfg.Arbitrage.DryRun {
		t.Error("dry_run default = false, want true")
	}
	if cfg.Arbitrage.AutoExecutionEnabled {
		t.Error("auto_execution_enabled default = true, want false")
	}
	if cfg.Arbitrage.ScanInterval != 30*time.Second {
		t.Errorf("scan_interval default = %v, want 30s", cfg.Arbitrage.ScanInterval)
	}
	if len(cfg.EnabledVenues()) < 2 {
		t.Errorf("enabled venues = %v, want at least 2 by default", cfg.EnabledVenues())
	}
	if cfg.Telemetry.Enabled {
		t.Error("telemetry default = enabled, want disabled")
	}
}

func TestArbitrageConfig_DecimalAccessors(t *testing.T) {
	c := &ArbitrageConfig{TradeAmountADA: 100, ProfitThreshold: 2.5, MaxTradeAmountADA: 1000}

	if got := c.TradeAmountDecimal().String(); got != "100" {
		t.Errorf("TradeAmountDecimal = %s, want 100", got)
	}
	if got := c.ProfitThresholdDecimal().String(); got != "2.5" {
		t.Errorf("ProfitThresholdDecimal = %s, want 2.5", got)
	}
	if got := c.MaxTradeAmountDecimal().String(); got != "1000" {
		t.Errorf("MaxTradeAmountDecimal = %s, want 1000", got)
	}
}
