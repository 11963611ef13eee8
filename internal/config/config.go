// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig              `mapstructure:"app"`
	Venues    map[string]VenueConfig `mapstructure:"venues"`
	Arbitrage ArbitrageConfig        `mapstructure:"arbitrage"`
	Ledger    LedgerConfig           `mapstructure:"ledger"`
	Telemetry TelemetryConfig        `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// VenueConfig holds per-venue adapter configuration.
type VenueConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	BaseURL           string        `mapstructure:"base_url"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`

	// Fee structure. Trading fee is a fraction (0.003 = 0.3%); fixed fees
	// are denominated in lovelace.
	TradingFeeRate     float64 `mapstructure:"trading_fee_rate"`
	NetworkFeeLovelace int64   `mapstructure:"network_fee_lovelace"`
	BatcherFeeLovelace int64   `mapstructure:"batcher_fee_lovelace"`
}

// TradingFeeRateDecimal returns the trading fee rate as decimal.Decimal.
func (c *VenueConfig) TradingFeeRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.TradingFeeRate)
}

// ArbitrageConfig holds arbitrage detection and execution configuration.
type ArbitrageConfig struct {
	Pairs                []string      `mapstructure:"pairs"`
	TradeAmountADA       float64       `mapstructure:"trade_amount_ada"`
	ProfitThreshold      float64       `mapstructure:"profit_threshold"`
	MaxTradeAmountADA    float64       `mapstructure:"max_trade_amount_ada"`
	MaxExecutionsPerHour int           `mapstructure:"max_executions_per_hour"`
	ScanInterval         time.Duration `mapstructure:"scan_interval"`
	ConfirmationTimeout  time.Duration `mapstructure:"confirmation_timeout"`
	ConfirmationPoll     time.Duration `mapstructure:"confirmation_poll"`
	AutoExecutionEnabled bool          `mapstructure:"auto_execution_enabled"`
	DryRun               bool          `mapstructure:"dry_run"`
	EmergencyStopFile    string        `mapstructure:"emergency_stop_file"`
	TUIMode              bool          `mapstructure:"-"` // Set at runtime, not from config file
}

// TradeAmountDecimal returns the trade amount in ADA as decimal.Decimal.
func (c *ArbitrageConfig) TradeAmountDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.TradeAmountADA)
}

// ProfitThresholdDecimal returns the profit threshold percent as decimal.Decimal.
func (c *ArbitrageConfig) ProfitThresholdDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.ProfitThreshold)
}

// MaxTradeAmountDecimal returns the trade-size cap in ADA as decimal.Decimal.
func (c *ArbitrageConfig) MaxTradeAmountDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxTradeAmountADA)
}

// LedgerConfig holds execution ledger storage configuration.
type LedgerConfig struct {
	Path          string        `mapstructure:"path"`
	RetentionDays int           `mapstructure:"retention_days"`
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
	HealthPort     int    `mapstructure:"health_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("CATSKY")
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "CATSKY_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "CATSKY_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "CATSKY_LOG_LEVEL", "LOG_LEVEL")

	// Arbitrage
	v.BindEnv("arbitrage.pairs", "CATSKY_PAIRS")
	v.BindEnv("arbitrage.trade_amount_ada", "CATSKY_TRADE_AMOUNT_ADA")
	v.BindEnv("arbitrage.profit_threshold", "CATSKY_PROFIT_THRESHOLD")
	v.BindEnv("arbitrage.max_trade_amount_ada", "CATSKY_MAX_TRADE_AMOUNT_ADA")
	v.BindEnv("arbitrage.max_executions_per_hour", "CATSKY_MAX_EXECUTIONS_PER_HOUR")
	v.BindEnv("arbitrage.scan_interval", "CATSKY_SCAN_INTERVAL")
	v.BindEnv("arbitrage.auto_execution_enabled", "CATSKY_AUTO_EXECUTE")
	v.BindEnv("arbitrage.dry_run", "CATSKY_DRY_RUN", "DRY_RUN")
	v.BindEnv("arbitrage.emergency_stop_file", "CATSKY_EMERGENCY_STOP_FILE")

	// Ledger
	v.BindEnv("ledger.path", "CATSKY_LEDGER_PATH")

	// Telemetry
	v.BindEnv("telemetry.enabled", "CATSKY_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "CATSKY_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.trace_provider", "CATSKY_TRACE_PROVIDER")
	v.BindEnv("telemetry.otlp_endpoint", "CATSKY_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "catsky-bot")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Venue defaults. Fee rates follow each DEX's published schedule;
	// fixed fees are the usual ~0.17 ADA network fee plus ~2 ADA batcher fee.
	v.SetDefault("venues.minswap.enabled", true)
	v.SetDefault("venues.minswap.base_url", "https://api-mainnet-prod.minswap.org")
	v.SetDefault("venues.minswap.request_timeout", "10s")
	v.SetDefault("venues.minswap.requests_per_minute", 60)
	v.SetDefault("venues.minswap.trading_fee_rate", 0.003)
	v.SetDefault("venues.minswap.network_fee_lovelace", 170_000)
	v.SetDefault("venues.minswap.batcher_fee_lovelace", 2_000_000)

	v.SetDefault("venues.sundaeswap.enabled", true)
	v.SetDefault("venues.sundaeswap.base_url", "https://api.sundae.fi")
	v.SetDefault("venues.sundaeswap.request_timeout", "10s")
	v.SetDefault("venues.sundaeswap.requests_per_minute", 60)
	v.SetDefault("venues.sundaeswap.trading_fee_rate", 0.005)
	v.SetDefault("venues.sundaeswap.network_fee_lovelace", 170_000)
	v.SetDefault("venues.sundaeswap.batcher_fee_lovelace", 2_500_000)

	v.SetDefault("venues.muesliswap.enabled", true)
	v.SetDefault("venues.muesliswap.base_url", "https://api.muesliswap.com")
	v.SetDefault("venues.muesliswap.request_timeout", "10s")
	v.SetDefault("venues.muesliswap.requests_per_minute", 60)
	v.SetDefault("venues.muesliswap.trading_fee_rate", 0.003)
	v.SetDefault("venues.muesliswap.network_fee_lovelace", 170_000)
	v.SetDefault("venues.muesliswap.batcher_fee_lovelace", 950_000)

	// Arbitrage defaults
	// Pairs are TOKEN-ADA: price is quoted in ADA per token and trade
	// amounts are in ADA.
	v.SetDefault("arbitrage.pairs", []string{"CATSKY-ADA"})
	v.SetDefault("arbitrage.trade_amount_ada", 100)
	v.SetDefault("arbitrage.profit_threshold", 2.0)
	v.SetDefault("arbitrage.max_trade_amount_ada", 1000)
	v.SetDefault("arbitrage.max_executions_per_hour", 6)
	v.SetDefault("arbitrage.scan_interval", "30s")
	v.SetDefault("arbitrage.confirmation_timeout", "60s")
	v.SetDefault("arbitrage.confirmation_poll", "5s")
	v.SetDefault("arbitrage.auto_execution_enabled", false)
	v.SetDefault("arbitrage.dry_run", true)
	v.SetDefault("arbitrage.emergency_stop_file", "EMERGENCY_STOP")

	// Ledger defaults
	v.SetDefault("ledger.path", "catsky.db")
	v.SetDefault("ledger.retention_days", 30)
	v.SetDefault("ledger.purge_interval", "1h")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "catsky-bot")
	v.SetDefault("telemetry.trace_provider", "console")
	v.SetDefault("telemetry.prometheus_port", 9464)
	v.SetDefault("telemetry.health_port", 8081)
}

// Validate validates the configuration. Errors here are fatal at startup.
func (c *Config) Validate() error {
	if len(c.Arbitrage.Pairs) == 0 {
		return fmt.Errorf("arbitrage.pairs cannot be empty")
	}
	if c.Arbitrage.TradeAmountADA <= 0 {
		return fmt.Errorf("arbitrage.trade_amount_ada must be positive, got %v", c.Arbitrage.TradeAmountADA)
	}
	if c.Arbitrage.MaxTradeAmountADA <= 0 {
		return fmt.Errorf("arbitrage.max_trade_amount_ada must be positive, got %v", c.Arbitrage.MaxTradeAmountADA)
	}
	if c.Arbitrage.MaxExecutionsPerHour <= 0 {
		return fmt.Errorf("arbitrage.max_executions_per_hour must be positive, got %d", c.Arbitrage.MaxExecutionsPerHour)
	}
	if c.Arbitrage.ScanInterval <= 0 {
		return fmt.Errorf("arbitrage.scan_interval must be positive, got %v", c.Arbitrage.ScanInterval)
	}
	if c.Arbitrage.ConfirmationTimeout <= 0 || c.Arbitrage.ConfirmationPoll <= 0 {
		return fmt.Errorf("arbitrage confirmation timeout and poll interval must be positive")
	}

	enabled := 0
	for name, vc := range c.Venues {
		if !vc.Enabled {
			continue
		}
		enabled++
		if vc.BaseURL == "" {
			return fmt.Errorf("venues.%s.base_url is required", name)
		}
		if vc.TradingFeeRate < 0 || vc.TradingFeeRate >= 1 {
			return fmt.Errorf("venues.%s.trading_fee_rate must be a fraction in [0,1), got %v", name, vc.TradingFeeRate)
		}
		if vc.NetworkFeeLovelace < 0 || vc.BatcherFeeLovelace < 0 {
			return fmt.Errorf("venues.%s fixed fees cannot be negative", name)
		}
	}
	if enabled < 2 {
		return fmt.Errorf("at least 2 venues must be enabled, got %d", enabled)
	}
	return nil
}

// EnabledVenues returns the names of all enabled venues.
func (c *Config) EnabledVenues() []string {
	var names []string
	for name, vc := range c.Venues {
		if vc.Enabled {
			names = append(names, name)
		}
	}
	return names
}
