package config

import (
	"fmt"
	"os"

	"tycoon-market/src/helpers"
	"tycoon-market/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Defaults applied for omitted optional fields.
// -----------------------------------------------------------------------------

const (
	DefaultTickIntervalMs      = 1000
	DefaultCorrelationStrength = 0.3
	DefaultHistoryCapacity     = 100
	MaxHistoryCapacity         = 1000
	DefaultEventProbability    = 0.01
	DefaultReconnectDelayMs    = 3000
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// fieldPresence records whether fields whose zero value is meaningful were
// actually present in the file. correlation_strength 0 means independent
// instruments and probability 0 means no events; neither may be mistaken for
// an omitted field.
type fieldPresence struct {
	Market struct {
		CorrelationStrength *float64 `yaml:"correlation_strength"`
	} `yaml:"market"`
	Events struct {
		Probability *float64 `yaml:"probability"`
	} `yaml:"events"`
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from a YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, helpers.NewConfigurationError("failed to parse config from YAML", err)
	}
	var present fieldPresence
	if err := yaml.Unmarshal(data, &present); err != nil {
		return nil, helpers.NewConfigurationError("failed to parse config from YAML", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults(present)

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError("config validation failed", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults(present fieldPresence) {
	if c.Market.Mode == "" {
		c.Market.Mode = "walk"
	}
	if c.Market.TickIntervalMs == 0 {
		c.Market.TickIntervalMs = DefaultTickIntervalMs
	}
	if present.Market.CorrelationStrength == nil {
		c.Market.CorrelationStrength = DefaultCorrelationStrength
	}
	if c.Market.HistoryCapacity == 0 {
		c.Market.HistoryCapacity = DefaultHistoryCapacity
	}
	if present.Events.Probability == nil {
		c.Events.Probability = DefaultEventProbability
	}
	if c.Events.Preset == "" {
		c.Events.Preset = "server"
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "none"
	}
	if c.Feed.ReconnectDelayMs == 0 {
		c.Feed.ReconnectDelayMs = DefaultReconnectDelayMs
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Market configuration
	switch c.Market.Mode {
	case "walk", "correlated":
	default:
		return fmt.Errorf("invalid market mode '%s' (must be 'walk' or 'correlated')", c.Market.Mode)
	}
	if c.Market.TickIntervalMs <= 0 {
		return fmt.Errorf("tick interval must be greater than 0")
	}
	if c.Market.CorrelationStrength < 0 || c.Market.CorrelationStrength > 1 {
		return fmt.Errorf("correlation strength must be within [0,1], got %f", c.Market.CorrelationStrength)
	}
	if c.Market.HistoryCapacity <= 0 || c.Market.HistoryCapacity > MaxHistoryCapacity {
		return fmt.Errorf("history capacity must be within (0,%d], got %d", MaxHistoryCapacity, c.Market.HistoryCapacity)
	}
	for name, sector := range c.Market.Sectors {
		if sector.Volatility < 0 {
			return fmt.Errorf("sector '%s' volatility cannot be negative", name)
		}
		if sector.MeanReversion < 0 {
			return fmt.Errorf("sector '%s' mean reversion cannot be negative", name)
		}
	}

	// Events configuration
	if c.Events.Probability < 0 || c.Events.Probability > 1 {
		return fmt.Errorf("event probability must be within [0,1], got %f", c.Events.Probability)
	}
	switch c.Events.Preset {
	case "server", "client":
	default:
		return fmt.Errorf("invalid event preset '%s' (must be 'server' or 'client')", c.Events.Preset)
	}

	// Storage configuration
	switch c.Storage.DBType {
	case "none":
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("invalid db_type '%s'", c.Storage.DBType)
	}

	// Instrument seeds
	if len(c.Stocks) == 0 {
		return fmt.Errorf("at least one stock must be configured")
	}
	seen := make(map[string]bool)
	for i, s := range c.Stocks {
		if s.Symbol == "" {
			return fmt.Errorf("stock %d must have a symbol", i)
		}
		if seen[s.Symbol] {
			return fmt.Errorf("duplicate stock symbol '%s'", s.Symbol)
		}
		seen[s.Symbol] = true
		if s.BasePrice <= 0 {
			return fmt.Errorf("stock '%s' base price must be greater than 0", s.Symbol)
		}
		if s.Volatility < 0 {
			return fmt.Errorf("stock '%s' volatility cannot be negative", s.Symbol)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
