package config

import (
	"os"
	"path/filepath"
	"testing"

	"tycoon-market/src/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

const minimalYAML = `
name: "test-market"
host: "127.0.0.1"
port: 8080
log_level: "ERROR"
stocks:
  - symbol: "APEX"
    display_name: "Apex Technologies"
    sector: "Technology"
    base_price: 150.00
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// -----------------------------------------------------------------------------

func TestNewConfigAppliesDefaults(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "walk", cfg.Market.Mode)
	assert.Equal(t, DefaultTickIntervalMs, cfg.Market.TickIntervalMs)
	assert.Equal(t, DefaultCorrelationStrength, cfg.Market.CorrelationStrength)
	assert.Equal(t, DefaultHistoryCapacity, cfg.Market.HistoryCapacity)
	assert.Equal(t, DefaultEventProbability, cfg.Events.Probability)
	assert.Equal(t, "server", cfg.Events.Preset)
	assert.Equal(t, "none", cfg.Storage.DBType)
	assert.Equal(t, DefaultReconnectDelayMs, cfg.Feed.ReconnectDelayMs)
}

func TestNewConfigExplicitValuesWin(t *testing.T) {
	yaml := `
name: "test-market"
host: "0.0.0.0"
port: 9000
log_level: "DEBUG"
market:
  mode: "correlated"
  tick_interval_ms: 250
  correlation_strength: 0.8
  history_capacity: 500
events:
  probability: 0.05
  preset: "client"
stocks:
  - symbol: "NOVA"
    base_price: 85.50
`
	cfg, err := NewConfig(writeConfig(t, yaml))
	require.NoError(t, err)

	assert.Equal(t, "correlated", cfg.Market.Mode)
	assert.Equal(t, 250, cfg.Market.TickIntervalMs)
	assert.Equal(t, 0.8, cfg.Market.CorrelationStrength)
	assert.Equal(t, 500, cfg.Market.HistoryCapacity)
	assert.Equal(t, 0.05, cfg.Events.Probability)
	assert.Equal(t, "client", cfg.Events.Preset)
}

func TestNewConfigExplicitZerosSurvive(t *testing.T) {
	// Zero is meaningful for both fields: independent instruments and a
	// silent injector. An explicit zero must not be mistaken for omission.
	yaml := `
name: "test-market"
host: "127.0.0.1"
port: 8080
market:
  correlation_strength: 0
events:
  probability: 0
stocks:
  - symbol: "APEX"
    base_price: 150.00
`
	cfg, err := NewConfig(writeConfig(t, yaml))
	require.NoError(t, err)

	assert.Equal(t, 0.0, cfg.Market.CorrelationStrength)
	assert.Equal(t, 0.0, cfg.Events.Probability)
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNewConfigMalformedYAML(t *testing.T) {
	_, err := NewConfig(writeConfig(t, "name: [unclosed"))
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad port", `
name: "t"
host: "127.0.0.1"
port: 80
stocks: [{symbol: "A", base_price: 1}]
`},
		{"bad mode", `
name: "t"
host: "127.0.0.1"
port: 8080
market: {mode: "chaotic"}
stocks: [{symbol: "A", base_price: 1}]
`},
		{"correlation out of range", `
name: "t"
host: "127.0.0.1"
port: 8080
market: {correlation_strength: 1.5}
stocks: [{symbol: "A", base_price: 1}]
`},
		{"event probability out of range", `
name: "t"
host: "127.0.0.1"
port: 8080
events: {probability: 2}
stocks: [{symbol: "A", base_price: 1}]
`},
		{"bad event preset", `
name: "t"
host: "127.0.0.1"
port: 8080
events: {preset: "mixed"}
stocks: [{symbol: "A", base_price: 1}]
`},
		{"sqlite without path", `
name: "t"
host: "127.0.0.1"
port: 8080
storage: {db_type: "sqlite"}
stocks: [{symbol: "A", base_price: 1}]
`},
		{"no stocks", `
name: "t"
host: "127.0.0.1"
port: 8080
`},
		{"duplicate symbol", `
name: "t"
host: "127.0.0.1"
port: 8080
stocks: [{symbol: "A", base_price: 1}, {symbol: "A", base_price: 2}]
`},
		{"non-positive base price", `
name: "t"
host: "127.0.0.1"
port: 8080
stocks: [{symbol: "A", base_price: 0}]
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(writeConfig(t, tc.yaml))
			require.Error(t, err)

			var cfgErr *helpers.ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

// -----------------------------------------------------------------------------

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(path))

	reloaded, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.MConfig, reloaded.MConfig)
}
