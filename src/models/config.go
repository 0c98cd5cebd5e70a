package models

// MConfig Structure
type MConfig struct {
	Name     string            `yaml:"name"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	LogLevel string            `yaml:"log_level"`
	Market   MMarketConfig     `yaml:"market"`
	Events   MEventConfig      `yaml:"events"`
	Storage  MStorageConfig    `yaml:"storage"`
	Feed     MFeedConfig       `yaml:"feed"`
	Stocks   []MInstrumentSeed `yaml:"stocks"`
}

// MMarketConfig controls the simulation engine.
type MMarketConfig struct {
	// Mode selects the per-tick stepping strategy:
	// "walk" runs the per-instrument random walk (default),
	// "correlated" runs the sector-correlated variant.
	Mode                string                   `yaml:"mode"`
	TickIntervalMs      int                      `yaml:"tick_interval_ms"`
	CorrelationStrength float64                  `yaml:"correlation_strength"`
	HistoryCapacity     int                      `yaml:"history_capacity"`
	GateToMarketHours   bool                     `yaml:"gate_to_market_hours"`
	Sectors             map[string]MSectorParams `yaml:"sectors"`
}

// MSectorParams are the process parameters applied to every instrument
// in a sector unless the instrument overrides them.
type MSectorParams struct {
	Volatility    float64 `yaml:"volatility"`
	Drift         float64 `yaml:"drift"`
	MeanReversion float64 `yaml:"mean_reversion"`
}

type MEventConfig struct {
	Probability float64 `yaml:"probability"`
	Preset      string  `yaml:"preset"` // "server" or "client"
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"` // "none", "sqlite" or "postgres"
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RetentionDays      int    `yaml:"data_retention_days"`
}

type MFeedConfig struct {
	ServerURL        string `yaml:"server_url"`
	ReconnectDelayMs int    `yaml:"reconnect_delay_ms"`
}

type MInstrumentSeed struct {
	Symbol      string  `yaml:"symbol"`
	DisplayName string  `yaml:"display_name"`
	Sector      string  `yaml:"sector"`
	BasePrice   float64 `yaml:"base_price"`
	// Volatility overrides the sector volatility when > 0.
	Volatility float64 `yaml:"volatility"`
}
