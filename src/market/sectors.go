package market

import "tycoon-market/src/models"

// -----------------------------------------------------------------------------
// Built-in sector parameters and the default stock universe. Config values
// override these; they keep the server playable with a minimal config file.
// -----------------------------------------------------------------------------

// DefaultSectorParams returns per-sector process parameters.
func DefaultSectorParams() map[string]models.MSectorParams {
	return map[string]models.MSectorParams{
		"Technology": {Volatility: 0.025, Drift: 0.0002, MeanReversion: 0.001},
		"Energy":     {Volatility: 0.030, Drift: 0.0001, MeanReversion: 0.002},
		"Finance":    {Volatility: 0.020, Drift: 0.0001, MeanReversion: 0.0015},
		"Healthcare": {Volatility: 0.022, Drift: 0.0003, MeanReversion: 0.001},
		"Industrial": {Volatility: 0.018, Drift: 0.0001, MeanReversion: 0.002},
		"Consumer":   {Volatility: 0.025, Drift: 0.0002, MeanReversion: 0.0018},
	}
}

// -----------------------------------------------------------------------------

// DefaultStocks returns the default playable universe.
func DefaultStocks() []models.MInstrumentSeed {
	return []models.MInstrumentSeed{
		{Symbol: "APEX", DisplayName: "Apex Technologies", Sector: "Technology", BasePrice: 150.00, Volatility: 0.02},
		{Symbol: "NOVA", DisplayName: "Nova Energy Corp", Sector: "Energy", BasePrice: 85.50, Volatility: 0.025},
		{Symbol: "ZETA", DisplayName: "Zeta Financial", Sector: "Finance", BasePrice: 220.75, Volatility: 0.018},
		{Symbol: "LUNA", DisplayName: "Luna Pharmaceuticals", Sector: "Healthcare", BasePrice: 95.20, Volatility: 0.03},
		{Symbol: "VEGA", DisplayName: "Vega Manufacturing", Sector: "Industrial", BasePrice: 125.80, Volatility: 0.022},
		{Symbol: "ORION", DisplayName: "Orion Retail Group", Sector: "Consumer", BasePrice: 68.40, Volatility: 0.028},
	}
}

// -----------------------------------------------------------------------------

// SectorOrDefault resolves an instrument's sector parameters from config,
// falling back to the built-in table, then to a neutral parameter set.
func SectorOrDefault(sectors map[string]models.MSectorParams, name string) models.MSectorParams {
	if p, ok := sectors[name]; ok {
		return p
	}
	if p, ok := DefaultSectorParams()[name]; ok {
		return p
	}
	return models.MSectorParams{Volatility: 0.02}
}
