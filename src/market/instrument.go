package market

import (
	"tycoon-market/src/models"
	"tycoon-market/src/utils"
)

// -----------------------------------------------------------------------------
// Instrument runtime state. The history buffer and current price are owned by
// whichever scheduler drives the instrument; everyone else works on copies.
// -----------------------------------------------------------------------------

// ProcessParams are immutable after construction. AnchorPrice is the price at
// simulation start and is never updated afterwards: long-run walks may drift
// away from origin while short-run swings stay damped.
type ProcessParams struct {
	Volatility    float64
	Drift         float64
	MeanReversion float64
	AnchorPrice   float64
}

type Instrument struct {
	Symbol      string
	DisplayName string
	Sector      string
	Price       float64
	Params      ProcessParams
	History     *utils.PriceHistory
}

// -----------------------------------------------------------------------------

// NewInstrument builds an instrument from its config seed and the parameters
// of its sector. A per-stock volatility override wins over the sector value.
func NewInstrument(seed models.MInstrumentSeed, sector models.MSectorParams, historyCapacity int) *Instrument {
	vol := sector.Volatility
	if seed.Volatility > 0 {
		vol = seed.Volatility
	}

	inst := &Instrument{
		Symbol:      seed.Symbol,
		DisplayName: seed.DisplayName,
		Sector:      seed.Sector,
		Price:       seed.BasePrice,
		Params: ProcessParams{
			Volatility:    vol,
			Drift:         sector.Drift,
			MeanReversion: sector.MeanReversion,
			AnchorPrice:   seed.BasePrice,
		},
		History: utils.NewPriceHistory(historyCapacity),
	}
	inst.History.Append(seed.BasePrice)
	return inst
}

// -----------------------------------------------------------------------------

// Reset restores the configured base price and empties the history down to a
// single seed entry.
func (inst *Instrument) Reset() {
	inst.Price = inst.Params.AnchorPrice
	inst.History.Clear()
	inst.History.Append(inst.Price)
}

// -----------------------------------------------------------------------------

// ApplyPrice floors the proposed price at the epsilon floor, stores it as the
// current price and appends it to the history.
func (inst *Instrument) ApplyPrice(price float64) float64 {
	if price < utils.EpsilonPrice {
		price = utils.EpsilonPrice
	}
	inst.Price = price
	inst.History.Append(price)
	return price
}
