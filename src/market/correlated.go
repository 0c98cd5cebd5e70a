package market

import (
	"tycoon-market/src/interfaces"
)

// -----------------------------------------------------------------------------
// CorrelatedMarketModel: coarser stepping strategy that moves instruments in
// the same sector together. Sector shocks are ephemeral per-tick values and
// are never persisted.
// -----------------------------------------------------------------------------

// Shock half-widths. Sector shocks are uniform (a deliberate simplification;
// only the per-instrument walk uses normal shocks).
const (
	sectorShockRange        = 0.01   // sector shock ~ U(-0.01, 0.01)
	idiosyncraticShockRange = 0.0075 // instrument shock ~ U(-0.0075, 0.0075)
)

type CorrelatedMarketModel struct {
	rng interfaces.IRandomSource

	// strength in [0,1]: 0 moves instruments independently, 1 moves every
	// instrument of a sector in lockstep.
	strength float64
}

// -----------------------------------------------------------------------------

func NewCorrelatedMarketModel(rng interfaces.IRandomSource, correlationStrength float64) *CorrelatedMarketModel {
	if correlationStrength < 0 {
		correlationStrength = 0
	}
	if correlationStrength > 1 {
		correlationStrength = 1
	}
	return &CorrelatedMarketModel{rng: rng, strength: correlationStrength}
}

// -----------------------------------------------------------------------------

// Step advances every instrument by one tick. One shock is drawn per distinct
// sector in instrument order, then blended with each instrument's own draw:
//
//	total = strength*sectorShock + (1-strength)*idiosyncraticShock
func (m *CorrelatedMarketModel) Step(instruments []*Instrument) {
	sectorShocks := make(map[string]float64)
	for _, inst := range instruments {
		if _, ok := sectorShocks[inst.Sector]; !ok {
			sectorShocks[inst.Sector] = m.uniform(sectorShockRange)
		}
	}

	for _, inst := range instruments {
		idio := m.uniform(idiosyncraticShockRange)
		total := m.strength*sectorShocks[inst.Sector] + (1-m.strength)*idio
		inst.ApplyPrice(inst.Price * (1 + total))
	}
}

// -----------------------------------------------------------------------------

// uniform draws from U(-halfWidth, halfWidth).
func (m *CorrelatedMarketModel) uniform(halfWidth float64) float64 {
	return (m.rng.Float64() - 0.5) * 2 * halfWidth
}
