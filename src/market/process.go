package market

import (
	"math"

	"tycoon-market/src/analysis"
	"tycoon-market/src/interfaces"
)

// -----------------------------------------------------------------------------
// StochasticProcess: mean-reverting random walk for a single instrument.
// -----------------------------------------------------------------------------

// minUniform keeps the first Box-Muller uniform away from 0; log(0) would
// blow up the transform.
const minUniform = 1e-12

type StochasticProcess struct {
	rng interfaces.IRandomSource
}

// -----------------------------------------------------------------------------

func NewStochasticProcess(rng interfaces.IRandomSource) *StochasticProcess {
	return &StochasticProcess{rng: rng}
}

// -----------------------------------------------------------------------------

// Next advances one instrument by one tick and returns the new price. The new
// price is floored at the epsilon price and appended to the instrument's
// bounded history.
//
// fractional change = drift + meanReversion*(anchor-current)/anchor + z*vol
func (sp *StochasticProcess) Next(inst *Instrument) float64 {
	z := sp.NormalVariate()

	force := inst.Params.MeanReversion * (inst.Params.AnchorPrice - inst.Price) / inst.Params.AnchorPrice
	shock := z * inst.Params.Volatility
	change := inst.Params.Drift + force + shock

	return inst.ApplyPrice(inst.Price * (1 + change))
}

// -----------------------------------------------------------------------------

// NormalVariate draws a standard-normal value via the Box-Muller transform
// over two independent uniforms.
func (sp *StochasticProcess) NormalVariate() float64 {
	u1 := sp.rng.Float64()
	if u1 < minUniform {
		u1 = minUniform
	}
	u2 := sp.rng.Float64()

	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// -----------------------------------------------------------------------------

// CalculateVolatility estimates realized volatility as the sample standard
// deviation of log-returns over the last window+1 prices. It falls back to
// the nominal process volatility when the history is shorter than window+1.
// Display and analytics only; the result is never fed back into the walk.
func CalculateVolatility(prices []float64, window int, nominal float64) float64 {
	if vol, ok := analysis.RealizedVolatility(prices, window); ok {
		return vol
	}
	return nominal
}
