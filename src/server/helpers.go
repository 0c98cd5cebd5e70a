package server

import (
	"fmt"

	"tycoon-market/src/analysis"
	"tycoon-market/src/engine"
)

// -----------------------------------------------------------------------------

// sectorCorrelations computes pairwise Pearson correlations of log-returns
// for instruments sharing a sector. Pairs without enough overlapping history
// are omitted.
func sectorCorrelations(views []engine.InstrumentView) map[string]float64 {
	result := make(map[string]float64)

	for i := 0; i < len(views); i++ {
		for j := i + 1; j < len(views); j++ {
			if views[i].Sector != views[j].Sector {
				continue
			}

			x := analysis.LogReturns(views[i].History)
			y := analysis.LogReturns(views[j].History)
			if len(x) < 2 || len(y) < 2 {
				continue
			}

			// Align on the shorter series tail
			n := len(x)
			if len(y) < n {
				n = len(y)
			}
			corr := analysis.CalculateCorrelation(x[len(x)-n:], y[len(y)-n:])
			result[fmt.Sprintf("%s/%s", views[i].Symbol, views[j].Symbol)] = corr
		}
	}

	return result
}
