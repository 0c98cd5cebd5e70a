package analysis

import "math"

// -----------------------------------------------------------------------------

// CalculateMeanStd computes mean and sample standard deviation (N-1).
func CalculateMeanStd(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, v := range data {
		sum += v
	}
	mean := sum / float64(len(data))

	if len(data) == 1 {
		return mean, 0
	}

	varianceSum := 0.0
	for _, v := range data {
		varianceSum += (v - mean) * (v - mean)
	}
	std := math.Sqrt(varianceSum / float64(len(data)-1))
	return mean, std
}

// -----------------------------------------------------------------------------

// LogReturns computes ln(p[i]/p[i-1]) for consecutive price pairs.
// Non-positive prices yield an empty result since their log is undefined.
func LogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i] <= 0 || prices[i-1] <= 0 {
			return nil
		}
		returns = append(returns, math.Log(prices[i]/prices[i-1]))
	}
	return returns
}

// -----------------------------------------------------------------------------

// RealizedVolatility is the sample standard deviation of log-returns over the
// last window+1 prices. Returns ok=false when the history is too short.
func RealizedVolatility(prices []float64, window int) (float64, bool) {
	if window < 1 || len(prices) < window+1 {
		return 0, false
	}

	recent := prices[len(prices)-(window+1):]
	returns := LogReturns(recent)
	if len(returns) < 2 {
		return 0, false
	}

	_, std := CalculateMeanStd(returns)
	return std, true
}

// -----------------------------------------------------------------------------

// CalculateCorrelation computes the Pearson correlation coefficient.
func CalculateCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}

	n := float64(len(x))

	_, stdX := CalculateMeanStd(x)
	_, stdY := CalculateMeanStd(y)
	if stdX == 0 || stdY == 0 {
		return 0
	}

	sumX, sumY, sumXY, sumX2, sumY2 := 0.0, 0.0, 0.0, 0.0, 0.0
	for i := 0; i < len(x); i++ {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}

	numerator := (n * sumXY) - (sumX * sumY)
	denominator := math.Sqrt(((n * sumX2) - (sumX * sumX)) * ((n * sumY2) - (sumY * sumY)))
	if denominator == 0 {
		return 0
	}

	result := numerator / denominator
	if math.IsNaN(result) {
		return 0
	}
	return result
}
