package features

import (
	"math"

	"github.com/montanaflynn/stats"
)

// daysPerYear annualizes daily return volatility.
const daysPerYear = 365

// DailyReturns computes simple returns r_t = (P_t - P_{t-1}) / P_{t-1}.
// It returns a slice of length len(prices)-1, or nil if insufficient data.
func DailyReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (prices[i]-prev)/prev)
	}
	return out
}

// RollingVolatility computes the annualized sample stdev of the last window
// daily returns. The window shrinks to the available history; below two
// returns there is no estimate and ok is false.
func RollingVolatility(returns []float64, window int) (vol float64, ok bool) {
	if window > len(returns) {
		window = len(returns)
	}
	if window < 2 {
		return 0, false
	}
	tail := returns[len(returns)-window:]
	sd, err := stats.StandardDeviationSample(tail)
	if err != nil {
		return 0, false
	}
	return sd * math.Sqrt(daysPerYear), true
}

// Correlation computes the Pearson correlation of two return series, aligned
// on their most recent overlap. Below two overlapping points ok is false.
func Correlation(a, b []float64) (corr float64, ok bool) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 2 {
		return 0, false
	}
	x := a[len(a)-n:]
	y := b[len(b)-n:]
	c, err := stats.Pearson(x, y)
	if err != nil || math.IsNaN(c) {
		return 0, false
	}
	return c, true
}
