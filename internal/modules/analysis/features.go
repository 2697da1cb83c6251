package analysis

import (
	"math"

	"github.com/stocksim/stocksim/pkg/formulas"
)

// TailPercentile is the percentile used as the downside-risk proxy.
const TailPercentile = 5.0

// FeatureVector holds the risk features of one ticker. It stays inside the
// pipeline and is never encoded: SharpeRatio may be NaN.
type FeatureVector struct {
	Ticker      string
	Volatility  float64
	SharpeRatio float64 // NaN when volatility is 0
	TailReturn  float64
}

// sharpeLike is mean/volatility without a risk-free rate. Zero volatility
// leaves the ratio undefined and yields NaN rather than ±Inf.
func sharpeLike(returns []float64, volatility float64) float64 {
	if volatility == 0 {
		return math.NaN()
	}
	return formulas.Mean(returns) / volatility
}

// ExtractFeatures computes per-ticker volatility (sample deviation), the
// Sharpe-like ratio and the 5th percentile of that ticker's own returns.
func ExtractFeatures(returns *ReturnsTable) []FeatureVector {
	out := make([]FeatureVector, returns.NumTickers())
	for j, col := range returns.Columns {
		vol := formulas.StdDev(col)
		out[j] = FeatureVector{
			Ticker:      returns.Tickers[j],
			Volatility:  vol,
			SharpeRatio: sharpeLike(col, vol),
			TailReturn:  formulas.Percentile(col, TailPercentile),
		}
	}
	return out
}

// splitFeatures returns the volatility, Sharpe and tail columns of features.
func splitFeatures(features []FeatureVector) (vols, sharpes, tails []float64) {
	vols = make([]float64, len(features))
	sharpes = make([]float64, len(features))
	tails = make([]float64, len(features))
	for j, f := range features {
		vols[j] = f.Volatility
		sharpes[j] = f.SharpeRatio
		tails[j] = f.TailReturn
	}
	return vols, sharpes, tails
}
