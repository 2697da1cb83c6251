package analysis

import (
	"fmt"

	"github.com/stocksim/stocksim/pkg/formulas"
)

// Score weights
const (
	volatilityWeight = 0.5
	sharpeWeight     = 0.3
	tailWeight       = 0.2
	labelOffset      = 10.0
)

// ScoreRisk combines scaled features with the cluster label:
//
//	score = 0.5*vol - 0.3*sharpe + 0.2*tail + 10*label
//
// volatility and Sharpe are min-max scaled to [0,100] across tickers. The tail
// figure is a single 5th percentile over the whole flattened returns matrix,
// scaled on its own, so it always lands on the lower bound. Scores are not
// clamped. An undefined Sharpe contributes nothing.
func ScoreRisk(returns *ReturnsTable, labels []int) ([]float64, error) {
	n := returns.NumTickers()
	if len(labels) != n {
		return nil, fmt.Errorf("%d labels for %d tickers: %w", len(labels), n, ErrDimensionMismatch)
	}

	vols, sharpes, _ := splitFeatures(ExtractFeatures(returns))
	var95 := formulas.Percentile(returns.Flatten(), TailPercentile)

	scaledVol := formulas.MinMaxScale(vols, 0, 100)
	scaledSharpe := formulas.MinMaxScale(sharpes, 0, 100)
	scaledTail := formulas.Finite(formulas.MinMaxScale([]float64{var95}, 0, 100)[0])

	scores := make([]float64, n)
	for j := range scores {
		scores[j] = volatilityWeight*formulas.Finite(scaledVol[j]) -
			sharpeWeight*formulas.Finite(scaledSharpe[j]) +
			tailWeight*scaledTail +
			labelOffset*float64(labels[j])
	}
	return scores, nil
}
