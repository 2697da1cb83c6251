package analysis

import (
	"fmt"

	"github.com/stocksim/stocksim/pkg/formulas"
)

// PortfolioRisk returns the standard deviation of the weighted portfolio
// return, sqrt(wᵗ·Σ·w), with Σ the sample covariance of the return columns.
// Weights are used as given. A table with a single row has no observable
// variance and yields 0.
func PortfolioRisk(returns *ReturnsTable, weights []float64) (float64, error) {
	if len(weights) != returns.NumTickers() {
		return 0, fmt.Errorf("%d weights for %d tickers: %w", len(weights), returns.NumTickers(), ErrDimensionMismatch)
	}
	if returns.NumRows() == 0 {
		return 0, ErrInsufficientData
	}
	if returns.NumRows() < 2 {
		return 0, nil
	}

	cov, err := formulas.CovarianceMatrix(returns.Columns)
	if err != nil {
		return 0, fmt.Errorf("failed to build covariance matrix: %w", err)
	}

	risk, err := formulas.PortfolioStdDev(cov, weights)
	if err != nil {
		return 0, fmt.Errorf("failed to compute portfolio deviation: %w", err)
	}
	return formulas.Finite(risk), nil
}

// EqualWeights returns n weights of 1/n.
func EqualWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}
	return w
}
