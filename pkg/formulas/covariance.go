package formulas

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// CovarianceMatrix builds the sample covariance matrix (n-1 denominator) of
// equal-length column series. columns[j] is the observation series of asset j.
func CovarianceMatrix(columns [][]float64) (*mat.SymDense, error) {
	data, err := observations(columns)
	if err != nil {
		return nil, err
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)
	return &cov, nil
}

// CorrelationMatrix is the Pearson correlation counterpart of CovarianceMatrix.
// Entries involving a constant column are NaN.
func CorrelationMatrix(columns [][]float64) (*mat.SymDense, error) {
	data, err := observations(columns)
	if err != nil {
		return nil, err
	}

	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, data, nil)
	return &corr, nil
}

// observations lays equal-length columns out as a rows x assets matrix.
func observations(columns [][]float64) (*mat.Dense, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("no columns")
	}
	rows := len(columns[0])
	if rows < 2 {
		return nil, fmt.Errorf("need at least 2 observations, got %d", rows)
	}

	data := mat.NewDense(rows, len(columns), nil)
	for j, col := range columns {
		if len(col) != rows {
			return nil, fmt.Errorf("column %d has %d observations, expected %d", j, len(col), rows)
		}
		data.SetCol(j, col)
	}
	return data, nil
}

// PortfolioVariance computes wᵗ·Σ·w.
func PortfolioVariance(cov mat.Symmetric, weights []float64) (float64, error) {
	n := cov.SymmetricDim()
	if len(weights) != n {
		return 0, fmt.Errorf("weights length %d does not match covariance dimension %d", len(weights), n)
	}
	w := mat.NewVecDense(n, append([]float64(nil), weights...))
	return mat.Inner(w, cov, w), nil
}

// PortfolioStdDev is the square root of the portfolio variance. Slightly
// negative variances from floating-point error are clamped to 0 first.
func PortfolioStdDev(cov mat.Symmetric, weights []float64) (float64, error) {
	variance, err := PortfolioVariance(cov, weights)
	if err != nil {
		return 0, err
	}
	if variance < 0 || math.IsNaN(variance) {
		variance = 0
	}
	return math.Sqrt(variance), nil
}
