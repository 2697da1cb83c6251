// Package simulation projects a weighted portfolio forward over the game's
// time span and decides whether the player met the client's goal.
package simulation

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/stocksim/stocksim/internal/modules/analysis"
	"github.com/stocksim/stocksim/pkg/formulas"
)

// Verdict thresholds for a risk-adjusted win
const (
	winSharpeThreshold     = 1.5
	winVolatilityThreshold = 0.2
)

// ErrProjectionOverflow means the projected value does not fit a float64.
var ErrProjectionOverflow = errors.New("projected portfolio value is out of range")

// Simulator computes simulation outcomes. It is safe for concurrent use.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a simulator that picks flavor messages from rng.
// A nil rng is seeded from the clock.
func NewSimulator(rng *rand.Rand) *Simulator {
	if rng == nil {
		//nolint:gosec // G404: message selection does not need crypto randomness
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Simulator{rng: rng}
}

// Simulate projects the portfolio and decides the verdict.
//
// Growth treats each column's mean periodic return as an annual rate scaled by
// timeSpan/12. The final value is rounded to cents. Sharpe ratio and volatility
// are the per-ticker annualized figures averaged across tickers; tickers with
// no deviation contribute no Sharpe ratio.
func (s *Simulator) Simulate(returns *analysis.ReturnsTable, weights []float64, initial, goal float64, timeSpan int) (*Result, error) {
	n := returns.NumTickers()
	if len(weights) != n {
		return nil, fmt.Errorf("%d weights for %d tickers: %w", len(weights), n, analysis.ErrDimensionMismatch)
	}
	if n == 0 {
		return nil, analysis.ErrNoData
	}

	years := float64(timeSpan) / 12
	growth := formulas.Dot(weights, returns.ColumnMeans()) * years * initial
	projected := initial + growth
	if !formulas.IsFinite(projected) {
		return nil, fmt.Errorf("initial %g with growth %g: %w", initial, growth, ErrProjectionOverflow)
	}
	final, _ := decimal.NewFromFloat(projected).Round(2).Float64()

	var volSum, sharpeSum float64
	sharpeCount := 0
	for _, col := range returns.Columns {
		volSum += formulas.AnnualizedVolatility(col)
		if sharpe := formulas.CalculateSharpeRatio(col, analysis.RiskFreeRate, formulas.TradingDaysPerYear); sharpe != nil {
			sharpeSum += *sharpe
			sharpeCount++
		}
	}
	volatility := formulas.Finite(volSum / float64(n))
	sharpe := 0.0
	if sharpeCount > 0 {
		sharpe = formulas.Finite(sharpeSum / float64(sharpeCount))
	}

	status := StatusLoss
	if final >= goal || (sharpe > winSharpeThreshold && volatility < winVolatilityThreshold) {
		status = StatusWin
	}

	return &Result{
		FinalValue:  final,
		GoalAmount:  goal,
		SharpeRatio: sharpe,
		Volatility:  volatility,
		Status:      status,
		Message:     s.pickMessage(status),
	}, nil
}

func (s *Simulator) pickMessage(status Status) string {
	set := lossMessages
	if status == StatusWin {
		set = winMessages
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return set[s.rng.Intn(len(set))]
}
