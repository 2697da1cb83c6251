package simulation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stocksim/stocksim/internal/modules/analysis"
)

// ReturnsProvider builds a returns table for a set of tickers
type ReturnsProvider interface {
	Returns(ctx context.Context, tickers []string) (*analysis.ReturnsTable, error)
}

// Service runs simulations against live price history
type Service struct {
	returns   ReturnsProvider
	simulator *Simulator
	log       zerolog.Logger
}

// NewService creates a simulation service
func NewService(returns ReturnsProvider, simulator *Simulator, log zerolog.Logger) *Service {
	return &Service{
		returns:   returns,
		simulator: simulator,
		log:       log.With().Str("component", "simulation").Logger(),
	}
}

// Run simulates req. Weights pair with req.Tickers by position; a ticker
// without price history is dropped together with its weight.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if len(req.Weights) != len(req.Tickers) {
		return nil, fmt.Errorf("%d weights for %d tickers: %w", len(req.Weights), len(req.Tickers), analysis.ErrDimensionMismatch)
	}

	weightByTicker := make(map[string]float64, len(req.Tickers))
	tickers := make([]string, 0, len(req.Tickers))
	for i, t := range req.Tickers {
		norm := analysis.NormalizeTickers([]string{t})
		if len(norm) == 0 {
			continue
		}
		if _, dup := weightByTicker[norm[0]]; dup {
			weightByTicker[norm[0]] += req.Weights[i]
			continue
		}
		weightByTicker[norm[0]] = req.Weights[i]
		tickers = append(tickers, norm[0])
	}

	returns, err := s.returns.Returns(ctx, tickers)
	if err != nil {
		return nil, err
	}

	weights := make([]float64, returns.NumTickers())
	for j, t := range returns.Tickers {
		weights[j] = weightByTicker[t]
	}

	result, err := s.simulator.Simulate(returns, weights, req.InitialAmount, req.GoalAmount, req.TimeSpan)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Strs("tickers", returns.Tickers).
		Float64("final_value", result.FinalValue).
		Float64("goal", result.GoalAmount).
		Str("status", string(result.Status)).
		Msg("Simulation completed")

	return result, nil
}
