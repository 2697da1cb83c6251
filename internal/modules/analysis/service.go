// Package analysis turns daily price history into per-stock risk categories,
// risk scores and a portfolio-level risk figure.
//
// Pipeline: fetch -> returns -> features -> K-means labels -> scores -> portfolio risk.
// Every request builds its own tables; nothing here is shared between requests.
package analysis

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stocksim/stocksim/internal/domain"
	"github.com/stocksim/stocksim/pkg/formulas"
)

// MinAnalysisTickers is the smallest portfolio the clusterer accepts.
const MinAnalysisTickers = 3

// RiskFreeRate is the fixed annual rate used by risk-free-adjusted Sharpe ratios.
const RiskFreeRate = 0.01

// StockRisk is the analysis result for one ticker.
type StockRisk struct {
	Ticker       string  `json:"ticker"`
	RiskCategory int     `json:"risk_category"`
	RiskScore    float64 `json:"risk_score"`
}

// PortfolioAnalysis is the result of Analyze.
type PortfolioAnalysis struct {
	Stocks        []StockRisk `json:"stocks"`
	PortfolioRisk float64     `json:"portfolio_risk"`
}

// StockAnalysis summarizes a single ticker.
type StockAnalysis struct {
	Ticker       string  `json:"ticker"`
	Volatility   float64 `json:"volatility"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
	CurrentPrice float64 `json:"current_price"`
}

// Service runs the risk analysis pipeline against a price source.
type Service struct {
	source     domain.PriceSource
	classifier *Classifier
	period     string
	log        zerolog.Logger
}

// NewService creates an analysis service. period is the lookback used for
// every fetch (e.g. "1y").
func NewService(source domain.PriceSource, period string, log zerolog.Logger) *Service {
	return &Service{
		source:     source,
		classifier: NewClassifier(),
		period:     period,
		log:        log.With().Str("component", "analysis").Logger(),
	}
}

// Returns fetches history for the tickers and builds the returns table.
func (s *Service) Returns(ctx context.Context, tickers []string) (*ReturnsTable, error) {
	prices, err := FetchPriceTable(ctx, s.source, tickers, s.period, s.log)
	if err != nil {
		return nil, err
	}

	if len(prices.Tickers) < len(tickers) {
		s.log.Info().
			Int("requested", len(tickers)).
			Int("with_data", len(prices.Tickers)).
			Msg("Some tickers returned no price history")
	}

	return BuildReturns(prices)
}

// Analyze classifies and scores the tickers and computes the risk of an
// equally weighted portfolio. Results pair with the tickers that had data,
// in request order.
func (s *Service) Analyze(ctx context.Context, tickers []string) (*PortfolioAnalysis, error) {
	tickers = NormalizeTickers(tickers)
	if len(tickers) < MinAnalysisTickers {
		return nil, ErrTooFewTickers
	}

	returns, err := s.Returns(ctx, tickers)
	if err != nil {
		return nil, err
	}

	labels, err := s.classifier.Classify(returns)
	if err != nil {
		return nil, fmt.Errorf("failed to classify stocks: %w", err)
	}

	scores, err := ScoreRisk(returns, labels)
	if err != nil {
		return nil, fmt.Errorf("failed to score stocks: %w", err)
	}

	risk, err := PortfolioRisk(returns, EqualWeights(returns.NumTickers()))
	if err != nil {
		return nil, fmt.Errorf("failed to compute portfolio risk: %w", err)
	}

	result := &PortfolioAnalysis{
		Stocks:        make([]StockRisk, returns.NumTickers()),
		PortfolioRisk: risk,
	}
	for j, ticker := range returns.Tickers {
		result.Stocks[j] = StockRisk{
			Ticker:       ticker,
			RiskCategory: labels[j],
			RiskScore:    formulas.Finite(scores[j]),
		}
	}

	s.log.Debug().
		Int("tickers", returns.NumTickers()).
		Int("rows", returns.NumRows()).
		Float64("portfolio_risk", risk).
		Msg("Portfolio analyzed")

	return result, nil
}

// AnalyzeStock reports annualized volatility, the risk-free-adjusted Sharpe
// ratio and the latest close for one ticker.
func (s *Service) AnalyzeStock(ctx context.Context, ticker string) (*StockAnalysis, error) {
	normalized := NormalizeTickers([]string{ticker})
	if len(normalized) == 0 {
		return nil, ErrNoData
	}
	ticker = normalized[0]

	points, err := s.source.FetchHistory(ctx, ticker, s.period)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", ticker, err)
	}
	if len(points) == 0 {
		return nil, ErrNoData
	}

	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}

	daily := make([]float64, 0, len(closes))
	for _, r := range formulas.CalculateReturns(closes) {
		if formulas.IsFinite(r) {
			daily = append(daily, r)
		}
	}

	result := &StockAnalysis{
		Ticker:       ticker,
		Volatility:   formulas.AnnualizedVolatility(daily),
		CurrentPrice: closes[len(closes)-1],
	}
	if sharpe := formulas.CalculateSharpeRatio(daily, RiskFreeRate, formulas.TradingDaysPerYear); sharpe != nil {
		result.SharpeRatio = formulas.Finite(*sharpe)
	}
	return result, nil
}
