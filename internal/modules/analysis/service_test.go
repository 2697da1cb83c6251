package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stocksim/stocksim/internal/domain"
)

func scenarioColumn(j int) []float64 {
	col := make([]float64, len(scenarioRows))
	for i, row := range scenarioRows {
		col[i] = row[j]
	}
	return col
}

func newScenarioSource() *mockPriceSource {
	src := new(mockPriceSource)
	for j, ticker := range []string{"A", "B", "C"} {
		src.On("FetchHistory", mock.Anything, ticker, "1y").Return(pricesFromReturns(scenarioColumn(j)), nil)
	}
	return src
}

func TestService_Analyze_Scenario(t *testing.T) {
	src := newScenarioSource()
	svc := NewService(src, "1y", zerolog.Nop())

	result, err := svc.Analyze(context.Background(), []string{"a", " B ", "C"})
	require.NoError(t, err)
	require.Len(t, result.Stocks, 3)

	tickers := make([]string, 0, 3)
	labels := make([]int, 0, 3)
	for _, s := range result.Stocks {
		tickers = append(tickers, s.Ticker)
		labels = append(labels, s.RiskCategory)
	}
	assert.Equal(t, []string{"A", "B", "C"}, tickers)
	assert.ElementsMatch(t, []int{0, 1, 2}, labels)

	// label term is 10 per category; the remainder is fixed by the features
	assert.InDelta(t, 46.3258488952, result.Stocks[0].RiskScore-10*float64(labels[0]), 1e-4)
	assert.InDelta(t, -30.0, result.Stocks[1].RiskScore-10*float64(labels[1]), 1e-4)
	assert.InDelta(t, 50.0, result.Stocks[2].RiskScore-10*float64(labels[2]), 1e-4)

	assert.InDelta(t, 0.0033333333, result.PortfolioRisk, 1e-6)
	src.AssertExpectations(t)
}

func TestService_Analyze_TooFewTickers(t *testing.T) {
	src := new(mockPriceSource)
	svc := NewService(src, "1y", zerolog.Nop())

	tests := []struct {
		name    string
		tickers []string
	}{
		{"empty", nil},
		{"two", []string{"A", "B"}},
		{"duplicates collapse", []string{"A", "a", "B"}},
		{"blanks ignored", []string{"A", "", "  ", "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Analyze(context.Background(), tt.tickers)
			assert.ErrorIs(t, err, ErrTooFewTickers)
		})
	}
	src.AssertNotCalled(t, "FetchHistory", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Analyze_NoData(t *testing.T) {
	src := new(mockPriceSource)
	src.On("FetchHistory", mock.Anything, mock.Anything, "1y").Return([]domain.PricePoint{}, nil)
	svc := NewService(src, "1y", zerolog.Nop())

	_, err := svc.Analyze(context.Background(), []string{"X", "Y", "Z"})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestService_Analyze_SkipsFailedTickers(t *testing.T) {
	src := newScenarioSource()
	src.On("FetchHistory", mock.Anything, "BAD", "1y").Return(nil, errors.New("upstream 500"))
	svc := NewService(src, "1y", zerolog.Nop())

	result, err := svc.Analyze(context.Background(), []string{"A", "BAD", "B", "C"})
	require.NoError(t, err)
	require.Len(t, result.Stocks, 3)
	for _, s := range result.Stocks {
		assert.NotEqual(t, "BAD", s.Ticker)
	}
}

func TestService_Analyze_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := new(mockPriceSource)
	src.On("FetchHistory", mock.Anything, mock.Anything, "1y").Return(nil, context.Canceled)
	svc := NewService(src, "1y", zerolog.Nop())

	_, err := svc.Analyze(ctx, []string{"A", "B", "C"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_Analyze_SingleCloseIsInsufficient(t *testing.T) {
	src := new(mockPriceSource)
	for _, ticker := range []string{"A", "B", "C"} {
		src.On("FetchHistory", mock.Anything, ticker, "1y").Return(series(100), nil)
	}
	svc := NewService(src, "1y", zerolog.Nop())

	_, err := svc.Analyze(context.Background(), []string{"A", "B", "C"})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestService_AnalyzeStock(t *testing.T) {
	src := new(mockPriceSource)
	src.On("FetchHistory", mock.Anything, "AAPL", "1y").Return(series(100, 101, 99, 102, 103), nil)
	svc := NewService(src, "1y", zerolog.Nop())

	result, err := svc.AnalyzeStock(context.Background(), " aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", result.Ticker)
	assert.Equal(t, 103.0, result.CurrentPrice)
	assert.Greater(t, result.Volatility, 0.0)
	assert.NotZero(t, result.SharpeRatio)
}

func TestService_AnalyzeStock_NoData(t *testing.T) {
	src := new(mockPriceSource)
	src.On("FetchHistory", mock.Anything, "NONE", "1y").Return([]domain.PricePoint{}, nil)
	svc := NewService(src, "1y", zerolog.Nop())

	_, err := svc.AnalyzeStock(context.Background(), "NONE")
	assert.ErrorIs(t, err, ErrNoData)

	_, err = svc.AnalyzeStock(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestNormalizeTickers(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "MSFT"}, NormalizeTickers([]string{" aapl", "MSFT", "AAPL", ""}))
	assert.Empty(t, NormalizeTickers(nil))
}
