package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/stocksim/stocksim/internal/domain"
)

// mockPriceSource is a testify mock of domain.PriceSource
type mockPriceSource struct {
	mock.Mock
}

func (m *mockPriceSource) FetchHistory(ctx context.Context, ticker, period string) ([]domain.PricePoint, error) {
	args := m.Called(ctx, ticker, period)
	if pts := args.Get(0); pts != nil {
		return pts.([]domain.PricePoint), args.Error(1)
	}
	return nil, args.Error(1)
}

var baseDay = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// pricesFromReturns compounds a return series from a 100.0 starting close.
func pricesFromReturns(returns []float64) []domain.PricePoint {
	points := []domain.PricePoint{{Date: baseDay, Close: 100}}
	price := 100.0
	for i, r := range returns {
		price *= 1 + r
		points = append(points, domain.PricePoint{Date: baseDay.AddDate(0, 0, i+1), Close: price})
	}
	return points
}

func series(closes ...float64) []domain.PricePoint {
	points := make([]domain.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = domain.PricePoint{Date: baseDay.AddDate(0, 0, i), Close: c}
	}
	return points
}

// scenarioRows is the three-ticker returns table used across tests.
var scenarioRows = [][]float64{
	{0.01, 0.02, -0.01},
	{0.02, 0.01, 0.00},
	{-0.01, 0.03, 0.02},
}

// returnsFromRows builds a table from row-major data: rows[i][j] is the return of tickers[j] at step i.
func returnsFromRows(tickers []string, rows [][]float64) (*ReturnsTable, error) {
	columns := make([][]float64, len(tickers))
	for j := range columns {
		columns[j] = make([]float64, len(rows))
	}
	for i, row := range rows {
		if len(row) != len(tickers) {
			return nil, fmt.Errorf("row %d has %d values, expected %d: %w", i, len(row), len(tickers), ErrDimensionMismatch)
		}
		for j, v := range row {
			columns[j][i] = v
		}
	}
	return NewReturnsTable(tickers, columns)
}
