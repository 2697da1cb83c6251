package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/stocksim/stocksim/internal/domain"
	"github.com/stocksim/stocksim/pkg/formulas"
)

// PriceTable holds daily closes for several tickers aligned on one date index.
// Closes[j][i] is the close of Tickers[j] on Dates[i]; NaN marks a missing bar.
type PriceTable struct {
	Dates   []time.Time
	Tickers []string
	Closes  [][]float64
}

// NewPriceTable aligns per-ticker series on the union of their trading days.
// order fixes the column order; tickers without a series (or with an empty one)
// are left out.
func NewPriceTable(order []string, series map[string][]domain.PricePoint) *PriceTable {
	byDay := make(map[string]map[time.Time]float64)
	daySet := make(map[time.Time]struct{})

	tickers := make([]string, 0, len(order))
	for _, ticker := range order {
		points := series[ticker]
		if len(points) == 0 {
			continue
		}
		if _, seen := byDay[ticker]; seen {
			continue
		}
		closes := make(map[time.Time]float64, len(points))
		for _, p := range points {
			day := truncateDay(p.Date)
			closes[day] = p.Close
			daySet[day] = struct{}{}
		}
		byDay[ticker] = closes
		tickers = append(tickers, ticker)
	}

	dates := make([]time.Time, 0, len(daySet))
	for d := range daySet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	closes := make([][]float64, len(tickers))
	for j, ticker := range tickers {
		col := make([]float64, len(dates))
		for i, d := range dates {
			if v, ok := byDay[ticker][d]; ok {
				col[i] = v
			} else {
				col[i] = math.NaN()
			}
		}
		closes[j] = col
	}

	return &PriceTable{Dates: dates, Tickers: tickers, Closes: closes}
}

// Empty reports whether the table has no columns.
func (t *PriceTable) Empty() bool {
	return t == nil || len(t.Tickers) == 0
}

func truncateDay(ts time.Time) time.Time {
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ReturnsTable holds fractional returns per ticker. Every column has the same
// length and row i of every column refers to the same date.
type ReturnsTable struct {
	Dates   []time.Time
	Tickers []string
	Columns [][]float64
}

// NewReturnsTable builds a table from already computed return columns.
func NewReturnsTable(tickers []string, columns [][]float64) (*ReturnsTable, error) {
	if len(tickers) != len(columns) {
		return nil, fmt.Errorf("%d tickers but %d columns: %w", len(tickers), len(columns), ErrDimensionMismatch)
	}
	for j := 1; j < len(columns); j++ {
		if len(columns[j]) != len(columns[0]) {
			return nil, fmt.Errorf("column %s has %d rows, expected %d", tickers[j], len(columns[j]), len(columns[0]))
		}
	}
	return &ReturnsTable{Tickers: tickers, Columns: columns}, nil
}

// BuildReturns converts a price table into a returns table. The first row has
// no predecessor and is dropped; so is every row where any column is undefined
// (missing bar, zero predecessor, NaN or Inf), across all columns jointly.
func BuildReturns(prices *PriceTable) (*ReturnsTable, error) {
	if prices.Empty() {
		return nil, ErrNoData
	}

	raw := make([][]float64, len(prices.Tickers))
	for j, col := range prices.Closes {
		raw[j] = formulas.CalculateReturns(col)
	}

	steps := len(prices.Dates) - 1
	columns := make([][]float64, len(prices.Tickers))
	var dates []time.Time
	for i := 0; i < steps; i++ {
		complete := true
		for j := range raw {
			if !formulas.IsFinite(raw[j][i]) {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		for j := range raw {
			columns[j] = append(columns[j], raw[j][i])
		}
		dates = append(dates, prices.Dates[i+1])
	}

	if len(dates) == 0 {
		return nil, ErrInsufficientData
	}

	table, err := NewReturnsTable(prices.Tickers, columns)
	if err != nil {
		return nil, err
	}
	table.Dates = dates
	return table, nil
}

// NumTickers returns the number of columns.
func (r *ReturnsTable) NumTickers() int {
	return len(r.Tickers)
}

// NumRows returns the number of return observations per column.
func (r *ReturnsTable) NumRows() int {
	if len(r.Columns) == 0 {
		return 0
	}
	return len(r.Columns[0])
}

// Flatten returns every observation of every column in one slice.
func (r *ReturnsTable) Flatten() []float64 {
	out := make([]float64, 0, r.NumRows()*r.NumTickers())
	for _, col := range r.Columns {
		out = append(out, col...)
	}
	return out
}

// ColumnMeans returns the mean return of each column.
func (r *ReturnsTable) ColumnMeans() []float64 {
	means := make([]float64, len(r.Columns))
	for j, col := range r.Columns {
		means[j] = formulas.Mean(col)
	}
	return means
}
