package analysis

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stocksim/stocksim/internal/domain"
)

// FetchPriceTable pulls history for every ticker and aligns it into a table.
// Tickers that fail or come back empty are logged and omitted; only an
// entirely empty result is an error (ErrNoData). Context cancellation aborts.
func FetchPriceTable(ctx context.Context, source domain.PriceSource, tickers []string, period string, log zerolog.Logger) (*PriceTable, error) {
	series := make(map[string][]domain.PricePoint, len(tickers))
	for _, ticker := range tickers {
		points, err := source.FetchHistory(ctx, ticker, period)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to fetch price history, skipping ticker")
			continue
		}
		if len(points) == 0 {
			log.Debug().Str("ticker", ticker).Msg("No price history for ticker")
			continue
		}
		series[ticker] = points
	}

	table := NewPriceTable(tickers, series)
	if table.Empty() {
		return nil, ErrNoData
	}
	return table, nil
}

// NormalizeTickers upper-cases and trims symbols, dropping blanks and
// duplicates while keeping the caller's order.
func NormalizeTickers(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
