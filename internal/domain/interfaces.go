package domain

import "context"

// PriceSource retrieves daily price history for a single ticker.
// Implementations return an empty slice (not an error) for unknown or
// delisted tickers so that one bad symbol never fails a whole batch.
type PriceSource interface {
	// FetchHistory returns ascending daily closes for the lookback period
	// ("1y", "6mo", "30d", ...).
	FetchHistory(ctx context.Context, ticker, period string) ([]PricePoint, error)
}

// QuoteSource returns the latest known price for each requested ticker.
// Tickers without a quote are absent from the result.
type QuoteSource interface {
	FetchQuotes(ctx context.Context, tickers []string) (map[string]float64, error)
}

// ProfileGenerator produces the flavor-text client a player invests for.
// The risk analysis never depends on its output.
type ProfileGenerator interface {
	GenerateProfile(ctx context.Context, difficulty Difficulty, timeSpan int) (*ClientProfile, error)
}
