package analysis

import "errors"

// Errors returned by the analysis pipeline. They are recoverable at the
// request boundary; handlers match them with errors.Is.
var (
	// ErrNoData means the price source returned nothing for every requested ticker.
	ErrNoData = errors.New("no stock data found for the provided tickers")

	// ErrInsufficientData means no complete return rows survived alignment.
	ErrInsufficientData = errors.New("insufficient stock data to compute risk")

	// ErrDimensionMismatch means weights (or labels) do not line up with the tickers.
	ErrDimensionMismatch = errors.New("weights length does not match number of tickers")

	// ErrTooFewTickers means an analysis was requested with fewer than MinAnalysisTickers.
	ErrTooFewTickers = errors.New("please enter at least 3 stock tickers for clustering")
)
