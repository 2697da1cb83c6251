package clientdata

import "time"

// TTL constants for cached data.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// TTLPriceHistory covers daily closes; a new bar appears at most once a day.
	TTLPriceHistory = 6 * time.Hour

	// TTLCurrentPrice matches the in-memory price snapshot.
	TTLCurrentPrice = 5 * time.Minute

	// QuoteFallbackRetention keeps expired quotes around as the fallback for
	// an unreachable quote upstream.
	QuoteFallbackRetention = 7 * 24 * time.Hour
)
