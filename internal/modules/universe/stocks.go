// Package universe holds the fixed set of stocks the game offers and serves
// their prices from a short-lived snapshot of live quotes.
package universe

import (
	"sort"
	"strings"
)

// RiskTier is the coarse risk bucket shown next to a stock
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// Stock is one entry of the game's stock universe
type Stock struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	FallbackPrice float64  `json:"fallback_price"` // Shown when no live quote is available
	Risk          RiskTier `json:"risk"`
	AnnualReturn  float64  `json:"annual_return"` // Flavor figure, not used by the analysis
}

var catalog = []Stock{
	{Symbol: "AAPL", Name: "Apple Inc.", FallbackPrice: 180, Risk: RiskLow, AnnualReturn: 0.18},
	{Symbol: "MSFT", Name: "Microsoft Corporation", FallbackPrice: 330, Risk: RiskMedium, AnnualReturn: 0.21},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", FallbackPrice: 2900, Risk: RiskLow, AnnualReturn: 0.16},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", FallbackPrice: 3300, Risk: RiskMedium, AnnualReturn: 0.19},
	{Symbol: "META", Name: "Meta Platforms Inc.", FallbackPrice: 320, Risk: RiskMedium, AnnualReturn: 0.23},
	{Symbol: "TSLA", Name: "Tesla Inc.", FallbackPrice: 700, Risk: RiskHigh, AnnualReturn: 0.29},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", FallbackPrice: 650, Risk: RiskHigh, AnnualReturn: 0.30},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co.", FallbackPrice: 150, Risk: RiskLow, AnnualReturn: 0.12},
	{Symbol: "V", Name: "Visa Inc.", FallbackPrice: 240, Risk: RiskLow, AnnualReturn: 0.14},
	{Symbol: "JNJ", Name: "Johnson & Johnson", FallbackPrice: 160, Risk: RiskLow, AnnualReturn: 0.10},
	{Symbol: "NFLX", Name: "Netflix Inc.", FallbackPrice: 450, Risk: RiskMedium, AnnualReturn: 0.17},
	{Symbol: "KO", Name: "The Coca-Cola Company", FallbackPrice: 60, Risk: RiskLow, AnnualReturn: 0.07},
	{Symbol: "DIS", Name: "The Walt Disney Company", FallbackPrice: 95, Risk: RiskMedium, AnnualReturn: 0.08},
	{Symbol: "AMD", Name: "Advanced Micro Devices Inc.", FallbackPrice: 120, Risk: RiskHigh, AnnualReturn: 0.25},
	{Symbol: "PLTR", Name: "Palantir Technologies Inc.", FallbackPrice: 17, Risk: RiskHigh, AnnualReturn: 0.22},
	{Symbol: "COIN", Name: "Coinbase Global Inc.", FallbackPrice: 140, Risk: RiskHigh, AnnualReturn: 0.25},
	{Symbol: "XOM", Name: "Exxon Mobil Corporation", FallbackPrice: 105, Risk: RiskMedium, AnnualReturn: 0.12},
	{Symbol: "WMT", Name: "Walmart Inc.", FallbackPrice: 160, Risk: RiskLow, AnnualReturn: 0.07},
	{Symbol: "IBM", Name: "International Business Machines", FallbackPrice: 140, Risk: RiskLow, AnnualReturn: 0.04},
	{Symbol: "UBER", Name: "Uber Technologies Inc.", FallbackPrice: 60, Risk: RiskMedium, AnnualReturn: 0.15},
}

var bySymbol = func() map[string]Stock {
	m := make(map[string]Stock, len(catalog))
	for _, s := range catalog {
		m[s.Symbol] = s
	}
	return m
}()

// Lookup finds a stock by symbol, case-insensitively.
func Lookup(symbol string) (Stock, bool) {
	s, ok := bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	return s, ok
}

// All returns the universe sorted by symbol. The slice is a copy.
func All() []Stock {
	out := make([]Stock, len(catalog))
	copy(out, catalog)
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Symbols returns the sorted list of symbols.
func Symbols() []string {
	stocks := All()
	out := make([]string, len(stocks))
	for i, s := range stocks {
		out[i] = s.Symbol
	}
	return out
}
