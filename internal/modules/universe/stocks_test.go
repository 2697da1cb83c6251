package universe

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
		found  bool
	}{
		{"AAPL", "Apple Inc.", true},
		{" tsla ", "Tesla Inc.", true},
		{"nvda", "NVIDIA Corporation", true},
		{"ZZZZ", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			stock, ok := Lookup(tt.symbol)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, stock.Name)
		})
	}
}

func TestAll_SortedCopy(t *testing.T) {
	stocks := All()
	assert.Len(t, stocks, len(catalog))
	assert.True(t, sort.SliceIsSorted(stocks, func(i, j int) bool { return stocks[i].Symbol < stocks[j].Symbol }))

	stocks[0].Name = "changed"
	assert.NotEqual(t, "changed", All()[0].Name)
}

func TestCatalog_Consistent(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range catalog {
		assert.False(t, seen[s.Symbol], "duplicate symbol %s", s.Symbol)
		seen[s.Symbol] = true
		assert.Greater(t, s.FallbackPrice, 0.0, s.Symbol)
		assert.Contains(t, []RiskTier{RiskLow, RiskMedium, RiskHigh}, s.Risk, s.Symbol)
	}
	assert.Equal(t, len(catalog), len(Symbols()))
}
