package universe

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/stocksim/stocksim/internal/cache"
	"github.com/stocksim/stocksim/internal/clientdata"
	"github.com/stocksim/stocksim/internal/domain"
)

const (
	absolutePriceMin = 0.01
	absolutePriceMax = 1_000_000.0
)

// StockPrice is the /stock_prices entry for one symbol
type StockPrice struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Risk  RiskTier `json:"risk"`
}

// PriceService serves universe prices from a snapshot of live quotes that is
// refreshed at most once per TTL. Quotes are also persisted so a restart or an
// upstream outage still has recent prices to show.
type PriceService struct {
	quotes   domain.QuoteSource
	repo     *clientdata.Repository
	snapshot *cache.Snapshot[map[string]float64]
	ttl      time.Duration
	log      zerolog.Logger
}

// NewPriceService creates a price service. repo may be nil.
func NewPriceService(quotes domain.QuoteSource, repo *clientdata.Repository, ttl time.Duration, log zerolog.Logger) *PriceService {
	return &PriceService{
		quotes:   quotes,
		repo:     repo,
		snapshot: cache.NewSnapshot[map[string]float64](),
		ttl:      ttl,
		log:      log.With().Str("component", "universe_prices").Logger(),
	}
}

// Prices returns every universe stock with its latest known price. It never
// fails: symbols without a live or persisted quote use the fallback price.
func (s *PriceService) Prices(ctx context.Context) map[string]StockPrice {
	live, err := s.snapshot.GetOrRefresh(ctx, s.ttl, s.refresh)
	if err != nil {
		s.log.Warn().Err(err).Msg("No live quotes available, using fallback prices")
	}

	out := make(map[string]StockPrice, len(catalog))
	for _, stock := range catalog {
		price, ok := live[stock.Symbol]
		if !ok {
			price = stock.FallbackPrice
		}
		out[stock.Symbol] = StockPrice{Name: stock.Name, Price: price, Risk: stock.Risk}
	}
	return out
}

// Refresh forces a new quote fetch regardless of snapshot age. The previous
// snapshot stays in place when the fetch fails.
func (s *PriceService) Refresh(ctx context.Context) error {
	_, err := s.snapshot.GetOrRefresh(ctx, 0, s.refresh)
	return err
}

// Age reports how old the current snapshot is.
func (s *PriceService) Age() (time.Duration, bool) {
	return s.snapshot.Age()
}

func (s *PriceService) refresh(ctx context.Context) (map[string]float64, error) {
	symbols := Symbols()
	quotes, err := s.quotes.FetchQuotes(ctx, symbols)
	if err != nil {
		persisted := s.persisted(symbols)
		if len(persisted) == 0 {
			return nil, err
		}
		s.log.Warn().Err(err).Int("persisted", len(persisted)).Msg("Quote fetch failed, using persisted prices")
		return persisted, nil
	}

	prices := make(map[string]float64, len(quotes))
	for symbol, price := range quotes {
		if !validPrice(price) {
			s.log.Warn().Str("symbol", symbol).Float64("price", price).Msg("Discarding abnormal quote")
			continue
		}
		prices[symbol] = price
		if s.repo != nil {
			if err := s.repo.Store(clientdata.TableCurrentPrices, symbol, price, clientdata.TTLCurrentPrice); err != nil {
				s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to persist quote")
			}
		}
	}

	s.log.Debug().Int("quotes", len(prices)).Msg("Refreshed universe prices")
	return prices, nil
}

// persisted loads the last stored quote of each symbol, expired or not.
func (s *PriceService) persisted(symbols []string) map[string]float64 {
	prices := make(map[string]float64)
	if s.repo == nil {
		return prices
	}
	for _, symbol := range symbols {
		var price float64
		found, err := s.repo.Get(clientdata.TableCurrentPrices, symbol, &price)
		if err != nil || !found {
			continue
		}
		if !validPrice(price) {
			if err := s.repo.Delete(clientdata.TableCurrentPrices, symbol); err != nil {
				s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to drop abnormal persisted quote")
			}
			continue
		}
		prices[symbol] = price
	}
	return prices
}

func validPrice(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p >= absolutePriceMin && p <= absolutePriceMax
}
