package di

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/stocksim/stocksim/internal/clientdata"
	"github.com/stocksim/stocksim/internal/clients/groq"
	"github.com/stocksim/stocksim/internal/clients/yahoo"
	"github.com/stocksim/stocksim/internal/config"
	"github.com/stocksim/stocksim/internal/domain"
	"github.com/stocksim/stocksim/internal/modules/analysis"
	"github.com/stocksim/stocksim/internal/modules/historical"
	"github.com/stocksim/stocksim/internal/modules/profiles"
	"github.com/stocksim/stocksim/internal/modules/simulation"
	"github.com/stocksim/stocksim/internal/modules/universe"
)

// historyMemoryTTL bounds how long a price series stays in process memory
// before the persistent cache is consulted again.
const historyMemoryTTL = 30 * time.Minute

// InitializeServices creates clients and services
// Order: repositories -> clients -> caching source -> domain services
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.ClientDataRepo = clientdata.NewRepository(container.CacheDB.Conn())

	container.YahooClient = yahoo.NewClient(log,
		yahoo.WithHosts(cfg.YahooHosts...),
		yahoo.WithRateLimit(cfg.YahooRateLimit),
	)

	container.HistorySource = historical.NewCachedSource(
		container.YahooClient,
		container.ClientDataRepo,
		historyMemoryTTL,
		log,
	)

	container.AnalysisService = analysis.NewService(container.HistorySource, cfg.HistoryPeriod, log)

	container.SimulationService = simulation.NewService(
		container.AnalysisService,
		simulation.NewSimulator(nil),
		log,
	)

	container.ProfileGenerator = newProfileGenerator(cfg, log)

	container.PriceService = universe.NewPriceService(
		container.YahooClient,
		container.ClientDataRepo,
		cfg.PriceCacheTTL,
		log,
	)

	log.Info().Bool("ai_profiles", cfg.HasAIProvider()).Msg("Services initialized")
	return nil
}

// newProfileGenerator uses the remote model when a key is configured, with
// the offline generator as fallback; otherwise only the offline generator.
func newProfileGenerator(cfg *config.Config, log zerolog.Logger) domain.ProfileGenerator {
	offline := groq.NewOfflineGenerator(rand.New(rand.NewSource(time.Now().UnixNano())))
	if !cfg.HasAIProvider() {
		log.Warn().Msg("GROQ_API_KEY not set, client profiles use the offline generator")
		return offline
	}

	remote := groq.NewGenerator(cfg.GroqAPIKey, log,
		groq.WithBaseURL(cfg.AIBaseURL),
		groq.WithModel(cfg.AIModel),
	)
	return profiles.NewService(remote, offline, log)
}
