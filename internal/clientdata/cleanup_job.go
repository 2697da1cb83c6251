package clientdata

import (
	"time"

	"github.com/rs/zerolog"
)

// retention is how long each table keeps rows past their expiry. Price
// history is refetched on demand, so it goes as soon as it expires; quotes
// linger because the price service reads them when the upstream is down.
var retention = map[string]time.Duration{
	TablePriceHistory:  0,
	TableCurrentPrices: QuoteFallbackRetention,
}

// CleanupJob prunes the persisted price history and quote tables.
type CleanupJob struct {
	repo *Repository
	log  zerolog.Logger
}

// NewCleanupJob creates the cache cleanup job.
func NewCleanupJob(repo *Repository, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo: repo,
		log:  log.With().Str("job", "client_data_cleanup").Logger(),
	}
}

// Run deletes price history rows that have expired and quotes that expired
// more than QuoteFallbackRetention ago.
func (j *CleanupJob) Run() error {
	history, err := j.repo.DeleteExpired(TablePriceHistory, retention[TablePriceHistory])
	if err != nil {
		j.log.Error().Err(err).Str("table", TablePriceHistory).Msg("Failed to prune price history")
		return err
	}

	quotes, err := j.repo.DeleteExpired(TableCurrentPrices, retention[TableCurrentPrices])
	if err != nil {
		j.log.Error().Err(err).Str("table", TableCurrentPrices).Msg("Failed to prune stale quotes")
		return err
	}

	if history+quotes == 0 {
		j.log.Debug().Msg("Nothing to prune")
		return nil
	}

	j.log.Info().
		Int64(TablePriceHistory, history).
		Int64(TableCurrentPrices, quotes).
		Msg("Pruned persisted price data")
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "client_data_cleanup"
}
