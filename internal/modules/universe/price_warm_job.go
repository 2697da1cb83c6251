package universe

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// PriceWarmJob refreshes the price snapshot in the background so that
// /stock_prices requests rarely wait on the upstream.
type PriceWarmJob struct {
	service *PriceService
	timeout time.Duration
	log     zerolog.Logger
}

// NewPriceWarmJob creates a warm job bounded by timeout per run.
func NewPriceWarmJob(service *PriceService, timeout time.Duration, log zerolog.Logger) *PriceWarmJob {
	return &PriceWarmJob{
		service: service,
		timeout: timeout,
		log:     log.With().Str("job", "price_warm").Logger(),
	}
}

// Run refreshes the snapshot.
func (j *PriceWarmJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.service.Refresh(ctx); err != nil {
		j.log.Warn().Err(err).Msg("Price warm failed")
		return err
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *PriceWarmJob) Name() string {
	return "price_warm"
}
