package di

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stocksim/stocksim/internal/clientdata"
	"github.com/stocksim/stocksim/internal/config"
	"github.com/stocksim/stocksim/internal/modules/universe"
	"github.com/stocksim/stocksim/internal/scheduler"
)

const (
	priceWarmTimeout      = 30 * time.Second
	historyPruneSchedule  = "@every 10m"
	walCheckpointSchedule = "@hourly"
)

// RegisterJobs creates the background jobs and registers them with a new scheduler.
// The scheduler is stored in the container but not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	sched := scheduler.New(log)

	jobs := &JobInstances{
		ClientDataCleanup: clientdata.NewCleanupJob(container.ClientDataRepo, log),
		PriceWarm:         universe.NewPriceWarmJob(container.PriceService, priceWarmTimeout, log),
		HistoryPrune:      scheduler.NewHistoryPruneJob(container.HistorySource, historyMemoryTTL, log),
		WALCheckpoint:     scheduler.NewWALCheckpointJob(log, container.CacheDB),
	}

	schedules := []struct {
		spec string
		job  scheduler.Job
	}{
		{cfg.CacheCleanupSchedule, jobs.ClientDataCleanup},
		{cfg.PriceWarmSchedule, jobs.PriceWarm},
		{historyPruneSchedule, jobs.HistoryPrune},
		{walCheckpointSchedule, jobs.WALCheckpoint},
	}
	for _, s := range schedules {
		if err := sched.AddJob(s.spec, s.job); err != nil {
			return nil, fmt.Errorf("failed to register %s job: %w", s.job.Name(), err)
		}
	}

	container.Scheduler = sched
	return jobs, nil
}
