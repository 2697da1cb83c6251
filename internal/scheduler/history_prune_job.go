package scheduler

import (
	"time"

	"github.com/rs/zerolog"
)

// Pruner drops in-memory entries older than maxAge and reports how many went
type Pruner interface {
	Prune(maxAge time.Duration) int
}

// HistoryPruneJob bounds the memory held by the in-process history cache
type HistoryPruneJob struct {
	pruner Pruner
	maxAge time.Duration
	log    zerolog.Logger
}

// NewHistoryPruneJob creates a prune job
func NewHistoryPruneJob(pruner Pruner, maxAge time.Duration, log zerolog.Logger) *HistoryPruneJob {
	return &HistoryPruneJob{
		pruner: pruner,
		maxAge: maxAge,
		log:    log.With().Str("job", "history_prune").Logger(),
	}
}

// Name returns the job name
func (j *HistoryPruneJob) Name() string {
	return "history_prune"
}

// Run prunes the cache
func (j *HistoryPruneJob) Run() error {
	if n := j.pruner.Prune(j.maxAge); n > 0 {
		j.log.Info().Int("pruned", n).Dur("max_age", j.maxAge).Msg("Pruned cached price history")
	}
	return nil
}
