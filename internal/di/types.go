// Package di wires the application's dependencies into a single container.
package di

import (
	"github.com/stocksim/stocksim/internal/clientdata"
	"github.com/stocksim/stocksim/internal/clients/yahoo"
	"github.com/stocksim/stocksim/internal/database"
	"github.com/stocksim/stocksim/internal/domain"
	"github.com/stocksim/stocksim/internal/modules/analysis"
	"github.com/stocksim/stocksim/internal/modules/historical"
	"github.com/stocksim/stocksim/internal/modules/simulation"
	"github.com/stocksim/stocksim/internal/modules/universe"
	"github.com/stocksim/stocksim/internal/scheduler"
)

// Container holds all dependencies for the application.
// It is created by Wire() and passed to the server for access to services.
type Container struct {
	// Storage
	CacheDB        *database.DB
	ClientDataRepo *clientdata.Repository

	// Clients
	YahooClient *yahoo.Client

	// Services
	HistorySource     *historical.CachedSource
	AnalysisService   *analysis.Service
	SimulationService *simulation.Service
	ProfileGenerator  domain.ProfileGenerator
	PriceService      *universe.PriceService

	// Background jobs
	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered background jobs for manual triggering
type JobInstances struct {
	ClientDataCleanup scheduler.Job
	PriceWarm         scheduler.Job
	HistoryPrune      scheduler.Job
	WALCheckpoint     scheduler.Job
}

// All lists the jobs by name.
func (j *JobInstances) All() map[string]scheduler.Job {
	out := make(map[string]scheduler.Job)
	for _, job := range []scheduler.Job{j.ClientDataCleanup, j.PriceWarm, j.HistoryPrune, j.WALCheckpoint} {
		if job != nil {
			out[job.Name()] = job
		}
	}
	return out
}

// Close releases the container's resources.
func (c *Container) Close() error {
	if c.CacheDB != nil {
		return c.CacheDB.Close()
	}
	return nil
}
