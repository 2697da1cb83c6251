package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/stocksim/stocksim/internal/database"
	"github.com/stocksim/stocksim/internal/di"
	"github.com/stocksim/stocksim/internal/scheduler"
)

// cpuSampleInterval keeps /api/system/status fast while still giving a usable reading
const cpuSampleInterval = 100 * time.Millisecond

// SnapshotAger reports the age of a cached snapshot
type SnapshotAger interface {
	Age() (time.Duration, bool)
}

// EntryCounter reports how many entries a cache holds
type EntryCounter interface {
	Entries() int
}

// SystemHandlers handles system monitoring and job trigger endpoints
type SystemHandlers struct {
	log          zerolog.Logger
	startupTime  time.Time
	cacheDB      *database.DB
	prices       SnapshotAger
	history      EntryCounter
	jobs         map[string]scheduler.Job
	systemStats  func() (cpuPercent, ramPercent float64)
	nowForUptime func() time.Time
}

// NewSystemHandlers creates a new system handlers instance. Any dependency may be nil.
func NewSystemHandlers(log zerolog.Logger, cacheDB *database.DB, prices SnapshotAger, history EntryCounter, jobs *di.JobInstances) *SystemHandlers {
	h := &SystemHandlers{
		log:          log.With().Str("component", "system_handlers").Logger(),
		startupTime:  time.Now(),
		cacheDB:      cacheDB,
		prices:       prices,
		history:      history,
		jobs:         map[string]scheduler.Job{},
		nowForUptime: time.Now,
	}
	if jobs != nil {
		h.jobs = jobs.All()
	}
	h.systemStats = h.getSystemStats
	return h
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status             string          `json:"status"`
	UptimeSeconds      int64           `json:"uptime_seconds"`
	CPUPercent         float64         `json:"cpu_percent"`
	RAMPercent         float64         `json:"ram_percent"`
	PriceCacheAgeSecs  *float64        `json:"price_cache_age_seconds"`
	HistoryCacheSeries int             `json:"history_cache_series"`
	CacheDB            *database.Stats `json:"cache_db,omitempty"`
}

// HandleSystemStatus returns process and cache status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := h.systemStats()

	response := SystemStatusResponse{
		Status:        "ok",
		UptimeSeconds: int64(h.nowForUptime().Sub(h.startupTime).Seconds()),
		CPUPercent:    cpuPercent,
		RAMPercent:    ramPercent,
	}

	if h.prices != nil {
		if age, ok := h.prices.Age(); ok {
			secs := age.Seconds()
			response.PriceCacheAgeSecs = &secs
		}
	}
	if h.history != nil {
		response.HistoryCacheSeries = h.history.Entries()
	}
	if h.cacheDB != nil {
		stats, err := h.cacheDB.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to read cache database stats")
			response.Status = "degraded"
		} else {
			response.CacheDB = stats
		}
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleListJobs lists the jobs that can be triggered manually
func (h *SystemHandlers) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.jobs))
	for name := range h.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": names})
}

// HandleTriggerJob runs a job immediately
// POST /api/jobs/{name}/run
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	job, ok := h.jobs[name]
	if !ok {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "Unknown job " + name})
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job triggered")
	if err := job.Run(); err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Manual job failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": name + " completed",
	})
}

// getSystemStats calculates CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(cpuSampleInterval, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
