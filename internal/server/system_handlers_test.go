package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksim/stocksim/internal/di"
)

type fakeAger struct {
	age time.Duration
	ok  bool
}

func (f fakeAger) Age() (time.Duration, bool) { return f.age, f.ok }

type fakeCounter int

func (f fakeCounter) Entries() int { return int(f) }

type fakeJob struct {
	name string
	err  error
	runs int
}

func (j *fakeJob) Run() error {
	j.runs++
	return j.err
}

func (j *fakeJob) Name() string { return j.name }

func newTestSystemHandlers(prices SnapshotAger, jobs *di.JobInstances) *SystemHandlers {
	h := NewSystemHandlers(zerolog.Nop(), nil, prices, fakeCounter(7), jobs)
	h.systemStats = func() (float64, float64) { return 12.5, 40 }
	start := h.startupTime
	h.nowForUptime = func() time.Time { return start.Add(90 * time.Second) }
	return h
}

func TestSystemHandlers_HandleSystemStatus(t *testing.T) {
	tests := []struct {
		name    string
		prices  SnapshotAger
		wantAge interface{}
	}{
		{name: "warm price cache", prices: fakeAger{age: 30 * time.Second, ok: true}, wantAge: 30.0},
		{name: "cold price cache", prices: fakeAger{}, wantAge: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestSystemHandlers(tt.prices, nil)

			w := httptest.NewRecorder()
			h.HandleSystemStatus(w, httptest.NewRequest(http.MethodGet, "/api/system/status", nil))
			require.Equal(t, http.StatusOK, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "ok", body["status"])
			assert.Equal(t, 90.0, body["uptime_seconds"])
			assert.Equal(t, 12.5, body["cpu_percent"])
			assert.Equal(t, 40.0, body["ram_percent"])
			assert.Equal(t, 7.0, body["history_cache_series"])
			assert.Equal(t, tt.wantAge, body["price_cache_age_seconds"])
			assert.NotContains(t, body, "cache_db")
		})
	}
}

func TestSystemHandlers_Jobs(t *testing.T) {
	warm := &fakeJob{name: "price_warm"}
	cleanup := &fakeJob{name: "client_data_cleanup", err: errors.New("disk full")}
	h := newTestSystemHandlers(fakeAger{}, &di.JobInstances{PriceWarm: warm, ClientDataCleanup: cleanup})

	r := chi.NewRouter()
	r.Get("/api/jobs", h.HandleListJobs)
	r.Post("/api/jobs/{name}/run", h.HandleTriggerJob)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"list", http.MethodGet, "/api/jobs", http.StatusOK},
		{"run", http.MethodPost, "/api/jobs/price_warm/run", http.StatusOK},
		{"failing job", http.MethodPost, "/api/jobs/client_data_cleanup/run", http.StatusInternalServerError},
		{"unknown job", http.MethodPost, "/api/jobs/nope/run", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	assert.Equal(t, 1, warm.runs)
	assert.Equal(t, 1, cleanup.runs)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	var body map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"client_data_cleanup", "price_warm"}, body["jobs"])
}
