package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartBody = `{"chart":{"result":[{"meta":{"symbol":"AAPL","regularMarketPrice":191.5},
"timestamp":[1704205800,1704292200,1704378600,1704465000],
"indicators":{"quote":[{"close":[185.5,null,184.25,181.0]}]}}],"error":null}}`

const notFoundBody = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newTestClient(hosts ...string) *Client {
	c := NewClient(zerolog.Nop(), WithHosts(hosts...), WithBackoffs(), WithRateLimit(1000))
	c.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return c
}

func TestFetchHistory_ParsesChart(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	points, err := newTestClient(srv.URL).FetchHistory(context.Background(), "aapl", "1y")
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/AAPL", gotPath)
	assert.Contains(t, gotQuery, "interval=1d")
	assert.Contains(t, gotQuery, "period1=")

	require.Len(t, points, 3, "null close is skipped")
	assert.Equal(t, 185.5, points[0].Close)
	assert.Equal(t, 184.25, points[1].Close)
	assert.Equal(t, time.Unix(1704465000, 0).UTC(), points[2].Date)
	assert.True(t, points[0].Date.Before(points[2].Date))
}

func TestFetchHistory_UnknownTickerIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(notFoundBody))
	}))
	defer srv.Close()

	points, err := newTestClient(srv.URL).FetchHistory(context.Background(), "ZZZZZ", "1y")
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestFetchHistory_FailsOverToSecondHost(t *testing.T) {
	var primaryHits int32
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&primaryHits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("Edge: Too Many Requests"))
	}))
	defer primary.Close()
	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chartBody))
	}))
	defer secondary.Close()

	points, err := newTestClient(primary.URL, secondary.URL).FetchHistory(context.Background(), "AAPL", "6mo")
	require.NoError(t, err)
	assert.Len(t, points, 3)
	assert.Equal(t, int32(1), atomic.LoadInt32(&primaryHits))
}

func TestFetchHistory_RetriesWithBackoff(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.backoffs = []time.Duration{time.Millisecond, time.Millisecond}

	points, err := c.FetchHistory(context.Background(), "AAPL", "1y")
	require.NoError(t, err)
	assert.Len(t, points, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestFetchHistory_ReturnsAPIErrorWhenAllHostsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("upstream broke"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchHistory(context.Background(), "AAPL", "1y")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "/v8/finance/chart/AAPL", apiErr.Endpoint)
	assert.Contains(t, apiErr.Message, "upstream broke")
}

func TestFetchHistory_NonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>consent</html>"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchHistory(context.Background(), "AAPL", "1y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestFetchHistory_InvalidPeriod(t *testing.T) {
	_, err := newTestClient("http://unused").FetchHistory(context.Background(), "AAPL", "forever")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestFetchHistory_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv.URL).FetchHistory(ctx, "AAPL", "1y")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchQuotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/AAPL"):
			_, _ = w.Write([]byte(chartBody))
		case strings.HasSuffix(r.URL.Path, "/NOMETA"):
			_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"NOMETA"},"timestamp":[1,2],"indicators":{"quote":[{"close":[10.5,null]}]}}]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(notFoundBody))
		}
	}))
	defer srv.Close()

	quotes, err := newTestClient(srv.URL).FetchQuotes(context.Background(), []string{"AAPL", "NOMETA", "GONE"})
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"AAPL": 191.5, "NOMETA": 10.5}, quotes)
}

func TestPeriodParams(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		period    string
		wantRange string
		wantStart time.Time
		wantErr   bool
	}{
		{period: "ytd", wantRange: "ytd"},
		{period: "MAX", wantRange: "max"},
		{period: "", wantRange: "1y"},
		{period: "1y", wantStart: now.AddDate(-1, 0, 0)},
		{period: "6mo", wantStart: now.AddDate(0, -6, 0)},
		{period: "30d", wantStart: now.AddDate(0, 0, -30)},
		{period: "2wk", wantStart: now.AddDate(0, 0, -14)},
		{period: "0d", wantErr: true},
		{period: "abc", wantErr: true},
		{period: "xmo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			params, err := periodParams(tt.period, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPeriod)
				return
			}
			require.NoError(t, err)
			if tt.wantRange != "" {
				assert.Equal(t, tt.wantRange, params.Get("range"))
				return
			}
			assert.Empty(t, params.Get("range"))
			assert.Equal(t, now.Unix(), mustInt64(t, params.Get("period2")))
			assert.Equal(t, tt.wantStart.Unix(), mustInt64(t, params.Get("period1")))
		})
	}
}

func mustInt64(t *testing.T, s string) int64 {
	t.Helper()
	v, err := strconv.ParseInt(s, 10, 64)
	require.NoError(t, err)
	return v
}
