package yahoo

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPeriod is returned for lookbacks that cannot be mapped to a chart query
var ErrInvalidPeriod = errors.New("invalid period")

// periodParams maps a lookback such as "1y", "6mo", "30d", "2wk", "ytd" or
// "max" onto chart query parameters. Named ranges go through "range";
// numeric lookbacks become an explicit period1/period2 window ending at now.
func periodParams(period string, now time.Time) (url.Values, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	params := url.Values{}

	switch p {
	case "":
		params.Set("range", "1y")
		return params, nil
	case "ytd", "max":
		params.Set("range", p)
		return params, nil
	}

	var unit string
	for _, suffix := range []string{"mo", "wk", "d", "y"} {
		if strings.HasSuffix(p, suffix) {
			unit = suffix
			break
		}
	}
	if unit == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	n, err := strconv.Atoi(strings.TrimSuffix(p, unit))
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	var start time.Time
	switch unit {
	case "d":
		start = now.AddDate(0, 0, -n)
	case "wk":
		start = now.AddDate(0, 0, -7*n)
	case "mo":
		start = now.AddDate(0, -n, 0)
	case "y":
		start = now.AddDate(-n, 0, 0)
	}

	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(now.Unix(), 10))
	return params, nil
}
