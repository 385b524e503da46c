package market

import (
	"errors"
	"time"
)

// DateTimeLayout is the GMT wall-clock format of the service protocol.
const DateTimeLayout = "2006-01-02T15:04:05"

// ErrNoTradingDay is returned when no weekday exists within the
// lookback window.
var ErrNoTradingDay = errors.New("no trading day within lookback window")

const (
	probeHour   = 15
	probeMinute = 30
	probeLength = 5 * time.Minute

	// Caps the backward walk. Weekends are at most two days long, the
	// cap only guards against a broken clock input.
	maxLookbackDays = 14
)

// DefaultTickRange computes the default [start, end) request window:
// a five minute probe at 15:30 GMT on the most recent weekday, the day
// of now included. The clock input is taken as GMT, no timezone
// conversion is performed.
func DefaultTickRange(now time.Time) (time.Time, time.Time, error) {
	day := now.UTC()
	for i := 0; i < maxLookbackDays; i++ {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			start := time.Date(day.Year(), day.Month(), day.Day(), probeHour, probeMinute, 0, 0, time.UTC)
			return start, start.Add(probeLength), nil
		}
		day = day.AddDate(0, 0, -1)
	}
	return time.Time{}, time.Time{}, ErrNoTradingDay
}
