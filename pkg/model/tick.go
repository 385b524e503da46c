package model

// Tick is a single intraday data point as delivered by the tick-data
// service. The timestamp is kept as the service's ISO-8601 GMT string,
// it is never reinterpreted locally.
type Tick struct {
	Timestamp string
	EventType string
	Value     float64
	Size      int32
}

const dayLen = len("2006-01-02")

// Day returns the calendar-day portion of the timestamp, or an empty
// string if the timestamp is too short to carry one.
func (tick Tick) Day() string {
	if len(tick.Timestamp) < dayLen {
		return ""
	}
	return tick.Timestamp[:dayLen]
}
