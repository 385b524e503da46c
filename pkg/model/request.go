package model

// DefaultEventTypes is the event-type set used when the caller does not
// ask for specific ones.
var DefaultEventTypes = []string{"TRADE", "BID", "ASK"}

// RequestSpec is the outbound intraday tick query. Exactly one security
// per request - a restriction of the service protocol itself. Both
// datetimes are GMT wall-clock strings and are either both explicit or
// both defaulted together.
type RequestSpec struct {
	Security      string   `json:"security"`
	EventTypes    []string `json:"eventTypes"`
	StartDateTime string   `json:"startDateTime"`
	EndDateTime   string   `json:"endDateTime"`
}
