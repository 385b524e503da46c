package scrape

import (
	"errors"
	"fmt"
	"time"

	"github.com/gggpa/tickscrape/internal/market"
	"github.com/gggpa/tickscrape/pkg/model"
)

// BuildRequest assembles the outbound query. When both datetimes are
// empty the default trading window is computed from now; supplying
// exactly one of them is a configuration error. An empty event set
// falls back to the default TRADE/BID/ASK selection.
func BuildRequest(security string, eventTypes []string, start, end string, now time.Time) (model.RequestSpec, error) {
	if security == "" {
		return model.RequestSpec{}, errors.New("security is required")
	}

	if len(eventTypes) == 0 {
		eventTypes = append([]string(nil), model.DefaultEventTypes...)
	}

	switch {
	case start == "" && end == "":
		s, e, err := market.DefaultTickRange(now)
		if err != nil {
			return model.RequestSpec{}, fmt.Errorf("unable to compute default range: %w", err)
		}
		start = s.Format(market.DateTimeLayout)
		end = e.Format(market.DateTimeLayout)

	case start == "" || end == "":
		return model.RequestSpec{}, errors.New("startDateTime and endDateTime must be supplied together")
	}

	return model.RequestSpec{
		Security:      security,
		EventTypes:    eventTypes,
		StartDateTime: start,
		EndDateTime:   end,
	}, nil
}
