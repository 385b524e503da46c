package scrape

import (
	"errors"
	"fmt"

	"github.com/gggpa/tickscrape/pkg/model"
	"github.com/gggpa/tickscrape/pkg/tickdata"
)

// ErrNoTickData marks a message whose payload carries no decodable
// tick array at all.
var ErrNoTickData = errors.New("message carries no tick data")

// ResponseError is a protocol-level error the service reports on a
// single message. The offending message contributes no tick data, the
// exchange itself continues.
type ResponseError struct {
	Category string
	Message  string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Category, e.Message)
}

// ResponseErrorOf returns the error element of the message, or nil for
// a data message. Classification stops at the error: callers must not
// try to extract ticks from an error-bearing message.
func ResponseErrorOf(msg tickdata.Message) *ResponseError {
	if !msg.HasElement(tickdata.ElemResponseError) {
		return nil
	}

	elem, err := msg.Element(tickdata.ElemResponseError)
	if err != nil {
		return &ResponseError{Category: "UNKNOWN", Message: err.Error()}
	}

	category, _ := elem.String(tickdata.ElemCategory)
	text, _ := elem.String(tickdata.ElemMessage)
	return &ResponseError{Category: category, Message: text}
}

// EachTick walks the tick records of a data message in payload order,
// which is chronological order for this protocol, and invokes fn for
// every well-formed record. A record missing a required field or of
// the wrong type is skipped and counted, the remainder of the payload
// is still processed. An error returned by fn aborts the walk.
func EachTick(msg tickdata.Message, fn func(model.Tick) error) (skipped int, err error) {
	outer, err := msg.Element(tickdata.ElemTickData)
	if err != nil {
		return 0, ErrNoTickData
	}
	data, err := outer.Element(tickdata.ElemTickData)
	if err != nil {
		return 0, ErrNoTickData
	}

	for _, item := range data.Values() {
		tick, decodeErr := decodeTick(item)
		if decodeErr != nil {
			skipped++
			continue
		}
		if err := fn(tick); err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}

func decodeTick(item tickdata.Element) (model.Tick, error) {
	var tick model.Tick
	var err error

	if tick.Timestamp, err = item.String(tickdata.ElemTime); err != nil {
		return tick, err
	}
	if tick.EventType, err = item.String(tickdata.ElemType); err != nil {
		return tick, err
	}
	if tick.Value, err = item.Float64(tickdata.ElemValue); err != nil {
		return tick, err
	}
	if tick.Size, err = item.Int32(tickdata.ElemSize); err != nil {
		return tick, err
	}
	return tick, nil
}
