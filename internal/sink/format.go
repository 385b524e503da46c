package sink

import (
	"fmt"
	"strconv"

	"github.com/govalues/decimal"

	"github.com/gggpa/tickscrape/pkg/model"
)

const valueScale = 3

// formatValue renders a price with exactly three digits after a forced
// decimal point, whole numbers included.
func formatValue(v float64) (string, error) {
	d, err := decimal.NewFromFloat64(v)
	if err != nil {
		return "", fmt.Errorf("value %v is not representable: %w", v, err)
	}
	return d.Rescale(valueScale).String(), nil
}

// formatLine renders one csv line: timestamp,eventType,value,size.
// Size stays a plain integer, no separators, no decimal point.
func formatLine(tick model.Tick) (string, error) {
	value, err := formatValue(tick.Value)
	if err != nil {
		return "", err
	}
	return tick.Timestamp + "," + tick.EventType + "," + value + "," + strconv.FormatInt(int64(tick.Size), 10) + "\n", nil
}
