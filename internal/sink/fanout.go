package sink

import "github.com/gggpa/tickscrape/pkg/model"

// Writer receives decoded ticks.
type Writer interface {
	Write(tick model.Tick) error
	Close() error
}

// Fanout duplicates every tick across all member sinks. The first
// write error aborts; Close always reaches every member.
type Fanout []Writer

func (f Fanout) Write(tick model.Tick) error {
	for _, w := range f {
		if err := w.Write(tick); err != nil {
			return err
		}
	}
	return nil
}

func (f Fanout) Close() error {
	var firstErr error
	for _, w := range f {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
