package scrape

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/gggpa/tickscrape/pkg/model"
	"github.com/gggpa/tickscrape/pkg/tickdata"
)

// EventSource is the slice of the session the loop consumes.
type EventSource interface {
	NextEvent(ctx context.Context) (tickdata.Event, error)
}

// TickSink receives every decoded tick, in delivery order.
type TickSink interface {
	Write(tick model.Tick) error
	Close() error
}

// Loop drives one request/response exchange to completion. Only the
// event kind ends the exchange - a final response or the session
// terminated notification - never the content of a single message.
type Loop struct {
	source EventSource
	sink   TickSink
	logger *zap.Logger
}

func NewLoop(source EventSource, sink TickSink, logger *zap.Logger) *Loop {
	return &Loop{source: source, sink: sink, logger: logger}
}

// Run blocks until the exchange is done. The sink is closed on every
// exit path, including cancellation and write failures.
func (l *Loop) Run(ctx context.Context) (err error) {
	defer func() {
		if cerr := l.sink.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for {
		event, nextErr := l.source.NextEvent(ctx)
		if nextErr != nil {
			return nextErr
		}

		switch event.Kind {
		case tickdata.EventPartialResponse:
			l.logger.Info("processing partial response")
			if err := l.processResponse(event); err != nil {
				return err
			}

		case tickdata.EventResponse:
			l.logger.Info("processing response")
			if err := l.processResponse(event); err != nil {
				return err
			}
			return nil

		case tickdata.EventSessionStatus:
			for _, msg := range event.Messages {
				if msg.Terminated() {
					l.logger.Info("session terminated")
					return nil
				}
			}

		default:
			// other event kinds carry nothing for this exchange
		}
	}
}

func (l *Loop) processResponse(event tickdata.Event) error {
	for _, msg := range event.Messages {
		if respErr := ResponseErrorOf(msg); respErr != nil {
			l.logger.Warn("request failed",
				zap.String("category", respErr.Category),
				zap.String("message", respErr.Message))
			continue
		}

		skipped, err := EachTick(msg, l.sink.Write)
		if errors.Is(err, ErrNoTickData) {
			l.logger.Warn("message carries no tick data", zap.String("messageType", msg.MessageType))
			continue
		}
		if err != nil {
			return err
		}
		if skipped > 0 {
			l.logger.Warn("skipped malformed tick records", zap.Int("count", skipped))
		}
	}
	return nil
}
