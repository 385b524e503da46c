package tickdata

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type connection struct {
	conn   *websocket.Conn
	logger *zap.Logger

	ctx       context.Context
	ctxCancel context.CancelFunc

	writeChan chan wireFrame
	events    chan Event

	pending sync.Map // map[string]chan wireFrame
}

func newConnection(conn *websocket.Conn, logger *zap.Logger) *connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &connection{
		conn:      conn,
		logger:    logger,
		ctx:       ctx,
		ctxCancel: cancel,
		writeChan: make(chan wireFrame, 16),
		events:    make(chan Event, 64),
	}
}

func (c *connection) start() {
	go c.read()
	go c.write()
}

func (c *connection) stop() {
	c.ctxCancel()
	_ = c.conn.Close()
}

func (c *connection) read() {
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				c.logger.Warn("cannot read data", zap.Error(err))
				// The consumer's loop terminates on the session-status
				// notification, so a dead link must still deliver one.
				c.deliver(terminatedEvent())
				c.ctxCancel()
				return
			}

			frame, err := parseFrame(data)
			if err != nil {
				c.logger.Warn("dropping undecodable frame", zap.Error(err))
				time.Sleep(100 * time.Millisecond)
				continue
			}

			if frame.CorrelationID != "" {
				if ch, ok := c.pending.LoadAndDelete(frame.CorrelationID); ok {
					select {
					case ch.(chan wireFrame) <- frame:
					default: // drop if blocked
					}
				}
				continue
			}

			c.logger.Debug("read", zap.String("eventType", frame.EventType), zap.Int("messages", len(frame.Messages)))
			c.deliver(eventFromFrame(frame))
		}
	}
}

func (c *connection) deliver(ev Event) {
	select {
	case c.events <- ev:
	case <-c.ctx.Done():
	}
}

func (c *connection) write() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case frame := <-c.writeChan:
			if err := c.conn.WriteJSON(frame); err != nil {
				c.logger.Warn("cannot write data", zap.Error(err))
			}
		}
	}
}
