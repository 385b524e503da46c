package tickdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ErrSessionClosed is returned by NextEvent once the session is gone
// and no buffered events remain.
var ErrSessionClosed = errors.New("session closed")

// Client is one session to a tick-data service. A single goroutine is
// expected to drive NextEvent.
type Client struct {
	conn   *connection
	logger *zap.Logger
}

func Dial(ctx context.Context, logger *zap.Logger, host string, port int) (*Client, error) {
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/session",
	}

	wsConn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("unable to start session with %q: %w", u.Host, err)
	}

	conn := newConnection(wsConn, logger)
	conn.start()

	return &Client{conn: conn, logger: logger}, nil
}

func (client *Client) Close() {
	client.conn.stop()
}

// OpenService makes the named service available on this session.
func (client *Client) OpenService(ctx context.Context, service string) error {
	if err := client.control(ctx, wireFrame{Op: "openService", Service: service}); err != nil {
		return fmt.Errorf("unable to open service %q: %w", service, err)
	}
	return nil
}

// SendRequest issues one request against an opened service. Responses
// arrive asynchronously through NextEvent as partial-response and
// response events.
func (client *Client) SendRequest(ctx context.Context, service, operation string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("cannot marshal request body: %w", err)
	}

	frame := wireFrame{Op: "sendRequest", Service: service, Operation: operation, Body: raw}
	if err := client.control(ctx, frame); err != nil {
		return fmt.Errorf("unable to send %s request: %w", operation, err)
	}
	return nil
}

// NextEvent blocks until the next event is delivered. Buffered events
// are drained even after the underlying link has gone down.
func (client *Client) NextEvent(ctx context.Context) (Event, error) {
	select {
	case ev := <-client.conn.events:
		return ev, nil
	default:
	}

	select {
	case ev := <-client.conn.events:
		return ev, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	case <-client.conn.ctx.Done():
		return Event{}, ErrSessionClosed
	}
}

func (client *Client) control(ctx context.Context, frame wireFrame) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("cannot create uuid: %w", err)
	}
	frame.CorrelationID = id.String()

	respChan := make(chan wireFrame, 1)
	client.conn.pending.Store(frame.CorrelationID, respChan)
	defer client.conn.pending.Delete(frame.CorrelationID)

	select {
	case client.conn.writeChan <- frame:
	case <-ctx.Done():
		return ctx.Err()
	case <-client.conn.ctx.Done():
		return ErrSessionClosed
	}

	select {
	case resp := <-respChan:
		if resp.Status != "ok" {
			return fmt.Errorf("service refused %s: %s", frame.Op, resp.Reason)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-client.conn.ctx.Done():
		return ErrSessionClosed
	}
}
