package tickdata

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Element names of the intraday tick protocol.
const (
	ElemTickData      = "tickData"
	ElemTime          = "time"
	ElemType          = "type"
	ElemValue         = "value"
	ElemSize          = "size"
	ElemResponseError = "responseError"
	ElemCategory      = "category"
	ElemMessage       = "message"
)

const sessionTerminatedType = "SessionTerminated"

type EventKind int

const (
	EventOther EventKind = iota
	EventPartialResponse
	EventResponse
	EventSessionStatus
)

func (k EventKind) String() string {
	switch k {
	case EventPartialResponse:
		return "PARTIAL_RESPONSE"
	case EventResponse:
		return "RESPONSE"
	case EventSessionStatus:
		return "SESSION_STATUS"
	default:
		return "OTHER"
	}
}

// Event is one delivery from the session: a kind and zero or more
// messages.
type Event struct {
	Kind     EventKind
	Messages []Message
}

// Message is a typed name/value element tree. Leaf values are decoded
// lazily through the typed accessors.
type Message struct {
	MessageType string

	root Element
}

// NewMessage builds a message from a decoded element tree. Used by the
// wire codec and by consumers that fabricate messages in tests.
func NewMessage(messageType string, elements map[string]any) Message {
	return Message{MessageType: messageType, root: Element{v: elements}}
}

// Terminated reports whether this is the session-terminated
// notification. The stable identifier of the transport contract -
// consumers never compare message type strings themselves.
func (m Message) Terminated() bool {
	return m.MessageType == sessionTerminatedType
}

func (m Message) HasElement(name string) bool {
	obj, ok := m.root.v.(map[string]any)
	if !ok {
		return false
	}
	_, ok = obj[name]
	return ok
}

func (m Message) Element(name string) (Element, error) {
	return m.root.Element(name)
}

// Element is a node of a message's element tree: an object, an array
// or a leaf value.
type Element struct {
	v any
}

func (e Element) lookup(name string) (any, error) {
	obj, ok := e.v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("element is not an object, cannot access %q", name)
	}
	v, ok := obj[name]
	if !ok {
		return nil, fmt.Errorf("element %q not present", name)
	}
	return v, nil
}

func (e Element) Element(name string) (Element, error) {
	v, err := e.lookup(name)
	if err != nil {
		return Element{}, err
	}
	return Element{v: v}, nil
}

// Values returns the entries of an array element in payload order, or
// nil if the element is not an array.
func (e Element) Values() []Element {
	arr, ok := e.v.([]any)
	if !ok {
		return nil
	}
	out := make([]Element, len(arr))
	for i, v := range arr {
		out[i] = Element{v: v}
	}
	return out
}

func (e Element) String(name string) (string, error) {
	v, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("element %q is not a string", name)
	}
	return s, nil
}

func (e Element) Float64(name string) (float64, error) {
	v, err := e.lookup(name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("element %q is not a float64: %w", name, err)
		}
		return f, nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("element %q is not a float64", name)
	}
}

func (e Element) Int32(name string) (int32, error) {
	v, err := e.lookup(name)
	if err != nil {
		return 0, err
	}
	var i int64
	switch n := v.(type) {
	case json.Number:
		i, err = n.Int64()
		if err != nil {
			return 0, fmt.Errorf("element %q is not an int32: %w", name, err)
		}
	case int:
		i = int64(n)
	case int32:
		return n, nil
	case int64:
		i = n
	case float64:
		i = int64(n)
		if float64(i) != n {
			return 0, fmt.Errorf("element %q is not an int32", name)
		}
	default:
		return 0, fmt.Errorf("element %q is not an int32", name)
	}
	if i < -1<<31 || i > 1<<31-1 {
		return 0, fmt.Errorf("element %q overflows int32", name)
	}
	return int32(i), nil
}

// Wire framing. Control replies carry a correlation id, everything else
// is an event.
type wireMessage struct {
	MessageType string         `json:"messageType"`
	Elements    map[string]any `json:"elements"`
}

type wireFrame struct {
	Op            string          `json:"op,omitempty"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Service       string          `json:"service,omitempty"`
	Operation     string          `json:"operation,omitempty"`
	Body          json.RawMessage `json:"body,omitempty"`

	Status string `json:"status,omitempty"`
	Reason string `json:"reason,omitempty"`

	EventType string        `json:"eventType,omitempty"`
	Messages  []wireMessage `json:"messages,omitempty"`
}

func parseFrame(data []byte) (wireFrame, error) {
	var f wireFrame
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&f); err != nil {
		return f, fmt.Errorf("unable to decode frame: %w", err)
	}
	return f, nil
}

func kindOf(eventType string) EventKind {
	switch eventType {
	case "PARTIAL_RESPONSE":
		return EventPartialResponse
	case "RESPONSE":
		return EventResponse
	case "SESSION_STATUS":
		return EventSessionStatus
	default:
		return EventOther
	}
}

// DecodeEvent decodes one wire frame into an event.
func DecodeEvent(data []byte) (Event, error) {
	f, err := parseFrame(data)
	if err != nil {
		return Event{}, err
	}
	return eventFromFrame(f), nil
}

func eventFromFrame(f wireFrame) Event {
	ev := Event{Kind: kindOf(f.EventType)}
	for _, m := range f.Messages {
		ev.Messages = append(ev.Messages, NewMessage(m.MessageType, m.Elements))
	}
	return ev
}

func terminatedEvent() Event {
	return Event{
		Kind:     EventSessionStatus,
		Messages: []Message{NewMessage(sessionTerminatedType, nil)},
	}
}
