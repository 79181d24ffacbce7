package eventbridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// ProtocolVersion identifies the bridge contract version exposed via /health.
	ProtocolVersion = "1.0.0"
	// EventSchemaVersion is the currently supported inbound event version.
	EventSchemaVersion = 1
)

// Event types accepted by the bridge.
const (
	TypeReasoning    = "reasoning"
	TypeMessage      = "message"
	TypeTool         = "tool"
	TypeNotice       = "notice"
	TypeSessionStart = "session_start"
	TypeSessionEnd   = "session_end"
	TypeError        = "error"
)

var knownTypes = map[string]struct{}{
	TypeReasoning:    {},
	TypeMessage:      {},
	TypeTool:         {},
	TypeNotice:       {},
	TypeSessionStart: {},
	TypeSessionEnd:   {},
	TypeError:        {},
}

// Event captures a single transcript item posted by an agent.
type Event struct {
	Version    int             `json:"version"`
	EventID    string          `json:"event_id"`
	Sequence   int64           `json:"sequence"`
	Type       string          `json:"type"`
	ClientTime time.Time       `json:"client_time"`
	ServerTime time.Time       `json:"server_time"`
	ThreadID   string          `json:"thread_id"`
	Agent      string          `json:"agent,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Payload is the body shared by every event type.
type Payload struct {
	Text string `json:"text"`
	// Name is set on tool events.
	Name string `json:"name,omitempty"`
}

// Normalize applies defaults and canonical formatting before validation.
// Events posted without an id get a random one.
func (e *Event) Normalize() {
	if e == nil {
		return
	}
	if e.Version == 0 {
		e.Version = EventSchemaVersion
	}
	e.EventID = strings.TrimSpace(e.EventID)
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	e.Type = strings.ToLower(strings.TrimSpace(e.Type))
	e.ThreadID = strings.TrimSpace(e.ThreadID)
	e.Agent = strings.TrimSpace(e.Agent)
}

// StampServerTime overwrites ServerTime with the supplied clock reading (UTC).
func (e *Event) StampServerTime(now time.Time) {
	if e == nil {
		return
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	e.ServerTime = now.UTC()
}

// Validate enforces baseline schema requirements for incoming events.
func (e Event) Validate() error {
	if e.Version != EventSchemaVersion {
		return fmt.Errorf("version %d not supported", e.Version)
	}
	if e.EventID == "" {
		return errors.New("event_id is required")
	}
	if e.Type == "" {
		return errors.New("type is required")
	}
	if _, ok := knownTypes[e.Type]; !ok {
		return fmt.Errorf("type %q not supported", e.Type)
	}
	if e.ThreadID == "" {
		return errors.New("thread_id is required")
	}
	if len(e.Payload) > 0 {
		var p Payload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return fmt.Errorf("payload: %w", err)
		}
	}
	return nil
}

// DecodePayload returns the event payload. A missing payload decodes to the
// zero value.
func (e Event) DecodePayload() (Payload, error) {
	var p Payload
	if len(e.Payload) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return p, err
	}
	return p, nil
}

// Text is the payload text, or "" when the payload is unreadable.
func (e Event) Text() string {
	p, _ := e.DecodePayload()
	return p.Text
}

// EventProcessor consumes validated events.
type EventProcessor interface {
	HandleEvent(Event) error
}

// EventProcessorFunc adapts a function into an EventProcessor.
type EventProcessorFunc func(Event) error

// HandleEvent executes f(e).
func (f EventProcessorFunc) HandleEvent(e Event) error {
	if f == nil {
		return nil
	}
	return f(e)
}

// Logger records bridge status information. It matches logging.Logger's signature.
type Logger interface {
	Printf(format string, args ...any)
}

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Accepted      uint64 `json:"accepted"`
	Streams       int    `json:"streams"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type eventResponse struct {
	Status     string    `json:"status"`
	EventID    string    `json:"event_id"`
	ServerTime time.Time `json:"server_time"`
}

type errorResponse struct {
	Error string `json:"error"`
}
