package turn

// EventType discriminates the four event kinds a turn can emit.
type EventType string

const (
	// EventConversation carries the resolved conversation ID, always first.
	EventConversation EventType = "conversation_id"
	// EventChunk carries one incremental text fragment.
	EventChunk EventType = "chunk"
	// EventComplete carries the persisted AI message ID, always last on success.
	EventComplete EventType = "complete"
	// EventError terminates the stream on any fatal fault.
	EventError EventType = "error"
)

// Event is one element of the ordered stream a turn delivers to its caller.
// The wire encoding (SSE, WebSocket frame) is the transport's concern.
type Event struct {
	Type           EventType `json:"type"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Content        string    `json:"content,omitempty"`
	MessageID      string    `json:"message_id,omitempty"`
	Message        string    `json:"message,omitempty"`
}

// Sink is an ordered, back-pressure-aware receiver for turn events.
// A Send error means the client is gone; the turn stops relaying but still
// runs to completion.
type Sink interface {
	Send(Event) error
}

// Collector is a Sink that buffers events in memory. Used by the
// non-streaming endpoint and by tests.
type Collector struct {
	Events []Event
}

func (c *Collector) Send(event Event) error {
	c.Events = append(c.Events, event)
	return nil
}

// Last returns the terminal event, if any were recorded.
func (c *Collector) Last() (Event, bool) {
	if len(c.Events) == 0 {
		return Event{}, false
	}
	return c.Events[len(c.Events)-1], true
}
