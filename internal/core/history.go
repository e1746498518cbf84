package core

// DefaultHistoryLimit bounds the retained message backlog.
const DefaultHistoryLimit = 100

// History is a bounded FIFO log of recent chat messages. When full, appending
// evicts the oldest entry. Not safe for concurrent use; the hub serializes
// all access.
type History struct {
	limit    int
	messages []Message
}

// NewHistory constructs a history buffer. A non-positive limit falls back to
// DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{
		limit:    limit,
		messages: make([]Message, 0, limit),
	}
}

// Append adds a message to the tail, evicting the head once over capacity.
func (h *History) Append(m Message) {
	h.messages = append(h.messages, m)
	if len(h.messages) > h.limit {
		h.messages = h.messages[1:]
	}
}

// Snapshot returns the retained messages, oldest first, as a copy that later
// appends cannot mutate.
func (h *History) Snapshot() []Message {
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of retained messages.
func (h *History) Len() int {
	return len(h.messages)
}
