// Package proto defines the JSON wire format spoken over the WebSocket.
// Events are flat objects discriminated by a "type" field, one logical event
// per text message, in both directions.
package proto

// Inbound event types (client to server).
const (
	InboundTypeUsername = "username"
	InboundTypeMessage  = "message"
)

// Outbound event types (server to client).
const (
	OutboundTypeSystem     = "system"
	OutboundTypeHistory    = "history"
	OutboundTypeMessage    = "message"
	OutboundTypeUserJoined = "user-joined"
	OutboundTypeUserLeft   = "user-left"
)

// Inbound is a client event. Only the field matching Type is meaningful.
type Inbound struct {
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}

// SystemEvent is an informational notice. UserID is set on the welcome
// notice so a client learns its assigned identity.
type SystemEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	UserID  int64  `json:"userId,omitempty"`
}

// ChatMessage is one chat entry as delivered live or in a history replay.
type ChatMessage struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// HistoryEvent replays the retained backlog to a newly named client.
type HistoryEvent struct {
	Type     string        `json:"type"`
	Messages []ChatMessage `json:"messages"`
}

// MessageEvent is a live chat message.
type MessageEvent struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// PresenceEvent announces a join or leave along with the updated roster.
type PresenceEvent struct {
	Type        string   `json:"type"`
	Username    string   `json:"username"`
	Message     string   `json:"message"`
	OnlineUsers []string `json:"onlineUsers"`
}
