package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventSystem carries an informational notice.
	EventSystem EventKind = iota
	// EventHistory delivers the retained message backlog to one client.
	EventHistory
	// EventChatMessage notifies clients about a live chat message.
	EventChatMessage
	// EventUserJoined notifies clients that a user joined with the new roster.
	EventUserJoined
	// EventUserLeft notifies clients that a user left with the new roster.
	EventUserLeft
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Notice   string    // system notices and join/leave human-readable text
	User     string    // join/leave display name
	UserID   int64     // set on the welcome notice so the client learns its id
	Message  Message   // for EventChatMessage
	Messages []Message // for EventHistory
	Roster   []string  // for EventUserJoined/EventUserLeft
}
