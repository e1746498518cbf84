package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandSetName assigns a new display name to the session.
	CommandSetName CommandKind = iota
	// CommandSendMessage broadcasts a chat message to everyone.
	CommandSendMessage
)

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind
	Name string
	Text string
}
