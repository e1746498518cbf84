package core

// Client is a single live connection as seen by the core layer. The hub never
// touches the underlying socket; it only pushes events into the client's
// buffered Events channel and drains its Commands channel.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	done chan struct{}
}

// NewClient constructs a client with initialized channels. buffer bounds the
// Events channel so a slow consumer drops events instead of stalling the hub.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 8
	}
	return &Client{
		ID:       id,
		Commands: make(chan *Command, buffer),
		Events:   make(chan *Event, buffer),
		done:     make(chan struct{}),
	}
}
