package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Hub owns the registry and history and serializes every connection event
// against them. All state mutation happens inside Run; registration,
// commands, and removal are delivered to the loop over channels, so handler
// steps never interleave.
type Hub struct {
	registry *Registry
	history  *History
	log      *zerolog.Logger
	now      func() time.Time

	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand
}

type clientCommand struct {
	client *Client
	cmd    *Command
}

// NewHub creates a hub with the given history capacity.
func NewHub(historyLimit int, logger *zerolog.Logger) *Hub {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &Hub{
		registry:   NewRegistry(),
		history:    NewHistory(historyLimit),
		log:        logger,
		now:        time.Now,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan clientCommand),
	}
}

// RegisterClient hands a new connection to the hub loop. Blocks until the
// loop has created the session and sent the welcome notice.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient removes the connection's session and announces the leave.
// Safe to call for a client that was never registered or already removed.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Run processes connection events until the context is cancelled. It should
// be started once, before any client is registered.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.handleRegister(ctx, c)
		case c := <-h.unregister:
			h.handleUnregister(c)
		case cc := <-h.commands:
			h.dispatch(cc.client, cc.cmd)
		}
	}
}

// handleRegister creates the session and starts a pump that feeds the
// client's commands into the serialized loop.
func (h *Hub) handleRegister(ctx context.Context, c *Client) {
	s := h.registry.Register(c)
	h.log.Info().Str("client_id", c.ID).Int64("user_id", s.ID).Msg("client connected")

	go h.pumpCommands(ctx, c)

	h.sendTo(c, &Event{
		Kind:   EventSystem,
		Notice: "Welcome to the chat room! Please set your username.",
		UserID: s.ID,
	})
}

func (h *Hub) pumpCommands(ctx context.Context, c *Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			select {
			case h.commands <- clientCommand{client: c, cmd: cmd}:
			case <-ctx.Done():
				return
			case <-c.done:
				return
			}
		}
	}
}

func (h *Hub) dispatch(c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandSetName:
		h.handleSetName(c, cmd.Name)
	case CommandSendMessage:
		h.handleSendMessage(c, cmd.Text)
	default:
		h.log.Warn().Str("client_id", c.ID).Int("kind", int(cmd.Kind)).Msg("unknown command kind")
	}
}

// handleSetName drives the anonymous-to-named transition. The order of the
// four notifications is part of the observable protocol: rename notice,
// history replay, confirmation, join notice.
func (h *Hub) handleSetName(c *Client, name string) {
	oldName, newName, ok := h.registry.Rename(c, name)
	if !ok {
		h.log.Warn().Str("client_id", c.ID).Msg("rename for unregistered client")
		return
	}
	h.log.Info().Str("client_id", c.ID).Str("old", oldName).Str("new", newName).Msg("client renamed")

	h.broadcast(&Event{
		Kind:   EventSystem,
		Notice: fmt.Sprintf("%s changed their name to %s", oldName, newName),
	}, c)

	if h.history.Len() > 0 {
		h.sendTo(c, &Event{
			Kind:     EventHistory,
			Messages: h.history.Snapshot(),
		})
	}

	h.sendTo(c, &Event{
		Kind:   EventSystem,
		Notice: fmt.Sprintf("Your username has been set to %s", newName),
	})

	h.broadcast(&Event{
		Kind:   EventUserJoined,
		User:   newName,
		Notice: fmt.Sprintf("%s joined the chat", newName),
		Roster: h.registry.Names(),
	}, c)
}

// handleSendMessage accepts chat from named and anonymous sessions alike;
// an anonymous sender is attributed to its default User<id> name.
func (h *Hub) handleSendMessage(c *Client, text string) {
	s, ok := h.registry.Lookup(c)
	if !ok {
		h.log.Warn().Str("client_id", c.ID).Msg("message from unregistered client")
		return
	}

	msg := Message{
		From:      s.Name,
		Text:      text,
		Timestamp: h.now().Format(TimeLayout),
	}
	h.history.Append(msg)

	h.broadcast(&Event{
		Kind:    EventChatMessage,
		Message: msg,
	}, nil)
}

func (h *Hub) handleUnregister(c *Client) {
	s, ok := h.registry.Remove(c)
	if !ok {
		return
	}
	close(c.done)
	h.log.Info().Str("client_id", c.ID).Str("user", s.Name).Msg("client disconnected")

	h.broadcast(&Event{
		Kind:   EventUserLeft,
		User:   s.Name,
		Notice: fmt.Sprintf("%s left the chat", s.Name),
		Roster: h.registry.Names(),
	}, nil)
}

// broadcast fans one event out to every registered client, skipping exclude
// if given. Delivery is best-effort and independent per client: a full
// buffer drops the event for that client only.
func (h *Hub) broadcast(event *Event, exclude *Client) {
	for _, s := range h.registry.Sessions() {
		if s.Client == exclude {
			continue
		}
		h.sendTo(s.Client, event)
	}
}

// sendTo delivers one event to one client without blocking.
func (h *Hub) sendTo(c *Client, event *Event) {
	select {
	case c.Events <- event:
	default:
		h.log.Debug().Str("client_id", c.ID).Int("kind", int(event.Kind)).Msg("dropping event for slow client")
	}
}
