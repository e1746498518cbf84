package core

import "fmt"

// Session is the per-connection record of identity and display name. The
// registry owns sessions; the transport layer owns the actual connection.
type Session struct {
	Client *Client
	ID     int64
	Name   string
}

// Registry is the in-memory table of active sessions, keyed by client and
// kept in registration order. It is not safe for concurrent use; the hub
// serializes all access.
type Registry struct {
	sessions map[*Client]*Session
	order    []*Session
	lastID   int64
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[*Client]*Session),
	}
}

// Register assigns the next numeric identity to the client, starting at 1,
// and creates a session under the default name "User<id>".
func (r *Registry) Register(c *Client) *Session {
	r.lastID++
	s := &Session{
		Client: c,
		ID:     r.lastID,
		Name:   fmt.Sprintf("User%d", r.lastID),
	}
	r.sessions[c] = s
	r.order = append(r.order, s)
	return s
}

// Rename replaces the session's display name and returns the prior and new
// names for notification text. The name is accepted as-is; any validation is
// the client's problem.
func (r *Registry) Rename(c *Client, name string) (oldName, newName string, ok bool) {
	s, ok := r.sessions[c]
	if !ok {
		return "", "", false
	}
	oldName = s.Name
	s.Name = name
	return oldName, name, true
}

// Lookup returns the session associated with the client, if any.
func (r *Registry) Lookup(c *Client) (*Session, bool) {
	s, ok := r.sessions[c]
	return s, ok
}

// Remove deletes the client's session and returns it. Removing an unknown
// client is a no-op.
func (r *Registry) Remove(c *Client) (*Session, bool) {
	s, ok := r.sessions[c]
	if !ok {
		return nil, false
	}
	delete(r.sessions, c)
	for i, entry := range r.order {
		if entry == s {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return s, true
}

// Sessions returns all current sessions in registration order. The returned
// slice is shared; callers must not mutate it.
func (r *Registry) Sessions() []*Session {
	return r.order
}

// Names returns a snapshot of all current display names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.order))
	for _, s := range r.order {
		names = append(names, s.Name)
	}
	return names
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}
