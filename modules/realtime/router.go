package realtime

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/example/task-tracker/domain/user"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Conn is the write side of a realtime connection.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
}

// Channel is one authenticated realtime connection. Its identity is fixed
// when the connection is authenticated and cannot be changed by the client.
type Channel struct {
	id       string
	identity user.Identity
	conn     Conn
	mu       sync.Mutex
}

// NewChannel binds conn to an authenticated identity.
func NewChannel(identity user.Identity, conn Conn) *Channel {
	return &Channel{
		id:       uuid.New().String(),
		identity: identity,
		conn:     conn,
	}
}

// ID returns the channel's unique identifier.
func (c *Channel) ID() string { return c.id }

// UserID returns the identity the channel was authenticated as.
func (c *Channel) UserID() string { return c.identity.UserID }

// Send writes v as a JSON text frame. Writes on one channel are serialized.
func (c *Channel) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Router maps each connected user to the most recently joined channel.
type Router struct {
	mu       sync.RWMutex
	channels map[string]*Channel
	logger   types.Logger
}

// NewRouter creates an empty Router.
func NewRouter(logger types.Logger) *Router {
	return &Router{
		channels: make(map[string]*Channel),
		logger:   logger,
	}
}

// Join registers ch under the identity it was authenticated with,
// replacing any earlier channel for the same user.
func (r *Router) Join(ch *Channel) {
	r.mu.Lock()
	prev, replaced := r.channels[ch.UserID()]
	r.channels[ch.UserID()] = ch
	r.mu.Unlock()

	if replaced && prev != ch {
		r.logger.Debug("Channel replaced", "user_id", ch.UserID(), "old_channel", prev.ID(), "new_channel", ch.ID())
	}
}

// NotifyOne delivers event to userID's channel. It reports whether the event
// was written; an absent user or a failed write drops the event.
func (r *Router) NotifyOne(userID string, event any) bool {
	r.mu.RLock()
	ch, ok := r.channels[userID]
	r.mu.RUnlock()

	if !ok {
		return false
	}

	if err := ch.Send(event); err != nil {
		r.logger.Warn("Failed to deliver notification", "user_id", userID, "channel", ch.ID(), "error", err)
		return false
	}
	return true
}

// disconnect removes ch if it is still the channel mapped for its user.
// A stale channel never removes a newer one.
func (r *Router) disconnect(ch *Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.channels[ch.UserID()]; ok && current == ch {
		delete(r.channels, ch.UserID())
	}
}

// Connected returns the number of users with a joined channel.
func (r *Router) Connected() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}

// IsConnected reports whether userID has a joined channel.
func (r *Router) IsConnected(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.channels[userID]
	return ok
}
