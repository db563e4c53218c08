package realtime

import (
	"encoding/json"

	"github.com/example/task-tracker/domain/user"
	"github.com/gofiber/contrib/websocket"
)

// WebSocketHandler serves realtime connections. The route must sit behind
// the authentication guard, which stores the caller's *user.Identity in the
// connection locals.
func (r *Router) WebSocketHandler() func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		identity, ok := c.Locals(user.IdentityKey).(*user.Identity)
		if !ok || identity == nil {
			if data, err := json.Marshal(errorFrame("unauthenticated")); err == nil {
				_ = c.WriteMessage(websocket.TextMessage, data)
			}
			_ = c.Close()
			return
		}

		ch := NewChannel(*identity, c)
		r.logger.Info("WebSocket connected", "user_id", ch.UserID(), "channel", ch.ID())

		defer func() {
			r.disconnect(ch)
			_ = c.Close()
			r.logger.Info("WebSocket disconnected", "user_id", ch.UserID(), "channel", ch.ID())
		}()

		r.serve(ch, func() ([]byte, error) {
			_, msg, err := c.ReadMessage()
			return msg, err
		})
	}
}

// serve runs the read loop for ch until read fails.
func (r *Router) serve(ch *Channel, read func() ([]byte, error)) {
	for {
		data, err := read()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				r.logger.Warn("WebSocket read error", "user_id", ch.UserID(), "error", err)
			}
			return
		}
		r.handleFrame(ch, data)
	}
}

func (r *Router) handleFrame(ch *Channel, data []byte) {
	var frame ClientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		r.reply(ch, errorFrame("invalid message format"))
		return
	}

	switch frame.Type {
	case frameJoin:
		if frame.UserID != "" && frame.UserID != ch.UserID() {
			r.logger.Warn("Rejected join for another identity", "user_id", ch.UserID(), "requested", frame.UserID)
			r.reply(ch, errorFrame("cannot join as another user"))
			return
		}
		r.Join(ch)
		r.reply(ch, JoinedFrame{Type: frameJoined, UserID: ch.UserID()})
	case framePing:
		r.reply(ch, ClientFrame{Type: framePong})
	default:
		r.reply(ch, errorFrame("unknown message type: "+frame.Type))
	}
}

func (r *Router) reply(ch *Channel, v any) {
	if err := ch.Send(v); err != nil {
		r.logger.Warn("Failed to send frame", "user_id", ch.UserID(), "error", err)
	}
}
