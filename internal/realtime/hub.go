package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"skilltalk/internal/domain"

	"github.com/google/uuid"
)

// Event names on the realtime channel.
const (
	EventAddUser      = "addUser"
	EventSendMessage  = "sendMessage"
	EventGetMessage   = "getMessage"
	EventFollow       = "follow"
	EventUnfollow     = "unfollow"
	EventFollowUpdate = "follow-update"
)

// Envelope is one frame on the channel, in either direction.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Conn is the subset of *websocket.Conn the hub needs. Tests substitute
// an in-memory implementation.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

// MessageSender persists and relays a direct message. Implemented by
// service.MessageService; the indirection keeps the hub free of a
// package cycle with the service layer.
type MessageSender interface {
	Send(ctx context.Context, senderID, receiverID, text string) (domain.Message, error)
}

type addUserData struct {
	UserID string `json:"userId"`
}

type sendMessageData struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Text       string `json:"text"`
}

type followData struct {
	SenderID string `json:"senderId"`
	TargetID string `json:"targetId"`
}

type getMessageData struct {
	SenderID  string `json:"senderId"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

type followUpdateData struct {
	SenderID string `json:"senderId"`
	TargetID string `json:"targetId"`
	Event    string `json:"event"`
}

// Hub is the process-wide presence table: user id -> live connection
// handle. A connection only enters the table when the client announces
// itself with an addUser event, and it is never removed on disconnect;
// a later delivery to a dead handle reaches no one, and a reconnecting
// client overwrites its old entry. Known limitation inherited from the
// original design.
type Hub struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[string]*client

	messages MessageSender
}

type client struct {
	id string

	mu   sync.Mutex
	conn Conn
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[string]*client),
	}
}

// SetMessageSender wires the message service in after construction; the
// service itself holds the hub as its relay.
func (h *Hub) SetMessageSender(m MessageSender) { h.messages = m }

// HandleConn runs the read loop for one connection until it errors or
// closes. It does not touch the presence table on exit.
func (h *Hub) HandleConn(conn Conn) {
	c := &client{id: uuid.NewString(), conn: conn}
	h.logger.Debug("realtime connection opened", "conn_id", c.id)

	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			h.logger.Debug("realtime connection closed", "conn_id", c.id, "err", err)
			return
		}
		h.dispatch(context.Background(), c, env)
	}
}

func (h *Hub) dispatch(ctx context.Context, c *client, env Envelope) {
	switch env.Event {
	case EventAddUser:
		var data addUserData
		if err := json.Unmarshal(env.Data, &data); err != nil || data.UserID == "" {
			h.logger.Warn("bad addUser payload", "conn_id", c.id)
			return
		}
		h.register(data.UserID, c)

	case EventSendMessage:
		var data sendMessageData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			h.logger.Warn("bad sendMessage payload", "conn_id", c.id)
			return
		}
		if h.messages == nil {
			h.logger.Warn("sendMessage received but no message sender wired")
			return
		}
		if _, err := h.messages.Send(ctx, data.SenderID, data.ReceiverID, data.Text); err != nil {
			h.logger.Warn("socket message send failed", "sender", data.SenderID, "err", err)
		}

	case EventFollow, EventUnfollow:
		var data followData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			h.logger.Warn("bad follow payload", "conn_id", c.id, "event", env.Event)
			return
		}
		h.NotifyFollowChange(env.Event, data.SenderID, data.TargetID)

	default:
		h.logger.Warn("unknown realtime event", "event", env.Event, "conn_id", c.id)
	}
}

func (h *Hub) register(userID string, c *client) {
	h.mu.Lock()
	prev := h.clients[userID]
	h.clients[userID] = c
	h.mu.Unlock()

	if prev != nil && prev.id != c.id {
		h.logger.Info("presence entry overwritten", "user_id", userID, "conn_id", c.id)
	} else {
		h.logger.Info("user registered on realtime channel", "user_id", userID, "conn_id", c.id)
	}
}

// RelayMessage pushes a getMessage event to the receiver if a handle is
// registered. Best effort: a stale or broken handle loses the event and
// the caller is not told beyond the boolean.
func (h *Hub) RelayMessage(receiverID, senderID, text string, at time.Time) bool {
	c := h.lookup(receiverID)
	if c == nil {
		return false
	}

	err := c.writeEvent(EventGetMessage, getMessageData{
		SenderID:  senderID,
		Text:      text,
		Timestamp: at.UnixMilli(),
	})
	if err != nil {
		h.logger.Warn("relay write failed", "receiver", receiverID, "err", err)
		return false
	}
	return true
}

// NotifyFollowChange delivers a follow-update to the two involved
// parties only, not to every connected client.
func (h *Hub) NotifyFollowChange(event, senderID, targetID string) {
	data := followUpdateData{SenderID: senderID, TargetID: targetID, Event: event}
	for _, userID := range []string{senderID, targetID} {
		c := h.lookup(userID)
		if c == nil {
			continue
		}
		if err := c.writeEvent(EventFollowUpdate, data); err != nil {
			h.logger.Warn("follow-update write failed", "user_id", userID, "err", err)
		}
	}
}

func (h *Hub) lookup(userID string) *client {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clients[userID]
}

func (c *client) writeEvent(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(Envelope{Event: event, Data: raw})
}
