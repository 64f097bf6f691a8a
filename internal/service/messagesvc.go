package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"skilltalk/internal/domain"
)

type MessagesStore interface {
	Insert(ctx context.Context, senderID, receiverID, text string) (domain.Message, error)
	Conversation(ctx context.Context, userA, userB string) ([]domain.Message, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Message, error)
}

type MessageUsersStore interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetSummaries(ctx context.Context, ids []string) (map[string]domain.UserSummary, error)
}

// MessageRelay is the live-delivery half of a send: best effort, no
// acknowledgment. Implemented by realtime.Hub.
type MessageRelay interface {
	RelayMessage(receiverID, senderID, text string, at time.Time) bool
}

type MessageService struct {
	Messages MessagesStore
	Users    MessageUsersStore
	Relay    MessageRelay
	Logger   *slog.Logger
	Now      func() time.Time
}

// Send persists the message and relays it live to the receiver if they
// are registered on the realtime channel. The receiver must resolve to a
// known user. The two halves are deliberately
// independent: the relay is attempted even when persistence fails, and a
// lost relay is never surfaced to the sender. Clients reconcile through
// stored history.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID, text string) (domain.Message, error) {
	now := s.Now
	if now == nil {
		now = time.Now
	}

	fields := map[string]string{}
	if senderID == "" {
		fields["senderId"] = "required"
	}
	if receiverID == "" {
		fields["receiverId"] = "required"
	}
	if strings.TrimSpace(text) == "" {
		fields["text"] = "required"
	}
	if len(fields) > 0 {
		return domain.Message{}, domain.NewValidationError(fields)
	}

	if _, err := s.Users.GetUserByID(ctx, receiverID); err != nil {
		return domain.Message{}, err
	}

	msg, insertErr := s.Messages.Insert(ctx, senderID, receiverID, text)
	if insertErr != nil {
		s.logger().Error("message persist failed", "sender", senderID, "err", insertErr)
	}

	if s.Relay != nil {
		at := now()
		if insertErr == nil {
			at = msg.CreatedAt
		}
		if !s.Relay.RelayMessage(receiverID, senderID, text, at) {
			s.logger().Debug("receiver not reachable for live delivery", "receiver", receiverID)
		}
	}

	return msg, insertErr
}

// Conversation returns the full history between the pair, oldest first.
// Symmetric: Conversation(a, b) and Conversation(b, a) return the same set.
func (s *MessageService) Conversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	if userA == "" || userB == "" {
		return nil, domain.NewValidationError(map[string]string{"user": "required"})
	}
	return s.Messages.Conversation(ctx, userA, userB)
}

// Inbox returns one entry per conversation peer, each carrying that
// peer's most recent message, most recent conversation first. It scans
// the user's messages newest-first and keeps the first message seen per
// peer.
func (s *MessageService) Inbox(ctx context.Context, userID string) ([]domain.InboxEntry, error) {
	if userID == "" {
		return nil, domain.NewValidationError(map[string]string{"userId": "required"})
	}

	msgs, err := s.Messages.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var peerOrder []string
	latest := make(map[string]domain.Message)
	for _, m := range msgs {
		peerID := m.SenderID
		if peerID == userID {
			peerID = m.ReceiverID
		}
		if _, seen := latest[peerID]; seen {
			continue
		}
		latest[peerID] = m
		peerOrder = append(peerOrder, peerID)
	}

	summaries, err := s.Users.GetSummaries(ctx, peerOrder)
	if err != nil {
		return nil, err
	}

	out := make([]domain.InboxEntry, 0, len(peerOrder))
	for _, peerID := range peerOrder {
		peer, ok := summaries[peerID]
		if !ok {
			peer = domain.UserSummary{ID: peerID}
		}
		out = append(out, domain.InboxEntry{Peer: peer, LastMessage: latest[peerID]})
	}
	return out, nil
}

func (s *MessageService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
