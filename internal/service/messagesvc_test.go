package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"skilltalk/internal/domain"
)

type stubMessagesStore struct {
	t *testing.T

	insertFunc       func(context.Context, string, string, string) (domain.Message, error)
	conversationFunc func(context.Context, string, string) ([]domain.Message, error)
	listForUserFunc  func(context.Context, string) ([]domain.Message, error)
}

func (s *stubMessagesStore) Insert(ctx context.Context, senderID, receiverID, text string) (domain.Message, error) {
	if s.insertFunc != nil {
		return s.insertFunc(ctx, senderID, receiverID, text)
	}
	s.t.Fatalf("Insert called unexpectedly")
	return domain.Message{}, errors.New("unexpected call")
}

func (s *stubMessagesStore) Conversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	if s.conversationFunc != nil {
		return s.conversationFunc(ctx, userA, userB)
	}
	s.t.Fatalf("Conversation called unexpectedly")
	return nil, errors.New("unexpected call")
}

func (s *stubMessagesStore) ListForUser(ctx context.Context, userID string) ([]domain.Message, error) {
	if s.listForUserFunc != nil {
		return s.listForUserFunc(ctx, userID)
	}
	s.t.Fatalf("ListForUser called unexpectedly")
	return nil, errors.New("unexpected call")
}

type stubSummariesStore struct {
	summaries map[string]domain.UserSummary

	getUserByIDFunc func(context.Context, string) (domain.User, error)
}

func (s *stubSummariesStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	if s.getUserByIDFunc != nil {
		return s.getUserByIDFunc(ctx, id)
	}
	return domain.User{ID: id}, nil
}

func (s *stubSummariesStore) GetSummaries(_ context.Context, ids []string) (map[string]domain.UserSummary, error) {
	out := make(map[string]domain.UserSummary, len(ids))
	for _, id := range ids {
		if sum, ok := s.summaries[id]; ok {
			out[id] = sum
		}
	}
	return out, nil
}

type relayCall struct {
	receiverID string
	senderID   string
	text       string
	at         time.Time
}

type stubRelay struct {
	reachable bool
	calls     []relayCall
}

func (r *stubRelay) RelayMessage(receiverID, senderID, text string, at time.Time) bool {
	r.calls = append(r.calls, relayCall{receiverID, senderID, text, at})
	return r.reachable
}

func TestSendPersistsAndRelays(t *testing.T) {
	createdAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store := &stubMessagesStore{
		t: t,
		insertFunc: func(_ context.Context, senderID, receiverID, text string) (domain.Message, error) {
			return domain.Message{
				ID: "msg-1", SenderID: senderID, ReceiverID: receiverID,
				Text: text, CreatedAt: createdAt,
			}, nil
		},
	}
	relay := &stubRelay{reachable: true}

	svc := &MessageService{Messages: store, Users: &stubSummariesStore{}, Relay: relay}
	msg, err := svc.Send(context.Background(), "user-a", "user-b", "hi")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if msg.ID != "msg-1" || msg.Text != "hi" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if len(relay.calls) != 1 {
		t.Fatalf("expected one relay call, got %d", len(relay.calls))
	}
	call := relay.calls[0]
	if call.receiverID != "user-b" || call.senderID != "user-a" || call.text != "hi" {
		t.Fatalf("unexpected relay call: %+v", call)
	}
	if !call.at.Equal(createdAt) {
		t.Fatalf("relay timestamp should be the stored created_at: %s", call.at)
	}
}

func TestSendValidatesInput(t *testing.T) {
	svc := &MessageService{Messages: &stubMessagesStore{t: t}}

	for _, tc := range []struct{ sender, receiver, text string }{
		{"", "user-b", "hi"},
		{"user-a", "", "hi"},
		{"user-a", "user-b", "   "},
	} {
		_, err := svc.Send(context.Background(), tc.sender, tc.receiver, tc.text)
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("Send(%q,%q,%q): expected validation error, got %v", tc.sender, tc.receiver, tc.text, err)
		}
	}
}

func TestSendRelaysEvenWhenPersistFails(t *testing.T) {
	store := &stubMessagesStore{
		t: t,
		insertFunc: func(context.Context, string, string, string) (domain.Message, error) {
			return domain.Message{}, errors.New("db down")
		},
	}
	relay := &stubRelay{reachable: true}
	now := time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)

	svc := &MessageService{Messages: store, Users: &stubSummariesStore{}, Relay: relay, Now: func() time.Time { return now }}
	_, err := svc.Send(context.Background(), "user-a", "user-b", "hi")
	if err == nil {
		t.Fatalf("expected persistence error to surface")
	}

	if len(relay.calls) != 1 {
		t.Fatalf("expected relay attempt despite persist failure, got %d calls", len(relay.calls))
	}
	if !relay.calls[0].at.Equal(now) {
		t.Fatalf("unexpected relay timestamp: %s", relay.calls[0].at)
	}
}

func TestSendToUnknownReceiverIsNotFound(t *testing.T) {
	users := &stubSummariesStore{
		getUserByIDFunc: func(_ context.Context, id string) (domain.User, error) {
			return domain.User{}, domain.ErrNotFound
		},
	}
	relay := &stubRelay{reachable: true}

	// Insert must not run for an unresolvable receiver; the nil func
	// makes the stub fail the test if it does.
	svc := &MessageService{Messages: &stubMessagesStore{t: t}, Users: users, Relay: relay}
	_, err := svc.Send(context.Background(), "user-a", "ghost", "hi")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(relay.calls) != 0 {
		t.Fatalf("expected no relay attempt, got %d calls", len(relay.calls))
	}
}

func TestSendDoesNotMutateClock(t *testing.T) {
	store := &stubMessagesStore{
		t: t,
		insertFunc: func(_ context.Context, senderID, receiverID, text string) (domain.Message, error) {
			return domain.Message{ID: "msg-1", SenderID: senderID, ReceiverID: receiverID, Text: text}, nil
		},
	}

	svc := &MessageService{Messages: store, Users: &stubSummariesStore{}, Relay: &stubRelay{}}
	if _, err := svc.Send(context.Background(), "user-a", "user-b", "hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if svc.Now != nil {
		t.Fatalf("Send must not write the Now field")
	}
}

func TestSendToUnreachableReceiverStillStores(t *testing.T) {
	store := &stubMessagesStore{
		t: t,
		insertFunc: func(_ context.Context, senderID, receiverID, text string) (domain.Message, error) {
			return domain.Message{ID: "msg-1", SenderID: senderID, ReceiverID: receiverID, Text: text}, nil
		},
	}
	relay := &stubRelay{reachable: false}

	svc := &MessageService{Messages: store, Users: &stubSummariesStore{}, Relay: relay}
	msg, err := svc.Send(context.Background(), "user-a", "user-c", "hi")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.ID != "msg-1" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestInboxKeepsLatestMessagePerPeer(t *testing.T) {
	t3 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := t3.Add(-time.Hour)
	t1 := t3.Add(-2 * time.Hour)

	// Newest first, as the store returns them.
	msgs := []domain.Message{
		{ID: "m3", SenderID: "user-c", ReceiverID: "user-a", Text: "newest from carol", CreatedAt: t3},
		{ID: "m2", SenderID: "user-a", ReceiverID: "user-b", Text: "newest with bob", CreatedAt: t2},
		{ID: "m1", SenderID: "user-b", ReceiverID: "user-a", Text: "older from bob", CreatedAt: t1},
	}

	store := &stubMessagesStore{
		t: t,
		listForUserFunc: func(_ context.Context, userID string) ([]domain.Message, error) {
			if userID != "user-a" {
				t.Fatalf("unexpected user id: %s", userID)
			}
			return msgs, nil
		},
	}
	users := &stubSummariesStore{summaries: map[string]domain.UserSummary{
		"user-b": {ID: "user-b", Handle: "bob"},
		"user-c": {ID: "user-c", Handle: "carol"},
	}}

	svc := &MessageService{Messages: store, Users: users}
	inbox, err := svc.Inbox(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("Inbox: %v", err)
	}

	if len(inbox) != 2 {
		t.Fatalf("expected 2 inbox entries, got %d", len(inbox))
	}
	if inbox[0].Peer.Handle != "carol" || inbox[0].LastMessage.ID != "m3" {
		t.Fatalf("unexpected first entry: %+v", inbox[0])
	}
	if inbox[1].Peer.Handle != "bob" || inbox[1].LastMessage.ID != "m2" {
		t.Fatalf("unexpected second entry: %+v", inbox[1])
	}
}

func TestInboxUnknownPeerFallsBackToBareID(t *testing.T) {
	store := &stubMessagesStore{
		t: t,
		listForUserFunc: func(context.Context, string) ([]domain.Message, error) {
			return []domain.Message{
				{ID: "m1", SenderID: "deleted-user", ReceiverID: "user-a", Text: "hello"},
			}, nil
		},
	}
	users := &stubSummariesStore{summaries: map[string]domain.UserSummary{}}

	svc := &MessageService{Messages: store, Users: users}
	inbox, err := svc.Inbox(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("Inbox: %v", err)
	}
	if len(inbox) != 1 || inbox[0].Peer.ID != "deleted-user" || inbox[0].Peer.Handle != "" {
		t.Fatalf("unexpected inbox: %+v", inbox)
	}
}

func TestConversationSymmetry(t *testing.T) {
	set := []domain.Message{{ID: "m1", SenderID: "user-a", ReceiverID: "user-b", Text: "hi"}}
	store := &stubMessagesStore{
		t: t,
		conversationFunc: func(_ context.Context, userA, userB string) ([]domain.Message, error) {
			if (userA == "user-a" && userB == "user-b") || (userA == "user-b" && userB == "user-a") {
				return set, nil
			}
			t.Fatalf("unexpected pair: %s %s", userA, userB)
			return nil, nil
		},
	}

	svc := &MessageService{Messages: store}
	ab, err := svc.Conversation(context.Background(), "user-a", "user-b")
	if err != nil {
		t.Fatalf("Conversation: %v", err)
	}
	ba, err := svc.Conversation(context.Background(), "user-b", "user-a")
	if err != nil {
		t.Fatalf("Conversation: %v", err)
	}
	if len(ab) != 1 || len(ba) != 1 || ab[0].ID != ba[0].ID {
		t.Fatalf("expected identical sets: %+v vs %+v", ab, ba)
	}
}
