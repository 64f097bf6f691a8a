package domain

import "time"

// Message is immutable once stored. Seen defaults to false and is kept for
// client-side read markers.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Text       string    `json:"text"`
	Seen       bool      `json:"seen"`
	CreatedAt  time.Time `json:"created_at"`
}

// InboxEntry pairs a conversation peer with the most recent message
// exchanged with them.
type InboxEntry struct {
	Peer        UserSummary `json:"user"`
	LastMessage Message     `json:"last_message"`
}
