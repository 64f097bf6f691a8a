package postgres

import (
	"context"
	"errors"
	"fmt"

	"skilltalk/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessagesStore struct {
	pool *pgxpool.Pool
}

func NewMessagesStore(pool *pgxpool.Pool) *MessagesStore {
	return &MessagesStore{pool: pool}
}

func (s *MessagesStore) Insert(ctx context.Context, senderID, receiverID, text string) (domain.Message, error) {
	const q = `
		INSERT INTO messages (sender_id, receiver_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, sender_id, receiver_id, text, seen, created_at
	`

	m, err := scanMessage(s.pool.QueryRow(ctx, q, senderID, receiverID, text))
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23503" {
			return domain.Message{}, domain.ErrNotFound
		}
		return domain.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return m, nil
}

// Conversation returns every message between the pair, either direction,
// oldest first. Symmetric in its arguments.
func (s *MessagesStore) Conversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	const q = `
		SELECT id, sender_id, receiver_id, text, seen, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC
	`

	return s.listMessages(ctx, q, userA, userB)
}

// ListForUser returns all messages the user sent or received, newest
// first. The inbox projection scans this and keeps the first message per
// peer.
func (s *MessagesStore) ListForUser(ctx context.Context, userID string) ([]domain.Message, error) {
	const q = `
		SELECT id, sender_id, receiver_id, text, seen, created_at
		FROM messages
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC
	`

	return s.listMessages(ctx, q, userID)
}

func (s *MessagesStore) listMessages(ctx context.Context, q string, args ...any) ([]domain.Message, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return out, nil
}

func scanMessage(row pgx.Row) (domain.Message, error) {
	var (
		m            domain.Message
		idUUID       pgtype.UUID
		senderUUID   pgtype.UUID
		receiverUUID pgtype.UUID
	)
	err := row.Scan(&idUUID, &senderUUID, &receiverUUID, &m.Text, &m.Seen, &m.CreatedAt)
	if err != nil {
		return domain.Message{}, err
	}

	m.ID = uuidOrEmpty(idUUID)
	m.SenderID = uuidOrEmpty(senderUUID)
	m.ReceiverID = uuidOrEmpty(receiverUUID)
	return m, nil
}
