package postgres

import (
	"context"
	"errors"
	"fmt"

	"skilltalk/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FollowsStore keeps the relationship graph as single edge rows
// (requester -> addressee, status), so both users' views project from
// the same record and cannot drift apart.
type FollowsStore struct {
	pool *pgxpool.Pool
}

func NewFollowsStore(pool *pgxpool.Pool) *FollowsStore {
	return &FollowsStore{pool: pool}
}

func (s *FollowsStore) CreateRequest(ctx context.Context, requesterID, addresseeID string) error {
	const q = `
		INSERT INTO follows (requester_id, addressee_id, status)
		VALUES ($1, $2, 'pending')
	`

	_, err := s.pool.Exec(ctx, q, requesterID, addresseeID)
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) {
			switch {
			case pgerr.Code == "23505" && pgerr.ConstraintName == "follows_pair_uq":
				return domain.ErrFollowRequestExists
			case pgerr.Code == "23503":
				return domain.ErrNotFound
			}
		}
		return fmt.Errorf("create follow request: %w", err)
	}
	return nil
}

// Accept flips the pending edge requester->addressee to accepted. It
// reports whether an edge was actually flipped; a missing edge is the
// caller's call to treat as a no-op or an error.
func (s *FollowsStore) Accept(ctx context.Context, requesterID, addresseeID string) (bool, error) {
	const q = `
		UPDATE follows
		SET status = 'accepted', updated_at = now()
		WHERE requester_id = $1 AND addressee_id = $2 AND status = 'pending'
	`

	ct, err := s.pool.Exec(ctx, q, requesterID, addresseeID)
	if err != nil {
		return false, fmt.Errorf("accept follow request: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

// Delete removes the edge requester->addressee regardless of status.
// Used by both reject (addressee side) and unfollow (requester side).
func (s *FollowsStore) Delete(ctx context.Context, requesterID, addresseeID string) (bool, error) {
	const q = `
		DELETE FROM follows
		WHERE requester_id = $1 AND addressee_id = $2
	`

	ct, err := s.pool.Exec(ctx, q, requesterID, addresseeID)
	if err != nil {
		return false, fmt.Errorf("delete follow edge: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (s *FollowsStore) ListAccepted(ctx context.Context, userID string, direction domain.FollowDirection) ([]domain.FollowEntry, error) {
	var q string
	switch direction {
	case domain.DirectionFollowers:
		q = `
			SELECT u.id, u.handle, f.status, f.created_at
			FROM follows f
			JOIN users u ON u.id = f.requester_id
			WHERE f.addressee_id = $1 AND f.status = 'accepted'
			ORDER BY f.created_at ASC
		`
	case domain.DirectionFollowing:
		q = `
			SELECT u.id, u.handle, f.status, f.created_at
			FROM follows f
			JOIN users u ON u.id = f.addressee_id
			WHERE f.requester_id = $1 AND f.status = 'accepted'
			ORDER BY f.created_at ASC
		`
	default:
		return nil, fmt.Errorf("list accepted: unknown direction %q", direction)
	}

	return s.listEntries(ctx, q, userID)
}

// ListPendingIncoming is the notifications view: pending requests
// addressed to the user, oldest first.
func (s *FollowsStore) ListPendingIncoming(ctx context.Context, userID string) ([]domain.FollowEntry, error) {
	const q = `
		SELECT u.id, u.handle, f.status, f.created_at
		FROM follows f
		JOIN users u ON u.id = f.requester_id
		WHERE f.addressee_id = $1 AND f.status = 'pending'
		ORDER BY f.created_at ASC
	`

	return s.listEntries(ctx, q, userID)
}

// ListAll returns every edge touching the user, both directions and both
// statuses, for populating a full profile view.
func (s *FollowsStore) ListAll(ctx context.Context, userID string, direction domain.FollowDirection) ([]domain.FollowEntry, error) {
	var q string
	switch direction {
	case domain.DirectionFollowers:
		q = `
			SELECT u.id, u.handle, f.status, f.created_at
			FROM follows f
			JOIN users u ON u.id = f.requester_id
			WHERE f.addressee_id = $1
			ORDER BY f.created_at ASC
		`
	case domain.DirectionFollowing:
		q = `
			SELECT u.id, u.handle, f.status, f.created_at
			FROM follows f
			JOIN users u ON u.id = f.addressee_id
			WHERE f.requester_id = $1
			ORDER BY f.created_at ASC
		`
	default:
		return nil, fmt.Errorf("list all: unknown direction %q", direction)
	}

	return s.listEntries(ctx, q, userID)
}

func (s *FollowsStore) listEntries(ctx context.Context, q, userID string) ([]domain.FollowEntry, error) {
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list follow entries: %w", err)
	}
	defer rows.Close()

	var out []domain.FollowEntry
	for rows.Next() {
		var e domain.FollowEntry
		var peerUUID pgtype.UUID
		if err := rows.Scan(&peerUUID, &e.Peer.Handle, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan follow entry: %w", err)
		}
		e.Peer.ID = uuidOrEmpty(peerUUID)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list follow entries: %w", err)
	}
	return out, nil
}
