package service

import (
	"context"
	"log/slog"

	"skilltalk/internal/domain"
)

type FollowsStore interface {
	CreateRequest(ctx context.Context, requesterID, addresseeID string) error
	Accept(ctx context.Context, requesterID, addresseeID string) (bool, error)
	Delete(ctx context.Context, requesterID, addresseeID string) (bool, error)
	ListAccepted(ctx context.Context, userID string, direction domain.FollowDirection) ([]domain.FollowEntry, error)
	ListPendingIncoming(ctx context.Context, userID string) ([]domain.FollowEntry, error)
}

type FollowsUsersStore interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
}

// FollowChangeNotifier pushes a follow/unfollow event to the two
// involved parties. Implemented by realtime.Hub.
type FollowChangeNotifier interface {
	NotifyFollowChange(event, senderID, targetID string)
}

type FollowsService struct {
	Users    FollowsUsersStore
	Follows  FollowsStore
	Notifier FollowChangeNotifier
	Logger   *slog.Logger
}

// SendRequest creates a pending edge sender->target. A second request to
// the same target fails regardless of the edge's current status.
func (s *FollowsService) SendRequest(ctx context.Context, senderID, targetID string) error {
	if senderID == targetID {
		return domain.NewValidationError(map[string]string{"target": "cannot follow yourself"})
	}

	if _, err := s.Users.GetUserByID(ctx, senderID); err != nil {
		return err
	}
	if _, err := s.Users.GetUserByID(ctx, targetID); err != nil {
		return err
	}

	if err := s.Follows.CreateRequest(ctx, senderID, targetID); err != nil {
		return err
	}

	if s.Notifier != nil {
		s.Notifier.NotifyFollowChange("follow", senderID, targetID)
	}
	return nil
}

// Accept flips the pending request from followerID to userID. A missing
// request is tolerated as a no-op; the original system behaved this way,
// so it is kept, but it is logged because it can mask an earlier partial
// write.
func (s *FollowsService) Accept(ctx context.Context, userID, followerID string) error {
	flipped, err := s.Follows.Accept(ctx, followerID, userID)
	if err != nil {
		return err
	}
	if !flipped {
		s.logger().Warn("accept without matching pending request",
			"user_id", userID, "follower_id", followerID)
	}
	return nil
}

// Reject removes the request from followerID unconditionally, whatever
// its status. A missing edge is not an error.
func (s *FollowsService) Reject(ctx context.Context, userID, followerID string) error {
	_, err := s.Follows.Delete(ctx, followerID, userID)
	return err
}

// Unfollow removes the sender->target edge regardless of status, so it
// cancels a pending request and undoes an accepted follow alike.
func (s *FollowsService) Unfollow(ctx context.Context, senderID, targetID string) error {
	if _, err := s.Follows.Delete(ctx, senderID, targetID); err != nil {
		return err
	}

	if s.Notifier != nil {
		s.Notifier.NotifyFollowChange("unfollow", senderID, targetID)
	}
	return nil
}

func (s *FollowsService) ListAccepted(ctx context.Context, userID string, direction domain.FollowDirection) ([]domain.FollowEntry, error) {
	return s.Follows.ListAccepted(ctx, userID, direction)
}

// ListPendingIncoming is the notifications view: pending requests
// addressed to the user, in insertion order.
func (s *FollowsService) ListPendingIncoming(ctx context.Context, userID string) ([]domain.FollowNotification, error) {
	entries, err := s.Follows.ListPendingIncoming(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.FollowNotification, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.FollowNotification{From: e.Peer, CreatedAt: e.CreatedAt})
	}
	return out, nil
}

func (s *FollowsService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
