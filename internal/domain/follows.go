package domain

import "time"

type FollowStatus string

const (
	FollowStatusPending  FollowStatus = "pending"
	FollowStatusAccepted FollowStatus = "accepted"
)

// FollowDirection selects which side of the edge a listing projects.
type FollowDirection string

const (
	DirectionFollowers FollowDirection = "followers"
	DirectionFollowing FollowDirection = "following"
)

// FollowEntry is one edge projected from a user's point of view: the peer
// on the other end plus the edge status. Both users see the same edge, so
// the mirrored-lists invariant of the old document model holds by
// construction.
type FollowEntry struct {
	Peer      UserSummary  `json:"user"`
	Status    FollowStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

// FollowNotification is a pending incoming request as shown on the
// notifications page.
type FollowNotification struct {
	From      UserSummary `json:"from"`
	CreatedAt time.Time   `json:"created_at"`
}
