package domain

import "time"

// User is the directory record behind a handle. Handle is the unique
// human-facing identifier; ID is the storage uuid.
type User struct {
	ID            string
	Handle        string
	Email         string
	Bio           string
	Website       string
	Qualification string
	Skills        []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type UserWithPassword struct {
	User
	PasswordHash string
}

// NewUser carries the signup fields down to the users store.
type NewUser struct {
	Handle        string
	Email         string
	PasswordHash  string
	Bio           string
	Website       string
	Qualification string
	Skills        []string
}

// Profile is a user as shown on their profile page: the directory record
// plus both relationship lists, credential hash excluded by construction.
type Profile struct {
	User
	Followers []FollowEntry
	Following []FollowEntry
}

// UserSummary is the display identity used when a user appears inside
// someone else's relationship lists, search results, or inbox.
type UserSummary struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
}
