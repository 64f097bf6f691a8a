package service

import (
	"context"
	"strings"

	"skilltalk/internal/domain"
)

type ProfileUsersStore interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	UpdateProfile(ctx context.Context, userID, bio, website string) (domain.User, error)
}

type ProfileFollowsStore interface {
	ListAll(ctx context.Context, userID string, direction domain.FollowDirection) ([]domain.FollowEntry, error)
}

type ProfileService struct {
	Users   ProfileUsersStore
	Follows ProfileFollowsStore
}

// Get returns the public profile: user record plus both relationship
// lists populated to peer display identity.
func (s *ProfileService) Get(ctx context.Context, userID string) (domain.Profile, error) {
	u, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}

	followers, err := s.Follows.ListAll(ctx, userID, domain.DirectionFollowers)
	if err != nil {
		return domain.Profile{}, err
	}
	following, err := s.Follows.ListAll(ctx, userID, domain.DirectionFollowing)
	if err != nil {
		return domain.Profile{}, err
	}

	return domain.Profile{User: u, Followers: followers, Following: following}, nil
}

func (s *ProfileService) Update(ctx context.Context, userID, bio, website string) (domain.User, error) {
	bio = strings.TrimSpace(bio)
	website = strings.TrimSpace(website)

	fields := map[string]string{}
	if len(bio) > 1000 {
		fields["bio"] = "must be 1000 characters or less"
	}
	if len(website) > 200 {
		fields["website"] = "must be 200 characters or less"
	}
	if website != "" && !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		fields["website"] = "must start with http:// or https://"
	}
	if len(fields) > 0 {
		return domain.User{}, domain.NewValidationError(fields)
	}

	return s.Users.UpdateProfile(ctx, userID, bio, website)
}
