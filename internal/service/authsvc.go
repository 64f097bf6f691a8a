package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"skilltalk/internal/auth"
	"skilltalk/internal/domain"
)

type UsersStore interface {
	CreateUser(ctx context.Context, nu domain.NewUser) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByHandle(ctx context.Context, handle string) (domain.UserWithPassword, error)
}

type AuthService struct {
	Users  UsersStore
	Tokens auth.TokenCodec
	Now    func() time.Time
}

type SignupParams struct {
	Handle        string
	Email         string
	Password      string
	Bio           string
	Website       string
	Qualification string
	Skills        []string
}

func (s *AuthService) Signup(ctx context.Context, p SignupParams) (domain.User, error) {
	p.Handle = strings.TrimSpace(p.Handle)
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))

	passwordHash, err := auth.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, err
	}

	return s.Users.CreateUser(ctx, domain.NewUser{
		Handle:        p.Handle,
		Email:         p.Email,
		PasswordHash:  passwordHash,
		Bio:           strings.TrimSpace(p.Bio),
		Website:       strings.TrimSpace(p.Website),
		Qualification: strings.TrimSpace(p.Qualification),
		Skills:        p.Skills,
	})
}

// Login authenticates a handle/password pair and issues a bearer token.
// Unknown handle and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, handle, password string) (domain.User, string, error) {
	now := s.Now
	if now == nil {
		now = time.Now
	}

	handle = strings.TrimSpace(handle)

	u, err := s.Users.GetUserByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", domain.ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}

	ok, err := auth.VerifyPassword(u.PasswordHash, password)
	if err != nil {
		return domain.User{}, "", err
	}
	if !ok {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(u.ID, u.Handle, now())
	if err != nil {
		return domain.User{}, "", err
	}

	return u.User, token, nil
}

// GetUser resolves the token subject for the auth middleware.
func (s *AuthService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUnauthorized
		}
		return domain.User{}, err
	}
	return u, nil
}
