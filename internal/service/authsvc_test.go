package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"skilltalk/internal/auth"
	"skilltalk/internal/domain"
)

type stubUsersStore struct {
	t *testing.T

	createUserFunc      func(context.Context, domain.NewUser) (domain.User, error)
	getUserByIDFunc     func(context.Context, string) (domain.User, error)
	getUserByHandleFunc func(context.Context, string) (domain.UserWithPassword, error)
}

func (s *stubUsersStore) CreateUser(ctx context.Context, nu domain.NewUser) (domain.User, error) {
	if s.createUserFunc != nil {
		return s.createUserFunc(ctx, nu)
	}
	s.t.Fatalf("CreateUser called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubUsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	if s.getUserByIDFunc != nil {
		return s.getUserByIDFunc(ctx, id)
	}
	s.t.Fatalf("GetUserByID called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubUsersStore) GetUserByHandle(ctx context.Context, handle string) (domain.UserWithPassword, error) {
	if s.getUserByHandleFunc != nil {
		return s.getUserByHandleFunc(ctx, handle)
	}
	s.t.Fatalf("GetUserByHandle called unexpectedly")
	return domain.UserWithPassword{}, errors.New("unexpected call")
}

func testTokenCodec() auth.TokenCodec {
	return auth.NewTokenCodec([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
}

func TestSignupHashesPasswordAndTrimsHandle(t *testing.T) {
	var created domain.NewUser
	store := &stubUsersStore{
		t: t,
		createUserFunc: func(_ context.Context, nu domain.NewUser) (domain.User, error) {
			created = nu
			return domain.User{ID: "user-1", Handle: nu.Handle}, nil
		},
	}

	svc := &AuthService{Users: store, Tokens: testTokenCodec()}
	u, err := svc.Signup(context.Background(), SignupParams{
		Handle:        "  alice ",
		Email:         "Alice@Example.com",
		Password:      "hunter2hunter2",
		Qualification: "B.Tech",
		Skills:        []string{"go", "sql"},
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	if u.ID != "user-1" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if created.Handle != "alice" {
		t.Fatalf("handle not trimmed: %q", created.Handle)
	}
	if created.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", created.Email)
	}
	if created.PasswordHash == "hunter2hunter2" || created.PasswordHash == "" {
		t.Fatalf("password stored without hashing")
	}
	ok, err := auth.VerifyPassword(created.PasswordHash, "hunter2hunter2")
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify: ok=%v err=%v", ok, err)
	}
}

func TestSignupDuplicateHandle(t *testing.T) {
	store := &stubUsersStore{
		t: t,
		createUserFunc: func(context.Context, domain.NewUser) (domain.User, error) {
			return domain.User{}, domain.ErrHandleTaken
		},
	}

	svc := &AuthService{Users: store, Tokens: testTokenCodec()}
	_, err := svc.Signup(context.Background(), SignupParams{Handle: "alice", Password: "hunter2hunter2"})
	if !errors.Is(err, domain.ErrHandleTaken) {
		t.Fatalf("expected ErrHandleTaken, got %v", err)
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	hash, err := auth.HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	store := &stubUsersStore{
		t: t,
		getUserByHandleFunc: func(_ context.Context, handle string) (domain.UserWithPassword, error) {
			if handle != "alice" {
				t.Fatalf("unexpected handle: %q", handle)
			}
			return domain.UserWithPassword{
				User:         domain.User{ID: "user-1", Handle: "alice"},
				PasswordHash: hash,
			}, nil
		},
	}

	codec := testTokenCodec()
	svc := &AuthService{Users: store, Tokens: codec}
	u, token, err := svc.Login(context.Background(), " alice ", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.ID != "user-1" {
		t.Fatalf("unexpected user: %+v", u)
	}

	claims, ok := codec.Verify(token)
	if !ok {
		t.Fatalf("issued token does not verify")
	}
	if claims.UserID != "user-1" || claims.Handle != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginDoesNotMutateClock(t *testing.T) {
	hash, err := auth.HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	store := &stubUsersStore{
		t: t,
		getUserByHandleFunc: func(context.Context, string) (domain.UserWithPassword, error) {
			return domain.UserWithPassword{
				User:         domain.User{ID: "user-1", Handle: "alice"},
				PasswordHash: hash,
			}, nil
		},
	}

	svc := &AuthService{Users: store, Tokens: testTokenCodec()}
	if _, _, err := svc.Login(context.Background(), "alice", "hunter2hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if svc.Now != nil {
		t.Fatalf("Login must not write the Now field")
	}
}

func TestLoginUnknownHandle(t *testing.T) {
	store := &stubUsersStore{
		t: t,
		getUserByHandleFunc: func(context.Context, string) (domain.UserWithPassword, error) {
			return domain.UserWithPassword{}, domain.ErrNotFound
		},
	}

	svc := &AuthService{Users: store, Tokens: testTokenCodec()}
	_, _, err := svc.Login(context.Background(), "ghost", "whatever")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("the-right-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	store := &stubUsersStore{
		t: t,
		getUserByHandleFunc: func(context.Context, string) (domain.UserWithPassword, error) {
			return domain.UserWithPassword{
				User:         domain.User{ID: "user-1", Handle: "alice"},
				PasswordHash: hash,
			}, nil
		},
	}

	svc := &AuthService{Users: store, Tokens: testTokenCodec()}
	_, _, err = svc.Login(context.Background(), "alice", "the-wrong-password")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
