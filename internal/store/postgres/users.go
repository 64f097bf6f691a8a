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

type UsersStore struct {
	pool *pgxpool.Pool
}

func NewUsersStore(pool *pgxpool.Pool) *UsersStore {
	return &UsersStore{pool: pool}
}

func (s *UsersStore) CreateUser(ctx context.Context, nu domain.NewUser) (domain.User, error) {
	const q = `
		INSERT INTO users (handle, email, password_hash, bio, website, qualification, skills)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, handle, email, bio, website, qualification, skills, created_at, updated_at
	`

	row := s.pool.QueryRow(ctx, q,
		nu.Handle,
		nullIfEmpty(nu.Email),
		nu.PasswordHash,
		nu.Bio,
		nu.Website,
		nu.Qualification,
		nu.Skills,
	)
	u, err := scanUser(row)
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23505" && pgerr.ConstraintName == "users_handle_uq" {
			return domain.User{}, domain.ErrHandleTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *UsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	const q = `
		SELECT id, handle, email, bio, website, qualification, skills, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	u, err := scanUser(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (s *UsersStore) GetUserByHandle(ctx context.Context, handle string) (domain.UserWithPassword, error) {
	const q = `
		SELECT id, handle, email, password_hash, bio, website, qualification, skills, created_at, updated_at
		FROM users
		WHERE handle = $1
	`

	var (
		u         domain.UserWithPassword
		idUUID    pgtype.UUID
		emailText pgtype.Text
		skills    pgtype.FlatArray[string]
	)
	err := s.pool.QueryRow(ctx, q, handle).Scan(
		&idUUID,
		&u.Handle,
		&emailText,
		&u.PasswordHash,
		&u.Bio,
		&u.Website,
		&u.Qualification,
		&skills,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserWithPassword{}, domain.ErrNotFound
		}
		return domain.UserWithPassword{}, fmt.Errorf("get user by handle: %w", err)
	}

	u.ID = uuidOrEmpty(idUUID)
	u.Email = textOrEmpty(emailText)
	u.Skills = textArrayOrEmpty(skills)
	return u, nil
}

func (s *UsersStore) UpdateProfile(ctx context.Context, userID, bio, website string) (domain.User, error) {
	const q = `
		UPDATE users
		SET bio = $2, website = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, handle, email, bio, website, qualification, skills, created_at, updated_at
	`

	u, err := scanUser(s.pool.QueryRow(ctx, q, userID, bio, website))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

func (s *UsersStore) GetSummaries(ctx context.Context, ids []string) (map[string]domain.UserSummary, error) {
	if len(ids) == 0 {
		return map[string]domain.UserSummary{}, nil
	}

	const q = `
		SELECT id, handle
		FROM users
		WHERE id = ANY($1)
	`

	rows, err := s.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, fmt.Errorf("get user summaries: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.UserSummary, len(ids))
	for rows.Next() {
		var idUUID pgtype.UUID
		var handle string
		if err := rows.Scan(&idUUID, &handle); err != nil {
			return nil, fmt.Errorf("scan user summary: %w", err)
		}
		id := uuidOrEmpty(idUUID)
		out[id] = domain.UserSummary{ID: id, Handle: handle}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get user summaries: %w", err)
	}
	return out, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u         domain.User
		idUUID    pgtype.UUID
		emailText pgtype.Text
		skills    pgtype.FlatArray[string]
	)
	err := row.Scan(
		&idUUID,
		&u.Handle,
		&emailText,
		&u.Bio,
		&u.Website,
		&u.Qualification,
		&skills,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.ID = uuidOrEmpty(idUUID)
	u.Email = textOrEmpty(emailText)
	u.Skills = textArrayOrEmpty(skills)
	return u, nil
}
