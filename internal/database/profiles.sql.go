package database

import (
	"context"

	"github.com/google/uuid"
)

const getProfileByEmail = `-- name: GetProfileByEmail :one
SELECT id, email, hashed_password, full_name, role, created_at
FROM profiles
WHERE lower(email) = lower($1)
`

func (q *Queries) GetProfileByEmail(ctx context.Context, email string) (Profile, error) {
	row := q.db.QueryRow(ctx, getProfileByEmail, email)
	var i Profile
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.HashedPassword,
		&i.FullName,
		&i.Role,
		&i.CreatedAt,
	)
	return i, err
}

const getProfileByID = `-- name: GetProfileByID :one
SELECT id, email, hashed_password, full_name, role, created_at
FROM profiles
WHERE id = $1
`

func (q *Queries) GetProfileByID(ctx context.Context, id uuid.UUID) (Profile, error) {
	row := q.db.QueryRow(ctx, getProfileByID, id)
	var i Profile
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.HashedPassword,
		&i.FullName,
		&i.Role,
		&i.CreatedAt,
	)
	return i, err
}

const upsertProfile = `-- name: UpsertProfile :one
INSERT INTO profiles (email, hashed_password, full_name, role)
VALUES ($1, $2, $3, $4)
ON CONFLICT (email) DO UPDATE
SET hashed_password = EXCLUDED.hashed_password,
    full_name = EXCLUDED.full_name,
    role = EXCLUDED.role
RETURNING id, email, hashed_password, full_name, role, created_at
`

type UpsertProfileParams struct {
	Email          string `json:"email"`
	HashedPassword string `json:"hashed_password"`
	FullName       string `json:"full_name"`
	Role           string `json:"role"`
}

func (q *Queries) UpsertProfile(ctx context.Context, arg UpsertProfileParams) (Profile, error) {
	row := q.db.QueryRow(ctx, upsertProfile,
		arg.Email,
		arg.HashedPassword,
		arg.FullName,
		arg.Role,
	)
	var i Profile
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.HashedPassword,
		&i.FullName,
		&i.Role,
		&i.CreatedAt,
	)
	return i, err
}
