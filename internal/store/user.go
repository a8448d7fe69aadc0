package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// User is a registered learner.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Token        string
	CreatedAt    time.Time
}

// UserRepo persists users.
type UserRepo struct {
	q querier
}

var userColumns = []string{"id", "name", "email", "password_hash", "token", "created_at"}

// Create inserts u and sets its ID. A duplicate email returns ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u *User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	ins := builder.Insert("users").
		Columns("name", "email", "password_hash", "token", "created_at").
		Values(u.Name, u.Email, u.PasswordHash, nullString(u.Token), u.CreatedAt.UTC())
	res, err := exec(ctx, r.q, ins)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	u.ID = id
	return nil
}

// ByID returns the user with id.
func (r *UserRepo) ByID(ctx context.Context, id int64) (*User, error) {
	return r.one(ctx, entsql.EQ("id", id), fmt.Sprintf("user %d", id))
}

// ByEmail returns the user registered with email.
func (r *UserRepo) ByEmail(ctx context.Context, email string) (*User, error) {
	return r.one(ctx, entsql.EQ("email", email), fmt.Sprintf("user %q", email))
}

// ByToken returns the user holding the bearer token.
func (r *UserRepo) ByToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token: %w", ErrNotFound)
	}
	return r.one(ctx, entsql.EQ("token", token), "user by token")
}

// SetToken replaces the user's bearer token. An empty token clears it.
func (r *UserRepo) SetToken(ctx context.Context, id int64, token string) error {
	upd := builder.Update("users").Set("token", nullString(token)).Where(entsql.EQ("id", id))
	res, err := exec(ctx, r.q, upd)
	if err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("user %d", id))
}

// List returns all users ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]User, error) {
	sel := builder.Select(userColumns...).From(builder.Table("users")).OrderBy("id")
	rows, err := query(ctx, r.q, sel)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *UserRepo) one(ctx context.Context, where *entsql.Predicate, what string) (*User, error) {
	sel := builder.Select(userColumns...).From(builder.Table("users")).Where(where)
	u, err := scanUser(queryRow(ctx, r.q, sel))
	if err != nil {
		return nil, notFound(err, what)
	}
	return u, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*User, error) {
	var (
		u     User
		token sql.NullString
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &token, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Token = token.String
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
