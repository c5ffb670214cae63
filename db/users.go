package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/LLAppelOffre/llao-application/models"
	"github.com/lib/pq"
)

var ErrUsernameTaken = errors.New("username already taken")

const userColumns = `id, username, full_name, role, disabled, hashed_password, date_creation`

func (s *Storage) CreateUser(ctx context.Context, u *models.User) error {
	query := `
        INSERT INTO users (username, full_name, role, disabled, hashed_password)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, date_creation`
	err := s.db.QueryRowContext(ctx, query, u.Username, u.FullName, u.Role, u.Disabled, u.HashedPassword).
		Scan(&u.ID, &u.DateCreation)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	if err := s.db.GetContext(ctx, u, query, username); err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *Storage) UpdateUserPassword(ctx context.Context, username, hashedPassword string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET hashed_password=$1 WHERE username=$2`, hashedPassword, username)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return affectedOrNotFound(res)
}

func (s *Storage) SetUserDisabled(ctx context.Context, username string, disabled bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET disabled=$1 WHERE username=$2`, disabled, username)
	if err != nil {
		return fmt.Errorf("set disabled: %w", err)
	}
	return affectedOrNotFound(res)
}

func (s *Storage) DeleteUser(ctx context.Context, username string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE username=$1`, username)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return affectedOrNotFound(res)
}
