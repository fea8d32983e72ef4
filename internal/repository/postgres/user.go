package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

func (r *staffUserRepository) Create(ctx context.Context, user *model.StaffUser) error {
	query := `
		INSERT INTO staff_users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, user.Username, user.PasswordHash, user.Role).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("username already exists", err)
		}
		return fmt.Errorf("failed to create staff user: %w", err)
	}
	return nil
}

func (r *staffUserRepository) GetByUsername(ctx context.Context, username string) (*model.StaffUser, error) {
	query := `
		SELECT id, username, password_hash, role, created_at, updated_at
		FROM staff_users
		WHERE username = $1
	`
	var user model.StaffUser
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("staff user", err)
		}
		return nil, fmt.Errorf("failed to get staff user: %w", err)
	}
	return &user, nil
}

func (r *staffUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM staff_users`); err != nil {
		return 0, fmt.Errorf("failed to count staff users: %w", err)
	}
	return count, nil
}
