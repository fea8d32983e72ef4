package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

const errDuplicatePayer = "a payer with this name already exists"

func (r *payerRepository) Create(ctx context.Context, payer *model.Payer) error {
	query := `
		INSERT INTO payers (name, active)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, payer.Name, payer.Active).
		Scan(&payer.ID, &payer.CreatedAt, &payer.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(errDuplicatePayer, err)
		}
		return fmt.Errorf("failed to create payer: %w", err)
	}
	return nil
}

func (r *payerRepository) Get(ctx context.Context, id int64) (*model.Payer, error) {
	query := `
		SELECT id, name, active, created_at, updated_at
		FROM payers
		WHERE id = $1
	`
	var payer model.Payer
	if err := r.db.GetContext(ctx, &payer, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("payer", err)
		}
		return nil, fmt.Errorf("failed to get payer: %w", err)
	}
	return &payer, nil
}

func (r *payerRepository) Update(ctx context.Context, payer *model.Payer) error {
	query := `
		UPDATE payers
		SET name = $1, active = $2, updated_at = now()
		WHERE id = $3
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, payer.Name, payer.Active, payer.ID).Scan(&payer.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return apperrors.NotFound("payer", err)
		case isUniqueViolation(err):
			return apperrors.Conflict(errDuplicatePayer, err)
		}
		return fmt.Errorf("failed to update payer: %w", err)
	}
	return nil
}

func (r *payerRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM payers WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.Conflict("payer is referenced by existing appointments", err)
		}
		return fmt.Errorf("failed to delete payer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("payer", nil)
	}
	return nil
}

func (r *payerRepository) List(ctx context.Context, activeOnly bool) ([]*model.Payer, error) {
	query := `
		SELECT id, name, active, created_at, updated_at
		FROM payers
	`
	if activeOnly {
		query += " WHERE active = TRUE"
	}
	query += " ORDER BY name ASC"

	payers := []*model.Payer{}
	if err := r.db.SelectContext(ctx, &payers, query); err != nil {
		return nil, fmt.Errorf("failed to list payers: %w", err)
	}
	return payers, nil
}

func (r *payerRepository) CountAppointments(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM appointments WHERE payer_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to count payer appointments: %w", err)
	}
	return count, nil
}
