package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

const appointmentSelect = `
	SELECT a.id, a.first_name, a.last_name, a.phone, a.email,
		   a.payer_id, p.name AS payer_name,
		   to_char(a.date, 'YYYY-MM-DD') AS date, a.slot, a.status,
		   a.created_at, a.updated_at
	FROM appointments a
	JOIN payers p ON p.id = a.payer_id
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			first_name, last_name, phone, email,
			payer_id, date, slot, status
		) VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		appointment.FirstName,
		appointment.LastName,
		appointment.Phone,
		appointment.Email,
		appointment.PayerID,
		appointment.Date,
		appointment.Slot,
		appointment.Status,
	).Scan(&appointment.ID, &appointment.CreatedAt, &appointment.UpdatedAt)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return apperrors.InvalidInput("payer does not exist", err)
		case isUniqueViolation(err):
			return apperrors.Conflict("slot is already booked", err)
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	query := appointmentSelect + ` WHERE a.id = $1`

	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := appointmentSelect + ` WHERE 1 = 1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.Status != "" {
			query += fmt.Sprintf(" AND a.status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if filters.Date != "" {
			query += fmt.Sprintf(" AND a.date = $%d::date", argCount)
			args = append(args, filters.Date)
			argCount++
		}
	}

	query += " ORDER BY a.date DESC, a.slot DESC"

	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = now()
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}
	return nil
}

func (r *appointmentRepository) BookedSlots(ctx context.Context, date string) ([]string, error) {
	slots := []string{}
	err := r.db.SelectContext(ctx, &slots, `SELECT slot FROM appointments WHERE date = $1::date`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get booked slots: %w", err)
	}
	return slots, nil
}
