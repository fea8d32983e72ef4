package repository

import (
	"context"

	"github.com/jwalitptl/booking-api/internal/model"
)

// All repository interfaces in one file
type (
	// PayerRepository persists insurance providers
	PayerRepository interface {
		Create(ctx context.Context, payer *model.Payer) error
		Get(ctx context.Context, id int64) (*model.Payer, error)
		Update(ctx context.Context, payer *model.Payer) error
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context, activeOnly bool) ([]*model.Payer, error)
		CountAppointments(ctx context.Context, id int64) (int, error)
	}

	// AppointmentRepository persists appointments. Reads resolve the payer name.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id int64) (*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) error
		BookedSlots(ctx context.Context, date string) ([]string, error)
	}

	// StaffUserRepository persists staff credentials
	StaffUserRepository interface {
		Create(ctx context.Context, user *model.StaffUser) error
		GetByUsername(ctx context.Context, username string) (*model.StaffUser, error)
		Count(ctx context.Context) (int, error)
	}
)
