// Package mocks provides testify mocks for the repository interfaces
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

var (
	_ repository.PayerRepository       = (*PayerRepository)(nil)
	_ repository.AppointmentRepository = (*AppointmentRepository)(nil)
	_ repository.StaffUserRepository   = (*StaffUserRepository)(nil)
)

type PayerRepository struct {
	mock.Mock
}

func (m *PayerRepository) Create(ctx context.Context, payer *model.Payer) error {
	return m.Called(ctx, payer).Error(0)
}

func (m *PayerRepository) Get(ctx context.Context, id int64) (*model.Payer, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*model.Payer); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PayerRepository) Update(ctx context.Context, payer *model.Payer) error {
	return m.Called(ctx, payer).Error(0)
}

func (m *PayerRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *PayerRepository) List(ctx context.Context, activeOnly bool) ([]*model.Payer, error) {
	args := m.Called(ctx, activeOnly)
	if p, ok := args.Get(0).([]*model.Payer); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PayerRepository) CountAppointments(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

type AppointmentRepository struct {
	mock.Mock
}

func (m *AppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	return m.Called(ctx, appointment).Error(0)
}

func (m *AppointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*model.Appointment); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AppointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	args := m.Called(ctx, filters)
	if a, ok := args.Get(0).([]*model.Appointment); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AppointmentRepository) UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *AppointmentRepository) BookedSlots(ctx context.Context, date string) ([]string, error) {
	args := m.Called(ctx, date)
	if s, ok := args.Get(0).([]string); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type StaffUserRepository struct {
	mock.Mock
}

func (m *StaffUserRepository) Create(ctx context.Context, user *model.StaffUser) error {
	return m.Called(ctx, user).Error(0)
}

func (m *StaffUserRepository) GetByUsername(ctx context.Context, username string) (*model.StaffUser, error) {
	args := m.Called(ctx, username)
	if u, ok := args.Get(0).(*model.StaffUser); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StaffUserRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
