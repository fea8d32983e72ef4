package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/booking-api/internal/lock"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/internal/service/notification"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/messaging"
	"github.com/jwalitptl/booking-api/pkg/metrics"
	"github.com/jwalitptl/booking-api/pkg/validator"
)

const DefaultEventChannel = "appointments"

type Service struct {
	repo     repository.AppointmentRepository
	payers   repository.PayerRepository
	notifier notification.Service
	validate *validator.Validator

	locker  lock.Locker
	broker  messaging.Broker
	metrics *metrics.Metrics
	channel string
	now     func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used to decide which of today's slots have passed
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLocker(l lock.Locker) Option {
	return func(s *Service) { s.locker = l }
}

// WithBroker publishes status change events on channel
func WithBroker(b messaging.Broker, channel string) Option {
	return func(s *Service) {
		s.broker = b
		if channel != "" {
			s.channel = channel
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(
	repo repository.AppointmentRepository,
	payers repository.PayerRepository,
	notifier notification.Service,
	validate *validator.Validator,
	opts ...Option,
) *Service {
	s := &Service{
		repo:     repo,
		payers:   payers,
		notifier: notifier,
		validate: validate,
		locker:   lock.NopLocker{},
		broker:   messaging.NopBroker{},
		channel:  DefaultEventChannel,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Availability returns the free slots of a date in template order
func (s *Service) Availability(ctx context.Context, req *model.AvailabilityRequest) (*model.AvailabilityResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	booked, err := s.repo.BookedSlots(ctx, req.Date)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AvailabilityQueries.Inc()
	}
	return &model.AvailabilityResponse{
		Date:  req.Date,
		Slots: AvailableSlots(req.Date, booked, s.now()),
	}, nil
}

// Create books a slot for a patient. The new appointment is always Requested.
func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if !IsTemplateSlot(req.Slot) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("slot %s is not offered", req.Slot), nil)
	}

	payer, err := s.payers.Get(ctx, req.PayerID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.InvalidInput("payer does not exist", err)
		}
		return nil, err
	}

	appointment := &model.Appointment{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		PayerID:   req.PayerID,
		Date:      req.Date,
		Slot:      req.Slot,
		Status:    model.AppointmentStatusRequested,
	}

	err = s.locker.WithSlotLock(ctx, req.Date, req.Slot, func(ctx context.Context) error {
		booked, err := s.repo.BookedSlots(ctx, req.Date)
		if err != nil {
			return err
		}
		if containsSlot(booked, req.Slot) {
			return apperrors.Conflict("slot is already booked", nil)
		}
		if !containsSlot(AvailableSlots(req.Date, booked, s.now()), req.Slot) {
			return apperrors.InvalidInput("slot is no longer available", nil)
		}
		return s.repo.Create(ctx, appointment)
	})
	if err != nil {
		if errors.Is(err, lock.ErrLockNotAcquired) {
			return nil, apperrors.Conflict("slot is being booked by another request", err)
		}
		return nil, err
	}

	appointment.PayerName = payer.Name
	if s.metrics != nil {
		s.metrics.AppointmentsCreated.Inc()
	}
	log.Info().
		Int64("appointment_id", appointment.ID).
		Int64("payer_id", appointment.PayerID).
		Str("date", appointment.Date).
		Str("slot", appointment.Slot).
		Msg("appointment requested")
	return appointment, nil
}

func (s *Service) List(ctx context.Context, req *model.ListAppointmentsRequest) ([]*model.Appointment, error) {
	filters := &model.AppointmentFilters{}
	if req != nil {
		if err := s.validate.Struct(req); err != nil {
			return nil, err
		}
		if req.Status != "" {
			status, ok := model.ParseAppointmentStatus(req.Status)
			if !ok {
				return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q", req.Status), nil)
			}
			filters.Status = status
		}
		filters.Date = req.Date
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

// UpdateStatus moves an appointment to a new status and notifies the patient
// when it becomes Confirmed or Cancelled. Notification failures are logged and
// do not fail the update.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req *model.UpdateStatusRequest) (*model.Appointment, error) {
	status, ok := model.ParseAppointmentStatus(req.Status)
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q", req.Status), nil)
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := current.Status

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if previous == status {
		return updated, nil
	}

	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(previous), string(status)).Inc()
	}
	log.Info().
		Int64("appointment_id", id).
		Str("from", string(previous)).
		Str("to", string(status)).
		Msg("appointment status changed")

	if outcome, notify := model.OutcomeForStatus(status); notify {
		if err := s.notifier.Dispatch(ctx, outcome, updated); err != nil {
			log.Warn().Err(err).
				Int64("appointment_id", id).
				Str("outcome", string(outcome)).
				Msg("failed to notify patient")
		}
	}

	s.publishStatusChanged(ctx, updated, previous)
	return updated, nil
}

func (s *Service) publishStatusChanged(ctx context.Context, appointment *model.Appointment, from model.AppointmentStatus) {
	msg := messaging.Message{
		Type: model.EventAppointmentStatusChanged,
		Payload: model.StatusChangedEvent{
			AppointmentID: appointment.ID,
			From:          from,
			To:            appointment.Status,
			Date:          appointment.Date,
			Slot:          appointment.Slot,
			OccurredAt:    s.now().UTC(),
		},
	}
	if err := s.broker.Publish(ctx, s.channel, msg); err != nil {
		log.Warn().Err(err).
			Int64("appointment_id", appointment.ID).
			Msg("failed to publish status change event")
	}
}
