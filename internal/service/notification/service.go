package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/booking-api/internal/email"
	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

// Service tells a patient that their appointment was confirmed or cancelled
type Service interface {
	Dispatch(ctx context.Context, outcome model.NotificationOutcome, appointment *model.Appointment) error
}

type service struct {
	sender  email.Sender
	metrics *metrics.Metrics
}

func NewService(sender email.Sender, m *metrics.Metrics) Service {
	return &service{
		sender:  sender,
		metrics: m,
	}
}

func (s *service) Dispatch(ctx context.Context, outcome model.NotificationOutcome, appointment *model.Appointment) error {
	if outcome != model.NotificationOutcomeConfirmed && outcome != model.NotificationOutcomeCancelled {
		return apperrors.InvalidInput(fmt.Sprintf("unsupported notification outcome %q", outcome), nil)
	}
	if appointment == nil || strings.TrimSpace(appointment.Email) == "" {
		return apperrors.InvalidInput("appointment has no recipient email", nil)
	}

	msg, err := email.Render(outcome, appointment)
	if err != nil {
		return apperrors.Internal(err)
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		if s.metrics != nil {
			s.metrics.NotificationsFailed.WithLabelValues(string(outcome)).Inc()
		}
		return apperrors.Dispatch(fmt.Sprintf("failed to send %s notification", strings.ToLower(string(outcome))), err)
	}

	if s.metrics != nil {
		s.metrics.NotificationsSent.WithLabelValues(string(outcome)).Inc()
	}
	log.Info().
		Int64("appointment_id", appointment.ID).
		Str("outcome", string(outcome)).
		Msg("patient notified")
	return nil
}
