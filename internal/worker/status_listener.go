package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/pkg/messaging"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

// StatusHandler receives each decoded status change
type StatusHandler func(ctx context.Context, evt *model.StatusChangedEvent) error

// StatusListener consumes appointment status change events from the broker
type StatusListener struct {
	broker  messaging.Broker
	channel string
	handle  StatusHandler
	metrics *metrics.Metrics
}

func NewStatusListener(broker messaging.Broker, channel string, handle StatusHandler, m *metrics.Metrics) *StatusListener {
	if handle == nil {
		handle = LogStatusChange
	}
	return &StatusListener{
		broker:  broker,
		channel: channel,
		handle:  handle,
		metrics: m,
	}
}

// Start blocks until ctx is done or the subscription closes
func (w *StatusListener) Start(ctx context.Context) error {
	msgs, err := w.broker.Subscribe(ctx, w.channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	log.Info().Str("channel", w.channel).Msg("status listener started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("channel", w.channel).Msg("status listener shutting down")
			return nil
		case raw, ok := <-msgs:
			if !ok {
				return nil
			}
			w.process(ctx, raw)
		}
	}
}

func (w *StatusListener) process(ctx context.Context, raw []byte) {
	var envelope struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		w.record("unknown", "malformed")
		log.Warn().Err(err).Msg("dropping malformed event")
		return
	}
	if envelope.Type != model.EventAppointmentStatusChanged {
		w.record(envelope.Type, "ignored")
		return
	}

	var evt model.StatusChangedEvent
	if err := json.Unmarshal(envelope.Payload, &evt); err != nil {
		w.record(envelope.Type, "malformed")
		log.Warn().Err(err).Str("type", envelope.Type).Msg("dropping malformed event payload")
		return
	}

	if err := w.handle(ctx, &evt); err != nil {
		w.record(envelope.Type, "failed")
		log.Error().Err(err).Int64("appointment_id", evt.AppointmentID).Msg("failed to handle status change")
		return
	}
	w.record(envelope.Type, "handled")
}

func (w *StatusListener) record(eventType, result string) {
	if w.metrics != nil {
		w.metrics.EventsConsumed.WithLabelValues(eventType, result).Inc()
	}
}

// LogStatusChange writes the change to the audit log stream
func LogStatusChange(_ context.Context, evt *model.StatusChangedEvent) error {
	log.Info().
		Str("event", model.EventAppointmentStatusChanged).
		Int64("appointment_id", evt.AppointmentID).
		Str("from", string(evt.From)).
		Str("to", string(evt.To)).
		Str("date", evt.Date).
		Str("slot", evt.Slot).
		Time("occurred_at", evt.OccurredAt).
		Msg("appointment status changed")
	return nil
}
