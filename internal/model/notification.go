package model

import "time"

// NotificationOutcome selects the message sent to the patient
type NotificationOutcome string

const (
	NotificationOutcomeConfirmed NotificationOutcome = "Confirmed"
	NotificationOutcomeCancelled NotificationOutcome = "Cancelled"
)

// OutcomeForStatus maps a status to the outcome it notifies, if any
func OutcomeForStatus(s AppointmentStatus) (NotificationOutcome, bool) {
	switch s {
	case AppointmentStatusConfirmed:
		return NotificationOutcomeConfirmed, true
	case AppointmentStatusCancelled:
		return NotificationOutcomeCancelled, true
	}
	return "", false
}

// EmailMessage is a rendered message ready for the mail transport
type EmailMessage struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

const EventAppointmentStatusChanged = "appointment.status_changed"

// StatusChangedEvent is published after an appointment status change is persisted
type StatusChangedEvent struct {
	AppointmentID int64             `json:"appointment_id"`
	From          AppointmentStatus `json:"from"`
	To            AppointmentStatus `json:"to"`
	Date          string            `json:"date"`
	Slot          string            `json:"slot"`
	OccurredAt    time.Time         `json:"occurred_at"`
}
