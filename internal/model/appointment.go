package model

type AppointmentStatus string

const (
	AppointmentStatusRequested AppointmentStatus = "Requested"
	AppointmentStatusConfirmed AppointmentStatus = "Confirmed"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"

	// Display alias for Requested used by the staff dashboard filters
	appointmentStatusPendingAlias = "Pending"
)

// ParseAppointmentStatus resolves a client-supplied status. "Pending" is accepted
// as an alias of Requested; anything else outside the three states is rejected.
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch AppointmentStatus(s) {
	case AppointmentStatusRequested, AppointmentStatusConfirmed, AppointmentStatusCancelled:
		return AppointmentStatus(s), true
	}
	if s == appointmentStatusPendingAlias {
		return AppointmentStatusRequested, true
	}
	return "", false
}

// NotifiesPatient reports whether moving into this status emails the patient
func (s AppointmentStatus) NotifiesPatient() bool {
	return s == AppointmentStatusConfirmed || s == AppointmentStatusCancelled
}

// Appointment is a patient's request for a slot on a date. PayerName is resolved
// from the payers table on reads and is not stored on the appointment row.
type Appointment struct {
	Base
	FirstName string            `json:"first_name" db:"first_name"`
	LastName  string            `json:"last_name" db:"last_name"`
	Phone     string            `json:"phone" db:"phone"`
	Email     string            `json:"email" db:"email"`
	PayerID   int64             `json:"payer_id" db:"payer_id"`
	PayerName string            `json:"payer_name,omitempty" db:"payer_name"`
	Date      string            `json:"date" db:"date"`
	Slot      string            `json:"slot" db:"slot"`
	Status    AppointmentStatus `json:"status" db:"status"`
}

// FullName is the patient's display name
func (a *Appointment) FullName() string {
	return a.FirstName + " " + a.LastName
}

type CreateAppointmentRequest struct {
	FirstName string `json:"first_name" validate:"notblank,max=100"`
	LastName  string `json:"last_name" validate:"notblank,max=100"`
	Phone     string `json:"phone" validate:"notblank,max=40"`
	Email     string `json:"email" validate:"required,email,max=254"`
	PayerID   int64  `json:"payer_id" validate:"required,min=1"`
	Date      string `json:"date" validate:"required,date"`
	Slot      string `json:"slot" validate:"required,timeofday"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type AvailabilityRequest struct {
	Date string `form:"date" json:"date" validate:"required,date"`
}

type AvailabilityResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

type ListAppointmentsRequest struct {
	Status string `form:"status"`
	Date   string `form:"date" validate:"omitempty,date"`
}

// AppointmentFilters narrows an appointment listing; zero values mean no filter
type AppointmentFilters struct {
	Status AppointmentStatus
	Date   string
}
