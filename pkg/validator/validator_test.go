package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type bookingForm struct {
	FirstName string `json:"first_name" validate:"notblank"`
	Email     string `json:"email" validate:"required,email"`
	Date      string `json:"date" validate:"required,date"`
	Slot      string `json:"slot" validate:"required,timeofday"`
}

func TestStruct(t *testing.T) {
	v := New()

	valid := bookingForm{FirstName: "Ana", Email: "ana@example.com", Date: "2024-06-10", Slot: "09:30"}
	assert.NoError(t, v.Struct(valid))

	tests := []struct {
		name    string
		mutate  func(f *bookingForm)
		message string
	}{
		{"blank name", func(f *bookingForm) { f.FirstName = "   " }, "first_name is required"},
		{"bad email", func(f *bookingForm) { f.Email = "not-an-email" }, "email must be a valid email address"},
		{"bad date", func(f *bookingForm) { f.Date = "10/06/2024" }, "date must be a date in YYYY-MM-DD format"},
		{"impossible date", func(f *bookingForm) { f.Date = "2024-02-30" }, "date must be a date in YYYY-MM-DD format"},
		{"unpadded date", func(f *bookingForm) { f.Date = "2024-6-10" }, "date must be a date in YYYY-MM-DD format"},
		{"bad slot", func(f *bookingForm) { f.Slot = "9:30" }, "slot must be a time in HH:MM format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)

			err := v.Struct(f)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.KindInvalidInput))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestStructJoinsAllFieldErrors(t *testing.T) {
	err := New().Struct(bookingForm{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first_name is required")
	assert.Contains(t, err.Error(), "email is required")
	assert.Contains(t, err.Error(), "date is required")
}
