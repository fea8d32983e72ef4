package model

// Payer is an insurance provider or self-pay category an appointment is billed under
type Payer struct {
	Base
	Name   string `json:"name" db:"name"`
	Active bool   `json:"active" db:"active"`
}

type CreatePayerRequest struct {
	Name   string `json:"name" validate:"notblank,max=120"`
	Active *bool  `json:"active"`
}

type UpdatePayerRequest struct {
	Name   *string `json:"name" validate:"omitempty,notblank,max=120"`
	Active *bool   `json:"active"`
}

type ListPayersRequest struct {
	ActiveOnly bool `form:"active"`
}
