package model

import "time"

type StaffRole string

const (
	StaffRoleDoctor    StaffRole = "doctor"
	StaffRoleAssistant StaffRole = "assistant"
)

// StaffUser is a clinic employee allowed to manage payers and appointments
type StaffUser struct {
	Base
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         StaffRole `json:"role" db:"role"`
}

// StaffSeed describes an initial staff account created on first start
type StaffSeed struct {
	Username string
	Password string
	Role     StaffRole
}

type LoginRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresAt   time.Time  `json:"expires_at"`
	User        *StaffUser `json:"user"`
}

// TokenClaims is the verified identity behind a staff session token
type TokenClaims struct {
	UserID   int64     `json:"user_id"`
	Username string    `json:"username"`
	Role     StaffRole `json:"role"`
}
