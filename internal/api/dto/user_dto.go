package dto

import "time"

// IdentityRequest asks for a signed token carrying the caller's user id.
type IdentityRequest struct {
	UserID    int64  `json:"user_id" validate:"required,gt=0"`
	FirstName string `json:"first_name" validate:"max=256"`
	Username  string `json:"username" validate:"max=64"`
}

// AuthResponse standard response for identity endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
