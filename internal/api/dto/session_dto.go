package dto

import "time"

// RegisterRequest payload.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse carries the issued token.
type SessionResponse struct {
	OperatorID string    `json:"operatorId"`
	Name       string    `json:"name"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expiresAt"`
}
