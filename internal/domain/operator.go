package domain

import "time"

// Operator is a staff user of the contact directory.
type Operator struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
