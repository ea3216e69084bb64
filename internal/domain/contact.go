package domain

import "time"

// CustomField is an ordered extra key/value attribute attached to a contact.
type CustomField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Contact is the aggregate for an external messaging contact.
type Contact struct {
	ID            string
	Name          string
	Number        string
	Email         string
	Address       string
	MessengerID   string
	InstagramID   string
	TelegramID    string
	ProfilePicURL string
	ExtraInfo     []CustomField
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasAlternateChannel reports whether the contact is addressable through a
// non-phone messaging identity. Such contacts bypass number validation.
func (c *Contact) HasAlternateChannel() bool {
	return c.MessengerID != "" || c.InstagramID != "" || c.TelegramID != ""
}
