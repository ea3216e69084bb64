package dto

import (
	"time"

	"github.com/spec-kit/contact-gateway/internal/domain"
)

// ContactRequest is the submitted contact payload for create and update.
type ContactRequest struct {
	Name        string               `json:"name"`
	Number      string               `json:"number"`
	Email       string               `json:"email"`
	Address     string               `json:"address"`
	MessengerID string               `json:"messengerId"`
	InstagramID string               `json:"instagramId"`
	TelegramID  string               `json:"telegramId"`
	ExtraInfo   []domain.CustomField `json:"extraInfo"`
}

// ContactResponse is the canonical persisted contact.
type ContactResponse struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Number        string               `json:"number"`
	Email         string               `json:"email"`
	Address       string               `json:"address"`
	MessengerID   string               `json:"messengerId"`
	InstagramID   string               `json:"instagramId"`
	TelegramID    string               `json:"telegramId"`
	ProfilePicURL string               `json:"profilePicUrl"`
	ExtraInfo     []domain.CustomField `json:"extraInfo"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// ContactListResponse wraps a paginated listing.
type ContactListResponse struct {
	Contacts []ContactResponse `json:"contacts"`
	Count    int               `json:"count"`
	HasMore  bool              `json:"hasMore"`
}

// FromContact maps the domain entity to its response shape.
func FromContact(contact *domain.Contact) ContactResponse {
	extraInfo := contact.ExtraInfo
	if extraInfo == nil {
		extraInfo = []domain.CustomField{}
	}
	return ContactResponse{
		ID:            contact.ID,
		Name:          contact.Name,
		Number:        contact.Number,
		Email:         contact.Email,
		Address:       contact.Address,
		MessengerID:   contact.MessengerID,
		InstagramID:   contact.InstagramID,
		TelegramID:    contact.TelegramID,
		ProfilePicURL: contact.ProfilePicURL,
		ExtraInfo:     extraInfo,
		CreatedAt:     contact.CreatedAt,
		UpdatedAt:     contact.UpdatedAt,
	}
}
