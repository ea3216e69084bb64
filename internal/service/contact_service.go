package service

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/contact-gateway/internal/domain"
	"github.com/spec-kit/contact-gateway/internal/events"
	"github.com/spec-kit/contact-gateway/internal/messaging"
	"github.com/spec-kit/contact-gateway/internal/repository"
	apperrors "github.com/spec-kit/contact-gateway/pkg/util"
)

// ContactInput describes a submitted contact mutation.
type ContactInput struct {
	Name        string
	Number      string
	Email       string
	Address     string
	MessengerID string
	InstagramID string
	TelegramID  string
	ExtraInfo   []domain.CustomField
}

// HasAlternateChannel reports whether the submitted data carries a non-phone
// messaging identity. Such submissions skip number validation entirely.
func (i ContactInput) HasAlternateChannel() bool {
	return i.MessengerID != "" || i.InstagramID != "" || i.TelegramID != ""
}

// ContactService owns the commit pipeline for contact mutations:
// validate, canonicalize, persist, then notify.
type ContactService struct {
	contacts           repository.ContactRepository
	validator          messaging.IdentityValidator
	dispatcher         events.Dispatcher
	logger             *zap.Logger
	profilePicRequired bool
}

// ContactDependencies bundles collaborators for the contact service.
type ContactDependencies struct {
	ContactRepo        repository.ContactRepository
	Validator          messaging.IdentityValidator
	Dispatcher         events.Dispatcher
	Logger             *zap.Logger
	ProfilePicRequired bool
}

// NewContactService constructs the service.
func NewContactService(deps ContactDependencies) *ContactService {
	return &ContactService{
		contacts:           deps.ContactRepo,
		validator:          deps.Validator,
		dispatcher:         deps.Dispatcher,
		logger:             deps.Logger,
		profilePicRequired: deps.ProfilePicRequired,
	}
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

// NormalizeNumber strips every separator character from a submitted number,
// leaving only the digits to validate.
func NormalizeNumber(number string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case strings.ContainsRune("+-.()/", r), unicode.IsSpace(r):
			return -1
		}
		return r
	}, number)
}

func validateCreate(input ContactInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.NewValidationError("name is required", nil)
	}
	if input.HasAlternateChannel() {
		return nil
	}
	if input.Number == "" {
		return apperrors.NewValidationError("number is required", nil)
	}
	if !digitsOnly.MatchString(input.Number) {
		return apperrors.NewValidationError("invalid number format, only numbers are allowed", map[string]any{
			"number": input.Number,
		})
	}
	return nil
}

func validateUpdate(input ContactInput) error {
	if input.Name != "" && strings.TrimSpace(input.Name) == "" {
		return apperrors.NewValidationError("name must not be blank", nil)
	}
	return nil
}

// Create runs the full pipeline: normalize, validate structure, validate
// reachability, canonicalize, enrich, persist, notify. Every step
// short-circuits the rest on failure; nothing is persisted or broadcast until
// all mandatory steps succeed.
func (s *ContactService) Create(ctx context.Context, input ContactInput) (*domain.Contact, error) {
	if !input.HasAlternateChannel() {
		input.Number = NormalizeNumber(input.Number)
	}
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	number := input.Number
	profilePicURL := ""
	if !input.HasAlternateChannel() {
		canonical, pic, err := s.resolveNumber(ctx, input.Number)
		if err != nil {
			return nil, err
		}
		number = canonical
		profilePicURL = pic
	}

	if number != "" {
		if _, err := s.contacts.GetByNumber(ctx, number); err == nil {
			return nil, apperrors.NewConflict("a contact with this number already exists", map[string]any{
				"number": number,
			})
		} else if err != pgx.ErrNoRows {
			return nil, apperrors.NewPersistenceError(err)
		}
	}

	contact := &domain.Contact{
		Name:          input.Name,
		Number:        number,
		Email:         input.Email,
		Address:       input.Address,
		MessengerID:   input.MessengerID,
		InstagramID:   input.InstagramID,
		TelegramID:    input.TelegramID,
		ProfilePicURL: profilePicURL,
		ExtraInfo:     input.ExtraInfo,
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}

	s.publish(ctx, events.EventContactCreated, events.ContactPayload{Contact: contact})
	return contact, nil
}

// Update merges the submitted fields over the stored contact. Reachability
// validation is skipped when the submitted data names an alternate channel,
// even if a number is also present.
func (s *ContactService) Update(ctx context.Context, contactID string, input ContactInput) (*domain.Contact, error) {
	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	contact, err := s.contacts.GetByID(ctx, contactID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("contact", map[string]any{"contact_id": contactID})
		}
		return nil, apperrors.NewPersistenceError(err)
	}

	number := input.Number
	profilePicURL := ""
	if !input.HasAlternateChannel() && input.Number != "" {
		canonical, pic, err := s.resolveNumber(ctx, input.Number)
		if err != nil {
			return nil, err
		}
		number = canonical
		profilePicURL = pic
	}

	mergeContact(contact, input, number, profilePicURL)

	if err := s.contacts.Update(ctx, contact); err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}

	s.publish(ctx, events.EventContactUpdated, events.ContactPayload{Contact: contact})
	return contact, nil
}

// Delete removes a contact and broadcasts its identifier.
func (s *ContactService) Delete(ctx context.Context, contactID string) error {
	if err := s.contacts.Delete(ctx, contactID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("contact", map[string]any{"contact_id": contactID})
		}
		return apperrors.NewPersistenceError(err)
	}

	s.publish(ctx, events.EventContactDeleted, events.ContactDeletedPayload{ContactID: contactID})
	return nil
}

// DeleteAll bulk-removes every contact. Bulk removal is not
// broadcast-granular; no event is emitted.
func (s *ContactService) DeleteAll(ctx context.Context) error {
	if err := s.contacts.DeleteAll(ctx); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	return nil
}

// GetByID returns a stored contact.
func (s *ContactService) GetByID(ctx context.Context, contactID string) (*domain.Contact, error) {
	contact, err := s.contacts.GetByID(ctx, contactID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("contact", map[string]any{"contact_id": contactID})
		}
		return nil, apperrors.MapError(err)
	}
	return contact, nil
}

// List returns contacts matching the filter plus the total count.
func (s *ContactService) List(ctx context.Context, filter repository.ContactFilter) ([]domain.Contact, int, error) {
	contacts, total, err := s.contacts.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return contacts, total, nil
}

// resolveNumber runs reachability validation, canonicalization and profile
// picture enrichment for a normalized number.
func (s *ContactService) resolveNumber(ctx context.Context, number string) (string, string, error) {
	if err := s.validator.IsValidContact(ctx, number); err != nil {
		return "", "", apperrors.NewInvalidContact("number is not a valid messaging contact", err)
	}

	canonical, err := s.validator.CanonicalNumber(ctx, number)
	if err != nil {
		return "", "", apperrors.NewInvalidContact("could not resolve canonical number", err)
	}

	profilePicURL, err := s.validator.ProfilePicURL(ctx, canonical)
	if err != nil {
		if s.profilePicRequired {
			return "", "", apperrors.NewInvalidContact("could not resolve profile picture", err)
		}
		s.logger.Warn("profile picture lookup failed, continuing without it",
			zap.String("number", canonical),
			zap.Error(err))
		profilePicURL = ""
	}
	return canonical, profilePicURL, nil
}

func mergeContact(contact *domain.Contact, input ContactInput, number, profilePicURL string) {
	if input.Name != "" {
		contact.Name = input.Name
	}
	if number != "" {
		contact.Number = number
	}
	if input.Email != "" {
		contact.Email = input.Email
	}
	if input.Address != "" {
		contact.Address = input.Address
	}
	if input.MessengerID != "" {
		contact.MessengerID = input.MessengerID
	}
	if input.InstagramID != "" {
		contact.InstagramID = input.InstagramID
	}
	if input.TelegramID != "" {
		contact.TelegramID = input.TelegramID
	}
	if profilePicURL != "" {
		contact.ProfilePicURL = profilePicURL
	}
	if input.ExtraInfo != nil {
		contact.ExtraInfo = input.ExtraInfo
	}
}

// publish emits a domain event for an already committed mutation. Broadcast
// failure is logged, never propagated: persistence success is final.
func (s *ContactService) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed after commit",
			zap.String("event_type", string(eventType)),
			zap.Error(err))
	}
}
