package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/contact-gateway/internal/domain"
	"github.com/spec-kit/contact-gateway/internal/events"
	"github.com/spec-kit/contact-gateway/internal/repository"
	apperrors "github.com/spec-kit/contact-gateway/pkg/util"
)

// fakeContactRepo is an in-memory ContactRepository that records writes.
type fakeContactRepo struct {
	byID      map[string]*domain.Contact
	byNumber  map[string]*domain.Contact
	creates   int
	updates   int
	nextID    int
	createErr error
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{
		byID:     make(map[string]*domain.Contact),
		byNumber: make(map[string]*domain.Contact),
	}
}

func (f *fakeContactRepo) Create(_ context.Context, contact *domain.Contact) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.creates++
	f.nextID++
	contact.ID = fmt.Sprintf("contact-%d", f.nextID)
	contact.CreatedAt = time.Now()
	contact.UpdatedAt = contact.CreatedAt
	stored := *contact
	f.byID[contact.ID] = &stored
	if contact.Number != "" {
		f.byNumber[contact.Number] = &stored
	}
	return nil
}

func (f *fakeContactRepo) Update(_ context.Context, contact *domain.Contact) error {
	f.updates++
	contact.UpdatedAt = time.Now()
	stored := *contact
	f.byID[contact.ID] = &stored
	return nil
}

func (f *fakeContactRepo) GetByID(_ context.Context, id string) (*domain.Contact, error) {
	contact, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *contact
	return &copied, nil
}

func (f *fakeContactRepo) GetByNumber(_ context.Context, number string) (*domain.Contact, error) {
	contact, ok := f.byNumber[number]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *contact
	return &copied, nil
}

func (f *fakeContactRepo) List(_ context.Context, _ repository.ContactFilter) ([]domain.Contact, int, error) {
	out := make([]domain.Contact, 0, len(f.byID))
	for _, contact := range f.byID {
		out = append(out, *contact)
	}
	return out, len(out), nil
}

func (f *fakeContactRepo) Delete(_ context.Context, id string) error {
	contact, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	delete(f.byNumber, contact.Number)
	return nil
}

func (f *fakeContactRepo) DeleteAll(_ context.Context) error {
	f.byID = make(map[string]*domain.Contact)
	f.byNumber = make(map[string]*domain.Contact)
	return nil
}

// fakeValidator scripts the messaging network's answers and records calls.
type fakeValidator struct {
	reachErr     error
	canonical    map[string]string
	canonicalErr error
	picURL       string
	picErr       error

	reachCalls     []string
	canonicalCalls []string
	picCalls       []string
}

func newFakeValidator() *fakeValidator {
	return &fakeValidator{canonical: make(map[string]string), picURL: "https://pics.example.com/p.jpg"}
}

func (f *fakeValidator) IsValidContact(_ context.Context, number string) error {
	f.reachCalls = append(f.reachCalls, number)
	return f.reachErr
}

func (f *fakeValidator) CanonicalNumber(_ context.Context, number string) (string, error) {
	f.canonicalCalls = append(f.canonicalCalls, number)
	if f.canonicalErr != nil {
		return "", f.canonicalErr
	}
	if canonical, ok := f.canonical[number]; ok {
		return canonical, nil
	}
	return number, nil
}

func (f *fakeValidator) ProfilePicURL(_ context.Context, number string) (string, error) {
	f.picCalls = append(f.picCalls, number)
	if f.picErr != nil {
		return "", f.picErr
	}
	return f.picURL, nil
}

type contactFixture struct {
	service   *ContactService
	repo      *fakeContactRepo
	validator *fakeValidator
	published *[]events.Event
}

func newContactFixture(t *testing.T, picRequired bool) contactFixture {
	t.Helper()
	repo := newFakeContactRepo()
	validator := newFakeValidator()
	dispatcher := events.NewInMemoryDispatcher()

	published := &[]events.Event{}
	record := func(_ context.Context, event events.Event) error {
		*published = append(*published, event)
		return nil
	}
	dispatcher.Subscribe(events.EventContactCreated, record)
	dispatcher.Subscribe(events.EventContactUpdated, record)
	dispatcher.Subscribe(events.EventContactDeleted, record)

	svc := NewContactService(ContactDependencies{
		ContactRepo:        repo,
		Validator:          validator,
		Dispatcher:         dispatcher,
		Logger:             zap.NewNop(),
		ProfilePicRequired: picRequired,
	})
	return contactFixture{service: svc, repo: repo, validator: validator, published: published}
}

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, code, domainErr.Code)
}

func TestNormalizeNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"11-987654321", "11987654321"},
		{"+55 11 98765-4321", "5511987654321"},
		{"(11) 98765.4321", "11987654321"},
		{"551198765/4321", "5511987654321"},
		{"5511987654321", "5511987654321"},
		{"55x11", "55x11"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeNumber(tc.in), "input %q", tc.in)
	}
}

func TestCreateNormalizesBeforeValidation(t *testing.T) {
	fx := newContactFixture(t, false)

	contact, err := fx.service.Create(context.Background(), ContactInput{
		Name:   "Ana",
		Number: "+55 11 98765-4321",
	})
	require.NoError(t, err)

	require.Equal(t, []string{"5511987654321"}, fx.validator.reachCalls)
	require.Equal(t, "5511987654321", contact.Number)
	require.Equal(t, "https://pics.example.com/p.jpg", contact.ProfilePicURL)
	require.Len(t, *fx.published, 1)
	require.Equal(t, events.EventContactCreated, (*fx.published)[0].Type)
}

func TestCreateRejectsNonDigitNumber(t *testing.T) {
	fx := newContactFixture(t, false)

	_, err := fx.service.Create(context.Background(), ContactInput{
		Name:   "Ana",
		Number: "55abc11",
	})
	requireDomainCode(t, err, "VALIDATION_FAILED")

	// Structural failure happens before any external call or write.
	require.Empty(t, fx.validator.reachCalls)
	require.Zero(t, fx.repo.creates)
	require.Empty(t, *fx.published)
}

func TestCreateRequiresName(t *testing.T) {
	fx := newContactFixture(t, false)

	_, err := fx.service.Create(context.Background(), ContactInput{Number: "11987654321"})
	requireDomainCode(t, err, "VALIDATION_FAILED")
	require.Empty(t, fx.validator.reachCalls)
}

func TestCreateAlternateChannelSkipsNumberValidation(t *testing.T) {
	fx := newContactFixture(t, false)

	contact, err := fx.service.Create(context.Background(), ContactInput{
		Name:        "Bia",
		MessengerID: "msngr-1",
	})
	require.NoError(t, err)

	require.Empty(t, fx.validator.reachCalls)
	require.Empty(t, fx.validator.canonicalCalls)
	require.Empty(t, fx.validator.picCalls)
	require.Equal(t, "", contact.Number)
	require.Len(t, *fx.published, 1)
}

func TestCreateUnreachableNumberLeavesStoreUntouched(t *testing.T) {
	fx := newContactFixture(t, false)
	fx.validator.reachErr = errors.New("not on the network")

	_, err := fx.service.Create(context.Background(), ContactInput{
		Name:   "Ana",
		Number: "11987654321",
	})
	requireDomainCode(t, err, "INVALID_CONTACT")
	require.Zero(t, fx.repo.creates)
	require.Empty(t, *fx.published)
}

func TestCreatePersistsCanonicalForm(t *testing.T) {
	fx := newContactFixture(t, false)
	// The network adds the country code during canonicalization.
	fx.validator.canonical["11987654321"] = "5511987654321"

	contact, err := fx.service.Create(context.Background(), ContactInput{
		Name:   "Ana",
		Number: "11-987654321",
	})
	require.NoError(t, err)

	require.Equal(t, "5511987654321", contact.Number)
	require.Equal(t, []string{"5511987654321"}, fx.validator.picCalls)
}

func TestCreateProfilePicFailureIsBestEffortByDefault(t *testing.T) {
	fx := newContactFixture(t, false)
	fx.validator.picErr = errors.New("pic service down")

	contact, err := fx.service.Create(context.Background(), ContactInput{
		Name:   "Ana",
		Number: "11987654321",
	})
	require.NoError(t, err)
	require.Equal(t, "", contact.ProfilePicURL)
	require.Equal(t, 1, fx.repo.creates)
}

func TestCreateProfilePicFailureAbortsWhenRequired(t *testing.T) {
	fx := newContactFixture(t, true)
	fx.validator.picErr = errors.New("pic service down")

	_, err := fx.service.Create(context.Background(), ContactInput{
		Name:   "Ana",
		Number: "11987654321",
	})
	requireDomainCode(t, err, "INVALID_CONTACT")
	require.Zero(t, fx.repo.creates)
	require.Empty(t, *fx.published)
}

func TestCreateDuplicateNumberConflicts(t *testing.T) {
	fx := newContactFixture(t, false)

	_, err := fx.service.Create(context.Background(), ContactInput{Name: "Ana", Number: "11987654321"})
	require.NoError(t, err)

	_, err = fx.service.Create(context.Background(), ContactInput{Name: "Ana Again", Number: "11987654321"})
	requireDomainCode(t, err, "CONFLICT")
	require.Equal(t, 1, fx.repo.creates)
	require.Len(t, *fx.published, 1)
}

func TestUpdateAlternateIdentityWinsOverNumber(t *testing.T) {
	fx := newContactFixture(t, false)
	contact, err := fx.service.Create(context.Background(), ContactInput{
		Name:        "Bia",
		MessengerID: "msngr-1",
	})
	require.NoError(t, err)

	// Even with a number in the payload, the alternate identity means no
	// reachability validation may run.
	updated, err := fx.service.Update(context.Background(), contact.ID, ContactInput{
		MessengerID: "msngr-2",
		Number:      "11987654321",
	})
	require.NoError(t, err)

	require.Empty(t, fx.validator.reachCalls)
	require.Equal(t, "msngr-2", updated.MessengerID)
	require.Equal(t, "11987654321", updated.Number)
}

func TestUpdateValidatesNumberWithoutAlternateIdentity(t *testing.T) {
	fx := newContactFixture(t, false)
	contact, err := fx.service.Create(context.Background(), ContactInput{Name: "Ana", Number: "11987654321"})
	require.NoError(t, err)
	fx.validator.reachCalls = nil

	fx.validator.canonical["11999990000"] = "5511999990000"
	updated, err := fx.service.Update(context.Background(), contact.ID, ContactInput{Number: "11999990000"})
	require.NoError(t, err)

	require.Equal(t, []string{"11999990000"}, fx.validator.reachCalls)
	require.Equal(t, "5511999990000", updated.Number)
	require.Equal(t, events.EventContactUpdated, (*fx.published)[len(*fx.published)-1].Type)
}

func TestUpdateUnknownContact(t *testing.T) {
	fx := newContactFixture(t, false)

	_, err := fx.service.Update(context.Background(), "missing", ContactInput{Name: "Nobody"})
	requireDomainCode(t, err, "NOT_FOUND")
}

func TestDeletePublishesIdentifierOnly(t *testing.T) {
	fx := newContactFixture(t, false)
	contact, err := fx.service.Create(context.Background(), ContactInput{Name: "Ana", Number: "11987654321"})
	require.NoError(t, err)

	require.NoError(t, fx.service.Delete(context.Background(), contact.ID))

	last := (*fx.published)[len(*fx.published)-1]
	require.Equal(t, events.EventContactDeleted, last.Type)
	payload, ok := last.Payload.(events.ContactDeletedPayload)
	require.True(t, ok)
	require.Equal(t, contact.ID, payload.ContactID)
}

func TestDeleteAllPublishesNothing(t *testing.T) {
	fx := newContactFixture(t, false)
	_, err := fx.service.Create(context.Background(), ContactInput{Name: "Ana", Number: "11987654321"})
	require.NoError(t, err)
	created := len(*fx.published)

	require.NoError(t, fx.service.DeleteAll(context.Background()))

	require.Len(t, *fx.published, created)
	contacts, _, err := fx.repo.List(context.Background(), repository.ContactFilter{})
	require.NoError(t, err)
	require.Empty(t, contacts)
}

func TestCreatePersistenceFailureSurfaces(t *testing.T) {
	fx := newContactFixture(t, false)
	fx.repo.createErr = errors.New("disk on fire")

	_, err := fx.service.Create(context.Background(), ContactInput{Name: "Ana", Number: "11987654321"})
	requireDomainCode(t, err, "PERSISTENCE_FAILED")
	require.Empty(t, *fx.published)
}
