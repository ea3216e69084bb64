package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/contact-gateway/internal/config"
)

func newTestValidator(t *testing.T, handler http.HandlerFunc) IdentityValidator {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPValidator(config.MessagingConfig{
		BaseURL:           server.URL,
		APIToken:          "sidecar-token",
		RequestTimeoutSec: 2,
	}, zap.NewNop())
}

func TestIsValidContact(t *testing.T) {
	validator := newTestValidator(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/contacts/check", r.URL.Path)
		require.Equal(t, "Bearer sidecar-token", r.Header.Get("Authorization"))
		exists := r.URL.Query().Get("number") == "5511987654321"
		_ = json.NewEncoder(w).Encode(checkResponse{Exists: exists, JID: "5511987654321"})
	})

	require.NoError(t, validator.IsValidContact(context.Background(), "5511987654321"))

	err := validator.IsValidContact(context.Background(), "000")
	var notReachable *ErrNotReachable
	require.ErrorAs(t, err, &notReachable)
	require.Equal(t, "000", notReachable.Number)
}

func TestCanonicalNumberAddsCountryCode(t *testing.T) {
	validator := newTestValidator(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(checkResponse{Exists: true, JID: "55" + r.URL.Query().Get("number")})
	})

	canonical, err := validator.CanonicalNumber(context.Background(), "11987654321")
	require.NoError(t, err)
	require.Equal(t, "5511987654321", canonical)
}

func TestProfilePicLookup(t *testing.T) {
	validator := newTestValidator(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/contacts/profile-pic", r.URL.Path)
		_ = json.NewEncoder(w).Encode(profilePicResponse{URL: "https://pics.example.com/p.jpg"})
	})

	url, err := validator.ProfilePicURL(context.Background(), "5511987654321")
	require.NoError(t, err)
	require.Equal(t, "https://pics.example.com/p.jpg", url)
}

func TestNotFoundMeansNotReachable(t *testing.T) {
	validator := newTestValidator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := validator.CanonicalNumber(context.Background(), "11987654321")
	var notReachable *ErrNotReachable
	require.ErrorAs(t, err, &notReachable)
}

func TestSidecarErrorSurfaces(t *testing.T) {
	validator := newTestValidator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := validator.IsValidContact(context.Background(), "11987654321")
	require.Error(t, err)
}

func TestCachedValidatorWithoutRedisIsPassthrough(t *testing.T) {
	inner := newTestValidator(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(checkResponse{Exists: true, JID: "551"})
	})

	wrapped := NewCachedValidator(inner, nil, time.Minute, zap.NewNop())
	require.Same(t, inner, wrapped)
}
