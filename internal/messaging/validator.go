package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/contact-gateway/internal/config"
)

// IdentityValidator resolves whether a number is a reachable messaging
// identity and provides its canonical form and profile picture.
type IdentityValidator interface {
	// IsValidContact confirms the number corresponds to a reachable identity.
	IsValidContact(ctx context.Context, number string) error
	// CanonicalNumber returns the network's canonical form of the number.
	CanonicalNumber(ctx context.Context, number string) (string, error)
	// ProfilePicURL resolves the profile picture for a canonical number.
	ProfilePicURL(ctx context.Context, number string) (string, error)
}

// ErrNotReachable marks a number the messaging network does not know.
type ErrNotReachable struct {
	Number string
}

func (e *ErrNotReachable) Error() string {
	return fmt.Sprintf("number %s is not a reachable messaging identity", e.Number)
}

type httpValidator struct {
	client  *http.Client
	baseURL string
	token   string
	logger  *zap.Logger
}

// NewHTTPValidator builds a validator backed by the messaging-network sidecar
// HTTP API.
func NewHTTPValidator(cfg config.MessagingConfig, logger *zap.Logger) IdentityValidator {
	return &httpValidator{
		client:  &http.Client{Timeout: cfg.RequestTimeout()},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.APIToken,
		logger:  logger,
	}
}

type checkResponse struct {
	Exists bool   `json:"exists"`
	JID    string `json:"jid"`
}

type profilePicResponse struct {
	URL string `json:"url"`
}

func (v *httpValidator) IsValidContact(ctx context.Context, number string) error {
	var resp checkResponse
	if err := v.getJSON(ctx, "/contacts/check", number, &resp); err != nil {
		return err
	}
	if !resp.Exists {
		return &ErrNotReachable{Number: number}
	}
	return nil
}

func (v *httpValidator) CanonicalNumber(ctx context.Context, number string) (string, error) {
	var resp checkResponse
	if err := v.getJSON(ctx, "/contacts/check", number, &resp); err != nil {
		return "", err
	}
	if !resp.Exists || resp.JID == "" {
		return "", &ErrNotReachable{Number: number}
	}
	return resp.JID, nil
}

func (v *httpValidator) ProfilePicURL(ctx context.Context, number string) (string, error) {
	var resp profilePicResponse
	if err := v.getJSON(ctx, "/contacts/profile-pic", number, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

func (v *httpValidator) getJSON(ctx context.Context, path, number string, out any) error {
	endpoint := fmt.Sprintf("%s%s?number=%s", v.baseURL, path, url.QueryEscape(number))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if v.token != "" {
		req.Header.Set("Authorization", "Bearer "+v.token)
	}

	res, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("messaging sidecar request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return &ErrNotReachable{Number: number}
	}
	if res.StatusCode != http.StatusOK {
		v.logger.Warn("messaging sidecar returned unexpected status",
			zap.String("path", path),
			zap.Int("status", res.StatusCode))
		return fmt.Errorf("messaging sidecar returned status %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}
