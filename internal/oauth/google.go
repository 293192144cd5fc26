package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"userauth/internal/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

var (
	ErrMissingCode     = errors.New("missing authorization code")
	ErrEmailUnverified = errors.New("provider email is not verified")
)

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Overrides for tests; zero values use Google's endpoints.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// GoogleProvider drives the authorization code flow and turns the consent
// result into a FederatedProfile. It never touches the user store.
type GoogleProvider struct {
	oauth       *oauth2.Config
	userInfoURL string
}

func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	userInfo := cfg.UserInfoURL
	if userInfo == "" {
		userInfo = DefaultUserInfoURL
	}
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "profile", "email"},
		},
		userInfoURL: userInfo,
	}
}

// AuthCodeURL is the consent page the browser is sent to.
func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Profile exchanges code for a token and reads the userinfo document.
func (g *GoogleProvider) Profile(ctx context.Context, code string) (*domain.FederatedProfile, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrMissingCode
	}
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var payload struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if payload.Sub == "" || payload.Email == "" {
		return nil, domain.ErrInvalidProfile
	}
	// An unverified address could be used to take over a local account by email.
	if !payload.EmailVerified {
		return nil, ErrEmailUnverified
	}
	return &domain.FederatedProfile{
		Provider:    "google",
		ProviderID:  payload.Sub,
		Email:       payload.Email,
		DisplayName: payload.Name,
		PhotoURL:    payload.Picture,
	}, nil
}

// NewState returns a random value for the OAuth state parameter.
func NewState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
