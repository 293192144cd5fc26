package impl

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"userauth/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func newTestTokenService(now time.Time) *TokenServiceImpl {
	ts := NewTokenServiceHS256(TokenConfig{
		Issuer:     "userauth-test",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
		SigningKey: []byte("test-signing-key"),
	})
	ts.now = func() time.Time { return now }
	return ts
}

func testUser() *domain.User {
	name := "Ann"
	return &domain.User{ID: uuid.New(), Email: "a@x.com", Name: &name}
}

func TestTokenServiceIssueAndVerify(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ts := newTestTokenService(now)
	user := testUser()

	pair, err := ts.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !pair.AccessExpiresAt.Equal(now.Add(time.Hour)) || !pair.RefreshExpiresAt.Equal(now.Add(24*time.Hour)) {
		t.Fatalf("unexpected expiries: %+v", pair)
	}

	claims, err := ts.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != "a@x.com" || claims.Name != "Ann" || claims.Kind != domain.TokenAccess {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	refresh, err := ts.VerifyRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
	if refresh.UserID != user.ID || refresh.Kind != domain.TokenRefresh {
		t.Fatalf("unexpected refresh claims: %+v", refresh)
	}
}

func TestTokenServiceRejectsWrongKind(t *testing.T) {
	ts := newTestTokenService(time.Now().UTC())
	pair, err := ts.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := ts.VerifyAccess(pair.RefreshToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("refresh token accepted as access: %v", err)
	}
	if _, err := ts.VerifyRefresh(pair.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("access token accepted as refresh: %v", err)
	}
}

func TestTokenServiceRejectsExpired(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ts := newTestTokenService(issuedAt)
	pair, err := ts.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	ts.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	if _, err := ts.VerifyAccess(pair.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expired access token accepted: %v", err)
	}
	if _, err := ts.VerifyRefresh(pair.RefreshToken); err != nil {
		t.Fatalf("refresh token should outlive the access token: %v", err)
	}
}

func TestTokenServiceRejectsForeignTokens(t *testing.T) {
	now := time.Now().UTC()
	ts := newTestTokenService(now)
	user := testUser()

	other := newTestTokenService(now)
	other.cfg.SigningKey = []byte("another-key")
	forged, err := other.Issue(user)
	if err != nil {
		t.Fatalf("issue with other key: %v", err)
	}

	wrongIssuer := newTestTokenService(now)
	wrongIssuer.cfg.Issuer = "someone-else"
	foreign, err := wrongIssuer.Issue(user)
	if err != nil {
		t.Fatalf("issue with other issuer: %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id": user.ID.String(), "typ": "access", "iss": "userauth-test", "exp": now.Add(time.Hour).Unix(),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	genuine, err := ts.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	parts := strings.Split(genuine.AccessToken, ".")
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(
		`{"id":%q,"email":"evil@x.com","typ":"access","iss":"userauth-test","exp":%d}`, user.ID, now.Add(time.Hour).Unix())))
	tampered := strings.Join(parts, ".")

	cases := map[string]string{
		"wrong key":    forged.AccessToken,
		"wrong issuer": foreign.AccessToken,
		"alg none":     unsigned,
		"garbage":      "not.a.jwt",
		"empty":        "",
		"tampered":     tampered,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ts.VerifyAccess(token); !errors.Is(err, domain.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenServiceIssueRequiresUserAndKey(t *testing.T) {
	ts := newTestTokenService(time.Now())
	if _, err := ts.Issue(nil); err == nil {
		t.Fatalf("expected error for nil user")
	}
	ts.cfg.SigningKey = nil
	if _, err := ts.Issue(testUser()); err == nil {
		t.Fatalf("expected error for empty signing key")
	}
}
