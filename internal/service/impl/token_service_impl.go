package impl

import (
	"errors"
	"fmt"
	"time"

	"userauth/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ====== Config ======

type TokenConfig struct {
	Issuer     string        // e.g. "userauth"
	AccessTTL  time.Duration // e.g. 7 * 24h
	RefreshTTL time.Duration // e.g. 30 * 24h
	SigningKey []byte        // HS256 secret
}

// ====== Claims ======

type identityClaims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Kind   string `json:"typ"`
	jwt.RegisteredClaims
}

// ====== Service ======

type TokenServiceImpl struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenServiceHS256(cfg TokenConfig) *TokenServiceImpl {
	return &TokenServiceImpl{
		cfg: cfg,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Issue signs an access and a refresh token carrying the same identity claims.
// Nothing is persisted; expiry is the only way either token stops working.
func (t *TokenServiceImpl) Issue(user *domain.User) (*domain.TokenPair, error) {
	if user == nil || user.ID == uuid.Nil {
		return nil, errors.New("issue tokens: missing user")
	}
	if len(t.cfg.SigningKey) == 0 {
		return nil, errors.New("issue tokens: empty signing key")
	}
	now := t.now()
	accessExp := now.Add(t.cfg.AccessTTL)
	refreshExp := now.Add(t.cfg.RefreshTTL)

	access, err := t.sign(user, domain.TokenAccess, now, accessExp)
	if err != nil {
		return nil, err
	}
	refresh, err := t.sign(user, domain.TokenRefresh, now, refreshExp)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (t *TokenServiceImpl) VerifyAccess(token string) (*domain.Claims, error) {
	return t.verify(token, domain.TokenAccess)
}

func (t *TokenServiceImpl) VerifyRefresh(token string) (*domain.Claims, error) {
	return t.verify(token, domain.TokenRefresh)
}

// ====== Helpers ======

func (t *TokenServiceImpl) sign(user *domain.User, kind domain.TokenKind, now, exp time.Time) (string, error) {
	claims := identityClaims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Name:   user.DisplayName(),
		Kind:   string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.cfg.SigningKey)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

func (t *TokenServiceImpl) verify(tokenStr string, kind domain.TokenKind) (*domain.Claims, error) {
	if tokenStr == "" {
		return nil, domain.ErrInvalidToken
	}
	claims := &identityClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	tok, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.cfg.SigningKey, nil
	})
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if claims.Kind != string(kind) {
		return nil, fmt.Errorf("%w: expected %s token", domain.ErrInvalidToken, kind)
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", domain.ErrInvalidToken)
	}
	return &domain.Claims{
		UserID: id,
		Email:  claims.Email,
		Name:   claims.Name,
		Kind:   kind,
	}, nil
}
