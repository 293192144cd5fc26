package domain

import "time"

type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// Claims is the identity embedded in every signed token.
type Claims struct {
	UserID UserID
	Email  string
	Name   string
	Kind   TokenKind
}

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
