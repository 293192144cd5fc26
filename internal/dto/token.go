package dto

import "userauth/internal/domain"

// AuthResult is what every successful sign-in flow hands back to the boundary:
// the public user view plus the freshly issued token pair.
type AuthResult struct {
	User   UserView
	Tokens *domain.TokenPair
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
