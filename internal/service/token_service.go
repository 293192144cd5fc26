package service

import "userauth/internal/domain"

type TokenService interface {
	Issue(user *domain.User) (*domain.TokenPair, error)
	VerifyAccess(token string) (*domain.Claims, error)
	VerifyRefresh(token string) (*domain.Claims, error)
}
