package service

import (
	"context"

	"userauth/internal/domain"
)

type IdentityService interface {
	Resolve(ctx context.Context, profile domain.FederatedProfile) (*domain.User, domain.ResolveOutcome, error)
}
