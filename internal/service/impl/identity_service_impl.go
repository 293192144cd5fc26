package impl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"userauth/internal/domain"
	"userauth/internal/service"
	"userauth/internal/store"

	"github.com/google/uuid"
)

const ProviderGoogle = "google"

var _ service.IdentityService = (*IdentityServiceImpl)(nil)

// IdentityServiceImpl reconciles a federated login with local user records so
// that each email maps to at most one user.
type IdentityServiceImpl struct {
	Store dataStore
	now   func() time.Time
}

func NewIdentityServiceImpl(st *store.Store) *IdentityServiceImpl {
	return &IdentityServiceImpl{
		Store: gormStoreAdapter{store: st},
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Resolve runs in one transaction, in strict order:
//  1. a user already holding this provider id is returned as is;
//  2. a user with the same email gets the provider id linked, with name and
//     avatar only filled in where the record had none;
//  3. otherwise a verified, password-less user is created.
//
// Any store failure aborts the whole resolution.
func (s *IdentityServiceImpl) Resolve(ctx context.Context, p domain.FederatedProfile) (*domain.User, domain.ResolveOutcome, error) {
	p.ProviderID = strings.TrimSpace(p.ProviderID)
	p.Email = domain.NormalizeEmail(p.Email)
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	p.PhotoURL = strings.TrimSpace(p.PhotoURL)
	if p.Provider != "" && p.Provider != ProviderGoogle {
		return nil, 0, fmt.Errorf("%w: unsupported provider %q", domain.ErrInvalidProfile, p.Provider)
	}
	if p.ProviderID == "" || p.Email == "" {
		return nil, 0, domain.ErrInvalidProfile
	}

	var (
		user    *domain.User
		outcome domain.ResolveOutcome
	)
	err := s.Store.WithTx(ctx, func(tx storeTx) error {
		users := tx.Users()

		existing, err := users.GetByGoogleID(ctx, p.ProviderID)
		switch {
		case err == nil:
			user, outcome = existing, domain.ResolvedExisting
			return nil
		case !errors.Is(err, store.ErrRecordNotFound):
			return fmt.Errorf("lookup by google id: %w", err)
		}

		byEmail, err := users.GetByEmail(ctx, p.Email)
		switch {
		case err == nil:
			var name, avatar *string
			if isBlank(byEmail.Name) && p.DisplayName != "" {
				name = &p.DisplayName
			}
			if isBlank(byEmail.Avatar) && p.PhotoURL != "" {
				avatar = &p.PhotoURL
			}
			if err := users.LinkGoogle(ctx, byEmail.ID, p.ProviderID, name, avatar); err != nil {
				return fmt.Errorf("link google account: %w", err)
			}
			googleID := p.ProviderID
			byEmail.GoogleID = &googleID
			if name != nil {
				byEmail.Name = name
			}
			if avatar != nil {
				byEmail.Avatar = avatar
			}
			user, outcome = byEmail, domain.ResolvedLinked
			return nil
		case !errors.Is(err, store.ErrRecordNotFound):
			return fmt.Errorf("lookup by email: %w", err)
		}

		now := s.now()
		created := &domain.User{
			ID:         uuid.New(),
			Email:      p.Email,
			GoogleID:   &p.ProviderID,
			Name:       optional(p.DisplayName),
			Avatar:     optional(p.PhotoURL),
			IsVerified: true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := users.Create(ctx, created); err != nil {
			return fmt.Errorf("create federated user: %w", err)
		}
		user, outcome = created, domain.ResolvedCreated
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return user, outcome, nil
}

func isBlank(s *string) bool { return s == nil || strings.TrimSpace(*s) == "" }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
