package impl

import (
	"context"
	"time"

	"userauth/internal/domain"
	"userauth/internal/store"

	"github.com/google/uuid"
)

type dataStore interface {
	WithTx(ctx context.Context, fn func(tx storeTx) error) error
}

type storeTx interface {
	Users() userStore
}

type userStore interface {
	Create(ctx context.Context, usr *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
	LinkGoogle(ctx context.Context, id uuid.UUID, googleID string, name, avatar *string) error
	SetResetOTP(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error
	ClearResetOTP(ctx context.Context, id uuid.UUID, code string) error
	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash, code string, now time.Time) (bool, error)
}

type gormStoreAdapter struct {
	store *store.Store
}

func (g gormStoreAdapter) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	if g.store == nil {
		return ErrNilStore
	}
	return g.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(gormTxAdapter{tx: tx})
	})
}

type gormTxAdapter struct {
	tx *store.Store
}

func (g gormTxAdapter) Users() userStore { return g.tx.Users() }
