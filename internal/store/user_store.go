package store

import (
	"context"
	"time"

	"userauth/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

// Create inserts a user. A clash on email or google_id comes back as
// ErrDuplicateKey; the unique index, not any prior lookup, decides.
func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	now := time.Now().UTC()
	if usr.CreatedAt.IsZero() {
		usr.CreatedAt = now
	}
	usr.UpdatedAt = now
	return translate(u.db.WithContext(ctx).Create(usr).Error)
}

func (u *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return u.first(ctx, "id = ?", id)
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return u.first(ctx, "email = ?", email)
}

func (u *UserStore) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return u.first(ctx, "google_id = ?", googleID)
}

func (u *UserStore) first(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// LinkGoogle attaches a Google identity to an existing user. Name and avatar
// are only written when non-nil; callers decide what may be backfilled.
func (u *UserStore) LinkGoogle(ctx context.Context, id uuid.UUID, googleID string, name, avatar *string) error {
	fields := map[string]any{
		"google_id":  googleID,
		"updated_at": time.Now().UTC(),
	}
	if name != nil {
		fields["name"] = *name
	}
	if avatar != nil {
		fields["avatar"] = *avatar
	}
	return u.update(ctx, id, fields)
}

func (u *UserStore) SetResetOTP(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error {
	return u.update(ctx, id, map[string]any{
		"reset_password_otp":    code,
		"reset_password_expiry": expiry.UTC(),
		"updated_at":            time.Now().UTC(),
	})
}

// ClearResetOTP detaches code if it is still the one attached. A code that
// was already replaced or cleared is left alone.
func (u *UserStore) ClearResetOTP(ctx context.Context, id uuid.UUID, code string) error {
	tx := u.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ? AND reset_password_otp = ?", id, code).
		Updates(map[string]any{
			"reset_password_otp":    nil,
			"reset_password_expiry": nil,
			"updated_at":            time.Now().UTC(),
		})
	return translate(tx.Error)
}

// ResetPassword replaces the hash and clears the reset code in one statement,
// guarded on the code still being attached and unexpired at now. It reports
// false when the code was consumed, replaced or ran out in the meantime.
func (u *UserStore) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash, code string, now time.Time) (bool, error) {
	tx := u.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ? AND reset_password_otp = ? AND reset_password_expiry >= ?", id, code, now.UTC()).
		Updates(map[string]any{
			"password":              passwordHash,
			"reset_password_otp":    nil,
			"reset_password_expiry": nil,
			"updated_at":            time.Now().UTC(),
		})
	if tx.Error != nil {
		return false, translate(tx.Error)
	}
	return tx.RowsAffected == 1, nil
}

func (u *UserStore) update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	tx := u.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(fields)
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
