package service

import (
	"context"
	"time"

	"userauth/internal/domain"
)

// OTPStore is the slice of the user store the OTP manager writes through.
type OTPStore interface {
	SetResetOTP(ctx context.Context, id domain.UserID, code string, expiry time.Time) error
	ClearResetOTP(ctx context.Context, id domain.UserID, code string) error
}

type OTPService interface {
	Generate() (string, error)
	Attach(ctx context.Context, users OTPStore, user *domain.User, code string) error
	Check(user *domain.User, code string) domain.OTPStatus
	Verify(user *domain.User, code string) bool
	Consume(ctx context.Context, users OTPStore, user *domain.User) error
}
