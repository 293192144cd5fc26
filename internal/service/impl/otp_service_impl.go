package impl

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"time"

	"userauth/internal/domain"
	"userauth/internal/service"
)

const (
	DefaultOTPTTL = 10 * time.Minute

	otpMin = 100000
	otpMax = 999999
)

var _ service.OTPService = (*OTPServiceImpl)(nil)

type OTPServiceImpl struct {
	ttl    time.Duration
	now    func() time.Time
	random io.Reader
}

func NewOTPServiceImpl(ttl time.Duration) *OTPServiceImpl {
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return &OTPServiceImpl{
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
		random: rand.Reader,
	}
}

// Generate draws a code uniformly from [100000, 999999].
func (o *OTPServiceImpl) Generate() (string, error) {
	n, err := rand.Int(o.random, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}

// Attach stores code with an absolute expiry, replacing any pending code.
func (o *OTPServiceImpl) Attach(ctx context.Context, users service.OTPStore, user *domain.User, code string) error {
	expiry := o.now().Add(o.ttl)
	if err := users.SetResetOTP(ctx, user.ID, code, expiry); err != nil {
		return fmt.Errorf("attach otp: %w", err)
	}
	user.ResetPasswordOTP = &code
	user.ResetPasswordExpiry = &expiry
	return nil
}

// Check classifies a supplied code. An attached code past its expiry is
// reported as expired whatever was supplied, so callers can clear it.
func (o *OTPServiceImpl) Check(user *domain.User, code string) domain.OTPStatus {
	if user == nil || !user.HasPendingOTP() {
		return domain.OTPInvalid
	}
	if o.now().After(*user.ResetPasswordExpiry) {
		return domain.OTPExpired
	}
	if code == "" || subtle.ConstantTimeCompare([]byte(*user.ResetPasswordOTP), []byte(code)) != 1 {
		return domain.OTPInvalid
	}
	return domain.OTPValid
}

func (o *OTPServiceImpl) Verify(user *domain.User, code string) bool {
	return o.Check(user, code) == domain.OTPValid
}

// Consume clears the code user currently holds. A newer code attached by
// another request in the meantime survives.
func (o *OTPServiceImpl) Consume(ctx context.Context, users service.OTPStore, user *domain.User) error {
	if user.ResetPasswordOTP == nil {
		return nil
	}
	if err := users.ClearResetOTP(ctx, user.ID, *user.ResetPasswordOTP); err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	user.ResetPasswordOTP = nil
	user.ResetPasswordExpiry = nil
	return nil
}
