package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"userauth/internal/domain"
	"userauth/internal/dto"
	"userauth/internal/events"
	"userauth/internal/observability/metrics"
	"userauth/internal/observability/middleware"
	"userauth/internal/service"
	"userauth/internal/store"

	"github.com/google/uuid"
)

var _ service.AuthService = (*AuthServiceImpl)(nil)

type AuthServiceImpl struct {
	Store           dataStore
	PasswordService service.PasswordService
	TService        service.TokenService
	OTP             service.OTPService
	Identity        service.IdentityService
	Email           service.EmailService
	Events          events.Publisher

	now func() time.Time
}

func NewAuthServiceImpl(
	st *store.Store,
	passwordService service.PasswordService,
	tokenService service.TokenService,
	otpService service.OTPService,
	identityService service.IdentityService,
	emailService service.EmailService,
	publisher events.Publisher,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		Store:           gormStoreAdapter{store: st},
		PasswordService: passwordService,
		TService:        tokenService,
		OTP:             otpService,
		Identity:        identityService,
		Email:           emailService,
		Events:          publisher,
	}
}

func (a *AuthServiceImpl) Register(ctx context.Context, r dto.RegisterRequest) (_ *dto.AuthResult, err error) {
	defer func() {
		metrics.AuthRegistrationsTotal.WithLabelValues(metrics.Result(err)).Inc()
	}()

	r.Email = domain.NormalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	if err := validateStruct(r); err != nil {
		return nil, err
	}

	// The unique index on email still guards the insert below.
	if _, err := a.lookupByEmail(ctx, r.Email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := a.PasswordService.Hash(r.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := a.clock()
	user := &domain.User{
		ID:         uuid.New(),
		Email:      r.Email,
		Password:   &hash,
		Name:       &r.Name,
		IsVerified: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err = a.Store.WithTx(ctx, func(tx storeTx) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				return domain.ErrDuplicateEmail
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.publish(ctx, events.UserRegistered{UserID: user.ID.String(), Email: user.Email, Method: "password", At: now})
	return a.issue(ctx, "register", user)
}

func (a *AuthServiceImpl) Login(ctx context.Context, r dto.LoginRequest) (_ *dto.AuthResult, err error) {
	defer func() {
		metrics.AuthLoginsTotal.WithLabelValues("password", metrics.Result(err)).Inc()
	}()

	r.Email = domain.NormalizeEmail(r.Email)
	if err := validateStruct(r); err != nil {
		return nil, err
	}

	user, err := a.lookupByEmail(ctx, r.Email)
	if err != nil {
		return nil, err
	}
	if !user.HasPassword() {
		return nil, domain.ErrNoPasswordSet
	}
	if !a.PasswordService.Verify(r.Password, *user.Password) {
		slog.Info("login rejected", append(middleware.LogAttrs(ctx), "user_id", user.ID, "reason", "password mismatch")...)
		return nil, domain.ErrInvalidCredentials
	}
	return a.issue(ctx, "login", user)
}

func (a *AuthServiceImpl) GoogleLogin(ctx context.Context, profile domain.FederatedProfile) (_ *dto.AuthResult, err error) {
	defer func() {
		metrics.AuthLoginsTotal.WithLabelValues(ProviderGoogle, metrics.Result(err)).Inc()
	}()

	profile.Provider = ProviderGoogle
	user, outcome, err := a.Identity.Resolve(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("resolve google identity: %w", err)
	}
	metrics.OAuthResolutionsTotal.WithLabelValues(ProviderGoogle, outcome.String()).Inc()
	slog.Info("google identity resolved", append(middleware.LogAttrs(ctx), "user_id", user.ID, "outcome", outcome.String())...)

	now := a.clock()
	switch outcome {
	case domain.ResolvedCreated:
		a.publish(ctx, events.UserRegistered{UserID: user.ID.String(), Email: user.Email, Method: ProviderGoogle, At: now})
	case domain.ResolvedLinked:
		a.publish(ctx, events.AccountLinked{UserID: user.ID.String(), Provider: ProviderGoogle, At: now})
	}
	return a.issue(ctx, ProviderGoogle, user)
}

func (a *AuthServiceImpl) CurrentUser(ctx context.Context, userID domain.UserID) (*dto.UserView, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}
	user, err := a.lookupByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := dto.NewUserView(user)
	return &view, nil
}

// Refresh trades a valid refresh token for a new pair. The user is reloaded
// so the new claims reflect current profile data.
func (a *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResult, error) {
	claims, err := a.TService.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := a.lookupByID(ctx, claims.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: unknown subject", domain.ErrInvalidToken)
	}
	if err != nil {
		return nil, err
	}
	return a.issue(ctx, "refresh", user)
}

// Logout has nothing to invalidate server side; tokens live until expiry.
func (a *AuthServiceImpl) Logout(ctx context.Context) error {
	slog.Info("logout", middleware.LogAttrs(ctx)...)
	return nil
}

func (a *AuthServiceImpl) ForgotPassword(ctx context.Context, r dto.ForgotPasswordRequest) (err error) {
	defer func() {
		metrics.PasswordResetsTotal.WithLabelValues("request", metrics.Result(err)).Inc()
	}()

	r.Email = domain.NormalizeEmail(r.Email)
	if err := validateStruct(r); err != nil {
		return err
	}

	var (
		user *domain.User
		code string
	)
	err = a.Store.WithTx(ctx, func(tx storeTx) error {
		u, err := tx.Users().GetByEmail(ctx, r.Email)
		if err != nil {
			return translateUserErr(err)
		}
		if code, err = a.OTP.Generate(); err != nil {
			return err
		}
		if err := a.OTP.Attach(ctx, tx.Users(), u, code); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return err
	}

	// The mail goes out after commit so no transaction is held open on SMTP.
	if sendErr := a.Email.SendPasswordResetOTP(ctx, user.Email, user.DisplayName(), code); sendErr != nil {
		rollbackErr := a.Store.WithTx(ctx, func(tx storeTx) error {
			return a.OTP.Consume(ctx, tx.Users(), user)
		})
		if rollbackErr != nil {
			slog.Error("clear otp after failed send", append(middleware.LogAttrs(ctx), "user_id", user.ID, "error", rollbackErr)...)
		}
		return fmt.Errorf("%w: %v", domain.ErrNotificationFailure, sendErr)
	}
	slog.Info("password reset code issued", append(middleware.LogAttrs(ctx), "user_id", user.ID)...)
	return nil
}

// VerifyOTP leaves a valid code attached; ResetPassword checks it again.
func (a *AuthServiceImpl) VerifyOTP(ctx context.Context, r dto.VerifyOTPRequest) (err error) {
	defer func() {
		metrics.PasswordResetsTotal.WithLabelValues("verify", metrics.Result(err)).Inc()
	}()

	r.Email = domain.NormalizeEmail(r.Email)
	r.OTP = strings.TrimSpace(r.OTP)
	if err := validateStruct(r); err != nil {
		return err
	}
	_, err = a.checkOTP(ctx, r.Email, r.OTP)
	return err
}

func (a *AuthServiceImpl) ResetPassword(ctx context.Context, r dto.ResetPasswordRequest) (err error) {
	defer func() {
		metrics.PasswordResetsTotal.WithLabelValues("reset", metrics.Result(err)).Inc()
	}()

	r.Email = domain.NormalizeEmail(r.Email)
	r.OTP = strings.TrimSpace(r.OTP)
	if err := validateStruct(r); err != nil {
		return err
	}

	user, err := a.checkOTP(ctx, r.Email, r.OTP)
	if err != nil {
		return err
	}

	hash, err := a.PasswordService.Hash(r.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = a.Store.WithTx(ctx, func(tx storeTx) error {
		ok, err := tx.Users().ResetPassword(ctx, user.ID, hash, r.OTP, a.clock())
		if err != nil {
			return fmt.Errorf("reset password: %w", err)
		}
		if !ok {
			// Consumed or replaced by a concurrent request since the check.
			return domain.ErrInvalidOTP
		}
		return nil
	})
	if err != nil {
		return err
	}

	a.publish(ctx, events.PasswordReset{UserID: user.ID.String(), At: a.clock()})
	return nil
}

// ====== Helpers ======

// checkOTP loads the user and classifies code. An expired code is cleared and
// that clearing is committed even though the call fails.
func (a *AuthServiceImpl) checkOTP(ctx context.Context, email, code string) (*domain.User, error) {
	var (
		user   *domain.User
		status domain.OTPStatus
	)
	err := a.Store.WithTx(ctx, func(tx storeTx) error {
		u, err := tx.Users().GetByEmail(ctx, email)
		if err != nil {
			return translateUserErr(err)
		}
		user = u
		status = a.OTP.Check(u, code)
		if status == domain.OTPExpired {
			return a.OTP.Consume(ctx, tx.Users(), u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	switch status {
	case domain.OTPValid:
		return user, nil
	case domain.OTPExpired:
		return nil, domain.ErrOTPExpired
	default:
		return nil, domain.ErrInvalidOTP
	}
}

func (a *AuthServiceImpl) issue(ctx context.Context, flow string, user *domain.User) (_ *dto.AuthResult, err error) {
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues(flow, metrics.Result(err)).Inc()
	}()

	pair, err := a.TService.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	slog.Info("issued tokens", append(middleware.LogAttrs(ctx), "user_id", user.ID, "flow", flow)...)
	return &dto.AuthResult{User: dto.NewUserView(user), Tokens: pair}, nil
}

func (a *AuthServiceImpl) lookupByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user *domain.User
	err := a.Store.WithTx(ctx, func(tx storeTx) error {
		u, err := tx.Users().GetByEmail(ctx, email)
		if err != nil {
			return translateUserErr(err)
		}
		user = u
		return nil
	})
	return user, err
}

func (a *AuthServiceImpl) lookupByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var user *domain.User
	err := a.Store.WithTx(ctx, func(tx storeTx) error {
		u, err := tx.Users().GetByID(ctx, id)
		if err != nil {
			return translateUserErr(err)
		}
		user = u
		return nil
	})
	return user, err
}

func (a *AuthServiceImpl) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now().UTC()
}

func (a *AuthServiceImpl) publish(ctx context.Context, e events.Event) {
	if a.Events != nil {
		a.Events.Publish(ctx, e)
	}
}

func translateUserErr(err error) error {
	if errors.Is(err, store.ErrRecordNotFound) {
		return domain.ErrUserNotFound
	}
	return fmt.Errorf("load user: %w", err)
}
