package service

import (
	"context"

	"userauth/internal/domain"
	"userauth/internal/dto"
)

type AuthService interface {
	Register(ctx context.Context, r dto.RegisterRequest) (*dto.AuthResult, error)
	Login(ctx context.Context, r dto.LoginRequest) (*dto.AuthResult, error)
	GoogleLogin(ctx context.Context, profile domain.FederatedProfile) (*dto.AuthResult, error)
	CurrentUser(ctx context.Context, userID domain.UserID) (*dto.UserView, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResult, error)
	Logout(ctx context.Context) error

	ForgotPassword(ctx context.Context, r dto.ForgotPasswordRequest) error
	VerifyOTP(ctx context.Context, r dto.VerifyOTPRequest) error
	ResetPassword(ctx context.Context, r dto.ResetPasswordRequest) error
}
