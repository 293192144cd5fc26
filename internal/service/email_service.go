package service

import "context"

type EmailService interface {
	SendPasswordResetOTP(ctx context.Context, to, name, code string) error
	// Ping checks that the transport is reachable.
	Ping(ctx context.Context) error
}
