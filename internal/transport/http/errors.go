package http

import (
	"errors"
	"log/slog"
	"net/http"

	"userauth/internal/domain"
	"userauth/internal/httpx"
	"userauth/internal/observability/middleware"
)

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
	Error   string              `json:"error,omitempty"`
	User    any                 `json:"user,omitempty"`
	Token   string              `json:"accessToken,omitempty"`
}

var errorMessages = []struct {
	err     error
	status  int
	message string
}{
	{domain.ErrDuplicateEmail, http.StatusBadRequest, "User with this email already exists"},
	{domain.ErrUserNotFound, http.StatusBadRequest, "Email not found"},
	{domain.ErrNoPasswordSet, http.StatusBadRequest, "Please login with Google or reset your password"},
	{domain.ErrInvalidCredentials, http.StatusBadRequest, "Invalid password"},
	{domain.ErrInvalidOTP, http.StatusBadRequest, "Invalid OTP"},
	{domain.ErrOTPExpired, http.StatusBadRequest, "OTP has expired. Please request a new one."},
	{domain.ErrNotificationFailure, http.StatusBadRequest, "Failed to send OTP email. Please try again."},
	{domain.ErrInvalidProfile, http.StatusBadRequest, "Invalid identity provider profile"},
	{httpx.ErrBadJSON, http.StatusBadRequest, "Invalid request body"},
	{domain.ErrInvalidToken, http.StatusUnauthorized, "Invalid token"},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "Access denied. No token provided."},
}

// writeError maps a service error onto a status and message. override, when
// set, replaces the default message for ErrUserNotFound.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, override string) {
	ctx := r.Context()

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		httpx.WriteJSON(w, http.StatusBadRequest, envelope{Message: "Validation failed", Errors: verr.Fields})
		return
	}

	for _, m := range errorMessages {
		if !errors.Is(err, m.err) {
			continue
		}
		msg := m.message
		if override != "" && m.err == domain.ErrUserNotFound {
			msg = override
		}
		slog.Info("request rejected", append(middleware.LogAttrs(ctx),
			"path", r.URL.Path,
			"ip", httpx.ClientIP(r),
			"user_agent", httpx.UserAgent(r),
			"reason", err.Error(),
		)...)
		httpx.WriteJSON(w, m.status, envelope{Message: msg})
		return
	}

	slog.Error("request failed", append(middleware.LogAttrs(ctx), "path", r.URL.Path, "error", err)...)
	body := envelope{Message: "Internal server error"}
	if h.opts.Development {
		body.Error = err.Error()
	}
	httpx.WriteJSON(w, http.StatusInternalServerError, body)
}
