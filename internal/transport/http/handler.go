package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"userauth/internal/domain"
	"userauth/internal/dto"
	"userauth/internal/httpx"
	"userauth/internal/oauth"
	"userauth/internal/observability/middleware"
	"userauth/internal/service"
)

// GoogleAuth is the federated provider the callback flow talks to.
type GoogleAuth interface {
	AuthCodeURL(state string) string
	Profile(ctx context.Context, code string) (*domain.FederatedProfile, error)
}

type Handler struct {
	auth   service.AuthService
	tokens service.TokenService
	google GoogleAuth // nil when Google sign-in is not configured
	opts   Options
}

func NewHandler(auth service.AuthService, tokens service.TokenService, google GoogleAuth, opts Options) *Handler {
	return &Handler{auth: auth, tokens: tokens, google: google, opts: opts}
}

// ====== Credentials ======

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err, "")
		return
	}
	res, err := h.auth.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}
	h.setAuthCookies(w, res.Tokens)
	httpx.WriteJSON(w, http.StatusCreated, envelope{
		Success: true,
		Message: "User registered successfully",
		User:    res.User,
		Token:   res.Tokens.AccessToken,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err, "")
		return
	}
	res, err := h.auth.Login(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err, "Email not found. Please register first.")
		return
	}
	h.setAuthCookies(w, res.Tokens)
	httpx.WriteJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Login successful",
		User:    res.User,
		Token:   res.Tokens.AccessToken,
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(w, r, domain.ErrUnauthenticated, "")
		return
	}
	user, err := h.auth.CurrentUser(r.Context(), claims.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		err = domain.ErrInvalidToken
	}
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, envelope{Success: true, User: user})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		h.writeError(w, r, err, "")
		return
	}
	h.clearAuthCookies(w)
	httpx.WriteJSON(w, http.StatusOK, envelope{Success: true, Message: "Logged out successfully"})
}

// refresh reads the refresh token from its cookie, falling back to the body.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	token := cookieValue(r, refreshCookie)
	if token == "" {
		var req dto.RefreshRequest
		if err := httpx.DecodeJSON(w, r, &req); err != nil {
			h.writeError(w, r, err, "")
			return
		}
		token = req.RefreshToken
	}
	if token == "" {
		h.writeError(w, r, domain.ErrUnauthenticated, "")
		return
	}
	res, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			h.clearAuthCookies(w)
		}
		h.writeError(w, r, err, "")
		return
	}
	h.setAuthCookies(w, res.Tokens)
	httpx.WriteJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Token refreshed successfully",
		User:    res.User,
		Token:   res.Tokens.AccessToken,
	})
}

// ====== Password reset ======

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err, "")
		return
	}
	if err := h.auth.ForgotPassword(r.Context(), req); err != nil {
		h.writeError(w, r, err, "Email not found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, envelope{Success: true, Message: "OTP has been sent to your email address"})
}

func (h *Handler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyOTPRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err, "")
		return
	}
	if err := h.auth.VerifyOTP(r.Context(), req); err != nil {
		h.writeError(w, r, err, "Invalid email")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, envelope{Success: true, Message: "OTP verified successfully"})
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err, "")
		return
	}
	if err := h.auth.ResetPassword(r.Context(), req); err != nil {
		h.writeError(w, r, err, "Invalid email")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, envelope{Success: true, Message: "Password reset successfully"})
}

// ====== Google ======

func (h *Handler) googleStart(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		h.oauthFailed(w, r, errors.New("google sign-in not configured"))
		return
	}
	state, err := oauth.NewState()
	if err != nil {
		h.oauthFailed(w, r, err)
		return
	}
	http.SetCookie(w, h.stateCookieFor(state, stateTTL))
	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (h *Handler) googleCallback(w http.ResponseWriter, r *http.Request) {
	expected := cookieValue(r, stateCookie)
	http.SetCookie(w, h.stateCookieFor("", -1))

	if h.google == nil {
		h.oauthFailed(w, r, errors.New("google sign-in not configured"))
		return
	}
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		h.oauthFailed(w, r, errors.New("provider error: "+e))
		return
	}
	state := q.Get("state")
	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(state)) != 1 {
		h.oauthFailed(w, r, errors.New("state mismatch"))
		return
	}

	profile, err := h.google.Profile(r.Context(), q.Get("code"))
	if err != nil {
		h.oauthFailed(w, r, err)
		return
	}
	res, err := h.auth.GoogleLogin(r.Context(), *profile)
	if err != nil {
		h.oauthFailed(w, r, err)
		return
	}
	h.setAuthCookies(w, res.Tokens)
	http.Redirect(w, r, h.opts.frontend(), http.StatusFound)
}

// oauthFailed redirects back to the login page; browser navigations never get JSON.
func (h *Handler) oauthFailed(w http.ResponseWriter, r *http.Request, err error) {
	slog.Warn("google sign-in failed", append(middleware.LogAttrs(r.Context()), "ip", httpx.ClientIP(r), "error", err)...)
	http.Redirect(w, r, h.opts.loginFailedURL(), http.StatusFound)
}

// ====== Service ======

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Authentication API Server",
		"version": "1.0.0",
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusNotFound, envelope{Message: "Route not found"})
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusMethodNotAllowed, envelope{Message: "Method not allowed"})
}
