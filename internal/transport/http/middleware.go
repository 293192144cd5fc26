package http

import (
	"context"
	"net/http"
	"strings"

	"userauth/internal/domain"
)

type claimsKey struct{}

// RequireAuth admits requests carrying a valid access token, from the
// accessToken cookie or an Authorization bearer header, and stores the
// verified claims in the request context.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := cookieValue(r, accessCookie)
		if token == "" {
			token = bearerToken(r)
		}
		if token == "" {
			h.writeError(w, r, domain.ErrUnauthenticated, "")
			return
		}
		claims, err := h.tokens.VerifyAccess(token)
		if err != nil {
			h.writeError(w, r, err, "")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

func ClaimsFromContext(ctx context.Context) (*domain.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*domain.Claims)
	return c, ok
}

func bearerToken(r *http.Request) string {
	const prefix = "bearer "
	v := r.Header.Get("Authorization")
	if len(v) <= len(prefix) || !strings.EqualFold(v[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(v[len(prefix):])
}
