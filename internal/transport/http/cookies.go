package http

import (
	"net/http"
	"time"

	"userauth/internal/domain"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
	stateCookie   = "oauth_state"

	stateTTL = 10 * time.Minute
)

func (h *Handler) setAuthCookies(w http.ResponseWriter, pair *domain.TokenPair) {
	http.SetCookie(w, h.cookie(accessCookie, pair.AccessToken, "/", h.opts.AccessTTL))
	http.SetCookie(w, h.cookie(refreshCookie, pair.RefreshToken, "/", h.opts.RefreshTTL))
}

func (h *Handler) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, h.cookie(accessCookie, "", "/", -1))
	http.SetCookie(w, h.cookie(refreshCookie, "", "/", -1))
}

// cookie builds an HttpOnly cookie; a negative ttl deletes it.
func (h *Handler) cookie(name, value, path string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		HttpOnly: true,
		Secure:   h.opts.Production,
		SameSite: h.opts.sameSite(),
	}
	if ttl < 0 {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		return c
	}
	c.MaxAge = int(ttl.Seconds())
	c.Expires = time.Now().Add(ttl)
	return c
}

// stateCookieFor is scoped to the callback path and stays Lax so the browser
// sends it on the top-level redirect back from the provider.
func (h *Handler) stateCookieFor(value string, ttl time.Duration) *http.Cookie {
	c := h.cookie(stateCookie, value, "/auth/google", ttl)
	c.SameSite = http.SameSiteLaxMode
	return c
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
