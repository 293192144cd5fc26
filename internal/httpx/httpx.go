package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"unicode/utf8"
)

const (
	// MaxBodyBytes caps JSON request bodies.
	MaxBodyBytes = 10 << 20

	MaxUserAgentLength = 512
)

var ErrBadJSON = errors.New("malformed JSON body")

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// DecodeJSON reads r's body into dst. An empty body leaves dst untouched.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Join(ErrBadJSON, err)
	}
	return nil
}

// ClientIP returns the normalized remote address. Forwarded headers are
// expected to have been folded into RemoteAddr by a proxy-aware middleware.
func ClientIP(r *http.Request) string {
	if ip, ok := NormalizeIP(r.RemoteAddr); ok {
		return ip
	}
	return r.RemoteAddr
}

// NormalizeIP strips any port and zone from raw and reports whether what is
// left parses as an IP address.
func NormalizeIP(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	host := raw
	if h, _, err := net.SplitHostPort(raw); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(strings.Trim(host, "[]"))
	if err != nil {
		return raw, false
	}
	return addr.WithZone("").String(), true
}

// UserAgent returns the request's user agent cut to MaxUserAgentLength runes.
func UserAgent(r *http.Request) string {
	ua := r.UserAgent()
	if utf8.RuneCountInString(ua) <= MaxUserAgentLength {
		return ua
	}
	runes := []rune(ua)
	return string(runes[:MaxUserAgentLength])
}
