package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeJSON(t *testing.T) {
	var body struct {
		Email string `json:"email"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@x.com"}`))
	if err := DecodeJSON(httptest.NewRecorder(), r, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Email != "a@x.com" {
		t.Fatalf("unexpected email %q", body.Email)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := DecodeJSON(httptest.NewRecorder(), r, &body); err != nil {
		t.Fatalf("empty body should be accepted: %v", err)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
	if err := DecodeJSON(httptest.NewRecorder(), r, &body); !errors.Is(err, ErrBadJSON) {
		t.Fatalf("expected ErrBadJSON, got %v", err)
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]bool{"success": true})
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"success":true}` {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "[2001:db8::1]:443"
	if got := ClientIP(r); got != "2001:db8::1" {
		t.Fatalf("unexpected ip %q", got)
	}
	r.RemoteAddr = "garbage"
	if got := ClientIP(r); got != "garbage" {
		t.Fatalf("unparseable addresses are returned as is, got %q", got)
	}
}

func TestUserAgentTruncated(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("User-Agent", strings.Repeat("a", 1000))
	if got := UserAgent(r); len(got) != 512 {
		t.Fatalf("expected 512 chars, got %d", len(got))
	}
}

func TestNormalizeIP(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "ipv4 with port", input: "192.0.2.4:8080", want: "192.0.2.4", ok: true},
		{name: "ipv6 with port", input: "[2001:db8::1]:443", want: "2001:db8::1", ok: true},
		{name: "ipv6 textual port", input: "[::1]:port", want: "::1", ok: true},
		{name: "zoned ipv6", input: "fe80::1%eth0", want: "fe80::1", ok: true},
		{name: "plain ipv4", input: " 203.0.113.9 ", want: "203.0.113.9", ok: true},
		{name: "plain ipv6", input: "2001:db8::5", want: "2001:db8::5", ok: true},
		{name: "hostname", input: "example.com:80", want: "example.com:80", ok: false},
		{name: "empty", input: "", want: "", ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeIP(tc.input)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("NormalizeIP(%q) = %q, %v; want %q, %v", tc.input, got, ok, tc.want, tc.ok)
			}
		})
	}
}
