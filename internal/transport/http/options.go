package http

import (
	"net/http"
	"strings"
	"time"
)

// Options carries the deployment-dependent parts of the HTTP surface.
type Options struct {
	// Production turns on Secure cookies and SameSite=None.
	Production bool
	// Development adds internal error detail to 500 responses.
	Development bool

	FrontendURL string
	CORSOrigins []string

	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (o Options) sameSite() http.SameSite {
	if o.Production {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (o Options) frontend() string {
	if o.FrontendURL == "" {
		return "/"
	}
	return o.FrontendURL
}

func (o Options) loginFailedURL() string {
	return strings.TrimRight(o.FrontendURL, "/") + "/login?error=auth_failed"
}
