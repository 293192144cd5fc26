package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AuthRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts.",
		},
		[]string{"result"},
	)

	AuthLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts by method.",
		},
		[]string{"method", "result"},
	)

	OAuthResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_oauth_resolutions_total",
			Help: "Federated logins by how the identity was resolved.",
		},
		[]string{"provider", "outcome"},
	)

	TokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Total number of token pairs issued or refreshed.",
		},
		[]string{"flow", "result"},
	)

	PasswordResetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_password_reset_total",
			Help: "Password reset steps (request, verify, reset) by result.",
		},
		[]string{"stage", "result"},
	)
)

// MustRegister registers every collector on reg with a constant service label.
func MustRegister(reg prometheus.Registerer, serviceName string) {
	prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, reg).MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		AuthRegistrationsTotal,
		AuthLoginsTotal,
		OAuthResolutionsTotal,
		TokensIssuedTotal,
		PasswordResetsTotal,
	)
}

// Result maps an error onto the result label.
func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
