package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	headerRequestID = "X-Request-ID"
	headerTraceID   = "X-Trace-ID"
	maxIDLength     = 128
)

type requestIDs struct {
	request string
	trace   string
}

type idsKey struct{}

// WithRequestAndTrace tags the request with request/trace ids, reusing the
// caller's headers when they are sane, echoes them back and logs one line
// per finished request.
func WithRequestAndTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := requestIDs{
			request: incomingID(r, headerRequestID),
			trace:   incomingID(r, headerTraceID),
		}
		r = r.WithContext(context.WithValue(r.Context(), idsKey{}, ids))
		w.Header().Set(headerRequestID, ids.request)
		w.Header().Set(headerTraceID, ids.trace)

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		slog.Info("request",
			"request_id", ids.request,
			"trace_id", ids.trace,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

func incomingID(r *http.Request, header string) string {
	if v := r.Header.Get(header); v != "" && len(v) <= maxIDLength {
		return v
	}
	return uuid.NewString()
}

func RequestIDFromContext(ctx context.Context) string {
	ids, _ := ctx.Value(idsKey{}).(requestIDs)
	return ids.request
}

func TraceIDFromContext(ctx context.Context) string {
	ids, _ := ctx.Value(idsKey{}).(requestIDs)
	return ids.trace
}

// LogAttrs returns the request/trace id pair for slog calls.
func LogAttrs(ctx context.Context) []any {
	ids, _ := ctx.Value(idsKey{}).(requestIDs)
	return []any{"request_id", ids.request, "trace_id", ids.trace}
}
