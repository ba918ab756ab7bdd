package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	identity "github.com/anandgupta07/coach-sub000/internal/identity/domain"
	"github.com/anandgupta07/coach-sub000/pkg/observability"
)

const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

// RequestContext gives every request a request ID and a correlation ID. An
// incoming X-Correlation-ID is reused; both IDs are echoed in the response.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.NewRequestContext(r.Context(), r.Header.Get(HeaderCorrelationID))
		w.Header().Set(HeaderRequestID, observability.RequestID(ctx))
		w.Header().Set(HeaderCorrelationID, observability.CorrelationID(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Instrument counts and times requests by route pattern and status.
func Instrument(next http.Handler, metrics observability.Metrics, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		tags := []observability.Tag{
			observability.T("route", route),
			observability.T("status", strconv.Itoa(rec.status)),
		}
		elapsed := time.Since(start)
		metrics.Counter(observability.MetricHTTPRequests, 1, tags...)
		metrics.Timing(observability.MetricHTTPDuration, elapsed, tags...)
		logger.DebugContext(r.Context(), "request served",
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration", elapsed,
		)
	})
}

// TokenVerifier turns a bearer token into a session.
type TokenVerifier interface {
	Verify(token string) (identity.Session, error)
}

// Authenticator verifies bearer tokens and puts the caller's session in the request context.
type Authenticator struct {
	verifier TokenVerifier
	logger   *slog.Logger
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(verifier TokenVerifier, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{verifier: verifier, logger: logger}
}

// Require rejects requests without a valid bearer token.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, r, ErrUnauthorized)
			return
		}

		session, err := a.verifier.Verify(token)
		if err != nil {
			a.logger.DebugContext(r.Context(), "bearer token rejected", observability.ErrorKey, err)
			writeError(w, r, ErrUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(identity.WithSession(r.Context(), session)))
	})
}

// RequireCoach rejects callers without the coach role. It must run after Require.
func RequireCoach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := identity.SessionFromContext(r.Context())
		if !ok {
			writeError(w, r, ErrUnauthorized)
			return
		}
		if !session.IsCoach() {
			writeError(w, r, ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
