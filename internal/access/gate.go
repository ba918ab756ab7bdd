// Package access guards plan-bearing operations behind an active subscription.
package access

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	identity "github.com/anandgupta07/coach-sub000/internal/identity/domain"
	shared "github.com/anandgupta07/coach-sub000/internal/shared/domain"
	subscriptions "github.com/anandgupta07/coach-sub000/internal/subscriptions/application"
	"github.com/anandgupta07/coach-sub000/pkg/observability"
)

// StatusChecker answers whether a caller's subscription is active.
type StatusChecker interface {
	CheckSubscription(ctx context.Context, session identity.Session) (subscriptions.Status, error)
}

// Decision is the outcome of a gate check.
type Decision struct {
	Allowed bool
	Status  subscriptions.Status
}

// Gate permits coaches and clients with an active subscription. Anything else,
// including a failed subscription lookup, is denied.
type Gate struct {
	checker StatusChecker
	metrics observability.Metrics
	logger  *slog.Logger
}

// NewGate creates a gate backed by checker.
func NewGate(checker StatusChecker, metrics observability.Metrics, logger *slog.Logger) *Gate {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{checker: checker, metrics: metrics, logger: logger.With("component", "access")}
}

// Allow decides whether session may use a plan-bearing operation. The error is
// returned for logging; the decision is already a denial when it is set.
func (g *Gate) Allow(ctx context.Context, session identity.Session) (Decision, error) {
	if session.IsCoach() {
		g.record("coach")
		return Decision{Allowed: true, Status: subscriptions.Status{IsActive: true, Exempt: true}}, nil
	}

	status, err := g.checker.CheckSubscription(ctx, session)
	if err != nil {
		g.record("error")
		return Decision{Status: status}, err
	}
	if !status.IsActive {
		g.record("denied")
		return Decision{Status: status}, nil
	}

	g.record("allowed")
	return Decision{Allowed: true, Status: status}, nil
}

// Middleware wraps next so it runs only for permitted callers. It expects the
// authenticated session in the request context and answers 401 without one
// and 403 on denial.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		session, ok := identity.SessionFromContext(ctx)
		if !ok {
			writeDenial(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}

		decision, err := g.Allow(ctx, session)
		if err != nil {
			g.logger.WarnContext(ctx, "access denied on failed subscription check",
				observability.UserIDKey, session.UserID,
				observability.ErrorKey, err,
			)
			writeDenial(w, http.StatusForbidden, string(shared.KindOf(err)), decision.Status.Message)
			return
		}
		if !decision.Allowed {
			writeDenial(w, http.StatusForbidden, "subscription_required", decision.Status.Message)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *Gate) record(result string) {
	g.metrics.Counter(observability.MetricAccessDecisions, 1, observability.T("result", result))
}

func writeDenial(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"kind": kind, "message": message})
}
