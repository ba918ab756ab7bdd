package api

import (
	"net/http"

	shared "github.com/anandgupta07/coach-sub000/internal/shared/domain"
)

// ListPlans handles GET /api/v1/plans
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.subscriptions.ListPlans(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

// SubscriptionStatus handles GET /api/v1/subscription/status
//
// A storage failure still answers with the denied status body, using 503.
func (h *Handler) SubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.subscriptions.CheckSubscription(r.Context(), caller(r))
	if err != nil {
		if shared.IsKind(err, shared.KindStorage) {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// SubscriptionProgress handles GET /api/v1/subscription/progress
func (h *Handler) SubscriptionProgress(w http.ResponseWriter, r *http.Request) {
	view, err := h.subscriptions.Progress(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SubscriptionHistory handles GET /api/v1/subscriptions
func (h *Handler) SubscriptionHistory(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscriptions.History(r.Context(), caller(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscriptions": subs})
}

// CancelSubscription handles POST /api/v1/subscriptions/{id}/cancel
func (h *Handler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	sub, err := h.subscriptions.Cancel(r.Context(), caller(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// Workouts handles GET /api/v1/workouts. Plan content is managed elsewhere;
// this route exists so the access gate has a plan-bearing operation to guard.
func (h *Handler) Workouts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"workouts": []any{}})
}

// Diets handles GET /api/v1/diets
func (h *Handler) Diets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"diets": []any{}})
}
