package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	checkout "github.com/anandgupta07/coach-sub000/internal/checkout/domain"
	identity "github.com/anandgupta07/coach-sub000/internal/identity/domain"
)

// checkoutView is a session plus its derived amounts. Every amount in the
// view, the completion's included, is a fixed two-decimal string.
type checkoutView struct {
	*checkout.Session
	Subtotal    string          `json:"subtotal"`
	Discount    string          `json:"discount"`
	FinalAmount string          `json:"finalAmount"`
	Completion  *completionView `json:"completion,omitempty"`
}

type completionView struct {
	*checkout.Completion
	FinalAmount string `json:"finalAmount"`
}

func newCheckoutView(s *checkout.Session) checkoutView {
	v := checkoutView{
		Session:     s,
		Subtotal:    s.Subtotal().StringFixed(2),
		Discount:    s.Discount().StringFixed(2),
		FinalAmount: s.FinalAmount().StringFixed(2),
	}
	if s.Completion != nil {
		v.Completion = &completionView{
			Completion:  s.Completion,
			FinalAmount: s.Completion.FinalAmount.StringFixed(2),
		}
	}
	return v
}

type checkoutActionRequest struct {
	PlanID  uuid.UUID        `json:"planId"`
	Code    string           `json:"code"`
	Details checkout.Details `json:"details"`
}

// StartCheckout handles POST /api/v1/checkout/sessions
func (h *Handler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	session, err := h.checkout.Start(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCheckoutView(session))
}

// GetCheckout handles GET /api/v1/checkout/sessions/{id}
func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.checkout.Get(r.Context(), caller(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCheckoutView(session))
}

// CheckoutAction handles POST /api/v1/checkout/sessions/{id}/{action}
func (h *Handler) CheckoutAction(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req checkoutActionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, badRequest("invalid JSON body"))
			return
		}
	}

	ctx := r.Context()
	who := caller(r)
	var session *checkout.Session

	switch action := r.PathValue("action"); action {
	case "items":
		session, err = h.checkout.AddItem(ctx, who, id, req.PlanID)
	case "remove-item":
		session, err = h.checkout.RemoveItem(ctx, who, id, req.PlanID)
	case "promo":
		session, err = h.checkout.ApplyPromo(ctx, who, id, req.Code)
	case "clear-promo":
		session, err = h.checkout.ClearPromo(ctx, who, id)
	case "details":
		session, err = h.checkout.SetDetails(ctx, who, id, req.Details)
	case "next":
		session, err = h.checkout.Next(ctx, who, id)
	case "back":
		session, err = h.checkout.Back(ctx, who, id)
	case "reset":
		session, err = h.checkout.Reset(ctx, who, id)
	case "confirm":
		session, err = h.checkout.ConfirmPayment(ctx, who, id)
	case "cancel":
		h.cancelCheckout(w, r, who, id)
		return
	default:
		writeError(w, r, &APIError{Status: http.StatusNotFound, Kind: "not_found", Message: "unknown checkout action '" + action + "'"})
		return
	}

	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCheckoutView(session))
}

func (h *Handler) cancelCheckout(w http.ResponseWriter, r *http.Request, who identity.Session, id uuid.UUID) {
	if err := h.checkout.Cancel(r.Context(), who, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
