package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	promotions "github.com/anandgupta07/coach-sub000/internal/promotions/domain"
)

type validatePromoRequest struct {
	Code      string           `json:"code"`
	CartTotal *decimal.Decimal `json:"cartTotal"`
}

type applyPromoRequest struct {
	Code string `json:"code"`
}

type createPromoRequest struct {
	Code          string           `json:"code"`
	DiscountType  string           `json:"discountType"`
	DiscountValue decimal.Decimal  `json:"discountValue"`
	UsageLimit    int              `json:"usageLimit"`
	MinCartValue  *decimal.Decimal `json:"minCartValue,omitempty"`
	ExpiresAt     *time.Time       `json:"expiresAt,omitempty"`
}

// ValidatePromo handles POST /api/v1/promo/validate. It never consumes a use.
func (h *Handler) ValidatePromo(w http.ResponseWriter, r *http.Request) {
	var req validatePromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, badRequest("invalid JSON body"))
		return
	}
	if req.CartTotal == nil {
		writeError(w, r, badRequest("cartTotal is required"))
		return
	}

	quote, err := h.promos.Validate(r.Context(), req.Code, *req.CartTotal)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// ApplyPromo handles POST /api/v1/promo/apply. Each successful call consumes one use.
func (h *Handler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	var req applyPromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, badRequest("invalid JSON body"))
		return
	}

	promo, err := h.promos.Apply(r.Context(), req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, promo)
}

// ListPromoCodes handles GET /api/v1/promo/codes
func (h *Handler) ListPromoCodes(w http.ResponseWriter, r *http.Request) {
	promos, err := h.promos.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"promoCodes": promos})
}

// CreatePromoCode handles POST /api/v1/promo/codes
func (h *Handler) CreatePromoCode(w http.ResponseWriter, r *http.Request) {
	var req createPromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, badRequest("invalid JSON body"))
		return
	}

	promo, err := h.promos.Create(r.Context(), promotions.NewPromoCodeParams{
		Code:          req.Code,
		DiscountType:  promotions.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		UsageLimit:    req.UsageLimit,
		MinCartValue:  req.MinCartValue,
		ExpiresAt:     req.ExpiresAt,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, promo)
}
