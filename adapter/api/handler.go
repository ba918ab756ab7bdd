package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	checkout "github.com/anandgupta07/coach-sub000/internal/checkout/domain"
	identity "github.com/anandgupta07/coach-sub000/internal/identity/domain"
	promotions "github.com/anandgupta07/coach-sub000/internal/promotions/domain"
	subscriptionsApp "github.com/anandgupta07/coach-sub000/internal/subscriptions/application"
	subscriptions "github.com/anandgupta07/coach-sub000/internal/subscriptions/domain"
)

// SubscriptionService is the subscription surface the API needs.
type SubscriptionService interface {
	CheckSubscription(ctx context.Context, session identity.Session) (subscriptionsApp.Status, error)
	Progress(ctx context.Context, session identity.Session) (*subscriptionsApp.ProgressView, error)
	History(ctx context.Context, userID uuid.UUID) ([]*subscriptions.Subscription, error)
	Cancel(ctx context.Context, session identity.Session, id uuid.UUID) (*subscriptions.Subscription, error)
	ListPlans(ctx context.Context) ([]subscriptions.Plan, error)
}

// PromoService is the promo code surface the API needs.
type PromoService interface {
	Validate(ctx context.Context, code string, cartTotal decimal.Decimal) (*promotions.Quote, error)
	Apply(ctx context.Context, code string) (*promotions.PromoCode, error)
	Create(ctx context.Context, params promotions.NewPromoCodeParams) (*promotions.PromoCode, error)
	List(ctx context.Context) ([]*promotions.PromoCode, error)
}

// CheckoutService is the checkout surface the API needs.
type CheckoutService interface {
	Start(ctx context.Context, who identity.Session) (*checkout.Session, error)
	Get(ctx context.Context, who identity.Session, id uuid.UUID) (*checkout.Session, error)
	AddItem(ctx context.Context, who identity.Session, id, planID uuid.UUID) (*checkout.Session, error)
	RemoveItem(ctx context.Context, who identity.Session, id, planID uuid.UUID) (*checkout.Session, error)
	ApplyPromo(ctx context.Context, who identity.Session, id uuid.UUID, code string) (*checkout.Session, error)
	ClearPromo(ctx context.Context, who identity.Session, id uuid.UUID) (*checkout.Session, error)
	SetDetails(ctx context.Context, who identity.Session, id uuid.UUID, details checkout.Details) (*checkout.Session, error)
	Next(ctx context.Context, who identity.Session, id uuid.UUID) (*checkout.Session, error)
	Back(ctx context.Context, who identity.Session, id uuid.UUID) (*checkout.Session, error)
	Reset(ctx context.Context, who identity.Session, id uuid.UUID) (*checkout.Session, error)
	Cancel(ctx context.Context, who identity.Session, id uuid.UUID) error
	ConfirmPayment(ctx context.Context, who identity.Session, id uuid.UUID) (*checkout.Session, error)
}

// Handler serves the portal API routes.
type Handler struct {
	subscriptions SubscriptionService
	promos        PromoService
	checkout      CheckoutService
	gate          func(http.Handler) http.Handler
	logger        *slog.Logger
}

// HandlerConfig holds dependencies for the handler.
type HandlerConfig struct {
	Subscriptions SubscriptionService
	Promos        PromoService
	Checkout      CheckoutService
	// Gate wraps plan-bearing routes, normally access.Gate.Middleware.
	Gate   func(http.Handler) http.Handler
	Logger *slog.Logger
}

// NewHandler creates a new handler.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Handler{
		subscriptions: cfg.Subscriptions,
		promos:        cfg.Promos,
		checkout:      cfg.Checkout,
		gate:          cfg.Gate,
		logger:        cfg.Logger,
	}
}

// Gate wraps next with the access gate.
func (h *Handler) Gate(next http.Handler) http.Handler {
	return h.gate(next)
}

// caller returns the authenticated session placed by Authenticator.Require.
func caller(r *http.Request) identity.Session {
	session, _ := identity.SessionFromContext(r.Context())
	return session
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, badRequest("path parameter '" + name + "' must be a UUID")
	}
	return id, nil
}
