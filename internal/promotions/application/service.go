package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anandgupta07/coach-sub000/internal/promotions/domain"
	shared "github.com/anandgupta07/coach-sub000/internal/shared/domain"
	"github.com/anandgupta07/coach-sub000/pkg/observability"
)

// Service validates promo codes against carts and consumes their uses.
// Validate never writes; Apply is the only operation that changes a usage count.
type Service struct {
	repo    domain.Repository
	metrics observability.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics records outcomes in metrics.
func WithMetrics(metrics observability.Metrics) Option {
	return func(s *Service) { s.metrics = metrics }
}

// NewService creates a promo code service.
func NewService(repo domain.Repository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:    repo,
		metrics: observability.NoopMetrics{},
		logger:  logger.With("component", "promotions"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate prices cartTotal with code without consuming a use.
func (s *Service) Validate(ctx context.Context, code string, cartTotal decimal.Decimal) (*domain.Quote, error) {
	quote, err := s.validate(ctx, code, cartTotal)
	s.metrics.Counter(observability.MetricPromoValidations, 1, observability.T("result", outcome(err)))
	return quote, err
}

func (s *Service) validate(ctx context.Context, code string, cartTotal decimal.Decimal) (*domain.Quote, error) {
	code = domain.NormalizeCode(code)
	if code == "" {
		return nil, domain.ErrPromoNotFound
	}

	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		s.logger.ErrorContext(ctx, "promo lookup failed", "code", code, observability.ErrorKey, err)
		return nil, shared.StorageError(err)
	}
	if promo == nil {
		return nil, domain.ErrPromoNotFound
	}

	quote, err := promo.Evaluate(cartTotal, s.now())
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// Apply consumes exactly one use of code. It fails with ErrUsageLimitReached when
// the last use was taken, even if an earlier Validate succeeded.
func (s *Service) Apply(ctx context.Context, code string) (*domain.PromoCode, error) {
	promo, err := s.apply(ctx, code)
	s.metrics.Counter(observability.MetricPromoApplies, 1, observability.T("result", outcome(err)))
	return promo, err
}

func (s *Service) apply(ctx context.Context, code string) (*domain.PromoCode, error) {
	code = domain.NormalizeCode(code)
	if code == "" {
		return nil, domain.ErrPromoNotFound
	}

	applied, err := s.repo.IncrementUsage(ctx, code)
	if err != nil {
		s.logger.ErrorContext(ctx, "promo apply failed", "code", code, observability.ErrorKey, err)
		return nil, shared.StorageError(err)
	}

	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, shared.StorageError(err)
	}
	if promo == nil {
		return nil, domain.ErrPromoNotFound
	}
	if !applied {
		return nil, domain.ErrUsageLimitReached
	}

	s.logger.InfoContext(ctx, "promo code applied",
		"code", promo.Code,
		"usage_count", promo.UsageCount,
		"usage_limit", promo.UsageLimit,
	)
	return promo, nil
}

// Create stores a new promo code.
func (s *Service) Create(ctx context.Context, params domain.NewPromoCodeParams) (*domain.PromoCode, error) {
	promo, err := domain.NewPromoCode(params, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, promo); err != nil {
		if shared.IsKind(err, shared.KindValidation) {
			return nil, err
		}
		return nil, shared.StorageError(err)
	}

	s.logger.InfoContext(ctx, "promo code created",
		"code", promo.Code,
		"discount_type", promo.DiscountType,
		"usage_limit", promo.UsageLimit,
	)
	return promo, nil
}

// List returns every promo code.
func (s *Service) List(ctx context.Context) ([]*domain.PromoCode, error) {
	promos, err := s.repo.List(ctx)
	if err != nil {
		return nil, shared.StorageError(err)
	}
	return promos, nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := shared.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
