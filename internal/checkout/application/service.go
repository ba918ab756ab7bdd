package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/anandgupta07/coach-sub000/internal/checkout/domain"
	identity "github.com/anandgupta07/coach-sub000/internal/identity/domain"
	promotions "github.com/anandgupta07/coach-sub000/internal/promotions/domain"
	sharedApplication "github.com/anandgupta07/coach-sub000/internal/shared/application"
	shared "github.com/anandgupta07/coach-sub000/internal/shared/domain"
	subscriptions "github.com/anandgupta07/coach-sub000/internal/subscriptions/domain"
	"github.com/anandgupta07/coach-sub000/pkg/observability"
)

// DefaultSuccessLinger is how long a completed session shows its confirmation.
const DefaultSuccessLinger = 5 * time.Second

// Service drives checkout sessions through the cart, details, payment and success steps.
type Service struct {
	store   domain.SessionStore
	plans   PlanCatalog
	promos  PromoPricer
	subs    Activator
	uow     sharedApplication.UnitOfWork
	handoff HandoffChannel
	events  sharedApplication.EventPublisher
	metrics observability.Metrics
	logger  *slog.Logger
	linger  time.Duration
	now     func() time.Time
}

// Deps are the collaborators a Service needs.
type Deps struct {
	Store      domain.SessionStore
	Plans      PlanCatalog
	Promos     PromoPricer
	Activator  Activator
	UnitOfWork sharedApplication.UnitOfWork
	Handoff    HandoffChannel
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSuccessLinger sets how long a completed session stays on the success step.
func WithSuccessLinger(d time.Duration) Option {
	return func(s *Service) { s.linger = d }
}

// WithEventPublisher publishes checkout.completed through events.
func WithEventPublisher(events sharedApplication.EventPublisher) Option {
	return func(s *Service) { s.events = events }
}

// WithMetrics records transitions in metrics.
func WithMetrics(metrics observability.Metrics) Option {
	return func(s *Service) { s.metrics = metrics }
}

// NewService creates a checkout service.
func NewService(deps Deps, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:   deps.Store,
		plans:   deps.Plans,
		promos:  deps.Promos,
		subs:    deps.Activator,
		uow:     deps.UnitOfWork,
		handoff: deps.Handoff,
		events:  sharedApplication.NoopEventPublisher{},
		metrics: observability.NoopMetrics{},
		logger:  logger.With("component", "checkout"),
		linger:  DefaultSuccessLinger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens an empty cart for the caller.
func (s *Service) Start(ctx context.Context, who identity.Session) (*domain.Session, error) {
	session := domain.NewSession(who.UserID, s.now())
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "checkout started", "session_id", session.ID, observability.UserIDKey, who.UserID)
	return session, nil
}

// Get returns the caller's session. A completed session whose confirmation has
// lingered long enough is torn down back to an empty cart on this read.
func (s *Service) Get(ctx context.Context, who identity.Session, id uuid.UUID) (*domain.Session, error) {
	return s.load(ctx, who, id)
}

// AddItem puts planID in the cart and re-prices any attached promo.
func (s *Service) AddItem(ctx context.Context, who identity.Session, id, planID uuid.UUID) (*domain.Session, error) {
	return s.mutate(ctx, who, id, "add_item", func(session *domain.Session, now time.Time) error {
		plan, err := s.plans.GetPlan(ctx, planID)
		if err != nil {
			return err
		}
		if err := session.AddItem(cartItem(plan), now); err != nil {
			return err
		}
		return s.reprice(ctx, session, now)
	})
}

// RemoveItem takes planID out of the cart and re-prices any attached promo.
func (s *Service) RemoveItem(ctx context.Context, who identity.Session, id, planID uuid.UUID) (*domain.Session, error) {
	return s.mutate(ctx, who, id, "remove_item", func(session *domain.Session, now time.Time) error {
		if err := session.RemoveItem(planID, now); err != nil {
			return err
		}
		return s.reprice(ctx, session, now)
	})
}

// ApplyPromo validates code against the cart total and attaches the quote.
// No use is consumed. On failure the session is left as it was.
func (s *Service) ApplyPromo(ctx context.Context, who identity.Session, id uuid.UUID, code string) (*domain.Session, error) {
	return s.mutate(ctx, who, id, "apply_promo", func(session *domain.Session, now time.Time) error {
		if err := session.CanAttachPromo(); err != nil {
			return err
		}
		quote, err := s.promos.Validate(ctx, code, session.Subtotal())
		if err != nil {
			return err
		}
		return session.AttachPromo(appliedPromo(quote), now)
	})
}

// ClearPromo removes the discount.
func (s *Service) ClearPromo(ctx context.Context, who identity.Session, id uuid.UUID) (*domain.Session, error) {
	return s.mutate(ctx, who, id, "clear_promo", func(session *domain.Session, now time.Time) error {
		return session.ClearPromo(now)
	})
}

// SetDetails stores the buyer's contact form.
func (s *Service) SetDetails(ctx context.Context, who identity.Session, id uuid.UUID, details domain.Details) (*domain.Session, error) {
	return s.mutate(ctx, who, id, "set_details", func(session *domain.Session, now time.Time) error {
		return session.SetDetails(details, now)
	})
}

// Next advances to the following step.
func (s *Service) Next(ctx context.Context, who identity.Session, id uuid.UUID) (*domain.Session, error) {
	return s.mutate(ctx, who, id, "next", func(session *domain.Session, now time.Time) error {
		return session.Next(now)
	})
}

// Back returns to the previous step.
func (s *Service) Back(ctx context.Context, who identity.Session, id uuid.UUID) (*domain.Session, error) {
	return s.mutate(ctx, who, id, "back", func(session *domain.Session, now time.Time) error {
		return session.Back(now)
	})
}

// Reset empties the session and returns it to the cart step.
func (s *Service) Reset(ctx context.Context, who identity.Session, id uuid.UUID) (*domain.Session, error) {
	session, err := s.mutate(ctx, who, id, "reset", func(session *domain.Session, now time.Time) error {
		session.Reset(now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.release(ctx, id)
	return session, nil
}

// Cancel discards a session that has not completed. No promo use is consumed.
func (s *Service) Cancel(ctx context.Context, who identity.Session, id uuid.UUID) error {
	session, err := s.load(ctx, who, id)
	if err != nil {
		return err
	}
	if err := session.CanCancel(); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return shared.StorageError(err)
	}
	s.release(ctx, id)

	s.metrics.Counter(observability.MetricCheckoutTransitions, 1, observability.T("action", "cancel"), observability.T("result", "ok"))
	s.logger.InfoContext(ctx, "checkout cancelled", "session_id", id, "state", session.State)
	return nil
}

// ConfirmPayment records the buyer's assertion that payment was made.
//
// Only the caller holding the session's confirmation claim gets past the
// payment step; every concurrent or repeated confirm fails with
// ErrConfirmInProgress or ErrSessionCompleted. The promo use and the
// subscriptions are written in one unit of work, so a failed activation never
// consumes a use and an exhausted code never activates anything. After commit
// the purchase is handed off and the session moves to success. The claim is
// kept from then on, until the session is torn down, reset or cancelled.
func (s *Service) ConfirmPayment(ctx context.Context, who identity.Session, id uuid.UUID) (*domain.Session, error) {
	session, err := s.load(ctx, who, id)
	if err != nil {
		return nil, err
	}
	if err := session.CanComplete(); err != nil {
		s.countTransition("confirm", err)
		return nil, err
	}

	claimed, err := s.store.ClaimConfirmation(ctx, id)
	if err != nil {
		return nil, shared.StorageError(err)
	}
	if !claimed {
		s.countTransition("confirm", domain.ErrConfirmInProgress)
		return nil, domain.ErrConfirmInProgress
	}

	// Re-read under the claim: the copy above may predate a confirmation
	// that finished in between.
	session, err = s.load(ctx, who, id)
	if err == nil {
		err = session.CanComplete()
	}
	if err != nil {
		s.release(ctx, id)
		s.countTransition("confirm", err)
		return nil, err
	}

	var created []*subscriptions.Subscription
	err = sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		created = created[:0]
		if session.Promo != nil {
			if _, err := s.promos.Apply(txCtx, session.Promo.Code); err != nil {
				return err
			}
		}
		for _, item := range session.Items {
			sub, err := s.subs.Activate(txCtx, session.UserID, item.PlanID)
			if err != nil {
				return err
			}
			created = append(created, sub)
		}
		return nil
	})
	if err != nil {
		s.release(ctx, id)
		s.countTransition("confirm", err)
		s.logger.WarnContext(ctx, "checkout confirmation failed",
			"session_id", session.ID,
			observability.ErrorKey, err,
		)
		if shared.KindOf(err) == "" {
			err = shared.StorageError(err)
		}
		return nil, err
	}

	now := s.now()
	ids := make([]uuid.UUID, 0, len(created))
	for _, sub := range created {
		s.subs.AnnounceActivation(ctx, sub)
		ids = append(ids, sub.ID)
	}

	handoff := domain.NewHandoff(session, now)
	link, err := s.handoff.Send(ctx, handoff)
	if err != nil {
		s.logger.WarnContext(ctx, "handoff not delivered",
			"session_id", session.ID,
			observability.ErrorKey, err,
		)
		s.metrics.Counter(observability.MetricHandoffs, 1, observability.T("result", "failed"))
	} else {
		s.metrics.Counter(observability.MetricHandoffs, 1, observability.T("result", "ok"))
	}

	completion := domain.Completion{
		SubscriptionIDs: ids,
		FinalAmount:     session.FinalAmount(),
		HandoffLink:     link,
		CompletedAt:     now,
	}
	if session.Promo != nil {
		completion.PromoCode = session.Promo.Code
	}
	if err := session.Complete(completion); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, session); err != nil {
		// The purchase is committed and the claim stays held. The stored copy
		// still sits at payment, so drop it rather than leave it confirmable.
		s.logger.ErrorContext(ctx, "completed checkout not saved",
			"session_id", session.ID,
			observability.ErrorKey, err,
		)
		if err := s.store.Delete(ctx, session.ID); err != nil {
			s.logger.ErrorContext(ctx, "unsaved checkout not discarded",
				"session_id", session.ID,
				observability.ErrorKey, err,
			)
		}
	}

	s.countTransition("confirm", nil)
	s.metrics.Counter(observability.MetricCheckoutCompleted, 1)
	s.logger.InfoContext(ctx, "checkout completed",
		"session_id", session.ID,
		observability.UserIDKey, session.UserID,
		"final_amount", completion.FinalAmount.StringFixed(2),
		"promo_code", completion.PromoCode,
	)
	if err := s.events.Publish(ctx, domain.NewCheckoutCompleted(session)); err != nil {
		s.logger.WarnContext(ctx, "event not published",
			"routing_key", domain.RoutingKeyCompleted,
			observability.ErrorKey, err,
		)
	}
	return session, nil
}

// mutate loads the caller's session, applies fn and saves the result. When fn
// fails nothing is saved, so the stored session keeps its cart and form.
func (s *Service) mutate(ctx context.Context, who identity.Session, id uuid.UUID, action string, fn func(*domain.Session, time.Time) error) (*domain.Session, error) {
	session, err := s.load(ctx, who, id)
	if err != nil {
		return nil, err
	}

	if err := fn(session, s.now()); err != nil {
		s.countTransition(action, err)
		return nil, err
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	s.countTransition(action, nil)
	return session, nil
}

func (s *Service) load(ctx context.Context, who identity.Session, id uuid.UUID) (*domain.Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, shared.StorageError(err)
	}
	if session == nil || session.UserID != who.UserID {
		return nil, domain.ErrSessionNotFound
	}

	now := s.now()
	if session.TeardownDue(now, s.linger) {
		session.Reset(now)
		if err := s.save(ctx, session); err != nil {
			return nil, err
		}
		s.release(ctx, id)
		s.logger.DebugContext(ctx, "completed checkout torn down", "session_id", session.ID)
	}
	return session, nil
}

func (s *Service) save(ctx context.Context, session *domain.Session) error {
	if err := s.store.Save(ctx, session); err != nil {
		s.logger.ErrorContext(ctx, "checkout session not saved",
			"session_id", session.ID,
			observability.ErrorKey, err,
		)
		return shared.StorageError(err)
	}
	return nil
}

// release drops the confirmation claim. A claim that cannot be dropped
// lapses with the store's TTL.
func (s *Service) release(ctx context.Context, id uuid.UUID) {
	if err := s.store.ReleaseConfirmation(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "confirmation claim not released",
			"session_id", id,
			observability.ErrorKey, err,
		)
	}
}

// reprice re-validates an attached promo against the current cart. A promo
// that no longer qualifies is dropped; a storage failure aborts the change.
func (s *Service) reprice(ctx context.Context, session *domain.Session, now time.Time) error {
	if session.Promo == nil || len(session.Items) == 0 {
		return nil
	}

	quote, err := s.promos.Validate(ctx, session.Promo.Code, session.Subtotal())
	switch {
	case err == nil:
		return session.AttachPromo(appliedPromo(quote), now)
	case shared.IsKind(err, shared.KindStorage):
		return err
	default:
		s.logger.InfoContext(ctx, "promo dropped after cart change",
			"session_id", session.ID,
			"code", session.Promo.Code,
			"reason", shared.KindOf(err),
		)
		return session.ClearPromo(now)
	}
}

func (s *Service) countTransition(action string, err error) {
	result := "ok"
	if err != nil {
		result = string(shared.KindOf(err))
		if result == "" {
			result = "error"
		}
	}
	s.metrics.Counter(observability.MetricCheckoutTransitions, 1,
		observability.T("action", action),
		observability.T("result", result),
	)
}

func cartItem(plan *subscriptions.Plan) domain.CartItem {
	return domain.CartItem{
		PlanID:       plan.ID,
		Name:         plan.Name,
		Price:        plan.Price,
		DurationDays: plan.DurationDays,
		Features:     plan.Features,
	}
}

func appliedPromo(q *promotions.Quote) domain.AppliedPromo {
	return domain.AppliedPromo{
		Code:           q.PromoCode,
		DiscountType:   string(q.DiscountType),
		DiscountValue:  q.DiscountValue,
		DiscountAmount: q.DiscountAmount,
	}
}
