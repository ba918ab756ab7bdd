package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	identity "github.com/anandgupta07/coach-sub000/internal/identity/domain"
	sharedApplication "github.com/anandgupta07/coach-sub000/internal/shared/application"
	shared "github.com/anandgupta07/coach-sub000/internal/shared/domain"
	"github.com/anandgupta07/coach-sub000/internal/subscriptions/domain"
	"github.com/anandgupta07/coach-sub000/pkg/observability"
)

// User-facing status messages.
const (
	MessageNoSubscription = "no active subscription."
	MessageExpired        = "your subscription has expired. renew your plan to continue."
	MessageCancelled      = "your subscription was cancelled. choose a plan to continue."
	MessageUnavailable    = "we could not verify your subscription right now. please try again."
)

// Status is the answer to "may this caller use paid features right now".
type Status struct {
	IsActive     bool                 `json:"isActive"`
	Exempt       bool                 `json:"exempt,omitempty"`
	Subscription *domain.Subscription `json:"subscription"`
	Message      string               `json:"message,omitempty"`
}

// ProgressView is the dashboard timeline of the caller's authoritative subscription.
type ProgressView struct {
	Subscription *domain.Subscription `json:"subscription"`
	Plan         *domain.Plan         `json:"plan,omitempty"`
	Progress     domain.Progress      `json:"progress"`
}

// Service owns subscription state: access checks, lazy expiry, activation and cancellation.
type Service struct {
	subscriptions domain.SubscriptionRepository
	plans         domain.PlanRepository
	events        sharedApplication.EventPublisher
	metrics       observability.Metrics
	logger        *slog.Logger
	now           func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithEventPublisher publishes lifecycle events through events.
func WithEventPublisher(events sharedApplication.EventPublisher) Option {
	return func(s *Service) { s.events = events }
}

// WithMetrics records check outcomes in metrics.
func WithMetrics(metrics observability.Metrics) Option {
	return func(s *Service) { s.metrics = metrics }
}

// NewService creates a subscription service.
func NewService(subscriptions domain.SubscriptionRepository, plans domain.PlanRepository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		subscriptions: subscriptions,
		plans:         plans,
		events:        sharedApplication.NoopEventPublisher{},
		metrics:       observability.NoopMetrics{},
		logger:        logger.With("component", "subscriptions"),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckSubscription reports whether the caller currently has paid access.
//
// Coaches are exempt and never touch storage. For clients the active record with the
// latest end date decides; if it has lapsed it is moved to expired before answering.
// A storage failure denies access and returns a StorageError alongside the status.
func (s *Service) CheckSubscription(ctx context.Context, session identity.Session) (Status, error) {
	if session.IsCoach() {
		s.metrics.Counter(observability.MetricSubscriptionChecks, 1, observability.T("result", "exempt"))
		return Status{IsActive: true, Exempt: true}, nil
	}

	sub, err := s.subscriptions.FindLatestActive(ctx, session.UserID)
	if err != nil {
		return s.failClosed(ctx, session, err)
	}
	if sub == nil {
		s.metrics.Counter(observability.MetricSubscriptionChecks, 1, observability.T("result", "none"))
		return Status{Message: MessageNoSubscription}, nil
	}

	now := s.now()
	if sub.HasLapsed(now) {
		return s.expire(ctx, session, sub, now)
	}

	s.metrics.Counter(observability.MetricSubscriptionChecks, 1, observability.T("result", "active"))
	return Status{IsActive: true, Subscription: sub}, nil
}

func (s *Service) expire(ctx context.Context, session identity.Session, sub *domain.Subscription, now time.Time) (Status, error) {
	expired, err := s.subscriptions.MarkExpired(ctx, sub.ID, now)
	if err != nil {
		return s.failClosed(ctx, session, err)
	}

	if expired {
		sub.Status = domain.StatusExpired
		sub.UpdatedAt = now.UTC()
		s.logger.InfoContext(ctx, "subscription expired",
			"subscription_id", sub.ID,
			observability.UserIDKey, sub.UserID,
			"end_date", sub.EndDate,
		)
		s.metrics.Counter(observability.MetricSubscriptionExpired, 1)
		s.publish(ctx, domain.NewSubscriptionExpired(sub, now))
	} else {
		// Another request expired or cancelled it first; report what is stored.
		current, err := s.subscriptions.FindByID(ctx, sub.ID)
		if err != nil {
			return s.failClosed(ctx, session, err)
		}
		if current != nil {
			sub = current
		}
	}

	s.metrics.Counter(observability.MetricSubscriptionChecks, 1, observability.T("result", "expired"))
	message := MessageExpired
	if sub.Status == domain.StatusCancelled {
		message = MessageCancelled
	}
	return Status{Subscription: sub, Message: message}, nil
}

func (s *Service) failClosed(ctx context.Context, session identity.Session, err error) (Status, error) {
	s.logger.ErrorContext(ctx, "subscription check failed",
		observability.UserIDKey, session.UserID,
		observability.ErrorKey, err,
	)
	s.metrics.Counter(observability.MetricSubscriptionChecks, 1, observability.T("result", "error"))
	return Status{Message: MessageUnavailable}, shared.StorageError(err)
}

// Progress returns the progress timeline of the caller's active subscription.
func (s *Service) Progress(ctx context.Context, session identity.Session) (*ProgressView, error) {
	status, err := s.CheckSubscription(ctx, session)
	if err != nil {
		return nil, err
	}
	if !status.IsActive || status.Subscription == nil {
		return nil, domain.ErrNoActiveSubscription
	}

	plan, err := s.plans.FindByID(ctx, status.Subscription.PlanID)
	if err != nil {
		return nil, shared.StorageError(err)
	}

	return &ProgressView{
		Subscription: status.Subscription,
		Plan:         plan,
		Progress:     status.Subscription.Progress(s.now()),
	}, nil
}

// Activate creates an active subscription to planID for userID starting now.
// Callers running inside a unit of work publish the activation after commit with AnnounceActivation.
func (s *Service) Activate(ctx context.Context, userID, planID uuid.UUID) (*domain.Subscription, error) {
	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	sub, err := domain.Activate(userID, *plan, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.subscriptions.Create(ctx, sub); err != nil {
		return nil, shared.StorageError(err)
	}

	s.metrics.Counter(observability.MetricSubscriptionCreated, 1, observability.T("plan", plan.Name))
	return sub, nil
}

// AnnounceActivation logs and publishes a committed activation.
func (s *Service) AnnounceActivation(ctx context.Context, sub *domain.Subscription) {
	s.logger.InfoContext(ctx, "subscription activated",
		"subscription_id", sub.ID,
		observability.UserIDKey, sub.UserID,
		"plan_id", sub.PlanID,
		"end_date", sub.EndDate,
	)
	s.publish(ctx, domain.NewSubscriptionActivated(sub))
}

// Cancel cancels one of the caller's active subscriptions.
func (s *Service) Cancel(ctx context.Context, session identity.Session, subscriptionID uuid.UUID) (*domain.Subscription, error) {
	now := s.now()
	cancelled, err := s.subscriptions.Cancel(ctx, subscriptionID, session.UserID, now)
	if err != nil {
		return nil, shared.StorageError(err)
	}

	sub, err := s.subscriptions.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, shared.StorageError(err)
	}
	if sub == nil || sub.UserID != session.UserID {
		return nil, domain.ErrSubscriptionNotFound
	}
	if !cancelled {
		return nil, domain.ErrNotCancellable
	}

	s.logger.InfoContext(ctx, "subscription cancelled",
		"subscription_id", sub.ID,
		observability.UserIDKey, sub.UserID,
	)
	s.publish(ctx, domain.NewSubscriptionCancelled(sub, now))
	return sub, nil
}

// History lists every subscription the user has held, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]*domain.Subscription, error) {
	subs, err := s.subscriptions.ListByUser(ctx, userID)
	if err != nil {
		return nil, shared.StorageError(err)
	}
	return subs, nil
}

// ListPlans returns the plan catalog.
func (s *Service) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	plans, err := s.plans.List(ctx)
	if err != nil {
		return nil, shared.StorageError(err)
	}
	return plans, nil
}

// GetPlan returns a single plan.
func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	plan, err := s.plans.FindByID(ctx, id)
	if err != nil {
		return nil, shared.StorageError(err)
	}
	if plan == nil {
		return nil, domain.ErrPlanNotFound
	}
	return plan, nil
}

func (s *Service) publish(ctx context.Context, event shared.DomainEvent) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "event not published",
			"routing_key", event.RoutingKey(),
			observability.ErrorKey, err,
		)
	}
}
