package handoff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/anandgupta07/coach-sub000/internal/checkout/domain"
	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/eventbus"
	"github.com/anandgupta07/coach-sub000/pkg/observability"
)

// ErrChannelUnavailable is returned while the breaker is open.
var ErrChannelUnavailable = errors.New("handoff channel unavailable")

// BreakerConfig configures the circuit breaker in front of the broker.
type BreakerConfig struct {
	FailureThreshold uint32
	Timeout          time.Duration
	MaxRequests      uint32
}

// DefaultBreakerConfig trips after five consecutive failures and retries after 30s.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		MaxRequests:      1,
	}
}

// Channel builds the WhatsApp link for a purchase and publishes the handoff
// event. Publishing goes through a circuit breaker so a failing broker does
// not slow every checkout down.
type Channel struct {
	phone     string
	publisher eventbus.Publisher
	breaker   *gobreaker.CircuitBreaker[any]
	logger    *slog.Logger
}

// NewChannel creates a channel sending to phone through publisher.
func NewChannel(phone string, publisher eventbus.Publisher, cfg BreakerConfig, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "handoff")

	settings := gobreaker.Settings{
		Name:        "handoff",
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Channel{
		phone:     phone,
		publisher: publisher,
		breaker:   gobreaker.NewCircuitBreaker[any](settings),
		logger:    logger,
	}
}

// Send returns the buyer's WhatsApp link. The link is returned even when
// publishing fails, together with the error.
func (c *Channel) Send(ctx context.Context, h domain.Handoff) (string, error) {
	link := WhatsAppLink(c.phone, h)

	_, err := c.breaker.Execute(func() (any, error) {
		return nil, eventbus.PublishEvent(ctx, c.publisher, domain.NewHandoffRequested(h, link))
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return link, ErrChannelUnavailable
	}
	if err != nil {
		return link, fmt.Errorf("publish handoff: %w", err)
	}

	c.logger.DebugContext(ctx, "handoff published", "session_id", h.SessionID)
	return link, nil
}

// State reports the breaker state.
func (c *Channel) State() string {
	return c.breaker.State().String()
}

// Check is the channel's health check. Checkouts still complete while the
// breaker is open, so an open breaker only degrades the service.
func (c *Channel) Check(context.Context) observability.HealthCheckResult {
	if state := c.breaker.State(); state != gobreaker.StateClosed {
		return observability.HealthCheckResult{
			Status:  observability.HealthStatusDegraded,
			Message: "handoff breaker " + state.String(),
		}
	}
	return observability.HealthCheckResult{Status: observability.HealthStatusHealthy}
}
