package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthRegistry_Check(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	t.Run("empty registry is healthy", func(t *testing.T) {
		assert.Equal(t, HealthStatusHealthy, NewHealthRegistry().Check(context.Background()).Status)
	})

	t.Run("degraded dependency", func(t *testing.T) {
		r := NewHealthRegistry()
		r.Register("database", PingChecker("database", HealthStatusUnhealthy, ok))
		r.Register("redis", PingChecker("redis", HealthStatusDegraded, down))

		health := r.Check(context.Background())

		assert.Equal(t, HealthStatusDegraded, health.Status)
		assert.Equal(t, HealthStatusHealthy, health.Checks["database"].Status)
		assert.Contains(t, health.Checks["redis"].Message, "connection refused")
	})

	t.Run("unhealthy wins", func(t *testing.T) {
		r := NewHealthRegistry()
		r.Register("database", PingChecker("database", HealthStatusUnhealthy, down))
		r.Register("redis", PingChecker("redis", HealthStatusDegraded, down))

		assert.Equal(t, HealthStatusUnhealthy, r.Check(context.Background()).Status)
	})
}
