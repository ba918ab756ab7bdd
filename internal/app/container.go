package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/anandgupta07/coach-sub000/internal/access"
	checkoutApp "github.com/anandgupta07/coach-sub000/internal/checkout/application"
	checkoutDomain "github.com/anandgupta07/coach-sub000/internal/checkout/domain"
	"github.com/anandgupta07/coach-sub000/internal/checkout/infrastructure/handoff"
	"github.com/anandgupta07/coach-sub000/internal/checkout/infrastructure/sessionstore"
	identityInfra "github.com/anandgupta07/coach-sub000/internal/identity/infrastructure"
	promoApp "github.com/anandgupta07/coach-sub000/internal/promotions/application"
	sharedApplication "github.com/anandgupta07/coach-sub000/internal/shared/application"
	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/database"
	_ "github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/database/sqlite"
	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/eventbus"
	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/migrations"
	subscriptionsApp "github.com/anandgupta07/coach-sub000/internal/subscriptions/application"
	"github.com/anandgupta07/coach-sub000/pkg/config"
	"github.com/anandgupta07/coach-sub000/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis backs checkout sessions when configured.
	RedisClient *redis.Client

	// Publishers
	Broker eventbus.Publisher
	Events sharedApplication.EventPublisher

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Observability
	Metrics    observability.Metrics
	Prometheus *observability.PrometheusMetrics
	Health     *observability.HealthRegistry

	// Identity
	Tokens *identityInfra.JWTVerifier

	// Services
	Subscriptions *subscriptionsApp.Service
	Promotions    *promoApp.Service
	Checkout      *checkoutApp.Service
	Gate          *access.Gate

	SessionStore checkoutDomain.SessionStore
	Handoff      *handoff.Channel
}

// NewContainer connects to storage and the broker, applies migrations and
// wires every service.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
		Health: observability.NewHealthRegistry(),
	}

	if err := c.openDatabase(ctx); err != nil {
		return nil, err
	}
	if err := c.Migrate(ctx); err != nil {
		c.Close()
		return nil, err
	}

	if err := c.connectRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}

	if err := c.connectBroker(); err != nil {
		c.Close()
		return nil, err
	}

	if cfg.MetricsEnabled {
		c.Prometheus = observability.NewPrometheusMetrics()
		c.Metrics = c.Prometheus
	} else {
		c.Metrics = observability.NoopMetrics{}
	}

	if err := c.wireServices(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) openDatabase(ctx context.Context) error {
	cfg := c.Config
	dbCfg := database.Config{URL: cfg.DatabaseURL, SQLitePath: cfg.SQLitePath}
	if cfg.UsesSQLite() {
		dbCfg.Driver = database.DriverSQLite
	}

	conn, err := database.Open(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.DBConn = conn
	c.DBDriver = conn.Driver()
	c.UnitOfWork = database.NewUnitOfWork(conn)
	c.Health.Register("database", observability.PingChecker("database", observability.HealthStatusUnhealthy, conn.Ping))
	c.Logger.Info("connected to database", "driver", c.DBDriver)
	return nil
}

// Migrate applies pending schema migrations for the configured driver.
func (c *Container) Migrate(ctx context.Context) error {
	switch c.DBDriver {
	case database.DriverPostgres:
		if err := migrations.RunPostgres(ctx, c.Config.DatabaseURL); err != nil {
			return err
		}
	case database.DriverSQLite:
		sqliteConn, ok := c.DBConn.(*sqlite.Connection)
		if !ok {
			return errors.New("sqlite driver without a sqlite connection")
		}
		if err := migrations.RunSQLite(ctx, sqliteConn.DB()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported driver: %s", c.DBDriver)
	}
	c.Logger.Debug("migrations applied", "driver", c.DBDriver)
	return nil
}

func (c *Container) connectRedis(ctx context.Context) error {
	cfg := c.Config
	if cfg.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		if !cfg.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, checkout sessions will be kept in memory", "error", err)
		return nil
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if !cfg.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, checkout sessions will be kept in memory", "error", err)
		return nil
	}

	c.RedisClient = client
	c.Health.Register("redis", observability.PingChecker("redis", observability.HealthStatusDegraded, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}))
	c.Logger.Info("connected to Redis")
	return nil
}

func (c *Container) connectBroker() error {
	cfg := c.Config
	if cfg.RabbitMQURL == "" {
		c.Broker = eventbus.NewNoopPublisher(c.Logger)
		return nil
	}

	publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, c.Logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
		c.Broker = eventbus.NewNoopPublisher(c.Logger)
		return nil
	}
	c.Broker = publisher
	return nil
}

func (c *Container) wireServices() error {
	cfg := c.Config
	repos := NewRepositoryFactory(c.DBConn)

	subscriptionRepo, err := repos.SubscriptionRepository()
	if err != nil {
		return err
	}
	planRepo, err := repos.PlanRepository()
	if err != nil {
		return err
	}
	promoRepo, err := repos.PromoRepository()
	if err != nil {
		return err
	}

	c.Events = eventbus.NewDomainPublisher(c.Broker)
	c.Tokens = identityInfra.NewJWTVerifier(cfg.JWTSecret)

	c.Subscriptions = subscriptionsApp.NewService(subscriptionRepo, planRepo, c.Logger,
		subscriptionsApp.WithEventPublisher(c.Events),
		subscriptionsApp.WithMetrics(c.Metrics),
	)
	c.Promotions = promoApp.NewService(promoRepo, c.Logger, promoApp.WithMetrics(c.Metrics))
	c.Gate = access.NewGate(c.Subscriptions, c.Metrics, c.Logger)

	if c.RedisClient != nil {
		c.SessionStore = sessionstore.NewRedisStore(c.RedisClient, cfg.CheckoutSessionTTL)
	} else {
		c.SessionStore = sessionstore.NewMemoryStore(cfg.CheckoutSessionTTL)
	}

	c.Handoff = handoff.NewChannel(cfg.HandoffPhone, c.Broker, handoff.BreakerConfig{
		FailureThreshold: cfg.BreakerFailureThreshold,
		Timeout:          cfg.BreakerTimeout,
		MaxRequests:      1,
	}, c.Logger)
	c.Health.Register("handoff", c.Handoff.Check)

	c.Checkout = checkoutApp.NewService(checkoutApp.Deps{
		Store:      c.SessionStore,
		Plans:      c.Subscriptions,
		Promos:     c.Promotions,
		Activator:  c.Subscriptions,
		UnitOfWork: c.UnitOfWork,
		Handoff:    c.Handoff,
	}, c.Logger,
		checkoutApp.WithSuccessLinger(cfg.CheckoutSuccessLinger),
		checkoutApp.WithEventPublisher(c.Events),
		checkoutApp.WithMetrics(c.Metrics),
	)
	return nil
}

// Close releases connections in reverse order of acquisition.
func (c *Container) Close() {
	if c.Broker != nil {
		if err := c.Broker.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis client", "error", err)
		}
	}
	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database", "error", err)
		}
	}
}
