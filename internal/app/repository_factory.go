package app

import (
	"fmt"

	promotions "github.com/anandgupta07/coach-sub000/internal/promotions/domain"
	promoPersistence "github.com/anandgupta07/coach-sub000/internal/promotions/infrastructure/persistence"
	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/database"
	subscriptions "github.com/anandgupta07/coach-sub000/internal/subscriptions/domain"
	subscriptionPersistence "github.com/anandgupta07/coach-sub000/internal/subscriptions/infrastructure/persistence"
)

// RepositoryFactory creates repositories based on the database driver.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{
		conn:   conn,
		driver: conn.Driver(),
	}
}

// SubscriptionRepository creates a subscription repository for the configured driver.
func (f *RepositoryFactory) SubscriptionRepository() (subscriptions.SubscriptionRepository, error) {
	switch f.driver {
	case database.DriverPostgres:
		return subscriptionPersistence.NewPostgresSubscriptionRepository(f.conn), nil
	case database.DriverSQLite:
		return subscriptionPersistence.NewSQLiteSubscriptionRepository(f.conn), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// PlanRepository creates the plan catalog. One implementation serves both drivers.
func (f *RepositoryFactory) PlanRepository() (subscriptions.PlanRepository, error) {
	if !f.driver.IsValid() {
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
	return subscriptionPersistence.NewPlanRepository(f.conn), nil
}

// PromoRepository creates a promo code repository for the configured driver.
func (f *RepositoryFactory) PromoRepository() (promotions.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		return promoPersistence.NewPostgresPromoRepository(f.conn), nil
	case database.DriverSQLite:
		return promoPersistence.NewSQLitePromoRepository(f.conn), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// Driver returns the database driver type.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}
