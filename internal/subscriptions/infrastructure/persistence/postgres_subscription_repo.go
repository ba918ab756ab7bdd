package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/database"
	"github.com/anandgupta07/coach-sub000/internal/subscriptions/domain"
)

// PostgresSubscriptionRepository implements SubscriptionRepository with PostgreSQL.
type PostgresSubscriptionRepository struct {
	conn database.Connection
}

// NewPostgresSubscriptionRepository creates a new repository.
func NewPostgresSubscriptionRepository(conn database.Connection) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{conn: conn}
}

func (r *PostgresSubscriptionRepository) db(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *PostgresSubscriptionRepository) Create(ctx context.Context, s *domain.Subscription) error {
	_, err := r.db(ctx).Exec(ctx, `
		INSERT INTO user_subscriptions (`+subscriptionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.UserID, s.PlanID, string(s.Status), s.StartDate, s.EndDate, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (r *PostgresSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	row := r.db(ctx).QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM user_subscriptions WHERE id = $1`, id)
	return scanPostgresSubscriptionOrNil(row)
}

func (r *PostgresSubscriptionRepository) FindLatestActive(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	row := r.db(ctx).QueryRow(ctx, `
		SELECT `+subscriptionColumns+`
		FROM user_subscriptions
		WHERE user_id = $1 AND status = 'active'
		ORDER BY end_date DESC
		LIMIT 1`, userID)
	return scanPostgresSubscriptionOrNil(row)
}

func (r *PostgresSubscriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Subscription, error) {
	rows, err := r.db(ctx).Query(ctx, `
		SELECT `+subscriptionColumns+`
		FROM user_subscriptions
		WHERE user_id = $1
		ORDER BY end_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*domain.Subscription
	for rows.Next() {
		s, err := scanPostgresSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *PostgresSubscriptionRepository) MarkExpired(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	result, err := r.db(ctx).Exec(ctx, `
		UPDATE user_subscriptions
		SET status = 'expired', updated_at = $2
		WHERE id = $1 AND status = 'active' AND end_date < $2`, id, now)
	if err != nil {
		return false, fmt.Errorf("expire subscription: %w", err)
	}
	return affectedOne(result)
}

func (r *PostgresSubscriptionRepository) Cancel(ctx context.Context, id, userID uuid.UUID, now time.Time) (bool, error) {
	result, err := r.db(ctx).Exec(ctx, `
		UPDATE user_subscriptions
		SET status = 'cancelled', updated_at = $3
		WHERE id = $1 AND user_id = $2 AND status = 'active'`, id, userID, now)
	if err != nil {
		return false, fmt.Errorf("cancel subscription: %w", err)
	}
	return affectedOne(result)
}

func scanPostgresSubscriptionOrNil(row database.Row) (*domain.Subscription, error) {
	s, err := scanPostgresSubscription(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return s, err
}

func scanPostgresSubscription(row database.Row) (*domain.Subscription, error) {
	var (
		s      domain.Subscription
		status string
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.PlanID, &status, &s.StartDate, &s.EndDate, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Status = domain.SubscriptionStatus(status)
	s.StartDate = s.StartDate.UTC()
	s.EndDate = s.EndDate.UTC()
	return &s, nil
}

var _ domain.SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
