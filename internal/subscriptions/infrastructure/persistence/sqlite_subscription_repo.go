package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/database"
	"github.com/anandgupta07/coach-sub000/internal/subscriptions/domain"
)

const subscriptionColumns = `id, user_id, plan_id, status, start_date, end_date, created_at, updated_at`

// SQLiteSubscriptionRepository implements SubscriptionRepository with SQLite.
// Instants are stored as fixed-width UTC text so range predicates compare correctly.
type SQLiteSubscriptionRepository struct {
	conn database.Connection
}

// NewSQLiteSubscriptionRepository creates a new repository.
func NewSQLiteSubscriptionRepository(conn database.Connection) *SQLiteSubscriptionRepository {
	return &SQLiteSubscriptionRepository{conn: conn}
}

func (r *SQLiteSubscriptionRepository) db(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *SQLiteSubscriptionRepository) Create(ctx context.Context, s *domain.Subscription) error {
	_, err := r.db(ctx).Exec(ctx, `
		INSERT INTO user_subscriptions (`+subscriptionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID.String(),
		s.UserID.String(),
		s.PlanID.String(),
		string(s.Status),
		database.FormatTimestamp(s.StartDate),
		database.FormatTimestamp(s.EndDate),
		database.FormatTimestamp(s.CreatedAt),
		database.FormatTimestamp(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (r *SQLiteSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	row := r.db(ctx).QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM user_subscriptions WHERE id = ?`, id.String())
	return scanSQLiteSubscriptionOrNil(row)
}

func (r *SQLiteSubscriptionRepository) FindLatestActive(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	row := r.db(ctx).QueryRow(ctx, `
		SELECT `+subscriptionColumns+`
		FROM user_subscriptions
		WHERE user_id = ? AND status = 'active'
		ORDER BY end_date DESC
		LIMIT 1`, userID.String())
	return scanSQLiteSubscriptionOrNil(row)
}

func (r *SQLiteSubscriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Subscription, error) {
	rows, err := r.db(ctx).Query(ctx, `
		SELECT `+subscriptionColumns+`
		FROM user_subscriptions
		WHERE user_id = ?
		ORDER BY end_date DESC`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*domain.Subscription
	for rows.Next() {
		s, err := scanSQLiteSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *SQLiteSubscriptionRepository) MarkExpired(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	ts := database.FormatTimestamp(now)
	result, err := r.db(ctx).Exec(ctx, `
		UPDATE user_subscriptions
		SET status = 'expired', updated_at = ?
		WHERE id = ? AND status = 'active' AND end_date < ?`,
		ts, id.String(), ts)
	if err != nil {
		return false, fmt.Errorf("expire subscription: %w", err)
	}
	return affectedOne(result)
}

func (r *SQLiteSubscriptionRepository) Cancel(ctx context.Context, id, userID uuid.UUID, now time.Time) (bool, error) {
	result, err := r.db(ctx).Exec(ctx, `
		UPDATE user_subscriptions
		SET status = 'cancelled', updated_at = ?
		WHERE id = ? AND user_id = ? AND status = 'active'`,
		database.FormatTimestamp(now), id.String(), userID.String())
	if err != nil {
		return false, fmt.Errorf("cancel subscription: %w", err)
	}
	return affectedOne(result)
}

func scanSQLiteSubscriptionOrNil(row database.Row) (*domain.Subscription, error) {
	s, err := scanSQLiteSubscription(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return s, err
}

func scanSQLiteSubscription(row database.Row) (*domain.Subscription, error) {
	var id, userID, planID, status, start, end, createdAt, updatedAt string
	if err := row.Scan(&id, &userID, &planID, &status, &start, &end, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	s := &domain.Subscription{Status: domain.SubscriptionStatus(status)}
	var err error
	if s.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("subscription id: %w", err)
	}
	if s.UserID, err = uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("subscription user id: %w", err)
	}
	if s.PlanID, err = uuid.Parse(planID); err != nil {
		return nil, fmt.Errorf("subscription plan id: %w", err)
	}
	for _, f := range []struct {
		dst *time.Time
		src string
	}{
		{&s.StartDate, start}, {&s.EndDate, end}, {&s.CreatedAt, createdAt}, {&s.UpdatedAt, updatedAt},
	} {
		if *f.dst, err = database.ParseTimestamp(f.src); err != nil {
			return nil, fmt.Errorf("subscription timestamp: %w", err)
		}
	}
	return s, nil
}

func affectedOne(result database.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var _ domain.SubscriptionRepository = (*SQLiteSubscriptionRepository)(nil)
