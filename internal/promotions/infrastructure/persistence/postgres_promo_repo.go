package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anandgupta07/coach-sub000/internal/promotions/domain"
	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/database"
)

// PostgresPromoRepository implements domain.Repository with PostgreSQL.
type PostgresPromoRepository struct {
	conn database.Connection
}

// NewPostgresPromoRepository creates a new repository.
func NewPostgresPromoRepository(conn database.Connection) *PostgresPromoRepository {
	return &PostgresPromoRepository{conn: conn}
}

func (r *PostgresPromoRepository) db(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *PostgresPromoRepository) Create(ctx context.Context, p *domain.PromoCode) error {
	_, err := r.db(ctx).Exec(ctx, `
		INSERT INTO promo_codes (`+promoColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Code, string(p.DiscountType), p.DiscountValue, p.UsageLimit, p.UsageCount,
		nullDecimal(p.MinCartValue), p.ExpiresAt, p.CreatedAt,
	)
	if database.IsUniqueViolation(err) {
		return domain.ErrCodeAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert promo code: %w", err)
	}
	return nil
}

func (r *PostgresPromoRepository) FindByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	row := r.db(ctx).QueryRow(ctx, `SELECT `+promoColumns+` FROM promo_codes WHERE lower(code) = lower($1)`, code)
	p, err := scanPostgresPromo(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return p, err
}

func (r *PostgresPromoRepository) List(ctx context.Context) ([]*domain.PromoCode, error) {
	rows, err := r.db(ctx).Query(ctx, `SELECT `+promoColumns+` FROM promo_codes ORDER BY created_at DESC, code`)
	if err != nil {
		return nil, fmt.Errorf("list promo codes: %w", err)
	}
	defer rows.Close()

	var promos []*domain.PromoCode
	for rows.Next() {
		p, err := scanPostgresPromo(rows)
		if err != nil {
			return nil, err
		}
		promos = append(promos, p)
	}
	return promos, rows.Err()
}

// IncrementUsage relies on the row lock taken by UPDATE: a second concurrent
// apply re-evaluates the guard after the first commits and matches nothing.
func (r *PostgresPromoRepository) IncrementUsage(ctx context.Context, code string) (bool, error) {
	result, err := r.db(ctx).Exec(ctx, `
		UPDATE promo_codes
		SET usage_count = usage_count + 1
		WHERE lower(code) = lower($1) AND usage_count < usage_limit`, code)
	if err != nil {
		return false, fmt.Errorf("increment promo usage: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func scanPostgresPromo(row database.Row) (*domain.PromoCode, error) {
	var (
		p            domain.PromoCode
		discountType string
		minCartValue decimal.NullDecimal
		expiresAt    *time.Time
	)
	if err := row.Scan(&p.ID, &p.Code, &discountType, &p.DiscountValue, &p.UsageLimit, &p.UsageCount,
		&minCartValue, &expiresAt, &p.CreatedAt); err != nil {
		return nil, err
	}

	p.DiscountType = domain.DiscountType(discountType)
	if minCartValue.Valid {
		p.MinCartValue = &minCartValue.Decimal
	}
	if expiresAt != nil {
		t := expiresAt.UTC()
		p.ExpiresAt = &t
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

var _ domain.Repository = (*PostgresPromoRepository)(nil)
