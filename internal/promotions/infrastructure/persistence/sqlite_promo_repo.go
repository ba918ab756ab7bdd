package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anandgupta07/coach-sub000/internal/promotions/domain"
	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/database"
)

const promoColumns = `id, code, discount_type, discount_value, usage_limit, usage_count, min_cart_value, expires_at, created_at`

// SQLitePromoRepository implements domain.Repository with SQLite.
type SQLitePromoRepository struct {
	conn database.Connection
}

// NewSQLitePromoRepository creates a new repository.
func NewSQLitePromoRepository(conn database.Connection) *SQLitePromoRepository {
	return &SQLitePromoRepository{conn: conn}
}

func (r *SQLitePromoRepository) db(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *SQLitePromoRepository) Create(ctx context.Context, p *domain.PromoCode) error {
	var expiresAt sql.NullString
	if p.ExpiresAt != nil {
		expiresAt = sql.NullString{String: database.FormatTimestamp(*p.ExpiresAt), Valid: true}
	}

	_, err := r.db(ctx).Exec(ctx, `
		INSERT INTO promo_codes (`+promoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID.String(),
		p.Code,
		string(p.DiscountType),
		p.DiscountValue.String(),
		p.UsageLimit,
		p.UsageCount,
		nullDecimal(p.MinCartValue),
		expiresAt,
		database.FormatTimestamp(p.CreatedAt),
	)
	if database.IsUniqueViolation(err) {
		return domain.ErrCodeAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert promo code: %w", err)
	}
	return nil
}

func (r *SQLitePromoRepository) FindByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	row := r.db(ctx).QueryRow(ctx, `SELECT `+promoColumns+` FROM promo_codes WHERE lower(code) = lower(?)`, code)
	p, err := scanSQLitePromo(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return p, err
}

func (r *SQLitePromoRepository) List(ctx context.Context) ([]*domain.PromoCode, error) {
	rows, err := r.db(ctx).Query(ctx, `SELECT `+promoColumns+` FROM promo_codes ORDER BY created_at DESC, code`)
	if err != nil {
		return nil, fmt.Errorf("list promo codes: %w", err)
	}
	defer rows.Close()

	var promos []*domain.PromoCode
	for rows.Next() {
		p, err := scanSQLitePromo(rows)
		if err != nil {
			return nil, err
		}
		promos = append(promos, p)
	}
	return promos, rows.Err()
}

func (r *SQLitePromoRepository) IncrementUsage(ctx context.Context, code string) (bool, error) {
	result, err := r.db(ctx).Exec(ctx, `
		UPDATE promo_codes
		SET usage_count = usage_count + 1
		WHERE lower(code) = lower(?) AND usage_count < usage_limit`, code)
	if err != nil {
		return false, fmt.Errorf("increment promo usage: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func scanSQLitePromo(row database.Row) (*domain.PromoCode, error) {
	var (
		p                           domain.PromoCode
		id, discountType, createdAt string
		minCartValue                decimal.NullDecimal
		expiresAt                   sql.NullString
	)
	if err := row.Scan(&id, &p.Code, &discountType, &p.DiscountValue, &p.UsageLimit, &p.UsageCount,
		&minCartValue, &expiresAt, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if p.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("promo id: %w", err)
	}
	p.DiscountType = domain.DiscountType(discountType)
	if minCartValue.Valid {
		p.MinCartValue = &minCartValue.Decimal
	}
	if expiresAt.Valid {
		t, err := database.ParseTimestamp(expiresAt.String)
		if err != nil {
			return nil, fmt.Errorf("promo expires_at: %w", err)
		}
		p.ExpiresAt = &t
	}
	if p.CreatedAt, err = database.ParseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("promo created_at: %w", err)
	}
	return &p, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

var _ domain.Repository = (*SQLitePromoRepository)(nil)
