package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/database"
	"github.com/anandgupta07/coach-sub000/internal/subscriptions/domain"
)

// PlanRepository reads the seeded plan catalog. The statements are identical for
// both drivers apart from the placeholder, and both store features as JSON.
type PlanRepository struct {
	conn database.Connection
}

// NewPlanRepository creates a plan repository for conn's driver.
func NewPlanRepository(conn database.Connection) *PlanRepository {
	return &PlanRepository{conn: conn}
}

func (r *PlanRepository) List(ctx context.Context) ([]domain.Plan, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, `
		SELECT id, name, price, duration_days, features
		FROM plans
		ORDER BY sort_order, duration_days`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []domain.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

func (r *PlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	query := `SELECT id, name, price, duration_days, features FROM plans WHERE id = ?`
	var arg any = id.String()
	if r.conn.Driver() == database.DriverPostgres {
		query = `SELECT id, name, price, duration_days, features FROM plans WHERE id = $1`
		arg = id
	}

	p, err := scanPlan(database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx, query, arg))
	if database.IsNoRows(err) {
		return nil, nil
	}
	return p, err
}

func scanPlan(row database.Row) (*domain.Plan, error) {
	var (
		id       string
		p        domain.Plan
		features []byte
	)
	if err := row.Scan(&id, &p.Name, &p.Price, &p.DurationDays, &features); err != nil {
		return nil, err
	}

	var err error
	if p.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("plan id: %w", err)
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return nil, fmt.Errorf("plan %s features: %w", p.ID, err)
		}
	}
	p.Price = p.Price.Round(2)
	return &p, nil
}

var _ domain.PlanRepository = (*PlanRepository)(nil)
