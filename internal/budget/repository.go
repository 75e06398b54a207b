package budget

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Get(ctx context.Context, id int64) (CostBudget, error)
	Find(ctx context.Context, costCenterID, periodID int64) (CostBudget, error)
	ListByPeriod(ctx context.Context, periodID int64) ([]CostBudget, error)
	Create(ctx context.Context, b CostBudget) (CostBudget, error)
	Update(ctx context.Context, id int64, b CostBudget) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const budgetColumns = `id, cost_center_id, period_id, labor_budget, overhead_budget, outsourcing_budget, production_hours, COALESCE(notes, ''), created_at, updated_at`

func scanBudget(row pgx.Row) (CostBudget, error) {
	var b CostBudget
	err := row.Scan(&b.ID, &b.CostCenterID, &b.PeriodID, &b.LaborBudget, &b.OverheadBudget, &b.OutsourcingBudget, &b.ProductionHours, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *repository) Get(ctx context.Context, id int64) (CostBudget, error) {
	b, err := scanBudget(r.db.QueryRow(ctx, `SELECT `+budgetColumns+` FROM cost_budgets WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return CostBudget{}, ErrNotFound
	}
	return b, err
}

func (r *repository) Find(ctx context.Context, costCenterID, periodID int64) (CostBudget, error) {
	b, err := scanBudget(r.db.QueryRow(ctx,
		`SELECT `+budgetColumns+` FROM cost_budgets WHERE cost_center_id = $1 AND period_id = $2`, costCenterID, periodID))
	if errors.Is(err, pgx.ErrNoRows) {
		return CostBudget{}, ErrNotFound
	}
	return b, err
}

func (r *repository) ListByPeriod(ctx context.Context, periodID int64) ([]CostBudget, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+budgetColumns+` FROM cost_budgets WHERE period_id = $1 ORDER BY cost_center_id`, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CostBudget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, b CostBudget) (CostBudget, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO cost_budgets (cost_center_id, period_id, labor_budget, overhead_budget, outsourcing_budget, production_hours, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9) RETURNING id`,
		b.CostCenterID, b.PeriodID, b.LaborBudget, b.OverheadBudget, b.OutsourcingBudget, b.ProductionHours, b.Notes, now, now).Scan(&b.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return CostBudget{}, ErrDuplicate
		}
		return CostBudget{}, err
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	return b, nil
}

func (r *repository) Update(ctx context.Context, id int64, b CostBudget) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE cost_budgets SET labor_budget = $1, overhead_budget = $2, outsourcing_budget = $3, production_hours = $4, notes = NULLIF($5, ''), updated_at = $6 WHERE id = $7`,
		b.LaborBudget, b.OverheadBudget, b.OutsourcingBudget, b.ProductionHours, b.Notes, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM cost_budgets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
