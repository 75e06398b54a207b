package costing

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultRepository persists roll-up outputs. Upserts are keyed on the
// (entity, period) unique constraint so a re-run replaces prior rows
// instead of appending, and concurrent runs for the same period
// converge on one row per key.
type ResultRepository interface {
	UpsertCrudeProductCosts(ctx context.Context, rows []CrudeProductStandardCost) error
	UpsertStandardCosts(ctx context.Context, rows []StandardCost) error
	ListCrudeProductCosts(ctx context.Context, periodID int64, crudeProductID *int64) ([]CrudeProductStandardCost, error)
	ListStandardCosts(ctx context.Context, periodID int64, productID *int64) ([]StandardCost, error)
	CopyStandardCosts(ctx context.Context, fromPeriodID, toPeriodID int64) (int, error)
}

type resultRepository struct {
	db *pgxpool.Pool
}

func NewResultRepository(db *pgxpool.Pool) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) UpsertCrudeProductCosts(ctx context.Context, rows []CrudeProductStandardCost) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, row := range rows {
		_, err := tx.Exec(ctx,
			`INSERT INTO crude_product_standard_costs
(crude_product_id, period_id, material_cost, labor_cost, overhead_cost, prior_process_cost, total_cost, standard_quantity, unit_cost, calculated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (crude_product_id, period_id) DO UPDATE SET
material_cost = EXCLUDED.material_cost,
labor_cost = EXCLUDED.labor_cost,
overhead_cost = EXCLUDED.overhead_cost,
prior_process_cost = EXCLUDED.prior_process_cost,
total_cost = EXCLUDED.total_cost,
standard_quantity = EXCLUDED.standard_quantity,
unit_cost = EXCLUDED.unit_cost,
calculated_at = EXCLUDED.calculated_at`,
			row.CrudeProductID, row.PeriodID, row.MaterialCost, row.LaborCost, row.OverheadCost,
			row.PriorProcessCost, row.TotalCost, row.StandardQuantity, row.UnitCost, row.CalculatedAt)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *resultRepository) UpsertStandardCosts(ctx context.Context, rows []StandardCost) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, row := range rows {
		_, err := tx.Exec(ctx,
			`INSERT INTO standard_costs
(product_id, period_id, crude_product_cost, packaging_cost, labor_cost, overhead_cost, outsourcing_cost, total_cost, lot_size, unit_cost, calculated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (product_id, period_id) DO UPDATE SET
crude_product_cost = EXCLUDED.crude_product_cost,
packaging_cost = EXCLUDED.packaging_cost,
labor_cost = EXCLUDED.labor_cost,
overhead_cost = EXCLUDED.overhead_cost,
outsourcing_cost = EXCLUDED.outsourcing_cost,
total_cost = EXCLUDED.total_cost,
lot_size = EXCLUDED.lot_size,
unit_cost = EXCLUDED.unit_cost,
calculated_at = EXCLUDED.calculated_at`,
			row.ProductID, row.PeriodID, row.CrudeProductCost, row.PackagingCost, row.LaborCost,
			row.OverheadCost, row.OutsourcingCost, row.TotalCost, row.LotSize, row.UnitCost, row.CalculatedAt)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *resultRepository) ListCrudeProductCosts(ctx context.Context, periodID int64, crudeProductID *int64) ([]CrudeProductStandardCost, error) {
	query := `SELECT id, crude_product_id, period_id, material_cost, labor_cost, overhead_cost, prior_process_cost, total_cost, standard_quantity, unit_cost, calculated_at
FROM crude_product_standard_costs WHERE period_id = $1`
	args := []any{periodID}
	if crudeProductID != nil {
		query += ` AND crude_product_id = $2`
		args = append(args, *crudeProductID)
	}
	query += ` ORDER BY crude_product_id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CrudeProductStandardCost
	for rows.Next() {
		var c CrudeProductStandardCost
		if err := rows.Scan(&c.ID, &c.CrudeProductID, &c.PeriodID, &c.MaterialCost, &c.LaborCost, &c.OverheadCost, &c.PriorProcessCost, &c.TotalCost, &c.StandardQuantity, &c.UnitCost, &c.CalculatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *resultRepository) ListStandardCosts(ctx context.Context, periodID int64, productID *int64) ([]StandardCost, error) {
	query := `SELECT id, product_id, period_id, crude_product_cost, packaging_cost, labor_cost, overhead_cost, outsourcing_cost, total_cost, lot_size, unit_cost, calculated_at
FROM standard_costs WHERE period_id = $1`
	args := []any{periodID}
	if productID != nil {
		query += ` AND product_id = $2`
		args = append(args, *productID)
	}
	query += ` ORDER BY product_id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StandardCost
	for rows.Next() {
		var c StandardCost
		if err := rows.Scan(&c.ID, &c.ProductID, &c.PeriodID, &c.CrudeProductCost, &c.PackagingCost, &c.LaborCost, &c.OverheadCost, &c.OutsourcingCost, &c.TotalCost, &c.LotSize, &c.UnitCost, &c.CalculatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CopyStandardCosts seeds a new period with the previous period's
// results, both stages, replacing anything already there.
func (r *resultRepository) CopyStandardCosts(ctx context.Context, fromPeriodID, toPeriodID int64) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM standard_costs WHERE period_id = $1`, toPeriodID); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM crude_product_standard_costs WHERE period_id = $1`, toPeriodID); err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO standard_costs (product_id, period_id, crude_product_cost, packaging_cost, labor_cost, overhead_cost, outsourcing_cost, total_cost, lot_size, unit_cost, calculated_at)
SELECT product_id, $2, crude_product_cost, packaging_cost, labor_cost, overhead_cost, outsourcing_cost, total_cost, lot_size, unit_cost, NOW()
FROM standard_costs WHERE period_id = $1`, fromPeriodID, toPeriodID)
	if err != nil {
		return 0, err
	}
	copied := int(tag.RowsAffected())

	crudeTag, err := tx.Exec(ctx,
		`INSERT INTO crude_product_standard_costs (crude_product_id, period_id, material_cost, labor_cost, overhead_cost, prior_process_cost, total_cost, standard_quantity, unit_cost, calculated_at)
SELECT crude_product_id, $2, material_cost, labor_cost, overhead_cost, prior_process_cost, total_cost, standard_quantity, unit_cost, NOW()
FROM crude_product_standard_costs WHERE period_id = $1`, fromPeriodID, toPeriodID)
	if err != nil {
		return 0, err
	}
	copied += int(crudeTag.RowsAffected())

	return copied, tx.Commit(ctx)
}
