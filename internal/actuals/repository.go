package actuals

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	UpsertActualCosts(ctx context.Context, rows []ActualCost) error
	UpsertCrudeProductActualCosts(ctx context.Context, rows []CrudeProductActualCost) error
	ListActualCosts(ctx context.Context, periodID int64, productID *int64) ([]ActualCost, error)
	ListCrudeProductActualCosts(ctx context.Context, periodID int64, crudeProductID *int64) ([]CrudeProductActualCost, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) UpsertActualCosts(ctx context.Context, rows []ActualCost) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	for _, row := range rows {
		_, err := tx.Exec(ctx,
			`INSERT INTO actual_costs
(product_id, period_id, crude_product_cost, packaging_cost, labor_cost, overhead_cost, outsourcing_cost, total_cost, quantity_produced, source_system, import_batch_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''), $12, $12)
ON CONFLICT (product_id, period_id, source_system) DO UPDATE SET
crude_product_cost = EXCLUDED.crude_product_cost,
packaging_cost = EXCLUDED.packaging_cost,
labor_cost = EXCLUDED.labor_cost,
overhead_cost = EXCLUDED.overhead_cost,
outsourcing_cost = EXCLUDED.outsourcing_cost,
total_cost = EXCLUDED.total_cost,
quantity_produced = EXCLUDED.quantity_produced,
import_batch_id = EXCLUDED.import_batch_id,
updated_at = EXCLUDED.updated_at`,
			row.ProductID, row.PeriodID, row.CrudeProductCost, row.PackagingCost, row.LaborCost,
			row.OverheadCost, row.OutsourcingCost, row.TotalCost, row.QuantityProduced,
			row.SourceSystem, row.ImportBatchID, now)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *repository) UpsertCrudeProductActualCosts(ctx context.Context, rows []CrudeProductActualCost) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	for _, row := range rows {
		_, err := tx.Exec(ctx,
			`INSERT INTO crude_product_actual_costs
(crude_product_id, period_id, material_cost, labor_cost, overhead_cost, prior_process_cost, total_cost, actual_quantity, source_system, import_batch_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $11)
ON CONFLICT (crude_product_id, period_id, source_system) DO UPDATE SET
material_cost = EXCLUDED.material_cost,
labor_cost = EXCLUDED.labor_cost,
overhead_cost = EXCLUDED.overhead_cost,
prior_process_cost = EXCLUDED.prior_process_cost,
total_cost = EXCLUDED.total_cost,
actual_quantity = EXCLUDED.actual_quantity,
import_batch_id = EXCLUDED.import_batch_id,
updated_at = EXCLUDED.updated_at`,
			row.CrudeProductID, row.PeriodID, row.MaterialCost, row.LaborCost, row.OverheadCost,
			row.PriorProcessCost, row.TotalCost, row.ActualQuantity, row.SourceSystem, row.ImportBatchID, now)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *repository) ListActualCosts(ctx context.Context, periodID int64, productID *int64) ([]ActualCost, error) {
	query := `SELECT id, product_id, period_id, crude_product_cost, packaging_cost, labor_cost, overhead_cost, outsourcing_cost, total_cost, quantity_produced, source_system, COALESCE(import_batch_id, ''), created_at, updated_at
FROM actual_costs WHERE period_id = $1`
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

	var out []ActualCost
	for rows.Next() {
		var a ActualCost
		if err := rows.Scan(&a.ID, &a.ProductID, &a.PeriodID, &a.CrudeProductCost, &a.PackagingCost, &a.LaborCost, &a.OverheadCost, &a.OutsourcingCost, &a.TotalCost, &a.QuantityProduced, &a.SourceSystem, &a.ImportBatchID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) ListCrudeProductActualCosts(ctx context.Context, periodID int64, crudeProductID *int64) ([]CrudeProductActualCost, error) {
	query := `SELECT id, crude_product_id, period_id, material_cost, labor_cost, overhead_cost, prior_process_cost, total_cost, actual_quantity, source_system, COALESCE(import_batch_id, ''), created_at, updated_at
FROM crude_product_actual_costs WHERE period_id = $1`
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

	var out []CrudeProductActualCost
	for rows.Next() {
		var a CrudeProductActualCost
		if err := rows.Scan(&a.ID, &a.CrudeProductID, &a.PeriodID, &a.MaterialCost, &a.LaborCost, &a.OverheadCost, &a.PriorProcessCost, &a.TotalCost, &a.ActualQuantity, &a.SourceSystem, &a.ImportBatchID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
