package variance

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Get(ctx context.Context, id int64) (Record, error)
	List(ctx context.Context, filters ListFilters) ([]Record, error)
	ReplaceForPeriod(ctx context.Context, periodID int64, productIDs []int64, records []Record) error
	UpdateReview(ctx context.Context, id int64, update ReviewUpdate) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const recordColumns = `id, product_id, cost_center_id, period_id, variance_type, cost_element, standard_amount, actual_amount, variance_amount, variance_percent, is_favorable, is_flagged, COALESCE(flag_reason, ''), COALESCE(notes, ''), created_at, updated_at`

func scanRecord(row pgx.Row) (Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.ProductID, &r.CostCenterID, &r.PeriodID, &r.VarianceType, &r.CostElement,
		&r.StandardAmount, &r.ActualAmount, &r.VarianceAmount, &r.VariancePercent,
		&r.IsFavorable, &r.IsFlagged, &r.FlagReason, &r.Notes, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (r *repository) Get(ctx context.Context, id int64) (Record, error) {
	rec, err := scanRecord(r.db.QueryRow(ctx, `SELECT `+recordColumns+` FROM variance_records WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM variance_records WHERE period_id = $1`
	args := []any{filters.PeriodID}
	argCount := 1

	if filters.ProductID != nil {
		argCount++
		query += ` AND product_id = $` + strconv.Itoa(argCount)
		args = append(args, *filters.ProductID)
	}
	if filters.CostElement != nil {
		argCount++
		query += ` AND cost_element = $` + strconv.Itoa(argCount)
		args = append(args, *filters.CostElement)
	}
	if filters.IsFlagged != nil {
		argCount++
		query += ` AND is_flagged = $` + strconv.Itoa(argCount)
		args = append(args, *filters.IsFlagged)
	}
	query += ` ORDER BY product_id, cost_element`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ReplaceForPeriod drops the prior analysis for the scoped products and
// inserts the fresh records in one transaction, keeping re-analysis
// idempotent instead of additive.
func (r *repository) ReplaceForPeriod(ctx context.Context, periodID int64, productIDs []int64, records []Record) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if len(productIDs) > 0 {
		_, err = tx.Exec(ctx, `DELETE FROM variance_records WHERE period_id = $1 AND product_id = ANY($2)`, periodID, productIDs)
	} else {
		_, err = tx.Exec(ctx, `DELETE FROM variance_records WHERE period_id = $1`, periodID)
	}
	if err != nil {
		return err
	}

	now := time.Now()
	for _, rec := range records {
		_, err := tx.Exec(ctx,
			`INSERT INTO variance_records
(product_id, cost_center_id, period_id, variance_type, cost_element, standard_amount, actual_amount, variance_amount, variance_percent, is_favorable, is_flagged, flag_reason, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''), NULLIF($13, ''), $14, $14)`,
			rec.ProductID, rec.CostCenterID, periodID, rec.VarianceType, rec.CostElement,
			rec.StandardAmount, rec.ActualAmount, rec.VarianceAmount, rec.VariancePercent,
			rec.IsFavorable, rec.IsFlagged, rec.FlagReason, rec.Notes, now)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// UpdateReview mutates review state only; amounts are immutable once
// analysed.
func (r *repository) UpdateReview(ctx context.Context, id int64, update ReviewUpdate) error {
	query := `UPDATE variance_records SET updated_at = $1`
	args := []any{time.Now()}
	argCount := 1

	if update.IsFlagged != nil {
		argCount++
		query += `, is_flagged = $` + strconv.Itoa(argCount)
		args = append(args, *update.IsFlagged)
	}
	if update.FlagReason != nil {
		argCount++
		query += `, flag_reason = NULLIF($` + strconv.Itoa(argCount) + `, '')`
		args = append(args, *update.FlagReason)
	}
	if update.Notes != nil {
		argCount++
		query += `, notes = NULLIF($` + strconv.Itoa(argCount) + `, '')`
		args = append(args, *update.Notes)
	}
	argCount++
	query += ` WHERE id = $` + strconv.Itoa(argCount)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
