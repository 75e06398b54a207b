package reconciliation

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	ReplaceForPeriod(ctx context.Context, periodID int64, results []Result) error
	ListByPeriod(ctx context.Context, periodID int64) ([]Result, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) ReplaceForPeriod(ctx context.Context, periodID int64, results []Result) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM reconciliation_results WHERE period_id = $1`, periodID); err != nil {
		return err
	}

	now := time.Now()
	for _, res := range results {
		_, err := tx.Exec(ctx,
			`INSERT INTO reconciliation_results
(period_id, entity_type, entity_id, source_a, source_b, value_a, value_b, difference, status, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11)`,
			periodID, res.EntityType, res.EntityID, res.SourceA, res.SourceB,
			res.ValueA, res.ValueB, res.Difference, res.Status, res.Notes, now)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *repository) ListByPeriod(ctx context.Context, periodID int64) ([]Result, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, period_id, entity_type, entity_id, source_a, source_b, value_a, value_b, difference, status, COALESCE(notes, ''), created_at
FROM reconciliation_results WHERE period_id = $1 ORDER BY entity_id`, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var res Result
		if err := rows.Scan(&res.ID, &res.PeriodID, &res.EntityType, &res.EntityID, &res.SourceA, &res.SourceB, &res.ValueA, &res.ValueB, &res.Difference, &res.Status, &res.Notes, &res.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
