package allocation

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Get(ctx context.Context, id int64) (Rule, error)
	ListActive(ctx context.Context) ([]Rule, error)
	ListBySource(ctx context.Context, sourceCostCenterID int64) ([]Rule, error)
	Create(ctx context.Context, rule Rule) (Rule, error)
	Update(ctx context.Context, id int64, rule Rule) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const ruleColumns = `id, name, source_cost_center_id, COALESCE(cost_element, ''), basis, priority, is_active, created_at, updated_at`

func scanRule(row pgx.Row) (Rule, error) {
	var r Rule
	err := row.Scan(&r.ID, &r.Name, &r.SourceCostCenterID, &r.CostElement, &r.Basis, &r.Priority, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (r *repository) Get(ctx context.Context, id int64) (Rule, error) {
	rule, err := scanRule(r.db.QueryRow(ctx, `SELECT `+ruleColumns+` FROM allocation_rules WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Rule{}, ErrNotFound
	}
	if err != nil {
		return Rule{}, err
	}
	rule.Targets, err = r.loadTargets(ctx, rule.ID)
	return rule, err
}

func (r *repository) ListActive(ctx context.Context) ([]Rule, error) {
	return r.list(ctx, `SELECT `+ruleColumns+` FROM allocation_rules WHERE is_active = true ORDER BY priority, id`)
}

func (r *repository) ListBySource(ctx context.Context, sourceCostCenterID int64) ([]Rule, error) {
	return r.list(ctx, `SELECT `+ruleColumns+` FROM allocation_rules WHERE source_cost_center_id = $1 ORDER BY priority, id`, sourceCostCenterID)
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]Rule, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		targets, err := r.loadTargets(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Targets = targets
	}
	return out, nil
}

func (r *repository) loadTargets(ctx context.Context, ruleID int64) ([]Target, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, rule_id, target_cost_center_id, ratio FROM allocation_rule_targets WHERE rule_id = $1 ORDER BY id`, ruleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Target
	for rows.Next() {
		var t Target
		if err := rows.Scan(&t.ID, &t.RuleID, &t.TargetCostCenterID, &t.Ratio); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, rule Rule) (Rule, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return Rule{}, err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	err = tx.QueryRow(ctx,
		`INSERT INTO allocation_rules (name, source_cost_center_id, cost_element, basis, priority, is_active, created_at, updated_at)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8) RETURNING id`,
		rule.Name, rule.SourceCostCenterID, rule.CostElement, rule.Basis, rule.Priority, rule.IsActive, now, now).Scan(&rule.ID)
	if err != nil {
		return Rule{}, err
	}
	if err := insertTargets(ctx, tx, rule.ID, rule.Targets); err != nil {
		return Rule{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Rule{}, err
	}
	rule.CreatedAt = now
	rule.UpdatedAt = now
	return rule, nil
}

func (r *repository) Update(ctx context.Context, id int64, rule Rule) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE allocation_rules SET name = $1, source_cost_center_id = $2, cost_element = NULLIF($3, ''), basis = $4, priority = $5, is_active = $6, updated_at = $7 WHERE id = $8`,
		rule.Name, rule.SourceCostCenterID, rule.CostElement, rule.Basis, rule.Priority, rule.IsActive, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM allocation_rule_targets WHERE rule_id = $1`, id); err != nil {
		return err
	}
	if err := insertTargets(ctx, tx, id, rule.Targets); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM allocation_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func insertTargets(ctx context.Context, tx pgx.Tx, ruleID int64, targets []Target) error {
	for _, t := range targets {
		_, err := tx.Exec(ctx,
			`INSERT INTO allocation_rule_targets (rule_id, target_cost_center_id, ratio) VALUES ($1, $2, $3)`,
			ruleID, t.TargetCostCenterID, t.Ratio)
		if err != nil {
			return err
		}
	}
	return nil
}
