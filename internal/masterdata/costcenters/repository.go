package costcenters

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/genka-erp/genka-erp/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context) ([]CostCenter, error)
	Get(ctx context.Context, id int64) (CostCenter, error)
	GetByType(ctx context.Context, centerType CenterType) (CostCenter, error)
	Create(ctx context.Context, cc CostCenter) (CostCenter, error)
	Update(ctx context.Context, id int64, cc CostCenter) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const centerColumns = `id, code, name, COALESCE(name_short, ''), center_type, parent_id, is_active, sort_order, created_at, updated_at`

func scanCenter(row pgx.Row) (CostCenter, error) {
	var cc CostCenter
	err := row.Scan(&cc.ID, &cc.Code, &cc.Name, &cc.NameShort, &cc.CenterType, &cc.ParentID, &cc.IsActive, &cc.SortOrder, &cc.CreatedAt, &cc.UpdatedAt)
	return cc, err
}

func (r *repository) List(ctx context.Context) ([]CostCenter, error) {
	rows, err := r.db.Query(ctx, `SELECT `+centerColumns+` FROM cost_centers ORDER BY sort_order, code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CostCenter
	for rows.Next() {
		cc, err := scanCenter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (CostCenter, error) {
	cc, err := scanCenter(r.db.QueryRow(ctx, `SELECT `+centerColumns+` FROM cost_centers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return CostCenter{}, shared.ErrNotFound
	}
	return cc, err
}

// GetByType returns the first active center of the given type; the
// manufacturing and product departments are singletons in practice.
func (r *repository) GetByType(ctx context.Context, centerType CenterType) (CostCenter, error) {
	cc, err := scanCenter(r.db.QueryRow(ctx,
		`SELECT `+centerColumns+` FROM cost_centers WHERE center_type = $1 AND is_active = true ORDER BY sort_order, code LIMIT 1`, centerType))
	if errors.Is(err, pgx.ErrNoRows) {
		return CostCenter{}, shared.ErrNotFound
	}
	return cc, err
}

func (r *repository) Create(ctx context.Context, cc CostCenter) (CostCenter, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO cost_centers (code, name, name_short, center_type, parent_id, is_active, sort_order, created_at, updated_at)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9) RETURNING id`,
		cc.Code, cc.Name, cc.NameShort, cc.CenterType, cc.ParentID, cc.IsActive, cc.SortOrder, now, now).Scan(&cc.ID)
	if err != nil {
		return CostCenter{}, err
	}
	cc.CreatedAt = now
	cc.UpdatedAt = now
	return cc, nil
}

func (r *repository) Update(ctx context.Context, id int64, cc CostCenter) error {
	_, err := r.db.Exec(ctx,
		`UPDATE cost_centers SET code = $1, name = $2, name_short = NULLIF($3, ''), center_type = $4, parent_id = $5, is_active = $6, sort_order = $7, updated_at = $8 WHERE id = $9`,
		cc.Code, cc.Name, cc.NameShort, cc.CenterType, cc.ParentID, cc.IsActive, cc.SortOrder, time.Now(), id)
	return err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cost_centers WHERE id = $1`, id)
	return err
}
