package crudeproducts

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/genka-erp/genka-erp/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]CrudeProduct, int, error)
	Get(ctx context.Context, id int64) (CrudeProduct, error)
	GetByCode(ctx context.Context, code string) (CrudeProduct, error)
	ListActive(ctx context.Context) ([]CrudeProduct, error)
	Create(ctx context.Context, cp CrudeProduct) (CrudeProduct, error)
	Update(ctx context.Context, id int64, cp CrudeProduct) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const crudeColumns = `id, code, name, vintage_year, crude_type, aging_years, is_blend, blend_source_ids, unit, is_active, COALESCE(notes, ''), created_at, updated_at`

func scanCrude(row pgx.Row) (CrudeProduct, error) {
	var cp CrudeProduct
	err := row.Scan(&cp.ID, &cp.Code, &cp.Name, &cp.VintageYear, &cp.CrudeType, &cp.AgingYears, &cp.IsBlend, &cp.BlendSourceIDs, &cp.Unit, &cp.IsActive, &cp.Notes, &cp.CreatedAt, &cp.UpdatedAt)
	return cp, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]CrudeProduct, int, error) {
	query := `SELECT ` + crudeColumns + ` FROM crude_products WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM crude_products WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.CrudeType != nil {
		argCount++
		clause := ` AND crude_type = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.CrudeType)
	}
	if filters.IsActive != nil {
		argCount++
		clause := ` AND is_active = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.IsActive)
	}
	if filters.Search != "" {
		argCount++
		clause := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY code`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []CrudeProduct
	for rows.Next() {
		cp, err := scanCrude(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, cp)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (CrudeProduct, error) {
	cp, err := scanCrude(r.db.QueryRow(ctx, `SELECT `+crudeColumns+` FROM crude_products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return CrudeProduct{}, shared.ErrNotFound
	}
	return cp, err
}

func (r *repository) GetByCode(ctx context.Context, code string) (CrudeProduct, error) {
	cp, err := scanCrude(r.db.QueryRow(ctx, `SELECT `+crudeColumns+` FROM crude_products WHERE code = $1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return CrudeProduct{}, shared.ErrNotFound
	}
	return cp, err
}

func (r *repository) ListActive(ctx context.Context) ([]CrudeProduct, error) {
	rows, err := r.db.Query(ctx, `SELECT `+crudeColumns+` FROM crude_products WHERE is_active = true ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CrudeProduct
	for rows.Next() {
		cp, err := scanCrude(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, cp CrudeProduct) (CrudeProduct, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO crude_products (code, name, vintage_year, crude_type, aging_years, is_blend, blend_source_ids, unit, is_active, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12) RETURNING id`,
		cp.Code, cp.Name, cp.VintageYear, cp.CrudeType, cp.AgingYears, cp.IsBlend, cp.BlendSourceIDs, cp.Unit, cp.IsActive, cp.Notes, now, now).Scan(&cp.ID)
	if err != nil {
		return CrudeProduct{}, err
	}
	cp.CreatedAt = now
	cp.UpdatedAt = now
	return cp, nil
}

func (r *repository) Update(ctx context.Context, id int64, cp CrudeProduct) error {
	_, err := r.db.Exec(ctx,
		`UPDATE crude_products SET code = $1, name = $2, vintage_year = $3, crude_type = $4, aging_years = $5, is_blend = $6, blend_source_ids = $7, unit = $8, is_active = $9, notes = NULLIF($10, ''), updated_at = $11 WHERE id = $12`,
		cp.Code, cp.Name, cp.VintageYear, cp.CrudeType, cp.AgingYears, cp.IsBlend, cp.BlendSourceIDs, cp.Unit, cp.IsActive, cp.Notes, time.Now(), id)
	return err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM crude_products WHERE id = $1`, id)
	return err
}
