package materials

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
	List(ctx context.Context, filters shared.ListFilters) ([]Material, int, error)
	Get(ctx context.Context, id int64) (Material, error)
	GetByCode(ctx context.Context, code string) (Material, error)
	ListActive(ctx context.Context) ([]Material, error)
	Create(ctx context.Context, m Material) (Material, error)
	Update(ctx context.Context, id int64, m Material) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const materialColumns = `id, code, name, material_type, category, unit, standard_unit_price, is_active, COALESCE(notes, ''), created_at, updated_at`

func scanMaterial(row pgx.Row) (Material, error) {
	var m Material
	err := row.Scan(&m.ID, &m.Code, &m.Name, &m.MaterialType, &m.Category, &m.Unit, &m.StandardUnitPrice, &m.IsActive, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Material, int, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM materials WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	appendFilter := func(clause string, value interface{}) {
		argCount++
		query += ` AND ` + clause + `$` + strconv.Itoa(argCount)
		countQuery += ` AND ` + clause + `$` + strconv.Itoa(argCount)
		args = append(args, value)
	}

	if filters.MaterialType != nil {
		appendFilter("material_type = ", *filters.MaterialType)
	}
	if filters.Category != nil {
		appendFilter("category = ", *filters.Category)
	}
	if filters.IsActive != nil {
		appendFilter("is_active = ", *filters.IsActive)
	}
	if filters.Search != "" {
		argCount++
		like := ` (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		query += ` AND` + like
		countQuery += ` AND` + like
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += " ORDER BY " + sortOrder(filters.SortBy, filters.SortDir)
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

	var out []Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Material, error) {
	m, err := scanMaterial(r.db.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Material{}, shared.ErrNotFound
	}
	return m, err
}

func (r *repository) GetByCode(ctx context.Context, code string) (Material, error) {
	m, err := scanMaterial(r.db.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE code = $1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return Material{}, shared.ErrNotFound
	}
	return m, err
}

func (r *repository) ListActive(ctx context.Context) ([]Material, error) {
	rows, err := r.db.Query(ctx, `SELECT `+materialColumns+` FROM materials WHERE is_active = true ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, m Material) (Material, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO materials (code, name, material_type, category, unit, standard_unit_price, is_active, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10) RETURNING id`,
		m.Code, m.Name, m.MaterialType, m.Category, m.Unit, m.StandardUnitPrice, m.IsActive, m.Notes, now, now).Scan(&m.ID)
	if err != nil {
		return Material{}, err
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	return m, nil
}

func (r *repository) Update(ctx context.Context, id int64, m Material) error {
	_, err := r.db.Exec(ctx,
		`UPDATE materials SET code = $1, name = $2, material_type = $3, category = $4, unit = $5, standard_unit_price = $6, is_active = $7, notes = NULLIF($8, ''), updated_at = $9 WHERE id = $10`,
		m.Code, m.Name, m.MaterialType, m.Category, m.Unit, m.StandardUnitPrice, m.IsActive, m.Notes, time.Now(), id)
	return err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	return err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "code " + dir
	case "name":
		return "name " + dir
	case "standard_unit_price":
		return "standard_unit_price " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "code " + dir
	}
}
