package bom

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Get(ctx context.Context, id int64) (Header, error)
	ListByOutput(ctx context.Context, bomType Type, outputID int64) ([]Header, error)
	ListActive(ctx context.Context, bomType Type) ([]Header, error)
	Create(ctx context.Context, h Header) (Header, error)
	Update(ctx context.Context, id int64, h Header) error
	Deactivate(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const headerColumns = `id, output_id, bom_type, effective_date, version, yield_rate, batch_size, is_active, COALESCE(notes, ''), created_at, updated_at`

func scanHeader(row pgx.Row) (Header, error) {
	var h Header
	err := row.Scan(&h.ID, &h.OutputID, &h.BomType, &h.EffectiveDate, &h.Version, &h.YieldRate, &h.BatchSize, &h.IsActive, &h.Notes, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}

func (r *repository) Get(ctx context.Context, id int64) (Header, error) {
	h, err := scanHeader(r.db.QueryRow(ctx, `SELECT `+headerColumns+` FROM bom_headers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Header{}, ErrNotFound
	}
	if err != nil {
		return Header{}, err
	}
	h.Lines, err = r.loadLines(ctx, h.ID)
	return h, err
}

func (r *repository) ListByOutput(ctx context.Context, bomType Type, outputID int64) ([]Header, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+headerColumns+` FROM bom_headers WHERE bom_type = $1 AND output_id = $2 ORDER BY effective_date DESC, version DESC`,
		bomType, outputID)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

// ListActive loads every active header of a type with lines attached.
// The roll-up engine resolves per-entity recipes from this set in one
// round trip instead of a query per output.
func (r *repository) ListActive(ctx context.Context, bomType Type) ([]Header, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+headerColumns+` FROM bom_headers WHERE bom_type = $1 AND is_active = true ORDER BY output_id, effective_date DESC, version DESC`,
		bomType)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

func (r *repository) collect(ctx context.Context, rows pgx.Rows) ([]Header, error) {
	defer rows.Close()

	var out []Header
	for rows.Next() {
		h, err := scanHeader(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		lines, err := r.loadLines(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Lines = lines
	}
	return out, nil
}

func (r *repository) loadLines(ctx context.Context, headerID int64) ([]Line, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, header_id, material_id, crude_product_id, quantity, unit, loss_rate, sort_order, COALESCE(notes, '')
FROM bom_lines WHERE header_id = $1 ORDER BY sort_order, id`, headerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var (
			l              Line
			materialID     *int64
			crudeProductID *int64
		)
		if err := rows.Scan(&l.ID, &l.HeaderID, &materialID, &crudeProductID, &l.Quantity, &l.Unit, &l.LossRate, &l.SortOrder, &l.Notes); err != nil {
			return nil, err
		}
		switch {
		case materialID != nil:
			l.Input = MaterialRef(*materialID)
		case crudeProductID != nil:
			l.Input = CrudeProductRef(*crudeProductID)
		default:
			return nil, ErrInvalidInput
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, h Header) (Header, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return Header{}, err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	err = tx.QueryRow(ctx,
		`INSERT INTO bom_headers (output_id, bom_type, effective_date, version, yield_rate, batch_size, is_active, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10) RETURNING id`,
		h.OutputID, h.BomType, h.EffectiveDate, h.Version, h.YieldRate, h.BatchSize, h.IsActive, h.Notes, now, now).Scan(&h.ID)
	if err != nil {
		return Header{}, err
	}
	if err := insertLines(ctx, tx, h.ID, h.Lines); err != nil {
		return Header{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Header{}, err
	}
	h.CreatedAt = now
	h.UpdatedAt = now
	for i := range h.Lines {
		h.Lines[i].HeaderID = h.ID
	}
	return h, nil
}

func (r *repository) Update(ctx context.Context, id int64, h Header) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE bom_headers SET output_id = $1, bom_type = $2, effective_date = $3, version = $4, yield_rate = $5, batch_size = $6, is_active = $7, notes = NULLIF($8, ''), updated_at = $9 WHERE id = $10`,
		h.OutputID, h.BomType, h.EffectiveDate, h.Version, h.YieldRate, h.BatchSize, h.IsActive, h.Notes, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM bom_lines WHERE header_id = $1`, id); err != nil {
		return err
	}
	if err := insertLines(ctx, tx, id, h.Lines); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE bom_headers SET is_active = false, updated_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func insertLines(ctx context.Context, tx pgx.Tx, headerID int64, lines []Line) error {
	for _, l := range lines {
		var materialID, crudeProductID *int64
		switch l.Input.Kind {
		case InputMaterial:
			materialID = &l.Input.ID
		case InputCrudeProduct:
			crudeProductID = &l.Input.ID
		default:
			return ErrInvalidInput
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO bom_lines (header_id, material_id, crude_product_id, quantity, unit, loss_rate, sort_order, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))`,
			headerID, materialID, crudeProductID, l.Quantity, l.Unit, l.LossRate, l.SortOrder, l.Notes)
		if err != nil {
			return err
		}
	}
	return nil
}
