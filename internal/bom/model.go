package bom

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Type distinguishes the two BOM stages.
type Type string

const (
	// TypeRawMaterialProcess produces a crude product from raw materials.
	TypeRawMaterialProcess Type = "raw_material_process"
	// TypeProductProcess produces a finished product from crude products
	// and packaging materials.
	TypeProductProcess Type = "product_process"
)

// OutputEntity reports what kind of entity this BOM type produces.
func (t Type) OutputEntity() InputKind {
	if t == TypeRawMaterialProcess {
		return InputCrudeProduct
	}
	return InputProduct
}

// InputKind tags what a BOM line consumes or a header produces.
type InputKind string

const (
	InputMaterial     InputKind = "material"
	InputCrudeProduct InputKind = "crude_product"
	InputProduct      InputKind = "product"
)

// InputRef is the tagged variant for a line's input: exactly one of a
// material or a crude product, never both and never neither.
type InputRef struct {
	Kind InputKind `json:"kind"`
	ID   int64     `json:"id"`
}

// MaterialRef builds a material input reference.
func MaterialRef(id int64) InputRef {
	return InputRef{Kind: InputMaterial, ID: id}
}

// CrudeProductRef builds a crude product input reference.
func CrudeProductRef(id int64) InputRef {
	return InputRef{Kind: InputCrudeProduct, ID: id}
}

// Header is a versioned, effective-dated recipe header. OutputID is
// interpreted through BomType: a crude product id for
// raw_material_process, a product id for product_process.
type Header struct {
	ID            int64            `json:"id"`
	OutputID      int64            `json:"output_id"`
	BomType       Type             `json:"bom_type"`
	EffectiveDate time.Time        `json:"effective_date"`
	Version       int              `json:"version"`
	YieldRate     decimal.Decimal  `json:"yield_rate"`
	BatchSize     *decimal.Decimal `json:"batch_size,omitempty"`
	IsActive      bool             `json:"is_active"`
	Notes         string           `json:"notes,omitempty"`
	Lines         []Line           `json:"lines,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Line is a single input requirement of a BOM.
type Line struct {
	ID        int64           `json:"id"`
	HeaderID  int64           `json:"header_id"`
	Input     InputRef        `json:"input"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	LossRate  decimal.Decimal `json:"loss_rate"`
	SortOrder int             `json:"sort_order"`
	Notes     string          `json:"notes,omitempty"`
}

// RequiredQuantity is the input amount consumed per batch after loss:
// quantity / (1 - loss_rate). A zero loss rate is the identity.
func (l Line) RequiredQuantity() decimal.Decimal {
	if l.LossRate.IsZero() {
		return l.Quantity
	}
	return l.Quantity.Div(decimal.NewFromInt(1).Sub(l.LossRate))
}

var (
	// ErrNotFound indicates no BOM matched the resolution query.
	ErrNotFound = errors.New("bom: not found")
	// ErrInvalidInput indicates a line input inconsistent with the BOM type.
	ErrInvalidInput = errors.New("bom: invalid line input")
)

// Validate checks header/line consistency invariants.
func (h Header) Validate() error {
	switch h.BomType {
	case TypeRawMaterialProcess, TypeProductProcess:
	default:
		return fmt.Errorf("bom: unknown bom_type %q", h.BomType)
	}
	if h.OutputID <= 0 {
		return fmt.Errorf("bom: output entity required")
	}
	one := decimal.NewFromInt(1)
	if h.YieldRate.LessThanOrEqual(decimal.Zero) || h.YieldRate.GreaterThan(one) {
		return fmt.Errorf("bom: yield_rate %s outside (0,1]", h.YieldRate)
	}
	for _, line := range h.Lines {
		if line.LossRate.IsNegative() || line.LossRate.GreaterThanOrEqual(one) {
			return fmt.Errorf("bom: loss_rate %s outside [0,1)", line.LossRate)
		}
		if !line.Quantity.IsPositive() {
			return fmt.Errorf("bom: line quantity must be positive")
		}
		switch line.Input.Kind {
		case InputMaterial:
		case InputCrudeProduct:
			// Stage 1 crude inputs are blend sources; Stage 2 crude inputs
			// are the regular case.
		default:
			return fmt.Errorf("%w: kind %q", ErrInvalidInput, line.Input.Kind)
		}
	}
	return nil
}
