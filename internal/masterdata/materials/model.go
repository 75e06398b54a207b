package materials

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialType classifies an input material.
type MaterialType string

const (
	TypeRaw         MaterialType = "raw"
	TypePackaging   MaterialType = "packaging"
	TypeSubMaterial MaterialType = "sub_material"
)

// Category groups raw materials by origin.
type Category string

const (
	CategoryFruit     Category = "fruit"
	CategoryVegetable Category = "vegetable"
	CategoryGrain     Category = "grain"
	CategorySeaweed   Category = "seaweed"
	CategoryOther     Category = "other"
)

// Material represents a raw material, packaging, or sub-material master row.
type Material struct {
	ID                int64           `json:"id"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	MaterialType      MaterialType    `json:"material_type"`
	Category          *Category       `json:"category,omitempty"`
	Unit              string          `json:"unit"`
	StandardUnitPrice decimal.Decimal `json:"standard_unit_price"`
	IsActive          bool            `json:"is_active"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
