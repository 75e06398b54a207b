package crudeproducts

import (
	"time"
)

// CrudeType is the fermentation grade of a crude product.
type CrudeType string

const (
	TypeR     CrudeType = "R"
	TypeHI    CrudeType = "HI"
	TypeG     CrudeType = "G"
	TypeSP    CrudeType = "SP"
	TypeGN    CrudeType = "GN"
	TypeOther CrudeType = "other"
)

// CrudeProduct is a fermented intermediate produced from raw materials.
// Blends reference other crude products through BlendSourceIDs and pick
// up their cost as prior process cost.
type CrudeProduct struct {
	ID             int64     `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	VintageYear    *int      `json:"vintage_year,omitempty"`
	CrudeType      CrudeType `json:"crude_type"`
	AgingYears     *int      `json:"aging_years,omitempty"`
	IsBlend        bool      `json:"is_blend"`
	BlendSourceIDs []int64   `json:"blend_source_ids,omitempty"`
	Unit           string    `json:"unit"`
	IsActive       bool      `json:"is_active"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
