package costcenters

import "time"

// CenterType classifies a cost center.
type CenterType string

const (
	TypeManufacturing CenterType = "manufacturing"
	TypeProduct       CenterType = "product"
	TypeIndirect      CenterType = "indirect"
)

// CostCenter is a department that carries budgets and receives
// allocated indirect costs. Centers form a tree via ParentID; cycle
// freedom is enforced on write.
type CostCenter struct {
	ID         int64      `json:"id"`
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	NameShort  string     `json:"name_short,omitempty"`
	CenterType CenterType `json:"center_type"`
	ParentID   *int64     `json:"parent_id,omitempty"`
	IsActive   bool       `json:"is_active"`
	SortOrder  int        `json:"sort_order"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
