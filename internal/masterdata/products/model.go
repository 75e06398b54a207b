package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductType classifies the manufacturing route of a finished product.
type ProductType string

const (
	TypeSemiFinished         ProductType = "semi_finished"
	TypeInHouseProductDept   ProductType = "in_house_product_dept"
	TypeInHouseManufacturing ProductType = "in_house_manufacturing"
	TypeOutsourcedInHouse    ProductType = "outsourced_in_house"
	TypeOutsourced           ProductType = "outsourced"
	TypeSpecial              ProductType = "special"
	TypeProduce              ProductType = "produce"
)

// RequiresOutsourcing reports whether the product type carries an
// outsourcing cost element.
func (t ProductType) RequiresOutsourcing() bool {
	return t == TypeOutsourced || t == TypeOutsourcedInHouse
}

// Product is a finished product costed in Stage 2.
type Product struct {
	ID              int64            `json:"id"`
	Code            string           `json:"code"`
	Name            string           `json:"name"`
	ProductType     ProductType      `json:"product_type"`
	ProductGroup    string           `json:"product_group,omitempty"`
	ContentWeightG  *decimal.Decimal `json:"content_weight_g,omitempty"`
	StandardLotSize decimal.Decimal  `json:"standard_lot_size"`
	Unit            string           `json:"unit"`
	IsActive        bool             `json:"is_active"`
	Notes           string           `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
