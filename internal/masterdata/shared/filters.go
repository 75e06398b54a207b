package shared

// ListFilters represents standard master data list filters.
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string

	IsActive *bool

	// Entity specific filters
	MaterialType *string
	Category     *string
	ProductType  *string
	CrudeType    *string
	CenterType   *string
}
