package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/genka-erp/genka-erp/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	if err := s.validate(p); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id int64, p Product) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(p); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, p)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Code) == "" {
		return fmt.Errorf("%w: code", shared.ErrRequiredField)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	switch p.ProductType {
	case TypeSemiFinished, TypeInHouseProductDept, TypeInHouseManufacturing,
		TypeOutsourcedInHouse, TypeOutsourced, TypeSpecial, TypeProduce:
	default:
		return fmt.Errorf("%w: product_type %q", shared.ErrValidation, p.ProductType)
	}
	if !p.StandardLotSize.IsPositive() {
		return fmt.Errorf("%w: standard_lot_size must be positive", shared.ErrValidation)
	}
	return nil
}
