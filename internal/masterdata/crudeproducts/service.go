package crudeproducts

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]CrudeProduct, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (CrudeProduct, error) {
	if id <= 0 {
		return CrudeProduct{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, cp CrudeProduct) (CrudeProduct, error) {
	if err := s.validate(cp); err != nil {
		return CrudeProduct{}, err
	}
	return s.repo.Create(ctx, cp)
}

func (s *Service) Update(ctx context.Context, id int64, cp CrudeProduct) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(cp); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, cp)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(cp CrudeProduct) error {
	if strings.TrimSpace(cp.Code) == "" {
		return fmt.Errorf("%w: code", shared.ErrRequiredField)
	}
	if strings.TrimSpace(cp.Name) == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	switch cp.CrudeType {
	case TypeR, TypeHI, TypeG, TypeSP, TypeGN, TypeOther:
	default:
		return fmt.Errorf("%w: crude_type %q", shared.ErrValidation, cp.CrudeType)
	}
	if cp.IsBlend && len(cp.BlendSourceIDs) == 0 {
		return fmt.Errorf("%w: blend requires blend_source_ids", shared.ErrValidation)
	}
	if !cp.IsBlend && len(cp.BlendSourceIDs) > 0 {
		return fmt.Errorf("%w: blend_source_ids set on non-blend", shared.ErrValidation)
	}
	return nil
}
