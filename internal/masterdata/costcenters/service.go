package costcenters

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

func (s *Service) List(ctx context.Context) ([]CostCenter, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (CostCenter, error) {
	if id <= 0 {
		return CostCenter{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, cc CostCenter) (CostCenter, error) {
	if err := s.validate(ctx, 0, cc); err != nil {
		return CostCenter{}, err
	}
	return s.repo.Create(ctx, cc)
}

func (s *Service) Update(ctx context.Context, id int64, cc CostCenter) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(ctx, id, cc); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, cc)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(ctx context.Context, id int64, cc CostCenter) error {
	if strings.TrimSpace(cc.Code) == "" {
		return fmt.Errorf("%w: code", shared.ErrRequiredField)
	}
	if strings.TrimSpace(cc.Name) == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	switch cc.CenterType {
	case TypeManufacturing, TypeProduct, TypeIndirect:
	default:
		return fmt.Errorf("%w: center_type %q", shared.ErrValidation, cc.CenterType)
	}
	if cc.ParentID != nil {
		if id != 0 && *cc.ParentID == id {
			return fmt.Errorf("%w: cost center cannot be its own parent", shared.ErrValidation)
		}
		// Walk up the ancestor chain; a revisit of id means a cycle.
		seen := map[int64]bool{id: true}
		cursor := *cc.ParentID
		for {
			if seen[cursor] {
				return fmt.Errorf("%w: parent chain forms a cycle", shared.ErrValidation)
			}
			seen[cursor] = true
			parent, err := s.repo.Get(ctx, cursor)
			if err != nil {
				return fmt.Errorf("%w: parent %d", shared.ErrValidation, cursor)
			}
			if parent.ParentID == nil {
				break
			}
			cursor = *parent.ParentID
		}
	}
	return nil
}
