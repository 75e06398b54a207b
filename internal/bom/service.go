package bom

import (
	"context"
	"fmt"
	"time"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id int64) (Header, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByOutput(ctx context.Context, bomType Type, outputID int64) ([]Header, error) {
	if err := validateType(bomType); err != nil {
		return nil, err
	}
	return s.repo.ListByOutput(ctx, bomType, outputID)
}

func (s *Service) Create(ctx context.Context, h Header) (Header, error) {
	if err := s.validate(h); err != nil {
		return Header{}, err
	}
	return s.repo.Create(ctx, h)
}

func (s *Service) Update(ctx context.Context, id int64, h Header) error {
	if err := s.validate(h); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, h)
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}

// Resolve answers which recipe applies to an output entity on a date.
func (s *Service) Resolve(ctx context.Context, bomType Type, outputID int64, asOf time.Time) (Header, error) {
	if err := validateType(bomType); err != nil {
		return Header{}, err
	}
	return NewResolver(s.repo).Resolve(ctx, bomType, outputID, asOf)
}

func (s *Service) validate(h Header) error {
	if err := h.Validate(); err != nil {
		return err
	}
	for _, line := range h.Lines {
		if h.BomType == TypeRawMaterialProcess && line.Input.Kind == InputProduct {
			return fmt.Errorf("%w: raw_material_process consumes materials or blend sources", ErrInvalidInput)
		}
	}
	if len(h.Lines) == 0 {
		return fmt.Errorf("%w: at least one line required", ErrInvalidInput)
	}
	return nil
}

func validateType(t Type) error {
	switch t {
	case TypeRawMaterialProcess, TypeProductProcess:
		return nil
	default:
		return fmt.Errorf("%w: unknown bom_type %q", ErrInvalidInput, t)
	}
}
