package periods

import (
	"context"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Period, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Period, error) {
	return s.repo.Get(ctx, id)
}

// Create validates the window and inserts an open period.
func (s *Service) Create(ctx context.Context, p Period) (Period, error) {
	if p.Month < 1 || p.Month > 12 {
		return Period{}, fmt.Errorf("periods: month %d out of range", p.Month)
	}
	if !p.EndDate.After(p.StartDate) {
		return Period{}, fmt.Errorf("periods: end date must follow start date")
	}
	if p.Status == "" {
		p.Status = StatusOpen
	}
	return s.repo.Create(ctx, p)
}

// Transition moves a period through its lifecycle after policy checks.
func (s *Service) Transition(ctx context.Context, id int64, target Status) (Period, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Period{}, err
	}
	if err := ValidateTransition(p.Status, target); err != nil {
		return Period{}, fmt.Errorf("%w: %s -> %s", err, p.Status, target)
	}
	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		return Period{}, err
	}
	p.Status = target
	return p, nil
}
