package bom

import (
	"context"
	"time"
)

// Resolver picks the recipe in force for an output entity on a given
// date: the active header with the latest effective_date not after the
// date, highest version winning a tie.
type Resolver struct {
	repo Repository
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

func (r *Resolver) Resolve(ctx context.Context, bomType Type, outputID int64, asOf time.Time) (Header, error) {
	headers, err := r.repo.ListByOutput(ctx, bomType, outputID)
	if err != nil {
		return Header{}, err
	}
	h, ok := pick(headers, asOf)
	if !ok {
		return Header{}, ErrNotFound
	}
	return h, nil
}

// ResolveAll resolves every output entity that has at least one
// effective header, keyed by output id. Entities whose only headers
// take effect after asOf are absent from the map.
func (r *Resolver) ResolveAll(ctx context.Context, bomType Type, asOf time.Time) (map[int64]Header, error) {
	headers, err := r.repo.ListActive(ctx, bomType)
	if err != nil {
		return nil, err
	}
	byOutput := make(map[int64][]Header)
	for _, h := range headers {
		byOutput[h.OutputID] = append(byOutput[h.OutputID], h)
	}
	out := make(map[int64]Header, len(byOutput))
	for id, candidates := range byOutput {
		if h, ok := pick(candidates, asOf); ok {
			out[id] = h
		}
	}
	return out, nil
}

func pick(headers []Header, asOf time.Time) (Header, bool) {
	var (
		best  Header
		found bool
	)
	for _, h := range headers {
		if !h.IsActive || h.EffectiveDate.After(asOf) {
			continue
		}
		if !found {
			best, found = h, true
			continue
		}
		if h.EffectiveDate.After(best.EffectiveDate) ||
			(h.EffectiveDate.Equal(best.EffectiveDate) && h.Version > best.Version) {
			best = h
		}
	}
	return best, found
}
