package services

import (
	"context"
	"fmt"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

// LimitService reads and tunes spending limits. Creation and removal are
// owned by the category lifecycle; here a limit's amount or active flag
// can be adjusted.
type LimitService struct {
	store store.Store
}

func NewLimitService(st store.Store) *LimitService {
	return &LimitService{store: st}
}

func (s *LimitService) Get(ctx context.Context, id int64) (core.Limit, error) {
	return s.store.GetLimit(ctx, id)
}

func (s *LimitService) List(ctx context.Context, activeOnly bool) ([]core.Limit, error) {
	return s.store.ListLimits(ctx, activeOnly)
}

// Update changes the limit's ceiling and active flag. The running total,
// category binding and provenance are immutable.
func (s *LimitService) Update(ctx context.Context, id int64, amount core.Money, active bool) (core.Limit, error) {
	l, err := s.store.GetLimit(ctx, id)
	if err != nil {
		return core.Limit{}, err
	}

	l.LimitAmount = amount
	l.Active = active
	if err := l.Validate(); err != nil {
		return core.Limit{}, err
	}
	if err := s.store.UpdateLimit(ctx, l); err != nil {
		return core.Limit{}, fmt.Errorf("update limit: %w", err)
	}
	return l, nil
}
