package services

import (
	"context"
	"fmt"
	"time"

	"bilancio/internal/analytics"
	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/store"
)

// AnalyticsService fetches the entity snapshot for a period, runs the
// aggregation, and memoizes the result. Cached entries expire by TTL; a
// write path can call Invalidate for immediate freshness.
type AnalyticsService struct {
	store  store.Store
	cache  *cache.LRUCache[core.Analytics]
	logger *log.Logger
	now    func() time.Time
}

func NewAnalyticsService(st store.Store, size int, ttl time.Duration, logger *log.Logger) *AnalyticsService {
	return &AnalyticsService{
		store:  st,
		cache:  cache.NewLRUCache[core.Analytics](size, ttl),
		logger: logger.WithComponent(log.ComponentAnalytics),
		now:    time.Now,
	}
}

// Cache exposes the result cache for cleanup registration.
func (s *AnalyticsService) Cache() *cache.LRUCache[core.Analytics] {
	return s.cache
}

// Invalidate drops every cached result. Called after writes that change
// what the dashboard would show.
func (s *AnalyticsService) Invalidate() {
	s.cache.Purge()
}

// Compute returns the analytics for the period, optionally scoped to one
// user's operations. Limits and goals are household-wide either way.
func (s *AnalyticsService) Compute(ctx context.Context, period core.Period, userID *int64) (core.Analytics, error) {
	key := cacheKey(period, userID)
	if a, ok := s.cache.Get(key); ok {
		return a, nil
	}

	from, to := period.Range(s.now())

	ops, err := s.store.ListOperations(ctx, store.OperationFilter{
		UserID: userID,
		From:   from,
		To:     to,
	})
	if err != nil {
		return core.Analytics{}, fmt.Errorf("list operations: %w", err)
	}

	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return core.Analytics{}, fmt.Errorf("list categories: %w", err)
	}
	byID := make(map[int64]core.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}

	limits, err := s.store.ListLimits(ctx, true)
	if err != nil {
		return core.Analytics{}, fmt.Errorf("list limits: %w", err)
	}

	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return core.Analytics{}, fmt.Errorf("list goals: %w", err)
	}

	a := analytics.Compute(analytics.Snapshot{
		Period:     period,
		From:       from,
		To:         to,
		Operations: ops,
		Categories: byID,
		Limits:     limits,
		Goals:      goals,
	})

	s.cache.Set(key, a)
	s.logger.DebugContext(ctx, "computed analytics",
		log.FieldPeriod, string(period), "operations", len(ops))
	return a, nil
}

func cacheKey(period core.Period, userID *int64) string {
	if userID == nil {
		return string(period)
	}
	return fmt.Sprintf("%s|%d", period, *userID)
}
