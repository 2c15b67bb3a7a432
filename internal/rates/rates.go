// Package rates caches exchange rates fetched from an external JSON
// endpoint. One slot, TTL-based staleness, and a singleflight guard so a
// cold or expired cache triggers exactly one upstream request no matter
// how many handlers ask at once.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"bilancio/internal/log"
)

// Rates holds one fetched rate table.
type Rates struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// Service fetches and caches exchange rates.
type Service struct {
	client *http.Client
	url    string
	base   string
	ttl    time.Duration
	logger *log.Logger
	now    func() time.Time

	mu     sync.RWMutex
	cached Rates

	group singleflight.Group
}

func NewService(url, base string, ttl time.Duration, logger *log.Logger) *Service {
	return &Service{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    url,
		base:   base,
		ttl:    ttl,
		logger: logger.WithComponent(log.ComponentRates),
		now:    time.Now,
	}
}

// GetRates returns the cached table if it is younger than the TTL,
// refreshing otherwise. When the refresh fails and a previous table
// exists, the stale table is served with a warning.
func (s *Service) GetRates(ctx context.Context) (Rates, error) {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()

	if !cached.FetchedAt.IsZero() && s.now().Sub(cached.FetchedAt) < s.ttl {
		return cached, nil
	}

	// Concurrent refreshes collapse into one upstream request.
	v, err, _ := s.group.Do("refresh", func() (any, error) {
		s.mu.RLock()
		current := s.cached
		s.mu.RUnlock()
		if !current.FetchedAt.IsZero() && s.now().Sub(current.FetchedAt) < s.ttl {
			return current, nil
		}

		fresh, err := s.fetch(ctx)
		if err != nil {
			return Rates{}, err
		}

		s.mu.Lock()
		s.cached = fresh
		s.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		if !cached.FetchedAt.IsZero() {
			s.logger.WarnContext(ctx, "serving stale exchange rates",
				log.FieldError, err, "age", s.now().Sub(cached.FetchedAt).String())
			return cached, nil
		}
		return Rates{}, fmt.Errorf("refresh rates: %w", err)
	}
	return v.(Rates), nil
}

func (s *Service) fetch(ctx context.Context) (Rates, error) {
	url := fmt.Sprintf("%s?base=%s", s.url, s.base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Rates{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Rates{}, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Rates{}, fmt.Errorf("rates endpoint returned %d", resp.StatusCode)
	}

	var body struct {
		Base  string             `json:"base"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Rates{}, fmt.Errorf("decode rates: %w", err)
	}
	if len(body.Rates) == 0 {
		return Rates{}, fmt.Errorf("rates endpoint returned empty table")
	}

	r := Rates{
		Base:      body.Base,
		Rates:     body.Rates,
		FetchedAt: s.now(),
	}
	if r.Base == "" {
		r.Base = s.base
	}

	s.logger.InfoContext(ctx, "refreshed exchange rates",
		"base", r.Base, "currencies", len(r.Rates))
	return r, nil
}
