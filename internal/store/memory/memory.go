// Package memory is an in-memory Store implementation. It backs tests and
// zero-configuration runs; semantics mirror the sqlite backend, including
// the composite limit-adjusting writes.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

type Store struct {
	mu sync.Mutex

	users      map[int64]core.User
	categories map[int64]core.Category
	operations map[int64]core.Operation
	limits     map[int64]core.Limit
	goals      map[int64]core.Goal

	nextID int64
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:      make(map[int64]core.User),
		categories: make(map[int64]core.Category),
		operations: make(map[int64]core.Operation),
		limits:     make(map[int64]core.Limit),
		goals:      make(map[int64]core.Goal),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) next() int64 {
	s.nextID++
	return s.nextID
}

// --- users ---

func (s *Store) CreateUser(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.ID = s.next()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUser(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return core.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) ListUsers(_ context.Context) ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- categories ---

func (s *Store) CreateCategory(_ context.Context, c *core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.next()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[c.ID]; !ok {
		return store.ErrNotFound
	}
	s.categories[c.ID] = c
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return store.ErrNotFound
	}
	for _, op := range s.operations {
		if op.CategoryID == id {
			return store.ErrCategoryInUse
		}
	}
	delete(s.categories, id)
	for lid, l := range s.limits {
		if l.CategoryID == id {
			delete(s.limits, lid)
		}
	}
	return nil
}

// --- operations ---

func (s *Store) AddOperation(_ context.Context, op *core.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	op.ID = s.next()
	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now().UTC()
	}
	s.operations[op.ID] = *op

	if op.Type == core.Expense {
		if lid, l, ok := s.activeLimitLocked(op.CategoryID); ok {
			l.CurrentAmount = l.CurrentAmount.Add(op.Amount)
			s.limits[lid] = l
		}
	}
	return nil
}

func (s *Store) GetOperation(_ context.Context, id int64) (core.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op, ok := s.operations[id]
	if !ok {
		return core.Operation{}, store.ErrNotFound
	}
	return op, nil
}

func (s *Store) ListOperations(_ context.Context, f store.OperationFilter) ([]core.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Operation
	for _, op := range s.operations {
		if f.Matches(op) {
			out = append(out, op)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (s *Store) CountOperations(_ context.Context, f store.OperationFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, op := range s.operations {
		if f.Matches(op) {
			n++
		}
	}
	return n, nil
}

func (s *Store) RemoveOperation(_ context.Context, id int64) (core.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op, ok := s.operations[id]
	if !ok {
		return core.Operation{}, store.ErrNotFound
	}
	delete(s.operations, id)

	if op.Type == core.Expense {
		if lid, l, ok := s.activeLimitLocked(op.CategoryID); ok {
			l.CurrentAmount = l.CurrentAmount.SubFloor(op.Amount)
			s.limits[lid] = l
		}
	}
	return op, nil
}

// --- limits ---

func (s *Store) activeLimitLocked(categoryID int64) (int64, core.Limit, bool) {
	for id, l := range s.limits {
		if l.CategoryID == categoryID && l.Active {
			return id, l, true
		}
	}
	return 0, core.Limit{}, false
}

func (s *Store) CreateLimitIfAbsent(_ context.Context, l *core.Limit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, _, ok := s.activeLimitLocked(l.CategoryID); ok {
		return store.ErrLimitExists
	}
	l.ID = s.next()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	s.limits[l.ID] = *l
	return nil
}

func (s *Store) GetLimit(_ context.Context, id int64) (core.Limit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limits[id]
	if !ok {
		return core.Limit{}, store.ErrNotFound
	}
	return l, nil
}

func (s *Store) GetActiveLimitByCategory(_ context.Context, categoryID int64) (core.Limit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, l, ok := s.activeLimitLocked(categoryID); ok {
		return l, nil
	}
	return core.Limit{}, store.ErrNotFound
}

func (s *Store) ListLimits(_ context.Context, activeOnly bool) ([]core.Limit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Limit, 0, len(s.limits))
	for _, l := range s.limits {
		if activeOnly && !l.Active {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateLimit(_ context.Context, l core.Limit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.limits[l.ID]; !ok {
		return store.ErrNotFound
	}
	s.limits[l.ID] = l
	return nil
}

func (s *Store) DeleteLimitsByCategory(_ context.Context, categoryID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, l := range s.limits {
		if l.CategoryID == categoryID {
			delete(s.limits, id)
			n++
		}
	}
	return n, nil
}

// --- goals ---

func (s *Store) CreateGoal(_ context.Context, g *core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g.ID = s.next()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	s.goals[g.ID] = *g
	return nil
}

func (s *Store) GetGoal(_ context.Context, id int64) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[id]
	if !ok {
		return core.Goal{}, store.ErrNotFound
	}
	return g, nil
}

func (s *Store) ListGoals(_ context.Context) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Goal, 0, len(s.goals))
	for _, g := range s.goals {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateGoal(_ context.Context, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goals[g.ID]; !ok {
		return store.ErrNotFound
	}
	s.goals[g.ID] = g
	return nil
}

func (s *Store) DeleteGoal(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goals[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.goals, id)
	return nil
}

func (s *Store) AddGoalProgress(_ context.Context, id int64, amount core.Money) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[id]
	if !ok {
		return core.Goal{}, store.ErrNotFound
	}
	// No upper clamp: goals may be funded past their target.
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	s.goals[id] = g
	return g, nil
}
