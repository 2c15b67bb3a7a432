// Package store defines the data-access ports the services depend on.
// Implementations live in store/sqlite (persistent) and store/memory
// (tests and zero-config runs).
package store

import (
	"context"
	"errors"
	"time"

	"bilancio/internal/core"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrLimitExists is returned when a second active limit would be
	// created for a category that already has one.
	ErrLimitExists = errors.New("active limit already exists for category")
	// ErrCategoryInUse is returned when deleting a category that still
	// has operations referencing it.
	ErrCategoryInUse = errors.New("category has operations referencing it")
)

// OperationFilter narrows operation queries. Zero values mean "no
// constraint" for every field.
type OperationFilter struct {
	UserID     *int64
	CategoryID *int64
	Type       core.OperationType
	From       time.Time
	To         time.Time
}

// Matches reports whether op satisfies every set constraint. Range bounds
// are inclusive. Shared by the memory backend and by tests.
func (f OperationFilter) Matches(op core.Operation) bool {
	if f.UserID != nil && op.UserID != *f.UserID {
		return false
	}
	if f.CategoryID != nil && op.CategoryID != *f.CategoryID {
		return false
	}
	if f.Type != "" && op.Type != f.Type {
		return false
	}
	if !f.From.IsZero() && op.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && op.Date.After(f.To) {
		return false
	}
	return true
}

// UserStore persists household members.
type UserStore interface {
	CreateUser(ctx context.Context, u *core.User) error
	GetUser(ctx context.Context, id int64) (core.User, error)
	ListUsers(ctx context.Context) ([]core.User, error)
}

// CategoryStore persists categories. Limit lifecycle is handled by the
// category service, not here.
type CategoryStore interface {
	CreateCategory(ctx context.Context, c *core.Category) error
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) error
	// DeleteCategory removes a category with no operations left; it
	// returns ErrCategoryInUse otherwise. Limits for the category are
	// removed in the same transaction.
	DeleteCategory(ctx context.Context, id int64) error
}

// OperationStore persists operations. Writes that touch a limit's running
// total are composite: the insert/delete and the limit adjustment happen
// in one transaction so concurrent requests cannot interleave between
// them.
type OperationStore interface {
	// AddOperation inserts the operation and, for expenses, increments
	// the category's active limit CurrentAmount atomically.
	AddOperation(ctx context.Context, op *core.Operation) error
	GetOperation(ctx context.Context, id int64) (core.Operation, error)
	ListOperations(ctx context.Context, f OperationFilter) ([]core.Operation, error)
	CountOperations(ctx context.Context, f OperationFilter) (int64, error)
	// RemoveOperation deletes the operation and, for expenses,
	// decrements the active limit CurrentAmount clamped at zero, in one
	// transaction. The removed operation is returned.
	RemoveOperation(ctx context.Context, id int64) (core.Operation, error)
}

// LimitStore persists spending limits.
type LimitStore interface {
	// CreateLimitIfAbsent inserts l unless the category already has an
	// active limit, in which case it returns ErrLimitExists. The check
	// and insert are atomic.
	CreateLimitIfAbsent(ctx context.Context, l *core.Limit) error
	GetLimit(ctx context.Context, id int64) (core.Limit, error)
	GetActiveLimitByCategory(ctx context.Context, categoryID int64) (core.Limit, error)
	ListLimits(ctx context.Context, activeOnly bool) ([]core.Limit, error)
	UpdateLimit(ctx context.Context, l core.Limit) error
	// DeleteLimitsByCategory removes every limit referencing the
	// category, active or not, and reports how many were removed.
	DeleteLimitsByCategory(ctx context.Context, categoryID int64) (int64, error)
}

// GoalStore persists savings goals.
type GoalStore interface {
	CreateGoal(ctx context.Context, g *core.Goal) error
	GetGoal(ctx context.Context, id int64) (core.Goal, error)
	ListGoals(ctx context.Context) ([]core.Goal, error)
	UpdateGoal(ctx context.Context, g core.Goal) error
	DeleteGoal(ctx context.Context, id int64) error
	// AddGoalProgress applies currentAmount += amount as one atomic
	// update and returns the goal's new state.
	AddGoalProgress(ctx context.Context, id int64, amount core.Money) (core.Goal, error)
}

// Store is the full data-access surface consumed by the services.
type Store interface {
	UserStore
	CategoryStore
	OperationStore
	LimitStore
	GoalStore
	Close() error
}
