package services

import (
	"context"
	"errors"
	"fmt"

	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/store"
)

// CategoryService manages categories and drives the automatic limit
// lifecycle: every expense category gets a default spending limit, and the
// limit disappears when the category stops being an expense one.
type CategoryService struct {
	store  store.Store
	logger *log.Logger
}

func NewCategoryService(st store.Store, logger *log.Logger) *CategoryService {
	return &CategoryService{
		store:  st,
		logger: logger.WithComponent(log.ComponentCategory),
	}
}

func (s *CategoryService) Create(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.store.CreateCategory(ctx, &c); err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	if c.Type == core.Expense {
		s.ensureAutoLimit(ctx, c.ID)
	}
	return c, nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (core.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

// Update changes a category and reconciles its limit with the new type:
// switching to expense creates the default limit, switching to income
// removes every limit for the category. A same-type update leaves limits
// untouched.
func (s *CategoryService) Update(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	prev, err := s.store.GetCategory(ctx, c.ID)
	if err != nil {
		return core.Category{}, err
	}
	c.CreatedAt = prev.CreatedAt

	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}

	switch {
	case prev.Type == core.Income && c.Type == core.Expense:
		s.ensureAutoLimit(ctx, c.ID)
	case prev.Type == core.Expense && c.Type == core.Income:
		n, err := s.store.DeleteLimitsByCategory(ctx, c.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to remove limits after type change",
				log.FieldCategoryID, c.ID, log.FieldError, err)
		} else if n > 0 {
			s.logger.InfoContext(ctx, "removed limits after type change",
				log.FieldCategoryID, c.ID, "removed", n)
		}
	}

	return c, nil
}

// Delete removes a category with no operations left. Categories still
// referenced by operations return store.ErrCategoryInUse.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteCategory(ctx, id)
}

// ensureAutoLimit creates the default limit for an expense category.
// Failures are logged and swallowed: the category mutation has already
// succeeded and a missing limit can be created manually later.
func (s *CategoryService) ensureAutoLimit(ctx context.Context, categoryID int64) {
	l := core.Limit{
		CategoryID:  categoryID,
		LimitAmount: core.Money{Cents: core.DefaultLimitCents},
		Active:      true,
		AutoCreated: true,
	}
	err := s.store.CreateLimitIfAbsent(ctx, &l)
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "auto-created limit",
			log.FieldCategoryID, categoryID, log.FieldLimitID, l.ID)
	case errors.Is(err, store.ErrLimitExists):
		// Already has an active limit; nothing to do.
	default:
		s.logger.ErrorContext(ctx, "failed to auto-create limit",
			log.FieldCategoryID, categoryID, log.FieldError, err)
	}
}
