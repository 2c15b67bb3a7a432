package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/store"
	"bilancio/internal/store/memory"
)

func TestCreateExpenseCategoryAutoLimit(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewCategoryService(st, testLogger())

	cat, err := svc.Create(ctx, core.Category{Name: "Groceries", Type: core.Expense})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	l, err := st.GetActiveLimitByCategory(ctx, cat.ID)
	if err != nil {
		t.Fatalf("expected auto-created limit, got %v", err)
	}
	if l.LimitAmount.Cents != core.DefaultLimitCents {
		t.Errorf("limit amount = %d, want %d", l.LimitAmount.Cents, core.DefaultLimitCents)
	}
	if !l.AutoCreated || !l.Active {
		t.Errorf("limit flags = auto %v active %v, want both true", l.AutoCreated, l.Active)
	}
	if l.CurrentAmount.Cents != 0 {
		t.Errorf("fresh limit current = %d, want 0", l.CurrentAmount.Cents)
	}
}

func TestCreateIncomeCategoryNoLimit(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewCategoryService(st, testLogger())

	cat, err := svc.Create(ctx, core.Category{Name: "Salary", Type: core.Income})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := st.GetActiveLimitByCategory(ctx, cat.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("income category limit lookup = %v, want ErrNotFound", err)
	}
}

func TestCreateCategoryInvalid(t *testing.T) {
	ctx := context.Background()
	svc := NewCategoryService(memory.New(), testLogger())

	if _, err := svc.Create(ctx, core.Category{Name: "  ", Type: core.Expense}); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("blank name error = %v, want ErrEmptyName", err)
	}
	if _, err := svc.Create(ctx, core.Category{Name: "x", Type: "transfer"}); !errors.Is(err, core.ErrInvalidType) {
		t.Errorf("bad type error = %v, want ErrInvalidType", err)
	}
}

func TestUpdateTypeChangeLimitLifecycle(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewCategoryService(st, testLogger())

	cat, err := svc.Create(ctx, core.Category{Name: "Refunds", Type: core.Income})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// income -> expense attaches the default limit
	cat.Type = core.Expense
	if _, err := svc.Update(ctx, cat); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if _, err := st.GetActiveLimitByCategory(ctx, cat.ID); err != nil {
		t.Fatalf("limit after income->expense: %v", err)
	}

	// expense -> income removes every limit for the category
	cat.Type = core.Income
	if _, err := svc.Update(ctx, cat); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if _, err := st.GetActiveLimitByCategory(ctx, cat.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("limit after expense->income = %v, want ErrNotFound", err)
	}
}

func TestUpdateSameTypeKeepsLimitState(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewCategoryService(st, testLogger())

	cat, err := svc.Create(ctx, core.Category{Name: "Fuel", Type: core.Expense})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	before, err := st.GetActiveLimitByCategory(ctx, cat.ID)
	if err != nil {
		t.Fatalf("limit lookup: %v", err)
	}

	cat.Name = "Transport"
	if _, err := svc.Update(ctx, cat); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	after, err := st.GetActiveLimitByCategory(ctx, cat.ID)
	if err != nil {
		t.Fatalf("limit lookup after rename: %v", err)
	}
	if after.ID != before.ID {
		t.Errorf("rename replaced the limit: %d -> %d", before.ID, after.ID)
	}

	limits, err := st.ListLimits(ctx, false)
	if err != nil {
		t.Fatalf("ListLimits: %v", err)
	}
	if len(limits) != 1 {
		t.Errorf("limit count = %d, want 1", len(limits))
	}
}

func TestAutoLimitDoesNotReplaceManualLimit(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewCategoryService(st, testLogger())

	cat, err := svc.Create(ctx, core.Category{Name: "Dining", Type: core.Income})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	manual := core.Limit{CategoryID: cat.ID, LimitAmount: core.Money{Cents: 500_00}, Active: true}
	if err := st.CreateLimitIfAbsent(ctx, &manual); err != nil {
		t.Fatalf("seed manual limit: %v", err)
	}

	cat.Type = core.Expense
	if _, err := svc.Update(ctx, cat); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	l, err := st.GetActiveLimitByCategory(ctx, cat.ID)
	if err != nil {
		t.Fatalf("limit lookup: %v", err)
	}
	if l.ID != manual.ID || l.LimitAmount.Cents != 500_00 || l.AutoCreated {
		t.Errorf("manual limit was replaced: %+v", l)
	}
}

func TestDeleteCategoryInUse(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewCategoryService(st, testLogger())

	cat, err := svc.Create(ctx, core.Category{Name: "Groceries", Type: core.Expense})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	op := core.Operation{
		UserID:     1,
		CategoryID: cat.ID,
		Type:       core.Expense,
		Amount:     core.Money{Cents: 100},
		Date:       time.Now(),
	}
	if err := st.AddOperation(ctx, &op); err != nil {
		t.Fatalf("seed operation: %v", err)
	}

	if err := svc.Delete(ctx, cat.ID); !errors.Is(err, store.ErrCategoryInUse) {
		t.Errorf("Delete() with operations = %v, want ErrCategoryInUse", err)
	}

	// Once the operation is gone the category and its limit go too.
	if _, err := st.RemoveOperation(ctx, op.ID); err != nil {
		t.Fatalf("remove operation: %v", err)
	}
	if err := svc.Delete(ctx, cat.ID); err != nil {
		t.Fatalf("Delete() after cleanup = %v", err)
	}
	limits, err := st.ListLimits(ctx, false)
	if err != nil {
		t.Fatalf("ListLimits: %v", err)
	}
	if len(limits) != 0 {
		t.Errorf("limits after category delete = %d, want 0", len(limits))
	}
}
