package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCategoryValidate(t *testing.T) {
	cases := []struct {
		name    string
		cat     Category
		wantErr error
	}{
		{"valid expense", Category{Name: "Groceries", Type: Expense, Emoji: "🛒"}, nil},
		{"valid income", Category{Name: "Salary", Type: Income}, nil},
		{"empty name", Category{Name: "  ", Type: Expense}, ErrEmptyName},
		{"bad type", Category{Name: "Stuff", Type: "transfer"}, ErrInvalidType},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.cat.Validate()
			if !errors.Is(err, c.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, c.wantErr)
			}
		})
	}

	long := Category{Name: strings.Repeat("x", 101), Type: Expense}
	if long.Validate() == nil {
		t.Error("Validate() should reject names over 100 characters")
	}
}

func TestOperationValidate(t *testing.T) {
	date := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		op      Operation
		wantErr error
	}{
		{"valid", Operation{UserID: 1, CategoryID: 1, Type: Expense, Amount: Money{Cents: 500}, Date: date}, nil},
		{"zero amount", Operation{Type: Expense, Amount: Money{}, Date: date}, ErrInvalidAmount},
		{"negative amount", Operation{Type: Income, Amount: Money{Cents: -10}, Date: date}, ErrInvalidAmount},
		{"bad type", Operation{Type: "refund", Amount: Money{Cents: 100}, Date: date}, ErrInvalidType},
		{"zero date", Operation{Type: Income, Amount: Money{Cents: 100}}, ErrZeroDate},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.op.Validate()
			if !errors.Is(err, c.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, c.wantErr)
			}
		})
	}
}

func TestGoalCompleted(t *testing.T) {
	cases := []struct {
		name    string
		goal    Goal
		want    bool
	}{
		{"under target", Goal{TargetAmount: Money{Cents: 1000}, CurrentAmount: Money{Cents: 800}}, false},
		{"exact target", Goal{TargetAmount: Money{Cents: 1000}, CurrentAmount: Money{Cents: 1000}}, true},
		{"over target", Goal{TargetAmount: Money{Cents: 1000}, CurrentAmount: Money{Cents: 1100}}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.goal.Completed(); got != c.want {
				t.Errorf("Completed() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestPeriodRange(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	from, to := PeriodCurrentMonth.Range(now)
	if !from.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("current_month from = %v", from)
	}
	if !to.Equal(now) {
		t.Errorf("current_month to = %v", to)
	}

	from, _ = PeriodCurrentYear.Range(now)
	if !from.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("current_year from = %v", from)
	}

	from, _ = PeriodLast7Days.Range(now)
	if !from.Equal(now.AddDate(0, 0, -7)) {
		t.Errorf("last_7_days from = %v", from)
	}

	from, _ = PeriodAll.Range(now)
	if !from.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("all from = %v", from)
	}

	// Unknown keys resolve like "all" rather than failing.
	from, _ = Period("bogus").Range(now)
	if !from.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unknown period from = %v", from)
	}
}

func TestDaysIn(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{"seven full days", base, base.AddDate(0, 0, 7), 7},
		{"partial day rounds up", base, base.Add(36 * time.Hour), 2},
		{"same instant", base, base, 1},
		{"inverted range", base.AddDate(0, 0, 1), base, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := DaysIn(c.from, c.to); got != c.want {
				t.Errorf("DaysIn = %d, want %d", got, c.want)
			}
		})
	}
}
