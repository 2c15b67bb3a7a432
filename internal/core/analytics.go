package core

import "time"

// Summary carries the headline totals for one analytics request.
type Summary struct {
	TotalIncome     Money `json:"total_income_cents"`
	TotalExpense    Money `json:"total_expense_cents"`
	Balance         Money `json:"balance_cents"`
	Operations      int   `json:"operations"`
	AvgDailyExpense Money `json:"avg_daily_expense_cents"`
}

// CategoryTotal is one row of the expense distribution.
type CategoryTotal struct {
	CategoryID int64   `json:"category_id"`
	Name       string  `json:"name"`
	Emoji      string  `json:"emoji"`
	Amount     Money   `json:"amount_cents"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TimelinePoint aggregates one UTC calendar day.
type TimelinePoint struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Income  Money  `json:"income_cents"`
	Expense Money  `json:"expense_cents"`
}

// LimitProgress reports one active limit against the spend in the
// requested range. Progress is clamped to [0, 100]; OverLimit is computed
// from the unclamped ratio.
type LimitProgress struct {
	LimitID      int64   `json:"limit_id"`
	CategoryID   int64   `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Emoji        string  `json:"emoji"`
	LimitAmount  Money   `json:"limit_cents"`
	Spent        Money   `json:"spent_cents"`
	Progress     float64 `json:"progress"`
	OverLimit    bool    `json:"over_limit"`
}

// GoalStats summarises the goal population. CompletionRate is over active
// (non-archived) goals only and is 0 when there are none.
type GoalStats struct {
	Total          int     `json:"total"`
	Active         int     `json:"active"`
	Completed      int     `json:"completed"`
	Archived       int     `json:"archived"`
	CompletionRate float64 `json:"completion_rate"`
}

// Insights holds the derived metrics shown on the dashboard.
type Insights struct {
	MostExpensiveCategory *CategoryTotal `json:"most_expensive_category"`
	AvgTransactionAmount  Money          `json:"avg_transaction_cents"`
	IncomeVsExpenseRatio  float64        `json:"income_vs_expense_ratio"`
}

// Analytics is the single immutable result of one aggregation request.
// It is recomputed in full on every call; there are no partial results.
type Analytics struct {
	Period               Period          `json:"period"`
	From                 time.Time       `json:"from"`
	To                   time.Time       `json:"to"`
	Summary              Summary         `json:"summary"`
	CategoryDistribution []CategoryTotal `json:"category_distribution"`
	TopCategories        []CategoryTotal `json:"top_categories"`
	Timeline             []TimelinePoint `json:"timeline"`
	Limits               []LimitProgress `json:"limits"`
	Goals                GoalStats       `json:"goals"`
	Insights             Insights        `json:"insights"`
}
