// Package analytics computes the dashboard aggregate from an entity
// snapshot. Compute is a pure function: it holds no state, touches no
// store, and recomputes everything on each call, which is fine at
// household scale.
package analytics

import (
	"sort"
	"time"

	"bilancio/internal/core"
)

// Snapshot is everything one aggregation needs, fetched up front. The
// operations are already filtered to the requested range and user;
// limits are the active ones; goals are all of them.
type Snapshot struct {
	Period     core.Period
	From, To   time.Time
	Operations []core.Operation
	Categories map[int64]core.Category
	Limits     []core.Limit
	Goals      []core.Goal
}

// Compute produces the full analytics result for the snapshot.
func Compute(snap Snapshot) core.Analytics {
	a := core.Analytics{
		Period: snap.Period,
		From:   snap.From,
		To:     snap.To,
	}

	var totalIncome, totalExpense int64
	for _, op := range snap.Operations {
		switch op.Type {
		case core.Income:
			totalIncome += op.Amount.Cents
		case core.Expense:
			totalExpense += op.Amount.Cents
		}
	}

	days := core.DaysIn(snap.From, snap.To)
	a.Summary = core.Summary{
		TotalIncome:     core.Money{Cents: totalIncome},
		TotalExpense:    core.Money{Cents: totalExpense},
		Balance:         core.Money{Cents: totalIncome - totalExpense},
		Operations:      len(snap.Operations),
		AvgDailyExpense: core.Money{Cents: totalExpense / int64(days)},
	}

	a.CategoryDistribution = distribution(snap, totalExpense)
	a.TopCategories = topCategories(a.CategoryDistribution, 5)
	a.Timeline = timeline(snap.Operations)
	a.Limits = limitProgress(snap)
	a.Goals = goalStats(snap.Goals)
	a.Insights = insights(a.CategoryDistribution, totalIncome, totalExpense, len(snap.Operations))

	return a
}

// distribution groups expense operations by category. Percentages are of
// the expense total and defined as 0 when there were no expenses at all.
func distribution(snap Snapshot, totalExpense int64) []core.CategoryTotal {
	byCategory := make(map[int64]*core.CategoryTotal)
	for _, op := range snap.Operations {
		if op.Type != core.Expense {
			continue
		}
		entry, ok := byCategory[op.CategoryID]
		if !ok {
			entry = &core.CategoryTotal{CategoryID: op.CategoryID}
			if cat, ok := snap.Categories[op.CategoryID]; ok {
				entry.Name = cat.Name
				entry.Emoji = cat.Emoji
			}
			byCategory[op.CategoryID] = entry
		}
		entry.Amount = entry.Amount.Add(op.Amount)
		entry.Count++
	}

	out := make([]core.CategoryTotal, 0, len(byCategory))
	for _, entry := range byCategory {
		if totalExpense > 0 {
			entry.Percentage = float64(entry.Amount.Cents) / float64(totalExpense) * 100
		}
		out = append(out, *entry)
	}

	// Map iteration order is meaningless; present largest spend first.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents == out[j].Amount.Cents {
			return out[i].CategoryID < out[j].CategoryID
		}
		return out[i].Amount.Cents > out[j].Amount.Cents
	})
	return out
}

func topCategories(dist []core.CategoryTotal, n int) []core.CategoryTotal {
	if len(dist) <= n {
		return append([]core.CategoryTotal(nil), dist...)
	}
	return append([]core.CategoryTotal(nil), dist[:n]...)
}

// timeline buckets every operation by UTC calendar day, ascending.
func timeline(ops []core.Operation) []core.TimelinePoint {
	byDay := make(map[string]*core.TimelinePoint)
	for _, op := range ops {
		day := op.Date.UTC().Format("2006-01-02")
		point, ok := byDay[day]
		if !ok {
			point = &core.TimelinePoint{Date: day}
			byDay[day] = point
		}
		switch op.Type {
		case core.Income:
			point.Income = point.Income.Add(op.Amount)
		case core.Expense:
			point.Expense = point.Expense.Add(op.Amount)
		}
	}

	out := make([]core.TimelinePoint, 0, len(byDay))
	for _, point := range byDay {
		out = append(out, *point)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// limitProgress compares every active limit against the in-range expense
// spend of its category. Progress is clamped to [0, 100]; the over-limit
// flag uses the unclamped ratio so exactly-at-limit is not "over".
func limitProgress(snap Snapshot) []core.LimitProgress {
	spentByCategory := make(map[int64]int64)
	for _, op := range snap.Operations {
		if op.Type == core.Expense {
			spentByCategory[op.CategoryID] += op.Amount.Cents
		}
	}

	out := make([]core.LimitProgress, 0, len(snap.Limits))
	for _, l := range snap.Limits {
		spent := spentByCategory[l.CategoryID]
		p := core.LimitProgress{
			LimitID:     l.ID,
			CategoryID:  l.CategoryID,
			LimitAmount: l.LimitAmount,
			Spent:       core.Money{Cents: spent},
		}
		if cat, ok := snap.Categories[l.CategoryID]; ok {
			p.CategoryName = cat.Name
			p.Emoji = cat.Emoji
		}
		if l.LimitAmount.Cents > 0 {
			ratio := float64(spent) / float64(l.LimitAmount.Cents) * 100
			p.OverLimit = ratio > 100
			if ratio > 100 {
				ratio = 100
			}
			p.Progress = ratio
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LimitID < out[j].LimitID })
	return out
}

// goalStats counts goal states. The completion rate is over active goals
// only and 0 when there are none, so it can never be NaN.
func goalStats(goals []core.Goal) core.GoalStats {
	stats := core.GoalStats{Total: len(goals)}
	for _, g := range goals {
		if g.Archived {
			stats.Archived++
			continue
		}
		stats.Active++
		if g.Completed() {
			stats.Completed++
		}
	}
	if stats.Active > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(stats.Active) * 100
	}
	return stats
}

func insights(dist []core.CategoryTotal, totalIncome, totalExpense int64, opCount int) core.Insights {
	var ins core.Insights
	if len(dist) > 0 {
		top := dist[0]
		ins.MostExpensiveCategory = &top
	}
	if opCount > 0 {
		ins.AvgTransactionAmount = core.Money{Cents: (totalIncome + totalExpense) / int64(opCount)}
	}
	if totalExpense > 0 {
		ins.IncomeVsExpenseRatio = float64(totalIncome) / float64(totalExpense)
	}
	return ins
}
