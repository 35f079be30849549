package core

import "sort"

// Summary is the derived aggregate over a set of transactions. It is never
// stored; callers recompute it whenever the underlying records change.
type Summary struct {
	IncomeCents  int64
	ExpenseCents int64
	ProfitCents  int64
}

// CategoryAmount is an amount aggregated by category, used by reports.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// Summarize partitions records by kind and returns income, expense and
// profit totals in cents. It is pure: the input is treated as read-only,
// the result depends only on the multiset of records, and an empty input
// yields all zeros.
func Summarize(records []Transaction) Summary {
	var s Summary
	for _, t := range records {
		switch t.Kind {
		case KindIncome:
			s.IncomeCents += t.Amount.Cents
		case KindExpense:
			s.ExpenseCents += t.Amount.Cents
		}
	}
	s.ProfitCents = s.IncomeCents - s.ExpenseCents
	return s
}

// SummarizeOn is the day-filtered variant of Summarize: only records whose
// business date falls on the given day contribute.
func SummarizeOn(records []Transaction, day Date) Summary {
	var filtered []Transaction
	for _, t := range records {
		if t.OccurredOn.SameDay(day) {
			filtered = append(filtered, t)
		}
	}
	return Summarize(filtered)
}

// SummarizeByCategory aggregates amounts per category for one kind,
// ordered by descending amount. Used by the reports screen.
func SummarizeByCategory(records []Transaction, kind Kind) []CategoryAmount {
	sums := make(map[Category]int64)
	for _, t := range records {
		if t.Kind == kind {
			sums[t.Category] += t.Amount.Cents
		}
	}
	out := make([]CategoryAmount, 0, len(sums))
	for c, cents := range sums {
		out = append(out, CategoryAmount{Category: c, Amount: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}
