package core

import (
	"math/rand"
	"testing"
)

func tx(kind Kind, cat Category, cents int64, day Date) Transaction {
	return Transaction{
		Kind:        kind,
		Category:    cat,
		Amount:      Money{Cents: cents},
		Description: "t",
		OccurredOn:  day,
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil)
	if got != (Summary{}) {
		t.Fatalf("expected zero summary, got %+v", got)
	}
	got = Summarize([]Transaction{})
	if got != (Summary{}) {
		t.Fatalf("expected zero summary for empty slice, got %+v", got)
	}
}

func TestSummarizeScenario(t *testing.T) {
	day := NewDate(2025, 6, 1)
	records := []Transaction{
		tx(KindIncome, CategorySales, 2000, day),
		tx(KindExpense, CategoryTransport, 500, day),
	}
	got := Summarize(records)
	want := Summary{IncomeCents: 2000, ExpenseCents: 500, ProfitCents: 1500}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestSummarizeProfitIdentity(t *testing.T) {
	day := NewDate(2025, 3, 10)
	records := []Transaction{
		tx(KindIncome, CategorySales, 120, day),
		tx(KindIncome, CategoryServices, 9900, day),
		tx(KindExpense, CategoryRent, 50000, day),
		tx(KindExpense, CategoryFood, 730, day),
	}
	s := Summarize(records)
	if s.ProfitCents != s.IncomeCents-s.ExpenseCents {
		t.Fatalf("profit identity violated: %+v", s)
	}
	if s.ProfitCents >= 0 {
		t.Fatalf("expected negative profit, got %d", s.ProfitCents)
	}
}

func TestSummarizeOrderIndependent(t *testing.T) {
	day := NewDate(2025, 1, 2)
	records := []Transaction{
		tx(KindIncome, CategorySales, 100, day),
		tx(KindExpense, CategoryFood, 40, day),
		tx(KindIncome, CategoryOtherIncome, 260, day),
		tx(KindExpense, CategorySupplies, 15, day),
		tx(KindExpense, CategoryUtilities, 7, day),
	}
	want := Summarize(records)

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := make([]Transaction, len(records))
		copy(shuffled, records)
		r.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		if got := Summarize(shuffled); got != want {
			t.Fatalf("permutation %d: expected %+v, got %+v", i, want, got)
		}
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	day := NewDate(2025, 5, 5)
	records := []Transaction{
		tx(KindIncome, CategoryServices, 333, day),
		tx(KindExpense, CategoryTransport, 111, day),
	}
	first := Summarize(records)
	second := Summarize(records)
	if first != second {
		t.Fatalf("expected identical results, got %+v then %+v", first, second)
	}
}

func TestSummarizeDoesNotMutateInput(t *testing.T) {
	day := NewDate(2025, 5, 5)
	records := []Transaction{tx(KindIncome, CategorySales, 100, day)}
	before := records[0]
	_ = Summarize(records)
	if records[0] != before {
		t.Fatal("input mutated")
	}
}

func TestSummarizeOn(t *testing.T) {
	today := NewDate(2025, 6, 2)
	yesterday := NewDate(2025, 6, 1)
	records := []Transaction{
		tx(KindIncome, CategorySales, 1000, today),
		tx(KindIncome, CategorySales, 5000, yesterday),
		tx(KindExpense, CategoryFood, 300, today),
	}
	got := SummarizeOn(records, today)
	want := Summary{IncomeCents: 1000, ExpenseCents: 300, ProfitCents: 700}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	// No records on the asked day.
	if got := SummarizeOn(records, NewDate(2024, 1, 1)); got != (Summary{}) {
		t.Fatalf("expected zero summary, got %+v", got)
	}
}

func TestSummarizeByCategory(t *testing.T) {
	day := NewDate(2025, 6, 1)
	records := []Transaction{
		tx(KindExpense, CategoryTransport, 500, day),
		tx(KindExpense, CategoryTransport, 300, day),
		tx(KindExpense, CategoryFood, 900, day),
		tx(KindIncome, CategorySales, 10000, day),
	}
	got := SummarizeByCategory(records, KindExpense)
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(got))
	}
	if got[0].Category != CategoryFood || got[0].Amount.Cents != 900 {
		t.Fatalf("expected food first with 900, got %+v", got[0])
	}
	if got[1].Category != CategoryTransport || got[1].Amount.Cents != 800 {
		t.Fatalf("expected transport with 800, got %+v", got[1])
	}
}
