package intake

import (
	"testing"

	"vibeledger/internal/core"
)

func TestRulesParser(t *testing.T) {
	p := NewRulesParser()

	tests := []struct {
		name         string
		text         string
		wantKind     core.Kind
		wantCategory core.Category
		wantAmount   string
	}{
		{
			name:         "expense with food hint",
			text:         "bought lunch for the crew, 12.50 dollars",
			wantKind:     core.KindExpense,
			wantCategory: core.CategoryFood,
			wantAmount:   "12.50",
		},
		{
			name:         "income from a sale",
			text:         "sold two cakes for $20",
			wantKind:     core.KindIncome,
			wantCategory: core.CategorySales,
			wantAmount:   "20",
		},
		{
			name:         "transport expense",
			text:         "paid 35 for gas on the way to the market",
			wantKind:     core.KindExpense,
			wantCategory: core.CategoryTransport,
			wantAmount:   "35",
		},
		{
			name:         "comma decimal separator",
			text:         "rent payment 450,00",
			wantKind:     core.KindExpense,
			wantCategory: core.CategoryRent,
			wantAmount:   "450.00",
		},
		{
			name:         "income falls back to other_income",
			text:         "received 100 from a customer",
			wantKind:     core.KindIncome,
			wantCategory: core.CategoryOtherIncome,
			wantAmount:   "100",
		},
		{
			name:         "expense falls back to other_expense",
			text:         "miscellaneous purchase 5",
			wantKind:     core.KindExpense,
			wantCategory: core.CategoryOtherExpense,
			wantAmount:   "5",
		},
		{
			name:         "no amount leaves field empty",
			text:         "coffee with a supplier",
			wantKind:     core.KindExpense,
			wantCategory: core.CategoryFood,
			wantAmount:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.text)
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", got.Kind, tt.wantKind)
			}
			if got.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", got.Category, tt.wantCategory)
			}
			if got.AmountText != tt.wantAmount {
				t.Errorf("AmountText = %q, want %q", got.AmountText, tt.wantAmount)
			}
		})
	}
}

func TestRulesParserCategoryMatchesKind(t *testing.T) {
	p := NewRulesParser()

	// "sold" forces income; "gas" is an expense hint and must not leak
	// into the income suggestion.
	got := p.Parse("sold some gas canisters for 40")
	if got.Kind != core.KindIncome {
		t.Fatalf("Kind = %q, want income", got.Kind)
	}
	if !got.Category.BelongsTo(got.Kind) {
		t.Errorf("category %q does not belong to kind %q", got.Category, got.Kind)
	}
}

func TestRulesParserTruncatesDescription(t *testing.T) {
	p := NewRulesParser()

	long := ""
	for i := 0; i < 50; i++ {
		long += "very long "
	}
	got := p.Parse(long)
	if len(got.Description) > 200 {
		t.Errorf("description length = %d, want <= 200", len(got.Description))
	}
}
