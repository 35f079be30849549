package intake

import (
	"regexp"
	"strings"

	"vibeledger/internal/core"
)

// RulesParser maps free text (typically a voice transcript) onto a
// transaction suggestion with plain pattern matching. It never fails:
// anything it cannot determine is left for the user to fill in.
type RulesParser struct{}

func NewRulesParser() *RulesParser { return &RulesParser{} }

var (
	amountRe = regexp.MustCompile(`(?:[$€£]\s*)?(\d+(?:[.,]\d{1,2})?)\s*(?:dollars?|euros?|bucks?)?`)

	incomeWords = []string{
		"sold", "sale", "earned", "received", "got paid", "payment from",
		"invoice", "client paid", "income", "revenue",
	}

	// Keyword hints per category, checked in order. The catch-all
	// categories are deliberately absent: they are the fallback.
	categoryHints = []struct {
		category core.Category
		words    []string
	}{
		{core.CategorySales, []string{"sold", "sale"}},
		{core.CategoryServices, []string{"service", "consult", "repair job", "gig", "freelance"}},
		{core.CategoryTransport, []string{"gas", "fuel", "taxi", "uber", "bus", "train", "parking", "toll", "delivery"}},
		{core.CategorySupplies, []string{"supplies", "materials", "ingredients", "stock", "inventory", "parts"}},
		{core.CategoryUtilities, []string{"electric", "water bill", "internet", "phone bill", "utility", "utilities"}},
		{core.CategoryRent, []string{"rent", "lease"}},
		{core.CategoryFood, []string{"lunch", "dinner", "breakfast", "coffee", "food", "meal", "restaurant", "groceries"}},
	}
)

// Parse builds a suggestion from text. Amount, kind and category are each
// best-effort; the description is the cleaned-up text itself.
func (p *RulesParser) Parse(text string) core.Suggested {
	normalized := strings.Join(strings.Fields(strings.TrimSpace(text)), " ")
	lower := strings.ToLower(normalized)

	kind := core.KindExpense
	for _, w := range incomeWords {
		if strings.Contains(lower, w) {
			kind = core.KindIncome
			break
		}
	}

	category := guessCategory(lower, kind)

	amount := ""
	if m := amountRe.FindStringSubmatch(normalized); len(m) >= 2 {
		amount = strings.ReplaceAll(m[1], ",", ".")
	}

	description := normalized
	if len(description) > 200 {
		description = description[:200]
	}

	return core.Suggested{
		Kind:        kind,
		Category:    category,
		AmountText:  amount,
		Description: description,
	}
}

func guessCategory(lower string, kind core.Kind) core.Category {
	for _, hint := range categoryHints {
		if !hint.category.BelongsTo(kind) {
			continue
		}
		for _, w := range hint.words {
			if strings.Contains(lower, w) {
				return hint.category
			}
		}
	}
	if kind == core.KindIncome {
		return core.CategoryOtherIncome
	}
	return core.CategoryOtherExpense
}
