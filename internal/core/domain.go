package core

import (
	"errors"
	"strings"
	"time"
)

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

const (
	CategorySales        Category = "sales"
	CategoryServices     Category = "services"
	CategoryOtherIncome  Category = "other_income"
	CategoryTransport    Category = "transport"
	CategorySupplies     Category = "supplies"
	CategoryUtilities    Category = "utilities"
	CategoryRent         Category = "rent"
	CategoryFood         Category = "food"
	CategoryOtherExpense Category = "other_expense"
)

type (
	Kind     string
	Category string

	// Transaction is one income or expense entry. ID, Owner and CreatedAt
	// are assigned by the persistence layer, not by the caller.
	Transaction struct {
		ID          string
		Owner       string
		Kind        Kind
		Category    Category
		Amount      Money
		Description string
		OccurredOn  Date
		CreatedAt   time.Time
	}

	// Suggested is an untrusted pre-fill produced by the voice or receipt
	// collaborators. It becomes a Transaction only after passing Validate
	// on the submission path.
	Suggested struct {
		Kind        Kind
		Category    Category
		AmountText  string
		Description string
		Source      string // "voice" or "receipt"
	}
)

var (
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrCategoryMismatch = errors.New("category does not match kind")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidDate      = errors.New("invalid date")
)

// IncomeCategories lists the categories valid for income records.
func IncomeCategories() []Category {
	return []Category{CategorySales, CategoryServices, CategoryOtherIncome}
}

// ExpenseCategories lists the categories valid for expense records.
func ExpenseCategories() []Category {
	return []Category{CategoryTransport, CategorySupplies, CategoryUtilities, CategoryRent, CategoryFood, CategoryOtherExpense}
}

// CategoriesFor returns the category set matching a kind.
func CategoriesFor(k Kind) []Category {
	if k == KindIncome {
		return IncomeCategories()
	}
	return ExpenseCategories()
}

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// BelongsTo reports whether the category is a member of the set
// associated with the given kind.
func (c Category) BelongsTo(k Kind) bool {
	for _, m := range CategoriesFor(k) {
		if c == m {
			return true
		}
	}
	return false
}

// Label renders a category for display ("other_income" -> "Other Income").
func (c Category) Label() string {
	parts := strings.Split(string(c), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// Validate checks the caller-supplied fields of a transaction. ID, Owner
// and CreatedAt are outside its scope.
func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if !t.Category.BelongsTo(t.Kind) {
		return ErrCategoryMismatch
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.OccurredOn.Validate(); err != nil {
		return err
	}
	return nil
}

type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day (UTC midnight).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// SameDay compares two dates by calendar day, ignoring time of day.
func (d Date) SameDay(other Date) bool {
	y1, m1, d1 := d.Date()
	y2, m2, d2 := other.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}
