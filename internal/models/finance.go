package models

import (
	"time"
)

// Ledger side of a transaction or category head.
const (
	SideIncome  = "income"
	SideExpense = "expense"
)

// FeeStatusPaid is the only fee status that contributes to income.
const FeeStatusPaid = "Paid"

// FeeStatusPending marks a recorded but uncollected fee.
const FeeStatusPending = "Pending"

// FeeCategory is the synthetic bucket all paid fees are collapsed into.
// Fee income is never attributed to a user-defined head.
const FeeCategory = "Student Fees"

// Uncategorized is the bucket for transactions with a blank category.
const Uncategorized = "Uncategorized"

// Transaction is a manual income or expense record. The side is determined
// by the collection it is stored in, not by a field.
type Transaction struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Date        string    `json:"date"` // YYYY-MM-DD as entered; may be malformed in old data
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// When returns the parsed transaction date for ordering. Malformed dates
// parse to the zero time so they sort last in a descending list.
func (t Transaction) When() time.Time {
	return ParseWhen(t.Date)
}

// FeePayment is a fee record owned by the fees module. Only Status=="Paid"
// rows contribute to the ledger.
type FeePayment struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name,omitempty"`
	RollNumber  string    `json:"roll_number,omitempty"`
	FeeType     string    `json:"fee_type,omitempty"`
	Month       string    `json:"month,omitempty"`
	Year        string    `json:"year,omitempty"`
	Amount      float64   `json:"amount"`
	Status      string    `json:"status"`
	Date        string    `json:"date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// When returns the canonical temporal field for a fee payment: the explicit
// date when present, otherwise the creation timestamp.
func (f FeePayment) When() time.Time {
	if f.Date != "" {
		if t := ParseWhen(f.Date); !t.IsZero() {
			return t
		}
	}
	return f.CreatedAt
}

// CategoryHead is a named, typed category used to populate selection lists.
// Transactions reference heads by name only; there is no foreign key, so
// deleting a head never orphans existing transactions.
type CategoryHead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"` // income | expense
	CreatedAt time.Time `json:"created_at"`
}

// MergedItem is one row of the unified ledger view.
type MergedItem struct {
	ID          string  `json:"id,omitempty"`
	Date        string  `json:"date"`
	Type        string  `json:"type"` // "Income" | "Expense"
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

// SourceError describes a ledger source that failed to load during
// aggregation. The summary it belongs to is flagged Partial.
type SourceError struct {
	Source string `json:"source"`
	Err    string `json:"error"`
}

// Summary is the derived ledger view. It is recomputed on demand and never
// persisted. NetBalance == TotalIncome - TotalExpenses always holds.
type Summary struct {
	TotalIncome      float64            `json:"total_income"`
	TotalExpenses    float64            `json:"total_expenses"`
	NetBalance       float64            `json:"net_balance"`
	FeeTotal         float64            `json:"fee_total"`
	IncomeBreakdown  map[string]float64 `json:"income_breakdown"`
	ExpenseBreakdown map[string]float64 `json:"expense_breakdown"`
	Items            []MergedItem       `json:"items"`
	Partial          bool               `json:"partial"`
	SourceErrors     []SourceError      `json:"source_errors,omitempty"`
}

// dateFormats covers the date strings seen in stored records. The canonical
// format is YYYY-MM-DD; the rest exist in data imported from spreadsheets.
var dateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"02-Jan-2006",
	"02-01-2006",
	time.RFC3339,
}

// ParseWhen parses a stored date string, returning the zero time when the
// value matches none of the known formats.
func ParseWhen(s string) time.Time {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
