// Package report projects a ledger summary into the three presentation
// surfaces: dashboard table rows, the AI context object, and flat export
// rows. All three consume the same Summary so totals never diverge.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/idara-sms/schoolbooks-api/internal/models"
)

// ExportHeader is the fixed header row for tabular exports.
var ExportHeader = []string{"Title", "Category", "Amount", "Date", "Description"}

// FinanceExportHeader adds the Type column for the combined finance export.
var FinanceExportHeader = []string{"Date", "Type", "Title", "Category", "Amount"}

const currencyLabel = "Rs."

// FormatCurrency renders a magnitude as an integer-grouped currency string.
// Display values are rounded to the nearest whole rupee; the underlying
// totals keep their fractions, so only presentation is affected. Expense
// magnitudes never carry a minus sign; sign is conveyed by column and
// style, not by a minus character.
func FormatCurrency(amount float64) string {
	if amount < 0 {
		amount = -amount
	}
	return currencyLabel + " " + groupDigits(int64(amount+0.5))
}

// FormatNet renders the net balance, which is the one figure allowed to be
// negative: it keeps its minus sign and callers pair it with a danger style.
func FormatNet(amount float64) string {
	if amount < 0 {
		mag := -amount
		return currencyLabel + " -" + groupDigits(int64(mag+0.5))
	}
	return currencyLabel + " " + groupDigits(int64(amount+0.5))
}

func groupDigits(n int64) string {
	digits := fmt.Sprintf("%d", n)
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func formatDate(raw string) string {
	if t := models.ParseWhen(raw); !t.IsZero() {
		return t.Format("02/01/2006")
	}
	if raw == "" {
		return "-"
	}
	return raw
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// TableRow is the dashboard view-model for one ledger row.
type TableRow struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	BadgeClass  string `json:"badge_class"`
	Amount      string `json:"amount"`
	AmountClass string `json:"amount_class"`
	Date        string `json:"date"`
	Description string `json:"description"`
	// Synthetic rows (the aggregated fee line) carry no edit/delete actions.
	HasActions bool `json:"has_actions"`
}

func sideStyles(side string) (itemType, badge, amountClass string) {
	if side == models.SideExpense {
		return "Expense", "badge-warning", "text-danger"
	}
	return "Income", "badge-success", "text-success"
}

func aggregatedFeeRow(feeTotal float64) TableRow {
	return TableRow{
		Title:       "Student Fees (Aggregated)",
		Category:    models.FeeCategory,
		BadgeClass:  "badge-success",
		Amount:      FormatCurrency(feeTotal),
		AmountClass: "text-success",
		Date:        "-",
		Description: "Total collected fees",
	}
}

// TableRows projects one side of the summary into dashboard rows. The
// income side ends with the synthetic aggregated fee row when fee income
// exists. An empty result means the caller renders its "no records"
// placeholder; it is never an error.
func TableRows(summary models.Summary, side string) []TableRow {
	itemType, badge, amountClass := sideStyles(side)

	rows := []TableRow{}
	for _, item := range summary.Items {
		if item.Type != itemType {
			continue
		}
		rows = append(rows, TableRow{
			ID:          item.ID,
			Title:       item.Title,
			Category:    item.Category,
			BadgeClass:  badge,
			Amount:      FormatCurrency(item.Amount),
			AmountClass: amountClass,
			Date:        formatDate(item.Date),
			Description: orDash(item.Description),
			HasActions:  true,
		})
	}

	if side == models.SideIncome && summary.FeeTotal > 0 {
		rows = append(rows, aggregatedFeeRow(summary.FeeTotal))
	}
	return rows
}

// TransactionRows projects a capped dashboard read into table rows, same
// shape as TableRows but fed from the per-side page instead of the full
// summary. The income side still ends with the aggregated fee row.
func TransactionRows(txns []models.Transaction, side string, feeTotal float64) []TableRow {
	_, badge, amountClass := sideStyles(side)

	rows := []TableRow{}
	for _, txn := range txns {
		rows = append(rows, TableRow{
			ID:          txn.ID,
			Title:       txn.Title,
			Category:    txn.Category,
			BadgeClass:  badge,
			Amount:      FormatCurrency(txn.Amount),
			AmountClass: amountClass,
			Date:        formatDate(txn.Date),
			Description: orDash(txn.Description),
			HasActions:  true,
		})
	}

	if side == models.SideIncome && feeTotal > 0 {
		rows = append(rows, aggregatedFeeRow(feeTotal))
	}
	return rows
}

// CategoryAmount is one breakdown entry, ordered for determinism.
type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// FinanceContext is the finance block of the AI context.
type FinanceContext struct {
	TotalIncome      float64          `json:"totalIncome"`
	TotalExpenses    float64          `json:"totalExpenses"`
	NetBalance       float64          `json:"netBalance"`
	IncomeBreakdown  []CategoryAmount `json:"incomeBreakdown"`
	ExpenseBreakdown []CategoryAmount `json:"expenseBreakdown"`
}

// AIContextData is the stable, JSON-serializable object embedded verbatim
// into AI prompts. It must be deterministic for a given summary: breakdown
// maps are flattened into slices sorted by category name.
type AIContextData struct {
	Date           string         `json:"date"`
	Counts         map[string]int `json:"counts"`
	Finance        FinanceContext `json:"finance"`
	RecentActivity []string       `json:"recentActivity"`
}

const recentActivityLimit = 10

// AIContext flattens a summary (plus entity counts) into the AI context
// object. No randomness, no timestamps beyond the supplied date.
func AIContext(summary models.Summary, counts map[string]int, date time.Time) AIContextData {
	recent := make([]string, 0, recentActivityLimit)
	for _, item := range summary.Items {
		if len(recent) == recentActivityLimit {
			break
		}
		recent = append(recent, fmt.Sprintf("%s %s: %s (%s) %s",
			item.Date, item.Type, item.Title, item.Category, FormatCurrency(item.Amount)))
	}

	return AIContextData{
		Date:   date.Format("2006-01-02"),
		Counts: counts,
		Finance: FinanceContext{
			TotalIncome:      summary.TotalIncome,
			TotalExpenses:    summary.TotalExpenses,
			NetBalance:       summary.NetBalance,
			IncomeBreakdown:  sortedBreakdown(summary.IncomeBreakdown),
			ExpenseBreakdown: sortedBreakdown(summary.ExpenseBreakdown),
		},
		RecentActivity: recent,
	}
}

func sortedBreakdown(m map[string]float64) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(m))
	for category, amount := range m {
		out = append(out, CategoryAmount{Category: category, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// Filters constrain which records participate in an export. They are
// applied before rendering: totals shown with a filtered export are
// recomputed from the filtered subset, never copied from the unfiltered
// summary.
type Filters struct {
	From     time.Time // zero means open-ended
	To       time.Time
	Category string
	Type     string // "Income" | "Expense" | ""
}

func (f Filters) match(item models.MergedItem) bool {
	if f.Type != "" && item.Type != f.Type {
		return false
	}
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		when := models.ParseWhen(item.Date)
		if !f.From.IsZero() && when.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && when.After(f.To) {
			return false
		}
	}
	return true
}

// ExportData is a rendered tabular export with totals recomputed from the
// rows that actually participate.
type ExportData struct {
	Header        []string
	Rows          [][]string
	TotalIncome   float64
	TotalExpenses float64
	NetBalance    float64
}

// ExportRows renders the combined finance export. Rows keep the summary's
// date-descending order; the Type column is styled green/red downstream.
func ExportRows(summary models.Summary, filters Filters) ExportData {
	data := ExportData{Header: FinanceExportHeader, Rows: [][]string{}}
	for _, item := range summary.Items {
		if !filters.match(item) {
			continue
		}
		switch item.Type {
		case "Income":
			data.TotalIncome += item.Amount
		case "Expense":
			data.TotalExpenses += item.Amount
		}
		data.Rows = append(data.Rows, []string{
			item.Date,
			item.Type,
			item.Title,
			item.Category,
			FormatCurrency(item.Amount),
		})
	}
	data.NetBalance = data.TotalIncome - data.TotalExpenses
	return data
}

// SideExportRows renders one side's export in the Title-first layout used
// by the per-side report tables.
func SideExportRows(summary models.Summary, side string, filters Filters) ExportData {
	itemType := "Income"
	if side == models.SideExpense {
		itemType = "Expense"
	}
	filters.Type = itemType

	data := ExportData{Header: ExportHeader, Rows: [][]string{}}
	for _, item := range summary.Items {
		if !filters.match(item) {
			continue
		}
		if itemType == "Income" {
			data.TotalIncome += item.Amount
		} else {
			data.TotalExpenses += item.Amount
		}
		data.Rows = append(data.Rows, []string{
			item.Title,
			item.Category,
			FormatCurrency(item.Amount),
			formatDate(item.Date),
			orDash(item.Description),
		})
	}
	data.NetBalance = data.TotalIncome - data.TotalExpenses
	return data
}

// FeeExportHeader is the header for the fee-specific export.
var FeeExportHeader = []string{"Student", "Roll No", "Type", "Period", "Amount", "Status", "Date"}

// FeeExportRows renders the fee report. The status filter constrains the
// participating records, matching the finance export contract.
func FeeExportRows(fees []models.FeePayment, status string) ExportData {
	data := ExportData{Header: FeeExportHeader, Rows: [][]string{}}
	for _, fee := range fees {
		if status != "" && fee.Status != status {
			continue
		}
		period := strings.TrimSpace(fee.Month + " " + fee.Year)
		if period == "" {
			period = "-"
		}
		date := "-"
		if when := fee.When(); !when.IsZero() {
			date = when.Format("02/01/2006")
		}
		if fee.Status == models.FeeStatusPaid {
			data.TotalIncome += fee.Amount
		}
		data.Rows = append(data.Rows, []string{
			orDash(fee.StudentName),
			orDash(fee.RollNumber),
			orDash(fee.FeeType),
			period,
			FormatCurrency(fee.Amount),
			fee.Status,
			date,
		})
	}
	data.NetBalance = data.TotalIncome
	return data
}
