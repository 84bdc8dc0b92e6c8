package ledger

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/idara-sms/schoolbooks-api/internal/models"
	"github.com/idara-sms/schoolbooks-api/internal/store"
)

// ComputeSummary reconciles the three sources into one ledger view.
//
// Manual transactions are summed per side and bucketed by normalized
// category. Paid fee payments are collapsed into the single synthetic
// "Student Fees" income bucket; the bucket is assigned, not merged, so a
// user-defined head with the same name never absorbs fee income. Merged
// items are ordered by parsed date descending with stable ties.
func ComputeSummary(incomes, expenses []models.Transaction, fees []models.FeePayment) models.Summary {
	summary := models.Summary{
		IncomeBreakdown:  make(map[string]float64),
		ExpenseBreakdown: make(map[string]float64),
		Items:            []models.MergedItem{},
	}

	for _, txn := range incomes {
		summary.TotalIncome += txn.Amount
		summary.IncomeBreakdown[txn.Category] += txn.Amount
		summary.Items = append(summary.Items, models.MergedItem{
			ID:          txn.ID,
			Date:        txn.Date,
			Type:        "Income",
			Title:       txn.Title,
			Category:    txn.Category,
			Amount:      txn.Amount,
			Description: txn.Description,
		})
	}

	for _, txn := range expenses {
		summary.TotalExpenses += txn.Amount
		summary.ExpenseBreakdown[txn.Category] += txn.Amount
		summary.Items = append(summary.Items, models.MergedItem{
			ID:          txn.ID,
			Date:        txn.Date,
			Type:        "Expense",
			Title:       txn.Title,
			Category:    txn.Category,
			Amount:      txn.Amount,
			Description: txn.Description,
		})
	}

	var feeTotal float64
	for _, fee := range fees {
		if fee.Status != models.FeeStatusPaid {
			continue
		}
		feeTotal += fee.Amount
	}
	if feeTotal > 0 {
		summary.FeeTotal = feeTotal
		summary.TotalIncome += feeTotal
		summary.IncomeBreakdown[models.FeeCategory] = feeTotal
	}

	summary.NetBalance = summary.TotalIncome - summary.TotalExpenses

	sort.SliceStable(summary.Items, func(i, j int) bool {
		return models.ParseWhen(summary.Items[i].Date).After(models.ParseWhen(summary.Items[j].Date))
	})

	return summary
}

// Service loads the three sources from the store and aggregates them.
type Service struct {
	store store.Store
	log   zerolog.Logger
}

func NewService(st store.Store, log zerolog.Logger) *Service {
	return &Service{store: st, log: log}
}

// loadTransactions reads one side's manual transactions. limit==0 reads the
// full collection for aggregation/export; dashboards pass a cap.
func (s *Service) loadTransactions(ctx context.Context, collection string, limit int) ([]models.Transaction, error) {
	docs, err := s.store.List(ctx, collection, store.ListOptions{Limit: limit})
	if err != nil {
		return nil, &models.SourceUnavailableError{Source: collection, Cause: err}
	}
	txns := make([]models.Transaction, 0, len(docs))
	for _, doc := range docs {
		txns = append(txns, DecodeTransaction(doc))
	}
	return txns, nil
}

func (s *Service) loadFees(ctx context.Context) ([]models.FeePayment, error) {
	docs, err := s.store.List(ctx, store.Fees, store.ListOptions{})
	if err != nil {
		return nil, &models.SourceUnavailableError{Source: store.Fees, Cause: err}
	}
	fees := make([]models.FeePayment, 0, len(docs))
	for _, doc := range docs {
		fees = append(fees, DecodeFeePayment(doc))
	}
	return fees, nil
}

// Summary reads all three sources and computes the ledger view. A source
// that fails to load is skipped and recorded: the result is flagged Partial
// so callers can distinguish "truly zero" from "could not load". Sources
// that did load stay fully correct.
func (s *Service) Summary(ctx context.Context) (models.Summary, error) {
	var sourceErrs []models.SourceError

	incomes, err := s.loadTransactions(ctx, store.Incomes, 0)
	if err != nil {
		s.log.Warn().Err(err).Str("source", store.Incomes).Msg("ledger source unavailable")
		sourceErrs = append(sourceErrs, models.SourceError{Source: store.Incomes, Err: err.Error()})
	}
	expenses, err := s.loadTransactions(ctx, store.Expenses, 0)
	if err != nil {
		s.log.Warn().Err(err).Str("source", store.Expenses).Msg("ledger source unavailable")
		sourceErrs = append(sourceErrs, models.SourceError{Source: store.Expenses, Err: err.Error()})
	}
	fees, err := s.loadFees(ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("source", store.Fees).Msg("ledger source unavailable")
		sourceErrs = append(sourceErrs, models.SourceError{Source: store.Fees, Err: err.Error()})
	}

	summary := ComputeSummary(incomes, expenses, fees)
	if len(sourceErrs) > 0 {
		summary.Partial = true
		summary.SourceErrors = sourceErrs
	}
	return summary, nil
}

// SideTransactions reads one side's records for the dashboard, capped at
// the dashboard page size.
func (s *Service) SideTransactions(ctx context.Context, side string) ([]models.Transaction, error) {
	collection := store.Incomes
	if side == models.SideExpense {
		collection = store.Expenses
	}
	return s.loadTransactions(ctx, collection, store.DashboardLimit)
}

// PaidFeeTotal sums collected fees for the income dashboard's aggregated
// row. The cap never applies to fees; the row always reflects every paid
// payment.
func (s *Service) PaidFeeTotal(ctx context.Context) (float64, error) {
	fees, err := s.loadFees(ctx)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, fee := range fees {
		if fee.Status == models.FeeStatusPaid {
			total += fee.Amount
		}
	}
	return total, nil
}
