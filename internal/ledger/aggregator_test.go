package ledger

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idara-sms/schoolbooks-api/internal/logger"
	"github.com/idara-sms/schoolbooks-api/internal/models"
	"github.com/idara-sms/schoolbooks-api/internal/store"
	"github.com/idara-sms/schoolbooks-api/internal/store/memory"
)

func TestComputeSummary_MixedSources(t *testing.T) {
	incomes := []models.Transaction{
		{ID: "i1", Title: "Annual gala", Category: "Donations", Amount: 500, Date: "2024-01-10"},
	}
	expenses := []models.Transaction{
		{ID: "e1", Title: "Supplies", Category: models.Uncategorized, Amount: 200, Date: "2024-01-05"},
	}
	fees := []models.FeePayment{
		{ID: "f1", Amount: 300, Status: models.FeeStatusPaid},
		{ID: "f2", Amount: 100, Status: "Unpaid"},
	}

	summary := ComputeSummary(incomes, expenses, fees)

	assert.Equal(t, 800.0, summary.TotalIncome)
	assert.Equal(t, 200.0, summary.TotalExpenses)
	assert.Equal(t, 600.0, summary.NetBalance)
	assert.Equal(t, 300.0, summary.FeeTotal)
	assert.Equal(t, map[string]float64{"Donations": 500, models.FeeCategory: 300}, summary.IncomeBreakdown)
	assert.Equal(t, map[string]float64{models.Uncategorized: 200}, summary.ExpenseBreakdown)

	require.Len(t, summary.Items, 2)
	assert.Equal(t, "Income", summary.Items[0].Type)
	assert.Equal(t, "2024-01-10", summary.Items[0].Date)
	assert.Equal(t, "Expense", summary.Items[1].Type)
}

func TestComputeSummary_Empty(t *testing.T) {
	summary := ComputeSummary(nil, nil, nil)

	assert.Equal(t, 0.0, summary.TotalIncome)
	assert.Equal(t, 0.0, summary.TotalExpenses)
	assert.Equal(t, 0.0, summary.NetBalance)
	assert.Empty(t, summary.Items)
	assert.False(t, summary.Partial)
}

func TestComputeSummary_NetBalanceIdentity(t *testing.T) {
	incomes := []models.Transaction{
		{Amount: 1200, Category: "Grants"},
		{Amount: 0, Category: "Grants"}, // malformed row, visible at zero
	}
	expenses := []models.Transaction{
		{Amount: 450, Category: "Salaries"},
		{Amount: 50, Category: "Utilities"},
	}
	fees := []models.FeePayment{
		{Amount: 800, Status: models.FeeStatusPaid},
	}

	summary := ComputeSummary(incomes, expenses, fees)

	assert.Equal(t, summary.TotalIncome-summary.TotalExpenses, summary.NetBalance)
	assert.Len(t, summary.Items, 4)
}

func TestComputeSummary_FeeBucketIsAssignedNotMerged(t *testing.T) {
	// A user-defined head named exactly "Student Fees" must not absorb fee
	// income; the synthetic bucket is assigned over it.
	incomes := []models.Transaction{
		{Title: "Manual entry", Category: models.FeeCategory, Amount: 50},
	}
	fees := []models.FeePayment{
		{Amount: 300, Status: models.FeeStatusPaid},
	}

	summary := ComputeSummary(incomes, nil, fees)

	assert.Equal(t, 300.0, summary.IncomeBreakdown[models.FeeCategory])
	assert.Equal(t, 350.0, summary.TotalIncome)
}

func TestComputeSummary_UnpaidFeesExcluded(t *testing.T) {
	fees := []models.FeePayment{
		{Amount: 100, Status: models.FeeStatusPending},
		{Amount: 200, Status: "Unpaid"},
	}

	summary := ComputeSummary(nil, nil, fees)

	assert.Equal(t, 0.0, summary.TotalIncome)
	assert.Equal(t, 0.0, summary.FeeTotal)
	assert.NotContains(t, summary.IncomeBreakdown, models.FeeCategory)
}

func TestComputeSummary_StableDateOrdering(t *testing.T) {
	incomes := []models.Transaction{
		{ID: "a", Amount: 10, Date: "2024-02-01"},
		{ID: "b", Amount: 20, Date: "2024-02-01"},
	}
	expenses := []models.Transaction{
		{ID: "c", Amount: 30, Date: "2024-03-01"},
	}

	summary := ComputeSummary(incomes, expenses, nil)

	require.Len(t, summary.Items, 3)
	assert.Equal(t, "c", summary.Items[0].ID)
	// Equal dates keep their insertion order.
	assert.Equal(t, "a", summary.Items[1].ID)
	assert.Equal(t, "b", summary.Items[2].ID)
}

func TestServiceSummary_PartialOnFailedSource(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	_, err := st.Create(ctx, store.Incomes, store.Document{
		"title": "Donation", "category": "Donations", "amount": 500.0, "date": "2024-01-10",
	})
	require.NoError(t, err)
	_, err = st.Create(ctx, store.Fees, store.Document{
		"amount": 300.0, "status": "Paid",
	})
	require.NoError(t, err)

	st.FailCollections[store.Expenses] = errors.New("backend unavailable")

	svc := NewService(st, logger.NewWithWriter(io.Discard))
	summary, err := svc.Summary(ctx)
	require.NoError(t, err)

	assert.True(t, summary.Partial)
	require.Len(t, summary.SourceErrors, 1)
	assert.Equal(t, store.Expenses, summary.SourceErrors[0].Source)
	assert.Equal(t, 800.0, summary.TotalIncome)
	assert.Equal(t, 0.0, summary.TotalExpenses)
}

func TestServiceSummary_AllSourcesHealthy(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	_, err := st.Create(ctx, store.Expenses, store.Document{
		"title": "Chalk", "amount": "120", "date": "2024-01-05",
	})
	require.NoError(t, err)

	svc := NewService(st, logger.NewWithWriter(io.Discard))
	summary, err := svc.Summary(ctx)
	require.NoError(t, err)

	assert.False(t, summary.Partial)
	assert.Empty(t, summary.SourceErrors)
	assert.Equal(t, 120.0, summary.TotalExpenses)
	assert.Equal(t, map[string]float64{models.Uncategorized: 120}, summary.ExpenseBreakdown)
}

func TestSideTransactions_CapsAtDashboardLimit(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	for i := 0; i < store.DashboardLimit+10; i++ {
		_, err := st.Create(ctx, store.Incomes, store.Document{"title": "x", "amount": 1.0})
		require.NoError(t, err)
	}

	svc := NewService(st, logger.NewWithWriter(io.Discard))
	txns, err := svc.SideTransactions(ctx, models.SideIncome)
	require.NoError(t, err)

	assert.Len(t, txns, store.DashboardLimit)
}

func TestPaidFeeTotal_SumsOnlyPaid(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	_, err := st.Create(ctx, store.Fees, store.Document{"amount": 300.0, "status": "Paid"})
	require.NoError(t, err)
	_, err = st.Create(ctx, store.Fees, store.Document{"amount": 450.0, "status": "Paid"})
	require.NoError(t, err)
	_, err = st.Create(ctx, store.Fees, store.Document{"amount": 999.0, "status": "Pending"})
	require.NoError(t, err)

	svc := NewService(st, logger.NewWithWriter(io.Discard))
	total, err := svc.PaidFeeTotal(ctx)
	require.NoError(t, err)

	assert.Equal(t, 750.0, total)
}
