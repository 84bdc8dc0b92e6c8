package heads

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idara-sms/schoolbooks-api/internal/logger"
	"github.com/idara-sms/schoolbooks-api/internal/models"
	"github.com/idara-sms/schoolbooks-api/internal/store"
	"github.com/idara-sms/schoolbooks-api/internal/store/memory"
)

func newRegistry() (*Registry, *memory.Store) {
	st := memory.New()
	return NewRegistry(st, logger.NewWithWriter(io.Discard)), st
}

func TestAdd_RejectsBlankName(t *testing.T) {
	registry, _ := newRegistry()

	_, err := registry.Add(context.Background(), "   ", models.SideIncome)

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "name", validationErr.Field)
}

func TestAdd_RejectsUnknownSide(t *testing.T) {
	registry, _ := newRegistry()

	_, err := registry.Add(context.Background(), "Transport", "both")

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "type", validationErr.Field)
}

func TestAdd_PersistsHead(t *testing.T) {
	registry, _ := newRegistry()

	head, err := registry.Add(context.Background(), " Library Fund ", models.SideIncome)
	require.NoError(t, err)

	assert.NotEmpty(t, head.ID)
	assert.Equal(t, "Library Fund", head.Name)
	assert.Equal(t, models.SideIncome, head.Type)
}

func TestList_AlphabeticalAndFiltered(t *testing.T) {
	registry, _ := newRegistry()
	ctx := context.Background()

	for _, h := range []struct{ name, side string }{
		{"transport", models.SideExpense},
		{"Donations", models.SideIncome},
		{"Salaries", models.SideExpense},
		{"canteen", models.SideIncome},
	} {
		_, err := registry.Add(ctx, h.name, h.side)
		require.NoError(t, err)
	}

	incomes, err := registry.List(ctx, models.SideIncome)
	require.NoError(t, err)
	require.Len(t, incomes, 2)
	assert.Equal(t, "canteen", incomes[0].Name)
	assert.Equal(t, "Donations", incomes[1].Name)

	all, err := registry.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestDelete_LeavesTransactionsUntouched(t *testing.T) {
	registry, st := newRegistry()
	ctx := context.Background()

	head, err := registry.Add(ctx, "Donations", models.SideIncome)
	require.NoError(t, err)

	txnID, err := st.Create(ctx, store.Incomes, store.Document{
		"title": "Gala", "category": "Donations", "amount": 500.0,
	})
	require.NoError(t, err)

	require.NoError(t, registry.Delete(ctx, head.ID))

	remaining, err := registry.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, remaining)

	txn, err := st.Get(ctx, store.Incomes, txnID)
	require.NoError(t, err)
	assert.Equal(t, "Donations", txn["category"])
}
