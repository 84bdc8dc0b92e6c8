package ai

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idara-sms/schoolbooks-api/internal/ledger"
	"github.com/idara-sms/schoolbooks-api/internal/logger"
	"github.com/idara-sms/schoolbooks-api/internal/store"
	"github.com/idara-sms/schoolbooks-api/internal/store/memory"
)

func newProvider(t *testing.T) (*ContextProvider, *memory.Store, *time.Time) {
	t.Helper()
	st := memory.New()
	log := logger.NewWithWriter(io.Discard)
	provider := NewContextProvider(ledger.NewService(st, log), st, log)

	clock := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	provider.now = func() time.Time { return clock }
	return provider, st, &clock
}

func TestContext_CachedWithinTTL(t *testing.T) {
	provider, st, _ := newProvider(t)
	ctx := context.Background()

	_, err := st.Create(ctx, store.Incomes, store.Document{"title": "Gala", "amount": 500.0})
	require.NoError(t, err)

	first, err := provider.Context(ctx)
	require.NoError(t, err)
	assert.Equal(t, 500.0, first.Finance.TotalIncome)

	// A write inside the TTL window is not reflected.
	_, err = st.Create(ctx, store.Incomes, store.Document{"title": "Fair", "amount": 100.0})
	require.NoError(t, err)

	second, err := provider.Context(ctx)
	require.NoError(t, err)
	assert.Equal(t, 500.0, second.Finance.TotalIncome)
}

func TestContext_RecomputesAfterTTL(t *testing.T) {
	provider, st, clock := newProvider(t)
	ctx := context.Background()

	_, err := st.Create(ctx, store.Incomes, store.Document{"title": "Gala", "amount": 500.0})
	require.NoError(t, err)

	_, err = provider.Context(ctx)
	require.NoError(t, err)

	_, err = st.Create(ctx, store.Incomes, store.Document{"title": "Fair", "amount": 100.0})
	require.NoError(t, err)

	*clock = clock.Add(ContextTTL + time.Second)

	refreshed, err := provider.Context(ctx)
	require.NoError(t, err)
	assert.Equal(t, 600.0, refreshed.Finance.TotalIncome)
}

func TestContext_InvalidateForcesRecompute(t *testing.T) {
	provider, st, _ := newProvider(t)
	ctx := context.Background()

	_, err := provider.Context(ctx)
	require.NoError(t, err)

	_, err = st.Create(ctx, store.Expenses, store.Document{"title": "Chalk", "amount": 120.0})
	require.NoError(t, err)

	provider.Invalidate()

	refreshed, err := provider.Context(ctx)
	require.NoError(t, err)
	assert.Equal(t, 120.0, refreshed.Finance.TotalExpenses)
}

func TestContext_CountsAreBestEffort(t *testing.T) {
	provider, st, _ := newProvider(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, store.Students, "s1", store.Document{"firstName": "Asha"}))
	st.FailCollections[store.Teachers] = assert.AnError

	data, err := provider.Context(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, data.Counts[store.Students])
	assert.NotContains(t, data.Counts, store.Teachers)
}
