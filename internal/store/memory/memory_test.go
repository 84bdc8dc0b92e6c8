package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idara-sms/schoolbooks-api/internal/models"
	"github.com/idara-sms/schoolbooks-api/internal/store"
)

func TestList_OrdersByDateDescending(t *testing.T) {
	st := New()
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, store.Incomes, "old", store.Document{"date": "2024-01-01"}))
	require.NoError(t, st.Put(ctx, store.Incomes, "new", store.Document{"date": "2024-03-01"}))
	require.NoError(t, st.Put(ctx, store.Incomes, "mid", store.Document{"date": "2024-02-01"}))

	docs, err := st.List(ctx, store.Incomes, store.ListOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "new", docs[0]["id"])
	assert.Equal(t, "mid", docs[1]["id"])
	assert.Equal(t, "old", docs[2]["id"])
}

func TestList_FallsBackToCreatedAt(t *testing.T) {
	st := New()
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, store.Fees, "a", store.Document{
		"created_at": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, st.Put(ctx, store.Fees, "b", store.Document{
		"created_at": time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}))

	docs, err := st.List(ctx, store.Fees, store.ListOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[0]["id"])
}

func TestList_RespectsLimit(t *testing.T) {
	st := New()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := st.Create(ctx, store.Expenses, store.Document{"amount": float64(i)})
		require.NoError(t, err)
	}

	docs, err := st.List(ctx, store.Expenses, store.ListOptions{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestGet_NotFound(t *testing.T) {
	st := New()

	_, err := st.Get(context.Background(), store.Incomes, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdate_MergesFields(t *testing.T) {
	st := New()
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, store.Fees, "f1", store.Document{
		"student_name": "Asha", "status": "Pending", "amount": 300.0,
	}))

	require.NoError(t, st.Update(ctx, store.Fees, "f1", store.Document{"status": "Paid"}))

	doc, err := st.Get(ctx, store.Fees, "f1")
	require.NoError(t, err)
	assert.Equal(t, "Paid", doc["status"])
	assert.Equal(t, "Asha", doc["student_name"])
}

func TestUpdate_NotFound(t *testing.T) {
	st := New()

	err := st.Update(context.Background(), store.Fees, "missing", store.Document{"status": "Paid"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDelete_RemovesDocument(t *testing.T) {
	st := New()
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, store.Incomes, "i1", store.Document{"title": "Gala"}))
	require.NoError(t, st.Delete(ctx, store.Incomes, "i1"))

	_, err := st.Get(ctx, store.Incomes, "i1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPutMany_UpsertsBatch(t *testing.T) {
	st := New()
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, store.Students, "s1", store.Document{"firstName": "Old"}))

	err := st.PutMany(ctx, store.Students, []store.Document{
		{"id": "s1", "firstName": "New"},
		{"id": "s2", "firstName": "Ravi"},
	})
	require.NoError(t, err)

	n, err := st.Count(ctx, store.Students)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	doc, err := st.Get(ctx, store.Students, "s1")
	require.NoError(t, err)
	assert.Equal(t, "New", doc["firstName"])
}

func TestFailCollections_SimulatesOutage(t *testing.T) {
	st := New()
	outage := errors.New("backend unavailable")
	st.FailCollections[store.Expenses] = outage

	_, err := st.List(context.Background(), store.Expenses, store.ListOptions{})
	assert.ErrorIs(t, err, outage)

	// Other collections keep working.
	_, err = st.List(context.Background(), store.Incomes, store.ListOptions{})
	assert.NoError(t, err)
}

func TestCloneOnRead_CallerMutationsDoNotLeak(t *testing.T) {
	st := New()
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, store.Incomes, "i1", store.Document{"title": "Gala"}))

	doc, err := st.Get(ctx, store.Incomes, "i1")
	require.NoError(t, err)
	doc["title"] = "Mutated"

	fresh, err := st.Get(ctx, store.Incomes, "i1")
	require.NoError(t, err)
	assert.Equal(t, "Gala", fresh["title"])
}
