package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idara-sms/schoolbooks-api/internal/ledger"
	"github.com/idara-sms/schoolbooks-api/internal/logger"
	"github.com/idara-sms/schoolbooks-api/internal/store"
	"github.com/idara-sms/schoolbooks-api/internal/store/memory"
)

func newFinanceApp() (*fiber.App, *memory.Store) {
	st := memory.New()
	log := logger.NewWithWriter(io.Discard)
	handler := NewFinanceHandler(ledger.NewService(st, log), st, log)

	app := fiber.New()
	app.Get("/finance/summary", handler.GetSummary)
	app.Get("/finance/:side", handler.GetDashboard)
	app.Post("/finance/:side", handler.CreateTransaction)
	app.Put("/finance/:side/:id", handler.UpdateTransaction)
	app.Delete("/finance/:side/:id", handler.DeleteTransaction)
	return app, st
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) map[string]any {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	out["_status"] = float64(resp.StatusCode)
	return out
}

func TestCreateTransaction_Valid(t *testing.T) {
	app, st := newFinanceApp()

	out := postJSON(t, app, "/finance/income", map[string]any{
		"title": "Annual gala", "category": "Donations", "amount": "1,500", "date": "2024-01-10",
	})

	assert.Equal(t, float64(fiber.StatusCreated), out["_status"])

	docs, err := st.List(context.Background(), store.Incomes, store.ListOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 1500.0, docs[0]["amount"])
	assert.Equal(t, "Donations", docs[0]["category"])
}

func TestCreateTransaction_BlankCategoryBucketed(t *testing.T) {
	app, st := newFinanceApp()

	out := postJSON(t, app, "/finance/expense", map[string]any{
		"title": "Chalk", "amount": 120,
	})

	assert.Equal(t, float64(fiber.StatusCreated), out["_status"])

	docs, err := st.List(context.Background(), store.Expenses, store.ListOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Uncategorized", docs[0]["category"])
}

func TestCreateTransaction_RejectsBlankTitle(t *testing.T) {
	app, _ := newFinanceApp()

	out := postJSON(t, app, "/finance/income", map[string]any{
		"amount": 100,
	})

	assert.Equal(t, float64(fiber.StatusBadRequest), out["_status"])
	assert.Equal(t, "VALIDATION_ERROR", out["code"])
}

func TestCreateTransaction_RejectsUnparseableAmount(t *testing.T) {
	app, _ := newFinanceApp()

	out := postJSON(t, app, "/finance/income", map[string]any{
		"title": "Gala", "amount": "lots",
	})

	assert.Equal(t, float64(fiber.StatusBadRequest), out["_status"])
}

func TestCreateTransaction_UnknownSide(t *testing.T) {
	app, _ := newFinanceApp()

	out := postJSON(t, app, "/finance/savings", map[string]any{
		"title": "Gala", "amount": 100,
	})

	assert.Equal(t, float64(fiber.StatusBadRequest), out["_status"])
}

func TestGetDashboard_RowsAndFeeAggregate(t *testing.T) {
	app, st := newFinanceApp()
	ctx := context.Background()

	_, err := st.Create(ctx, store.Incomes, store.Document{
		"title": "Gala", "category": "Donations", "amount": 500.0, "date": "2024-01-10",
	})
	require.NoError(t, err)
	_, err = st.Create(ctx, store.Fees, store.Document{"amount": 300.0, "status": "Paid"})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/finance/income", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Rows []struct {
			Title      string `json:"title"`
			HasActions bool   `json:"has_actions"`
		} `json:"rows"`
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, 2, out.Count)
	assert.Equal(t, "Student Fees (Aggregated)", out.Rows[1].Title)
	assert.False(t, out.Rows[1].HasActions)
}

func TestGetDashboard_CapsAtPageSize(t *testing.T) {
	app, st := newFinanceApp()
	ctx := context.Background()

	for i := 0; i < store.DashboardLimit+10; i++ {
		_, err := st.Create(ctx, store.Incomes, store.Document{
			"title": fmt.Sprintf("Donation %d", i), "amount": 100.0, "date": "2024-01-10",
		})
		require.NoError(t, err)
	}
	_, err := st.Create(ctx, store.Fees, store.Document{"amount": 300.0, "status": "Paid"})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/finance/income", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Rows []struct {
			Title      string `json:"title"`
			HasActions bool   `json:"has_actions"`
		} `json:"rows"`
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	// The page holds at most DashboardLimit transactions plus the fee row,
	// and the fee row survives the cap.
	require.Equal(t, store.DashboardLimit+1, out.Count)
	last := out.Rows[len(out.Rows)-1]
	assert.Equal(t, "Student Fees (Aggregated)", last.Title)
	assert.False(t, last.HasActions)
}

func TestUpdateTransaction_AcceptsRestoredId(t *testing.T) {
	app, st := newFinanceApp()
	ctx := context.Background()

	// Restored archives keep their original ids, which need not be UUIDs.
	err := st.Put(ctx, store.Incomes, "legacy-income-7", store.Document{
		"title": "Gala", "amount": 500.0, "date": "2024-01-10",
	})
	require.NoError(t, err)

	payload, _ := json.Marshal(map[string]any{"title": "Renamed gala"})
	req := httptest.NewRequest("PUT", "/finance/income/legacy-income-7", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	doc, err := st.Get(ctx, store.Incomes, "legacy-income-7")
	require.NoError(t, err)
	assert.Equal(t, "Renamed gala", doc["title"])
}

func TestUpdateTransaction_NotFound(t *testing.T) {
	app, _ := newFinanceApp()

	payload, _ := json.Marshal(map[string]any{"title": "Renamed"})
	req := httptest.NewRequest("PUT", "/finance/income/5a2e8d04-45cf-4f0f-8e9e-27f7d8a4f9aa", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteTransaction_RemovesRecord(t *testing.T) {
	app, st := newFinanceApp()
	ctx := context.Background()

	id, err := st.Create(ctx, store.Expenses, store.Document{"title": "Chalk", "amount": 120.0})
	require.NoError(t, err)

	req := httptest.NewRequest("DELETE", "/finance/expense/"+id, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, err = st.Get(ctx, store.Expenses, id)
	assert.Error(t, err)
}
