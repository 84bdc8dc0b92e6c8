package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/idara-sms/schoolbooks-api/internal/ledger"
	"github.com/idara-sms/schoolbooks-api/internal/models"
	"github.com/idara-sms/schoolbooks-api/internal/report"
	"github.com/idara-sms/schoolbooks-api/internal/store"
	"github.com/idara-sms/schoolbooks-api/internal/utils"
)

// FinanceHandler handles income/expense records and the aggregated summary
type FinanceHandler struct {
	ledger *ledger.Service
	store  store.Store
	log    zerolog.Logger
}

// NewFinanceHandler creates a new finance handler
func NewFinanceHandler(svc *ledger.Service, st store.Store, log zerolog.Logger) *FinanceHandler {
	return &FinanceHandler{ledger: svc, store: st, log: log}
}

// sideCollection maps the :side route segment to its collection.
func sideCollection(side string) (string, bool) {
	switch side {
	case models.SideIncome:
		return store.Incomes, true
	case models.SideExpense:
		return store.Expenses, true
	default:
		return "", false
	}
}

// GetSummary returns the aggregated ledger view. A partially loaded summary
// is still a 200: the payload carries the partial flag and per-source errors.
// GET /v1/finance/summary
func (h *FinanceHandler) GetSummary(c fiber.Ctx) error {
	summary, err := h.ledger.Summary(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to compute summary",
		})
	}

	return c.JSON(fiber.Map{
		"summary": summary,
		"formatted": fiber.Map{
			"total_income":   report.FormatCurrency(summary.TotalIncome),
			"total_expenses": report.FormatCurrency(summary.TotalExpenses),
			"net_balance":    report.FormatNet(summary.NetBalance),
		},
	})
}

// GetDashboard returns one side's dashboard table rows. The read is capped
// at the dashboard page size; the aggregated fee row on the income side is
// computed over all paid fees regardless of the cap.
// GET /v1/finance/:side
func (h *FinanceHandler) GetDashboard(c fiber.Ctx) error {
	side := c.Params("side")
	if _, ok := sideCollection(side); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "side must be income or expense",
		})
	}

	txns, err := h.ledger.SideTransactions(c.Context(), side)
	if err != nil {
		return utils.ErrorHandler(c, err)
	}

	var feeTotal float64
	if side == models.SideIncome {
		feeTotal, err = h.ledger.PaidFeeTotal(c.Context())
		if err != nil {
			// A failed fee source must not blank the income table.
			h.log.Warn().Err(err).Msg("fee total unavailable for dashboard")
		}
	}

	rows := report.TransactionRows(txns, side, feeTotal)
	return c.JSON(fiber.Map{
		"rows":  rows,
		"count": len(rows),
	})
}

// TransactionRequest is the write payload for income/expense records. Amount
// is schemaless on the wire; it goes through the normalizer at the boundary.
type TransactionRequest struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Amount      any    `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// CreateTransaction records a new income or expense
// POST /v1/finance/:side
func (h *FinanceHandler) CreateTransaction(c fiber.Ctx) error {
	side := c.Params("side")
	collection, ok := sideCollection(side)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "side must be income or expense",
		})
	}

	var req TransactionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.Title == "" {
		return utils.ErrorHandler(c, models.NewValidationError("title", "title is required"))
	}
	amount := ledger.NormalizeAmount(req.Amount)
	if amount <= 0 {
		return utils.ErrorHandler(c, models.NewValidationError("amount", "amount must be a positive number"))
	}
	date := req.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	doc := store.Document{
		"title":       req.Title,
		"category":    ledger.NormalizeCategory(req.Category),
		"amount":      amount,
		"date":        date,
		"description": req.Description,
		"created_at":  time.Now(),
	}

	id, err := h.store.Create(c.Context(), collection, doc)
	if err != nil {
		h.log.Error().Err(err).Str("collection", collection).Msg("transaction write failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "failed to save record",
			"details": err.Error(),
		})
	}

	h.log.Info().Str("collection", collection).Str("id", id).Msg("transaction recorded")
	doc["id"] = id
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"transaction": doc,
		"message":     "record saved successfully",
	})
}

// UpdateTransaction merges changed fields into an existing record
// PUT /v1/finance/:side/:id
func (h *FinanceHandler) UpdateTransaction(c fiber.Ctx) error {
	side := c.Params("side")
	collection, ok := sideCollection(side)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "side must be income or expense",
		})
	}

	// Ids are opaque strings: restored archives may carry non-UUID ids, so
	// an unknown id surfaces as not-found from the store, same as Delete.
	id := c.Params("id")

	var body map[string]any
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	// Only the writable fields pass through; the rest of the body is dropped.
	patch := store.Document{}
	for _, key := range []string{"title", "category", "amount", "date", "description"} {
		value, present := body[key]
		if !present {
			continue
		}
		switch key {
		case "title":
			title, _ := value.(string)
			if title == "" {
				return utils.ErrorHandler(c, models.NewValidationError("title", "title cannot be blank"))
			}
			patch[key] = title
		case "category":
			raw, _ := value.(string)
			patch[key] = ledger.NormalizeCategory(raw)
		case "amount":
			amount := ledger.NormalizeAmount(value)
			if amount <= 0 {
				return utils.ErrorHandler(c, models.NewValidationError("amount", "amount must be a positive number"))
			}
			patch[key] = amount
		default:
			patch[key] = value
		}
	}
	if len(patch) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "no updatable fields in request",
		})
	}

	if err := h.store.Update(c.Context(), collection, id, patch); err != nil {
		return utils.ErrorHandler(c, err)
	}

	h.log.Info().Str("collection", collection).Str("id", id).Msg("transaction updated")
	return c.JSON(fiber.Map{
		"message": "record updated successfully",
	})
}

// DeleteTransaction removes a record
// DELETE /v1/finance/:side/:id
func (h *FinanceHandler) DeleteTransaction(c fiber.Ctx) error {
	side := c.Params("side")
	collection, ok := sideCollection(side)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "side must be income or expense",
		})
	}

	id := c.Params("id")
	if err := h.store.Delete(c.Context(), collection, id); err != nil {
		return utils.ErrorHandler(c, err)
	}

	h.log.Info().Str("collection", collection).Str("id", id).Msg("transaction deleted")
	return c.JSON(fiber.Map{
		"message": "record deleted successfully",
	})
}
