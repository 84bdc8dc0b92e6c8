package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/idara-sms/schoolbooks-api/internal/ledger"
	"github.com/idara-sms/schoolbooks-api/internal/models"
	"github.com/idara-sms/schoolbooks-api/internal/store"
	"github.com/idara-sms/schoolbooks-api/internal/utils"
)

// FeesHandler handles fee payment records
type FeesHandler struct {
	store store.Store
	log   zerolog.Logger
}

// NewFeesHandler creates a new fees handler
func NewFeesHandler(st store.Store, log zerolog.Logger) *FeesHandler {
	return &FeesHandler{store: st, log: log}
}

// GetFees returns fee payments, optionally filtered by status
// GET /v1/fees?status=Paid|Pending
func (h *FeesHandler) GetFees(c fiber.Ctx) error {
	status := c.Query("status")
	if status != "" && status != models.FeeStatusPaid && status != models.FeeStatusPending {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "status must be Paid or Pending",
		})
	}

	docs, err := h.store.List(c.Context(), store.Fees, store.ListOptions{})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch fee payments",
		})
	}

	fees := make([]models.FeePayment, 0, len(docs))
	for _, doc := range docs {
		fee := ledger.DecodeFeePayment(doc)
		if status != "" && fee.Status != status {
			continue
		}
		fees = append(fees, fee)
	}

	return c.JSON(fiber.Map{
		"fees":  fees,
		"count": len(fees),
	})
}

// FeeRequest is the write payload for a fee payment record
type FeeRequest struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	RollNumber  string `json:"roll_number"`
	FeeType     string `json:"fee_type"`
	Month       string `json:"month"`
	Year        string `json:"year"`
	Amount      any    `json:"amount"`
	Status      string `json:"status"`
	Date        string `json:"date"`
}

// CreateFee records a fee payment
// POST /v1/fees
func (h *FeesHandler) CreateFee(c fiber.Ctx) error {
	var req FeeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.StudentName == "" {
		return utils.ErrorHandler(c, models.NewValidationError("student_name", "student name is required"))
	}
	amount := ledger.NormalizeAmount(req.Amount)
	if amount <= 0 {
		return utils.ErrorHandler(c, models.NewValidationError("amount", "amount must be a positive number"))
	}
	status := req.Status
	if status == "" {
		status = models.FeeStatusPaid
	}
	if status != models.FeeStatusPaid && status != models.FeeStatusPending {
		return utils.ErrorHandler(c, models.NewValidationError("status", "status must be Paid or Pending"))
	}
	date := req.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	doc := store.Document{
		"student_id":   req.StudentID,
		"student_name": req.StudentName,
		"roll_number":  req.RollNumber,
		"fee_type":     req.FeeType,
		"month":        req.Month,
		"year":         req.Year,
		"amount":       amount,
		"status":       status,
		"date":         date,
		"created_at":   time.Now(),
	}

	id, err := h.store.Create(c.Context(), store.Fees, doc)
	if err != nil {
		h.log.Error().Err(err).Msg("fee write failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "failed to save fee payment",
			"details": err.Error(),
		})
	}

	h.log.Info().Str("id", id).Str("student", req.StudentName).Msg("fee payment recorded")
	doc["id"] = id
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"fee":     doc,
		"message": "fee payment saved successfully",
	})
}

// UpdateFee merges changed fields into a fee payment, typically flipping
// status from Pending to Paid
// PUT /v1/fees/:id
func (h *FeesHandler) UpdateFee(c fiber.Ctx) error {
	// Ids are opaque strings; unknown ids come back as not-found from the
	// store, matching Delete.
	id := c.Params("id")

	var body map[string]any
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	patch := store.Document{}
	for _, key := range []string{"student_name", "roll_number", "fee_type", "month", "year", "amount", "status", "date"} {
		value, present := body[key]
		if !present {
			continue
		}
		switch key {
		case "amount":
			amount := ledger.NormalizeAmount(value)
			if amount <= 0 {
				return utils.ErrorHandler(c, models.NewValidationError("amount", "amount must be a positive number"))
			}
			patch[key] = amount
		case "status":
			status, _ := value.(string)
			if status != models.FeeStatusPaid && status != models.FeeStatusPending {
				return utils.ErrorHandler(c, models.NewValidationError("status", "status must be Paid or Pending"))
			}
			patch[key] = status
		default:
			patch[key] = value
		}
	}
	if len(patch) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "no updatable fields in request",
		})
	}

	if err := h.store.Update(c.Context(), store.Fees, id, patch); err != nil {
		return utils.ErrorHandler(c, err)
	}

	h.log.Info().Str("id", id).Msg("fee payment updated")
	return c.JSON(fiber.Map{
		"message": "fee payment updated successfully",
	})
}

// DeleteFee removes a fee payment record
// DELETE /v1/fees/:id
func (h *FeesHandler) DeleteFee(c fiber.Ctx) error {
	id := c.Params("id")
	if err := h.store.Delete(c.Context(), store.Fees, id); err != nil {
		return utils.ErrorHandler(c, err)
	}

	h.log.Info().Str("id", id).Msg("fee payment deleted")
	return c.JSON(fiber.Map{
		"message": "fee payment deleted successfully",
	})
}
