package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/idara-sms/schoolbooks-api/internal/ai"
)

// AIHandler exposes the assistant: chat, analyst reports, data entry
type AIHandler struct {
	assistant *ai.Assistant
	provider  *ai.ContextProvider
	log       zerolog.Logger
}

// NewAIHandler creates a new AI handler
func NewAIHandler(assistant *ai.Assistant, provider *ai.ContextProvider, log zerolog.Logger) *AIHandler {
	return &AIHandler{assistant: assistant, provider: provider, log: log}
}

// ChatRequest represents the request body for a chat message
type ChatRequest struct {
	Message string `json:"message"`
	Context string `json:"context"`
}

// Chat answers a free-form question about running the school
// POST /v1/ai/chat
func (h *AIHandler) Chat(c fiber.Ctx) error {
	var req ChatRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "message is required",
		})
	}

	reply, err := h.assistant.Chat(c.Context(), req.Message, req.Context)
	if err != nil {
		h.log.Error().Err(err).Msg("chat generation failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "assistant is unavailable",
			"details": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"reply": reply,
	})
}

// ReportRequest represents the request body for an analyst report
type ReportRequest struct {
	ReportType string `json:"report_type"`
	FocusArea  string `json:"focus_area"`
}

// GenerateReport produces a markdown analyst report over the cached data
// snapshot. The snapshot may be up to five minutes stale.
// POST /v1/ai/report
func (h *AIHandler) GenerateReport(c fiber.Ctx) error {
	var req ReportRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.ReportType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "report_type is required",
		})
	}
	if req.FocusArea == "" {
		req.FocusArea = "overall school performance"
	}

	markdown, err := h.assistant.AnalystReport(c.Context(), req.ReportType, req.FocusArea)
	if err != nil {
		h.log.Error().Err(err).Str("report_type", req.ReportType).Msg("report generation failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "report generation failed",
			"details": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"report": markdown,
	})
}

// ExtractRequest represents the request body for data-entry extraction
type ExtractRequest struct {
	Text string `json:"text"`
}

// ExtractEntry turns free text into a structured record proposal. Nothing
// is written; the client confirms before saving.
// POST /v1/ai/extract
func (h *AIHandler) ExtractEntry(c fiber.Ctx) error {
	var req ExtractRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "text is required",
		})
	}

	entry, err := h.assistant.ExtractEntry(c.Context(), req.Text)
	if err != nil {
		h.log.Error().Err(err).Msg("extraction failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "extraction failed",
			"details": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"intent": entry.Intent,
		"data":   entry.Data,
	})
}

// RefreshContext drops the cached data snapshot so the next AI call sees
// fresh numbers
// POST /v1/ai/context/refresh
func (h *AIHandler) RefreshContext(c fiber.Ctx) error {
	h.provider.Invalidate()
	return c.JSON(fiber.Map{
		"message": "context cache invalidated",
	})
}
