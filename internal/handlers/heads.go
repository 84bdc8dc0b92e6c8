package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/idara-sms/schoolbooks-api/internal/heads"
	"github.com/idara-sms/schoolbooks-api/internal/utils"
)

// HeadsHandler handles category head management
type HeadsHandler struct {
	registry *heads.Registry
	log      zerolog.Logger
}

// NewHeadsHandler creates a new heads handler
func NewHeadsHandler(registry *heads.Registry, log zerolog.Logger) *HeadsHandler {
	return &HeadsHandler{registry: registry, log: log}
}

// GetHeads returns heads, optionally filtered by side, alphabetical by name
// GET /v1/heads?type=income|expense
func (h *HeadsHandler) GetHeads(c fiber.Ctx) error {
	list, err := h.registry.List(c.Context(), c.Query("type"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch category heads",
		})
	}
	return c.JSON(fiber.Map{
		"heads": list,
		"count": len(list),
	})
}

// CreateHeadRequest represents the request body for creating a head
type CreateHeadRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CreateHead adds a category head
// POST /v1/heads
func (h *HeadsHandler) CreateHead(c fiber.Ctx) error {
	var req CreateHeadRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	head, err := h.registry.Add(c.Context(), req.Name, req.Type)
	if err != nil {
		return utils.ErrorHandler(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"head":    head,
		"message": "category head created successfully",
	})
}

// DeleteHead removes a head. Existing transactions keep their category
// string; only future dropdowns change.
// DELETE /v1/heads/:id
func (h *HeadsHandler) DeleteHead(c fiber.Ctx) error {
	if err := h.registry.Delete(c.Context(), c.Params("id")); err != nil {
		return utils.ErrorHandler(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "category head deleted successfully",
	})
}
