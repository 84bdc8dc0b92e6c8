package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/idara-sms/schoolbooks-api/internal/store"
	"github.com/idara-sms/schoolbooks-api/internal/utils"
)

// UsersHandler syncs Clerk users into the users collection. Documents are
// keyed by the Clerk user id so webhook upserts stay idempotent.
type UsersHandler struct {
	store store.Store
	log   zerolog.Logger
}

func NewUsersHandler(st store.Store, log zerolog.Logger) *UsersHandler {
	return &UsersHandler{store: st, log: log}
}

type SyncUserRequest struct {
	ClerkUserID string `json:"clerk_user_id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Role        string `json:"role"`
}

// SyncUser upserts a user record (called by Clerk webhook)
// POST /v1/users/sync
func (h *UsersHandler) SyncUser(c fiber.Ctx) error {
	var req SyncUserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ClerkUserID == "" || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "clerk_user_id and email are required",
		})
	}
	role := req.Role
	if role == "" {
		role = "user"
	}

	doc := store.Document{
		"clerk_user_id": req.ClerkUserID,
		"email":         req.Email,
		"full_name":     req.FullName,
		"role":          role,
		"updated_at":    time.Now(),
	}
	if err := h.store.Put(c.Context(), store.Users, req.ClerkUserID, doc); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to sync user",
			"details": err.Error(),
		})
	}

	h.log.Info().Str("clerk_user_id", req.ClerkUserID).Msg("user synced")
	doc["id"] = req.ClerkUserID
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// GetMe retrieves the authenticated user's record
// GET /v1/users/me
func (h *UsersHandler) GetMe(c fiber.Ctx) error {
	clerkUserID, ok := c.Locals("clerk_user_id").(string)
	if !ok || clerkUserID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized - user not authenticated",
		})
	}

	doc, err := h.store.Get(c.Context(), store.Users, clerkUserID)
	if err != nil {
		return utils.ErrorHandler(c, err)
	}
	return c.JSON(doc)
}
