package handlers

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/idara-sms/schoolbooks-api/internal/backup"
	"github.com/idara-sms/schoolbooks-api/internal/store"
)

const presignExpiry = 15 * time.Minute

// BackupHandler handles archive download, restore, and off-site copies
type BackupHandler struct {
	service   *backup.Service
	validator *backup.UploadValidator
	archives  *backup.ArchiveStore // nil when S3 is not configured
	log       zerolog.Logger
	now       func() time.Time
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(service *backup.Service, validator *backup.UploadValidator, archives *backup.ArchiveStore, log zerolog.Logger) *BackupHandler {
	return &BackupHandler{
		service:   service,
		validator: validator,
		archives:  archives,
		log:       log,
		now:       time.Now,
	}
}

func validCollection(name string) bool {
	for _, collection := range store.BackupCollections {
		if collection == name {
			return true
		}
	}
	return false
}

// Download streams a full JSON archive of every collection
// GET /v1/backup
func (h *BackupHandler) Download(c fiber.Ctx) error {
	data, err := h.service.DumpJSON(c.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("backup failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "backup failed",
			"details": err.Error(),
		})
	}

	filename := fmt.Sprintf("backup_%d.json", h.now().Unix())
	return sendDownload(c, "application/json", filename, data)
}

// Offsite uploads a fresh archive to S3 and returns a time-limited
// download URL
// POST /v1/backup/offsite
func (h *BackupHandler) Offsite(c fiber.Ctx) error {
	if h.archives == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "off-site storage is not configured",
		})
	}

	data, err := h.service.DumpJSON(c.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("backup failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "backup failed",
			"details": err.Error(),
		})
	}

	key := backup.ArchiveKey(h.now())
	if err := h.archives.Upload(c.Context(), key, data); err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("archive upload failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "archive upload failed",
			"details": err.Error(),
		})
	}

	url, err := h.archives.PresignDownload(c.Context(), key, presignExpiry)
	if err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("presign failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "failed to generate download URL",
		})
	}

	h.log.Info().Str("key", key).Msg("archive uploaded")
	return c.JSON(fiber.Map{
		"key":     key,
		"url":     url,
		"message": "archive uploaded successfully",
	})
}

// Restore accepts an uploaded archive (JSON) or a single-collection CSV
// dump and upserts its documents by id. CSV uploads name their collection
// via the collection query parameter.
// POST /v1/restore
func (h *BackupHandler) Restore(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to open uploaded file",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}

	format, err := h.validator.Validate(data, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	switch format {
	case "JSON":
		if err := h.service.RestoreJSON(c.Context(), bytes.NewReader(data)); err != nil {
			h.log.Error().Err(err).Msg("restore failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "restore failed",
				"details": err.Error(),
			})
		}
		h.log.Info().Str("file", fileHeader.Filename).Msg("archive restored")
		return c.JSON(fiber.Map{
			"message": "backup restored successfully",
		})

	case "CSV":
		collection := c.Query("collection")
		if !validCollection(collection) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "a valid collection query parameter is required for CSV restores",
			})
		}
		count, err := h.service.RestoreCollectionCSV(c.Context(), collection, bytes.NewReader(data))
		if err != nil {
			h.log.Error().Err(err).Str("collection", collection).Msg("restore failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "restore failed",
				"details": err.Error(),
			})
		}
		h.log.Info().Str("collection", collection).Int("count", count).Msg("collection restored")
		return c.JSON(fiber.Map{
			"restored_count": count,
			"message":        fmt.Sprintf("restored %d records into %s", count, collection),
		})

	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unsupported file format",
		})
	}
}

// DownloadCollectionCSV streams one collection as a CSV dump
// GET /v1/backup/collections/:collection/csv
func (h *BackupHandler) DownloadCollectionCSV(c fiber.Ctx) error {
	collection := c.Params("collection")
	if !validCollection(collection) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown collection",
		})
	}

	data, err := h.service.DumpCollectionCSV(c.Context(), collection)
	if err != nil {
		h.log.Error().Err(err).Str("collection", collection).Msg("csv dump failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "export failed",
			"details": err.Error(),
		})
	}
	return sendDownload(c, "text/csv", collection+".csv", data)
}
