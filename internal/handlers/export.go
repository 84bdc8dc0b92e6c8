package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/idara-sms/schoolbooks-api/internal/ledger"
	"github.com/idara-sms/schoolbooks-api/internal/models"
	"github.com/idara-sms/schoolbooks-api/internal/report"
	"github.com/idara-sms/schoolbooks-api/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler renders finance and fee reports as CSV/XLSX downloads
type ExportHandler struct {
	ledger *ledger.Service
	store  store.Store
	log    zerolog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(svc *ledger.Service, st store.Store, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{ledger: svc, store: st, log: log}
}

// parseFilters reads the shared filter query parameters. Filters constrain
// the records before rendering; totals come from the filtered subset.
func parseFilters(c fiber.Ctx) (report.Filters, error) {
	var filters report.Filters

	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filters, fmt.Errorf("invalid from date, expected YYYY-MM-DD")
		}
		filters.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filters, fmt.Errorf("invalid to date, expected YYYY-MM-DD")
		}
		filters.To = t
	}
	filters.Category = c.Query("category")

	switch c.Query("type") {
	case "":
	case models.SideIncome:
		filters.Type = "Income"
	case models.SideExpense:
		filters.Type = "Expense"
	default:
		return filters, fmt.Errorf("type must be income or expense")
	}
	return filters, nil
}

func sendDownload(c fiber.Ctx, contentType, filename string, data []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}

// ExportFinanceCSV streams the combined finance report as CSV
// GET /v1/export/finance/csv?from=&to=&category=&type=
func (h *ExportHandler) ExportFinanceCSV(c fiber.Ctx) error {
	filters, err := parseFilters(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	summary, err := h.ledger.Summary(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to compute summary",
		})
	}

	data, err := report.WriteCSV(report.ExportRows(summary, filters))
	if err != nil {
		h.log.Error().Err(err).Msg("csv export failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render export",
		})
	}
	return sendDownload(c, "text/csv", "finance_report.csv", data)
}

// ExportFinanceXLSX streams the combined finance report as a styled workbook
// GET /v1/export/finance/xlsx?from=&to=&category=&type=
func (h *ExportHandler) ExportFinanceXLSX(c fiber.Ctx) error {
	filters, err := parseFilters(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	summary, err := h.ledger.Summary(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to compute summary",
		})
	}

	data, err := report.WriteXLSX("Finance Report", report.ExportRows(summary, filters))
	if err != nil {
		h.log.Error().Err(err).Msg("xlsx export failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render export",
		})
	}
	return sendDownload(c, xlsxContentType, "finance_report.xlsx", data)
}

// ExportSideCSV streams one side's report in the Title-first layout
// GET /v1/export/:side/csv?from=&to=&category=
func (h *ExportHandler) ExportSideCSV(c fiber.Ctx) error {
	side := c.Params("side")
	if _, ok := sideCollection(side); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "side must be income or expense",
		})
	}
	filters, err := parseFilters(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	summary, err := h.ledger.Summary(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to compute summary",
		})
	}

	data, err := report.WriteCSV(report.SideExportRows(summary, side, filters))
	if err != nil {
		h.log.Error().Err(err).Msg("csv export failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render export",
		})
	}
	return sendDownload(c, "text/csv", side+"_report.csv", data)
}

// ExportFeesCSV streams the fee report
// GET /v1/export/fees/csv?status=Paid|Pending
func (h *ExportHandler) ExportFeesCSV(c fiber.Ctx) error {
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
		fees = append(fees, ledger.DecodeFeePayment(doc))
	}

	data, err := report.WriteCSV(report.FeeExportRows(fees, status))
	if err != nil {
		h.log.Error().Err(err).Msg("csv export failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render export",
		})
	}
	return sendDownload(c, "text/csv", "fee_report.csv", data)
}
