package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/growlify/growlify-api/internal/domain"
	"github.com/growlify/growlify-api/internal/middleware"
	"github.com/growlify/growlify-api/internal/service"
)

const exportFilename = "growlify-lancamentos.csv"

// ReportHandler handles summary and export HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) reportRange(c echo.Context) (service.ReportRange, error) {
	from, to, err := reportRangeQuery(c)
	if err != nil {
		return service.ReportRange{}, err
	}
	return service.ReportRange{From: from, To: to}, nil
}

// GetSummary handles GET /api/v1/reports/summary
func (h *ReportHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)

	rng, err := h.reportRange(c)
	if err != nil {
		return handleCommonError(c, err, "Failed to parse report range")
	}

	summary, err := h.reportService.Summary(c.Request().Context(), userID, rng)
	if err != nil {
		return handleCommonError(c, err, "Failed to build summary")
	}
	return c.JSON(http.StatusOK, summary)
}

// ExportCSV handles GET /api/v1/reports/export.csv
func (h *ReportHandler) ExportCSV(c echo.Context) error {
	userID := middleware.GetUserID(c)

	rng, err := h.reportRange(c)
	if err != nil {
		return handleCommonError(c, err, "Failed to parse report range")
	}

	data, err := h.reportService.ExportCSV(c.Request().Context(), userID, rng)
	if err != nil {
		return handleCommonError(c, err, "Failed to export transactions")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+exportFilename+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ArchiveExport handles POST /api/v1/reports/export/archive
func (h *ReportHandler) ArchiveExport(c echo.Context) error {
	userID := middleware.GetUserID(c)

	rng, err := h.reportRange(c)
	if err != nil {
		return handleCommonError(c, err, "Failed to parse report range")
	}

	archived, err := h.reportService.ArchiveExport(c.Request().Context(), userID, rng)
	if err != nil {
		if errors.Is(err, domain.ErrStorageNotConfigured) {
			return NewServiceUnavailableError(c)
		}
		return handleCommonError(c, err, "Failed to archive export")
	}

	return c.JSON(http.StatusCreated, archived)
}
