package http

import (
	"net/http"

	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/internal/analyzer/service"
	"golang-stock-watchlist/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ReportHandler handles HTTP requests for analysis reports.
type ReportHandler struct {
	reportService service.ReportService
	logger        *logger.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService, logger *logger.Logger) *ReportHandler {
	return &ReportHandler{reportService: reportService, logger: logger}
}

// RegisterRoutes registers the report routes to the Echo group.
func (h *ReportHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListReports)
}

// ListReports godoc
// @Summary List reports
// @Description List the caller's analysis reports, newest first
// @Tags reports
// @Produce  json
// @Param   X-User-Email  header  string  false  "Owner email"
// @Param   date_filter  query  string  false  "today (default), yesterday or all"
// @Success 200 {object} dto.ReportListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /reports [get]
func (h *ReportHandler) ListReports(c echo.Context) error {
	filter, err := service.ParseDateFilter(c.QueryParam("date_filter"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	reports := h.reportService.List(c.Request().Context(), ownerFrom(c), filter)
	return c.JSON(http.StatusOK, dto.ReportListResponse{Reports: reports})
}
