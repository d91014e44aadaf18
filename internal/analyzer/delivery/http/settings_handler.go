package http

import (
	"net/http"
	"time"

	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/internal/analyzer/service"
	"golang-stock-watchlist/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SettingsHandler handles the daily timer and manual runs.
type SettingsHandler struct {
	settingsService service.SettingsService
	trigger         service.AnalysisTrigger
	logger          *logger.Logger
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService service.SettingsService, trigger service.AnalysisTrigger, logger *logger.Logger) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, trigger: trigger, logger: logger}
}

// RegisterRoutes registers the timer routes to the settings group.
func (h *SettingsHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/timer", h.GetTimer)
	g.POST("/timer", h.SetTimer)
}

// RegisterAnalysisRoutes registers the manual trigger to the analysis group.
func (h *SettingsHandler) RegisterAnalysisRoutes(g *echo.Group) {
	g.POST("/trigger", h.TriggerAnalysis)
}

// GetTimer godoc
// @Summary Get the daily timer
// @Tags settings
// @Produce  json
// @Success 200 {object} dto.TimerResponse
// @Router /settings/timer [get]
func (h *SettingsHandler) GetTimer(c echo.Context) error {
	at, next := h.settingsService.GetTimer(c.Request().Context())
	return c.JSON(http.StatusOK, timerResponse(at, next))
}

// SetTimer godoc
// @Summary Set the daily timer
// @Description Reschedule the daily analysis run to a wall-clock time
// @Tags settings
// @Accept  json
// @Produce  json
// @Param   timer  body    dto.TimerRequest   true    "Time as HH:MM"
// @Success 200 {object} dto.TimerResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /settings/timer [post]
func (h *SettingsHandler) SetTimer(c echo.Context) error {
	var req dto.TimerRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request payload")
	}

	ctx := c.Request().Context()
	if _, err := h.settingsService.SetTimer(ctx, req.Time); err != nil {
		return errorJSON(c, statusFor(err), err.Error())
	}
	at, next := h.settingsService.GetTimer(ctx)
	return c.JSON(http.StatusOK, timerResponse(at, next))
}

// TriggerAnalysis godoc
// @Summary Run the analysis now
// @Description Start an analysis run in the background
// @Tags analysis
// @Produce  json
// @Param   X-User-Email  header  string  false  "Requester email"
// @Success 202 {object} dto.MessageResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /analysis/trigger [post]
func (h *SettingsHandler) TriggerAnalysis(c echo.Context) error {
	requestedBy := ownerFrom(c)
	if requestedBy == "" {
		requestedBy = "guest"
	}
	if err := h.trigger.Trigger(c.Request().Context(), requestedBy); err != nil {
		h.logger.Error("Failed to trigger analysis", logger.ErrorField(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to trigger analysis")
	}
	return c.JSON(http.StatusAccepted, dto.MessageResponse{Message: "Analysis started"})
}

func timerResponse(at string, next time.Time) dto.TimerResponse {
	resp := dto.TimerResponse{Time: at}
	if !next.IsZero() {
		resp.NextRun = next.Format(time.RFC3339)
	}
	return resp
}
