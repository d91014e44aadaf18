package http

import (
	"net/http"
	"strings"

	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/internal/analyzer/service"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/symbol"

	"github.com/labstack/echo/v4"
)

// StockHandler handles HTTP requests for the watchlist.
type StockHandler struct {
	watchlistService service.WatchlistService
	intradayResolver service.IntradayResolver
	logger           *logger.Logger
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(watchlistService service.WatchlistService, intradayResolver service.IntradayResolver, logger *logger.Logger) *StockHandler {
	return &StockHandler{
		watchlistService: watchlistService,
		intradayResolver: intradayResolver,
		logger:           logger,
	}
}

// RegisterRoutes registers the stock routes to the Echo group.
func (h *StockHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListStocks)
	g.POST("", h.AddStock)
	g.DELETE("/:symbol", h.RemoveStock)
	g.GET("/:symbol/chart", h.GetChart)
}

// ListStocks godoc
// @Summary List watchlist stocks
// @Description List the caller's watchlist; without an identity the shared guest list is returned
// @Tags stocks
// @Produce  json
// @Param   X-User-Email  header  string  false  "Owner email"
// @Success 200 {array} entity.Stock
// @Router /stocks [get]
func (h *StockHandler) ListStocks(c echo.Context) error {
	return c.JSON(http.StatusOK, h.watchlistService.List(c.Request().Context(), ownerFrom(c)))
}

// AddStock godoc
// @Summary Add a stock
// @Description Add a stock to the caller's watchlist, resolving its display name when none is given
// @Tags stocks
// @Accept  json
// @Produce  json
// @Param   X-User-Email  header  string  false  "Owner email"
// @Param   stock  body    dto.AddStockRequest   true    "Stock to add"
// @Success 201 {object} entity.Stock
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stocks [post]
func (h *StockHandler) AddStock(c echo.Context) error {
	var req dto.AddStockRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request payload")
	}

	stock, err := h.watchlistService.Add(c.Request().Context(), ownerFrom(c), req)
	if err != nil {
		return errorJSON(c, statusFor(err), err.Error())
	}
	return c.JSON(http.StatusCreated, stock)
}

// RemoveStock godoc
// @Summary Remove a stock
// @Description Remove a stock from the caller's watchlist. Removing an absent stock also succeeds
// @Tags stocks
// @Produce  json
// @Param   X-User-Email  header  string  false  "Owner email"
// @Param   symbol  path    string  true   "Stock symbol"
// @Param   market  query   string  false  "Market (US, HK, SH, SZ)"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stocks/{symbol} [delete]
func (h *StockHandler) RemoveStock(c echo.Context) error {
	sym := c.Param("symbol")
	if err := h.watchlistService.Remove(c.Request().Context(), ownerFrom(c), sym, c.QueryParam("market")); err != nil {
		return errorJSON(c, statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Stock removed"})
}

// GetChart godoc
// @Summary Intraday chart
// @Description Intraday price series of a stock. The market defaults to the watchlist entry's market
// @Tags stocks
// @Produce  json
// @Param   X-User-Email  header  string  false  "Owner email"
// @Param   symbol  path    string  true   "Stock symbol"
// @Param   market  query   string  false  "Market (US, HK, SH, SZ)"
// @Success 200 {object} dto.ChartResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /stocks/{symbol}/chart [get]
func (h *StockHandler) GetChart(c echo.Context) error {
	ctx := c.Request().Context()
	sym := strings.TrimSpace(c.Param("symbol"))
	if sym == "" {
		return errorJSON(c, http.StatusBadRequest, service.ErrInvalidSymbol.Error())
	}

	var canonical symbol.Canonical
	if raw := c.QueryParam("market"); raw != "" {
		market, err := symbol.ParseMarket(raw)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, err.Error())
		}
		canonical = symbol.Normalize(sym, market)
	} else {
		found := false
		for _, st := range h.watchlistService.List(ctx, ownerFrom(c)) {
			if strings.EqualFold(st.Symbol, sym) || st.Canonical() == symbol.Normalize(sym, st.Market) {
				canonical, found = st.Canonical(), true
				break
			}
		}
		if !found {
			return errorJSON(c, http.StatusBadRequest, "market is required for stocks outside the watchlist")
		}
	}

	return c.JSON(http.StatusOK, dto.ChartResponse{
		Symbol: canonical.Symbol,
		Market: canonical.Market.String(),
		Points: h.intradayResolver.Resolve(ctx, canonical),
	})
}
