package http

import (
	"net/http"
	"strconv"
	"wise-investing/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupStocks(base *echo.Group) {
	v1 := base.Group("/v1/stocks")
	{
		v1.GET("/summary", h.GetStockSummary)
		v1.POST("", h.AddStock)
		v1.POST("/move", h.MoveStocks)
		v1.PATCH("/:id", h.UpdateStock)
		v1.DELETE("/:id", h.RemoveStock)
	}
}

func stockIDParam(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (h *HttpAPIHandler) GetStockSummary(c echo.Context) error {
	summary, err := h.service.WatchlistService.GetSummary(c.Request().Context(), h.userEmail(c))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Summary fetched", summary))
}

func (h *HttpAPIHandler) AddStock(c echo.Context) error {
	req := new(dto.AddStockRequest)
	if resp := h.bindAndValidate(c, req); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	stock, err := h.service.WatchlistService.AddStock(c.Request().Context(), h.userEmail(c), *req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "Stock added", stock))
}

func (h *HttpAPIHandler) UpdateStock(c echo.Context) error {
	id, ok := stockIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid stock id"))
	}

	req := new(dto.UpdateStockRequest)
	if resp := h.bindAndValidate(c, req); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	if err := h.service.WatchlistService.UpdateStock(c.Request().Context(), h.userEmail(c), id, *req); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Stock updated", nil))
}

func (h *HttpAPIHandler) RemoveStock(c echo.Context) error {
	id, ok := stockIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid stock id"))
	}

	if err := h.service.WatchlistService.RemoveStock(c.Request().Context(), h.userEmail(c), id); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Stock removed", nil))
}

func (h *HttpAPIHandler) MoveStocks(c echo.Context) error {
	req := new(dto.MoveStocksRequest)
	if resp := h.bindAndValidate(c, req); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	if err := h.service.WatchlistService.MoveStocks(c.Request().Context(), h.userEmail(c), *req); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Stocks moved", nil))
}
