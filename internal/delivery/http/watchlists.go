package http

import (
	"net/http"
	"wise-investing/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupWatchlists(base *echo.Group) {
	v1 := base.Group("/v1/watchlists")
	{
		v1.GET("", h.GetWatchlists)
		v1.POST("", h.CreateWatchlist)
	}
}

func (h *HttpAPIHandler) GetWatchlists(c echo.Context) error {
	watchlists, err := h.service.WatchlistService.GetWatchlists(c.Request().Context(), h.userEmail(c))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Watchlists fetched", watchlists))
}

func (h *HttpAPIHandler) CreateWatchlist(c echo.Context) error {
	req := new(dto.CreateWatchlistRequest)
	if resp := h.bindAndValidate(c, req); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	watchlist, err := h.service.WatchlistService.CreateWatchlist(c.Request().Context(), h.userEmail(c), *req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "Watchlist created", watchlist))
}
