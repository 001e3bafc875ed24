package http

import (
	"net/http"
	"wise-investing/internal/dto"
	"wise-investing/internal/model"
	"wise-investing/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupAlerts(base *echo.Group) {
	auth := middleware.NewBearerAuthMiddleware(h.cfg.Alert.CronAPIKey)

	base.GET("/v1/alerts/check", h.CheckAlerts, auth)
	// path used by existing cron configurations
	base.GET("/sendNotification", h.CheckAlerts, auth)
}

// CheckAlerts runs one alert pass. Any outcome other than an aborted pass is a 200.
func (h *HttpAPIHandler) CheckAlerts(c echo.Context) error {
	result, err := h.service.AlertService.RunAlertPass(c.Request().Context(), model.AlertRunTriggerHTTP)
	if err != nil {
		response := dto.NewErrorResponse(http.StatusInternalServerError, err.Error())
		return c.JSON(response.Code, response)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", result))
}
