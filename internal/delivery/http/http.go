package http

import (
	"errors"
	"net/http"
	"strings"
	"wise-investing/config"
	"wise-investing/internal/dto"
	"wise-investing/internal/service"
	"wise-investing/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type HttpAPIHandler struct {
	cfg       *config.Config
	log       *logger.Logger
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
}

func NewHttpAPIHandler(cfg *config.Config, log *logger.Logger, echo *echo.Echo, validator *goValidator.Validate, service *service.Service) *HttpAPIHandler {
	return &HttpAPIHandler{
		cfg:       cfg,
		log:       log,
		echo:      echo,
		validator: validator,
		service:   service,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	base := h.echo.Group("/api")
	h.SetupAlerts(base)
	h.SetupWatchlists(base)
	h.SetupStocks(base)
}

// userEmail reads the identity set by the upstream authentication layer.
func (h *HttpAPIHandler) userEmail(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get(h.cfg.API.UserEmailHeader))
}

// bindAndValidate returns a response to send back when req is unusable.
func (h *HttpAPIHandler) bindAndValidate(c echo.Context, req interface{}) *dto.BaseResponse {
	if err := c.Bind(req); err != nil {
		return dto.NewBadRequestResponse("invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return dto.NewBadRequestResponse(err.Error())
	}
	return nil
}

func (h *HttpAPIHandler) errorResponse(c echo.Context, err error) error {
	code := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, dto.ErrValidation):
		code, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, dto.ErrUnauthorized):
		code, message = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, dto.ErrNotFound):
		code, message = http.StatusNotFound, err.Error()
	default:
		h.log.ErrorContext(c.Request().Context(), "Request failed",
			logger.ErrorField(err),
			logger.StringField("path", c.Path()),
			logger.StringField("method", c.Request().Method))
	}
	return c.JSON(code, dto.NewErrorResponse(code, message))
}
