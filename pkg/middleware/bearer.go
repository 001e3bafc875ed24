package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// NewBearerAuthMiddleware accepts only requests carrying "Authorization: Bearer <secret>".
// An empty secret rejects every request.
func NewBearerAuthMiddleware(secret string) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(key string, c echo.Context) (bool, error) {
			if secret == "" {
				return false, nil
			}
			return subtle.ConstantTimeCompare([]byte(key), []byte(secret)) == 1, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return c.JSON(http.StatusUnauthorized, Response{
				Status:  http.StatusUnauthorized,
				Message: "Unauthorized",
			})
		},
	})
}
