package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestNewBearerAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		header     string
		wantStatus int
	}{
		{name: "valid token", secret: "cron-key", header: "Bearer cron-key", wantStatus: http.StatusOK},
		{name: "wrong token", secret: "cron-key", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "missing header", secret: "cron-key", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", secret: "cron-key", header: "Basic cron-key", wantStatus: http.StatusUnauthorized},
		{name: "empty secret rejects", secret: "", header: "Bearer ", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			called := false
			e.GET("/check", func(c echo.Context) error {
				called = true
				return c.String(http.StatusOK, "OK")
			}, NewBearerAuthMiddleware(tt.secret))

			req := httptest.NewRequest(http.MethodGet, "/check", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, called)
		})
	}
}
