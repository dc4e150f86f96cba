package handler

import (
	"log/slog"

	"contactsync/internal/interchange/util"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDMiddleware echoes or generates X-Request-ID and attaches a logger
// carrying it to the request context.
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := c.Request().Header.Get(echo.HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Response().Header().Set(echo.HeaderXRequestID, reqID)

		logger := util.GetLogger().With("request_id", reqID)
		ctx := util.WithLogger(c.Request().Context(), logger)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func loggerFor(c echo.Context) *slog.Logger {
	return util.FromContext(c.Request().Context())
}
