package router

import (
	"strconv"

	"contactsync/internal/interchange/handler"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// multipartOverhead leaves room for form fields and part headers on top of
// the file itself.
const multipartOverhead = 64 << 10

func RegisterRoutes(e *echo.Echo, h *handler.InterchangeHandler) {
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{echo.GET, echo.POST, echo.OPTIONS},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "x-user-id"},
		ExposeHeaders: []string{echo.HeaderContentDisposition, echo.HeaderXRequestID},
	}))

	// Health Check
	e.GET("/health", handler.HealthCheck)

	v1 := e.Group("/api/v1")
	v1.Use(handler.RequestIDMiddleware)

	contacts := v1.Group("/contacts")

	// Uploads get a body ceiling; the file part is checked again in the handler
	limit := middleware.BodyLimit(strconv.FormatInt(h.MaxUploadBytes+multipartOverhead, 10) + "B")
	contacts.POST("/import", h.PostImport, limit)
	contacts.POST("/import/preview", h.PostImportPreview, limit)

	contacts.GET("/import/template", h.GetTemplate)
	contacts.GET("/import/stats", h.GetImportStats)
	contacts.GET("/import/history", h.GetImportHistory)
	contacts.GET("/export", h.GetExport)
	contacts.POST("/cleanup-duplicates", h.PostCleanupDuplicates)
}
