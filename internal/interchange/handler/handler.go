package handler

import (
	"net/http"

	"contactsync/internal/interchange/csvcodec"
	"contactsync/internal/interchange/model"
	"contactsync/internal/interchange/service"

	"github.com/labstack/echo/v4"
)

type InterchangeHandler struct {
	Service service.InterchangeService

	// MaxUploadBytes bounds the multipart file part.
	MaxUploadBytes int64
}

func NewInterchangeHandler(s service.InterchangeService, maxUploadBytes int64) *InterchangeHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = csvcodec.DefaultMaxBytes
	}
	return &InterchangeHandler{Service: s, MaxUploadBytes: maxUploadBytes}
}

func (h *InterchangeHandler) extractCallerID(c echo.Context) (string, error) {
	callerID := c.Request().Header.Get("x-user-id")
	if callerID == "" {
		return "", service.ErrUnauthorized
	}
	return callerID, nil
}

// GetImportStats handles GET /contacts/import/stats
func (h *InterchangeHandler) GetImportStats(c echo.Context) error {
	callerID, err := h.extractCallerID(c)
	if err != nil {
		return respondError(c, err)
	}

	stats, err := h.Service.Stats(c.Request().Context(), callerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// GetImportHistory handles GET /contacts/import/history
func (h *InterchangeHandler) GetImportHistory(c echo.Context) error {
	callerID, err := h.extractCallerID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req model.ListImportHistoryReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid parameters")
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	resp, err := h.Service.History(c.Request().Context(), callerID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// PostCleanupDuplicates handles POST /contacts/cleanup-duplicates
func (h *InterchangeHandler) PostCleanupDuplicates(c echo.Context) error {
	callerID, err := h.extractCallerID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req model.CleanupReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid body")
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	result, err := h.Service.CleanupDuplicates(c.Request().Context(), callerID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
