package handler

import (
	"fmt"
	"net/http"
	"time"

	"contactsync/internal/interchange/model"

	"github.com/labstack/echo/v4"
)

const csvContentType = "text/csv; charset=utf-8"

// GetExport handles GET /contacts/export
func (h *InterchangeHandler) GetExport(c echo.Context) error {
	callerID, err := h.extractCallerID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req model.ExportReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid parameters")
	}
	q, err := req.Validate()
	if err != nil {
		return respondError(c, err)
	}

	data, err := h.Service.Export(c.Request().Context(), callerID, *q)
	if err != nil {
		return respondError(c, err)
	}

	name := "contacts-" + time.Now().UTC().Format("20060102-150405") + ".csv"
	return sendCSV(c, name, data)
}

// GetTemplate handles GET /contacts/import/template
func (h *InterchangeHandler) GetTemplate(c echo.Context) error {
	if _, err := h.extractCallerID(c); err != nil {
		return respondError(c, err)
	}

	data, err := h.Service.Template(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return sendCSV(c, "contacts-import-template.csv", data)
}

func sendCSV(c echo.Context, filename string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, csvContentType, data)
}
