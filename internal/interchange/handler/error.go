package handler

import (
	"errors"
	"net/http"

	"contactsync/internal/interchange/csvcodec"
	"contactsync/internal/interchange/model"
	"contactsync/internal/interchange/service"

	"github.com/labstack/echo/v4"
)

// Helper to map errors to HTTP status and body
func httpError(err error) (int, model.ErrorResponse) {
	var code string
	var msg string
	var status int

	var detail *model.ErrorDetail
	switch {
	case errors.As(err, &detail):
		return http.StatusBadRequest, model.ErrorResponse{Error: *detail}
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
		code = "unauthorized"
		msg = "Unauthorized"
	case errors.Is(err, service.ErrUnsupportedFileType):
		status = http.StatusUnsupportedMediaType
		code = "unsupported_file_type"
		msg = "Only CSV files are accepted"
	case errors.Is(err, csvcodec.ErrFileTooLarge):
		status = http.StatusRequestEntityTooLarge
		code = "file_too_large"
		msg = "File exceeds the upload limit"
	case errors.Is(err, csvcodec.ErrTooManyRows):
		status = http.StatusUnprocessableEntity
		code = "too_many_rows"
		msg = err.Error()
	case errors.Is(err, csvcodec.ErrEmptyFile):
		status = http.StatusBadRequest
		code = "empty_file"
		msg = "File is empty or has no header row"
	case errors.Is(err, csvcodec.ErrMalformedCSV):
		status = http.StatusBadRequest
		code = "malformed_csv"
		msg = err.Error()
	case errors.Is(err, service.ErrBadRequest):
		status = http.StatusBadRequest
		code = "bad_request"
		msg = err.Error()
	default:
		status = http.StatusInternalServerError
		code = "internal_error"
		msg = "Internal server error"
	}

	return status, model.ErrorResponse{
		Error: model.ErrorDetail{Code: code, Message: msg},
	}
}

// respondError writes the error body, stamped with the request id.
func respondError(c echo.Context, err error) error {
	status, body := httpError(err)
	if status == http.StatusInternalServerError {
		loggerFor(c).Error("request failed", "error", err)
	}
	body.Error.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)
	return c.JSON(status, body)
}

func badRequest(c echo.Context, msg string) error {
	return respondError(c, &model.ErrorDetail{Code: "bad_request", Message: msg})
}
