package handler

import (
	"bufio"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"contactsync/internal/interchange/csvcodec"
	"contactsync/internal/interchange/model"
	"contactsync/internal/interchange/service"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
)

const sniffLen = 512

var acceptedUploadTypes = map[string]bool{
	"text/csv":                 true,
	"text/plain":               true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
}

// PostImport handles POST /contacts/import
func (h *InterchangeHandler) PostImport(c echo.Context) error {
	return h.handleImport(c, false)
}

// PostImportPreview handles POST /contacts/import/preview
func (h *InterchangeHandler) PostImportPreview(c echo.Context) error {
	return h.handleImport(c, true)
}

func (h *InterchangeHandler) handleImport(c echo.Context, preview bool) error {
	callerID, err := h.extractCallerID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req model.ImportReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid form")
	}
	policy, err := req.ToPolicy()
	if err != nil {
		return respondError(c, err)
	}
	delimiter, err := req.ParsedDelimiter()
	if err != nil {
		return respondError(c, err)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "Multipart field 'file' is required")
	}
	body, closeFn, err := h.openUpload(fh)
	if err != nil {
		return respondError(c, err)
	}
	defer closeFn()

	in := service.ImportInput{
		FileName:  filepath.Base(fh.Filename),
		Body:      body,
		Policy:    policy,
		Delimiter: delimiter,
	}

	var report *model.ImportReport
	if preview {
		report, err = h.Service.Preview(c.Request().Context(), callerID, in)
	} else {
		report, err = h.Service.Import(c.Request().Context(), callerID, in)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// openUpload applies the upload gate: the part must be within the size limit,
// be named *.csv or declared as a CSV-compatible type, and sniff as text.
func (h *InterchangeHandler) openUpload(fh *multipart.FileHeader) (io.Reader, func(), error) {
	if fh.Size > h.MaxUploadBytes {
		return nil, nil, csvcodec.ErrFileTooLarge
	}
	if !declaredAsCSV(fh) {
		return nil, nil, service.ErrUnsupportedFileType
	}

	src, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = src.Close() }

	br := bufio.NewReader(src)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		closeFn()
		return nil, nil, err
	}
	if len(head) > 0 && !isText(mimetype.Detect(head)) {
		closeFn()
		return nil, nil, service.ErrUnsupportedFileType
	}
	return br, closeFn, nil
}

func declaredAsCSV(fh *multipart.FileHeader) bool {
	if strings.EqualFold(filepath.Ext(fh.Filename), ".csv") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(fh.Header.Get(echo.HeaderContentType))
	if err != nil {
		return false
	}
	return acceptedUploadTypes[strings.ToLower(mediaType)]
}

// isText walks the detected type up to its root; csv, tsv and charset
// variants all descend from text/plain.
func isText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
