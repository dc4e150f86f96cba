package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"strings"

	"contactsync/internal/interchange/model"
	"contactsync/internal/interchange/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
)

type MockInterchangeService struct {
	mock.Mock
}

func (m *MockInterchangeService) Import(ctx context.Context, userID string, in service.ImportInput) (*model.ImportReport, error) {
	args := m.Called(ctx, userID, in)
	if r := args.Get(0); r != nil {
		return r.(*model.ImportReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInterchangeService) Preview(ctx context.Context, userID string, in service.ImportInput) (*model.ImportReport, error) {
	args := m.Called(ctx, userID, in)
	if r := args.Get(0); r != nil {
		return r.(*model.ImportReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInterchangeService) Export(ctx context.Context, userID string, q model.ExportQuery) ([]byte, error) {
	args := m.Called(ctx, userID, q)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInterchangeService) Template(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInterchangeService) Stats(ctx context.Context, userID string) (*model.ImportStats, error) {
	args := m.Called(ctx, userID)
	if s := args.Get(0); s != nil {
		return s.(*model.ImportStats), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInterchangeService) History(ctx context.Context, userID string, req model.ListImportHistoryReq) (*model.ListImportHistoryResp, error) {
	args := m.Called(ctx, userID, req)
	if r := args.Get(0); r != nil {
		return r.(*model.ListImportHistoryResp), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInterchangeService) CleanupDuplicates(ctx context.Context, userID string, req model.CleanupReq) (*model.CleanupResult, error) {
	args := m.Called(ctx, userID, req)
	if r := args.Get(0); r != nil {
		return r.(*model.CleanupResult), args.Error(1)
	}
	return nil, args.Error(1)
}

// SetupServer registers the handler on a bare echo instance with the same
// paths as the router.
func SetupServer(svc service.InterchangeService, maxUploadBytes int64) *echo.Echo {
	e := echo.New()
	h := NewInterchangeHandler(svc, maxUploadBytes)

	g := e.Group("/api/v1/contacts", RequestIDMiddleware)
	g.POST("/import", h.PostImport)
	g.POST("/import/preview", h.PostImportPreview)
	g.GET("/import/template", h.GetTemplate)
	g.GET("/import/stats", h.GetImportStats)
	g.GET("/import/history", h.GetImportHistory)
	g.GET("/export", h.GetExport)
	g.POST("/cleanup-duplicates", h.PostCleanupDuplicates)
	e.GET("/health", HealthCheck)
	return e
}

func PerformRequest(e *echo.Echo, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var bodyReader io.Reader = strings.NewReader("")
	if body != nil {
		b, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type upload struct {
	filename    string
	contentType string
	content     []byte
	fields      map[string]string
}

func PerformUpload(e *echo.Echo, path string, up upload, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range up.fields {
		_ = w.WriteField(k, v)
	}
	if up.filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+up.filename+`"`)
		ct := up.contentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, _ := w.CreatePart(h)
		_, _ = part.Write(up.content)
	}
	_ = w.Close()

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(body []byte) model.ErrorDetail {
	var resp model.ErrorResponse
	_ = json.Unmarshal(body, &resp)
	return resp.Error
}
