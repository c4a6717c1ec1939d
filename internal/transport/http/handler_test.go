package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/dat2003as/ragAIFullStack/internal/adapter/llm"
	"github.com/dat2003as/ragAIFullStack/internal/config"
	"github.com/dat2003as/ragAIFullStack/internal/fileparse"
	"github.com/dat2003as/ragAIFullStack/internal/prompt"
	"github.com/dat2003as/ragAIFullStack/internal/ratelimit"
	"github.com/dat2003as/ragAIFullStack/internal/service"
	"github.com/dat2003as/ragAIFullStack/internal/store"
)

func newTestHandler(t *testing.T, completer llm.Completer) *Handler {
	t.Helper()
	cfg := &config.Config{
		AppName:            "Context Engine API",
		AppVersion:         "test",
		UploadDir:          t.TempDir(),
		MaxUploadSizeMB:    10,
		MaxImageDimension:  2048,
		ImageQuality:       85,
		MaxCSVRows:         1000,
		ParseWorkers:       2,
		LLMTimeout:         5 * time.Second,
		MaxHistoryMessages: 50,
		SessionTimeout:     30 * time.Minute,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(
		cfg, log,
		store.NewSessionStore(cfg.UploadDir),
		store.NewHistoryStore(),
		completer,
		prompt.New(),
		fileparse.NewImageParser(cfg.MaxUploadSizeMB, cfg.MaxImageDimension, cfg.ImageQuality),
		fileparse.NewCSVParser(cfg.MaxCSVRows, nil),
		fileparse.NewDocumentParser(cfg.MaxUploadSizeMB),
	)
	return NewHandler(cfg, svc)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte(content))
	w.WriteField("session_id", "sess-1")
	w.Close()
	return buf, w.FormDataContentType()
}

func TestChatHandler(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, llm.NewMockClient("the answer"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat",
		strings.NewReader(`{"session_id":"sess-1","message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Chat(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["response"] != "the answer" {
		t.Fatalf("response = %v", body["response"])
	}
}

func TestChatHandlerValidation(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, llm.NewMockClient("ok"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat",
		strings.NewReader(`{"message":"no session"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Chat(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChatHandlerUpstreamError(t *testing.T) {
	e := echo.New()
	mock := llm.NewMockClient("")
	mock.Err = io.ErrUnexpectedEOF
	h := newTestHandler(t, mock)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat",
		strings.NewReader(`{"session_id":"sess-1","message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Chat(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestUploadCSVHandler(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, llm.NewMockClient("ok"))

	buf, contentType := multipartBody(t, "data.csv", "a,b\n1,2\n3,4\n")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload-csv", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.UploadCSV(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["session_id"] != "sess-1" || body["rows"] != float64(2) {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["total_csvs"] != float64(1) {
		t.Fatalf("total_csvs = %v", body["total_csvs"])
	}
}

func TestUploadCSVHandlerMissingFile(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, llm.NewMockClient("ok"))

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	w.WriteField("session_id", "sess-1")
	w.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload-csv", buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.UploadCSV(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadDocumentHandlerBadExtension(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, llm.NewMockClient("ok"))

	buf, contentType := multipartBody(t, "tool.exe", "mz")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload-document", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.UploadDocument(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListAndDeleteFlow(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, llm.NewMockClient("ok"))

	// Upload one document.
	buf, contentType := multipartBody(t, "notes.txt", "some extracted text")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload-document", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	if err := h.UploadDocument(e.NewContext(req, rec)); err != nil {
		t.Fatalf("upload error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	fileID := decodeBody(t, rec)["file_id"].(string)

	// List shows it.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("sess-1")
	if err := h.ListDocuments(c); err != nil {
		t.Fatalf("list error: %v", err)
	}
	if got := decodeBody(t, rec)["count"]; got != float64(1) {
		t.Fatalf("count = %v, want 1", got)
	}

	// Info reports counts and chunking.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("session_id", "file_id")
	c.SetParamValues("sess-1", fileID)
	if err := h.GetDocumentInfo(c); err != nil {
		t.Fatalf("info error: %v", err)
	}
	info := decodeBody(t, rec)
	if info["char_count"] != float64(19) || info["chunk_count"] != float64(1) {
		t.Fatalf("unexpected info: %v", info)
	}

	// Single delete.
	req = httptest.NewRequest(http.MethodDelete, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("session_id", "file_id")
	c.SetParamValues("sess-1", fileID)
	if err := h.DeleteDocument(c); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}

	// Deleting again is a 404.
	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("session_id", "file_id")
	c.SetParamValues("sess-1", fileID)
	if err := h.DeleteDocument(c); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteAllUnknownSession(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, llm.NewMockClient("ok"))

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("missing")
	if err := h.DeleteAllCSVs(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "not_found" || body["count"] != float64(0) {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestDeleteSessionNotFound(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, llm.NewMockClient("ok"))

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("missing")
	if err := h.DeleteSession(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, llm.NewMockClient("ok"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	if err := h.Health(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "healthy" {
		t.Fatalf("status = %v", body["status"])
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	e := echo.New()
	limiter := ratelimit.New(2, time.Minute)
	mw := rateLimitMiddleware(limiter)
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		if err := mw(next)(e.NewContext(req, rec)); err != nil {
			t.Fatalf("middleware error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	if err := mw(next)(e.NewContext(req, rec)); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "2" {
		t.Fatalf("X-RateLimit-Limit = %q", got)
	}

	// A different client is unaffected.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	if err := mw(next)(e.NewContext(req, rec)); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for other client, got %d", rec.Code)
	}
}

func TestUploadDocumentHandlerMultibytePreview(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, llm.NewMockClient("ok"))

	// A leading ASCII byte puts the 200-character preview cap mid-rune if
	// the cut counts bytes.
	buf, contentType := multipartBody(t, "accents.txt", "a"+strings.Repeat("é", 300))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload-document", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	if err := h.UploadDocument(e.NewContext(req, rec)); err != nil {
		t.Fatalf("upload error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	meta := decodeBody(t, rec)["metadata"].(map[string]interface{})
	got := meta["preview"].(string)
	if !utf8.ValidString(got) {
		t.Fatalf("preview is not valid UTF-8: %q", got)
	}
	if want := "a" + strings.Repeat("é", 199) + "..."; got != want {
		t.Fatalf("preview not cut at 200 characters, got %d bytes", len(got))
	}
	if meta["char_count"] != float64(301) {
		t.Fatalf("char_count = %v, want 301", meta["char_count"])
	}
}
