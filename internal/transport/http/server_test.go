package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dat2003as/ragAIFullStack/internal/adapter/llm"
	"github.com/dat2003as/ragAIFullStack/internal/config"
	"github.com/dat2003as/ragAIFullStack/internal/fileparse"
	"github.com/dat2003as/ragAIFullStack/internal/prompt"
	"github.com/dat2003as/ragAIFullStack/internal/ratelimit"
	"github.com/dat2003as/ragAIFullStack/internal/service"
	"github.com/dat2003as/ragAIFullStack/internal/store"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		AppName:            "Context Engine API",
		AppVersion:         "test",
		CORSOrigins:        []string{"*"},
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
		llm.NewMockClient("routed"),
		prompt.New(),
		fileparse.NewImageParser(cfg.MaxUploadSizeMB, cfg.MaxImageDimension, cfg.ImageQuality),
		fileparse.NewCSVParser(cfg.MaxCSVRows, nil),
		fileparse.NewDocumentParser(cfg.MaxUploadSizeMB),
	)
	return NewServer(cfg, svc, ratelimit.New(100, time.Minute))
}

func do(srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t)

	rec := do(srv, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(srv, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(srv, http.MethodPost, "/api/v1/chat", `{"session_id":"s1","message":"hi"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "routed", resp["response"])
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Remaining"))

	rec = do(srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chat_requests_total")

	rec = do(srv, http.MethodGet, "/api/v1/chat/s1/history", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["total_messages"])

	rec = do(srv, http.MethodGet, "/api/v1/upload-csv/s1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(srv, http.MethodGet, "/api/v1/chat/unknown/info", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
