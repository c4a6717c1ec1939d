package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dat2003as/ragAIFullStack/internal/config"
	"github.com/dat2003as/ragAIFullStack/internal/domain"
	"github.com/dat2003as/ragAIFullStack/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	cfg       *config.Config
	service   *service.Service
	startedAt time.Time
}

// NewHandler creates a new handler.
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		cfg:       cfg,
		service:   svc,
		startedAt: time.Now(),
	}
}

// RegisterRoutes registers all routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	// Chat and session lifecycle
	api.POST("/chat", h.Chat)
	api.GET("/chat/:session_id/history", h.GetHistory)
	api.DELETE("/chat/:session_id/history", h.ClearHistory)
	api.GET("/chat/:session_id/info", h.GetSessionInfo)
	api.DELETE("/chat/:session_id", h.DeleteSession)

	// Uploads, one route family per artifact kind
	api.POST("/upload-image", h.UploadImage)
	api.GET("/upload-image/:session_id", h.ListImages)
	api.DELETE("/upload-image/:session_id", h.DeleteAllImages)
	api.DELETE("/upload-image/:session_id/:file_id", h.DeleteImage)

	api.POST("/upload-csv", h.UploadCSV)
	api.POST("/upload-csv/url", h.UploadCSVFromURL)
	api.GET("/upload-csv/:session_id", h.ListCSVs)
	api.DELETE("/upload-csv/:session_id", h.DeleteAllCSVs)
	api.DELETE("/upload-csv/:session_id/:file_id", h.DeleteCSV)

	api.POST("/upload-document", h.UploadDocument)
	api.GET("/upload-document/:session_id", h.ListDocuments)
	api.GET("/upload-document/:session_id/:file_id/info", h.GetDocumentInfo)
	api.DELETE("/upload-document/:session_id", h.DeleteAllDocuments)
	api.DELETE("/upload-document/:session_id/:file_id", h.DeleteDocument)

	api.GET("/health", h.Health)

	e.GET("/", h.Root)
}

// fail maps domain errors to HTTP status codes.
func (h *Handler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidKind):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case domain.NotFound(err):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrUpstream):
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// Health returns service status and component health.
// GET /api/v1/health
func (h *Handler) Health(c echo.Context) error {
	llmState := "not_configured"
	if h.cfg.LLMAPIKey != "" {
		llmState = "configured"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"version":   h.cfg.AppVersion,
		"timestamp": time.Now().Unix(),
		"components": map[string]string{
			"llm_api": llmState,
			"metrics": "enabled",
		},
	})
}

// Root describes the service.
// GET /
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"name":    h.cfg.AppName,
		"version": h.cfg.AppVersion,
		"status":  "running",
		"metrics": "/metrics",
	})
}
