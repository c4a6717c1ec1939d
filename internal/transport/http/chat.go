package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// ChatRequest is the body of a chat turn.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Chat runs one conversation turn over the session's uploaded context.
// POST /api/v1/chat
func (h *Handler) Chat(c echo.Context) error {
	ctx := c.Request().Context()

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	result, err := h.service.Chat(ctx, req.SessionID, req.Message)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// GetHistory returns up to ?limit recent turns (default 50).
// GET /api/v1/chat/:session_id/history
func (h *Handler) GetHistory(c echo.Context) error {
	sessionID := c.Param("session_id")

	limit := h.cfg.MaxHistoryMessages
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	turns, total := h.service.History(sessionID, limit)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id":     sessionID,
		"total_messages": total,
		"messages":       turns,
	})
}

// ClearHistory drops the session's conversation history, keeping artifacts.
// DELETE /api/v1/chat/:session_id/history
func (h *Handler) ClearHistory(c echo.Context) error {
	sessionID := c.Param("session_id")

	deleted := h.service.ClearHistory(sessionID)
	if deleted == 0 {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "not_found", "messages_deleted": 0,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "cleared", "messages_deleted": deleted,
	})
}

// GetSessionInfo returns the session's files and history length.
// GET /api/v1/chat/:session_id/info
func (h *Handler) GetSessionInfo(c echo.Context) error {
	sessionID := c.Param("session_id")

	sess, messages, err := h.service.SessionInfo(sessionID)
	if err != nil {
		return h.fail(c, err)
	}

	images := make([]map[string]interface{}, 0, len(sess.Images))
	for id, rec := range sess.Images {
		images = append(images, map[string]interface{}{
			"file_id":  id,
			"filename": rec.Filename,
			"size_mb":  float64(rec.SizeBytes) / (1 << 20),
		})
	}
	csvs := make([]map[string]interface{}, 0, len(sess.CSVs))
	for id, rec := range sess.CSVs {
		csvs = append(csvs, map[string]interface{}{
			"file_id":  id,
			"filename": rec.Filename,
			"rows":     rec.RowCount,
			"columns":  len(rec.ColumnNames),
		})
	}
	documents := make([]map[string]interface{}, 0, len(sess.Documents))
	for id, rec := range sess.Documents {
		documents = append(documents, map[string]interface{}{
			"file_id":    id,
			"filename":   rec.Filename,
			"word_count": rec.WordCount,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id":    sess.ID,
		"created_at":    sess.CreatedAt,
		"last_activity": sess.LastActivity,
		"files": map[string]interface{}{
			"images":    map[string]interface{}{"count": len(sess.Images), "files": images},
			"csvs":      map[string]interface{}{"count": len(sess.CSVs), "files": csvs},
			"documents": map[string]interface{}{"count": len(sess.Documents), "files": documents},
		},
		"chat_messages": messages,
	})
}

// DeleteSession removes the session with all its files and history.
// DELETE /api/v1/chat/:session_id
func (h *Handler) DeleteSession(c echo.Context) error {
	sessionID := c.Param("session_id")

	files, messages, err := h.service.DeleteSession(sessionID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":           "deleted",
		"session_id":       sessionID,
		"files_deleted":    files,
		"messages_deleted": messages,
	})
}
