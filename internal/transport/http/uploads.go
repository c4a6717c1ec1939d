package http

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/dat2003as/ragAIFullStack/internal/domain"
	"github.com/dat2003as/ragAIFullStack/internal/textsplit"
)

// formUpload pulls the multipart file and optional session_id out of an
// upload request. The caller closes src.
func formUpload(c echo.Context) (sessionID, filename string, src multipart.File, err error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", "", nil, fmt.Errorf("%w: file is required", domain.ErrValidation)
	}
	src, err = fh.Open()
	if err != nil {
		return "", "", nil, fmt.Errorf("open upload: %w", err)
	}
	return c.FormValue("session_id"), fh.Filename, src, nil
}

// UploadImage attaches an image to the session.
// POST /api/v1/upload-image
func (h *Handler) UploadImage(c echo.Context) error {
	sessionID, filename, src, err := formUpload(c)
	if err != nil {
		return h.fail(c, err)
	}
	defer src.Close()

	result, err := h.service.UploadImage(c.Request().Context(), sessionID, filename, src)
	if err != nil {
		return h.fail(c, err)
	}
	rec := result.Record
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":     "uploaded",
		"session_id": result.SessionID,
		"file_id":    result.FileID,
		"filename":   rec.Filename,
		"format":     rec.Format,
		"dimensions": map[string]int{
			"width":  rec.Width,
			"height": rec.Height,
		},
		"size_mb":      float64(rec.SizeBytes) / (1 << 20),
		"resized":      rec.ResizedPath != "",
		"total_images": result.TotalKind,
	})
}

// ListImages lists the session's images ordered by upload time.
// GET /api/v1/upload-image/:session_id
func (h *Handler) ListImages(c echo.Context) error {
	sessionID := c.Param("session_id")

	entries, err := h.service.ListArtifacts(sessionID, domain.KindImage)
	if err != nil {
		return h.fail(c, err)
	}
	images := make([]map[string]interface{}, len(entries))
	for i, e := range entries {
		images[i] = map[string]interface{}{
			"file_id":     e.FileID,
			"filename":    e.Record.Filename,
			"format":      e.Record.Format,
			"dimensions":  fmt.Sprintf("%dx%d", e.Record.Width, e.Record.Height),
			"size_mb":     float64(e.Record.SizeBytes) / (1 << 20),
			"uploaded_at": e.Record.UploadedAt,
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"count":      len(images),
		"images":     images,
	})
}

// DeleteAllImages removes every image in the session.
// DELETE /api/v1/upload-image/:session_id
func (h *Handler) DeleteAllImages(c echo.Context) error {
	return h.deleteAllKind(c, domain.KindImage)
}

// DeleteImage removes one image by file id.
// DELETE /api/v1/upload-image/:session_id/:file_id
func (h *Handler) DeleteImage(c echo.Context) error {
	return h.deleteOneKind(c, domain.KindImage)
}

// UploadCSV attaches a CSV file to the session.
// POST /api/v1/upload-csv
func (h *Handler) UploadCSV(c echo.Context) error {
	sessionID, filename, src, err := formUpload(c)
	if err != nil {
		return h.fail(c, err)
	}
	defer src.Close()

	result, err := h.service.UploadCSV(c.Request().Context(), sessionID, filename, src)
	if err != nil {
		return h.fail(c, err)
	}
	rec := result.Record
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":     "uploaded",
		"session_id": result.SessionID,
		"file_id":    result.FileID,
		"filename":   rec.Filename,
		"rows":       rec.RowCount,
		"columns":    rec.ColumnNames,
		"preview":    rec.Table.Head(5),
		"total_csvs": result.TotalKind,
	})
}

// CSVUrlRequest is the body for loading a CSV straight from a URL.
type CSVUrlRequest struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// UploadCSVFromURL fetches a CSV over HTTP and attaches it to the session.
// POST /api/v1/upload-csv/url
func (h *Handler) UploadCSVFromURL(c echo.Context) error {
	var req CSVUrlRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	result, err := h.service.UploadCSVFromURL(c.Request().Context(), req.SessionID, req.URL)
	if err != nil {
		return h.fail(c, err)
	}
	rec := result.Record
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":     "loaded",
		"session_id": result.SessionID,
		"file_id":    result.FileID,
		"filename":   rec.Filename,
		"rows":       rec.RowCount,
		"columns":    rec.ColumnNames,
		"total_csvs": result.TotalKind,
	})
}

// ListCSVs lists the session's CSVs ordered by upload time.
// GET /api/v1/upload-csv/:session_id
func (h *Handler) ListCSVs(c echo.Context) error {
	sessionID := c.Param("session_id")

	entries, err := h.service.ListArtifacts(sessionID, domain.KindCSV)
	if err != nil {
		return h.fail(c, err)
	}
	csvs := make([]map[string]interface{}, len(entries))
	for i, e := range entries {
		csvs[i] = map[string]interface{}{
			"file_id":      e.FileID,
			"filename":     e.Record.Filename,
			"rows":         e.Record.RowCount,
			"columns":      len(e.Record.ColumnNames),
			"column_names": e.Record.ColumnNames,
			"uploaded_at":  e.Record.UploadedAt,
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"count":      len(csvs),
		"csvs":       csvs,
	})
}

// DeleteAllCSVs removes every CSV in the session.
// DELETE /api/v1/upload-csv/:session_id
func (h *Handler) DeleteAllCSVs(c echo.Context) error {
	return h.deleteAllKind(c, domain.KindCSV)
}

// DeleteCSV removes one CSV by file id.
// DELETE /api/v1/upload-csv/:session_id/:file_id
func (h *Handler) DeleteCSV(c echo.Context) error {
	return h.deleteOneKind(c, domain.KindCSV)
}

// UploadDocument attaches a document (PDF, DOCX, TXT, MD) to the session.
// POST /api/v1/upload-document
func (h *Handler) UploadDocument(c echo.Context) error {
	sessionID, filename, src, err := formUpload(c)
	if err != nil {
		return h.fail(c, err)
	}
	defer src.Close()

	result, err := h.service.UploadDocument(c.Request().Context(), sessionID, filename, src)
	if err != nil {
		return h.fail(c, err)
	}
	rec := result.Record
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":     "uploaded",
		"session_id": result.SessionID,
		"file_id":    result.FileID,
		"filename":   rec.Filename,
		"file_type":  "document",
		"size_bytes": rec.SizeBytes,
		"metadata": map[string]interface{}{
			"char_count":      rec.CharCount,
			"word_count":      rec.WordCount,
			"preview":         preview(rec.ExtractedText, 200),
			"total_documents": result.TotalKind,
			"uploaded_at":     rec.UploadedAt,
		},
	})
}

// ListDocuments lists the session's documents ordered by upload time.
// GET /api/v1/upload-document/:session_id
func (h *Handler) ListDocuments(c echo.Context) error {
	sessionID := c.Param("session_id")

	entries, err := h.service.ListArtifacts(sessionID, domain.KindDocument)
	if err != nil {
		return h.fail(c, err)
	}
	documents := make([]map[string]interface{}, len(entries))
	for i, e := range entries {
		documents[i] = map[string]interface{}{
			"file_id":     e.FileID,
			"filename":    e.Record.Filename,
			"char_count":  e.Record.CharCount,
			"word_count":  e.Record.WordCount,
			"uploaded_at": e.Record.UploadedAt,
			"preview":     preview(e.Record.ExtractedText, 100),
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"count":      len(documents),
		"documents":  documents,
	})
}

// GetDocumentInfo returns one document's stats, including how many
// embedding-sized chunks its extracted text splits into.
// GET /api/v1/upload-document/:session_id/:file_id/info
func (h *Handler) GetDocumentInfo(c echo.Context) error {
	sessionID := c.Param("session_id")
	fileID := c.Param("file_id")

	rec, err := h.service.GetArtifact(sessionID, domain.KindDocument, fileID)
	if err != nil {
		return h.fail(c, err)
	}
	chunks := textsplit.New(1000, 200).Split(rec.ExtractedText)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"file_id":     fileID,
		"filename":    rec.Filename,
		"char_count":  rec.CharCount,
		"word_count":  rec.WordCount,
		"chunk_count": len(chunks),
		"uploaded_at": rec.UploadedAt,
	})
}

// DeleteAllDocuments removes every document in the session.
// DELETE /api/v1/upload-document/:session_id
func (h *Handler) DeleteAllDocuments(c echo.Context) error {
	return h.deleteAllKind(c, domain.KindDocument)
}

// DeleteDocument removes one document by file id.
// DELETE /api/v1/upload-document/:session_id/:file_id
func (h *Handler) DeleteDocument(c echo.Context) error {
	return h.deleteOneKind(c, domain.KindDocument)
}

func (h *Handler) deleteAllKind(c echo.Context, kind domain.ArtifactKind) error {
	sessionID := c.Param("session_id")

	count, cleared, err := h.service.ClearKind(sessionID, kind)
	if domain.NotFound(err) {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "not_found", "count": 0,
		})
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":          "deleted",
		"count":           count,
		"history_cleared": cleared,
	})
}

func (h *Handler) deleteOneKind(c echo.Context, kind domain.ArtifactKind) error {
	sessionID := c.Param("session_id")
	fileID := c.Param("file_id")

	if err := h.service.DeleteArtifact(sessionID, kind, fileID); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "deleted",
		"file_id": fileID,
	})
}

// preview caps text at n characters, never splitting a multi-byte rune.
func preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	seen := 0
	for i := range text {
		if seen == n {
			return text[:i] + "..."
		}
		seen++
	}
	return text
}
