package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dat2003as/ragAIFullStack/internal/domain"
	"github.com/dat2003as/ragAIFullStack/internal/metrics"
)

// acquireParseSlot blocks until a parse worker slot is free or ctx is done.
func (s *Service) acquireParseSlot(ctx context.Context) (release func(), err error) {
	select {
	case s.parseSlots <- struct{}{}:
		return func() { <-s.parseSlots }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// saveTemp spools the upload body into a temp file under the upload dir so
// it can be validated and parsed before the session claims it.
func (s *Service) saveTemp(pattern string, r io.Reader) (string, int64, error) {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create upload dir: %w", err)
	}
	f, err := os.CreateTemp(s.cfg.UploadDir, pattern)
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", 0, fmt.Errorf("save upload: %w", err)
	}
	return f.Name(), n, nil
}

// place moves the validated temp files to the record's canonical paths.
func (s *Service) place(tmp string, rec *domain.ArtifactRecord, resizedTmp string) error {
	if err := os.MkdirAll(filepath.Dir(rec.StoragePath), 0o755); err != nil {
		return fmt.Errorf("create kind dir: %w", err)
	}
	if err := os.Rename(tmp, rec.StoragePath); err != nil {
		return fmt.Errorf("place upload: %w", err)
	}
	if resizedTmp != "" {
		if err := os.Rename(resizedTmp, rec.ResizedPath); err != nil {
			return fmt.Errorf("place resized image: %w", err)
		}
	}
	return nil
}

// orSessionID returns sessionID, or a fresh one when the client sent none.
func orSessionID(sessionID string) string {
	if sessionID == "" {
		return uuid.New().String()
	}
	return sessionID
}

func (s *Service) kindCount(sessionID string, kind domain.ArtifactKind) int {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return 0
	}
	return len(sess.KindMap(kind))
}

// UploadImage validates, optionally downsizes, and attaches an image to the
// session, creating the session if needed.
func (s *Service) UploadImage(ctx context.Context, sessionID, filename string, body io.Reader) (*domain.UploadResult, error) {
	sessionID = orSessionID(sessionID)
	metrics.FileUploads.WithLabelValues("image").Inc()

	tmp, size, err := s.saveTemp("image-*", body)
	if err != nil {
		return nil, err
	}

	release, err := s.acquireParseSlot(ctx)
	if err != nil {
		os.Remove(tmp)
		return nil, err
	}
	defer release()

	meta, err := s.images.Validate(tmp)
	if err != nil {
		os.Remove(tmp)
		return nil, err
	}
	metrics.FileUploadSize.WithLabelValues("image").Observe(float64(size))

	resizedTmp, err := s.images.ResizeIfNeeded(tmp)
	if err != nil {
		os.Remove(tmp)
		return nil, err
	}

	rec := &domain.ArtifactRecord{
		Filename:    filename,
		ResizedPath: resizedTmp, // non-empty marks the record as resized
		Format:      meta.Format,
		Width:       meta.Width,
		Height:      meta.Height,
		SizeBytes:   meta.SizeBytes,
	}
	unlock := s.lockSession(sessionID)
	id, err := s.sessions.AddArtifact(sessionID, domain.KindImage, rec)
	unlock()
	if err != nil {
		os.Remove(tmp)
		if resizedTmp != "" {
			os.Remove(resizedTmp)
		}
		return nil, err
	}
	if err := s.place(tmp, rec, resizedTmp); err != nil {
		unlock = s.lockSession(sessionID)
		s.sessions.RemoveArtifact(sessionID, domain.KindImage, id)
		unlock()
		return nil, err
	}
	s.syncSessionGauge()

	s.log.Info("image uploaded",
		"session_id", sessionID, "file_id", id, "filename", filename,
		"format", meta.Format, "dimensions", fmt.Sprintf("%dx%d", meta.Width, meta.Height))

	return &domain.UploadResult{
		SessionID: sessionID,
		FileID:    id,
		Record:    *rec,
		TotalKind: s.kindCount(sessionID, domain.KindImage),
	}, nil
}

// UploadCSV parses and attaches a CSV file to the session.
func (s *Service) UploadCSV(ctx context.Context, sessionID, filename string, body io.Reader) (*domain.UploadResult, error) {
	sessionID = orSessionID(sessionID)
	metrics.FileUploads.WithLabelValues("csv").Inc()

	tmp, size, err := s.saveTemp("csv-*", body)
	if err != nil {
		return nil, err
	}

	release, err := s.acquireParseSlot(ctx)
	if err != nil {
		os.Remove(tmp)
		return nil, err
	}
	defer release()

	table, err := s.csvs.ParseFile(tmp)
	if err != nil {
		os.Remove(tmp)
		return nil, err
	}
	metrics.FileUploadSize.WithLabelValues("csv").Observe(float64(size))
	metrics.CSVRowsProcessed.Add(float64(table.RowCount()))

	rec := &domain.ArtifactRecord{
		Filename:    filename,
		RowCount:    table.RowCount(),
		ColumnNames: table.Columns,
		Table:       table,
	}
	unlock := s.lockSession(sessionID)
	id, err := s.sessions.AddArtifact(sessionID, domain.KindCSV, rec)
	unlock()
	if err != nil {
		os.Remove(tmp)
		return nil, err
	}
	if err := s.place(tmp, rec, ""); err != nil {
		unlock = s.lockSession(sessionID)
		s.sessions.RemoveArtifact(sessionID, domain.KindCSV, id)
		unlock()
		return nil, err
	}
	s.syncSessionGauge()

	s.log.Info("csv uploaded",
		"session_id", sessionID, "file_id", id, "filename", filename,
		"rows", table.RowCount(), "columns", len(table.Columns))

	return &domain.UploadResult{
		SessionID: sessionID,
		FileID:    id,
		Record:    *rec,
		TotalKind: s.kindCount(sessionID, domain.KindCSV),
	}, nil
}

// UploadCSVFromURL fetches a CSV over HTTP and attaches it to the session.
// URL-backed tables keep no file on disk; the record points at the source.
func (s *Service) UploadCSVFromURL(ctx context.Context, sessionID, url string) (*domain.UploadResult, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrValidation)
	}
	sessionID = orSessionID(sessionID)
	metrics.FileUploads.WithLabelValues("csv-url").Inc()

	release, err := s.acquireParseSlot(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	table, filename, err := s.csvs.LoadURL(ctx, url)
	if err != nil {
		return nil, err
	}
	metrics.CSVRowsProcessed.Add(float64(table.RowCount()))

	rec := &domain.ArtifactRecord{
		Filename:    filename,
		SourceURL:   url,
		RowCount:    table.RowCount(),
		ColumnNames: table.Columns,
		Table:       table,
	}
	unlock := s.lockSession(sessionID)
	id, err := s.sessions.AddArtifact(sessionID, domain.KindCSV, rec)
	unlock()
	if err != nil {
		return nil, err
	}
	s.syncSessionGauge()

	s.log.Info("csv loaded from url",
		"session_id", sessionID, "file_id", id, "url", url, "rows", table.RowCount())

	return &domain.UploadResult{
		SessionID: sessionID,
		FileID:    id,
		Record:    *rec,
		TotalKind: s.kindCount(sessionID, domain.KindCSV),
	}, nil
}

// UploadDocument validates and extracts text from a document (PDF, DOCX,
// TXT, MD) and attaches it to the session.
func (s *Service) UploadDocument(ctx context.Context, sessionID, filename string, body io.Reader) (*domain.UploadResult, error) {
	sessionID = orSessionID(sessionID)
	metrics.FileUploads.WithLabelValues("document").Inc()

	// The parser dispatches on extension, so the temp file keeps it.
	ext := strings.ToLower(filepath.Ext(filename))
	tmp, size, err := s.saveTemp("document-*"+ext, body)
	if err != nil {
		return nil, err
	}

	release, err := s.acquireParseSlot(ctx)
	if err != nil {
		os.Remove(tmp)
		return nil, err
	}
	defer release()

	if _, err := s.docs.Validate(tmp); err != nil {
		os.Remove(tmp)
		return nil, err
	}
	metrics.FileUploadSize.WithLabelValues("document").Observe(float64(size))

	text, err := s.docs.Parse(tmp)
	if err != nil {
		os.Remove(tmp)
		return nil, err
	}
	chars := utf8.RuneCountInString(text)
	metrics.DocumentChars.Add(float64(chars))

	rec := &domain.ArtifactRecord{
		Filename:      filename,
		SizeBytes:     size,
		ExtractedText: text,
		CharCount:     chars,
		WordCount:     len(strings.Fields(text)),
	}
	unlock := s.lockSession(sessionID)
	id, err := s.sessions.AddArtifact(sessionID, domain.KindDocument, rec)
	unlock()
	if err != nil {
		os.Remove(tmp)
		return nil, err
	}
	if err := s.place(tmp, rec, ""); err != nil {
		unlock = s.lockSession(sessionID)
		s.sessions.RemoveArtifact(sessionID, domain.KindDocument, id)
		unlock()
		return nil, err
	}
	s.syncSessionGauge()

	s.log.Info("document uploaded",
		"session_id", sessionID, "file_id", id, "filename", filename,
		"chars", chars, "words", rec.WordCount)

	return &domain.UploadResult{
		SessionID: sessionID,
		FileID:    id,
		Record:    *rec,
		TotalKind: s.kindCount(sessionID, domain.KindDocument),
	}, nil
}
