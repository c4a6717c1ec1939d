package service

import (
	"fmt"
	"sort"

	"github.com/dat2003as/ragAIFullStack/internal/domain"
)

// ArtifactEntry pairs an artifact id with its record for listing responses.
type ArtifactEntry struct {
	FileID string
	Record domain.ArtifactRecord
}

// ListArtifacts returns the session's artifacts of one kind ordered by
// upload time. An unknown session lists as empty rather than erroring.
func (s *Service) ListArtifacts(sessionID string, kind domain.ArtifactKind) ([]ArtifactEntry, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidKind
	}
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, nil
	}
	m := sess.KindMap(kind)
	entries := make([]ArtifactEntry, 0, len(m))
	for id, rec := range m {
		entries = append(entries, ArtifactEntry{FileID: id, Record: rec})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Record.UploadedAt.Equal(entries[j].Record.UploadedAt) {
			return entries[i].Record.UploadedAt.Before(entries[j].Record.UploadedAt)
		}
		return entries[i].FileID < entries[j].FileID
	})
	return entries, nil
}

// GetArtifact returns one artifact record by id.
func (s *Service) GetArtifact(sessionID string, kind domain.ArtifactKind, fileID string) (domain.ArtifactRecord, error) {
	if !kind.Valid() {
		return domain.ArtifactRecord{}, domain.ErrInvalidKind
	}
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return domain.ArtifactRecord{}, fmt.Errorf("%w: %s %s", domain.ErrArtifactNotFound, kind, fileID)
	}
	rec, ok := sess.KindMap(kind)[fileID]
	if !ok {
		return domain.ArtifactRecord{}, fmt.Errorf("%w: %s %s", domain.ErrArtifactNotFound, kind, fileID)
	}
	return rec, nil
}

// DeleteArtifact removes one artifact and its files. When the removal
// leaves the session with no artifacts of any kind, the conversation
// history is cleared as well (the artifacts were its context).
func (s *Service) DeleteArtifact(sessionID string, kind domain.ArtifactKind, fileID string) error {
	if !kind.Valid() {
		return domain.ErrInvalidKind
	}
	unlock := s.lockSession(sessionID)
	defer unlock()
	rec, ok := s.sessions.RemoveArtifact(sessionID, kind, fileID)
	if !ok {
		return fmt.Errorf("%w: %s %s", domain.ErrArtifactNotFound, kind, fileID)
	}
	s.removeFiles(rec.BackingPaths())
	s.cascadeHistory(sessionID)
	return nil
}

// ClearKind removes every artifact of one kind. It returns the number of
// removed records and whether the history cascade fired. An unknown session
// returns ErrSessionNotFound.
func (s *Service) ClearKind(sessionID string, kind domain.ArtifactKind) (int, bool, error) {
	if !kind.Valid() {
		return 0, false, domain.ErrInvalidKind
	}
	unlock := s.lockSession(sessionID)
	defer unlock()
	if _, err := s.sessions.Get(sessionID); err != nil {
		return 0, false, err
	}
	recs := s.sessions.ClearKind(sessionID, kind)
	for _, rec := range recs {
		s.removeFiles(rec.BackingPaths())
	}
	cleared := s.cascadeHistory(sessionID)
	s.log.Info("cleared artifacts",
		"session_id", sessionID, "kind", kind, "count", len(recs), "history_cleared", cleared)
	return len(recs), cleared, nil
}

// cascadeHistory applies the cascade rule: once a session holds no
// artifacts of any kind, its conversation history is dropped. Reports
// whether any messages were actually removed. Callers must hold the
// session's mutation lock so the emptiness check and the clear see one
// consistent state.
func (s *Service) cascadeHistory(sessionID string) bool {
	if !s.sessions.IsEmpty(sessionID) {
		return false
	}
	return s.history.Clear(sessionID) > 0
}

// DeleteSession removes the session, all its files, and its history.
func (s *Service) DeleteSession(sessionID string) (filesDeleted, messagesDeleted int, err error) {
	unlock := s.lockSession(sessionID)
	defer unlock()
	sess, ok := s.sessions.Delete(sessionID)
	if !ok {
		return 0, 0, domain.ErrSessionNotFound
	}
	for _, rec := range sess.AllRecords() {
		paths := rec.BackingPaths()
		if len(paths) > 0 {
			filesDeleted++
		}
		s.removeFiles(paths)
	}
	messagesDeleted = s.history.Clear(sessionID)
	s.syncSessionGauge()
	s.log.Info("deleted session",
		"session_id", sessionID, "files_deleted", filesDeleted, "messages_deleted", messagesDeleted)
	return filesDeleted, messagesDeleted, nil
}

// SessionInfo returns a read-only snapshot of the session plus its current
// history length.
func (s *Service) SessionInfo(sessionID string) (*domain.Session, int, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, 0, err
	}
	return sess, s.history.Len(sessionID), nil
}

// History returns up to limit most recent turns and the total turn count.
// limit <= 0 returns the full history.
func (s *Service) History(sessionID string, limit int) ([]domain.Turn, int) {
	total := s.history.Len(sessionID)
	if limit <= 0 {
		return s.history.FullHistory(sessionID), total
	}
	return s.history.RecentWindow(sessionID, limit), total
}

// ClearHistory drops the session's conversation history, returning how many
// turns were removed. Artifacts are untouched.
func (s *Service) ClearHistory(sessionID string) int {
	unlock := s.lockSession(sessionID)
	defer unlock()
	return s.history.Clear(sessionID)
}
