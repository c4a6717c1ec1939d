// Package store holds all per-session state: uploaded artifacts and
// conversation history. Everything lives in process memory; durability is
// explicitly out of scope.
package store

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dat2003as/ragAIFullStack/internal/domain"
)

// SessionStore owns the session map and the artifact mappings inside each
// session. One mutex guards both the map and the per-session record state,
// which serializes read-modify-write sequences such as the delete-then-
// cascade check; operations here are map and slice work, never I/O, so the
// single lock is not a contention point at this scale.
type SessionStore struct {
	mu        sync.RWMutex
	sessions  map[string]*domain.Session
	uploadDir string
	now       func() time.Time
}

// NewSessionStore creates an empty store. uploadDir anchors the canonical
// artifact path layout {uploadDir}/{kind}/{sessionID}_{artifactID}_{filename}.
func NewSessionStore(uploadDir string) *SessionStore {
	return &SessionStore{
		sessions:  make(map[string]*domain.Session),
		uploadDir: uploadDir,
		now:       time.Now,
	}
}

// GetOrCreate returns a copy of the session, creating it with empty artifact
// mappings when absent. This is the only read-path entry point allowed to
// create a session.
func (s *SessionStore) GetOrCreate(sessionID string) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(sessionID).Clone()
}

func (s *SessionStore) getOrCreateLocked(sessionID string) *domain.Session {
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = domain.NewSession(sessionID, s.now())
		s.sessions[sessionID] = sess
	}
	return sess
}

// Get returns a copy of the session, or ErrSessionNotFound. Read paths never
// fabricate a missing session.
func (s *SessionStore) Get(sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// NewArtifactID returns a short random artifact id: the first 8 hex
// characters of a UUID, 32 bits of entropy.
func NewArtifactID() string {
	return uuid.New().String()[:8]
}

// AddArtifact generates a unique artifact id for rec, derives its canonical
// storage paths (unless the record is URL-backed), inserts it into the
// session's mapping for kind, and updates LastActivity. The session is
// created lazily; an existing id is never overwritten (the id is
// regenerated on the off chance of a collision). rec is mutated in place so
// the caller can move the uploaded bytes to rec.StoragePath afterwards.
func (s *SessionStore) AddArtifact(sessionID string, kind domain.ArtifactKind, rec *domain.ArtifactRecord) (string, error) {
	if !kind.Valid() {
		return "", domain.ErrInvalidKind
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(sessionID)
	m := sess.KindMap(kind)

	var id string
	for {
		id = NewArtifactID()
		if _, taken := m[id]; !taken {
			break
		}
	}

	rec.Kind = kind
	if rec.UploadedAt.IsZero() {
		rec.UploadedAt = s.now()
	}
	if rec.SourceURL == "" {
		rec.StoragePath = s.artifactPath(kind, sessionID, id, rec.Filename)
		if rec.ResizedPath != "" {
			rec.ResizedPath = rec.StoragePath + ".resized.jpg"
		}
	}
	m[id] = *rec
	sess.LastActivity = s.now()
	return id, nil
}

func (s *SessionStore) artifactPath(kind domain.ArtifactKind, sessionID, artifactID, filename string) string {
	return filepath.Join(s.uploadDir, string(kind), fmt.Sprintf("%s_%s_%s", sessionID, artifactID, filename))
}

// RemoveArtifact deletes one record, returning it so the caller can release
// its backing paths. The second result is false when the session or the id
// is absent.
func (s *SessionStore) RemoveArtifact(sessionID string, kind domain.ArtifactKind, artifactID string) (domain.ArtifactRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return domain.ArtifactRecord{}, false
	}
	m := sess.KindMap(kind)
	rec, ok := m[artifactID]
	if !ok {
		return domain.ArtifactRecord{}, false
	}
	delete(m, artifactID)
	sess.LastActivity = s.now()
	return rec, true
}

// ClearKind empties one artifact mapping and returns the removed records for
// storage cleanup. A missing session yields nil.
func (s *SessionStore) ClearKind(sessionID string, kind domain.ArtifactKind) []domain.ArtifactRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	m := sess.KindMap(kind)
	if len(m) == 0 {
		return nil
	}
	removed := make([]domain.ArtifactRecord, 0, len(m))
	for id := range m {
		removed = append(removed, m[id])
		delete(m, id)
	}
	sess.LastActivity = s.now()
	return removed
}

// IsEmpty reports whether all three mappings of the session are empty. An
// unknown session is empty.
func (s *SessionStore) IsEmpty(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return true
	}
	return sess.Empty()
}

// Delete removes the whole session, returning it so the caller can release
// all backing paths.
func (s *SessionStore) Delete(sessionID string) (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	delete(s.sessions, sessionID)
	return sess, true
}

// Touch updates LastActivity without other effects. Unknown sessions are
// ignored: only GetOrCreate and upload paths may create sessions.
func (s *SessionStore) Touch(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		sess.LastActivity = s.now()
	}
}

// Len returns the number of live sessions, for the active-sessions gauge.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// IdleSince returns the ids of sessions whose LastActivity is before cutoff.
func (s *SessionStore) IdleSince(cutoff time.Time) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, sess := range s.sessions {
		if sess.LastActivity.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}
