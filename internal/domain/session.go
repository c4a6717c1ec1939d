package domain

import "time"

// Session holds all artifact state for one conversation. The three maps are
// always non-nil; a session with three empty maps is eligible for the
// history cascade (see service.cascadeHistory).
type Session struct {
	ID           string                    `json:"session_id"`
	Images       map[string]ArtifactRecord `json:"images"`
	CSVs         map[string]ArtifactRecord `json:"csvs"`
	Documents    map[string]ArtifactRecord `json:"documents"`
	CreatedAt    time.Time                 `json:"created_at"`
	LastActivity time.Time                 `json:"last_activity"`
}

// NewSession returns an empty session with all three mappings allocated.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		Images:       make(map[string]ArtifactRecord),
		CSVs:         make(map[string]ArtifactRecord),
		Documents:    make(map[string]ArtifactRecord),
		CreatedAt:    now,
		LastActivity: now,
	}
}

// KindMap returns the mapping for kind, or nil for an unknown kind.
func (s *Session) KindMap(kind ArtifactKind) map[string]ArtifactRecord {
	switch kind {
	case KindImage:
		return s.Images
	case KindCSV:
		return s.CSVs
	case KindDocument:
		return s.Documents
	}
	return nil
}

// Empty reports whether the session holds no artifacts of any kind.
func (s *Session) Empty() bool {
	return len(s.Images) == 0 && len(s.CSVs) == 0 && len(s.Documents) == 0
}

// AllRecords returns every artifact record across the three kinds.
func (s *Session) AllRecords() []ArtifactRecord {
	recs := make([]ArtifactRecord, 0, len(s.Images)+len(s.CSVs)+len(s.Documents))
	for _, m := range []map[string]ArtifactRecord{s.Images, s.CSVs, s.Documents} {
		for _, rec := range m {
			recs = append(recs, rec)
		}
	}
	return recs
}

// Clone returns a deep enough copy for read-only use outside the store's
// lock: the maps are copied, the records (including the shared parsed table
// handles, which are immutable after parse) are not.
func (s *Session) Clone() *Session {
	c := &Session{
		ID:           s.ID,
		Images:       make(map[string]ArtifactRecord, len(s.Images)),
		CSVs:         make(map[string]ArtifactRecord, len(s.CSVs)),
		Documents:    make(map[string]ArtifactRecord, len(s.Documents)),
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
	}
	for id, rec := range s.Images {
		c.Images[id] = rec
	}
	for id, rec := range s.CSVs {
		c.CSVs[id] = rec
	}
	for id, rec := range s.Documents {
		c.Documents[id] = rec
	}
	return c
}
