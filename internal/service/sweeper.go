package service

import (
	"context"
	"time"
)

// SweepIdleSessions deletes sessions whose last activity is older than the
// configured session timeout, releasing their files and history. It runs
// until ctx is cancelled; call it in its own goroutine.
func (s *Service) SweepIdleSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(time.Now())
		}
	}
}

func (s *Service) sweepOnce(now time.Time) int {
	cutoff := now.Add(-s.cfg.SessionTimeout)
	ids := s.sessions.IdleSince(cutoff)
	for _, id := range ids {
		if _, _, err := s.DeleteSession(id); err == nil {
			s.log.Info("swept idle session", "session_id", id)
		}
	}
	return len(ids)
}
