// Package service implements the application operations: chat turns, artifact
// uploads, listing and deletion, and the session lifecycle. All state lives
// in the stores; the service owns the files on disk and the cascade rule that
// ties artifact state to conversation history.
package service

import (
	"log/slog"
	"os"
	"sync"

	"github.com/dat2003as/ragAIFullStack/internal/adapter/llm"
	"github.com/dat2003as/ragAIFullStack/internal/config"
	"github.com/dat2003as/ragAIFullStack/internal/fileparse"
	"github.com/dat2003as/ragAIFullStack/internal/metrics"
	"github.com/dat2003as/ragAIFullStack/internal/prompt"
	"github.com/dat2003as/ragAIFullStack/internal/store"
)

type Service struct {
	cfg       *config.Config
	log       *slog.Logger
	sessions  *store.SessionStore
	history   *store.HistoryStore
	completer llm.Completer
	assembler *prompt.Assembler
	images    *fileparse.ImageParser
	csvs      *fileparse.CSVParser
	docs      *fileparse.DocumentParser

	// Bounds concurrent parse work; uploads block here, not on the store lock.
	parseSlots chan struct{}

	// One mutex per session, guarding every mutation that spans both stores.
	// The stores are individually safe, but the cascade rule reads artifact
	// state and then clears history: without this lock another goroutine's
	// upload and turn append could land between those two steps and be wiped.
	sessionLocks sync.Map
}

func New(
	cfg *config.Config,
	log *slog.Logger,
	sessions *store.SessionStore,
	history *store.HistoryStore,
	completer llm.Completer,
	assembler *prompt.Assembler,
	images *fileparse.ImageParser,
	csvs *fileparse.CSVParser,
	docs *fileparse.DocumentParser,
) *Service {
	workers := cfg.ParseWorkers
	if workers < 1 {
		workers = 1
	}
	return &Service{
		cfg:        cfg,
		log:        log,
		sessions:   sessions,
		history:    history,
		completer:  completer,
		assembler:  assembler,
		images:     images,
		csvs:       csvs,
		docs:       docs,
		parseSlots: make(chan struct{}, workers),
	}
}

// lockSession takes the session's mutation lock and returns its unlock.
// Entries are never pruned; one mutex per session id seen is cheap relative
// to the session state itself.
func (s *Service) lockSession(sessionID string) func() {
	v, _ := s.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// removeFiles releases on-disk paths. Failures are logged and swallowed:
// the records are already gone from the store, a leftover file must not
// fail the request.
func (s *Service) removeFiles(paths []string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			s.log.Warn("could not delete file", "path", p, "error", err)
		}
	}
}

func (s *Service) syncSessionGauge() {
	metrics.ActiveSessions.Set(float64(s.sessions.Len()))
}
