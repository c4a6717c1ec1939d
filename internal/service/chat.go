package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dat2003as/ragAIFullStack/internal/domain"
	"github.com/dat2003as/ragAIFullStack/internal/metrics"
)

// historyWindow is how many recent turns are replayed to the model.
const historyWindow = 10

// Chat runs one conversation turn: the user message is recorded, the
// session's artifacts and recent history are assembled into a prompt, and
// the model's reply is recorded and returned. A session with no uploads
// chats over an empty context; no session state is created.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (*domain.ChatResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", domain.ErrValidation)
	}
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrValidation)
	}
	metrics.MessageLength.Observe(float64(len(message)))

	snap, err := s.sessions.Get(sessionID)
	if err != nil {
		// Chatting without uploads is allowed; use an empty snapshot.
		snap = domain.NewSession(sessionID, time.Now())
	}

	unlock := s.lockSession(sessionID)
	s.history.Append(sessionID, domain.Turn{
		Role:      domain.RoleUser,
		Content:   message,
		Timestamp: time.Now(),
		Context: &domain.TurnContext{
			ImagesCount:    len(snap.Images),
			CSVsCount:      len(snap.CSVs),
			DocumentsCount: len(snap.Documents),
		},
	})
	window := s.history.RecentWindow(sessionID, historyWindow)
	unlock()
	parts, refs := s.assembler.Assemble(snap, window, message)

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.LLMTimeout)
	defer cancel()

	start := time.Now()
	response, err := s.completer.Complete(callCtx, parts)
	metrics.CompletionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ChatRequests.WithLabelValues("error").Inc()
		metrics.ChatErrors.WithLabelValues("upstream").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	unlock = s.lockSession(sessionID)
	s.history.Append(sessionID, domain.Turn{
		Role:      domain.RoleAssistant,
		Content:   response,
		Timestamp: time.Now(),
	})
	s.sessions.Touch(sessionID)
	unlock()
	metrics.ChatRequests.WithLabelValues("success").Inc()

	order := make([]string, len(refs))
	for i, ref := range refs {
		order[i] = ref.Filename
	}
	s.log.Info("chat turn completed",
		"session_id", sessionID, "total_files", len(refs))

	return &domain.ChatResult{
		Response:  response,
		SessionID: sessionID,
		Metadata: domain.ChatMetadata{
			TotalFiles:    len(refs),
			ImagesUsed:    len(snap.Images),
			CSVsUsed:      len(snap.CSVs),
			DocumentsUsed: len(snap.Documents),
			FileOrder:     order,
		},
	}, nil
}
