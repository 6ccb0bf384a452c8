package memory

import (
	"context"
	"sync"

	"github.com/thrivebrands/beaconiq/internal/domain"
)

type TranscriptRepository struct {
	mu       sync.RWMutex
	sessions map[string][]domain.ChatTurn
}

func NewTranscriptRepository() *TranscriptRepository {
	return &TranscriptRepository{sessions: map[string][]domain.ChatTurn{}}
}

func (r *TranscriptRepository) Load(_ context.Context, sessionID string) (domain.Transcript, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	turns, ok := r.sessions[sessionID]
	if !ok {
		return domain.Transcript{SessionID: sessionID}, domain.ErrNotFound
	}
	return domain.Transcript{SessionID: sessionID, Turns: append([]domain.ChatTurn(nil), turns...)}, nil
}

func (r *TranscriptRepository) Append(_ context.Context, turns ...domain.ChatTurn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, turn := range turns {
		r.sessions[turn.SessionID] = append(r.sessions[turn.SessionID], turn)
	}
	return nil
}
