package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/thrivebrands/beaconiq/internal/domain"
	"github.com/thrivebrands/beaconiq/internal/ports"
)

type CampaignRepository struct {
	mu     sync.Mutex
	board  domain.Board
	outbox *OutboxRepository
}

func NewCampaignRepository(outbox *OutboxRepository) *CampaignRepository {
	return &CampaignRepository{board: domain.EmptyBoard(), outbox: outbox}
}

// Seed replaces the stored board without version checks.
func (r *CampaignRepository) Seed(board domain.Board) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.board = copyBoard(board)
}

func (r *CampaignRepository) LoadBoard(_ context.Context) (domain.Board, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyBoard(r.board), nil
}

func (r *CampaignRepository) SaveBoard(ctx context.Context, expectedVersion int64, next domain.Board, events []ports.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.board.Version != expectedVersion {
		return domain.ErrConflict
	}
	if err := next.Validate(); err != nil {
		return err
	}
	r.board = copyBoard(next)
	if r.outbox != nil {
		for _, event := range events {
			if err := r.outbox.Enqueue(ctx, event); err != nil {
				return err
			}
		}
	}
	return nil
}

func copyBoard(b domain.Board) domain.Board {
	raw, _ := json.Marshal(b)
	var out domain.Board
	_ = json.Unmarshal(raw, &out)
	return out
}
