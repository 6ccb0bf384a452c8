package memory

import (
	"context"
	"sync"

	"github.com/thrivebrands/beaconiq/internal/domain"
)

type MutationRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Mutation
}

func NewMutationRepository() *MutationRepository {
	return &MutationRepository{items: map[string]domain.Mutation{}}
}

func (r *MutationRepository) Get(_ context.Context, mutationID string) (domain.Mutation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.items[mutationID]
	if !ok {
		return domain.Mutation{}, domain.ErrNotFound
	}
	return m, nil
}

func (r *MutationRepository) Put(_ context.Context, mutation domain.Mutation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[mutation.ID] = mutation
	return nil
}
