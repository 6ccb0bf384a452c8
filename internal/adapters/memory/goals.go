package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/thrivebrands/beaconiq/internal/domain"
)

type GoalRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Goal
}

func NewGoalRepository() *GoalRepository {
	return &GoalRepository{items: map[string]domain.Goal{}}
}

func (r *GoalRepository) ListByCampaign(_ context.Context, campaignID string) ([]domain.Goal, error) {
	return r.filter(func(g domain.Goal) bool { return g.CampaignID == campaignID }), nil
}

func (r *GoalRepository) ListByDepartment(_ context.Context, department string) ([]domain.Goal, error) {
	return r.filter(func(g domain.Goal) bool { return g.Department == department }), nil
}

func (r *GoalRepository) Get(_ context.Context, goalID string) (domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.items[goalID]
	if !ok {
		return domain.Goal{}, domain.ErrNotFound
	}
	return g, nil
}

func (r *GoalRepository) Create(_ context.Context, goal domain.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[goal.ID]; ok {
		return domain.ErrConflict
	}
	r.items[goal.ID] = goal
	return nil
}

func (r *GoalRepository) Update(_ context.Context, goal domain.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[goal.ID]; !ok {
		return domain.ErrNotFound
	}
	r.items[goal.ID] = goal
	return nil
}

func (r *GoalRepository) Delete(_ context.Context, goalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[goalID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, goalID)
	return nil
}

func (r *GoalRepository) filter(keep func(domain.Goal) bool) []domain.Goal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Goal, 0)
	for _, g := range r.items {
		if keep(g) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
