package memory

import (
	"context"
	"sync"

	"github.com/thrivebrands/beaconiq/internal/domain"
)

type GoalPlanRepository struct {
	mu    sync.RWMutex
	items map[string]domain.GoalPlan
}

func NewGoalPlanRepository() *GoalPlanRepository {
	return &GoalPlanRepository{items: map[string]domain.GoalPlan{}}
}

func (r *GoalPlanRepository) Get(_ context.Context, ownerID string, key domain.PlanKey) (domain.GoalPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plan, ok := r.items[ownerID+"/"+string(key)]
	if !ok {
		return domain.GoalPlan{}, domain.ErrNotFound
	}
	return plan, nil
}

func (r *GoalPlanRepository) Put(_ context.Context, plan domain.GoalPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[plan.OwnerID+"/"+string(plan.Key)] = plan
	return nil
}
