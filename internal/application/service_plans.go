package application

import (
	"context"
	"fmt"

	"github.com/thrivebrands/beaconiq/internal/domain"
)

// GetGoalPlan returns the caller's plan for key, or an empty plan when none
// has been saved yet.
func (s *Service) GetGoalPlan(ctx context.Context, actor Actor, rawKey string) (domain.GoalPlan, error) {
	key, err := domain.ParsePlanKey(rawKey)
	if err != nil {
		return domain.GoalPlan{}, err
	}
	if actor.UserID == "" {
		return domain.GoalPlan{}, domain.ErrUnauthorized
	}
	plan, err := s.goalPlans.Get(ctx, actor.UserID, key)
	if isNotFound(err) {
		return domain.GoalPlan{OwnerID: actor.UserID, Key: key, Quarters: []domain.QuarterPlan{}}, nil
	}
	if err != nil {
		return domain.GoalPlan{}, err
	}
	return plan, nil
}

func (s *Service) SaveGoalPlan(ctx context.Context, actor Actor, rawKey string, quarters []domain.QuarterPlan) (domain.GoalPlan, error) {
	key, err := domain.ParsePlanKey(rawKey)
	if err != nil {
		return domain.GoalPlan{}, err
	}
	if actor.UserID == "" {
		return domain.GoalPlan{}, domain.ErrUnauthorized
	}
	normalized, err := domain.NormalizeQuarters(quarters)
	if err != nil {
		return domain.GoalPlan{}, fmt.Errorf("plan %s: %w", key, err)
	}
	plan := domain.GoalPlan{
		OwnerID:   actor.UserID,
		Key:       key,
		Quarters:  normalized,
		UpdatedAt: s.nowFn(),
	}
	if err := s.goalPlans.Put(ctx, plan); err != nil {
		return domain.GoalPlan{}, err
	}
	return plan, nil
}
