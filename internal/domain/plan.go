package domain

import (
	"fmt"
	"strings"
	"time"
)

// PlanKey names a goal plan document. The values match the keys the dashboard
// historically kept in browser storage.
type PlanKey string

const (
	PlanKeyQuarterly PlanKey = "bizpulse_goals"
	PlanKeyCorporate PlanKey = "bizpulse_corporate_goals"
)

func ParsePlanKey(raw string) (PlanKey, error) {
	switch PlanKey(strings.TrimSpace(raw)) {
	case PlanKeyQuarterly:
		return PlanKeyQuarterly, nil
	case PlanKeyCorporate:
		return PlanKeyCorporate, nil
	default:
		return "", fmt.Errorf("%w: unknown plan key %q", ErrInvalidInput, raw)
	}
}

type Objective struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Owner       string      `json:"owner,omitempty"`
	Department  string      `json:"department,omitempty"`
	Status      GoalStatus  `json:"status"`
	Progress    int         `json:"progress"`
	KeyResults  []KeyResult `json:"keyResults"`
}

type QuarterPlan struct {
	Quarter    string      `json:"quarter"`
	Period     string      `json:"period,omitempty"`
	Status     string      `json:"status,omitempty"`
	Objectives []Objective `json:"objectives"`
}

type GoalPlan struct {
	OwnerID   string        `json:"owner_id"`
	Key       PlanKey       `json:"key"`
	Quarters  []QuarterPlan `json:"quarters"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NormalizeQuarters applies the goal progress rules to every objective. An
// objective with key results takes its progress from them.
func NormalizeQuarters(quarters []QuarterPlan) ([]QuarterPlan, error) {
	out := make([]QuarterPlan, len(quarters))
	for i, q := range quarters {
		if strings.TrimSpace(q.Quarter) == "" {
			return nil, fmt.Errorf("%w: quarter label is required", ErrInvalidInput)
		}
		objectives := make([]Objective, len(q.Objectives))
		for j, o := range q.Objectives {
			status, err := ParseGoalStatus(string(o.Status))
			if err != nil {
				return nil, err
			}
			o.Status = status
			o.KeyResults = NormalizeKeyResults(o.KeyResults)
			if len(o.KeyResults) > 0 {
				o.Progress = OverallProgress(o.KeyResults)
			} else {
				o.Progress = ClampProgress(o.Progress)
			}
			objectives[j] = o
		}
		q.Objectives = objectives
		out[i] = q
	}
	return out, nil
}
