package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/thrivebrands/beaconiq/internal/domain"
	"go.opentelemetry.io/otel/attribute"
)

type GoalInput struct {
	CampaignID   string             `json:"campaignId"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Department   string             `json:"department"`
	Owners       []string           `json:"owners"`
	TeamMembers  []string           `json:"teamMembers"`
	Dependencies []string           `json:"dependencies"`
	Metrics      []string           `json:"metrics"`
	KeyResults   []domain.KeyResult `json:"keyResults"`
	Status       string             `json:"status"`
	Progress     int                `json:"progress"`
	Tasks        []domain.Task      `json:"tasks"`
}

// GoalPatch carries the fields of a partial goal update. Nil fields are left
// unchanged.
type GoalPatch struct {
	Title        *string             `json:"title,omitempty"`
	Description  *string             `json:"description,omitempty"`
	Department   *string             `json:"department,omitempty"`
	Owners       *[]string           `json:"owners,omitempty"`
	TeamMembers  *[]string           `json:"teamMembers,omitempty"`
	Dependencies *[]string           `json:"dependencies,omitempty"`
	Metrics      *[]string           `json:"metrics,omitempty"`
	KeyResults   *[]domain.KeyResult `json:"keyResults,omitempty"`
	Status       *string             `json:"status,omitempty"`
	Progress     *int                `json:"progress,omitempty"`
	Tasks        *[]domain.Task      `json:"tasks,omitempty"`
}

type GenerateGoalsInput struct {
	CampaignID string `json:"campaignId"`
	AutoAssign bool   `json:"autoAssign"`
}

func (s *Service) ListCampaignGoals(ctx context.Context, campaignID string) ([]domain.Goal, error) {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return nil, fmt.Errorf("%w: campaign id is required", domain.ErrInvalidInput)
	}
	return s.goals.ListByCampaign(ctx, campaignID)
}

func (s *Service) ListDepartmentGoals(ctx context.Context, department string) ([]domain.Goal, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return nil, fmt.Errorf("%w: department is required", domain.ErrInvalidInput)
	}
	return s.goals.ListByDepartment(ctx, department)
}

func (s *Service) GetGoal(ctx context.Context, goalID string) (domain.Goal, error) {
	if strings.TrimSpace(goalID) == "" {
		return domain.Goal{}, fmt.Errorf("%w: goal id is required", domain.ErrInvalidInput)
	}
	return s.goals.Get(ctx, goalID)
}

// CreateGoal stores a new goal. With key results present the goal progress is
// always derived from them.
func (s *Service) CreateGoal(ctx context.Context, actor Actor, in GoalInput) (domain.Goal, error) {
	ctx, span := s.tracer.Start(ctx, "goal.create")
	defer span.End()

	status, err := domain.ParseGoalStatus(in.Status)
	if err != nil {
		return domain.Goal{}, err
	}
	now := s.nowFn()
	department := strings.TrimSpace(in.Department)
	if department == "" {
		department = domain.DefaultDepartment
	}
	goal := domain.Goal{
		ID:           uuid.NewString(),
		CampaignID:   strings.TrimSpace(in.CampaignID),
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Department:   department,
		Owners:       domain.CleanList(in.Owners),
		TeamMembers:  domain.CleanList(in.TeamMembers),
		Dependencies: domain.CleanList(in.Dependencies),
		Metrics:      domain.CleanList(in.Metrics),
		KeyResults:   s.withKeyResultIDs(domain.NormalizeKeyResults(in.KeyResults)),
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
		CreatedBy:    actor.UserID,
	}
	if len(goal.Owners) == 0 && actor.UserID != "" {
		goal.Owners = []string{actor.UserID}
	}
	if len(goal.KeyResults) > 0 {
		goal.Progress = domain.OverallProgress(goal.KeyResults)
	} else {
		goal.Progress = domain.ClampProgress(in.Progress)
	}
	tasks, err := s.normalizeTasks(actor, nil, in.Tasks)
	if err != nil {
		return domain.Goal{}, err
	}
	goal.Tasks = tasks
	if err := domain.ValidateGoal(goal); err != nil {
		return domain.Goal{}, err
	}
	if goal.CampaignID != "" {
		if err := s.ensureCampaignExists(ctx, goal.CampaignID); err != nil {
			return domain.Goal{}, err
		}
	}

	if err := s.goals.Create(ctx, goal); err != nil {
		return domain.Goal{}, err
	}
	span.SetAttributes(attribute.String("goal.id", goal.ID))
	s.enqueue(ctx, s.newEvent(eventGoalCreated, goal.ID, "data.goal_id", goalEventData(goal, actor)))
	return goal, nil
}

// UpdateGoal applies patch. An explicit progress wins and is clamped; changed
// key results without an explicit progress re-derive it.
func (s *Service) UpdateGoal(ctx context.Context, actor Actor, goalID string, patch GoalPatch) (domain.Goal, error) {
	ctx, span := s.tracer.Start(ctx, "goal.update")
	defer span.End()
	span.SetAttributes(attribute.String("goal.id", goalID))

	goal, err := s.GetGoal(ctx, goalID)
	if err != nil {
		return domain.Goal{}, err
	}
	if !goal.CanEdit(actor.UserID, actor.Role, actor.Department) {
		return domain.Goal{}, fmt.Errorf("%w: only owners, team members or admins can edit this goal", domain.ErrForbidden)
	}

	if patch.Title != nil {
		goal.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		goal.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Department != nil && strings.TrimSpace(*patch.Department) != "" {
		goal.Department = strings.TrimSpace(*patch.Department)
	}
	if patch.Owners != nil {
		goal.Owners = domain.CleanList(*patch.Owners)
	}
	if patch.TeamMembers != nil {
		goal.TeamMembers = domain.CleanList(*patch.TeamMembers)
	}
	if patch.Dependencies != nil {
		goal.Dependencies = domain.CleanList(*patch.Dependencies)
	}
	if patch.Metrics != nil {
		goal.Metrics = domain.CleanList(*patch.Metrics)
	}
	if patch.Status != nil {
		status, err := domain.ParseGoalStatus(*patch.Status)
		if err != nil {
			return domain.Goal{}, err
		}
		goal.Status = status
	}
	if patch.KeyResults != nil {
		goal.KeyResults = s.withKeyResultIDs(domain.NormalizeKeyResults(*patch.KeyResults))
	}
	switch {
	case patch.Progress != nil:
		goal.Progress = domain.ClampProgress(*patch.Progress)
	case patch.KeyResults != nil && len(goal.KeyResults) > 0:
		goal.Progress = domain.OverallProgress(goal.KeyResults)
	}
	if patch.Tasks != nil {
		tasks, err := s.normalizeTasks(actor, goal.Tasks, *patch.Tasks)
		if err != nil {
			return domain.Goal{}, err
		}
		goal.Tasks = tasks
	}
	goal.UpdatedAt = s.nowFn()
	if err := domain.ValidateGoal(goal); err != nil {
		return domain.Goal{}, err
	}

	if err := s.goals.Update(ctx, goal); err != nil {
		return domain.Goal{}, err
	}
	s.enqueue(ctx, s.newEvent(eventGoalUpdated, goal.ID, "data.goal_id", goalEventData(goal, actor)))
	return goal, nil
}

func (s *Service) DeleteGoal(ctx context.Context, actor Actor, goalID string) error {
	goal, err := s.GetGoal(ctx, goalID)
	if err != nil {
		return err
	}
	if !goal.CanEdit(actor.UserID, actor.Role, actor.Department) {
		return fmt.Errorf("%w: only owners, team members or admins can delete this goal", domain.ErrForbidden)
	}
	if err := s.goals.Delete(ctx, goal.ID); err != nil {
		return err
	}
	s.enqueue(ctx, s.newEvent(eventGoalDeleted, goal.ID, "data.goal_id", goalEventData(goal, actor)))
	return nil
}

// GenerateGoals drafts goals for a campaign on the board. Drafts are not
// saved; the caller creates the ones it keeps.
func (s *Service) GenerateGoals(ctx context.Context, actor Actor, in GenerateGoalsInput) ([]domain.Goal, error) {
	ctx, span := s.tracer.Start(ctx, "goal.generate")
	defer span.End()

	campaignID := strings.TrimSpace(in.CampaignID)
	if campaignID == "" {
		return nil, fmt.Errorf("%w: campaignId is required", domain.ErrInvalidInput)
	}
	board, err := s.board.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	campaign, _, ok := board.Find(campaignID)
	if !ok {
		return nil, fmt.Errorf("%w: campaign %s", domain.ErrNotFound, campaignID)
	}
	if s.goalGenerator == nil {
		return nil, fmt.Errorf("%w: goal generator not configured", domain.ErrDependencyUnavailable)
	}
	drafts, err := s.goalGenerator.GenerateGoals(ctx, campaign)
	if err != nil {
		return nil, fmt.Errorf("%w: generate goals: %v", domain.ErrDependencyUnavailable, err)
	}

	now := s.nowFn()
	out := make([]domain.Goal, 0, len(drafts))
	for _, g := range drafts {
		if strings.TrimSpace(g.Title) == "" {
			continue
		}
		g.ID = uuid.NewString()
		g.CampaignID = campaign.ID
		if g.Department == "" {
			g.Department = domain.DefaultDepartment
		}
		if g.Status == "" {
			g.Status = domain.GoalOnTrack
		}
		if _, err := domain.ParseGoalStatus(string(g.Status)); err != nil {
			g.Status = domain.GoalOnTrack
		}
		g.KeyResults = s.withKeyResultIDs(domain.NormalizeKeyResults(g.KeyResults))
		g.Progress = domain.OverallProgress(g.KeyResults)
		if in.AutoAssign && actor.UserID != "" {
			g.Owners = []string{actor.UserID}
		}
		g.Owners = nonNil(g.Owners)
		g.TeamMembers = nonNil(g.TeamMembers)
		g.Dependencies = nonNil(g.Dependencies)
		g.Metrics = nonNil(g.Metrics)
		g.Tasks = []domain.Task{}
		g.CreatedAt = now
		g.UpdatedAt = now
		g.CreatedBy = actor.UserID
		out = append(out, g)
	}
	span.SetAttributes(attribute.Int("goals.generated", len(out)))
	return out, nil
}

func (s *Service) ensureCampaignExists(ctx context.Context, campaignID string) error {
	board, err := s.board.Snapshot(ctx)
	if err != nil {
		return err
	}
	if _, ok := board.Locate(campaignID); !ok {
		return fmt.Errorf("%w: campaign %s", domain.ErrNotFound, campaignID)
	}
	return nil
}

func (s *Service) withKeyResultIDs(krs []domain.KeyResult) []domain.KeyResult {
	for i := range krs {
		if krs[i].ID == "" {
			krs[i].ID = uuid.NewString()
		}
	}
	return krs
}

// normalizeTasks stamps new tasks and keeps the original author of existing ones.
func (s *Service) normalizeTasks(actor Actor, existing, incoming []domain.Task) ([]domain.Task, error) {
	byID := make(map[string]domain.Task, len(existing))
	for _, t := range existing {
		byID[t.ID] = t
	}
	now := s.nowFn()
	out := make([]domain.Task, 0, len(incoming))
	for _, t := range incoming {
		t.Description = strings.TrimSpace(t.Description)
		if t.Description == "" {
			return nil, fmt.Errorf("%w: task description is required", domain.ErrInvalidInput)
		}
		status, err := domain.ValidateTaskStatus(t.Status)
		if err != nil {
			return nil, err
		}
		t.Status = status
		if prev, ok := byID[t.ID]; ok && t.ID != "" {
			t.CreatedAt = prev.CreatedAt
			t.CreatedBy = prev.CreatedBy
		} else {
			if t.ID == "" {
				t.ID = uuid.NewString()
			}
			if t.CreatedAt.IsZero() {
				t.CreatedAt = now
			}
			if t.CreatedBy == "" {
				t.CreatedBy = actor.UserID
			}
		}
		out = append(out, t)
	}
	return out, nil
}

func goalEventData(g domain.Goal, actor Actor) map[string]any {
	return map[string]any{
		"goal_id":     g.ID,
		"campaign_id": g.CampaignID,
		"department":  g.Department,
		"status":      string(g.Status),
		"progress":    g.Progress,
		"actor_id":    actor.UserID,
	}
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
