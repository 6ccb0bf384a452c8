package domain

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

type GoalStatus string

const (
	GoalOnTrack    GoalStatus = "on-track"
	GoalAtRisk     GoalStatus = "at-risk"
	GoalCompleted  GoalStatus = "completed"
	GoalNotStarted GoalStatus = "not-started"
	GoalPlanning   GoalStatus = "planning"
	GoalDelayed    GoalStatus = "delayed"
)

var goalStatuses = []GoalStatus{GoalOnTrack, GoalAtRisk, GoalCompleted, GoalNotStarted, GoalPlanning, GoalDelayed}

// ParseGoalStatus validates raw; an empty value defaults to on-track.
func ParseGoalStatus(raw string) (GoalStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return GoalOnTrack, nil
	}
	status := GoalStatus(raw)
	if !slices.Contains(goalStatuses, status) {
		return "", fmt.Errorf("%w: unknown goal status %q", ErrInvalidInput, raw)
	}
	return status, nil
}

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in-progress"
	TaskStatusDone       = "done"
)

const DefaultDepartment = "sales"

type KeyResult struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Target      float64 `json:"target"`
	Current     float64 `json:"current"`
	Progress    int     `json:"progress"`
}

type Task struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   string    `json:"createdBy"`
}

type Goal struct {
	ID           string      `json:"id"`
	CampaignID   string      `json:"campaignId,omitempty"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Department   string      `json:"department"`
	Owners       []string    `json:"owners"`
	TeamMembers  []string    `json:"teamMembers"`
	Dependencies []string    `json:"dependencies"`
	Metrics      []string    `json:"metrics"`
	KeyResults   []KeyResult `json:"keyResults"`
	Status       GoalStatus  `json:"status"`
	Progress     int         `json:"progress"`
	Tasks        []Task      `json:"tasks"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	CreatedBy    string      `json:"createdBy,omitempty"`
}

// ClampProgress bounds a progress value to [0, 100].
func ClampProgress(p int) int {
	return max(0, min(100, p))
}

// KeyResultProgress derives progress from current/target when target is
// positive and otherwise keeps the last explicit value.
func KeyResultProgress(kr KeyResult) int {
	if kr.Target > 0 {
		ratio := math.Min(100, math.Max(0, kr.Current/kr.Target*100))
		if math.IsNaN(ratio) {
			return 0
		}
		return int(math.Round(ratio))
	}
	return ClampProgress(kr.Progress)
}

// NormalizeKeyResults returns a copy of krs with every progress recomputed.
func NormalizeKeyResults(krs []KeyResult) []KeyResult {
	out := make([]KeyResult, len(krs))
	for i, kr := range krs {
		kr.Description = strings.TrimSpace(kr.Description)
		kr.Progress = KeyResultProgress(kr)
		out[i] = kr
	}
	return out
}

// OverallProgress is the rounded mean of key-result progress, or 0 without
// key results.
func OverallProgress(krs []KeyResult) int {
	if len(krs) == 0 {
		return 0
	}
	total := 0
	for _, kr := range krs {
		total += KeyResultProgress(kr)
	}
	return ClampProgress(int(math.Round(float64(total) / float64(len(krs)))))
}

// CanEdit reports whether the user may change the goal: owners, team members
// and admins by role or department.
func (g Goal) CanEdit(userID, role, department string) bool {
	if IsAdmin(role) || IsAdmin(department) {
		return true
	}
	if userID == "" {
		return false
	}
	return slices.Contains(g.Owners, userID) || slices.Contains(g.TeamMembers, userID)
}

func ValidateGoal(g Goal) error {
	if strings.TrimSpace(g.Title) == "" {
		return fmt.Errorf("%w: goal title is required", ErrInvalidInput)
	}
	if _, err := ParseGoalStatus(string(g.Status)); err != nil {
		return err
	}
	for _, kr := range g.KeyResults {
		if kr.Target < 0 || kr.Current < 0 {
			return fmt.Errorf("%w: key result values must be non-negative", ErrInvalidInput)
		}
	}
	return nil
}

func ValidateTaskStatus(raw string) (string, error) {
	switch strings.TrimSpace(raw) {
	case "":
		return TaskStatusTodo, nil
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return raw, nil
	default:
		return "", fmt.Errorf("%w: unknown task status %q", ErrInvalidInput, raw)
	}
}

func CleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
