package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/thrivebrands/beaconiq/internal/application"
	"github.com/thrivebrands/beaconiq/internal/domain"
)

func (h *Handler) listCampaignGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.service.ListCampaignGoals(r.Context(), chi.URLParam(r, "campaign_id"))
	if err != nil {
		writeMappedError(r.Context(), w, "list_campaign_goals", err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (h *Handler) listDepartmentGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.service.ListDepartmentGoals(r.Context(), chi.URLParam(r, "department"))
	if err != nil {
		writeMappedError(r.Context(), w, "list_department_goals", err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (h *Handler) getGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := h.service.GetGoal(r.Context(), chi.URLParam(r, "goal_id"))
	if err != nil {
		writeMappedError(r.Context(), w, "get_goal", err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (h *Handler) createGoal(w http.ResponseWriter, r *http.Request) {
	var req application.GoalInput
	if err := decodeLooseBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_goal", err)
		return
	}
	goal, err := h.service.CreateGoal(r.Context(), actorFromRequest(r), req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_goal", err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

func (h *Handler) updateGoal(w http.ResponseWriter, r *http.Request) {
	var patch application.GoalPatch
	if err := decodeLooseBody(r, &patch); err != nil {
		writeValidationError(r.Context(), w, "update_goal", err)
		return
	}
	goal, err := h.service.UpdateGoal(r.Context(), actorFromRequest(r), chi.URLParam(r, "goal_id"), patch)
	if err != nil {
		writeMappedError(r.Context(), w, "update_goal", err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (h *Handler) deleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteGoal(r.Context(), actorFromRequest(r), chi.URLParam(r, "goal_id")); err != nil {
		writeMappedError(r.Context(), w, "delete_goal", err)
		return
	}
	writeMessage(w, http.StatusOK, "Goal deleted")
}

func (h *Handler) generateGoals(w http.ResponseWriter, r *http.Request) {
	var req application.GenerateGoalsInput
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "generate_goals", err)
		return
	}
	goals, err := h.service.GenerateGoals(r.Context(), actorFromRequest(r), req)
	if err != nil {
		writeMappedError(r.Context(), w, "generate_goals", err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (h *Handler) getGoalPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.GetGoalPlan(r.Context(), actorFromRequest(r), chi.URLParam(r, "key"))
	if err != nil {
		writeMappedError(r.Context(), w, "get_goal_plan", err)
		return
	}
	writeSuccess(w, http.StatusOK, plan)
}

// saveGoalPlan accepts either {"quarters": [...]} or the bare quarter array
// the dashboard used to keep in local storage.
func (h *Handler) saveGoalPlan(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := decodeBody(r, &raw); err != nil {
		writeValidationError(r.Context(), w, "save_goal_plan", err)
		return
	}
	quarters, err := decodeQuarters(raw)
	if err != nil {
		writeValidationError(r.Context(), w, "save_goal_plan", err)
		return
	}
	plan, err := h.service.SaveGoalPlan(r.Context(), actorFromRequest(r), chi.URLParam(r, "key"), quarters)
	if err != nil {
		writeMappedError(r.Context(), w, "save_goal_plan", err)
		return
	}
	writeSuccess(w, http.StatusOK, plan)
}

func decodeQuarters(raw json.RawMessage) ([]domain.QuarterPlan, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var quarters []domain.QuarterPlan
		if err := json.Unmarshal(raw, &quarters); err != nil {
			return nil, err
		}
		return quarters, nil
	}
	var body struct {
		Quarters *[]domain.QuarterPlan `json:"quarters"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	if body.Quarters == nil {
		return nil, errors.New("quarters is required")
	}
	return *body.Quarters, nil
}
