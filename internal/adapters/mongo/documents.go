package mongo

import (
	"time"

	"github.com/thrivebrands/beaconiq/internal/domain"
)

type keyResultDocument struct {
	ID          string  `bson:"id"`
	Description string  `bson:"description"`
	Target      float64 `bson:"target"`
	Current     float64 `bson:"current"`
	Progress    int     `bson:"progress"`
}

type taskDocument struct {
	ID          string    `bson:"id"`
	Description string    `bson:"description"`
	Status      string    `bson:"status"`
	CreatedAt   time.Time `bson:"created_at"`
	CreatedBy   string    `bson:"created_by"`
}

type goalDocument struct {
	ID           string              `bson:"_id"`
	CampaignID   string              `bson:"campaign_id"`
	Title        string              `bson:"title"`
	Description  string              `bson:"description"`
	Department   string              `bson:"department"`
	Owners       []string            `bson:"owners"`
	TeamMembers  []string            `bson:"team_members"`
	Dependencies []string            `bson:"dependencies"`
	Metrics      []string            `bson:"metrics"`
	KeyResults   []keyResultDocument `bson:"key_results"`
	Status       string              `bson:"status"`
	Progress     int                 `bson:"progress"`
	Tasks        []taskDocument      `bson:"tasks"`
	CreatedAt    time.Time           `bson:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at"`
	CreatedBy    string              `bson:"created_by"`
}

type objectiveDocument struct {
	ID          string              `bson:"id"`
	Title       string              `bson:"title"`
	Description string              `bson:"description"`
	Owner       string              `bson:"owner"`
	Department  string              `bson:"department"`
	Status      string              `bson:"status"`
	Progress    int                 `bson:"progress"`
	KeyResults  []keyResultDocument `bson:"key_results"`
}

type quarterDocument struct {
	Quarter    string              `bson:"quarter"`
	Period     string              `bson:"period"`
	Status     string              `bson:"status"`
	Objectives []objectiveDocument `bson:"objectives"`
}

type goalPlanDocument struct {
	OwnerID   string            `bson:"owner_id"`
	Key       string            `bson:"key"`
	Quarters  []quarterDocument `bson:"quarters"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

type turnDocument struct {
	ID        string    `bson:"_id"`
	SessionID string    `bson:"session_id"`
	Role      string    `bson:"role"`
	Content   string    `bson:"content"`
	Position  int       `bson:"position"`
	CreatedAt time.Time `bson:"created_at"`
}

func toKeyResultDocuments(in []domain.KeyResult) []keyResultDocument {
	out := make([]keyResultDocument, 0, len(in))
	for _, kr := range in {
		out = append(out, keyResultDocument(kr))
	}
	return out
}

func toDomainKeyResults(in []keyResultDocument) []domain.KeyResult {
	out := make([]domain.KeyResult, 0, len(in))
	for _, kr := range in {
		out = append(out, domain.KeyResult(kr))
	}
	return out
}

func toGoalDocument(g domain.Goal) goalDocument {
	tasks := make([]taskDocument, 0, len(g.Tasks))
	for _, task := range g.Tasks {
		tasks = append(tasks, taskDocument(task))
	}
	return goalDocument{
		ID:           g.ID,
		CampaignID:   g.CampaignID,
		Title:        g.Title,
		Description:  g.Description,
		Department:   g.Department,
		Owners:       nonNilStrings(g.Owners),
		TeamMembers:  nonNilStrings(g.TeamMembers),
		Dependencies: nonNilStrings(g.Dependencies),
		Metrics:      nonNilStrings(g.Metrics),
		KeyResults:   toKeyResultDocuments(g.KeyResults),
		Status:       string(g.Status),
		Progress:     g.Progress,
		Tasks:        tasks,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
		CreatedBy:    g.CreatedBy,
	}
}

func toDomainGoal(doc goalDocument) domain.Goal {
	tasks := make([]domain.Task, 0, len(doc.Tasks))
	for _, task := range doc.Tasks {
		t := domain.Task(task)
		t.CreatedAt = t.CreatedAt.UTC()
		tasks = append(tasks, t)
	}
	return domain.Goal{
		ID:           doc.ID,
		CampaignID:   doc.CampaignID,
		Title:        doc.Title,
		Description:  doc.Description,
		Department:   doc.Department,
		Owners:       nonNilStrings(doc.Owners),
		TeamMembers:  nonNilStrings(doc.TeamMembers),
		Dependencies: nonNilStrings(doc.Dependencies),
		Metrics:      nonNilStrings(doc.Metrics),
		KeyResults:   toDomainKeyResults(doc.KeyResults),
		Status:       domain.GoalStatus(doc.Status),
		Progress:     doc.Progress,
		Tasks:        tasks,
		CreatedAt:    doc.CreatedAt.UTC(),
		UpdatedAt:    doc.UpdatedAt.UTC(),
		CreatedBy:    doc.CreatedBy,
	}
}

func toGoalPlanDocument(plan domain.GoalPlan) goalPlanDocument {
	quarters := make([]quarterDocument, 0, len(plan.Quarters))
	for _, q := range plan.Quarters {
		objectives := make([]objectiveDocument, 0, len(q.Objectives))
		for _, o := range q.Objectives {
			objectives = append(objectives, objectiveDocument{
				ID: o.ID, Title: o.Title, Description: o.Description, Owner: o.Owner,
				Department: o.Department, Status: string(o.Status), Progress: o.Progress,
				KeyResults: toKeyResultDocuments(o.KeyResults),
			})
		}
		quarters = append(quarters, quarterDocument{Quarter: q.Quarter, Period: q.Period, Status: q.Status, Objectives: objectives})
	}
	return goalPlanDocument{OwnerID: plan.OwnerID, Key: string(plan.Key), Quarters: quarters, UpdatedAt: plan.UpdatedAt}
}

func toDomainGoalPlan(doc goalPlanDocument) domain.GoalPlan {
	quarters := make([]domain.QuarterPlan, 0, len(doc.Quarters))
	for _, q := range doc.Quarters {
		objectives := make([]domain.Objective, 0, len(q.Objectives))
		for _, o := range q.Objectives {
			objectives = append(objectives, domain.Objective{
				ID: o.ID, Title: o.Title, Description: o.Description, Owner: o.Owner,
				Department: o.Department, Status: domain.GoalStatus(o.Status), Progress: o.Progress,
				KeyResults: toDomainKeyResults(o.KeyResults),
			})
		}
		quarters = append(quarters, domain.QuarterPlan{Quarter: q.Quarter, Period: q.Period, Status: q.Status, Objectives: objectives})
	}
	return domain.GoalPlan{OwnerID: doc.OwnerID, Key: domain.PlanKey(doc.Key), Quarters: quarters, UpdatedAt: doc.UpdatedAt.UTC()}
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
