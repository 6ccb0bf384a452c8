package genai

import (
	"context"
	"fmt"

	"github.com/thrivebrands/beaconiq/internal/domain"
)

// TemplateGoalGenerator drafts a fixed set of goals from the campaign fields.
// It is used when no Gemini key is configured.
type TemplateGoalGenerator struct{}

func (TemplateGoalGenerator) GenerateGoals(_ context.Context, c domain.Campaign) ([]domain.Goal, error) {
	reach := float64(len(c.Channels)) * 1000
	if reach == 0 {
		reach = 1000
	}
	revenue := c.Impact.Value
	if revenue <= 0 {
		revenue = c.Budget * 2
	}
	goals := []domain.Goal{
		{
			Title:       fmt.Sprintf("Launch %s", c.Title),
			Description: "Ship creative and targeting across every planned channel.",
			Department:  "marketing",
			Metrics:     []string{"channels live", "audience reach"},
			KeyResults: []domain.KeyResult{
				{Description: "Channels live", Target: float64(max(len(c.Channels), 1))},
				{Description: "Customers reached", Target: reach},
			},
		},
		{
			Title:       fmt.Sprintf("Convert demand from %s", c.Title),
			Description: "Turn campaign traffic into orders through the sales team.",
			Department:  domain.DefaultDepartment,
			Metrics:     []string{"incremental revenue", "orders"},
			KeyResults: []domain.KeyResult{
				{Description: "Incremental revenue", Target: revenue},
			},
		},
		{
			Title:       "Keep spend on budget",
			Description: "Track spend weekly against the approved budget.",
			Department:  "finance",
			Metrics:     []string{"spend to date"},
			KeyResults: []domain.KeyResult{
				{Description: "Weekly spend reviews", Target: 4},
			},
		},
	}
	for i := range goals {
		goals[i].Owners = []string{}
		goals[i].TeamMembers = []string{}
		goals[i].Dependencies = []string{}
		goals[i].Tasks = []domain.Task{}
	}
	return goals, nil
}
