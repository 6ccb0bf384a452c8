package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thrivebrands/beaconiq/internal/domain"
	"google.golang.org/genai"
)

const goalSystemPrompt = "You plan execution goals for marketing campaigns. " +
	"Reply with a JSON array of 3 to 5 goals. Each goal has title, description, department " +
	"(one of sales, marketing, operations, finance), metrics (list of strings) and keyResults " +
	"(list of objects with description, target and current numbers, current is 0)."

// GoalGenerator drafts campaign goals with Gemini.
type GoalGenerator struct {
	client *Client
}

func NewGoalGenerator(client *Client) *GoalGenerator {
	return &GoalGenerator{client: client}
}

func (g *GoalGenerator) GenerateGoals(ctx context.Context, campaign domain.Campaign) ([]domain.Goal, error) {
	brief, err := json.Marshal(campaign)
	if err != nil {
		return nil, err
	}
	text, err := g.client.generate(ctx, goalSystemPrompt, []*genai.Content{
		genai.NewContentFromText("Campaign:\n"+string(brief), genai.RoleUser),
	}, "application/json")
	if err != nil {
		return nil, err
	}
	return parseGoalDrafts(text)
}

type goalDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Department  string   `json:"department"`
	Metrics     []string `json:"metrics"`
	KeyResults  []struct {
		Description string  `json:"description"`
		Target      float64 `json:"target"`
		Current     float64 `json:"current"`
	} `json:"keyResults"`
}

// parseGoalDrafts accepts a bare array or {"goals": [...]}, optionally inside
// a fenced code block.
func parseGoalDrafts(text string) ([]domain.Goal, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var drafts []goalDraft
	if err := json.Unmarshal([]byte(text), &drafts); err != nil {
		var wrapped struct {
			Goals []goalDraft `json:"goals"`
		}
		if wErr := json.Unmarshal([]byte(text), &wrapped); wErr != nil {
			return nil, fmt.Errorf("decode goal drafts: %w", err)
		}
		drafts = wrapped.Goals
	}

	out := make([]domain.Goal, 0, len(drafts))
	for _, d := range drafts {
		keyResults := make([]domain.KeyResult, 0, len(d.KeyResults))
		for _, kr := range d.KeyResults {
			keyResults = append(keyResults, domain.KeyResult{Description: kr.Description, Target: kr.Target, Current: kr.Current})
		}
		out = append(out, domain.Goal{
			Title:        strings.TrimSpace(d.Title),
			Description:  strings.TrimSpace(d.Description),
			Department:   strings.ToLower(strings.TrimSpace(d.Department)),
			Metrics:      domain.CleanList(d.Metrics),
			KeyResults:   keyResults,
			Owners:       []string{},
			TeamMembers:  []string{},
			Dependencies: []string{},
			Tasks:        []domain.Task{},
		})
	}
	return out, nil
}
