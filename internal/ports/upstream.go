package ports

import (
	"context"
	"encoding/json"

	"github.com/thrivebrands/beaconiq/internal/domain"
)

// AnalyticsSource is the external analytics service. Responses are passed
// through untouched.
type AnalyticsSource interface {
	Report(ctx context.Context, report string, filters domain.Filters) (json.RawMessage, error)
	FilterOptions(ctx context.Context) (json.RawMessage, error)
}

type RecommendationSource interface {
	Recommendations(ctx context.Context) ([]domain.Campaign, error)
}

type ChatRequest struct {
	SessionID  string
	Message    string
	ChartTitle string
	Context    json.RawMessage
	History    []domain.ChatTurn
}

type ChatModel interface {
	Reply(ctx context.Context, req ChatRequest) (string, error)
}

type GoalGenerator interface {
	GenerateGoals(ctx context.Context, campaign domain.Campaign) ([]domain.Goal, error)
}
