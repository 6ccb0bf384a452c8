package upstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/thrivebrands/beaconiq/internal/domain"
	"github.com/thrivebrands/beaconiq/internal/ports"
)

// InsightsClient forwards chat questions to the insights service, which
// answers from its own sales data.
type InsightsClient struct {
	c *client
}

func NewInsightsClient(cfg Config) (*InsightsClient, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &InsightsClient{c: c}, nil
}

type historyMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type insightsRequest struct {
	Message             string           `json:"message"`
	ChartTitle          string           `json:"chart_title,omitempty"`
	Context             json.RawMessage  `json:"context,omitempty"`
	SessionID           string           `json:"session_id,omitempty"`
	ConversationHistory []historyMessage `json:"conversation_history"`
}

func (i *InsightsClient) Reply(ctx context.Context, req ports.ChatRequest) (string, error) {
	history := make([]historyMessage, 0, len(req.History))
	for _, turn := range req.History {
		role := "user"
		if turn.Role == domain.RoleAssistantTurn {
			role = "assistant"
		}
		history = append(history, historyMessage{Role: role, Content: turn.Content})
	}
	raw, err := i.c.postJSON(ctx, "/insights/chat", insightsRequest{
		Message:             req.Message,
		ChartTitle:          req.ChartTitle,
		Context:             req.Context,
		SessionID:           req.SessionID,
		ConversationHistory: history,
	})
	if err != nil {
		return "", err
	}
	var resp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode insights response: %w", err)
	}
	return resp.Response, nil
}
