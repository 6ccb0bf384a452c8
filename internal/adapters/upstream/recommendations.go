package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thrivebrands/beaconiq/internal/domain"
)

type RecommendationClient struct {
	c *client
}

func NewRecommendationClient(cfg Config) (*RecommendationClient, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &RecommendationClient{c: c}, nil
}

func (r *RecommendationClient) Recommendations(ctx context.Context) ([]domain.Campaign, error) {
	raw, err := r.c.getJSON(ctx, "/kanban/recommendations", nil)
	if err != nil {
		return nil, err
	}
	return decodeRecommendations(raw)
}

// decodeRecommendations accepts a bare array or an object wrapping the list
// under "recommendations" or "campaigns". Numeric ids become strings.
func decodeRecommendations(raw json.RawMessage) ([]domain.Campaign, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		var wrapped struct {
			Recommendations []json.RawMessage `json:"recommendations"`
			Campaigns       []json.RawMessage `json:"campaigns"`
		}
		if wErr := json.Unmarshal(raw, &wrapped); wErr != nil {
			return nil, fmt.Errorf("decode recommendations: %w", err)
		}
		items = wrapped.Recommendations
		if len(items) == 0 {
			items = wrapped.Campaigns
		}
	}
	out := make([]domain.Campaign, 0, len(items))
	for i, item := range items {
		c, err := decodeCampaign(item)
		if err != nil {
			return nil, fmt.Errorf("decode recommendation %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func decodeCampaign(raw json.RawMessage) (domain.Campaign, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.Campaign{}, err
	}
	if id, ok := fields["id"]; ok {
		var n json.Number
		if err := json.Unmarshal(id, &n); err == nil {
			quoted, _ := json.Marshal(n.String())
			fields["id"] = quoted
		}
	}
	normalized, err := json.Marshal(fields)
	if err != nil {
		return domain.Campaign{}, err
	}
	var c domain.Campaign
	if err := json.Unmarshal(normalized, &c); err != nil {
		return domain.Campaign{}, err
	}
	c.ID = strings.TrimSpace(c.ID)
	if c.ID == "" {
		return domain.Campaign{}, fmt.Errorf("%w: recommendation without id", domain.ErrInvalidInput)
	}
	return c, nil
}
