package upstream

import (
	"context"
	"encoding/json"

	"github.com/thrivebrands/beaconiq/internal/domain"
)

// AnalyticsClient proxies the analytics service. Report names map directly to
// /analytics/{report}.
type AnalyticsClient struct {
	c *client
}

func NewAnalyticsClient(cfg Config) (*AnalyticsClient, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &AnalyticsClient{c: c}, nil
}

func (a *AnalyticsClient) Report(ctx context.Context, report string, filters domain.Filters) (json.RawMessage, error) {
	return a.c.getJSON(ctx, "/analytics/"+report, filters.Encode())
}

func (a *AnalyticsClient) FilterOptions(ctx context.Context) (json.RawMessage, error) {
	return a.c.getJSON(ctx, "/filters/options", nil)
}
