package application

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/thrivebrands/beaconiq/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Reports served by the upstream analytics service.
var analyticsReports = []string{
	"executive-overview",
	"customer-insights",
	"customer-analysis",
	"brand-analysis",
	"category-analysis",
	"strategic-recommendations",
}

const filterOptionsKey = "filters:options"

type DashboardBundle struct {
	Overview json.RawMessage `json:"executive_overview"`
	Options  json.RawMessage `json:"filter_options"`
	Board    domain.Board    `json:"board"`
}

type SyncStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func AnalyticsReports() []string {
	return slices.Clone(analyticsReports)
}

// AnalyticsReport returns the upstream report for filters, serving from cache
// when possible. Only the newest in-flight fetch for a cache key may write the
// cache.
func (s *Service) AnalyticsReport(ctx context.Context, report string, filters domain.Filters) (json.RawMessage, error) {
	if !slices.Contains(analyticsReports, report) {
		return nil, fmt.Errorf("%w: unknown report %q", domain.ErrNotFound, report)
	}
	key := "report:" + report + "?" + filters.Encode().Encode()
	return s.cachedFetch(ctx, key, func(ctx context.Context) (json.RawMessage, error) {
		return s.analytics.Report(ctx, report, filters)
	})
}

func (s *Service) FilterOptions(ctx context.Context) (json.RawMessage, error) {
	return s.cachedFetch(ctx, filterOptionsKey, s.analytics.FilterOptions)
}

// Dashboard loads the executive overview, filter options and board together.
func (s *Service) Dashboard(ctx context.Context, filters domain.Filters) (DashboardBundle, error) {
	var out DashboardBundle
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := s.AnalyticsReport(gctx, "executive-overview", filters)
		out.Overview = raw
		return err
	})
	g.Go(func() error {
		raw, err := s.FilterOptions(gctx)
		out.Options = raw
		return err
	})
	g.Go(func() error {
		board, err := s.board.Snapshot(gctx)
		out.Board = board
		return err
	})
	if err := g.Wait(); err != nil {
		return DashboardBundle{}, err
	}
	return out, nil
}

func (s *Service) InvalidateAnalytics(ctx context.Context, actor Actor) error {
	if !domain.IsAdmin(actor.Role) {
		return fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}
	return s.invalidateAnalytics(ctx)
}

// RequestDataSync asks the analytics service to reload its source data and
// drops cached reports.
func (s *Service) RequestDataSync(ctx context.Context, actor Actor) (SyncStatus, error) {
	s.enqueue(ctx, s.newEvent(eventAnalyticsSyncRequested, "analytics", "data.scope", map[string]any{
		"scope":        "analytics",
		"requested_by": actor.UserID,
	}))
	if err := s.invalidateAnalytics(ctx); err != nil {
		return SyncStatus{}, err
	}
	return SyncStatus{Status: "accepted", Message: "Data sync requested"}, nil
}

// HandleDataSynced reacts to the analytics service finishing a data load.
func (s *Service) HandleDataSynced(ctx context.Context, payload []byte) error {
	var envelope struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return fmt.Errorf("%w: decode data synced event: %v", domain.ErrInvalidInput, err)
	}
	return s.invalidateAnalytics(ctx)
}

func (s *Service) invalidateAnalytics(ctx context.Context) error {
	s.sequences.Invalidate()
	if s.analyticsCache == nil {
		return nil
	}
	if err := s.analyticsCache.Invalidate(ctx); err != nil {
		return fmt.Errorf("%w: invalidate analytics cache: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *Service) cachedFetch(ctx context.Context, key string, fetch func(context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	if s.analytics == nil {
		return nil, fmt.Errorf("%w: analytics source not configured", domain.ErrDependencyUnavailable)
	}
	if s.analyticsCache != nil {
		if raw, ok, err := s.analyticsCache.Get(ctx, key); err == nil && ok {
			return raw, nil
		} else if err != nil {
			appLogger().WarnContext(ctx, "analytics cache read failed",
				"operation", "analytics_cache_get",
				"outcome", "failure",
				"cache_key", key,
				"error", err,
			)
		}
	}

	seq := s.sequences.Next(key)
	raw, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: analytics %s: %v", domain.ErrDependencyUnavailable, key, err)
	}
	if s.analyticsCache != nil && s.sequences.IsLatest(key, seq) {
		if err := s.analyticsCache.Set(ctx, key, raw, s.cfg.AnalyticsCacheTTL); err != nil {
			appLogger().WarnContext(ctx, "analytics cache write failed",
				"operation", "analytics_cache_set",
				"outcome", "failure",
				"cache_key", key,
				"error", err,
			)
		}
	}
	return raw, nil
}
