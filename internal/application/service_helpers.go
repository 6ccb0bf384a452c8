package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/thrivebrands/beaconiq/internal/ports"
)

const (
	eventCampaignActivated       = "campaign.activated"
	eventCampaignDeactivated     = "campaign.deactivated"
	eventCampaignArchived        = "campaign.archived"
	eventRecommendationsReplaced = "campaign.recommendations_replaced"
	eventGoalCreated             = "goal.created"
	eventGoalUpdated             = "goal.updated"
	eventGoalDeleted             = "goal.deleted"
	eventAnalyticsSyncRequested  = "analytics.sync_requested"
)

// EventAnalyticsDataSynced is consumed from the analytics service once a data
// load finishes.
const EventAnalyticsDataSynced = "analytics.data_synced"

// EventTypes lists every event type the service emits.
func EventTypes() []string {
	return []string{
		eventCampaignActivated,
		eventCampaignDeactivated,
		eventCampaignArchived,
		eventRecommendationsReplaced,
		eventGoalCreated,
		eventGoalUpdated,
		eventGoalDeleted,
		eventAnalyticsSyncRequested,
	}
}

func (s *Service) newEvent(eventType, partitionKey, partitionKeyPath string, data any) ports.OutboxEvent {
	occurredAt := s.nowFn()
	eventID := uuid.New()
	envelope := map[string]any{
		"event_id":           eventID.String(),
		"event_type":         eventType,
		"occurred_at":        occurredAt.Format(time.RFC3339),
		"source_service":     s.cfg.ServiceName,
		"schema_version":     "1.0",
		"partition_key_path": partitionKeyPath,
		"partition_key":      partitionKey,
		"data":               data,
	}
	payload, _ := json.Marshal(envelope)
	return ports.OutboxEvent{
		EventID:       eventID,
		EventType:     eventType,
		PartitionKey:  partitionKey,
		Payload:       payload,
		OccurredAt:    occurredAt,
		SchemaVersion: "1.0",
	}
}

// enqueue writes an event outside any board transaction. Goal and plan
// documents live in a different store, so the event is best effort.
func (s *Service) enqueue(ctx context.Context, event ports.OutboxEvent) {
	if s.outbox == nil {
		return
	}
	if err := s.outbox.Enqueue(ctx, event); err != nil {
		appLogger().WarnContext(ctx, "outbox enqueue failed",
			"operation", "enqueue_event",
			"outcome", "failure",
			"event_type", event.EventType,
			"error", err,
		)
	}
}

func hashRequest(v any) string {
	raw, _ := json.Marshal(v)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func appLogger() *slog.Logger {
	return slog.Default().With("module", "application", "layer", "service")
}
