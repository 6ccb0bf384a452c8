package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/thrivebrands/beaconiq/internal/domain"
	"github.com/thrivebrands/beaconiq/internal/ports"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type BoardResult struct {
	Board    domain.Board    `json:"board"`
	Mutation domain.Mutation `json:"mutation"`
}

type campaignEventData struct {
	CampaignID string `json:"campaign_id"`
	Title      string `json:"title"`
	From       string `json:"from"`
	To         string `json:"to"`
	StartDate  string `json:"start_date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
	ActualROI  string `json:"actual_roi,omitempty"`
	ActorID    string `json:"actor_id,omitempty"`
}

func (s *Service) GetBoard(ctx context.Context) (domain.Board, error) {
	return s.board.Snapshot(ctx)
}

func (s *Service) SubscribeBoard() (<-chan domain.Board, func()) {
	return s.board.Subscribe()
}

// GetMutation returns a mutation recorded by actor. Admins may read any
// mutation; other users see only their own.
func (s *Service) GetMutation(ctx context.Context, actor Actor, mutationID string) (domain.Mutation, error) {
	if strings.TrimSpace(mutationID) == "" {
		return domain.Mutation{}, fmt.Errorf("%w: mutation id is required", domain.ErrInvalidInput)
	}
	m, err := s.board.Mutation(ctx, mutationID)
	if err != nil {
		return domain.Mutation{}, err
	}
	if m.ActorID != actor.UserID && !domain.IsAdmin(actor.Role) {
		return domain.Mutation{}, fmt.Errorf("%w: mutation %s", domain.ErrNotFound, mutationID)
	}
	return m, nil
}

func (s *Service) ActivateCampaign(ctx context.Context, actor Actor, campaignID, fromRaw string) (BoardResult, error) {
	from, err := domain.ParseBucket(fromRaw)
	if err != nil {
		return BoardResult{}, err
	}
	today := domain.Today(s.nowFn())
	return s.applyCampaignMove(ctx, actor, domain.MutationActivate, campaignID, from, eventCampaignActivated,
		func(b domain.Board) (domain.Board, error) { return domain.Activate(b, campaignID, from, today) })
}

func (s *Service) DeactivateCampaign(ctx context.Context, actor Actor, campaignID string) (BoardResult, error) {
	today := domain.Today(s.nowFn())
	return s.applyCampaignMove(ctx, actor, domain.MutationDeactivate, campaignID, domain.BucketActive, eventCampaignDeactivated,
		func(b domain.Board) (domain.Board, error) { return domain.Deactivate(b, campaignID, today) })
}

func (s *Service) ArchiveCampaign(ctx context.Context, actor Actor, campaignID, fromRaw string) (BoardResult, error) {
	from, err := domain.ParseBucket(fromRaw)
	if err != nil {
		return BoardResult{}, err
	}
	today := domain.Today(s.nowFn())
	return s.applyCampaignMove(ctx, actor, domain.MutationArchive, campaignID, from, eventCampaignArchived,
		func(b domain.Board) (domain.Board, error) { return domain.Archive(b, campaignID, from, today) })
}

// GenerateRecommendations fetches a fresh recommendation list and replaces the
// recommended bucket with it.
func (s *Service) GenerateRecommendations(ctx context.Context, actor Actor) (BoardResult, error) {
	ctx, span := s.tracer.Start(ctx, "campaign.generate_recommendations")
	defer span.End()

	if s.recommendations == nil {
		return BoardResult{}, fmt.Errorf("%w: recommendations source not configured", domain.ErrDependencyUnavailable)
	}
	incoming, err := s.recommendations.Recommendations(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch recommendations")
		return BoardResult{}, fmt.Errorf("%w: recommendations: %v", domain.ErrDependencyUnavailable, err)
	}

	m := s.newMutation(actor, domain.MutationReplaceRecommended, "", "", hashRequest(incoming))
	board, mutation, err := s.board.Apply(ctx, m,
		func(b domain.Board) (domain.Board, error) { return domain.ReplaceRecommended(b, incoming), nil },
		func(_, next domain.Board) []ports.OutboxEvent {
			ids := make([]string, 0, len(next.Recommended))
			for _, c := range next.Recommended {
				ids = append(ids, c.ID)
			}
			return []ports.OutboxEvent{s.newEvent(eventRecommendationsReplaced, "recommended", "data.bucket", map[string]any{
				"bucket":       string(domain.BucketRecommended),
				"campaign_ids": ids,
				"actor_id":     actor.UserID,
			})}
		})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "replace recommended")
		return BoardResult{Board: board, Mutation: mutation}, err
	}
	span.SetAttributes(attribute.Int("campaigns.recommended", len(board.Recommended)))
	return BoardResult{Board: board, Mutation: mutation}, nil
}

func (s *Service) applyCampaignMove(
	ctx context.Context,
	actor Actor,
	kind domain.MutationKind,
	campaignID string,
	from domain.Bucket,
	eventType string,
	transition Transition,
) (BoardResult, error) {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return BoardResult{}, fmt.Errorf("%w: campaign id is required", domain.ErrInvalidInput)
	}
	ctx, span := s.tracer.Start(ctx, "campaign."+string(kind))
	defer span.End()
	span.SetAttributes(
		attribute.String("campaign.id", campaignID),
		attribute.String("campaign.from", string(from)),
	)

	m := s.newMutation(actor, kind, campaignID, from, hashRequest(map[string]string{
		"kind": string(kind), "campaign_id": campaignID, "from": string(from),
	}))
	board, mutation, err := s.board.Apply(ctx, m, transition, func(prev, next domain.Board) []ports.OutboxEvent {
		moved, to, ok := next.Find(campaignID)
		if !ok {
			return nil
		}
		return []ports.OutboxEvent{s.newEvent(eventType, campaignID, "data.campaign_id", campaignEventData{
			CampaignID: campaignID,
			Title:      moved.Title,
			From:       string(from),
			To:         string(to),
			StartDate:  moved.StartDate,
			EndDate:    moved.EndDate,
			ActualROI:  moved.ActualROI,
			ActorID:    actor.UserID,
		})}
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
		appLogger().WarnContext(ctx, "campaign mutation failed",
			"operation", string(kind),
			"outcome", "failure",
			"campaign_id", campaignID,
			"mutation_id", mutation.ID,
			"error", err,
		)
		return BoardResult{Board: board, Mutation: mutation}, err
	}
	span.SetAttributes(attribute.Int64("board.version", board.Version))
	return BoardResult{Board: board, Mutation: mutation}, nil
}

func (s *Service) newMutation(actor Actor, kind domain.MutationKind, campaignID string, from domain.Bucket, requestHash string) domain.Mutation {
	id := uuid.NewString()
	if key := strings.TrimSpace(actor.IdempotencyKey); key != "" {
		id = actor.UserID + ":" + key
	}
	return domain.Mutation{
		ID:          id,
		Kind:        kind,
		CampaignID:  campaignID,
		From:        from,
		RequestHash: requestHash,
		ActorID:     actor.UserID,
	}
}
