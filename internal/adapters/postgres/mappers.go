package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/thrivebrands/beaconiq/internal/domain"
	"github.com/thrivebrands/beaconiq/internal/ports"
)

func toDomainUser(row userModel) domain.User {
	return domain.User{
		ID:           row.UserID,
		Email:        row.Email,
		Name:         row.Name,
		Role:         row.Role,
		Department:   row.Department,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
	}
}

func toDomainMutation(row mutationModel) domain.Mutation {
	return domain.Mutation{
		ID:           row.MutationID,
		Kind:         domain.MutationKind(row.Kind),
		CampaignID:   row.CampaignID,
		From:         domain.Bucket(row.FromBucket),
		State:        domain.MutationState(row.State),
		Error:        row.Error,
		RequestHash:  row.RequestHash,
		ActorID:      row.ActorID,
		BoardVersion: row.BoardVersion,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

func toMutationModel(m domain.Mutation) mutationModel {
	return mutationModel{
		MutationID:   m.ID,
		Kind:         string(m.Kind),
		CampaignID:   m.CampaignID,
		FromBucket:   string(m.From),
		State:        string(m.State),
		Error:        m.Error,
		RequestHash:  m.RequestHash,
		ActorID:      m.ActorID,
		BoardVersion: m.BoardVersion,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toCampaignModels(board domain.Board) ([]campaignModel, error) {
	rows := make([]campaignModel, 0, board.Len())
	for _, bucket := range []domain.Bucket{domain.BucketRecommended, domain.BucketActive, domain.BucketArchived} {
		for i, c := range board.Bucket(bucket) {
			payload, err := json.Marshal(c)
			if err != nil {
				return nil, fmt.Errorf("encode campaign %s: %w", c.ID, err)
			}
			rows = append(rows, campaignModel{
				CampaignID: c.ID,
				Bucket:     string(bucket),
				Position:   i,
				Payload:    string(payload),
			})
		}
	}
	return rows, nil
}

// toDomainBoard expects rows ordered by bucket then position.
func toDomainBoard(version int64, rows []campaignModel) (domain.Board, error) {
	board := domain.EmptyBoard()
	board.Version = version
	for _, row := range rows {
		var c domain.Campaign
		if err := json.Unmarshal([]byte(row.Payload), &c); err != nil {
			return domain.Board{}, fmt.Errorf("decode campaign %s: %w", row.CampaignID, err)
		}
		switch domain.Bucket(row.Bucket) {
		case domain.BucketRecommended:
			board.Recommended = append(board.Recommended, c)
		case domain.BucketActive:
			board.Active = append(board.Active, c)
		case domain.BucketArchived:
			board.Archived = append(board.Archived, c)
		default:
			return domain.Board{}, fmt.Errorf("campaign %s has unknown bucket %q", row.CampaignID, row.Bucket)
		}
	}
	return board, nil
}

func toOutboxModel(event ports.OutboxEvent) outboxModel {
	schema := event.SchemaVersion
	if schema == "" {
		schema = "1.0"
	}
	return outboxModel{
		OutboxID:      event.EventID,
		EventType:     event.EventType,
		PartitionKey:  event.PartitionKey,
		Payload:       string(event.Payload),
		SchemaVersion: schema,
		CreatedAt:     event.OccurredAt,
	}
}
