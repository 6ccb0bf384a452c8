package mongo

import (
	"context"

	"github.com/google/uuid"
	"github.com/thrivebrands/beaconiq/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// TranscriptRepository keeps one document per chat turn. Turns written in the
// same call share a timestamp and are ordered by position.
type TranscriptRepository struct {
	coll *mongo.Collection
}

func (r *TranscriptRepository) Load(ctx context.Context, sessionID string) (domain.Transcript, error) {
	cur, err := r.coll.Find(ctx,
		bson.D{{Key: "session_id", Value: sessionID}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "position", Value: 1}}),
	)
	if err != nil {
		return domain.Transcript{}, err
	}
	var docs []turnDocument
	if err := cur.All(ctx, &docs); err != nil {
		return domain.Transcript{}, err
	}
	transcript := domain.Transcript{SessionID: sessionID}
	if len(docs) == 0 {
		return transcript, domain.ErrNotFound
	}
	for _, doc := range docs {
		transcript.Turns = append(transcript.Turns, domain.ChatTurn{
			ID:        doc.ID,
			SessionID: doc.SessionID,
			Role:      domain.ChatRole(doc.Role),
			Content:   doc.Content,
			CreatedAt: doc.CreatedAt.UTC(),
		})
	}
	return transcript, nil
}

func (r *TranscriptRepository) Append(ctx context.Context, turns ...domain.ChatTurn) error {
	if len(turns) == 0 {
		return nil
	}
	docs := make([]any, 0, len(turns))
	for i, turn := range turns {
		id := turn.ID
		if id == "" {
			id = uuid.NewString()
		}
		docs = append(docs, turnDocument{
			ID:        id,
			SessionID: turn.SessionID,
			Role:      string(turn.Role),
			Content:   turn.Content,
			Position:  i,
			CreatedAt: turn.CreatedAt,
		})
	}
	_, err := r.coll.InsertMany(ctx, docs)
	return err
}
