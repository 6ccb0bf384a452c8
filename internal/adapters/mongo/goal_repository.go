package mongo

import (
	"context"
	"errors"

	"github.com/thrivebrands/beaconiq/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type GoalRepository struct {
	coll *mongo.Collection
}

func (r *GoalRepository) ListByCampaign(ctx context.Context, campaignID string) ([]domain.Goal, error) {
	return r.find(ctx, bson.D{{Key: "campaign_id", Value: campaignID}})
}

func (r *GoalRepository) ListByDepartment(ctx context.Context, department string) ([]domain.Goal, error) {
	return r.find(ctx, bson.D{{Key: "department", Value: department}})
}

func (r *GoalRepository) Get(ctx context.Context, goalID string) (domain.Goal, error) {
	var doc goalDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: goalID}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Goal{}, domain.ErrNotFound
		}
		return domain.Goal{}, err
	}
	return toDomainGoal(doc), nil
}

func (r *GoalRepository) Create(ctx context.Context, goal domain.Goal) error {
	if _, err := r.coll.InsertOne(ctx, toGoalDocument(goal)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *GoalRepository) Update(ctx context.Context, goal domain.Goal) error {
	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: goal.ID}}, toGoalDocument(goal))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GoalRepository) Delete(ctx context.Context, goalID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: goalID}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GoalRepository) find(ctx context.Context, filter bson.D) ([]domain.Goal, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []goalDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Goal, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDomainGoal(doc))
	}
	return out, nil
}
