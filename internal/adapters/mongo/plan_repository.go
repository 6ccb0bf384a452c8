package mongo

import (
	"context"
	"errors"

	"github.com/thrivebrands/beaconiq/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type GoalPlanRepository struct {
	coll *mongo.Collection
}

func (r *GoalPlanRepository) Get(ctx context.Context, ownerID string, key domain.PlanKey) (domain.GoalPlan, error) {
	var doc goalPlanDocument
	err := r.coll.FindOne(ctx, planFilter(ownerID, key)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.GoalPlan{}, domain.ErrNotFound
		}
		return domain.GoalPlan{}, err
	}
	return toDomainGoalPlan(doc), nil
}

// Put replaces the whole plan document for the owner and key.
func (r *GoalPlanRepository) Put(ctx context.Context, plan domain.GoalPlan) error {
	_, err := r.coll.ReplaceOne(ctx, planFilter(plan.OwnerID, plan.Key), toGoalPlanDocument(plan), options.Replace().SetUpsert(true))
	return err
}

func planFilter(ownerID string, key domain.PlanKey) bson.D {
	return bson.D{{Key: "owner_id", Value: ownerID}, {Key: "key", Value: string(key)}}
}
