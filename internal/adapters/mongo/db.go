// Package mongo stores goal documents, goal plans and chat transcripts in
// MongoDB.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	goalsCollection       = "goals"
	goalPlansCollection   = "goal_plans"
	transcriptsCollection = "ai_conversations"
)

func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetAppName("beaconiq"))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the secondary indexes the repositories query on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(goalsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "campaign_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "department", Value: 1}, {Key: "created_at", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("goal indexes: %w", err)
	}
	if _, err := db.Collection(goalPlansCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("goal plan indexes: %w", err)
	}
	if _, err := db.Collection(transcriptsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "position", Value: 1}},
	}); err != nil {
		return fmt.Errorf("transcript indexes: %w", err)
	}
	return nil
}

type Repositories struct {
	Goals       *GoalRepository
	GoalPlans   *GoalPlanRepository
	Transcripts *TranscriptRepository
}

func NewRepositories(db *mongo.Database) Repositories {
	return Repositories{
		Goals:       &GoalRepository{coll: db.Collection(goalsCollection)},
		GoalPlans:   &GoalPlanRepository{coll: db.Collection(goalPlansCollection)},
		Transcripts: &TranscriptRepository{coll: db.Collection(transcriptsCollection)},
	}
}
