package subscriptionRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// StatusActive marks a subscription that currently grants the discount.
const StatusActive = "active"

// SubscriptionRepository answers subscription status queries.
type SubscriptionRepository interface {
	IsUserSubscribed(ctx context.Context, userID string) (bool, error)
}

// MongoSubscriptionRepo implements SubscriptionRepository using MongoDB.
type MongoSubscriptionRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoSubscriptionRepo creates a subscription repository on db.
func NewMongoSubscriptionRepo(db *mongo.Database, logger *zap.Logger) SubscriptionRepository {
	repo := &MongoSubscriptionRepo{coll: db.Collection("subscriptions"), now: time.Now}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("failed to create subscription indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoSubscriptionRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}, {Key: "expires_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// activeFilter matches subscriptions of userID that are active at now.
func activeFilter(userID string, now time.Time) bson.M {
	return bson.M{
		"user_id":    userID,
		"status":     StatusActive,
		"expires_at": bson.M{"$gt": now},
	}
}

func (r *MongoSubscriptionRepo) IsUserSubscribed(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, activeFilter(userID, r.now()), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check subscription for user %s: %w", userID, err)
	}
	return n > 0, nil
}
