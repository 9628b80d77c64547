package catalogRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoCatalogRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	sets := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{r.locations, []mongo.IndexModel{
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "service_ids", Value: 1}}},
		}},
		{r.plans, []mongo.IndexModel{
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "location_id", Value: 1}, {Key: "service_id", Value: 1}}},
		}},
		{r.questions, []mongo.IndexModel{
			{Keys: bson.D{{Key: "plan_id", Value: 1}, {Key: "position", Value: 1}}},
		}},
	}
	for _, s := range sets {
		if _, err := s.coll.Indexes().CreateMany(ctx, s.models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", s.coll.Name(), err)
		}
	}
	return nil
}
