package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maidbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// BookingRepository stores finalized bookings.
type BookingRepository interface {
	// SaveFinalizedBooking inserts b and returns its id. Saving the same
	// order twice returns the id of the first insert.
	SaveFinalizedBooking(ctx context.Context, b models.FinalizedBooking) (string, error)
	GetByID(ctx context.Context, id string) (*models.FinalizedBooking, error)
	GetByOrderRef(ctx context.Context, orderRef string) (*models.FinalizedBooking, error)
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.FinalizedBooking, error)
}

// ErrNotFound is returned when no booking matches.
var ErrNotFound = errors.New("booking not found")

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

// NewMongoBookingRepo creates a booking repository on db.
func NewMongoBookingRepo(db *mongo.Database, logger *zap.Logger) BookingRepository {
	repo := &MongoBookingRepo{coll: db.Collection("bookings"), logger: logger}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("failed to create booking indexes", zap.Error(err))
	}
	return repo
}

func newContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "order_ref", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) SaveFinalizedBooking(ctx context.Context, b models.FinalizedBooking) (string, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, b)
	if err == nil {
		return b.ID, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return "", fmt.Errorf("failed to save booking for order %s: %w", b.OrderRef, err)
	}

	// A retried save after a lost acknowledgement lands here.
	existing, ferr := r.GetByOrderRef(ctx, b.OrderRef)
	if ferr != nil {
		return "", fmt.Errorf("failed to save booking for order %s: %w", b.OrderRef, err)
	}
	r.logger.Info("booking already saved for order",
		zap.String("orderRef", b.OrderRef), zap.String("bookingID", existing.ID))
	return existing.ID, nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.FinalizedBooking, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoBookingRepo) GetByOrderRef(ctx context.Context, orderRef string) (*models.FinalizedBooking, error) {
	return r.findOne(ctx, bson.M{"order_ref": orderRef})
}

func (r *MongoBookingRepo) findOne(ctx context.Context, filter bson.M) (*models.FinalizedBooking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var b models.FinalizedBooking
	if err := r.coll.FindOne(ctx, filter).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	return &b, nil
}

func (r *MongoBookingRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]models.FinalizedBooking, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for user %s: %w", userID, err)
	}
	var bookings []models.FinalizedBooking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}
