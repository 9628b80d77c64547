package catalogRepo

import (
	"context"
	"fmt"
	"time"

	"maidbook/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	locationsCollection = "locations"
	plansCollection     = "plans"
	questionsCollection = "addon_questions"
)

// questionDocument is the stored shape of an add-on question. Options may
// mix legacy labels and priced documents.
type questionDocument struct {
	ID       string                  `bson:"id"`
	PlanID   string                  `bson:"plan_id"`
	Prompt   string                  `bson:"prompt"`
	Type     models.QuestionType     `bson:"type"`
	Position int                     `bson:"position"`
	Options  []models.AddOnOptionRaw `bson:"options"`
}

func (d questionDocument) toModel() models.AddOnQuestion {
	q := models.AddOnQuestion{
		ID:     d.ID,
		PlanID: d.PlanID,
		Prompt: d.Prompt,
		Type:   d.Type,
	}
	if q.Type == "" {
		q.Type = models.QuestionFreeText
	}
	if q.Type.IsChoice() {
		q.Options = models.NormalizeOptions(d.Options)
	}
	return q
}

// MongoCatalogRepo implements CatalogRepository using MongoDB.
type MongoCatalogRepo struct {
	locations *mongo.Collection
	plans     *mongo.Collection
	questions *mongo.Collection
	cld       *cloudinary.Cloudinary
	logger    *zap.Logger
}

// NewMongoCatalogRepo creates a catalog repository on db. cld may be nil, in
// which case locations are returned without an image URL.
func NewMongoCatalogRepo(db *mongo.Database, cld *cloudinary.Cloudinary, logger *zap.Logger) CatalogRepository {
	repo := &MongoCatalogRepo{
		locations: db.Collection(locationsCollection),
		plans:     db.Collection(plansCollection),
		questions: db.Collection(questionsCollection),
		cld:       cld,
		logger:    logger,
	}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("failed to create catalog indexes", zap.Error(err))
	}
	return repo
}

// newContext bounds a repository call by timeout on top of the caller's ctx.
func newContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

func (r *MongoCatalogRepo) ListLocationsForService(ctx context.Context, serviceID string) ([]models.Location, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.locations.Find(ctx, bson.M{"service_ids": serviceID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations for service %s: %w", serviceID, err)
	}
	var locations []models.Location
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, fmt.Errorf("failed to decode locations: %w", err)
	}
	for i := range locations {
		locations[i].ImageURL = r.imageURL(locations[i].ImageRef)
	}
	return locations, nil
}

func (r *MongoCatalogRepo) ListPlans(ctx context.Context, locationID, serviceID string) ([]models.Plan, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"location_id": locationID, "service_id": serviceID}
	opts := options.Find().SetSort(bson.D{{Key: "price", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.plans.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans for location %s: %w", locationID, err)
	}
	var plans []models.Plan
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, fmt.Errorf("failed to decode plans: %w", err)
	}
	return plans, nil
}

func (r *MongoCatalogRepo) ListAddOnQuestions(ctx context.Context, planID string) ([]models.AddOnQuestion, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "id", Value: 1}})
	cursor, err := r.questions.Find(ctx, bson.M{"plan_id": planID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list add-on questions for plan %s: %w", planID, err)
	}
	defer cursor.Close(ctx)

	var questions []models.AddOnQuestion
	for cursor.Next(ctx) {
		var doc questionDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode add-on question: %w", err)
		}
		questions = append(questions, doc.toModel())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate add-on questions: %w", err)
	}
	return questions, nil
}

func (r *MongoCatalogRepo) imageURL(ref string) string {
	if r.cld == nil || ref == "" {
		return ""
	}
	img, err := r.cld.Image(ref)
	if err != nil {
		r.logger.Debug("invalid location image ref", zap.String("ref", ref), zap.Error(err))
		return ""
	}
	url, err := img.String()
	if err != nil {
		r.logger.Debug("failed to build location image url", zap.String("ref", ref), zap.Error(err))
		return ""
	}
	return url
}
