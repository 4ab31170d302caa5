// Package mongodb adapts the domain repository interfaces to MongoDB.
//
// The two writes the lifecycle depends on are both single atomic operations
// here: Create leans on the partial unique index over pending applications
// (see EnsureIndexes), and UpdateStatus filters on status == pending so a
// decision that lost the race matches nothing instead of overwriting a
// terminal state.
package mongodb

import (
	"context"
	"time"

	"github.com/feriahub/marketplace-backend/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ApplicationRepository struct {
	collection *mongo.Collection
}

func NewApplicationRepository(db *mongo.Database) *ApplicationRepository {
	return &ApplicationRepository{collection: db.Collection("applications")}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.VendorApplication) error {
	if app.ID.IsZero() {
		app.ID = primitive.NewObjectID()
	}
	if app.SubmittedAt.IsZero() {
		app.SubmittedAt = time.Now().UTC()
	}

	_, err := r.collection.InsertOne(ctx, app)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// The partial unique index on (applicantId, status=pending) fired:
			// a concurrent submission from the same applicant already landed.
			return domain.ErrDuplicatePendingApplication
		}
		return err
	}
	return nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.VendorApplication, error) {
	var app domain.VendorApplication
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&app)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) ListByStatus(ctx context.Context, status *domain.ApplicationStatus, limit, skip int64) ([]domain.VendorApplication, int64, error) {
	filter := bson.M{}
	if status != nil {
		filter["status"] = *status
	}

	opts := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.M{"submittedAt": -1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var apps []domain.VendorApplication
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.ApplicationStatus, decidedBy primitive.ObjectID, reason string) (*domain.VendorApplication, error) {
	if status != domain.StatusApproved && status != domain.StatusRejected {
		return nil, domain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	set := bson.M{
		"status":    status,
		"decidedAt": now,
		"decidedBy": decidedBy,
	}
	if status == domain.StatusRejected && reason != "" {
		set["rejectionReason"] = reason
	}

	// Conditional write: matches only while the stored status is still
	// pending, so two racing decisions produce exactly one winner.
	filter := bson.M{"_id": id, "status": domain.StatusPending}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.VendorApplication
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	// No pending record matched: distinguish a missing application from one
	// that has already been decided.
	count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if countErr != nil {
		return nil, countErr
	}
	if count == 0 {
		return nil, domain.ErrApplicationNotFound
	}
	return nil, domain.ErrInvalidTransition
}

func (r *ApplicationRepository) AttachDocument(ctx context.Context, id primitive.ObjectID, doc domain.VerificationDocument) (*domain.VendorApplication, error) {
	filter := bson.M{"_id": id, "status": domain.StatusPending}
	update := bson.M{"$push": bson.M{"documents": doc}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.VendorApplication
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if countErr != nil {
		return nil, countErr
	}
	if count == 0 {
		return nil, domain.ErrApplicationNotFound
	}
	return nil, domain.ErrInvalidTransition
}
