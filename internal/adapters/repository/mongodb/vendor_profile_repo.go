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

type VendorProfileRepository struct {
	collection *mongo.Collection
}

func NewVendorProfileRepository(db *mongo.Database) *VendorProfileRepository {
	return &VendorProfileRepository{collection: db.Collection("vendorProfiles")}
}

// Upsert keys on applicantId so a promotion retry refreshes the existing
// profile instead of inserting a second one.
func (r *VendorProfileRepository) Upsert(ctx context.Context, profile *domain.VendorProfile) error {
	now := time.Now().UTC()
	filter := bson.M{"applicantId": profile.ApplicantID}
	update := bson.M{
		"$set": bson.M{
			"applicationId": profile.ApplicationID,
			"businessType":  profile.BusinessType,
			"description":   profile.Description,
			"serviceArea":   profile.ServiceArea,
			"status":        profile.Status,
			"activatedAt":   profile.ActivatedAt,
			"updatedAt":     now,
		},
		"$setOnInsert": bson.M{
			"_id":         profile.ID,
			"applicantId": profile.ApplicantID,
			"createdAt":   now,
		},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *VendorProfileRepository) GetByApplicantID(ctx context.Context, applicantID primitive.ObjectID) (*domain.VendorProfile, error) {
	var profile domain.VendorProfile
	err := r.collection.FindOne(ctx, bson.M{"applicantId": applicantID}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrVendorProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}
