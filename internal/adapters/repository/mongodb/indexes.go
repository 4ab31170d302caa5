package mongodb

import (
	"context"

	"github.com/feriahub/marketplace-backend/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the adapters depend on. Safe to run on
// every startup; Mongo treats re-creation of an identical index as a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	// The storage-level guarantee behind "at most one pending application per
	// applicant": a unique index over applicantId restricted to pending
	// records. Decided applications fall outside the partial filter, so
	// re-applying after a rejection stays legal.
	_, err := db.Collection("applications").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "applicantId", Value: 1}},
			Options: options.Index().
				SetName("uniq_pending_per_applicant").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": domain.StatusPending}),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "submittedAt", Value: -1},
			},
			Options: options.Index().SetName("idx_status_submittedAt"),
		},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("vendorProfiles").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "applicantId", Value: 1}},
		Options: options.Index().SetName("uniq_profile_applicant").SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("principals").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("idx_principal_email"),
	})
	return err
}
