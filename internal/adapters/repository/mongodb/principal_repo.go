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

// IdentityStore keeps the authoritative role set in the principals
// collection, with roles as an array column.
type IdentityStore struct {
	collection *mongo.Collection
}

func NewIdentityStore(db *mongo.Database) *IdentityStore {
	return &IdentityStore{collection: db.Collection("principals")}
}

func (s *IdentityStore) Create(ctx context.Context, principal *domain.Principal) error {
	if principal.ID.IsZero() {
		principal.ID = primitive.NewObjectID()
	}
	if len(principal.Roles) == 0 {
		principal.Roles = []domain.Role{domain.RoleBuyer}
	}
	now := time.Now().UTC()
	principal.CreatedAt = now
	principal.UpdatedAt = now

	_, err := s.collection.InsertOne(ctx, principal)
	return err
}

func (s *IdentityStore) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Principal, error) {
	var principal domain.Principal
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&principal)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, err
	}
	return &principal, nil
}

// AddRole grants a role via $addToSet, which makes retries of the promotion
// step naturally idempotent: granting an already-held role changes nothing.
func (s *IdentityStore) AddRole(ctx context.Context, id primitive.ObjectID, role domain.Role) (*domain.Principal, error) {
	update := bson.M{
		"$addToSet": bson.M{"roles": role},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var principal domain.Principal
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&principal)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, err
	}
	return &principal, nil
}
