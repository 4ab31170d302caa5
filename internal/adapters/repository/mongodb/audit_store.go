package mongodb

import (
	"context"

	"github.com/feriahub/marketplace-backend/internal/core/domain"
	"go.mongodb.org/mongo-driver/mongo"
)

type AuditStore struct {
	collection *mongo.Collection
}

func NewAuditStore(db *mongo.Database) *AuditStore {
	return &AuditStore{collection: db.Collection("auditEvents")}
}

func (s *AuditStore) Append(ctx context.Context, event *domain.AuditEvent) error {
	_, err := s.collection.InsertOne(ctx, event)
	return err
}
