package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AuditApplicationApproved = "APPLICATION_APPROVED"
	AuditApplicationRejected = "APPLICATION_REJECTED"
	AuditPromotionRetried    = "PROMOTION_RETRIED"
)

// AuditEvent records who decided what. Appended on every decision;
// applications themselves are never deleted, so together they form the full
// review history.
type AuditEvent struct {
	ID        string             `bson:"_id" json:"id"`
	ActorID   primitive.ObjectID `bson:"actorId" json:"actorId"`
	Action    string             `bson:"action" json:"action"`
	TargetID  primitive.ObjectID `bson:"targetId" json:"targetId"`
	Metadata  map[string]any     `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type AuditStore interface {
	Append(ctx context.Context, event *AuditEvent) error
}
