package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
)

// Principal is an authenticated actor. Roles is never empty: every principal
// gets RoleBuyer at registration and keeps it. Role mutation happens only
// through IdentityStore.AddRole; tokens carry the principal id, never roles.
type Principal struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DisplayName string             `bson:"displayName" json:"displayName"`
	Email       string             `bson:"email" json:"email"`
	Roles       []Role             `bson:"roles" json:"roles"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (p *Principal) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IdentityStore owns the authoritative role set.
type IdentityStore interface {
	// Create persists a new principal. Roles defaults to {buyer} when empty.
	Create(ctx context.Context, principal *Principal) error

	// GetByID returns ErrPrincipalNotFound for unknown ids.
	GetByID(ctx context.Context, id primitive.ObjectID) (*Principal, error)

	// AddRole grants a role and returns the updated principal. Granting a role
	// the principal already holds is a no-op success.
	AddRole(ctx context.Context, id primitive.ObjectID, role Role) (*Principal, error)
}
