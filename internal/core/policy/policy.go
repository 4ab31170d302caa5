// Package policy holds the pure authorization predicates. No I/O, no errors:
// callers translate a false into domain.ErrUnauthorized at the service
// boundary.
package policy

import (
	"github.com/feriahub/marketplace-backend/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CanSubmitApplication is true for principals holding the buyer role. The
// "no outstanding pending application" half of the rule is deliberately NOT
// checked here: a check-then-write from this layer would race with concurrent
// submissions, so the repository's conditional write is the sole enforcement
// point and this predicate stays a fast path.
func CanSubmitApplication(principal *domain.Principal) bool {
	return principal != nil && principal.HasRole(domain.RoleBuyer)
}

// CanDecideApplication is true for admins.
func CanDecideApplication(principal *domain.Principal) bool {
	return principal != nil && principal.HasRole(domain.RoleAdmin)
}

// CanManageVendorResource is true for the resource owner or an admin.
func CanManageVendorResource(principal *domain.Principal, resourceOwnerID primitive.ObjectID) bool {
	if principal == nil {
		return false
	}
	return principal.ID == resourceOwnerID || principal.HasRole(domain.RoleAdmin)
}
