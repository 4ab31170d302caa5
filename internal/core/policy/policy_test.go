package policy

import (
	"testing"

	"github.com/feriahub/marketplace-backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func principalWith(roles ...domain.Role) *domain.Principal {
	return &domain.Principal{
		ID:    primitive.NewObjectID(),
		Roles: roles,
	}
}

func TestCanSubmitApplication(t *testing.T) {
	assert.True(t, CanSubmitApplication(principalWith(domain.RoleBuyer)))
	assert.True(t, CanSubmitApplication(principalWith(domain.RoleBuyer, domain.RoleVendor)))
	assert.False(t, CanSubmitApplication(principalWith(domain.RoleAdmin)))
	assert.False(t, CanSubmitApplication(nil))
}

func TestCanDecideApplication(t *testing.T) {
	assert.True(t, CanDecideApplication(principalWith(domain.RoleBuyer, domain.RoleAdmin)))
	assert.False(t, CanDecideApplication(principalWith(domain.RoleBuyer)))
	assert.False(t, CanDecideApplication(principalWith(domain.RoleVendor)))
	assert.False(t, CanDecideApplication(nil))
}

func TestCanManageVendorResource(t *testing.T) {
	owner := principalWith(domain.RoleBuyer)
	admin := principalWith(domain.RoleBuyer, domain.RoleAdmin)
	stranger := principalWith(domain.RoleBuyer)

	assert.True(t, CanManageVendorResource(owner, owner.ID))
	assert.True(t, CanManageVendorResource(admin, owner.ID))
	assert.False(t, CanManageVendorResource(stranger, owner.ID))
	assert.False(t, CanManageVendorResource(nil, owner.ID))
}
